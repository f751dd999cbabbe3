package assets

// StyleLoader loads a CSS stylesheet by name (without .css extension).
// Implementations return ErrStyleNotFound for unknown names and
// ErrInvalidAssetName for names that are not plain identifiers.
type StyleLoader interface {
	LoadStyle(name string) (string, error)
}
