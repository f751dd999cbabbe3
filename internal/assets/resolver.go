package assets

import (
	"errors"
)

// StyleResolver combines a user styles directory with the built-in styles.
// The directory is searched first; only a not-found error falls back to the
// built-in style of the same name.
type StyleResolver struct {
	custom   StyleLoader // nil if no styles directory configured
	embedded StyleLoader
}

// NewStyleResolver creates a StyleResolver.
// If stylesDir is empty, only built-in styles are used.
// Returns error if stylesDir is set but invalid.
func NewStyleResolver(stylesDir string) (*StyleResolver, error) {
	resolver := &StyleResolver{
		embedded: NewEmbeddedLoader(),
	}

	if stylesDir != "" {
		fsLoader, err := NewFilesystemLoader(stylesDir)
		if err != nil {
			return nil, err
		}
		resolver.custom = fsLoader
	}

	return resolver, nil
}

// LoadStyle loads a style, trying the styles directory first if configured.
func (r *StyleResolver) LoadStyle(name string) (string, error) {
	if r.custom == nil {
		return r.embedded.LoadStyle(name)
	}

	content, err := r.custom.LoadStyle(name)
	if err == nil {
		return content, nil
	}

	// Validation and I/O errors are not masked by the fallback
	if !errors.Is(err, ErrStyleNotFound) {
		return "", err
	}

	return r.embedded.LoadStyle(name)
}

// HasCustomLoader returns true if a styles directory is configured.
func (r *StyleResolver) HasCustomLoader() bool {
	return r.custom != nil
}

// Compile-time interface check.
var _ StyleLoader = (*StyleResolver)(nil)
