package assets

import (
	"strings"
)

// DefaultStyleName is the name of the built-in CSS style.
const DefaultStyleName = "default"

// defaultLoader serves the package-level helpers.
var defaultLoader = NewEmbeddedLoader()

// LoadStyle loads a built-in CSS style by name.
// Returns ErrStyleNotFound if the style does not exist.
// Returns ErrInvalidAssetName if the name contains path separators or traversal.
func LoadStyle(name string) (string, error) {
	return defaultLoader.LoadStyle(name)
}

// BuiltinStyles lists the names of the built-in styles.
func BuiltinStyles() []string {
	return defaultLoader.Names()
}

// Stack joins stylesheets in cascade order, later ones overriding earlier
// ones. Empty parts and exact duplicates (after trimming whitespace) are
// dropped, keeping the first occurrence.
func Stack(parts ...string) string {
	seen := make(map[string]bool, len(parts))
	kept := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p == "" || seen[p] {
			continue
		}
		seen[p] = true
		kept = append(kept, p)
	}
	return strings.Join(kept, "\n\n")
}
