package assets

import (
	"fmt"
	"strings"
)

// maxAssetNameLen bounds style names; they become file names.
const maxAssetNameLen = 64

// ValidateAssetName checks that a style name is safe for use as a filename.
// Returns ErrInvalidAssetName if the name is empty, too long, or contains path
// separators, dots (which could allow extension manipulation) or whitespace.
func ValidateAssetName(name string) error {
	if name == "" {
		return fmt.Errorf("%w: empty name", ErrInvalidAssetName)
	}
	if len(name) > maxAssetNameLen {
		return fmt.Errorf("%w: longer than %d characters", ErrInvalidAssetName, maxAssetNameLen)
	}
	if strings.ContainsAny(name, "/\\. \t\n") {
		return fmt.Errorf("%w: %q", ErrInvalidAssetName, name)
	}
	return nil
}
