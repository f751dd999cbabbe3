package main

import (
	"errors"
	"os"

	mdconvert "github.com/mdconvert/markdown-convert"
	"github.com/mdconvert/markdown-convert/internal/config"
	"github.com/mdconvert/markdown-convert/internal/fileutil"
)

// Exit codes for the markdown-convert CLI.
// Follows Unix conventions: 0=success, 1=general, 2=usage, and custom codes < 126.
const (
	ExitSuccess = 0 // Successful conversion
	ExitGeneral = 1 // General/unexpected error
	ExitUsage   = 2 // Invalid flags, config, or validation
	ExitIO      = 3 // File not found, permission denied, write failure
	ExitBrowser = 4 // Browser or rendering errors
)

// exitCodeFor returns the appropriate exit code for an error.
// It uses errors.Is to check wrapped errors, so callers must use fmt.Errorf("%w", err).
func exitCodeFor(err error) int {
	if err == nil {
		return ExitSuccess
	}

	// I/O errors (exit 3). Checked first: missing inputs are also invalid input.
	if errors.Is(err, os.ErrNotExist) ||
		errors.Is(err, os.ErrPermission) ||
		errors.Is(err, fileutil.ErrFileNotFound) ||
		errors.Is(err, fileutil.ErrOutputDirNotFound) ||
		errors.Is(err, mdconvert.ErrReadInput) ||
		errors.Is(err, mdconvert.ErrWriteOutput) {
		return ExitIO
	}

	// Browser errors (exit 4)
	if errors.Is(err, mdconvert.ErrRenderFailure) ||
		errors.Is(err, mdconvert.ErrBrowserConnect) ||
		errors.Is(err, mdconvert.ErrPageCreate) ||
		errors.Is(err, mdconvert.ErrPageLoad) ||
		errors.Is(err, mdconvert.ErrPDFGeneration) ||
		errors.Is(err, mdconvert.ErrRenderTimeout) {
		return ExitBrowser
	}

	// Usage/config/validation errors (exit 2)
	if errors.Is(err, ErrUsage) ||
		errors.Is(err, mdconvert.ErrInvalidInput) ||
		errors.Is(err, config.ErrConfigNotFound) ||
		errors.Is(err, config.ErrConfigParse) ||
		errors.Is(err, config.ErrFieldTooLong) ||
		errors.Is(err, config.ErrInvalidValue) ||
		errors.Is(err, mdconvert.ErrEmptyMarkdown) ||
		errors.Is(err, mdconvert.ErrUnknownExtra) ||
		errors.Is(err, mdconvert.ErrInvalidStyle) ||
		errors.Is(err, mdconvert.ErrInvalidSecurity) ||
		errors.Is(err, mdconvert.ErrInvalidPageSize) ||
		errors.Is(err, mdconvert.ErrInvalidOrientation) ||
		errors.Is(err, mdconvert.ErrInvalidMargin) ||
		errors.Is(err, fileutil.ErrWrongExtension) {
		return ExitUsage
	}

	return ExitGeneral
}
