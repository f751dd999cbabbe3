package mdconvert

import (
	"errors"

	"github.com/mdconvert/markdown-convert/internal/extras"
	"github.com/mdconvert/markdown-convert/internal/pipeline"
)

// Error categories. Input and rendering errors returned by Convert and
// ConvertFile wrap one of them, so callers can branch with errors.Is.
// Context errors are returned as is.
var (
	// ErrInvalidInput reports a problem with the caller's input, detected
	// before any rendering work starts.
	ErrInvalidInput = errors.New("invalid input")

	// ErrRenderFailure reports a failure producing or writing the PDF.
	ErrRenderFailure = errors.New("render failed")
)

// Sentinel errors for library operations.
var (
	ErrEmptyMarkdown  = errors.New("markdown content cannot be empty")
	ErrHTMLConversion = pipeline.ErrHTMLConversion
	ErrReadInput      = errors.New("failed to read input file")
	ErrUnknownExtra   = extras.ErrUnknownExtra
	ErrInvalidStyle   = errors.New("invalid style")

	// Page settings validation errors.
	ErrInvalidPageSize    = errors.New("invalid page size")
	ErrInvalidOrientation = errors.New("invalid orientation")
	ErrInvalidMargin      = errors.New("invalid margin")
	ErrInvalidSecurity    = errors.New("invalid security level")

	// Renderer errors.
	ErrBrowserConnect = errors.New("failed to connect to browser")
	ErrPageCreate     = errors.New("failed to create browser page")
	ErrPageLoad       = errors.New("failed to load page")
	ErrPDFGeneration  = errors.New("PDF generation failed")
	ErrRenderTimeout  = errors.New("renderer timed out")
	ErrWriteOutput    = errors.New("failed to write output file")
)

// categorized is an error that belongs to a category and carries a cause.
type categorized struct {
	category error
	err      error
}

func (e *categorized) Error() string { return e.err.Error() }

// Unwrap exposes both the category and the cause to errors.Is and errors.As.
func (e *categorized) Unwrap() []error { return []error{e.category, e.err} }

// invalidInput wraps err in ErrInvalidInput.
func invalidInput(err error) error {
	return &categorized{category: ErrInvalidInput, err: err}
}

// renderFailure wraps err in ErrRenderFailure.
func renderFailure(err error) error {
	return &categorized{category: ErrRenderFailure, err: err}
}
