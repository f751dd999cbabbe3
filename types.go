package mdconvert

import (
	"fmt"
	"strings"
	"time"

	"github.com/mdconvert/markdown-convert/internal/pipeline"
)

// Page size constants.
const (
	PageSizeLetter = "letter"
	PageSizeA4     = "a4"
	PageSizeLegal  = "legal"
)

// Orientation constants.
const (
	OrientationPortrait  = "portrait"
	OrientationLandscape = "landscape"
)

// Margin bounds in inches.
const (
	MinMargin     = 0.25
	MaxMargin     = 3.0
	DefaultMargin = 0.5
)

// PageSettings configures PDF page dimensions.
type PageSettings struct {
	Size        string  // "letter", "a4", "legal"
	Orientation string  // "portrait", "landscape"
	Margin      float64 // inches, applied to all sides
}

// DefaultPageSettings returns page settings with default values.
func DefaultPageSettings() *PageSettings {
	return &PageSettings{
		Size:        PageSizeLetter,
		Orientation: OrientationPortrait,
		Margin:      DefaultMargin,
	}
}

// Validate checks that page settings are valid.
// Returns nil if p is nil (nil means use defaults).
// Does not mutate - uses case-insensitive comparison.
func (p *PageSettings) Validate() error {
	if p == nil {
		return nil
	}

	if !isValidPageSize(p.Size) {
		return fmt.Errorf("%w: %q", ErrInvalidPageSize, p.Size)
	}

	if !isValidOrientation(p.Orientation) {
		return fmt.Errorf("%w: %q", ErrInvalidOrientation, p.Orientation)
	}

	if p.Margin < MinMargin || p.Margin > MaxMargin {
		return fmt.Errorf("%w: %.2f (must be between %.2f and %.2f)", ErrInvalidMargin, p.Margin, MinMargin, MaxMargin)
	}

	return nil
}

// dimensions returns the paper width and height in inches, swapped for
// landscape.
func (p *PageSettings) dimensions() (width, height float64) {
	switch strings.ToLower(p.Size) {
	case PageSizeA4:
		width, height = 8.27, 11.69
	case PageSizeLegal:
		width, height = 8.5, 14
	default:
		width, height = 8.5, 11
	}
	if strings.EqualFold(p.Orientation, OrientationLandscape) {
		width, height = height, width
	}
	return width, height
}

// isValidPageSize checks if size is a known page size (case-insensitive).
func isValidPageSize(size string) bool {
	switch strings.ToLower(size) {
	case PageSizeLetter, PageSizeA4, PageSizeLegal:
		return true
	}
	return false
}

// isValidOrientation checks if orientation is valid (case-insensitive).
func isValidOrientation(orientation string) bool {
	switch strings.ToLower(orientation) {
	case OrientationPortrait, OrientationLandscape:
		return true
	}
	return false
}

// SecurityLevel controls what the rendered document may execute and load.
type SecurityLevel string

const (
	// SecurityDefault lets diagram and math runtimes load from their CDN,
	// bound to a per-document nonce.
	SecurityDefault SecurityLevel = "default"
	// SecurityStrict disables scripts and blocks every network request.
	SecurityStrict SecurityLevel = "strict"
)

// ParseSecurityLevel parses s case-insensitively. Empty means SecurityDefault.
func ParseSecurityLevel(s string) (SecurityLevel, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", string(SecurityDefault):
		return SecurityDefault, nil
	case string(SecurityStrict):
		return SecurityStrict, nil
	}
	return "", fmt.Errorf("%w: %q (must be default or strict)", ErrInvalidSecurity, s)
}

func (s SecurityLevel) pipeline() pipeline.Security {
	if s == SecurityStrict {
		return pipeline.SecurityStrict
	}
	return pipeline.SecurityDefault
}

// Input contains conversion parameters.
type Input struct {
	Markdown string // Markdown content (required)
	CSS      string // Custom CSS, stacked after the default stylesheet (optional)

	// ExtendDefaultCSS keeps the built-in stylesheet under CSS.
	// nil means true.
	ExtendDefaultCSS *bool

	// SourceDir resolves relative image and link paths. Empty leaves them
	// untouched.
	SourceDir string

	Title    string        // Document title, defaults to "Document"
	Page     *PageSettings // Page settings (optional, nil = defaults)
	Security SecurityLevel // Empty = converter default

	// Extras restricts the extras for this conversion. nil uses the
	// converter's set.
	Extras []string

	// HTMLOnly skips PDF rendering.
	HTMLOnly bool
}

// extendDefault reports whether the built-in stylesheet is included.
func (in Input) extendDefault() bool {
	return in.ExtendDefaultCSS == nil || *in.ExtendDefaultCSS
}

// FileInput describes a conversion from files on disk.
type FileInput struct {
	MarkdownPath string // .md file (required)
	CSSPath      string // .css file (optional)

	// OutputPath is a .pdf file or an existing directory. Empty places the
	// PDF next to the Markdown file.
	OutputPath string

	// DebugHTML also writes the assembled HTML next to the PDF.
	DebugHTML bool

	ExtendDefaultCSS *bool
	Title            string
	Page             *PageSettings
	Security         SecurityLevel
	Extras           []string
}

// Result holds the output of a conversion.
type Result struct {
	HTML []byte // Assembled HTML document
	PDF  []byte // PDF bytes, nil in HTMLOnly mode

	// Runtimes lists the client-side runtimes the document loaded.
	Runtimes []string

	// PDFPath and HTMLPath are set by ConvertFile.
	PDFPath  string
	HTMLPath string
}

// Option configures a Converter.
type Option func(*Converter)

// converterConfig holds internal configuration for Converter.
type converterConfig struct {
	timeout       time.Duration
	extras        []string
	security      SecurityLevel
	syntaxStyle   string
	sectionLevel  int
	maxIterations int
	style         string
	stylesDir     string
}

// Defaults applied by NewConverter.
const (
	defaultTimeout      = 30 * time.Second
	defaultSectionLevel = 2
)

// WithTimeout sets the conversion timeout.
// Panics if d <= 0 (programmer error, similar to time.NewTicker).
func WithTimeout(d time.Duration) Option {
	if d <= 0 {
		panic("mdconvert: WithTimeout duration must be positive")
	}
	return func(c *Converter) {
		c.cfg.timeout = d
	}
}
