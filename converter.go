package mdconvert

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/mdconvert/markdown-convert/internal/assets"
	"github.com/mdconvert/markdown-convert/internal/extras"
	"github.com/mdconvert/markdown-convert/internal/fileutil"
	"github.com/mdconvert/markdown-convert/internal/pipeline"
)

// Compile-time interface implementation checks.
var (
	_ pipeline.MarkdownPreprocessor = (*pipeline.CommonMarkPreprocessor)(nil)
	_ pipeline.HTMLConverter        = (*pipeline.GoldmarkConverter)(nil)
	_ pdfConverter                  = (*rodConverter)(nil)
)

// Converter orchestrates the markdown-to-PDF conversion pipeline.
// Create with NewConverter, use Convert or ConvertFile, and Close when done.
//
// A Converter holds one browser and renders one document at a time;
// concurrent calls are serialized by the renderer.
type Converter struct {
	cfg           converterConfig
	logger        *slog.Logger
	builtin       []extras.Extra
	engine        *extras.Engine
	baseCSS       string
	codeCSS       string
	preprocessor  pipeline.MarkdownPreprocessor
	htmlConverter pipeline.HTMLConverter
	pdfConverter  pdfConverter
}

// WithLogger sets the logger for extra diagnostics and conversion progress.
func WithLogger(l *slog.Logger) Option {
	return func(c *Converter) {
		if l != nil {
			c.logger = l
		}
	}
}

// WithExtras restricts conversions to the named extras. No names enables
// every built-in extra.
func WithExtras(names ...string) Option {
	return func(c *Converter) {
		c.cfg.extras = names
	}
}

// WithSecurity sets the default security level for conversions.
func WithSecurity(level SecurityLevel) Option {
	return func(c *Converter) {
		c.cfg.security = level
	}
}

// WithSyntaxStyle sets the chroma style used for highlighted code.
func WithSyntaxStyle(name string) Option {
	return func(c *Converter) {
		c.cfg.syntaxStyle = name
	}
}

// WithSectionLevel sets the heading level that opens a <section>.
// 0 disables sectioning.
// Panics if n is outside 0-6 (programmer error).
func WithSectionLevel(n int) Option {
	if n < 0 || n > 6 {
		panic("mdconvert: WithSectionLevel level must be between 0 and 6")
	}
	return func(c *Converter) {
		c.cfg.sectionLevel = n
	}
}

// WithMaxIterations sets how many passes one extra may take to reach a
// fixpoint before it is abandoned.
// Panics if n <= 0 (programmer error).
func WithMaxIterations(n int) Option {
	if n <= 0 {
		panic("mdconvert: WithMaxIterations must be positive")
	}
	return func(c *Converter) {
		c.cfg.maxIterations = n
	}
}

// WithStyle selects the base stylesheet by name.
func WithStyle(name string) Option {
	return func(c *Converter) {
		c.cfg.style = name
	}
}

// WithStylesDir adds a directory of {name}.css files searched before the
// built-in styles.
func WithStylesDir(dir string) Option {
	return func(c *Converter) {
		c.cfg.stylesDir = dir
	}
}

// NewConverter creates a Converter with default configuration.
// Returns error if the style, security level or extras are invalid.
// The browser is launched on the first PDF render, not here.
func NewConverter(opts ...Option) (*Converter, error) {
	c := &Converter{
		cfg: converterConfig{
			timeout:       defaultTimeout,
			security:      SecurityDefault,
			sectionLevel:  defaultSectionLevel,
			maxIterations: extras.DefaultMaxIterations,
			style:         assets.DefaultStyleName,
		},
		logger:        slog.New(slog.DiscardHandler),
		preprocessor:  &pipeline.CommonMarkPreprocessor{},
		htmlConverter: pipeline.NewGoldmarkConverter(),
	}

	for _, opt := range opts {
		opt(c)
	}

	security, err := ParseSecurityLevel(string(c.cfg.security))
	if err != nil {
		return nil, err
	}
	c.cfg.security = security

	if err := c.loadStyles(); err != nil {
		return nil, err
	}

	c.builtin = extras.Builtin(extras.BuiltinConfig{SyntaxStyle: c.cfg.syntaxStyle})
	c.engine, err = c.newEngine(c.cfg.extras)
	if err != nil {
		return nil, err
	}

	// Create PDF converter if not injected (e.g., by tests)
	if c.pdfConverter == nil {
		c.pdfConverter = newRodConverter(c.cfg.timeout)
	}

	return c, nil
}

// loadStyles resolves the base and code stylesheets.
func (c *Converter) loadStyles() error {
	resolver, err := assets.NewStyleResolver(c.cfg.stylesDir)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidStyle, err)
	}
	c.baseCSS, err = resolver.LoadStyle(c.cfg.style)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidStyle, err)
	}
	c.codeCSS, err = extras.SyntaxCSS(c.cfg.syntaxStyle)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidStyle, err)
	}
	return nil
}

// newEngine builds an Engine over the named built-in extras. Empty names
// select all of them.
func (c *Converter) newEngine(names []string) (*extras.Engine, error) {
	set := c.builtin
	if len(names) > 0 {
		var err error
		set, err = extras.Select(c.builtin, names)
		if err != nil {
			return nil, err
		}
	}
	return extras.NewEngine(set,
		extras.WithLogger(c.logger),
		extras.WithMaxIterations(c.cfg.maxIterations),
	), nil
}

// Convert runs the full pipeline and returns the result containing HTML and PDF.
// The context is used for cancellation; rendering is additionally bounded by
// the converter timeout.
// If input.HTMLOnly is true, PDF generation is skipped (for debugging).
// Recovers from internal panics to prevent crashes from propagating to callers.
func (c *Converter) Convert(ctx context.Context, input Input) (result *Result, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("internal error: %v", r)
		}
	}()

	if err := c.validateInput(input); err != nil {
		return nil, invalidInput(err)
	}

	engine := c.engine
	if input.Extras != nil {
		if engine, err = c.newEngine(input.Extras); err != nil {
			return nil, invalidInput(err)
		}
	}

	security := c.cfg.security
	if input.Security != "" {
		security, _ = ParseSecurityLevel(string(input.Security)) // validated above
	}

	// Preprocess markdown
	mdContent := c.preprocessor.PreprocessMarkdown(ctx, input.Markdown)
	if ctx.Err() != nil {
		return nil, ctx.Err()
	}

	// Convert to HTML
	body, err := c.htmlConverter.ToHTML(ctx, mdContent)
	if err != nil {
		return nil, fmt.Errorf("converting to HTML: %w", err)
	}
	body = pipeline.ConvertPageBreaks(body)

	// Rewrite relative paths to absolute file:// URLs (if source directory provided)
	if input.SourceDir != "" {
		body, err = pipeline.RewriteRelativePaths(body, input.SourceDir)
		if err != nil {
			return nil, fmt.Errorf("rewriting relative paths: %w", err)
		}
	}

	body, err = pipeline.WrapSections(body, c.cfg.sectionLevel)
	if err != nil {
		return nil, fmt.Errorf("wrapping sections: %w", err)
	}

	body, err = c.applyExtras(ctx, engine, body)
	if err != nil {
		return nil, err
	}

	doc := pipeline.AssembleDocument(body, pipeline.DocumentOptions{
		CSS:      c.stylesheet(input, engine),
		Security: security.pipeline(),
		Title:    input.Title,
	})

	res := &Result{
		HTML:     []byte(doc.HTML),
		Runtimes: doc.Runtimes,
	}

	// Skip PDF generation if HTMLOnly mode
	if input.HTMLOnly {
		return res, nil
	}

	page := input.Page
	if page == nil {
		page = DefaultPageSettings()
	}
	pdfBytes, err := c.pdfConverter.ToPDF(ctx, doc.HTML, &pdfOptions{
		Page:       page,
		ReadyCheck: doc.ReadyCheck,
		Strict:     security == SecurityStrict,
	})
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, renderFailure(fmt.Errorf("converting to PDF: %w", err))
	}

	res.PDF = pdfBytes
	return res, nil
}

// applyExtras runs engine with a fresh Memory that is released before
// returning.
func (c *Converter) applyExtras(ctx context.Context, engine *extras.Engine, body string) (string, error) {
	mem := extras.NewMemory(ctx, extras.WithMemoryLogger(c.logger))
	defer func() {
		if err := mem.Close(); err != nil {
			c.logger.Warn("releasing conversion memory", "err", err)
		}
	}()

	return engine.Apply(ctx, body, mem)
}

// stylesheet stacks the code, base and custom stylesheets in cascade order.
func (c *Converter) stylesheet(input Input, engine *extras.Engine) string {
	var code, base string
	if slices.Contains(engine.Names(), extras.NameSyntaxHighlighting) {
		code = c.codeCSS
	}
	if input.extendDefault() {
		base = c.baseCSS
	}
	return assets.Stack(code, base, input.CSS)
}

// ConvertFile converts the Markdown file in input.MarkdownPath and writes
// the PDF atomically, so a viewer never sees a half-written file. Input
// paths are validated before any work starts.
func (c *Converter) ConvertFile(ctx context.Context, input FileInput) (*Result, error) {
	if err := fileutil.ValidateInputFile(input.MarkdownPath, fileutil.ExtMarkdown); err != nil {
		return nil, invalidInput(err)
	}
	if input.CSSPath != "" {
		if err := fileutil.ValidateInputFile(input.CSSPath, fileutil.ExtCSS); err != nil {
			return nil, invalidInput(err)
		}
	}
	pdfPath, err := fileutil.OutputPath(input.MarkdownPath, input.OutputPath)
	if err != nil {
		return nil, invalidInput(err)
	}

	markdown, err := readInput(input.MarkdownPath)
	if err != nil {
		return nil, err
	}
	var css string
	if input.CSSPath != "" {
		if css, err = readInput(input.CSSPath); err != nil {
			return nil, err
		}
	}

	sourceDir, err := filepath.Abs(filepath.Dir(input.MarkdownPath))
	if err != nil {
		return nil, invalidInput(fmt.Errorf("%w: %v", ErrReadInput, err))
	}

	title := input.Title
	if title == "" {
		title = strings.TrimSuffix(filepath.Base(input.MarkdownPath), filepath.Ext(input.MarkdownPath))
	}

	res, err := c.Convert(ctx, Input{
		Markdown:         markdown,
		CSS:              css,
		ExtendDefaultCSS: input.ExtendDefaultCSS,
		SourceDir:        sourceDir,
		Title:            title,
		Page:             input.Page,
		Security:         input.Security,
		Extras:           input.Extras,
	})
	if err != nil {
		return nil, err
	}

	if input.DebugHTML {
		res.HTMLPath = fileutil.HTMLPath(pdfPath)
		if err := fileutil.WriteFileAtomic(res.HTMLPath, res.HTML); err != nil {
			return nil, renderFailure(fmt.Errorf("%w: %v", ErrWriteOutput, err))
		}
	}

	if err := fileutil.WriteFileAtomic(pdfPath, res.PDF); err != nil {
		return nil, renderFailure(fmt.Errorf("%w: %v", ErrWriteOutput, err))
	}
	res.PDFPath = pdfPath

	c.logger.Debug("converted", "markdown", input.MarkdownPath, "pdf", pdfPath, "bytes", len(res.PDF))
	return res, nil
}

// readInput reads a validated input file.
func readInput(path string) (string, error) {
	data, err := os.ReadFile(path) // #nosec G304 -- user-provided path, validated by caller
	if err != nil {
		return "", invalidInput(fmt.Errorf("%w: %s: %v", ErrReadInput, path, err))
	}
	return string(data), nil
}

// Close releases resources (headless Chrome browser).
// Safe to call more than once.
func (c *Converter) Close() error {
	if c.pdfConverter != nil {
		return c.pdfConverter.Close()
	}
	return nil
}

// validateInput checks that required fields are present and valid.
//
// This is a TRUST BOUNDARY for direct library users who build Input manually.
// CLI users have their input validated earlier by Config.Validate() at config load time.
// Both paths converge here, ensuring all inputs are validated before processing.
func (c *Converter) validateInput(input Input) error {
	if input.Markdown == "" {
		return ErrEmptyMarkdown
	}
	if err := input.Page.Validate(); err != nil {
		return err
	}
	if input.Security != "" {
		if _, err := ParseSecurityLevel(string(input.Security)); err != nil {
			return err
		}
	}
	return nil
}
