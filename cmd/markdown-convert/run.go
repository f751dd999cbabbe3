package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"
	"time"

	mdconvert "github.com/mdconvert/markdown-convert"
	"github.com/mdconvert/markdown-convert/internal/config"
	"github.com/mdconvert/markdown-convert/internal/hints"
	"github.com/mdconvert/markdown-convert/internal/yamlutil"
)

// Sentinel errors for CLI operations.
var (
	ErrUsage       = errors.New("usage error")
	ErrNoInput     = errors.New("no input file specified")
	ErrTooManyArgs = errors.New("expected exactly one input file")
)

// liveTimeFormat formats the completion time printed after each live render.
const liveTimeFormat = "2006-01-02 15:04:05"

// runMain runs the CLI and returns the process exit code.
func runMain(args []string, env *Environment) int {
	ctx, stop := notifyContext(context.Background())
	defer stop()

	if len(args) > 1 && args[1] == "doctor" {
		return runDoctorCmd(args[2:], env)
	}

	err := run(ctx, args[1:], env)
	if err == nil {
		return ExitSuccess
	}
	if errors.Is(err, context.Canceled) && ctx.Err() != nil {
		fmt.Fprintln(env.Stderr, "Interrupted by user.")
		return ExitGeneral
	}

	fmt.Fprintf(env.Stderr, "Error: %v%s\n", err, hintFor(err))
	return exitCodeFor(err)
}

// run parses args, merges configuration and performs the conversion.
func run(ctx context.Context, args []string, env *Environment) error {
	flags, positional, err := parseFlags(args, env.Stderr)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUsage, err)
	}
	if flags.help {
		printUsage(env.Stdout)
		return nil
	}
	if flags.version {
		fmt.Fprintf(env.Stdout, "markdown-convert %s\n", Version)
		return nil
	}

	warnUnknownEnvVars(env.Stderr)
	envCfg := loadEnvConfig()

	cfg, err := loadConfig(flags.config, envCfg.ConfigPath)
	if err != nil {
		return err
	}
	applyEnvConfig(envCfg, cfg)
	mergeFlags(flags, cfg)
	if err := cfg.Validate(); err != nil {
		return err
	}

	if flags.printConfig {
		data, err := yamlutil.Marshal(cfg)
		if err != nil {
			return err
		}
		_, err = env.Stdout.Write(data)
		return err
	}

	mdPath, err := resolveInputPath(positional)
	if err != nil {
		return err
	}

	logger := newLogger(env, flags)

	opts, err := converterOptions(cfg, flags, logger)
	if err != nil {
		return err
	}
	input, err := buildFileInput(mdPath, cfg)
	if err != nil {
		return err
	}

	conv, err := env.NewConverter(opts...)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := conv.Close(); cerr != nil {
			logger.Warn("closing converter", "err", cerr)
		}
	}()

	if strings.EqualFold(cfg.Mode, config.ModeLive) {
		err = runLive(ctx, conv, input, cfg, flags, logger, env)
	} else {
		err = runOnce(ctx, conv, input, flags, env)
	}
	if errors.Is(err, mdconvert.ErrRenderTimeout) {
		usesRuntimes := !strings.EqualFold(cfg.Security, config.SecurityStrict)
		err = withHint(err, hints.ForTimeout(usesRuntimes))
	}
	return err
}

// loadConfig loads the config named by the --config flag, falling back to
// MDCONVERT_CONFIG. With neither set, every setting keeps its default.
func loadConfig(flagValue, envValue string) (*config.Config, error) {
	name := flagValue
	if name == "" {
		name = envValue
	}
	if name == "" {
		return config.DefaultConfig(), nil
	}
	cfg, err := config.LoadConfig(name)
	if err != nil {
		err = fmt.Errorf("loading config: %w", err)
		if errors.Is(err, config.ErrConfigNotFound) {
			var searched []string
			if filepath.Base(name) == name && filepath.Ext(name) == "" {
				searched = config.SearchPaths(name)
			}
			err = withHint(err, hints.ForConfigNotFound(searched))
		}
		return nil, err
	}
	return cfg, nil
}

// mergeFlags merges CLI flags into config. CLI values override config values.
func mergeFlags(flags *cliFlags, cfg *config.Config) {
	if flags.mode != "" {
		cfg.Mode = flags.mode
	}
	if flags.output != "" {
		cfg.Output = flags.output
	}
	if len(flags.extras) > 0 {
		cfg.Extras = flags.extras
	}
	if flags.security != "" {
		cfg.Security = flags.security
	}
	if flags.debugHTML {
		cfg.DebugHTML = true
	}
	if flags.timeout != "" {
		cfg.Timeout = flags.timeout
	}
	if flags.interval != "" {
		cfg.Live.Interval = flags.interval
	}
	if flags.sectionLevel > 0 {
		cfg.SectionLevel = flags.sectionLevel
	}
	if flags.maxIterations != 0 {
		cfg.MaxIterations = flags.maxIterations
	}

	// Page flags
	if flags.page.size != "" {
		cfg.Page.Size = flags.page.size
	}
	if flags.page.orientation != "" {
		cfg.Page.Orientation = flags.page.orientation
	}
	if flags.page.margin != 0 {
		cfg.Page.Margin = flags.page.margin
	}

	// Style flags
	if flags.style.css != "" {
		cfg.CSS = flags.style.css
	}
	if flags.style.style != "" {
		cfg.Style = flags.style.style
	}
	if flags.style.stylesDir != "" {
		cfg.StylesDir = flags.style.stylesDir
	}
	if flags.style.syntaxStyle != "" {
		cfg.SyntaxStyle = flags.style.syntaxStyle
	}
	if flags.style.noDefaultCSS {
		extend := false
		cfg.ExtendDefaultCSS = &extend
	}
}

// resolveInputPath returns the single positional Markdown path.
func resolveInputPath(args []string) (string, error) {
	switch len(args) {
	case 0:
		return "", fmt.Errorf("%w: %w", ErrUsage, ErrNoInput)
	case 1:
		return args[0], nil
	default:
		return "", fmt.Errorf("%w: %w: got %d", ErrUsage, ErrTooManyArgs, len(args))
	}
}

// newLogger builds the stderr logger: WARN by default, DEBUG with -v,
// ERROR with -q.
func newLogger(env *Environment, flags *cliFlags) *slog.Logger {
	level := slog.LevelWarn
	switch {
	case flags.quiet:
		level = slog.LevelError
	case flags.verbose:
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(env.Stderr, &slog.HandlerOptions{Level: level}))
}

// converterOptions translates the merged config into converter options.
func converterOptions(cfg *config.Config, flags *cliFlags, logger *slog.Logger) ([]mdconvert.Option, error) {
	opts := []mdconvert.Option{
		mdconvert.WithLogger(logger),
		mdconvert.WithSecurity(mdconvert.SecurityLevel(cfg.Security)),
	}

	timeout, err := cfg.TimeoutDuration()
	if err != nil {
		return nil, err
	}
	if timeout > 0 {
		opts = append(opts, mdconvert.WithTimeout(timeout))
	}

	if len(cfg.Extras) > 0 {
		opts = append(opts, mdconvert.WithExtras(cfg.Extras...))
	}
	if cfg.Style != "" {
		opts = append(opts, mdconvert.WithStyle(cfg.Style))
	}
	if cfg.StylesDir != "" {
		opts = append(opts, mdconvert.WithStylesDir(cfg.StylesDir))
	}
	if cfg.SyntaxStyle != "" {
		opts = append(opts, mdconvert.WithSyntaxStyle(cfg.SyntaxStyle))
	}
	if cfg.MaxIterations > 0 {
		opts = append(opts, mdconvert.WithMaxIterations(cfg.MaxIterations))
	}

	// 0 from the config file means default; 0 from the flag disables.
	level := cfg.SectionLevel
	if flags.sectionLevel != sectionLevelUnset {
		level = flags.sectionLevel
		if level < 0 || level > 6 {
			return nil, fmt.Errorf("%w: --section-level must be between 0 and 6, got %d", ErrUsage, level)
		}
	}
	if level > 0 || flags.sectionLevel == 0 {
		opts = append(opts, mdconvert.WithSectionLevel(level))
	}

	return opts, nil
}

// buildPageSettings creates mdconvert.PageSettings from config.
// Flags are merged into config by mergeFlags before this is called.
func buildPageSettings(cfg *config.Config) (*mdconvert.PageSettings, error) {
	hasConfig := cfg.Page.Size != "" || cfg.Page.Orientation != "" || cfg.Page.Margin > 0

	if !hasConfig {
		return nil, nil
	}

	ps := mdconvert.DefaultPageSettings()
	if cfg.Page.Size != "" {
		ps.Size = strings.ToLower(cfg.Page.Size)
	}
	if cfg.Page.Orientation != "" {
		ps.Orientation = strings.ToLower(cfg.Page.Orientation)
	}
	if cfg.Page.Margin > 0 {
		ps.Margin = cfg.Page.Margin
	}

	if err := ps.Validate(); err != nil {
		return nil, err
	}

	return ps, nil
}

// buildFileInput creates the conversion request for mdPath.
func buildFileInput(mdPath string, cfg *config.Config) (mdconvert.FileInput, error) {
	page, err := buildPageSettings(cfg)
	if err != nil {
		return mdconvert.FileInput{}, err
	}
	return mdconvert.FileInput{
		MarkdownPath:     mdPath,
		CSSPath:          cfg.CSS,
		OutputPath:       cfg.Output,
		DebugHTML:        cfg.DebugHTML,
		ExtendDefaultCSS: cfg.ExtendDefaultCSS,
		Page:             page,
	}, nil
}

// runOnce converts the file a single time.
func runOnce(ctx context.Context, conv fileConverter, input mdconvert.FileInput, flags *cliFlags, env *Environment) error {
	start := env.Now()
	res, err := conv.ConvertFile(ctx, input)
	if err != nil {
		return err
	}
	printResult(env, flags, input.MarkdownPath, res, env.Now().Sub(start))
	return nil
}

// printResult reports the written files.
func printResult(env *Environment, flags *cliFlags, mdPath string, res *mdconvert.Result, elapsed time.Duration) {
	if flags.quiet {
		return
	}
	if flags.verbose {
		fmt.Fprintf(env.Stdout, "%s -> %s (%v)\n", mdPath, res.PDFPath, elapsed.Round(time.Millisecond))
	} else {
		fmt.Fprintf(env.Stdout, "Created %s\n", res.PDFPath)
	}
	if res.HTMLPath != "" {
		fmt.Fprintf(env.Stdout, "Created %s\n", res.HTMLPath)
	}
}

// runLive renders once, then again whenever the Markdown or CSS file
// changes, until ctx is canceled.
func runLive(ctx context.Context, conv fileConverter, input mdconvert.FileInput, cfg *config.Config, flags *cliFlags, logger *slog.Logger, env *Environment) error {
	interval, err := cfg.Live.IntervalDuration()
	if err != nil {
		return err
	}

	render := func(ctx context.Context) error {
		_, err := conv.ConvertFile(ctx, input)
		return err
	}
	live := mdconvert.NewLiveConverter(render, input.MarkdownPath, input.CSSPath,
		mdconvert.WithPollInterval(interval),
		mdconvert.WithLiveLogger(logger),
		mdconvert.WithOnRender(func(time.Time) {
			if !flags.quiet {
				fmt.Fprintf(env.Stdout, "PDF file updated: %s\n", env.Now().Format(liveTimeFormat))
			}
		}),
	)

	if !flags.quiet {
		fmt.Fprintf(env.Stdout, "Watching %s (Ctrl+C to stop)\n", input.MarkdownPath)
	}
	if err := live.Run(ctx); err != nil {
		return err
	}
	if !flags.quiet {
		fmt.Fprintln(env.Stdout, "Interrupted by user.")
	}
	return nil
}
