package main

import (
	"io"

	flag "github.com/spf13/pflag"
)

// sectionLevelUnset marks --section-level as not given, since 0 is a valid
// value that disables section wrapping.
const sectionLevelUnset = -1

// pageFlags holds page layout flags.
type pageFlags struct {
	size        string
	orientation string
	margin      float64
}

// styleFlags holds stylesheet flags.
type styleFlags struct {
	css          string
	style        string
	stylesDir    string
	syntaxStyle  string
	noDefaultCSS bool
}

// cliFlags holds every command-line flag.
type cliFlags struct {
	mode          string
	output        string
	config        string
	extras        []string
	security      string
	debugHTML     bool
	timeout       string
	interval      string
	sectionLevel  int
	maxIterations int
	page          pageFlags
	style         styleFlags

	quiet       bool
	verbose     bool
	version     bool
	help        bool
	printConfig bool
}

// addPageFlags adds page layout flags to a FlagSet.
func addPageFlags(fs *flag.FlagSet, f *pageFlags) {
	fs.StringVarP(&f.size, "page-size", "p", "", "page size: letter, a4, legal")
	fs.StringVar(&f.orientation, "orientation", "", "page orientation: portrait, landscape")
	fs.Float64Var(&f.margin, "margin", 0, "page margin in inches (0.25-3.0)")
}

// addStyleFlags adds stylesheet flags to a FlagSet.
func addStyleFlags(fs *flag.FlagSet, f *styleFlags) {
	fs.StringVar(&f.css, "css", "", "custom CSS file")
	fs.StringVar(&f.style, "style", "", "base style name")
	fs.StringVar(&f.stylesDir, "styles-dir", "", "directory of {name}.css styles")
	fs.StringVar(&f.syntaxStyle, "syntax-style", "", "code highlighting style")
	fs.BoolVar(&f.noDefaultCSS, "no-default-css", false, "do not include the base style under --css")
}

// parseFlags parses args (without the program name) and returns the
// positional arguments.
func parseFlags(args []string, usage io.Writer) (*cliFlags, []string, error) {
	fs := flag.NewFlagSet("markdown-convert", flag.ContinueOnError)
	fs.SetOutput(usage)
	f := &cliFlags{}

	fs.StringVarP(&f.mode, "mode", "m", "", "conversion mode: once, live")
	fs.StringVarP(&f.output, "out", "o", "", "output PDF file or directory")
	fs.StringVarP(&f.config, "config", "c", "", "config file name or path")
	fs.StringSliceVarP(&f.extras, "extras", "e", nil, "extras to enable (default: all)")
	fs.StringVar(&f.security, "security", "", "security level: default, strict")
	fs.BoolVar(&f.debugHTML, "debug-html", false, "also write the assembled HTML")
	fs.StringVarP(&f.timeout, "timeout", "t", "", "PDF generation timeout (e.g., 30s, 2m)")
	fs.StringVar(&f.interval, "interval", "", "live mode poll interval (e.g., 1s)")
	fs.IntVar(&f.sectionLevel, "section-level", sectionLevelUnset, "heading level wrapped in <section> (0 disables)")
	fs.IntVar(&f.maxIterations, "max-iterations", 0, "per-extra rewrite limit")

	addPageFlags(fs, &f.page)
	addStyleFlags(fs, &f.style)

	fs.BoolVarP(&f.quiet, "quiet", "q", false, "only show errors")
	fs.BoolVarP(&f.verbose, "verbose", "v", false, "show debug logs and timing")
	fs.BoolVar(&f.version, "version", false, "print version and exit")
	fs.BoolVarP(&f.help, "help", "h", false, "show this help")
	fs.BoolVar(&f.printConfig, "print-config", false, "print the merged configuration as YAML and exit")

	fs.Usage = func() { printUsage(usage) }

	if err := fs.Parse(args); err != nil {
		return nil, nil, err
	}

	return f, fs.Args(), nil
}
