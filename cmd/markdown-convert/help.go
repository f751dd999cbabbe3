package main

import (
	"fmt"
	"io"
)

// printUsage prints the usage message.
func printUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: markdown-convert <file.md> [flags]")
	fmt.Fprintln(w, "       markdown-convert doctor [--json]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Convert a Markdown file to PDF, once or on every change.")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Input/Output:")
	fmt.Fprintln(w, "  -m, --mode <s>            Mode: once (default), live")
	fmt.Fprintln(w, "  -o, --out <path>          Output .pdf file or existing directory")
	fmt.Fprintln(w, "  -c, --config <name>       Config file name or path")
	fmt.Fprintln(w, "      --debug-html          Also write the assembled HTML")
	fmt.Fprintln(w, "      --interval <d>        Live mode poll interval (default 1s)")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Extras:")
	fmt.Fprintln(w, "  -e, --extras <a,b>        Extras to enable (default: all)")
	fmt.Fprintln(w, "      --security <s>        Security: default, strict")
	fmt.Fprintln(w, "      --section-level <n>   Heading level wrapped in <section> (0 disables)")
	fmt.Fprintln(w, "      --max-iterations <n>  Per-extra rewrite limit")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Page:")
	fmt.Fprintln(w, "  -p, --page-size <s>       Page size: letter, a4, legal")
	fmt.Fprintln(w, "      --orientation <s>     Orientation: portrait, landscape")
	fmt.Fprintln(w, "      --margin <f>          Margin in inches (0.25-3.0)")
	fmt.Fprintln(w, "  -t, --timeout <d>         PDF generation timeout (default 30s)")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Styling:")
	fmt.Fprintln(w, "      --css <path>          Custom CSS file")
	fmt.Fprintln(w, "      --no-default-css      Use --css without the base style")
	fmt.Fprintln(w, "      --style <name>        Base style name")
	fmt.Fprintln(w, "      --styles-dir <path>   Directory of {name}.css styles")
	fmt.Fprintln(w, "      --syntax-style <name> Code highlighting style")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Output Control:")
	fmt.Fprintln(w, "  -q, --quiet               Only show errors")
	fmt.Fprintln(w, "  -v, --verbose             Show debug logs and timing")
	fmt.Fprintln(w, "      --print-config        Print the merged configuration and exit")
	fmt.Fprintln(w, "      --version             Print version and exit")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Environment:")
	fmt.Fprintln(w, "  MDCONVERT_CONFIG, MDCONVERT_STYLE, MDCONVERT_TIMEOUT, MDCONVERT_SECURITY,")
	fmt.Fprintln(w, "  MDCONVERT_OUTPUT, MDCONVERT_EXTRAS, MDCONVERT_PAGE_SIZE")
	fmt.Fprintln(w, "  ROD_BROWSER_BIN, ROD_NO_SANDBOX")
}
