package extras

import (
	"fmt"
	"strings"
)

// Built-in extra names, as accepted by Select and the --extras flag.
const (
	NameMermaid            = "mermaid"
	NameVegaLite           = "vega-lite"
	NameMath               = "math"
	NameSyntaxHighlighting = "syntax-highlighting"
	NameDynamicTables      = "dynamic-tables"
	NameDynamicQueries     = "dynamic-queries"
	NameTableOfContents    = "table-of-contents"
	NameHighlights         = "highlights"
	NameCustomSpans        = "custom-spans"
	NameCheckboxes         = "checkboxes"
)

// BuiltinConfig parameterizes the built-in extras.
type BuiltinConfig struct {
	// SyntaxStyle is the chroma style name for highlighted code.
	// Empty means DefaultSyntaxStyle.
	SyntaxStyle string
}

// Builtin returns every built-in extra in registration order.
func Builtin(cfg BuiltinConfig) []Extra {
	style := cfg.SyntaxStyle
	if style == "" {
		style = DefaultSyntaxStyle
	}
	return []Extra{
		mermaidExtra(),
		vegaLiteExtra(),
		mathExtra(),
		syntaxExtra(style),
		datasetTablesExtra(),
		datasetQueriesExtra(),
		tocExtra(),
		highlightExtra(),
		customSpanExtra(),
		checkboxExtra(),
	}
}

// BuiltinNames lists the names of the built-in extras.
func BuiltinNames() []string {
	all := Builtin(BuiltinConfig{})
	names := make([]string, len(all))
	for i, e := range all {
		names[i] = e.Name
	}
	return names
}

// Select returns the extras from all whose names appear in names, keeping
// the order of all. An unknown name returns ErrUnknownExtra.
func Select(all []Extra, names []string) ([]Extra, error) {
	wanted := make(map[string]bool, len(names))
	for _, n := range names {
		n = strings.TrimSpace(n)
		if n == "" {
			continue
		}
		wanted[n] = true
	}

	selected := make([]Extra, 0, len(wanted))
	for _, e := range all {
		if wanted[e.Name] {
			selected = append(selected, e)
			delete(wanted, e.Name)
		}
	}

	for n := range wanted {
		return nil, fmt.Errorf("%w: %q (available: %s)", ErrUnknownExtra, n, strings.Join(namesOf(all), ", "))
	}
	return selected, nil
}

func namesOf(all []Extra) []string {
	names := make([]string, len(all))
	for i, e := range all {
		names[i] = e.Name
	}
	return names
}
