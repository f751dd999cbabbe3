package extras

import (
	"html"
	"regexp"
	"strings"

	"github.com/tidwall/gjson"
)

// Reserved fence languages handled by dedicated extras rather than the
// syntax highlighter.
const (
	LangMermaid  = "mermaid"
	LangVegaLite = "vega-lite"
	LangMath     = "math"
	LangQuery    = "query"
)

// Marker classes emitted for client-side runtimes. The document assembler
// looks for these to decide which runtime scripts to inject.
const (
	ClassMermaid  = "mermaid"
	ClassVegaLite = "vega-lite"
	ClassMath     = "math"
)

// fencePattern matches a fenced code block rendered with the given language.
func fencePattern(lang string) *regexp.Regexp {
	return regexp.MustCompile(`(?s)<pre><code class="language-` + regexp.QuoteMeta(lang) + `">(?P<code>.*?)</code></pre>`)
}

// mermaidExtra turns ```mermaid fences into containers mermaid.js hydrates.
// The escaped source is kept as is: the runtime reads textContent.
func mermaidExtra() Extra {
	return Extra{
		Name:    NameMermaid,
		Pattern: fencePattern(LangMermaid),
		Phase:   10,
		Replace: func(m Match, _ string, _ *Memory) Result {
			code := m.Group("code")
			if strings.TrimSpace(code) == "" {
				return Keepf("empty mermaid diagram")
			}
			return Replaced(`<div class="` + ClassMermaid + `">` + code + `</div>`)
		},
	}
}

// vegaLiteExtra turns ```vega-lite fences into containers with an embedded
// JSON spec for vega-embed. Invalid JSON keeps the code block.
func vegaLiteExtra() Extra {
	return Extra{
		Name:    NameVegaLite,
		Pattern: fencePattern(LangVegaLite),
		Phase:   10,
		Replace: func(m Match, _ string, _ *Memory) Result {
			spec := strings.TrimSpace(html.UnescapeString(m.Group("code")))
			if !gjson.Valid(spec) {
				return Keepf("invalid vega-lite spec: not valid JSON")
			}
			if !gjson.Get(spec, "@this").IsObject() {
				return Keepf("invalid vega-lite spec: top level must be an object")
			}
			spec = strings.ReplaceAll(spec, "</", `<\/`)
			return Replaced(`<div class="` + ClassVegaLite + `"><script type="application/json">` + spec + `</script></div>`)
		},
	}
}

// mathExtra turns ```math fences into display formulas for KaTeX auto-render.
func mathExtra() Extra {
	return Extra{
		Name:    NameMath,
		Pattern: fencePattern(LangMath),
		Phase:   10,
		Replace: func(m Match, _ string, _ *Memory) Result {
			formula := strings.ReplaceAll(strings.TrimSpace(m.Group("code")), "\n", " ")
			if formula == "" {
				return Keepf("empty math block")
			}
			return Replaced(`<div class="` + ClassMath + `">\[` + formula + `\]</div>`)
		},
	}
}
