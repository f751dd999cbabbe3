package extras

import (
	"bytes"
	"fmt"
	"html"
	"regexp"
	"slices"
	"strings"

	"github.com/alecthomas/chroma/v2"
	chromahtml "github.com/alecthomas/chroma/v2/formatters/html"
	"github.com/alecthomas/chroma/v2/lexers"
	"github.com/alecthomas/chroma/v2/styles"
)

// DefaultSyntaxStyle is the chroma style used for code blocks.
const DefaultSyntaxStyle = "github"

// codeFencePattern matches any fenced code block that names a language.
var codeFencePattern = regexp.MustCompile(`(?s)<pre><code class="language-(?P<lang>[^"\s]+)">(?P<code>.*?)</code></pre>`)

// reservedLanguages are fences owned by other extras.
var reservedLanguages = []string{LangMermaid, LangVegaLite, LangMath, LangQuery}

// newCodeFormatter returns the chroma formatter shared by highlighting and
// stylesheet generation. Classes keep the markup small and let the
// stylesheet control colors.
func newCodeFormatter() *chromahtml.Formatter {
	return chromahtml.New(chromahtml.WithClasses(true))
}

// syntaxExtra highlights fenced code blocks with chroma. Blocks without a
// known lexer stay plain.
func syntaxExtra(styleName string) Extra {
	style := styles.Get(styleName)
	formatter := newCodeFormatter()

	return Extra{
		Name:    NameSyntaxHighlighting,
		Pattern: codeFencePattern,
		Phase:   20,
		Replace: func(m Match, _ string, _ *Memory) Result {
			lang := strings.ToLower(m.Group("lang"))
			if slices.Contains(reservedLanguages, lang) {
				return KeepOriginal(nil)
			}

			lexer := lexers.Get(lang)
			if lexer == nil {
				return KeepOriginal(nil)
			}
			lexer = chroma.Coalesce(lexer)

			iterator, err := lexer.Tokenise(nil, html.UnescapeString(m.Group("code")))
			if err != nil {
				return Keepf("tokenising %s: %v", lang, err)
			}

			var buf bytes.Buffer
			if err := formatter.Format(&buf, style, iterator); err != nil {
				return Keepf("formatting %s: %v", lang, err)
			}
			return Replaced(buf.String())
		},
	}
}

// SyntaxCSS returns the stylesheet for highlighted code in the named chroma
// style. Unknown names fall back to chroma's default style.
func SyntaxCSS(styleName string) (string, error) {
	if styleName == "" {
		styleName = DefaultSyntaxStyle
	}
	var buf bytes.Buffer
	if err := newCodeFormatter().WriteCSS(&buf, styles.Get(styleName)); err != nil {
		return "", fmt.Errorf("generating code stylesheet: %w", err)
	}
	return buf.String(), nil
}
