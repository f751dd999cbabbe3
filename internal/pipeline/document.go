package pipeline

import (
	"encoding/base64"
	"html"
	"strings"

	"github.com/google/uuid"
)

// Security selects how much the assembled document may do at render time.
type Security int

const (
	// SecurityDefault allows nonce-bound scripts from the runtime CDN.
	SecurityDefault Security = iota
	// SecurityStrict disables every script and remote resource.
	SecurityStrict
)

// Content Security Policy building blocks.
const (
	strictCSP = "default-src 'none'; img-src file: data:; style-src 'unsafe-inline'; font-src file: data:; script-src 'none'"
	cdnOrigin = "https://cdn.jsdelivr.net"
)

// defaultTitle is used when DocumentOptions.Title is empty.
const defaultTitle = "Document"

// DocumentOptions configures AssembleDocument.
type DocumentOptions struct {
	CSS      string
	Security Security
	Title    string
}

// Document is an assembled, self-contained HTML page ready for rendering.
type Document struct {
	HTML  string
	Nonce string
	CSP   string

	// ReadyCheck is a JavaScript function expression that returns true
	// once every injected runtime has finished. Empty when no runtime was
	// injected.
	ReadyCheck string

	// Runtimes lists the injected client-side runtimes, in injection order.
	Runtimes []string
}

// runtime is a client-side library hydrating marker elements.
type runtime struct {
	name   string
	marker string
	head   string // stylesheets, placed in <head>
	body   string // scripts, placed at the end of <body>; %NONCE% is substituted
}

// Runtimes set window.__mdconvertDone[name] when finished, even on error,
// so rendering never waits for a broken diagram.
var runtimes = []runtime{
	{
		name:   "mermaid",
		marker: `class="mermaid"`,
		body: `<script type="module" nonce="%NONCE%">
import mermaid from "https://cdn.jsdelivr.net/npm/mermaid@11/dist/mermaid.esm.min.mjs";
try {
  mermaid.initialize({ startOnLoad: false });
  await mermaid.run({ querySelector: ".mermaid" });
} finally {
  (window.__mdconvertDone ||= {}).mermaid = true;
}
</script>`,
	},
	{
		name:   "vega-lite",
		marker: `class="vega-lite"`,
		body: `<script src="https://cdn.jsdelivr.net/npm/vega@5" nonce="%NONCE%"></script>
<script src="https://cdn.jsdelivr.net/npm/vega-lite@5" nonce="%NONCE%"></script>
<script src="https://cdn.jsdelivr.net/npm/vega-embed@6" nonce="%NONCE%"></script>
<script nonce="%NONCE%">
(function () {
  var jobs = Array.prototype.map.call(document.querySelectorAll("div.vega-lite"), function (el) {
    try {
      var spec = JSON.parse(el.querySelector("script[type='application/json']").textContent);
      return vegaEmbed(el, spec, { actions: false, renderer: "svg" });
    } catch (e) {
      return Promise.reject(e);
    }
  });
  Promise.allSettled(jobs).then(function () {
    (window.__mdconvertDone = window.__mdconvertDone || {})["vega-lite"] = true;
  });
})();
</script>`,
	},
	{
		name:   "math",
		marker: `class="math"`,
		head:   `<link rel="stylesheet" href="https://cdn.jsdelivr.net/npm/katex@0.16/dist/katex.min.css">`,
		body: `<script src="https://cdn.jsdelivr.net/npm/katex@0.16/dist/katex.min.js" nonce="%NONCE%"></script>
<script src="https://cdn.jsdelivr.net/npm/katex@0.16/dist/contrib/auto-render.min.js" nonce="%NONCE%"></script>
<script nonce="%NONCE%">
try {
  document.querySelectorAll("div.math").forEach(function (el) {
    renderMathInElement(el, { delimiters: [{ left: "\\[", right: "\\]", display: true }], throwOnError: false });
  });
} finally {
  (window.__mdconvertDone = window.__mdconvertDone || {}).math = true;
}
</script>`,
	},
}

// AssembleDocument wraps an HTML body fragment in a complete page with a
// Content Security Policy, the stylesheet and whatever runtimes the body
// needs. Runtimes are never injected in strict mode.
func AssembleDocument(body string, opts DocumentOptions) Document {
	nonce := newNonce()

	title := opts.Title
	if strings.TrimSpace(title) == "" {
		title = defaultTitle
	}

	var needed []runtime
	if opts.Security != SecurityStrict {
		for _, rt := range runtimes {
			if strings.Contains(body, rt.marker) {
				needed = append(needed, rt)
			}
		}
	}

	doc := Document{
		Nonce: nonce,
		CSP:   contentSecurityPolicy(opts.Security, nonce),
	}

	var head, tail strings.Builder
	for _, rt := range needed {
		head.WriteString(rt.head)
		tail.WriteString(strings.ReplaceAll(rt.body, "%NONCE%", nonce))
		tail.WriteString("\n")
		doc.Runtimes = append(doc.Runtimes, rt.name)
	}
	doc.ReadyCheck = readyCheck(doc.Runtimes)

	var b strings.Builder
	b.Grow(len(body) + len(opts.CSS) + tail.Len() + 512)
	b.WriteString("<!DOCTYPE html>\n<html>\n<head>\n<meta charset=\"utf-8\">\n")
	b.WriteString(`<meta http-equiv="Content-Security-Policy" content="`)
	b.WriteString(html.EscapeString(doc.CSP))
	b.WriteString("\">\n<title>")
	b.WriteString(html.EscapeString(title))
	b.WriteString("</title>\n")
	b.WriteString(head.String())
	if opts.CSS != "" {
		b.WriteString("<style>")
		b.WriteString(sanitizeCSS(opts.CSS))
		b.WriteString("</style>\n")
	}
	b.WriteString("</head>\n<body>\n")
	b.WriteString(body)
	b.WriteString("\n")
	b.WriteString(tail.String())
	b.WriteString("</body>\n</html>\n")

	doc.HTML = b.String()
	return doc
}

// contentSecurityPolicy returns the policy for a security level.
func contentSecurityPolicy(level Security, nonce string) string {
	if level == SecurityStrict {
		return strictCSP
	}
	return "default-src 'none'; img-src * data: file:; style-src 'unsafe-inline' " + cdnOrigin +
		"; font-src * data:; script-src 'nonce-" + nonce + "' " + cdnOrigin
}

// readyCheck builds the predicate the renderer polls before printing.
func readyCheck(names []string) string {
	if len(names) == 0 {
		return ""
	}
	conds := make([]string, len(names))
	for i, n := range names {
		conds[i] = `d["` + n + `"] === true`
	}
	return "() => { const d = window.__mdconvertDone || {}; return " + strings.Join(conds, " && ") + "; }"
}

// newNonce returns a fresh base64 nonce from 16 random bytes.
func newNonce() string {
	id := uuid.New()
	return base64.StdEncoding.EncodeToString(id[:])
}

// sanitizeCSS escapes sequences that could break out of a <style> block.
func sanitizeCSS(css string) string {
	return strings.ReplaceAll(css, "</", `<\/`)
}
