package extras_test

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/mdconvert/markdown-convert/internal/extras"
)

func applyBuiltin(t *testing.T, html string) string {
	t.Helper()

	engine := extras.NewEngine(extras.Builtin(extras.BuiltinConfig{}))
	mem := extras.NewMemory(context.Background())
	t.Cleanup(func() { _ = mem.Close() })

	got, err := engine.Apply(context.Background(), html, mem)
	if err != nil {
		t.Fatalf("Apply() error = %v", err)
	}
	return got
}

// ---------------------------------------------------------------------------
// TestBuiltin_Inline - Highlights, custom spans and checkboxes
// ---------------------------------------------------------------------------

func TestBuiltin_Inline(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		input string
		want  string
	}{
		{
			name:  "highlight",
			input: `<p>a ==b== c</p>`,
			want:  `<p>a <span class="highlight">b</span> c</p>`,
		},
		{
			name:  "highlight with spaces inside",
			input: `<p>==two words==</p>`,
			want:  `<p><span class="highlight">two words</span></p>`,
		},
		{
			name:  "padded equals are not a highlight",
			input: `<p>a == b == c</p>`,
			want:  `<p>a == b == c</p>`,
		},
		{
			name:  "custom span",
			input: `<p>note{{ hello }}</p>`,
			want:  `<p><span class="note">hello</span></p>`,
		},
		{
			name:  "checkboxes",
			input: `<p>[ ] todo [x] done</p>`,
			want:  `<p><input type="checkbox" disabled="" /> todo <input type="checkbox" disabled="" checked="" /> done</p>`,
		},
		{
			name:  "highlight does not cross elements",
			input: "<p>x==y</p>\n<p>z==w</p>",
			want:  "<p>x==y</p>\n<p>z==w</p>",
		},
		{
			name:  "attribute values are left alone",
			input: `<p><a href="http://x/?a==b==" title="n{{ t }} [x]">==c==</a></p>`,
			want:  `<p><a href="http://x/?a==b==" title="n{{ t }} [x]"><span class="highlight">c</span></a></p>`,
		},
		{
			name:  "inline code is protected",
			input: `<p><code>==b== [x]</code> ==c==</p>`,
			want:  `<p><code>==b== [x]</code> <span class="highlight">c</span></p>`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if got := applyBuiltin(t, tt.input); got != tt.want {
				t.Errorf("Apply() = %q, want %q", got, tt.want)
			}
		})
	}
}

// ---------------------------------------------------------------------------
// TestBuiltin_TableOfContents - [TOC] markers
// ---------------------------------------------------------------------------

func TestBuiltin_TableOfContents(t *testing.T) {
	t.Parallel()

	headings := `<h1 id="intro">Intro</h1><h2 id="setup">Setup</h2><h3 id="deep">Deep</h3><h1 id="usage">Usage</h1>`

	tests := []struct {
		name  string
		input string
		want  string
	}{
		{
			name:  "nested list",
			input: `<p>[TOC]</p><h1 id="intro">Intro</h1><h2 id="setup">Setup</h2>`,
			want: `<ul class="toc"><li><a href="#intro">Intro</a><ul><li><a href="#setup">Setup</a></li></ul></li></ul>` +
				`<h1 id="intro">Intro</h1><h2 id="setup">Setup</h2>`,
		},
		{
			name:  "depth limits levels",
			input: `<p>[TOC depth=1]</p>` + headings,
			want:  `<ul class="toc"><li><a href="#intro">Intro</a></li><li><a href="#usage">Usage</a></li></ul>` + headings,
		},
		{
			name:  "no headings yields no list",
			input: `<p>[TOC]</p><p>text</p>`,
			want:  `<p>text</p>`,
		},
		{
			name:  "headings without id are skipped",
			input: `<p>[TOC]</p><h2>Anon</h2><h2 id="named">Named</h2>`,
			want:  `<ul class="toc"><li><a href="#named">Named</a></li></ul><h2>Anon</h2><h2 id="named">Named</h2>`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if got := applyBuiltin(t, tt.input); got != tt.want {
				t.Errorf("Apply() =\n%q\nwant\n%q", got, tt.want)
			}
		})
	}
}

const peopleTable = `<table>
<thead>
<tr>
<th>id</th>
<th>name</th>
</tr>
</thead>
<tbody>
<tr>
<td>1</td>
<td>a</td>
</tr>
<tr>
<td>2</td>
<td>b</td>
</tr>
</tbody>
</table>
`

// ---------------------------------------------------------------------------
// TestBuiltin_Datasets - Captioned tables are queryable
// ---------------------------------------------------------------------------

func TestBuiltin_Datasets(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name         string
		input        string
		wantContains []string
		wantExcludes []string
	}{
		{
			name: "scalar query",
			input: peopleTable + `<blockquote>
<p>[people] People list</p>
</blockquote>
<p>[query: select count(*) from people]</p>`,
			wantContains: []string{`<p class="table-description">People list</p>`, `<p>2</p>`},
			wantExcludes: []string{"blockquote", "[query:"},
		},
		{
			name: "caption without description",
			input: peopleTable + `<blockquote>
<p>[people]</p>
</blockquote>
<p>[query: select name from people where id = 2]</p>`,
			wantContains: []string{`<p>b</p>`},
			wantExcludes: []string{"blockquote", "table-description"},
		},
		{
			name: "table query",
			input: peopleTable + `<blockquote><p>[people]</p></blockquote>
<p>[query: select id, name from people order by id]</p>`,
			wantContains: []string{
				`<table class="query-result"><thead><tr><th>id</th><th>name</th></tr></thead>` +
					`<tbody><tr><td>1</td><td>a</td></tr><tr><td>2</td><td>b</td></tr></tbody></table>`,
			},
			wantExcludes: []string{"<p><table"},
		},
		{
			name: "query fence",
			input: peopleTable + `<blockquote><p>[people]</p></blockquote>
<pre><code class="language-query">select max(id) from people
</code></pre>`,
			wantContains: []string{`<p class="query-result">2</p>`},
			wantExcludes: []string{"language-query"},
		},
		{
			name: "code cells are stored as their text",
			input: `<table><thead><tr><th>k</th><th>v</th></tr></thead>
<tbody><tr><td><code>x</code></td><td>1</td></tr><tr><td><code>y</code></td><td>2</td></tr></tbody></table>
<blockquote><p>[codes]</p></blockquote>
<p>[query: select v from codes where k = 'x']</p>`,
			wantContains: []string{`<p>1</p>`, `<td><code>x</code></td>`},
			wantExcludes: []string{"[query:", "\uE010"},
		},
		{
			name:         "failing query keeps marker",
			input:        `<p>[query: select * from missing]</p>`,
			wantContains: []string{`<p>[query: select * from missing]</p>`},
		},
		{
			name:         "blockquote without table is left alone",
			input:        `<blockquote><p>[people] x</p></blockquote>`,
			wantContains: []string{`<blockquote><p>[people] x</p></blockquote>`},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got := applyBuiltin(t, tt.input)
			for _, want := range tt.wantContains {
				if !strings.Contains(got, want) {
					t.Errorf("output missing %q\ngot: %s", want, got)
				}
			}
			for _, exclude := range tt.wantExcludes {
				if strings.Contains(got, exclude) {
					t.Errorf("output should not contain %q\ngot: %s", exclude, got)
				}
			}
		})
	}
}

// ---------------------------------------------------------------------------
// TestBuiltin_Fences - Diagram, math and code fences
// ---------------------------------------------------------------------------

func TestBuiltin_Fences(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name         string
		input        string
		wantContains []string
		wantExcludes []string
	}{
		{
			name:         "mermaid",
			input:        "<pre><code class=\"language-mermaid\">graph TD; A--&gt;B\n</code></pre>",
			wantContains: []string{"<div class=\"mermaid\">graph TD; A--&gt;B\n</div>"},
			wantExcludes: []string{"<pre>"},
		},
		{
			name:         "vega-lite",
			input:        "<pre><code class=\"language-vega-lite\">{&quot;mark&quot;: &quot;bar&quot;}\n</code></pre>",
			wantContains: []string{`<div class="vega-lite"><script type="application/json">{"mark": "bar"}</script></div>`},
		},
		{
			name:         "invalid vega-lite stays a code block",
			input:        "<pre><code class=\"language-vega-lite\">{bad\n</code></pre>",
			wantContains: []string{"<pre><code class=\"language-vega-lite\">{bad\n</code></pre>"},
		},
		{
			name:         "math",
			input:        "<pre><code class=\"language-math\">E = mc^2\n</code></pre>",
			wantContains: []string{`<div class="math">\[E = mc^2\]</div>`},
		},
		{
			name:         "mermaid source is not rewritten",
			input:        "<pre><code class=\"language-mermaid\">graph LR\nA==&gt;B\nB==&gt;C\nC{{hexagon}} --&gt; D[x]\n</code></pre>",
			wantContains: []string{"<div class=\"mermaid\">graph LR\nA==&gt;B\nB==&gt;C\nC{{hexagon}} --&gt; D[x]\n</div>"},
			wantExcludes: []string{"<span", "<input"},
		},
		{
			name:         "math source is not rewritten",
			input:        "<pre><code class=\"language-math\">\\frac{{a}}{b} = [x] ==y==\n</code></pre>",
			wantContains: []string{`<div class="math">\[\frac{{a}}{b} = [x] ==y==\]</div>`},
			wantExcludes: []string{"<span", "<input"},
		},
		{
			name:         "highlighted code",
			input:        "<pre><code class=\"language-go\">package main\n</code></pre>",
			wantContains: []string{`class="chroma"`, "package"},
			wantExcludes: []string{"language-go"},
		},
		{
			name:         "unknown language stays plain",
			input:        "<pre><code class=\"language-nosuchlang\">x ==y==\n</code></pre>",
			wantContains: []string{"<pre><code class=\"language-nosuchlang\">x ==y==\n</code></pre>"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got := applyBuiltin(t, tt.input)
			for _, want := range tt.wantContains {
				if !strings.Contains(got, want) {
					t.Errorf("output missing %q\ngot: %s", want, got)
				}
			}
			for _, exclude := range tt.wantExcludes {
				if strings.Contains(got, exclude) {
					t.Errorf("output should not contain %q\ngot: %s", exclude, got)
				}
			}
		})
	}
}

// ---------------------------------------------------------------------------
// TestSyntaxCSS - Stylesheet generation
// ---------------------------------------------------------------------------

func TestSyntaxCSS(t *testing.T) {
	t.Parallel()

	for _, style := range []string{"", "github", "monokai", "no-such-style"} {
		css, err := extras.SyntaxCSS(style)
		if err != nil {
			t.Fatalf("SyntaxCSS(%q) error = %v", style, err)
		}
		if !strings.Contains(css, ".chroma") {
			t.Errorf("SyntaxCSS(%q) missing .chroma rules", style)
		}
	}
}

// ---------------------------------------------------------------------------
// TestSelect - Choosing extras by name
// ---------------------------------------------------------------------------

func TestSelect(t *testing.T) {
	t.Parallel()

	all := extras.Builtin(extras.BuiltinConfig{})

	t.Run("keeps registration order", func(t *testing.T) {
		t.Parallel()

		got, err := extras.Select(all, []string{"highlights", " mermaid", ""})
		if err != nil {
			t.Fatalf("Select() error = %v", err)
		}
		names := make([]string, len(got))
		for i, e := range got {
			names[i] = e.Name
		}
		if diff := cmp.Diff([]string{"mermaid", "highlights"}, names); diff != "" {
			t.Errorf("Select() mismatch (-want +got):\n%s", diff)
		}
	})

	t.Run("unknown name", func(t *testing.T) {
		t.Parallel()

		_, err := extras.Select(all, []string{"toc"})
		if !errors.Is(err, extras.ErrUnknownExtra) {
			t.Errorf("Select() error = %v, want ErrUnknownExtra", err)
		}
	})

	t.Run("builtin names", func(t *testing.T) {
		t.Parallel()

		if got := len(extras.BuiltinNames()); got != len(all) {
			t.Errorf("len(BuiltinNames()) = %d, want %d", got, len(all))
		}
	})
}

// ---------------------------------------------------------------------------
// TestMemory - Lazy store and idempotent Close
// ---------------------------------------------------------------------------

func TestMemory(t *testing.T) {
	t.Parallel()

	mem := extras.NewMemory(context.Background())
	if mem.HasDatasets() {
		t.Fatal("HasDatasets() = true before first use")
	}

	if _, err := mem.Datasets(); err != nil {
		t.Fatalf("Datasets() error = %v", err)
	}
	if !mem.HasDatasets() {
		t.Error("HasDatasets() = false after first use")
	}

	if err := mem.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}
	if err := mem.Close(); err != nil {
		t.Errorf("second Close() error = %v", err)
	}
	if _, err := mem.Datasets(); err == nil {
		t.Error("Datasets() after Close() should fail")
	}
}
