package extras

import (
	"errors"
	"strings"
	"testing"
)

// ---------------------------------------------------------------------------
// TestProtector_RoundTrip - Stash then Restore is the identity
// ---------------------------------------------------------------------------

func TestProtector_RoundTrip(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		html string
	}{
		{
			name: "no literal regions",
			html: `<p>plain ==text==</p>`,
		},
		{
			name: "pre code block",
			html: `<p>a</p><pre><code class="language-go">x ==y== [x]</code></pre><p>b</p>`,
		},
		{
			name: "inline code",
			html: `<p>use <code>a{{ b }}</code> here</p>`,
		},
		{
			name: "script and style",
			html: `<style>.a{}</style><script type="application/json">{"a":1}</script>`,
		},
		{
			name: "uppercase tags",
			html: `<PRE>==x==</PRE>`,
		},
		{
			name: "diagram and formula containers",
			html: `<div class="mermaid">A==&gt;B</div><p>x</p><div class="math">\[\frac{{a}}{b}\]</div>`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			p := NewProtector(nil)
			stashed, stash := p.Stash(tt.html)
			for _, original := range stash {
				if strings.Contains(stashed, original) {
					t.Errorf("Stash() left region %q in output", original)
				}
			}

			got, err := p.Restore(stashed, stash)
			if err != nil {
				t.Fatalf("Restore() error = %v", err)
			}
			if got != tt.html {
				t.Errorf("Restore() = %q, want %q", got, tt.html)
			}
		})
	}
}

// ---------------------------------------------------------------------------
// TestProtector_RuntimeContainers - Only runtime source divs are literal
// ---------------------------------------------------------------------------

func TestProtector_RuntimeContainers(t *testing.T) {
	t.Parallel()

	html := `<div class="mermaid">A{{x}}</div><div class="note">==keep visible==</div><div class="math">\[x\]</div>`

	stashed, stash := NewProtector(nil).Stash(html)

	if len(stash) != 2 {
		t.Errorf("len(stash) = %d, want 2: %q", len(stash), stashed)
	}
	if strings.Contains(stashed, "{{x}}") || strings.Contains(stashed, `\[x\]`) {
		t.Errorf("runtime source left visible: %q", stashed)
	}
	if !strings.Contains(stashed, `<div class="note">==keep visible==</div>`) {
		t.Errorf("ordinary div was stashed: %q", stashed)
	}
}

// ---------------------------------------------------------------------------
// TestProtector_Bypass - Bypass classes keep regions visible
// ---------------------------------------------------------------------------

func TestProtector_Bypass(t *testing.T) {
	t.Parallel()

	html := `<pre><code class="language-query">select 1</code></pre><pre><code class="language-go">x</code></pre>`

	p := NewProtector([]string{"language-query", " "})
	stashed, stash := p.Stash(html)

	if !strings.Contains(stashed, `<code class="language-query">select 1</code>`) {
		t.Errorf("bypassed region was stashed: %q", stashed)
	}
	if strings.Contains(stashed, "language-go") {
		t.Errorf("non-bypassed region was not stashed: %q", stashed)
	}
	if len(stash) != 1 {
		t.Errorf("len(stash) = %d, want 1", len(stash))
	}
}

// ---------------------------------------------------------------------------
// TestProtector_TokenCollision - Tokens already in the document are skipped
// ---------------------------------------------------------------------------

func TestProtector_TokenCollision(t *testing.T) {
	t.Parallel()

	existing := tokenStart + "1" + tokenEnd
	html := `<p>` + existing + `</p><pre>code</pre>`

	p := NewProtector(nil)
	stashed, stash := p.Stash(html)

	if _, ok := stash[existing]; ok {
		t.Fatalf("Stash() reused token already present in document")
	}

	got, err := p.Restore(stashed, stash)
	if err != nil {
		t.Fatalf("Restore() error = %v", err)
	}
	if got != html {
		t.Errorf("Restore() = %q, want %q", got, html)
	}
}

// ---------------------------------------------------------------------------
// TestProtector_RestoreLost - Missing tokens are reported, not fatal
// ---------------------------------------------------------------------------

func TestProtector_RestoreLost(t *testing.T) {
	t.Parallel()

	p := NewProtector(nil)
	stashed, stash := p.Stash(`<pre>a</pre><pre>b</pre>`)

	// Drop the first token to simulate an Extra that swallowed it.
	var dropped string
	for token := range stash {
		dropped = token
		break
	}
	mangled := strings.Replace(stashed, dropped, "", 1)

	got, err := p.Restore(mangled, stash)
	if !errors.Is(err, ErrPlaceholderLost) {
		t.Fatalf("Restore() error = %v, want ErrPlaceholderLost", err)
	}
	if strings.Contains(got, tokenStart) {
		t.Errorf("Restore() left tokens behind: %q", got)
	}
	if strings.Count(got, "<pre>") != 1 {
		t.Errorf("Restore() = %q, want the surviving region restored", got)
	}
}
