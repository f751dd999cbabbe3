package extras

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// Placeholder delimiters use Unicode Private Use Area characters, which
// Goldmark passes through and no Extra pattern matches.
const (
	tokenStart = "\uE010"
	tokenEnd   = "\uE011"
)

var (
	// literalRegion matches a complete code, pre, script or style element,
	// and the diagram and formula containers the fence extras emit, whose
	// text is source for a client-side runtime. Leftmost-first alternation
	// stashes a <pre><code> block as one region.
	literalRegion = regexp.MustCompile(`(?is)<pre\b[^>]*>.*?</pre\s*>|<code\b[^>]*>.*?</code\s*>|<script\b[^>]*>.*?</script\s*>|<style\b[^>]*>.*?</style\s*>` +
		`|<div class="(?:` + ClassMermaid + `|` + ClassMath + `)">.*?</div\s*>`)

	// leadingTags matches the run of opening tags that starts a region,
	// e.g. `<pre><code class="language-query">`.
	leadingTags = regexp.MustCompile(`^(?:<[^/!][^>]*>\s*)+`)

	// classAttr extracts class attribute values from a tag run.
	classAttr = regexp.MustCompile(`(?i)\bclass\s*=\s*(?:"([^"]*)"|'([^']*)'|([^\s"'>]+))`)
)

// Placeholders maps opaque tokens to the literal text they replaced.
type Placeholders map[string]string

// Protector stashes literal regions behind placeholder tokens and restores
// them. A Protector is used for a single conversion: its token counter only
// grows, so tokens are unique within that conversion.
type Protector struct {
	bypass  []string
	counter int
}

// NewProtector creates a Protector. Regions whose leading tags carry any of
// bypassClasses are left in place.
func NewProtector(bypassClasses []string) *Protector {
	var bypass []string
	for _, c := range bypassClasses {
		if c = strings.TrimSpace(c); c != "" {
			bypass = append(bypass, c)
		}
	}
	return &Protector{bypass: bypass}
}

// Stash replaces every literal region in html with a unique token.
func (p *Protector) Stash(html string) (string, Placeholders) {
	stash := make(Placeholders)

	out := literalRegion.ReplaceAllStringFunc(html, func(region string) string {
		if p.bypassed(region) {
			return region
		}
		token := p.nextToken(html)
		stash[token] = region
		return token
	})

	return out, stash
}

// Restore substitutes every token in html with its original text. Tokens that
// no longer occur in html are reported with ErrPlaceholderLost; the returned
// HTML still contains every token that could be restored.
func (p *Protector) Restore(html string, stash Placeholders) (string, error) {
	if len(stash) == 0 {
		return html, nil
	}

	pairs := make([]string, 0, 2*len(stash))
	var lost []string
	for token, original := range stash {
		if !strings.Contains(html, token) {
			lost = append(lost, strings.Trim(token, tokenStart+tokenEnd))
			continue
		}
		pairs = append(pairs, token, original)
	}

	if len(pairs) > 0 {
		html = strings.NewReplacer(pairs...).Replace(html)
	}

	if len(lost) > 0 {
		return html, fmt.Errorf("%w: tokens %s", ErrPlaceholderLost, strings.Join(lost, ", "))
	}
	return html, nil
}

// nextToken returns a fresh token that does not occur in doc.
func (p *Protector) nextToken(doc string) string {
	for {
		p.counter++
		token := tokenStart + strconv.Itoa(p.counter) + tokenEnd
		if !strings.Contains(doc, token) {
			return token
		}
	}
}

// bypassed reports whether region's leading tags carry a bypass class.
func (p *Protector) bypassed(region string) bool {
	if len(p.bypass) == 0 {
		return false
	}
	head := leadingTags.FindString(region)
	for _, m := range classAttr.FindAllStringSubmatch(head, -1) {
		value := m[1] + m[2] + m[3]
		for _, class := range strings.Fields(value) {
			for _, b := range p.bypass {
				if class == b {
					return true
				}
			}
		}
	}
	return false
}
