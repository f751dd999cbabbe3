package extras

import (
	"regexp"
	"strings"
)

// Inline extras rewrite author markup inside paragraphs. They run after
// literal regions are stashed, so code samples are never rewritten. Markup
// that falls inside a tag, such as an href or alt value, is left alone.

var (
	highlightPattern  = regexp.MustCompile(`==(?P<content>[^\s=<>"](?:[^=<>"]*?[^\s=<>"])?)==`)
	customSpanPattern = regexp.MustCompile(`\b(?P<cls>[A-Za-z][\w-]*)\{\{\s*(?P<content>.*?)\s*\}\}`)
	checkboxPattern   = regexp.MustCompile(`\[(?P<checkbox>[ xX])\]`)
)

// highlightExtra turns ==text== into a highlighted span.
func highlightExtra() Extra {
	return Extra{
		Name:    NameHighlights,
		Pattern: highlightPattern,
		Phase:   110,
		Replace: func(m Match, doc string, _ *Memory) Result {
			if insideTag(doc, m.Start) {
				return KeepOriginal(nil)
			}
			return Replaced(`<span class="highlight">` + m.Group("content") + `</span>`)
		},
	}
}

// customSpanExtra turns cls{{ text }} into <span class="cls">text</span>.
func customSpanExtra() Extra {
	return Extra{
		Name:    NameCustomSpans,
		Pattern: customSpanPattern,
		Phase:   110,
		Replace: func(m Match, doc string, _ *Memory) Result {
			if insideTag(doc, m.Start) {
				return KeepOriginal(nil)
			}
			return Replaced(`<span class="` + m.Group("cls") + `">` + m.Group("content") + `</span>`)
		},
	}
}

// checkboxExtra renders [ ] and [x] outside of GFM task lists.
func checkboxExtra() Extra {
	return Extra{
		Name:    NameCheckboxes,
		Pattern: checkboxPattern,
		Phase:   120,
		Replace: func(m Match, doc string, _ *Memory) Result {
			if insideTag(doc, m.Start) {
				return KeepOriginal(nil)
			}
			if strings.EqualFold(m.Group("checkbox"), "x") {
				return Replaced(`<input type="checkbox" disabled="" checked="" />`)
			}
			return Replaced(`<input type="checkbox" disabled="" />`)
		},
	}
}

// insideTag reports whether pos lies between a tag's angle brackets. Text
// content never holds a raw '<', so the nearest one before pos decides.
func insideTag(doc string, pos int) bool {
	open := strings.LastIndexByte(doc[:pos], '<')
	return open > strings.LastIndexByte(doc[:pos], '>')
}
