package extras

import (
	"fmt"
	"html"
	"regexp"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// DefaultTOCDepth is the deepest heading level listed when [TOC] has no depth.
const DefaultTOCDepth = 3

// tocPattern matches [TOC] and [TOC depth=N], swallowing the paragraph that
// Goldmark wraps around a marker written on its own line.
var tocPattern = regexp.MustCompile(`(?P<open><p>\s*)?\[TOC(?:\s+depth=(?P<depth>\d+))?\](?P<close>\s*</p>)?`)

// tocExtra generates a nested list of links to identified headings.
func tocExtra() Extra {
	return Extra{
		Name:    NameTableOfContents,
		Pattern: tocPattern,
		Phase:   PhaseGeneral,
		Replace: replaceTOC,
	}
}

func replaceTOC(m Match, doc string, _ *Memory) Result {
	depth := DefaultTOCDepth
	if d := m.Group("depth"); d != "" {
		n, err := strconv.Atoi(d)
		if err != nil {
			return Keepf("invalid TOC depth %q: %v", d, err)
		}
		depth = min(max(n, 1), 6)
	}

	headings, err := collectHeadings(doc, depth)
	if err != nil {
		return KeepOriginal(err)
	}

	return Replaced(unwrapParagraph(m, buildTOC(headings)))
}

// tocHeading is a heading that can be linked to.
type tocHeading struct {
	level int
	id    string
	text  string
}

// collectHeadings returns h1..h{depth} elements that carry an id, in
// document order.
func collectHeadings(doc string, depth int) ([]tocHeading, error) {
	root, err := goquery.NewDocumentFromReader(strings.NewReader(doc))
	if err != nil {
		return nil, fmt.Errorf("parsing headings: %w", err)
	}

	selectors := make([]string, 0, depth)
	for i := 1; i <= depth; i++ {
		selectors = append(selectors, "h"+strconv.Itoa(i))
	}

	var headings []tocHeading
	root.Find(strings.Join(selectors, ", ")).Each(func(_ int, sel *goquery.Selection) {
		id, ok := sel.Attr("id")
		if !ok || id == "" {
			return
		}
		level, _ := strconv.Atoi(goquery.NodeName(sel)[1:])
		headings = append(headings, tocHeading{
			level: level,
			id:    id,
			text:  strings.TrimSpace(sel.Text()),
		})
	})
	return headings, nil
}

// tocItem and tocList form the nested list tree.
type tocItem struct {
	heading tocHeading
	sub     []*tocList
}

type tocList struct {
	items []*tocItem
}

// buildTOC nests headings by level. A heading deeper than its predecessor
// opens a sub-list under the last item of the nearest shallower level; when
// no such item exists it joins that level's list instead.
func buildTOC(headings []tocHeading) string {
	if len(headings) == 0 {
		return ""
	}

	root := &tocList{}
	active := map[int]*tocList{0: root}
	lastItem := map[int]*tocItem{}

	for _, h := range headings {
		if _, ok := active[h.level]; !ok {
			parent := 0
			for lvl := range active {
				if lvl < h.level && lvl > parent {
					parent = lvl
				}
			}
			if item := lastItem[parent]; item != nil {
				sub := &tocList{}
				item.sub = append(item.sub, sub)
				active[h.level] = sub
			} else {
				active[h.level] = active[parent]
			}
		}

		for lvl := range active {
			if lvl > h.level {
				delete(active, lvl)
			}
		}

		item := &tocItem{heading: h}
		active[h.level].items = append(active[h.level].items, item)
		lastItem[h.level] = item
	}

	var b strings.Builder
	writeTOCList(&b, root, true)
	return b.String()
}

func writeTOCList(b *strings.Builder, l *tocList, top bool) {
	if top {
		b.WriteString(`<ul class="toc">`)
	} else {
		b.WriteString(`<ul>`)
	}
	for _, item := range l.items {
		b.WriteString(`<li><a href="#`)
		b.WriteString(html.EscapeString(item.heading.id))
		b.WriteString(`">`)
		b.WriteString(html.EscapeString(item.heading.text))
		b.WriteString(`</a>`)
		for _, sub := range item.sub {
			writeTOCList(b, sub, false)
		}
		b.WriteString(`</li>`)
	}
	b.WriteString(`</ul>`)
}

// unwrapParagraph drops the <p>…</p> captured around a block-level marker
// and keeps it otherwise.
func unwrapParagraph(m Match, block string) string {
	openTag, closeTag := m.Group("open"), m.Group("close")
	if openTag != "" && closeTag != "" {
		return block
	}
	return openTag + block + closeTag
}
