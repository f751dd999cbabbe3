package pipeline

import (
	"strconv"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// literalElements hold text, never structure to wrap.
var literalElements = map[atom.Atom]bool{
	atom.Pre:    true,
	atom.Code:   true,
	atom.Script: true,
	atom.Style:  true,
}

// WrapSections groups content under <section> elements. Each h{level}
// heading opens a section holding the heading and its following siblings,
// up to the next h{level} sibling or the end of the parent. Content before
// the first heading of a parent stays unwrapped.
//
// A level outside 1..6 returns the HTML unchanged.
func WrapSections(htmlContent string, level int) (string, error) {
	if level < 1 || level > 6 || strings.TrimSpace(htmlContent) == "" {
		return htmlContent, nil
	}
	heading := atom.Lookup([]byte("h" + strconv.Itoa(level)))

	root, err := parseFragment(htmlContent)
	if err != nil {
		return "", err
	}
	wrapChildren(root, heading)
	return renderFragment(root)
}

// wrapChildren wraps nested containers first, then the children of parent.
func wrapChildren(parent *html.Node, heading atom.Atom) {
	if parent.Type == html.ElementNode && literalElements[parent.DataAtom] {
		return
	}
	for c := parent.FirstChild; c != nil; c = c.NextSibling {
		wrapChildren(c, heading)
	}
	if isSectionFor(parent, heading) {
		return
	}

	var section *html.Node
	for c := parent.FirstChild; c != nil; {
		next := c.NextSibling
		if c.Type == html.ElementNode && c.DataAtom == heading {
			section = &html.Node{Type: html.ElementNode, DataAtom: atom.Section, Data: "section"}
			parent.InsertBefore(section, c)
		}
		if section != nil {
			parent.RemoveChild(c)
			section.AppendChild(c)
		}
		c = next
	}
}

// isSectionFor reports whether n is a section already opened by heading, so
// wrapping twice does not nest.
func isSectionFor(n *html.Node, heading atom.Atom) bool {
	if n.Type != html.ElementNode || n.DataAtom != atom.Section {
		return false
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.ElementNode {
			return c.DataAtom == heading
		}
	}
	return false
}

// parseFragment parses an HTML body fragment into a container node.
func parseFragment(content string) (*html.Node, error) {
	body := &html.Node{
		Type:     html.ElementNode,
		DataAtom: atom.Body,
		Data:     "body",
	}
	nodes, err := html.ParseFragment(strings.NewReader(content), body)
	if err != nil {
		return nil, err
	}

	container := &html.Node{Type: html.DocumentNode}
	for _, n := range nodes {
		container.AppendChild(n)
	}
	return container, nil
}

// renderFragment renders the children of a container built by parseFragment.
func renderFragment(container *html.Node) (string, error) {
	var buf strings.Builder
	for c := container.FirstChild; c != nil; c = c.NextSibling {
		if err := html.Render(&buf, c); err != nil {
			return "", err
		}
	}
	return buf.String(), nil
}
