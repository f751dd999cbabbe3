// Package extras implements the HTML rewrite stage that runs after Markdown
// conversion.
//
// An Extra is a named rule value: a regular expression with named capture
// groups, an execution phase, an optional stash bypass class and a rewrite
// function. The Engine applies an ordered set of Extras to a complete HTML
// fragment in two groups:
//
//	phase < 50   runs on raw HTML, can rewrite inside <pre>/<code> blocks
//	             (diagram fences, syntax highlighting)
//	phase >= 50  runs after literal regions (code, pre, script, style) are
//	             replaced by placeholders, so ==marks== inside a code sample
//	             are never touched
//
// Each Extra runs to a fixpoint before the next one starts. A rewrite that
// fails keeps the matched text verbatim and is logged as a warning; it never
// aborts the document conversion.
package extras

import (
	"errors"
	"fmt"
	"regexp"
)

// Phase boundaries.
const (
	// PhaseStash is the first phase that runs on stashed HTML.
	PhaseStash = 50

	// PhaseGeneral is the first phase for general-purpose inline rewrites.
	PhaseGeneral = 100
)

// Sentinel errors for Extra application.
var (
	ErrUnknownExtra    = errors.New("unknown extra")
	ErrIterationLimit  = errors.New("extra exceeded iteration limit")
	ErrPlaceholderLost = errors.New("placeholder missing at restore")
	ErrRewritePanic    = errors.New("rewrite function panicked")
)

// Match is one regular expression match handed to a ReplaceFunc.
type Match struct {
	Text   string            // full matched text
	Groups map[string]string // named capture groups; unmatched groups are ""
	Start  int               // byte offset in the document
	End    int
}

// Group returns the named capture group, or "" when absent.
func (m Match) Group(name string) string {
	return m.Groups[name]
}

// Result is the tagged outcome of a ReplaceFunc: either replacement text or
// an instruction to keep the original match.
type Result struct {
	Text string
	Keep bool
	Err  error // diagnostic detail when Keep is set; nil means "skip silently"
}

// Replaced returns a Result that substitutes the match with s.
func Replaced(s string) Result {
	return Result{Text: s}
}

// KeepOriginal returns a Result that leaves the match untouched.
// A non-nil err is logged as a warning by the engine.
func KeepOriginal(err error) Result {
	return Result{Keep: true, Err: err}
}

// Keepf is KeepOriginal with a formatted error.
func Keepf(format string, args ...any) Result {
	return KeepOriginal(fmt.Errorf(format, args...))
}

// ReplaceFunc rewrites one match. doc is the whole document as it was when
// the current pass started; it is read-only context (e.g. for collecting
// headings) and must not be assumed to reflect earlier replacements of the
// same pass.
type ReplaceFunc func(m Match, doc string, mem *Memory) Result

// Extra is an immutable rewrite rule.
type Extra struct {
	Name        string
	Pattern     *regexp.Regexp
	Phase       int
	BypassClass string // literal regions carrying this class are not stashed
	Replace     ReplaceFunc
}

// preStash reports whether the Extra runs before literal regions are stashed.
func (e Extra) preStash() bool {
	return e.Phase < PhaseStash
}

// newMatch builds a Match from submatch indexes.
func newMatch(re *regexp.Regexp, doc string, loc []int) Match {
	m := Match{
		Text:   doc[loc[0]:loc[1]],
		Groups: make(map[string]string, re.NumSubexp()),
		Start:  loc[0],
		End:    loc[1],
	}
	for i, name := range re.SubexpNames() {
		if i == 0 || name == "" {
			continue
		}
		if loc[2*i] >= 0 {
			m.Groups[name] = doc[loc[2*i]:loc[2*i+1]]
		} else if _, ok := m.Groups[name]; !ok {
			m.Groups[name] = ""
		}
	}
	return m
}
