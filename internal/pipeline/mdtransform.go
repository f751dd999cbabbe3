package pipeline

import (
	"context"
	"regexp"
	"strings"
)

// PageBreakPlaceholder marks a manual page break between preprocessing and
// HTML conversion. It is a Unicode Private Use Area character, so Goldmark
// passes it through unchanged without WithUnsafe.
const PageBreakPlaceholder = "\uE020"

// PageBreakHTML is the element a <pagebreak> line becomes.
const PageBreakHTML = `<div class="page-break"></div>`

var (
	// Line ending normalization
	crlfOrCR = regexp.MustCompile(`\r\n?`)

	// Compress multiple blank lines to max 2
	multipleBlankLines = regexp.MustCompile(`\n{3,}`)

	// A line holding only <pagebreak> (or <pagebreak/>).
	pageBreakLine = regexp.MustCompile(`(?im)^[ \t]*<pagebreak\s*/?>[ \t]*$`)

	// The paragraph Goldmark wraps around a lone placeholder.
	pageBreakParagraph = regexp.MustCompile(`<p>\s*` + PageBreakPlaceholder + `\s*</p>`)
)

// MarkdownPreprocessor defines the contract for markdown preprocessing.
type MarkdownPreprocessor interface {
	PreprocessMarkdown(ctx context.Context, content string) string
}

// CommonMarkPreprocessor applies transformations before CommonMark conversion.
type CommonMarkPreprocessor struct{}

// PreprocessMarkdown applies all transformations to prepare Markdown for conversion.
func (p *CommonMarkPreprocessor) PreprocessMarkdown(ctx context.Context, content string) string {
	if ctx.Err() != nil {
		return content
	}

	content = normalizeLineEndings(content)
	content = markPageBreaks(content)
	content = compressBlankLines(content)
	return content
}

// normalizeLineEndings converts \r\n and \r to \n.
func normalizeLineEndings(content string) string {
	return crlfOrCR.ReplaceAllString(content, "\n")
}

// compressBlankLines limits consecutive blank lines to 2 maximum.
func compressBlankLines(content string) string {
	return multipleBlankLines.ReplaceAllString(content, "\n\n")
}

// markPageBreaks replaces <pagebreak> lines with a placeholder paragraph.
// Blank lines around it keep it from merging into adjacent paragraphs.
func markPageBreaks(content string) string {
	return pageBreakLine.ReplaceAllString(content, "\n"+PageBreakPlaceholder+"\n")
}

// ConvertPageBreaks turns page break placeholders in rendered HTML into
// page-break elements.
func ConvertPageBreaks(htmlContent string) string {
	if !strings.Contains(htmlContent, PageBreakPlaceholder) {
		return htmlContent
	}
	htmlContent = pageBreakParagraph.ReplaceAllString(htmlContent, PageBreakHTML)
	return strings.ReplaceAll(htmlContent, PageBreakPlaceholder, PageBreakHTML)
}
