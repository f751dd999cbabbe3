// Package pipeline implements the Markdown-to-HTML stages of a conversion.
//
// The stages run in this order:
//   - Markdown preprocessing (line normalization, page break markers)
//   - Markdown to HTML fragment conversion via Goldmark
//   - Relative path rewriting to file:// URLs
//   - Section wrapping around headings
//   - Document assembly: CSP, stylesheet, client-side runtimes
//
// The extras stage runs between section wrapping and document assembly and
// lives in the extras package. PDF generation is handled separately by the
// root package using headless Chrome (go-rod).
package pipeline
