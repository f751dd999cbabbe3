// Package mdconvert converts Markdown documents to PDF using headless Chrome.
//
// # Quick Start
//
// Create a converter, convert markdown, and close when done:
//
//	conv, err := mdconvert.NewConverter()
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer conv.Close()
//
//	result, err := conv.Convert(ctx, mdconvert.Input{
//	    Markdown: "# Hello\n\n==World==",
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	os.WriteFile("output.pdf", result.PDF, 0644)
//
// The result contains both the PDF bytes (result.PDF) and the assembled
// HTML (result.HTML) for debugging. Use Input.HTMLOnly to skip PDF generation.
// ConvertFile reads from and writes to disk, replacing the PDF atomically.
//
// # Conversion Pipeline
//
// The conversion process follows these stages:
//
//  1. Markdown preprocessing (line normalization, <pagebreak> markers)
//  2. Markdown to HTML conversion via Goldmark (GFM, footnotes, emoji)
//  3. Relative path rewriting and <section> wrapping
//  4. Extras: phase-ordered pattern rewrites over the HTML, with code,
//     pre, script and style regions protected from rewriting
//  5. Document assembly (stylesheets, content security policy, diagram
//     and math runtimes)
//  6. PDF rendering via headless Chrome (go-rod)
//
// # Extras
//
// Extras recognise markup Markdown has no syntax for:
//
//	==highlighted==              <span class="highlight">
//	note{{ text }}               <span class="note">
//	[ ] and [x]                  checkboxes
//	[TOC] or [TOC depth=2]       table of contents
//	```mermaid / vega-lite / math fenced diagrams and formulas
//	> [name] description         after a table: registers it as a dataset
//	[query: SELECT ...]          runs SQL over registered datasets
//
// A failing extra leaves its match untouched and logs a warning; it never
// fails the conversion. Select a subset with WithExtras or Input.Extras.
//
// # Configuration
//
// Use functional options to customize the converter:
//
//	conv, err := mdconvert.NewConverter(
//	    mdconvert.WithTimeout(2 * time.Minute),
//	    mdconvert.WithExtras("mermaid", "table-of-contents"),
//	    mdconvert.WithSecurity(mdconvert.SecurityStrict),
//	)
//
// # Live Conversion
//
// LiveConverter re-renders whenever the Markdown or CSS file changes:
//
//	live := mdconvert.NewLiveConverter(render, "notes.md", "style.css")
//	err := live.Run(ctx) // returns when ctx is canceled
//
// # Browser Requirements
//
// PDF generation requires Chrome/Chromium. The go-rod library automatically
// downloads a managed Chromium instance on first run (~/.cache/rod/browser/).
//
// For containers and CI environments, set ROD_NO_SANDBOX=1 to disable the
// Chrome sandbox. Use ROD_BROWSER_BIN to specify a custom Chrome binary.
package mdconvert
