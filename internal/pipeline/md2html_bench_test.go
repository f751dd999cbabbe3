//go:build bench

package pipeline

import (
	"context"
	"fmt"
	"strings"
	"testing"
)

// BenchmarkStages measures each fragment stage on the same report-sized
// document so their costs can be compared directly.
func BenchmarkStages(b *testing.B) {
	ctx := context.Background()
	md := benchReport(50)
	fragment, err := NewGoldmarkConverter().ToHTML(ctx, md)
	if err != nil {
		b.Fatal(err)
	}

	b.Run("markdown", func(b *testing.B) {
		converter := NewGoldmarkConverter()
		b.ReportAllocs()
		for b.Loop() {
			if _, err := converter.ToHTML(ctx, md); err != nil {
				b.Fatal(err)
			}
		}
	})

	b.Run("rewrite_paths", func(b *testing.B) {
		b.ReportAllocs()
		for b.Loop() {
			if _, err := RewriteRelativePaths(fragment, "/srv/docs"); err != nil {
				b.Fatal(err)
			}
		}
	})

	b.Run("sections", func(b *testing.B) {
		b.ReportAllocs()
		for b.Loop() {
			if _, err := WrapSections(fragment, 2); err != nil {
				b.Fatal(err)
			}
		}
	})

	b.Run("assemble", func(b *testing.B) {
		b.ReportAllocs()
		for b.Loop() {
			_ = AssembleDocument(fragment, DocumentOptions{CSS: "body{margin:0}"})
		}
	})
}

// BenchmarkGoldmarkToHTML_BySize shows how parsing scales with section count.
func BenchmarkGoldmarkToHTML_BySize(b *testing.B) {
	ctx := context.Background()
	converter := NewGoldmarkConverter()

	for _, sections := range []int{1, 10, 100, 500} {
		md := benchReport(sections)
		b.Run(fmt.Sprintf("sections_%d", sections), func(b *testing.B) {
			b.ReportAllocs()
			for b.Loop() {
				if _, err := converter.ToHTML(ctx, md); err != nil {
					b.Fatal(err)
				}
			}
		})
	}
}

// BenchmarkGoldmarkToHTML_Parallel checks the converter under concurrent use.
func BenchmarkGoldmarkToHTML_Parallel(b *testing.B) {
	ctx := context.Background()
	converter := NewGoldmarkConverter()
	md := benchReport(20)

	b.ReportAllocs()
	b.RunParallel(func(pb *testing.PB) {
		for pb.Next() {
			if _, err := converter.ToHTML(ctx, md); err != nil {
				b.Fatal(err)
			}
		}
	})
}

// benchReport builds a document that touches every construct the extras
// care about: headings, fences, tables with captions, images and inline marks.
func benchReport(sections int) string {
	var sb strings.Builder
	sb.WriteString("# Quarterly Report\n\n[TOC]\n\n")
	for i := range sections {
		fmt.Fprintf(&sb, "## Section %d\n\n", i+1)
		sb.WriteString("Some ==highlighted== text with note{{ a remark }} and `code`.\n\n")
		fmt.Fprintf(&sb, "![chart](img/chart-%d.png)\n\n", i)
		switch i % 4 {
		case 0:
			sb.WriteString("```go\nfunc main() {\n    fmt.Println(\"hi\")\n}\n```\n\n")
		case 1:
			sb.WriteString("| region | total |\n|---|---|\n| north | 10 |\n| south | 20 |\n\n")
			fmt.Fprintf(&sb, "> [sales_%d] Sales by region\n\n", i)
		case 2:
			sb.WriteString("```mermaid\ngraph TD\n  A --> B\n```\n\n")
		case 3:
			sb.WriteString("- [ ] open item\n- [x] closed item\n\n")
		}
	}
	return sb.String()
}
