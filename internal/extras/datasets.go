package extras

import (
	"errors"
	"fmt"
	"html"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/mdconvert/markdown-convert/internal/dataset"
)

var (
	// datasetCaptionPattern matches the blockquote that names the table
	// ending right before it. The table itself is located by the rewrite
	// function, since RE2 cannot express "a table with no </table> inside".
	datasetCaptionPattern = regexp.MustCompile(`(?s)</table>\s*<blockquote>\s*<p>\[(?P<name>[^\]\s]+)\]\s*(?P<desc>.*?)\s*</p>\s*</blockquote>`)

	// queryPattern matches inline [query: SQL] markers, optionally alone in a
	// paragraph, and ```query fences.
	queryPattern = regexp.MustCompile(`(?s)(?P<open><p>\s*)?\[query:\s*(?P<sql>[^\]]+?)\s*\](?P<close>\s*</p>)?|<pre><code class="language-query">(?P<block>.*?)</code></pre>`)
)

var errNoTable = errors.New("no table precedes dataset caption")

// datasetTablesExtra registers tables captioned with "> [name] description"
// in the conversion's dataset store. The caption is replaced by its
// description, or removed when there is none.
func datasetTablesExtra() Extra {
	return Extra{
		Name:    NameDynamicTables,
		Pattern: datasetCaptionPattern,
		Phase:   60,
		Replace: replaceDatasetCaption,
	}
}

func replaceDatasetCaption(m Match, doc string, mem *Memory) Result {
	name := m.Group("name")
	if !dataset.ValidName(name) {
		return Keepf("invalid dataset name %q", name)
	}

	tableEnd := m.Start + len("</table>")
	tableStart := strings.LastIndex(doc[:m.Start], "<table")
	if tableStart < 0 {
		return KeepOriginal(errNoTable)
	}

	columns, rows, err := parseTable(mem.restoreLiterals(doc[tableStart:tableEnd]))
	if err != nil {
		return KeepOriginal(err)
	}

	store, err := mem.Datasets()
	if err != nil {
		return KeepOriginal(fmt.Errorf("opening dataset store: %w", err))
	}
	if err := store.Register(mem.Context(), name, columns, rows); err != nil {
		return KeepOriginal(err)
	}
	mem.Logger().Debug("dataset registered", "name", name, "rows", len(rows))

	desc := m.Group("desc")
	if desc == "" {
		return Replaced("</table>")
	}
	return Replaced(`</table><p class="table-description">` + desc + `</p>`)
}

// parseTable extracts header and body cells from an HTML table. When the
// table has no <th> cells, the first row is used as header.
func parseTable(tableHTML string) ([]string, [][]string, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(tableHTML))
	if err != nil {
		return nil, nil, fmt.Errorf("parsing table: %w", err)
	}

	var columns []string
	var rows [][]string
	doc.Find("tr").Each(func(_ int, tr *goquery.Selection) {
		if th := tr.Find("th"); th.Length() > 0 && columns == nil {
			columns = cellTexts(th)
			return
		}
		cells := cellTexts(tr.Find("td"))
		if columns == nil {
			columns = cells
			return
		}
		rows = append(rows, cells)
	})

	if len(columns) == 0 {
		return nil, nil, errors.New("table has no header")
	}
	return columns, rows, nil
}

func cellTexts(sel *goquery.Selection) []string {
	out := make([]string, 0, sel.Length())
	sel.Each(func(_ int, cell *goquery.Selection) {
		out = append(out, strings.TrimSpace(cell.Text()))
	})
	return out
}

// datasetQueriesExtra runs [query: SQL] markers and ```query fences against
// the dataset store. A single value is inlined as text; anything else
// becomes a table.
func datasetQueriesExtra() Extra {
	return Extra{
		Name:        NameDynamicQueries,
		Pattern:     queryPattern,
		Phase:       PhaseGeneral,
		BypassClass: "language-" + LangQuery,
		Replace:     replaceQuery,
	}
}

func replaceQuery(m Match, _ string, mem *Memory) Result {
	block := m.Group("sql") == ""
	sql := m.Group("sql")
	if block {
		sql = m.Group("block")
	}
	sql = strings.TrimSpace(html.UnescapeString(sql))
	if sql == "" {
		return Keepf("empty query")
	}

	store, err := mem.Datasets()
	if err != nil {
		return KeepOriginal(fmt.Errorf("opening dataset store: %w", err))
	}
	columns, rows, err := store.Query(mem.Context(), sql)
	if err != nil {
		return KeepOriginal(err)
	}

	if len(columns) == 1 && len(rows) == 1 {
		value := html.EscapeString(rows[0][0])
		if block {
			return Replaced(`<p class="query-result">` + value + `</p>`)
		}
		return Replaced(m.Group("open") + value + m.Group("close"))
	}

	table := renderTable(columns, rows)
	if block {
		return Replaced(table)
	}
	return Replaced(unwrapParagraph(m, table))
}

// renderTable renders query results as an HTML table.
func renderTable(columns []string, rows [][]string) string {
	var b strings.Builder
	b.WriteString(`<table class="query-result"><thead><tr>`)
	for _, c := range columns {
		b.WriteString(`<th>`)
		b.WriteString(html.EscapeString(c))
		b.WriteString(`</th>`)
	}
	b.WriteString(`</tr></thead><tbody>`)
	for _, row := range rows {
		b.WriteString(`<tr>`)
		for _, cell := range row {
			b.WriteString(`<td>`)
			b.WriteString(html.EscapeString(cell))
			b.WriteString(`</td>`)
		}
		b.WriteString(`</tr>`)
	}
	b.WriteString(`</tbody></table>`)
	return b.String()
}
