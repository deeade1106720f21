// Package hints derives per-table extraction hints from detected layout
// tables. A hint's score is a soft prior for the extractor; it never
// filters a table out.
package hints

import (
	"fmt"
	"strings"
	"unicode"
)

// Cell is one detected table cell with its grid position.
type Cell struct {
	Row    int    `json:"row"`
	Column int    `json:"column"`
	Text   string `json:"text"`
}

// Table is a detected table as a flat cell list.
type Table struct {
	Index int    `json:"index"`
	Cells []Cell `json:"cells"`
}

// TableHint summarizes one table's header row for the extractor.
type TableHint struct {
	TableIndex int      `json:"table_index"`
	Headers    []string `json:"headers"`

	// Score counts how many keyword categories matched at least one
	// header. Higher means the table looks more like a line-item table.
	Score int `json:"score"`
}

// category matches a header against one keyword group by substring.
type category struct {
	name     string
	keywords []string
}

func (c category) matches(headers []string) bool {
	for _, h := range headers {
		for _, kw := range c.keywords {
			if strings.Contains(h, kw) {
				return true
			}
		}
	}
	return false
}

// The eight scored keyword categories. Matching is substring-based over
// normalized header text.
var categories = []category{
	{name: "item identifier", keywords: []string{"item", "sku", "part", "code", "no", "number", "ref"}},
	{name: "description", keywords: []string{"description", "desc", "product", "service", "details"}},
	{name: "quantity", keywords: []string{"qty", "quantity", "units", "pcs", "count"}},
	{name: "unit price", keywords: []string{"unit price", "unitprice", "price", "rate per", "each"}},
	{name: "amount", keywords: []string{"amount", "total", "value", "line total", "net", "gross"}},
	{name: "tax", keywords: []string{"tax", "vat", "gst", "duty", "%"}},
	{name: "shipping", keywords: []string{"shipping", "freight", "carriage", "delivery"}},
	{name: "discount", keywords: []string{"discount", "rebate", "reduction"}},
}

// Derive builds one hint per table that has a header row (row index 0).
// Tables without a header row are skipped entirely. Every table with a
// header row is emitted regardless of score, so an unusually-labeled
// line-item table is never silently dropped.
//
// The returned glossary lists each included table's index and headers,
// for advisory use in the extraction prompt. Derive is pure: identical
// input yields identical output.
func Derive(tables []Table) ([]TableHint, string) {
	var out []TableHint
	var glossary strings.Builder

	for _, t := range tables {
		headers := headerRow(t)
		if len(headers) == 0 {
			continue
		}

		normalized := make([]string, len(headers))
		for i, h := range headers {
			normalized[i] = NormalizeHeader(h)
		}

		score := 0
		for _, c := range categories {
			if c.matches(normalized) {
				score++
			}
		}

		out = append(out, TableHint{
			TableIndex: t.Index,
			Headers:    headers,
			Score:      score,
		})
		fmt.Fprintf(&glossary, "Table %d headers: %s\n", t.Index, strings.Join(headers, " | "))
	}

	return out, glossary.String()
}

// headerRow returns the text of row-0 cells in column order.
func headerRow(t Table) []string {
	var cells []Cell
	for _, c := range t.Cells {
		if c.Row == 0 {
			cells = append(cells, c)
		}
	}
	// Cells arrive in detector order; sort by column for stable headers.
	for i := 1; i < len(cells); i++ {
		for j := i; j > 0 && cells[j].Column < cells[j-1].Column; j-- {
			cells[j], cells[j-1] = cells[j-1], cells[j]
		}
	}
	headers := make([]string, 0, len(cells))
	for _, c := range cells {
		headers = append(headers, c.Text)
	}
	return headers
}

// NormalizeHeader lowercases the text, strips every character except
// letters, digits, percent signs and spaces, and collapses whitespace.
func NormalizeHeader(s string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(s) {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r) || r == '%':
			b.WriteRune(r)
		case unicode.IsSpace(r):
			b.WriteRune(' ')
		}
	}
	return strings.Join(strings.Fields(b.String()), " ")
}
