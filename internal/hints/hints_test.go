package hints

import (
	"strings"
	"testing"
)

func headerTable(index int, headers ...string) Table {
	t := Table{Index: index}
	for col, h := range headers {
		t.Cells = append(t.Cells, Cell{Row: 0, Column: col, Text: h})
	}
	return t
}

func TestNormalizeHeader(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"Unit Price", "unit price"},
		{"  Qty.  ", "qty"},
		{"VAT (%)", "vat %"},
		{"Item-No.", "itemno"},
		{"Description\t\n", "description"},
		{"", ""},
	}
	for _, tc := range cases {
		if got := NormalizeHeader(tc.in); got != tc.want {
			t.Errorf("NormalizeHeader(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestDeriveScoresLineItemTable(t *testing.T) {
	table := headerTable(0, "Item No.", "Description", "Qty", "Unit Price", "Amount", "VAT %")

	hints, glossary := Derive([]Table{table})
	if len(hints) != 1 {
		t.Fatalf("got %d hints, want 1", len(hints))
	}
	// item identifier, description, quantity, unit price, amount, tax
	if hints[0].Score != 6 {
		t.Errorf("got score %d, want 6", hints[0].Score)
	}
	if !strings.Contains(glossary, "Table 0 headers: Item No. | Description | Qty | Unit Price | Amount | VAT %") {
		t.Errorf("unexpected glossary: %q", glossary)
	}
}

func TestDeriveEmitsLowScoreTables(t *testing.T) {
	table := headerTable(2, "Foo", "Bar")

	hints, glossary := Derive([]Table{table})
	if len(hints) != 1 {
		t.Fatalf("got %d hints, want 1: low-score tables must still be emitted", len(hints))
	}
	if hints[0].Score != 0 {
		t.Errorf("got score %d, want 0", hints[0].Score)
	}
	if glossary == "" {
		t.Error("glossary empty, want entry for the unmatched table")
	}
}

func TestDeriveSkipsTablesWithoutHeaderRow(t *testing.T) {
	table := Table{Index: 1, Cells: []Cell{
		{Row: 1, Column: 0, Text: "data"},
		{Row: 2, Column: 0, Text: "data"},
	}}

	hints, glossary := Derive([]Table{table})
	if len(hints) != 0 {
		t.Fatalf("got %d hints, want 0 for header-less table", len(hints))
	}
	if glossary != "" {
		t.Errorf("got glossary %q, want empty", glossary)
	}
}

func TestDeriveOrdersHeadersByColumn(t *testing.T) {
	table := Table{Index: 0, Cells: []Cell{
		{Row: 0, Column: 2, Text: "Amount"},
		{Row: 0, Column: 0, Text: "Item"},
		{Row: 0, Column: 1, Text: "Qty"},
	}}

	hints, _ := Derive([]Table{table})
	if len(hints) != 1 {
		t.Fatalf("got %d hints, want 1", len(hints))
	}
	want := []string{"Item", "Qty", "Amount"}
	for i, h := range hints[0].Headers {
		if h != want[i] {
			t.Fatalf("got headers %v, want %v", hints[0].Headers, want)
		}
	}
}

func TestDeriveIsDeterministic(t *testing.T) {
	tables := []Table{
		headerTable(0, "Item", "Amount"),
		headerTable(1, "Description", "Total"),
	}
	h1, g1 := Derive(tables)
	h2, g2 := Derive(tables)
	if g1 != g2 {
		t.Errorf("glossary differs between runs: %q vs %q", g1, g2)
	}
	if len(h1) != len(h2) {
		t.Fatalf("hint counts differ: %d vs %d", len(h1), len(h2))
	}
	for i := range h1 {
		if h1[i].Score != h2[i].Score || h1[i].TableIndex != h2[i].TableIndex {
			t.Errorf("hint %d differs between runs", i)
		}
	}
}
