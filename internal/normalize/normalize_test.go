package normalize

import (
	"encoding/json"
	"errors"
	"testing"
)

func newNormalizer(t *testing.T) *Normalizer {
	t.Helper()
	n, err := New()
	if err != nil {
		t.Fatalf("failed to build normalizer: %v", err)
	}
	return n
}

func TestNormalizeCoercesMixedTypes(t *testing.T) {
	n := newNormalizer(t)

	raw := json.RawMessage(`{
		"lineItems": [
			{"type": "product", "itemNumber": 42, "description": "Bolts", "quantity": "1.000", "unitPrice": "2,50", "amount": 2500}
		],
		"totalsAndSubtotals": [{"subtotal": "2.500,00", "total": "2.500,00", "currency": "EUR"}],
		"basicInformation": [{"invoiceNumber": "INV-1", "invoiceDate": "2026-03-02"}],
		"importer": [{"name": "Acme", "country": "DE"}],
		"exporter": [{"name": "Bolt Works"}]
	}`)

	inv, err := n.Normalize(raw)
	if err != nil {
		t.Fatalf("Normalize failed: %v", err)
	}

	if len(inv.LineItems) != 1 {
		t.Fatalf("got %d line items, want 1", len(inv.LineItems))
	}
	li := inv.LineItems[0]
	if li.ItemNumber != "42" {
		t.Errorf("item number %q, want stringified %q", li.ItemNumber, "42")
	}
	if li.Quantity == nil || *li.Quantity != 1000 {
		t.Errorf("quantity %v, want 1000", li.Quantity)
	}
	if li.UnitPrice == nil || *li.UnitPrice != 2.5 {
		t.Errorf("unit price %v, want 2.5", li.UnitPrice)
	}
	if li.Rate != nil {
		t.Errorf("rate %v, want absent", *li.Rate)
	}
	if got := inv.TotalsAndSubtotals[0].Total; got == nil || *got != 2500 {
		t.Errorf("total %v, want 2500", got)
	}
	if inv.Diagnostics["no_line_items"] {
		t.Error("no_line_items set despite line items present")
	}
}

func TestNormalizeUnparseableAmountStaysAbsent(t *testing.T) {
	n := newNormalizer(t)

	inv, err := n.Normalize(json.RawMessage(`{
		"lineItems": [{"type": "product", "amount": "N/A"}]
	}`))
	if err != nil {
		t.Fatalf("Normalize failed: %v", err)
	}
	if inv.LineItems[0].Amount != nil {
		t.Errorf("amount %v, want absent for unparseable string", *inv.LineItems[0].Amount)
	}
}

func TestNormalizeAggregatesViolations(t *testing.T) {
	n := newNormalizer(t)

	// Two independent problems: a bad line item type and an unknown field.
	_, err := n.Normalize(json.RawMessage(`{
		"lineItems": [{"type": "banana"}],
		"bogusField": true
	}`))
	var ve *Violations
	if !errors.As(err, &ve) {
		t.Fatalf("got %v, want Violations", err)
	}
	if len(ve.Items) < 2 {
		t.Errorf("got %d violations %v, want both problems reported", len(ve.Items), ve.Items)
	}
}

func TestNormalizeRejectsMissingLineItemType(t *testing.T) {
	n := newNormalizer(t)

	_, err := n.Normalize(json.RawMessage(`{"lineItems": [{"description": "x"}]}`))
	var ve *Violations
	if !errors.As(err, &ve) {
		t.Fatalf("got %v, want Violations for missing type discriminator", err)
	}
}

func TestNormalizeRejectsInvalidJSON(t *testing.T) {
	n := newNormalizer(t)

	_, err := n.Normalize(json.RawMessage(`{not json`))
	var ve *Violations
	if !errors.As(err, &ve) {
		t.Fatalf("got %v, want Violations", err)
	}
}

func TestNormalizeDiagnosticsForEmptySections(t *testing.T) {
	n := newNormalizer(t)

	inv, err := n.Normalize(json.RawMessage(`{}`))
	if err != nil {
		t.Fatalf("Normalize failed: %v", err)
	}
	for _, key := range []string{"no_line_items", "missing_totals", "missing_basic_information"} {
		if !inv.Diagnostics[key] {
			t.Errorf("diagnostic %s not set on empty record", key)
		}
	}
	if inv.LineItems == nil || inv.Importer == nil {
		t.Error("sections must be empty slices, not nil")
	}
}
