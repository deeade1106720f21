// Package normalize coerces arbitrary extraction output into the
// canonical invoice shape, or fails with every violation aggregated so
// a reviewer sees the complete correction surface at once.
package normalize

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/splitscan/splitscan/internal/invoice"
)

// Violation is one schema or shape problem at a JSON location.
type Violation struct {
	Path    string `json:"path"`
	Message string `json:"message"`
}

// Violations aggregates every violation found in one extraction output.
// Normalization is never fail-fast.
type Violations struct {
	Items []Violation
}

func (e *Violations) Error() string {
	msgs := make([]string, len(e.Items))
	for i, v := range e.Items {
		msgs[i] = fmt.Sprintf("%s: %s", v.Path, v.Message)
	}
	return fmt.Sprintf("%d validation violation(s): %s", len(e.Items), strings.Join(msgs, "; "))
}

// Normalizer validates raw extraction JSON against the canonical schema
// and coerces it into the ExtractedInvoice shape.
type Normalizer struct {
	schema *jsonschema.Schema
}

// New compiles the canonical invoice schema.
func New() (*Normalizer, error) {
	schema, err := invoice.CompileSchema()
	if err != nil {
		return nil, err
	}
	return &Normalizer{schema: schema}, nil
}

// Normalize turns raw extraction output into a canonical record, or
// returns a *Violations error listing everything wrong with it.
func (n *Normalizer) Normalize(raw json.RawMessage) (*invoice.ExtractedInvoice, error) {
	var decoded any
	if err := json.Unmarshal(raw, &decoded); err != nil {
		return nil, &Violations{Items: []Violation{{Path: "/", Message: fmt.Sprintf("invalid JSON: %v", err)}}}
	}

	if err := n.schema.Validate(decoded); err != nil {
		var ve *jsonschema.ValidationError
		if errors.As(err, &ve) {
			return nil, &Violations{Items: flatten(ve)}
		}
		return nil, &Violations{Items: []Violation{{Path: "/", Message: err.Error()}}}
	}

	root, ok := decoded.(map[string]any)
	if !ok {
		return nil, &Violations{Items: []Violation{{Path: "/", Message: "extraction output is not an object"}}}
	}

	inv := coerce(root)

	inv.SetDiagnostic("no_line_items", len(inv.LineItems) == 0)
	inv.SetDiagnostic("missing_totals", len(inv.TotalsAndSubtotals) == 0)
	inv.SetDiagnostic("missing_basic_information", len(inv.BasicInformation) == 0)

	return inv, nil
}

// flatten collects leaf causes of a hierarchical validation error into
// a flat violation list.
func flatten(ve *jsonschema.ValidationError) []Violation {
	if len(ve.Causes) == 0 {
		path := ve.InstanceLocation
		if path == "" {
			path = "/"
		}
		return []Violation{{Path: path, Message: ve.Message}}
	}
	var out []Violation
	for _, c := range ve.Causes {
		out = append(out, flatten(c)...)
	}
	return out
}

// coerce builds the canonical record from schema-valid decoded JSON.
// All type dispatch below is safe: the schema has already constrained
// the physical shape.
func coerce(root map[string]any) *invoice.ExtractedInvoice {
	inv := &invoice.ExtractedInvoice{
		LineItems:          []invoice.LineItem{},
		TotalsAndSubtotals: []invoice.Totals{},
		BasicInformation:   []invoice.BasicInfo{},
		Importer:           []invoice.Party{},
		Exporter:           []invoice.Party{},
	}

	for _, item := range objectList(root["lineItems"]) {
		inv.LineItems = append(inv.LineItems, invoice.LineItem{
			Type:        StringLike(item["type"]),
			ItemNumber:  StringLike(item["itemNumber"]),
			Description: StringLike(item["description"]),
			Quantity:    NumberLike(item["quantity"]),
			UnitPrice:   NumberLike(item["unitPrice"]),
			Amount:      NumberLike(item["amount"]),
			Rate:        NumberLike(item["rate"]),
			BaseAmount:  NumberLike(item["baseAmount"]),
		})
	}

	for _, item := range objectList(root["totalsAndSubtotals"]) {
		inv.TotalsAndSubtotals = append(inv.TotalsAndSubtotals, invoice.Totals{
			Subtotal: NumberLike(item["subtotal"]),
			Tax:      NumberLike(item["tax"]),
			Shipping: NumberLike(item["shipping"]),
			Discount: NumberLike(item["discount"]),
			Total:    NumberLike(item["total"]),
			Currency: StringLike(item["currency"]),
		})
	}

	for _, item := range objectList(root["basicInformation"]) {
		inv.BasicInformation = append(inv.BasicInformation, invoice.BasicInfo{
			InvoiceNumber: StringLike(item["invoiceNumber"]),
			InvoiceDate:   StringLike(item["invoiceDate"]),
			DueDate:       StringLike(item["dueDate"]),
			Currency:      StringLike(item["currency"]),
			PaymentTerms:  StringLike(item["paymentTerms"]),
			PurchaseOrder: StringLike(item["purchaseOrder"]),
		})
	}

	inv.Importer = partyList(root["importer"])
	inv.Exporter = partyList(root["exporter"])

	return inv
}

func partyList(v any) []invoice.Party {
	parties := []invoice.Party{}
	for _, item := range objectList(v) {
		parties = append(parties, invoice.Party{
			Name:    StringLike(item["name"]),
			Address: StringLike(item["address"]),
			Country: StringLike(item["country"]),
			TaxID:   StringLike(item["taxId"]),
			Email:   StringLike(item["email"]),
			Phone:   StringLike(item["phone"]),
		})
	}
	return parties
}

func objectList(v any) []map[string]any {
	list, ok := v.([]any)
	if !ok {
		return nil
	}
	out := make([]map[string]any, 0, len(list))
	for _, item := range list {
		if m, ok := item.(map[string]any); ok {
			out = append(out, m)
		}
	}
	return out
}
