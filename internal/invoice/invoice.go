// Package invoice defines the canonical extracted-invoice shape. Every
// adapter's raw output is normalized into these types before storage or
// return; this is the single normative wire format.
package invoice

// Line item type discriminators. The set is closed; the discriminator
// documents intended semantics (rate and baseAmount matter for tax-like
// items) without changing which fields are physically permitted.
const (
	LineItemProduct  = "product"
	LineItemShipping = "shipping"
	LineItemTax      = "tax"
	LineItemFee      = "fee"
	LineItemDiscount = "discount"
	LineItemOther    = "other"
)

// LineItemTypes lists the closed discriminator set in declaration order.
var LineItemTypes = []string{
	LineItemProduct, LineItemShipping, LineItemTax,
	LineItemFee, LineItemDiscount, LineItemOther,
}

// ValidLineItemType reports whether t is in the closed discriminator set.
func ValidLineItemType(t string) bool {
	for _, v := range LineItemTypes {
		if v == t {
			return true
		}
	}
	return false
}

// LineItem is one row of an invoice. Numeric fields are pointers so that
// an absent value never collapses into zero.
type LineItem struct {
	Type        string   `json:"type"`
	ItemNumber  string   `json:"itemNumber,omitempty"`
	Description string   `json:"description,omitempty"`
	Quantity    *float64 `json:"quantity,omitempty"`
	UnitPrice   *float64 `json:"unitPrice,omitempty"`
	Amount      *float64 `json:"amount,omitempty"`
	Rate        *float64 `json:"rate,omitempty"`
	BaseAmount  *float64 `json:"baseAmount,omitempty"`
}

// Totals carries the summary amounts of one invoice.
type Totals struct {
	Subtotal *float64 `json:"subtotal,omitempty"`
	Tax      *float64 `json:"tax,omitempty"`
	Shipping *float64 `json:"shipping,omitempty"`
	Discount *float64 `json:"discount,omitempty"`
	Total    *float64 `json:"total,omitempty"`
	Currency string   `json:"currency,omitempty"`
}

// BasicInfo carries invoice-level identifying fields.
type BasicInfo struct {
	InvoiceNumber string `json:"invoiceNumber,omitempty"`
	InvoiceDate   string `json:"invoiceDate,omitempty"`
	DueDate       string `json:"dueDate,omitempty"`
	Currency      string `json:"currency,omitempty"`
	PaymentTerms  string `json:"paymentTerms,omitempty"`
	PurchaseOrder string `json:"purchaseOrder,omitempty"`
}

// Party is one side of the transaction (importer or exporter).
type Party struct {
	Name    string `json:"name,omitempty"`
	Address string `json:"address,omitempty"`
	Country string `json:"country,omitempty"`
	TaxID   string `json:"taxId,omitempty"`
	Email   string `json:"email,omitempty"`
	Phone   string `json:"phone,omitempty"`
}

// ExtractedInvoice is the canonical record for one split invoice.
// The singleton sections (totals, basic info, importer, exporter) are
// lists by schema; callers use index 0 by convention, not enforcement.
type ExtractedInvoice struct {
	LineItems          []LineItem  `json:"lineItems"`
	TotalsAndSubtotals []Totals    `json:"totalsAndSubtotals"`
	BasicInformation   []BasicInfo `json:"basicInformation"`
	Importer           []Party     `json:"importer"`
	Exporter           []Party     `json:"exporter"`

	// Diagnostics holds computed flags about extraction quality, e.g.
	// "no_line_items" or "extraction_failed".
	Diagnostics map[string]bool `json:"diagnostics,omitempty"`
}

// SetDiagnostic records a computed flag, allocating the map on first use.
func (inv *ExtractedInvoice) SetDiagnostic(key string, value bool) {
	if inv.Diagnostics == nil {
		inv.Diagnostics = make(map[string]bool)
	}
	inv.Diagnostics[key] = value
}

// Clone returns a deep copy of the record.
func (inv *ExtractedInvoice) Clone() *ExtractedInvoice {
	if inv == nil {
		return nil
	}
	c := &ExtractedInvoice{
		LineItems:          make([]LineItem, len(inv.LineItems)),
		TotalsAndSubtotals: make([]Totals, len(inv.TotalsAndSubtotals)),
		BasicInformation:   append([]BasicInfo(nil), inv.BasicInformation...),
		Importer:           append([]Party(nil), inv.Importer...),
		Exporter:           append([]Party(nil), inv.Exporter...),
	}
	for i, li := range inv.LineItems {
		c.LineItems[i] = LineItem{
			Type:        li.Type,
			ItemNumber:  li.ItemNumber,
			Description: li.Description,
			Quantity:    cloneFloat(li.Quantity),
			UnitPrice:   cloneFloat(li.UnitPrice),
			Amount:      cloneFloat(li.Amount),
			Rate:        cloneFloat(li.Rate),
			BaseAmount:  cloneFloat(li.BaseAmount),
		}
	}
	for i, t := range inv.TotalsAndSubtotals {
		c.TotalsAndSubtotals[i] = Totals{
			Subtotal: cloneFloat(t.Subtotal),
			Tax:      cloneFloat(t.Tax),
			Shipping: cloneFloat(t.Shipping),
			Discount: cloneFloat(t.Discount),
			Total:    cloneFloat(t.Total),
			Currency: t.Currency,
		}
	}
	if inv.Diagnostics != nil {
		c.Diagnostics = make(map[string]bool, len(inv.Diagnostics))
		for k, v := range inv.Diagnostics {
			c.Diagnostics[k] = v
		}
	}
	return c
}

func cloneFloat(f *float64) *float64 {
	if f == nil {
		return nil
	}
	v := *f
	return &v
}
