package billing

import (
	"github.com/mpelletier/facturio/internal/models"
)

// Line is the ledger's view of one invoice line. Discount and VATRate are
// percentages; nil means the field was absent and counts as zero.
type Line struct {
	Quantity  int
	UnitPrice float64
	Discount  *float64
	VATRate   *float64
}

type Totals struct {
	TotalHT  float64 `json:"total_ht"`
	TotalTax float64 `json:"total_tax"`
	TotalTTC float64 `json:"total_ttc"`
}

// Ledger computes invoice totals. It is pure: no DB access, no rounding.
// Amounts keep full float precision until a presentation layer formats them;
// rounding per line would break summation across differently-discounted lines.
type Ledger struct{}

func NewLedger() *Ledger { return &Ledger{} }

// ComputeTotals returns the pre-tax total, the tax amount, and their sum.
// Inputs are taken as-is: negative quantities or out-of-range discounts flow
// through arithmetically, sanitization belongs to the caller.
func (l *Ledger) ComputeTotals(lines []Line) Totals {
	var t Totals
	for _, ln := range lines {
		discount := 0.0
		if ln.Discount != nil {
			discount = *ln.Discount
		}
		rate := 0.0
		if ln.VATRate != nil {
			rate = *ln.VATRate
		}
		net := float64(ln.Quantity) * ln.UnitPrice * (1 - discount/100)
		t.TotalHT += net
		t.TotalTax += net * rate / 100
	}
	t.TotalTTC = t.TotalHT + t.TotalTax
	return t
}

// LinesFromInvoice adapts persisted invoice lines into ledger input.
func LinesFromInvoice(inv *models.Invoice) []Line {
	if inv == nil {
		return nil
	}
	lines := make([]Line, 0, len(inv.Lines))
	for i := range inv.Lines {
		ln := inv.Lines[i]
		discount := ln.Discount
		rate := ln.VATRate
		lines = append(lines, Line{
			Quantity:  ln.Quantity,
			UnitPrice: ln.UnitPrice,
			Discount:  &discount,
			VATRate:   &rate,
		})
	}
	return lines
}

// InvoiceTotals is a convenience for handlers that already hold the invoice
// with its lines preloaded.
func (l *Ledger) InvoiceTotals(inv *models.Invoice) Totals {
	return l.ComputeTotals(LinesFromInvoice(inv))
}
