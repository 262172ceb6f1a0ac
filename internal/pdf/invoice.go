package pdf

import (
	"fmt"
	"strconv"

	"github.com/johnfercher/maroto/v2"
	"github.com/johnfercher/maroto/v2/pkg/components/col"
	"github.com/johnfercher/maroto/v2/pkg/components/line"
	"github.com/johnfercher/maroto/v2/pkg/components/row"
	"github.com/johnfercher/maroto/v2/pkg/components/text"
	"github.com/johnfercher/maroto/v2/pkg/config"
	"github.com/johnfercher/maroto/v2/pkg/consts/align"
	"github.com/johnfercher/maroto/v2/pkg/consts/fontstyle"
	"github.com/johnfercher/maroto/v2/pkg/props"

	"github.com/mpelletier/facturio/internal/billing"
	"github.com/mpelletier/facturio/internal/models"
)

// InvoiceDocument bundles everything the rendered page needs. Totals come
// from the ledger; this package never recomputes amounts.
type InvoiceDocument struct {
	Company      models.Company
	Customer     models.Customer
	Invoice      models.Invoice
	ProductNames map[uint]string
	Totals       billing.Totals
}

const dateLayout = "02/01/2006"

// RenderInvoice lays out the invoice as an A4 PDF and returns its bytes.
func RenderInvoice(doc InvoiceDocument) ([]byte, error) {
	cfg := config.NewBuilder().
		WithLeftMargin(15).
		WithTopMargin(15).
		WithRightMargin(15).
		Build()
	m := maroto.New(cfg)

	accent := parseHexColor(doc.Company.ThemeColor)

	m.AddRow(10,
		text.NewCol(8, doc.Company.Name, props.Text{Size: 16, Style: fontstyle.Bold, Color: accent}),
		text.NewCol(4, fmt.Sprintf("Facture n° %d", doc.Invoice.ID), props.Text{Size: 12, Style: fontstyle.Bold, Align: align.Right}),
	)
	m.AddRow(5,
		text.NewCol(8, doc.Company.Address, props.Text{Size: 9}),
		text.NewCol(4, "Date : "+doc.Invoice.Date.Format(dateLayout), props.Text{Size: 9, Align: align.Right}),
	)
	m.AddRow(5,
		text.NewCol(8, "SIRET "+doc.Company.Siret+" — TVA "+doc.Company.VATNumber, props.Text{Size: 9}),
		text.NewCol(4, "Échéance : "+doc.Invoice.DueDate.Format(dateLayout), props.Text{Size: 9, Align: align.Right}),
	)

	m.AddRows(row.New(8).Add(col.New(12)))
	m.AddRow(5, text.NewCol(12, "Facturé à", props.Text{Size: 9, Style: fontstyle.Bold}))
	m.AddRow(5, text.NewCol(12, doc.Customer.Name, props.Text{Size: 10}))
	if doc.Customer.Address != "" {
		m.AddRow(5, text.NewCol(12, doc.Customer.Address, props.Text{Size: 9}))
	}
	if doc.Customer.Siret != "" {
		m.AddRow(5, text.NewCol(12, "SIRET "+doc.Customer.Siret, props.Text{Size: 9}))
	}

	m.AddRows(row.New(6).Add(col.New(12)))
	m.AddRow(7,
		text.NewCol(5, "Désignation", props.Text{Size: 9, Style: fontstyle.Bold}),
		text.NewCol(1, "Qté", props.Text{Size: 9, Style: fontstyle.Bold, Align: align.Right}),
		text.NewCol(2, "P.U. HT", props.Text{Size: 9, Style: fontstyle.Bold, Align: align.Right}),
		text.NewCol(2, "Remise", props.Text{Size: 9, Style: fontstyle.Bold, Align: align.Right}),
		text.NewCol(2, "TVA", props.Text{Size: 9, Style: fontstyle.Bold, Align: align.Right}),
	)
	m.AddRows(line.NewRow(2))

	for _, ln := range doc.Invoice.Lines {
		name := doc.ProductNames[ln.ProductID]
		if name == "" {
			name = fmt.Sprintf("Produit #%d", ln.ProductID)
		}
		m.AddRow(6,
			text.NewCol(5, name, props.Text{Size: 9}),
			text.NewCol(1, strconv.Itoa(ln.Quantity), props.Text{Size: 9, Align: align.Right}),
			text.NewCol(2, money(ln.UnitPrice), props.Text{Size: 9, Align: align.Right}),
			text.NewCol(2, fmt.Sprintf("%.0f %%", ln.Discount), props.Text{Size: 9, Align: align.Right}),
			text.NewCol(2, fmt.Sprintf("%.1f %%", ln.VATRate), props.Text{Size: 9, Align: align.Right}),
		)
	}

	m.AddRows(line.NewRow(2))
	m.AddRow(6,
		text.NewCol(9, "Total HT", props.Text{Size: 9, Align: align.Right}),
		text.NewCol(3, money(doc.Totals.TotalHT), props.Text{Size: 9, Align: align.Right}),
	)
	m.AddRow(6,
		text.NewCol(9, "TVA", props.Text{Size: 9, Align: align.Right}),
		text.NewCol(3, money(doc.Totals.TotalTax), props.Text{Size: 9, Align: align.Right}),
	)
	m.AddRow(7,
		text.NewCol(9, "Total TTC", props.Text{Size: 10, Style: fontstyle.Bold, Align: align.Right}),
		text.NewCol(3, money(doc.Totals.TotalTTC), props.Text{Size: 10, Style: fontstyle.Bold, Align: align.Right, Color: accent}),
	)

	m.AddRows(row.New(10).Add(col.New(12)))
	m.AddRow(5, text.NewCol(12, "IBAN "+doc.Company.IBAN+" — BIC "+doc.Company.BIC, props.Text{Size: 8}))
	if doc.Company.LegalTerms != "" {
		m.AddRow(5, text.NewCol(12, doc.Company.LegalTerms, props.Text{Size: 7}))
	}

	document, err := m.Generate()
	if err != nil {
		return nil, fmt.Errorf("generating invoice pdf: %w", err)
	}
	return document.GetBytes(), nil
}

func money(v float64) string {
	return fmt.Sprintf("%.2f €", v)
}

// parseHexColor turns "#rrggbb" into a maroto color, falling back to the
// default dark slate used by the web theme.
func parseHexColor(s string) *props.Color {
	fallback := &props.Color{Red: 44, Green: 62, Blue: 80}
	if len(s) != 7 || s[0] != '#' {
		return fallback
	}
	r, err1 := strconv.ParseUint(s[1:3], 16, 8)
	g, err2 := strconv.ParseUint(s[3:5], 16, 8)
	b, err3 := strconv.ParseUint(s[5:7], 16, 8)
	if err1 != nil || err2 != nil || err3 != nil {
		return fallback
	}
	return &props.Color{Red: int(r), Green: int(g), Blue: int(b)}
}
