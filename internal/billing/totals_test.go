package billing

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/mpelletier/facturio/internal/models"
)

func fp(v float64) *float64 { return &v }

func TestComputeTotalsSingleLine(t *testing.T) {
	ledger := NewLedger()

	totals := ledger.ComputeTotals([]Line{
		{Quantity: 2, UnitPrice: 100, Discount: fp(10), VATRate: fp(20)},
	})

	require.InDelta(t, 180.0, totals.TotalHT, 1e-9)
	require.InDelta(t, 36.0, totals.TotalTax, 1e-9)
	require.InDelta(t, 216.0, totals.TotalTTC, 1e-9)
}

func TestComputeTotalsNilFieldsTreatedAsZero(t *testing.T) {
	ledger := NewLedger()

	totals := ledger.ComputeTotals([]Line{
		{Quantity: 3, UnitPrice: 50},
	})

	require.InDelta(t, 150.0, totals.TotalHT, 1e-9)
	require.InDelta(t, 0.0, totals.TotalTax, 1e-9)
	require.InDelta(t, 150.0, totals.TotalTTC, 1e-9)
}

func TestComputeTotalsEmpty(t *testing.T) {
	ledger := NewLedger()

	totals := ledger.ComputeTotals(nil)
	require.Equal(t, Totals{}, totals)
}

func TestComputeTotalsMixedLines(t *testing.T) {
	ledger := NewLedger()

	totals := ledger.ComputeTotals([]Line{
		{Quantity: 1, UnitPrice: 100, VATRate: fp(20)},
		{Quantity: 4, UnitPrice: 25, Discount: fp(50), VATRate: fp(10)},
		{Quantity: 2, UnitPrice: 10},
	})

	// 100 + 50 + 20
	require.InDelta(t, 170.0, totals.TotalHT, 1e-9)
	// 20 + 5 + 0
	require.InDelta(t, 25.0, totals.TotalTax, 1e-9)
	require.InDelta(t, totals.TotalHT+totals.TotalTax, totals.TotalTTC, 1e-9)
}

func TestComputeTotalsTTCIsAlwaysSum(t *testing.T) {
	ledger := NewLedger()

	cases := [][]Line{
		{{Quantity: 7, UnitPrice: 13.37, Discount: fp(3), VATRate: fp(5.5)}},
		{{Quantity: -2, UnitPrice: 40, VATRate: fp(20)}},
		{{Quantity: 1, UnitPrice: 99.99, Discount: fp(120), VATRate: fp(20)}},
	}
	for _, lines := range cases {
		totals := ledger.ComputeTotals(lines)
		require.InDelta(t, totals.TotalHT+totals.TotalTax, totals.TotalTTC, 1e-9)
	}
}

func TestInvoiceTotalsFromModel(t *testing.T) {
	ledger := NewLedger()

	inv := &models.Invoice{
		Lines: []models.InvoiceLine{
			{Quantity: 2, UnitPrice: 100, Discount: 10, VATRate: 20},
			{Quantity: 1, UnitPrice: 30, Discount: 0, VATRate: 0},
		},
	}

	totals := ledger.InvoiceTotals(inv)
	require.InDelta(t, 210.0, totals.TotalHT, 1e-9)
	require.InDelta(t, 36.0, totals.TotalTax, 1e-9)
	require.InDelta(t, 246.0, totals.TotalTTC, 1e-9)
}

func TestInvoiceTotalsNilInvoice(t *testing.T) {
	ledger := NewLedger()
	require.Equal(t, Totals{}, ledger.InvoiceTotals(nil))
}
