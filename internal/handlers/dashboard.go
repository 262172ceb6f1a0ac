package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"github.com/mpelletier/facturio/internal/billing"
	"github.com/mpelletier/facturio/internal/models"
)

type DashboardHandler struct {
	DB     *gorm.DB
	Ledger *billing.Ledger
}

// GetDashboard aggregates the landing-page numbers: entity counts, the five
// most recent invoices, and the pre-tax revenue over all invoices. Revenue is
// recomputed from lines on every call, consistent with the no-stored-totals
// rule.
func (h *DashboardHandler) GetDashboard(c echo.Context) error {
	var customerCount, productCount, invoiceCount int64
	if err := h.DB.Model(&models.Customer{}).Count(&customerCount).Error; err != nil {
		return errorResponse(c, http.StatusInternalServerError, err)
	}
	if err := h.DB.Model(&models.Product{}).Count(&productCount).Error; err != nil {
		return errorResponse(c, http.StatusInternalServerError, err)
	}
	if err := h.DB.Model(&models.Invoice{}).Count(&invoiceCount).Error; err != nil {
		return errorResponse(c, http.StatusInternalServerError, err)
	}

	var all []models.Invoice
	if err := h.DB.Preload("Lines").Find(&all).Error; err != nil {
		return errorResponse(c, http.StatusInternalServerError, err)
	}
	var revenue float64
	for i := range all {
		revenue += h.Ledger.InvoiceTotals(&all[i]).TotalHT
	}

	var recent []models.Invoice
	if err := h.DB.Preload("Lines").Order("id DESC").Limit(5).Find(&recent).Error; err != nil {
		return errorResponse(c, http.StatusInternalServerError, err)
	}
	recentOut := make([]invoiceResponse, len(recent))
	for i := range recent {
		recentOut[i] = invoiceResponse{Invoice: recent[i], Totals: h.Ledger.InvoiceTotals(&recent[i])}
	}

	return c.JSON(http.StatusOK, map[string]any{
		"customer_count":  customerCount,
		"product_count":   productCount,
		"invoice_count":   invoiceCount,
		"total_revenue":   revenue,
		"recent_invoices": recentOut,
	})
}
