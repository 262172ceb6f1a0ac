package handlers

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"github.com/mpelletier/facturio/internal/billing"
	"github.com/mpelletier/facturio/internal/events"
	"github.com/mpelletier/facturio/internal/logging"
	"github.com/mpelletier/facturio/internal/models"
	"github.com/mpelletier/facturio/internal/pdf"
	"github.com/mpelletier/facturio/internal/util"
)

type InvoiceHandler struct {
	DB       *gorm.DB
	Ledger   *billing.Ledger
	Producer *events.Producer
}

type invoiceLineRequest struct {
	ProductID uint     `json:"product_id"`
	Quantity  int      `json:"quantity"`
	Discount  *float64 `json:"discount"`
	VATRate   *float64 `json:"vat_rate"`
}

type invoiceRequest struct {
	CustomerID uint                 `json:"customer_id"`
	DueDate    *time.Time           `json:"due_date"`
	Lines      []invoiceLineRequest `json:"lines"`
}

// invoiceResponse carries the invoice together with its freshly computed
// totals; totals are never read from storage.
type invoiceResponse struct {
	models.Invoice
	billing.Totals
}

func (h *InvoiceHandler) publish(c echo.Context, event map[string]any) {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()
	if err := h.Producer.PublishEvent(ctx, events.TopicInvoices, fmt.Sprint(event["invoiceID"]), event); err != nil {
		logging.FromContext(c.Request().Context()).Error("kafka publish failed", "error", err)
	}
}

func (h *InvoiceHandler) respond(inv models.Invoice) invoiceResponse {
	return invoiceResponse{Invoice: inv, Totals: h.Ledger.InvoiceTotals(&inv)}
}

// buildLines resolves products and snapshots their current price into new
// lines. Unknown product ids are skipped, matching the lenient create
// behavior the UI relies on.
func (h *InvoiceHandler) buildLines(tx *gorm.DB, invoiceID uint, reqs []invoiceLineRequest) error {
	for _, lr := range reqs {
		var product models.Product
		if err := tx.First(&product, lr.ProductID).Error; err != nil {
			continue
		}
		vat := product.VATRate
		if lr.VATRate != nil {
			vat = *lr.VATRate
		}
		discount := 0.0
		if lr.Discount != nil {
			discount = *lr.Discount
		}
		line := models.InvoiceLine{
			InvoiceID: invoiceID,
			ProductID: product.ID,
			Quantity:  lr.Quantity,
			UnitPrice: product.Price,
			Discount:  discount,
			VATRate:   vat,
		}
		if err := tx.Create(&line).Error; err != nil {
			return err
		}
	}
	return nil
}

func (h *InvoiceHandler) dueDate(tx *gorm.DB, req *invoiceRequest) time.Time {
	if req.DueDate != nil {
		return *req.DueDate
	}
	days := 30
	var company models.Company
	if err := tx.First(&company).Error; err == nil && company.PaymentTerm > 0 {
		days = company.PaymentTerm
	}
	return time.Now().UTC().Add(time.Duration(days) * 24 * time.Hour)
}

func (h *InvoiceHandler) CreateInvoice(c echo.Context) error {
	var req invoiceRequest
	if err := c.Bind(&req); err != nil {
		return errorResponse(c, http.StatusBadRequest, err)
	}

	var invoice models.Invoice
	err := h.DB.Transaction(func(tx *gorm.DB) error {
		invoice = models.Invoice{
			CustomerID: req.CustomerID,
			DueDate:    h.dueDate(tx, &req),
		}
		if err := tx.Create(&invoice).Error; err != nil {
			return err
		}
		return h.buildLines(tx, invoice.ID, req.Lines)
	})
	if err != nil {
		return errorResponse(c, http.StatusInternalServerError, err)
	}

	if err := h.DB.Preload("Lines").First(&invoice, invoice.ID).Error; err != nil {
		return errorResponse(c, http.StatusInternalServerError, err)
	}

	h.publish(c, map[string]any{
		"type":       "invoice_created",
		"invoiceID":  invoice.ID,
		"customerID": invoice.CustomerID,
	})

	return c.JSON(http.StatusCreated, h.respond(invoice))
}

func (h *InvoiceHandler) GetInvoice(c echo.Context) error {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return errorResponse(c, http.StatusBadRequest, err)
	}

	var invoice models.Invoice
	if err := h.DB.Preload("Lines").First(&invoice, id).Error; err != nil {
		return errorResponse(c, http.StatusNotFound, err)
	}
	return c.JSON(http.StatusOK, h.respond(invoice))
}

func (h *InvoiceHandler) GetInvoices(c echo.Context) error {
	page := parseIntDefault(c.QueryParam("page"), 1)
	size := parseIntDefault(c.QueryParam("size"), util.DefaultPageSize)
	offset, limit := util.Calculate(page, size)

	var total int64
	if err := h.DB.Model(&models.Invoice{}).Count(&total).Error; err != nil {
		return errorResponse(c, http.StatusInternalServerError, err)
	}

	var invoices []models.Invoice
	if err := h.DB.Preload("Lines").Order("id DESC").Offset(offset).Limit(limit).Find(&invoices).Error; err != nil {
		return errorResponse(c, http.StatusInternalServerError, err)
	}

	out := make([]invoiceResponse, len(invoices))
	for i := range invoices {
		out[i] = h.respond(invoices[i])
	}
	return c.JSON(http.StatusOK, map[string]any{
		"data": out,
		"meta": map[string]any{"page": page, "size": limit, "total": total},
	})
}

// UpdateInvoice rewrites the header fields and replaces the whole line set,
// re-snapshotting product prices.
func (h *InvoiceHandler) UpdateInvoice(c echo.Context) error {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return errorResponse(c, http.StatusBadRequest, err)
	}

	var req invoiceRequest
	if err := c.Bind(&req); err != nil {
		return errorResponse(c, http.StatusBadRequest, err)
	}

	var invoice models.Invoice
	if err := h.DB.First(&invoice, id).Error; err != nil {
		return errorResponse(c, http.StatusNotFound, err)
	}

	err = h.DB.Transaction(func(tx *gorm.DB) error {
		invoice.CustomerID = req.CustomerID
		if req.DueDate != nil {
			invoice.DueDate = *req.DueDate
		}
		if err := tx.Save(&invoice).Error; err != nil {
			return err
		}
		if err := tx.Where("invoice_id = ?", invoice.ID).Delete(&models.InvoiceLine{}).Error; err != nil {
			return err
		}
		return h.buildLines(tx, invoice.ID, req.Lines)
	})
	if err != nil {
		return errorResponse(c, http.StatusInternalServerError, err)
	}

	h.publish(c, map[string]any{
		"type":      "invoice_updated",
		"invoiceID": invoice.ID,
	})

	return c.JSON(http.StatusOK, map[string]string{"message": "ok"})
}

func (h *InvoiceHandler) DeleteInvoice(c echo.Context) error {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return errorResponse(c, http.StatusBadRequest, err)
	}

	var invoice models.Invoice
	if err := h.DB.First(&invoice, id).Error; err != nil {
		return errorResponse(c, http.StatusNotFound, err)
	}

	err = h.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("invoice_id = ?", invoice.ID).Delete(&models.InvoiceLine{}).Error; err != nil {
			return err
		}
		return tx.Delete(&invoice).Error
	})
	if err != nil {
		return errorResponse(c, http.StatusInternalServerError, err)
	}

	h.publish(c, map[string]any{
		"type":      "invoice_deleted",
		"invoiceID": invoice.ID,
	})

	return c.NoContent(http.StatusNoContent)
}

// GetInvoicePDF renders the invoice as a customer-facing PDF document.
func (h *InvoiceHandler) GetInvoicePDF(c echo.Context) error {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return errorResponse(c, http.StatusBadRequest, err)
	}

	var invoice models.Invoice
	if err := h.DB.Preload("Lines").Preload("Customer").First(&invoice, id).Error; err != nil {
		return errorResponse(c, http.StatusNotFound, err)
	}

	var company models.Company
	if err := h.DB.First(&company).Error; err != nil {
		return errorResponse(c, http.StatusInternalServerError, err)
	}

	productNames := make(map[uint]string, len(invoice.Lines))
	for _, line := range invoice.Lines {
		var product models.Product
		if err := h.DB.First(&product, line.ProductID).Error; err == nil {
			productNames[line.ProductID] = product.Name
		}
	}

	doc, err := pdf.RenderInvoice(pdf.InvoiceDocument{
		Company:      company,
		Customer:     invoice.Customer,
		Invoice:      invoice,
		ProductNames: productNames,
		Totals:       h.Ledger.InvoiceTotals(&invoice),
	})
	if err != nil {
		return errorResponse(c, http.StatusInternalServerError, err)
	}

	c.Response().Header().Set(echo.HeaderContentDisposition,
		fmt.Sprintf(`attachment; filename="facture-%d.pdf"`, invoice.ID))
	return c.Blob(http.StatusOK, "application/pdf", doc)
}
