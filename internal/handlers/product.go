package handlers

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"github.com/mpelletier/facturio/internal/events"
	"github.com/mpelletier/facturio/internal/logging"
	"github.com/mpelletier/facturio/internal/models"
	"github.com/mpelletier/facturio/internal/service/search"
	"github.com/mpelletier/facturio/internal/util"
)

type ProductHandler struct {
	DB       *gorm.DB
	Producer *events.Producer
	Indexer  *search.Indexer
}

func (h *ProductHandler) publish(c echo.Context, event map[string]any) {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()
	if err := h.Producer.PublishEvent(ctx, events.TopicProducts, fmt.Sprint(event["productID"]), event); err != nil {
		logging.FromContext(c.Request().Context()).Error("kafka publish failed", "error", err)
	}
}

func (h *ProductHandler) reindex(c echo.Context, product *models.Product) {
	if err := h.Indexer.IndexProduct(c.Request().Context(), product); err != nil {
		logging.FromContext(c.Request().Context()).Error("product index sync failed", "error", err)
	}
}

func (h *ProductHandler) GetProduct(c echo.Context) error {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return errorResponse(c, http.StatusBadRequest, err)
	}

	var product models.Product
	if err := h.DB.First(&product, id).Error; err != nil {
		return errorResponse(c, http.StatusNotFound, err)
	}
	return c.JSON(http.StatusOK, product)
}

func (h *ProductHandler) GetProducts(c echo.Context) error {
	page := parseIntDefault(c.QueryParam("page"), 1)
	size := parseIntDefault(c.QueryParam("size"), util.DefaultPageSize)
	offset, limit := util.Calculate(page, size)

	var total int64
	if err := h.DB.Model(&models.Product{}).Count(&total).Error; err != nil {
		return errorResponse(c, http.StatusInternalServerError, err)
	}

	var items []models.Product
	if err := h.DB.Order("name ASC").Offset(offset).Limit(limit).Find(&items).Error; err != nil {
		return errorResponse(c, http.StatusInternalServerError, err)
	}

	return c.JSON(http.StatusOK, map[string]any{
		"data": items,
		"meta": map[string]any{
			"page":        page,
			"size":        limit,
			"total":       total,
			"total_pages": (total + int64(limit) - 1) / int64(limit),
			"has_prev":    page > 1,
			"has_next":    int64(offset+limit) < total,
		},
	})
}

func (h *ProductHandler) CreateProduct(c echo.Context) error {
	var req struct {
		Name    string   `json:"name"`
		Price   float64  `json:"price"`
		VATRate *float64 `json:"vat_rate"`
	}
	if err := c.Bind(&req); err != nil {
		return errorResponse(c, http.StatusBadRequest, err)
	}

	product := models.Product{
		Name:    req.Name,
		Price:   req.Price,
		VATRate: 20,
	}
	if req.VATRate != nil {
		product.VATRate = *req.VATRate
	}
	if err := h.DB.Create(&product).Error; err != nil {
		return errorResponse(c, http.StatusInternalServerError, err)
	}

	h.reindex(c, &product)
	h.publish(c, map[string]any{
		"type":      "product_created",
		"productID": product.ID,
		"name":      product.Name,
	})

	return c.JSON(http.StatusCreated, product)
}

// UpdateProduct changes the catalog entry only; unit prices already copied
// into invoice lines keep their historical value.
func (h *ProductHandler) UpdateProduct(c echo.Context) error {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return errorResponse(c, http.StatusBadRequest, err)
	}

	var req struct {
		Name    string   `json:"name"`
		Price   float64  `json:"price"`
		VATRate *float64 `json:"vat_rate"`
	}
	if err := c.Bind(&req); err != nil {
		return errorResponse(c, http.StatusBadRequest, err)
	}

	var product models.Product
	if err := h.DB.First(&product, id).Error; err != nil {
		return errorResponse(c, http.StatusNotFound, err)
	}

	product.Name = req.Name
	product.Price = req.Price
	if req.VATRate != nil {
		product.VATRate = *req.VATRate
	}

	if err := h.DB.Save(&product).Error; err != nil {
		return errorResponse(c, http.StatusInternalServerError, err)
	}

	h.reindex(c, &product)
	h.publish(c, map[string]any{
		"type":      "product_updated",
		"productID": product.ID,
		"name":      product.Name,
	})

	return c.JSON(http.StatusOK, map[string]string{"message": "ok"})
}

// DeleteProduct refuses to remove a product referenced by invoice lines.
func (h *ProductHandler) DeleteProduct(c echo.Context) error {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return errorResponse(c, http.StatusBadRequest, err)
	}

	var lineCount int64
	if err := h.DB.Model(&models.InvoiceLine{}).Where("product_id = ?", id).Count(&lineCount).Error; err != nil {
		return errorResponse(c, http.StatusInternalServerError, err)
	}
	if lineCount > 0 {
		return echo.NewHTTPError(http.StatusBadRequest, "product is used by invoices")
	}

	var product models.Product
	if err := h.DB.First(&product, id).Error; err != nil {
		return errorResponse(c, http.StatusNotFound, err)
	}
	if err := h.DB.Delete(&product).Error; err != nil {
		return errorResponse(c, http.StatusInternalServerError, err)
	}

	if err := h.Indexer.RemoveProduct(c.Request().Context(), product.ID); err != nil {
		logging.FromContext(c.Request().Context()).Error("product index sync failed", "error", err)
	}
	h.publish(c, map[string]any{
		"type":      "product_deleted",
		"productID": product.ID,
	})

	return c.NoContent(http.StatusNoContent)
}
