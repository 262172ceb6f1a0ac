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
)

type CustomerHandler struct {
	DB       *gorm.DB
	Producer *events.Producer
	Indexer  *search.Indexer
}

func (h *CustomerHandler) publish(c echo.Context, event map[string]any) {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()
	if err := h.Producer.PublishEvent(ctx, events.TopicCustomers, fmt.Sprint(event["customerID"]), event); err != nil {
		logging.FromContext(c.Request().Context()).Error("kafka publish failed", "error", err)
	}
}

func (h *CustomerHandler) reindex(c echo.Context, customer *models.Customer) {
	if err := h.Indexer.IndexCustomer(c.Request().Context(), customer); err != nil {
		logging.FromContext(c.Request().Context()).Error("customer index sync failed", "error", err)
	}
}

func (h *CustomerHandler) GetCustomers(c echo.Context) error {
	var customers []models.Customer
	if err := h.DB.Order("name ASC").Find(&customers).Error; err != nil {
		return errorResponse(c, http.StatusInternalServerError, err)
	}
	return c.JSON(http.StatusOK, customers)
}

func (h *CustomerHandler) CreateCustomer(c echo.Context) error {
	var req struct {
		Name    string `json:"name"`
		Email   string `json:"email"`
		Address string `json:"address"`
		Siret   string `json:"siret"`
	}
	if err := c.Bind(&req); err != nil {
		return errorResponse(c, http.StatusBadRequest, err)
	}

	customer := models.Customer{
		Name:    req.Name,
		Email:   req.Email,
		Address: req.Address,
		Siret:   req.Siret,
	}
	if err := h.DB.Create(&customer).Error; err != nil {
		return errorResponse(c, http.StatusInternalServerError, err)
	}

	h.reindex(c, &customer)
	h.publish(c, map[string]any{
		"type":       "customer_created",
		"customerID": customer.ID,
		"name":       customer.Name,
	})

	return c.JSON(http.StatusCreated, customer)
}

func (h *CustomerHandler) UpdateCustomer(c echo.Context) error {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return errorResponse(c, http.StatusBadRequest, err)
	}

	var req struct {
		Name    string `json:"name"`
		Email   string `json:"email"`
		Address string `json:"address"`
		Siret   string `json:"siret"`
	}
	if err := c.Bind(&req); err != nil {
		return errorResponse(c, http.StatusBadRequest, err)
	}

	var customer models.Customer
	if err := h.DB.First(&customer, id).Error; err != nil {
		return errorResponse(c, http.StatusNotFound, err)
	}

	customer.Name = req.Name
	customer.Email = req.Email
	customer.Address = req.Address
	customer.Siret = req.Siret

	if err := h.DB.Save(&customer).Error; err != nil {
		return errorResponse(c, http.StatusInternalServerError, err)
	}

	h.reindex(c, &customer)
	h.publish(c, map[string]any{
		"type":       "customer_updated",
		"customerID": customer.ID,
		"name":       customer.Name,
	})

	return c.JSON(http.StatusOK, map[string]string{"message": "ok"})
}

// DeleteCustomer refuses to remove a customer that still has invoices.
func (h *CustomerHandler) DeleteCustomer(c echo.Context) error {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return errorResponse(c, http.StatusBadRequest, err)
	}

	var invoiceCount int64
	if err := h.DB.Model(&models.Invoice{}).Where("customer_id = ?", id).Count(&invoiceCount).Error; err != nil {
		return errorResponse(c, http.StatusInternalServerError, err)
	}
	if invoiceCount > 0 {
		return echo.NewHTTPError(http.StatusBadRequest, "customer has invoices")
	}

	var customer models.Customer
	if err := h.DB.First(&customer, id).Error; err != nil {
		return errorResponse(c, http.StatusNotFound, err)
	}
	if err := h.DB.Delete(&customer).Error; err != nil {
		return errorResponse(c, http.StatusInternalServerError, err)
	}

	if err := h.Indexer.RemoveCustomer(c.Request().Context(), customer.ID); err != nil {
		logging.FromContext(c.Request().Context()).Error("customer index sync failed", "error", err)
	}
	h.publish(c, map[string]any{
		"type":       "customer_deleted",
		"customerID": customer.ID,
	})

	return c.NoContent(http.StatusNoContent)
}
