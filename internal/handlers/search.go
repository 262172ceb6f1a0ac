package handlers

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/elastic/go-elasticsearch/v9"
	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"github.com/mpelletier/facturio/internal/logging"
	"github.com/mpelletier/facturio/internal/models"
	"github.com/mpelletier/facturio/internal/service/search"
)

const searchLimit = 5

type SearchHandler struct {
	DB *gorm.DB
	ES *elasticsearch.Client
}

type searchResult struct {
	Type  string `json:"type"`
	Label string `json:"label"`
	ID    uint   `json:"id"`
	Data  any    `json:"data"`
}

// Search resolves a free-text query across customers, products, and (for a
// numeric query) invoices. Customers and products go through Elasticsearch
// when a client is configured, SQL filtering otherwise; invoice lookup is
// always by primary key.
func (h *SearchHandler) Search(c echo.Context) error {
	q := c.QueryParam("q")
	if q == "" {
		return c.JSON(http.StatusOK, []searchResult{})
	}

	ctx := c.Request().Context()
	results := []searchResult{}

	customers, products, err := h.lookup(c, q)
	if err != nil {
		logging.FromContext(ctx).Error("search backend failed", "error", err)
		return errorResponse(c, http.StatusInternalServerError, err)
	}

	for _, cu := range customers {
		results = append(results, searchResult{
			Type:  "Client",
			Label: cu.Name,
			ID:    cu.ID,
			Data:  map[string]any{"name": cu.Name, "email": cu.Email, "address": cu.Address, "siret": cu.Siret},
		})
	}
	for _, p := range products {
		results = append(results, searchResult{
			Type:  "Produit",
			Label: p.Name,
			ID:    p.ID,
			Data:  map[string]any{"name": p.Name, "price": p.Price, "vat_rate": p.VATRate},
		})
	}

	if id, err := strconv.Atoi(q); err == nil {
		var invoice models.Invoice
		if err := h.DB.Preload("Customer").First(&invoice, id).Error; err == nil {
			results = append(results, searchResult{
				Type:  "Facture",
				Label: "Facture #" + strconv.Itoa(int(invoice.ID)) + " (" + invoice.Customer.Name + ")",
				ID:    invoice.ID,
			})
		}
	}

	return c.JSON(http.StatusOK, results)
}

func (h *SearchHandler) lookup(c echo.Context, q string) ([]models.Customer, []models.Product, error) {
	ctx := c.Request().Context()

	if h.ES != nil {
		customers, err := search.SearchCustomers(ctx, h.ES, q, searchLimit)
		if err != nil {
			return nil, nil, err
		}
		products, err := search.SearchProducts(ctx, h.ES, q, searchLimit)
		if err != nil {
			return nil, nil, err
		}
		return customers, products, nil
	}

	pattern := "%" + strings.ToLower(q) + "%"

	var customers []models.Customer
	if err := h.DB.Where("lower(name) LIKE ? OR lower(email) LIKE ?", pattern, pattern).
		Limit(searchLimit).Find(&customers).Error; err != nil {
		return nil, nil, err
	}

	var products []models.Product
	if err := h.DB.Where("lower(name) LIKE ?", pattern).
		Limit(searchLimit).Find(&products).Error; err != nil {
		return nil, nil, err
	}

	return customers, products, nil
}
