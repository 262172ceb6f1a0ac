package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"github.com/mpelletier/facturio/internal/models"
)

type CompanyHandler struct {
	DB *gorm.DB
}

func (h *CompanyHandler) GetCompany(c echo.Context) error {
	var company models.Company
	if err := h.DB.First(&company).Error; err != nil {
		return errorResponse(c, http.StatusNotFound, err)
	}
	return c.JSON(http.StatusOK, company)
}

// UpdateCompany replaces the profile field by field from a typed payload;
// unknown keys in the request body are ignored by the binder.
func (h *CompanyHandler) UpdateCompany(c echo.Context) error {
	var req struct {
		Name        string `json:"name"`
		Address     string `json:"address"`
		Siret       string `json:"siret"`
		VATNumber   string `json:"vat_number"`
		IBAN        string `json:"iban"`
		BIC         string `json:"bic"`
		LogoURL     string `json:"logo_url"`
		LegalTerms  string `json:"legal_terms"`
		ThemeColor  string `json:"theme_color"`
		PaymentTerm int    `json:"payment_term"`
	}
	if err := c.Bind(&req); err != nil {
		return errorResponse(c, http.StatusBadRequest, err)
	}

	var company models.Company
	if err := h.DB.First(&company).Error; err != nil {
		return errorResponse(c, http.StatusNotFound, err)
	}

	company.Name = req.Name
	company.Address = req.Address
	company.Siret = req.Siret
	company.VATNumber = req.VATNumber
	company.IBAN = req.IBAN
	company.BIC = req.BIC
	company.LogoURL = req.LogoURL
	company.LegalTerms = req.LegalTerms
	company.ThemeColor = req.ThemeColor
	company.PaymentTerm = req.PaymentTerm

	if err := h.DB.Save(&company).Error; err != nil {
		return errorResponse(c, http.StatusInternalServerError, err)
	}
	return c.JSON(http.StatusOK, map[string]string{"message": "ok"})
}
