package handlers

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/require"

	"github.com/mpelletier/facturio/internal/models"
)

func TestCreateCustomer(t *testing.T) {
	env := newTestEnv(t)

	rec, c := env.doJSONRequest(http.MethodPost, "/api/v1/customers", map[string]string{
		"name":    "Dupont SARL",
		"email":   "contact@dupont.fr",
		"address": "12 rue des Lilas, Lyon",
		"siret":   "123 456 789 00012",
	})
	require.NoError(t, env.Customers.CreateCustomer(c))
	require.Equal(t, http.StatusCreated, rec.Code)

	var resp models.Customer
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.NotZero(t, resp.ID)
	require.Equal(t, "Dupont SARL", resp.Name)
	require.Equal(t, "contact@dupont.fr", resp.Email)
}

func TestUpdateCustomer(t *testing.T) {
	env := newTestEnv(t)

	customer := models.Customer{Name: "Old Name", Email: "old@ex.fr"}
	require.NoError(t, env.DB.Create(&customer).Error)

	rec, c := env.doJSONRequest(http.MethodPut, "/api/v1/customers/1", map[string]string{
		"name":  "New Name",
		"email": "new@ex.fr",
	})
	c.SetParamNames("id")
	c.SetParamValues("1")
	require.NoError(t, env.Customers.UpdateCustomer(c))
	require.Equal(t, http.StatusOK, rec.Code)

	var stored models.Customer
	require.NoError(t, env.DB.First(&stored, customer.ID).Error)
	require.Equal(t, "New Name", stored.Name)
	require.Equal(t, "new@ex.fr", stored.Email)
}

func TestDeleteCustomer(t *testing.T) {
	env := newTestEnv(t)

	customer := models.Customer{Name: "Ephemeral"}
	require.NoError(t, env.DB.Create(&customer).Error)

	rec, c := env.doJSONRequest(http.MethodDelete, "/api/v1/customers/1", nil)
	c.SetParamNames("id")
	c.SetParamValues("1")
	require.NoError(t, env.Customers.DeleteCustomer(c))
	require.Equal(t, http.StatusNoContent, rec.Code)

	var count int64
	env.DB.Model(&models.Customer{}).Count(&count)
	require.Zero(t, count)
}

func TestDeleteCustomerWithInvoicesRejected(t *testing.T) {
	env := newTestEnv(t)

	customer := models.Customer{Name: "Billed"}
	require.NoError(t, env.DB.Create(&customer).Error)
	require.NoError(t, env.DB.Create(&models.Invoice{CustomerID: customer.ID}).Error)

	_, c := env.doJSONRequest(http.MethodDelete, "/api/v1/customers/1", nil)
	c.SetParamNames("id")
	c.SetParamValues("1")
	err := env.Customers.DeleteCustomer(c)
	he, ok := err.(*echo.HTTPError)
	require.True(t, ok, "expected HTTPError")
	require.Equal(t, http.StatusBadRequest, he.Code)

	var count int64
	env.DB.Model(&models.Customer{}).Count(&count)
	require.EqualValues(t, 1, count)
}

func TestGetCustomersOrderedByName(t *testing.T) {
	env := newTestEnv(t)

	for _, name := range []string{"Zulu", "Alpha", "Mike"} {
		require.NoError(t, env.DB.Create(&models.Customer{Name: name}).Error)
	}

	rec, c := env.doJSONRequest(http.MethodGet, "/api/v1/customers", nil)
	require.NoError(t, env.Customers.GetCustomers(c))
	require.Equal(t, http.StatusOK, rec.Code)

	var resp []models.Customer
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Len(t, resp, 3)
	require.Equal(t, "Alpha", resp[0].Name)
	require.Equal(t, "Mike", resp[1].Name)
	require.Equal(t, "Zulu", resp[2].Name)
}
