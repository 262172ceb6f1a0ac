package handlers

import (
	"encoding/json"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/mpelletier/facturio/internal/models"
)

func searchTypes(results []searchResult) []string {
	out := make([]string, len(results))
	for i, r := range results {
		out[i] = r.Type
	}
	return out
}

func TestSearchEmptyQuery(t *testing.T) {
	env := newTestEnv(t)

	rec, c := env.doJSONRequest(http.MethodGet, "/api/v1/search", nil)
	require.NoError(t, env.Search.Search(c))
	require.Equal(t, http.StatusOK, rec.Code)
	require.JSONEq(t, "[]", rec.Body.String())
}

func TestSearchMatchesCustomersAndProducts(t *testing.T) {
	env := newTestEnv(t)

	require.NoError(t, env.DB.Create(&models.Customer{Name: "Durand SA", Email: "info@durand.fr"}).Error)
	require.NoError(t, env.DB.Create(&models.Customer{Name: "Autre", Email: "hello@durand-export.fr"}).Error)
	require.NoError(t, env.DB.Create(&models.Product{Name: "Pack Durand", Price: 10}).Error)

	rec, c := env.doJSONRequest(http.MethodGet, "/api/v1/search?q=durand", nil)
	require.NoError(t, env.Search.Search(c))
	require.Equal(t, http.StatusOK, rec.Code)

	var results []searchResult
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &results))
	require.Len(t, results, 3)
	require.ElementsMatch(t, []string{"Client", "Client", "Produit"}, searchTypes(results))
}

func TestSearchNumericQueryResolvesInvoice(t *testing.T) {
	env := newTestEnv(t)

	customer := models.Customer{Name: "Dupont SARL"}
	require.NoError(t, env.DB.Create(&customer).Error)
	invoice := models.Invoice{CustomerID: customer.ID, DueDate: time.Now()}
	require.NoError(t, env.DB.Create(&invoice).Error)

	rec, c := env.doJSONRequest(http.MethodGet, "/api/v1/search?q=1", nil)
	require.NoError(t, env.Search.Search(c))
	require.Equal(t, http.StatusOK, rec.Code)

	var results []searchResult
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &results))

	var found bool
	for _, r := range results {
		if r.Type == "Facture" {
			found = true
			require.Equal(t, invoice.ID, r.ID)
			require.Contains(t, r.Label, "Dupont SARL")
		}
	}
	require.True(t, found, "expected an invoice hit for a numeric query")
}

func TestSearchNoMatches(t *testing.T) {
	env := newTestEnv(t)

	rec, c := env.doJSONRequest(http.MethodGet, "/api/v1/search?q=nothinghere", nil)
	require.NoError(t, env.Search.Search(c))
	require.Equal(t, http.StatusOK, rec.Code)
	require.JSONEq(t, "[]", rec.Body.String())
}
