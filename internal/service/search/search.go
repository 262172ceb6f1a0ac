package search

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/elastic/go-elasticsearch/v9"

	"github.com/mpelletier/facturio/internal/es"
	"github.com/mpelletier/facturio/internal/models"
)

type customerDoc struct {
	ID      uint   `json:"id"`
	Name    string `json:"name"`
	Email   string `json:"email"`
	Address string `json:"address"`
	Siret   string `json:"siret"`
}

type productDoc struct {
	ID      uint    `json:"id"`
	Name    string  `json:"name"`
	Price   float64 `json:"price"`
	VATRate float64 `json:"vat_rate"`
}

// SearchCustomers runs a fuzzy multi_match over indexed customers.
func SearchCustomers(ctx context.Context, client *elasticsearch.Client, query string, size int) ([]models.Customer, error) {
	hits, err := doSearch(ctx, client, es.IndexCustomers, query, []string{"name^2", "email"}, size)
	if err != nil {
		return nil, err
	}
	out := make([]models.Customer, 0, len(hits))
	for _, raw := range hits {
		var d customerDoc
		if err := json.Unmarshal(raw, &d); err != nil {
			return nil, err
		}
		out = append(out, models.Customer{ID: d.ID, Name: d.Name, Email: d.Email, Address: d.Address, Siret: d.Siret})
	}
	return out, nil
}

// SearchProducts runs a fuzzy match over indexed products.
func SearchProducts(ctx context.Context, client *elasticsearch.Client, query string, size int) ([]models.Product, error) {
	hits, err := doSearch(ctx, client, es.IndexProducts, query, []string{"name"}, size)
	if err != nil {
		return nil, err
	}
	out := make([]models.Product, 0, len(hits))
	for _, raw := range hits {
		var d productDoc
		if err := json.Unmarshal(raw, &d); err != nil {
			return nil, err
		}
		out = append(out, models.Product{ID: d.ID, Name: d.Name, Price: d.Price, VATRate: d.VATRate})
	}
	return out, nil
}

func doSearch(ctx context.Context, client *elasticsearch.Client, index, query string, fields []string, size int) ([]json.RawMessage, error) {
	body := map[string]interface{}{
		"query": map[string]interface{}{
			"multi_match": map[string]interface{}{
				"query":     query,
				"fields":    fields,
				"fuzziness": "AUTO",
			},
		},
		"size": size,
	}

	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(body); err != nil {
		return nil, fmt.Errorf("search: encoding query: %w", err)
	}

	res, err := client.Search(
		client.Search.WithContext(ctx),
		client.Search.WithIndex(index),
		client.Search.WithBody(&buf),
	)
	if err != nil {
		return nil, fmt.Errorf("search: %w", err)
	}
	defer res.Body.Close()
	if res.IsError() {
		return nil, fmt.Errorf("search: %s", res.Status())
	}

	var r struct {
		Hits struct {
			Hits []struct {
				Source json.RawMessage `json:"_source"`
			} `json:"hits"`
		} `json:"hits"`
	}
	if err := json.NewDecoder(res.Body).Decode(&r); err != nil {
		return nil, err
	}

	out := make([]json.RawMessage, len(r.Hits.Hits))
	for i, hit := range r.Hits.Hits {
		out[i] = hit.Source
	}
	return out, nil
}

// Indexer mirrors customer and product writes into Elasticsearch. All
// methods are best-effort no-ops when no client is configured; callers log
// failures instead of failing the write.
type Indexer struct {
	ES *elasticsearch.Client
}

func (ix *Indexer) IndexCustomer(ctx context.Context, c *models.Customer) error {
	return ix.index(ctx, es.IndexCustomers, c.ID, customerDoc{ID: c.ID, Name: c.Name, Email: c.Email, Address: c.Address, Siret: c.Siret})
}

func (ix *Indexer) RemoveCustomer(ctx context.Context, id uint) error {
	return ix.remove(ctx, es.IndexCustomers, id)
}

func (ix *Indexer) IndexProduct(ctx context.Context, p *models.Product) error {
	return ix.index(ctx, es.IndexProducts, p.ID, productDoc{ID: p.ID, Name: p.Name, Price: p.Price, VATRate: p.VATRate})
}

func (ix *Indexer) RemoveProduct(ctx context.Context, id uint) error {
	return ix.remove(ctx, es.IndexProducts, id)
}

func (ix *Indexer) index(ctx context.Context, index string, id uint, doc interface{}) error {
	if ix == nil || ix.ES == nil {
		return nil
	}
	data, err := json.Marshal(doc)
	if err != nil {
		return err
	}
	res, err := ix.ES.Index(
		index,
		bytes.NewReader(data),
		ix.ES.Index.WithDocumentID(strconv.FormatUint(uint64(id), 10)),
		ix.ES.Index.WithContext(ctx),
	)
	if err != nil {
		return err
	}
	defer res.Body.Close()
	if res.IsError() {
		return fmt.Errorf("index %s/%d: %s", index, id, res.Status())
	}
	return nil
}

func (ix *Indexer) remove(ctx context.Context, index string, id uint) error {
	if ix == nil || ix.ES == nil {
		return nil
	}
	res, err := ix.ES.Delete(
		index,
		strconv.FormatUint(uint64(id), 10),
		ix.ES.Delete.WithContext(ctx),
	)
	if err != nil {
		return err
	}
	defer res.Body.Close()
	// 404 just means the doc was never indexed.
	if res.IsError() && res.StatusCode != 404 {
		return fmt.Errorf("delete %s/%d: %s", index, id, res.Status())
	}
	return nil
}
