package es

import (
	"io"
	"log/slog"

	"github.com/elastic/go-elasticsearch/v9"

	"github.com/mpelletier/facturio/internal/config"
)

// Index names kept in sync by the write handlers.
const (
	IndexCustomers = "customers"
	IndexProducts  = "products"
)

// NewClient connects to Elasticsearch when ES_URL is configured. A nil
// client is a valid result: search then falls back to SQL filtering.
func NewClient(cfg *config.Config, log *slog.Logger) (*elasticsearch.Client, error) {
	if cfg.ES_URL == "" {
		log.Info("ES_URL not set, search will use SQL filtering")
		return nil, nil
	}

	esCfg := elasticsearch.Config{
		Addresses: []string{cfg.ES_URL},
		Username:  cfg.ES_USER,
		Password:  cfg.ES_PASSWORD,
	}

	client, err := elasticsearch.NewClient(esCfg)
	if err != nil {
		return nil, err
	}

	res, err := client.Info()
	if err != nil {
		return nil, err
	}
	defer res.Body.Close()
	if res.IsError() {
		body, _ := io.ReadAll(res.Body)
		log.Error("elasticsearch error response", "body", string(body))
		return nil, errResponse{status: res.Status()}
	}

	log.Info("connected to elasticsearch", "url", cfg.ES_URL)
	return client, nil
}

type errResponse struct{ status string }

func (e errResponse) Error() string { return "elasticsearch error: " + e.status }
