// Package search keeps an Elasticsearch index of receipts keyed by product
// names and answers per-user full-text queries against it.
package search

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/elastic/go-elasticsearch/v9"
	"github.com/google/uuid"

	"github.com/Skotchmaster/receipts/internal/models"
)

func NewClient(ctx context.Context, url, user, password string) (*elasticsearch.Client, error) {
	client, err := elasticsearch.NewClient(elasticsearch.Config{
		Addresses: []string{url},
		Username:  user,
		Password:  password,
	})
	if err != nil {
		return nil, fmt.Errorf("elasticsearch client: %w", err)
	}

	res, err := client.Info(client.Info.WithContext(ctx))
	if err != nil {
		return nil, fmt.Errorf("elasticsearch info: %w", err)
	}
	defer res.Body.Close()
	if res.IsError() {
		return nil, responseError("info", res.StatusCode, res.Body)
	}
	return client, nil
}

type Index struct {
	es   *elasticsearch.Client
	name string
}

func New(es *elasticsearch.Client, name string) *Index {
	return &Index{es: es, name: name}
}

type document struct {
	ReceiptID    string    `json:"receipt_id"`
	UserID       string    `json:"user_id"`
	ProductNames []string  `json:"product_names"`
	Total        float64   `json:"total"`
	PaymentType  string    `json:"payment_type"`
	CreatedAt    time.Time `json:"created_at"`
}

const mapping = `{
  "mappings": {
    "properties": {
      "receipt_id":    {"type": "keyword"},
      "user_id":       {"type": "keyword"},
      "product_names": {"type": "text"},
      "total":         {"type": "scaled_float", "scaling_factor": 100},
      "payment_type":  {"type": "keyword"},
      "created_at":    {"type": "date"}
    }
  }
}`

// EnsureIndex creates the index with its mapping when it does not exist yet.
func (ix *Index) EnsureIndex(ctx context.Context) error {
	res, err := ix.es.Indices.Exists([]string{ix.name}, ix.es.Indices.Exists.WithContext(ctx))
	if err != nil {
		return fmt.Errorf("index exists: %w", err)
	}
	res.Body.Close()
	if res.StatusCode == http.StatusOK {
		return nil
	}

	res, err = ix.es.Indices.Create(ix.name,
		ix.es.Indices.Create.WithContext(ctx),
		ix.es.Indices.Create.WithBody(bytes.NewReader([]byte(mapping))),
	)
	if err != nil {
		return fmt.Errorf("create index: %w", err)
	}
	defer res.Body.Close()
	if res.IsError() {
		return responseError("create index", res.StatusCode, res.Body)
	}
	return nil
}

func (ix *Index) IndexReceipt(ctx context.Context, rc *models.Receipt) error {
	doc := document{
		ReceiptID:    rc.ID.String(),
		UserID:       rc.UserID.String(),
		ProductNames: make([]string, 0, len(rc.Products)),
		Total:        rc.Total.InexactFloat64(),
		PaymentType:  string(rc.PaymentType),
		CreatedAt:    rc.CreatedAt,
	}
	for _, p := range rc.Products {
		doc.ProductNames = append(doc.ProductNames, p.Name)
	}

	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(doc); err != nil {
		return err
	}
	res, err := ix.es.Index(ix.name, &buf,
		ix.es.Index.WithContext(ctx),
		ix.es.Index.WithDocumentID(doc.ReceiptID),
	)
	if err != nil {
		return fmt.Errorf("index receipt: %w", err)
	}
	defer res.Body.Close()
	if res.IsError() {
		return responseError("index receipt", res.StatusCode, res.Body)
	}
	return nil
}

// SearchReceipts returns receipt ids of userID matching query, best first.
func (ix *Index) SearchReceipts(ctx context.Context, userID uuid.UUID, query string, from, size int) ([]uuid.UUID, error) {
	body := map[string]any{
		"query": map[string]any{
			"bool": map[string]any{
				"must": map[string]any{
					"match": map[string]any{
						"product_names": map[string]any{
							"query":     query,
							"fuzziness": "AUTO",
						},
					},
				},
				"filter": map[string]any{
					"term": map[string]any{"user_id": userID.String()},
				},
			},
		},
		"_source": []string{"receipt_id"},
		"from":    from,
		"size":    size,
	}

	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(body); err != nil {
		return nil, err
	}
	res, err := ix.es.Search(
		ix.es.Search.WithContext(ctx),
		ix.es.Search.WithIndex(ix.name),
		ix.es.Search.WithBody(&buf),
	)
	if err != nil {
		return nil, fmt.Errorf("search: %w", err)
	}
	defer res.Body.Close()
	if res.IsError() {
		return nil, responseError("search", res.StatusCode, res.Body)
	}

	var r struct {
		Hits struct {
			Hits []struct {
				Source struct {
					ReceiptID string `json:"receipt_id"`
				} `json:"_source"`
			} `json:"hits"`
		} `json:"hits"`
	}
	if err := json.NewDecoder(res.Body).Decode(&r); err != nil {
		return nil, fmt.Errorf("decode search response: %w", err)
	}

	ids := make([]uuid.UUID, 0, len(r.Hits.Hits))
	for _, h := range r.Hits.Hits {
		id, err := uuid.Parse(h.Source.ReceiptID)
		if err != nil {
			continue
		}
		ids = append(ids, id)
	}
	return ids, nil
}

func responseError(op string, status int, body io.Reader) error {
	b, _ := io.ReadAll(io.LimitReader(body, 512))
	return fmt.Errorf("elasticsearch %s: status %d: %s", op, status, bytes.TrimSpace(b))
}
