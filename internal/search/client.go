package search

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"

	elasticsearch "github.com/elastic/go-elasticsearch/v8"

	"github.com/kitaphana/kitaphana-backend/internal/logger"
	"github.com/kitaphana/kitaphana-backend/internal/utils"
)

// Client is the narrow surface of the search engine the rest of the system
// depends on. Tests substitute a stub.
type Client interface {
	IndexDocument(ctx context.Context, index, id string, doc interface{}) error
	DeleteDocument(ctx context.Context, index, id string) error
	Search(ctx context.Context, indices []string, body interface{}) ([]byte, error)
	Ping(ctx context.Context) bool
	RecreateIndex(ctx context.Context, index string, mapping interface{}) error
	Refresh(ctx context.Context, index string) error
}

// StatusError is a non-2xx search engine response. 4xx (other than 408/429)
// means the request itself is bad and retrying is pointless.
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("search engine returned %d: %s", e.StatusCode, e.Body)
}

func (e *StatusError) Permanent() bool {
	if e.StatusCode == 408 || e.StatusCode == 429 {
		return false
	}
	return e.StatusCode >= 400 && e.StatusCode < 500
}

type esClient struct {
	log *logger.Logger
	es  *elasticsearch.Client
}

func NewESClient(log *logger.Logger) (Client, error) {
	clientLog := log.With("service", "ESClient")

	esURL := utils.GetEnv("ELASTICSEARCH_URL", "http://localhost:9200", log)
	es, err := elasticsearch.NewClient(elasticsearch.Config{
		Addresses: []string{esURL},
	})
	if err != nil {
		return nil, fmt.Errorf("create elasticsearch client: %w", err)
	}
	return &esClient{log: clientLog, es: es}, nil
}

func (c *esClient) IndexDocument(ctx context.Context, index, id string, doc interface{}) error {
	body, err := json.Marshal(doc)
	if err != nil {
		return &StatusError{StatusCode: 400, Body: fmt.Sprintf("document not encodable: %v", err)}
	}
	res, err := c.es.Index(
		index,
		bytes.NewReader(body),
		c.es.Index.WithDocumentID(id),
		c.es.Index.WithContext(ctx),
	)
	if err != nil {
		return fmt.Errorf("index %s/%s: %w", index, id, err)
	}
	defer res.Body.Close()
	if res.IsError() {
		return &StatusError{StatusCode: res.StatusCode, Body: readSnippet(res.Body)}
	}
	return nil
}

// DeleteDocument removes a document; absence is not an error.
func (c *esClient) DeleteDocument(ctx context.Context, index, id string) error {
	res, err := c.es.Delete(index, id, c.es.Delete.WithContext(ctx))
	if err != nil {
		return fmt.Errorf("delete %s/%s: %w", index, id, err)
	}
	defer res.Body.Close()
	if res.IsError() && res.StatusCode != 404 {
		return &StatusError{StatusCode: res.StatusCode, Body: readSnippet(res.Body)}
	}
	return nil
}

func (c *esClient) Search(ctx context.Context, indices []string, body interface{}) ([]byte, error) {
	raw, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("encode search body: %w", err)
	}
	res, err := c.es.Search(
		c.es.Search.WithContext(ctx),
		c.es.Search.WithIndex(indices...),
		c.es.Search.WithBody(bytes.NewReader(raw)),
		c.es.Search.WithTrackTotalHits(true),
	)
	if err != nil {
		return nil, fmt.Errorf("execute search: %w", err)
	}
	defer res.Body.Close()
	if res.IsError() {
		return nil, &StatusError{StatusCode: res.StatusCode, Body: readSnippet(res.Body)}
	}
	out, err := io.ReadAll(res.Body)
	if err != nil {
		return nil, fmt.Errorf("read search response: %w", err)
	}
	return out, nil
}

func (c *esClient) Ping(ctx context.Context) bool {
	res, err := c.es.Ping(c.es.Ping.WithContext(ctx))
	if err != nil {
		return false
	}
	defer res.Body.Close()
	return !res.IsError()
}

// RecreateIndex drops the index if present and creates it with the given
// mapping.
func (c *esClient) RecreateIndex(ctx context.Context, index string, mapping interface{}) error {
	exists, err := c.es.Indices.Exists([]string{index}, c.es.Indices.Exists.WithContext(ctx))
	if err != nil {
		return fmt.Errorf("check index %s: %w", index, err)
	}
	exists.Body.Close()
	if exists.StatusCode == 200 {
		res, err := c.es.Indices.Delete([]string{index}, c.es.Indices.Delete.WithContext(ctx))
		if err != nil {
			return fmt.Errorf("delete index %s: %w", index, err)
		}
		res.Body.Close()
		if res.IsError() {
			return &StatusError{StatusCode: res.StatusCode, Body: "delete index " + index}
		}
		c.log.Warn("Deleted index", "index", index)
	}

	raw, err := json.Marshal(mapping)
	if err != nil {
		return fmt.Errorf("encode mapping for %s: %w", index, err)
	}
	res, err := c.es.Indices.Create(
		index,
		c.es.Indices.Create.WithBody(bytes.NewReader(raw)),
		c.es.Indices.Create.WithContext(ctx),
	)
	if err != nil {
		return fmt.Errorf("create index %s: %w", index, err)
	}
	defer res.Body.Close()
	if res.IsError() {
		return &StatusError{StatusCode: res.StatusCode, Body: readSnippet(res.Body)}
	}
	c.log.Info("Created index", "index", index)
	return nil
}

func (c *esClient) Refresh(ctx context.Context, index string) error {
	res, err := c.es.Indices.Refresh(
		c.es.Indices.Refresh.WithIndex(index),
		c.es.Indices.Refresh.WithContext(ctx),
	)
	if err != nil {
		return fmt.Errorf("refresh index %s: %w", index, err)
	}
	res.Body.Close()
	return nil
}

func readSnippet(r io.Reader) string {
	raw, _ := io.ReadAll(io.LimitReader(r, 512))
	return string(raw)
}
