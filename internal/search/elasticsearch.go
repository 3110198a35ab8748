// Package search keeps an Elasticsearch index of categories for text search.
package search

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/elastic/go-elasticsearch/v8"

	"github.com/inflationfighter/price-service/internal/catalog"
)

// categoryMapping is applied when the index is created.
const categoryMapping = `{
	"settings": {
		"analysis": {
			"analyzer": {
				"folded": {
					"tokenizer": "standard",
					"filter": ["lowercase", "asciifolding"]
				}
			}
		}
	},
	"mappings": {
		"properties": {
			"category_id":  {"type": "keyword"},
			"name":         {"type": "text", "analyzer": "folded"},
			"unit":         {"type": "keyword"},
			"search_terms": {"type": "text", "analyzer": "folded"}
		}
	}
}`

// maxResults bounds a single search.
const maxResults = 100

// CategoryIndex implements catalog.CategoryIndex on Elasticsearch.
type CategoryIndex struct {
	client *elasticsearch.Client
	index  string
}

// NewCategoryIndex creates an index handle. The index is not created until EnsureIndex.
func NewCategoryIndex(client *elasticsearch.Client, index string) *CategoryIndex {
	return &CategoryIndex{client: client, index: index}
}

// NewClient builds an Elasticsearch client for the given addresses.
func NewClient(addresses ...string) (*elasticsearch.Client, error) {
	client, err := elasticsearch.NewClient(elasticsearch.Config{Addresses: addresses})
	if err != nil {
		return nil, fmt.Errorf("create elasticsearch client: %w", err)
	}
	return client, nil
}

type categoryDocument struct {
	CategoryID  string   `json:"category_id"`
	Name        string   `json:"name"`
	Unit        string   `json:"unit"`
	SearchTerms []string `json:"search_terms"`
}

// EnsureIndex creates the index with its mapping if it does not exist yet.
func (ix *CategoryIndex) EnsureIndex(ctx context.Context) error {
	res, err := ix.client.Indices.Exists([]string{ix.index}, ix.client.Indices.Exists.WithContext(ctx))
	if err != nil {
		return fmt.Errorf("check index existence: %w", err)
	}
	res.Body.Close()
	if res.StatusCode == 200 {
		return nil
	}

	res, err = ix.client.Indices.Create(
		ix.index,
		ix.client.Indices.Create.WithBody(strings.NewReader(categoryMapping)),
		ix.client.Indices.Create.WithContext(ctx),
	)
	if err != nil {
		return fmt.Errorf("create index: %w", err)
	}
	defer res.Body.Close()

	if res.IsError() {
		body, _ := io.ReadAll(res.Body)
		return fmt.Errorf("create index %s: %s", ix.index, string(body))
	}
	return nil
}

// IndexCategories bulk-indexes categories, replacing documents with the same ID.
func (ix *CategoryIndex) IndexCategories(ctx context.Context, categories []*catalog.Category) error {
	if len(categories) == 0 {
		return nil
	}

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	for _, c := range categories {
		meta := map[string]any{"index": map[string]any{"_index": ix.index, "_id": c.ID}}
		if err := enc.Encode(meta); err != nil {
			return fmt.Errorf("encode bulk meta: %w", err)
		}
		doc := categoryDocument{CategoryID: c.ID, Name: c.Name, Unit: c.Unit, SearchTerms: c.SearchTerms}
		if err := enc.Encode(doc); err != nil {
			return fmt.Errorf("encode category %s: %w", c.ID, err)
		}
	}

	res, err := ix.client.Bulk(
		&buf,
		ix.client.Bulk.WithIndex(ix.index),
		ix.client.Bulk.WithRefresh("true"),
		ix.client.Bulk.WithContext(ctx),
	)
	if err != nil {
		return fmt.Errorf("bulk index: %w", err)
	}
	defer res.Body.Close()

	if res.IsError() {
		body, _ := io.ReadAll(res.Body)
		return fmt.Errorf("bulk index: %s", string(body))
	}

	var summary struct {
		Errors bool `json:"errors"`
	}
	if err := json.NewDecoder(res.Body).Decode(&summary); err != nil {
		return fmt.Errorf("decode bulk response: %w", err)
	}
	if summary.Errors {
		return fmt.Errorf("bulk index: one or more documents were rejected")
	}
	return nil
}

// SearchIDs implements catalog.CategoryIndex.
func (ix *CategoryIndex) SearchIDs(ctx context.Context, q string) ([]string, error) {
	query := map[string]any{
		"_source": false,
		"size":    maxResults,
		"query": map[string]any{
			"multi_match": map[string]any{
				"query":  q,
				"type":   "phrase_prefix",
				"fields": []string{"name^2", "search_terms"},
			},
		},
	}
	body, err := json.Marshal(query)
	if err != nil {
		return nil, fmt.Errorf("encode query: %w", err)
	}

	res, err := ix.client.Search(
		ix.client.Search.WithContext(ctx),
		ix.client.Search.WithIndex(ix.index),
		ix.client.Search.WithBody(bytes.NewReader(body)),
	)
	if err != nil {
		return nil, fmt.Errorf("search: %w", err)
	}
	defer res.Body.Close()

	if res.IsError() {
		raw, _ := io.ReadAll(res.Body)
		return nil, fmt.Errorf("search %s: %s", ix.index, string(raw))
	}

	var parsed struct {
		Hits struct {
			Hits []struct {
				ID string `json:"_id"`
			} `json:"hits"`
		} `json:"hits"`
	}
	if err := json.NewDecoder(res.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("decode search response: %w", err)
	}

	ids := make([]string, 0, len(parsed.Hits.Hits))
	for _, h := range parsed.Hits.Hits {
		ids = append(ids, h.ID)
	}
	return ids, nil
}
