package tools

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"

	"github.com/meilisearch/meilisearch-go"
)

// Collections searchable through the meilisearch_query capability.
const (
	CollectionProducts = "products"
	CollectionUsers    = "users"
)

const defaultSearchLimit = 10

// SearchTool performs free-text and filtered lookups against the
// Meilisearch indexes. Failures carry the machine-readable Meilisearch
// error code (e.g. invalid_search_filter) so the model can tell bad
// filter syntax apart from an unreachable service.
type SearchTool struct {
	client meilisearch.ServiceManager
}

// NewSearchTool creates a SearchTool backed by the given client.
func NewSearchTool(client meilisearch.ServiceManager) *SearchTool {
	return &SearchTool{client: client}
}

func (t *SearchTool) Name() string { return NameMeilisearchQuery }

func (t *SearchTool) Description() string {
	return "Searches for products or users in Meilisearch. Use this for free-text search, fuzzy matching, " +
		"or combined with filters on indexed attributes like category, brand, price for products, or " +
		"location, registration_date, email for users. Index names are 'products' and 'users'."
}

func (t *SearchTool) Parameters() json.RawMessage {
	return json.RawMessage(`{
		"type": "object",
		"properties": {
			"index_name": {
				"type": "string",
				"description": "The name of the Meilisearch index to query. Must be 'products' or 'users'.",
				"enum": ["products", "users"]
			},
			"query": {
				"type": "string",
				"description": "The free-text search query string. Optional."
			},
			"filters": {
				"type": "string",
				"description": "A Meilisearch filter string for structured filtering (e.g. 'category = \"Electronics\" AND price < 500'). Attributes: products (category, brand, price), users (location, registration_date, email). Use CONTAINS or STARTS WITH for partial string matches."
			},
			"limit": {
				"type": "integer",
				"description": "Maximum number of results to return. Defaults to 10."
			},
			"offset": {
				"type": "integer",
				"description": "Number of results to skip."
			}
		},
		"required": ["index_name"]
	}`)
}

func (t *SearchTool) Execute(ctx context.Context, params map[string]any) (string, error) {
	indexName, _ := params["index_name"].(string)
	if indexName != CollectionProducts && indexName != CollectionUsers {
		return Errorf("invalid index_name, must be 'products' or 'users', got: %q", indexName), nil
	}

	query, _ := params["query"].(string)
	filters, _ := params["filters"].(string)

	req := &meilisearch.SearchRequest{
		Limit:  intArg(params, "limit", defaultSearchLimit),
		Offset: intArg(params, "offset", 0),
	}
	if filters != "" {
		req.Filter = filters
	}

	slog.Info("meilisearch query", "index", indexName, "query", query, "filters", filters)

	res, err := t.client.Index(indexName).SearchWithContext(ctx, query, req)
	if err != nil {
		var apiErr *meilisearch.Error
		if errors.As(err, &apiErr) && apiErr.MeilisearchApiError.Code != "" {
			slog.Warn("meilisearch api error", "index", indexName, "code", apiErr.MeilisearchApiError.Code)
			return Encode(map[string]any{
				"success": false,
				"code":    apiErr.MeilisearchApiError.Code,
				"type":    apiErr.MeilisearchApiError.Type,
				"message": apiErr.MeilisearchApiError.Message,
			}), nil
		}
		return Errorf("search on index %q failed: %v", indexName, err), nil
	}

	return Encode(map[string]any{
		"success":            true,
		"hits":               res.Hits,
		"estimatedTotalHits": res.EstimatedTotalHits,
	}), nil
}

// intArg reads a numeric argument that JSON decoding delivers as
// float64, falling back to def when absent or malformed.
func intArg(params map[string]any, key string, def int64) int64 {
	switch v := params[key].(type) {
	case float64:
		return int64(v)
	case int:
		return int64(v)
	case int64:
		return v
	default:
		return def
	}
}
