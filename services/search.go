// Package services: services/search.go
// Server-side substring filtering over small document collections.
// Linear scan per request; the collections involved are tens to low
// hundreds of documents.
package services

import (
	"fmt"
	"strings"
)

// SearchConfig names the document fields a query is matched against:
// scalar fields are stringified and substring-matched, array fields
// match when any element matches.
type SearchConfig struct {
	Fields        []string
	ArrayFields   []string
	CaseSensitive bool
}

// FilterDocuments returns the documents matching the free-text query
// under the given config. An empty query matches everything.
func FilterDocuments(docs []map[string]interface{}, query string, cfg SearchConfig) []map[string]interface{} {
	query = strings.TrimSpace(query)
	if query == "" {
		return docs
	}
	if !cfg.CaseSensitive {
		query = strings.ToLower(query)
	}

	filtered := make([]map[string]interface{}, 0, len(docs))
	for _, doc := range docs {
		if MatchesQuery(doc, query, cfg) {
			filtered = append(filtered, doc)
		}
	}
	return filtered
}

// MatchesQuery reports whether one document matches the query. The
// query is assumed to be pre-lowercased when the config is
// case-insensitive.
func MatchesQuery(doc map[string]interface{}, query string, cfg SearchConfig) bool {
	for _, field := range cfg.Fields {
		if value, ok := doc[field]; ok {
			if containsQuery(stringify(value), query, cfg.CaseSensitive) {
				return true
			}
		}
	}
	for _, field := range cfg.ArrayFields {
		items, ok := doc[field].([]interface{})
		if !ok {
			continue
		}
		for _, item := range items {
			if containsQuery(stringify(item), query, cfg.CaseSensitive) {
				return true
			}
		}
	}
	return false
}

func containsQuery(value, query string, caseSensitive bool) bool {
	if !caseSensitive {
		value = strings.ToLower(value)
	}
	return strings.Contains(value, query)
}

func stringify(value interface{}) string {
	if value == nil {
		return ""
	}
	if s, ok := value.(string); ok {
		return s
	}
	return fmt.Sprintf("%v", value)
}
