package search

import (
	"github.com/kitaphana/kitaphana-backend/internal/types"
)

// Request is a parsed, validated search request. All filters are optional and
// AND-combined.
type Request struct {
	Query    string
	Page     int
	PageSize int

	ContentType        types.ContentType // empty = all variants
	Language           string
	ArticleType        string
	Author             string
	PublicationDate    string
	PublicationDateGte string
	PublicationDateLte string
	CategoryID         int64
	CategoryName       string
}

// From converts the 1-based page into the engine's offset.
func (r Request) From() int {
	page := r.Page
	if page < 1 {
		page = 1
	}
	return (page - 1) * r.PageSize
}

// Indices returns the collections to query: the filtered variant's index, or
// all three for a cross-variant search.
func (r Request) Indices() []string {
	if r.ContentType != "" {
		return []string{r.ContentType.IndexName()}
	}
	out := make([]string, 0, 3)
	for _, ct := range types.AllContentTypes() {
		out = append(out, ct.IndexName())
	}
	return out
}

var sourceFields = []string{
	"title", "author", "language", "average_rating", "rating_count", "views",
	"publication_date", "image", "epub_file", "cover_image", "source_name",
	"source_url", "newspaper_or_journal", "author_workplace", "type", "categories",
}

// BuildSearchBody translates the request into the engine's query DSL.
//
// With query text: relevance-ranked weighted multi-field match with typo
// tolerance. Without: match_all ordered by rating then popularity, so default
// browsing favors quality over recency.
func BuildSearchBody(req Request) map[string]interface{} {
	var must interface{}
	if req.Query != "" {
		must = map[string]interface{}{
			"multi_match": map[string]interface{}{
				"query": req.Query,
				"fields": []string{
					"title^10",
					"content^3",
					"author^5",
					"author_workplace^2",
					"source_name^2",
					"newspaper_or_journal^2",
				},
				"type":      "best_fields",
				"fuzziness": "AUTO",
			},
		}
	} else {
		must = map[string]interface{}{"match_all": map[string]interface{}{}}
	}

	var sort []interface{}
	if req.Query != "" {
		sort = []interface{}{
			map[string]interface{}{"_score": map[string]interface{}{"order": "desc"}},
		}
	} else {
		sort = []interface{}{
			map[string]interface{}{"average_rating": map[string]interface{}{"order": "desc"}},
			map[string]interface{}{"_score": map[string]interface{}{"order": "desc"}},
			map[string]interface{}{"views": map[string]interface{}{"order": "desc"}},
		}
	}

	body := map[string]interface{}{
		"from": req.From(),
		"size": req.PageSize,
		"query": map[string]interface{}{
			"bool": map[string]interface{}{
				"must":   []interface{}{must},
				"filter": buildFilters(req),
			},
		},
		"_source": sourceFields,
		"highlight": map[string]interface{}{
			"pre_tags":  []string{"<mark>"},
			"post_tags": []string{"</mark>"},
			"fields": map[string]interface{}{
				"title":   map[string]interface{}{"fragment_size": 100, "number_of_fragments": 1},
				"content": map[string]interface{}{"fragment_size": 120, "number_of_fragments": 1},
			},
		},
		"sort": sort,
	}
	return body
}

func buildFilters(req Request) []interface{} {
	filters := []interface{}{}

	if req.ContentType != "" {
		filters = append(filters, map[string]interface{}{
			"term": map[string]interface{}{"_index": req.ContentType.IndexName()},
		})
	}
	if req.Language != "" {
		filters = append(filters, map[string]interface{}{
			"term": map[string]interface{}{"language": req.Language},
		})
	}
	if req.ArticleType != "" {
		filters = append(filters, map[string]interface{}{
			"term": map[string]interface{}{"type": req.ArticleType},
		})
	}
	if req.Author != "" {
		filters = append(filters, map[string]interface{}{
			"term": map[string]interface{}{"author.keyword": req.Author},
		})
	}
	if req.PublicationDate != "" {
		filters = append(filters, map[string]interface{}{
			"term": map[string]interface{}{"publication_date": req.PublicationDate},
		})
	}
	if req.PublicationDateGte != "" {
		filters = append(filters, map[string]interface{}{
			"range": map[string]interface{}{
				"publication_date": map[string]interface{}{"gte": req.PublicationDateGte},
			},
		})
	}
	if req.PublicationDateLte != "" {
		filters = append(filters, map[string]interface{}{
			"range": map[string]interface{}{
				"publication_date": map[string]interface{}{"lte": req.PublicationDateLte},
			},
		})
	}
	if req.CategoryID != 0 {
		filters = append(filters, map[string]interface{}{
			"nested": map[string]interface{}{
				"path": "categories",
				"query": map[string]interface{}{
					"term": map[string]interface{}{"categories.id": req.CategoryID},
				},
			},
		})
	}
	if req.CategoryName != "" {
		filters = append(filters, map[string]interface{}{
			"nested": map[string]interface{}{
				"path": "categories",
				"query": map[string]interface{}{
					"match": map[string]interface{}{"categories.name": req.CategoryName},
				},
			},
		})
	}

	return filters
}
