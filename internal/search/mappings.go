package search

// IndexMapping is shared by all three per-variant indices: the superset of
// variant fields, so index-level filtering stays uniform and cross-index
// queries never hit unmapped-field errors.
func IndexMapping() map[string]interface{} {
	return map[string]interface{}{
		"settings": map[string]interface{}{
			"number_of_shards":   1,
			"number_of_replicas": 0,
		},
		"mappings": map[string]interface{}{
			"properties": map[string]interface{}{
				"title": map[string]interface{}{
					"type":     "text",
					"analyzer": "standard",
					"fields": map[string]interface{}{
						"keyword": map[string]interface{}{"type": "keyword"},
					},
				},
				"content": map[string]interface{}{"type": "text", "analyzer": "standard"},
				"author": map[string]interface{}{
					"type": "text",
					"fields": map[string]interface{}{
						"keyword": map[string]interface{}{"type": "keyword"},
					},
				},
				"author_workplace":     map[string]interface{}{"type": "text"},
				"source_name":          map[string]interface{}{"type": "text"},
				"source_url":           map[string]interface{}{"type": "keyword"},
				"newspaper_or_journal": map[string]interface{}{"type": "text"},
				"type":                 map[string]interface{}{"type": "keyword"},
				"language":             map[string]interface{}{"type": "keyword"},
				"publication_date":     map[string]interface{}{"type": "date"},
				"average_rating":       map[string]interface{}{"type": "float"},
				"rating_count":         map[string]interface{}{"type": "integer"},
				"views":                map[string]interface{}{"type": "integer"},
				"image":                map[string]interface{}{"type": "keyword"},
				"epub_file":            map[string]interface{}{"type": "keyword"},
				"cover_image":          map[string]interface{}{"type": "keyword"},
				"categories": map[string]interface{}{
					"type": "nested",
					"properties": map[string]interface{}{
						"id": map[string]interface{}{"type": "integer"},
						"name": map[string]interface{}{
							"type": "text",
							"fields": map[string]interface{}{
								"keyword": map[string]interface{}{"type": "keyword"},
							},
						},
						"parent": map[string]interface{}{"type": "integer"},
					},
				},
			},
		},
	}
}
