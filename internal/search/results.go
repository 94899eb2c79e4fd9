package search

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

// CategoryRef is the embedded category tuple carried on every result.
type CategoryRef struct {
	ID     int64  `json:"id"`
	Name   string `json:"name"`
	Parent *int64 `json:"parent"`
}

// Result is one search hit, tagged with its originating variant and projected
// to that variant's field set.
type Result struct {
	ID            int64               `json:"id"`
	ContentType   string              `json:"content_type"`
	Title         string              `json:"title"`
	Author        string              `json:"author"`
	Language      string              `json:"language"`
	AverageRating float64             `json:"average_rating"`
	RatingCount   int                 `json:"rating_count"`
	Views         int64               `json:"views"`
	Score         float64             `json:"score"`
	Highlight     map[string][]string `json:"highlight"`

	AuthorWorkplace    *string `json:"author_workplace,omitempty"`
	Type               *string `json:"type,omitempty"`
	PublicationDate    *string `json:"publication_date,omitempty"`
	SourceName         *string `json:"source_name,omitempty"`
	SourceURL          *string `json:"source_url,omitempty"`
	NewspaperOrJournal *string `json:"newspaper_or_journal,omitempty"`
	Image              *string `json:"image,omitempty"`
	EpubFile           *string `json:"epub_file,omitempty"`
	CoverImage         *string `json:"cover_image,omitempty"`

	Categories []CategoryRef `json:"categories"`
}

type esHit struct {
	Index     string                 `json:"_index"`
	ID        string                 `json:"_id"`
	Score     *float64               `json:"_score"`
	Source    map[string]interface{} `json:"_source"`
	Highlight map[string][]string    `json:"highlight"`
}

type esResponse struct {
	Hits struct {
		Total struct {
			Value int64 `json:"value"`
		} `json:"total"`
		Hits []esHit `json:"hits"`
	} `json:"hits"`
}

// ParseSearchResponse decodes a raw engine response into variant-projected
// results plus the total hit count.
func ParseSearchResponse(raw []byte) (int64, []Result, error) {
	var resp esResponse
	if err := json.Unmarshal(raw, &resp); err != nil {
		return 0, nil, fmt.Errorf("decode search response: %w", err)
	}

	results := make([]Result, 0, len(resp.Hits.Hits))
	for _, hit := range resp.Hits.Hits {
		id, err := strconv.ParseInt(hit.ID, 10, 64)
		if err != nil {
			continue
		}
		contentType := strings.TrimSuffix(hit.Index, "s")

		r := Result{
			ID:            id,
			ContentType:   contentType,
			Title:         stringField(hit.Source, "title", "Untitled"),
			Author:        stringField(hit.Source, "author", "Unknown"),
			Language:      stringField(hit.Source, "language", "tm"),
			AverageRating: math.Round(floatField(hit.Source, "average_rating")*100) / 100,
			RatingCount:   int(floatField(hit.Source, "rating_count")),
			Views:         int64(floatField(hit.Source, "views")),
			Highlight:     hit.Highlight,
			Categories:    categoryRefs(hit.Source["categories"]),
		}
		if hit.Score != nil {
			r.Score = *hit.Score
		}
		if r.Highlight == nil {
			r.Highlight = map[string][]string{}
		}

		switch contentType {
		case "article":
			r.AuthorWorkplace = optString(hit.Source, "author_workplace")
			r.Type = optString(hit.Source, "type")
			r.PublicationDate = formatResultDate(optString(hit.Source, "publication_date"))
			r.SourceName = optString(hit.Source, "source_name")
			r.SourceURL = optString(hit.Source, "source_url")
			r.NewspaperOrJournal = optString(hit.Source, "newspaper_or_journal")
			r.Image = optString(hit.Source, "image")
		case "book":
			r.EpubFile = optString(hit.Source, "epub_file")
			r.CoverImage = optString(hit.Source, "cover_image")
		case "dissertation":
			r.AuthorWorkplace = optString(hit.Source, "author_workplace")
			r.PublicationDate = formatResultDate(optString(hit.Source, "publication_date"))
		}

		results = append(results, r)
	}

	return resp.Hits.Total.Value, results, nil
}

// formatResultDate renders an ISO date as DD.MM.YYYY; unparseable input
// degrades to the bare date part.
func formatResultDate(iso *string) *string {
	if iso == nil {
		return nil
	}
	datePart, _, _ := strings.Cut(*iso, "T")
	t, err := time.Parse(dateLayout, datePart)
	if err != nil {
		return &datePart
	}
	out := t.Format("02.01.2006")
	return &out
}

func categoryRefs(v interface{}) []CategoryRef {
	items, ok := v.([]interface{})
	if !ok {
		return []CategoryRef{}
	}
	out := make([]CategoryRef, 0, len(items))
	for _, item := range items {
		m, ok := item.(map[string]interface{})
		if !ok {
			continue
		}
		ref := CategoryRef{
			ID:   int64(floatField(m, "id")),
			Name: stringField(m, "name", ""),
		}
		if p, ok := m["parent"].(float64); ok {
			parent := int64(p)
			ref.Parent = &parent
		}
		out = append(out, ref)
	}
	return out
}

func stringField(m map[string]interface{}, key, fallback string) string {
	if s, ok := m[key].(string); ok && s != "" {
		return s
	}
	return fallback
}

func optString(m map[string]interface{}, key string) *string {
	if s, ok := m[key].(string); ok && s != "" {
		return &s
	}
	return nil
}

func floatField(m map[string]interface{}, key string) float64 {
	if f, ok := m[key].(float64); ok {
		return f
	}
	return 0
}
