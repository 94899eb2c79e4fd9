package search

import (
	"math"

	"github.com/kitaphana/kitaphana-backend/internal/types"
)

const dateLayout = "2006-01-02"

// BuildDocument flattens a content record into its index document: shared
// fields, variant-specific fields, canonical ISO dates and embedded category
// tuples. The document is a full replacement, never a partial update.
func BuildDocument(rec *types.ContentRecord) map[string]interface{} {
	doc := map[string]interface{}{
		"title":          rec.Title,
		"content":        rec.Content,
		"author":         rec.Author,
		"language":       rec.Language,
		"average_rating": math.Round(rec.AverageRating*100) / 100,
		"rating_count":   rec.RatingCount,
		"views":          rec.Views,
	}

	switch rec.ContentType {
	case types.ContentTypeArticle:
		doc["author_workplace"] = strOrNil(rec.AuthorWorkplace)
		doc["type"] = strOrNil(rec.ArticleType)
		doc["publication_date"] = dateOrNil(rec)
		doc["source_name"] = strOrNil(rec.SourceName)
		doc["source_url"] = strOrNil(rec.SourceURL)
		doc["newspaper_or_journal"] = strOrNil(rec.NewspaperOrJournal)
		doc["image"] = strOrNil(rec.Image)
	case types.ContentTypeBook:
		doc["epub_file"] = strOrNil(rec.EpubFile)
		doc["cover_image"] = strOrNil(rec.CoverImage)
	case types.ContentTypeDissertation:
		doc["author_workplace"] = strOrNil(rec.AuthorWorkplace)
		doc["publication_date"] = dateOrNil(rec)
	}

	cats := make([]map[string]interface{}, 0, len(rec.Categories))
	for _, c := range rec.Categories {
		if c == nil {
			continue
		}
		cats = append(cats, map[string]interface{}{
			"id":     c.ID,
			"name":   c.Name,
			"parent": c.ParentID,
		})
	}
	doc["categories"] = cats

	return doc
}

func strOrNil(s *string) interface{} {
	if s == nil || *s == "" {
		return nil
	}
	return *s
}

func dateOrNil(rec *types.ContentRecord) interface{} {
	if rec.PublicationDate == nil {
		return nil
	}
	return rec.PublicationDate.Format(dateLayout)
}
