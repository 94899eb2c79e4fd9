package search

import (
	"testing"
	"time"

	"github.com/kitaphana/kitaphana-backend/internal/types"
)

func strPtr(s string) *string { return &s }

func TestBuildDocumentArticle(t *testing.T) {
	pub := time.Date(2023, 4, 17, 0, 0, 0, 0, time.UTC)
	articleType := types.ArticleTypeLocal
	rec := &types.ContentRecord{
		ID:              12,
		ContentType:     types.ContentTypeArticle,
		Title:           "Title",
		Content:         "Body",
		Author:          "Author",
		Language:        types.LanguageRussian,
		AverageRating:   4.6789,
		RatingCount:     12,
		Views:           340,
		ArticleType:     &articleType,
		PublicationDate: &pub,
		SourceName:      strPtr("Source"),
		Categories: []*types.Category{
			{ID: 3, Name: "Poetry"},
		},
	}

	doc := BuildDocument(rec)

	if doc["title"] != "Title" || doc["language"] != "ru" {
		t.Fatalf("shared fields wrong: %v", doc)
	}
	if doc["average_rating"] != 4.68 {
		t.Fatalf("average_rating = %v, want 4.68 (rounded to 2 places)", doc["average_rating"])
	}
	if doc["publication_date"] != "2023-04-17" {
		t.Fatalf("publication_date = %v, want ISO date", doc["publication_date"])
	}
	if doc["type"] != types.ArticleTypeLocal || doc["source_name"] != "Source" {
		t.Fatalf("article fields wrong: %v", doc)
	}
	if doc["newspaper_or_journal"] != nil {
		t.Fatalf("unset optional field should be nil, got %v", doc["newspaper_or_journal"])
	}
	if _, ok := doc["epub_file"]; ok {
		t.Fatalf("article document must not carry book fields")
	}

	cats := doc["categories"].([]map[string]interface{})
	if len(cats) != 1 || cats[0]["id"] != int64(3) || cats[0]["name"] != "Poetry" {
		t.Fatalf("categories = %v", cats)
	}
}

func TestBuildDocumentBook(t *testing.T) {
	rec := &types.ContentRecord{
		ID:          5,
		ContentType: types.ContentTypeBook,
		Title:       "Book",
		Author:      "Author",
		Language:    types.LanguageTurkmen,
		EpubFile:    strPtr("books/5.epub"),
	}

	doc := BuildDocument(rec)

	if doc["epub_file"] != "books/5.epub" {
		t.Fatalf("epub_file = %v", doc["epub_file"])
	}
	if doc["cover_image"] != nil {
		t.Fatalf("cover_image = %v, want nil", doc["cover_image"])
	}
	if _, ok := doc["publication_date"]; ok {
		t.Fatalf("book document must not carry article fields")
	}
	if cats, ok := doc["categories"].([]map[string]interface{}); !ok || len(cats) != 0 {
		t.Fatalf("categories should be an empty slice, got %v", doc["categories"])
	}
}
