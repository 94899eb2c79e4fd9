package testutil

import (
	"context"
	"testing"

	"gorm.io/gorm"

	"github.com/kitaphana/kitaphana-backend/internal/types"
)

func SeedContent(tb testing.TB, ctx context.Context, db *gorm.DB, contentType types.ContentType, title string) *types.ContentRecord {
	tb.Helper()
	rec := &types.ContentRecord{
		ContentType: contentType,
		Title:       title,
		Content:     "body text",
		Author:      "Test Author",
		Language:    types.LanguageTurkmen,
	}
	if err := db.WithContext(ctx).Create(rec).Error; err != nil {
		tb.Fatalf("seed content: %v", err)
	}
	return rec
}

func SeedCategory(tb testing.TB, ctx context.Context, db *gorm.DB, contentType types.ContentType, name string, parentID *int64) *types.Category {
	tb.Helper()
	cat := &types.Category{
		ContentType: contentType,
		Name:        name,
		ParentID:    parentID,
	}
	if err := db.WithContext(ctx).Create(cat).Error; err != nil {
		tb.Fatalf("seed category: %v", err)
	}
	return cat
}
