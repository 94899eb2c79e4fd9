package repos

import (
	"context"
	"testing"
	"time"

	"github.com/kitaphana/kitaphana-backend/internal/repos/testutil"
	"github.com/kitaphana/kitaphana-backend/internal/types"
)

func TestContentRepoScopesByVariant(t *testing.T) {
	db := testutil.DB(t)
	ctx := context.Background()
	repo := NewContentRepo(db, testutil.Logger(t))

	article := testutil.SeedContent(t, ctx, db, types.ContentTypeArticle, "scoped article")
	book := testutil.SeedContent(t, ctx, db, types.ContentTypeBook, "scoped book")

	// A book id looked up as an article is a miss, not a hit.
	got, err := repo.GetByID(ctx, nil, types.ContentTypeArticle, book.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if got != nil {
		t.Fatalf("book row must not resolve as article")
	}

	got, err = repo.GetByID(ctx, nil, types.ContentTypeArticle, article.ID)
	if err != nil || got == nil {
		t.Fatalf("GetByID: rec=%v err=%v", got, err)
	}

	deleted, err := repo.Delete(ctx, nil, types.ContentTypeBook, article.ID)
	if err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if deleted {
		t.Fatalf("article row must not delete as book")
	}
}

func TestContentRepoListFilters(t *testing.T) {
	db := testutil.DB(t)
	ctx := context.Background()
	repo := NewContentRepo(db, testutil.Logger(t))

	local := types.ArticleTypeLocal
	foreign := types.ArticleTypeForeign
	d1 := time.Date(2020, 1, 10, 0, 0, 0, 0, time.UTC)
	d2 := time.Date(2022, 6, 1, 0, 0, 0, 0, time.UTC)

	a1 := testutil.SeedContent(t, ctx, db, types.ContentTypeArticle, "local tm")
	db.Model(a1).Updates(map[string]interface{}{"type": local, "publication_date": d1})
	a2 := testutil.SeedContent(t, ctx, db, types.ContentTypeArticle, "foreign ru")
	db.Model(a2).Updates(map[string]interface{}{"type": foreign, "language": "ru", "publication_date": d2})

	rows, err := repo.List(ctx, nil, types.ContentTypeArticle, ContentFilter{ArticleType: local, Page: 1, PageSize: 10})
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(rows) != 1 || rows[0].ID != a1.ID {
		t.Fatalf("type filter: %+v", rows)
	}

	rows, err = repo.List(ctx, nil, types.ContentTypeArticle, ContentFilter{DateGte: &d2, Page: 1, PageSize: 10})
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(rows) != 1 || rows[0].ID != a2.ID {
		t.Fatalf("date filter: %+v", rows)
	}

	// Newest first.
	rows, err = repo.List(ctx, nil, types.ContentTypeArticle, ContentFilter{Page: 1, PageSize: 10})
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(rows) != 2 || rows[0].ID != a2.ID {
		t.Fatalf("ordering: %+v", rows)
	}
}

func TestContentRepoIncrementViews(t *testing.T) {
	db := testutil.DB(t)
	ctx := context.Background()
	repo := NewContentRepo(db, testutil.Logger(t))

	rec := testutil.SeedContent(t, ctx, db, types.ContentTypeDissertation, "counted")

	for _, delta := range []int64{3, 4} {
		updated, err := repo.IncrementViews(ctx, nil, types.ContentTypeDissertation, rec.ID, delta)
		if err != nil || !updated {
			t.Fatalf("IncrementViews(%d): updated=%v err=%v", delta, updated, err)
		}
	}

	got, err := repo.GetByID(ctx, nil, types.ContentTypeDissertation, rec.ID)
	if err != nil || got == nil {
		t.Fatalf("GetByID: %v", err)
	}
	if got.Views != 7 {
		t.Fatalf("views = %d, want 7", got.Views)
	}

	updated, err := repo.IncrementViews(ctx, nil, types.ContentTypeDissertation, 999999, 1)
	if err != nil {
		t.Fatalf("IncrementViews missing: %v", err)
	}
	if updated {
		t.Fatalf("missing row must report not updated")
	}
}
