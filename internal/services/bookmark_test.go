package services

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"

	"github.com/kitaphana/kitaphana-backend/internal/cache"
	"github.com/kitaphana/kitaphana-backend/internal/repos"
	"github.com/kitaphana/kitaphana-backend/internal/repos/testutil"
	"github.com/kitaphana/kitaphana-backend/internal/types"
)

func TestBookmarkToggle(t *testing.T) {
	db := testutil.DB(t)
	log := testutil.Logger(t)
	ctx := context.Background()

	bookmarkRepo := repos.NewBookmarkRepo(db, log)
	contentRepo := repos.NewContentRepo(db, log)
	svc := NewBookmarkService(db, log, bookmarkRepo, contentRepo, cache.NewNoop())

	userID := uuid.New()
	rec := testutil.SeedContent(t, ctx, db, types.ContentTypeBook, "toggled book")

	added, err := svc.Toggle(ctx, userID, types.ContentTypeBook, rec.ID)
	if err != nil || !added {
		t.Fatalf("first toggle: added=%v err=%v", added, err)
	}
	added, err = svc.Toggle(ctx, userID, types.ContentTypeBook, rec.ID)
	if err != nil || added {
		t.Fatalf("second toggle should remove: added=%v err=%v", added, err)
	}

	if _, err := svc.Toggle(ctx, userID, types.ContentTypeBook, 999999); !errors.Is(err, ErrNotFound) {
		t.Fatalf("missing content: err = %v, want ErrNotFound", err)
	}
}

func TestBookmarkListMineGroupsByVariant(t *testing.T) {
	db := testutil.DB(t)
	log := testutil.Logger(t)
	ctx := context.Background()

	bookmarkRepo := repos.NewBookmarkRepo(db, log)
	contentRepo := repos.NewContentRepo(db, log)
	svc := NewBookmarkService(db, log, bookmarkRepo, contentRepo, cache.NewNoop())

	userID := uuid.New()
	article := testutil.SeedContent(t, ctx, db, types.ContentTypeArticle, "saved article")
	book := testutil.SeedContent(t, ctx, db, types.ContentTypeBook, "saved book")
	testutil.SeedContent(t, ctx, db, types.ContentTypeDissertation, "unsaved dissertation")

	for _, target := range []*types.ContentRecord{article, book} {
		if _, err := svc.Toggle(ctx, userID, target.ContentType, target.ID); err != nil {
			t.Fatalf("toggle %s: %v", target.ContentType, err)
		}
	}

	list, err := svc.ListMine(ctx, userID)
	if err != nil {
		t.Fatalf("ListMine: %v", err)
	}
	if len(list.Articles) != 1 || list.Articles[0].ID != article.ID {
		t.Fatalf("articles: %+v", list.Articles)
	}
	if len(list.Books) != 1 || list.Books[0].ID != book.ID {
		t.Fatalf("books: %+v", list.Books)
	}
	if len(list.Dissertations) != 0 {
		t.Fatalf("dissertations should be empty: %+v", list.Dissertations)
	}
}
