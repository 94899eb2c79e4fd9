package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/kitaphana/kitaphana-backend/internal/cache"
	"github.com/kitaphana/kitaphana-backend/internal/logger"
	"github.com/kitaphana/kitaphana-backend/internal/repos"
	"github.com/kitaphana/kitaphana-backend/internal/types"
)

const bookmarksCacheTTL = 30 * time.Second

// BookmarkList groups a user's bookmarks by variant.
type BookmarkList struct {
	Articles      []*types.ContentRecord `json:"articles"`
	Books         []*types.ContentRecord `json:"books"`
	Dissertations []*types.ContentRecord `json:"dissertations"`
}

type BookmarkService interface {
	Toggle(ctx context.Context, userID uuid.UUID, contentType types.ContentType, contentID int64) (added bool, err error)
	ListMine(ctx context.Context, userID uuid.UUID) (*BookmarkList, error)
}

type bookmarkService struct {
	db           *gorm.DB
	log          *logger.Logger
	bookmarkRepo repos.BookmarkRepo
	contentRepo  repos.ContentRepo
	cache        cache.Service
}

func NewBookmarkService(
	db *gorm.DB,
	baseLog *logger.Logger,
	bookmarkRepo repos.BookmarkRepo,
	contentRepo repos.ContentRepo,
	cacheService cache.Service,
) BookmarkService {
	return &bookmarkService{
		db:           db,
		log:          baseLog.With("service", "BookmarkService"),
		bookmarkRepo: bookmarkRepo,
		contentRepo:  contentRepo,
		cache:        cacheService,
	}
}

func (bs *bookmarkService) Toggle(ctx context.Context, userID uuid.UUID, contentType types.ContentType, contentID int64) (bool, error) {
	rec, err := bs.contentRepo.GetByID(ctx, nil, contentType, contentID)
	if err != nil {
		return false, fmt.Errorf("load content: %w", err)
	}
	if rec == nil {
		return false, ErrNotFound
	}

	exists, err := bs.bookmarkRepo.Exists(ctx, nil, userID, contentType, contentID)
	if err != nil {
		return false, fmt.Errorf("look up bookmark: %w", err)
	}
	if exists {
		if err := bs.bookmarkRepo.Remove(ctx, nil, userID, contentType, contentID); err != nil {
			return false, fmt.Errorf("remove bookmark: %w", err)
		}
	} else {
		if err := bs.bookmarkRepo.Add(ctx, nil, userID, contentType, contentID); err != nil {
			return false, fmt.Errorf("add bookmark: %w", err)
		}
	}

	bs.cache.Delete(ctx, cache.BookmarksKey(userID.String()))
	return !exists, nil
}

func (bs *bookmarkService) ListMine(ctx context.Context, userID uuid.UUID) (*BookmarkList, error) {
	key := cache.BookmarksKey(userID.String())
	var cached BookmarkList
	if bs.cache.GetJSON(ctx, key, &cached) {
		return &cached, nil
	}

	list := &BookmarkList{
		Articles:      []*types.ContentRecord{},
		Books:         []*types.ContentRecord{},
		Dissertations: []*types.ContentRecord{},
	}
	for _, contentType := range types.AllContentTypes() {
		ids, err := bs.bookmarkRepo.ListIDs(ctx, nil, userID, contentType)
		if err != nil {
			return nil, fmt.Errorf("list bookmark ids: %w", err)
		}
		records, err := bs.contentRepo.GetByIDs(ctx, nil, contentType, ids)
		if err != nil {
			return nil, fmt.Errorf("load bookmarked records: %w", err)
		}
		switch contentType {
		case types.ContentTypeArticle:
			list.Articles = records
		case types.ContentTypeBook:
			list.Books = records
		case types.ContentTypeDissertation:
			list.Dissertations = records
		}
	}

	bs.cache.SetJSON(ctx, key, list, bookmarksCacheTTL)
	return list, nil
}
