package services

import (
	"context"
	"fmt"
	"net/url"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/kitaphana/kitaphana-backend/internal/cache"
	"github.com/kitaphana/kitaphana-backend/internal/logger"
	"github.com/kitaphana/kitaphana-backend/internal/repos"
	"github.com/kitaphana/kitaphana-backend/internal/search"
	"github.com/kitaphana/kitaphana-backend/internal/types"
)

const (
	listCacheTTL   = 10 * time.Minute
	detailCacheTTL = time.Minute
)

// ContentInput carries the writable fields of a record. Variant-specific
// fields outside the variant are rejected.
type ContentInput struct {
	Title              string     `json:"title"`
	Content            string     `json:"content"`
	Author             string     `json:"author"`
	Language           string     `json:"language"`
	AuthorWorkplace    *string    `json:"author_workplace"`
	ArticleType        *string    `json:"type"`
	PublicationDate    *time.Time `json:"publication_date"`
	SourceName         *string    `json:"source_name"`
	SourceURL          *string    `json:"source_url"`
	NewspaperOrJournal *string    `json:"newspaper_or_journal"`
	Image              *string    `json:"image"`
	EpubFile           *string    `json:"epub_file"`
	CoverImage         *string    `json:"cover_image"`
	CategoryIDs        []int64    `json:"category_ids"`
}

// ContentDetail is a record plus the viewer's bookmark annotation.
type ContentDetail struct {
	*types.ContentRecord
	IsBookmarked bool `json:"is_bookmarked"`
}

// ContentService is the read/write surface over the record store. Every
// mutation triggers the index synchronizer and bumps the cache generation;
// reads go through the short-TTL result cache.
type ContentService interface {
	List(ctx context.Context, contentType types.ContentType, filter repos.ContentFilter, path string, params url.Values) ([]*types.ContentRecord, error)
	GetDetail(ctx context.Context, contentType types.ContentType, id int64, userID *uuid.UUID) (*ContentDetail, error)
	Create(ctx context.Context, contentType types.ContentType, input ContentInput) (*types.ContentRecord, error)
	Update(ctx context.Context, contentType types.ContentType, id int64, input ContentInput) (*types.ContentRecord, error)
	Delete(ctx context.Context, contentType types.ContentType, id int64) error
	Categories(ctx context.Context, contentType types.ContentType) ([]*types.Category, error)
}

type contentService struct {
	db           *gorm.DB
	log          *logger.Logger
	contentRepo  repos.ContentRepo
	categoryRepo repos.CategoryRepo
	bookmarkRepo repos.BookmarkRepo
	indexer      search.Indexer
	cache        cache.Service
}

func NewContentService(
	db *gorm.DB,
	baseLog *logger.Logger,
	contentRepo repos.ContentRepo,
	categoryRepo repos.CategoryRepo,
	bookmarkRepo repos.BookmarkRepo,
	indexer search.Indexer,
	cacheService cache.Service,
) ContentService {
	return &contentService{
		db:           db,
		log:          baseLog.With("service", "ContentService"),
		contentRepo:  contentRepo,
		categoryRepo: categoryRepo,
		bookmarkRepo: bookmarkRepo,
		indexer:      indexer,
		cache:        cacheService,
	}
}

func (cs *contentService) List(ctx context.Context, contentType types.ContentType, filter repos.ContentFilter, path string, params url.Values) ([]*types.ContentRecord, error) {
	key := cache.ListKey(cs.cache.Generation(ctx), contentType, path, params)
	var cached []*types.ContentRecord
	if cs.cache.GetJSON(ctx, key, &cached) {
		return cached, nil
	}

	records, err := cs.contentRepo.List(ctx, nil, contentType, filter)
	if err != nil {
		return nil, fmt.Errorf("list content: %w", err)
	}

	cs.cache.SetJSON(ctx, key, records, listCacheTTL)
	return records, nil
}

func (cs *contentService) GetDetail(ctx context.Context, contentType types.ContentType, id int64, userID *uuid.UUID) (*ContentDetail, error) {
	userKey := ""
	if userID != nil {
		userKey = userID.String()
	}
	key := cache.DetailKey(cs.cache.Generation(ctx), contentType, id, userKey)
	var cached ContentDetail
	if cs.cache.GetJSON(ctx, key, &cached) {
		return &cached, nil
	}

	rec, err := cs.contentRepo.GetByID(ctx, nil, contentType, id)
	if err != nil {
		return nil, fmt.Errorf("load content: %w", err)
	}
	if rec == nil {
		return nil, ErrNotFound
	}

	detail := &ContentDetail{ContentRecord: rec}
	if userID != nil {
		bookmarked, err := cs.bookmarkRepo.Exists(ctx, nil, *userID, contentType, id)
		if err != nil {
			// Annotation only; the record itself is still served.
			cs.log.Warn("Bookmark lookup failed", "content_type", contentType, "content_id", id, "error", err)
		} else {
			detail.IsBookmarked = bookmarked
		}
	}

	cs.cache.SetJSON(ctx, key, detail, detailCacheTTL)
	return detail, nil
}

func (cs *contentService) Create(ctx context.Context, contentType types.ContentType, input ContentInput) (*types.ContentRecord, error) {
	rec, err := cs.buildRecord(contentType, input)
	if err != nil {
		return nil, err
	}
	categories, err := cs.resolveCategories(ctx, contentType, input.CategoryIDs)
	if err != nil {
		return nil, err
	}

	err = cs.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if _, err := cs.contentRepo.Create(ctx, tx, rec); err != nil {
			return fmt.Errorf("create record: %w", err)
		}
		if len(categories) > 0 {
			if err := cs.contentRepo.ReplaceCategories(ctx, tx, rec, categories); err != nil {
				return fmt.Errorf("attach categories: %w", err)
			}
		}
		return nil
	})
	if err != nil {
		cs.log.Error("Create failed", "content_type", contentType, "error", err)
		return nil, err
	}

	cs.indexer.EnqueueIndex(contentType, rec.ID)
	cs.cache.BumpGeneration(ctx)
	return rec, nil
}

func (cs *contentService) Update(ctx context.Context, contentType types.ContentType, id int64, input ContentInput) (*types.ContentRecord, error) {
	existing, err := cs.contentRepo.GetByID(ctx, nil, contentType, id)
	if err != nil {
		return nil, fmt.Errorf("load content: %w", err)
	}
	if existing == nil {
		return nil, ErrNotFound
	}

	updated, err := cs.buildRecord(contentType, input)
	if err != nil {
		return nil, err
	}
	updated.ID = existing.ID
	updated.Views = existing.Views
	updated.AverageRating = existing.AverageRating
	updated.RatingCount = existing.RatingCount
	updated.CreatedAt = existing.CreatedAt

	categories, err := cs.resolveCategories(ctx, contentType, input.CategoryIDs)
	if err != nil {
		return nil, err
	}

	err = cs.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := cs.contentRepo.Update(ctx, tx, updated); err != nil {
			return fmt.Errorf("update record: %w", err)
		}
		if err := cs.contentRepo.ReplaceCategories(ctx, tx, updated, categories); err != nil {
			return fmt.Errorf("replace categories: %w", err)
		}
		return nil
	})
	if err != nil {
		cs.log.Error("Update failed", "content_type", contentType, "content_id", id, "error", err)
		return nil, err
	}

	cs.indexer.EnqueueIndex(contentType, id)
	cs.cache.BumpGeneration(ctx)
	return updated, nil
}

func (cs *contentService) Delete(ctx context.Context, contentType types.ContentType, id int64) error {
	deleted, err := cs.contentRepo.Delete(ctx, nil, contentType, id)
	if err != nil {
		return fmt.Errorf("delete record: %w", err)
	}
	if !deleted {
		return ErrNotFound
	}

	cs.indexer.EnqueueDelete(contentType, id)
	cs.cache.BumpGeneration(ctx)
	return nil
}

func (cs *contentService) Categories(ctx context.Context, contentType types.ContentType) ([]*types.Category, error) {
	return cs.categoryRepo.ListTopLevel(ctx, nil, contentType)
}

func (cs *contentService) buildRecord(contentType types.ContentType, input ContentInput) (*types.ContentRecord, error) {
	if input.Title == "" {
		return nil, fmt.Errorf("%w: title is required", ErrInvalidInput)
	}
	if input.Author == "" {
		return nil, fmt.Errorf("%w: author is required", ErrInvalidInput)
	}
	language := input.Language
	if language == "" {
		language = types.LanguageTurkmen
	}
	switch language {
	case types.LanguageTurkmen, types.LanguageRussian, types.LanguageEnglish:
	default:
		return nil, fmt.Errorf("%w: unknown language %q", ErrInvalidInput, language)
	}

	rec := &types.ContentRecord{
		ContentType: contentType,
		Title:       input.Title,
		Content:     input.Content,
		Author:      input.Author,
		Language:    language,
	}

	switch contentType {
	case types.ContentTypeArticle:
		if input.ArticleType != nil {
			switch *input.ArticleType {
			case types.ArticleTypeLocal, types.ArticleTypeForeign:
			default:
				return nil, fmt.Errorf("%w: unknown article type %q", ErrInvalidInput, *input.ArticleType)
			}
		}
		rec.AuthorWorkplace = input.AuthorWorkplace
		rec.ArticleType = input.ArticleType
		rec.PublicationDate = input.PublicationDate
		rec.SourceName = input.SourceName
		rec.SourceURL = input.SourceURL
		rec.NewspaperOrJournal = input.NewspaperOrJournal
		rec.Image = input.Image
	case types.ContentTypeBook:
		rec.EpubFile = input.EpubFile
		rec.CoverImage = input.CoverImage
	case types.ContentTypeDissertation:
		rec.AuthorWorkplace = input.AuthorWorkplace
		rec.PublicationDate = input.PublicationDate
	}

	return rec, nil
}

// resolveCategories loads the referenced categories scoped to the variant, so
// a record can never point into another variant's category space.
func (cs *contentService) resolveCategories(ctx context.Context, contentType types.ContentType, ids []int64) ([]*types.Category, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	categories, err := cs.categoryRepo.GetByIDs(ctx, nil, contentType, ids)
	if err != nil {
		return nil, fmt.Errorf("load categories: %w", err)
	}
	if len(categories) != len(ids) {
		return nil, fmt.Errorf("%w: unknown category id for %s", ErrInvalidInput, contentType)
	}
	return categories, nil
}
