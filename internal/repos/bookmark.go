package repos

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/kitaphana/kitaphana-backend/internal/logger"
	"github.com/kitaphana/kitaphana-backend/internal/types"
)

type BookmarkRepo interface {
	Exists(ctx context.Context, tx *gorm.DB, userID uuid.UUID, contentType types.ContentType, contentID int64) (bool, error)
	Add(ctx context.Context, tx *gorm.DB, userID uuid.UUID, contentType types.ContentType, contentID int64) error
	Remove(ctx context.Context, tx *gorm.DB, userID uuid.UUID, contentType types.ContentType, contentID int64) error
	ListIDs(ctx context.Context, tx *gorm.DB, userID uuid.UUID, contentType types.ContentType) ([]int64, error)
}

type bookmarkRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewBookmarkRepo(db *gorm.DB, baseLog *logger.Logger) BookmarkRepo {
	return &bookmarkRepo{db: db, log: baseLog.With("repo", "BookmarkRepo")}
}

func (br *bookmarkRepo) Exists(ctx context.Context, tx *gorm.DB, userID uuid.UUID, contentType types.ContentType, contentID int64) (bool, error) {
	transaction := tx
	if transaction == nil {
		transaction = br.db
	}
	var count int64
	if err := transaction.WithContext(ctx).
		Model(&types.Bookmark{}).
		Where("user_id = ? AND content_type = ? AND content_id = ?", userID, contentType, contentID).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

func (br *bookmarkRepo) Add(ctx context.Context, tx *gorm.DB, userID uuid.UUID, contentType types.ContentType, contentID int64) error {
	transaction := tx
	if transaction == nil {
		transaction = br.db
	}
	row := types.Bookmark{
		UserID:      userID,
		ContentType: contentType,
		ContentID:   contentID,
	}
	return transaction.WithContext(ctx).Create(&row).Error
}

func (br *bookmarkRepo) Remove(ctx context.Context, tx *gorm.DB, userID uuid.UUID, contentType types.ContentType, contentID int64) error {
	transaction := tx
	if transaction == nil {
		transaction = br.db
	}
	return transaction.WithContext(ctx).
		Where("user_id = ? AND content_type = ? AND content_id = ?", userID, contentType, contentID).
		Delete(&types.Bookmark{}).Error
}

func (br *bookmarkRepo) ListIDs(ctx context.Context, tx *gorm.DB, userID uuid.UUID, contentType types.ContentType) ([]int64, error) {
	transaction := tx
	if transaction == nil {
		transaction = br.db
	}
	var ids []int64
	if err := transaction.WithContext(ctx).
		Model(&types.Bookmark{}).
		Where("user_id = ? AND content_type = ?", userID, contentType).
		Order("created_at DESC").
		Pluck("content_id", &ids).Error; err != nil {
		return nil, err
	}
	return ids, nil
}
