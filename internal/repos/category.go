package repos

import (
	"context"

	"gorm.io/gorm"

	"github.com/kitaphana/kitaphana-backend/internal/logger"
	"github.com/kitaphana/kitaphana-backend/internal/types"
)

type CategoryRepo interface {
	Create(ctx context.Context, tx *gorm.DB, cat *types.Category) (*types.Category, error)
	GetByIDs(ctx context.Context, tx *gorm.DB, contentType types.ContentType, ids []int64) ([]*types.Category, error)
	ListByType(ctx context.Context, tx *gorm.DB, contentType types.ContentType) ([]*types.Category, error)
	ListTopLevel(ctx context.Context, tx *gorm.DB, contentType types.ContentType) ([]*types.Category, error)
}

type categoryRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewCategoryRepo(db *gorm.DB, baseLog *logger.Logger) CategoryRepo {
	return &categoryRepo{db: db, log: baseLog.With("repo", "CategoryRepo")}
}

func (cr *categoryRepo) Create(ctx context.Context, tx *gorm.DB, cat *types.Category) (*types.Category, error) {
	transaction := tx
	if transaction == nil {
		transaction = cr.db
	}
	if err := transaction.WithContext(ctx).Create(cat).Error; err != nil {
		return nil, err
	}
	return cat, nil
}

func (cr *categoryRepo) GetByIDs(ctx context.Context, tx *gorm.DB, contentType types.ContentType, ids []int64) ([]*types.Category, error) {
	transaction := tx
	if transaction == nil {
		transaction = cr.db
	}
	var results []*types.Category
	if len(ids) == 0 {
		return results, nil
	}
	if err := transaction.WithContext(ctx).
		Where("content_type = ? AND id IN ?", contentType, ids).
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (cr *categoryRepo) ListByType(ctx context.Context, tx *gorm.DB, contentType types.ContentType) ([]*types.Category, error) {
	transaction := tx
	if transaction == nil {
		transaction = cr.db
	}
	var results []*types.Category
	if err := transaction.WithContext(ctx).
		Where("content_type = ?", contentType).
		Order("name ASC").
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

// ListTopLevel returns root categories with their subcategories preloaded.
func (cr *categoryRepo) ListTopLevel(ctx context.Context, tx *gorm.DB, contentType types.ContentType) ([]*types.Category, error) {
	transaction := tx
	if transaction == nil {
		transaction = cr.db
	}
	var results []*types.Category
	if err := transaction.WithContext(ctx).
		Preload("Subcategories").
		Where("content_type = ? AND parent_id IS NULL", contentType).
		Order("name ASC").
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}
