package repos

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/kitaphana/kitaphana-backend/internal/logger"
	"github.com/kitaphana/kitaphana-backend/internal/types"
)

// ContentFilter narrows List queries. Zero values mean "no filter".
type ContentFilter struct {
	Language    string
	ArticleType string
	CategoryID  int64
	DateExact   *time.Time
	DateGte     *time.Time
	DateLte     *time.Time
	Page        int
	PageSize    int
}

type ContentRepo interface {
	Create(ctx context.Context, tx *gorm.DB, rec *types.ContentRecord) (*types.ContentRecord, error)
	Update(ctx context.Context, tx *gorm.DB, rec *types.ContentRecord) error
	Delete(ctx context.Context, tx *gorm.DB, contentType types.ContentType, id int64) (bool, error)
	GetByID(ctx context.Context, tx *gorm.DB, contentType types.ContentType, id int64) (*types.ContentRecord, error)
	GetByIDs(ctx context.Context, tx *gorm.DB, contentType types.ContentType, ids []int64) ([]*types.ContentRecord, error)
	List(ctx context.Context, tx *gorm.DB, contentType types.ContentType, filter ContentFilter) ([]*types.ContentRecord, error)
	FindInBatches(ctx context.Context, tx *gorm.DB, contentType types.ContentType, batchSize int, fn func(recs []*types.ContentRecord) error) error
	IncrementViews(ctx context.Context, tx *gorm.DB, contentType types.ContentType, id, delta int64) (bool, error)
	UpdateRatingAggregates(ctx context.Context, tx *gorm.DB, contentType types.ContentType, id int64, average float64, count int) error
	ReplaceCategories(ctx context.Context, tx *gorm.DB, rec *types.ContentRecord, categories []*types.Category) error
}

type contentRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewContentRepo(db *gorm.DB, baseLog *logger.Logger) ContentRepo {
	return &contentRepo{db: db, log: baseLog.With("repo", "ContentRepo")}
}

func (cr *contentRepo) Create(ctx context.Context, tx *gorm.DB, rec *types.ContentRecord) (*types.ContentRecord, error) {
	transaction := tx
	if transaction == nil {
		transaction = cr.db
	}
	if err := transaction.WithContext(ctx).Create(rec).Error; err != nil {
		return nil, err
	}
	return rec, nil
}

func (cr *contentRepo) Update(ctx context.Context, tx *gorm.DB, rec *types.ContentRecord) error {
	transaction := tx
	if transaction == nil {
		transaction = cr.db
	}
	return transaction.WithContext(ctx).Save(rec).Error
}

func (cr *contentRepo) Delete(ctx context.Context, tx *gorm.DB, contentType types.ContentType, id int64) (bool, error) {
	transaction := tx
	if transaction == nil {
		transaction = cr.db
	}
	res := transaction.WithContext(ctx).
		Where("content_type = ? AND id = ?", contentType, id).
		Delete(&types.ContentRecord{})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (cr *contentRepo) GetByID(ctx context.Context, tx *gorm.DB, contentType types.ContentType, id int64) (*types.ContentRecord, error) {
	transaction := tx
	if transaction == nil {
		transaction = cr.db
	}
	var rec types.ContentRecord
	err := transaction.WithContext(ctx).
		Preload("Categories").
		Where("content_type = ? AND id = ?", contentType, id).
		First(&rec).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &rec, nil
}

func (cr *contentRepo) GetByIDs(ctx context.Context, tx *gorm.DB, contentType types.ContentType, ids []int64) ([]*types.ContentRecord, error) {
	transaction := tx
	if transaction == nil {
		transaction = cr.db
	}
	var results []*types.ContentRecord
	if len(ids) == 0 {
		return results, nil
	}
	if err := transaction.WithContext(ctx).
		Preload("Categories").
		Where("content_type = ? AND id IN ?", contentType, ids).
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (cr *contentRepo) List(ctx context.Context, tx *gorm.DB, contentType types.ContentType, filter ContentFilter) ([]*types.ContentRecord, error) {
	transaction := tx
	if transaction == nil {
		transaction = cr.db
	}
	q := transaction.WithContext(ctx).
		Model(&types.ContentRecord{}).
		Preload("Categories").
		Where("content_type = ?", contentType).
		Order("id DESC")
	if filter.Language != "" {
		q = q.Where("language = ?", filter.Language)
	}
	if filter.ArticleType != "" {
		q = q.Where("type = ?", filter.ArticleType)
	}
	if filter.CategoryID != 0 {
		q = q.Joins("JOIN content_category cc ON cc.content_record_id = content_record.id").
			Where("cc.category_id = ?", filter.CategoryID)
	}
	if filter.DateExact != nil {
		q = q.Where("publication_date = ?", filter.DateExact)
	}
	if filter.DateGte != nil {
		q = q.Where("publication_date >= ?", filter.DateGte)
	}
	if filter.DateLte != nil {
		q = q.Where("publication_date <= ?", filter.DateLte)
	}
	if filter.PageSize > 0 {
		page := filter.Page
		if page < 1 {
			page = 1
		}
		q = q.Offset((page - 1) * filter.PageSize).Limit(filter.PageSize)
	}
	var results []*types.ContentRecord
	if err := q.Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (cr *contentRepo) FindInBatches(ctx context.Context, tx *gorm.DB, contentType types.ContentType, batchSize int, fn func(recs []*types.ContentRecord) error) error {
	transaction := tx
	if transaction == nil {
		transaction = cr.db
	}
	var batch []*types.ContentRecord
	res := transaction.WithContext(ctx).
		Preload("Categories").
		Where("content_type = ?", contentType).
		FindInBatches(&batch, batchSize, func(_ *gorm.DB, _ int) error {
			return fn(batch)
		})
	return res.Error
}

// IncrementViews applies a relative views += delta so concurrent writers never
// clobber each other. Returns false when no row matched.
func (cr *contentRepo) IncrementViews(ctx context.Context, tx *gorm.DB, contentType types.ContentType, id, delta int64) (bool, error) {
	transaction := tx
	if transaction == nil {
		transaction = cr.db
	}
	res := transaction.WithContext(ctx).
		Model(&types.ContentRecord{}).
		Where("content_type = ? AND id = ?", contentType, id).
		UpdateColumn("views", gorm.Expr("views + ?", delta))
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (cr *contentRepo) UpdateRatingAggregates(ctx context.Context, tx *gorm.DB, contentType types.ContentType, id int64, average float64, count int) error {
	transaction := tx
	if transaction == nil {
		transaction = cr.db
	}
	return transaction.WithContext(ctx).
		Model(&types.ContentRecord{}).
		Where("content_type = ? AND id = ?", contentType, id).
		UpdateColumns(map[string]interface{}{
			"average_rating": average,
			"rating_count":   count,
		}).Error
}

func (cr *contentRepo) ReplaceCategories(ctx context.Context, tx *gorm.DB, rec *types.ContentRecord, categories []*types.Category) error {
	transaction := tx
	if transaction == nil {
		transaction = cr.db
	}
	return transaction.WithContext(ctx).Model(rec).Association("Categories").Replace(categories)
}
