package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/example/shopops/internal/models"
)

// RatingReader returns the average review rating and the number of reviews
// over a set of orders.
type RatingReader interface {
	AverageRating(ctx context.Context, orderIDs []uuid.UUID) (float64, int64, error)
}

// GormReviewRepository reads reviews stored in SQL.
type GormReviewRepository struct {
	db *gorm.DB
}

func NewGormReviewRepository(db *gorm.DB) *GormReviewRepository {
	return &GormReviewRepository{db: db}
}

func (r *GormReviewRepository) AverageRating(ctx context.Context, orderIDs []uuid.UUID) (float64, int64, error) {
	if len(orderIDs) == 0 {
		return 0, 0, nil
	}

	var row struct {
		Average float64
		Count   int64
	}
	err := r.db.WithContext(ctx).Model(&models.Review{}).
		Select("COALESCE(AVG(rating), 0) as average, count(*) as count").
		Where("order_id IN ?", orderIDs).
		Scan(&row).Error
	if err != nil {
		return 0, 0, err
	}
	return row.Average, row.Count, nil
}
