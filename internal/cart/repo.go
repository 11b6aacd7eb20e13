package cart

import (
	"context"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/electrosoundpack/storefront-backend/pkg/db/models"
)

// Repository stores one serialized cart per email.
type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// Replace overwrites the stored cart for email, creating it when absent.
func (r *Repository) Replace(ctx context.Context, email, items string, at time.Time) error {
	record := models.CartRecord{Email: email, Items: items, UpdatedAt: at}
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "email"}},
			DoUpdates: clause.AssignmentColumns([]string{"items", "updated_at"}),
		}).
		Create(&record).Error
}

// FindByEmail returns the stored cart or gorm.ErrRecordNotFound.
func (r *Repository) FindByEmail(ctx context.Context, email string) (*models.CartRecord, error) {
	var record models.CartRecord
	if err := r.db.WithContext(ctx).Where("email = ?", email).First(&record).Error; err != nil {
		return nil, err
	}
	return &record, nil
}

// DeleteByEmail drops the stored cart, if any.
func (r *Repository) DeleteByEmail(ctx context.Context, email string) error {
	return r.db.WithContext(ctx).Where("email = ?", email).Delete(&models.CartRecord{}).Error
}
