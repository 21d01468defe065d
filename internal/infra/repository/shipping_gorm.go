package repository

import (
	"context"
	"errors"

	"app/internal/domain/model"
	repo "app/internal/repository"

	"gorm.io/gorm"
)

type ShippingGormRepository struct {
	db *gorm.DB
}

// DI
func NewShippingGormRepository(db *gorm.DB) *ShippingGormRepository {
	return &ShippingGormRepository{db: db}
}

func (r *ShippingGormRepository) FindByType(ctx context.Context, t model.ShippingType) (model.Shipping, error) {
	var s model.Shipping

	err := r.db.WithContext(ctx).Where("type = ?", t).Order("id asc").First(&s).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return model.Shipping{}, repo.ErrNotFound
	}
	if err != nil {
		return model.Shipping{}, err
	}
	return s, nil
}

func (r *ShippingGormRepository) Create(ctx context.Context, s model.Shipping) (model.Shipping, error) {
	if err := r.db.WithContext(ctx).Create(&s).Error; err != nil {
		return model.Shipping{}, err
	}
	return s, nil
}
