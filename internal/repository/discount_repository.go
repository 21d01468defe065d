package repository

import (
	"context"

	"app/internal/domain/model"
)

// 割引コードの参照データ
type DiscountRepository interface {
	FindByCode(ctx context.Context, code string) (model.Discount, error)
	Create(ctx context.Context, d model.Discount) (model.Discount, error)
}
