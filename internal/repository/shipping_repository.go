package repository

import (
	"context"

	"app/internal/domain/model"
)

// 配送方法の参照データ。typeに対応する設定が無ければErrNotFound
// （業務エラーではなく設定不備として扱う）。
type ShippingRepository interface {
	FindByType(ctx context.Context, t model.ShippingType) (model.Shipping, error)
	Create(ctx context.Context, s model.Shipping) (model.Shipping, error)
}
