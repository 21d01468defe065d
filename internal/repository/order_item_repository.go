package repository

import (
	"context"

	"app/internal/domain/model"
)

type OrderItemRepository interface {
	// 商品込みで明細一覧（id昇順）
	ListByCartID(ctx context.Context, cartID int64) ([]model.OrderItem, error)

	// 同一商品は数量加算
	UpsertByCartAndProduct(ctx context.Context, cartID int64, productID int64, addQty int64) error

	// 確定時に販売価格をスナップショットする
	UpdateLockedPrice(ctx context.Context, orderItemID int64, price int64) error

	DeleteByID(ctx context.Context, orderItemID int64) error
	FindByID(ctx context.Context, orderItemID int64) (model.OrderItem, error)

	// 明細がそのユーザーのopenカートに属しているか
	IsOwnedByUser(ctx context.Context, orderItemID int64, userID int64) (bool, error)

	// DB側で合計するフォールバック（(base+profit)×数量のSUM）。
	// モデル側のCartPriceと同じ値になること。
	LiveTotalByCartID(ctx context.Context, cartID int64) (int64, error)
}
