package repository

import (
	"context"
	"time"

	"app/internal/domain/model"
)

// 注文一覧の絞り込み
type OrderListFilter struct {
	Page  int
	Limit int
	Step  string
	From  *time.Time
	To    *time.Time
}

type CartRepository interface {
	// openカートを取得し、無ければ作成（ユーザーにつきopenは常に1つ）
	GetOrCreateOpenByUserID(ctx context.Context, userID int64) (model.Cart, error)

	// openカートを明細＋商品込みで取得
	FindOpenByUserID(ctx context.Context, userID int64) (model.Cart, error)

	// 確定時のカート本体の保存
	Save(ctx context.Context, cart *model.Cart) error

	// open以外（＝注文）の一覧と件数
	ListOrdersByUserID(ctx context.Context, userID int64, f OrderListFilter) ([]model.Cart, int64, error)

	// open以外（＝注文）を1件取得
	FindOrderByID(ctx context.Context, orderID int64) (model.Cart, error)

	// pendingのままolderThanより古い注文を一括キャンセルし、件数を返す
	CancelExpiredPending(ctx context.Context, olderThan time.Time) (int64, error)
}
