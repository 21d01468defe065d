package repository

import (
	"context"
	"errors"
	"time"

	"app/internal/domain/model"
	repo "app/internal/repository"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type CartGormRepository struct {
	db *gorm.DB
}

// DI
func NewCartGormRepository(db *gorm.DB) *CartGormRepository {
	return &CartGormRepository{db: db}
}

// ユーザーのopenカートを取得し、無ければ作成
func (r *CartGormRepository) GetOrCreateOpenByUserID(ctx context.Context, userID int64) (model.Cart, error) {

	var cart model.Cart

	//トランザクションで探す→無ければ作る
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		findErr := tx.
			Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("user_id = ? AND step = ?", userID, model.CartStepOpen).
			Order("id desc").
			First(&cart).Error

		if findErr == nil {
			return nil
		}

		if !errors.Is(findErr, gorm.ErrRecordNotFound) {
			return findErr
		}

		// 無ければ作る
		now := time.Now()
		newCart := model.Cart{
			UserID:    userID,
			Step:      model.CartStepOpen,
			CreatedAt: now,
			UpdatedAt: now,
		}

		if err := tx.Create(&newCart).Error; err != nil {
			//部分ユニークインデックスで同時作成に負けた場合はもう一度探す
			retryErr := tx.
				Where("user_id = ? AND step = ?", userID, model.CartStepOpen).
				Order("id desc").
				First(&cart).Error
			if retryErr == nil {
				return nil
			}
			return err
		}

		cart = newCart
		return nil
	})

	if err != nil {
		return model.Cart{}, err
	}
	return cart, nil
}

// ユーザーのopenカートを明細＋商品込みで取得
func (r *CartGormRepository) FindOpenByUserID(ctx context.Context, userID int64) (model.Cart, error) {
	var cart model.Cart

	err := r.db.WithContext(ctx).
		Preload("Items", func(db *gorm.DB) *gorm.DB {
			return db.Order("order_items.id asc")
		}).
		Preload("Items.Product").
		Where("user_id = ? AND step = ?", userID, model.CartStepOpen).
		Order("id desc").
		First(&cart).Error

	if errors.Is(err, gorm.ErrRecordNotFound) {
		return model.Cart{}, repo.ErrNotFound
	}
	if err != nil {
		return model.Cart{}, err
	}
	return cart, nil
}

// カート本体を保存（確定時の一括更新に使う）
func (r *CartGormRepository) Save(ctx context.Context, cart *model.Cart) error {
	return r.db.WithContext(ctx).
		Omit("Items", "Discount", "Shipping").
		Save(cart).Error
}

// open以外（＝注文）の一覧
func (r *CartGormRepository) ListOrdersByUserID(ctx context.Context, userID int64, f repo.OrderListFilter) ([]model.Cart, int64, error) {
	if f.Page <= 0 {
		f.Page = 1
	}
	if f.Limit <= 0 || f.Limit > 100 {
		f.Limit = 50
	}

	q := r.db.WithContext(ctx).Model(&model.Cart{}).
		Where("user_id = ? AND step <> ?", userID, model.CartStepOpen)

	//step 絞り込み
	if f.Step != "" {
		q = q.Where("step = ?", f.Step)
	}

	//期間絞り込み
	if f.From != nil {
		q = q.Where("finalized_at >= ?", *f.From)
	}
	if f.To != nil {
		q = q.Where("finalized_at <= ?", *f.To)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return []model.Cart{}, 0, err
	}

	var orders []model.Cart
	offset := (f.Page - 1) * f.Limit
	err := q.
		Preload("Items", func(db *gorm.DB) *gorm.DB {
			return db.Order("order_items.id asc")
		}).
		Preload("Items.Product").
		Preload("Discount").
		Preload("Shipping").
		Order("finalized_at desc").
		Limit(f.Limit).
		Offset(offset).
		Find(&orders).Error
	if err != nil {
		return []model.Cart{}, 0, err
	}

	return orders, total, nil
}

// open以外（＝注文）を1件取得
func (r *CartGormRepository) FindOrderByID(ctx context.Context, orderID int64) (model.Cart, error) {
	var order model.Cart

	err := r.db.WithContext(ctx).
		Preload("Items", func(db *gorm.DB) *gorm.DB {
			return db.Order("order_items.id asc")
		}).
		Preload("Items.Product").
		Preload("Discount").
		Preload("Shipping").
		Where("id = ? AND step <> ?", orderID, model.CartStepOpen).
		First(&order).Error

	if errors.Is(err, gorm.ErrRecordNotFound) {
		return model.Cart{}, repo.ErrNotFound
	}
	if err != nil {
		return model.Cart{}, err
	}
	return order, nil
}

// pendingのまま期限切れになった注文を一括キャンセル
func (r *CartGormRepository) CancelExpiredPending(ctx context.Context, olderThan time.Time) (int64, error) {
	res := r.db.WithContext(ctx).
		Model(&model.Cart{}).
		Where("step = ? AND finalized_at <= ?", model.CartStepPending, olderThan).
		Update("step", model.CartStepCanceled)

	if res.Error != nil {
		return 0, res.Error
	}
	return res.RowsAffected, nil
}
