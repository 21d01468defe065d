package model

import "time"

// カート明細（カートと商品の中間テーブル）
// LockedPrice は確定時のスナップショットで、openの間はNULL。
// 同一カート×同一商品は1行（追加は数量加算）。
type OrderItem struct {
	ID          int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	CartID      int64     `gorm:"not null;index;uniqueIndex:idx_cart_product" json:"cart_id"`
	ProductID   int64     `gorm:"not null;index;uniqueIndex:idx_cart_product" json:"product_id"`
	Quantity    int64     `gorm:"not null;default:1" json:"quantity"`
	LockedPrice *int64    `gorm:"column:locked_price" json:"locked_price"`
	CreatedAt   time.Time `gorm:"not null;autoCreateTime" json:"created_at"`

	Product Product `gorm:"foreignKey:ProductID" json:"-"`
}

// 明細の行金額（openの間は今の販売価格で計算）
func (i *OrderItem) LiveLinePrice() int64 {
	return i.Product.SellPrice() * i.Quantity
}

// 確定後の行金額（locked_price×数量）
func (i *OrderItem) LockedLinePrice() int64 {
	if i.LockedPrice == nil {
		return 0
	}
	return *i.LockedPrice * i.Quantity
}
