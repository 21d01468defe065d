package model

import "time"

// 商品カタログ（このサービスからは読み取り専用）
type Product struct {
	ID          int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	Title       string    `gorm:"type:varchar(255);not null" json:"title"`
	Subtitle    string    `gorm:"type:varchar(255)" json:"subtitle"`
	Description string    `gorm:"type:text" json:"description"`
	IsFragile   bool      `gorm:"not null;default:false" json:"is_fragile"`
	BasePrice   int64     `gorm:"not null" json:"base_price"`
	ProfitPrice int64     `gorm:"not null;default:0" json:"profit_price"`
	CreatedAt   time.Time `gorm:"not null;autoCreateTime" json:"created_at"`
	UpdatedAt   time.Time `gorm:"not null;autoUpdateTime" json:"updated_at"`
}

// SellPrice は販売価格（原価＋利益）。
// カートが開いている間はこの「今の価格」で合計し、
// 確定時に明細へスナップショットされる。
func (p *Product) SellPrice() int64 {
	return p.BasePrice + p.ProfitPrice
}
