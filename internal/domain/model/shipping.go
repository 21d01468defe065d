package model

type ShippingType string

const (
	ShippingTypeRegular ShippingType = "regular"
	ShippingTypeExpress ShippingType = "express"
)

// 配送方法。typeごとに1件設定されている前提（設定が無ければデータ不備）。
type Shipping struct {
	ID    int64        `gorm:"primaryKey;autoIncrement" json:"id"`
	Type  ShippingType `gorm:"type:varchar(12);not null;index" json:"type"`
	Price int64        `gorm:"not null;default:0" json:"price"`
}
