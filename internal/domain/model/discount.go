package model

import (
	"errors"
	"time"

	"gorm.io/gorm"
)

type DiscountKind string

const (
	DiscountKindPercentage DiscountKind = "percentage"
	DiscountKindConstant   DiscountKind = "constant"
)

// 割引コード。percentage か constant のどちらか一方だけを持つ。
type Discount struct {
	ID int64 `gorm:"primaryKey;autoIncrement" json:"id"`

	// 割引率（%）。constantと排他。
	Percentage *float64 `json:"percentage"`

	// 固定額割引。percentageと排他。
	Constant *int64 `json:"constant"`

	// 割引額の上限（percentageのときだけ意味を持つ）
	Ceil *int64 `json:"ceil"`

	// このカート金額未満では使えない
	MinValue *int64 `gorm:"column:min_value" json:"min_value"`

	Code string `gorm:"type:varchar(20);not null;uniqueIndex" json:"code"`

	StartDate time.Time  `gorm:"not null" json:"start_date"`
	ExpDate   *time.Time `gorm:"column:exp_date" json:"exp_date"`

	IsActive bool `gorm:"not null;default:true" json:"is_active"`

	CreatedAt time.Time `gorm:"not null;autoCreateTime" json:"created_at"`
}

var ErrDiscountKindConflict = errors.New("you should send discount with percent or constant")

// percentage/constant の排他を保存時に強制する
func (d *Discount) BeforeSave(tx *gorm.DB) error {
	if d.Percentage != nil && d.Constant != nil {
		return ErrDiscountKindConflict
	}
	if d.Percentage == nil && d.Constant == nil {
		return ErrDiscountKindConflict
	}
	return nil
}

func (d *Discount) Kind() DiscountKind {
	if d.Percentage != nil {
		return DiscountKindPercentage
	}
	return DiscountKindConstant
}

// Deduction はカート合計に対する割引額。
// percentage: floor(total*percentage/100)、ceil超過はceilに丸める。
// constant: そのまま（ceilは適用しない）。
func (d *Discount) Deduction(cartTotal int64) int64 {
	if d.Kind() == DiscountKindPercentage {
		amount := int64(float64(cartTotal) * *d.Percentage / 100)
		if d.Ceil != nil && amount > *d.Ceil {
			amount = *d.Ceil
		}
		return amount
	}
	return *d.Constant
}

// Apply は割引適用後のカート合計
func (d *Discount) Apply(cartTotal int64) int64 {
	return cartTotal - d.Deduction(cartTotal)
}
