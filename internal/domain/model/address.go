package model

import (
	"fmt"
	"time"
)

// 配送先住所。確定時には FullAddress を文字列で注文に凍結する。
type Address struct {
	ID       int64  `gorm:"primaryKey;autoIncrement" json:"id"`
	UserID   int64  `gorm:"not null;index" json:"user_id"`
	Province string `gorm:"type:varchar(255)" json:"province"`
	City     string `gorm:"type:varchar(255)" json:"city"`
	Address  string `gorm:"type:varchar(500)" json:"address"`
	ZipCode  string `gorm:"type:varchar(20)" json:"zip_code"`

	CreatedAt time.Time `gorm:"not null;autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null;autoUpdateTime" json:"updated_at"`
}

func (a *Address) FullAddress() string {
	return fmt.Sprintf("%s %s %s %s", a.Province, a.City, a.Address, a.ZipCode)
}
