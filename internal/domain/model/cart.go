package model

import (
	"fmt"
	"time"

	"app/internal/config"
)

type CartStep string

const (
	CartStepOpen      CartStep = "open"
	CartStepPending   CartStep = "pending"
	CartStepPaid      CartStep = "paid"
	CartStepDelivered CartStep = "delivered"
	CartStepCanceled  CartStep = "canceled"
)

// 1ユーザーにつきopenは1つ。open以外は過去の注文スナップショット。
// openの一意性は部分ユニークインデックス（step='open'のみ対象）でDBが保証する。
type Cart struct {
	ID     int64    `gorm:"primaryKey;autoIncrement" json:"id"`
	UserID int64    `gorm:"not null;index:idx_user_step;index:udx_user_open_cart,unique,where:step = 'open'" json:"user_id"`
	Step   CartStep `gorm:"type:varchar(9);not null;default:'open';index:idx_user_step" json:"step"`

	Description string `gorm:"type:text" json:"description"`

	// 確定時に文字列で凍結する（住所が後から編集されても注文には影響しない）
	ReceiverAddress string `gorm:"type:text" json:"receiver_address"`

	DiscountID    *int64 `gorm:"index" json:"discount_id"`
	DiscountPrice int64  `gorm:"not null;default:0" json:"discount_price"`

	ShippingID    *int64 `gorm:"index" json:"shipping_id"`
	ShippingPrice int64  `gorm:"not null;default:0" json:"shipping_price"`

	FinalizedAt *time.Time `gorm:"index" json:"finalized_at"`
	PaidAt      *time.Time `json:"paid_at"`
	DeliveredAt *time.Time `json:"delivered_at"`

	CreatedAt time.Time `gorm:"not null;autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null;autoUpdateTime" json:"updated_at"`

	Items []OrderItem `gorm:"foreignKey:CartID" json:"-"`

	Discount *Discount `gorm:"foreignKey:DiscountID" json:"-"`
	Shipping *Shipping `gorm:"foreignKey:ShippingID" json:"-"`
}

// CartPrice はopenカートの合計（今の販売価格×数量）。
// Items（とそのProduct）がロード済みであること。
func (c *Cart) CartPrice() int64 {
	var total int64
	for i := range c.Items {
		total += c.Items[i].LiveLinePrice()
	}
	return total
}

// OrderPrice は確定後の合計（スナップショット価格×数量）。
// 確定後に商品価格が変わっても変動しない。
func (c *Cart) OrderPrice() int64 {
	var total int64
	for i := range c.Items {
		total += c.Items[i].LockedLinePrice()
	}
	return total
}

func (c *Cart) OrderPriceAfterDiscount() int64 {
	return c.OrderPrice() - c.DiscountPrice
}

func (c *Cart) OrderPriceWithShipping() int64 {
	return c.OrderPriceAfterDiscount() + c.ShippingPrice
}

// 割れ物が1つでも入っていれば速達
func (c *Cart) HasFragileItem() bool {
	for i := range c.Items {
		if c.Items[i].Product.IsFragile {
			return true
		}
	}
	return false
}

// FinalizePolicy は確定可否の判定条件（設定値）
type FinalizePolicy struct {
	MinimumCartPrice int64
	Start            config.TimeOfDay
	End              config.TimeOfDay
}

// AllowedToFinalize は確定できるかを返す。
// 複数の条件に同時に引っかかった場合、営業時間外のメッセージが
// 他のメッセージを上書きする（後勝ち）。
func (c *Cart) AllowedToFinalize(p FinalizePolicy, now time.Time) (bool, string) {
	var message string
	if len(c.Items) == 0 {
		message = "your basket is empty"
	} else if c.CartPrice() < p.MinimumCartPrice {
		message = fmt.Sprintf(
			"you can only finalize your cart if your total price is greater than %d",
			p.MinimumCartPrice,
		)
	}
	if !isBetween(now, p.Start, p.End) {
		message = fmt.Sprintf(
			"we are closed now.you can only finalize your cart between %s and %s",
			p.Start, p.End,
		)
	}
	if message != "" {
		return false, message
	}
	return true, ""
}

// 営業時間判定。start > end のときは日付をまたぐウィンドウとして扱う。
func isBetween(now time.Time, start, end config.TimeOfDay) bool {
	t := config.TimeOfDay(now.Hour()*60 + now.Minute())
	if start <= end {
		return start <= t && t <= end
	}
	return t >= start || t <= end
}
