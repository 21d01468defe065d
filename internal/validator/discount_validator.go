package validator

import (
	"errors"
	"fmt"
	"time"

	"app/internal/domain/model"
)

// DiscountRule は割引コードの適用可否を1観点だけ判定する。
// 失敗したらそのまま返すメッセージをerrorで返す。
type DiscountRule interface {
	Validate(d model.Discount, cartTotal int64, now time.Time) error
}

// is_activeフラグのチェック
type IsActiveRule struct{}

func (IsActiveRule) Validate(d model.Discount, cartTotal int64, now time.Time) error {
	if d.IsActive {
		return nil
	}
	return errors.New("code is not active")
}

// カート合計がmin_valueに届いているか
type MinCartPriceRule struct{}

func (MinCartPriceRule) Validate(d model.Discount, cartTotal int64, now time.Time) error {
	if d.MinValue == nil {
		return nil
	}
	if cartTotal >= *d.MinValue {
		return nil
	}
	return fmt.Errorf("The discount could only applied on carts with minimum price %d", *d.MinValue)
}

// 有効期限のチェック
type ExpDateRule struct{}

func (ExpDateRule) Validate(d model.Discount, cartTotal int64, now time.Time) error {
	if d.ExpDate == nil {
		return nil
	}
	if d.ExpDate.After(now) {
		return nil
	}
	return errors.New("Discount is expired")
}

// DefaultDiscountRules は登録順のルール一覧。
// 実行時のリフレクションではなく明示的に並べる。
func DefaultDiscountRules() []DiscountRule {
	return []DiscountRule{
		IsActiveRule{},
		MinCartPriceRule{},
		ExpDateRule{},
	}
}

// ValidateDiscount はルールを登録順に実行し、最初に失敗した
// ルールのエラーを返す。
func ValidateDiscount(rules []DiscountRule, d model.Discount, cartTotal int64, now time.Time) error {
	for _, rule := range rules {
		if err := rule.Validate(d, cartTotal, now); err != nil {
			return err
		}
	}
	return nil
}
