package usecase

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"app/internal/domain/model"
	repo "app/internal/repository"
	"app/internal/validator"

	"go.uber.org/zap"
)

// CheckoutUsecase はopenカートを注文として確定する。
// 確定は1トランザクション：途中で失敗したらカートはopenのまま残る。
type CheckoutUsecase struct {
	tx        repo.TransactionManager
	cartRepo  repo.CartRepository
	addresses repo.AddressRepository
	rules     []validator.DiscountRule
	policy    model.FinalizePolicy
	clock     Clock
	idGen     IDGenerator
	logger    *zap.Logger
}

func NewCheckoutUsecase(
	tx repo.TransactionManager,
	cartRepo repo.CartRepository,
	addresses repo.AddressRepository,
	rules []validator.DiscountRule,
	policy model.FinalizePolicy,
	clock Clock,
	idGen IDGenerator,
	logger *zap.Logger,
) *CheckoutUsecase {
	return &CheckoutUsecase{
		tx:        tx,
		cartRepo:  cartRepo,
		addresses: addresses,
		rules:     rules,
		policy:    policy,
		clock:     clock,
		idGen:     idGen,
		logger:    logger,
	}
}

type FinalizeInput struct {
	AddressID    int64
	DiscountCode string
}

type FinalizeOutput struct {
	Message    string `json:"message"`
	PaymentURL string `json:"payment_url"`
	OrderID    int64  `json:"order_id"`
}

// 確定可否だけを問い合わせるモード（確定はしない）
func (u *CheckoutUsecase) AllowedToFinalize(ctx context.Context, userID int64) (bool, string, error) {
	if userID <= 0 {
		return false, "", NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}

	cart, err := u.cartRepo.FindOpenByUserID(ctx, userID)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return false, "your basket is empty", nil
		}
		return false, "", NewHTTPError(http.StatusInternalServerError, "db error")
	}

	ok, msg := cart.AllowedToFinalize(u.policy, u.clock.Now())
	return ok, msg, nil
}

// Finalize はカートをpendingの注文に確定する。
// 手順：価格スナップショット→step遷移→住所凍結→割引→配送→確定時刻→保存。
// すべて1トランザクションで行い、新しいopenカートの用意はcommit後。
func (u *CheckoutUsecase) Finalize(ctx context.Context, userID int64, in FinalizeInput) (FinalizeOutput, error) {
	if userID <= 0 {
		return FinalizeOutput{}, NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	if in.AddressID <= 0 {
		return FinalizeOutput{}, NewFieldHTTPError(http.StatusBadRequest, "address", "this field is required")
	}

	//住所の存在＋所有チェック。他人の住所は「存在しない扱い」で404。
	addr, err := u.addresses.FindByID(ctx, in.AddressID)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return FinalizeOutput{}, NewHTTPError(http.StatusNotFound, "not found")
		}
		return FinalizeOutput{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}
	if addr.UserID != userID {
		return FinalizeOutput{}, NewHTTPError(http.StatusNotFound, "not found")
	}

	var orderID int64

	err = u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		cart, err := r.Carts().FindOpenByUserID(ctx, userID)
		if err != nil {
			if errors.Is(err, repo.ErrNotFound) {
				return NewHTTPError(http.StatusBadRequest, "your basket is empty")
			}
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}

		now := u.clock.Now()

		//確定できる状態か（空・最低金額・営業時間）
		if ok, msg := cart.AllowedToFinalize(u.policy, now); !ok {
			return NewHTTPError(http.StatusBadRequest, msg)
		}

		//割引コードの解決とルールチェック。
		//ここで失敗するとロールバックされ、locked_priceは残らない。
		cartTotal := cart.CartPrice()
		var discount *model.Discount
		if in.DiscountCode != "" {
			d, err := r.Discounts().FindByCode(ctx, in.DiscountCode)
			if err != nil {
				if errors.Is(err, repo.ErrNotFound) {
					return NewFieldHTTPError(http.StatusBadRequest, "discount", "your code is not correct")
				}
				return NewHTTPError(http.StatusInternalServerError, "db error")
			}
			if err := validator.ValidateDiscount(u.rules, d, cartTotal, now); err != nil {
				return NewFieldHTTPError(http.StatusBadRequest, "discount", err.Error())
			}
			discount = &d
		}

		//1. 明細ごとに今の販売価格をスナップショット
		for i := range cart.Items {
			item := &cart.Items[i]
			price := item.Product.SellPrice()
			if err := r.OrderItems().UpdateLockedPrice(ctx, item.ID, price); err != nil {
				return NewHTTPError(http.StatusInternalServerError, "db error")
			}
			item.LockedPrice = &price
		}

		//2. pendingへ遷移
		cart.Step = model.CartStepPending

		//3. 住所を文字列で凍結（以後の住所編集の影響を受けない）
		cart.ReceiverAddress = addr.FullAddress()

		//4. 割引
		if discount != nil {
			cart.DiscountID = &discount.ID
			cart.DiscountPrice = discount.Deduction(cartTotal)
		}

		//5. 配送方法（割れ物があれば速達）。設定が無ければデータ不備。
		shippingType := model.ShippingTypeRegular
		if cart.HasFragileItem() {
			shippingType = model.ShippingTypeExpress
		}
		shipping, err := r.Shippings().FindByType(ctx, shippingType)
		if err != nil {
			if errors.Is(err, repo.ErrNotFound) {
				return NewHTTPError(http.StatusInternalServerError, "shipping is not configured")
			}
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}
		cart.ShippingID = &shipping.ID
		cart.ShippingPrice = shipping.Price

		//6. 確定時刻
		cart.FinalizedAt = &now

		//7. 保存
		if err := r.Carts().Save(ctx, &cart); err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}

		if err := r.AuditLogs().Create(ctx, model.AuditLog{
			ActorUserID:  userID,
			Action:       model.AuditActionFinalizeCart,
			ResourceType: model.AuditResourceCart,
			ResourceID:   cart.ID,
			Detail: fmt.Sprintf(
				"order_price=%d discount_price=%d shipping_price=%d",
				cart.OrderPrice(), cart.DiscountPrice, cart.ShippingPrice,
			),
			CreatedAt: now,
		}); err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}

		orderID = cart.ID
		return nil
	})

	if err != nil {
		return FinalizeOutput{}, err
	}

	//8. 新しいopenカートを用意する。確定はcommit済みなので、
	//ここで失敗しても注文はロールバックしない。
	if _, err := u.cartRepo.GetOrCreateOpenByUserID(ctx, userID); err != nil {
		u.logger.Warn("failed to provision replacement open cart",
			zap.Int64("user_id", userID),
			zap.Error(err),
		)
	}

	u.logger.Info("cart finalized",
		zap.Int64("user_id", userID),
		zap.Int64("order_id", orderID),
	)

	return FinalizeOutput{
		Message:    "finalized",
		PaymentURL: "https://payment.example.com/pay/" + u.idGen.NewID(),
		OrderID:    orderID,
	}, nil
}
