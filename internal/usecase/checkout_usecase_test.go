package usecase

import (
	"context"
	"net/http"
	"testing"
	"time"

	"app/internal/config"
	"app/internal/domain/model"
	repo "app/internal/repository"
	"app/internal/validator"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"go.uber.org/zap"
)

// テスト用の部品一式
type checkoutFixture struct {
	uc        *CheckoutUsecase
	txm       *TxManagerMock
	txCarts   *CartRepoMock
	txItems   *OrderItemRepoMock
	discounts *DiscountRepoMock
	shippings *ShippingRepoMock
	audits    *AuditLogRepoMock
	carts     *CartRepoMock
	addresses *AddressRepoMock
	clock     *fixedClock
}

func mustTOD(t *testing.T, s string) config.TimeOfDay {
	t.Helper()
	v, err := config.ParseTimeOfDay(s)
	assert.NoError(t, err)
	return v
}

// 営業時間内（09:00-23:00）の正午で固定
var checkoutNow = time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)

func newCheckoutFixture(t *testing.T) *checkoutFixture {
	t.Helper()

	txCarts := &CartRepoMock{}
	txItems := &OrderItemRepoMock{}
	discounts := &DiscountRepoMock{}
	shippings := &ShippingRepoMock{}
	audits := &AuditLogRepoMock{}

	txm := &TxManagerMock{Repos: &TxReposMock{
		carts:      txCarts,
		orderItems: txItems,
		products:   &ProductRepoMock{},
		discounts:  discounts,
		shippings:  shippings,
		auditLogs:  audits,
	}}

	carts := &CartRepoMock{}
	addresses := &AddressRepoMock{}
	clock := &fixedClock{now: checkoutNow}

	policy := model.FinalizePolicy{
		MinimumCartPrice: 50000,
		Start:            mustTOD(t, "09:00"),
		End:              mustTOD(t, "23:00"),
	}

	uc := NewCheckoutUsecase(
		txm,
		carts,
		addresses,
		validator.DefaultDiscountRules(),
		policy,
		clock,
		&fixedIDGen{id: "pay-1234"},
		zap.NewNop(),
	)

	return &checkoutFixture{
		uc:        uc,
		txm:       txm,
		txCarts:   txCarts,
		txItems:   txItems,
		discounts: discounts,
		shippings: shippings,
		audits:    audits,
		carts:     carts,
		addresses: addresses,
		clock:     clock,
	}
}

func testAddress(userID int64) model.Address {
	return model.Address{
		ID:       10,
		UserID:   userID,
		Province: "Tokyo",
		City:     "Shibuya",
		Address:  "1-2-3",
		ZipCode:  "150-0001",
	}
}

// 最低金額を満たすopenカート（合計60000）
func openCart(userID int64) model.Cart {
	return model.Cart{
		ID:     77,
		UserID: userID,
		Step:   model.CartStepOpen,
		Items: []model.OrderItem{
			{ID: 11, CartID: 77, ProductID: 1, Quantity: 2,
				Product: model.Product{ID: 1, Title: "keyboard", BasePrice: 25000, ProfitPrice: 5000}},
		},
	}
}

func TestFinalize_Success(t *testing.T) {
	fx := newCheckoutFixture(t)
	userID := int64(1)

	fx.addresses.On("FindByID", mock.Anything, int64(10)).Return(testAddress(userID), nil)
	fx.txm.On("WithinTx", mock.Anything).Return(nil)
	fx.txCarts.On("FindOpenByUserID", mock.Anything, userID).Return(openCart(userID), nil)

	// 今の販売価格（25000+5000）がスナップショットされる
	fx.txItems.On("UpdateLockedPrice", mock.Anything, int64(11), int64(30000)).Return(nil)

	fx.shippings.On("FindByType", mock.Anything, model.ShippingTypeRegular).
		Return(model.Shipping{ID: 5, Type: model.ShippingTypeRegular, Price: 300}, nil)

	fx.txCarts.On("Save", mock.Anything, mock.MatchedBy(func(c *model.Cart) bool {
		return c.Step == model.CartStepPending &&
			c.ReceiverAddress == "Tokyo Shibuya 1-2-3 150-0001" &&
			c.ShippingID != nil && *c.ShippingID == 5 &&
			c.ShippingPrice == 300 &&
			c.FinalizedAt != nil && c.FinalizedAt.Equal(checkoutNow)
	})).Return(nil)

	fx.audits.On("Create", mock.Anything, mock.MatchedBy(func(l model.AuditLog) bool {
		return l.Action == model.AuditActionFinalizeCart &&
			l.ResourceType == model.AuditResourceCart &&
			l.ResourceID == 77 &&
			l.ActorUserID == userID
	})).Return(nil)

	// commit後の新しいopenカート
	fx.carts.On("GetOrCreateOpenByUserID", mock.Anything, userID).
		Return(model.Cart{ID: 78, UserID: userID, Step: model.CartStepOpen}, nil)

	out, err := fx.uc.Finalize(context.Background(), userID, FinalizeInput{AddressID: 10})

	assert.NoError(t, err)
	assert.Equal(t, "finalized", out.Message)
	assert.Equal(t, int64(77), out.OrderID)
	assert.Equal(t, "https://payment.example.com/pay/pay-1234", out.PaymentURL)

	fx.txCarts.AssertExpectations(t)
	fx.txItems.AssertExpectations(t)
	fx.audits.AssertExpectations(t)
	fx.carts.AssertExpectations(t)
}

func TestFinalize_WithDiscountCode(t *testing.T) {
	fx := newCheckoutFixture(t)
	userID := int64(1)

	// 合計600000のカート（10%割引=60000だがceil=50000で頭打ち）
	cart := model.Cart{
		ID:     77,
		UserID: userID,
		Step:   model.CartStepOpen,
		Items: []model.OrderItem{
			{ID: 11, CartID: 77, ProductID: 1, Quantity: 1,
				Product: model.Product{ID: 1, BasePrice: 600000}},
		},
	}

	exp := checkoutNow.Add(24 * time.Hour)
	discount := model.Discount{
		ID:         3,
		Code:       "SUMMER10",
		Percentage: f64(10),
		Ceil:       i64(50000),
		ExpDate:    &exp,
		IsActive:   true,
	}

	fx.addresses.On("FindByID", mock.Anything, int64(10)).Return(testAddress(userID), nil)
	fx.txm.On("WithinTx", mock.Anything).Return(nil)
	fx.txCarts.On("FindOpenByUserID", mock.Anything, userID).Return(cart, nil)
	fx.discounts.On("FindByCode", mock.Anything, "SUMMER10").Return(discount, nil)
	fx.txItems.On("UpdateLockedPrice", mock.Anything, int64(11), int64(600000)).Return(nil)
	fx.shippings.On("FindByType", mock.Anything, model.ShippingTypeRegular).
		Return(model.Shipping{ID: 5, Price: 300}, nil)

	fx.txCarts.On("Save", mock.Anything, mock.MatchedBy(func(c *model.Cart) bool {
		return c.DiscountID != nil && *c.DiscountID == 3 &&
			c.DiscountPrice == 50000
	})).Return(nil)

	fx.audits.On("Create", mock.Anything, mock.Anything).Return(nil)
	fx.carts.On("GetOrCreateOpenByUserID", mock.Anything, userID).
		Return(model.Cart{ID: 78}, nil)

	_, err := fx.uc.Finalize(context.Background(), userID, FinalizeInput{
		AddressID:    10,
		DiscountCode: "SUMMER10",
	})

	assert.NoError(t, err)
	fx.txCarts.AssertExpectations(t)
}

func TestFinalize_EmptyCart_400(t *testing.T) {
	fx := newCheckoutFixture(t)
	userID := int64(1)

	fx.addresses.On("FindByID", mock.Anything, int64(10)).Return(testAddress(userID), nil)
	fx.txm.On("WithinTx", mock.Anything).Return(nil)
	fx.txCarts.On("FindOpenByUserID", mock.Anything, userID).Return(model.Cart{}, repo.ErrNotFound)

	_, err := fx.uc.Finalize(context.Background(), userID, FinalizeInput{AddressID: 10})

	he, ok := AsHTTPError(err)
	assert.True(t, ok)
	assert.Equal(t, http.StatusBadRequest, he.Status)
	assert.Equal(t, "your basket is empty", he.Message)

	// 失敗したらカートは保存されず、新しいopenカートも作られない
	fx.txCarts.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
	fx.carts.AssertNotCalled(t, "GetOrCreateOpenByUserID", mock.Anything, mock.Anything)
}

func TestFinalize_BelowMinimumPrice_400(t *testing.T) {
	fx := newCheckoutFixture(t)
	userID := int64(1)

	cart := model.Cart{
		ID: 77, UserID: userID, Step: model.CartStepOpen,
		Items: []model.OrderItem{
			{ID: 11, Quantity: 1, Product: model.Product{BasePrice: 49999}},
		},
	}

	fx.addresses.On("FindByID", mock.Anything, int64(10)).Return(testAddress(userID), nil)
	fx.txm.On("WithinTx", mock.Anything).Return(nil)
	fx.txCarts.On("FindOpenByUserID", mock.Anything, userID).Return(cart, nil)

	_, err := fx.uc.Finalize(context.Background(), userID, FinalizeInput{AddressID: 10})

	he, ok := AsHTTPError(err)
	assert.True(t, ok)
	assert.Equal(t, http.StatusBadRequest, he.Status)
	assert.Equal(t,
		"you can only finalize your cart if your total price is greater than 50000",
		he.Message,
	)
}

func TestFinalize_OutsideBusinessHours_400(t *testing.T) {
	fx := newCheckoutFixture(t)
	userID := int64(1)

	// 深夜3時に変更
	fx.clock.now = time.Date(2026, 8, 1, 3, 0, 0, 0, time.UTC)

	fx.addresses.On("FindByID", mock.Anything, int64(10)).Return(testAddress(userID), nil)
	fx.txm.On("WithinTx", mock.Anything).Return(nil)
	fx.txCarts.On("FindOpenByUserID", mock.Anything, userID).Return(openCart(userID), nil)

	_, err := fx.uc.Finalize(context.Background(), userID, FinalizeInput{AddressID: 10})

	he, ok := AsHTTPError(err)
	assert.True(t, ok)
	assert.Equal(t, http.StatusBadRequest, he.Status)
	assert.Equal(t,
		"we are closed now.you can only finalize your cart between 09:00 and 23:00",
		he.Message,
	)
}

func TestFinalize_UnknownDiscountCode_FieldError(t *testing.T) {
	fx := newCheckoutFixture(t)
	userID := int64(1)

	fx.addresses.On("FindByID", mock.Anything, int64(10)).Return(testAddress(userID), nil)
	fx.txm.On("WithinTx", mock.Anything).Return(nil)
	fx.txCarts.On("FindOpenByUserID", mock.Anything, userID).Return(openCart(userID), nil)
	fx.discounts.On("FindByCode", mock.Anything, "NOPE").Return(model.Discount{}, repo.ErrNotFound)

	_, err := fx.uc.Finalize(context.Background(), userID, FinalizeInput{
		AddressID:    10,
		DiscountCode: "NOPE",
	})

	he, ok := AsHTTPError(err)
	assert.True(t, ok)
	assert.Equal(t, http.StatusBadRequest, he.Status)
	assert.Equal(t, "discount", he.Field)
	assert.Equal(t, "your code is not correct", he.Message)

	// 割引の検証で落ちたら価格スナップショットは走らない
	fx.txItems.AssertNotCalled(t, "UpdateLockedPrice", mock.Anything, mock.Anything, mock.Anything)
}

func TestFinalize_InactiveDiscount_RuleMessage(t *testing.T) {
	fx := newCheckoutFixture(t)
	userID := int64(1)

	discount := model.Discount{ID: 3, Code: "OLD", Percentage: f64(10), IsActive: false}

	fx.addresses.On("FindByID", mock.Anything, int64(10)).Return(testAddress(userID), nil)
	fx.txm.On("WithinTx", mock.Anything).Return(nil)
	fx.txCarts.On("FindOpenByUserID", mock.Anything, userID).Return(openCart(userID), nil)
	fx.discounts.On("FindByCode", mock.Anything, "OLD").Return(discount, nil)

	_, err := fx.uc.Finalize(context.Background(), userID, FinalizeInput{
		AddressID:    10,
		DiscountCode: "OLD",
	})

	he, ok := AsHTTPError(err)
	assert.True(t, ok)
	assert.Equal(t, http.StatusBadRequest, he.Status)
	assert.Equal(t, "discount", he.Field)
	assert.Equal(t, "code is not active", he.Message)
}

func TestFinalize_FragileItem_ExpressShipping(t *testing.T) {
	fx := newCheckoutFixture(t)
	userID := int64(1)

	cart := openCart(userID)
	cart.Items[0].Product.IsFragile = true

	fx.addresses.On("FindByID", mock.Anything, int64(10)).Return(testAddress(userID), nil)
	fx.txm.On("WithinTx", mock.Anything).Return(nil)
	fx.txCarts.On("FindOpenByUserID", mock.Anything, userID).Return(cart, nil)
	fx.txItems.On("UpdateLockedPrice", mock.Anything, int64(11), int64(30000)).Return(nil)
	fx.shippings.On("FindByType", mock.Anything, model.ShippingTypeExpress).
		Return(model.Shipping{ID: 6, Type: model.ShippingTypeExpress, Price: 800}, nil)
	fx.txCarts.On("Save", mock.Anything, mock.Anything).Return(nil)
	fx.audits.On("Create", mock.Anything, mock.Anything).Return(nil)
	fx.carts.On("GetOrCreateOpenByUserID", mock.Anything, userID).Return(model.Cart{ID: 78}, nil)

	_, err := fx.uc.Finalize(context.Background(), userID, FinalizeInput{AddressID: 10})

	assert.NoError(t, err)
	fx.shippings.AssertExpectations(t)
}

func TestFinalize_MissingShippingConfig_500(t *testing.T) {
	fx := newCheckoutFixture(t)
	userID := int64(1)

	fx.addresses.On("FindByID", mock.Anything, int64(10)).Return(testAddress(userID), nil)
	fx.txm.On("WithinTx", mock.Anything).Return(nil)
	fx.txCarts.On("FindOpenByUserID", mock.Anything, userID).Return(openCart(userID), nil)
	fx.txItems.On("UpdateLockedPrice", mock.Anything, int64(11), int64(30000)).Return(nil)
	fx.shippings.On("FindByType", mock.Anything, model.ShippingTypeRegular).
		Return(model.Shipping{}, repo.ErrNotFound)

	_, err := fx.uc.Finalize(context.Background(), userID, FinalizeInput{AddressID: 10})

	he, ok := AsHTTPError(err)
	assert.True(t, ok)
	assert.Equal(t, http.StatusInternalServerError, he.Status)
	assert.Equal(t, "shipping is not configured", he.Message)
}

func TestFinalize_ForeignAddress_404(t *testing.T) {
	fx := newCheckoutFixture(t)

	// 住所の持ち主はuser 2
	fx.addresses.On("FindByID", mock.Anything, int64(10)).Return(testAddress(2), nil)

	_, err := fx.uc.Finalize(context.Background(), 1, FinalizeInput{AddressID: 10})

	he, ok := AsHTTPError(err)
	assert.True(t, ok)
	assert.Equal(t, http.StatusNotFound, he.Status)
}

func TestFinalize_AddressNotFound_404(t *testing.T) {
	fx := newCheckoutFixture(t)

	fx.addresses.On("FindByID", mock.Anything, int64(99)).Return(model.Address{}, repo.ErrNotFound)

	_, err := fx.uc.Finalize(context.Background(), 1, FinalizeInput{AddressID: 99})

	he, ok := AsHTTPError(err)
	assert.True(t, ok)
	assert.Equal(t, http.StatusNotFound, he.Status)
}

func TestFinalize_MissingAddress_FieldError(t *testing.T) {
	fx := newCheckoutFixture(t)

	_, err := fx.uc.Finalize(context.Background(), 1, FinalizeInput{})

	he, ok := AsHTTPError(err)
	assert.True(t, ok)
	assert.Equal(t, http.StatusBadRequest, he.Status)
	assert.Equal(t, "address", he.Field)
}

func TestAllowedToFinalize_QueryMode(t *testing.T) {
	t.Run("no open cart returns empty basket message", func(t *testing.T) {
		fx := newCheckoutFixture(t)
		fx.carts.On("FindOpenByUserID", mock.Anything, int64(1)).
			Return(model.Cart{}, repo.ErrNotFound)

		ok, msg, err := fx.uc.AllowedToFinalize(context.Background(), 1)

		assert.NoError(t, err)
		assert.False(t, ok)
		assert.Equal(t, "your basket is empty", msg)
	})

	t.Run("ok when conditions met", func(t *testing.T) {
		fx := newCheckoutFixture(t)
		fx.carts.On("FindOpenByUserID", mock.Anything, int64(1)).
			Return(openCart(1), nil)

		ok, msg, err := fx.uc.AllowedToFinalize(context.Background(), 1)

		assert.NoError(t, err)
		assert.True(t, ok)
		assert.Equal(t, "", msg)
	})
}
