package usecase

import (
	"context"
	"errors"
	"net/http"
	"time"

	"app/internal/domain/model"
	repo "app/internal/repository"
)

// OrderUsecase は確定済みカート（＝注文）の読み取り専用ビュー。
// 金額はすべてスナップショットから導出し、商品側の値上げの影響を受けない。
type OrderUsecase struct {
	cartRepo repo.CartRepository
}

func NewOrderUsecase(cartRepo repo.CartRepository) *OrderUsecase {
	return &OrderUsecase{cartRepo: cartRepo}
}

type ListOrdersInput struct {
	Page  int
	Limit int
	Step  string
	From  *time.Time
	To    *time.Time
}

type OrderItemOutput struct {
	ID           int64  `json:"id"`
	ProductTitle string `json:"product_title"`
	Price        *int64 `json:"price"`
	Quantity     int64  `json:"quantity"`
}

type OrderOutput struct {
	ID                      int64             `json:"id"`
	Step                    string            `json:"step"`
	Description             string            `json:"description"`
	ReceiverAddress         string            `json:"receiver_address"`
	OrderPrice              int64             `json:"order_price"`
	DiscountPrice           int64             `json:"discount_price"`
	OrderPriceAfterDiscount int64             `json:"order_price_after_discount"`
	ShippingPrice           int64             `json:"shipping_price"`
	OrderPriceWithShipping  int64             `json:"order_price_with_shipping"`
	FinalizedAt             *time.Time        `json:"finalized_at"`
	PaidAt                  *time.Time        `json:"paid_at"`
	CreatedAt               time.Time         `json:"created_at"`
	OrderItems              []OrderItemOutput `json:"orderitems"`
}

type OrderListOutput struct {
	Count   int64         `json:"count"`
	Results []OrderOutput `json:"results"`
}

func (u *OrderUsecase) ListMyOrders(ctx context.Context, userID int64, in ListOrdersInput) (OrderListOutput, error) {
	if userID <= 0 {
		return OrderListOutput{}, NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}

	if in.Step != "" && !isOrderStep(in.Step) {
		return OrderListOutput{}, NewHTTPError(http.StatusBadRequest, "invalid step")
	}

	orders, total, err := u.cartRepo.ListOrdersByUserID(ctx, userID, repo.OrderListFilter{
		Page:  in.Page,
		Limit: in.Limit,
		Step:  in.Step,
		From:  in.From,
		To:    in.To,
	})
	if err != nil {
		return OrderListOutput{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}

	results := make([]OrderOutput, 0, len(orders))
	for i := range orders {
		results = append(results, toOrderOutput(&orders[i]))
	}

	return OrderListOutput{Count: total, Results: results}, nil
}

func (u *OrderUsecase) GetMyOrderDetail(ctx context.Context, userID int64, orderID int64) (OrderOutput, error) {
	if userID <= 0 {
		return OrderOutput{}, NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	if orderID <= 0 {
		return OrderOutput{}, NewHTTPError(http.StatusBadRequest, "invalid id")
	}

	order, err := u.cartRepo.FindOrderByID(ctx, orderID)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return OrderOutput{}, NewHTTPError(http.StatusNotFound, "not found")
		}
		return OrderOutput{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}

	//他人の注文は「存在しない扱い」にする
	if order.UserID != userID {
		return OrderOutput{}, NewHTTPError(http.StatusNotFound, "not found")
	}

	return toOrderOutput(&order), nil
}

func toOrderOutput(order *model.Cart) OrderOutput {
	items := make([]OrderItemOutput, 0, len(order.Items))
	for i := range order.Items {
		it := &order.Items[i]
		items = append(items, OrderItemOutput{
			ID:           it.ID,
			ProductTitle: it.Product.Title,
			Price:        it.LockedPrice,
			Quantity:     it.Quantity,
		})
	}

	return OrderOutput{
		ID:                      order.ID,
		Step:                    string(order.Step),
		Description:             order.Description,
		ReceiverAddress:         order.ReceiverAddress,
		OrderPrice:              order.OrderPrice(),
		DiscountPrice:           order.DiscountPrice,
		OrderPriceAfterDiscount: order.OrderPriceAfterDiscount(),
		ShippingPrice:           order.ShippingPrice,
		OrderPriceWithShipping:  order.OrderPriceWithShipping(),
		FinalizedAt:             order.FinalizedAt,
		PaidAt:                  order.PaidAt,
		CreatedAt:               order.CreatedAt,
		OrderItems:              items,
	}
}

func isOrderStep(s string) bool {
	switch model.CartStep(s) {
	case model.CartStepPending, model.CartStepPaid, model.CartStepDelivered, model.CartStepCanceled:
		return true
	default:
		return false
	}
}
