package usecase

import (
	"context"
	"errors"
	"net/http"

	repo "app/internal/repository"
)

// CartUsecase は /cart の業務ロジックです。
// openカートの取得・明細の追加（同一商品は加算）・削除を扱う。
type CartUsecase struct {
	cartRepo      repo.CartRepository
	orderItemRepo repo.OrderItemRepository
	productRepo   repo.ProductRepository
}

func NewCartUsecase(
	cartRepo repo.CartRepository,
	orderItemRepo repo.OrderItemRepository,
	productRepo repo.ProductRepository,
) *CartUsecase {
	return &CartUsecase{
		cartRepo:      cartRepo,
		orderItemRepo: orderItemRepo,
		productRepo:   productRepo,
	}
}

// 明細1行ぶんの出力。
// product_price は「今の販売価格」（スナップショットではない）。
type CartItemResponse struct {
	ID             int64  `json:"id"`
	ProductID      int64  `json:"product_id"`
	ProductTitle   string `json:"product_title"`
	ProductPrice   int64  `json:"product_price"`
	Quantity       int64  `json:"quantity"`
	OrderLinePrice int64  `json:"order_line_price"`
}

type CartResponse struct {
	OrderItems []CartItemResponse `json:"orderitems"`
	CartPrice  int64              `json:"cart_price"`
}

type AddCartItemInput struct {
	ProductID int64
	Quantity  int64
}

// GetCart はカート取得（無ければopenを作って空を返す）。
func (u *CartUsecase) GetCart(ctx context.Context, userID int64) (CartResponse, error) {
	if userID <= 0 {
		return CartResponse{}, NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}

	cart, err := u.cartRepo.GetOrCreateOpenByUserID(ctx, userID)
	if err != nil {
		return CartResponse{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}

	return u.buildCartResponse(ctx, cart.ID)
}

// AddItem はカートに追加（同一商品は数量加算）。
func (u *CartUsecase) AddItem(ctx context.Context, userID int64, in AddCartItemInput) (CartResponse, error) {
	if userID <= 0 {
		return CartResponse{}, NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	if in.ProductID <= 0 {
		return CartResponse{}, NewHTTPError(http.StatusBadRequest, "invalid product")
	}
	if in.Quantity < 1 {
		return CartResponse{}, NewHTTPError(http.StatusBadRequest, "invalid quantity")
	}

	// openカート取得（無ければ作成）
	cart, err := u.cartRepo.GetOrCreateOpenByUserID(ctx, userID)
	if err != nil {
		return CartResponse{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}

	// 商品チェック
	if _, err := u.productRepo.FindByID(ctx, in.ProductID); err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return CartResponse{}, NewHTTPError(http.StatusNotFound, "not found")
		}
		return CartResponse{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}

	// 同一商品は加算（repo側が行ロックでやる）
	if err := u.orderItemRepo.UpsertByCartAndProduct(ctx, cart.ID, in.ProductID, in.Quantity); err != nil {
		return CartResponse{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}

	return u.buildCartResponse(ctx, cart.ID)
}

// 明細削除（他人の明細・存在しない明細は404）
func (u *CartUsecase) RemoveItem(ctx context.Context, userID int64, orderItemID int64) (CartResponse, error) {
	if userID <= 0 {
		return CartResponse{}, NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	if orderItemID <= 0 {
		return CartResponse{}, NewHTTPError(http.StatusBadRequest, "invalid id")
	}

	owned, err := u.orderItemRepo.IsOwnedByUser(ctx, orderItemID, userID)
	if err != nil {
		return CartResponse{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}
	if !owned {
		return CartResponse{}, NewHTTPError(http.StatusNotFound, "not found")
	}

	if err := u.orderItemRepo.DeleteByID(ctx, orderItemID); err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return CartResponse{}, NewHTTPError(http.StatusNotFound, "not found")
		}
		return CartResponse{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}

	cart, err := u.cartRepo.GetOrCreateOpenByUserID(ctx, userID)
	if err != nil {
		return CartResponse{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}
	return u.buildCartResponse(ctx, cart.ID)
}

// cartIDの明細をまとめてCartResponseを作る。
// 行金額はモデル側・合計はDB側の集計で、同じ値になる。
func (u *CartUsecase) buildCartResponse(ctx context.Context, cartID int64) (CartResponse, error) {
	items, err := u.orderItemRepo.ListByCartID(ctx, cartID)
	if err != nil {
		return CartResponse{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}

	respItems := make([]CartItemResponse, 0, len(items))
	for i := range items {
		it := &items[i]
		respItems = append(respItems, CartItemResponse{
			ID:             it.ID,
			ProductID:      it.ProductID,
			ProductTitle:   it.Product.Title,
			ProductPrice:   it.Product.SellPrice(),
			Quantity:       it.Quantity,
			OrderLinePrice: it.LiveLinePrice(),
		})
	}

	total, err := u.orderItemRepo.LiveTotalByCartID(ctx, cartID)
	if err != nil {
		return CartResponse{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}

	return CartResponse{OrderItems: respItems, CartPrice: total}, nil
}
