package usecase

import (
	"context"
	"time"

	"app/internal/domain/model"
	repo "app/internal/repository"

	"github.com/stretchr/testify/mock"
)

// =====================
// TxManager / TxRepos mocks
// =====================

// TxManagerMock は WithinTx の中で渡す repos を固定して unit テストを回す
type TxManagerMock struct {
	mock.Mock
	Repos repo.TxRepos
}

func (m *TxManagerMock) WithinTx(ctx context.Context, fn func(r repo.TxRepos) error) error {
	// 呼ばれた事実だけ記録（ctxの具体値は問わない）
	m.Called(ctx)
	return fn(m.Repos)
}

type TxReposMock struct {
	carts      repo.CartRepository
	orderItems repo.OrderItemRepository
	products   repo.ProductRepository
	discounts  repo.DiscountRepository
	shippings  repo.ShippingRepository
	auditLogs  repo.AuditLogRepository
}

func (r *TxReposMock) Carts() repo.CartRepository           { return r.carts }
func (r *TxReposMock) OrderItems() repo.OrderItemRepository { return r.orderItems }
func (r *TxReposMock) Products() repo.ProductRepository     { return r.products }
func (r *TxReposMock) Discounts() repo.DiscountRepository   { return r.discounts }
func (r *TxReposMock) Shippings() repo.ShippingRepository   { return r.shippings }
func (r *TxReposMock) AuditLogs() repo.AuditLogRepository   { return r.auditLogs }

// =====================
// Repository mocks
// =====================

type CartRepoMock struct{ mock.Mock }

func (m *CartRepoMock) GetOrCreateOpenByUserID(ctx context.Context, userID int64) (model.Cart, error) {
	args := m.Called(ctx, userID)
	c, _ := args.Get(0).(model.Cart)
	return c, args.Error(1)
}

func (m *CartRepoMock) FindOpenByUserID(ctx context.Context, userID int64) (model.Cart, error) {
	args := m.Called(ctx, userID)
	c, _ := args.Get(0).(model.Cart)
	return c, args.Error(1)
}

func (m *CartRepoMock) Save(ctx context.Context, cart *model.Cart) error {
	args := m.Called(ctx, cart)
	return args.Error(0)
}

func (m *CartRepoMock) ListOrdersByUserID(ctx context.Context, userID int64, f repo.OrderListFilter) ([]model.Cart, int64, error) {
	args := m.Called(ctx, userID, f)
	cs, _ := args.Get(0).([]model.Cart)
	total, _ := args.Get(1).(int64)
	return cs, total, args.Error(2)
}

func (m *CartRepoMock) FindOrderByID(ctx context.Context, orderID int64) (model.Cart, error) {
	args := m.Called(ctx, orderID)
	c, _ := args.Get(0).(model.Cart)
	return c, args.Error(1)
}

func (m *CartRepoMock) CancelExpiredPending(ctx context.Context, olderThan time.Time) (int64, error) {
	args := m.Called(ctx, olderThan)
	n, _ := args.Get(0).(int64)
	return n, args.Error(1)
}

type OrderItemRepoMock struct{ mock.Mock }

func (m *OrderItemRepoMock) ListByCartID(ctx context.Context, cartID int64) ([]model.OrderItem, error) {
	args := m.Called(ctx, cartID)
	items, _ := args.Get(0).([]model.OrderItem)
	return items, args.Error(1)
}

func (m *OrderItemRepoMock) UpsertByCartAndProduct(ctx context.Context, cartID int64, productID int64, addQty int64) error {
	args := m.Called(ctx, cartID, productID, addQty)
	return args.Error(0)
}

func (m *OrderItemRepoMock) UpdateLockedPrice(ctx context.Context, orderItemID int64, price int64) error {
	args := m.Called(ctx, orderItemID, price)
	return args.Error(0)
}

func (m *OrderItemRepoMock) DeleteByID(ctx context.Context, orderItemID int64) error {
	args := m.Called(ctx, orderItemID)
	return args.Error(0)
}

func (m *OrderItemRepoMock) FindByID(ctx context.Context, orderItemID int64) (model.OrderItem, error) {
	args := m.Called(ctx, orderItemID)
	it, _ := args.Get(0).(model.OrderItem)
	return it, args.Error(1)
}

func (m *OrderItemRepoMock) IsOwnedByUser(ctx context.Context, orderItemID int64, userID int64) (bool, error) {
	args := m.Called(ctx, orderItemID, userID)
	return args.Bool(0), args.Error(1)
}

func (m *OrderItemRepoMock) LiveTotalByCartID(ctx context.Context, cartID int64) (int64, error) {
	args := m.Called(ctx, cartID)
	total, _ := args.Get(0).(int64)
	return total, args.Error(1)
}

type ProductRepoMock struct{ mock.Mock }

func (m *ProductRepoMock) List(ctx context.Context, q repo.ProductListQuery) ([]model.Product, int64, error) {
	args := m.Called(ctx, q)
	ps, _ := args.Get(0).([]model.Product)
	total, _ := args.Get(1).(int64)
	return ps, total, args.Error(2)
}

func (m *ProductRepoMock) FindByID(ctx context.Context, id int64) (model.Product, error) {
	args := m.Called(ctx, id)
	p, _ := args.Get(0).(model.Product)
	return p, args.Error(1)
}

func (m *ProductRepoMock) Create(ctx context.Context, p model.Product) (model.Product, error) {
	args := m.Called(ctx, p)
	created, _ := args.Get(0).(model.Product)
	return created, args.Error(1)
}

func (m *ProductRepoMock) Update(ctx context.Context, p model.Product) error {
	args := m.Called(ctx, p)
	return args.Error(0)
}

type DiscountRepoMock struct{ mock.Mock }

func (m *DiscountRepoMock) FindByCode(ctx context.Context, code string) (model.Discount, error) {
	args := m.Called(ctx, code)
	d, _ := args.Get(0).(model.Discount)
	return d, args.Error(1)
}

func (m *DiscountRepoMock) Create(ctx context.Context, d model.Discount) (model.Discount, error) {
	args := m.Called(ctx, d)
	created, _ := args.Get(0).(model.Discount)
	return created, args.Error(1)
}

type ShippingRepoMock struct{ mock.Mock }

func (m *ShippingRepoMock) FindByType(ctx context.Context, t model.ShippingType) (model.Shipping, error) {
	args := m.Called(ctx, t)
	s, _ := args.Get(0).(model.Shipping)
	return s, args.Error(1)
}

func (m *ShippingRepoMock) Create(ctx context.Context, s model.Shipping) (model.Shipping, error) {
	args := m.Called(ctx, s)
	created, _ := args.Get(0).(model.Shipping)
	return created, args.Error(1)
}

type AddressRepoMock struct{ mock.Mock }

func (m *AddressRepoMock) Create(ctx context.Context, address model.Address) (model.Address, error) {
	args := m.Called(ctx, address)
	a, _ := args.Get(0).(model.Address)
	return a, args.Error(1)
}

func (m *AddressRepoMock) ListByUserID(ctx context.Context, userID int64) ([]model.Address, error) {
	args := m.Called(ctx, userID)
	as, _ := args.Get(0).([]model.Address)
	return as, args.Error(1)
}

func (m *AddressRepoMock) FindByID(ctx context.Context, addressID int64) (model.Address, error) {
	args := m.Called(ctx, addressID)
	a, _ := args.Get(0).(model.Address)
	return a, args.Error(1)
}

type UserRepoMock struct{ mock.Mock }

func (m *UserRepoMock) Create(ctx context.Context, user *model.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *UserRepoMock) FindByEmail(ctx context.Context, email string) (model.User, error) {
	args := m.Called(ctx, email)
	u, _ := args.Get(0).(model.User)
	return u, args.Error(1)
}

func (m *UserRepoMock) FindByID(ctx context.Context, id int64) (model.User, error) {
	args := m.Called(ctx, id)
	u, _ := args.Get(0).(model.User)
	return u, args.Error(1)
}

type AuditLogRepoMock struct{ mock.Mock }

func (m *AuditLogRepoMock) Create(ctx context.Context, log model.AuditLog) error {
	args := m.Called(ctx, log)
	return args.Error(0)
}

// =====================
// Clock / IDGenerator mocks
// =====================

type fixedClock struct{ now time.Time }

func (c *fixedClock) Now() time.Time { return c.now }

type fixedIDGen struct{ id string }

func (g *fixedIDGen) NewID() string { return g.id }

// =====================
// 共通ヘルパー
// =====================

func f64(v float64) *float64 { return &v }
func i64(v int64) *int64     { return &v }
