package usecase

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"app/internal/domain/model"
	repo "app/internal/repository"
)

// CatalogUsecase は参照データ（商品・割引・配送方法）の読み取りと、
// 管理者による登録。登録は監査ログを残す。
type CatalogUsecase struct {
	productRepo  repo.ProductRepository
	discountRepo repo.DiscountRepository
	shippingRepo repo.ShippingRepository
	auditRepo    repo.AuditLogRepository
	clock        Clock
}

func NewCatalogUsecase(
	productRepo repo.ProductRepository,
	discountRepo repo.DiscountRepository,
	shippingRepo repo.ShippingRepository,
	auditRepo repo.AuditLogRepository,
	clock Clock,
) *CatalogUsecase {
	return &CatalogUsecase{
		productRepo:  productRepo,
		discountRepo: discountRepo,
		shippingRepo: shippingRepo,
		auditRepo:    auditRepo,
		clock:        clock,
	}
}

type ListProductsInput struct {
	Page  int
	Limit int
	Q     string
}

type ProductListOutput struct {
	Count   int64           `json:"count"`
	Results []model.Product `json:"results"`
}

func (u *CatalogUsecase) ListProducts(ctx context.Context, in ListProductsInput) (ProductListOutput, error) {
	items, total, err := u.productRepo.List(ctx, repo.ProductListQuery{
		Page:  in.Page,
		Limit: in.Limit,
		Q:     in.Q,
	})
	if err != nil {
		return ProductListOutput{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}
	return ProductListOutput{Count: total, Results: items}, nil
}

func (u *CatalogUsecase) GetProduct(ctx context.Context, id int64) (model.Product, error) {
	if id <= 0 {
		return model.Product{}, NewHTTPError(http.StatusBadRequest, "invalid id")
	}

	p, err := u.productRepo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return model.Product{}, NewHTTPError(http.StatusNotFound, "not found")
		}
		return model.Product{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}
	return p, nil
}

type CreateProductInput struct {
	Title       string
	Subtitle    string
	Description string
	IsFragile   bool
	BasePrice   int64
	ProfitPrice int64
}

func (u *CatalogUsecase) CreateProduct(ctx context.Context, adminID int64, in CreateProductInput) (model.Product, error) {
	if adminID <= 0 {
		return model.Product{}, NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	if in.Title == "" {
		return model.Product{}, NewFieldHTTPError(http.StatusBadRequest, "title", "this field is required")
	}
	if in.BasePrice <= 0 {
		return model.Product{}, NewFieldHTTPError(http.StatusBadRequest, "base_price", "must be positive")
	}
	if in.ProfitPrice < 0 {
		return model.Product{}, NewFieldHTTPError(http.StatusBadRequest, "profit_price", "must not be negative")
	}

	created, err := u.productRepo.Create(ctx, model.Product{
		Title:       in.Title,
		Subtitle:    in.Subtitle,
		Description: in.Description,
		IsFragile:   in.IsFragile,
		BasePrice:   in.BasePrice,
		ProfitPrice: in.ProfitPrice,
	})
	if err != nil {
		return model.Product{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}

	u.writeAudit(ctx, adminID, model.AuditResourceProduct, created.ID, fmt.Sprintf("title=%s sell_price=%d", created.Title, created.SellPrice()))
	return created, nil
}

type CreateDiscountInput struct {
	Code       string
	Percentage *float64
	Constant   *int64
	Ceil       *int64
	MinValue   *int64
	ExpDate    *string // RFC3339
	IsActive   bool
}

func (u *CatalogUsecase) CreateDiscount(ctx context.Context, adminID int64, in CreateDiscountInput) (model.Discount, error) {
	if adminID <= 0 {
		return model.Discount{}, NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	if in.Code == "" {
		return model.Discount{}, NewFieldHTTPError(http.StatusBadRequest, "code", "this field is required")
	}

	//percentage/constantはどちらか一方だけ
	if (in.Percentage != nil) == (in.Constant != nil) {
		return model.Discount{}, NewHTTPError(http.StatusBadRequest, model.ErrDiscountKindConflict.Error())
	}

	d := model.Discount{
		Code:       in.Code,
		Percentage: in.Percentage,
		Constant:   in.Constant,
		Ceil:       in.Ceil,
		MinValue:   in.MinValue,
		StartDate:  u.clock.Now(),
		IsActive:   in.IsActive,
	}
	if in.ExpDate != nil {
		exp, err := parseRFC3339(*in.ExpDate)
		if err != nil {
			return model.Discount{}, NewFieldHTTPError(http.StatusBadRequest, "exp_date", "must be RFC3339")
		}
		d.ExpDate = &exp
	}

	created, err := u.discountRepo.Create(ctx, d)
	if err != nil {
		if errors.Is(err, model.ErrDiscountKindConflict) {
			return model.Discount{}, NewHTTPError(http.StatusBadRequest, err.Error())
		}
		return model.Discount{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}

	u.writeAudit(ctx, adminID, model.AuditResourceDiscount, created.ID, fmt.Sprintf("code=%s kind=%s", created.Code, created.Kind()))
	return created, nil
}

type CreateShippingInput struct {
	Type  string
	Price int64
}

func (u *CatalogUsecase) CreateShipping(ctx context.Context, adminID int64, in CreateShippingInput) (model.Shipping, error) {
	if adminID <= 0 {
		return model.Shipping{}, NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}

	t := model.ShippingType(in.Type)
	if t != model.ShippingTypeRegular && t != model.ShippingTypeExpress {
		return model.Shipping{}, NewFieldHTTPError(http.StatusBadRequest, "type", "must be regular or express")
	}
	if in.Price < 0 {
		return model.Shipping{}, NewFieldHTTPError(http.StatusBadRequest, "price", "must not be negative")
	}

	created, err := u.shippingRepo.Create(ctx, model.Shipping{Type: t, Price: in.Price})
	if err != nil {
		return model.Shipping{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}

	u.writeAudit(ctx, adminID, model.AuditResourceShipping, created.ID, fmt.Sprintf("type=%s price=%d", created.Type, created.Price))
	return created, nil
}

// 監査ログは失敗しても本処理を巻き戻さない
func (u *CatalogUsecase) writeAudit(ctx context.Context, adminID int64, resource model.AuditResourceType, resourceID int64, detail string) {
	_ = u.auditRepo.Create(ctx, model.AuditLog{
		ActorUserID:  adminID,
		Action:       model.AuditActionCreateResource,
		ResourceType: resource,
		ResourceID:   resourceID,
		Detail:       detail,
		CreatedAt:    u.clock.Now(),
	})
}
