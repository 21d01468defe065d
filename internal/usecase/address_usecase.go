package usecase

import (
	"context"
	"net/http"

	"app/internal/domain/model"
	repo "app/internal/repository"
)

// AddressUsecase は配送先住所の登録と一覧。
// 確定時の凍結用に保持しているだけで、編集しても過去の注文には影響しない。
type AddressUsecase struct {
	addressRepo repo.AddressRepository
}

func NewAddressUsecase(addressRepo repo.AddressRepository) *AddressUsecase {
	return &AddressUsecase{addressRepo: addressRepo}
}

type CreateAddressInput struct {
	Province string
	City     string
	Address  string
	ZipCode  string
}

func (u *AddressUsecase) Create(ctx context.Context, userID int64, in CreateAddressInput) (model.Address, error) {
	if userID <= 0 {
		return model.Address{}, NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	if in.Province == "" || in.City == "" || in.Address == "" {
		return model.Address{}, NewHTTPError(http.StatusBadRequest, "province, city and address are required")
	}

	created, err := u.addressRepo.Create(ctx, model.Address{
		UserID:   userID,
		Province: in.Province,
		City:     in.City,
		Address:  in.Address,
		ZipCode:  in.ZipCode,
	})
	if err != nil {
		return model.Address{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}
	return created, nil
}

func (u *AddressUsecase) ListMy(ctx context.Context, userID int64) ([]model.Address, error) {
	if userID <= 0 {
		return nil, NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}

	items, err := u.addressRepo.ListByUserID(ctx, userID)
	if err != nil {
		return nil, NewHTTPError(http.StatusInternalServerError, "db error")
	}
	return items, nil
}
