package service

import (
	"context"
	"errors"
	"strings"
	"voucher_wheel/internal/domain/shop/model"
	"voucher_wheel/internal/domain/shop/repository"
)

// ErrInvalidShop 名称或分类为空
var ErrInvalidShop = errors.New("shop name and category are required")

// CreateShopInput 新建商铺
type CreateShopInput struct {
	Name         string
	Description  string
	Category     string
	Floor        int
	Location     string
	Logo         string
	Image        string
	WebsiteURL   string
	Phone        string
	OpeningHours string
}

type ShopService interface {
	ListShops(ctx context.Context, category string) ([]model.Shop, error)
	GetShop(ctx context.Context, id string) (*model.Shop, error)
	ListCategories(ctx context.Context) ([]string, error)
	CreateShop(ctx context.Context, input CreateShopInput) (*model.Shop, error)
}

type shopService struct {
	repo repository.ShopRepository
}

func NewShopService(repo repository.ShopRepository) ShopService {
	return &shopService{repo: repo}
}

func (s *shopService) ListShops(ctx context.Context, category string) ([]model.Shop, error) {
	return s.repo.ListActive(ctx, strings.TrimSpace(category))
}

func (s *shopService) GetShop(ctx context.Context, id string) (*model.Shop, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *shopService) ListCategories(ctx context.Context) ([]string, error) {
	return s.repo.ListCategories(ctx)
}

func (s *shopService) CreateShop(ctx context.Context, input CreateShopInput) (*model.Shop, error) {
	name := strings.TrimSpace(input.Name)
	category := strings.ToLower(strings.TrimSpace(input.Category))
	if name == "" || category == "" {
		return nil, ErrInvalidShop
	}

	shop := &model.Shop{
		Name:         name,
		Description:  input.Description,
		Category:     category,
		Floor:        input.Floor,
		Location:     input.Location,
		Logo:         input.Logo,
		Image:        input.Image,
		WebsiteURL:   input.WebsiteURL,
		Phone:        input.Phone,
		OpeningHours: input.OpeningHours,
		IsActive:     true,
	}
	if err := s.repo.Create(ctx, shop); err != nil {
		return nil, err
	}
	return shop, nil
}
