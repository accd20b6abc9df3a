package repository

import (
	"context"
	"errors"
	"voucher_wheel/internal/domain/shop/model"

	"gorm.io/gorm"
)

// ErrShopNotFound 商铺不存在
var ErrShopNotFound = errors.New("shop not found")

type ShopRepository interface {
	Create(ctx context.Context, shop *model.Shop) error
	GetByID(ctx context.Context, id string) (*model.Shop, error)
	ListActive(ctx context.Context, category string) ([]model.Shop, error)
	ListCategories(ctx context.Context) ([]string, error)
}

type shopRepository struct {
	db *gorm.DB
}

func NewShopRepository(db *gorm.DB) ShopRepository {
	return &shopRepository{db: db}
}

func (r *shopRepository) Create(ctx context.Context, shop *model.Shop) error {
	return r.db.WithContext(ctx).Create(shop).Error
}

func (r *shopRepository) GetByID(ctx context.Context, id string) (*model.Shop, error) {
	var shop model.Shop
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&shop).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrShopNotFound
	}
	if err != nil {
		return nil, err
	}
	return &shop, nil
}

// ListActive 按名称排序的营业商铺，category 为空时返回全部
func (r *shopRepository) ListActive(ctx context.Context, category string) ([]model.Shop, error) {
	var shops []model.Shop
	q := r.db.WithContext(ctx).Where("is_active = ?", true)
	if category != "" {
		q = q.Where("category = ?", category)
	}
	if err := q.Order("name ASC").Find(&shops).Error; err != nil {
		return nil, err
	}
	return shops, nil
}

func (r *shopRepository) ListCategories(ctx context.Context) ([]string, error) {
	var categories []string
	err := r.db.WithContext(ctx).Model(&model.Shop{}).
		Where("is_active = ?", true).
		Distinct().
		Order("category ASC").
		Pluck("category", &categories).Error
	return categories, err
}
