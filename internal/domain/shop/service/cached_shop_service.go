package service

import (
	"context"
	"errors"
	"fmt"
	"time"
	"voucher_wheel/internal/domain/shop/model"
	"voucher_wheel/pkg/cache"

	"go.uber.org/zap"
)

// 缓存键常量
const (
	ShopCacheKeyPrefix     = "shop:"
	ShopListCacheKeyPrefix = "shop_list:"
	ShopCategoriesCacheKey = "shop_categories"
	ShopCacheTTL           = time.Hour
	ShopListCacheTTL       = time.Minute * 10
)

// CachedShopService 带缓存的商铺服务，写操作后清除列表缓存
type CachedShopService struct {
	next  ShopService
	cache cache.CacheService
	log   *zap.Logger
}

// NewCachedShopService 创建带缓存的商铺服务
func NewCachedShopService(next ShopService, cache cache.CacheService, log *zap.Logger) ShopService {
	return &CachedShopService{next: next, cache: cache, log: log}
}

func (s *CachedShopService) getShopCacheKey(id string) string {
	return ShopCacheKeyPrefix + id
}

func (s *CachedShopService) getShopListCacheKey(category string) string {
	if category == "" {
		category = "all"
	}
	return fmt.Sprintf("%s%s", ShopListCacheKeyPrefix, category)
}

// ListShops 商铺列表（带缓存）
func (s *CachedShopService) ListShops(ctx context.Context, category string) ([]model.Shop, error) {
	key := s.getShopListCacheKey(category)

	var shops []model.Shop
	if err := s.cache.Get(ctx, key, &shops); err == nil {
		return shops, nil
	} else if !errors.Is(err, cache.ErrCacheMiss) {
		s.log.Warn("shop list cache read failed", zap.String("key", key), zap.Error(err))
	}

	shops, err := s.next.ListShops(ctx, category)
	if err != nil {
		return nil, err
	}
	if err := s.cache.Set(ctx, key, shops, ShopListCacheTTL); err != nil {
		s.log.Warn("failed to cache shop list", zap.String("key", key), zap.Error(err))
	}
	return shops, nil
}

// GetShop 单个商铺（带缓存）
func (s *CachedShopService) GetShop(ctx context.Context, id string) (*model.Shop, error) {
	key := s.getShopCacheKey(id)

	var shop model.Shop
	if err := s.cache.Get(ctx, key, &shop); err == nil {
		return &shop, nil
	}

	found, err := s.next.GetShop(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.cache.Set(ctx, key, found, ShopCacheTTL); err != nil {
		s.log.Warn("failed to cache shop", zap.String("key", key), zap.Error(err))
	}
	return found, nil
}

func (s *CachedShopService) ListCategories(ctx context.Context) ([]string, error) {
	var categories []string
	if err := s.cache.Get(ctx, ShopCategoriesCacheKey, &categories); err == nil {
		return categories, nil
	}

	categories, err := s.next.ListCategories(ctx)
	if err != nil {
		return nil, err
	}
	if err := s.cache.Set(ctx, ShopCategoriesCacheKey, categories, ShopListCacheTTL); err != nil {
		s.log.Warn("failed to cache shop categories", zap.Error(err))
	}
	return categories, nil
}

// CreateShop 新建商铺并清除列表缓存
func (s *CachedShopService) CreateShop(ctx context.Context, input CreateShopInput) (*model.Shop, error) {
	shop, err := s.next.CreateShop(ctx, input)
	if err != nil {
		return nil, err
	}

	if err := s.cache.InvalidatePattern(ctx, ShopListCacheKeyPrefix+"*"); err != nil {
		s.log.Warn("failed to invalidate shop list cache", zap.Error(err))
	}
	if err := s.cache.Delete(ctx, ShopCategoriesCacheKey); err != nil {
		s.log.Warn("failed to invalidate shop categories cache", zap.Error(err))
	}
	return shop, nil
}
