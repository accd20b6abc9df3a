package service

import (
	"context"
	"errors"
	"strings"
	"time"
	"voucher_wheel/internal/domain/mall/model"
	"voucher_wheel/internal/domain/mall/repository"
	"voucher_wheel/pkg/cache"

	"go.uber.org/zap"
)

const (
	MallInfoCacheKey = "mall_info"
	MallInfoCacheTTL = time.Hour
)

// ErrInvalidMallInfo 名称为空
var ErrInvalidMallInfo = errors.New("mall name is required")

type UpdateMallInput struct {
	Name         string
	Address      string
	Phone        string
	Email        string
	OpeningHours string
	Description  string
	MapImage     string
}

type MallService interface {
	GetInfo(ctx context.Context) (*model.MallInfo, error)
	UpdateInfo(ctx context.Context, input UpdateMallInput) (*model.MallInfo, error)
}

type mallService struct {
	repo  repository.MallRepository
	cache cache.CacheService
	log   *zap.Logger
}

// NewMallService 商场信息读多写少，读路径走缓存
func NewMallService(repo repository.MallRepository, cache cache.CacheService, log *zap.Logger) MallService {
	return &mallService{repo: repo, cache: cache, log: log}
}

func (s *mallService) GetInfo(ctx context.Context) (*model.MallInfo, error) {
	var info model.MallInfo
	if err := s.cache.Get(ctx, MallInfoCacheKey, &info); err == nil {
		return &info, nil
	} else if !errors.Is(err, cache.ErrCacheMiss) {
		s.log.Warn("mall info cache read failed", zap.Error(err))
	}

	stored, err := s.repo.Get(ctx)
	if err != nil {
		return nil, err
	}
	if err := s.cache.Set(ctx, MallInfoCacheKey, stored, MallInfoCacheTTL); err != nil {
		s.log.Warn("mall info cache write failed", zap.Error(err))
	}
	return stored, nil
}

// UpdateInfo 整体覆盖商场信息并清除缓存
func (s *mallService) UpdateInfo(ctx context.Context, input UpdateMallInput) (*model.MallInfo, error) {
	input.Name = strings.TrimSpace(input.Name)
	if input.Name == "" {
		return nil, ErrInvalidMallInfo
	}

	info := &model.MallInfo{
		Name:         input.Name,
		Address:      strings.TrimSpace(input.Address),
		Phone:        strings.TrimSpace(input.Phone),
		Email:        strings.TrimSpace(input.Email),
		OpeningHours: strings.TrimSpace(input.OpeningHours),
		Description:  input.Description,
		MapImage:     strings.TrimSpace(input.MapImage),
	}
	if err := s.repo.Save(ctx, info); err != nil {
		return nil, err
	}

	if err := s.cache.Delete(ctx, MallInfoCacheKey); err != nil {
		s.log.Warn("mall info cache invalidation failed", zap.Error(err))
	}
	s.log.Info("mall info updated", zap.String("id", info.ID))
	return info, nil
}
