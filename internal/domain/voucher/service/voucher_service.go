package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
	shopRepo "voucher_wheel/internal/domain/shop/repository"
	"voucher_wheel/internal/domain/voucher/model"
	"voucher_wheel/internal/domain/voucher/repository"
	"voucher_wheel/pkg/metrics"
	"voucher_wheel/pkg/utils"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var (
	ErrInvalidVoucher    = errors.New("invalid voucher")
	ErrVoucherCodeExists = errors.New("voucher code already exists")
)

// 随机生成券码冲突时的重试次数
const codeAttempts = 5

// CreateVoucherInput 后台录入券
type CreateVoucherInput struct {
	ShopID      string
	Code        string // 为空时自动生成
	Value       decimal.Decimal
	Description string
	ExpiresAt   time.Time
}

type VoucherService interface {
	CreateVoucher(ctx context.Context, input CreateVoucherInput) (*model.Voucher, error)
	ListUserVouchers(ctx context.Context, userID string) (*model.Wallet, error)
	RedeemVoucher(ctx context.Context, code string) (*model.Voucher, error)
	Stats(ctx context.Context) (*model.Stats, error)
}

type voucherService struct {
	repo    repository.VoucherRepository
	shops   shopRepo.ShopRepository
	metrics *metrics.MetricsCollector
	log     *zap.Logger
	now     func() time.Time
}

func NewVoucherService(repo repository.VoucherRepository, shops shopRepo.ShopRepository, collector *metrics.MetricsCollector, log *zap.Logger) VoucherService {
	return &voucherService{
		repo:    repo,
		shops:   shops,
		metrics: collector,
		log:     log,
		now:     time.Now,
	}
}

// CreateVoucher 录入一张券到奖池
func (s *voucherService) CreateVoucher(ctx context.Context, input CreateVoucherInput) (*model.Voucher, error) {
	if !input.Value.IsPositive() {
		return nil, fmt.Errorf("%w: value must be positive", ErrInvalidVoucher)
	}
	if !input.ExpiresAt.After(s.now()) {
		return nil, fmt.Errorf("%w: expiry must be in the future", ErrInvalidVoucher)
	}

	shop, err := s.shops.GetByID(ctx, input.ShopID)
	if err != nil {
		return nil, err
	}

	voucher := &model.Voucher{
		ShopID:      shop.ID,
		Value:       input.Value,
		Description: input.Description,
		ExpiresAt:   input.ExpiresAt.UTC(),
	}

	code := strings.ToUpper(strings.TrimSpace(input.Code))
	if code != "" {
		voucher.Code = code
		if err := s.create(ctx, voucher); err != nil {
			return nil, err
		}
	} else if err := s.createWithGeneratedCode(ctx, voucher, shop.Name); err != nil {
		return nil, err
	}

	voucher.Shop = shop
	s.log.Info("voucher created", zap.String("code", voucher.Code), zap.String("shop_id", shop.ID))
	return voucher, nil
}

func (s *voucherService) createWithGeneratedCode(ctx context.Context, voucher *model.Voucher, shopName string) error {
	for i := 0; i < codeAttempts; i++ {
		code, err := utils.VoucherCode(shopName)
		if err != nil {
			return err
		}
		voucher.Code = code
		voucher.ID = ""

		err = s.create(ctx, voucher)
		if !errors.Is(err, ErrVoucherCodeExists) {
			return err
		}
	}
	return ErrVoucherCodeExists
}

func (s *voucherService) create(ctx context.Context, voucher *model.Voucher) error {
	err := s.repo.Create(ctx, voucher)
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return ErrVoucherCodeExists
	}
	return err
}

// ListUserVouchers 用户券包，按可用与不可用分组
func (s *voucherService) ListUserVouchers(ctx context.Context, userID string) (*model.Wallet, error) {
	vouchers, err := s.repo.ListByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list vouchers: %w", err)
	}

	now := s.now()
	wallet := &model.Wallet{Active: []model.Voucher{}, Inactive: []model.Voucher{}}
	for _, v := range vouchers {
		if v.IsActive(now) {
			wallet.Active = append(wallet.Active, v)
		} else {
			wallet.Inactive = append(wallet.Inactive, v)
		}
	}
	wallet.ActiveCount = len(wallet.Active)
	wallet.InactiveCount = len(wallet.Inactive)
	return wallet, nil
}

// RedeemVoucher 核销
func (s *voucherService) RedeemVoucher(ctx context.Context, code string) (*model.Voucher, error) {
	code = strings.ToUpper(strings.TrimSpace(code))
	voucher, err := s.repo.Redeem(ctx, code, s.now())
	if err != nil {
		return nil, err
	}
	s.metrics.RecordRedemption()
	s.log.Info("voucher redeemed", zap.String("code", code))
	return voucher, nil
}

func (s *voucherService) Stats(ctx context.Context) (*model.Stats, error) {
	return s.repo.Stats(ctx, s.now())
}
