package repository

import (
	"context"
	"errors"
	"time"
	"voucher_wheel/internal/domain/voucher/model"

	"gorm.io/gorm"
)

var (
	// ErrVoucherNotFound 券码不存在
	ErrVoucherNotFound = errors.New("voucher not found")
	// ErrVoucherNotRedeemable 未被领取、已过期或已核销
	ErrVoucherNotRedeemable = errors.New("voucher not redeemable")
)

type VoucherRepository interface {
	Create(ctx context.Context, voucher *model.Voucher) error
	GetByCode(ctx context.Context, code string) (*model.Voucher, error)
	ExistsCode(ctx context.Context, code string) (bool, error)
	ListByUser(ctx context.Context, userID string) ([]model.Voucher, error)
	Redeem(ctx context.Context, code string, now time.Time) (*model.Voucher, error)
	Stats(ctx context.Context, now time.Time) (*model.Stats, error)
}

type voucherRepository struct {
	db *gorm.DB
}

func NewVoucherRepository(db *gorm.DB) VoucherRepository {
	return &voucherRepository{db: db}
}

func (r *voucherRepository) Create(ctx context.Context, voucher *model.Voucher) error {
	return r.db.WithContext(ctx).Create(voucher).Error
}

func (r *voucherRepository) GetByCode(ctx context.Context, code string) (*model.Voucher, error) {
	var voucher model.Voucher
	err := r.db.WithContext(ctx).Preload("Shop").Where("code = ?", code).First(&voucher).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrVoucherNotFound
	}
	if err != nil {
		return nil, err
	}
	return &voucher, nil
}

func (r *voucherRepository) ExistsCode(ctx context.Context, code string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&model.Voucher{}).Where("code = ?", code).Count(&count).Error
	return count > 0, err
}

// ListByUser 用户赢得的券，最近中奖的在前
func (r *voucherRepository) ListByUser(ctx context.Context, userID string) ([]model.Voucher, error) {
	var vouchers []model.Voucher
	err := r.db.WithContext(ctx).
		Preload("Shop").
		Where("won_by_user_id = ?", userID).
		Order("won_at DESC").
		Find(&vouchers).Error
	return vouchers, err
}

// Redeem 条件更新核销，同一张券只能成功一次
func (r *voucherRepository) Redeem(ctx context.Context, code string, now time.Time) (*model.Voucher, error) {
	result := r.db.WithContext(ctx).Model(&model.Voucher{}).
		Where("code = ? AND won_by_user_id IS NOT NULL AND is_used = ? AND expires_at > ?", code, false, now).
		Updates(map[string]interface{}{"is_used": true, "used_at": now})
	if result.Error != nil {
		return nil, result.Error
	}
	if result.RowsAffected == 0 {
		exists, err := r.ExistsCode(ctx, code)
		if err != nil {
			return nil, err
		}
		if !exists {
			return nil, ErrVoucherNotFound
		}
		return nil, ErrVoucherNotRedeemable
	}
	return r.GetByCode(ctx, code)
}

func (r *voucherRepository) Stats(ctx context.Context, now time.Time) (*model.Stats, error) {
	var stats model.Stats
	db := r.db.WithContext(ctx).Model(&model.Voucher{})

	if err := db.Session(&gorm.Session{}).Count(&stats.Total).Error; err != nil {
		return nil, err
	}
	if err := db.Session(&gorm.Session{}).Where("won_by_user_id IS NOT NULL").Count(&stats.Won).Error; err != nil {
		return nil, err
	}
	if err := db.Session(&gorm.Session{}).Where("is_used = ?", true).Count(&stats.Used).Error; err != nil {
		return nil, err
	}
	if err := db.Session(&gorm.Session{}).
		Where("won_by_user_id IS NULL AND expires_at > ?", now).
		Count(&stats.Available).Error; err != nil {
		return nil, err
	}
	return &stats, nil
}
