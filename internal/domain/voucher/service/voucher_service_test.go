package service

import (
	"context"
	"path/filepath"
	"testing"
	"time"
	shopModel "voucher_wheel/internal/domain/shop/model"
	shopRepo "voucher_wheel/internal/domain/shop/repository"
	"voucher_wheel/internal/domain/voucher/model"
	"voucher_wheel/internal/domain/voucher/repository"
	"voucher_wheel/pkg/metrics"

	"github.com/glebarez/sqlite"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var fixedNow = time.Date(2025, 3, 14, 12, 0, 0, 0, time.UTC)

type fixture struct {
	db   *gorm.DB
	svc  *voucherService
	shop *shopModel.Shop
}

func setup(t *testing.T) *fixture {
	t.Helper()
	dsn := filepath.Join(t.TempDir(), "voucher.db") + "?_pragma=busy_timeout(5000)"
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })
	require.NoError(t, db.AutoMigrate(&shopModel.Shop{}, &model.Voucher{}))

	shop := &shopModel.Shop{Name: "Fox Coffee", Category: "food", IsActive: true}
	require.NoError(t, db.Create(shop).Error)

	svc := NewVoucherService(
		repository.NewVoucherRepository(db),
		shopRepo.NewShopRepository(db),
		metrics.NewMetricsCollector(prometheus.NewRegistry()),
		zap.NewNop(),
	).(*voucherService)
	svc.now = func() time.Time { return fixedNow }
	return &fixture{db: db, svc: svc, shop: shop}
}

func (f *fixture) input(code string) CreateVoucherInput {
	return CreateVoucherInput{
		ShopID:      f.shop.ID,
		Code:        code,
		Value:       decimal.RequireFromString("12.50"),
		Description: "Coffee voucher",
		ExpiresAt:   fixedNow.Add(7 * 24 * time.Hour),
	}
}

// award 模拟抽中
func (f *fixture) award(t *testing.T, code, userID string, wonAt time.Time) {
	t.Helper()
	require.NoError(t, f.db.Model(&model.Voucher{}).Where("code = ?", code).
		Updates(map[string]interface{}{"won_by_user_id": userID, "won_at": wonAt}).Error)
}

func TestCreateVoucherGeneratesCode(t *testing.T) {
	f := setup(t)

	v, err := f.svc.CreateVoucher(context.Background(), f.input(""))
	require.NoError(t, err)
	assert.Regexp(t, `^FOX-FOXCOF-[0-9A-Z]{6}$`, v.Code)
	assert.Equal(t, "Fox Coffee", v.ShopName())
	assert.NotEmpty(t, v.ID)
}

func TestCreateVoucherExplicitCode(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	v, err := f.svc.CreateVoucher(ctx, f.input(" fox-welcome-1 "))
	require.NoError(t, err)
	assert.Equal(t, "FOX-WELCOME-1", v.Code)

	_, err = f.svc.CreateVoucher(ctx, f.input("FOX-WELCOME-1"))
	assert.ErrorIs(t, err, ErrVoucherCodeExists)
}

func TestCreateVoucherValidation(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	in := f.input("")
	in.Value = decimal.Zero
	_, err := f.svc.CreateVoucher(ctx, in)
	assert.ErrorIs(t, err, ErrInvalidVoucher)

	in = f.input("")
	in.ExpiresAt = fixedNow.Add(-time.Hour)
	_, err = f.svc.CreateVoucher(ctx, in)
	assert.ErrorIs(t, err, ErrInvalidVoucher)

	in = f.input("")
	in.ShopID = "missing"
	_, err = f.svc.CreateVoucher(ctx, in)
	assert.ErrorIs(t, err, shopRepo.ErrShopNotFound)
}

func TestListUserVouchersSplitsWallet(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	for _, code := range []string{"ACTIVE-1", "ACTIVE-2", "USED-1", "OTHER-1"} {
		_, err := f.svc.CreateVoucher(ctx, f.input(code))
		require.NoError(t, err)
	}
	expired := f.input("EXPIRED-1")
	expired.ExpiresAt = fixedNow.Add(time.Hour)
	_, err := f.svc.CreateVoucher(ctx, expired)
	require.NoError(t, err)

	f.award(t, "ACTIVE-1", "user-1", fixedNow.Add(-3*time.Hour))
	f.award(t, "ACTIVE-2", "user-1", fixedNow.Add(-1*time.Hour))
	f.award(t, "USED-1", "user-1", fixedNow.Add(-2*time.Hour))
	f.award(t, "EXPIRED-1", "user-1", fixedNow.Add(-4*time.Hour))
	f.award(t, "OTHER-1", "user-2", fixedNow)
	_, err = f.svc.RedeemVoucher(ctx, "USED-1")
	require.NoError(t, err)

	// 两小时后 EXPIRED-1 已过期
	f.svc.now = func() time.Time { return fixedNow.Add(2 * time.Hour) }
	wallet, err := f.svc.ListUserVouchers(ctx, "user-1")
	require.NoError(t, err)

	require.Equal(t, 2, wallet.ActiveCount)
	assert.Equal(t, "ACTIVE-2", wallet.Active[0].Code)
	assert.Equal(t, "ACTIVE-1", wallet.Active[1].Code)
	assert.Equal(t, "Fox Coffee", wallet.Active[0].ShopName())

	require.Equal(t, 2, wallet.InactiveCount)
	assert.Equal(t, "USED-1", wallet.Inactive[0].Code)
	assert.Equal(t, "EXPIRED-1", wallet.Inactive[1].Code)
}

func TestListUserVouchersEmpty(t *testing.T) {
	f := setup(t)
	wallet, err := f.svc.ListUserVouchers(context.Background(), "nobody")
	require.NoError(t, err)
	assert.NotNil(t, wallet.Active)
	assert.Zero(t, wallet.ActiveCount)
}

func TestRedeemVoucher(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	_, err := f.svc.CreateVoucher(ctx, f.input("FOX-REDEEM-1"))
	require.NoError(t, err)

	_, err = f.svc.RedeemVoucher(ctx, "FOX-REDEEM-1")
	assert.ErrorIs(t, err, repository.ErrVoucherNotRedeemable, "unclaimed voucher cannot be redeemed")

	f.award(t, "FOX-REDEEM-1", "user-1", fixedNow)
	v, err := f.svc.RedeemVoucher(ctx, "fox-redeem-1")
	require.NoError(t, err)
	assert.True(t, v.IsUsed)
	require.NotNil(t, v.UsedAt)

	_, err = f.svc.RedeemVoucher(ctx, "FOX-REDEEM-1")
	assert.ErrorIs(t, err, repository.ErrVoucherNotRedeemable)

	_, err = f.svc.RedeemVoucher(ctx, "FOX-NOPE")
	assert.ErrorIs(t, err, repository.ErrVoucherNotFound)
}

func TestStats(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	for _, code := range []string{"A", "B", "C"} {
		_, err := f.svc.CreateVoucher(ctx, f.input(code))
		require.NoError(t, err)
	}
	f.award(t, "A", "user-1", fixedNow)
	f.award(t, "B", "user-2", fixedNow)
	_, err := f.svc.RedeemVoucher(ctx, "A")
	require.NoError(t, err)

	stats, err := f.svc.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, &model.Stats{Total: 3, Won: 2, Used: 1, Available: 1}, stats)
}
