package main

import (
	"bytes"
	"context"
	_ "embed"
	"errors"
	"fmt"
	"math/rand/v2"
	"time"
	gameModel "voucher_wheel/internal/domain/game/model"
	gameRepo "voucher_wheel/internal/domain/game/repository"
	mallModel "voucher_wheel/internal/domain/mall/model"
	mallRepo "voucher_wheel/internal/domain/mall/repository"
	mallService "voucher_wheel/internal/domain/mall/service"
	parkingModel "voucher_wheel/internal/domain/parking/model"
	parkingRepo "voucher_wheel/internal/domain/parking/repository"
	shopModel "voucher_wheel/internal/domain/shop/model"
	shopRepo "voucher_wheel/internal/domain/shop/repository"
	shopService "voucher_wheel/internal/domain/shop/service"
	voucherModel "voucher_wheel/internal/domain/voucher/model"
	voucherRepo "voucher_wheel/internal/domain/voucher/repository"
	voucherService "voucher_wheel/internal/domain/voucher/service"
	"voucher_wheel/pkg/cache"
	"voucher_wheel/pkg/metrics"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/shopspring/decimal"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

//go:embed seed.yaml
var seedYAML []byte

var errAlreadySeeded = errors.New("shops already exist, rerun with -reset")

type seedData struct {
	Mall struct {
		Name         string `mapstructure:"name"`
		Address      string `mapstructure:"address"`
		Phone        string `mapstructure:"phone"`
		Email        string `mapstructure:"email"`
		OpeningHours string `mapstructure:"opening_hours"`
		Description  string `mapstructure:"description"`
		MapImage     string `mapstructure:"map_image"`
	} `mapstructure:"mall"`
	ShopOpeningHours string `mapstructure:"shop_opening_hours"`
	Vouchers         struct {
		Categories []string `mapstructure:"categories"`
		Values     []int    `mapstructure:"values"`
		ValidDays  int      `mapstructure:"valid_days"`
	} `mapstructure:"vouchers"`
	DailyPrizes int           `mapstructure:"daily_prizes"`
	Parkings    []seedParking `mapstructure:"parkings"`
	Shops       []seedShop    `mapstructure:"shops"`
}

type seedShop struct {
	Name        string `mapstructure:"name"`
	Description string `mapstructure:"description"`
	Category    string `mapstructure:"category"`
	Floor       int    `mapstructure:"floor"`
	Location    string `mapstructure:"location"`
	WebsiteURL  string `mapstructure:"website_url"`
	Phone       string `mapstructure:"phone"`
}

type seedParking struct {
	Name            string `mapstructure:"name"`
	TotalSpaces     int    `mapstructure:"total_spaces"`
	AvailableSpaces int    `mapstructure:"available_spaces"`
	Floor           string `mapstructure:"floor"`
}

// loadSeedData 用 viper 解析内嵌的 YAML
func loadSeedData() (*seedData, error) {
	v := viper.New()
	v.SetConfigType("yaml")
	if err := v.ReadConfig(bytes.NewReader(seedYAML)); err != nil {
		return nil, err
	}
	var data seedData
	if err := v.Unmarshal(&data); err != nil {
		return nil, err
	}
	if len(data.Shops) == 0 || len(data.Vouchers.Values) == 0 || data.Mall.Name == "" {
		return nil, errors.New("seed data is incomplete")
	}
	return &data, nil
}

type summary struct {
	Shops    int
	Vouchers int
	Parkings int
	PoolDay  string
}

type seeder struct {
	db       *gorm.DB
	data     *seedData
	loc      *time.Location
	log      *zap.Logger
	now      func() time.Time
	pick     func(n int) int
	shops    shopService.ShopService
	vouchers voucherService.VoucherService
	mall     mallService.MallService
	parkings parkingRepo.ParkingRepository
	games    gameRepo.GameRepository
}

// newSeeder 走各领域的 service/repository，校验规则与线上一致
func newSeeder(db *gorm.DB, data *seedData, loc *time.Location, log *zap.Logger) *seeder {
	sRepo := shopRepo.NewShopRepository(db)
	return &seeder{
		db:       db,
		data:     data,
		loc:      loc,
		log:      log,
		now:      time.Now,
		pick:     rand.IntN,
		shops:    shopService.NewShopService(sRepo),
		vouchers: voucherService.NewVoucherService(voucherRepo.NewVoucherRepository(db), sRepo, metrics.NewMetricsCollector(prometheus.NewRegistry()), log),
		mall:     mallService.NewMallService(mallRepo.NewMallRepository(db), cache.NewMemoryCache(), log),
		parkings: parkingRepo.NewParkingRepository(db),
		games:    gameRepo.NewGameRepository(db),
	}
}

// reset 按外键依赖顺序清空商场数据，访客统计保留
func (s *seeder) reset(ctx context.Context) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		tx = tx.Session(&gorm.Session{AllowGlobalUpdate: true})
		for _, m := range []interface{}{
			&gameModel.GamePlay{},
			&gameModel.DailyPrizePool{},
			&voucherModel.Voucher{},
			&shopModel.Shop{},
			&parkingModel.Parking{},
			&mallModel.MallInfo{},
		} {
			if err := tx.Delete(m).Error; err != nil {
				return fmt.Errorf("clear %T: %w", m, err)
			}
		}
		s.log.Info("existing mall data cleared")
		return nil
	})
}

func (s *seeder) run(ctx context.Context) (*summary, error) {
	var existing int64
	if err := s.db.WithContext(ctx).Model(&shopModel.Shop{}).Count(&existing).Error; err != nil {
		return nil, err
	}
	if existing > 0 {
		return nil, errAlreadySeeded
	}

	m := s.data.Mall
	if _, err := s.mall.UpdateInfo(ctx, mallService.UpdateMallInput{
		Name:         m.Name,
		Address:      m.Address,
		Phone:        m.Phone,
		Email:        m.Email,
		OpeningHours: m.OpeningHours,
		Description:  m.Description,
		MapImage:     m.MapImage,
	}); err != nil {
		return nil, fmt.Errorf("mall info: %w", err)
	}

	withVoucher := make(map[string]bool, len(s.data.Vouchers.Categories))
	for _, c := range s.data.Vouchers.Categories {
		withVoucher[c] = true
	}
	expiresAt := s.now().AddDate(0, 0, s.data.Vouchers.ValidDays)

	out := &summary{}
	for _, in := range s.data.Shops {
		shop, err := s.shops.CreateShop(ctx, shopService.CreateShopInput{
			Name:         in.Name,
			Description:  in.Description,
			Category:     in.Category,
			Floor:        in.Floor,
			Location:     in.Location,
			WebsiteURL:   in.WebsiteURL,
			Phone:        in.Phone,
			OpeningHours: s.data.ShopOpeningHours,
		})
		if err != nil {
			return nil, fmt.Errorf("shop %s: %w", in.Name, err)
		}
		out.Shops++

		if !withVoucher[in.Category] {
			continue
		}
		value := s.data.Vouchers.Values[s.pick(len(s.data.Vouchers.Values))]
		if _, err := s.vouchers.CreateVoucher(ctx, voucherService.CreateVoucherInput{
			ShopID:      shop.ID,
			Value:       decimal.NewFromInt(int64(value)),
			Description: "Bon d'achat " + in.Name,
			ExpiresAt:   expiresAt,
		}); err != nil {
			return nil, fmt.Errorf("voucher for %s: %w", in.Name, err)
		}
		out.Vouchers++
	}

	for _, p := range s.data.Parkings {
		if err := s.parkings.Create(ctx, &parkingModel.Parking{
			Name:            p.Name,
			TotalSpaces:     p.TotalSpaces,
			AvailableSpaces: p.AvailableSpaces,
			Floor:           p.Floor,
			IsOpen:          true,
		}); err != nil {
			return nil, fmt.Errorf("parking %s: %w", p.Name, err)
		}
		out.Parkings++
	}

	day := gameModel.DayOf(s.now(), s.loc)
	if _, err := s.games.SetPoolTotal(ctx, day, s.data.DailyPrizes); err != nil {
		return nil, fmt.Errorf("prize pool: %w", err)
	}
	out.PoolDay = day.Format(time.DateOnly)
	return out, nil
}
