package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"
	"voucher_wheel/internal/domain/game/model"
	voucherModel "voucher_wheel/internal/domain/voucher/model"
	"voucher_wheel/pkg/database"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ErrPoolTooSmall 奖池总数不能小于已发出的数量
var ErrPoolTooSmall = errors.New("total prizes below prizes already won")

// PlayCounts 当日抽奖计数
type PlayCounts struct {
	Plays   int64
	Players int64
	Wins    int64
}

type GameRepository interface {
	// Transaction 在事务内执行 fn，嵌套调用时使用保存点
	Transaction(ctx context.Context, fn func(repo GameRepository) error, opts ...*sql.TxOptions) error
	ListPlays(ctx context.Context, userID string, day time.Time) ([]model.GamePlay, error)
	CreatePlay(ctx context.Context, play *model.GamePlay) error
	GetPool(ctx context.Context, day time.Time) (*model.DailyPrizePool, error)
	GetOrCreatePool(ctx context.Context, day time.Time, defaultTotal int) (*model.DailyPrizePool, error)
	ReserveSlot(ctx context.Context, poolID string) (bool, error)
	SetPoolTotal(ctx context.Context, day time.Time, total int) (*model.DailyPrizePool, error)
	ClaimVoucher(ctx context.Context, userID string, now time.Time, candidates int) (*voucherModel.Voucher, error)
	CountPlays(ctx context.Context, day time.Time) (*PlayCounts, error)
}

type gameRepository struct {
	db *gorm.DB
}

func NewGameRepository(db *gorm.DB) GameRepository {
	return &gameRepository{db: db}
}

func (r *gameRepository) Transaction(ctx context.Context, fn func(repo GameRepository) error, opts ...*sql.TxOptions) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&gameRepository{db: tx})
	}, opts...)
}

// ListPlays 用户当天的记录，最近一次在前
func (r *gameRepository) ListPlays(ctx context.Context, userID string, day time.Time) ([]model.GamePlay, error) {
	var plays []model.GamePlay
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND play_date = ?", userID, day).
		Order("played_at DESC").
		Order("attempt DESC").
		Find(&plays).Error
	return plays, err
}

func (r *gameRepository) CreatePlay(ctx context.Context, play *model.GamePlay) error {
	return r.db.WithContext(ctx).Create(play).Error
}

// GetPool 不存在时返回 nil
func (r *gameRepository) GetPool(ctx context.Context, day time.Time) (*model.DailyPrizePool, error) {
	var pool model.DailyPrizePool
	err := r.db.WithContext(ctx).Where("date = ?", day).First(&pool).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &pool, nil
}

// GetOrCreatePool 并发创建由唯一索引兜底，冲突时读取已有奖池
func (r *gameRepository) GetOrCreatePool(ctx context.Context, day time.Time, defaultTotal int) (*model.DailyPrizePool, error) {
	db := r.db.WithContext(ctx)
	pool := &model.DailyPrizePool{Date: day, TotalPrizes: defaultTotal}
	err := db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "date"}},
		DoNothing: true,
	}).Create(pool).Error
	if err != nil {
		return nil, err
	}

	var existing model.DailyPrizePool
	if err := db.Where("date = ?", day).First(&existing).Error; err != nil {
		return nil, err
	}
	return &existing, nil
}

// ReserveSlot 条件自增 prizes_won，奖池已满时返回 false
func (r *gameRepository) ReserveSlot(ctx context.Context, poolID string) (bool, error) {
	result := r.db.WithContext(ctx).Model(&model.DailyPrizePool{}).
		Where("id = ? AND prizes_won < total_prizes", poolID).
		UpdateColumn("prizes_won", gorm.Expr("prizes_won + 1"))
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected == 1, nil
}

// SetPoolTotal 调整奖池总数，需满足 prizes_won <= total
func (r *gameRepository) SetPoolTotal(ctx context.Context, day time.Time, total int) (*model.DailyPrizePool, error) {
	pool, err := r.GetOrCreatePool(ctx, day, total)
	if err != nil {
		return nil, err
	}

	result := r.db.WithContext(ctx).Model(&model.DailyPrizePool{}).
		Where("id = ? AND prizes_won <= ?", pool.ID, total).
		Update("total_prizes", total)
	if result.Error != nil {
		return nil, result.Error
	}
	if result.RowsAffected == 0 {
		return nil, ErrPoolTooSmall
	}
	return r.GetPool(ctx, day)
}

// ClaimVoucher 按 expires_at、id 顺序领取一张未被抽中的有效券。
// 领取为条件更新，候选被并发抢走时尝试下一张；没有可领的券时返回 nil。
func (r *gameRepository) ClaimVoucher(ctx context.Context, userID string, now time.Time, candidates int) (*voucherModel.Voucher, error) {
	db := r.db.WithContext(ctx)
	if candidates < 1 {
		candidates = 1
	}

	var ids []string
	err := database.ForUpdateSkipLocked(db.Model(&voucherModel.Voucher{})).
		Where("won_by_user_id IS NULL AND expires_at > ?", now).
		Order("expires_at ASC").
		Order("id ASC").
		Limit(candidates).
		Pluck("id", &ids).Error
	if err != nil {
		return nil, err
	}

	for _, id := range ids {
		result := db.Model(&voucherModel.Voucher{}).
			Where("id = ? AND won_by_user_id IS NULL", id).
			Updates(map[string]interface{}{
				"won_by_user_id": userID,
				"won_at":         now,
			})
		if result.Error != nil {
			return nil, result.Error
		}
		if result.RowsAffected == 0 {
			continue
		}

		var voucher voucherModel.Voucher
		if err := db.Preload("Shop").Where("id = ?", id).First(&voucher).Error; err != nil {
			return nil, err
		}
		return &voucher, nil
	}
	return nil, nil
}

func (r *gameRepository) CountPlays(ctx context.Context, day time.Time) (*PlayCounts, error) {
	var counts PlayCounts
	db := r.db.WithContext(ctx).Model(&model.GamePlay{}).Where("play_date = ?", day)

	if err := db.Session(&gorm.Session{}).Count(&counts.Plays).Error; err != nil {
		return nil, err
	}
	if err := db.Session(&gorm.Session{}).Distinct("user_id").Count(&counts.Players).Error; err != nil {
		return nil, err
	}
	if err := db.Session(&gorm.Session{}).Where("won = ?", true).Count(&counts.Wins).Error; err != nil {
		return nil, err
	}
	return &counts, nil
}
