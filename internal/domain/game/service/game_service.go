package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
	"voucher_wheel/internal/domain/game/model"
	"voucher_wheel/internal/domain/game/repository"
	voucherModel "voucher_wheel/internal/domain/voucher/model"
	"voucher_wheel/internal/pkg/config"
	"voucher_wheel/internal/pkg/worker"
	"voucher_wheel/pkg/database"
	"voucher_wheel/pkg/logger"
	"voucher_wheel/pkg/metrics"

	"go.uber.org/zap"
)

var (
	// ErrNegativePoolSize 奖池总数为负
	ErrNegativePoolSize = errors.New("total prizes must not be negative")
	// ErrPoolBelowWon 奖池总数小于当日已发出数量
	ErrPoolBelowWon = errors.New("total prizes below prizes already won")
)

var (
	errPoolExhausted = errors.New("prize pool exhausted")
	errNoVoucher     = errors.New("no voucher available")
)

// Notifier 中奖通知投递，不得阻塞
type Notifier interface {
	AddTask(task worker.NotificationTask) bool
}

type GameService interface {
	CanPlay(ctx context.Context, userID string, today time.Time) (*model.Eligibility, error)
	Play(ctx context.Context, userID string, today time.Time) (*model.PlayResult, error)
	DailyStats(ctx context.Context, day time.Time) (*model.DailyStats, error)
	ConfigurePool(ctx context.Context, day time.Time, totalPrizes int) (*model.DailyPrizePool, error)
}

// Deps 抽奖服务依赖
type Deps struct {
	Repo      repository.GameRepository
	Drawer    Drawer
	Notifier  Notifier // 可为空
	Metrics   *metrics.MetricsCollector
	Logger    *zap.Logger
	TxOptions *sql.TxOptions
	Now       func() time.Time
}

type gameService struct {
	repo      repository.GameRepository
	drawer    Drawer
	notifier  Notifier
	metrics   *metrics.MetricsCollector
	log       *zap.Logger
	txOptions *sql.TxOptions
	now       func() time.Time
	cfg       config.GameConfig
}

func NewGameService(cfg config.GameConfig, deps Deps) GameService {
	s := &gameService{
		repo:      deps.Repo,
		drawer:    deps.Drawer,
		notifier:  deps.Notifier,
		metrics:   deps.Metrics,
		log:       deps.Logger,
		txOptions: deps.TxOptions,
		now:       deps.Now,
		cfg:       cfg,
	}
	if s.metrics == nil {
		s.metrics = metrics.GetGlobalCollector()
	}
	if s.log == nil {
		s.log = zap.NewNop()
	}
	if s.now == nil {
		s.now = time.Now
	}
	return s
}

// CanPlay 查询今日资格
func (s *gameService) CanPlay(ctx context.Context, userID string, today time.Time) (*model.Eligibility, error) {
	if userID == "" {
		return &model.Eligibility{CanPlay: false, Reason: model.ReasonNotLoggedIn}, nil
	}

	plays, err := s.repo.ListPlays(ctx, userID, calendarDay(today))
	if err != nil {
		return nil, fmt.Errorf("list plays: %w", err)
	}
	e := evaluate(plays)
	return &e, nil
}

// Play 抽奖。资格复核、奖池、抽签、领券、计数和记录在同一事务内完成，冲突时整体重试
func (s *gameService) Play(ctx context.Context, userID string, today time.Time) (*model.PlayResult, error) {
	start := time.Now()
	if userID == "" {
		s.metrics.RecordPlay(metrics.OutcomeRejected, time.Since(start))
		return model.Rejected(model.PlayErrNotLoggedIn), nil
	}

	day := calendarDay(today)
	log := logger.FromContext(ctx, s.log).With(zap.String("user_id", userID), zap.String("day", day.Format(time.DateOnly)))

	var (
		result  *model.PlayResult
		voucher *voucherModel.Voucher
	)
	err := database.WithRetry(ctx, s.retryPolicy(log), func(ctx context.Context) error {
		r, v, err := s.playOnce(ctx, userID, day)
		if err != nil {
			return err
		}
		result, voucher = r, v
		return nil
	})
	if err != nil {
		if errors.Is(err, database.ErrRetriesExhausted) {
			log.Error("play retries exhausted", zap.Error(err))
			s.metrics.RecordDBError("play", "conflict")
			s.metrics.RecordPlay(metrics.OutcomeTransient, time.Since(start))
			return model.Rejected(model.PlayErrTransient), nil
		}
		s.metrics.RecordDBError("play", "permanent")
		s.metrics.RecordPlay(metrics.OutcomeError, time.Since(start))
		return nil, fmt.Errorf("play: %w", err)
	}

	switch {
	case !result.Success:
		s.metrics.RecordPlay(metrics.OutcomeRejected, time.Since(start))
	case result.Won:
		s.metrics.RecordPlay(metrics.OutcomeWin, time.Since(start))
		s.notifyWin(userID, voucher)
	default:
		s.metrics.RecordPlay(metrics.OutcomeLoss, time.Since(start))
	}
	return result, nil
}

func (s *gameService) retryPolicy(log *zap.Logger) database.RetryPolicy {
	return database.RetryPolicy{
		MaxAttempts: s.cfg.MaxAttempts,
		Backoff:     s.cfg.RetryBackoff,
		Timeout:     s.cfg.TxTimeout,
		OnRetry: func(attempt int, err error) {
			s.metrics.RecordPlayRetry()
			log.Info("retrying play transaction", zap.Int("attempt", attempt), zap.Error(err))
		},
	}
}

// playOnce 单次事务尝试
func (s *gameService) playOnce(ctx context.Context, userID string, day time.Time) (*model.PlayResult, *voucherModel.Voucher, error) {
	var (
		result *model.PlayResult
		won    *voucherModel.Voucher
	)
	now := s.now()

	err := s.repo.Transaction(ctx, func(tx repository.GameRepository) error {
		plays, err := tx.ListPlays(ctx, userID, day)
		if err != nil {
			return err
		}
		eligibility := evaluate(plays)
		if !eligibility.CanPlay {
			result = model.Rejected(playError(eligibility.Reason))
			return nil
		}

		pool, err := tx.GetOrCreatePool(ctx, day, s.cfg.DailyPrizes)
		if err != nil {
			return err
		}

		var voucher *voucherModel.Voucher
		if pool.Remaining() > 0 && s.drawer.Draw() {
			voucher, err = s.award(ctx, tx, pool, userID, now)
			if err != nil {
				return err
			}
		}

		play := &model.GamePlay{
			UserID:   userID,
			PlayDate: day,
			Attempt:  eligibility.AttemptsToday + 1,
			Won:      voucher != nil,
			PlayedAt: now,
		}
		if voucher != nil {
			play.PrizeID = &voucher.ID
		}
		if err := tx.CreatePlay(ctx, play); err != nil {
			return err
		}

		result = &model.PlayResult{
			Success:      true,
			Won:          voucher != nil,
			CanPlayAgain: voucher == nil && play.Attempt < model.MaxAttemptsPerDay,
		}
		if voucher != nil {
			result.Voucher = prizeOf(voucher)
		}
		won = voucher
		return nil
	}, s.txOptions)
	if err != nil {
		return nil, nil, err
	}
	return result, won, nil
}

// award 保存点内预占奖池名额并领券；没有可用券时回滚预占，本次按未中奖处理
func (s *gameService) award(ctx context.Context, tx repository.GameRepository, pool *model.DailyPrizePool, userID string, now time.Time) (*voucherModel.Voucher, error) {
	var voucher *voucherModel.Voucher
	err := tx.Transaction(ctx, func(sp repository.GameRepository) error {
		reserved, err := sp.ReserveSlot(ctx, pool.ID)
		if err != nil {
			return err
		}
		if !reserved {
			return errPoolExhausted
		}

		v, err := sp.ClaimVoucher(ctx, userID, now, s.cfg.ClaimCandidates)
		if err != nil {
			return err
		}
		if v == nil {
			return errNoVoucher
		}
		voucher = v
		return nil
	})

	switch {
	case errors.Is(err, errPoolExhausted):
		return nil, nil
	case errors.Is(err, errNoVoucher):
		s.metrics.RecordPoolAnomaly()
		s.log.Warn("prize pool has remaining slots but no voucher is available",
			zap.String("user_id", userID),
			zap.String("day", pool.Date.Format(time.DateOnly)),
			zap.Int("total_prizes", pool.TotalPrizes),
			zap.Int("prizes_won", pool.PrizesWon),
		)
		return nil, nil
	case err != nil:
		return nil, err
	}
	return voucher, nil
}

func (s *gameService) notifyWin(userID string, voucher *voucherModel.Voucher) {
	if s.notifier == nil || voucher == nil {
		return
	}
	s.notifier.AddTask(worker.NotificationTask{
		UserID:      userID,
		Code:        voucher.Code,
		ShopName:    voucher.ShopName(),
		Value:       voucher.Value.StringFixed(2),
		Description: voucher.Description,
	})
}

// DailyStats 当日统计，奖池未创建时按默认总数返回
func (s *gameService) DailyStats(ctx context.Context, day time.Time) (*model.DailyStats, error) {
	day = calendarDay(day)
	pool, err := s.repo.GetPool(ctx, day)
	if err != nil {
		return nil, fmt.Errorf("get pool: %w", err)
	}
	counts, err := s.repo.CountPlays(ctx, day)
	if err != nil {
		return nil, fmt.Errorf("count plays: %w", err)
	}

	stats := &model.DailyStats{
		Date:        day.Format(time.DateOnly),
		TotalPrizes: s.cfg.DailyPrizes,
		Plays:       counts.Plays,
		Players:     counts.Players,
		Wins:        counts.Wins,
	}
	if pool != nil {
		stats.TotalPrizes = pool.TotalPrizes
		stats.PrizesWon = pool.PrizesWon
	}
	stats.Remaining = stats.TotalPrizes - stats.PrizesWon
	return stats, nil
}

// ConfigurePool 创建或调整某日奖池总数
func (s *gameService) ConfigurePool(ctx context.Context, day time.Time, totalPrizes int) (*model.DailyPrizePool, error) {
	if totalPrizes < 0 {
		return nil, ErrNegativePoolSize
	}
	day = calendarDay(day)
	log := logger.FromContext(ctx, s.log).With(zap.String("day", day.Format(time.DateOnly)))

	var pool *model.DailyPrizePool
	err := database.WithRetry(ctx, s.retryPolicy(log), func(ctx context.Context) error {
		return s.repo.Transaction(ctx, func(tx repository.GameRepository) error {
			p, err := tx.SetPoolTotal(ctx, day, totalPrizes)
			if err != nil {
				return err
			}
			pool = p
			return nil
		}, s.txOptions)
	})
	if errors.Is(err, repository.ErrPoolTooSmall) {
		return nil, ErrPoolBelowWon
	}
	if err != nil {
		return nil, fmt.Errorf("configure pool: %w", err)
	}
	log.Info("prize pool configured", zap.Int("total_prizes", pool.TotalPrizes), zap.Int("prizes_won", pool.PrizesWon))
	return pool, nil
}

// evaluate 根据当天记录判定资格
func evaluate(plays []model.GamePlay) model.Eligibility {
	e := model.Eligibility{AttemptsToday: len(plays)}
	for _, p := range plays {
		if p.Won {
			e.Reason = model.ReasonAlreadyWon
			return e
		}
	}

	switch {
	case len(plays) == 0:
		e.CanPlay, e.Reason = true, model.ReasonFirstAttempt
	case len(plays) < model.MaxAttemptsPerDay:
		e.CanPlay, e.Reason = true, model.ReasonSecondChance
	default:
		e.Reason = model.ReasonMaxAttempts
	}
	return e
}

func playError(reason model.Reason) model.PlayError {
	switch reason {
	case model.ReasonAlreadyWon:
		return model.PlayErrAlreadyWon
	case model.ReasonNotLoggedIn:
		return model.PlayErrNotLoggedIn
	default:
		return model.PlayErrMaxAttempts
	}
}

func prizeOf(v *voucherModel.Voucher) *model.VoucherPrize {
	return &model.VoucherPrize{
		Code:        v.Code,
		Value:       v.Value,
		ShopName:    v.ShopName(),
		Description: v.Description,
	}
}

// calendarDay 取 today 自身时区下的日期
func calendarDay(today time.Time) time.Time {
	return model.DayOf(today, today.Location())
}
