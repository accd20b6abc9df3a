package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"
	"voucher_wheel/internal/domain/visitor/model"
	"voucher_wheel/internal/domain/visitor/repository"
	"voucher_wheel/pkg/logger"

	"go.uber.org/zap"
)

const (
	maxSessionIDLen = 64
	maxHeaderLen    = 512
)

var (
	// ErrInvalidSession 会话 ID 为空或过长
	ErrInvalidSession = errors.New("invalid session id")
	// ErrInvalidPeriod 统计周期只支持 day/month/year
	ErrInvalidPeriod = errors.New("period must be day, month or year")
)

type VisitorService interface {
	TrackVisit(ctx context.Context, sessionID, userAgent, referrer string) (*model.TrackResult, error)
	Stats(ctx context.Context, period string) (*model.VisitorReport, error)
}

type visitorService struct {
	repo repository.VisitorRepository
	loc  *time.Location
	log  *zap.Logger
	now  func() time.Time
}

// NewVisitorService loc 决定访问归属的日历日，与抽奖日一致
func NewVisitorService(repo repository.VisitorRepository, loc *time.Location, log *zap.Logger) VisitorService {
	if loc == nil {
		loc = time.UTC
	}
	return &visitorService{repo: repo, loc: loc, log: log, now: time.Now}
}

func (s *visitorService) TrackVisit(ctx context.Context, sessionID, userAgent, referrer string) (*model.TrackResult, error) {
	sessionID = strings.TrimSpace(sessionID)
	if sessionID == "" || len(sessionID) > maxSessionIDLen {
		return nil, ErrInvalidSession
	}

	day := model.CalendarDay(s.now(), s.loc)
	first, err := s.repo.Track(ctx, repository.Visit{
		SessionID: sessionID,
		UserAgent: truncate(userAgent, maxHeaderLen),
		Referrer:  truncate(referrer, maxHeaderLen),
		Day:       day,
	})
	if err != nil {
		return nil, fmt.Errorf("track visit: %w", err)
	}
	if first {
		logger.FromContext(ctx, s.log).Debug("new visitor today",
			zap.String("session_id", sessionID), zap.String("day", day.Format(time.DateOnly)))
	}
	return &model.TrackResult{FirstVisitToday: first}, nil
}

// Stats 从周期起点到今天的逐日汇总
func (s *visitorService) Stats(ctx context.Context, period string) (*model.VisitorReport, error) {
	today := model.CalendarDay(s.now(), s.loc)
	var from time.Time
	switch period {
	case model.PeriodDay:
		from = today
	case model.PeriodMonth:
		from = time.Date(today.Year(), today.Month(), 1, 0, 0, 0, 0, time.UTC)
	case model.PeriodYear:
		from = time.Date(today.Year(), time.January, 1, 0, 0, 0, 0, time.UTC)
	default:
		return nil, ErrInvalidPeriod
	}

	rows, err := s.repo.StatsBetween(ctx, from, today)
	if err != nil {
		return nil, fmt.Errorf("visitor stats: %w", err)
	}

	report := &model.VisitorReport{
		Period: period,
		From:   from.Format(time.DateOnly),
		To:     today.Format(time.DateOnly),
		Stats:  make([]model.DailyVisitors, 0, len(rows)),
	}
	for _, row := range rows {
		report.TotalVisitors += row.UniqueVisitors
		report.TotalPageViews += row.TotalPageViews
		report.Stats = append(report.Stats, model.DailyVisitors{
			Date:           row.Date.UTC().Format(time.DateOnly),
			UniqueVisitors: row.UniqueVisitors,
			TotalPageViews: row.TotalPageViews,
		})
	}
	return report, nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	// 不截断多字节字符
	for n > 0 && !utf8.RuneStart(s[n]) {
		n--
	}
	return s[:n]
}
