package repository

import (
	"context"
	"time"
	"voucher_wheel/internal/domain/visitor/model"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Visit 一次页面访问
type Visit struct {
	SessionID string
	UserAgent string
	Referrer  string
	Day       time.Time
}

type VisitorRepository interface {
	// Track 记录访问并累加当日汇总，返回是否为该会话当天首次访问
	Track(ctx context.Context, visit Visit) (bool, error)
	StatsBetween(ctx context.Context, from, to time.Time) ([]model.VisitorStats, error)
}

type visitorRepository struct {
	db *gorm.DB
}

func NewVisitorRepository(db *gorm.DB) VisitorRepository {
	return &visitorRepository{db: db}
}

func (r *visitorRepository) Track(ctx context.Context, visit Visit) (bool, error) {
	var firstToday bool
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		unique, err := touchVisitor(tx, visit)
		if err != nil {
			return err
		}
		firstToday = unique

		uniqueInc := 0
		if unique {
			uniqueInc = 1
		}
		stats := &model.VisitorStats{Date: visit.Day, UniqueVisitors: uniqueInc, TotalPageViews: 1}
		return tx.Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "date"}},
			DoUpdates: clause.Set{
				{Column: clause.Column{Name: "total_page_views"}, Value: gorm.Expr("visitor_stats.total_page_views + 1")},
				{Column: clause.Column{Name: "unique_visitors"}, Value: gorm.Expr("visitor_stats.unique_visitors + ?", uniqueInc)},
				{Column: clause.Column{Name: "updated_at"}, Value: time.Now().UTC()},
			},
		}).Create(stats).Error
	})
	return firstToday, err
}

// touchVisitor 新会话插入；老会话跨天时推进 last_visit_date，二者都算当天独立访客
func touchVisitor(tx *gorm.DB, visit Visit) (bool, error) {
	created := tx.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "session_id"}},
		DoNothing: true,
	}).Create(&model.Visitor{
		SessionID:     visit.SessionID,
		UserAgent:     visit.UserAgent,
		Referrer:      visit.Referrer,
		PageViews:     1,
		LastVisitDate: visit.Day,
	})
	if created.Error != nil {
		return false, created.Error
	}
	if created.RowsAffected == 1 {
		return true, nil
	}

	returning := tx.Model(&model.Visitor{}).
		Where("session_id = ? AND last_visit_date < ?", visit.SessionID, visit.Day).
		Updates(map[string]interface{}{
			"page_views":      gorm.Expr("page_views + 1"),
			"last_visit_date": visit.Day,
			"user_agent":      visit.UserAgent,
		})
	if returning.Error != nil {
		return false, returning.Error
	}
	if returning.RowsAffected == 1 {
		return true, nil
	}

	return false, tx.Model(&model.Visitor{}).
		Where("session_id = ?", visit.SessionID).
		UpdateColumn("page_views", gorm.Expr("page_views + 1")).Error
}

// StatsBetween [from, to] 闭区间，按日期升序
func (r *visitorRepository) StatsBetween(ctx context.Context, from, to time.Time) ([]model.VisitorStats, error) {
	var stats []model.VisitorStats
	err := r.db.WithContext(ctx).
		Where("date >= ? AND date <= ?", from, to).
		Order("date ASC").
		Find(&stats).Error
	if err != nil {
		return nil, err
	}
	return stats, nil
}
