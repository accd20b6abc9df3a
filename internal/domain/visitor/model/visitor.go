package model

import (
	"time"
	baseModel "voucher_wheel/pkg/model"
)

// Visitor 一个浏览器会话，跨天复用同一行
type Visitor struct {
	baseModel.BaseModel
	SessionID     string    `gorm:"type:varchar(64);not null;uniqueIndex" json:"sessionId"`
	UserAgent     string    `gorm:"type:varchar(512)" json:"userAgent"`
	Referrer      string    `gorm:"type:varchar(512)" json:"referrer"`
	PageViews     int       `gorm:"not null;default:1" json:"pageViews"`
	LastVisitDate time.Time `gorm:"type:date;not null" json:"lastVisitDate"`
}

// VisitorStats 按商场时区日历日汇总
type VisitorStats struct {
	baseModel.BaseModel
	Date           time.Time `gorm:"type:date;not null;uniqueIndex" json:"date"`
	UniqueVisitors int       `gorm:"not null;default:0" json:"uniqueVisitors"`
	TotalPageViews int       `gorm:"not null;default:0" json:"totalPageViews"`
}

const (
	PeriodDay   = "day"
	PeriodMonth = "month"
	PeriodYear  = "year"
)

// DailyVisitors 报表中的一天
type DailyVisitors struct {
	Date           string `json:"date"`
	UniqueVisitors int    `json:"uniqueVisitors"`
	TotalPageViews int    `json:"totalPageViews"`
}

// VisitorReport 某个统计周期的访客报表
type VisitorReport struct {
	Period         string          `json:"period"`
	From           string          `json:"from"`
	To             string          `json:"to"`
	TotalVisitors  int             `json:"totalVisitors"`
	TotalPageViews int             `json:"totalPageViews"`
	Stats          []DailyVisitors `json:"stats"`
}

// TrackResult 本次访问是否为该会话当天首次
type TrackResult struct {
	FirstVisitToday bool `json:"firstVisitToday"`
}

// CalendarDay 取 t 在 loc 中的日期，存为 UTC 零点
func CalendarDay(t time.Time, loc *time.Location) time.Time {
	if loc == nil {
		loc = time.UTC
	}
	y, m, d := t.In(loc).Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
