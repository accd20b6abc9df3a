package model

import (
	"time"
	baseModel "voucher_wheel/pkg/model"

	"github.com/shopspring/decimal"
)

// GamePlay 一次转盘记录，写入后不再修改
// (user_id, play_date, attempt) 唯一，作为每日两次上限的存储层兜底
type GamePlay struct {
	baseModel.BaseModel
	UserID   string    `gorm:"type:varchar(64);not null;uniqueIndex:idx_game_play_user_day_attempt,priority:1" json:"userId"`
	PlayDate time.Time `gorm:"type:date;not null;uniqueIndex:idx_game_play_user_day_attempt,priority:2;index" json:"playDate"`
	Attempt  int       `gorm:"not null;uniqueIndex:idx_game_play_user_day_attempt,priority:3" json:"attempt"`
	Won      bool      `gorm:"not null;default:false" json:"won"`
	PrizeID  *string   `gorm:"type:uuid" json:"prizeId,omitempty"`
	PlayedAt time.Time `gorm:"not null" json:"playedAt"`
}

// DailyPrizePool 每日奖池，0 <= PrizesWon <= TotalPrizes
type DailyPrizePool struct {
	baseModel.BaseModel
	Date        time.Time `gorm:"type:date;not null;uniqueIndex" json:"date"`
	TotalPrizes int       `gorm:"not null" json:"totalPrizes"`
	PrizesWon   int       `gorm:"not null;default:0" json:"prizesWon"`
}

// Remaining 剩余可发奖数
func (p *DailyPrizePool) Remaining() int {
	return p.TotalPrizes - p.PrizesWon
}

// Reason 资格判定原因
type Reason string

const (
	ReasonFirstAttempt Reason = "first_attempt"
	ReasonSecondChance Reason = "second_chance"
	ReasonAlreadyWon   Reason = "already_won"
	ReasonMaxAttempts  Reason = "max_attempts"
	ReasonNotLoggedIn  Reason = "not_logged_in"
)

// PlayError 抽奖失败原因
type PlayError string

const (
	PlayErrNotLoggedIn PlayError = "not_logged_in"
	PlayErrAlreadyWon  PlayError = "already_won"
	PlayErrMaxAttempts PlayError = "max_attempts"
	PlayErrTransient   PlayError = "transient"
)

// MaxAttemptsPerDay 每人每天最多转两次
const MaxAttemptsPerDay = 2

// Eligibility 是否可以转盘
type Eligibility struct {
	CanPlay       bool   `json:"canPlay"`
	Reason        Reason `json:"reason"`
	AttemptsToday int    `json:"attemptsToday"`
}

// VoucherPrize 中奖券信息
type VoucherPrize struct {
	Code        string          `json:"code"`
	Value       decimal.Decimal `json:"value"`
	ShopName    string          `json:"shopName"`
	Description string          `json:"description"`
}

// PlayResult 转盘结果
type PlayResult struct {
	Success      bool          `json:"success"`
	Won          bool          `json:"won"`
	Voucher      *VoucherPrize `json:"voucher,omitempty"`
	CanPlayAgain bool          `json:"canPlayAgain"`
	Error        PlayError     `json:"error,omitempty"`
}

// Rejected 构造被拒绝的结果
func Rejected(reason PlayError) *PlayResult {
	return &PlayResult{Success: false, Error: reason}
}

// DailyStats 当日抽奖统计
type DailyStats struct {
	Date        string `json:"date"`
	TotalPrizes int    `json:"totalPrizes"`
	PrizesWon   int    `json:"prizesWon"`
	Remaining   int    `json:"remaining"`
	Plays       int64  `json:"plays"`
	Players     int64  `json:"players"`
	Wins        int64  `json:"wins"`
}

// DayOf 取 t 在 loc 时区下的日历日，统一以 UTC 零点存储
func DayOf(t time.Time, loc *time.Location) time.Time {
	if loc == nil {
		loc = time.UTC
	}
	y, m, d := t.In(loc).Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
