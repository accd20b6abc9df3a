package handler

import (
	"errors"
	"net/http"
	"time"
	"voucher_wheel/internal/domain/game/model"
	"voucher_wheel/internal/domain/game/service"
	"voucher_wheel/internal/pkg/middleware"
	"voucher_wheel/pkg/response"

	"github.com/gin-gonic/gin"
)

type GameHandler struct {
	service service.GameService
	loc     *time.Location
	now     func() time.Time
}

func NewGameHandler(service service.GameService, loc *time.Location) *GameHandler {
	return &GameHandler{service: service, loc: loc, now: time.Now}
}

// today 抽奖日按配置时区计算
func (h *GameHandler) today() time.Time {
	return model.DayOf(h.now(), h.loc)
}

// Eligibility 查询今日是否还能转盘
func (h *GameHandler) Eligibility(c *gin.Context) {
	e, err := h.service.CanPlay(c.Request.Context(), middleware.CurrentUserID(c), h.today())
	if err != nil {
		_ = c.Error(err)
		response.Error(c, http.StatusInternalServerError, response.ErrServerInternal, "Failed to check eligibility")
		return
	}
	response.Success(c, e)
}

// Play 转盘抽奖
func (h *GameHandler) Play(c *gin.Context) {
	result, err := h.service.Play(c.Request.Context(), middleware.CurrentUserID(c), h.today())
	if err != nil {
		_ = c.Error(err)
		response.Error(c, http.StatusInternalServerError, response.ErrServerInternal, "Failed to play")
		return
	}

	if !result.Success {
		code, msg := rejectionCode(result.Error)
		response.FailWithData(c, code, msg, result)
		return
	}
	response.Success(c, result)
}

func rejectionCode(reason model.PlayError) (int, string) {
	switch reason {
	case model.PlayErrNotLoggedIn:
		return response.ErrGameNotLoggedIn, "Login required"
	case model.PlayErrTransient:
		return response.ErrGameTransient, "Please try again"
	default:
		return response.ErrGameNotEligible, "No plays left today"
	}
}

// parseDay 解析 YYYY-MM-DD，为空时取今天
func (h *GameHandler) parseDay(value string) (time.Time, error) {
	if value == "" {
		return h.today(), nil
	}
	d, err := time.Parse(time.DateOnly, value)
	if err != nil {
		return time.Time{}, errors.New("date must be formatted as YYYY-MM-DD")
	}
	return d, nil
}

// DailyStats 管理员查看某日统计
func (h *GameHandler) DailyStats(c *gin.Context) {
	day, err := h.parseDay(c.Query("date"))
	if err != nil {
		response.Error(c, http.StatusBadRequest, response.ErrInvalidParam, err.Error())
		return
	}

	stats, err := h.service.DailyStats(c.Request.Context(), day)
	if err != nil {
		_ = c.Error(err)
		response.Error(c, http.StatusInternalServerError, response.ErrServerInternal, "Failed to load stats")
		return
	}
	response.Success(c, stats)
}

type ConfigurePoolInput struct {
	Date        string `json:"date"`
	TotalPrizes *int   `json:"totalPrizes" binding:"required"`
}

// ConfigurePool 管理员设置某日奖池总数
func (h *GameHandler) ConfigurePool(c *gin.Context) {
	var input ConfigurePoolInput
	if err := c.ShouldBindJSON(&input); err != nil {
		response.Error(c, http.StatusBadRequest, response.ErrInvalidParam, err.Error())
		return
	}
	day, err := h.parseDay(input.Date)
	if err != nil {
		response.Error(c, http.StatusBadRequest, response.ErrInvalidParam, err.Error())
		return
	}

	pool, err := h.service.ConfigurePool(c.Request.Context(), day, *input.TotalPrizes)
	if errors.Is(err, service.ErrNegativePoolSize) {
		response.Fail(c, response.ErrGameInvalidPool, "Total prizes must not be negative")
		return
	}
	if errors.Is(err, service.ErrPoolBelowWon) {
		response.Fail(c, response.ErrGameInvalidPool, "Total prizes must not be below prizes already won")
		return
	}
	if err != nil {
		_ = c.Error(err)
		response.Error(c, http.StatusInternalServerError, response.ErrServerInternal, "Failed to configure pool")
		return
	}
	response.Success(c, pool)
}
