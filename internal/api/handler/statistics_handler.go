package handler

import (
	"errors"
	"time"

	"github.com/gin-gonic/gin"

	"estron-track/backend/internal/fiscal"
	"estron-track/backend/internal/model"
	"estron-track/backend/internal/service"
	"estron-track/backend/pkg/response"
)

// StatisticsHandler 统计模块 HTTP 处理器
type StatisticsHandler struct {
	statsSvc service.StatisticsService
}

// NewStatisticsHandler 创建 StatisticsHandler
func NewStatisticsHandler(statsSvc service.StatisticsService) *StatisticsHandler {
	return &StatisticsHandler{statsSvc: statsSvc}
}

// queryDate 取 date 查询参数，缺省为今天
func queryDate(c *gin.Context) string {
	if date := c.Query("date"); date != "" {
		return date
	}
	return time.Now().Format(model.DateLayout)
}

// Daily 单日聚合视图
// GET /api/v1/statistics/daily?date=2024-03-21
func (h *StatisticsHandler) Daily(c *gin.Context) {
	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	result, err := h.statsSvc.Daily(c.Request.Context(), userID, queryDate(c))
	if err != nil {
		h.handleStatsError(c, err)
		return
	}
	response.OK(c, result)
}

// Week 指定日期所在 Estron 周的聚合视图
// GET /api/v1/statistics/week?date=2024-03-21
func (h *StatisticsHandler) Week(c *gin.Context) {
	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	result, err := h.statsSvc.Week(c.Request.Context(), userID, queryDate(c))
	if err != nil {
		h.handleStatsError(c, err)
		return
	}
	response.OK(c, result)
}

// Month 指定日期所在 Estron 月的聚合视图
// GET /api/v1/statistics/month?date=2024-03-21
func (h *StatisticsHandler) Month(c *gin.Context) {
	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	result, err := h.statsSvc.Month(c.Request.Context(), userID, queryDate(c))
	if err != nil {
		h.handleStatsError(c, err)
		return
	}
	response.OK(c, result)
}

func (h *StatisticsHandler) handleStatsError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrStatsDateInvalid):
		response.BadRequest(c, 15001, "日期格式无效")
	case errors.Is(err, service.ErrProfileNotFound):
		response.NotFound(c, 11005, "用户档案不存在")
	case errors.Is(err, service.ErrStatsFetchFailed):
		response.InternalError(c)
	default:
		response.InternalError(c)
	}
}

// CalendarHandler 财务日历 HTTP 处理器（纯日期运算，无需用户数据）
type CalendarHandler struct{}

// NewCalendarHandler 创建 CalendarHandler
func NewCalendarHandler() *CalendarHandler {
	return &CalendarHandler{}
}

// MonthPeriod 指定日期所在的 Estron 月
// GET /api/v1/calendar/month?date=2024-03-21
func (h *CalendarHandler) MonthPeriod(c *gin.Context) {
	date, err := time.Parse(model.DateLayout, queryDate(c))
	if err != nil {
		response.BadRequest(c, 15001, "日期格式无效")
		return
	}
	response.OK(c, fiscal.MonthPeriodFor(date))
}

// WeekInfo 指定日期的 Estron 月/周上下文
// GET /api/v1/calendar/weeks?date=2024-03-21
func (h *CalendarHandler) WeekInfo(c *gin.Context) {
	date, err := time.Parse(model.DateLayout, queryDate(c))
	if err != nil {
		response.BadRequest(c, 15001, "日期格式无效")
		return
	}
	response.OK(c, fiscal.WeekInfoFor(date))
}
