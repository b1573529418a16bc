package handler

import (
	"errors"
	"net/http"
	"net/url"

	"github.com/gin-gonic/gin"

	"estron-track/backend/internal/service"
	"estron-track/backend/pkg/response"
)

const (
	xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	icsContentType  = "text/calendar; charset=utf-8"
)

// ExportHandler 导出模块 HTTP 处理器
type ExportHandler struct {
	exportSvc service.ExportService
}

// NewExportHandler 创建 ExportHandler
func NewExportHandler(exportSvc service.ExportService) *ExportHandler {
	return &ExportHandler{exportSvc: exportSvc}
}

// ExportExcel 导出月度产量明细为 Excel
// GET /api/v1/export/excel?date=2024-03-21
func (h *ExportHandler) ExportExcel(c *gin.Context) {
	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	buf, filename, err := h.exportSvc.ExportMonthExcel(c.Request.Context(), userID, queryDate(c))
	if err != nil {
		h.handleExportError(c, err)
		return
	}

	sendAttachment(c, filename, xlsxContentType, buf.Bytes())
}

// ExportCalendar 导出 Estron 月日历为 ICS
// GET /api/v1/export/calendar?date=2024-03-21
func (h *ExportHandler) ExportCalendar(c *gin.Context) {
	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	buf, filename, err := h.exportSvc.ExportMonthCalendar(c.Request.Context(), userID, queryDate(c))
	if err != nil {
		h.handleExportError(c, err)
		return
	}

	sendAttachment(c, filename, icsContentType, buf.Bytes())
}

// sendAttachment 设置下载响应头并写出内容
func sendAttachment(c *gin.Context, filename, contentType string, data []byte) {
	encodedFilename := url.QueryEscape(filename)
	c.Header("Content-Description", "File Transfer")
	c.Header("Content-Disposition", "attachment; filename*=UTF-8''"+encodedFilename)
	c.Data(http.StatusOK, contentType, data)
}

func (h *ExportHandler) handleExportError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrStatsDateInvalid):
		response.BadRequest(c, 15001, "日期格式无效")
	case errors.Is(err, service.ErrProfileNotFound):
		response.NotFound(c, 11005, "用户档案不存在")
	case errors.Is(err, service.ErrExportNoData):
		response.NotFound(c, 16001, "该月份暂无数据可导出")
	case errors.Is(err, service.ErrExportGenerateFail):
		response.InternalError(c)
	default:
		response.InternalError(c)
	}
}
