package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"estron-track/backend/internal/dto"
	"estron-track/backend/internal/service"
	"estron-track/backend/pkg/response"
)

// QuotaHandler 定额模块 HTTP 处理器
type QuotaHandler struct {
	quotaSvc service.QuotaService
}

// NewQuotaHandler 创建 QuotaHandler
func NewQuotaHandler(quotaSvc service.QuotaService) *QuotaHandler {
	return &QuotaHandler{quotaSvc: quotaSvc}
}

// ListSettings 全部产品定额
// GET /api/v1/quotas
func (h *QuotaHandler) ListSettings(c *gin.Context) {
	result, err := h.quotaSvc.ListSettings(c.Request.Context())
	if err != nil {
		response.InternalError(c)
		return
	}
	response.OK(c, result)
}

// GetSetting 单个产品定额
// GET /api/v1/quotas/:code
func (h *QuotaHandler) GetSetting(c *gin.Context) {
	result, err := h.quotaSvc.GetSetting(c.Request.Context(), c.Param("code"))
	if err != nil {
		if errors.Is(err, service.ErrQuotaSettingNotFound) {
			response.NotFound(c, 14001, "定额设置不存在")
			return
		}
		response.InternalError(c)
		return
	}
	response.OK(c, result)
}

// ListSelected 当前用户快捷定额
// GET /api/v1/quotas/selected
func (h *QuotaHandler) ListSelected(c *gin.Context) {
	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	result, err := h.quotaSvc.ListSelected(c.Request.Context(), userID)
	if err != nil {
		if errors.Is(err, service.ErrProfileNotFound) {
			response.NotFound(c, 11005, "用户档案不存在")
			return
		}
		response.InternalError(c)
		return
	}
	response.OK(c, result)
}

// Select 添加快捷定额
// POST /api/v1/quotas/selected
func (h *QuotaHandler) Select(c *gin.Context) {
	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	var req dto.SelectQuotaRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	result, err := h.quotaSvc.Select(c.Request.Context(), userID, &req)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrQuotaSettingNotFound):
			response.NotFound(c, 14001, "定额设置不存在")
		case errors.Is(err, service.ErrQuotaAlreadySelected):
			response.BadRequest(c, 14002, "该产品已在快捷定额中")
		default:
			response.InternalError(c)
		}
		return
	}
	response.Created(c, result)
}

// Unselect 移除快捷定额
// DELETE /api/v1/quotas/selected/:code
func (h *QuotaHandler) Unselect(c *gin.Context) {
	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	if err := h.quotaSvc.Unselect(c.Request.Context(), userID, c.Param("code")); err != nil {
		response.InternalError(c)
		return
	}
	response.OK(c, nil)
}

// Reorder 快捷定额重排序
// PUT /api/v1/quotas/selected/order
func (h *QuotaHandler) Reorder(c *gin.Context) {
	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	var req dto.ReorderQuotasRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	if err := h.quotaSvc.Reorder(c.Request.Context(), userID, &req); err != nil {
		if errors.Is(err, service.ErrQuotaReorderMismatch) {
			response.BadRequest(c, 14003, "重排序编码与现有快捷定额不一致")
			return
		}
		response.InternalError(c)
		return
	}
	response.OK(c, nil)
}
