package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"estron-track/backend/internal/dto"
	"estron-track/backend/internal/service"
	"estron-track/backend/pkg/response"
)

// EntryHandler 产量记录模块 HTTP 处理器
type EntryHandler struct {
	entrySvc service.EntryService
}

// NewEntryHandler 创建 EntryHandler
func NewEntryHandler(entrySvc service.EntryService) *EntryHandler {
	return &EntryHandler{entrySvc: entrySvc}
}

// Create 新增产量记录
// POST /api/v1/entries
func (h *EntryHandler) Create(c *gin.Context) {
	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	var req dto.CreateEntryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	result, err := h.entrySvc.Create(c.Request.Context(), userID, &req)
	if err != nil {
		h.handleEntryError(c, err)
		return
	}
	response.Created(c, result)
}

// List 按日期区间查询产量记录
// GET /api/v1/entries?date_start=2024-03-21&date_end=2024-04-20
func (h *EntryHandler) List(c *gin.Context) {
	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	var req dto.EntryListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	result, err := h.entrySvc.List(c.Request.Context(), userID, &req)
	if err != nil {
		h.handleEntryError(c, err)
		return
	}
	response.OK(c, result)
}

// Update 更新产量记录
// PUT /api/v1/entries/:id
func (h *EntryHandler) Update(c *gin.Context) {
	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	var req dto.UpdateEntryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	result, err := h.entrySvc.Update(c.Request.Context(), userID, c.Param("id"), &req)
	if err != nil {
		h.handleEntryError(c, err)
		return
	}
	response.OK(c, result)
}

// Delete 删除产量记录
// DELETE /api/v1/entries/:id
func (h *EntryHandler) Delete(c *gin.Context) {
	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	if err := h.entrySvc.Delete(c.Request.Context(), userID, c.Param("id")); err != nil {
		h.handleEntryError(c, err)
		return
	}
	response.OK(c, nil)
}

func (h *EntryHandler) handleEntryError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrEntryDateInvalid):
		response.BadRequest(c, 12001, "日期格式无效")
	case errors.Is(err, service.ErrEntryQuotaNotFound):
		response.BadRequest(c, 12002, "产品编码无对应定额设置")
	case errors.Is(err, service.ErrEntryNotFound):
		response.NotFound(c, 12003, "产量记录不存在")
	case errors.Is(err, service.ErrEntryNotOwner):
		response.Forbidden(c, 12004, "无权操作他人的产量记录")
	case errors.Is(err, service.ErrEntryVerified):
		response.Forbidden(c, 12005, "已审核的产量记录不可修改或删除")
	default:
		response.InternalError(c)
	}
}
