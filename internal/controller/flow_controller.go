package controller

import (
	"errors"
	"strconv"

	"onboardflow_backend/internal/service"
	"onboardflow_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type FlowController struct {
	Service *service.FlowService
}

func NewFlowController(svc *service.FlowService) *FlowController {
	return &FlowController{Service: svc}
}

func parseID(ctx *gin.Context, name string) (uint, bool) {
	id, err := strconv.Atoi(ctx.Param(name))
	if err != nil || id <= 0 {
		util.BadRequest(ctx, "invalid "+name)
		return 0, false
	}
	return uint(id), true
}

func parsePagination(ctx *gin.Context) (int, int) {
	page, _ := strconv.Atoi(ctx.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(ctx.DefaultQuery("limit", "20"))
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 20
	}
	return page, limit
}

// @Summary 创建流程
// @Tags 流程管理
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body service.FlowRequest true "流程信息"
// @Success 201 {object} util.Response
// @Router /api/admin/flows [post]
func (c *FlowController) CreateFlow(ctx *gin.Context) {
	var req service.FlowRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	flow, err := c.Service.CreateFlow(req)
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}

	util.Created(ctx, flow)
}

// @Summary 获取流程详情（含阶段与条目）
// @Tags 流程管理
// @Produce json
// @Security BearerAuth
// @Param id path int true "流程ID"
// @Success 200 {object} util.Response
// @Router /api/flows/{id} [get]
func (c *FlowController) GetFlow(ctx *gin.Context) {
	id, ok := parseID(ctx, "id")
	if !ok {
		return
	}

	flow, err := c.Service.GetFlow(id)
	if err != nil {
		if errors.Is(err, util.ErrFlowNotFound) {
			util.NotFound(ctx)
			return
		}
		util.LogInternalError(ctx, err)
		return
	}

	util.Success(ctx, flow)
}

// @Summary 获取流程列表
// @Tags 流程管理
// @Produce json
// @Security BearerAuth
// @Param page query int false "页码"
// @Param limit query int false "每页数量"
// @Success 200 {object} util.Response
// @Router /api/flows [get]
func (c *FlowController) ListFlows(ctx *gin.Context) {
	page, limit := parsePagination(ctx)

	user := util.GetUserFromContext(ctx)
	publishedOnly := user == nil || user.Role != "admin"

	flows, total, err := c.Service.ListFlows(page, limit, publishedOnly)
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}

	util.Success(ctx, util.PageResponse{List: flows, Total: total, Page: page, Limit: limit})
}

// @Summary 更新流程
// @Tags 流程管理
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "流程ID"
// @Param body body service.FlowRequest true "流程信息"
// @Success 200 {object} util.Response
// @Router /api/admin/flows/{id} [put]
func (c *FlowController) UpdateFlow(ctx *gin.Context) {
	id, ok := parseID(ctx, "id")
	if !ok {
		return
	}

	var req service.FlowRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	flow, err := c.Service.UpdateFlow(id, req)
	if err != nil {
		if errors.Is(err, util.ErrFlowNotFound) {
			util.NotFound(ctx)
			return
		}
		util.LogInternalError(ctx, err)
		return
	}

	util.Success(ctx, flow)
}

// @Summary 发布流程
// @Tags 流程管理
// @Produce json
// @Security BearerAuth
// @Param id path int true "流程ID"
// @Success 200 {object} util.Response
// @Router /api/admin/flows/{id}/publish [post]
func (c *FlowController) PublishFlow(ctx *gin.Context) {
	id, ok := parseID(ctx, "id")
	if !ok {
		return
	}

	if err := c.Service.PublishFlow(id); err != nil {
		if errors.Is(err, util.ErrFlowNotFound) {
			util.NotFound(ctx)
			return
		}
		util.LogInternalError(ctx, err)
		return
	}

	util.Success(ctx, "发布成功")
}

// @Summary 删除流程
// @Tags 流程管理
// @Produce json
// @Security BearerAuth
// @Param id path int true "流程ID"
// @Success 200 {object} util.Response
// @Router /api/admin/flows/{id} [delete]
func (c *FlowController) DeleteFlow(ctx *gin.Context) {
	id, ok := parseID(ctx, "id")
	if !ok {
		return
	}

	if err := c.Service.DeleteFlow(id); err != nil {
		util.LogInternalError(ctx, err)
		return
	}

	util.Success(ctx, "删除成功")
}

// @Summary 创建阶段
// @Tags 流程管理
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body service.StageRequest true "阶段信息"
// @Success 201 {object} util.Response
// @Router /api/admin/stages [post]
func (c *FlowController) CreateStage(ctx *gin.Context) {
	var req service.StageRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	stage, err := c.Service.CreateStage(req)
	if err != nil {
		if errors.Is(err, util.ErrFlowNotFound) {
			util.NotFound(ctx)
			return
		}
		util.LogInternalError(ctx, err)
		return
	}

	util.Created(ctx, stage)
}

// @Summary 更新阶段
// @Tags 流程管理
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "阶段ID"
// @Param body body service.StageRequest true "阶段信息"
// @Success 200 {object} util.Response
// @Router /api/admin/stages/{id} [put]
func (c *FlowController) UpdateStage(ctx *gin.Context) {
	id, ok := parseID(ctx, "id")
	if !ok {
		return
	}

	var req service.StageRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	stage, err := c.Service.UpdateStage(id, req)
	if err != nil {
		if errors.Is(err, util.ErrStageNotFound) {
			util.NotFound(ctx)
			return
		}
		util.LogInternalError(ctx, err)
		return
	}

	util.Success(ctx, stage)
}

// @Summary 删除阶段
// @Tags 流程管理
// @Produce json
// @Security BearerAuth
// @Param id path int true "阶段ID"
// @Success 200 {object} util.Response
// @Router /api/admin/stages/{id} [delete]
func (c *FlowController) DeleteStage(ctx *gin.Context) {
	id, ok := parseID(ctx, "id")
	if !ok {
		return
	}

	if err := c.Service.DeleteStage(id); err != nil {
		util.LogInternalError(ctx, err)
		return
	}

	util.Success(ctx, "删除成功")
}

// @Summary 创建阶段条目
// @Tags 流程管理
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body service.StageItemRequest true "条目信息"
// @Success 201 {object} util.Response
// @Router /api/admin/items [post]
func (c *FlowController) CreateItem(ctx *gin.Context) {
	var req service.StageItemRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	item, err := c.Service.CreateItem(req)
	if err != nil {
		switch {
		case errors.Is(err, util.ErrStageNotFound):
			util.NotFound(ctx)
		case errors.Is(err, util.ErrInvalidItemPayload):
			util.BadRequest(ctx, err.Error())
		default:
			util.LogInternalError(ctx, err)
		}
		return
	}

	util.Created(ctx, item)
}

// @Summary 更新阶段条目
// @Tags 流程管理
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "条目ID"
// @Param body body service.StageItemRequest true "条目信息"
// @Success 200 {object} util.Response
// @Router /api/admin/items/{id} [put]
func (c *FlowController) UpdateItem(ctx *gin.Context) {
	id, ok := parseID(ctx, "id")
	if !ok {
		return
	}

	var req service.StageItemRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	item, err := c.Service.UpdateItem(id, req)
	if err != nil {
		switch {
		case errors.Is(err, util.ErrItemNotFound):
			util.NotFound(ctx)
		case errors.Is(err, util.ErrInvalidItemPayload):
			util.BadRequest(ctx, err.Error())
		default:
			util.LogInternalError(ctx, err)
		}
		return
	}

	util.Success(ctx, item)
}

// @Summary 删除阶段条目
// @Tags 流程管理
// @Produce json
// @Security BearerAuth
// @Param id path int true "条目ID"
// @Success 200 {object} util.Response
// @Router /api/admin/items/{id} [delete]
func (c *FlowController) DeleteItem(ctx *gin.Context) {
	id, ok := parseID(ctx, "id")
	if !ok {
		return
	}

	if err := c.Service.DeleteItem(id); err != nil {
		util.LogInternalError(ctx, err)
		return
	}

	util.Success(ctx, "删除成功")
}
