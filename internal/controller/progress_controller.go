package controller

import (
	"errors"

	"onboardflow_backend/internal/service"
	"onboardflow_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type ProgressController struct {
	Progress   *service.ProgressService
	Projection *service.ProjectionService
}

func NewProgressController(progress *service.ProgressService, projection *service.ProjectionService) *ProgressController {
	return &ProgressController{Progress: progress, Projection: projection}
}

type startStageRequest struct {
	EnrollmentID uint `json:"enrollmentId" binding:"required"`
}

// @Summary 开始阶段
// @Tags 进度
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param stageId path int true "阶段ID"
// @Param body body startStageRequest true "报名信息"
// @Success 200 {object} util.Response
// @Router /api/stages/{stageId}/start [post]
func (c *ProgressController) StartStage(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}

	stageID, ok := parseID(ctx, "stageId")
	if !ok {
		return
	}

	var req startStageRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	progress, err := c.Progress.StartStage(user.UserID, req.EnrollmentID, stageID)
	if err != nil {
		switch {
		case errors.Is(err, util.ErrStageNotFound), errors.Is(err, util.ErrEnrollmentNotFound):
			util.NotFound(ctx)
		default:
			util.LogInternalError(ctx, err)
		}
		return
	}

	util.Success(ctx, progress)
}

type completeItemRequest struct {
	EnrollmentID uint     `json:"enrollmentId" binding:"required"`
	Score        *float64 `json:"score"`
}

// @Summary 完成条目并触发级联
// @Tags 进度
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param itemId path int true "条目ID"
// @Param body body completeItemRequest true "完成信息"
// @Success 200 {object} util.Response
// @Router /api/items/{itemId}/complete [post]
func (c *ProgressController) CompleteItem(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}

	itemID, ok := parseID(ctx, "itemId")
	if !ok {
		return
	}

	var req completeItemRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	state, err := c.Progress.CompleteItem(user.UserID, req.EnrollmentID, itemID, req.Score)
	if err != nil {
		switch {
		case errors.Is(err, util.ErrItemNotFound), errors.Is(err, util.ErrEnrollmentNotFound):
			util.NotFound(ctx)
		default:
			util.LogInternalError(ctx, err)
		}
		return
	}

	util.Success(ctx, state)
}

// @Summary 获取流程进度树
// @Tags 进度
// @Produce json
// @Security BearerAuth
// @Param enrollmentId path int true "报名ID"
// @Success 200 {object} util.Response
// @Router /api/enrollments/{enrollmentId}/progress [get]
func (c *ProgressController) GetFlowProgress(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}

	enrollmentID, ok := parseID(ctx, "enrollmentId")
	if !ok {
		return
	}

	view, err := c.Projection.FlowProgress(ctx.Request.Context(), user.UserID, enrollmentID)
	if err != nil {
		if errors.Is(err, util.ErrEnrollmentNotFound) {
			util.NotFound(ctx)
			return
		}
		util.LogInternalError(ctx, err)
		return
	}

	util.Success(ctx, view)
}
