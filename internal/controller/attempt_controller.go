package controller

import (
	"encoding/json"
	"errors"

	"onboardflow_backend/internal/service"
	"onboardflow_backend/internal/util"
	"onboardflow_backend/pkg/logger"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type AttemptController struct {
	Attempts *service.AttemptService
	Progress *service.ProgressService
}

func NewAttemptController(attempts *service.AttemptService, progress *service.ProgressService) *AttemptController {
	return &AttemptController{Attempts: attempts, Progress: progress}
}

type startAttemptRequest struct {
	EnrollmentID *uint `json:"enrollmentId"`
}

// @Summary 开始作答
// @Tags 测验
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param assessmentId path int true "测验ID"
// @Param body body startAttemptRequest false "关联报名"
// @Success 201 {object} util.Response
// @Router /api/assessments/{assessmentId}/attempts [post]
func (c *AttemptController) StartAttempt(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}

	assessmentID, ok := parseID(ctx, "assessmentId")
	if !ok {
		return
	}

	var req startAttemptRequest
	if ctx.Request.ContentLength > 0 {
		if err := ctx.ShouldBindJSON(&req); err != nil {
			util.BadRequest(ctx, err.Error())
			return
		}
	}

	attempt, err := c.Attempts.StartAttempt(user.UserID, assessmentID, req.EnrollmentID)
	if err != nil {
		if errors.Is(err, util.ErrAssessmentNotFound) {
			util.NotFound(ctx)
			return
		}
		util.LogInternalError(ctx, err)
		return
	}

	util.Created(ctx, attempt)
}

type submitAttemptRequest struct {
	Answers          map[uint]json.RawMessage `json:"answers" binding:"required"`
	TimeSpentSeconds int                      `json:"timeSpentSeconds"`
	ItemID           *uint                    `json:"itemId"`
}

// @Summary 提交作答并判分
// @Tags 测验
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param attemptId path int true "作答ID"
// @Param body body submitAttemptRequest true "答案"
// @Success 200 {object} util.Response
// @Router /api/attempts/{attemptId}/submit [post]
func (c *AttemptController) SubmitAttempt(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}

	attemptID, ok := parseID(ctx, "attemptId")
	if !ok {
		return
	}

	var req submitAttemptRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	existing, err := c.Attempts.GetAttempt(attemptID)
	if err != nil {
		if errors.Is(err, util.ErrAttemptNotFound) {
			util.NotFound(ctx)
			return
		}
		util.LogInternalError(ctx, err)
		return
	}
	if existing.UserID != user.UserID {
		util.Forbidden(ctx)
		return
	}

	attempt, err := c.Attempts.SubmitAttempt(attemptID, req.Answers, req.TimeSpentSeconds)
	if err != nil {
		switch {
		case errors.Is(err, util.ErrAttemptNotFound), errors.Is(err, util.ErrAssessmentNotFound):
			util.NotFound(ctx)
		case errors.Is(err, util.ErrInvalidQuestionType):
			util.BadRequest(ctx, err.Error())
		default:
			util.LogInternalError(ctx, err)
		}
		return
	}

	// 通过后把得分写回条目进度，由进度级联接管后续
	if attempt.IsPassed && attempt.EnrollmentID != nil && req.ItemID != nil {
		score := service.PercentScore(attempt)
		if _, err := c.Progress.CompleteItem(user.UserID, *attempt.EnrollmentID, *req.ItemID, &score); err != nil {
			logger.Log.Warn("作答通过但条目进度写入失败",
				zap.Uint("attempt_id", attempt.ID),
				zap.Uint("item_id", *req.ItemID),
				zap.Error(err))
		}
	}

	util.Success(ctx, attempt)
}

// @Summary 查询作答次数
// @Tags 测验
// @Produce json
// @Security BearerAuth
// @Param assessmentId path int true "测验ID"
// @Success 200 {object} util.Response
// @Router /api/assessments/{assessmentId}/attempts/count [get]
func (c *AttemptController) AttemptCount(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}

	assessmentID, ok := parseID(ctx, "assessmentId")
	if !ok {
		return
	}

	count, err := c.Attempts.AttemptCount(user.UserID, assessmentID)
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}

	util.Success(ctx, gin.H{"count": count})
}
