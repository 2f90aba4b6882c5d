package controller

import (
	"errors"

	"onboardflow_backend/internal/service"
	"onboardflow_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type AssessmentController struct {
	Assessments *service.AssessmentService
}

func NewAssessmentController(assessments *service.AssessmentService) *AssessmentController {
	return &AssessmentController{Assessments: assessments}
}

// @Summary 创建测验
// @Tags 测验管理
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body service.AssessmentRequest true "测验信息"
// @Success 201 {object} util.Response
// @Router /api/admin/assessments [post]
func (c *AssessmentController) CreateAssessment(ctx *gin.Context) {
	var req service.AssessmentRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	assessment, err := c.Assessments.CreateAssessment(req)
	if err != nil {
		if errors.Is(err, util.ErrInvalidPassingScore) {
			util.BadRequest(ctx, err.Error())
			return
		}
		util.LogInternalError(ctx, err)
		return
	}

	util.Created(ctx, assessment)
}

// @Summary 更新测验
// @Tags 测验管理
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param assessmentId path int true "测验ID"
// @Param body body service.AssessmentRequest true "测验信息"
// @Success 200 {object} util.Response
// @Router /api/admin/assessments/{assessmentId} [put]
func (c *AssessmentController) UpdateAssessment(ctx *gin.Context) {
	id, ok := parseID(ctx, "assessmentId")
	if !ok {
		return
	}

	var req service.AssessmentRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	assessment, err := c.Assessments.UpdateAssessment(id, req)
	if err != nil {
		switch {
		case errors.Is(err, util.ErrAssessmentNotFound):
			util.NotFound(ctx)
		case errors.Is(err, util.ErrInvalidPassingScore):
			util.BadRequest(ctx, err.Error())
		default:
			util.LogInternalError(ctx, err)
		}
		return
	}

	util.Success(ctx, assessment)
}

// @Summary 测验详情
// @Tags 测验管理
// @Produce json
// @Security BearerAuth
// @Param assessmentId path int true "测验ID"
// @Success 200 {object} util.Response
// @Router /api/admin/assessments/{assessmentId} [get]
func (c *AssessmentController) GetAssessment(ctx *gin.Context) {
	id, ok := parseID(ctx, "assessmentId")
	if !ok {
		return
	}

	assessment, err := c.Assessments.GetAssessment(id)
	if err != nil {
		if errors.Is(err, util.ErrAssessmentNotFound) {
			util.NotFound(ctx)
			return
		}
		util.LogInternalError(ctx, err)
		return
	}

	util.Success(ctx, assessment)
}

// @Summary 测验列表
// @Tags 测验管理
// @Produce json
// @Security BearerAuth
// @Param page query int false "页码"
// @Param limit query int false "每页数量"
// @Success 200 {object} util.PageResponse
// @Router /api/admin/assessments [get]
func (c *AssessmentController) ListAssessments(ctx *gin.Context) {
	page, limit := parsePagination(ctx)

	assessments, total, err := c.Assessments.ListAssessments(page, limit)
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}

	util.Success(ctx, util.PageResponse{List: assessments, Total: total, Page: page, Limit: limit})
}

// @Summary 删除测验
// @Tags 测验管理
// @Produce json
// @Security BearerAuth
// @Param assessmentId path int true "测验ID"
// @Success 200 {object} util.Response
// @Router /api/admin/assessments/{assessmentId} [delete]
func (c *AssessmentController) DeleteAssessment(ctx *gin.Context) {
	id, ok := parseID(ctx, "assessmentId")
	if !ok {
		return
	}

	if err := c.Assessments.DeleteAssessment(id); err != nil {
		if errors.Is(err, util.ErrAssessmentNotFound) {
			util.NotFound(ctx)
			return
		}
		util.LogInternalError(ctx, err)
		return
	}

	util.Success(ctx, nil)
}

// @Summary 创建题目
// @Tags 测验管理
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body service.QuestionRequest true "题目信息"
// @Success 201 {object} util.Response
// @Router /api/admin/questions [post]
func (c *AssessmentController) CreateQuestion(ctx *gin.Context) {
	var req service.QuestionRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	question, err := c.Assessments.CreateQuestion(req)
	if err != nil {
		switch {
		case errors.Is(err, util.ErrAssessmentNotFound):
			util.NotFound(ctx)
		case errors.Is(err, util.ErrInvalidQuestionType), errors.Is(err, util.ErrInvalidAnswerShape):
			util.BadRequest(ctx, err.Error())
		default:
			util.LogInternalError(ctx, err)
		}
		return
	}

	util.Created(ctx, question)
}

// @Summary 更新题目
// @Tags 测验管理
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param questionId path int true "题目ID"
// @Param body body service.QuestionRequest true "题目信息"
// @Success 200 {object} util.Response
// @Router /api/admin/questions/{questionId} [put]
func (c *AssessmentController) UpdateQuestion(ctx *gin.Context) {
	id, ok := parseID(ctx, "questionId")
	if !ok {
		return
	}

	var req service.QuestionRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	question, err := c.Assessments.UpdateQuestion(id, req)
	if err != nil {
		switch {
		case errors.Is(err, util.ErrQuestionNotFound):
			util.NotFound(ctx)
		case errors.Is(err, util.ErrInvalidQuestionType), errors.Is(err, util.ErrInvalidAnswerShape):
			util.BadRequest(ctx, err.Error())
		default:
			util.LogInternalError(ctx, err)
		}
		return
	}

	util.Success(ctx, question)
}

// @Summary 删除题目
// @Tags 测验管理
// @Produce json
// @Security BearerAuth
// @Param questionId path int true "题目ID"
// @Success 200 {object} util.Response
// @Router /api/admin/questions/{questionId} [delete]
func (c *AssessmentController) DeleteQuestion(ctx *gin.Context) {
	id, ok := parseID(ctx, "questionId")
	if !ok {
		return
	}

	if err := c.Assessments.DeleteQuestion(id); err != nil {
		if errors.Is(err, util.ErrQuestionNotFound) {
			util.NotFound(ctx)
			return
		}
		util.LogInternalError(ctx, err)
		return
	}

	util.Success(ctx, nil)
}

// @Summary 学员侧题目列表
// @Tags 测验
// @Produce json
// @Security BearerAuth
// @Param assessmentId path int true "测验ID"
// @Success 200 {object} util.Response
// @Router /api/assessments/{assessmentId}/questions [get]
func (c *AssessmentController) ListParticipantQuestions(ctx *gin.Context) {
	id, ok := parseID(ctx, "assessmentId")
	if !ok {
		return
	}

	questions, err := c.Assessments.ListParticipantQuestions(id)
	if err != nil {
		if errors.Is(err, util.ErrAssessmentNotFound) {
			util.NotFound(ctx)
			return
		}
		util.LogInternalError(ctx, err)
		return
	}

	util.Success(ctx, questions)
}
