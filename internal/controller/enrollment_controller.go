package controller

import (
	"errors"

	"onboardflow_backend/internal/service"
	"onboardflow_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type EnrollmentController struct {
	Service      *service.EnrollmentService
	Certificates *service.CertificateService
}

func NewEnrollmentController(svc *service.EnrollmentService, certs *service.CertificateService) *EnrollmentController {
	return &EnrollmentController{Service: svc, Certificates: certs}
}

type enrollRequest struct {
	FlowID uint `json:"flowId" binding:"required"`
}

// @Summary 报名流程
// @Tags 报名
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body enrollRequest true "报名信息"
// @Success 201 {object} util.Response
// @Router /api/enrollments [post]
func (c *EnrollmentController) Enroll(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}

	var req enrollRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	enrollment, err := c.Service.Enroll(user.UserID, req.FlowID)
	if err != nil {
		switch {
		case errors.Is(err, util.ErrFlowNotFound):
			util.NotFound(ctx)
		case errors.Is(err, util.ErrFlowNotPublished):
			util.BadRequest(ctx, err.Error())
		case errors.Is(err, util.ErrAlreadyEnrolled):
			util.Conflict(ctx, err.Error())
		default:
			util.LogInternalError(ctx, err)
		}
		return
	}

	util.Created(ctx, enrollment)
}

// @Summary 获取我的报名列表
// @Tags 报名
// @Produce json
// @Security BearerAuth
// @Success 200 {object} util.Response
// @Router /api/enrollments [get]
func (c *EnrollmentController) ListMine(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}

	enrollments, err := c.Service.ListByUser(user.UserID)
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}

	util.Success(ctx, enrollments)
}

// @Summary 获取结业证书
// @Tags 报名
// @Produce json
// @Security BearerAuth
// @Param enrollmentId path int true "报名ID"
// @Success 200 {object} util.Response
// @Router /api/enrollments/{enrollmentId}/certificate [get]
func (c *EnrollmentController) GetCertificate(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}

	enrollmentID, ok := parseID(ctx, "enrollmentId")
	if !ok {
		return
	}

	enrollment, err := c.Service.GetEnrollment(enrollmentID)
	if err != nil {
		util.NotFound(ctx)
		return
	}
	if enrollment.UserID != user.UserID {
		util.Forbidden(ctx)
		return
	}

	cert, err := c.Certificates.GetByEnrollment(enrollmentID)
	if err != nil {
		if errors.Is(err, util.ErrCertificateNotFound) {
			util.NotFound(ctx)
			return
		}
		util.LogInternalError(ctx, err)
		return
	}

	util.Success(ctx, cert)
}
