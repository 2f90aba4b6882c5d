package util

import "errors"

var (
	ErrUserNotFound        = errors.New("用户不存在")
	ErrEmailRegistered     = errors.New("该邮箱已被注册")
	ErrPermissionDenied    = errors.New("permission denied")
	ErrFlowNotFound        = errors.New("flow not found")
	ErrFlowNotPublished    = errors.New("flow not published or not accessible")
	ErrStageNotFound       = errors.New("stage not found")
	ErrItemNotFound        = errors.New("stage item not found")
	ErrEnrollmentNotFound  = errors.New("enrollment not found")
	ErrAlreadyEnrolled     = errors.New("user already enrolled in this flow")
	ErrAssessmentNotFound  = errors.New("assessment not found")
	ErrQuestionNotFound    = errors.New("question not found")
	ErrAttemptNotFound     = errors.New("attempt not found")
	ErrCertificateNotFound = errors.New("certificate not found")

	ErrInvalidQuestionType = errors.New("invalid question type")
	ErrInvalidPassingScore = errors.New("passing score must be between 0 and 100")
	ErrInvalidItemPayload  = errors.New("stage item payload does not match its type")
	ErrInvalidAnswerShape  = errors.New("correct answer shape does not match question type")
)
