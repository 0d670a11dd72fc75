package controller

import (
	"errors"

	"lms_backend/internal/util"

	"github.com/gin-gonic/gin"
)

// handleServiceError 服务层错误到 HTTP 响应的统一映射
func handleServiceError(ctx *gin.Context, tag string, err error) {
	if ve, ok := util.AsValidation(err); ok {
		util.BadRequest(ctx, ve.Error())
		return
	}

	switch {
	case errors.Is(err, util.ErrPermissionDenied):
		util.Forbidden(ctx)
	case errors.Is(err, util.ErrCourseNotFound),
		errors.Is(err, util.ErrChapterNotFound),
		errors.Is(err, util.ErrModuleNotFound),
		errors.Is(err, util.ErrProfileNotFound),
		errors.Is(err, util.ErrLeadNotFound):
		util.NotFound(ctx)
	case errors.Is(err, util.ErrThreadRequired),
		errors.Is(err, util.ErrAlreadyPurchased),
		errors.Is(err, util.ErrInvalidSignature),
		errors.Is(err, util.ErrAlreadyInstructor):
		util.BadRequest(ctx, err.Error())
	default:
		util.LogInternalError(ctx, tag, err)
	}
}
