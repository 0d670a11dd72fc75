package util

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrProfileNotFound   = errors.New("profile not found")
	ErrCourseNotFound    = errors.New("course not found")
	ErrChapterNotFound   = errors.New("chapter not found")
	ErrModuleNotFound    = errors.New("module not found")
	ErrLeadNotFound      = errors.New("lead not found")
	ErrPermissionDenied  = errors.New("permission denied")
	ErrThreadRequired    = errors.New("threadStudentId required")
	ErrAlreadyPurchased  = errors.New("course already purchased")
	ErrInvalidSignature  = errors.New("invalid payment signature")
	ErrAlreadyInstructor = errors.New("profile is already an instructor on this course")
)

// ValidationError 校验失败，Missing 列出缺失的前置条件字段
type ValidationError struct {
	Missing []string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("missing required fields: %s", strings.Join(e.Missing, ", "))
}

func NewValidationError(missing ...string) *ValidationError {
	return &ValidationError{Missing: missing}
}

// AsValidation 判断 err 是否为校验错误
func AsValidation(err error) (*ValidationError, bool) {
	var ve *ValidationError
	if errors.As(err, &ve) {
		return ve, true
	}
	return nil, false
}
