package entity

import (
	"errors"
	"fmt"
	"strings"
)

type ErrorCode string

const (
	CodeValidation ErrorCode = "VALIDATION_ERROR"
	CodeNotFound   ErrorCode = "NOT_FOUND"
	CodeBadRequest ErrorCode = "BAD_REQUEST"
	CodeForbidden  ErrorCode = "FORBIDDEN"
)

// AppError is an error the caller can act on, as opposed to an infrastructure failure.
type AppError struct {
	Code    ErrorCode
	Message string
	Err     error
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// NewValidationError joins the field messages in the order given.
func NewValidationError(messages ...string) *AppError {
	return &AppError{
		Code:    CodeValidation,
		Message: strings.Join(messages, ", "),
	}
}

func NewNotFoundError(message string) *AppError {
	return &AppError{
		Code:    CodeNotFound,
		Message: message,
	}
}

func NewBadRequestError(message string) *AppError {
	return &AppError{
		Code:    CodeBadRequest,
		Message: message,
	}
}

func NewForbiddenError(message string) *AppError {
	return &AppError{
		Code:    CodeForbidden,
		Message: message,
	}
}

var (
	ErrInvalidMember = NewNotFoundError("invalid member")
	ErrInvalidPost   = NewNotFoundError("invalid post")
	ErrLikeUnchanged = NewBadRequestError("like status already applied")
	ErrNotPostOwner  = NewForbiddenError("only the author can change this post")
)

// CodeOf returns the code of the first AppError in err's chain, or "".
func CodeOf(err error) ErrorCode {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Code
	}
	return ""
}
