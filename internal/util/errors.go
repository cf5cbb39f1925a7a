package util

import "errors"

var (
	ErrValidation       = errors.New("validation error")
	ErrNotFound         = errors.New("not found")
	ErrDuplicateAttempt = errors.New("duplicate attempt")
	ErrInvalidQuiz      = errors.New("invalid quiz")
	ErrPermissionDenied = errors.New("permission denied")
)

// AppError 携带面向调用方的消息和错误类别，可用 errors.Is 判断类别
type AppError struct {
	Kind    error
	Message string
}

func (e *AppError) Error() string {
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Kind
}

func NewValidationError(msg string) error {
	return &AppError{Kind: ErrValidation, Message: msg}
}

func NewNotFoundError(msg string) error {
	return &AppError{Kind: ErrNotFound, Message: msg}
}

func NewDuplicateAttemptError(msg string) error {
	return &AppError{Kind: ErrDuplicateAttempt, Message: msg}
}

func NewInvalidQuizError(msg string) error {
	return &AppError{Kind: ErrInvalidQuiz, Message: msg}
}

func NewPermissionDeniedError(msg string) error {
	return &AppError{Kind: ErrPermissionDenied, Message: msg}
}
