package service

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound                = errors.New("resource not found")
	ErrPermissionDenied        = errors.New("access forbidden")
	ErrInvalidConfirmationCode = errors.New("invalid confirmation code")
)

// ValidationError - ошибка валидации бизнес-правил; транслируется в 400
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

func NewValidationError(format string, args ...interface{}) error {
	return &ValidationError{Message: fmt.Sprintf(format, args...)}
}

// IsValidationError сообщает, является ли ошибка ошибкой валидации
func IsValidationError(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}
