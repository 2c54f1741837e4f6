package service

import (
	"errors"

	"doctemplates/internal/payload"
)

var (
	ErrTemplateNotFound = errors.New("template was not found")
	ErrVersionNotFound  = errors.New("template version was not found")
	ErrVersionExists    = errors.New("template version already exists")
)

// PayloadError is returned when a generation payload does not match the
// example payload of the template version.
type PayloadError struct {
	Result payload.ValidationResult
}

func (e *PayloadError) Error() string {
	return "template body is invalid"
}

func IsPayloadError(err error) (*PayloadError, bool) {
	var pe *PayloadError
	ok := errors.As(err, &pe)
	return pe, ok
}
