package service

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

var (
	ErrForbidden          = errors.New("forbidden")
	ErrUnauthorized       = errors.New("unauthenticated")
	ErrInvalidCredentials = errors.New("invalid credentials")
)

// ValidationError - некорректный ввод, ничего не изменено. Ключи - имена полей JSON.
type ValidationError struct {
	Fields map[string]string
}

func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{Fields: map[string]string{field: message}}
}

func (e *ValidationError) Add(field, message string) {
	if e.Fields == nil {
		e.Fields = make(map[string]string)
	}
	if _, exists := e.Fields[field]; !exists {
		e.Fields[field] = message
	}
}

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, e.Fields[k])
	}
	return strings.Join(parts, " ")
}

// ConflictError - заявка пересекается с уже существующей
type ConflictError struct {
	Message string
}

func (e *ConflictError) Error() string {
	return e.Message
}

// NotFoundError - запрошенная сущность не существует
type NotFoundError struct {
	Resource string
	ID       any
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s not found", e.Resource)
}

const msgDuplicatePeriod = "Vous avez déjà une absence posée pour cette période."
