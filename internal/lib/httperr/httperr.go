package httperr

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind — класс ошибки, определяет HTTP-статус ответа
type Kind int

const (
	KindInternal Kind = iota
	KindBadRequest
	KindUnauthorized
	KindForbidden
	KindNotFound
	KindUnavailable
)

// Status возвращает HTTP-статус для класса ошибки
func (k Kind) Status() int {
	switch k {
	case KindBadRequest:
		return http.StatusBadRequest
	case KindUnauthorized:
		return http.StatusUnauthorized
	case KindForbidden:
		return http.StatusForbidden
	case KindNotFound:
		return http.StatusNotFound
	case KindUnavailable:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// Error — классифицированная ошибка, доносится без изменений от удалённых
// клиентов до HTTP-границы. Для недоступных зависимостей дополнительно
// несёт метаданные {service, dependency, details} — они попадают в тело
// ответа, чтобы сбой бэкенда был отличим от ошибки клиента.
type Error struct {
	Kind    Kind
	Message string

	// заполняются только для KindUnavailable
	Service    string
	Dependency string
	Details    string

	err error
}

func (e *Error) Error() string {
	if e.Dependency != "" {
		return fmt.Sprintf("%s (service=%s, dependency=%s): %s", e.Message, e.Service, e.Dependency, e.Details)
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.err }

// BadRequest — некорректный ввод, неактивный товар, нехватка остатка
func BadRequest(msg string) *Error {
	return &Error{Kind: KindBadRequest, Message: msg}
}

func BadRequestf(format string, args ...any) *Error {
	return &Error{Kind: KindBadRequest, Message: fmt.Sprintf(format, args...)}
}

// Unauthorized — отсутствующий, просроченный или невалидный токен
func Unauthorized(msg string) *Error {
	return &Error{Kind: KindUnauthorized, Message: msg}
}

// Forbidden — личность подтверждена, но прав не хватает
func Forbidden(msg string) *Error {
	return &Error{Kind: KindForbidden, Message: msg}
}

// NotFound — сущность не найдена
func NotFound(msg string) *Error {
	return &Error{Kind: KindNotFound, Message: msg}
}

func NotFoundf(format string, args ...any) *Error {
	return &Error{Kind: KindNotFound, Message: fmt.Sprintf(format, args...)}
}

// Unavailable — зависимость недоступна или превысила таймаут
func Unavailable(service, dependency string, cause error) *Error {
	details := ""
	if cause != nil {
		details = cause.Error()
	}
	return &Error{
		Kind:       KindUnavailable,
		Message:    fmt.Sprintf("%s unreachable or timed out", dependency),
		Service:    service,
		Dependency: dependency,
		Details:    details,
		err:        cause,
	}
}

// Wrap сохраняет класс ошибки, добавляя контекст к цепочке
func Wrap(err *Error, cause error) *Error {
	err.err = cause
	return err
}

// From извлекает классифицированную ошибку из цепочки
func From(err error) (*Error, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e, true
	}
	return nil, false
}

// IsKind проверяет класс ошибки по всей цепочке
func IsKind(err error, kind Kind) bool {
	if e, ok := From(err); ok {
		return e.Kind == kind
	}
	return false
}
