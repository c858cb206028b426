package errors

import "errors"

// Общие ошибки приложения
var (
	// ErrNotFound используется, когда запись или ресурс не найдены.
	ErrNotFound = errors.New("record not found")

	// ErrUnauthorized используется для ошибок авторизации (неверный токен, нет прав).
	ErrUnauthorized = errors.New("unauthorized")

	// ErrForbidden используется, когда у пользователя недостаточно прав для действия
	// (например, попытка открыть ещё заблокированный квиз).
	ErrForbidden = errors.New("forbidden")

	// ErrValidation используется для ошибок валидации входных данных.
	ErrValidation = errors.New("validation failed")

	// ErrConflict используется для конфликтов состояния: дубликат имени розыгрыша,
	// уже запланированный розыгрыш категории, повторная сдача квиза со 100%,
	// недостаточно участников для призовых мест.
	ErrConflict = errors.New("resource state conflict")
)
