package apperrors

import (
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// Список игнорируемых ошибок для механизмов отказоустойчивости
var (
	// ErrNotFound возвращается, когда запись не найдена (обобщенная ошибка)
	ErrNotFound = errors.New("запись не найдена")

	// ErrCacheMiss возвращается, когда запись не найдена в кэше
	ErrCacheMiss = redis.Nil

	// ErrRecordNotFound возвращается, когда запись не найдена в базе данных
	ErrRecordNotFound = gorm.ErrRecordNotFound

	// ErrSessionNotFound возвращается, когда для пользователя нет активного диалога
	ErrSessionNotFound = errors.New("активный диалог не найден")

	// ErrAlreadyRegistered возвращается при повторной регистрации пользователя
	ErrAlreadyRegistered = errors.New("пользователь уже зарегистрирован")

	// IgnoredErrors содержит список всех игнорируемых ошибок для circuit breaker
	IgnoredErrors = []error{
		ErrNotFound,
		ErrCacheMiss,
		ErrRecordNotFound,
		ErrSessionNotFound,
	}
)

// ValidationError описывает отклоненный пользовательский ввод.
// Reason содержит готовый текст для повторного запроса значения.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("некорректное значение поля %s: %s", e.Field, e.Reason)
}

// NewValidationError создает ошибку валидации для указанного поля
func NewValidationError(field, reason string) *ValidationError {
	return &ValidationError{Field: field, Reason: reason}
}

// CalculationError описывает нарушение области определения формулы
// (например, обхват талии меньше обхвата шеи)
type CalculationError struct {
	Reason string
}

func (e *CalculationError) Error() string {
	return fmt.Sprintf("ошибка расчета: %s", e.Reason)
}

// NewCalculationError создает ошибку расчета
func NewCalculationError(reason string) *CalculationError {
	return &CalculationError{Reason: reason}
}

// ConfigurationError описывает некорректную конфигурацию приложения.
// Такая ошибка фатальна и останавливает запуск.
type ConfigurationError struct {
	Parameter string
	Reason    string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("некорректная конфигурация %s: %s", e.Parameter, e.Reason)
}

// NewConfigurationError создает ошибку конфигурации
func NewConfigurationError(parameter, reason string) *ConfigurationError {
	return &ConfigurationError{Parameter: parameter, Reason: reason}
}

// IsNotFound проверяет, является ли ошибка ошибкой "запись не найдена"
func IsNotFound(err error) bool {
	if err == nil {
		return false
	}

	return errors.Is(err, ErrNotFound) ||
		errors.Is(err, ErrCacheMiss) ||
		errors.Is(err, ErrRecordNotFound) ||
		errors.Is(err, ErrSessionNotFound)
}

// IsValidation проверяет, является ли ошибка ошибкой валидации ввода
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// IsCalculation проверяет, является ли ошибка ошибкой расчета
func IsCalculation(err error) bool {
	var ce *CalculationError
	return errors.As(err, &ce)
}
