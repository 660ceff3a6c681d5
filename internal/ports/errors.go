package ports

import (
	"errors"
	"fmt"
)

// Common infrastructure errors that can occur while talking to a
// respondent or loading configuration.
var (
	// ErrInputClosed indicates that the respondent's input ended before an
	// answer was given.
	ErrInputClosed = errors.New("input closed")

	// ErrInvalidAnswer indicates that the respondent returned something
	// that is not one of the offered choices.
	ErrInvalidAnswer = errors.New("invalid answer")

	// ErrConfigNotFound indicates that required configuration is missing.
	ErrConfigNotFound = errors.New("configuration not found")
)

// RespondentError represents a failure obtaining an answer from a
// respondent.
type RespondentError struct {
	// Operation is the respondent method that failed.
	Operation string

	// Attempts is the number of tries made before giving up.
	Attempts int

	// Err is the underlying error that occurred.
	Err error
}

// Error implements the error interface for RespondentError.
func (e *RespondentError) Error() string {
	msg := fmt.Sprintf("respondent error: operation=%s, err=%v", e.Operation, e.Err)
	if e.Attempts > 0 {
		msg += fmt.Sprintf(", attempts=%d", e.Attempts)
	}
	return msg
}

// Unwrap returns the underlying error.
func (e *RespondentError) Unwrap() error { return e.Err }

// IsRetryable returns true if asking again may produce a usable answer.
func (e *RespondentError) IsRetryable() bool {
	// A malformed answer can be asked again; closed input cannot.
	return errors.Is(e.Err, ErrInvalidAnswer)
}

// NewRespondentError creates a new RespondentError with the given details.
func NewRespondentError(operation string, err error) *RespondentError {
	return &RespondentError{
		Operation: operation,
		Err:       err,
	}
}

// MetricsError represents an error from metrics collection operations.
type MetricsError struct {
	// Metric is the name of the metric that was being collected when the
	// error occurred.
	Metric string

	// Operation is the name of the metrics operation that failed.
	Operation string

	// Err is the underlying error that caused the metrics operation to fail.
	Err error
}

// Error implements the error interface for MetricsError.
func (e *MetricsError) Error() string {
	return fmt.Sprintf("metrics error: operation=%s, metric=%s, err=%v", e.Operation, e.Metric, e.Err)
}

// Unwrap returns the underlying error.
func (e *MetricsError) Unwrap() error { return e.Err }

// NewMetricsError creates a new MetricsError with the given details.
func NewMetricsError(metric, operation string, err error) *MetricsError {
	return &MetricsError{
		Metric:    metric,
		Operation: operation,
		Err:       err,
	}
}

// ConfigError represents an error from configuration operations.
type ConfigError struct {
	// ConfigKey is the configuration key that was involved in the failed
	// operation.
	ConfigKey string

	// Err is the underlying error that caused the configuration operation
	// to fail.
	Err error
}

// Error implements the error interface for ConfigError.
func (e *ConfigError) Error() string {
	return fmt.Sprintf("config error: key=%s, err=%v", e.ConfigKey, e.Err)
}

// Unwrap returns the underlying error.
func (e *ConfigError) Unwrap() error { return e.Err }

// NewConfigError creates a new ConfigError with the given details.
func NewConfigError(key string, err error) *ConfigError {
	return &ConfigError{
		ConfigKey: key,
		Err:       err,
	}
}
