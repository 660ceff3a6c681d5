package domain

import (
	"errors"
	"fmt"
)

// Common domain errors that can occur while ranking or refining.
var (
	// ErrNoItems indicates that a session was created without any items.
	ErrNoItems = errors.New("no items to rank")

	// ErrDuplicateItem indicates that the same identifier appears twice in
	// a session's item universe.
	ErrDuplicateItem = errors.New("duplicate item")

	// ErrSessionDone indicates that a decision was submitted to a session
	// that has already produced its final order.
	ErrSessionDone = errors.New("session already done")

	// ErrNoPendingQuestion indicates that a decision was submitted before
	// Next reported a question.
	ErrNoPendingQuestion = errors.New("no pending question")

	// ErrPairMismatch indicates that a decision does not answer the
	// question most recently returned by Next.
	ErrPairMismatch = errors.New("decision does not match pending question")

	// ErrEmptyKeyword indicates that a keyword is empty after trimming.
	ErrEmptyKeyword = errors.New("keyword is empty")

	// ErrKeywordTooLong indicates that a keyword exceeds the configured
	// maximum length.
	ErrKeywordTooLong = errors.New("keyword too long")

	// ErrInterviewIncomplete indicates that a result was requested before
	// every stage finished.
	ErrInterviewIncomplete = errors.New("interview not complete")

	// ErrKeywordCount indicates that the wrong number of keywords was
	// supplied for a category.
	ErrKeywordCount = errors.New("wrong number of keywords")

	// ErrDuplicateKeyword indicates that a triad repeats a keyword.
	ErrDuplicateKeyword = errors.New("keywords must be distinct")

	// ErrReservedKeyword indicates that a keyword equals a category name.
	ErrReservedKeyword = errors.New("keyword matches a category name")

	// ErrKeywordUsed indicates that a keyword was already given for an
	// earlier category.
	ErrKeywordUsed = errors.New("keyword already used")

	// ErrKeywordTooSimilar indicates that a keyword is within the configured
	// edit distance of a category name or an earlier keyword.
	ErrKeywordTooSimilar = errors.New("keyword too similar to an existing word")

	// ErrInvalidConfiguration indicates that configuration is invalid or incomplete.
	ErrInvalidConfiguration = errors.New("invalid configuration")
)

// UsageError reports a caller contract violation against a RankSession or
// RefinementSession. It is never returned for conditions a respondent can
// fix; it means the driving code asked the wrong thing.
type UsageError struct {
	// Operation is the session method that rejected the call.
	Operation string

	// Detail names the offending input.
	Detail string

	// Err is one of ErrSessionDone, ErrNoPendingQuestion or ErrPairMismatch.
	Err error
}

// Error implements the error interface for UsageError.
func (e *UsageError) Error() string {
	if e.Detail == "" {
		return fmt.Sprintf("usage error: operation=%s, err=%v", e.Operation, e.Err)
	}
	return fmt.Sprintf("usage error: operation=%s, detail=%s, err=%v", e.Operation, e.Detail, e.Err)
}

// Unwrap returns the underlying error, supporting Go 1.13+ error unwrapping.
func (e *UsageError) Unwrap() error { return e.Err }

// NewUsageError creates a new UsageError with the given details.
func NewUsageError(operation, detail string, err error) *UsageError {
	return &UsageError{
		Operation: operation,
		Detail:    detail,
		Err:       err,
	}
}

// KeywordError reports why a keyword triad was rejected. The interview
// surfaces it to the respondent and asks again; the engine never sees
// rejected input.
type KeywordError struct {
	// Category is the category the keywords were offered for.
	Category string

	// Keyword is the offending word, empty for count errors.
	Keyword string

	// Err is the sentinel describing the rejection.
	Err error
}

// Error implements the error interface for KeywordError.
func (e *KeywordError) Error() string {
	if e.Keyword == "" {
		return fmt.Sprintf("keyword error: category=%s, err=%v", e.Category, e.Err)
	}
	return fmt.Sprintf("keyword error: category=%s, keyword=%q, err=%v", e.Category, e.Keyword, e.Err)
}

// Unwrap returns the underlying error.
func (e *KeywordError) Unwrap() error { return e.Err }

// Reason returns a short machine-readable label for the rejection, used
// as a metrics label.
func (e *KeywordError) Reason() string {
	switch {
	case errors.Is(e.Err, ErrKeywordCount):
		return "count"
	case errors.Is(e.Err, ErrEmptyKeyword):
		return "empty"
	case errors.Is(e.Err, ErrKeywordTooLong):
		return "length"
	case errors.Is(e.Err, ErrDuplicateKeyword):
		return "duplicate"
	case errors.Is(e.Err, ErrReservedKeyword):
		return "reserved"
	case errors.Is(e.Err, ErrKeywordUsed):
		return "used"
	case errors.Is(e.Err, ErrKeywordTooSimilar):
		return "similar"
	default:
		return "other"
	}
}

// NewKeywordError creates a new KeywordError with the given details.
func NewKeywordError(category, keyword string, err error) *KeywordError {
	return &KeywordError{
		Category: category,
		Keyword:  keyword,
		Err:      err,
	}
}

// BudgetExceededError is returned when an interview asks more comparison
// questions than the configured budget allows.
type BudgetExceededError struct {
	// LimitType names the exhausted budget, currently always "questions".
	LimitType string

	// Limit is the configured maximum.
	Limit int

	// Used is the count at the time the limit was hit.
	Used int
}

// Error implements the error interface for BudgetExceededError.
func (e *BudgetExceededError) Error() string {
	return fmt.Sprintf("budget exceeded: %s limit=%d, used=%d", e.LimitType, e.Limit, e.Used)
}

// NewBudgetExceededError creates a new BudgetExceededError.
func NewBudgetExceededError(limitType string, limit, used int) *BudgetExceededError {
	return &BudgetExceededError{
		LimitType: limitType,
		Limit:     limit,
		Used:      used,
	}
}

// ValidationError represents an error that occurred during validation.
// It can contain multiple validation failures.
type ValidationError struct {
	// Entity is the name of the entity that failed validation.
	Entity string

	// Errors contains the list of validation error messages.
	Errors []string
}

// Error implements the error interface for ValidationError.
func (e *ValidationError) Error() string {
	if len(e.Errors) == 1 {
		return fmt.Sprintf("validation error for %s: %s", e.Entity, e.Errors[0])
	}
	return fmt.Sprintf("validation errors for %s: %v", e.Entity, e.Errors)
}

// AddError adds a new error message to the validation error.
func (e *ValidationError) AddError(msg string) { e.Errors = append(e.Errors, msg) }

// HasErrors returns true if there are any validation errors.
func (e *ValidationError) HasErrors() bool { return len(e.Errors) > 0 }

// NewValidationError creates a new ValidationError for the given entity.
func NewValidationError(entity string) *ValidationError {
	return &ValidationError{
		Entity: entity,
		Errors: make([]string, 0),
	}
}
