package domain

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

var (
	ErrDuplicateName              = errors.New("duplicate name")
	ErrPriceOrderViolation        = errors.New("original price must be greater than current price")
	ErrStockAvailabilityViolation = errors.New("cannot be available when stock quantity is 0")
	ErrInsufficientStock          = errors.New("insufficient stock")
	ErrInvalidQuantity            = errors.New("invalid quantity value")
	ErrInvalidStockAction         = errors.New("invalid stock action")
	ErrInvalidFieldSet            = errors.New("invalid fields")
	ErrInvalidPage                = errors.New("invalid page")
)

// ValidationError collects field-scoped validation failures. Each failure may
// carry a sentinel cause so callers can match it with errors.Is.
type ValidationError struct {
	Fields map[string]string
	causes []error
}

// NewValidationError returns an empty ValidationError ready to collect failures
func NewValidationError() *ValidationError {
	return &ValidationError{Fields: make(map[string]string)}
}

// Add records a failure for field. The first message per field wins.
func (e *ValidationError) Add(field, message string, cause error) {
	if _, exists := e.Fields[field]; !exists {
		e.Fields[field] = message
	}
	if cause != nil {
		e.causes = append(e.causes, cause)
	}
}

// HasErrors reports whether any failure was recorded
func (e *ValidationError) HasErrors() bool {
	return len(e.Fields) > 0
}

// ErrOrNil returns e when it holds failures, nil otherwise
func (e *ValidationError) ErrOrNil() error {
	if e.HasErrors() {
		return e
	}
	return nil
}

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s: %s", k, e.Fields[k]))
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

func (e *ValidationError) Unwrap() []error {
	return e.causes
}

// InvalidFieldSetError is returned when a bulk update names fields outside the allow-list
type InvalidFieldSetError struct {
	Fields []string
}

func (e *InvalidFieldSetError) Error() string {
	return fmt.Sprintf("invalid fields: [%s]", strings.Join(e.Fields, ", "))
}

func (e *InvalidFieldSetError) Is(target error) bool {
	return target == ErrInvalidFieldSet
}
