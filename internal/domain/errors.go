package domain

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrBusinessRule matches every opening hours rule violation
	ErrBusinessRule = errors.New("business rule violated")
	// ErrNotFound matches every NotFoundError
	ErrNotFound = errors.New("not found")
	// ErrValidation matches ValidationErrors
	ErrValidation = errors.New("validation failed")
)

// FieldError is one failed field constraint
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationErrors collects field constraint violations
type ValidationErrors []FieldError

func (v ValidationErrors) Error() string {
	msgs := make([]string, 0, len(v))
	for _, fe := range v {
		msgs = append(msgs, fe.Field+": "+fe.Message)
	}
	return strings.Join(msgs, "; ")
}

func (v ValidationErrors) Is(target error) bool { return target == ErrValidation }

// InvalidIntervalError is returned when an interval does not close after it opens
type InvalidIntervalError struct {
	Day     Weekday
	OpenAt  ClockTime
	CloseAt ClockTime
}

func (e *InvalidIntervalError) Error() string {
	return fmt.Sprintf("on %s the closing time (%s) must be after the opening time (%s)", e.Day, e.CloseAt, e.OpenAt)
}

func (e *InvalidIntervalError) Is(target error) bool { return target == ErrBusinessRule }

// OverlapError is returned when two intervals of the same day intersect
type OverlapError struct {
	Day    Weekday
	First  OpeningHours
	Second OpeningHours
}

func (e *OverlapError) Error() string {
	return fmt.Sprintf("opening hours conflict on %s: %s-%s and %s-%s overlap",
		e.Day, e.First.OpenAt, e.First.CloseAt, e.Second.OpenAt, e.Second.CloseAt)
}

func (e *OverlapError) Is(target error) bool { return target == ErrBusinessRule }

// NotFoundError reports a missing entity by id
type NotFoundError struct {
	Entity string
	ID     int64
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s with id %d not found", e.Entity, e.ID)
}

func (e *NotFoundError) Is(target error) bool { return target == ErrNotFound }

// OperationError wraps any other failure of an operation
type OperationError struct {
	Op  string
	Err error
}

func (e *OperationError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *OperationError) Unwrap() error { return e.Err }

// Wrap converts err into an OperationError unless it already is a known
// domain error kind.
func Wrap(op string, err error) error {
	if err == nil {
		return nil
	}
	var opErr *OperationError
	if errors.Is(err, ErrNotFound) || errors.Is(err, ErrBusinessRule) ||
		errors.Is(err, ErrValidation) || errors.As(err, &opErr) {
		return err
	}
	return &OperationError{Op: op, Err: err}
}
