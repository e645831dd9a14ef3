package core

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

// ErrUniqueViolation is returned (wrapped) by repositories when a write hits a uniqueness constraint.
var ErrUniqueViolation = errors.New("unique constraint violation")

// FieldError is used to indicate an error with a specific struct field.
type FieldError struct {
	Field string
	Error string
}

type ValidationError struct {
	Err    error
	Fields []FieldError
}

func NewValidationError(err error, flds ...FieldError) error {
	return &ValidationError{err, flds}
}

func (err ValidationError) Error() string {
	if err.Err == nil {
		return ""
	}
	return err.Err.Error()
}

// NotFoundError means a referenced entity does not exist or is soft-deleted.
type NotFoundError struct {
	message string
}

func NewNotFoundError(format string, args ...interface{}) *NotFoundError {
	return &NotFoundError{message: fmt.Sprintf(format, args...)}
}

func (err NotFoundError) Error() string {
	return err.message
}

// InvalidOperationError is a business rule violation. IDs lists the offending ids, if any.
type InvalidOperationError struct {
	message string
	IDs     []int
}

func NewInvalidOperationError(msg string, ids ...int) *InvalidOperationError {
	return &InvalidOperationError{message: msg, IDs: ids}
}

func (err InvalidOperationError) Error() string {
	return err.message
}

type ConflictError struct {
	message string
}

func NewConflictError(msg string) *ConflictError {
	return &ConflictError{message: msg}
}

func (err ConflictError) Error() string {
	return err.message
}

// InternalError hides the underlying failure from callers; it has already been logged.
type InternalError struct {
	message string
}

func NewInternalError(msg string) *InternalError {
	return &InternalError{message: msg}
}

func (err InternalError) Error() string {
	return err.message
}

func IsNotFound(err error) bool {
	_, ok := errors.Cause(err).(*NotFoundError)
	return ok
}

func IsInvalidOperation(err error) bool {
	_, ok := errors.Cause(err).(*InvalidOperationError)
	return ok
}

func IsConflict(err error) bool {
	_, ok := errors.Cause(err).(*ConflictError)
	return ok
}

func IsUniqueViolation(err error) bool {
	return errors.Cause(err) == ErrUniqueViolation
}

// JoinIDs formats ids as "1, 2, 3".
func JoinIDs(ids []int) string {
	strs := make([]string, 0, len(ids))
	for _, id := range ids {
		strs = append(strs, strconv.Itoa(id))
	}
	return strings.Join(strs, ", ")
}

type shutdown struct {
	message string
}

func NewShutdownError(msg string) error {
	return &shutdown{message: msg}
}

func (s shutdown) Error() string {
	return s.message
}

func IsShutdown(err error) bool {
	_, ok := errors.Cause(err).(*shutdown)
	return ok
}
