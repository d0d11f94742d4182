package dictionary

import (
	"errors"
	"fmt"

	"github.com/HendryAvila/kanjidict/internal/validate"
)

var (
	// ErrNotFound matches every *NotFoundError.
	ErrNotFound = errors.New("not found")
	// ErrDuplicate is returned when a unique column already holds the value.
	ErrDuplicate = errors.New("already exists")
	// ErrInvalidOrder is returned when a reorder list is not a permutation
	// of the current siblings.
	ErrInvalidOrder = errors.New("invalid order")
	// ErrAlreadySeeded is returned by Seed when every table already has data.
	ErrAlreadySeeded = errors.New("database already has data")
	// ErrSchemaTooNew is returned when the database was written by a newer build.
	ErrSchemaTooNew = errors.New("database schema is newer than this build")
)

// NotFoundError reports a missing row.
type NotFoundError struct {
	Entity string
	ID     int64
	Key    string
}

func (e *NotFoundError) Error() string {
	if e.Key != "" {
		return fmt.Sprintf("%s %q not found", e.Entity, e.Key)
	}
	return fmt.Sprintf("%s with id %d not found", e.Entity, e.ID)
}

// Is makes errors.Is(err, ErrNotFound) hold.
func (e *NotFoundError) Is(target error) bool {
	return target == ErrNotFound
}

func notFound(entity string, id int64) error {
	return &NotFoundError{Entity: entity, ID: id}
}

// RepositoryError wraps a failed store operation with the entity it ran on.
type RepositoryError struct {
	Op     string
	Entity string
	Err    error
}

func (e *RepositoryError) Error() string {
	return fmt.Sprintf("dictionary: %s %s: %v", e.Op, e.Entity, e.Err)
}

func (e *RepositoryError) Unwrap() error {
	return e.Err
}

// wrapErr wraps err once; an error that is already a RepositoryError passes through.
func wrapErr(op, entity string, err error) error {
	if err == nil {
		return nil
	}
	var re *RepositoryError
	if errors.As(err, &re) {
		return err
	}
	return &RepositoryError{Op: op, Entity: entity, Err: err}
}

// IsUserError reports whether err was caused by input the user can correct,
// as opposed to an unexpected failure of the store.
func IsUserError(err error) bool {
	if err == nil {
		return false
	}
	return validate.IsValidation(err) ||
		errors.Is(err, ErrNotFound) ||
		errors.Is(err, ErrDuplicate) ||
		errors.Is(err, ErrInvalidOrder) ||
		errors.Is(err, ErrAlreadySeeded)
}
