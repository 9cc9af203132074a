package database

import (
	"errors"
	"fmt"

	"github.com/mattn/go-sqlite3"
)

var (
	// ErrInvalidInput is returned when arguments are rejected before reaching the store.
	ErrInvalidInput = errors.New("invalid input")

	// ErrConstraint is returned when SQLite rejects a write because of a
	// foreign key, unique or not-null constraint.
	ErrConstraint = errors.New("constraint violation")

	// ErrInitialization matches every *InitError.
	ErrInitialization = errors.New("store initialization failed")
)

// InitError describes the initialization step that failed. Every caller that
// waited on the same attempt receives the same *InitError.
type InitError struct {
	Step string
	Err  error
}

func (e *InitError) Error() string {
	return fmt.Sprintf("store initialization failed at %s: %v", e.Step, e.Err)
}

func (e *InitError) Unwrap() error {
	return e.Err
}

func (e *InitError) Is(target error) bool {
	return target == ErrInitialization
}

// Invalid builds a validation error wrapping ErrInvalidInput.
func Invalid(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidInput, fmt.Sprintf(format, args...))
}

// Translate maps driver errors onto the package taxonomy. Errors that are not
// SQLite constraint failures are returned unchanged.
func Translate(err error) error {
	if err == nil {
		return nil
	}
	var sqliteErr sqlite3.Error
	if errors.As(err, &sqliteErr) && sqliteErr.Code == sqlite3.ErrConstraint {
		return fmt.Errorf("%w: %w", ErrConstraint, err)
	}
	return err
}

// IsUniqueViolation reports whether err is a UNIQUE or PRIMARY KEY collision.
func IsUniqueViolation(err error) bool {
	var sqliteErr sqlite3.Error
	if !errors.As(err, &sqliteErr) {
		return false
	}
	return sqliteErr.ExtendedCode == sqlite3.ErrConstraintUnique ||
		sqliteErr.ExtendedCode == sqlite3.ErrConstraintPrimaryKey
}
