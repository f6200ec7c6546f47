package store

import (
	"errors"
	"fmt"

	"github.com/lib/pq"
)

// ErrNotFound is returned when a record does not exist.
var ErrNotFound = errors.New("not found")

// Postgres SQLSTATE codes surfaced as ConstraintError.
const (
	CodeUniqueViolation     = "23505"
	CodeForeignKeyViolation = "23503"
)

// Constraint names referenced by callers.
const (
	ConstraintUsernameKey       = "users_username_key"
	ConstraintEmailKey          = "users_email_key"
	ConstraintAddressUserIDFkey = "user_addresses_user_id_fkey"
)

// ConstraintError reports an integrity constraint violation.
type ConstraintError struct {
	Code       string
	Constraint string
	Err        error
}

func (e *ConstraintError) Error() string {
	return fmt.Sprintf("constraint %s violated (%s): %v", e.Constraint, e.Code, e.Err)
}

func (e *ConstraintError) Unwrap() error {
	return e.Err
}

// translateError maps driver errors to store errors; other errors pass
// through unchanged.
func translateError(err error) error {
	var pqErr *pq.Error
	if !errors.As(err, &pqErr) {
		return err
	}
	switch string(pqErr.Code) {
	case CodeUniqueViolation, CodeForeignKeyViolation:
		return &ConstraintError{
			Code:       string(pqErr.Code),
			Constraint: pqErr.Constraint,
			Err:        err,
		}
	default:
		return err
	}
}
