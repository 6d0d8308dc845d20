package store

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"
)

var (
	// ErrNotFound means the referenced row does not exist.
	ErrNotFound = errors.New("not found")
	// ErrDuplicate means a unique constraint (username, suite_id) collided.
	ErrDuplicate = errors.New("duplicate value")
)

const pqUniqueViolation = "23505"

// translate maps driver errors onto the store's sentinel errors so callers
// can use errors.Is instead of matching pq internals.
func translate(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, sql.ErrNoRows) {
		return ErrNotFound
	}

	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code == pqUniqueViolation {
		return fmt.Errorf("%s: %w", pqErr.Constraint, ErrDuplicate)
	}

	return err
}
