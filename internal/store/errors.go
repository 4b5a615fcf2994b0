package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

// Kind is the store-independent category of a failed statement.
type Kind int

const (
	KindOther Kind = iota
	KindNotFound
	KindConflict
	KindTimeout
)

func (k Kind) String() string {
	switch k {
	case KindNotFound:
		return "not found"
	case KindConflict:
		return "conflict"
	case KindTimeout:
		return "timeout"
	default:
		return "other"
	}
}

// SQLSTATE unique_violation.
const uniqueViolation = "23505"

type Error struct {
	Kind Kind
	Op   string
	Err  error
}

func (e *Error) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("%s: %s", e.Op, e.Kind)
	}
	return fmt.Sprintf("%s: %s: %v", e.Op, e.Kind, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// KindOf reports the Kind carried by err, or KindOther for foreign errors.
func KindOf(err error) Kind {
	var se *Error
	if errors.As(err, &se) {
		return se.Kind
	}
	return KindOther
}

func IsKind(err error, k Kind) bool { return err != nil && KindOf(err) == k }

func classify(op string, err error) error {
	var pgErr *pgconn.PgError
	switch {
	case errors.As(err, &pgErr) && pgErr.Code == uniqueViolation:
		return &Error{Kind: KindConflict, Op: op, Err: err}
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return &Error{Kind: KindConflict, Op: op, Err: err}
	case errors.Is(err, context.DeadlineExceeded):
		return &Error{Kind: KindTimeout, Op: op, Err: err}
	case errors.Is(err, sql.ErrNoRows), errors.Is(err, gorm.ErrRecordNotFound):
		return &Error{Kind: KindNotFound, Op: op, Err: err}
	default:
		return &Error{Kind: KindOther, Op: op, Err: err}
	}
}
