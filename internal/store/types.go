package store

import (
	"errors"
	"strings"
)

type DatabaseType string

const (
	DBTypePostgres DatabaseType = "postgres"
	DBTypeSQLite   DatabaseType = "sqlite"
)

// ErrConflict matches every unique constraint violation.
var ErrConflict = errors.New("conflict")

// ConflictError carries the driver error of a unique constraint violation.
type ConflictError struct {
	Op  string
	Err error
}

func (e *ConflictError) Error() string {
	return e.Op + ": " + e.Err.Error()
}

func (e *ConflictError) Unwrap() error {
	return e.Err
}

func (e *ConflictError) Is(target error) bool {
	return target == ErrConflict
}

func DetectType(dsn string) DatabaseType {
	if strings.HasPrefix(dsn, "postgres") {
		return DBTypePostgres
	}
	return DBTypeSQLite
}
