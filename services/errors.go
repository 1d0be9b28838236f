package services

import (
	"errors"

	"github.com/lib/pq"
)

var (
	ErrNotFound     = errors.New("not found")
	ErrInvalidInput = errors.New("invalid input")
	ErrConflict     = errors.New("conflict")
)

// translatePQError maps constraint violations to service errors.
func translatePQError(err error) error {
	var pqErr *pq.Error
	if !errors.As(err, &pqErr) {
		return err
	}
	switch pqErr.Code {
	case "23505":
		return errors.Join(ErrConflict, err)
	case "23503", "23514", "22P02":
		return errors.Join(ErrInvalidInput, err)
	}
	return err
}
