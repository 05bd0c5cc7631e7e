package repository

import (
	"context"
	"fmt"

	"github.com/pkg/errors"
)

// StorageError wraps any failure that came from the persistence layer.
// Its text may contain query or connection detail and must not reach clients.
type StorageError struct {
	Op      string
	Timeout bool
	Err     error
}

func (e *StorageError) Error() string {
	if e.Timeout {
		return fmt.Sprintf("storage %s timed out: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("storage %s: %v", e.Op, e.Err)
}

func (e *StorageError) Unwrap() error {
	return e.Err
}

func storageError(op string, err error) error {
	if err == nil {
		return nil
	}
	return &StorageError{
		Op:      op,
		Timeout: errors.Is(err, context.DeadlineExceeded),
		Err:     err,
	}
}
