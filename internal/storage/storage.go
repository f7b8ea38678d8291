package storage

import (
	"context"
	"errors"
)

var ErrNotFound = errors.New("key not found")

// Storage persists keyed records. Writes replace the previous value; there is no
// merge or conflict detection, the last writer wins.
type Storage interface {
	Load(ctx context.Context, key string) ([]byte, error)
	Save(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
}
