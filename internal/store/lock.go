package store

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/gofrs/flock"
)

// ErrLocked is returned when another process holds a deployment's lock.
var ErrLocked = errors.New("deployment is locked")

const lockRetry = 25 * time.Millisecond

// Locker serialises load-modify-save cycles on one deployment.
type Locker interface {
	Lock(ctx context.Context, name string) (unlock func() error, err error)
}

// Lock takes an advisory file lock on <dir>/<name>.lock, waiting until ctx
// is done. The lock is released by the returned func or when the process
// exits.
func (s *JSONStore) Lock(ctx context.Context, name string) (func() error, error) {
	if err := ValidateName(name); err != nil {
		return nil, err
	}
	if err := os.MkdirAll(s.dir, 0o700); err != nil {
		return nil, err
	}
	fl := flock.New(s.path(name)+".lock", flock.SetPermissions(0o600))
	ok, err := fl.TryLockContext(ctx, lockRetry)
	if err != nil && ctx.Err() == nil {
		return nil, fmt.Errorf("locking %s: %w", name, err)
	}
	if !ok {
		return nil, fmt.Errorf("%w: %s is in use by another govtoken process", ErrLocked, name)
	}
	return fl.Unlock, nil
}

var _ Locker = (*JSONStore)(nil)
