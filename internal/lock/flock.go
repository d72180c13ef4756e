// Package lock provides cross-process advisory file locking.
package lock

import (
	"context"
	"fmt"
	"time"

	"github.com/gofrs/flock"
)

const retryInterval = 50 * time.Millisecond

// Acquire opens a lock file and blocks until an exclusive advisory lock
// on it is held. Returns a cleanup function that releases the lock and
// closes the file. This is a general-purpose cross-process lock suitable
// for any read-modify-write operation that needs serialization across
// separate CLI invocations, such as the git hook installer guarding
// concurrent writes to the same repository's hooks directory.
func Acquire(path string) (func(), error) {
	fl := flock.New(path)
	if err := fl.Lock(); err != nil {
		return nil, fmt.Errorf("acquiring lock %s: %w", path, err)
	}
	cleanup := func() {
		_ = fl.Unlock()
	}
	return cleanup, nil
}

// TryAcquire attempts to acquire the lock without blocking. ok is false
// if another process already holds it.
func TryAcquire(path string) (cleanup func(), ok bool, err error) {
	fl := flock.New(path)
	locked, err := fl.TryLock()
	if err != nil {
		return nil, false, fmt.Errorf("acquiring lock %s: %w", path, err)
	}
	if !locked {
		return nil, false, nil
	}
	return func() { _ = fl.Unlock() }, true, nil
}

// AcquireContext blocks until the lock is held or ctx is done.
func AcquireContext(ctx context.Context, path string) (func(), error) {
	fl := flock.New(path)
	locked, err := fl.TryLockContext(ctx, retryInterval)
	if err != nil {
		return nil, fmt.Errorf("acquiring lock %s: %w", path, err)
	}
	if !locked {
		return nil, fmt.Errorf("acquiring lock %s: %w", path, ctx.Err())
	}
	return func() { _ = fl.Unlock() }, nil
}
