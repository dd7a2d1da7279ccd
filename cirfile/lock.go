package cirfile

import (
	"context"
	"time"

	"github.com/pkg/errors"
)

// Lock retry schedule used while the caller's context allows waiting.
const (
	InitialLockDelay = 10 * time.Millisecond
	InitialLockTries = 5
	LockDelay        = 100 * time.Millisecond
)

type lockMode int

const (
	lockNone lockMode = iota
	lockShared
	lockExclusive
)

func (m lockMode) String() string {
	switch m {
	case lockShared:
		return "shared"
	case lockExclusive:
		return "exclusive"
	default:
		return "none"
	}
}

func lockDelay(attempt int) time.Duration {
	if attempt <= InitialLockTries {
		return InitialLockDelay
	}
	return LockDelay
}

// flock takes an advisory whole-file lock. It never waits unless ctx can be
// cancelled; in that case it polls until the lock is free or ctx is done.
func (f *File) flock(ctx context.Context, mode lockMode) error {
	err := tryLock(f.fp, mode)
	if err == nil {
		f.lockMode = mode
		return nil
	}
	if !errors.Is(err, ErrWouldBlock) {
		return errors.Wrapf(err, "cirfile: %s lock", mode)
	}
	if ctx == nil || ctx.Done() == nil {
		return ErrWouldBlock
	}
	timer := time.NewTimer(lockDelay(1))
	defer timer.Stop()
	for attempt := 1; ; attempt++ {
		select {
		case <-timer.C:
		case <-ctx.Done():
			return errors.WithMessagef(ctx.Err(), "cirfile: waiting for %s lock on %s", mode, f.name)
		}
		err = tryLock(f.fp, mode)
		if err == nil {
			f.lockMode = mode
			return nil
		}
		if !errors.Is(err, ErrWouldBlock) {
			return errors.Wrapf(err, "cirfile: %s lock", mode)
		}
		timer.Reset(lockDelay(attempt + 1))
	}
}

func (f *File) unflock() {
	if f.lockMode != lockNone {
		_ = unlockFile(f.fp) // nothing to do about a failed unlock
		f.lockMode = lockNone
	}
}

func (f *File) hasShLock() bool {
	return f.lockMode == lockShared || f.lockMode == lockExclusive
}

func (f *File) hasExLock() bool {
	return f.lockMode == lockExclusive
}
