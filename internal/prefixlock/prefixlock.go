// Package prefixlock serializes local runs that publish to the same remote
// prefix. Runs on different prefixes never contend.
package prefixlock

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/gofrs/flock"
)

// ErrLocked reports that another run holds the prefix.
var ErrLocked = errors.New("prefix is locked by another run")

// Lock is a held prefix lock.
type Lock struct {
	path string
	lock *flock.Flock
}

// Acquire takes the lock for bucket/prefix under dir without waiting.
func Acquire(dir, bucket, prefix string) (*Lock, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create lock directory: %w", err)
	}
	path := filepath.Join(dir, FileName(bucket, prefix))
	fl := flock.New(path)
	ok, err := fl.TryLock()
	if err != nil {
		return nil, fmt.Errorf("acquire lock %s: %w", path, err)
	}
	if !ok {
		return nil, fmt.Errorf("%w: %s/%s (%s)", ErrLocked, bucket, prefix, path)
	}
	return &Lock{path: path, lock: fl}, nil
}

// FileName derives a stable lock file name for bucket/prefix.
func FileName(bucket, prefix string) string {
	sum := sha256.Sum256([]byte(bucket + "\x00" + prefix))
	return "prefix-" + hex.EncodeToString(sum[:8]) + ".lock"
}

// Path returns the lock file location.
func (l *Lock) Path() string {
	if l == nil {
		return ""
	}
	return l.path
}

// Release unlocks the prefix. The lock file is left in place.
func (l *Lock) Release() error {
	if l == nil || l.lock == nil {
		return nil
	}
	return l.lock.Unlock()
}
