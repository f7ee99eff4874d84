// Package interchange reads and writes the habit CSV interchange format.
package interchange

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/eliasosarumwense/Habital-sub003/internal/backup"
	"github.com/eliasosarumwense/Habital-sub003/internal/constants"
	apperrors "github.com/eliasosarumwense/Habital-sub003/internal/errors"
	"github.com/eliasosarumwense/Habital-sub003/internal/events"
	"github.com/eliasosarumwense/Habital-sub003/internal/lockfile"
	"github.com/eliasosarumwense/Habital-sub003/internal/logger"
	"github.com/eliasosarumwense/Habital-sub003/internal/storage"
)

// ErrBusy is returned when another import or export holds the codec.
var ErrBusy = apperrors.ErrBusy

// Snapshotter takes a restorable copy of the store before an import.
type Snapshotter interface {
	Create(ctx context.Context, reason string) (backup.Info, error)
}

// Codec runs exports and imports against one store. Only one run may be in
// flight per codec, and per lock directory across processes.
type Codec struct {
	store    storage.Provider
	bus      *events.Bus
	lockDir  string
	snapshot Snapshotter
	now      func() time.Time

	busy atomic.Bool
}

// Option configures a Codec.
type Option func(*Codec)

// WithLockDir enables the cross-process lock file in dir.
func WithLockDir(dir string) Option {
	return func(c *Codec) { c.lockDir = dir }
}

// WithSnapshot takes a backup before every import.
func WithSnapshot(s Snapshotter) Option {
	return func(c *Codec) { c.snapshot = s }
}

// WithBus sets the bus notified after a successful import.
func WithBus(bus *events.Bus) Option {
	return func(c *Codec) { c.bus = bus }
}

func NewCodec(store storage.Provider, opts ...Option) *Codec {
	c := &Codec{store: store, now: time.Now}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// acquire claims the codec and, when configured, the lock file.
func (c *Codec) acquire() (release func(), err error) {
	if !c.busy.CompareAndSwap(false, true) {
		return nil, ErrBusy
	}
	if c.lockDir == "" {
		return func() { c.busy.Store(false) }, nil
	}

	lock, err := lockfile.Acquire(c.lockDir, constants.InterchangeLockName)
	if err != nil {
		c.busy.Store(false)
		return nil, err
	}
	return func() {
		if err := lock.Release(); err != nil {
			logger.Warn("Failed to release interchange lock", "path", lock.Path(), "error", err)
		}
		c.busy.Store(false)
	}, nil
}
