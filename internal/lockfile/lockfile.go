// Package lockfile provides a cross-process exclusive lock backed by a file
// holding the owner's PID. Locks left behind by dead processes are reclaimed.
package lockfile

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/mitchellh/go-ps"

	"github.com/eliasosarumwense/Habital-sub003/internal/constants"
	apperrors "github.com/eliasosarumwense/Habital-sub003/internal/errors"
	"github.com/eliasosarumwense/Habital-sub003/internal/logger"
)

var (
	findProcessFunc = ps.FindProcess
	getpidFunc      = os.Getpid
)

// Lock is a held lock file.
type Lock struct {
	path  string
	token string
}

// Acquire takes the lock at dir/name, retrying briefly while another live
// process holds it. It fails with errors.ErrBusy when the lock stays taken.
func Acquire(dir, name string) (*Lock, error) {
	if err := os.MkdirAll(dir, 0700); err != nil {
		return nil, fmt.Errorf("failed to create lock directory: %w", err)
	}
	path := filepath.Join(dir, name)
	token := fmt.Sprintf("%d|%s|%d", getpidFunc(), constants.AppName, time.Now().UnixNano())

	for attempt := 0; ; attempt++ {
		err := create(path, token)
		if err == nil {
			return &Lock{path: path, token: token}, nil
		}
		if !errors.Is(err, os.ErrExist) {
			return nil, fmt.Errorf("failed to create lock file: %w", err)
		}

		if stale, reason := isStale(path); stale {
			logger.Warn("Removing stale lock file", "path", path, "reason", reason)
			if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
				return nil, fmt.Errorf("failed to remove stale lock file: %w", err)
			}
			continue
		}

		if attempt >= constants.InterchangeLockRetries {
			return nil, fmt.Errorf("lock %s: %w", path, apperrors.ErrBusy)
		}
		time.Sleep(constants.InterchangeLockDelay)
	}
}

func create(path, token string) error {
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0600)
	if err != nil {
		return err
	}
	if _, err := f.WriteString(token); err != nil {
		f.Close()
		os.Remove(path)
		return err
	}
	return f.Close()
}

// isStale reports whether the lock file's owner is gone.
func isStale(path string) (bool, string) {
	content, err := os.ReadFile(path)
	if err != nil {
		// Released between our create attempt and this read.
		return os.IsNotExist(err), "lock file vanished"
	}

	parts := strings.Split(strings.TrimSpace(string(content)), "|")
	if len(parts) != 3 {
		return true, "lock file is malformed"
	}
	pid, err := strconv.Atoi(parts[0])
	if err != nil || pid <= 0 {
		return true, "invalid process ID in lock file"
	}

	process, err := findProcessFunc(pid)
	if err != nil || process == nil {
		return true, fmt.Sprintf("process %d is not running", pid)
	}
	return false, ""
}

// Release removes the lock file if this lock still owns it.
func (l *Lock) Release() error {
	if l == nil {
		return nil
	}
	content, err := os.ReadFile(l.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("failed to read lock file: %w", err)
	}
	if strings.TrimSpace(string(content)) != l.token {
		return nil
	}
	if err := os.Remove(l.path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to remove lock file: %w", err)
	}
	return nil
}

// Path returns the lock file location.
func (l *Lock) Path() string {
	return l.path
}
