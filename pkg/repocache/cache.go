// Package repocache keeps a local working copy of a reference repository up
// to date. The cache is non-authoritative: a directory that is not a valid
// working copy is discarded and cloned again.
package repocache

import (
	"context"
	"os"
	"path/filepath"
	"syscall"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel/attribute"

	"github.com/jingkaihe/skillops/pkg/logger"
	"github.com/jingkaihe/skillops/pkg/telemetry"
)

// Status describes how Ensure left the cache.
type Status string

const (
	// StatusCloned means the cache did not exist and was cloned.
	StatusCloned Status = "cloned"
	// StatusRecloned means the cache existed but was not a working copy.
	StatusRecloned Status = "recloned"
	// StatusUpdated means the existing working copy was pulled.
	StatusUpdated Status = "updated"
	// StatusStale means the pull failed and the existing working copy is used as is.
	StatusStale Status = "stale"
)

// Manager owns a single cache directory for one remote.
type Manager struct {
	url  string
	path string
	git  Git
}

// NewManager returns a manager caching url at path.
func NewManager(url, path string, git Git) *Manager {
	return &Manager{url: url, path: path, git: git}
}

// Path returns the cache directory.
func (m *Manager) Path() string { return m.path }

// Ensure guarantees on success that the cache directory holds a working copy
// of the remote. Clone failures are returned; pull failures are not, and
// yield StatusStale instead.
func (m *Manager) Ensure(ctx context.Context) (Status, error) {
	log := logger.G(ctx).WithFields(logrus.Fields{"repo": m.url, "cache": m.path})

	if _, err := os.Stat(m.path); os.IsNotExist(err) {
		log.Info("repository cache not found, cloning")
		if err := m.clone(ctx); err != nil {
			return "", err
		}
		return StatusCloned, nil
	} else if err != nil {
		return "", errors.Wrapf(err, "failed to stat cache directory %s", m.path)
	}

	valid, err := IsWorkingCopy(m.path)
	if err != nil {
		return "", err
	}
	if !valid {
		log.Warn("cache directory is not a git working copy, re-cloning")
		if err := os.RemoveAll(m.path); err != nil {
			return "", errors.Wrapf(err, "failed to remove invalid cache %s", m.path)
		}
		if err := m.clone(ctx); err != nil {
			return "", err
		}
		return StatusRecloned, nil
	}

	log.Info("repository cache found, pulling latest changes")
	if err := m.git.Pull(ctx, m.path); err != nil {
		log.WithError(err).Warn("git pull failed, proceeding with existing cache")
		telemetry.AddEvent(ctx, "pull.failed", attribute.String("error", err.Error()))
		return StatusStale, nil
	}
	return StatusUpdated, nil
}

func (m *Manager) clone(ctx context.Context) error {
	if err := os.MkdirAll(m.path, 0o755); err != nil {
		return errors.Wrapf(err, "failed to create cache directory %s", m.path)
	}

	if err := m.git.Clone(ctx, m.url, m.path); err != nil {
		// leave nothing behind that a later run could mistake for a cache
		_ = os.RemoveAll(m.path)
		return errors.Wrapf(err, "failed to clone %s", m.url)
	}
	return nil
}

// IsWorkingCopy reports whether dir contains git metadata. A missing .git,
// or a dir that is not a directory, is reported as false; any other stat
// failure is returned so the caller never discards a cache it cannot read.
func IsWorkingCopy(dir string) (bool, error) {
	_, err := os.Stat(filepath.Join(dir, ".git"))
	switch {
	case err == nil:
		return true, nil
	case os.IsNotExist(err), errors.Is(err, syscall.ENOTDIR):
		return false, nil
	default:
		return false, errors.Wrapf(err, "failed to inspect cache directory %s", dir)
	}
}
