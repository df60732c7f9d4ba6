// Package updater refreshes a skill from its reference repository: it makes
// sure the repository cache is current, then mirrors each configured
// subtree of the cache into the skill directory.
package updater

import (
	"context"
	"path/filepath"

	"github.com/hashicorp/go-multierror"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel/attribute"

	"github.com/jingkaihe/skillops/pkg/config"
	"github.com/jingkaihe/skillops/pkg/dirsync"
	"github.com/jingkaihe/skillops/pkg/logger"
	"github.com/jingkaihe/skillops/pkg/repocache"
	"github.com/jingkaihe/skillops/pkg/telemetry"
)

// Cache is the repository cache an Updater reads from.
type Cache interface {
	Ensure(ctx context.Context) (repocache.Status, error)
	Path() string
}

// Options describes the skill being updated.
type Options struct {
	Name     string
	SkillDir string
	Mappings []config.Mapping
	Ignore   []string
}

// Updater runs one skill update.
type Updater struct {
	cache Cache
	opts  Options
}

// New returns an Updater reading from cache.
func New(cache Cache, opts Options) *Updater {
	return &Updater{cache: cache, opts: opts}
}

// MappingResult is the outcome of one synced mapping.
type MappingResult struct {
	Mapping config.Mapping
	Files   int
	Ignored int
}

// Report summarizes an update.
type Report struct {
	Skill       string
	SkillDir    string
	CacheStatus repocache.Status
	Synced      []MappingResult
	Skipped     []config.Mapping
}

// Run ensures the cache and syncs every mapping in order. A cache failure
// aborts before any mapping is touched. A missing source skips that mapping;
// any other mapping failure is collected and returned after the remaining
// mappings have run.
func (u *Updater) Run(ctx context.Context) (*Report, error) {
	ctx = logger.WithFields(ctx, logrus.Fields{"skill": u.opts.Name})
	log := logger.G(ctx)

	report := &Report{Skill: u.opts.Name, SkillDir: u.opts.SkillDir}

	err := telemetry.WithSpan(ctx, "repocache.ensure", func(ctx context.Context) error {
		status, err := u.cache.Ensure(ctx)
		if err != nil {
			return err
		}
		report.CacheStatus = status
		telemetry.SetAttributes(ctx, attribute.String("cache.status", string(status)))
		return nil
	}, attribute.String("skill", u.opts.Name))
	if err != nil {
		return nil, errors.Wrap(err, "could not update reference repository")
	}

	var result *multierror.Error
	for _, m := range u.opts.Mappings {
		mr, err := u.syncMapping(ctx, m)
		switch {
		case errors.Is(err, dirsync.ErrSourceMissing):
			report.Skipped = append(report.Skipped, m)
			entry := log.WithField("source", m.Source)
			if m.Optional {
				entry.Debug("optional source not present in repository, skipping")
			} else {
				entry.Warn("source does not exist in repository, skipping")
			}
		case err != nil:
			result = multierror.Append(result, errors.Wrapf(err, "sync %s -> %s", m.Source, m.Dest))
		default:
			report.Synced = append(report.Synced, *mr)
		}
	}

	return report, result.ErrorOrNil()
}

func (u *Updater) syncMapping(ctx context.Context, m config.Mapping) (*MappingResult, error) {
	src := filepath.Join(u.cache.Path(), filepath.FromSlash(m.Source))
	dest := filepath.Join(u.opts.SkillDir, filepath.FromSlash(m.Dest))

	var mr *MappingResult
	err := telemetry.WithSpan(ctx, "dirsync.sync", func(ctx context.Context) error {
		logger.G(ctx).WithFields(logrus.Fields{"source": m.Source, "dest": m.Dest}).Info("syncing")

		res, err := dirsync.Sync(src, dest, dirsync.Options{Ignore: u.opts.Ignore})
		if err != nil {
			return err
		}
		telemetry.SetAttributes(ctx, attribute.Int("files", res.Files), attribute.Int("ignored", len(res.Ignored)))
		mr = &MappingResult{Mapping: m, Files: res.Files, Ignored: len(res.Ignored)}
		return nil
	}, attribute.String("source", m.Source), attribute.String("dest", m.Dest))

	return mr, err
}
