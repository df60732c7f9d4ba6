package main

import (
	"context"
	"fmt"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/jingkaihe/skillops/pkg/config"
	"github.com/jingkaihe/skillops/pkg/logger"
	"github.com/jingkaihe/skillops/pkg/presenter"
	"github.com/jingkaihe/skillops/pkg/repocache"
	"github.com/jingkaihe/skillops/pkg/updater"
)

type UpdateConfig struct {
	All      bool
	SkillDir string
}

func NewUpdateConfig() *UpdateConfig {
	return &UpdateConfig{
		All:      false,
		SkillDir: "",
	}
}

var updateCmd = withTracing(&cobra.Command{
	Use:   "update <skill>...",
	Short: "Refresh skills from their reference repositories",
	Long: `Clone or pull each skill's reference repository into the local cache, then
replace the skill's reference directories with fresh copies.

Examples:
  skillops update adk_developer
  skillops update --all
  skillops update a2ui_developer --skill-dir ./skills/a2ui_developer`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		config := getUpdateConfigFromFlags(cmd)

		return runUpdate(ctx, appConfig(ctx), args, config, repocache.NewShellGit(), presenter.Default())
	},
})

func init() {
	defaults := NewUpdateConfig()
	updateCmd.Flags().BoolP("all", "a", defaults.All, "Update every configured skill")
	updateCmd.Flags().String("skill-dir", defaults.SkillDir, "Skill directory to sync into (single skill only)")
}

func getUpdateConfigFromFlags(cmd *cobra.Command) *UpdateConfig {
	config := NewUpdateConfig()
	if all, err := cmd.Flags().GetBool("all"); err == nil {
		config.All = all
	}
	if dir, err := cmd.Flags().GetString("skill-dir"); err == nil {
		config.SkillDir = dir
	}
	return config
}

// selectSkills resolves the skills an update applies to.
func selectSkills(cfg *config.Config, names []string, opts *UpdateConfig) ([]string, error) {
	if opts.All {
		if len(names) > 0 {
			return nil, errors.New("--all cannot be combined with skill names")
		}
		names = cfg.SkillNames()
	}
	if len(names) == 0 {
		return nil, errors.Errorf("specify a skill to update or use --all (available: %v)", cfg.SkillNames())
	}
	if opts.SkillDir != "" && len(names) > 1 {
		return nil, errors.New("--skill-dir can only be used with a single skill")
	}
	for _, name := range names {
		if _, ok := cfg.Skills[name]; !ok {
			return nil, errors.Errorf("unknown skill %q (available: %v)", name, cfg.SkillNames())
		}
	}
	return names, nil
}

// runUpdate updates every selected skill, continuing past failures, and
// returns an error when any of them failed.
func runUpdate(ctx context.Context, cfg *config.Config, names []string, opts *UpdateConfig, git repocache.Git, p presenter.Presenter) error {
	names, err := selectSkills(cfg, names, opts)
	if err != nil {
		return err
	}

	var failed []string
	for _, name := range names {
		skill := cfg.Skills[name]
		skillDir := cfg.SkillDir(name)
		if opts.SkillDir != "" {
			skillDir = config.ExpandPath(opts.SkillDir)
		}

		p.Section(fmt.Sprintf("Updating %s", name))
		logger.G(ctx).WithField("skill", name).WithField("skill_dir", skillDir).Debug("starting update")

		u := updater.New(
			repocache.NewManager(skill.RepoURL, cfg.CachePath(name), git),
			updater.Options{
				Name:     name,
				SkillDir: skillDir,
				Mappings: skill.Mappings,
				Ignore:   cfg.Sync.Ignore,
			},
		)

		report, err := u.Run(ctx)
		if report != nil {
			presentReport(p, skill.RepoURL, report)
		}
		if err != nil {
			p.Error(err, fmt.Sprintf("Failed to update %s", name))
			failed = append(failed, name)
			continue
		}
		p.Success(fmt.Sprintf("%s updated in %s", name, skillDir))
	}

	if len(failed) > 0 {
		return errors.Errorf("%d of %d skills failed: %v", len(failed), len(names), failed)
	}
	return nil
}

func presentReport(p presenter.Presenter, repoURL string, report *updater.Report) {
	switch report.CacheStatus {
	case repocache.StatusCloned:
		p.Info(fmt.Sprintf("Cloned %s", repoURL))
	case repocache.StatusRecloned:
		p.Warning(fmt.Sprintf("Cache was not a git working copy, re-cloned %s", repoURL))
	case repocache.StatusUpdated:
		p.Info(fmt.Sprintf("Pulled latest changes from %s", repoURL))
	case repocache.StatusStale:
		p.Warning(fmt.Sprintf("Could not pull %s, using the cached copy", repoURL))
	}

	for _, m := range report.Synced {
		p.Success(fmt.Sprintf("Synced %s -> %s (%d files)", m.Mapping.Source, m.Mapping.Dest, m.Files))
	}
	for _, m := range report.Skipped {
		if m.Optional {
			p.Info(fmt.Sprintf("Skipped %s (not in repository)", m.Source))
			continue
		}
		p.Warning(fmt.Sprintf("Source %s does not exist in repository, skipped", m.Source))
	}
}
