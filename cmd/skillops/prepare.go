package main

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/jingkaihe/skillops/pkg/config"
	"github.com/jingkaihe/skillops/pkg/logger"
	"github.com/jingkaihe/skillops/pkg/prepare"
	"github.com/jingkaihe/skillops/pkg/presenter"
	"github.com/jingkaihe/skillops/pkg/suggest"
)

type PrepareConfig struct {
	DryRun bool
	NoAI   bool
}

func NewPrepareConfig() *PrepareConfig {
	return &PrepareConfig{
		DryRun: false,
		NoAI:   false,
	}
}

var prepareCmd = withTracing(&cobra.Command{
	Use:   "prepare [dir]",
	Short: "Prepare an agent directory for Agent Engine deployment",
	Long: `Append missing entries to the agent's .ae_ignore, requirements.txt and .env
files. Existing entries are never removed or changed, so the command can be
re-run safely. When a Google Cloud project is available, a Gemini model on
Vertex AI suggests extra ignore patterns for the directory's contents.

Examples:
  skillops prepare
  skillops prepare ./my_agent --dry-run
  skillops prepare ./my_agent --no-ai`,
	Args: cobra.MaximumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		ctx := cmd.Context()
		dir := "."
		if len(args) > 0 {
			dir = args[0]
		}

		opts := getPrepareConfigFromFlags(cmd)
		cfg := appConfig(ctx)
		suggester := newSuggester(ctx, cfg.Suggest, opts.NoAI, suggest.NewProjectResolver(), presenter.Default())

		// Preparation failures are reported but never change the exit status.
		_ = runPrepare(ctx, cfg, dir, opts, suggester, presenter.Default())
	},
})

func init() {
	defaults := NewPrepareConfig()
	prepareCmd.Flags().Bool("dry-run", defaults.DryRun, "Show the changes as diffs without writing")
	prepareCmd.Flags().Bool("no-ai", defaults.NoAI, "Use the baseline ignore rules only")
}

func getPrepareConfigFromFlags(cmd *cobra.Command) *PrepareConfig {
	config := NewPrepareConfig()
	if dryRun, err := cmd.Flags().GetBool("dry-run"); err == nil {
		config.DryRun = dryRun
	}
	if noAI, err := cmd.Flags().GetBool("no-ai"); err == nil {
		config.NoAI = noAI
	}
	return config
}

// newSuggester returns the Vertex suggester when enabled and a project
// resolves, and a no-op suggester otherwise.
func newSuggester(ctx context.Context, cfg config.SuggestConfig, noAI bool, resolver *suggest.ProjectResolver, p presenter.Presenter) suggest.Suggester {
	log := logger.G(ctx)
	if noAI || !cfg.Enabled {
		log.Debug("exclusion suggestions disabled")
		return suggest.Noop{}
	}

	project := resolver.Resolve(ctx, cfg.Project)
	if project == "" {
		p.Info("No Google Cloud project found, using baseline ignore rules")
		return suggest.Noop{}
	}

	vertex, err := suggest.NewVertex(ctx, suggest.VertexConfig{
		Project:  project,
		Location: cfg.Location,
		Model:    cfg.Model,
		Retry: suggest.RetryConfig{
			Attempts:     cfg.Retry.Attempts,
			InitialDelay: time.Duration(cfg.Retry.InitialDelay) * time.Millisecond,
			MaxDelay:     time.Duration(cfg.Retry.MaxDelay) * time.Millisecond,
			BackoffType:  cfg.Retry.BackoffType,
		},
	})
	if err != nil {
		log.WithError(err).Warn("failed to create Vertex AI client")
		p.Warning("Could not reach Vertex AI, using baseline ignore rules")
		return suggest.Noop{}
	}

	p.Info(fmt.Sprintf("Analyzing directory contents with %s (project %s)", cfg.Model, project))
	return vertex
}

func runPrepare(ctx context.Context, cfg *config.Config, dir string, opts *PrepareConfig, suggester suggest.Suggester, p presenter.Presenter) error {
	prepOpts := prepare.OptionsFromConfig(cfg.Prepare)
	prepOpts.DryRun = opts.DryRun

	abs, err := filepath.Abs(dir)
	if err != nil {
		abs = dir
	}
	p.Section(fmt.Sprintf("Preparing %s", abs))

	result, err := prepare.New(prepOpts, suggester).Prepare(ctx, dir)
	if result == nil {
		p.Error(err, "Preparation failed")
		return err
	}

	presentPrepareResult(p, result, opts.DryRun, err == nil)
	return err
}

func presentPrepareResult(p presenter.Presenter, result *prepare.Result, dryRun, ok bool) {
	ignore := result.Ignore
	if len(ignore.Suggested) > 0 {
		p.Info(fmt.Sprintf("Model suggested %d patterns", len(ignore.Suggested)))
	}
	presentStep(p, ignore.StepResult, "patterns", dryRun)
	if ignore.Err == nil {
		p.Info(fmt.Sprintf("%d of %d top-level entries excluded from the upload", len(ignore.Excluded), len(ignore.Entries)))
	}

	presentStep(p, result.Requirements, "dependency", dryRun)
	presentStep(p, result.Env, "variables", dryRun)

	switch {
	case !ok:
		p.Warning("Preparation finished with errors")
	case dryRun:
		p.Info("Dry run: no files were written")
	default:
		p.Success("Agent directory is ready for Agent Engine")
	}
}

func presentStep(p presenter.Presenter, step prepare.StepResult, noun string, dryRun bool) {
	name := filepath.Base(step.Path)
	if step.Err != nil {
		p.Error(step.Err, fmt.Sprintf("Failed to update %s", name))
		return
	}
	if !step.Changed() {
		p.Success(fmt.Sprintf("%s already up to date", name))
		return
	}
	if dryRun {
		p.Info(fmt.Sprintf("%s would gain %d %s", name, len(step.Added), noun))
		p.Diff(step.Diff)
		return
	}
	p.Success(fmt.Sprintf("%s updated (%d %s added)", name, len(step.Added), noun))
}
