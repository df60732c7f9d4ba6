// Package prepare readies an agent directory for deployment to Vertex AI
// Agent Engine. It appends whatever is missing to the directory's ignore
// file, requirements file and environment file, and never removes or
// reorders what is already there, so repeated runs converge.
package prepare

import (
	"context"
	"os"
	"sort"

	"github.com/hashicorp/go-multierror"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel/attribute"

	"github.com/jingkaihe/skillops/pkg/config"
	"github.com/jingkaihe/skillops/pkg/logger"
	"github.com/jingkaihe/skillops/pkg/suggest"
	"github.com/jingkaihe/skillops/pkg/telemetry"
)

// ErrDirNotFound is returned when the target directory does not exist.
var ErrDirNotFound = errors.New("directory not found")

// Options holds the fixed inputs of the three merge steps.
type Options struct {
	IgnoreFile          string
	BaselineIgnores     []string
	RequirementsFile    string
	Dependency          string
	DependencySignature []string
	EnvFile             string
	TelemetryVars       []config.EnvVar
	// DryRun computes diffs without writing.
	DryRun bool
}

// OptionsFromConfig maps the prepare section of the configuration.
func OptionsFromConfig(c config.PrepareConfig) Options {
	return Options{
		IgnoreFile:          c.IgnoreFile,
		BaselineIgnores:     c.BaselineIgnores,
		RequirementsFile:    c.RequirementsFile,
		Dependency:          c.Dependency,
		DependencySignature: c.DependencySignature,
		EnvFile:             c.EnvFile,
		TelemetryVars:       c.TelemetryVars,
	}
}

// StepResult describes what one step appended, or would append in a dry run.
type StepResult struct {
	Path  string
	Added []string
	// Diff is the unified diff of the change, empty when nothing changed.
	Diff string
	// Err is set when the step failed.
	Err error
}

// Changed reports whether the step appended anything.
func (s StepResult) Changed() bool { return len(s.Added) > 0 }

// IgnoreResult extends StepResult with what the suggester contributed and
// which top-level entries the final pattern set excludes.
type IgnoreResult struct {
	StepResult
	Suggested []string
	Entries   []string
	Excluded  []string
}

// Result is the outcome of a full preparation.
type Result struct {
	Dir          string
	Ignore       IgnoreResult
	Requirements StepResult
	Env          StepResult
}

// Preparer runs the three merge steps against a directory.
type Preparer struct {
	opts      Options
	suggester suggest.Suggester
}

// New returns a Preparer. A nil suggester behaves like suggest.Noop.
func New(opts Options, suggester suggest.Suggester) *Preparer {
	if suggester == nil {
		suggester = suggest.Noop{}
	}
	return &Preparer{opts: opts, suggester: suggester}
}

// Prepare runs the ignore-file, dependency and environment steps in order.
// The steps are independent: a failing step does not stop the others, and
// all failures are returned together alongside the partial result.
func (p *Preparer) Prepare(ctx context.Context, dir string) (*Result, error) {
	info, err := os.Stat(dir)
	if err != nil || !info.IsDir() {
		return nil, errors.Wrapf(ErrDirNotFound, "%s", dir)
	}

	ctx = logger.WithFields(ctx, logrus.Fields{"dir": dir, "dry_run": p.opts.DryRun})
	result := &Result{Dir: dir}

	steps := []struct {
		name string
		run  func(context.Context) error
	}{
		{"prepare.ignore_file", func(ctx context.Context) (err error) {
			result.Ignore, err = p.mergeIgnoreFile(ctx, dir)
			result.Ignore.Err = err
			return err
		}},
		{"prepare.requirements", func(ctx context.Context) (err error) {
			result.Requirements, err = p.ensureDependency(ctx, dir)
			result.Requirements.Err = err
			return err
		}},
		{"prepare.env_file", func(ctx context.Context) (err error) {
			result.Env, err = p.mergeEnvFile(ctx, dir)
			result.Env.Err = err
			return err
		}},
	}

	var errs *multierror.Error
	for _, step := range steps {
		if err := telemetry.WithSpan(ctx, step.name, step.run, attribute.Bool("dry_run", p.opts.DryRun)); err != nil {
			logger.G(ctx).WithError(err).WithField("step", step.name).Error("preparation step failed")
			errs = multierror.Append(errs, err)
		}
	}

	return result, errs.ErrorOrNil()
}

func listEntries(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to list %s", dir)
	}
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		names = append(names, e.Name())
	}
	sort.Strings(names)
	return names, nil
}
