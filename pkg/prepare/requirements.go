package prepare

import (
	"context"
	"path/filepath"
	"strings"

	"github.com/jingkaihe/skillops/pkg/logger"
)

const requirementsHeader = "# Mandatory for Agent Engine"

// ensureDependency appends the mandatory dependency unless every signature
// substring already occurs somewhere in the requirements file.
func (p *Preparer) ensureDependency(ctx context.Context, dir string) (StepResult, error) {
	log := logger.G(ctx)
	path := filepath.Join(dir, p.opts.RequirementsFile)
	res := StepResult{Path: path}

	existing, err := readOptional(path)
	if err != nil {
		return res, err
	}

	if hasDependency(existing, p.opts.DependencySignature) {
		log.WithField("file", path).Info("requirements already include the mandatory dependency")
		return res, nil
	}

	added := []string{p.opts.Dependency}
	diff, err := appendToFile(path, existing, appendSuffix(existing, requirementsHeader, added), p.opts.DryRun)
	if err != nil {
		return res, err
	}
	res.Added = added
	res.Diff = diff
	log.WithField("file", path).WithField("dependency", p.opts.Dependency).Info("mandatory dependency added")
	return res, nil
}

// hasDependency is a pure substring test: position and line structure do not
// matter. An empty signature never matches.
func hasDependency(content string, signature []string) bool {
	if len(signature) == 0 {
		return false
	}
	for _, s := range signature {
		if !strings.Contains(content, s) {
			return false
		}
	}
	return true
}
