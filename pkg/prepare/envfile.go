package prepare

import (
	"context"
	"path/filepath"
	"strings"

	"github.com/jingkaihe/skillops/pkg/logger"
)

const envHeader = "# Added by Agent Engine Deployer Skill"

// mergeEnvFile appends required variables whose keys are absent. Existing
// values are left as they are, even when they differ from the defaults.
func (p *Preparer) mergeEnvFile(ctx context.Context, dir string) (StepResult, error) {
	log := logger.G(ctx)
	path := filepath.Join(dir, p.opts.EnvFile)
	res := StepResult{Path: path}

	existing, err := readOptional(path)
	if err != nil {
		return res, err
	}
	current := parseEnv(existing)

	var added []string
	for _, v := range p.opts.TelemetryVars {
		if _, ok := current[v.Key]; ok {
			continue
		}
		added = append(added, v.Key+"="+v.Value)
	}

	if len(added) == 0 {
		log.WithField("file", path).Info("environment file already configured")
		return res, nil
	}

	diff, err := appendToFile(path, existing, appendSuffix(existing, envHeader, added), p.opts.DryRun)
	if err != nil {
		return res, err
	}
	res.Added = added
	res.Diff = diff
	log.WithField("file", path).WithField("added", len(added)).Info("telemetry variables added")
	return res, nil
}

// parseEnv reads KEY=VALUE lines, skipping blanks and comments and accepting
// an "export " prefix. Later duplicates win, as in a shell.
func parseEnv(content string) map[string]string {
	vars := map[string]string{}
	for _, line := range strings.Split(content, "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		key, value, ok := strings.Cut(line, "=")
		if !ok {
			continue
		}
		key = strings.TrimSpace(strings.TrimPrefix(key, "export "))
		if key == "" {
			continue
		}
		vars[key] = strings.TrimSpace(value)
	}
	return vars
}
