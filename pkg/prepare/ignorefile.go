package prepare

import (
	"context"
	"path/filepath"
	"sort"
	"strings"

	"github.com/gobwas/glob"

	"github.com/jingkaihe/skillops/pkg/logger"
)

const ignoreHeader = "# Added by Agent Engine Deployer Skill (Hybrid Analysis)"

// mergeIgnoreFile appends every baseline or suggested pattern the ignore
// file does not already list.
func (p *Preparer) mergeIgnoreFile(ctx context.Context, dir string) (IgnoreResult, error) {
	log := logger.G(ctx)
	path := filepath.Join(dir, p.opts.IgnoreFile)
	res := IgnoreResult{StepResult: StepResult{Path: path}}

	entries, err := listEntries(dir)
	if err != nil {
		return res, err
	}
	res.Entries = entries

	suggested, err := p.suggester.Suggest(ctx, entries)
	if err != nil {
		log.WithError(err).Warn("exclusion suggestions unavailable, using baseline rules only")
		suggested = nil
	}
	res.Suggested = sanitizePatterns(suggested)

	wanted := map[string]bool{}
	for _, pattern := range p.opts.BaselineIgnores {
		wanted[pattern] = true
	}
	for _, pattern := range res.Suggested {
		wanted[pattern] = true
	}

	existing, err := readOptional(path)
	if err != nil {
		return res, err
	}
	current := parseIgnoreEntries(existing)

	var missing []string
	for pattern := range wanted {
		if !current[pattern] {
			missing = append(missing, pattern)
		}
	}
	sort.Strings(missing)

	res.Excluded = excludedEntries(entries, wanted)

	if len(missing) == 0 {
		log.WithField("file", path).Info("ignore file already up to date")
		return res, nil
	}

	diff, err := appendToFile(path, existing, appendSuffix(existing, ignoreHeader, missing), p.opts.DryRun)
	if err != nil {
		return res, err
	}
	res.Added = missing
	res.Diff = diff
	log.WithField("file", path).WithField("added", len(missing)).Info("ignore file updated")
	return res, nil
}

// parseIgnoreEntries returns the set of non-blank, non-comment lines.
func parseIgnoreEntries(content string) map[string]bool {
	entries := map[string]bool{}
	for _, line := range strings.Split(content, "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		entries[line] = true
	}
	return entries
}

// sanitizePatterns drops suggestions that would be read back as comments or
// that contain whitespace-only content.
func sanitizePatterns(patterns []string) []string {
	var clean []string
	for _, p := range patterns {
		p = strings.TrimSpace(p)
		if p == "" || strings.HasPrefix(p, "#") {
			continue
		}
		clean = append(clean, p)
	}
	return clean
}

// excludedEntries returns the top-level entries matched by any pattern.
// Patterns that fail to compile are ignored.
func excludedEntries(entries []string, patterns map[string]bool) []string {
	var globs []glob.Glob
	for pattern := range patterns {
		g, err := glob.Compile(strings.Trim(pattern, "/"))
		if err != nil {
			continue
		}
		globs = append(globs, g)
	}

	var excluded []string
	for _, entry := range entries {
		for _, g := range globs {
			if g.Match(entry) {
				excluded = append(excluded, entry)
				break
			}
		}
	}
	return excluded
}
