package skills

import (
	"os"
	"path/filepath"

	"github.com/pkg/errors"
)

// Entry is the installed state of one configured skill.
type Entry struct {
	Name string
	Dir  string
	// Skill is nil when the skill is not installed or its SKILL.md is invalid.
	Skill *Skill
	Err   error
	// Present and Missing partition the mapping destinations.
	Present []string
	Missing []string
}

// Installed reports whether the skill directory holds a readable SKILL.md.
func (e Entry) Installed() bool { return e.Skill != nil }

// Inspect loads the skill in dir and checks which of dests exist under it.
func Inspect(name, dir string, dests []string) Entry {
	entry := Entry{Name: name, Dir: dir}

	entry.Skill, entry.Err = Load(dir)
	if errors.Is(entry.Err, ErrNotInstalled) {
		entry.Err = nil
	}

	for _, dest := range dests {
		if info, err := os.Stat(filepath.Join(dir, dest)); err == nil && info.IsDir() {
			entry.Present = append(entry.Present, dest)
		} else {
			entry.Missing = append(entry.Missing, dest)
		}
	}
	return entry
}
