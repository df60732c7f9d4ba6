// Package skills reads the installed state of maintained skills: the
// SKILL.md frontmatter of each skill directory and which of its
// synchronized reference directories are present.
package skills

// Skill is the metadata of an installed skill.
type Skill struct {
	Name        string // from frontmatter
	Description string
	Directory   string
}
