package skills

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
	"github.com/yuin/goldmark"
	meta "github.com/yuin/goldmark-meta"
	"github.com/yuin/goldmark/parser"
)

const skillFileName = "SKILL.md"

// ErrNotInstalled is returned when a skill directory has no SKILL.md.
var ErrNotInstalled = errors.New("skill not installed")

// Load reads dir/SKILL.md.
func Load(dir string) (*Skill, error) {
	content, err := os.ReadFile(filepath.Join(dir, skillFileName))
	if os.IsNotExist(err) {
		return nil, errors.Wrapf(ErrNotInstalled, "%s", dir)
	}
	if err != nil {
		return nil, errors.Wrap(err, "failed to read skill file")
	}

	skill, err := parse(content)
	if err != nil {
		return nil, errors.Wrapf(err, "invalid %s in %s", skillFileName, dir)
	}
	skill.Directory = dir
	return skill, nil
}

func parse(content []byte) (*Skill, error) {
	md := goldmark.New(
		goldmark.WithExtensions(meta.Meta),
	)

	var buf bytes.Buffer
	pctx := parser.NewContext()

	if err := md.Convert(content, &buf, parser.WithContext(pctx)); err != nil {
		return nil, errors.Wrap(err, "failed to parse markdown")
	}

	metaData := meta.Get(pctx)
	if metaData == nil {
		return nil, errors.New("missing frontmatter")
	}

	name, _ := metaData["name"].(string)
	description, _ := metaData["description"].(string)

	if name == "" {
		return nil, errors.New("skill name is required in frontmatter")
	}

	return &Skill{
		Name:        name,
		Description: strings.TrimSpace(description),
	}, nil
}
