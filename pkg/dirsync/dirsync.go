// Package dirsync mirrors a directory tree into a destination, replacing the
// destination wholesale and leaving out entries that match ignore patterns.
package dirsync

import (
	"io"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/pkg/errors"
)

// ErrSourceMissing is returned when the source tree does not exist.
var ErrSourceMissing = errors.New("source does not exist")

// Options configures a sync.
type Options struct {
	// Ignore holds glob patterns. A pattern without a slash is matched
	// against the base name of every entry at any depth; a pattern with a
	// slash is matched against the slash-separated path relative to the
	// source root. A matching directory is skipped together with its contents.
	Ignore []string
}

// Result summarizes a completed sync.
type Result struct {
	Files int
	Dirs  int
	// Symlinks counts links recreated as links. Links leaving the source
	// tree are copied and counted as files or dirs.
	Symlinks int
	// Ignored lists the relative paths left out, in walk order.
	Ignored []string
}

// Matcher decides whether a relative path is ignored.
type Matcher struct {
	namePatterns []string
	pathPatterns []string
}

// NewMatcher validates patterns and sorts them into name and path patterns.
func NewMatcher(patterns []string) (*Matcher, error) {
	m := &Matcher{}
	for _, p := range patterns {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		if !doublestar.ValidatePattern(p) {
			return nil, errors.Errorf("invalid ignore pattern %q", p)
		}
		if strings.Contains(p, "/") {
			m.pathPatterns = append(m.pathPatterns, strings.Trim(p, "/"))
		} else {
			m.namePatterns = append(m.namePatterns, p)
		}
	}
	return m, nil
}

// Match reports whether rel, a slash-separated path relative to the sync
// root, is ignored.
func (m *Matcher) Match(rel string) bool {
	name := path.Base(rel)
	for _, p := range m.namePatterns {
		if ok, _ := doublestar.Match(p, name); ok {
			return true
		}
	}
	for _, p := range m.pathPatterns {
		if ok, _ := doublestar.Match(p, rel); ok {
			return true
		}
	}
	return false
}

// Sync replaces dest with a copy of src filtered by opts.Ignore. It returns
// ErrSourceMissing, leaving dest untouched, when src does not exist.
func Sync(src, dest string, opts Options) (*Result, error) {
	matcher, err := NewMatcher(opts.Ignore)
	if err != nil {
		return nil, err
	}

	info, err := os.Stat(src)
	if os.IsNotExist(err) {
		return nil, errors.Wrap(ErrSourceMissing, src)
	}
	if err != nil {
		return nil, errors.Wrapf(err, "failed to stat %s", src)
	}
	if !info.IsDir() {
		return nil, errors.Errorf("source %s is not a directory", src)
	}

	absSrc, err := filepath.Abs(src)
	if err != nil {
		return nil, errors.Wrap(err, "failed to resolve source path")
	}
	absDest, err := filepath.Abs(dest)
	if err != nil {
		return nil, errors.Wrap(err, "failed to resolve destination path")
	}
	if absSrc == absDest || isWithin(absSrc, absDest) || isWithin(absDest, absSrc) {
		return nil, errors.Errorf("source %s and destination %s overlap", src, dest)
	}

	realSrc, err := filepath.EvalSymlinks(absSrc)
	if err != nil {
		return nil, errors.Wrap(err, "failed to resolve source path")
	}

	if err := os.RemoveAll(dest); err != nil {
		return nil, errors.Wrapf(err, "failed to remove existing %s", dest)
	}
	if err := os.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
		return nil, errors.Wrapf(err, "failed to create parent of %s", dest)
	}

	c := &copier{
		matcher: matcher,
		realSrc: realSrc,
		active:  map[string]bool{},
		result:  &Result{},
	}
	if err := c.copyDir(src, dest, "", info.Mode().Perm()); err != nil {
		return nil, errors.Wrapf(err, "failed to copy %s to %s", src, dest)
	}

	return c.result, nil
}

// copier mirrors one source tree. Symlinks whose target lies inside the
// source tree are recreated as relative links; any other link is replaced by
// a copy of what it points to. active holds the real paths of the
// directories being copied, so a link back into one of them is skipped.
type copier struct {
	matcher *Matcher
	realSrc string
	active  map[string]bool
	result  *Result
}

func (c *copier) copyDir(dir, target, rel string, perm fs.FileMode) error {
	realDir, err := filepath.EvalSymlinks(dir)
	if err != nil {
		return err
	}
	if !c.active[realDir] {
		c.active[realDir] = true
		defer delete(c.active, realDir)
	}

	if err := os.MkdirAll(target, perm|0o700); err != nil {
		return err
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return err
	}

	for _, e := range entries {
		childRel := path.Join(rel, e.Name())
		if c.matcher.Match(childRel) {
			c.result.Ignored = append(c.result.Ignored, childRel)
			continue
		}

		p := filepath.Join(dir, e.Name())
		t := filepath.Join(target, e.Name())

		switch {
		case e.Type()&fs.ModeSymlink != 0:
			err = c.copyLink(p, t, childRel)
		case e.IsDir():
			fi, ierr := e.Info()
			if ierr != nil {
				return ierr
			}
			c.result.Dirs++
			err = c.copyDir(p, t, childRel, fi.Mode().Perm())
		case e.Type().IsRegular():
			c.result.Files++
			err = copyFile(p, t)
		default:
			// sockets, devices and pipes have no place in a skill tree
			c.result.Ignored = append(c.result.Ignored, childRel)
		}
		if err != nil {
			return err
		}
	}
	return nil
}

func (c *copier) copyLink(p, target, rel string) error {
	resolved, err := filepath.EvalSymlinks(p)
	if err != nil {
		// dangling link: there is nothing to copy
		c.result.Ignored = append(c.result.Ignored, rel)
		return nil
	}

	if c.insideSrc(resolved) {
		if parent, err := filepath.EvalSymlinks(filepath.Dir(p)); err == nil && c.insideSrc(parent) {
			link, err := filepath.Rel(parent, resolved)
			if err != nil {
				return err
			}
			c.result.Symlinks++
			return os.Symlink(link, target)
		}
	}

	info, err := os.Stat(resolved)
	if err != nil {
		return err
	}
	switch {
	case info.IsDir():
		if c.active[resolved] {
			c.result.Ignored = append(c.result.Ignored, rel)
			return nil
		}
		c.result.Dirs++
		return c.copyDir(resolved, target, rel, info.Mode().Perm())
	case info.Mode().IsRegular():
		c.result.Files++
		return copyFile(resolved, target)
	default:
		c.result.Ignored = append(c.result.Ignored, rel)
		return nil
	}
}

func (c *copier) insideSrc(p string) bool {
	return p == c.realSrc || isWithin(c.realSrc, p)
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	info, err := in.Stat()
	if err != nil {
		return err
	}

	out, err := os.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, info.Mode().Perm())
	if err != nil {
		return err
	}

	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}

func isWithin(parent, child string) bool {
	rel, err := filepath.Rel(parent, child)
	if err != nil {
		return false
	}
	return rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator)) && rel != "."
}
