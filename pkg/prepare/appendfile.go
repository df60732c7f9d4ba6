package prepare

import (
	"os"
	"strings"

	"github.com/aymanbagabas/go-udiff"
	"github.com/pkg/errors"
)

// readOptional returns the file content, or "" when it does not exist.
func readOptional(path string) (string, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return "", nil
	}
	if err != nil {
		return "", errors.Wrapf(err, "failed to read %s", path)
	}
	return string(data), nil
}

// appendSuffix builds the text appended after existing: a newline if
// existing is unterminated, a blank separator line if existing has content,
// then the header comment and lines.
func appendSuffix(existing, header string, lines []string) string {
	var sb strings.Builder
	if existing != "" && !strings.HasSuffix(existing, "\n") {
		sb.WriteString("\n")
	}
	if strings.TrimSpace(existing) != "" {
		sb.WriteString("\n")
	}
	sb.WriteString(header)
	sb.WriteString("\n")
	for _, line := range lines {
		sb.WriteString(line)
		sb.WriteString("\n")
	}
	return sb.String()
}

// appendToFile appends suffix to path, creating it if needed, and returns the
// unified diff of the change. With dryRun the file is left untouched.
func appendToFile(path, existing, suffix string, dryRun bool) (string, error) {
	diff := udiff.Unified(path, path, existing, existing+suffix)
	if dryRun {
		return diff, nil
	}

	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_APPEND, 0o644)
	if err != nil {
		return "", errors.Wrapf(err, "failed to open %s", path)
	}
	if _, err := f.WriteString(suffix); err != nil {
		f.Close()
		return "", errors.Wrapf(err, "failed to append to %s", path)
	}
	if err := f.Close(); err != nil {
		return "", errors.Wrapf(err, "failed to close %s", path)
	}
	return diff, nil
}
