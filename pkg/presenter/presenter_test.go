package presenter

import (
	"bytes"
	"errors"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNew(t *testing.T) {
	p := New()
	assert.Equal(t, os.Stdout, p.output)
	assert.Equal(t, os.Stderr, p.errorOutput)
	assert.False(t, p.quiet)
}

func TestDetectColorMode(t *testing.T) {
	tests := []struct {
		name     string
		noColor  string
		color    string
		expected ColorMode
	}{
		{"NO_COLOR set", "1", "", ColorNever},
		{"SKILLOPS_COLOR always", "", "always", ColorAlways},
		{"SKILLOPS_COLOR force", "", "force", ColorAlways},
		{"SKILLOPS_COLOR never", "", "never", ColorNever},
		{"SKILLOPS_COLOR off", "", "off", ColorNever},
		{"default", "", "", ColorAuto},
		{"unknown value", "", "sparkly", ColorAuto},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("NO_COLOR", tt.noColor)
			t.Setenv("SKILLOPS_COLOR", tt.color)
			if tt.noColor == "" {
				os.Unsetenv("NO_COLOR")
			}

			assert.Equal(t, tt.expected, detectColorMode())
		})
	}
}

func TestError(t *testing.T) {
	var errOut bytes.Buffer
	p := NewWithOptions(nil, &errOut, ColorNever)

	p.Error(errors.New("clone failed"), "updating adk_developer")
	assert.Equal(t, "[ERROR] updating adk_developer: clone failed\n", errOut.String())

	errOut.Reset()
	p.Error(errors.New("boom"), "")
	assert.Equal(t, "[ERROR] boom\n", errOut.String())

	errOut.Reset()
	p.Error(nil, "ignored")
	assert.Empty(t, errOut.String())
}

func TestMessages(t *testing.T) {
	var out bytes.Buffer
	p := NewWithOptions(&out, nil, ColorNever)

	p.Section("Update")
	p.Success("synced docs")
	p.Warning("cache is stale")
	p.Info("done")

	assert.Equal(t, "Update\n------\n✓ synced docs\n⚠ cache is stale\ndone\n", out.String())
}

func TestQuiet(t *testing.T) {
	var out, errOut bytes.Buffer
	p := NewWithOptions(&out, &errOut, ColorNever)
	p.SetQuiet(true)

	p.Success("x")
	p.Warning("x")
	p.Info("x")
	p.Section("x")
	p.Diff("+x\n")
	assert.Empty(t, out.String())

	p.Error(errors.New("still shown"), "")
	assert.Contains(t, errOut.String(), "still shown")
}

func TestDiff(t *testing.T) {
	var out bytes.Buffer
	p := NewWithOptions(&out, nil, ColorNever)

	diff := "--- a/.env\n+++ b/.env\n@@ -0,0 +1,1 @@\n+KEY=true\n"
	p.Diff(diff)
	assert.Equal(t, diff, out.String())

	out.Reset()
	p.Diff("+no newline")
	assert.Equal(t, "+no newline\n", out.String())
}
