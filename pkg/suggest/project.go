package suggest

import (
	"context"
	"os"
	"os/exec"
	"strings"
)

// ProjectResolver finds the Google Cloud project to bill model calls to.
type ProjectResolver struct {
	Getenv func(string) string
	// Gcloud returns the output of `gcloud config get-value project`.
	Gcloud func(ctx context.Context) (string, error)
}

// NewProjectResolver returns a resolver reading the process environment and
// the local gcloud configuration.
func NewProjectResolver() *ProjectResolver {
	return &ProjectResolver{
		Getenv: os.Getenv,
		Gcloud: gcloudProject,
	}
}

// Resolve returns configured if set, then GOOGLE_CLOUD_PROJECT or
// GCLOUD_PROJECT, then the active gcloud project. It returns "" when none is
// available.
func (r *ProjectResolver) Resolve(ctx context.Context, configured string) string {
	if configured != "" {
		return configured
	}

	for _, key := range []string{"GOOGLE_CLOUD_PROJECT", "GCLOUD_PROJECT"} {
		if v := strings.TrimSpace(r.Getenv(key)); v != "" {
			return v
		}
	}

	if r.Gcloud == nil {
		return ""
	}
	out, err := r.Gcloud(ctx)
	if err != nil {
		return ""
	}
	project := strings.TrimSpace(out)
	if project == "(unset)" {
		return ""
	}
	return project
}

func gcloudProject(ctx context.Context) (string, error) {
	out, err := exec.CommandContext(ctx, "gcloud", "config", "get-value", "project").Output()
	if err != nil {
		return "", err
	}
	return string(out), nil
}
