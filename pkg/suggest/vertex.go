package suggest

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/avast/retry-go/v4"
	"github.com/pkg/errors"
	"google.golang.org/genai"

	"github.com/jingkaihe/skillops/pkg/logger"
)

const promptTemplate = `You are an expert in Python and Docker deployments. I am deploying a Python agent to Vertex AI Agent Engine.
There is a 256MB source limit. I need to create a .ae_ignore file (similar to .dockerignore).

Here is the list of files and directories in my root:
%s

Identify specific file or directory names from this list that should likely be EXCLUDED.
Common candidates: venvs, git folders, test caches, deployment configs, large data files, temp files.
Retain application code, requirements.txt, and strict config files.

Return ONLY a raw list of names to ignore, one per line. No markdown formatting.`

// RetryConfig controls retries of the model call. Zero attempts means a
// single call.
type RetryConfig struct {
	Attempts     int
	InitialDelay time.Duration
	MaxDelay     time.Duration
	// BackoffType is "fixed" or "exponential".
	BackoffType string
}

// VertexConfig selects the Vertex AI project, region and model.
type VertexConfig struct {
	Project  string
	Location string
	Model    string
	Retry    RetryConfig
}

// contentGenerator is the part of genai.Models the suggester calls.
type contentGenerator interface {
	GenerateContent(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)
}

// Vertex suggests exclusions with a Gemini model on Vertex AI.
type Vertex struct {
	models contentGenerator
	cfg    VertexConfig
}

// NewVertex creates a Vertex AI client using application default credentials.
func NewVertex(ctx context.Context, cfg VertexConfig) (*Vertex, error) {
	if cfg.Project == "" {
		return nil, errors.New("vertex suggester requires a project")
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		Backend:  genai.BackendVertexAI,
		Project:  cfg.Project,
		Location: cfg.Location,
	})
	if err != nil {
		return nil, errors.Wrap(err, "failed to create Google GenAI client")
	}

	return &Vertex{models: client.Models, cfg: cfg}, nil
}

// Suggest sends the listing to the model and parses its reply.
func (v *Vertex) Suggest(ctx context.Context, entries []string) ([]string, error) {
	listing, err := json.Marshal(entries)
	if err != nil {
		return nil, errors.Wrap(err, "failed to encode directory listing")
	}
	prompt := fmt.Sprintf(promptTemplate, listing)

	logger.G(ctx).WithField("project", v.cfg.Project).WithField("model", v.cfg.Model).Info("requesting exclusion suggestions")

	var text string
	err = v.withRetry(ctx, func() error {
		resp, err := v.models.GenerateContent(ctx, v.cfg.Model, genai.Text(prompt), nil)
		if err != nil {
			return errors.Wrap(err, "generate content failed")
		}
		text, err = responseText(resp)
		return err
	})
	if err != nil {
		return nil, err
	}

	return ParseSuggestions(text), nil
}

func responseText(resp *genai.GenerateContentResponse) (string, error) {
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return "", errors.New("empty response from model")
	}

	var sb strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if part == nil || part.Thought {
			continue
		}
		sb.WriteString(part.Text)
	}
	if strings.TrimSpace(sb.String()) == "" {
		return "", errors.New("no text in model response")
	}
	return sb.String(), nil
}

func (v *Vertex) withRetry(ctx context.Context, operation func() error) error {
	rc := v.cfg.Retry
	if rc.Attempts <= 1 {
		return operation()
	}

	var delayType retry.DelayTypeFunc = retry.BackOffDelay
	if rc.BackoffType == "fixed" {
		delayType = retry.FixedDelay
	}

	return retry.Do(
		operation,
		retry.RetryIf(isRetryableError),
		retry.Attempts(uint(rc.Attempts)),
		retry.Delay(rc.InitialDelay),
		retry.MaxDelay(rc.MaxDelay),
		retry.DelayType(delayType),
		retry.LastErrorOnly(true),
		retry.Context(ctx),
		retry.OnRetry(func(n uint, err error) {
			logger.G(ctx).WithError(err).WithField("attempt", n+1).Warn("retrying exclusion suggestion request")
		}),
	)
}

func isRetryableError(err error) bool {
	if err == nil || errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}

	msg := strings.ToLower(err.Error())
	for _, pattern := range []string{
		"connection refused",
		"connection reset",
		"timeout",
		"temporary failure",
		"service unavailable",
		"internal error",
		"rate limit",
		"too many requests",
		"resource_exhausted",
	} {
		if strings.Contains(msg, pattern) {
			return true
		}
	}
	return false
}
