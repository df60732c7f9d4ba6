package suggest

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/genai"
)

type fakeModels struct {
	calls   int
	prompts []string
	model   string
	replies []*genai.GenerateContentResponse
	errs    []error
}

func (f *fakeModels) GenerateContent(_ context.Context, model string, contents []*genai.Content, _ *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error) {
	i := f.calls
	f.calls++
	f.model = model
	for _, c := range contents {
		for _, p := range c.Parts {
			f.prompts = append(f.prompts, p.Text)
		}
	}
	var err error
	if i < len(f.errs) {
		err = f.errs[i]
	}
	var resp *genai.GenerateContentResponse
	if i < len(f.replies) {
		resp = f.replies[i]
	}
	return resp, err
}

func reply(parts ...*genai.Part) *genai.GenerateContentResponse {
	return &genai.GenerateContentResponse{
		Candidates: []*genai.Candidate{{Content: &genai.Content{Parts: parts}}},
	}
}

func TestVertexSuggest(t *testing.T) {
	models := &fakeModels{replies: []*genai.GenerateContentResponse{
		reply(
			&genai.Part{Text: "thinking about venvs", Thought: true},
			&genai.Part{Text: "```\n.venv\n"},
			&genai.Part{Text: "data/\n```\n"},
		),
	}}
	v := &Vertex{models: models, cfg: VertexConfig{Project: "p", Model: "gemini-2.5-flash"}}

	patterns, err := v.Suggest(context.Background(), []string{".venv", "agent.py", "data"})
	require.NoError(t, err)

	assert.Equal(t, []string{".venv", "data/"}, patterns)
	assert.Equal(t, "gemini-2.5-flash", models.model)
	require.Len(t, models.prompts, 1)
	assert.Contains(t, models.prompts[0], `[".venv","agent.py","data"]`)
	assert.Contains(t, models.prompts[0], "256MB source limit")
}

func TestVertexSuggest_Errors(t *testing.T) {
	tests := []struct {
		name    string
		models  *fakeModels
		wantErr string
	}{
		{"api error", &fakeModels{errs: []error{errors.New("permission denied")}}, "permission denied"},
		{"nil response", &fakeModels{}, "empty response from model"},
		{"no candidates", &fakeModels{replies: []*genai.GenerateContentResponse{{}}}, "empty response from model"},
		{"only thoughts", &fakeModels{replies: []*genai.GenerateContentResponse{reply(&genai.Part{Text: "hmm", Thought: true})}}, "no text in model response"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := &Vertex{models: tt.models, cfg: VertexConfig{Project: "p", Model: "m"}}
			_, err := v.Suggest(context.Background(), []string{"a"})
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
			assert.Equal(t, 1, tt.models.calls)
		})
	}
}

func TestVertexSuggest_RetriesTransientErrors(t *testing.T) {
	models := &fakeModels{
		errs:    []error{errors.New("503 service unavailable"), nil},
		replies: []*genai.GenerateContentResponse{nil, reply(&genai.Part{Text: "venv"})},
	}
	v := &Vertex{models: models, cfg: VertexConfig{
		Project: "p",
		Model:   "m",
		Retry:   RetryConfig{Attempts: 3, InitialDelay: time.Millisecond, MaxDelay: time.Millisecond, BackoffType: "fixed"},
	}}

	patterns, err := v.Suggest(context.Background(), []string{"venv"})
	require.NoError(t, err)
	assert.Equal(t, []string{"venv"}, patterns)
	assert.Equal(t, 2, models.calls)
}

func TestVertexSuggest_DoesNotRetryPermanentErrors(t *testing.T) {
	models := &fakeModels{errs: []error{errors.New("permission denied"), nil}}
	v := &Vertex{models: models, cfg: VertexConfig{
		Project: "p",
		Model:   "m",
		Retry:   RetryConfig{Attempts: 3, InitialDelay: time.Millisecond, MaxDelay: time.Millisecond},
	}}

	_, err := v.Suggest(context.Background(), []string{"venv"})
	require.Error(t, err)
	assert.Equal(t, 1, models.calls)
}

func TestNewVertex_RequiresProject(t *testing.T) {
	_, err := NewVertex(context.Background(), VertexConfig{Location: "us-central1", Model: "m"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "requires a project")
}

func TestIsRetryableError(t *testing.T) {
	assert.False(t, isRetryableError(nil))
	assert.False(t, isRetryableError(context.Canceled))
	assert.True(t, isRetryableError(errors.New("Error 429: Too Many Requests")))
	assert.True(t, isRetryableError(errors.New("RESOURCE_EXHAUSTED: quota")))
	assert.False(t, isRetryableError(errors.New("invalid argument")))
}
