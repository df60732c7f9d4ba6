package config

import "github.com/spf13/viper"

// Baseline exclusions written to the Agent Engine ignore file.
var defaultBaselineIgnores = []string{
	"__pycache__", "*.pyc", ".git", ".venv", "deploy", ".ds_store",
	".terraform", ".terraform.lock.hcl", "venv", "env", ".idea", ".vscode",
	"*.zip", "*.pkl", "schema.json",
}

// SetDefaults registers every default except skills, which are merged
// separately in Load.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("log_level", "warn")
	v.SetDefault("log_format", "fmt")
	v.SetDefault("cache_root", "~/.gemini/jetski/cache/repos")
	v.SetDefault("skills_root", "~/.gemini/jetski/skills")

	v.SetDefault("sync.ignore", []string{"node_modules", ".git", "__pycache__", ".DS_Store"})

	v.SetDefault("prepare.ignore_file", ".ae_ignore")
	v.SetDefault("prepare.baseline_ignores", defaultBaselineIgnores)
	v.SetDefault("prepare.requirements_file", "requirements.txt")
	v.SetDefault("prepare.dependency", "google-cloud-aiplatform[agent_engines,adk]")
	v.SetDefault("prepare.dependency_signature", []string{"google-cloud-aiplatform", "agent_engines"})
	v.SetDefault("prepare.env_file", ".env")
	v.SetDefault("prepare.telemetry_vars", []map[string]any{
		{"key": "GOOGLE_CLOUD_AGENT_ENGINE_ENABLE_TELEMETRY", "value": "true"},
		{"key": "OTEL_INSTRUMENTATION_GENAI_CAPTURE_MESSAGE_CONTENT", "value": "true"},
	})

	v.SetDefault("suggest.enabled", true)
	v.SetDefault("suggest.location", "us-central1")
	v.SetDefault("suggest.model", "gemini-2.5-flash")
	v.SetDefault("suggest.retry.attempts", 0)
	v.SetDefault("suggest.retry.initial_delay", 1000)
	v.SetDefault("suggest.retry.max_delay", 10000)
	v.SetDefault("suggest.retry.backoff_type", "exponential")

	v.SetDefault("tracing.enabled", false)
	v.SetDefault("tracing.sampler", "always")
	v.SetDefault("tracing.ratio", 1.0)
}

// DefaultSkills returns the built-in skill definitions. The returned map is
// freshly allocated on every call.
func DefaultSkills() map[string]SkillConfig {
	return map[string]SkillConfig{
		"adk_developer": {
			RepoURL:   "https://github.com/google/adk-python.git",
			CacheName: "adk",
			Mappings: []Mapping{
				{Source: "contributing/samples", Dest: "examples"},
				{Source: "docs", Dest: "docs", Optional: true},
			},
		},
		"a2ui_developer": {
			RepoURL:   "https://github.com/google/A2UI.git",
			CacheName: "a2ui",
			Mappings: []Mapping{
				{Source: "specification", Dest: "specification"},
				{Source: "docs", Dest: "docs"},
				{Source: "renderers", Dest: "renderers"},
				{Source: "tools", Dest: "tools"},
				{Source: "samples/agent/adk/rizzcharts", Dest: "examples/agent/rizzcharts"},
				{Source: "samples/agent/adk/contact_lookup", Dest: "examples/agent/contact_lookup"},
				{Source: "samples/client/lit/shell", Dest: "examples/client/generic_shell"},
			},
		},
	}
}
