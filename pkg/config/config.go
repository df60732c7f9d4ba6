// Package config loads skillops settings through viper: where reference
// repositories are cached, which skills are maintained and how each one maps
// cache subtrees onto its skill directory, and the fixed inputs of agent
// preparation.
package config

import (
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/mitchellh/mapstructure"
	"github.com/pkg/errors"
	"github.com/spf13/viper"
)

// Config is the complete skillops configuration.
type Config struct {
	LogLevel   string                 `mapstructure:"log_level" yaml:"log_level"`
	LogFormat  string                 `mapstructure:"log_format" yaml:"log_format"`
	CacheRoot  string                 `mapstructure:"cache_root" yaml:"cache_root"`
	SkillsRoot string                 `mapstructure:"skills_root" yaml:"skills_root"`
	Sync       SyncConfig             `mapstructure:"sync" yaml:"sync"`
	Skills     map[string]SkillConfig `mapstructure:"-" yaml:"skills"`
	Prepare    PrepareConfig          `mapstructure:"prepare" yaml:"prepare"`
	Suggest    SuggestConfig          `mapstructure:"suggest" yaml:"suggest"`
	Tracing    TracingConfig          `mapstructure:"tracing" yaml:"tracing"`
}

// SyncConfig holds settings shared by every directory sync.
type SyncConfig struct {
	// Ignore lists glob patterns never copied from a reference repository.
	Ignore []string `mapstructure:"ignore" yaml:"ignore"`
}

// SkillConfig describes one maintained skill.
type SkillConfig struct {
	RepoURL   string    `mapstructure:"repo_url" yaml:"repo_url"`
	CacheName string    `mapstructure:"cache_name" yaml:"cache_name"`
	Dir       string    `mapstructure:"dir" yaml:"dir,omitempty"`
	Mappings  []Mapping `mapstructure:"mappings" yaml:"mappings"`
}

// Mapping copies Source (relative to the repository cache) to Dest (relative
// to the skill directory).
type Mapping struct {
	Source string `mapstructure:"source" yaml:"source"`
	Dest   string `mapstructure:"dest" yaml:"dest"`
	// Optional mappings are skipped without a warning when Source is absent.
	Optional bool `mapstructure:"optional" yaml:"optional,omitempty"`
}

// PrepareConfig holds the fixed file names and entries merged by `skillops prepare`.
type PrepareConfig struct {
	IgnoreFile          string   `mapstructure:"ignore_file" yaml:"ignore_file"`
	BaselineIgnores     []string `mapstructure:"baseline_ignores" yaml:"baseline_ignores"`
	RequirementsFile    string   `mapstructure:"requirements_file" yaml:"requirements_file"`
	Dependency          string   `mapstructure:"dependency" yaml:"dependency"`
	DependencySignature []string `mapstructure:"dependency_signature" yaml:"dependency_signature"`
	EnvFile             string   `mapstructure:"env_file" yaml:"env_file"`
	TelemetryVars       []EnvVar `mapstructure:"telemetry_vars" yaml:"telemetry_vars"`
}

// EnvVar is a required KEY=VALUE pair.
type EnvVar struct {
	Key   string `mapstructure:"key" yaml:"key"`
	Value string `mapstructure:"value" yaml:"value"`
}

// SuggestConfig configures the hosted-model exclusion suggester.
type SuggestConfig struct {
	Enabled  bool   `mapstructure:"enabled" yaml:"enabled"`
	Project  string `mapstructure:"project" yaml:"project,omitempty"`
	Location string `mapstructure:"location" yaml:"location"`
	Model    string `mapstructure:"model" yaml:"model"`
	Retry    Retry  `mapstructure:"retry" yaml:"retry"`
}

// Retry configures retries of the model call. Zero attempts means a single call.
type Retry struct {
	Attempts     int    `mapstructure:"attempts" yaml:"attempts"`
	InitialDelay int    `mapstructure:"initial_delay" yaml:"initial_delay"` // milliseconds
	MaxDelay     int    `mapstructure:"max_delay" yaml:"max_delay"`         // milliseconds
	BackoffType  string `mapstructure:"backoff_type" yaml:"backoff_type"`
}

// TracingConfig toggles OpenTelemetry export.
type TracingConfig struct {
	Enabled bool    `mapstructure:"enabled" yaml:"enabled"`
	Sampler string  `mapstructure:"sampler" yaml:"sampler"`
	Ratio   float64 `mapstructure:"ratio" yaml:"ratio"`
}

// Load decodes v on top of the built-in defaults, expands paths and validates
// the result.
func Load(v *viper.Viper) (*Config, error) {
	SetDefaults(v)

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, errors.Wrap(err, "failed to unmarshal configuration")
	}

	skills, err := mergeSkills(DefaultSkills(), v.GetStringMap("skills"))
	if err != nil {
		return nil, err
	}
	cfg.Skills = skills

	cfg.expand()

	if err := cfg.Validate(); err != nil {
		return nil, errors.Wrap(err, "invalid configuration")
	}

	return &cfg, nil
}

// mergeSkills overlays user-provided skill entries on the built-in ones. A
// user entry only replaces the fields it sets; a mappings list replaces the
// built-in list wholesale.
func mergeSkills(base map[string]SkillConfig, overrides map[string]any) (map[string]SkillConfig, error) {
	for name, raw := range overrides {
		fields, ok := raw.(map[string]any)
		if !ok {
			return nil, errors.Errorf("skills.%s must be a mapping", name)
		}

		skill := base[name]
		if _, ok := fields["mappings"]; ok {
			skill.Mappings = nil
		}

		decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
			Result:           &skill,
			WeaklyTypedInput: true,
			ZeroFields:       false,
		})
		if err != nil {
			return nil, errors.Wrap(err, "failed to create skill decoder")
		}
		if err := decoder.Decode(fields); err != nil {
			return nil, errors.Wrapf(err, "failed to decode skills.%s", name)
		}

		base[name] = skill
	}
	return base, nil
}

func (c *Config) expand() {
	c.CacheRoot = ExpandPath(c.CacheRoot)
	c.SkillsRoot = ExpandPath(c.SkillsRoot)
	for name, skill := range c.Skills {
		if skill.CacheName == "" {
			skill.CacheName = name
		}
		skill.RepoURL = os.ExpandEnv(skill.RepoURL)
		skill.Dir = ExpandPath(skill.Dir)
		c.Skills[name] = skill
	}
}

// ExpandPath expands environment variables and a leading "~".
func ExpandPath(p string) string {
	p = os.ExpandEnv(p)
	if p == "~" || strings.HasPrefix(p, "~/") {
		if home, err := os.UserHomeDir(); err == nil {
			p = filepath.Join(home, p[1:])
		}
	}
	return p
}

// Validate checks the configuration for errors.
func (c *Config) Validate() error {
	if c.CacheRoot == "" {
		return errors.New("cache_root is required")
	}

	for name, skill := range c.Skills {
		if skill.RepoURL == "" {
			return errors.Errorf("skills.%s.repo_url is required", name)
		}
		if !isLocalName(skill.CacheName) {
			return errors.Errorf("skills.%s.cache_name must be a single path element: %q", name, skill.CacheName)
		}
		if skill.Dir == "" && c.SkillsRoot == "" {
			return errors.Errorf("skills.%s.dir is required when skills_root is empty", name)
		}
		if len(skill.Mappings) == 0 {
			return errors.Errorf("skills.%s has no mappings", name)
		}
		for i, m := range skill.Mappings {
			if !isRelativeInside(m.Source) {
				return errors.Errorf("skills.%s.mappings[%d].source must be a relative path inside the repository: %q", name, i, m.Source)
			}
			if !isRelativeInside(m.Dest) {
				return errors.Errorf("skills.%s.mappings[%d].dest must be a relative path inside the skill directory: %q", name, i, m.Dest)
			}
		}
	}

	switch c.Tracing.Sampler {
	case "", "always", "never", "ratio":
	default:
		return errors.Errorf("invalid tracing.sampler %q (must be always, never, or ratio)", c.Tracing.Sampler)
	}

	if c.Suggest.Retry.Attempts < 0 {
		return errors.New("suggest.retry.attempts must not be negative")
	}

	return nil
}

// isRelativeInside rejects empty, absolute and parent-escaping paths. Mapping
// destinations are removed before every sync, so they must never resolve to
// the skill directory itself or outside it.
func isRelativeInside(p string) bool {
	if p == "" || filepath.IsAbs(p) {
		return false
	}
	clean := filepath.Clean(filepath.FromSlash(p))
	return clean != "." && clean != ".." && !strings.HasPrefix(clean, ".."+string(filepath.Separator))
}

func isLocalName(name string) bool {
	return name != "" && name != "." && name != ".." && !strings.ContainsAny(name, `/\`)
}

// SkillNames returns the configured skill names in sorted order.
func (c *Config) SkillNames() []string {
	names := make([]string, 0, len(c.Skills))
	for name := range c.Skills {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// SkillDir returns the directory a skill is synchronized into.
func (c *Config) SkillDir(name string) string {
	if dir := c.Skills[name].Dir; dir != "" {
		return dir
	}
	return filepath.Join(c.SkillsRoot, name)
}

// CachePath returns the repository cache directory of a skill.
func (c *Config) CachePath(name string) string {
	skill := c.Skills[name]
	cacheName := skill.CacheName
	if cacheName == "" {
		cacheName = name
	}
	return filepath.Join(c.CacheRoot, cacheName)
}
