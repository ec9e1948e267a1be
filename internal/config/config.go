package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml"
	"gopkg.in/yaml.v3"
)

// Config represents an overload.yaml (or overload.toml) file.
type Config struct {
	Matcher     MatcherConfig     `yaml:"matcher" toml:"matcher"`
	Diagnostics DiagnosticsConfig `yaml:"diagnostics" toml:"diagnostics"`

	// Aliases binds extra annotation names to existing annotations,
	// e.g. "Numbers: Sequence[int | float]".
	Aliases map[string]string `yaml:"aliases,omitempty" toml:"aliases,omitempty"`

	Protos ProtosConfig `yaml:"protos" toml:"protos"`
	Vet    VetConfig    `yaml:"vet" toml:"vet"`
}

type MatcherConfig struct {
	// SampleLimit bounds how many container elements are checked. 0 means all.
	SampleLimit int `yaml:"sample_limit,omitempty" toml:"sample_limit,omitempty"`

	// NestedContainers lets nested containers match an element spec
	// recursively. Defaults to true.
	NestedContainers *bool `yaml:"nested_containers,omitempty" toml:"nested_containers,omitempty"`
}

type DiagnosticsConfig struct {
	// Collisions is "warn" (default) or "silent".
	Collisions string `yaml:"collisions,omitempty" toml:"collisions,omitempty"`

	// Color is "auto" (default), "always" or "never".
	Color string `yaml:"color,omitempty" toml:"color,omitempty"`
}

// ProtosConfig lists .proto schemas whose messages become annotation names.
type ProtosConfig struct {
	ImportPaths []string `yaml:"import_paths,omitempty" toml:"import_paths,omitempty"`
	Files       []string `yaml:"files,omitempty" toml:"files,omitempty"`
}

// VetConfig configures the static overload checker.
type VetConfig struct {
	// Separator splits Base<sep>N function names. Defaults to "__".
	Separator string `yaml:"separator,omitempty" toml:"separator,omitempty"`

	// Patterns are go/packages patterns to check. Defaults to "./...".
	Patterns []string `yaml:"patterns,omitempty" toml:"patterns,omitempty"`
}

// Default returns the configuration used when no file is present.
func Default() *Config {
	cfg := &Config{}
	cfg.setDefaults()
	return cfg
}

// LoadConfig reads and parses a configuration file.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config %s: %w", path, err)
	}
	return ParseConfig(data, path)
}

// ParseConfig parses configuration content from bytes. The format is
// chosen by the path extension: .toml is TOML, anything else YAML.
// Relative proto paths are resolved against the directory of path.
func ParseConfig(data []byte, path string) (*Config, error) {
	var cfg Config
	if strings.EqualFold(filepath.Ext(path), ".toml") {
		if err := toml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("parsing %s: %w", path, err)
		}
	} else {
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("parsing %s: %w", path, err)
		}
	}
	if err := cfg.validate(path); err != nil {
		return nil, err
	}
	cfg.setDefaults()
	cfg.resolvePaths(filepath.Dir(path))
	return &cfg, nil
}

// FindConfig searches for a configuration file starting from dir and walking
// up to parent directories. Returns an empty path and nil error if none exists.
func FindConfig(dir string) (string, error) {
	dir, err := filepath.Abs(dir)
	if err != nil {
		return "", fmt.Errorf("resolving directory: %w", err)
	}

	for {
		for _, name := range ConfigFileNames {
			candidate := filepath.Join(dir, name)
			if _, err := os.Stat(candidate); err == nil {
				return candidate, nil
			}
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			// Reached filesystem root
			return "", nil
		}
		dir = parent
	}
}

// validate checks the configuration for semantic errors.
func (c *Config) validate(path string) error {
	if c.Matcher.SampleLimit < 0 {
		return fmt.Errorf("%s: matcher.sample_limit must be >= 0, got %d", path, c.Matcher.SampleLimit)
	}

	switch c.Diagnostics.Collisions {
	case "", CollisionsWarn, CollisionsSilent:
	default:
		return fmt.Errorf("%s: diagnostics.collisions must be %q or %q, got %q",
			path, CollisionsWarn, CollisionsSilent, c.Diagnostics.Collisions)
	}

	switch c.Diagnostics.Color {
	case "", ColorAuto, ColorAlways, ColorNever:
	default:
		return fmt.Errorf("%s: diagnostics.color must be %q, %q or %q, got %q",
			path, ColorAuto, ColorAlways, ColorNever, c.Diagnostics.Color)
	}

	for name, target := range c.Aliases {
		if name == "" {
			return fmt.Errorf("%s: aliases: empty alias name", path)
		}
		if strings.TrimSpace(target) == "" {
			return fmt.Errorf("%s: aliases[%s]: target annotation is required", path, name)
		}
	}

	for i, f := range c.Protos.Files {
		if f == "" {
			return fmt.Errorf("%s: protos.files[%d]: empty path", path, i)
		}
		if !strings.HasSuffix(f, ".proto") {
			return fmt.Errorf("%s: protos.files[%d]: %q is not a .proto file", path, i, f)
		}
	}

	if strings.ContainsAny(c.Vet.Separator, " \t.") {
		return fmt.Errorf("%s: vet.separator %q cannot contain spaces or dots", path, c.Vet.Separator)
	}
	return nil
}

// setDefaults fills in default values for optional fields.
func (c *Config) setDefaults() {
	if c.Matcher.NestedContainers == nil {
		nested := true
		c.Matcher.NestedContainers = &nested
	}
	if c.Diagnostics.Collisions == "" {
		c.Diagnostics.Collisions = CollisionsWarn
	}
	if c.Diagnostics.Color == "" {
		c.Diagnostics.Color = ColorAuto
	}
	if c.Vet.Separator == "" {
		c.Vet.Separator = DefaultVetSeparator
	}
	if len(c.Vet.Patterns) == 0 {
		c.Vet.Patterns = []string{"./..."}
	}
}

func (c *Config) resolvePaths(base string) {
	abs := func(p string) string {
		if filepath.IsAbs(p) {
			return p
		}
		return filepath.Join(base, p)
	}
	for i, p := range c.Protos.ImportPaths {
		c.Protos.ImportPaths[i] = abs(p)
	}
	if len(c.Protos.ImportPaths) == 0 && len(c.Protos.Files) > 0 {
		c.Protos.ImportPaths = []string{base}
	}
}

// NestedContainersEnabled reports the effective nested_containers setting.
func (c *Config) NestedContainersEnabled() bool {
	return c.Matcher.NestedContainers == nil || *c.Matcher.NestedContainers
}

// CollisionsSilenced reports whether collision warnings are suppressed.
func (c *Config) CollisionsSilenced() bool {
	return c.Diagnostics.Collisions == CollisionsSilent
}
