package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"unicode"
	"unicode/utf8"

	"github.com/pelletier/go-toml/v2"

	"github.com/dshills/mentions/internal/autocomplete/trigger"
	"github.com/dshills/mentions/internal/config/loader"
	"github.com/dshills/mentions/internal/logging"
	"github.com/dshills/mentions/internal/renderer/core"
)

// EnvPrefix prefixes every environment override.
const EnvPrefix = "MENTIONS_"

// Config is the complete mentions configuration.
type Config struct {
	Logging  Logging       `toml:"logging"`
	Dropdown Dropdown      `toml:"dropdown"`
	Watch    Watch         `toml:"watch"`
	Triggers []TriggerSpec `toml:"triggers"`

	// Path is the file the configuration was read from, if any.
	Path string `toml:"-"`
}

// Logging configures the diagnostic log.
type Logging struct {
	// Level is debug, info, warn or error.
	Level string `toml:"level"`
	// File receives log lines. Empty discards them.
	File string `toml:"file"`
}

// Dropdown configures the completion list.
type Dropdown struct {
	// MaxItems is the number of rows shown before scrolling.
	MaxItems int `toml:"max_items"`
	// Border draws a frame around the list.
	Border bool `toml:"border"`
	// Highlight is the "#rrggbb" background of the highlighted row.
	Highlight string `toml:"highlight"`
}

// Watch configures value source reloading.
type Watch struct {
	Enabled    bool `toml:"enabled"`
	DebounceMS int  `toml:"debounce_ms"`
}

// TriggerSpec declares a trigger and where its values come from. Sources
// are combined in order: inline values, scraped files, label file, script.
type TriggerSpec struct {
	Prefix string   `toml:"prefix"`
	Target string   `toml:"target"`
	Values []string `toml:"values,omitempty"`
	Scrape []string `toml:"scrape,omitempty"`
	Labels string   `toml:"labels,omitempty"`
	Script string   `toml:"script,omitempty"`
}

// PrefixRune returns the trigger prefix as a rune.
func (t TriggerSpec) PrefixRune() (rune, error) {
	r, size := utf8.DecodeRuneInString(t.Prefix)
	if r == utf8.RuneError || size != len(t.Prefix) {
		return 0, fmt.Errorf("%w: %q", trigger.ErrInvalidPrefix, t.Prefix)
	}
	return r, nil
}

// HasFiles reports whether the spec reads any file source.
func (t TriggerSpec) HasFiles() bool {
	return len(t.Scrape) > 0 || t.Labels != "" || t.Script != ""
}

// Files returns every file the spec reads.
func (t TriggerSpec) Files() []string {
	files := append([]string(nil), t.Scrape...)
	if t.Labels != "" {
		files = append(files, t.Labels)
	}
	if t.Script != "" {
		files = append(files, t.Script)
	}
	return files
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Logging:  Logging{Level: "info"},
		Dropdown: Dropdown{MaxItems: 6, Border: true, Highlight: "#5f5fd7"},
		Watch:    Watch{Enabled: false, DebounceMS: 200},
		Triggers: []TriggerSpec{
			{Prefix: "~", Target: trigger.TargetGroups},
			{Prefix: "@", Target: trigger.TargetUsernames},
		},
	}
}

// DefaultPath returns the user config file location.
func DefaultPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return ""
	}
	return filepath.Join(dir, "mentions", "config.toml")
}

// LoadOption configures Load.
type LoadOption func(*loadOptions)

type loadOptions struct {
	fs       loader.FileSystem
	env      loader.Loader
	required bool
}

// WithFS reads files through fsys.
func WithFS(fsys loader.FileSystem) LoadOption {
	return func(o *loadOptions) { o.fs = fsys }
}

// WithEnv replaces the environment layer. Nil disables it.
func WithEnv(env loader.Loader) LoadOption {
	return func(o *loadOptions) { o.env = env }
}

// Required makes a missing file an error instead of falling back to
// defaults.
func Required() LoadOption {
	return func(o *loadOptions) { o.required = true }
}

// Load reads the configuration at path, applies the environment and
// validates the result. An empty path skips the file layer.
func Load(path string, opts ...LoadOption) (*Config, error) {
	o := loadOptions{
		fs:  loader.DefaultFS(),
		env: loader.NewEnvLoader(EnvPrefix),
	}
	for _, opt := range opts {
		opt(&o)
	}

	merged, err := toMap(Default())
	if err != nil {
		return nil, err
	}

	if path != "" {
		if o.required {
			if _, err := o.fs.Stat(path); err != nil {
				return nil, fmt.Errorf("%w: %s", ErrFileNotFound, path)
			}
		}
		file, err := loader.NewTOMLLoaderWithFS(o.fs, path).Load()
		if err != nil {
			return nil, err
		}
		merged = loader.DeepMerge(merged, file)
	}

	if o.env != nil {
		env, err := o.env.Load()
		if err != nil {
			return nil, fmt.Errorf("reading environment: %w", err)
		}
		merged = loader.DeepMerge(merged, env)
	}

	cfg, err := fromMap(merged)
	if err != nil {
		return nil, &ParseError{Path: path, Message: err.Error(), Err: err}
	}
	if path != "" {
		cfg.Path = path
		cfg.resolvePaths(filepath.Dir(path))
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// toMap and fromMap round-trip through TOML so the merge operates on the
// same shapes the file loader produces.
func toMap(cfg *Config) (map[string]any, error) {
	data, err := toml.Marshal(cfg)
	if err != nil {
		return nil, fmt.Errorf("encoding defaults: %w", err)
	}
	return loader.Parse("<defaults>", data)
}

func fromMap(m map[string]any) (*Config, error) {
	data, err := toml.Marshal(m)
	if err != nil {
		return nil, err
	}
	var cfg Config
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) resolvePaths(base string) {
	abs := func(p string) string {
		if p == "" || filepath.IsAbs(p) {
			return p
		}
		return filepath.Join(base, p)
	}
	for i := range c.Triggers {
		t := &c.Triggers[i]
		for j := range t.Scrape {
			t.Scrape[j] = abs(t.Scrape[j])
		}
		t.Labels = abs(t.Labels)
		t.Script = abs(t.Script)
	}
	c.Logging.File = abs(c.Logging.File)
}

// Validate checks the configuration and reports every problem found.
func (c *Config) Validate() error {
	var errs []error
	add := func(path, msg string, value any) {
		errs = append(errs, &ValidationError{Path: path, Message: msg, Value: value})
	}

	if !logging.ValidLevel(c.Logging.Level) {
		add("logging.level", "must be debug, info, warn or error", c.Logging.Level)
	}
	if c.Dropdown.MaxItems < 1 {
		add("dropdown.max_items", "must be at least 1", c.Dropdown.MaxItems)
	}
	if _, err := core.ColorFromHex(c.Dropdown.Highlight); err != nil {
		add("dropdown.highlight", "must be a #rrggbb color", c.Dropdown.Highlight)
	}
	if c.Watch.DebounceMS < 0 {
		add("watch.debounce_ms", "must not be negative", c.Watch.DebounceMS)
	}

	prefixes := make(map[rune]bool)
	targets := make(map[string]bool)
	for i, t := range c.Triggers {
		path := fmt.Sprintf("triggers[%d]", i)
		r, err := t.PrefixRune()
		switch {
		case err != nil:
			add(path+".prefix", "must be a single character", t.Prefix)
		case unicode.IsSpace(r) || !unicode.IsPrint(r):
			add(path+".prefix", "must be a printable non-space character", t.Prefix)
		case prefixes[r]:
			add(path+".prefix", "duplicate prefix", t.Prefix)
		default:
			prefixes[r] = true
		}

		switch {
		case t.Target == "":
			add(path+".target", "must not be empty", t.Target)
		case targets[t.Target]:
			add(path+".target", "duplicate target", t.Target)
		default:
			targets[t.Target] = true
		}
	}

	return errors.Join(errs...)
}
