// Package trigger defines which prefix characters start an autocomplete
// session and which candidate values each one completes against.
package trigger

import (
	"errors"
	"fmt"
	"unicode"
)

// Registry errors
var (
	ErrInvalidPrefix   = errors.New("trigger prefix must be a single non-space character")
	ErrEmptyTarget     = errors.New("trigger target must not be empty")
	ErrDuplicatePrefix = errors.New("duplicate trigger prefix")
	ErrDuplicateTarget = errors.New("duplicate trigger target")
)

// Well-known targets.
const (
	TargetGroups    = "groups"
	TargetUsernames = "usernames"
)

// Config maps a prefix character to a target name and its value set.
// A Config is immutable once it is part of a Registry.
type Config struct {
	// Prefix is the character that begins a query, e.g. '~' or '@'.
	Prefix rune

	// Target is the completion category, e.g. "groups".
	Target string

	// Values holds the candidates. Nil behaves as an empty set.
	Values *ValueSet
}

// Validate checks that the config can be registered.
func (c Config) Validate() error {
	if c.Prefix == 0 || unicode.IsSpace(c.Prefix) || !unicode.IsPrint(c.Prefix) {
		return fmt.Errorf("%w: %q", ErrInvalidPrefix, c.Prefix)
	}
	if c.Target == "" {
		return ErrEmptyTarget
	}
	return nil
}

// Registry is an ordered, read-only collection of trigger configs.
// It is built once per page load and shared by every field.
type Registry struct {
	configs  []Config
	byPrefix map[rune]int
	byTarget map[string]int
}

// NewRegistry validates the configs and builds a registry.
// Registration order is preserved; it is the order sessions are processed.
func NewRegistry(configs ...Config) (*Registry, error) {
	r := &Registry{
		configs:  make([]Config, 0, len(configs)),
		byPrefix: make(map[rune]int, len(configs)),
		byTarget: make(map[string]int, len(configs)),
	}

	for _, c := range configs {
		if err := c.Validate(); err != nil {
			return nil, err
		}
		if _, ok := r.byPrefix[c.Prefix]; ok {
			return nil, fmt.Errorf("%w: %q", ErrDuplicatePrefix, c.Prefix)
		}
		if _, ok := r.byTarget[c.Target]; ok {
			return nil, fmt.Errorf("%w: %s", ErrDuplicateTarget, c.Target)
		}
		if c.Values == nil {
			c.Values = NewValueSet()
		}
		r.byPrefix[c.Prefix] = len(r.configs)
		r.byTarget[c.Target] = len(r.configs)
		r.configs = append(r.configs, c)
	}

	return r, nil
}

// MustRegistry is like NewRegistry but panics on error.
func MustRegistry(configs ...Config) *Registry {
	r, err := NewRegistry(configs...)
	if err != nil {
		panic(err)
	}
	return r
}

// Configs returns the registered configs in registration order.
func (r *Registry) Configs() []Config {
	if r == nil {
		return nil
	}
	out := make([]Config, len(r.configs))
	copy(out, r.configs)
	return out
}

// Len returns the number of registered triggers.
func (r *Registry) Len() int {
	if r == nil {
		return 0
	}
	return len(r.configs)
}

// ByPrefix returns the config whose prefix is p.
func (r *Registry) ByPrefix(p rune) (Config, bool) {
	if r == nil {
		return Config{}, false
	}
	i, ok := r.byPrefix[p]
	if !ok {
		return Config{}, false
	}
	return r.configs[i], true
}

// ByTarget returns the config for the named target.
func (r *Registry) ByTarget(target string) (Config, bool) {
	if r == nil {
		return Config{}, false
	}
	i, ok := r.byTarget[target]
	if !ok {
		return Config{}, false
	}
	return r.configs[i], true
}

// IsPrefix returns true if p is any registered trigger prefix.
func (r *Registry) IsPrefix(p rune) bool {
	_, ok := r.ByPrefix(p)
	return ok
}
