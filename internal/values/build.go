package values

import (
	"context"
	"fmt"

	"github.com/dshills/mentions/internal/autocomplete/trigger"
	"github.com/dshills/mentions/internal/config"
)

// Collect gathers the raw candidates for one trigger from every source it
// names, in order: inline values, scraped files, the label file, then the
// script.
func Collect(ctx context.Context, spec config.TriggerSpec) ([]string, error) {
	prefix, err := spec.PrefixRune()
	if err != nil {
		return nil, err
	}

	raw := append([]string(nil), spec.Values...)

	for _, path := range spec.Scrape {
		names, err := ScrapeFile(path, prefix)
		if err != nil {
			return nil, err
		}
		raw = append(raw, names...)
	}

	if spec.Labels != "" {
		store, err := OpenLabels(spec.Labels)
		if err != nil {
			return nil, err
		}
		raw = append(raw, store.Usernames()...)
	}

	if spec.Script != "" {
		names, err := NewScriptSource(spec.Script).Values(ctx, spec.Target)
		if err != nil {
			return nil, err
		}
		raw = append(raw, names...)
	}

	return raw, nil
}

// Build assembles a registry from the configured triggers.
func Build(ctx context.Context, cfg *config.Config) (*trigger.Registry, error) {
	configs := make([]trigger.Config, 0, len(cfg.Triggers))
	for _, spec := range cfg.Triggers {
		prefix, err := spec.PrefixRune()
		if err != nil {
			return nil, err
		}
		raw, err := Collect(ctx, spec)
		if err != nil {
			return nil, fmt.Errorf("trigger %s: %w", spec.Target, err)
		}
		configs = append(configs, trigger.Config{
			Prefix: prefix,
			Target: spec.Target,
			Values: trigger.NewValueSet(Normalize(prefix, raw)...),
		})
	}
	return trigger.NewRegistry(configs...)
}
