package cli

import (
	"fmt"
	"os"
	"sort"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// configField decodes one config file value into a GenerateConfig.
type configField func(cfg *GenerateConfig, value any) error

// configFields is keyed by normalizeKey so "dry-run", "dry_run" and "dryRun"
// all address the same field.
var configFields = map[string]configField{
	"input":       stringsField(func(c *GenerateConfig) *[]string { return &c.Inputs }),
	"inputs":      stringsField(func(c *GenerateConfig) *[]string { return &c.Inputs }),
	"lang":        stringField(func(c *GenerateConfig) *string { return &c.Lang }),
	"out":         stringField(func(c *GenerateConfig) *string { return &c.Out }),
	"projectname": stringField(func(c *GenerateConfig) *string { return &c.ProjectName }),
	"workers":     intField(func(c *GenerateConfig) *int { return &c.Workers }),
	"validate":    boolField(func(c *GenerateConfig) *bool { return &c.Validate }),
	"strict":      boolField(func(c *GenerateConfig) *bool { return &c.Strict }),
	"dryrun":      boolField(func(c *GenerateConfig) *bool { return &c.DryRun }),
	"force":       boolField(func(c *GenerateConfig) *bool { return &c.Force }),
	"verbose":     boolField(func(c *GenerateConfig) *bool { return &c.Verbose }),
}

// applyGenerateConfigFromFile overlays the keys of a YAML or JSON config file
// onto cfg. Keys are applied in sorted order so the first reported error is
// stable.
func applyGenerateConfigFromFile(cfg *GenerateConfig, path string) error {
	raw, err := readConfigFile(path)
	if err != nil {
		return err
	}
	keys := make([]string, 0, len(raw))
	for k := range raw {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, key := range keys {
		field, ok := configFields[normalizeKey(key)]
		if !ok {
			return newUsageError(fmt.Sprintf("config file %q: unknown field %q", path, key))
		}
		if err := field(cfg, raw[key]); err != nil {
			return newUsageError(fmt.Sprintf("config field %q: %v", key, err))
		}
	}
	return nil
}

func readConfigFile(path string) (map[string]any, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, newUsageError(fmt.Sprintf("read config file %q: %v", path, err))
	}
	var raw map[string]any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, newUsageError(fmt.Sprintf("parse config file %q: %v", path, err))
	}
	return raw, nil
}

func normalizeKey(raw string) string {
	return strings.NewReplacer("-", "", "_", "").Replace(strings.ToLower(strings.TrimSpace(raw)))
}

func stringField(ptr func(*GenerateConfig) *string) configField {
	return func(cfg *GenerateConfig, value any) (err error) {
		*ptr(cfg), err = valueAsString(value)
		return err
	}
}

func stringsField(ptr func(*GenerateConfig) *[]string) configField {
	return func(cfg *GenerateConfig, value any) (err error) {
		*ptr(cfg), err = valueAsStringSlice(value)
		return err
	}
}

func intField(ptr func(*GenerateConfig) *int) configField {
	return func(cfg *GenerateConfig, value any) (err error) {
		*ptr(cfg), err = valueAsInt(value)
		return err
	}
}

func boolField(ptr func(*GenerateConfig) *bool) configField {
	return func(cfg *GenerateConfig, value any) (err error) {
		*ptr(cfg), err = valueAsBool(value)
		return err
	}
}

func valueAsString(v any) (string, error) {
	switch val := v.(type) {
	case nil:
		return "", nil
	case string:
		return strings.TrimSpace(val), nil
	}
	return "", fmt.Errorf("expected string, got %T", v)
}

// valueAsStringSlice accepts a list or a comma-separated string.
func valueAsStringSlice(v any) ([]string, error) {
	switch val := v.(type) {
	case nil:
		return nil, nil
	case string:
		var out []string
		for _, part := range strings.Split(val, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
		return out, nil
	case []any:
		out := make([]string, 0, len(val))
		for i, elem := range val {
			s, err := valueAsString(elem)
			if err != nil {
				return nil, fmt.Errorf("element %d: %w", i, err)
			}
			if s != "" {
				out = append(out, s)
			}
		}
		return out, nil
	}
	return nil, fmt.Errorf("expected string or list, got %T", v)
}

func valueAsBool(v any) (bool, error) {
	switch val := v.(type) {
	case nil:
		return false, nil
	case bool:
		return val, nil
	case string:
		if strings.TrimSpace(val) == "" {
			return false, nil
		}
		b, err := strconv.ParseBool(strings.TrimSpace(val))
		if err != nil {
			return false, fmt.Errorf("invalid boolean value %q", val)
		}
		return b, nil
	}
	return false, fmt.Errorf("expected boolean, got %T", v)
}

// valueAsInt accepts YAML integers, integral JSON numbers and numeric strings.
func valueAsInt(v any) (int, error) {
	switch val := v.(type) {
	case nil:
		return 0, nil
	case int:
		return val, nil
	case float64:
		if val != float64(int(val)) {
			return 0, fmt.Errorf("expected integer, got %v", val)
		}
		return int(val), nil
	case string:
		trimmed := strings.TrimSpace(val)
		if trimmed == "" {
			return 0, nil
		}
		n, err := strconv.Atoi(trimmed)
		if err != nil {
			return 0, fmt.Errorf("invalid integer value %q", val)
		}
		return n, nil
	}
	return 0, fmt.Errorf("expected integer, got %T", v)
}
