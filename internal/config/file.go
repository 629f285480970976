package config

import (
	"fmt"
	"os"
	"sort"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// LoadYAML reads a YAML configuration file and exports its values as
// environment variables that are not already set. Nested keys are joined
// with underscores and upper-cased, so
//
//	llm_endpoint:
//	  model: gpt-4o-mini
//
// becomes LLM_ENDPOINT_MODEL. String values are expanded with os.ExpandEnv.
// An empty path is a no-op.
func LoadYAML(path string) error {
	if path == "" {
		return nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}
	values, err := ParseYAML(data)
	if err != nil {
		return fmt.Errorf("parse config file %s: %w", path, err)
	}

	keys := make([]string, 0, len(values))
	for k := range values {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		if _, set := os.LookupEnv(k); set {
			continue
		}
		if err := os.Setenv(k, values[k]); err != nil {
			return fmt.Errorf("set %s: %w", k, err)
		}
	}
	return nil
}

// ParseYAML flattens a YAML document into environment variable names and values.
func ParseYAML(data []byte) (map[string]string, error) {
	var doc map[string]any
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, err
	}
	result := make(map[string]string)
	if err := flatten("", doc, result); err != nil {
		return nil, err
	}
	return result, nil
}

func flatten(prefix string, node map[string]any, out map[string]string) error {
	for k, v := range node {
		key := strings.ToUpper(strings.ReplaceAll(k, "-", "_"))
		if prefix != "" {
			key = prefix + "_" + key
		}
		switch val := v.(type) {
		case map[string]any:
			if err := flatten(key, val, out); err != nil {
				return err
			}
		case []any:
			parts := make([]string, 0, len(val))
			for _, item := range val {
				s, err := scalar(key, item)
				if err != nil {
					return err
				}
				parts = append(parts, s)
			}
			out[key] = strings.Join(parts, ",")
		case nil:
			continue
		default:
			s, err := scalar(key, val)
			if err != nil {
				return err
			}
			out[key] = s
		}
	}
	return nil
}

func scalar(key string, v any) (string, error) {
	switch val := v.(type) {
	case string:
		return os.ExpandEnv(val), nil
	case bool:
		return strconv.FormatBool(val), nil
	case int:
		return strconv.Itoa(val), nil
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64), nil
	default:
		return "", fmt.Errorf("%s: unsupported value of type %T", key, v)
	}
}
