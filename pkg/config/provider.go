package config

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// FlagPaths maps CLI flag names onto configuration keys.
var FlagPaths = map[string]string{
	"log-level":      "runtime.log_level",
	"log-json":       "runtime.log_json",
	"log-source":     "runtime.log_source",
	"store-driver":   "store.driver",
	"store-path":     "store.path",
	"store-key":      "store.key",
	"redis-url":      "store.redis_url",
	"generator":      "generator.mode",
	"generator-url":  "generator.url",
	"output-dir":     "generator.output_dir",
	"template-dir":   "generator.template_dir",
	"single-domain":  "wizard.single_domain",
	"host":           "server.host",
	"port":           "server.port",
	"format":         "cli.format",
	"no-color":       "cli.no_color",
	"no-interactive": "cli.interactive",
}

type cliProvider struct {
	flags map[string]any
}

// NewCLIProvider creates a source from the flags the user changed, keyed by
// flag name. Flags missing from FlagPaths are ignored.
func NewCLIProvider(flags map[string]any) Source {
	return &cliProvider{flags: flags}
}

func (c *cliProvider) Load() (map[string]any, error) {
	tree := make(map[string]any)
	for name, value := range c.flags {
		path, known := FlagPaths[name]
		if !known {
			continue
		}
		if b, isBool := value.(bool); isBool && name == "no-interactive" {
			value = !b
		}
		if err := setNested(tree, path, value); err != nil {
			return nil, fmt.Errorf("flag --%s: %w", name, err)
		}
	}
	return tree, nil
}

func (c *cliProvider) Type() SourceType {
	return SourceCLI
}

// setNested stores value under a dotted path, creating intermediate maps.
func setNested(m map[string]any, path string, value any) error {
	head, rest, deeper := strings.Cut(path, ".")
	if !deeper {
		m[head] = value
		return nil
	}
	child, ok := m[head].(map[string]any)
	if !ok {
		if _, taken := m[head]; taken {
			return fmt.Errorf("configuration conflict: key %q is not a map", head)
		}
		child = make(map[string]any)
		m[head] = child
	}
	return setNested(child, rest, value)
}

type yamlProvider struct {
	path string
}

// NewYAMLProvider reads a YAML config file. A missing file yields no values so
// a default --config path may point nowhere.
func NewYAMLProvider(path string) Source {
	return &yamlProvider{path: path}
}

func (y *yamlProvider) Load() (map[string]any, error) {
	data, err := os.ReadFile(y.path)
	switch {
	case os.IsNotExist(err):
		return map[string]any{}, nil
	case err != nil:
		return nil, fmt.Errorf("failed to read config file %s: %w", y.path, err)
	}
	var tree map[string]any
	if err := yaml.Unmarshal(data, &tree); err != nil {
		return nil, fmt.Errorf("failed to parse YAML file %s: %w", y.path, err)
	}
	return pruneNil(tree), nil
}

func (y *yamlProvider) Type() SourceType {
	return SourceYAML
}

// pruneNil drops null leaves so they do not shadow defaults.
func pruneNil(m map[string]any) map[string]any {
	for k, v := range m {
		switch val := v.(type) {
		case nil:
			delete(m, k)
		case map[string]any:
			pruneNil(val)
		}
	}
	return m
}
