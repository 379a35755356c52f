package config

import (
	"fmt"

	"github.com/knadh/koanf/providers/structs"
)

// Flatten returns cfg as dot-notation keys. Sensitive values are redacted and
// durations rendered as text.
func Flatten(cfg *Config) (map[string]any, error) {
	if cfg == nil {
		return nil, fmt.Errorf("configuration cannot be nil")
	}
	raw, err := structs.Provider(cfg, "koanf").Read()
	if err != nil {
		return nil, fmt.Errorf("failed to read configuration: %w", err)
	}
	flat := flattenMap("", raw)
	for key, value := range flat {
		if s, ok := value.(fmt.Stringer); ok {
			flat[key] = s.String()
		}
	}
	return flat, nil
}
