package config

import (
	"context"
	"fmt"
	"os"
	"reflect"
	"strings"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/go-viper/mapstructure/v2"
	"github.com/knadh/koanf/providers/env/v2"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
)

// EnvPrefix is stripped from environment variables before they are mapped
// onto configuration keys.
const EnvPrefix = "WRFCONF_"

type loader struct {
	k       *koanf.Koanf
	check   *validator.Validate
	environ func() []string

	mu     sync.RWMutex
	origin Metadata
}

// NewService returns a Service that layers defaults, the given sources and
// the environment, in that order.
func NewService() Service {
	return &loader{
		check:   validator.New(),
		environ: os.Environ,
		origin:  Metadata{Sources: make(map[string]SourceType)},
	}
}

func (l *loader) Load(_ context.Context, sources ...Source) (*Config, error) {
	l.k = koanf.New(".")
	l.mu.Lock()
	l.origin = Metadata{Sources: make(map[string]SourceType), LoadedAt: time.Now()}
	l.mu.Unlock()

	defaults := func(k *koanf.Koanf) error {
		return k.Load(structs.Provider(Default(), "koanf"), nil)
	}
	if err := l.layer(SourceDefault, defaults); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}
	for _, source := range sources {
		// the environment is always applied last
		if source == nil || source.Type() == SourceEnv {
			continue
		}
		if err := l.layer(source.Type(), merge(source)); err != nil {
			return nil, fmt.Errorf("failed to load %s source: %w", source.Type(), err)
		}
	}
	if err := l.layer(SourceEnv, l.loadEnv); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}
	return l.decode()
}

// layer applies one source and attributes every key it changed to it.
func (l *loader) layer(source SourceType, apply func(*koanf.Koanf) error) error {
	before := l.k.All()
	if err := apply(l.k); err != nil {
		return err
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	for key, value := range l.k.All() {
		if prev, seen := before[key]; !seen || !reflect.DeepEqual(prev, value) {
			l.origin.Sources[key] = source
		}
	}
	return nil
}

func merge(source Source) func(*koanf.Koanf) error {
	return func(k *koanf.Koanf) error {
		data, err := source.Load()
		if err != nil {
			return err
		}
		for key, value := range flattenMap("", data) {
			if err := k.Set(key, value); err != nil {
				return fmt.Errorf("set %s: %w", key, err)
			}
		}
		return nil
	}
}

func (l *loader) loadEnv(k *koanf.Koanf) error {
	return k.Load(env.Provider(".", env.Opt{
		Prefix:      EnvPrefix,
		EnvironFunc: l.environ,
		TransformFunc: func(key, value string) (string, any) {
			return transformEnvKey(key), value
		},
	}), nil)
}

// transformEnvKey maps WRFCONF_STORE_REDIS_URL to store.redis_url: the first
// segment names the section and the rest is the key.
func transformEnvKey(name string) string {
	name = strings.ToLower(strings.TrimPrefix(name, EnvPrefix))
	section, key, _ := strings.Cut(name, "_")
	switch {
	case section == "":
		return ""
	case key == "":
		return section
	}
	return section + "." + key
}

// flattenMap turns nested maps into dot separated keys.
func flattenMap(prefix string, m map[string]any) map[string]any {
	out := make(map[string]any, len(m))
	for k, v := range m {
		if prefix != "" {
			k = prefix + "." + k
		}
		nested, ok := v.(map[string]any)
		if !ok {
			out[k] = v
			continue
		}
		for nk, nv := range flattenMap(k, nested) {
			out[nk] = nv
		}
	}
	return out
}

func decodeSensitive(_ reflect.Type, to reflect.Type, data any) (any, error) {
	if to != reflect.TypeOf(SensitiveString("")) {
		return data, nil
	}
	switch v := data.(type) {
	case string:
		return SensitiveString(v), nil
	case []byte:
		return SensitiveString(v), nil
	}
	return data, nil
}

func (l *loader) decode() (*Config, error) {
	cfg := new(Config)
	err := l.k.UnmarshalWithConf("", cfg, koanf.UnmarshalConf{
		Tag: "koanf",
		DecoderConfig: &mapstructure.DecoderConfig{
			Result:           cfg,
			TagName:          "koanf",
			WeaklyTypedInput: true,
			DecodeHook: mapstructure.ComposeDecodeHookFunc(
				mapstructure.StringToTimeDurationHookFunc(),
				decodeSensitive,
			),
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to decode configuration: %w", err)
	}
	if err := l.Validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate runs the struct tags first, then the rules that span fields.
func (l *loader) Validate(cfg *Config) error {
	if cfg == nil {
		return fmt.Errorf("configuration cannot be nil")
	}
	if err := l.check.Struct(cfg); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}
	switch {
	case cfg.Store.Driver == "redis" && cfg.Store.RedisURL == "":
		return fmt.Errorf("validation failed: store.redis_url is required for the redis driver")
	case cfg.Generator.Mode == "remote" && cfg.Generator.URL == "":
		return fmt.Errorf("validation failed: generator.url is required for remote generation")
	}
	return nil
}

func (l *loader) GetSource(key string) SourceType {
	l.mu.RLock()
	defer l.mu.RUnlock()
	if source, ok := l.origin.Sources[key]; ok {
		return source
	}
	return SourceDefault
}
