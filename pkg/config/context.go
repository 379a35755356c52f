package config

import "context"

// ContextKey is an alias used for storing values in context
type ContextKey string

// ConfigCtxKey is the context key used to store the *Config instance
const ConfigCtxKey ContextKey = "config"

// ContextWithConfig stores cfg in the context
func ContextWithConfig(ctx context.Context, cfg *Config) context.Context {
	return context.WithValue(ctx, ConfigCtxKey, cfg)
}

// FromContext returns the configuration attached to ctx, or the defaults when
// none is attached.
func FromContext(ctx context.Context) *Config {
	if ctx != nil {
		if cfg, ok := ctx.Value(ConfigCtxKey).(*Config); ok && cfg != nil {
			return cfg
		}
	}
	return Default()
}

// ServiceCtxKey is the context key used to store the Service that loaded the configuration
const ServiceCtxKey ContextKey = "config_service"

// ContextWithService stores the loading service so commands can report sources.
func ContextWithService(ctx context.Context, service Service) context.Context {
	return context.WithValue(ctx, ServiceCtxKey, service)
}

// ServiceFromContext returns the service attached to ctx, or nil.
func ServiceFromContext(ctx context.Context) Service {
	if ctx == nil {
		return nil
	}
	service, _ := ctx.Value(ServiceCtxKey).(Service)
	return service
}
