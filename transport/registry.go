package transport

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"sync"

	"github.com/goliatone/go-backend-services/core"
)

// Builder turns transport-specific settings into an operations factory.
type Builder func(config map[string]any) (core.OperationsFactory, error)

type Registry struct {
	mu       sync.RWMutex
	builders map[string]Builder
}

func NewRegistry() *Registry {
	return &Registry{builders: map[string]Builder{}}
}

// NewDefaultRegistry registers the rest and grpc transports. Recognized
// settings: rest takes base_url and max_response_body_bytes, grpc takes
// target.
func NewDefaultRegistry() *Registry {
	registry := NewRegistry()
	_ = registry.Register(KindREST, func(config map[string]any) (core.OperationsFactory, error) {
		limit, err := readInt64(config, "max_response_body_bytes")
		if err != nil {
			return nil, err
		}
		return RESTFactory(RESTOptions{
			BaseURL:              readString(config, "base_url"),
			MaxResponseBodyBytes: limit,
		}), nil
	})
	_ = registry.Register(KindGRPC, func(config map[string]any) (core.OperationsFactory, error) {
		return GRPCFactory(GRPCOptions{Target: readString(config, "target")}), nil
	})
	return registry
}

func (r *Registry) Register(kind string, builder Builder) error {
	if r == nil {
		return fmt.Errorf("transport: registry is nil")
	}
	kind = normalizeKind(kind)
	if kind == "" {
		return fmt.Errorf("transport: transport kind is required")
	}
	if builder == nil {
		return fmt.Errorf("transport: transport builder is nil")
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.builders[kind]; exists {
		return fmt.Errorf("transport: transport kind %q already registered", kind)
	}
	r.builders[kind] = builder
	return nil
}

// Factory builds the operations factory registered for kind.
func (r *Registry) Factory(kind string, config map[string]any) (core.OperationsFactory, error) {
	if r == nil {
		return nil, fmt.Errorf("transport: registry is nil")
	}
	kind = normalizeKind(kind)
	if kind == "" {
		return nil, fmt.Errorf("transport: transport kind is required")
	}

	r.mu.RLock()
	builder := r.builders[kind]
	r.mu.RUnlock()
	if builder == nil {
		return nil, fmt.Errorf("transport: transport kind %q not registered", kind)
	}
	factory, err := builder(cloneMap(config))
	if err != nil {
		return nil, err
	}
	if factory == nil {
		return nil, fmt.Errorf("transport: builder for %q returned nil factory", kind)
	}
	return factory, nil
}

// OperationsFactory defers the kind lookup until the transport has resolved
// its configuration, so a transport key coming from a config file or the
// environment still selects the implementation. settings is keyed by kind.
func (r *Registry) OperationsFactory(settings map[string]map[string]any) core.OperationsFactory {
	return func(ctx context.Context, env core.TransportEnv) (core.Operations, error) {
		kind := env.Config.Transport
		if strings.TrimSpace(kind) == "" {
			kind = core.DefaultTransportKind
		}
		factory, err := r.Factory(kind, settings[normalizeKind(kind)])
		if err != nil {
			return nil, err
		}
		return factory(ctx, env)
	}
}

func (r *Registry) Kinds() []string {
	if r == nil {
		return []string{}
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	kinds := make([]string, 0, len(r.builders))
	for kind := range r.builders {
		kinds = append(kinds, kind)
	}
	sort.Strings(kinds)
	return kinds
}

func normalizeKind(kind string) string {
	return strings.TrimSpace(strings.ToLower(kind))
}

func readString(config map[string]any, key string) string {
	value, ok := config[key]
	if !ok || value == nil {
		return ""
	}
	return strings.TrimSpace(fmt.Sprint(value))
}

func readInt64(config map[string]any, key string) (int64, error) {
	value, ok := config[key]
	if !ok || value == nil {
		return 0, nil
	}
	switch typed := value.(type) {
	case int:
		return int64(typed), nil
	case int64:
		return typed, nil
	case float64:
		return int64(typed), nil
	case string:
		parsed, err := strconv.ParseInt(strings.TrimSpace(typed), 10, 64)
		if err != nil {
			return 0, fmt.Errorf("transport: %s must be an integer: %w", key, err)
		}
		return parsed, nil
	default:
		return 0, fmt.Errorf("transport: %s must be an integer, got %T", key, value)
	}
}

func cloneMap(input map[string]any) map[string]any {
	if len(input) == 0 {
		return map[string]any{}
	}
	output := make(map[string]any, len(input))
	for key, value := range input {
		output[key] = value
	}
	return output
}
