package backendservices

import (
	"context"
	"strings"

	"github.com/goliatone/go-backend-services/auth"
	"github.com/goliatone/go-backend-services/core"
	"github.com/goliatone/go-backend-services/transport"
)

type Config = core.Config

type RetryConfig = core.RetryConfig

type Option = core.Option

type Transport = core.Transport

type Credential = core.Credential

type ClientInfo = core.ClientInfo

type Operation = core.Operation

type BackendService = core.BackendService

type ComputeOperation = core.ComputeOperation

var (
	WithLogger                 = core.WithLogger
	WithLoggerProvider         = core.WithLoggerProvider
	WithMetricsRecorder        = core.WithMetricsRecorder
	WithTracer                 = core.WithTracer
	WithErrorMapper            = core.WithErrorMapper
	WithConfigProvider         = core.WithConfigProvider
	WithOptionsResolver        = core.WithOptionsResolver
	WithCredentials            = core.WithCredentials
	WithCredentialDiscoverer   = core.WithCredentialDiscoverer
	WithCredentialFileLoader   = core.WithCredentialFileLoader
	WithClientInfo             = core.WithClientInfo
	WithRetryPolicy            = core.WithRetryPolicy
	WithCallTimeout            = core.WithCallTimeout
	WithCallRetry              = core.WithCallRetry
	WithoutRetry               = core.WithoutRetry
	StaticTokenCredential      = auth.StaticTokenCredential
	BackendServicesOperations  = core.BackendServicesOperations
	ErrConflictingCredentials  = core.ErrConflictingCredentialSources
	ErrCredentialLoad          = core.ErrCredentialLoad
	ErrRetryExhausted          = core.ErrRetryExhausted
	ErrNotImplementedOperation = core.ErrNotImplementedOperation
)

func DefaultConfig() Config {
	return core.DefaultConfig()
}

// ClientOption tunes NewClient beyond the core transport options.
type ClientOption func(*clientOptions)

type clientOptions struct {
	registry *transport.Registry
	settings map[string]map[string]any
	core     []core.Option
}

// WithTransportRegistry swaps the registry used to pick the rest or grpc
// implementation.
func WithTransportRegistry(registry *transport.Registry) ClientOption {
	return func(o *clientOptions) {
		o.registry = registry
	}
}

// WithTransportSettings passes kind specific settings such as rest.base_url
// or grpc.target to the registry builders.
func WithTransportSettings(kind string, settings map[string]any) ClientOption {
	return func(o *clientOptions) {
		if o.settings == nil {
			o.settings = map[string]map[string]any{}
		}
		o.settings[strings.ToLower(strings.TrimSpace(kind))] = settings
	}
}

func WithOptions(opts ...Option) ClientOption {
	return func(o *clientOptions) {
		o.core = append(o.core, opts...)
	}
}

// NewClient builds a ready transport with ambient credential discovery and
// JSON key file loading wired in. The transport kind comes from the resolved
// configuration.
func NewClient(cfg Config, opts ...ClientOption) (*Transport, error) {
	return NewClientContext(context.Background(), cfg, opts...)
}

func NewClientContext(ctx context.Context, cfg Config, opts ...ClientOption) (*Transport, error) {
	options := clientOptions{}
	for _, opt := range opts {
		if opt != nil {
			opt(&options)
		}
	}
	if options.registry == nil {
		options.registry = transport.NewDefaultRegistry()
	}
	coreOpts := append([]core.Option{
		core.WithCredentialDiscoverer(auth.NewApplicationDefaultDiscoverer()),
		core.WithCredentialFileLoader(auth.NewJSONFileLoader()),
	}, options.core...)
	return core.NewTransportContext(ctx, cfg, options.registry.OperationsFactory(options.settings), coreOpts...)
}
