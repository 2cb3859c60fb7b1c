package core

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/goliatone/go-config/cfgx"
	goerrors "github.com/goliatone/go-errors"
	glog "github.com/goliatone/go-logger/glog"
	opts "github.com/goliatone/go-options"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
)

const instrumentationName = "github.com/goliatone/go-backend-services/core"

type ErrorMapper func(err error) *goerrors.Error

type ConfigProvider interface {
	Load(ctx context.Context, defaults Config) (Config, error)
}

type RawConfigLoader interface {
	LoadRaw(ctx context.Context) (map[string]any, error)
}

type OptionsResolver interface {
	Resolve(defaults Config, loaded Config, runtime Config) (Config, error)
}

type transportBuilder struct {
	runtimeConfig   Config
	logger          Logger
	loggerProvider  LoggerProvider
	metricsRecorder MetricsRecorder
	tracer          trace.Tracer
	errorMapper     ErrorMapper
	configProvider  ConfigProvider
	optionsResolver OptionsResolver
	discoverer      CredentialDiscoverer
	fileLoader      CredentialFileLoader
	credential      *Credential
	clientInfo      *ClientInfo
	retryPolicy     RetryPolicy
	retryPolicySet  bool
	sleep           func(ctx context.Context, delay time.Duration) error
}

type Option func(*transportBuilder)

func WithLogger(logger Logger) Option {
	return func(b *transportBuilder) {
		b.logger = logger
	}
}

func WithLoggerProvider(provider LoggerProvider) Option {
	return func(b *transportBuilder) {
		b.loggerProvider = provider
	}
}

func WithMetricsRecorder(recorder MetricsRecorder) Option {
	return func(b *transportBuilder) {
		b.metricsRecorder = recorder
	}
}

func WithTracer(tracer trace.Tracer) Option {
	return func(b *transportBuilder) {
		b.tracer = tracer
	}
}

func WithErrorMapper(mapper ErrorMapper) Option {
	return func(b *transportBuilder) {
		b.errorMapper = mapper
	}
}

func WithConfigProvider(provider ConfigProvider) Option {
	return func(b *transportBuilder) {
		b.configProvider = provider
	}
}

func WithOptionsResolver(resolver OptionsResolver) Option {
	return func(b *transportBuilder) {
		b.optionsResolver = resolver
	}
}

func WithCredentialDiscoverer(discoverer CredentialDiscoverer) Option {
	return func(b *transportBuilder) {
		b.discoverer = discoverer
	}
}

func WithCredentialFileLoader(loader CredentialFileLoader) Option {
	return func(b *transportBuilder) {
		b.fileLoader = loader
	}
}

// WithCredentials supplies an explicit credential. It conflicts with a
// configured credentials_file.
func WithCredentials(credential *Credential) Option {
	return func(b *transportBuilder) {
		b.credential = credential
	}
}

func WithClientInfo(info ClientInfo) Option {
	return func(b *transportBuilder) {
		b.clientInfo = &info
	}
}

// WithRetryPolicy replaces the policy derived from Config.Retry. A nil policy
// disables retries.
func WithRetryPolicy(policy RetryPolicy) Option {
	return func(b *transportBuilder) {
		b.retryPolicy = policy
		b.retryPolicySet = true
	}
}

func WithSleeper(sleep func(ctx context.Context, delay time.Duration) error) Option {
	return func(b *transportBuilder) {
		b.sleep = sleep
	}
}

func defaultTransportBuilder(runtime Config) transportBuilder {
	loggerProvider, logger := glog.Resolve("backendservices", nil, nil)
	return transportBuilder{
		runtimeConfig:   runtime,
		loggerProvider:  loggerProvider,
		logger:          logger,
		metricsRecorder: NopMetricsRecorder{},
		tracer:          otel.Tracer(instrumentationName),
		errorMapper:     defaultErrorMapper,
		configProvider:  NewCfgxConfigProvider(nil),
		optionsResolver: GoOptionsResolver{},
	}
}

func defaultErrorMapper(err error) *goerrors.Error {
	if err == nil {
		return nil
	}
	return transportErrorMapper(err)
}

type staticRawConfigLoader struct {
	Values map[string]any
}

func (l staticRawConfigLoader) LoadRaw(context.Context) (map[string]any, error) {
	if len(l.Values) == 0 {
		return map[string]any{}, nil
	}
	out := make(map[string]any, len(l.Values))
	for key, value := range l.Values {
		out[key] = value
	}
	return out, nil
}

// StaticConfigLoader serves a fixed raw configuration map.
func StaticConfigLoader(values map[string]any) RawConfigLoader {
	return staticRawConfigLoader{Values: values}
}

type CfgxConfigProvider struct {
	Loader RawConfigLoader
}

func NewCfgxConfigProvider(loader RawConfigLoader) *CfgxConfigProvider {
	return &CfgxConfigProvider{Loader: loader}
}

func (p *CfgxConfigProvider) Load(ctx context.Context, defaults Config) (Config, error) {
	if p == nil {
		return defaults, nil
	}
	loader := p.Loader
	if loader == nil {
		loader = staticRawConfigLoader{}
	}
	raw, err := loader.LoadRaw(ctx)
	if err != nil {
		return Config{}, err
	}
	cfg, err := cfgx.Build[Config](raw,
		cfgx.WithDefaults(defaults),
		cfgx.WithValidator[Config]((*Config).Validate),
	)
	if err != nil {
		return Config{}, err
	}
	return cfg, nil
}

type GoOptionsResolver struct{}

func (GoOptionsResolver) Resolve(defaults Config, loaded Config, runtime Config) (Config, error) {
	defaultLayer := configToLayerMap(defaults, true)
	loadedLayer := configToLayerMap(loaded, false)
	runtimeLayer := configToLayerMap(runtime, false)

	stack, err := opts.NewStack(
		opts.NewLayer(
			opts.NewScope("defaults", 0),
			defaultLayer,
			opts.WithSnapshotID[map[string]any]("defaults"),
		),
		opts.NewLayer(
			opts.NewScope("config", 10),
			loadedLayer,
			opts.WithSnapshotID[map[string]any]("config"),
		),
		opts.NewLayer(
			opts.NewScope("runtime", 20),
			runtimeLayer,
			opts.WithSnapshotID[map[string]any]("runtime"),
		),
	)
	if err != nil {
		return Config{}, fmt.Errorf("core: options stack build failed: %w", err)
	}
	merged, err := stack.Merge()
	if err != nil {
		return Config{}, fmt.Errorf("core: options merge failed: %w", err)
	}
	resolved, err := cfgx.Build[Config](merged.Value,
		cfgx.WithDefaults(defaults),
		cfgx.WithValidator[Config]((*Config).Validate),
	)
	if err != nil {
		return Config{}, err
	}
	if err := resolved.Validate(); err != nil {
		return Config{}, err
	}
	return resolved, nil
}

func configToLayerMap(cfg Config, includeZero bool) map[string]any {
	layer := map[string]any{}
	setString := func(key, value string) {
		if includeZero || strings.TrimSpace(value) != "" {
			layer[key] = strings.TrimSpace(value)
		}
	}
	setString("service_name", cfg.ServiceName)
	setString("host", cfg.Host)
	setString("transport", cfg.Transport)
	setString("credentials_file", cfg.CredentialsFile)
	setString("quota_project_id", cfg.QuotaProjectID)
	if includeZero || cfg.Insecure {
		layer["insecure"] = cfg.Insecure
	}
	if includeZero || len(cfg.Scopes) > 0 {
		layer["scopes"] = append([]string(nil), cfg.Scopes...)
	}
	if includeZero || cfg.DefaultTimeout > 0 {
		layer["default_timeout"] = cfg.DefaultTimeout
	}
	if includeZero || len(cfg.Timeouts) > 0 {
		timeouts := make(map[string]any, len(cfg.Timeouts))
		for name, timeout := range cfg.Timeouts {
			timeouts[name] = timeout
		}
		layer["timeouts"] = timeouts
	}

	retry := map[string]any{}
	if includeZero || cfg.Retry.MaxAttempts > 0 {
		retry["max_attempts"] = cfg.Retry.MaxAttempts
	}
	if includeZero || cfg.Retry.InitialBackoff > 0 {
		retry["initial_backoff"] = cfg.Retry.InitialBackoff
	}
	if includeZero || cfg.Retry.MaxBackoff > 0 {
		retry["max_backoff"] = cfg.Retry.MaxBackoff
	}
	if includeZero || cfg.Retry.Multiplier > 0 {
		retry["multiplier"] = cfg.Retry.Multiplier
	}
	if includeZero || cfg.Retry.Deadline > 0 {
		retry["deadline"] = cfg.Retry.Deadline
	}
	if includeZero || len(cfg.Retry.RetryableStatusCodes) > 0 {
		retry["retryable_status_codes"] = append([]int(nil), cfg.Retry.RetryableStatusCodes...)
	}
	if includeZero || len(cfg.Retry.RetryableGRPCCodes) > 0 {
		retry["retryable_grpc_codes"] = append([]string(nil), cfg.Retry.RetryableGRPCCodes...)
	}
	if len(retry) > 0 {
		layer["retry"] = retry
	}
	return layer
}
