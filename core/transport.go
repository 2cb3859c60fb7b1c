package core

import (
	"context"
	"io"
	"strings"
	"time"

	glog "github.com/goliatone/go-logger/glog"
	"go.opentelemetry.io/otel/trace"
)

type TransportState int

const (
	StateUninitialized TransportState = iota
	StateCredentialResolved
	StateReady
)

func (s TransportState) String() string {
	switch s {
	case StateCredentialResolved:
		return "credential_resolved"
	case StateReady:
		return "ready"
	default:
		return "uninitialized"
	}
}

// Transport binds a concrete Operations implementation to one resolved
// credential, one host and an immutable table of policy-wrapped methods.
// It is safe for concurrent use once returned by NewTransport.
type Transport struct {
	config          Config
	host            string
	credential      *Credential
	clientInfo      ClientInfo
	operations      Operations
	methods         map[Operation]Method
	state           TransportState
	logger          Logger
	loggerProvider  LoggerProvider
	metricsRecorder MetricsRecorder
	tracer          trace.Tracer
}

func NewTransport(cfg Config, factory OperationsFactory, opts ...Option) (*Transport, error) {
	return NewTransportContext(context.Background(), cfg, factory, opts...)
}

// NewTransportContext is NewTransport with a context for credential discovery
// and transport setup. Only a Ready transport is ever returned.
func NewTransportContext(ctx context.Context, cfg Config, factory OperationsFactory, opts ...Option) (*Transport, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	builder := defaultTransportBuilder(cfg)
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		opt(&builder)
	}

	provider, logger := glog.Resolve("backendservices", builder.loggerProvider, builder.logger)
	logger = glog.Ensure(logger)
	if provider != nil {
		if named := provider.GetLogger("backendservices"); named != nil {
			logger = glog.Ensure(named)
		}
	}

	if builder.metricsRecorder == nil {
		builder.metricsRecorder = NopMetricsRecorder{}
	}
	if builder.errorMapper == nil {
		builder.errorMapper = defaultErrorMapper
	}
	if builder.configProvider == nil {
		builder.configProvider = NewCfgxConfigProvider(nil)
	}
	if builder.optionsResolver == nil {
		builder.optionsResolver = GoOptionsResolver{}
	}
	if builder.tracer == nil {
		builder.tracer = defaultTransportBuilder(Config{}).tracer
	}
	if factory == nil {
		return nil, newBadInputError("core: operations factory is required", nil)
	}

	defaults := DefaultConfig()
	loaded, err := builder.configProvider.Load(ctx, defaults)
	if err != nil {
		return nil, mapBuildError(builder.errorMapper, err)
	}
	finalConfig, err := builder.optionsResolver.Resolve(defaults, loaded, builder.runtimeConfig)
	if err != nil {
		return nil, mapBuildError(builder.errorMapper, err)
	}

	clientInfo := DefaultClientInfo()
	if builder.clientInfo != nil {
		clientInfo = *builder.clientInfo
	}

	retry := builder.retryPolicy
	if !builder.retryPolicySet && finalConfig.Retry.Enabled() {
		policy, policyErr := NewBackoffPolicy(finalConfig.Retry)
		if policyErr != nil {
			return nil, mapBuildError(builder.errorMapper, policyErr)
		}
		retry = policy
	}
	timeouts, err := finalConfig.OperationTimeouts()
	if err != nil {
		return nil, mapBuildError(builder.errorMapper, err)
	}

	t := &Transport{
		config:          finalConfig,
		host:            NormalizeHost(finalConfig.Host),
		clientInfo:      clientInfo,
		state:           StateUninitialized,
		logger:          logger,
		loggerProvider:  provider,
		metricsRecorder: builder.metricsRecorder,
		tracer:          builder.tracer,
	}

	resolver := CredentialResolver{Discoverer: builder.discoverer, Loader: builder.fileLoader}
	credential, err := resolver.Resolve(ctx, CredentialRequest{
		Explicit:       builder.credential,
		File:           finalConfig.CredentialsFile,
		Scopes:         finalConfig.Scopes,
		QuotaProjectID: finalConfig.QuotaProjectID,
	})
	if err != nil {
		t.logError(ctx, "credential resolution failed", map[string]any{"host": t.host, "error": err.Error()})
		return nil, mapBuildError(builder.errorMapper, err)
	}
	t.credential = credential
	t.state = StateCredentialResolved

	operations, err := factory(ctx, TransportEnv{
		Host:       t.host,
		Credential: credential,
		ClientInfo: clientInfo,
		Config:     finalConfig,
		Logger:     logger,
	})
	if err != nil {
		return nil, mapBuildError(builder.errorMapper, err)
	}
	if operations == nil {
		return nil, newBadInputError("core: operations factory returned nil", nil)
	}
	if missing := unsupportedOperations(operations); len(missing) > 0 {
		closeOperations(operations)
		return nil, newNotImplementedError(missing...)
	}
	t.operations = operations

	methods, err := t.buildMethods(timeouts, retry, builder.sleep)
	if err != nil {
		closeOperations(operations)
		return nil, err
	}
	t.methods = methods
	t.state = StateReady

	t.logInfo(ctx, "transport ready", map[string]any{
		"host":              t.host,
		"transport":         finalConfig.Transport,
		"credential_source": string(credential.Source()),
		"principal":         credential.Principal(),
		"methods":           len(methods),
	})
	return t, nil
}

// unsupportedOperations lists the operations a transport reports as missing.
// Transports that embed UnimplementedOperations report none supported unless
// they override Supports.
func unsupportedOperations(operations Operations) []Operation {
	support, ok := operations.(OperationSupport)
	if !ok {
		return nil
	}
	var missing []Operation
	for _, desc := range backendServicesOperations {
		if !support.Supports(desc.Operation) {
			missing = append(missing, desc.Operation)
		}
	}
	return missing
}

func closeOperations(operations Operations) error {
	if closer, ok := operations.(io.Closer); ok {
		return closer.Close()
	}
	return nil
}

func (t *Transport) buildMethods(
	timeouts map[Operation]time.Duration,
	retry RetryPolicy,
	sleep func(ctx context.Context, delay time.Duration) error,
) (map[Operation]Method, error) {
	ops := t.operations
	methods := make(map[Operation]Method, len(backendServicesOperations))
	for _, desc := range backendServicesOperations {
		policy := MethodPolicy{
			Operation:      desc.Operation,
			DefaultTimeout: timeoutFor(timeouts, desc.Operation, t.config.DefaultTimeout),
			Retry:          retry,
			ClientInfo:     t.clientInfo,
			Sleep:          sleep,
			OnAttempt:      t.observeAttempt,
		}
		var method Method
		switch desc.Operation {
		case OperationAddSignedURLKey:
			method = bindMethod(t, desc, ops.AddSignedURLKey, policy, ensureRequestID[AddSignedURLKeyBackendServiceRequest, *AddSignedURLKeyBackendServiceRequest])
		case OperationAggregatedList:
			method = bindMethod(t, desc, ops.AggregatedList, policy, nil)
		case OperationDelete:
			method = bindMethod(t, desc, ops.Delete, policy, ensureRequestID[DeleteBackendServiceRequest, *DeleteBackendServiceRequest])
		case OperationDeleteSignedURLKey:
			method = bindMethod(t, desc, ops.DeleteSignedURLKey, policy, ensureRequestID[DeleteSignedURLKeyBackendServiceRequest, *DeleteSignedURLKeyBackendServiceRequest])
		case OperationGet:
			method = bindMethod(t, desc, ops.Get, policy, nil)
		case OperationGetHealth:
			method = bindMethod(t, desc, ops.GetHealth, policy, nil)
		case OperationInsert:
			method = bindMethod(t, desc, ops.Insert, policy, ensureRequestID[InsertBackendServiceRequest, *InsertBackendServiceRequest])
		case OperationList:
			method = bindMethod(t, desc, ops.List, policy, nil)
		case OperationPatch:
			method = bindMethod(t, desc, ops.Patch, policy, ensureRequestID[PatchBackendServiceRequest, *PatchBackendServiceRequest])
		case OperationSetSecurityPolicy:
			method = bindMethod(t, desc, ops.SetSecurityPolicy, policy, ensureRequestID[SetSecurityPolicyBackendServiceRequest, *SetSecurityPolicyBackendServiceRequest])
		case OperationUpdate:
			method = bindMethod(t, desc, ops.Update, policy, ensureRequestID[UpdateBackendServiceRequest, *UpdateBackendServiceRequest])
		default:
			return nil, newNotImplementedError(desc.Operation)
		}
		methods[desc.Operation] = method
	}
	return methods, nil
}

func (t *Transport) Config() Config {
	if t == nil {
		return Config{}
	}
	return t.config
}

func (t *Transport) Host() string {
	if t == nil {
		return ""
	}
	return t.host
}

func (t *Transport) Credential() *Credential {
	if t == nil {
		return nil
	}
	return t.credential
}

func (t *Transport) ClientInfo() ClientInfo {
	if t == nil {
		return ClientInfo{}
	}
	return t.clientInfo
}

func (t *Transport) State() TransportState {
	if t == nil {
		return StateUninitialized
	}
	return t.state
}

// Operations returns the unwrapped concrete implementation.
func (t *Transport) Operations() Operations {
	if t == nil {
		return nil
	}
	return t.operations
}

// Method returns the wrapped entry for op.
func (t *Transport) Method(op Operation) (Method, error) {
	if t == nil {
		return Method{}, newNotImplementedError(op)
	}
	method, ok := t.methods[op]
	if !ok {
		return Method{}, newNotImplementedError(op)
	}
	return method, nil
}

// Methods returns every wrapped entry in descriptor order.
func (t *Transport) Methods() []Method {
	if t == nil {
		return nil
	}
	out := make([]Method, 0, len(t.methods))
	for _, desc := range backendServicesOperations {
		if method, ok := t.methods[desc.Operation]; ok {
			out = append(out, method)
		}
	}
	return out
}

func (t *Transport) Close() error {
	if t == nil || t.operations == nil {
		return nil
	}
	return closeOperations(t.operations)
}

func ensureRequestID[T any, P interface {
	*T
	requestIDField() *string
}](req P) P {
	if req == nil || strings.TrimSpace(*req.requestIDField()) != "" {
		return req
	}
	copied := *(*T)(req)
	out := P(&copied)
	*out.requestIDField() = newRequestID()
	return out
}
