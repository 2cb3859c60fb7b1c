package core

import (
	"context"
	"fmt"
	"sync"
	"time"

	"golang.org/x/oauth2"
)

type capturedCounter struct {
	name  string
	value int64
	tags  map[string]string
}

type capturedHistogram struct {
	name  string
	value float64
	tags  map[string]string
}

type captureMetricsRecorder struct {
	mu         sync.Mutex
	counters   []capturedCounter
	histograms []capturedHistogram
}

func (m *captureMetricsRecorder) IncCounter(_ context.Context, name string, value int64, tags map[string]string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.counters = append(m.counters, capturedCounter{name: name, value: value, tags: cloneTags(tags)})
}

func (m *captureMetricsRecorder) ObserveHistogram(_ context.Context, name string, value float64, tags map[string]string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.histograms = append(m.histograms, capturedHistogram{name: name, value: value, tags: cloneTags(tags)})
}

func (m *captureMetricsRecorder) hasCounter(name, status string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, counter := range m.counters {
		if counter.name == name && (status == "" || counter.tags["status"] == status) {
			return true
		}
	}
	return false
}

type capturedLog struct {
	level  string
	msg    string
	fields map[string]any
}

type captureLogger struct {
	mu       *sync.Mutex
	records  *[]capturedLog
	defaults map[string]any
}

func newCaptureLogger() *captureLogger {
	records := []capturedLog{}
	return &captureLogger{mu: &sync.Mutex{}, records: &records, defaults: map[string]any{}}
}

func (l *captureLogger) WithFields(fields map[string]any) Logger {
	merged := cloneFields(l.defaults)
	for key, value := range fields {
		merged[key] = value
	}
	return &captureLogger{mu: l.mu, records: l.records, defaults: merged}
}

func (l *captureLogger) Trace(msg string, args ...any) { l.record("trace", msg, args...) }
func (l *captureLogger) Debug(msg string, args ...any) { l.record("debug", msg, args...) }
func (l *captureLogger) Info(msg string, args ...any)  { l.record("info", msg, args...) }
func (l *captureLogger) Warn(msg string, args ...any)  { l.record("warn", msg, args...) }
func (l *captureLogger) Error(msg string, args ...any) { l.record("error", msg, args...) }
func (l *captureLogger) Fatal(msg string, args ...any) { l.record("fatal", msg, args...) }

func (l *captureLogger) WithContext(context.Context) Logger {
	return &captureLogger{mu: l.mu, records: l.records, defaults: cloneFields(l.defaults)}
}

func (l *captureLogger) record(level string, msg string, args ...any) {
	fields := cloneFields(l.defaults)
	for index := 0; index+1 < len(args); index += 2 {
		key, ok := args[index].(string)
		if !ok {
			continue
		}
		fields[key] = args[index+1]
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	*l.records = append(*l.records, capturedLog{level: level, msg: msg, fields: fields})
}

func (l *captureLogger) snapshot() []capturedLog {
	l.mu.Lock()
	defer l.mu.Unlock()
	items := *l.records
	out := make([]capturedLog, len(items))
	copy(out, items)
	return out
}

type stubLoggerProvider struct {
	logger Logger
}

func (s stubLoggerProvider) GetLogger(string) Logger {
	return s.logger
}

func testCredential(opts ...CredentialOption) *Credential {
	return NewCredential(oauth2.StaticTokenSource(&oauth2.Token{AccessToken: "test-token"}), opts...)
}

type stubDiscoverer struct {
	cred   *Credential
	err    error
	calls  int
	scopes []string
	quota  string
}

func (d *stubDiscoverer) Discover(_ context.Context, scopes []string, quota string) (*Credential, error) {
	d.calls++
	d.scopes = append([]string(nil), scopes...)
	d.quota = quota
	return d.cred, d.err
}

type stubFileLoader struct {
	cred  *Credential
	err   error
	calls int
	path  string
	quota string
}

func (l *stubFileLoader) Load(_ context.Context, path string, _ []string, quota string) (*Credential, error) {
	l.calls++
	l.path = path
	l.quota = quota
	return l.cred, l.err
}

// fakeOperations records every call and answers through handle.
type fakeOperations struct {
	mu       sync.Mutex
	calls    map[Operation]int
	requests []any
	handle   func(ctx context.Context, op Operation, req any) (any, error)
	closed   bool
}

func newFakeOperations(handle func(ctx context.Context, op Operation, req any) (any, error)) *fakeOperations {
	return &fakeOperations{calls: map[Operation]int{}, handle: handle}
}

func (f *fakeOperations) record(ctx context.Context, op Operation, req any) (any, error) {
	f.mu.Lock()
	f.calls[op]++
	f.requests = append(f.requests, req)
	f.mu.Unlock()
	if f.handle == nil {
		return nil, nil
	}
	return f.handle(ctx, op, req)
}

func (f *fakeOperations) callCount(op Operation) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[op]
}

func (f *fakeOperations) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.closed = true
	return nil
}

func fakeResult[T any](res any, err error) (*T, error) {
	if err != nil {
		return nil, err
	}
	if typed, ok := res.(*T); ok {
		return typed, nil
	}
	return new(T), nil
}

func (f *fakeOperations) AddSignedURLKey(ctx context.Context, req *AddSignedURLKeyBackendServiceRequest) (*ComputeOperation, error) {
	return fakeResult[ComputeOperation](f.record(ctx, OperationAddSignedURLKey, req))
}

func (f *fakeOperations) AggregatedList(ctx context.Context, req *AggregatedListBackendServicesRequest) (*BackendServiceAggregatedList, error) {
	return fakeResult[BackendServiceAggregatedList](f.record(ctx, OperationAggregatedList, req))
}

func (f *fakeOperations) Delete(ctx context.Context, req *DeleteBackendServiceRequest) (*ComputeOperation, error) {
	return fakeResult[ComputeOperation](f.record(ctx, OperationDelete, req))
}

func (f *fakeOperations) DeleteSignedURLKey(ctx context.Context, req *DeleteSignedURLKeyBackendServiceRequest) (*ComputeOperation, error) {
	return fakeResult[ComputeOperation](f.record(ctx, OperationDeleteSignedURLKey, req))
}

func (f *fakeOperations) Get(ctx context.Context, req *GetBackendServiceRequest) (*BackendService, error) {
	return fakeResult[BackendService](f.record(ctx, OperationGet, req))
}

func (f *fakeOperations) GetHealth(ctx context.Context, req *GetHealthBackendServiceRequest) (*BackendServiceGroupHealth, error) {
	return fakeResult[BackendServiceGroupHealth](f.record(ctx, OperationGetHealth, req))
}

func (f *fakeOperations) Insert(ctx context.Context, req *InsertBackendServiceRequest) (*ComputeOperation, error) {
	return fakeResult[ComputeOperation](f.record(ctx, OperationInsert, req))
}

func (f *fakeOperations) List(ctx context.Context, req *ListBackendServicesRequest) (*BackendServiceList, error) {
	return fakeResult[BackendServiceList](f.record(ctx, OperationList, req))
}

func (f *fakeOperations) Patch(ctx context.Context, req *PatchBackendServiceRequest) (*ComputeOperation, error) {
	return fakeResult[ComputeOperation](f.record(ctx, OperationPatch, req))
}

func (f *fakeOperations) SetSecurityPolicy(ctx context.Context, req *SetSecurityPolicyBackendServiceRequest) (*ComputeOperation, error) {
	return fakeResult[ComputeOperation](f.record(ctx, OperationSetSecurityPolicy, req))
}

func (f *fakeOperations) Update(ctx context.Context, req *UpdateBackendServiceRequest) (*ComputeOperation, error) {
	return fakeResult[ComputeOperation](f.record(ctx, OperationUpdate, req))
}

func staticFactory(ops Operations) OperationsFactory {
	return func(context.Context, TransportEnv) (Operations, error) {
		return ops, nil
	}
}

type partialOperations struct {
	UnimplementedOperations
	supported map[Operation]bool
}

func (p partialOperations) Supports(op Operation) bool {
	return p.supported[op]
}

// recordingSleeper skips real waits and remembers the requested delays.
type recordingSleeper struct {
	mu     sync.Mutex
	delays []time.Duration
}

func (s *recordingSleeper) Sleep(ctx context.Context, delay time.Duration) error {
	s.mu.Lock()
	s.delays = append(s.delays, delay)
	s.mu.Unlock()
	return ctx.Err()
}

type statusError struct {
	status int
}

func (e statusError) Error() string { return fmt.Sprintf("remote status %d", e.status) }

func (e statusError) HTTPStatusCode() int { return e.status }

type fixedRetryPolicy struct {
	attempts  int
	delay     time.Duration
	retryable func(error) bool
	deadline  time.Duration
}

func (p fixedRetryPolicy) MaxAttempts() int { return p.attempts }

func (p fixedRetryPolicy) ShouldRetry(err error) bool {
	if p.retryable == nil {
		return true
	}
	return p.retryable(err)
}

func (p fixedRetryPolicy) NextDelay(int) time.Duration { return p.delay }

type deadlineRetryPolicy struct {
	fixedRetryPolicy
}

func (p deadlineRetryPolicy) Deadline() time.Duration { return p.deadline }
