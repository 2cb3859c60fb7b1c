package core

import (
	"context"
	"time"

	glog "github.com/goliatone/go-logger/glog"
)

type Logger = glog.Logger

type LoggerProvider = glog.LoggerProvider

type FieldsLogger = glog.FieldsLogger

type MetricsRecorder interface {
	IncCounter(ctx context.Context, name string, value int64, tags map[string]string)
	ObserveHistogram(ctx context.Context, name string, value float64, tags map[string]string)
}

type NopMetricsRecorder struct{}

func (NopMetricsRecorder) IncCounter(context.Context, string, int64, map[string]string) {}

func (NopMetricsRecorder) ObserveHistogram(context.Context, string, float64, map[string]string) {}

// CredentialDiscoverer finds ambient credentials for the running process.
type CredentialDiscoverer interface {
	Discover(ctx context.Context, scopes []string, quotaProjectID string) (*Credential, error)
}

// CredentialFileLoader loads a credential from a file on disk.
type CredentialFileLoader interface {
	Load(ctx context.Context, path string, scopes []string, quotaProjectID string) (*Credential, error)
}

// RetryPolicy decides which failures are retried, how long to wait between
// attempts and how many attempts are allowed in total.
type RetryPolicy interface {
	MaxAttempts() int
	ShouldRetry(err error) bool
	NextDelay(attempt int) time.Duration
}

// RetryDeadline is implemented by retry policies that bound all attempts of a
// single invocation together instead of each attempt on its own.
type RetryDeadline interface {
	Deadline() time.Duration
}

// Operations is the capability set every concrete transport provides.
type Operations interface {
	AddSignedURLKey(ctx context.Context, req *AddSignedURLKeyBackendServiceRequest) (*ComputeOperation, error)
	AggregatedList(ctx context.Context, req *AggregatedListBackendServicesRequest) (*BackendServiceAggregatedList, error)
	Delete(ctx context.Context, req *DeleteBackendServiceRequest) (*ComputeOperation, error)
	DeleteSignedURLKey(ctx context.Context, req *DeleteSignedURLKeyBackendServiceRequest) (*ComputeOperation, error)
	Get(ctx context.Context, req *GetBackendServiceRequest) (*BackendService, error)
	GetHealth(ctx context.Context, req *GetHealthBackendServiceRequest) (*BackendServiceGroupHealth, error)
	Insert(ctx context.Context, req *InsertBackendServiceRequest) (*ComputeOperation, error)
	List(ctx context.Context, req *ListBackendServicesRequest) (*BackendServiceList, error)
	Patch(ctx context.Context, req *PatchBackendServiceRequest) (*ComputeOperation, error)
	SetSecurityPolicy(ctx context.Context, req *SetSecurityPolicyBackendServiceRequest) (*ComputeOperation, error)
	Update(ctx context.Context, req *UpdateBackendServiceRequest) (*ComputeOperation, error)
}

// OperationSupport lets a transport declare that it only implements part of
// the contract. Transports that do not implement it are assumed complete.
type OperationSupport interface {
	Supports(op Operation) bool
}

// TransportEnv is what a concrete transport receives when it is built.
type TransportEnv struct {
	Host       string
	Credential *Credential
	ClientInfo ClientInfo
	Config     Config
	Logger     Logger
}

type OperationsFactory func(ctx context.Context, env TransportEnv) (Operations, error)
