package transport

import (
	"context"
	"crypto/tls"
	"encoding/json"
	"net/http"
	"net/url"
	"strings"

	"github.com/goliatone/go-backend-services/core"
	goerrors "github.com/goliatone/go-errors"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/encoding"
	"google.golang.org/grpc/metadata"
)

const (
	KindGRPC = "grpc"

	codecName           = "json"
	headerRequestParams = "x-goog-request-params"
)

// jsonCodec carries the request and resource types as JSON payloads so no
// generated protobuf stubs are required.
type jsonCodec struct{}

func (jsonCodec) Marshal(v any) ([]byte, error) { return json.Marshal(v) }

func (jsonCodec) Unmarshal(data []byte, v any) error {
	if len(data) == 0 {
		return nil
	}
	return json.Unmarshal(data, v)
}

func (jsonCodec) Name() string { return codecName }

func init() {
	encoding.RegisterCodec(jsonCodec{})
}

type GRPCOptions struct {
	// Target replaces the dial target derived from the transport host.
	Target      string
	DialOptions []grpc.DialOption
}

// GRPCTransport implements the backend services operations by invoking the
// google.cloud.compute.v1.BackendServices service over gRPC.
type GRPCTransport struct {
	conn       *grpc.ClientConn
	credential *core.Credential
	clientInfo core.ClientInfo
	logger     core.Logger
}

func NewGRPCTransport(env core.TransportEnv, opts GRPCOptions) (*GRPCTransport, error) {
	target := strings.TrimSpace(opts.Target)
	if target == "" {
		target = strings.TrimSpace(env.Host)
	}
	if target == "" {
		return nil, transportError(
			"transport: grpc transport requires a host",
			goerrors.CategoryBadInput,
			http.StatusBadRequest,
			map[string]any{"transport": KindGRPC},
		)
	}
	clientInfo := env.ClientInfo.WithTransport("grpc")

	transportCreds := credentials.NewTLS(&tls.Config{MinVersion: tls.VersionTLS12})
	if env.Config.Insecure {
		transportCreds = insecure.NewCredentials()
	}
	dialOptions := []grpc.DialOption{
		grpc.WithTransportCredentials(transportCreds),
		grpc.WithUserAgent(clientInfo.UserAgentHeader()),
		grpc.WithDefaultCallOptions(grpc.CallContentSubtype(codecName)),
	}
	dialOptions = append(dialOptions, opts.DialOptions...)

	conn, err := grpc.NewClient(target, dialOptions...)
	if err != nil {
		return nil, transportWrapError(
			err,
			goerrors.CategoryBadInput,
			"transport: create grpc client",
			http.StatusBadRequest,
			map[string]any{"transport": KindGRPC, "target": target},
		)
	}
	return &GRPCTransport{
		conn:       conn,
		credential: env.Credential,
		clientInfo: clientInfo,
		logger:     env.Logger,
	}, nil
}

func GRPCFactory(opts GRPCOptions) core.OperationsFactory {
	return func(_ context.Context, env core.TransportEnv) (core.Operations, error) {
		return NewGRPCTransport(env, opts)
	}
}

func (t *GRPCTransport) Target() string {
	if t == nil || t.conn == nil {
		return ""
	}
	return t.conn.Target()
}

func (t *GRPCTransport) Close() error {
	if t == nil || t.conn == nil {
		return nil
	}
	return t.conn.Close()
}

func invokeGRPC[Res any](
	ctx context.Context,
	t *GRPCTransport,
	op core.Operation,
	routing []string,
	req any,
) (*Res, error) {
	if t == nil || t.conn == nil {
		return nil, transportError(
			"transport: grpc transport is not connected",
			goerrors.CategoryInternal,
			http.StatusInternalServerError,
			map[string]any{"transport": KindGRPC},
		)
	}
	desc, ok := core.LookupOperation(op)
	if !ok {
		return nil, transportError(
			"transport: unknown operation "+string(op),
			goerrors.CategoryOperation,
			http.StatusNotImplemented,
			map[string]any{"transport": KindGRPC, "operation": string(op)},
		)
	}
	if ctx == nil {
		ctx = context.Background()
	}
	ctx, err := t.outgoingContext(ctx, routing)
	if err != nil {
		return nil, err
	}
	out := new(Res)
	if err := t.conn.Invoke(ctx, desc.FullMethod(), req, out); err != nil {
		return nil, err
	}
	return out, nil
}

func (t *GRPCTransport) outgoingContext(ctx context.Context, routing []string) (context.Context, error) {
	info := t.clientInfo
	if fromCtx, ok := core.ClientInfoFromContext(ctx); ok {
		info = fromCtx.WithTransport("grpc")
	}
	pairs := []string{}
	if value := info.APIClientHeader(); value != "" {
		pairs = append(pairs, headerAPIClient, value)
	}
	if params := requestParams(routing...); params != "" {
		pairs = append(pairs, headerRequestParams, params)
	}
	if t.credential != nil {
		authorization, err := t.credential.AuthorizationHeader(ctx)
		if err != nil {
			return nil, transportWrapError(
				err,
				goerrors.CategoryAuth,
				"transport: fetch access token",
				http.StatusUnauthorized,
				map[string]any{"transport": KindGRPC, "principal": t.credential.Principal()},
			)
		}
		pairs = append(pairs, "authorization", authorization)
		if quota := t.credential.QuotaProjectID(); quota != "" {
			pairs = append(pairs, headerUserProject, quota)
		}
	}
	return metadata.AppendToOutgoingContext(ctx, pairs...), nil
}

// requestParams encodes key/value routing pairs, skipping empty values.
func requestParams(pairs ...string) string {
	parts := make([]string, 0, len(pairs)/2)
	for i := 0; i+1 < len(pairs); i += 2 {
		value := strings.TrimSpace(pairs[i+1])
		if value == "" {
			continue
		}
		parts = append(parts, pairs[i]+"="+url.QueryEscape(value))
	}
	return strings.Join(parts, "&")
}

func (t *GRPCTransport) AddSignedURLKey(ctx context.Context, req *core.AddSignedURLKeyBackendServiceRequest) (*core.ComputeOperation, error) {
	if req == nil {
		return nil, nilRequestError(core.OperationAddSignedURLKey)
	}
	return invokeGRPC[core.ComputeOperation](ctx, t, core.OperationAddSignedURLKey,
		[]string{"project", req.Project, "backend_service", req.BackendService}, req)
}

func (t *GRPCTransport) AggregatedList(ctx context.Context, req *core.AggregatedListBackendServicesRequest) (*core.BackendServiceAggregatedList, error) {
	if req == nil {
		return nil, nilRequestError(core.OperationAggregatedList)
	}
	return invokeGRPC[core.BackendServiceAggregatedList](ctx, t, core.OperationAggregatedList,
		[]string{"project", req.Project}, req)
}

func (t *GRPCTransport) Delete(ctx context.Context, req *core.DeleteBackendServiceRequest) (*core.ComputeOperation, error) {
	if req == nil {
		return nil, nilRequestError(core.OperationDelete)
	}
	return invokeGRPC[core.ComputeOperation](ctx, t, core.OperationDelete,
		[]string{"project", req.Project, "backend_service", req.BackendService}, req)
}

func (t *GRPCTransport) DeleteSignedURLKey(ctx context.Context, req *core.DeleteSignedURLKeyBackendServiceRequest) (*core.ComputeOperation, error) {
	if req == nil {
		return nil, nilRequestError(core.OperationDeleteSignedURLKey)
	}
	return invokeGRPC[core.ComputeOperation](ctx, t, core.OperationDeleteSignedURLKey,
		[]string{"project", req.Project, "backend_service", req.BackendService}, req)
}

func (t *GRPCTransport) Get(ctx context.Context, req *core.GetBackendServiceRequest) (*core.BackendService, error) {
	if req == nil {
		return nil, nilRequestError(core.OperationGet)
	}
	return invokeGRPC[core.BackendService](ctx, t, core.OperationGet,
		[]string{"project", req.Project, "backend_service", req.BackendService}, req)
}

func (t *GRPCTransport) GetHealth(ctx context.Context, req *core.GetHealthBackendServiceRequest) (*core.BackendServiceGroupHealth, error) {
	if req == nil {
		return nil, nilRequestError(core.OperationGetHealth)
	}
	return invokeGRPC[core.BackendServiceGroupHealth](ctx, t, core.OperationGetHealth,
		[]string{"project", req.Project, "backend_service", req.BackendService}, req)
}

func (t *GRPCTransport) Insert(ctx context.Context, req *core.InsertBackendServiceRequest) (*core.ComputeOperation, error) {
	if req == nil {
		return nil, nilRequestError(core.OperationInsert)
	}
	return invokeGRPC[core.ComputeOperation](ctx, t, core.OperationInsert,
		[]string{"project", req.Project}, req)
}

func (t *GRPCTransport) List(ctx context.Context, req *core.ListBackendServicesRequest) (*core.BackendServiceList, error) {
	if req == nil {
		return nil, nilRequestError(core.OperationList)
	}
	return invokeGRPC[core.BackendServiceList](ctx, t, core.OperationList,
		[]string{"project", req.Project}, req)
}

func (t *GRPCTransport) Patch(ctx context.Context, req *core.PatchBackendServiceRequest) (*core.ComputeOperation, error) {
	if req == nil {
		return nil, nilRequestError(core.OperationPatch)
	}
	return invokeGRPC[core.ComputeOperation](ctx, t, core.OperationPatch,
		[]string{"project", req.Project, "backend_service", req.BackendService}, req)
}

func (t *GRPCTransport) SetSecurityPolicy(ctx context.Context, req *core.SetSecurityPolicyBackendServiceRequest) (*core.ComputeOperation, error) {
	if req == nil {
		return nil, nilRequestError(core.OperationSetSecurityPolicy)
	}
	return invokeGRPC[core.ComputeOperation](ctx, t, core.OperationSetSecurityPolicy,
		[]string{"project", req.Project, "backend_service", req.BackendService}, req)
}

func (t *GRPCTransport) Update(ctx context.Context, req *core.UpdateBackendServiceRequest) (*core.ComputeOperation, error) {
	if req == nil {
		return nil, nilRequestError(core.OperationUpdate)
	}
	return invokeGRPC[core.ComputeOperation](ctx, t, core.OperationUpdate,
		[]string{"project", req.Project, "backend_service", req.BackendService}, req)
}

var _ core.Operations = (*GRPCTransport)(nil)
