package core

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Method is one entry of the wrapped-method table. Call and Go run the same
// policy-wrapped callable; Go returns a Future instead of blocking.
type Method struct {
	descriptor OperationDescriptor
	typed      any
	erased     func(ctx context.Context, req any) (any, error)
}

func (m Method) Descriptor() OperationDescriptor {
	return m.descriptor
}

// Call runs the method with an untyped request. The request must be a pointer
// to the descriptor's request type.
func (m Method) Call(ctx context.Context, req any) (any, error) {
	if m.erased == nil {
		return nil, newNotImplementedError(m.descriptor.Operation)
	}
	return m.erased(ctx, req)
}

func (m Method) Go(ctx context.Context, req any) *Future[any] {
	return Start(ctx, func(ctx context.Context) (any, error) {
		return m.Call(ctx, req)
	})
}

var newRequestID = func() string {
	return uuid.NewString()
}

func bindMethod[Req, Res any](
	t *Transport,
	desc OperationDescriptor,
	call func(context.Context, *Req) (*Res, error),
	policy MethodPolicy,
	prepare func(*Req) *Req,
) Method {
	wrapped := Wrap(CallFunc[*Req, *Res](call), policy)
	typed := CallFunc[*Req, *Res](func(ctx context.Context, req *Req) (*Res, error) {
		if ctx == nil {
			ctx = context.Background()
		}
		if req == nil {
			return nil, newBadInputError(
				fmt.Sprintf("core: %s request is required", desc.Operation),
				map[string]any{"operation": string(desc.Operation)},
			)
		}
		if prepare != nil {
			req = prepare(req)
		}
		ctx, span := t.startSpan(ctx, desc)
		startedAt := time.Now()
		res, err := wrapped(ctx, req)
		t.observeCall(ctx, span, startedAt, desc, err)
		return res, err
	})
	return Method{
		descriptor: desc,
		typed:      typed,
		erased: func(ctx context.Context, req any) (any, error) {
			typedReq, ok := req.(*Req)
			if !ok {
				return nil, newBadInputError(
					fmt.Sprintf("core: %s expects %s, got %T", desc.Operation, desc.RequestType, req),
					map[string]any{"operation": string(desc.Operation)},
				)
			}
			res, err := typed(ctx, typedReq)
			if err != nil {
				return nil, err
			}
			return res, nil
		},
	}
}

func invoke[Req, Res any](ctx context.Context, t *Transport, op Operation, req *Req) (*Res, error) {
	method, err := t.Method(op)
	if err != nil {
		return nil, err
	}
	call, ok := method.typed.(CallFunc[*Req, *Res])
	if !ok {
		return nil, newNotImplementedError(op)
	}
	return call(ctx, req)
}

func (t *Transport) AddSignedURLKey(ctx context.Context, req *AddSignedURLKeyBackendServiceRequest) (*ComputeOperation, error) {
	return invoke[AddSignedURLKeyBackendServiceRequest, ComputeOperation](ctx, t, OperationAddSignedURLKey, req)
}

func (t *Transport) AggregatedList(ctx context.Context, req *AggregatedListBackendServicesRequest) (*BackendServiceAggregatedList, error) {
	return invoke[AggregatedListBackendServicesRequest, BackendServiceAggregatedList](ctx, t, OperationAggregatedList, req)
}

func (t *Transport) Delete(ctx context.Context, req *DeleteBackendServiceRequest) (*ComputeOperation, error) {
	return invoke[DeleteBackendServiceRequest, ComputeOperation](ctx, t, OperationDelete, req)
}

func (t *Transport) DeleteSignedURLKey(ctx context.Context, req *DeleteSignedURLKeyBackendServiceRequest) (*ComputeOperation, error) {
	return invoke[DeleteSignedURLKeyBackendServiceRequest, ComputeOperation](ctx, t, OperationDeleteSignedURLKey, req)
}

func (t *Transport) Get(ctx context.Context, req *GetBackendServiceRequest) (*BackendService, error) {
	return invoke[GetBackendServiceRequest, BackendService](ctx, t, OperationGet, req)
}

func (t *Transport) GetHealth(ctx context.Context, req *GetHealthBackendServiceRequest) (*BackendServiceGroupHealth, error) {
	return invoke[GetHealthBackendServiceRequest, BackendServiceGroupHealth](ctx, t, OperationGetHealth, req)
}

func (t *Transport) Insert(ctx context.Context, req *InsertBackendServiceRequest) (*ComputeOperation, error) {
	return invoke[InsertBackendServiceRequest, ComputeOperation](ctx, t, OperationInsert, req)
}

func (t *Transport) List(ctx context.Context, req *ListBackendServicesRequest) (*BackendServiceList, error) {
	return invoke[ListBackendServicesRequest, BackendServiceList](ctx, t, OperationList, req)
}

func (t *Transport) Patch(ctx context.Context, req *PatchBackendServiceRequest) (*ComputeOperation, error) {
	return invoke[PatchBackendServiceRequest, ComputeOperation](ctx, t, OperationPatch, req)
}

func (t *Transport) SetSecurityPolicy(ctx context.Context, req *SetSecurityPolicyBackendServiceRequest) (*ComputeOperation, error) {
	return invoke[SetSecurityPolicyBackendServiceRequest, ComputeOperation](ctx, t, OperationSetSecurityPolicy, req)
}

func (t *Transport) Update(ctx context.Context, req *UpdateBackendServiceRequest) (*ComputeOperation, error) {
	return invoke[UpdateBackendServiceRequest, ComputeOperation](ctx, t, OperationUpdate, req)
}

// AsyncTransport exposes the same wrapped methods in deferred style.
type AsyncTransport struct {
	transport *Transport
}

func (t *Transport) Async() AsyncTransport {
	return AsyncTransport{transport: t}
}

func startInvoke[Req, Res any](ctx context.Context, t *Transport, op Operation, req *Req) *Future[*Res] {
	if _, err := t.Method(op); err != nil {
		return Resolved[*Res](nil, err)
	}
	return Start(ctx, func(ctx context.Context) (*Res, error) {
		return invoke[Req, Res](ctx, t, op, req)
	})
}

func (a AsyncTransport) AddSignedURLKey(ctx context.Context, req *AddSignedURLKeyBackendServiceRequest) *Future[*ComputeOperation] {
	return startInvoke[AddSignedURLKeyBackendServiceRequest, ComputeOperation](ctx, a.transport, OperationAddSignedURLKey, req)
}

func (a AsyncTransport) AggregatedList(ctx context.Context, req *AggregatedListBackendServicesRequest) *Future[*BackendServiceAggregatedList] {
	return startInvoke[AggregatedListBackendServicesRequest, BackendServiceAggregatedList](ctx, a.transport, OperationAggregatedList, req)
}

func (a AsyncTransport) Delete(ctx context.Context, req *DeleteBackendServiceRequest) *Future[*ComputeOperation] {
	return startInvoke[DeleteBackendServiceRequest, ComputeOperation](ctx, a.transport, OperationDelete, req)
}

func (a AsyncTransport) DeleteSignedURLKey(ctx context.Context, req *DeleteSignedURLKeyBackendServiceRequest) *Future[*ComputeOperation] {
	return startInvoke[DeleteSignedURLKeyBackendServiceRequest, ComputeOperation](ctx, a.transport, OperationDeleteSignedURLKey, req)
}

func (a AsyncTransport) Get(ctx context.Context, req *GetBackendServiceRequest) *Future[*BackendService] {
	return startInvoke[GetBackendServiceRequest, BackendService](ctx, a.transport, OperationGet, req)
}

func (a AsyncTransport) GetHealth(ctx context.Context, req *GetHealthBackendServiceRequest) *Future[*BackendServiceGroupHealth] {
	return startInvoke[GetHealthBackendServiceRequest, BackendServiceGroupHealth](ctx, a.transport, OperationGetHealth, req)
}

func (a AsyncTransport) Insert(ctx context.Context, req *InsertBackendServiceRequest) *Future[*ComputeOperation] {
	return startInvoke[InsertBackendServiceRequest, ComputeOperation](ctx, a.transport, OperationInsert, req)
}

func (a AsyncTransport) List(ctx context.Context, req *ListBackendServicesRequest) *Future[*BackendServiceList] {
	return startInvoke[ListBackendServicesRequest, BackendServiceList](ctx, a.transport, OperationList, req)
}

func (a AsyncTransport) Patch(ctx context.Context, req *PatchBackendServiceRequest) *Future[*ComputeOperation] {
	return startInvoke[PatchBackendServiceRequest, ComputeOperation](ctx, a.transport, OperationPatch, req)
}

func (a AsyncTransport) SetSecurityPolicy(ctx context.Context, req *SetSecurityPolicyBackendServiceRequest) *Future[*ComputeOperation] {
	return startInvoke[SetSecurityPolicyBackendServiceRequest, ComputeOperation](ctx, a.transport, OperationSetSecurityPolicy, req)
}

func (a AsyncTransport) Update(ctx context.Context, req *UpdateBackendServiceRequest) *Future[*ComputeOperation] {
	return startInvoke[UpdateBackendServiceRequest, ComputeOperation](ctx, a.transport, OperationUpdate, req)
}
