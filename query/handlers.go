package query

import (
	"context"

	"github.com/goliatone/go-backend-services/core"
)

// ReadTransport is the read-only subset of the operation contract.
type ReadTransport interface {
	Get(ctx context.Context, req *core.GetBackendServiceRequest) (*core.BackendService, error)
	List(ctx context.Context, req *core.ListBackendServicesRequest) (*core.BackendServiceList, error)
	AggregatedList(ctx context.Context, req *core.AggregatedListBackendServicesRequest) (*core.BackendServiceAggregatedList, error)
	GetHealth(ctx context.Context, req *core.GetHealthBackendServiceRequest) (*core.BackendServiceGroupHealth, error)
}

type GetQuery struct {
	transport ReadTransport
}

func NewGetQuery(transport ReadTransport) *GetQuery {
	return &GetQuery{transport: transport}
}

func (q *GetQuery) Query(ctx context.Context, msg GetMessage) (*core.BackendService, error) {
	if q == nil || q.transport == nil {
		return nil, queryDependencyError("query: get transport is required")
	}
	req := msg.Request
	return q.transport.Get(ctx, &req)
}

type ListQuery struct {
	transport ReadTransport
}

func NewListQuery(transport ReadTransport) *ListQuery {
	return &ListQuery{transport: transport}
}

func (q *ListQuery) Query(ctx context.Context, msg ListMessage) (*core.BackendServiceList, error) {
	if q == nil || q.transport == nil {
		return nil, queryDependencyError("query: list transport is required")
	}
	req := msg.Request
	return q.transport.List(ctx, &req)
}

type AggregatedListQuery struct {
	transport ReadTransport
}

func NewAggregatedListQuery(transport ReadTransport) *AggregatedListQuery {
	return &AggregatedListQuery{transport: transport}
}

func (q *AggregatedListQuery) Query(
	ctx context.Context,
	msg AggregatedListMessage,
) (*core.BackendServiceAggregatedList, error) {
	if q == nil || q.transport == nil {
		return nil, queryDependencyError("query: aggregated list transport is required")
	}
	req := msg.Request
	return q.transport.AggregatedList(ctx, &req)
}

type GetHealthQuery struct {
	transport ReadTransport
}

func NewGetHealthQuery(transport ReadTransport) *GetHealthQuery {
	return &GetHealthQuery{transport: transport}
}

func (q *GetHealthQuery) Query(ctx context.Context, msg GetHealthMessage) (*core.BackendServiceGroupHealth, error) {
	if q == nil || q.transport == nil {
		return nil, queryDependencyError("query: get health transport is required")
	}
	req := msg.Request
	return q.transport.GetHealth(ctx, &req)
}
