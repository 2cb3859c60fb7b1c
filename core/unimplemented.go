package core

import "context"

// UnimplementedOperations answers every operation with a not-implemented
// error. Embedding types must override Supports to report the operations they
// cover; without that override NewTransport rejects the transport.
type UnimplementedOperations struct{}

func (UnimplementedOperations) Supports(Operation) bool {
	return false
}

func (UnimplementedOperations) AddSignedURLKey(context.Context, *AddSignedURLKeyBackendServiceRequest) (*ComputeOperation, error) {
	return nil, newNotImplementedError(OperationAddSignedURLKey)
}

func (UnimplementedOperations) AggregatedList(context.Context, *AggregatedListBackendServicesRequest) (*BackendServiceAggregatedList, error) {
	return nil, newNotImplementedError(OperationAggregatedList)
}

func (UnimplementedOperations) Delete(context.Context, *DeleteBackendServiceRequest) (*ComputeOperation, error) {
	return nil, newNotImplementedError(OperationDelete)
}

func (UnimplementedOperations) DeleteSignedURLKey(context.Context, *DeleteSignedURLKeyBackendServiceRequest) (*ComputeOperation, error) {
	return nil, newNotImplementedError(OperationDeleteSignedURLKey)
}

func (UnimplementedOperations) Get(context.Context, *GetBackendServiceRequest) (*BackendService, error) {
	return nil, newNotImplementedError(OperationGet)
}

func (UnimplementedOperations) GetHealth(context.Context, *GetHealthBackendServiceRequest) (*BackendServiceGroupHealth, error) {
	return nil, newNotImplementedError(OperationGetHealth)
}

func (UnimplementedOperations) Insert(context.Context, *InsertBackendServiceRequest) (*ComputeOperation, error) {
	return nil, newNotImplementedError(OperationInsert)
}

func (UnimplementedOperations) List(context.Context, *ListBackendServicesRequest) (*BackendServiceList, error) {
	return nil, newNotImplementedError(OperationList)
}

func (UnimplementedOperations) Patch(context.Context, *PatchBackendServiceRequest) (*ComputeOperation, error) {
	return nil, newNotImplementedError(OperationPatch)
}

func (UnimplementedOperations) SetSecurityPolicy(context.Context, *SetSecurityPolicyBackendServiceRequest) (*ComputeOperation, error) {
	return nil, newNotImplementedError(OperationSetSecurityPolicy)
}

func (UnimplementedOperations) Update(context.Context, *UpdateBackendServiceRequest) (*ComputeOperation, error) {
	return nil, newNotImplementedError(OperationUpdate)
}
