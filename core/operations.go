package core

import (
	"fmt"
	"strings"
)

// Operation names one remote call of the BackendServices surface.
type Operation string

const (
	OperationAddSignedURLKey    Operation = "add_signed_url_key"
	OperationAggregatedList     Operation = "aggregated_list"
	OperationDelete             Operation = "delete"
	OperationDeleteSignedURLKey Operation = "delete_signed_url_key"
	OperationGet                Operation = "get"
	OperationGetHealth          Operation = "get_health"
	OperationInsert             Operation = "insert"
	OperationList               Operation = "list"
	OperationPatch              Operation = "patch"
	OperationSetSecurityPolicy  Operation = "set_security_policy"
	OperationUpdate             Operation = "update"
)

const BackendServicesServiceName = "google.cloud.compute.v1.BackendServices"

func (o Operation) String() string { return string(o) }

// OperationDescriptor is the static description of one operation. LongRunning
// operations mutate state and answer with a ComputeOperation handle.
type OperationDescriptor struct {
	Operation   Operation
	Method      string
	RequestType string
	ResultType  string
	LongRunning bool
}

// FullMethod returns the RPC method path, e.g.
// /google.cloud.compute.v1.BackendServices/Get.
func (d OperationDescriptor) FullMethod() string {
	return "/" + BackendServicesServiceName + "/" + d.Method
}

var backendServicesOperations = []OperationDescriptor{
	{Operation: OperationAddSignedURLKey, Method: "AddSignedUrlKey", RequestType: "AddSignedUrlKeyBackendServiceRequest", ResultType: "Operation", LongRunning: true},
	{Operation: OperationAggregatedList, Method: "AggregatedList", RequestType: "AggregatedListBackendServicesRequest", ResultType: "BackendServiceAggregatedList"},
	{Operation: OperationDelete, Method: "Delete", RequestType: "DeleteBackendServiceRequest", ResultType: "Operation", LongRunning: true},
	{Operation: OperationDeleteSignedURLKey, Method: "DeleteSignedUrlKey", RequestType: "DeleteSignedUrlKeyBackendServiceRequest", ResultType: "Operation", LongRunning: true},
	{Operation: OperationGet, Method: "Get", RequestType: "GetBackendServiceRequest", ResultType: "BackendService"},
	{Operation: OperationGetHealth, Method: "GetHealth", RequestType: "GetHealthBackendServiceRequest", ResultType: "BackendServiceGroupHealth"},
	{Operation: OperationInsert, Method: "Insert", RequestType: "InsertBackendServiceRequest", ResultType: "Operation", LongRunning: true},
	{Operation: OperationList, Method: "List", RequestType: "ListBackendServicesRequest", ResultType: "BackendServiceList"},
	{Operation: OperationPatch, Method: "Patch", RequestType: "PatchBackendServiceRequest", ResultType: "Operation", LongRunning: true},
	{Operation: OperationSetSecurityPolicy, Method: "SetSecurityPolicy", RequestType: "SetSecurityPolicyBackendServiceRequest", ResultType: "Operation", LongRunning: true},
	{Operation: OperationUpdate, Method: "Update", RequestType: "UpdateBackendServiceRequest", ResultType: "Operation", LongRunning: true},
}

// BackendServicesOperations returns the full descriptor list in a stable order.
func BackendServicesOperations() []OperationDescriptor {
	return append([]OperationDescriptor(nil), backendServicesOperations...)
}

func LookupOperation(op Operation) (OperationDescriptor, bool) {
	for _, desc := range backendServicesOperations {
		if desc.Operation == op {
			return desc, true
		}
	}
	return OperationDescriptor{}, false
}

// ParseOperation accepts snake_case, kebab-case or RPC method names.
func ParseOperation(name string) (Operation, error) {
	normalized := normalizeOperationName(name)
	for _, desc := range backendServicesOperations {
		if normalized == string(desc.Operation) || normalized == normalizeOperationName(desc.Method) {
			return desc.Operation, nil
		}
	}
	return "", fmt.Errorf("core: unknown operation %q", name)
}

func normalizeOperationName(name string) string {
	name = strings.TrimSpace(name)
	var b strings.Builder
	for i, r := range name {
		switch {
		case r == '-' || r == ' ':
			b.WriteByte('_')
		case r >= 'A' && r <= 'Z':
			if i > 0 {
				prev := name[i-1]
				if prev != '_' && prev != '-' && !(prev >= 'A' && prev <= 'Z') {
					b.WriteByte('_')
				}
			}
			b.WriteRune(r + ('a' - 'A'))
		default:
			b.WriteRune(r)
		}
	}
	return b.String()
}
