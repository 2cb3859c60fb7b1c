package core

import "testing"

func TestBackendServicesOperations_Table(t *testing.T) {
	descs := BackendServicesOperations()
	if len(descs) != 11 {
		t.Fatalf("expected 11 operations, got %d", len(descs))
	}
	seen := map[Operation]bool{}
	longRunning := 0
	for _, desc := range descs {
		if seen[desc.Operation] {
			t.Fatalf("duplicate operation %q", desc.Operation)
		}
		seen[desc.Operation] = true
		if desc.LongRunning {
			longRunning++
			if desc.ResultType != "Operation" {
				t.Fatalf("expected long-running %q to return Operation", desc.Operation)
			}
		}
	}
	if longRunning != 7 {
		t.Fatalf("expected 7 long-running operations, got %d", longRunning)
	}

	descs[0].Method = "mutated"
	if BackendServicesOperations()[0].Method == "mutated" {
		t.Fatalf("expected descriptor list to be copied")
	}
}

func TestOperationDescriptor_FullMethod(t *testing.T) {
	desc, ok := LookupOperation(OperationGetHealth)
	if !ok {
		t.Fatalf("expected get_health descriptor")
	}
	if got := desc.FullMethod(); got != "/google.cloud.compute.v1.BackendServices/GetHealth" {
		t.Fatalf("unexpected full method %q", got)
	}
}

func TestParseOperation(t *testing.T) {
	cases := map[string]Operation{
		"add_signed_url_key": OperationAddSignedURLKey,
		"AddSignedUrlKey":    OperationAddSignedURLKey,
		"aggregated-list":    OperationAggregatedList,
		" SetSecurityPolicy": OperationSetSecurityPolicy,
		"get":                OperationGet,
	}
	for input, want := range cases {
		got, err := ParseOperation(input)
		if err != nil {
			t.Fatalf("parse %q: %v", input, err)
		}
		if got != want {
			t.Fatalf("parse %q: expected %q, got %q", input, want, got)
		}
	}
	if _, err := ParseOperation("resize"); err == nil {
		t.Fatalf("expected unknown operation error")
	}
}
