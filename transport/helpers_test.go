package transport

import (
	"context"
	"testing"
	"time"

	"github.com/goliatone/go-backend-services/core"
	goerrors "github.com/goliatone/go-errors"
	"golang.org/x/oauth2"
)

func testCredential() *core.Credential {
	return core.NewCredential(
		oauth2.StaticTokenSource(&oauth2.Token{AccessToken: "tok", TokenType: "Bearer"}),
		core.WithPrincipal("tester@example.com"),
		core.WithCredentialQuotaProject("quota-project"),
	)
}

func testClientInfo() core.ClientInfo {
	return core.ClientInfo{GoVersion: "1.24.10", LibraryVersion: "0.1.0"}
}

func noSleep(ctx context.Context, _ time.Duration) error {
	return ctx.Err()
}

func newCoreTransport(t *testing.T, cfg core.Config, factory core.OperationsFactory, opts ...core.Option) *core.Transport {
	t.Helper()
	base := []core.Option{
		core.WithCredentials(testCredential()),
		core.WithClientInfo(testClientInfo()),
		core.WithSleeper(noSleep),
	}
	transport, err := core.NewTransport(cfg, factory, append(base, opts...)...)
	if err != nil {
		t.Fatalf("new transport: %v", err)
	}
	t.Cleanup(func() { _ = transport.Close() })
	return transport
}

// expectNilRequestsRejected calls every operation on ops with a nil request.
func expectNilRequestsRejected(t *testing.T, ops core.Operations) {
	t.Helper()
	ctx := context.Background()
	calls := map[core.Operation]func() error{
		core.OperationAddSignedURLKey:    func() error { _, err := ops.AddSignedURLKey(ctx, nil); return err },
		core.OperationAggregatedList:     func() error { _, err := ops.AggregatedList(ctx, nil); return err },
		core.OperationDelete:             func() error { _, err := ops.Delete(ctx, nil); return err },
		core.OperationDeleteSignedURLKey: func() error { _, err := ops.DeleteSignedURLKey(ctx, nil); return err },
		core.OperationGet:                func() error { _, err := ops.Get(ctx, nil); return err },
		core.OperationGetHealth:          func() error { _, err := ops.GetHealth(ctx, nil); return err },
		core.OperationInsert:             func() error { _, err := ops.Insert(ctx, nil); return err },
		core.OperationList:               func() error { _, err := ops.List(ctx, nil); return err },
		core.OperationPatch:              func() error { _, err := ops.Patch(ctx, nil); return err },
		core.OperationSetSecurityPolicy:  func() error { _, err := ops.SetSecurityPolicy(ctx, nil); return err },
		core.OperationUpdate:             func() error { _, err := ops.Update(ctx, nil); return err },
	}
	if len(calls) != len(core.BackendServicesOperations()) {
		t.Fatalf("expected a call per operation, got %d", len(calls))
	}
	for op, call := range calls {
		err := call()
		var rich *goerrors.Error
		if !goerrors.As(err, &rich) || rich.Category != goerrors.CategoryBadInput {
			t.Fatalf("%s: expected bad input error for nil request, got %v", op, err)
		}
	}
}
