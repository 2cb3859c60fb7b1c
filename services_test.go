package backendservices

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	bscommand "github.com/goliatone/go-backend-services/command"
	"github.com/goliatone/go-backend-services/core"
	bsquery "github.com/goliatone/go-backend-services/query"
	"github.com/goliatone/go-backend-services/transport"
	gocmd "github.com/goliatone/go-command"
)

const authorizedUserJSON = `{
  "type": "authorized_user",
  "client_id": "client-123.apps.googleusercontent.com",
  "client_secret": "secret",
  "refresh_token": "refresh"
}`

func newBackendServer(t *testing.T) *httptest.Server {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("Authorization"); got != "Bearer tok" {
			t.Errorf("unexpected authorization header %q", got)
		}
		switch {
		case r.Method == http.MethodGet && r.URL.Path == "/compute/v1/projects/p/global/backendServices/web":
			_, _ = io.WriteString(w, `{"name":"web","protocol":"HTTP"}`)
		case r.Method == http.MethodDelete && r.URL.Path == "/compute/v1/projects/p/global/backendServices/web":
			_, _ = io.WriteString(w, `{"name":"operation-1","status":"RUNNING"}`)
		default:
			w.WriteHeader(http.StatusNotFound)
			_, _ = io.WriteString(w, `{"error":{"code":404,"message":"not found","status":"NOT_FOUND"}}`)
		}
	}))
	t.Cleanup(server.Close)
	return server
}

func TestNewClient_RESTRoundTrip(t *testing.T) {
	server := newBackendServer(t)

	client, err := NewClient(Config{},
		WithTransportSettings(" REST ", map[string]any{"base_url": server.URL + "/compute/v1/"}),
		WithOptions(WithCredentials(StaticTokenCredential("tok"))),
	)
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	defer client.Close()

	if client.State() != core.StateReady {
		t.Fatalf("expected ready transport, got %s", client.State())
	}
	if client.Host() != core.DefaultHost+":443" {
		t.Fatalf("unexpected host %q", client.Host())
	}
	svc, err := client.Get(context.Background(), &core.GetBackendServiceRequest{Project: "p", BackendService: "web"})
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if svc.Name != "web" || svc.Protocol != "HTTP" {
		t.Fatalf("unexpected backend service %+v", svc)
	}
	if _, err := client.Get(context.Background(), &core.GetBackendServiceRequest{Project: "p", BackendService: "missing"}); err == nil {
		t.Fatalf("expected not found failure")
	}
}

func TestNewClient_ConflictingCredentialSources(t *testing.T) {
	path := filepath.Join(t.TempDir(), "credentials.json")
	if err := os.WriteFile(path, []byte(authorizedUserJSON), 0o600); err != nil {
		t.Fatalf("write credentials: %v", err)
	}

	_, err := NewClient(Config{CredentialsFile: path}, WithOptions(WithCredentials(StaticTokenCredential("tok"))))
	if !errors.Is(err, ErrConflictingCredentials) {
		t.Fatalf("expected conflicting credentials, got %v", err)
	}

	client, err := NewClient(Config{CredentialsFile: path, QuotaProjectID: "billing"})
	if err != nil {
		t.Fatalf("new client from file: %v", err)
	}
	defer client.Close()
	if client.Credential().Source() != core.CredentialSourceFile {
		t.Fatalf("expected file credential, got %q", client.Credential().Source())
	}
	if client.Credential().QuotaProjectID() != "billing" {
		t.Fatalf("expected quota override, got %q", client.Credential().QuotaProjectID())
	}
}

func TestNewClient_UnknownTransportKind(t *testing.T) {
	_, err := NewClient(Config{Transport: "carrier-pigeon"},
		WithTransportRegistry(transport.NewDefaultRegistry()),
		WithOptions(WithCredentials(StaticTokenCredential("tok"))),
	)
	if err == nil {
		t.Fatalf("expected unknown transport kind to fail")
	}
}

func TestFacade_HandlersShareTransport(t *testing.T) {
	server := newBackendServer(t)
	client, err := NewClient(Config{},
		WithTransportSettings("rest", map[string]any{"base_url": server.URL + "/compute/v1/"}),
		WithOptions(WithCredentials(StaticTokenCredential("tok"))),
	)
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	defer client.Close()

	facade, err := NewFacade(client)
	if err != nil {
		t.Fatalf("new facade: %v", err)
	}
	if facade.Transport() != CommandQueryTransport(client) {
		t.Fatalf("expected facade to keep the transport")
	}

	svc, err := facade.Queries().Get.Query(context.Background(), bsquery.GetMessage{
		Request: core.GetBackendServiceRequest{Project: "p", BackendService: "web"},
	})
	if err != nil {
		t.Fatalf("get query: %v", err)
	}
	if svc.Name != "web" {
		t.Fatalf("unexpected backend service %+v", svc)
	}

	collector := gocmd.NewResult[*core.ComputeOperation]()
	ctx := gocmd.ContextWithResult(context.Background(), collector)
	if err := facade.Commands().Delete.Execute(ctx, bscommand.DeleteMessage{
		Request: core.DeleteBackendServiceRequest{Project: "p", BackendService: "web"},
	}); err != nil {
		t.Fatalf("delete command: %v", err)
	}
	operation, ok := collector.Load()
	if !ok || operation.Name != "operation-1" {
		t.Fatalf("expected stored operation, got %#v", operation)
	}

	if _, err := NewFacade(nil); err == nil {
		t.Fatalf("expected nil transport to fail")
	}
}
