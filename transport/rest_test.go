package transport

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/goliatone/go-backend-services/core"
	goerrors "github.com/goliatone/go-errors"
)

type recordedRequest struct {
	method  string
	path    string
	query   map[string]string
	headers http.Header
	body    map[string]any
}

type restRecorder struct {
	mu       sync.Mutex
	requests []recordedRequest
}

func (r *restRecorder) record(t *testing.T, req *http.Request) recordedRequest {
	t.Helper()
	query := map[string]string{}
	for key := range req.URL.Query() {
		query[key] = req.URL.Query().Get(key)
	}
	recorded := recordedRequest{
		method:  req.Method,
		path:    req.URL.Path,
		query:   query,
		headers: req.Header.Clone(),
	}
	raw, _ := io.ReadAll(req.Body)
	if len(raw) > 0 {
		if err := json.Unmarshal(raw, &recorded.body); err != nil {
			t.Errorf("decode request body: %v", err)
		}
	}
	r.mu.Lock()
	r.requests = append(r.requests, recorded)
	r.mu.Unlock()
	return recorded
}

func (r *restRecorder) all() []recordedRequest {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]recordedRequest(nil), r.requests...)
}

func newRESTServer(t *testing.T, handler func(w http.ResponseWriter, req recordedRequest)) (*httptest.Server, *restRecorder) {
	t.Helper()
	recorder := &restRecorder{}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		recorded := recorder.record(t, r)
		w.Header().Set("Content-Type", "application/json")
		handler(w, recorded)
	}))
	t.Cleanup(server.Close)
	return server, recorder
}

func restConfig(server *httptest.Server) core.Config {
	return core.Config{
		Host:     server.Listener.Addr().String(),
		Insecure: true,
	}
}

func TestRESTTransport_GetSendsRouteAndHeaders(t *testing.T) {
	server, recorder := newRESTServer(t, func(w http.ResponseWriter, _ recordedRequest) {
		_, _ = io.WriteString(w, `{"name":"web","protocol":"HTTP","backends":[{"group":"ig-1"}]}`)
	})
	transport := newCoreTransport(t, restConfig(server), RESTFactory(RESTOptions{Client: server.Client()}))

	svc, err := transport.Get(context.Background(), &core.GetBackendServiceRequest{Project: "my-project", BackendService: "web"})
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if svc.Name != "web" || svc.Protocol != "HTTP" || len(svc.Backends) != 1 {
		t.Fatalf("unexpected backend service %+v", svc)
	}

	requests := recorder.all()
	if len(requests) != 1 {
		t.Fatalf("expected one request, got %d", len(requests))
	}
	got := requests[0]
	if got.method != http.MethodGet {
		t.Fatalf("expected GET, got %s", got.method)
	}
	if got.path != "/compute/v1/projects/my-project/global/backendServices/web" {
		t.Fatalf("unexpected path %q", got.path)
	}
	if got.headers.Get("Authorization") != "Bearer tok" {
		t.Fatalf("unexpected authorization header %q", got.headers.Get("Authorization"))
	}
	if got.headers.Get(headerUserProject) != "quota-project" {
		t.Fatalf("expected quota project header, got %q", got.headers.Get(headerUserProject))
	}
	if got.headers.Get(headerAPIClient) != "gl-go/1.24.10 gccl/0.1.0 rest" {
		t.Fatalf("unexpected api client header %q", got.headers.Get(headerAPIClient))
	}
	if got.headers.Get("User-Agent") != "go-backend-services/0.1.0" {
		t.Fatalf("unexpected user agent %q", got.headers.Get("User-Agent"))
	}
}

func TestRESTTransport_MutationRoutes(t *testing.T) {
	server, recorder := newRESTServer(t, func(w http.ResponseWriter, _ recordedRequest) {
		_, _ = io.WriteString(w, `{"name":"operation-1","status":"RUNNING"}`)
	})
	transport := newCoreTransport(t, restConfig(server), RESTFactory(RESTOptions{Client: server.Client()}))
	ctx := context.Background()

	calls := []struct {
		name   string
		call   func() (*core.ComputeOperation, error)
		method string
		path   string
		query  map[string]string
		body   map[string]any
	}{
		{
			name: "insert",
			call: func() (*core.ComputeOperation, error) {
				return transport.Insert(ctx, &core.InsertBackendServiceRequest{
					Project:                "p",
					RequestID:              "req-1",
					BackendServiceResource: &core.BackendService{Name: "web"},
				})
			},
			method: http.MethodPost,
			path:   "/compute/v1/projects/p/global/backendServices",
			query:  map[string]string{"requestId": "req-1"},
			body:   map[string]any{"name": "web"},
		},
		{
			name: "patch",
			call: func() (*core.ComputeOperation, error) {
				return transport.Patch(ctx, &core.PatchBackendServiceRequest{
					Project:                "p",
					BackendService:         "web",
					RequestID:              "req-2",
					BackendServiceResource: &core.BackendService{TimeoutSec: 30},
				})
			},
			method: http.MethodPatch,
			path:   "/compute/v1/projects/p/global/backendServices/web",
			query:  map[string]string{"requestId": "req-2"},
			body:   map[string]any{"timeoutSec": float64(30)},
		},
		{
			name: "update",
			call: func() (*core.ComputeOperation, error) {
				return transport.Update(ctx, &core.UpdateBackendServiceRequest{
					Project:                "p",
					BackendService:         "web",
					RequestID:              "req-3",
					BackendServiceResource: &core.BackendService{Name: "web"},
				})
			},
			method: http.MethodPut,
			path:   "/compute/v1/projects/p/global/backendServices/web",
			query:  map[string]string{"requestId": "req-3"},
			body:   map[string]any{"name": "web"},
		},
		{
			name: "delete",
			call: func() (*core.ComputeOperation, error) {
				return transport.Delete(ctx, &core.DeleteBackendServiceRequest{Project: "p", BackendService: "web", RequestID: "req-4"})
			},
			method: http.MethodDelete,
			path:   "/compute/v1/projects/p/global/backendServices/web",
			query:  map[string]string{"requestId": "req-4"},
		},
		{
			name: "add signed url key",
			call: func() (*core.ComputeOperation, error) {
				return transport.AddSignedURLKey(ctx, &core.AddSignedURLKeyBackendServiceRequest{
					Project:              "p",
					BackendService:       "web",
					RequestID:            "req-5",
					SignedURLKeyResource: &core.SignedURLKey{KeyName: "key-1", KeyValue: "c2VjcmV0"},
				})
			},
			method: http.MethodPost,
			path:   "/compute/v1/projects/p/global/backendServices/web/addSignedUrlKey",
			query:  map[string]string{"requestId": "req-5"},
			body:   map[string]any{"keyName": "key-1", "keyValue": "c2VjcmV0"},
		},
		{
			name: "delete signed url key",
			call: func() (*core.ComputeOperation, error) {
				return transport.DeleteSignedURLKey(ctx, &core.DeleteSignedURLKeyBackendServiceRequest{
					Project:        "p",
					BackendService: "web",
					KeyName:        "key-1",
					RequestID:      "req-6",
				})
			},
			method: http.MethodPost,
			path:   "/compute/v1/projects/p/global/backendServices/web/deleteSignedUrlKey",
			query:  map[string]string{"requestId": "req-6", "keyName": "key-1"},
		},
		{
			name: "set security policy",
			call: func() (*core.ComputeOperation, error) {
				return transport.SetSecurityPolicy(ctx, &core.SetSecurityPolicyBackendServiceRequest{
					Project:                         "p",
					BackendService:                  "web",
					RequestID:                       "req-7",
					SecurityPolicyReferenceResource: &core.SecurityPolicyReference{SecurityPolicy: "policies/edge"},
				})
			},
			method: http.MethodPost,
			path:   "/compute/v1/projects/p/global/backendServices/web/setSecurityPolicy",
			query:  map[string]string{"requestId": "req-7"},
			body:   map[string]any{"securityPolicy": "policies/edge"},
		},
	}

	for index, tc := range calls {
		t.Run(tc.name, func(t *testing.T) {
			op, err := tc.call()
			if err != nil {
				t.Fatalf("%s: %v", tc.name, err)
			}
			if op.Name != "operation-1" || op.Done() {
				t.Fatalf("unexpected operation %+v", op)
			}
			requests := recorder.all()
			if len(requests) != index+1 {
				t.Fatalf("expected %d requests, got %d", index+1, len(requests))
			}
			got := requests[index]
			if got.method != tc.method || got.path != tc.path {
				t.Fatalf("unexpected route %s %s", got.method, got.path)
			}
			for key, want := range tc.query {
				if got.query[key] != want {
					t.Fatalf("expected query %s=%q, got %q", key, want, got.query[key])
				}
			}
			for key, want := range tc.body {
				if got.body[key] != want {
					t.Fatalf("expected body %s=%v, got %v", key, want, got.body[key])
				}
			}
			if tc.body != nil && got.headers.Get("Content-Type") != "application/json" {
				t.Fatalf("expected json content type")
			}
		})
	}
}

func TestRESTTransport_ListQueryParameters(t *testing.T) {
	server, recorder := newRESTServer(t, func(w http.ResponseWriter, req recordedRequest) {
		if strings.Contains(req.path, "/aggregated/") {
			_, _ = io.WriteString(w, `{"items":{"global":{"backendServices":[{"name":"web"}]}}}`)
			return
		}
		_, _ = io.WriteString(w, `{"items":[{"name":"web"},{"name":"api"}],"nextPageToken":"next"}`)
	})
	transport := newCoreTransport(t, restConfig(server), RESTFactory(RESTOptions{Client: server.Client()}))

	includeAll := true
	aggregated, err := transport.AggregatedList(context.Background(), &core.AggregatedListBackendServicesRequest{
		Project:          "p",
		Filter:           `name = "web"`,
		MaxResults:       5,
		IncludeAllScopes: &includeAll,
	})
	if err != nil {
		t.Fatalf("aggregated list: %v", err)
	}
	if len(aggregated.Items["global"].BackendServices) != 1 {
		t.Fatalf("unexpected aggregated items %+v", aggregated.Items)
	}

	list, err := transport.List(context.Background(), &core.ListBackendServicesRequest{Project: "p", PageToken: "tok-2", OrderBy: "name"})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(list.Items) != 2 || list.NextPageToken != "next" {
		t.Fatalf("unexpected list %+v", list)
	}

	requests := recorder.all()
	if requests[0].path != "/compute/v1/projects/p/aggregated/backendServices" {
		t.Fatalf("unexpected aggregated path %q", requests[0].path)
	}
	if requests[0].query["includeAllScopes"] != "true" || requests[0].query["maxResults"] != "5" || requests[0].query["filter"] != `name = "web"` {
		t.Fatalf("unexpected aggregated query %+v", requests[0].query)
	}
	if _, ok := requests[0].query["returnPartialSuccess"]; ok {
		t.Fatalf("expected unset booleans to be omitted")
	}
	if requests[1].query["pageToken"] != "tok-2" || requests[1].query["orderBy"] != "name" {
		t.Fatalf("unexpected list query %+v", requests[1].query)
	}
}

func TestRESTTransport_GetHealthPostsGroupReference(t *testing.T) {
	server, recorder := newRESTServer(t, func(w http.ResponseWriter, _ recordedRequest) {
		_, _ = io.WriteString(w, `{"healthStatus":[{"instance":"vm-1","healthState":"HEALTHY"}]}`)
	})
	transport := newCoreTransport(t, restConfig(server), RESTFactory(RESTOptions{Client: server.Client()}))

	health, err := transport.GetHealth(context.Background(), &core.GetHealthBackendServiceRequest{
		Project:                        "p",
		BackendService:                 "web",
		ResourceGroupReferenceResource: &core.ResourceGroupReference{Group: "zones/us-east1-b/instanceGroups/ig-1"},
	})
	if err != nil {
		t.Fatalf("get health: %v", err)
	}
	if health.HealthStatus[0].HealthState != "HEALTHY" {
		t.Fatalf("unexpected health %+v", health)
	}
	got := recorder.all()[0]
	if got.method != http.MethodPost || got.body["group"] != "zones/us-east1-b/instanceGroups/ig-1" {
		t.Fatalf("unexpected get health request %s %+v", got.method, got.body)
	}
}

func TestRESTTransport_APIErrorIsTyped(t *testing.T) {
	server, _ := newRESTServer(t, func(w http.ResponseWriter, _ recordedRequest) {
		w.WriteHeader(http.StatusNotFound)
		_, _ = io.WriteString(w, `{"error":{"code":404,"message":"The resource 'web' was not found","status":"NOT_FOUND","errors":[{"reason":"notFound"}]}}`)
	})
	transport := newCoreTransport(t, restConfig(server), RESTFactory(RESTOptions{Client: server.Client()}))

	_, err := transport.Get(context.Background(), &core.GetBackendServiceRequest{Project: "p", BackendService: "web"})
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("expected api error, got %T %v", err, err)
	}
	if apiErr.HTTPStatusCode() != http.StatusNotFound || apiErr.Status != "NOT_FOUND" || apiErr.Reason != "notFound" {
		t.Fatalf("unexpected api error %+v", apiErr)
	}
	if apiErr.Message != "The resource 'web' was not found" {
		t.Fatalf("unexpected message %q", apiErr.Message)
	}
	if apiErr.Category() != goerrors.CategoryNotFound {
		t.Fatalf("expected not found category, got %q", apiErr.Category())
	}
}

func TestRESTTransport_RetriesUnavailableWithStableRequestID(t *testing.T) {
	var mu sync.Mutex
	attempts := 0
	server, recorder := newRESTServer(t, func(w http.ResponseWriter, _ recordedRequest) {
		mu.Lock()
		attempts++
		current := attempts
		mu.Unlock()
		if current < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			_, _ = io.WriteString(w, `{"error":{"code":503,"message":"backend busy"}}`)
			return
		}
		_, _ = io.WriteString(w, `{"name":"operation-9","status":"DONE"}`)
	})
	cfg := restConfig(server)
	cfg.Retry = core.RetryConfig{MaxAttempts: 4}
	transport := newCoreTransport(t, cfg, RESTFactory(RESTOptions{Client: server.Client()}))

	op, err := transport.Delete(context.Background(), &core.DeleteBackendServiceRequest{Project: "p", BackendService: "web"})
	if err != nil {
		t.Fatalf("delete: %v", err)
	}
	if !op.Done() {
		t.Fatalf("expected finished operation, got %+v", op)
	}
	requests := recorder.all()
	if len(requests) != 3 {
		t.Fatalf("expected 3 attempts, got %d", len(requests))
	}
	id := requests[0].query["requestId"]
	if id == "" {
		t.Fatalf("expected generated request id")
	}
	for _, req := range requests {
		if req.query["requestId"] != id {
			t.Fatalf("expected the same request id on every attempt, got %q and %q", id, req.query["requestId"])
		}
	}
}

func TestRESTTransport_ResponseLimitReturnsRichError(t *testing.T) {
	server, _ := newRESTServer(t, func(w http.ResponseWriter, _ recordedRequest) {
		_, _ = io.WriteString(w, `{"name":"a-very-long-backend-service-name"}`)
	})
	transport := newCoreTransport(t, restConfig(server), RESTFactory(RESTOptions{Client: server.Client(), MaxResponseBodyBytes: 8}))

	_, err := transport.Get(context.Background(), &core.GetBackendServiceRequest{Project: "p", BackendService: "web"})
	var rich *goerrors.Error
	if !goerrors.As(err, &rich) {
		t.Fatalf("expected go-errors envelope, got %T", err)
	}
	if rich.Category != goerrors.CategoryExternal {
		t.Fatalf("expected external category, got %q", rich.Category)
	}
	if rich.TextCode != core.TransportErrorExternal {
		t.Fatalf("expected %q text code, got %q", core.TransportErrorExternal, rich.TextCode)
	}
	if rich.Code != http.StatusBadGateway {
		t.Fatalf("expected %d code, got %d", http.StatusBadGateway, rich.Code)
	}
}

func TestRESTTransport_MissingPathFieldsRejectedLocally(t *testing.T) {
	server, recorder := newRESTServer(t, func(w http.ResponseWriter, _ recordedRequest) {
		_, _ = io.WriteString(w, `{}`)
	})
	transport := newCoreTransport(t, restConfig(server), RESTFactory(RESTOptions{Client: server.Client()}))

	_, err := transport.Get(context.Background(), &core.GetBackendServiceRequest{Project: "p"})
	var rich *goerrors.Error
	if !goerrors.As(err, &rich) || rich.TextCode != core.TransportErrorBadInput {
		t.Fatalf("expected bad input error, got %v", err)
	}
	if _, err := transport.Insert(context.Background(), &core.InsertBackendServiceRequest{Project: "p"}); err == nil {
		t.Fatalf("expected insert without resource to fail")
	}
	if _, err := transport.List(context.Background(), &core.ListBackendServicesRequest{}); err == nil {
		t.Fatalf("expected list without project to fail")
	}
	if len(recorder.all()) != 0 {
		t.Fatalf("expected no http requests")
	}
}

func TestRESTTransport_PathSegmentsCannotEscapeResource(t *testing.T) {
	server, recorder := newRESTServer(t, func(w http.ResponseWriter, _ recordedRequest) {
		_, _ = io.WriteString(w, `{"name":"ok"}`)
	})
	transport := newCoreTransport(t, restConfig(server), RESTFactory(RESTOptions{Client: server.Client()}))

	rejected := []*core.GetBackendServiceRequest{
		{Project: "p", BackendService: "a/../x"},
		{Project: "p", BackendService: ".."},
		{Project: "../other", BackendService: "web"},
		{Project: "p", BackendService: `a\b`},
	}
	for _, req := range rejected {
		_, err := transport.Get(context.Background(), req)
		var rich *goerrors.Error
		if !goerrors.As(err, &rich) || rich.TextCode != core.TransportErrorBadInput {
			t.Fatalf("expected bad input for %+v, got %v", req, err)
		}
	}
	if _, err := transport.Delete(context.Background(), &core.DeleteBackendServiceRequest{Project: "p", BackendService: "."}); err == nil {
		t.Fatalf("expected dot segment to be rejected")
	}
	if len(recorder.all()) != 0 {
		t.Fatalf("expected no http requests, got %d", len(recorder.all()))
	}

	if _, err := transport.Get(context.Background(), &core.GetBackendServiceRequest{Project: "p", BackendService: "web?x#y"}); err != nil {
		t.Fatalf("get: %v", err)
	}
	requests := recorder.all()
	if len(requests) != 1 || requests[0].path != "/compute/v1/projects/p/global/backendServices/web?x#y" {
		t.Fatalf("expected reserved characters kept inside one segment, got %+v", requests)
	}
	if len(requests[0].query) != 0 {
		t.Fatalf("expected no query parameters, got %v", requests[0].query)
	}
}

func TestRESTTransport_DirectNilRequestsRejected(t *testing.T) {
	server, recorder := newRESTServer(t, func(w http.ResponseWriter, _ recordedRequest) {
		_, _ = io.WriteString(w, `{}`)
	})
	transport := newCoreTransport(t, restConfig(server), RESTFactory(RESTOptions{Client: server.Client()}))

	expectNilRequestsRejected(t, transport.Operations())
	if len(recorder.all()) != 0 {
		t.Fatalf("expected no http requests")
	}
}

func TestNewRESTTransport_BaseURL(t *testing.T) {
	rest, err := NewRESTTransport(core.TransportEnv{Host: "compute.googleapis.com:443"}, RESTOptions{})
	if err != nil {
		t.Fatalf("new rest transport: %v", err)
	}
	if rest.BaseURL() != "https://compute.googleapis.com:443/compute/v1/" {
		t.Fatalf("unexpected base url %q", rest.BaseURL())
	}

	override, err := NewRESTTransport(core.TransportEnv{}, RESTOptions{BaseURL: "http://localhost:8080/compute/beta"})
	if err != nil {
		t.Fatalf("new rest transport with base url: %v", err)
	}
	if override.BaseURL() != "http://localhost:8080/compute/beta/" {
		t.Fatalf("unexpected override base url %q", override.BaseURL())
	}

	if _, err := NewRESTTransport(core.TransportEnv{}, RESTOptions{}); err == nil {
		t.Fatalf("expected error without host")
	}
}
