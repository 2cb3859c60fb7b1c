package transport

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/goliatone/go-backend-services/core"
	goerrors "github.com/goliatone/go-errors"
)

const KindREST = "rest"

const (
	restAPIPath                               = "/compute/v1/"
	defaultRESTClientTimeout                  = 5 * time.Minute
	defaultRESTResponseBodyLimit        int64 = 32 << 20
	headerAPIClient                           = "x-goog-api-client"
	headerUserProject                         = "x-goog-user-project"
	backendServicesCollection                 = "global/backendServices"
	aggregatedBackendServicesCollection       = "aggregated/backendServices"
)

type HTTPDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

type RESTOptions struct {
	Client HTTPDoer
	// BaseURL replaces https://{host}/compute/v1/.
	BaseURL              string
	MaxResponseBodyBytes int64
}

// RESTTransport implements the backend services operations over the Compute
// JSON REST surface.
type RESTTransport struct {
	client               HTTPDoer
	baseURL              *url.URL
	credential           *core.Credential
	clientInfo           core.ClientInfo
	maxResponseBodyBytes int64
	logger               core.Logger
}

func NewRESTTransport(env core.TransportEnv, opts RESTOptions) (*RESTTransport, error) {
	client := opts.Client
	if client == nil {
		client = &http.Client{Timeout: defaultRESTClientTimeout}
	}
	rawBase := strings.TrimSpace(opts.BaseURL)
	if rawBase == "" {
		host := strings.TrimSpace(env.Host)
		if host == "" {
			return nil, transportError(
				"transport: rest transport requires a host",
				goerrors.CategoryBadInput,
				http.StatusBadRequest,
				map[string]any{"transport": KindREST},
			)
		}
		scheme := "https"
		if env.Config.Insecure {
			scheme = "http"
		}
		rawBase = scheme + "://" + host + restAPIPath
	}
	if !strings.HasSuffix(rawBase, "/") {
		rawBase += "/"
	}
	base, err := url.Parse(rawBase)
	if err != nil || base.Host == "" {
		return nil, transportWrapError(
			err,
			goerrors.CategoryBadInput,
			"transport: invalid rest base url",
			http.StatusBadRequest,
			map[string]any{"transport": KindREST, "base_url": rawBase},
		)
	}
	limit := opts.MaxResponseBodyBytes
	if limit <= 0 {
		limit = defaultRESTResponseBodyLimit
	}
	return &RESTTransport{
		client:               client,
		baseURL:              base,
		credential:           env.Credential,
		clientInfo:           env.ClientInfo.WithTransport("rest"),
		maxResponseBodyBytes: limit,
		logger:               env.Logger,
	}, nil
}

// RESTFactory adapts NewRESTTransport to core.OperationsFactory.
func RESTFactory(opts RESTOptions) core.OperationsFactory {
	return func(_ context.Context, env core.TransportEnv) (core.Operations, error) {
		return NewRESTTransport(env, opts)
	}
}

func (t *RESTTransport) BaseURL() string {
	if t == nil || t.baseURL == nil {
		return ""
	}
	return t.baseURL.String()
}

type restRoute struct {
	op     core.Operation
	method string
	path   string
	query  url.Values
	body   any
}

func doREST[Res any](ctx context.Context, t *RESTTransport, route restRoute) (*Res, error) {
	body, err := t.do(ctx, route)
	if err != nil {
		return nil, err
	}
	out := new(Res)
	if len(bytes.TrimSpace(body)) == 0 {
		return out, nil
	}
	if err := json.Unmarshal(body, out); err != nil {
		return nil, transportWrapError(
			err,
			goerrors.CategoryExternal,
			"transport: decode response body",
			http.StatusBadGateway,
			map[string]any{"transport": KindREST, "operation": string(route.op)},
		)
	}
	return out, nil
}

func (t *RESTTransport) do(ctx context.Context, route restRoute) ([]byte, error) {
	if t == nil || t.client == nil {
		return nil, transportError(
			"transport: rest transport requires an http client",
			goerrors.CategoryInternal,
			http.StatusInternalServerError,
			map[string]any{"transport": KindREST},
		)
	}
	if ctx == nil {
		ctx = context.Background()
	}

	target := *t.baseURL
	target.Path = t.baseURL.Path + route.path
	target.RawPath = ""
	if len(route.query) > 0 {
		target.RawQuery = route.query.Encode()
	}

	var reader io.Reader
	if route.body != nil {
		payload, err := json.Marshal(route.body)
		if err != nil {
			return nil, transportWrapError(
				err,
				goerrors.CategoryBadInput,
				"transport: encode request body",
				http.StatusBadRequest,
				map[string]any{"transport": KindREST, "operation": string(route.op)},
			)
		}
		reader = bytes.NewReader(payload)
	}

	httpReq, err := http.NewRequestWithContext(ctx, route.method, target.String(), reader)
	if err != nil {
		return nil, transportWrapError(
			err,
			goerrors.CategoryBadInput,
			"transport: create http request",
			http.StatusBadRequest,
			map[string]any{"transport": KindREST, "method": route.method, "url": target.String()},
		)
	}
	if err := t.applyHeaders(ctx, httpReq, route.body != nil); err != nil {
		return nil, err
	}

	httpRes, err := t.client.Do(httpReq)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		return nil, transportWrapError(
			err,
			goerrors.CategoryExternal,
			"transport: execute http request",
			http.StatusBadGateway,
			map[string]any{"transport": KindREST, "method": route.method, "url": target.String()},
		)
	}
	defer httpRes.Body.Close()

	body, err := io.ReadAll(io.LimitReader(httpRes.Body, t.maxResponseBodyBytes+1))
	if err != nil {
		return nil, transportWrapError(
			err,
			goerrors.CategoryExternal,
			"transport: read response body",
			http.StatusBadGateway,
			map[string]any{"transport": KindREST, "status_code": httpRes.StatusCode},
		)
	}
	if int64(len(body)) > t.maxResponseBodyBytes {
		return nil, transportError(
			fmt.Sprintf("transport: response body exceeds limit of %d bytes", t.maxResponseBodyBytes),
			goerrors.CategoryExternal,
			http.StatusBadGateway,
			map[string]any{
				"transport":        KindREST,
				"status_code":      httpRes.StatusCode,
				"response_limit_b": t.maxResponseBodyBytes,
			},
		)
	}
	if httpRes.StatusCode < 200 || httpRes.StatusCode > 299 {
		return nil, newAPIError(httpRes.StatusCode, body)
	}
	return body, nil
}

func (t *RESTTransport) applyHeaders(ctx context.Context, req *http.Request, hasBody bool) error {
	info := t.clientInfo
	if fromCtx, ok := core.ClientInfoFromContext(ctx); ok {
		info = fromCtx.WithTransport("rest")
	}
	for key, value := range info.Headers() {
		req.Header.Set(key, value)
	}
	req.Header.Set("Accept", "application/json")
	if hasBody {
		req.Header.Set("Content-Type", "application/json")
	}
	if t.credential == nil {
		return nil
	}
	authorization, err := t.credential.AuthorizationHeader(ctx)
	if err != nil {
		return transportWrapError(
			err,
			goerrors.CategoryAuth,
			"transport: fetch access token",
			http.StatusUnauthorized,
			map[string]any{"transport": KindREST, "principal": t.credential.Principal()},
		)
	}
	req.Header.Set("Authorization", authorization)
	if quota := t.credential.QuotaProjectID(); quota != "" {
		req.Header.Set(headerUserProject, quota)
	}
	return nil
}

func resourcePath(op core.Operation, project string, backendService string, suffix string) (string, error) {
	project, err := pathSegment(op, "project", project)
	if err != nil {
		return "", err
	}
	path := "projects/" + project + "/" + backendServicesCollection
	if backendService != "-" {
		backendService, err = pathSegment(op, "backend_service", backendService)
		if err != nil {
			return "", err
		}
		path += "/" + backendService
	}
	if suffix != "" {
		path += "/" + suffix
	}
	return path, nil
}

func collectionPath(op core.Operation, project string, collection string) (string, error) {
	project, err := pathSegment(op, "project", project)
	if err != nil {
		return "", err
	}
	return "projects/" + project + "/" + collection, nil
}

// pathSegment accepts one resource name segment. Separators and dot segments
// would address a different resource and are rejected.
func pathSegment(op core.Operation, field string, value string) (string, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return "", missingFieldError(op, field)
	}
	if value == "." || value == ".." || strings.ContainsAny(value, "/\\") {
		return "", invalidFieldError(op, field, value)
	}
	return value, nil
}

type listParams struct {
	filter               string
	orderBy              string
	pageToken            string
	maxResults           uint32
	includeAllScopes     *bool
	returnPartialSuccess *bool
}

func (p listParams) values() url.Values {
	query := url.Values{}
	setQuery(query, "filter", p.filter)
	setQuery(query, "orderBy", p.orderBy)
	setQuery(query, "pageToken", p.pageToken)
	if p.maxResults > 0 {
		query.Set("maxResults", strconv.FormatUint(uint64(p.maxResults), 10))
	}
	if p.includeAllScopes != nil {
		query.Set("includeAllScopes", strconv.FormatBool(*p.includeAllScopes))
	}
	if p.returnPartialSuccess != nil {
		query.Set("returnPartialSuccess", strconv.FormatBool(*p.returnPartialSuccess))
	}
	return query
}

func requestIDQuery(requestID string) url.Values {
	query := url.Values{}
	setQuery(query, "requestId", requestID)
	return query
}

func setQuery(query url.Values, key string, value string) {
	if value = strings.TrimSpace(value); value != "" {
		query.Set(key, value)
	}
}

func (t *RESTTransport) AddSignedURLKey(ctx context.Context, req *core.AddSignedURLKeyBackendServiceRequest) (*core.ComputeOperation, error) {
	if req == nil {
		return nil, nilRequestError(core.OperationAddSignedURLKey)
	}
	path, err := resourcePath(core.OperationAddSignedURLKey, req.Project, req.BackendService, "addSignedUrlKey")
	if err != nil {
		return nil, err
	}
	return doREST[core.ComputeOperation](ctx, t, restRoute{
		op:     core.OperationAddSignedURLKey,
		method: http.MethodPost,
		path:   path,
		query:  requestIDQuery(req.RequestID),
		body:   orEmpty(req.SignedURLKeyResource),
	})
}

func (t *RESTTransport) AggregatedList(ctx context.Context, req *core.AggregatedListBackendServicesRequest) (*core.BackendServiceAggregatedList, error) {
	if req == nil {
		return nil, nilRequestError(core.OperationAggregatedList)
	}
	path, err := collectionPath(core.OperationAggregatedList, req.Project, aggregatedBackendServicesCollection)
	if err != nil {
		return nil, err
	}
	return doREST[core.BackendServiceAggregatedList](ctx, t, restRoute{
		op:     core.OperationAggregatedList,
		method: http.MethodGet,
		path:   path,
		query: listParams{
			filter:               req.Filter,
			orderBy:              req.OrderBy,
			pageToken:            req.PageToken,
			maxResults:           req.MaxResults,
			includeAllScopes:     req.IncludeAllScopes,
			returnPartialSuccess: req.ReturnPartialSuccess,
		}.values(),
	})
}

func (t *RESTTransport) Delete(ctx context.Context, req *core.DeleteBackendServiceRequest) (*core.ComputeOperation, error) {
	if req == nil {
		return nil, nilRequestError(core.OperationDelete)
	}
	path, err := resourcePath(core.OperationDelete, req.Project, req.BackendService, "")
	if err != nil {
		return nil, err
	}
	return doREST[core.ComputeOperation](ctx, t, restRoute{
		op:     core.OperationDelete,
		method: http.MethodDelete,
		path:   path,
		query:  requestIDQuery(req.RequestID),
	})
}

func (t *RESTTransport) DeleteSignedURLKey(ctx context.Context, req *core.DeleteSignedURLKeyBackendServiceRequest) (*core.ComputeOperation, error) {
	if req == nil {
		return nil, nilRequestError(core.OperationDeleteSignedURLKey)
	}
	path, err := resourcePath(core.OperationDeleteSignedURLKey, req.Project, req.BackendService, "deleteSignedUrlKey")
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(req.KeyName) == "" {
		return nil, missingFieldError(core.OperationDeleteSignedURLKey, "key_name")
	}
	query := requestIDQuery(req.RequestID)
	query.Set("keyName", strings.TrimSpace(req.KeyName))
	return doREST[core.ComputeOperation](ctx, t, restRoute{
		op:     core.OperationDeleteSignedURLKey,
		method: http.MethodPost,
		path:   path,
		query:  query,
	})
}

func (t *RESTTransport) Get(ctx context.Context, req *core.GetBackendServiceRequest) (*core.BackendService, error) {
	if req == nil {
		return nil, nilRequestError(core.OperationGet)
	}
	path, err := resourcePath(core.OperationGet, req.Project, req.BackendService, "")
	if err != nil {
		return nil, err
	}
	return doREST[core.BackendService](ctx, t, restRoute{
		op:     core.OperationGet,
		method: http.MethodGet,
		path:   path,
	})
}

func (t *RESTTransport) GetHealth(ctx context.Context, req *core.GetHealthBackendServiceRequest) (*core.BackendServiceGroupHealth, error) {
	if req == nil {
		return nil, nilRequestError(core.OperationGetHealth)
	}
	path, err := resourcePath(core.OperationGetHealth, req.Project, req.BackendService, "getHealth")
	if err != nil {
		return nil, err
	}
	return doREST[core.BackendServiceGroupHealth](ctx, t, restRoute{
		op:     core.OperationGetHealth,
		method: http.MethodPost,
		path:   path,
		body:   orEmpty(req.ResourceGroupReferenceResource),
	})
}

func (t *RESTTransport) Insert(ctx context.Context, req *core.InsertBackendServiceRequest) (*core.ComputeOperation, error) {
	if req == nil {
		return nil, nilRequestError(core.OperationInsert)
	}
	path, err := resourcePath(core.OperationInsert, req.Project, "-", "")
	if err != nil {
		return nil, err
	}
	if req.BackendServiceResource == nil {
		return nil, missingFieldError(core.OperationInsert, "backend_service_resource")
	}
	return doREST[core.ComputeOperation](ctx, t, restRoute{
		op:     core.OperationInsert,
		method: http.MethodPost,
		path:   path,
		query:  requestIDQuery(req.RequestID),
		body:   req.BackendServiceResource,
	})
}

func (t *RESTTransport) List(ctx context.Context, req *core.ListBackendServicesRequest) (*core.BackendServiceList, error) {
	if req == nil {
		return nil, nilRequestError(core.OperationList)
	}
	path, err := collectionPath(core.OperationList, req.Project, backendServicesCollection)
	if err != nil {
		return nil, err
	}
	return doREST[core.BackendServiceList](ctx, t, restRoute{
		op:     core.OperationList,
		method: http.MethodGet,
		path:   path,
		query: listParams{
			filter:               req.Filter,
			orderBy:              req.OrderBy,
			pageToken:            req.PageToken,
			maxResults:           req.MaxResults,
			returnPartialSuccess: req.ReturnPartialSuccess,
		}.values(),
	})
}

func (t *RESTTransport) Patch(ctx context.Context, req *core.PatchBackendServiceRequest) (*core.ComputeOperation, error) {
	if req == nil {
		return nil, nilRequestError(core.OperationPatch)
	}
	path, err := resourcePath(core.OperationPatch, req.Project, req.BackendService, "")
	if err != nil {
		return nil, err
	}
	return doREST[core.ComputeOperation](ctx, t, restRoute{
		op:     core.OperationPatch,
		method: http.MethodPatch,
		path:   path,
		query:  requestIDQuery(req.RequestID),
		body:   orEmpty(req.BackendServiceResource),
	})
}

func (t *RESTTransport) SetSecurityPolicy(ctx context.Context, req *core.SetSecurityPolicyBackendServiceRequest) (*core.ComputeOperation, error) {
	if req == nil {
		return nil, nilRequestError(core.OperationSetSecurityPolicy)
	}
	path, err := resourcePath(core.OperationSetSecurityPolicy, req.Project, req.BackendService, "setSecurityPolicy")
	if err != nil {
		return nil, err
	}
	return doREST[core.ComputeOperation](ctx, t, restRoute{
		op:     core.OperationSetSecurityPolicy,
		method: http.MethodPost,
		path:   path,
		query:  requestIDQuery(req.RequestID),
		body:   orEmpty(req.SecurityPolicyReferenceResource),
	})
}

func (t *RESTTransport) Update(ctx context.Context, req *core.UpdateBackendServiceRequest) (*core.ComputeOperation, error) {
	if req == nil {
		return nil, nilRequestError(core.OperationUpdate)
	}
	path, err := resourcePath(core.OperationUpdate, req.Project, req.BackendService, "")
	if err != nil {
		return nil, err
	}
	if req.BackendServiceResource == nil {
		return nil, missingFieldError(core.OperationUpdate, "backend_service_resource")
	}
	return doREST[core.ComputeOperation](ctx, t, restRoute{
		op:     core.OperationUpdate,
		method: http.MethodPut,
		path:   path,
		query:  requestIDQuery(req.RequestID),
		body:   req.BackendServiceResource,
	})
}

// orEmpty keeps a nil body resource encoded as {} rather than null.
func orEmpty[T any](value *T) *T {
	if value == nil {
		return new(T)
	}
	return value
}

var _ core.Operations = (*RESTTransport)(nil)
