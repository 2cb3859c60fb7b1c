package core

// Resource shapes follow the compute v1 JSON representation. Only the fields
// this layer and its callers read are modelled; unknown fields are ignored on
// decode.

type BackendService struct {
	ID                   string                   `json:"id,omitempty"`
	Kind                 string                   `json:"kind,omitempty"`
	Name                 string                   `json:"name,omitempty"`
	Description          string                   `json:"description,omitempty"`
	SelfLink             string                   `json:"selfLink,omitempty"`
	CreationTimestamp    string                   `json:"creationTimestamp,omitempty"`
	Region               string                   `json:"region,omitempty"`
	Fingerprint          string                   `json:"fingerprint,omitempty"`
	Protocol             string                   `json:"protocol,omitempty"`
	PortName             string                   `json:"portName,omitempty"`
	Port                 int32                    `json:"port,omitempty"`
	TimeoutSec           int32                    `json:"timeoutSec,omitempty"`
	LoadBalancingScheme  string                   `json:"loadBalancingScheme,omitempty"`
	SessionAffinity      string                   `json:"sessionAffinity,omitempty"`
	AffinityCookieTTLSec int32                    `json:"affinityCookieTtlSec,omitempty"`
	EnableCDN            bool                     `json:"enableCDN,omitempty"`
	HealthChecks         []string                 `json:"healthChecks,omitempty"`
	Backends             []Backend                `json:"backends,omitempty"`
	SecurityPolicy       string                   `json:"securityPolicy,omitempty"`
	CustomRequestHeaders []string                 `json:"customRequestHeaders,omitempty"`
	CDNPolicy            *BackendServiceCDNPolicy `json:"cdnPolicy,omitempty"`
	ConnectionDraining   *ConnectionDraining      `json:"connectionDraining,omitempty"`
}

type Backend struct {
	Group              string  `json:"group,omitempty"`
	Description        string  `json:"description,omitempty"`
	BalancingMode      string  `json:"balancingMode,omitempty"`
	CapacityScaler     float64 `json:"capacityScaler,omitempty"`
	MaxUtilization     float64 `json:"maxUtilization,omitempty"`
	MaxRatePerInstance float64 `json:"maxRatePerInstance,omitempty"`
	MaxConnections     int32   `json:"maxConnections,omitempty"`
	Failover           bool    `json:"failover,omitempty"`
}

type BackendServiceCDNPolicy struct {
	SignedURLKeyNames       []string `json:"signedUrlKeyNames,omitempty"`
	SignedURLCacheMaxAgeSec int64    `json:"signedUrlCacheMaxAgeSec,omitempty"`
	CacheMode               string   `json:"cacheMode,omitempty"`
	DefaultTTL              int32    `json:"defaultTtl,omitempty"`
}

type ConnectionDraining struct {
	DrainingTimeoutSec int32 `json:"drainingTimeoutSec,omitempty"`
}

// ComputeOperation is the handle returned by long-running operations.
type ComputeOperation struct {
	ID                  string          `json:"id,omitempty"`
	Kind                string          `json:"kind,omitempty"`
	Name                string          `json:"name,omitempty"`
	OperationType       string          `json:"operationType,omitempty"`
	Status              string          `json:"status,omitempty"`
	StatusMessage       string          `json:"statusMessage,omitempty"`
	TargetLink          string          `json:"targetLink,omitempty"`
	TargetID            string          `json:"targetId,omitempty"`
	User                string          `json:"user,omitempty"`
	Progress            int32           `json:"progress,omitempty"`
	InsertTime          string          `json:"insertTime,omitempty"`
	StartTime           string          `json:"startTime,omitempty"`
	EndTime             string          `json:"endTime,omitempty"`
	SelfLink            string          `json:"selfLink,omitempty"`
	Region              string          `json:"region,omitempty"`
	Zone                string          `json:"zone,omitempty"`
	ClientOperationID   string          `json:"clientOperationId,omitempty"`
	HTTPErrorStatusCode int32           `json:"httpErrorStatusCode,omitempty"`
	HTTPErrorMessage    string          `json:"httpErrorMessage,omitempty"`
	Error               *OperationError `json:"error,omitempty"`
	Warnings            []Warning       `json:"warnings,omitempty"`
}

// Done reports whether the server finished processing the operation.
func (o *ComputeOperation) Done() bool {
	return o != nil && o.Status == "DONE"
}

type OperationError struct {
	Errors []OperationErrorDetail `json:"errors,omitempty"`
}

type OperationErrorDetail struct {
	Code     string `json:"code,omitempty"`
	Location string `json:"location,omitempty"`
	Message  string `json:"message,omitempty"`
}

type Warning struct {
	Code    string        `json:"code,omitempty"`
	Message string        `json:"message,omitempty"`
	Data    []WarningData `json:"data,omitempty"`
}

type WarningData struct {
	Key   string `json:"key,omitempty"`
	Value string `json:"value,omitempty"`
}

type BackendServiceList struct {
	ID            string           `json:"id,omitempty"`
	Kind          string           `json:"kind,omitempty"`
	Items         []BackendService `json:"items,omitempty"`
	NextPageToken string           `json:"nextPageToken,omitempty"`
	SelfLink      string           `json:"selfLink,omitempty"`
	Warning       *Warning         `json:"warning,omitempty"`
}

type BackendServicesScopedList struct {
	BackendServices []BackendService `json:"backendServices,omitempty"`
	Warning         *Warning         `json:"warning,omitempty"`
}

type BackendServiceAggregatedList struct {
	ID            string                               `json:"id,omitempty"`
	Kind          string                               `json:"kind,omitempty"`
	Items         map[string]BackendServicesScopedList `json:"items,omitempty"`
	NextPageToken string                               `json:"nextPageToken,omitempty"`
	SelfLink      string                               `json:"selfLink,omitempty"`
	Unreachables  []string                             `json:"unreachables,omitempty"`
	Warning       *Warning                             `json:"warning,omitempty"`
}

type BackendServiceGroupHealth struct {
	Kind         string            `json:"kind,omitempty"`
	HealthStatus []HealthStatus    `json:"healthStatus,omitempty"`
	Annotations  map[string]string `json:"annotations,omitempty"`
}

type HealthStatus struct {
	Instance       string            `json:"instance,omitempty"`
	IPAddress      string            `json:"ipAddress,omitempty"`
	Port           int32             `json:"port,omitempty"`
	HealthState    string            `json:"healthState,omitempty"`
	ForwardingRule string            `json:"forwardingRule,omitempty"`
	Weight         string            `json:"weight,omitempty"`
	Annotations    map[string]string `json:"annotations,omitempty"`
}

type ResourceGroupReference struct {
	Group string `json:"group,omitempty"`
}

type SignedURLKey struct {
	KeyName  string `json:"keyName,omitempty"`
	KeyValue string `json:"keyValue,omitempty"`
}

type SecurityPolicyReference struct {
	SecurityPolicy string `json:"securityPolicy,omitempty"`
}

type AddSignedURLKeyBackendServiceRequest struct {
	Project              string        `json:"project,omitempty"`
	BackendService       string        `json:"backendService,omitempty"`
	RequestID            string        `json:"requestId,omitempty"`
	SignedURLKeyResource *SignedURLKey `json:"signedUrlKeyResource,omitempty"`
}

type AggregatedListBackendServicesRequest struct {
	Project              string `json:"project,omitempty"`
	Filter               string `json:"filter,omitempty"`
	OrderBy              string `json:"orderBy,omitempty"`
	PageToken            string `json:"pageToken,omitempty"`
	MaxResults           uint32 `json:"maxResults,omitempty"`
	IncludeAllScopes     *bool  `json:"includeAllScopes,omitempty"`
	ReturnPartialSuccess *bool  `json:"returnPartialSuccess,omitempty"`
}

type DeleteBackendServiceRequest struct {
	Project        string `json:"project,omitempty"`
	BackendService string `json:"backendService,omitempty"`
	RequestID      string `json:"requestId,omitempty"`
}

type DeleteSignedURLKeyBackendServiceRequest struct {
	Project        string `json:"project,omitempty"`
	BackendService string `json:"backendService,omitempty"`
	KeyName        string `json:"keyName,omitempty"`
	RequestID      string `json:"requestId,omitempty"`
}

type GetBackendServiceRequest struct {
	Project        string `json:"project,omitempty"`
	BackendService string `json:"backendService,omitempty"`
}

type GetHealthBackendServiceRequest struct {
	Project                        string                  `json:"project,omitempty"`
	BackendService                 string                  `json:"backendService,omitempty"`
	ResourceGroupReferenceResource *ResourceGroupReference `json:"resourceGroupReferenceResource,omitempty"`
}

type InsertBackendServiceRequest struct {
	Project                string          `json:"project,omitempty"`
	RequestID              string          `json:"requestId,omitempty"`
	BackendServiceResource *BackendService `json:"backendServiceResource,omitempty"`
}

type ListBackendServicesRequest struct {
	Project              string `json:"project,omitempty"`
	Filter               string `json:"filter,omitempty"`
	OrderBy              string `json:"orderBy,omitempty"`
	PageToken            string `json:"pageToken,omitempty"`
	MaxResults           uint32 `json:"maxResults,omitempty"`
	ReturnPartialSuccess *bool  `json:"returnPartialSuccess,omitempty"`
}

type PatchBackendServiceRequest struct {
	Project                string          `json:"project,omitempty"`
	BackendService         string          `json:"backendService,omitempty"`
	RequestID              string          `json:"requestId,omitempty"`
	BackendServiceResource *BackendService `json:"backendServiceResource,omitempty"`
}

type SetSecurityPolicyBackendServiceRequest struct {
	Project                         string                   `json:"project,omitempty"`
	BackendService                  string                   `json:"backendService,omitempty"`
	RequestID                       string                   `json:"requestId,omitempty"`
	SecurityPolicyReferenceResource *SecurityPolicyReference `json:"securityPolicyReferenceResource,omitempty"`
}

type UpdateBackendServiceRequest struct {
	Project                string          `json:"project,omitempty"`
	BackendService         string          `json:"backendService,omitempty"`
	RequestID              string          `json:"requestId,omitempty"`
	BackendServiceResource *BackendService `json:"backendServiceResource,omitempty"`
}

func (r *AddSignedURLKeyBackendServiceRequest) requestIDField() *string    { return &r.RequestID }
func (r *DeleteBackendServiceRequest) requestIDField() *string             { return &r.RequestID }
func (r *DeleteSignedURLKeyBackendServiceRequest) requestIDField() *string { return &r.RequestID }
func (r *InsertBackendServiceRequest) requestIDField() *string             { return &r.RequestID }
func (r *PatchBackendServiceRequest) requestIDField() *string              { return &r.RequestID }
func (r *SetSecurityPolicyBackendServiceRequest) requestIDField() *string  { return &r.RequestID }
func (r *UpdateBackendServiceRequest) requestIDField() *string             { return &r.RequestID }
