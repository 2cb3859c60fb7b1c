package core

import (
	"context"
	"errors"
	"strings"

	goerrors "github.com/goliatone/go-errors"
	"golang.org/x/oauth2"
)

const (
	ScopeCompute       = "https://www.googleapis.com/auth/compute"
	ScopeCloudPlatform = "https://www.googleapis.com/auth/cloud-platform"
)

// DefaultScopes returns the scopes requested when the caller names none.
func DefaultScopes() []string {
	return []string{ScopeCompute, ScopeCloudPlatform}
}

type CredentialSource string

const (
	CredentialSourceExplicit CredentialSource = "explicit"
	CredentialSourceFile     CredentialSource = "file"
	CredentialSourceAmbient  CredentialSource = "ambient"
)

// Credential is an immutable authentication identity. Modifiers return copies.
type Credential struct {
	source         CredentialSource
	principal      string
	projectID      string
	quotaProjectID string
	scopes         []string
	tokenSource    oauth2.TokenSource
}

type CredentialOption func(*Credential)

func WithCredentialSource(source CredentialSource) CredentialOption {
	return func(c *Credential) { c.source = source }
}

func WithPrincipal(principal string) CredentialOption {
	return func(c *Credential) { c.principal = strings.TrimSpace(principal) }
}

func WithProjectID(projectID string) CredentialOption {
	return func(c *Credential) { c.projectID = strings.TrimSpace(projectID) }
}

func WithCredentialScopes(scopes ...string) CredentialOption {
	return func(c *Credential) { c.scopes = NormalizeScopes(scopes) }
}

func WithCredentialQuotaProject(quotaProjectID string) CredentialOption {
	return func(c *Credential) { c.quotaProjectID = strings.TrimSpace(quotaProjectID) }
}

func NewCredential(tokenSource oauth2.TokenSource, opts ...CredentialOption) *Credential {
	cred := &Credential{source: CredentialSourceExplicit, tokenSource: tokenSource}
	for _, opt := range opts {
		if opt != nil {
			opt(cred)
		}
	}
	return cred
}

func (c *Credential) Source() CredentialSource {
	if c == nil {
		return ""
	}
	return c.source
}

func (c *Credential) Principal() string {
	if c == nil {
		return ""
	}
	return c.principal
}

func (c *Credential) ProjectID() string {
	if c == nil {
		return ""
	}
	return c.projectID
}

func (c *Credential) QuotaProjectID() string {
	if c == nil {
		return ""
	}
	return c.quotaProjectID
}

func (c *Credential) Scopes() []string {
	if c == nil {
		return nil
	}
	return append([]string(nil), c.scopes...)
}

func (c *Credential) TokenSource() oauth2.TokenSource {
	if c == nil {
		return nil
	}
	return c.tokenSource
}

// WithQuotaProject returns a copy billed to quotaProjectID.
func (c *Credential) WithQuotaProject(quotaProjectID string) *Credential {
	if c == nil {
		return nil
	}
	copied := *c
	copied.scopes = append([]string(nil), c.scopes...)
	copied.quotaProjectID = strings.TrimSpace(quotaProjectID)
	return &copied
}

func (c *Credential) withSource(source CredentialSource) *Credential {
	copied := *c
	copied.scopes = append([]string(nil), c.scopes...)
	copied.source = source
	return &copied
}

func (c *Credential) Token(ctx context.Context) (*oauth2.Token, error) {
	if c == nil || c.tokenSource == nil {
		return nil, newBadInputError("core: credential has no token source", nil)
	}
	if ctx != nil {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
	}
	return c.tokenSource.Token()
}

// AuthorizationHeader returns the value for the Authorization request header.
func (c *Credential) AuthorizationHeader(ctx context.Context) (string, error) {
	token, err := c.Token(ctx)
	if err != nil {
		return "", err
	}
	if token == nil || strings.TrimSpace(token.AccessToken) == "" {
		return "", newBadInputError("core: credential returned an empty access token", nil)
	}
	return token.Type() + " " + token.AccessToken, nil
}

type CredentialRequest struct {
	Explicit       *Credential
	File           string
	Scopes         []string
	QuotaProjectID string
}

// CredentialResolver picks exactly one credential out of an explicit
// credential, a credential file or ambient discovery.
type CredentialResolver struct {
	Discoverer CredentialDiscoverer
	Loader     CredentialFileLoader
}

func (r CredentialResolver) Resolve(ctx context.Context, req CredentialRequest) (*Credential, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	file := strings.TrimSpace(req.File)
	quota := strings.TrimSpace(req.QuotaProjectID)
	scopes := NormalizeScopes(req.Scopes)
	if len(scopes) == 0 {
		scopes = DefaultScopes()
	}

	if req.Explicit != nil && file != "" {
		return nil, newConflictingCredentialsError()
	}

	if req.Explicit != nil {
		cred := req.Explicit
		if quota != "" && quota != cred.QuotaProjectID() {
			cred = cred.WithQuotaProject(quota)
		}
		return cred, nil
	}

	if file != "" {
		if r.Loader == nil {
			return nil, newCredentialLoadError(CredentialSourceFile, file, errors.New("no credential file loader configured"))
		}
		cred, err := r.Loader.Load(ctx, file, scopes, quota)
		if err != nil {
			return nil, asCredentialLoadError(CredentialSourceFile, file, err)
		}
		if cred == nil {
			return nil, newCredentialLoadError(CredentialSourceFile, file, errors.New("loader returned no credential"))
		}
		return cred.withSource(CredentialSourceFile), nil
	}

	if r.Discoverer == nil {
		return nil, newCredentialLoadError(CredentialSourceAmbient, "", errors.New("no ambient credential discoverer configured"))
	}
	cred, err := r.Discoverer.Discover(ctx, scopes, quota)
	if err != nil {
		return nil, asCredentialLoadError(CredentialSourceAmbient, "", err)
	}
	if cred == nil {
		return nil, newCredentialLoadError(CredentialSourceAmbient, "", errors.New("no ambient credentials found"))
	}
	return cred.withSource(CredentialSourceAmbient), nil
}

func asCredentialLoadError(source CredentialSource, path string, err error) error {
	var typed *CredentialLoadError
	if errors.As(err, &typed) {
		var rich *goerrors.Error
		if goerrors.As(err, &rich) {
			return err
		}
		return newTransportError(typed, goerrors.CategoryAuth, TransportErrorCredentialLoad, nil)
	}
	return newCredentialLoadError(source, path, err)
}

// NormalizeScopes trims scopes, drops blanks and duplicates and keeps order.
func NormalizeScopes(scopes []string) []string {
	if len(scopes) == 0 {
		return nil
	}
	seen := make(map[string]struct{}, len(scopes))
	out := make([]string, 0, len(scopes))
	for _, scope := range scopes {
		scope = strings.TrimSpace(scope)
		if scope == "" {
			continue
		}
		if _, ok := seen[scope]; ok {
			continue
		}
		seen[scope] = struct{}{}
		out = append(out, scope)
	}
	if len(out) == 0 {
		return nil
	}
	return out
}
