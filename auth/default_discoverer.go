package auth

import (
	"context"
	"fmt"

	"github.com/goliatone/go-backend-services/core"
	"golang.org/x/oauth2/google"
)

// ApplicationDefaultDiscoverer resolves ambient credentials the way Google
// client libraries do: GOOGLE_APPLICATION_CREDENTIALS, the gcloud well-known
// file, then the metadata server.
type ApplicationDefaultDiscoverer struct {
	find func(ctx context.Context, params google.CredentialsParams) (*google.Credentials, error)
}

func NewApplicationDefaultDiscoverer() ApplicationDefaultDiscoverer {
	return ApplicationDefaultDiscoverer{find: google.FindDefaultCredentialsWithParams}
}

func (d ApplicationDefaultDiscoverer) Discover(ctx context.Context, scopes []string, quotaProjectID string) (*core.Credential, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	find := d.find
	if find == nil {
		find = google.FindDefaultCredentialsWithParams
	}
	requested := scopesOrDefault(scopes)
	creds, err := find(ctx, google.CredentialsParams{Scopes: requested})
	if err != nil {
		return nil, fmt.Errorf("auth: application default credentials: %w", err)
	}
	if creds == nil || creds.TokenSource == nil {
		return nil, fmt.Errorf("auth: application default credentials returned no token source")
	}

	meta := credentialMetadata{ProjectID: creds.ProjectID}
	if len(creds.JSON) > 0 {
		if parsed, parseErr := parseCredentialMetadata(creds.JSON); parseErr == nil {
			meta = parsed
			if meta.ProjectID == "" {
				meta.ProjectID = creds.ProjectID
			}
		}
	}
	return core.NewCredential(creds.TokenSource, meta.options(core.CredentialSourceAmbient, requested, quotaProjectID)...), nil
}
