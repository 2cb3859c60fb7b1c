package auth

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/goliatone/go-backend-services/core"
	"golang.org/x/oauth2/google"
)

// JSONFileLoader loads a Google credentials JSON document from disk. Service
// account keys, authorized user files, external account and impersonation
// configurations are accepted.
type JSONFileLoader struct {
	ReadFile func(path string) ([]byte, error)
}

func NewJSONFileLoader() JSONFileLoader {
	return JSONFileLoader{ReadFile: os.ReadFile}
}

func (l JSONFileLoader) Load(ctx context.Context, path string, scopes []string, quotaProjectID string) (*core.Credential, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return nil, fmt.Errorf("auth: credentials file path is required")
	}
	readFile := l.ReadFile
	if readFile == nil {
		readFile = os.ReadFile
	}
	data, err := readFile(path)
	if err != nil {
		return nil, fmt.Errorf("auth: read credentials file: %w", err)
	}
	return CredentialFromJSON(ctx, data, scopes, quotaProjectID, core.CredentialSourceFile)
}

// CredentialFromJSON builds a credential from an in-memory credentials JSON
// document.
func CredentialFromJSON(
	ctx context.Context,
	data []byte,
	scopes []string,
	quotaProjectID string,
	source core.CredentialSource,
) (*core.Credential, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	meta, err := parseCredentialMetadata(data)
	if err != nil {
		return nil, err
	}
	requested := scopesOrDefault(scopes)
	creds, err := google.CredentialsFromJSONWithParams(ctx, data, google.CredentialsParams{Scopes: requested})
	if err != nil {
		return nil, fmt.Errorf("auth: parse %s credentials: %w", meta.Type, err)
	}
	if meta.ProjectID == "" {
		meta.ProjectID = creds.ProjectID
	}
	return core.NewCredential(creds.TokenSource, meta.options(source, requested, quotaProjectID)...), nil
}
