package auth

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/goliatone/go-backend-services/core"
)

const (
	credentialTypeServiceAccount  = "service_account"
	credentialTypeAuthorizedUser  = "authorized_user"
	credentialTypeExternalAccount = "external_account"
	credentialTypeImpersonated    = "impersonated_service_account"
)

// credentialMetadata holds the descriptive fields of a Google credentials
// JSON document. Secrets are never kept here.
type credentialMetadata struct {
	Type           string
	Principal      string
	ProjectID      string
	QuotaProjectID string
}

func parseCredentialMetadata(data []byte) (credentialMetadata, error) {
	var raw map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		return credentialMetadata{}, fmt.Errorf("auth: credentials json is malformed: %w", err)
	}
	meta := credentialMetadata{
		Type:           readString(raw, "type"),
		ProjectID:      readString(raw, "project_id"),
		QuotaProjectID: readString(raw, "quota_project_id"),
	}
	switch meta.Type {
	case credentialTypeServiceAccount:
		meta.Principal = readString(raw, "client_email")
	case credentialTypeAuthorizedUser:
		meta.Principal = readString(raw, "account", "client_id")
	case credentialTypeExternalAccount:
		meta.Principal = firstNonEmpty(
			readString(raw, "service_account_impersonation_url"),
			readString(raw, "audience"),
		)
	case credentialTypeImpersonated:
		meta.Principal = readString(raw, "service_account_impersonation_url")
	case "":
		return credentialMetadata{}, fmt.Errorf("auth: credentials json is missing type")
	}
	return meta, nil
}

func (m credentialMetadata) options(source core.CredentialSource, scopes []string, quotaProjectID string) []core.CredentialOption {
	return []core.CredentialOption{
		core.WithCredentialSource(source),
		core.WithPrincipal(m.Principal),
		core.WithProjectID(m.ProjectID),
		core.WithCredentialScopes(scopes...),
		core.WithCredentialQuotaProject(firstNonEmpty(quotaProjectID, m.QuotaProjectID)),
	}
}

func readString(metadata map[string]any, keys ...string) string {
	for _, key := range keys {
		value, ok := metadata[key]
		if !ok || value == nil {
			continue
		}
		switch typed := value.(type) {
		case string:
			trimmed := strings.TrimSpace(typed)
			if trimmed != "" {
				return trimmed
			}
		case fmt.Stringer:
			trimmed := strings.TrimSpace(typed.String())
			if trimmed != "" {
				return trimmed
			}
		}
	}
	return ""
}

func scopesOrDefault(scopes []string) []string {
	normalized := core.NormalizeScopes(scopes)
	if len(normalized) == 0 {
		return core.DefaultScopes()
	}
	return normalized
}

func firstNonEmpty(values ...string) string {
	for _, value := range values {
		trimmed := strings.TrimSpace(value)
		if trimmed != "" {
			return trimmed
		}
	}
	return ""
}
