package auth

import (
	"strings"

	"github.com/goliatone/go-backend-services/core"
	"golang.org/x/oauth2"
)

// StaticTokenCredential wraps a fixed access token. It is meant for tests and
// short-lived tooling; the token is never refreshed.
func StaticTokenCredential(accessToken string, opts ...core.CredentialOption) *core.Credential {
	token := &oauth2.Token{AccessToken: strings.TrimSpace(accessToken), TokenType: "Bearer"}
	base := []core.CredentialOption{core.WithCredentialSource(core.CredentialSourceExplicit)}
	return core.NewCredential(oauth2.StaticTokenSource(token), append(base, opts...)...)
}
