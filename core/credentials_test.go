package core

import (
	"context"
	"errors"
	"reflect"
	"testing"

	goerrors "github.com/goliatone/go-errors"
)

func TestCredentialResolver_ExplicitAndFileConflict(t *testing.T) {
	loader := &stubFileLoader{cred: testCredential()}
	discoverer := &stubDiscoverer{cred: testCredential()}
	resolver := CredentialResolver{Discoverer: discoverer, Loader: loader}

	_, err := resolver.Resolve(context.Background(), CredentialRequest{
		Explicit: testCredential(),
		File:     "/etc/creds.json",
	})
	if !errors.Is(err, ErrConflictingCredentialSources) {
		t.Fatalf("expected conflicting credential sources, got %v", err)
	}
	var rich *goerrors.Error
	if !goerrors.As(err, &rich) {
		t.Fatalf("expected go-errors envelope, got %T", err)
	}
	if rich.TextCode != TransportErrorConflictingCredentials {
		t.Fatalf("expected conflicting credentials text code, got %q", rich.TextCode)
	}
	if loader.calls != 0 || discoverer.calls != 0 {
		t.Fatalf("expected no collaborator calls, loader=%d discoverer=%d", loader.calls, discoverer.calls)
	}
}

func TestCredentialResolver_FileUsesLoader(t *testing.T) {
	loader := &stubFileLoader{cred: testCredential(WithPrincipal("svc@example.iam.gserviceaccount.com"))}
	discoverer := &stubDiscoverer{}
	resolver := CredentialResolver{Discoverer: discoverer, Loader: loader}

	cred, err := resolver.Resolve(context.Background(), CredentialRequest{
		File:           " /etc/creds.json ",
		QuotaProjectID: "billing-project",
	})
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if loader.path != "/etc/creds.json" {
		t.Fatalf("expected trimmed path, got %q", loader.path)
	}
	if loader.quota != "billing-project" {
		t.Fatalf("expected quota project passed to loader, got %q", loader.quota)
	}
	if cred.Source() != CredentialSourceFile {
		t.Fatalf("expected file source, got %q", cred.Source())
	}
	if discoverer.calls != 0 {
		t.Fatalf("expected ambient discovery to be skipped")
	}
}

func TestCredentialResolver_FileLoaderFailure(t *testing.T) {
	cause := errors.New("no such file")
	resolver := CredentialResolver{Loader: &stubFileLoader{err: cause}}

	_, err := resolver.Resolve(context.Background(), CredentialRequest{File: "/missing.json"})
	if !errors.Is(err, ErrCredentialLoad) {
		t.Fatalf("expected credential load error, got %v", err)
	}
	var loadErr *CredentialLoadError
	if !errors.As(err, &loadErr) {
		t.Fatalf("expected typed credential load error, got %T", err)
	}
	if loadErr.Path != "/missing.json" || loadErr.Source != CredentialSourceFile {
		t.Fatalf("unexpected load error details: %+v", loadErr)
	}
	if !errors.Is(err, cause) {
		t.Fatalf("expected cause to be reachable")
	}
}

func TestCredentialResolver_AmbientDiscoveryWithDefaultScopes(t *testing.T) {
	discoverer := &stubDiscoverer{cred: testCredential()}
	resolver := CredentialResolver{Discoverer: discoverer}

	cred, err := resolver.Resolve(context.Background(), CredentialRequest{QuotaProjectID: "quota"})
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if !reflect.DeepEqual(discoverer.scopes, DefaultScopes()) {
		t.Fatalf("expected default scopes, got %v", discoverer.scopes)
	}
	if discoverer.quota != "quota" {
		t.Fatalf("expected quota forwarded, got %q", discoverer.quota)
	}
	if cred.Source() != CredentialSourceAmbient {
		t.Fatalf("expected ambient source, got %q", cred.Source())
	}
}

func TestCredentialResolver_AmbientDiscoveryFailure(t *testing.T) {
	resolver := CredentialResolver{Discoverer: &stubDiscoverer{err: errors.New("metadata server unreachable")}}
	_, err := resolver.Resolve(context.Background(), CredentialRequest{})
	if !errors.Is(err, ErrCredentialLoad) {
		t.Fatalf("expected credential load error, got %v", err)
	}

	_, err = CredentialResolver{}.Resolve(context.Background(), CredentialRequest{})
	if !errors.Is(err, ErrCredentialLoad) {
		t.Fatalf("expected credential load error without discoverer, got %v", err)
	}
}

func TestCredentialResolver_ExplicitUsedAsIsWithQuotaCopy(t *testing.T) {
	explicit := testCredential(WithPrincipal("user@example.com"))
	resolver := CredentialResolver{Discoverer: &stubDiscoverer{}}

	cred, err := resolver.Resolve(context.Background(), CredentialRequest{Explicit: explicit})
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if cred != explicit {
		t.Fatalf("expected explicit credential to be returned as-is")
	}

	cred, err = resolver.Resolve(context.Background(), CredentialRequest{Explicit: explicit, QuotaProjectID: "billing"})
	if err != nil {
		t.Fatalf("resolve with quota: %v", err)
	}
	if cred == explicit {
		t.Fatalf("expected a copy when quota project is applied")
	}
	if cred.QuotaProjectID() != "billing" {
		t.Fatalf("expected quota project on copy, got %q", cred.QuotaProjectID())
	}
	if explicit.QuotaProjectID() != "" {
		t.Fatalf("expected original credential to stay unchanged")
	}
}

func TestCredential_AuthorizationHeader(t *testing.T) {
	header, err := testCredential().AuthorizationHeader(context.Background())
	if err != nil {
		t.Fatalf("authorization header: %v", err)
	}
	if header != "Bearer test-token" {
		t.Fatalf("unexpected header %q", header)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := testCredential().Token(ctx); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected canceled token fetch, got %v", err)
	}
}

func TestNormalizeScopes(t *testing.T) {
	got := NormalizeScopes([]string{" a ", "", "b", "a"})
	if !reflect.DeepEqual(got, []string{"a", "b"}) {
		t.Fatalf("unexpected normalized scopes %v", got)
	}
	if NormalizeScopes([]string{" "}) != nil {
		t.Fatalf("expected nil for blank scopes")
	}
}
