package core

import (
	"context"
	"runtime"
	"runtime/debug"
	"strings"
	"sync"
)

const modulePath = "github.com/goliatone/go-backend-services"

// ClientInfo identifies the calling library to the server. It is rendered into
// the x-goog-api-client and user-agent headers.
type ClientInfo struct {
	LibraryVersion   string
	GoVersion        string
	TransportVersion string
	UserAgent        string
}

var defaultClientInfo = sync.OnceValue(func() ClientInfo {
	return newDefaultClientInfo(debug.ReadBuildInfo)
})

// DefaultClientInfo returns the process-wide client identity. It is computed
// once; when the library version cannot be determined it is left empty and
// the headers omit it.
func DefaultClientInfo() ClientInfo {
	return defaultClientInfo()
}

func newDefaultClientInfo(readBuildInfo func() (*debug.BuildInfo, bool)) ClientInfo {
	info := ClientInfo{GoVersion: strings.TrimPrefix(runtime.Version(), "go")}
	if readBuildInfo == nil {
		return info
	}
	build, ok := readBuildInfo()
	if !ok || build == nil {
		return info
	}
	if build.Main.Path == modulePath {
		info.LibraryVersion = cleanVersion(build.Main.Version)
		return info
	}
	for _, dep := range build.Deps {
		if dep == nil || dep.Path != modulePath {
			continue
		}
		if dep.Replace != nil {
			dep = dep.Replace
		}
		info.LibraryVersion = cleanVersion(dep.Version)
		break
	}
	return info
}

func cleanVersion(version string) string {
	version = strings.TrimSpace(version)
	if version == "" || version == "(devel)" {
		return ""
	}
	return strings.TrimPrefix(version, "v")
}

// WithTransport returns a copy tagged with the transport token, e.g. "rest".
func (c ClientInfo) WithTransport(token string) ClientInfo {
	c.TransportVersion = strings.TrimSpace(token)
	return c
}

func (c ClientInfo) APIClientHeader() string {
	parts := make([]string, 0, 3)
	if c.GoVersion != "" {
		parts = append(parts, "gl-go/"+c.GoVersion)
	}
	if c.LibraryVersion != "" {
		parts = append(parts, "gccl/"+c.LibraryVersion)
	}
	if c.TransportVersion != "" {
		parts = append(parts, c.TransportVersion)
	}
	return strings.Join(parts, " ")
}

func (c ClientInfo) UserAgentHeader() string {
	if ua := strings.TrimSpace(c.UserAgent); ua != "" {
		return ua
	}
	if c.LibraryVersion != "" {
		return "go-backend-services/" + c.LibraryVersion
	}
	return "go-backend-services"
}

// Headers returns the identification headers, keyed in lower case.
func (c ClientInfo) Headers() map[string]string {
	headers := map[string]string{"user-agent": c.UserAgentHeader()}
	if value := c.APIClientHeader(); value != "" {
		headers["x-goog-api-client"] = value
	}
	return headers
}

type clientInfoContextKey struct{}

func ContextWithClientInfo(ctx context.Context, info ClientInfo) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, clientInfoContextKey{}, info)
}

func ClientInfoFromContext(ctx context.Context) (ClientInfo, bool) {
	if ctx == nil {
		return ClientInfo{}, false
	}
	info, ok := ctx.Value(clientInfoContextKey{}).(ClientInfo)
	return info, ok
}
