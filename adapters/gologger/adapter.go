package gologger

import (
	"strings"

	"github.com/goliatone/go-backend-services/core"
	glog "github.com/goliatone/go-logger/glog"
)

const DefaultLoggerName = "backendservices"

// Resolve uses deterministic precedence provider > logger > nop.
func Resolve(name string, provider glog.LoggerProvider, logger glog.Logger) (glog.LoggerProvider, glog.Logger) {
	name = strings.TrimSpace(name)
	if name == "" {
		name = DefaultLoggerName
	}
	return glog.Resolve(name, provider, logger)
}

// TransportOptions resolves the logger pair once and hands both to the
// transport so per-call logs and the ready log share one sink.
func TransportOptions(name string, provider glog.LoggerProvider, logger glog.Logger) []core.Option {
	resolvedProvider, resolvedLogger := Resolve(name, provider, logger)
	return []core.Option{
		core.WithLoggerProvider(resolvedProvider),
		core.WithLogger(resolvedLogger),
	}
}
