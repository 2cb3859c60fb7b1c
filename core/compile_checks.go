package core

import glog "github.com/goliatone/go-logger/glog"

var (
	_ Operations       = (*Transport)(nil)
	_ Operations       = UnimplementedOperations{}
	_ OperationSupport = UnimplementedOperations{}

	_ Logger         = glog.Nop()
	_ LoggerProvider = glog.ProviderFromLogger(glog.Nop())
)
