package query

import (
	"github.com/goliatone/go-backend-services/core"
	gocmd "github.com/goliatone/go-command"
)

var (
	_ gocmd.Querier[GetMessage, *core.BackendService]                          = (*GetQuery)(nil)
	_ gocmd.Querier[ListMessage, *core.BackendServiceList]                     = (*ListQuery)(nil)
	_ gocmd.Querier[AggregatedListMessage, *core.BackendServiceAggregatedList] = (*AggregatedListQuery)(nil)
	_ gocmd.Querier[GetHealthMessage, *core.BackendServiceGroupHealth]         = (*GetHealthQuery)(nil)

	_ ReadTransport = (*core.Transport)(nil)
)
