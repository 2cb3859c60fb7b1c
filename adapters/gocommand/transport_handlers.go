package gocommand

import (
	"github.com/goliatone/go-backend-services/command"
	"github.com/goliatone/go-backend-services/core"
	"github.com/goliatone/go-backend-services/query"
	commanddispatcher "github.com/goliatone/go-command/dispatcher"
	"github.com/goliatone/go-command/runner"
)

// BackendServicesTransport is satisfied by *core.Transport.
type BackendServicesTransport interface {
	command.MutatingTransport
	query.ReadTransport
}

var _ BackendServicesTransport = (*core.Transport)(nil)

// Subscriptions groups the dispatcher subscriptions created for one transport.
type Subscriptions []commanddispatcher.Subscription

func (s Subscriptions) Unsubscribe() {
	for _, subscription := range s {
		if subscription != nil {
			subscription.Unsubscribe()
		}
	}
}

// RegisterTransportHandlers subscribes one handler per BackendServices
// operation. On failure every subscription made so far is released.
func RegisterTransportHandlers(
	adapter *RegistryAdapter,
	transport BackendServicesTransport,
	runnerOpts ...runner.Option,
) (Subscriptions, error) {
	if !adapter.configured() {
		return nil, errRegistryMissing()
	}
	if transport == nil {
		return nil, errHandlerMissing("transport")
	}

	subscriptions := Subscriptions{}
	register := func(subscription commanddispatcher.Subscription, err error) error {
		if err != nil {
			subscriptions.Unsubscribe()
			return err
		}
		subscriptions = append(subscriptions, subscription)
		return nil
	}

	steps := []func() error{
		func() error {
			return register(RegisterCommand[command.AddSignedURLKeyMessage](adapter, command.NewAddSignedURLKeyCommand(transport), runnerOpts...))
		},
		func() error {
			return register(RegisterCommand[command.DeleteMessage](adapter, command.NewDeleteCommand(transport), runnerOpts...))
		},
		func() error {
			return register(RegisterCommand[command.DeleteSignedURLKeyMessage](adapter, command.NewDeleteSignedURLKeyCommand(transport), runnerOpts...))
		},
		func() error {
			return register(RegisterCommand[command.InsertMessage](adapter, command.NewInsertCommand(transport), runnerOpts...))
		},
		func() error {
			return register(RegisterCommand[command.PatchMessage](adapter, command.NewPatchCommand(transport), runnerOpts...))
		},
		func() error {
			return register(RegisterCommand[command.SetSecurityPolicyMessage](adapter, command.NewSetSecurityPolicyCommand(transport), runnerOpts...))
		},
		func() error {
			return register(RegisterCommand[command.UpdateMessage](adapter, command.NewUpdateCommand(transport), runnerOpts...))
		},
		func() error {
			return register(RegisterQuery[query.GetMessage, *core.BackendService](adapter, query.NewGetQuery(transport), runnerOpts...))
		},
		func() error {
			return register(RegisterQuery[query.ListMessage, *core.BackendServiceList](adapter, query.NewListQuery(transport), runnerOpts...))
		},
		func() error {
			return register(RegisterQuery[query.AggregatedListMessage, *core.BackendServiceAggregatedList](adapter, query.NewAggregatedListQuery(transport), runnerOpts...))
		},
		func() error {
			return register(RegisterQuery[query.GetHealthMessage, *core.BackendServiceGroupHealth](adapter, query.NewGetHealthQuery(transport), runnerOpts...))
		},
	}
	for _, step := range steps {
		if err := step(); err != nil {
			return nil, err
		}
	}
	return subscriptions, nil
}
