package gocommand

import (
	"context"
	"strings"

	"github.com/goliatone/go-command"
	commanddispatcher "github.com/goliatone/go-command/dispatcher"
	"github.com/goliatone/go-command/runner"
	goerrors "github.com/goliatone/go-errors"
)

const (
	adapterErrorRegistryMissing = "BACKENDSERVICES_GOCOMMAND_REGISTRY_MISSING"
	adapterErrorHandlerMissing  = "BACKENDSERVICES_GOCOMMAND_HANDLER_MISSING"
	adapterErrorInvalidMessage  = "BACKENDSERVICES_GOCOMMAND_INVALID_MESSAGE"
)

func errRegistryMissing() error {
	return goerrors.New("gocommand: registry is not configured", goerrors.CategoryInternal).
		WithTextCode(adapterErrorRegistryMissing)
}

func errHandlerMissing(kind string) error {
	return goerrors.New("gocommand: "+kind+" is required", goerrors.CategoryBadInput).
		WithTextCode(adapterErrorHandlerMissing)
}

// ValidateMessageContract enforces Type() plus the optional Validate() hook.
func ValidateMessageContract(msg any) error {
	if err := command.ValidateMessage(msg); err != nil {
		return err
	}
	m, ok := msg.(command.Message)
	if !ok {
		return goerrors.New("gocommand: message must implement Type() string", goerrors.CategoryBadInput).
			WithTextCode(adapterErrorInvalidMessage)
	}
	if strings.TrimSpace(m.Type()) == "" {
		return goerrors.New("gocommand: message type is required", goerrors.CategoryBadInput).
			WithTextCode(adapterErrorInvalidMessage)
	}
	return nil
}

// RegistryAdapter keeps the go-command registry that resolvers (cli, cron)
// inspect during Initialize.
type RegistryAdapter struct {
	registry *command.Registry
}

func NewRegistryAdapter(registry *command.Registry) *RegistryAdapter {
	if registry == nil {
		registry = command.NewRegistry()
	}
	return &RegistryAdapter{registry: registry}
}

func (a *RegistryAdapter) Registry() *command.Registry {
	if a == nil {
		return nil
	}
	return a.registry
}

func (a *RegistryAdapter) configured() bool {
	return a != nil && a.registry != nil
}

func (a *RegistryAdapter) Register(handler any) error {
	if !a.configured() {
		return errRegistryMissing()
	}
	return a.registry.RegisterCommand(handler)
}

func (a *RegistryAdapter) AddResolver(key string, resolver command.Resolver) error {
	if !a.configured() {
		return errRegistryMissing()
	}
	return a.registry.AddResolver(strings.TrimSpace(key), resolver)
}

func (a *RegistryAdapter) HasResolver(key string) bool {
	if !a.configured() {
		return false
	}
	return a.registry.HasResolver(strings.TrimSpace(key))
}

func (a *RegistryAdapter) Initialize() error {
	if !a.configured() {
		return errRegistryMissing()
	}
	return a.registry.Initialize()
}

func Dispatch[T any](ctx context.Context, msg T) error {
	return commanddispatcher.Dispatch(ctx, msg)
}

func Query[T any, R any](ctx context.Context, msg T) (R, error) {
	return commanddispatcher.Query[T, R](ctx, msg)
}

// RegisterCommand subscribes cmd on the global dispatcher and records it in
// the registry. The subscription is dropped again when registration fails.
func RegisterCommand[T any](
	adapter *RegistryAdapter,
	cmd command.Commander[T],
	runnerOpts ...runner.Option,
) (commanddispatcher.Subscription, error) {
	if !adapter.configured() {
		return nil, errRegistryMissing()
	}
	if cmd == nil {
		return nil, errHandlerMissing("command")
	}
	return subscribeAndRegister(adapter, cmd, commanddispatcher.SubscribeCommand(cmd, runnerOpts...))
}

func RegisterQuery[T any, R any](
	adapter *RegistryAdapter,
	qry command.Querier[T, R],
	runnerOpts ...runner.Option,
) (commanddispatcher.Subscription, error) {
	if !adapter.configured() {
		return nil, errRegistryMissing()
	}
	if qry == nil {
		return nil, errHandlerMissing("query")
	}
	return subscribeAndRegister(adapter, qry, commanddispatcher.SubscribeQuery(qry, runnerOpts...))
}

func subscribeAndRegister(
	adapter *RegistryAdapter,
	handler any,
	subscription commanddispatcher.Subscription,
) (commanddispatcher.Subscription, error) {
	if err := adapter.Register(handler); err != nil {
		if subscription != nil {
			subscription.Unsubscribe()
		}
		return nil, err
	}
	return subscription, nil
}
