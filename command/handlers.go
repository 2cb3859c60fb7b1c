package command

import (
	"context"

	"github.com/goliatone/go-backend-services/core"
	gocmd "github.com/goliatone/go-command"
)

// MutatingTransport is the subset of the operation contract that changes
// backend services. *core.Transport satisfies it.
type MutatingTransport interface {
	AddSignedURLKey(ctx context.Context, req *core.AddSignedURLKeyBackendServiceRequest) (*core.ComputeOperation, error)
	Delete(ctx context.Context, req *core.DeleteBackendServiceRequest) (*core.ComputeOperation, error)
	DeleteSignedURLKey(ctx context.Context, req *core.DeleteSignedURLKeyBackendServiceRequest) (*core.ComputeOperation, error)
	Insert(ctx context.Context, req *core.InsertBackendServiceRequest) (*core.ComputeOperation, error)
	Patch(ctx context.Context, req *core.PatchBackendServiceRequest) (*core.ComputeOperation, error)
	SetSecurityPolicy(ctx context.Context, req *core.SetSecurityPolicyBackendServiceRequest) (*core.ComputeOperation, error)
	Update(ctx context.Context, req *core.UpdateBackendServiceRequest) (*core.ComputeOperation, error)
}

type AddSignedURLKeyCommand struct {
	transport MutatingTransport
}

func NewAddSignedURLKeyCommand(transport MutatingTransport) *AddSignedURLKeyCommand {
	return &AddSignedURLKeyCommand{transport: transport}
}

func (c *AddSignedURLKeyCommand) Execute(ctx context.Context, msg AddSignedURLKeyMessage) error {
	if c == nil || c.transport == nil {
		return commandDependencyError("command: add signed url key transport is required")
	}
	req := msg.Request
	out, err := c.transport.AddSignedURLKey(ctx, &req)
	if err != nil {
		return err
	}
	storeResult(ctx, out)
	return nil
}

type DeleteCommand struct {
	transport MutatingTransport
}

func NewDeleteCommand(transport MutatingTransport) *DeleteCommand {
	return &DeleteCommand{transport: transport}
}

func (c *DeleteCommand) Execute(ctx context.Context, msg DeleteMessage) error {
	if c == nil || c.transport == nil {
		return commandDependencyError("command: delete transport is required")
	}
	req := msg.Request
	out, err := c.transport.Delete(ctx, &req)
	if err != nil {
		return err
	}
	storeResult(ctx, out)
	return nil
}

type DeleteSignedURLKeyCommand struct {
	transport MutatingTransport
}

func NewDeleteSignedURLKeyCommand(transport MutatingTransport) *DeleteSignedURLKeyCommand {
	return &DeleteSignedURLKeyCommand{transport: transport}
}

func (c *DeleteSignedURLKeyCommand) Execute(ctx context.Context, msg DeleteSignedURLKeyMessage) error {
	if c == nil || c.transport == nil {
		return commandDependencyError("command: delete signed url key transport is required")
	}
	req := msg.Request
	out, err := c.transport.DeleteSignedURLKey(ctx, &req)
	if err != nil {
		return err
	}
	storeResult(ctx, out)
	return nil
}

type InsertCommand struct {
	transport MutatingTransport
}

func NewInsertCommand(transport MutatingTransport) *InsertCommand {
	return &InsertCommand{transport: transport}
}

func (c *InsertCommand) Execute(ctx context.Context, msg InsertMessage) error {
	if c == nil || c.transport == nil {
		return commandDependencyError("command: insert transport is required")
	}
	req := msg.Request
	out, err := c.transport.Insert(ctx, &req)
	if err != nil {
		return err
	}
	storeResult(ctx, out)
	return nil
}

type PatchCommand struct {
	transport MutatingTransport
}

func NewPatchCommand(transport MutatingTransport) *PatchCommand {
	return &PatchCommand{transport: transport}
}

func (c *PatchCommand) Execute(ctx context.Context, msg PatchMessage) error {
	if c == nil || c.transport == nil {
		return commandDependencyError("command: patch transport is required")
	}
	req := msg.Request
	out, err := c.transport.Patch(ctx, &req)
	if err != nil {
		return err
	}
	storeResult(ctx, out)
	return nil
}

type SetSecurityPolicyCommand struct {
	transport MutatingTransport
}

func NewSetSecurityPolicyCommand(transport MutatingTransport) *SetSecurityPolicyCommand {
	return &SetSecurityPolicyCommand{transport: transport}
}

func (c *SetSecurityPolicyCommand) Execute(ctx context.Context, msg SetSecurityPolicyMessage) error {
	if c == nil || c.transport == nil {
		return commandDependencyError("command: set security policy transport is required")
	}
	req := msg.Request
	out, err := c.transport.SetSecurityPolicy(ctx, &req)
	if err != nil {
		return err
	}
	storeResult(ctx, out)
	return nil
}

type UpdateCommand struct {
	transport MutatingTransport
}

func NewUpdateCommand(transport MutatingTransport) *UpdateCommand {
	return &UpdateCommand{transport: transport}
}

func (c *UpdateCommand) Execute(ctx context.Context, msg UpdateMessage) error {
	if c == nil || c.transport == nil {
		return commandDependencyError("command: update transport is required")
	}
	req := msg.Request
	out, err := c.transport.Update(ctx, &req)
	if err != nil {
		return err
	}
	storeResult(ctx, out)
	return nil
}

func storeResult[T any](ctx context.Context, value T) {
	collector := gocmd.ResultFromContext[T](ctx)
	if collector == nil {
		return
	}
	collector.Store(value)
}
