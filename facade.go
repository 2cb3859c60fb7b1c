package backendservices

import (
	"fmt"

	bscommand "github.com/goliatone/go-backend-services/command"
	"github.com/goliatone/go-backend-services/core"
	bsquery "github.com/goliatone/go-backend-services/query"
)

// CommandQueryTransport is the operation surface the facade handlers need.
// *core.Transport satisfies it.
type CommandQueryTransport interface {
	bscommand.MutatingTransport
	bsquery.ReadTransport
}

var _ CommandQueryTransport = (*core.Transport)(nil)

type Commands struct {
	AddSignedURLKey    *bscommand.AddSignedURLKeyCommand
	Delete             *bscommand.DeleteCommand
	DeleteSignedURLKey *bscommand.DeleteSignedURLKeyCommand
	Insert             *bscommand.InsertCommand
	Patch              *bscommand.PatchCommand
	SetSecurityPolicy  *bscommand.SetSecurityPolicyCommand
	Update             *bscommand.UpdateCommand
}

type Queries struct {
	Get            *bsquery.GetQuery
	List           *bsquery.ListQuery
	AggregatedList *bsquery.AggregatedListQuery
	GetHealth      *bsquery.GetHealthQuery
}

// Facade groups the command and query handlers bound to one transport.
type Facade struct {
	transport CommandQueryTransport
	commands  Commands
	queries   Queries
}

func NewFacade(transport CommandQueryTransport) (*Facade, error) {
	if transport == nil {
		return nil, fmt.Errorf("backendservices: transport is required")
	}
	return &Facade{
		transport: transport,
		commands: Commands{
			AddSignedURLKey:    bscommand.NewAddSignedURLKeyCommand(transport),
			Delete:             bscommand.NewDeleteCommand(transport),
			DeleteSignedURLKey: bscommand.NewDeleteSignedURLKeyCommand(transport),
			Insert:             bscommand.NewInsertCommand(transport),
			Patch:              bscommand.NewPatchCommand(transport),
			SetSecurityPolicy:  bscommand.NewSetSecurityPolicyCommand(transport),
			Update:             bscommand.NewUpdateCommand(transport),
		},
		queries: Queries{
			Get:            bsquery.NewGetQuery(transport),
			List:           bsquery.NewListQuery(transport),
			AggregatedList: bsquery.NewAggregatedListQuery(transport),
			GetHealth:      bsquery.NewGetHealthQuery(transport),
		},
	}, nil
}

func (f *Facade) Commands() Commands {
	if f == nil {
		return Commands{}
	}
	return f.commands
}

func (f *Facade) Queries() Queries {
	if f == nil {
		return Queries{}
	}
	return f.queries
}

func (f *Facade) Transport() CommandQueryTransport {
	if f == nil {
		return nil
	}
	return f.transport
}
