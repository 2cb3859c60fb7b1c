package main

import (
	"context"
	"strings"

	backendservices "github.com/goliatone/go-backend-services"
	"github.com/goliatone/go-backend-services/adapters/gocommand"
	bscommand "github.com/goliatone/go-backend-services/command"
	"github.com/goliatone/go-backend-services/core"
	bsquery "github.com/goliatone/go-backend-services/query"
	gocmd "github.com/goliatone/go-command"
	"github.com/spf13/cobra"
)

type operationRow struct {
	Operation   string `json:"operation"`
	Method      string `json:"method"`
	Request     string `json:"request"`
	Result      string `json:"result"`
	LongRunning bool   `json:"long_running"`
}

func newOperationsCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "operations",
		Short: "List the operations exposed by the transport",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			rows := []operationRow{}
			for _, desc := range core.BackendServicesOperations() {
				rows = append(rows, operationRow{
					Operation:   desc.Operation.String(),
					Method:      desc.FullMethod(),
					Request:     desc.RequestType,
					Result:      desc.ResultType,
					LongRunning: desc.LongRunning,
				})
			}
			return writeJSON(cmd.OutOrStdout(), rows)
		},
	}
}

func newGetCommand(flags *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "get PROJECT BACKEND_SERVICE",
		Short: "Fetch one backend service",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runWithFacade(cmd, flags, func(ctx context.Context, facade *backendservices.Facade) (any, error) {
				return runQuery[bsquery.GetMessage, *core.BackendService](ctx, facade.Queries().Get, bsquery.GetMessage{
					Request: core.GetBackendServiceRequest{Project: args[0], BackendService: args[1]},
				})
			})
		},
	}
}

type listFlags struct {
	filter         string
	orderBy        string
	pageToken      string
	maxResults     uint32
	partialSuccess bool
}

func (f *listFlags) bind(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.filter, "filter", "", "filter expression")
	cmd.Flags().StringVar(&f.orderBy, "order-by", "", "sort order")
	cmd.Flags().StringVar(&f.pageToken, "page-token", "", "page token from a previous call")
	cmd.Flags().Uint32Var(&f.maxResults, "max-results", 0, "page size")
	cmd.Flags().BoolVar(&f.partialSuccess, "return-partial-success", false, "return partial results on errors")
}

func (f *listFlags) partial(cmd *cobra.Command) *bool {
	if !cmd.Flags().Changed("return-partial-success") {
		return nil
	}
	value := f.partialSuccess
	return &value
}

func newListCommand(flags *rootFlags) *cobra.Command {
	list := &listFlags{}
	cmd := &cobra.Command{
		Use:   "list PROJECT",
		Short: "List global backend services",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runWithFacade(cmd, flags, func(ctx context.Context, facade *backendservices.Facade) (any, error) {
				return runQuery[bsquery.ListMessage, *core.BackendServiceList](ctx, facade.Queries().List, bsquery.ListMessage{Request: core.ListBackendServicesRequest{
					Project:              args[0],
					Filter:               list.filter,
					OrderBy:              list.orderBy,
					PageToken:            list.pageToken,
					MaxResults:           list.maxResults,
					ReturnPartialSuccess: list.partial(cmd),
				}})
			})
		},
	}
	list.bind(cmd)
	return cmd
}

func newAggregatedListCommand(flags *rootFlags) *cobra.Command {
	list := &listFlags{}
	var includeAllScopes bool
	cmd := &cobra.Command{
		Use:   "aggregated-list PROJECT",
		Short: "List backend services across all scopes",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			req := core.AggregatedListBackendServicesRequest{
				Project:              args[0],
				Filter:               list.filter,
				OrderBy:              list.orderBy,
				PageToken:            list.pageToken,
				MaxResults:           list.maxResults,
				ReturnPartialSuccess: list.partial(cmd),
			}
			if cmd.Flags().Changed("include-all-scopes") {
				req.IncludeAllScopes = &includeAllScopes
			}
			return runWithFacade(cmd, flags, func(ctx context.Context, facade *backendservices.Facade) (any, error) {
				return runQuery[bsquery.AggregatedListMessage, *core.BackendServiceAggregatedList](ctx, facade.Queries().AggregatedList, bsquery.AggregatedListMessage{Request: req})
			})
		},
	}
	list.bind(cmd)
	cmd.Flags().BoolVar(&includeAllScopes, "include-all-scopes", false, "include regional and global scopes")
	return cmd
}

func newGetHealthCommand(flags *rootFlags) *cobra.Command {
	var group string
	cmd := &cobra.Command{
		Use:   "get-health PROJECT BACKEND_SERVICE",
		Short: "Report backend health for one instance group",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runWithFacade(cmd, flags, func(ctx context.Context, facade *backendservices.Facade) (any, error) {
				return runQuery[bsquery.GetHealthMessage, *core.BackendServiceGroupHealth](ctx, facade.Queries().GetHealth, bsquery.GetHealthMessage{Request: core.GetHealthBackendServiceRequest{
					Project:                        args[0],
					BackendService:                 args[1],
					ResourceGroupReferenceResource: &core.ResourceGroupReference{Group: strings.TrimSpace(group)},
				}})
			})
		},
	}
	cmd.Flags().StringVar(&group, "group", "", "instance group or NEG URL")
	return cmd
}

func runQuery[T any, R any](ctx context.Context, handler gocmd.Querier[T, R], msg T) (R, error) {
	if err := gocommand.ValidateMessageContract(msg); err != nil {
		var zero R
		return zero, err
	}
	return handler.Query(ctx, msg)
}

// executeCommand runs a mutating handler and returns the operation it stored.
func executeCommand[T any](ctx context.Context, handler gocmd.Commander[T], msg T) (*core.ComputeOperation, error) {
	if err := gocommand.ValidateMessageContract(msg); err != nil {
		return nil, err
	}
	collector := gocmd.NewResult[*core.ComputeOperation]()
	if err := handler.Execute(gocmd.ContextWithResult(ctx, collector), msg); err != nil {
		return nil, err
	}
	operation, _ := collector.Load()
	return operation, nil
}

func newInsertCommand(flags *rootFlags) *cobra.Command {
	var file, requestID string
	cmd := &cobra.Command{
		Use:   "insert PROJECT",
		Short: "Create a backend service from a JSON resource",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			resource, err := readResource(file)
			if err != nil {
				return err
			}
			return runWithFacade(cmd, flags, func(ctx context.Context, facade *backendservices.Facade) (any, error) {
				return executeCommand[bscommand.InsertMessage](ctx, facade.Commands().Insert, bscommand.InsertMessage{
					Request: core.InsertBackendServiceRequest{Project: args[0], RequestID: requestID, BackendServiceResource: resource},
				})
			})
		},
	}
	cmd.Flags().StringVar(&file, "file", "", "JSON resource file, - reads stdin")
	cmd.Flags().StringVar(&requestID, "request-id", "", "idempotency key, generated when empty")
	return cmd
}

func newPatchCommand(flags *rootFlags) *cobra.Command {
	var file, requestID string
	cmd := &cobra.Command{
		Use:   "patch PROJECT BACKEND_SERVICE",
		Short: "Patch a backend service with a partial JSON resource",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			resource, err := readResource(file)
			if err != nil {
				return err
			}
			return runWithFacade(cmd, flags, func(ctx context.Context, facade *backendservices.Facade) (any, error) {
				return executeCommand[bscommand.PatchMessage](ctx, facade.Commands().Patch, bscommand.PatchMessage{
					Request: core.PatchBackendServiceRequest{
						Project: args[0], BackendService: args[1], RequestID: requestID, BackendServiceResource: resource,
					},
				})
			})
		},
	}
	cmd.Flags().StringVar(&file, "file", "", "JSON resource file, - reads stdin")
	cmd.Flags().StringVar(&requestID, "request-id", "", "idempotency key, generated when empty")
	return cmd
}

func newDeleteCommand(flags *rootFlags) *cobra.Command {
	var requestID string
	cmd := &cobra.Command{
		Use:   "delete PROJECT BACKEND_SERVICE",
		Short: "Delete a backend service",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runWithFacade(cmd, flags, func(ctx context.Context, facade *backendservices.Facade) (any, error) {
				return executeCommand[bscommand.DeleteMessage](ctx, facade.Commands().Delete, bscommand.DeleteMessage{
					Request: core.DeleteBackendServiceRequest{Project: args[0], BackendService: args[1], RequestID: requestID},
				})
			})
		},
	}
	cmd.Flags().StringVar(&requestID, "request-id", "", "idempotency key, generated when empty")
	return cmd
}

func newSetSecurityPolicyCommand(flags *rootFlags) *cobra.Command {
	var policy, requestID string
	cmd := &cobra.Command{
		Use:   "set-security-policy PROJECT BACKEND_SERVICE",
		Short: "Attach a Cloud Armor policy, an empty --policy detaches it",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runWithFacade(cmd, flags, func(ctx context.Context, facade *backendservices.Facade) (any, error) {
				return executeCommand[bscommand.SetSecurityPolicyMessage](ctx, facade.Commands().SetSecurityPolicy, bscommand.SetSecurityPolicyMessage{
					Request: core.SetSecurityPolicyBackendServiceRequest{
						Project:                         args[0],
						BackendService:                  args[1],
						RequestID:                       requestID,
						SecurityPolicyReferenceResource: &core.SecurityPolicyReference{SecurityPolicy: strings.TrimSpace(policy)},
					},
				})
			})
		},
	}
	cmd.Flags().StringVar(&policy, "policy", "", "security policy URL")
	cmd.Flags().StringVar(&requestID, "request-id", "", "idempotency key, generated when empty")
	return cmd
}
