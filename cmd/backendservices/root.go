package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	backendservices "github.com/goliatone/go-backend-services"
	"github.com/goliatone/go-backend-services/adapters/gologger"
	"github.com/goliatone/go-backend-services/adapters/koanfconfig"
	"github.com/goliatone/go-backend-services/core"
	"github.com/spf13/cobra"
)

// AccessTokenEnv lets scripts hand over a token minted elsewhere, for example
// with `gcloud auth print-access-token`.
const AccessTokenEnv = "BACKENDSERVICES_ACCESS_TOKEN"

type rootFlags struct {
	configPath      string
	host            string
	transport       string
	credentialsFile string
	quotaProject    string
	accessToken     string
	baseURL         string
	grpcTarget      string
	timeout         time.Duration
	insecure        bool
	retries         int
}

func (f *rootFlags) runtimeConfig() core.Config {
	cfg := core.Config{
		Host:            strings.TrimSpace(f.host),
		Transport:       strings.TrimSpace(f.transport),
		Insecure:        f.insecure,
		CredentialsFile: strings.TrimSpace(f.credentialsFile),
		QuotaProjectID:  strings.TrimSpace(f.quotaProject),
		DefaultTimeout:  f.timeout,
	}
	if f.retries > 1 {
		cfg.Retry = core.RetryConfig{MaxAttempts: f.retries}
	}
	return cfg
}

func (f *rootFlags) newClient(ctx context.Context) (*backendservices.Facade, func(), error) {
	coreOpts := append([]core.Option{
		core.WithConfigProvider(koanfconfig.NewProvider(f.configPath)),
	}, gologger.TransportOptions(gologger.DefaultLoggerName, nil, nil)...)

	token := strings.TrimSpace(f.accessToken)
	if token == "" {
		token = strings.TrimSpace(os.Getenv(AccessTokenEnv))
	}
	if token != "" {
		coreOpts = append(coreOpts, core.WithCredentials(backendservices.StaticTokenCredential(token)))
	}

	clientOpts := []backendservices.ClientOption{backendservices.WithOptions(coreOpts...)}
	if base := strings.TrimSpace(f.baseURL); base != "" {
		clientOpts = append(clientOpts, backendservices.WithTransportSettings("rest", map[string]any{"base_url": base}))
	}
	if target := strings.TrimSpace(f.grpcTarget); target != "" {
		clientOpts = append(clientOpts, backendservices.WithTransportSettings("grpc", map[string]any{"target": target}))
	}

	client, err := backendservices.NewClientContext(ctx, f.runtimeConfig(), clientOpts...)
	if err != nil {
		return nil, nil, err
	}
	facade, err := backendservices.NewFacade(client)
	if err != nil {
		_ = client.Close()
		return nil, nil, err
	}
	return facade, func() { _ = client.Close() }, nil
}

func newRootCommand() *cobra.Command {
	flags := &rootFlags{}
	root := &cobra.Command{
		Use:           "backendservices",
		Short:         "Call the Compute Engine BackendServices API",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	persistent := root.PersistentFlags()
	persistent.StringVar(&flags.configPath, "config", "", "YAML configuration file")
	persistent.StringVar(&flags.host, "host", "", "API host, port 443 is implied")
	persistent.StringVar(&flags.transport, "transport", "", "transport kind: rest or grpc")
	persistent.StringVar(&flags.credentialsFile, "credentials-file", "", "service account or user credentials JSON")
	persistent.StringVar(&flags.quotaProject, "quota-project", "", "project billed for quota")
	persistent.StringVar(&flags.accessToken, "access-token", "", "bearer token, overrides credential discovery")
	persistent.StringVar(&flags.baseURL, "base-url", "", "REST base URL override")
	persistent.StringVar(&flags.grpcTarget, "grpc-target", "", "gRPC dial target override")
	persistent.DurationVar(&flags.timeout, "timeout", 0, "per attempt timeout, 0 means unbounded")
	persistent.BoolVar(&flags.insecure, "insecure", false, "use plaintext connections")
	persistent.IntVar(&flags.retries, "retries", 0, "maximum attempts for retryable failures")
	_ = persistent.MarkHidden("base-url")
	_ = persistent.MarkHidden("grpc-target")

	root.AddCommand(
		newOperationsCommand(),
		newGetCommand(flags),
		newListCommand(flags),
		newAggregatedListCommand(flags),
		newGetHealthCommand(flags),
		newInsertCommand(flags),
		newPatchCommand(flags),
		newDeleteCommand(flags),
		newSetSecurityPolicyCommand(flags),
	)
	return root
}

func writeJSON(w io.Writer, value any) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(value)
}

// runWithFacade builds a client for one invocation and closes it afterwards.
func runWithFacade(cmd *cobra.Command, flags *rootFlags, run func(context.Context, *backendservices.Facade) (any, error)) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	facade, closeClient, err := flags.newClient(ctx)
	if err != nil {
		return err
	}
	defer closeClient()

	result, err := run(ctx, facade)
	if err != nil {
		return err
	}
	return writeJSON(cmd.OutOrStdout(), result)
}

func readResource(path string) (*core.BackendService, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return nil, fmt.Errorf("--file is required")
	}
	var data []byte
	var err error
	if path == "-" {
		data, err = io.ReadAll(os.Stdin)
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	resource := &core.BackendService{}
	if err := json.Unmarshal(data, resource); err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}
	return resource, nil
}
