package koanfconfig

import (
	"context"
	"errors"
	"io/fs"
	"strings"
	"time"

	"github.com/goliatone/go-backend-services/core"
	goerrors "github.com/goliatone/go-errors"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// DefaultEnvPrefix selects variables such as BACKENDSERVICES__HOST or
// BACKENDSERVICES__RETRY__MAX_ATTEMPTS. A double underscore separates levels.
const DefaultEnvPrefix = "BACKENDSERVICES__"

const configErrorLoad = "BACKENDSERVICES_CONFIG_LOAD_FAILED"

// Provider layers an optional YAML file under environment variables and
// decodes the result onto the defaults handed in by the transport.
type Provider struct {
	Path      string
	EnvPrefix string
	// Required turns a missing file into an error instead of skipping it.
	Required bool
}

var (
	_ core.ConfigProvider  = (*Provider)(nil)
	_ core.RawConfigLoader = (*Provider)(nil)
)

func NewProvider(path string) *Provider {
	return &Provider{Path: strings.TrimSpace(path), EnvPrefix: DefaultEnvPrefix}
}

func (p *Provider) load() (*koanf.Koanf, error) {
	k := koanf.New(".")
	if p == nil {
		return k, nil
	}
	if path := strings.TrimSpace(p.Path); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			if !errors.Is(err, fs.ErrNotExist) || p.Required {
				return nil, loadError(err, "koanfconfig: load "+path)
			}
		}
	}
	if prefix := p.EnvPrefix; prefix != "" {
		if err := k.Load(env.Provider(prefix, ".", envKey(prefix)), nil); err != nil {
			return nil, loadError(err, "koanfconfig: load environment")
		}
	}
	return k, nil
}

// envKey turns BACKENDSERVICES__RETRY__MAX_ATTEMPTS into retry.max_attempts.
func envKey(prefix string) func(string) string {
	return func(key string) string {
		key = strings.TrimPrefix(key, prefix)
		return strings.ReplaceAll(strings.ToLower(key), "__", ".")
	}
}

func (p *Provider) Load(_ context.Context, defaults core.Config) (core.Config, error) {
	k, err := p.load()
	if err != nil {
		return core.Config{}, err
	}
	cfg := defaults
	if defaults.Timeouts != nil {
		cfg.Timeouts = make(map[string]time.Duration, len(defaults.Timeouts))
		for name, timeout := range defaults.Timeouts {
			cfg.Timeouts[name] = timeout
		}
	}
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return core.Config{}, loadError(err, "koanfconfig: decode")
	}
	if err := cfg.Validate(); err != nil {
		return core.Config{}, err
	}
	return cfg, nil
}

// LoadRaw exposes the merged tree for core.NewCfgxConfigProvider.
func (p *Provider) LoadRaw(context.Context) (map[string]any, error) {
	k, err := p.load()
	if err != nil {
		return nil, err
	}
	return k.Raw(), nil
}

func loadError(err error, message string) error {
	return goerrors.Wrap(err, goerrors.CategoryInternal, message).
		WithTextCode(configErrorLoad)
}
