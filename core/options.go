package core

import (
	"context"
	"fmt"
	"strings"

	"github.com/goliatone/go-config/cfgx"
	goerrors "github.com/goliatone/go-errors"
	opts "github.com/goliatone/go-options"
)

type ErrorMapper func(err error) *goerrors.Error

type ConfigProvider interface {
	Load(ctx context.Context, defaults Config) (Config, error)
}

type RawConfigLoader interface {
	LoadRaw(ctx context.Context) (map[string]any, error)
}

type OptionsResolver interface {
	Resolve(defaults Config, loaded Config, runtime Config) (Config, error)
}

type serviceBuilder struct {
	runtimeConfig   Config
	logger          Logger
	loggerProvider  LoggerProvider
	metricsRecorder MetricsRecorder
	errorMapper     ErrorMapper
	configProvider  ConfigProvider
	optionsResolver OptionsResolver
	tokenSource     TokenSource
	transport       TransportAdapter
	signer          Signer
}

type Option func(*serviceBuilder)

func WithLogger(logger Logger) Option {
	return func(b *serviceBuilder) {
		b.logger = logger
	}
}

func WithLoggerProvider(provider LoggerProvider) Option {
	return func(b *serviceBuilder) {
		b.loggerProvider = provider
	}
}

func WithMetricsRecorder(recorder MetricsRecorder) Option {
	return func(b *serviceBuilder) {
		b.metricsRecorder = recorder
	}
}

func WithErrorMapper(mapper ErrorMapper) Option {
	return func(b *serviceBuilder) {
		b.errorMapper = mapper
	}
}

func WithConfigProvider(provider ConfigProvider) Option {
	return func(b *serviceBuilder) {
		b.configProvider = provider
	}
}

func WithOptionsResolver(resolver OptionsResolver) Option {
	return func(b *serviceBuilder) {
		b.optionsResolver = resolver
	}
}

func WithTokenSource(source TokenSource) Option {
	return func(b *serviceBuilder) {
		b.tokenSource = source
	}
}

func WithTransport(adapter TransportAdapter) Option {
	return func(b *serviceBuilder) {
		b.transport = adapter
	}
}

func WithSigner(signer Signer) Option {
	return func(b *serviceBuilder) {
		b.signer = signer
	}
}

// defaultServiceBuilder leaves logger and provider unset so NewService can
// resolve whichever one the caller supplies.
func defaultServiceBuilder(runtime Config) serviceBuilder {
	return serviceBuilder{
		runtimeConfig:   runtime,
		metricsRecorder: NopMetricsRecorder{},
		errorMapper:     MapError,
		configProvider:  NewCfgxConfigProvider(nil),
		optionsResolver: GoOptionsResolver{},
		signer:          BearerTokenSigner{},
	}
}

type staticRawConfigLoader struct {
	Values map[string]any
}

func (l staticRawConfigLoader) LoadRaw(context.Context) (map[string]any, error) {
	if len(l.Values) == 0 {
		return map[string]any{}, nil
	}
	out := make(map[string]any, len(l.Values))
	for key, value := range l.Values {
		out[key] = value
	}
	return out, nil
}

type CfgxConfigProvider struct {
	Loader RawConfigLoader
}

func NewCfgxConfigProvider(loader RawConfigLoader) *CfgxConfigProvider {
	return &CfgxConfigProvider{Loader: loader}
}

func (p *CfgxConfigProvider) Load(ctx context.Context, defaults Config) (Config, error) {
	if p == nil {
		return defaults, nil
	}
	loader := p.Loader
	if loader == nil {
		loader = staticRawConfigLoader{}
	}
	raw, err := loader.LoadRaw(ctx)
	if err != nil {
		return Config{}, err
	}
	cfg, err := cfgx.Build[Config](raw,
		cfgx.WithDefaults(defaults),
		cfgx.WithValidator[Config]((*Config).Validate),
	)
	if err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// GoOptionsResolver layers defaults < loaded config < runtime overrides.
// Loaded and runtime layers only contribute non-zero fields.
type GoOptionsResolver struct{}

func (GoOptionsResolver) Resolve(defaults Config, loaded Config, runtime Config) (Config, error) {
	defaultLayer := configToLayerMap(defaults, true)
	loadedLayer := configToLayerMap(loaded, false)
	runtimeLayer := configToLayerMap(runtime, false)

	stack, err := opts.NewStack(
		opts.NewLayer(
			opts.NewScope("defaults", 0),
			defaultLayer,
			opts.WithSnapshotID[map[string]any]("defaults"),
		),
		opts.NewLayer(
			opts.NewScope("config", 10),
			loadedLayer,
			opts.WithSnapshotID[map[string]any]("config"),
		),
		opts.NewLayer(
			opts.NewScope("runtime", 20),
			runtimeLayer,
			opts.WithSnapshotID[map[string]any]("runtime"),
		),
	)
	if err != nil {
		return Config{}, fmt.Errorf("core: options stack build failed: %w", err)
	}
	merged, err := stack.Merge()
	if err != nil {
		return Config{}, fmt.Errorf("core: options merge failed: %w", err)
	}
	resolved, err := cfgx.Build[Config](merged.Value,
		cfgx.WithDefaults(defaults),
		cfgx.WithValidator[Config]((*Config).Validate),
	)
	if err != nil {
		return Config{}, err
	}
	if err := resolved.Validate(); err != nil {
		return Config{}, err
	}
	return resolved, nil
}

func configToLayerMap(cfg Config, includeZero bool) map[string]any {
	layer := map[string]any{}
	if includeZero || strings.TrimSpace(cfg.ServiceName) != "" {
		layer["service_name"] = cfg.ServiceName
	}

	podbean := map[string]any{}
	putString(podbean, "api_base_url", cfg.Podbean.APIBaseURL, includeZero)
	putString(podbean, "token_url", cfg.Podbean.TokenURL, includeZero)
	putString(podbean, "client_id", cfg.Podbean.ClientID, includeZero)
	putString(podbean, "client_secret", cfg.Podbean.ClientSecret, includeZero)
	if len(podbean) > 0 {
		layer["podbean"] = podbean
	}

	cors := map[string]any{}
	putString(cors, "allowed_origin", cfg.CORS.AllowedOrigin, includeZero)
	putString(cors, "allowed_headers", cfg.CORS.AllowedHeaders, includeZero)
	putString(cors, "allowed_methods", cfg.CORS.AllowedMethods, includeZero)
	if len(cors) > 0 {
		layer["cors"] = cors
	}

	upstream := map[string]any{}
	if includeZero || cfg.Upstream.Timeout > 0 {
		upstream["timeout"] = cfg.Upstream.Timeout
	}
	if includeZero || cfg.Upstream.MaxResponseBodyBytes > 0 {
		upstream["max_response_body_bytes"] = cfg.Upstream.MaxResponseBodyBytes
	}
	if len(upstream) > 0 {
		layer["upstream"] = upstream
	}
	return layer
}

func putString(layer map[string]any, key string, value string, includeZero bool) {
	if includeZero || strings.TrimSpace(value) != "" {
		layer[key] = value
	}
}
