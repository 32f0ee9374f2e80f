package podbeanproxy

import (
	"net/http"

	"github.com/goliatone/go-podbean-proxy/auth"
	"github.com/goliatone/go-podbean-proxy/core"
	"github.com/goliatone/go-podbean-proxy/transport"
)

type Config = core.Config

type Option = core.Option

type Service = core.Service

type ServiceDependencies = core.ServiceDependencies
type Credentials = core.Credentials
type TokenSource = core.TokenSource
type TokenRequest = core.TokenRequest
type TransportAdapter = core.TransportAdapter
type MetricsRecorder = core.MetricsRecorder
type Signer = core.Signer

type ForwardRequest = core.ForwardRequest

type ForwardResult = core.ForwardResult

var (
	WithLogger          = core.WithLogger
	WithLoggerProvider  = core.WithLoggerProvider
	WithMetricsRecorder = core.WithMetricsRecorder
	WithErrorMapper     = core.WithErrorMapper
	WithConfigProvider  = core.WithConfigProvider
	WithOptionsResolver = core.WithOptionsResolver
	WithTokenSource     = core.WithTokenSource
	WithTransport       = core.WithTransport
	WithSigner          = core.WithSigner
)

func DefaultConfig() Config {
	return core.DefaultConfig()
}

// Setup builds a Service that reads PODBEAN_* variables from the process
// environment, fetches tokens with the client-credentials grant, and calls
// the API over net/http. Options passed by the caller replace any of these.
func Setup(cfg Config, opts ...Option) (*Service, error) {
	return core.NewService(cfg, append(defaultOptions(&http.Client{}), opts...)...)
}

// defaultOptions shares one client between the token source and the REST
// transport. Request deadlines come from upstream.timeout.
func defaultOptions(client *http.Client) []Option {
	return []Option{
		core.WithConfigProvider(core.NewCfgxConfigProvider(core.NewEnvConfigLoader())),
		core.WithTokenSource(auth.NewClientCredentialsSource(auth.ClientCredentialsConfig{
			HTTPClient: client,
		})),
		core.WithTransport(transport.NewRESTAdapter(client)),
	}
}
