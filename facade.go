package podbeanproxy

import (
	"fmt"

	"github.com/goliatone/go-podbean-proxy/core"
	"github.com/goliatone/go-podbean-proxy/inbound"
	"github.com/goliatone/go-podbean-proxy/query"
)

type Queries struct {
	Forward *query.ForwardQuery
}

type Handlers struct {
	Pipeline *inbound.Pipeline
	HTTP     *inbound.HTTPHandler
	Lambda   *inbound.LambdaHandler
}

type Facade struct {
	service  core.Forwarder
	cors     core.CORSConfig
	queries  Queries
	handlers Handlers
}

type FacadeOption func(*facadeOptions)

type facadeOptions struct {
	cors    *core.CORSConfig
	querier inbound.ForwardQuerier
}

// WithCORS overrides the CORS headers otherwise taken from the service
// configuration.
func WithCORS(cors core.CORSConfig) FacadeOption {
	return func(options *facadeOptions) {
		options.cors = &cors
	}
}

// WithForwardQuerier routes inbound requests through querier instead of the
// facade's own ForwardQuery, e.g. a go-command dispatcher.
func WithForwardQuerier(querier inbound.ForwardQuerier) FacadeOption {
	return func(options *facadeOptions) {
		options.querier = querier
	}
}

func NewFacade(service core.Forwarder, opts ...FacadeOption) (*Facade, error) {
	if service == nil {
		return nil, fmt.Errorf("podbeanproxy: forwarder is required")
	}
	cfg := facadeOptions{}
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		opt(&cfg)
	}

	cors := resolveCORS(service)
	if cfg.cors != nil {
		cors = *cfg.cors
	}

	facade := &Facade{service: service, cors: cors}
	facade.queries = Queries{
		Forward: query.NewForwardQuery(service),
	}
	var querier inbound.ForwardQuerier = facade.queries.Forward
	if cfg.querier != nil {
		querier = cfg.querier
	}
	pipeline := inbound.NewPipeline(querier, cors)
	facade.handlers = Handlers{
		Pipeline: pipeline,
		HTTP:     inbound.NewHTTPHandler(pipeline),
		Lambda:   inbound.NewLambdaHandler(pipeline),
	}
	return facade, nil
}

func (f *Facade) Queries() Queries {
	if f == nil {
		return Queries{}
	}
	return f.queries
}

func (f *Facade) Handlers() Handlers {
	if f == nil {
		return Handlers{}
	}
	return f.handlers
}

func (f *Facade) CORS() core.CORSConfig {
	if f == nil {
		return core.CORSConfig{}
	}
	return f.cors
}

func (f *Facade) Service() core.Forwarder {
	if f == nil {
		return nil
	}
	return f.service
}

func resolveCORS(service core.Forwarder) core.CORSConfig {
	provider, ok := service.(interface {
		Config() core.Config
	})
	if !ok {
		return core.DefaultConfig().CORS
	}
	return provider.Config().CORS
}
