package core

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	goerrors "github.com/goliatone/go-errors"
	glog "github.com/goliatone/go-logger/glog"
)

const OperationForward = "forward"

// Service forwards proxy requests to the Podbean API. It holds only the
// resolved configuration and stateless collaborators, so a single instance
// serves concurrent requests.
type Service struct {
	config          Config
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

type ServiceDependencies struct {
	Logger          Logger
	LoggerProvider  LoggerProvider
	MetricsRecorder MetricsRecorder
	ErrorMapper     ErrorMapper
	ConfigProvider  ConfigProvider
	OptionsResolver OptionsResolver
	TokenSource     TokenSource
	Transport       TransportAdapter
	Signer          Signer
}

func NewService(cfg Config, opts ...Option) (*Service, error) {
	builder := defaultServiceBuilder(cfg)
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		opt(&builder)
	}

	provider, logger := glog.Resolve(DefaultServiceName, builder.loggerProvider, builder.logger)
	logger = glog.Ensure(logger)
	if provider != nil {
		if named := provider.GetLogger(DefaultServiceName); named != nil {
			logger = glog.Ensure(named)
		}
	} else {
		provider = glog.ProviderFromLogger(logger)
	}

	if builder.metricsRecorder == nil {
		builder.metricsRecorder = NopMetricsRecorder{}
	}
	if builder.errorMapper == nil {
		builder.errorMapper = MapError
	}
	if builder.configProvider == nil {
		builder.configProvider = NewCfgxConfigProvider(nil)
	}
	if builder.optionsResolver == nil {
		builder.optionsResolver = GoOptionsResolver{}
	}
	if builder.signer == nil {
		builder.signer = BearerTokenSigner{}
	}
	if builder.tokenSource == nil {
		return nil, mapBuildError(builder.errorMapper, fmt.Errorf("core: token source is required"))
	}
	if builder.transport == nil {
		return nil, mapBuildError(builder.errorMapper, fmt.Errorf("core: transport adapter is required"))
	}

	defaults := DefaultConfig()
	loaded, err := builder.configProvider.Load(context.Background(), defaults)
	if err != nil {
		return nil, mapBuildError(builder.errorMapper, err)
	}
	finalConfig, err := builder.optionsResolver.Resolve(defaults, loaded, builder.runtimeConfig)
	if err != nil {
		return nil, mapBuildError(builder.errorMapper, err)
	}
	finalConfig.Podbean.APIBaseURL = strings.TrimRight(strings.TrimSpace(finalConfig.Podbean.APIBaseURL), "/")

	return &Service{
		config:          finalConfig,
		logger:          logger,
		loggerProvider:  provider,
		metricsRecorder: builder.metricsRecorder,
		errorMapper:     builder.errorMapper,
		configProvider:  builder.configProvider,
		optionsResolver: builder.optionsResolver,
		tokenSource:     builder.tokenSource,
		transport:       builder.transport,
		signer:          builder.signer,
	}, nil
}

func Setup(cfg Config, opts ...Option) (*Service, error) {
	return NewService(cfg, opts...)
}

func mapBuildError(mapper ErrorMapper, err error) error {
	if err == nil {
		return nil
	}
	if mapper == nil {
		return err
	}
	mapped := mapper(err)
	if mapped == nil {
		return err
	}
	return mapped
}

func (s *Service) Config() Config {
	if s == nil {
		return Config{}
	}
	return s.config
}

func (s *Service) Dependencies() ServiceDependencies {
	if s == nil {
		return ServiceDependencies{}
	}
	return ServiceDependencies{
		Logger:          s.logger,
		LoggerProvider:  s.loggerProvider,
		MetricsRecorder: s.metricsRecorder,
		ErrorMapper:     s.errorMapper,
		ConfigProvider:  s.configProvider,
		OptionsResolver: s.optionsResolver,
		TokenSource:     s.tokenSource,
		Transport:       s.transport,
		Signer:          s.signer,
	}
}

// Forward acquires a fresh access token, issues the authorized GET against
// the API base URL joined with req.Endpoint, and returns the upstream status
// with its JSON body. The token never leaves this call.
func (s *Service) Forward(ctx context.Context, req ForwardRequest) (result ForwardResult, err error) {
	startedAt := time.Now().UTC()
	defer func() {
		statusCode := result.StatusCode
		if err != nil {
			statusCode = ErrorStatus(err)
		}
		s.observeForward(ctx, forwardObservation{
			requestID:  req.RequestID,
			endpoint:   req.Endpoint,
			statusCode: statusCode,
			startedAt:  startedAt,
			err:        err,
		})
	}()

	if s == nil {
		return ForwardResult{}, MapError(fmt.Errorf("core: service is nil"))
	}
	if ctx == nil {
		ctx = context.Background()
	}
	if req.Endpoint == "" {
		return ForwardResult{}, s.mapError(NewMissingParameterError("endpoint", MissingEndpointMessage))
	}

	token, err := s.acquireToken(ctx, req)
	if err != nil {
		return ForwardResult{}, err
	}

	transportReq := TransportRequest{
		Method:               http.MethodGet,
		URL:                  s.config.Podbean.APIBaseURL + req.Endpoint,
		Headers:              map[string]string{},
		Timeout:              s.config.Upstream.Timeout,
		MaxResponseBodyBytes: s.config.Upstream.MaxResponseBodyBytes,
		Metadata:             map[string]any{"request_id": req.RequestID},
	}
	if signErr := s.signer.Sign(ctx, &transportReq, token); signErr != nil {
		return ForwardResult{}, s.mapError(signErr)
	}

	response, err := s.transport.Do(ctx, transportReq)
	if err != nil {
		var rich *goerrors.Error
		if goerrors.As(err, &rich) {
			return ForwardResult{}, s.mapError(rich)
		}
		return ForwardResult{}, s.mapError(NewUpstreamCallError(err, "upstream request failed", map[string]any{
			"endpoint": req.Endpoint,
		}))
	}

	body, err := compactJSON(response.Body)
	if err != nil {
		return ForwardResult{}, s.mapError(NewUpstreamCallError(err, "upstream returned a non-JSON response", map[string]any{
			"endpoint":    req.Endpoint,
			"status_code": response.StatusCode,
		}))
	}

	return ForwardResult{
		StatusCode: response.StatusCode,
		Body:       body,
		Metadata:   cloneFields(response.Metadata),
	}, nil
}

func (s *Service) acquireToken(ctx context.Context, req ForwardRequest) (AccessToken, error) {
	creds := s.config.Credentials()
	if !creds.Complete() {
		err := NewConfigurationError(MissingCredentialsMessage, map[string]any{
			"client_id_configured":     creds.ClientID != "",
			"client_secret_configured": creds.ClientSecret != "",
		})
		s.logError(ctx, "access token unavailable", map[string]any{
			"request_id": req.RequestID,
			"error":      err.Message,
		})
		return AccessToken{}, s.mapError(err)
	}

	token, err := s.tokenSource.Token(ctx, TokenRequest{
		TokenURL:    s.config.Podbean.TokenURL,
		Credentials: creds,
		Timeout:     s.config.Upstream.Timeout,
	})
	if err != nil {
		var rich *goerrors.Error
		if !goerrors.As(err, &rich) {
			rich = NewUpstreamAuthError(err, err.Error(), nil)
		}
		s.logError(ctx, "access token request failed", map[string]any{
			"request_id": req.RequestID,
			"token_url":  s.config.Podbean.TokenURL,
			"error":      rich.Message,
		})
		return AccessToken{}, s.mapError(rich)
	}
	if strings.TrimSpace(token.Value) == "" {
		return AccessToken{}, s.mapError(NewUpstreamAuthError(nil, DefaultTokenFailureMessage, nil))
	}
	return token, nil
}

func (s *Service) mapError(err error) error {
	if err == nil {
		return nil
	}
	if s == nil || s.errorMapper == nil {
		return MapError(err)
	}
	mapped := s.errorMapper(err)
	if mapped == nil {
		return err
	}
	return mapped
}

// compactJSON re-serializes an upstream document without reordering keys or
// rewriting numbers.
func compactJSON(body []byte) ([]byte, error) {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 {
		return nil, fmt.Errorf("empty response body")
	}
	var out bytes.Buffer
	if err := json.Compact(&out, trimmed); err != nil {
		return nil, err
	}
	return out.Bytes(), nil
}

var _ Forwarder = (*Service)(nil)
