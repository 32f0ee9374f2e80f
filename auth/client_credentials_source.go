package auth

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/goliatone/go-podbean-proxy/core"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/clientcredentials"
)

const KindClientCredentials = "oauth2_client_credentials"

const defaultTokenRequestTimeout = 30 * time.Second

// ClientCredentialsConfig holds fallbacks for callers that use the source
// directly. A TokenRequest built by core.Service always sets TokenURL and
// Timeout, which take precedence.
type ClientCredentialsConfig struct {
	TokenURL   string
	Timeout    time.Duration
	HTTPClient *http.Client
}

// ClientCredentialsSource performs one client-credentials grant per Token
// call. Nothing is cached between calls.
type ClientCredentialsSource struct {
	config     ClientCredentialsConfig
	httpClient *http.Client
}

func NewClientCredentialsSource(cfg ClientCredentialsConfig) *ClientCredentialsSource {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTokenRequestTimeout
	}
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: timeout}
	}
	return &ClientCredentialsSource{
		config: ClientCredentialsConfig{
			TokenURL:   strings.TrimSpace(cfg.TokenURL),
			Timeout:    timeout,
			HTTPClient: httpClient,
		},
		httpClient: httpClient,
	}
}

func (*ClientCredentialsSource) Type() string {
	return KindClientCredentials
}

func (s *ClientCredentialsSource) TokenURL() string {
	if s == nil {
		return ""
	}
	return s.config.TokenURL
}

// Token posts grant_type=client_credentials with the client id and secret in
// the form body and returns the access_token verbatim. req.TokenURL and
// req.Timeout override the source defaults when set.
func (s *ClientCredentialsSource) Token(ctx context.Context, req core.TokenRequest) (core.AccessToken, error) {
	if s == nil {
		return core.AccessToken{}, core.NewConfigurationError("auth: client credentials source is nil", nil)
	}
	creds := req.Credentials
	if !creds.Complete() {
		return core.AccessToken{}, core.NewConfigurationError(core.MissingCredentialsMessage, nil)
	}
	tokenURL := strings.TrimSpace(req.TokenURL)
	if tokenURL == "" {
		tokenURL = s.config.TokenURL
	}
	if tokenURL == "" {
		return core.AccessToken{}, core.NewConfigurationError("auth: token url is required", nil)
	}
	timeout := req.Timeout
	if timeout <= 0 {
		timeout = s.config.Timeout
	}
	if ctx == nil {
		ctx = context.Background()
	}

	requestCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	requestCtx = context.WithValue(requestCtx, oauth2.HTTPClient, s.httpClient)

	grant := &clientcredentials.Config{
		ClientID:     creds.ClientID,
		ClientSecret: creds.ClientSecret,
		TokenURL:     tokenURL,
		AuthStyle:    oauth2.AuthStyleInParams,
	}
	token, err := grant.Token(requestCtx)
	if err != nil {
		return core.AccessToken{}, mapTokenError(tokenURL, err)
	}
	return core.AccessToken{
		Value:     token.AccessToken,
		TokenType: normalizeTokenType(token.TokenType),
	}, nil
}

func mapTokenError(tokenURL string, err error) error {
	metadata := map[string]any{
		"auth_kind": KindClientCredentials,
		"token_url": tokenURL,
	}
	var retrieveErr *oauth2.RetrieveError
	if errors.As(err, &retrieveErr) {
		if retrieveErr.Response != nil {
			metadata["status_code"] = retrieveErr.Response.StatusCode
		}
		if code := strings.TrimSpace(retrieveErr.ErrorCode); code != "" {
			metadata["error_code"] = code
		}
		return core.NewUpstreamAuthError(err, describeRetrieveError(retrieveErr), metadata)
	}
	metadata["cause"] = err.Error()
	return core.NewUpstreamAuthError(err, core.DefaultTokenFailureMessage, metadata)
}

// describeRetrieveError surfaces error_description; the error code only goes
// to metadata.
func describeRetrieveError(err *oauth2.RetrieveError) string {
	if err == nil {
		return core.DefaultTokenFailureMessage
	}
	if description := strings.TrimSpace(err.ErrorDescription); description != "" {
		return description
	}
	return core.DefaultTokenFailureMessage
}

func normalizeTokenType(value string) string {
	normalized := strings.ToLower(strings.TrimSpace(value))
	if normalized == "" {
		return "bearer"
	}
	return normalized
}

var _ core.TokenSource = (*ClientCredentialsSource)(nil)
