package core

import (
	"context"
	stderrors "errors"
	"net/http"
	"testing"
	"time"

	goerrors "github.com/goliatone/go-errors"
)

func TestForward_RelaysUpstreamJSON(t *testing.T) {
	tokens := okTokens()
	transport := &stubTransport{response: jsonResponse(http.StatusOK, "{\n  \"episodes\": [ {\"id\": \"abc\"} ]\n}\n")}
	svc := newTestService(t, testCredentialsConfig(), tokens, transport)

	result, err := svc.Forward(context.Background(), ForwardRequest{Endpoint: "/episodes?limit=1", RequestID: "req_1"})
	if err != nil {
		t.Fatalf("forward: %v", err)
	}
	if result.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", result.StatusCode)
	}
	if got := string(result.Body); got != `{"episodes":[{"id":"abc"}]}` {
		t.Fatalf("unexpected body %s", got)
	}

	req := transport.lastRequest(t)
	if req.Method != http.MethodGet {
		t.Fatalf("expected GET, got %q", req.Method)
	}
	if req.URL != "https://api.podbean.com/v1/episodes?limit=1" {
		t.Fatalf("unexpected upstream url %q", req.URL)
	}
	if req.Headers["Authorization"] != "Bearer tok-123" {
		t.Fatalf("unexpected authorization header %q", req.Headers["Authorization"])
	}
	if req.Timeout != DefaultUpstreamTimeout {
		t.Fatalf("expected default upstream timeout, got %s", req.Timeout)
	}
	if req.MaxResponseBodyBytes != DefaultMaxResponseBodyBytes {
		t.Fatalf("expected default body limit, got %d", req.MaxResponseBodyBytes)
	}

	if tokens.callCount() != 1 {
		t.Fatalf("expected one token request, got %d", tokens.callCount())
	}
	tokenReq := tokens.requests[0]
	if tokenReq.TokenURL != DefaultTokenURL {
		t.Fatalf("unexpected token url %q", tokenReq.TokenURL)
	}
	if tokenReq.Credentials.ClientID != "client-id" || tokenReq.Credentials.ClientSecret != "client-secret" {
		t.Fatalf("unexpected credentials %#v", tokenReq.Credentials)
	}
}

func TestForward_PreservesKeyOrderAndNumberText(t *testing.T) {
	transport := &stubTransport{response: jsonResponse(http.StatusOK, `{"z":1.50,"a":{"y":10000000000000001,"b":null}}`)}
	svc := newTestService(t, testCredentialsConfig(), okTokens(), transport)

	result, err := svc.Forward(context.Background(), ForwardRequest{Endpoint: "/podcasts"})
	if err != nil {
		t.Fatalf("forward: %v", err)
	}
	if got := string(result.Body); got != `{"z":1.50,"a":{"y":10000000000000001,"b":null}}` {
		t.Fatalf("expected document to round-trip unchanged, got %s", got)
	}
}

func TestForward_FetchesFreshTokenPerCall(t *testing.T) {
	tokens := okTokens()
	transport := okTransport()
	svc := newTestService(t, testCredentialsConfig(), tokens, transport)

	for i := 0; i < 3; i++ {
		if _, err := svc.Forward(context.Background(), ForwardRequest{Endpoint: "/podcasts"}); err != nil {
			t.Fatalf("forward %d: %v", i, err)
		}
	}
	if tokens.callCount() != 3 {
		t.Fatalf("expected a token request per call, got %d", tokens.callCount())
	}
}

func TestForward_MissingEndpoint(t *testing.T) {
	tokens := okTokens()
	transport := okTransport()
	svc := newTestService(t, testCredentialsConfig(), tokens, transport)

	_, err := svc.Forward(context.Background(), ForwardRequest{})
	if err == nil {
		t.Fatalf("expected missing endpoint error")
	}
	if ErrorStatus(err) != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", ErrorStatus(err))
	}
	if ErrorMessage(err) != MissingEndpointMessage {
		t.Fatalf("unexpected message %q", ErrorMessage(err))
	}
	if tokens.callCount() != 0 || transport.callCount() != 0 {
		t.Fatalf("expected no outbound calls, got token=%d transport=%d", tokens.callCount(), transport.callCount())
	}
}

func TestForward_MissingCredentialsSkipsNetwork(t *testing.T) {
	cases := map[string]Config{
		"both missing":   {},
		"secret missing": {Podbean: PodbeanConfig{ClientID: "client-id"}},
		"id blank":       {Podbean: PodbeanConfig{ClientID: "  ", ClientSecret: "client-secret"}},
	}
	for name, cfg := range cases {
		t.Run(name, func(t *testing.T) {
			tokens := okTokens()
			transport := okTransport()
			svc := newTestService(t, cfg, tokens, transport)

			_, err := svc.Forward(context.Background(), ForwardRequest{Endpoint: "/podcasts"})
			if err == nil {
				t.Fatalf("expected configuration error")
			}
			if ErrorStatus(err) != http.StatusInternalServerError {
				t.Fatalf("expected 500, got %d", ErrorStatus(err))
			}
			if ErrorMessage(err) != MissingCredentialsMessage {
				t.Fatalf("unexpected message %q", ErrorMessage(err))
			}
			var rich *goerrors.Error
			if !goerrors.As(err, &rich) || rich.TextCode != ProxyErrorConfiguration {
				t.Fatalf("expected configuration text code, got %#v", err)
			}
			if tokens.callCount() != 0 || transport.callCount() != 0 {
				t.Fatalf("expected no outbound calls")
			}
		})
	}
}

func TestForward_TokenFailureUsesUpstreamDescription(t *testing.T) {
	tokens := &stubTokenSource{err: NewUpstreamAuthError(nil, "Invalid client credentials", nil)}
	transport := okTransport()
	svc := newTestService(t, testCredentialsConfig(), tokens, transport)

	_, err := svc.Forward(context.Background(), ForwardRequest{Endpoint: "/podcasts"})
	if err == nil {
		t.Fatalf("expected token error")
	}
	if ErrorStatus(err) != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", ErrorStatus(err))
	}
	if ErrorMessage(err) != "Invalid client credentials" {
		t.Fatalf("unexpected message %q", ErrorMessage(err))
	}
	if transport.callCount() != 0 {
		t.Fatalf("expected no API call after token failure")
	}
}

func TestForward_TokenPlainErrorKeepsMessage(t *testing.T) {
	tokens := &stubTokenSource{err: stderrors.New("dial tcp: connection refused")}
	svc := newTestService(t, testCredentialsConfig(), tokens, okTransport())

	_, err := svc.Forward(context.Background(), ForwardRequest{Endpoint: "/podcasts"})
	if ErrorStatus(err) != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", ErrorStatus(err))
	}
	if ErrorMessage(err) != "dial tcp: connection refused" {
		t.Fatalf("unexpected message %q", ErrorMessage(err))
	}
}

func TestForward_EmptyTokenIsAuthFailure(t *testing.T) {
	tokens := &stubTokenSource{token: AccessToken{}}
	transport := okTransport()
	svc := newTestService(t, testCredentialsConfig(), tokens, transport)

	_, err := svc.Forward(context.Background(), ForwardRequest{Endpoint: "/podcasts"})
	if ErrorMessage(err) != DefaultTokenFailureMessage {
		t.Fatalf("unexpected message %q", ErrorMessage(err))
	}
	if transport.callCount() != 0 {
		t.Fatalf("expected no API call without a token")
	}
}

func TestForward_RelaysUpstreamErrorStatus(t *testing.T) {
	transport := &stubTransport{response: jsonResponse(http.StatusNotFound, `{"error":"not_found","error_description":"Episode not found"}`)}
	svc := newTestService(t, testCredentialsConfig(), okTokens(), transport)

	result, err := svc.Forward(context.Background(), ForwardRequest{Endpoint: "/episodes/missing"})
	if err != nil {
		t.Fatalf("expected upstream error document to be relayed, got %v", err)
	}
	if result.StatusCode != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", result.StatusCode)
	}
	if string(result.Body) != `{"error":"not_found","error_description":"Episode not found"}` {
		t.Fatalf("unexpected body %s", result.Body)
	}
}

func TestForward_NonJSONUpstreamIsBadGateway(t *testing.T) {
	for name, body := range map[string]string{
		"html":  "<html>bad gateway</html>",
		"empty": "",
	} {
		t.Run(name, func(t *testing.T) {
			transport := &stubTransport{response: jsonResponse(http.StatusOK, body)}
			svc := newTestService(t, testCredentialsConfig(), okTokens(), transport)

			_, err := svc.Forward(context.Background(), ForwardRequest{Endpoint: "/podcasts"})
			if err == nil {
				t.Fatalf("expected error")
			}
			if ErrorStatus(err) != http.StatusBadGateway {
				t.Fatalf("expected 502, got %d", ErrorStatus(err))
			}
			if ErrorMessage(err) != "upstream returned a non-JSON response" {
				t.Fatalf("unexpected message %q", ErrorMessage(err))
			}
		})
	}
}

func TestForward_TransportFailures(t *testing.T) {
	plain := &stubTransport{err: stderrors.New("connection reset by peer")}
	svc := newTestService(t, testCredentialsConfig(), okTokens(), plain)
	_, err := svc.Forward(context.Background(), ForwardRequest{Endpoint: "/podcasts"})
	if ErrorStatus(err) != http.StatusBadGateway {
		t.Fatalf("expected 502, got %d", ErrorStatus(err))
	}
	if ErrorMessage(err) != "upstream request failed" {
		t.Fatalf("unexpected message %q", ErrorMessage(err))
	}

	richErr := NewUpstreamCallError(nil, "transport: response body exceeds limit of 10 bytes", nil)
	rich := &stubTransport{err: richErr}
	svc = newTestService(t, testCredentialsConfig(), okTokens(), rich)
	_, err = svc.Forward(context.Background(), ForwardRequest{Endpoint: "/podcasts"})
	if ErrorMessage(err) != richErr.Message {
		t.Fatalf("expected rich transport error to pass through, got %q", ErrorMessage(err))
	}
}

func TestForward_JoinsTrailingSlashBaseURL(t *testing.T) {
	cfg := testCredentialsConfig()
	cfg.Podbean.APIBaseURL = "https://podbean.test/v1/"
	cfg.Upstream.Timeout = 5 * time.Second
	transport := okTransport()
	svc := newTestService(t, cfg, okTokens(), transport)

	if _, err := svc.Forward(context.Background(), ForwardRequest{Endpoint: "/podcasts"}); err != nil {
		t.Fatalf("forward: %v", err)
	}
	req := transport.lastRequest(t)
	if req.URL != "https://podbean.test/v1/podcasts" {
		t.Fatalf("unexpected url %q", req.URL)
	}
	if req.Timeout != 5*time.Second {
		t.Fatalf("expected configured timeout, got %s", req.Timeout)
	}
}

func TestForward_EndpointIsNotReencoded(t *testing.T) {
	transport := okTransport()
	svc := newTestService(t, testCredentialsConfig(), okTokens(), transport)

	endpoint := "/episodes?podcast_id=a%2Fb&limit=10"
	if _, err := svc.Forward(context.Background(), ForwardRequest{Endpoint: endpoint}); err != nil {
		t.Fatalf("forward: %v", err)
	}
	if got := transport.lastRequest(t).URL; got != DefaultAPIBaseURL+endpoint {
		t.Fatalf("expected endpoint appended verbatim, got %q", got)
	}
}

func TestForward_NilService(t *testing.T) {
	var svc *Service
	_, err := svc.Forward(context.Background(), ForwardRequest{Endpoint: "/podcasts"})
	if err == nil {
		t.Fatalf("expected error from nil service")
	}
	if ErrorStatus(err) != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", ErrorStatus(err))
	}
}

func TestNewService_RequiresTokenSourceAndTransport(t *testing.T) {
	if _, err := NewService(Config{}, WithTransport(okTransport())); err == nil {
		t.Fatalf("expected missing token source error")
	}
	if _, err := NewService(Config{}, WithTokenSource(okTokens())); err == nil {
		t.Fatalf("expected missing transport error")
	}
}

func TestNewService_RejectsInvalidConfig(t *testing.T) {
	cfg := testCredentialsConfig()
	cfg.Podbean.TokenURL = "ftp://podbean.test/token"
	if _, err := NewService(cfg, WithTokenSource(okTokens()), WithTransport(okTransport())); err == nil {
		t.Fatalf("expected invalid token url to fail setup")
	}
}
