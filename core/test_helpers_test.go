package core

import (
	"context"
	"net/http"
	"sync"
	"testing"
)

type stubTokenSource struct {
	mu       sync.Mutex
	token    AccessToken
	err      error
	calls    int
	requests []TokenRequest
}

func (s *stubTokenSource) Token(_ context.Context, req TokenRequest) (AccessToken, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls++
	s.requests = append(s.requests, req)
	return s.token, s.err
}

func (s *stubTokenSource) callCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls
}

type stubTransport struct {
	mu       sync.Mutex
	response TransportResponse
	err      error
	calls    int
	requests []TransportRequest
}

func (*stubTransport) Kind() string { return "stub" }

func (s *stubTransport) Do(_ context.Context, req TransportRequest) (TransportResponse, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls++
	s.requests = append(s.requests, req)
	return s.response, s.err
}

func (s *stubTransport) callCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls
}

func (s *stubTransport) lastRequest(t *testing.T) TransportRequest {
	t.Helper()
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.requests) == 0 {
		t.Fatalf("expected a transport request")
	}
	return s.requests[len(s.requests)-1]
}

func jsonResponse(status int, body string) TransportResponse {
	return TransportResponse{
		StatusCode: status,
		Headers:    map[string]string{"Content-Type": "application/json"},
		Body:       []byte(body),
	}
}

func testCredentialsConfig() Config {
	cfg := Config{}
	cfg.Podbean.ClientID = "client-id"
	cfg.Podbean.ClientSecret = "client-secret"
	return cfg
}

func newTestService(t *testing.T, cfg Config, tokens *stubTokenSource, transport *stubTransport, opts ...Option) *Service {
	t.Helper()
	base := []Option{WithTokenSource(tokens), WithTransport(transport)}
	svc, err := NewService(cfg, append(base, opts...)...)
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	return svc
}

func okTransport() *stubTransport {
	return &stubTransport{response: jsonResponse(http.StatusOK, `{"ok":true}`)}
}

func okTokens() *stubTokenSource {
	return &stubTokenSource{token: AccessToken{Value: "tok-123", TokenType: "bearer"}}
}
