package inbound

import (
	"context"
	"net/http"
	"net/url"
	"testing"

	"github.com/goliatone/go-podbean-proxy/core"
	"github.com/goliatone/go-podbean-proxy/query"
)

type stubQuerier struct {
	result core.ForwardResult
	err    error
	calls  int
	last   query.ForwardMessage
}

func (s *stubQuerier) Query(_ context.Context, msg query.ForwardMessage) (core.ForwardResult, error) {
	s.calls++
	s.last = msg
	if s.err != nil {
		return core.ForwardResult{}, s.err
	}
	if err := msg.Validate(); err != nil {
		return core.ForwardResult{}, err
	}
	return s.result, nil
}

func assertCORS(t *testing.T, headers map[string]string, origin string) {
	t.Helper()
	if headers[core.HeaderAllowOrigin] != origin {
		t.Fatalf("expected origin %q, got %q", origin, headers[core.HeaderAllowOrigin])
	}
	if headers[core.HeaderAllowHeaders] != "Content-Type" {
		t.Fatalf("unexpected allow headers %q", headers[core.HeaderAllowHeaders])
	}
	if headers[core.HeaderAllowMethods] != "GET, POST, OPTIONS" {
		t.Fatalf("unexpected allow methods %q", headers[core.HeaderAllowMethods])
	}
}

func TestPipeline_PreflightNeverForwards(t *testing.T) {
	querier := &stubQuerier{}
	pipeline := NewPipeline(querier, core.CORSConfig{})

	for _, method := range []string{http.MethodOptions, "options"} {
		res := pipeline.Handle(context.Background(), Request{
			Method: method,
			Query:  url.Values{EndpointParam: []string{"/podcasts"}},
		})
		if res.StatusCode != http.StatusNoContent {
			t.Fatalf("expected 204, got %d", res.StatusCode)
		}
		if len(res.Body) != 0 {
			t.Fatalf("expected empty body, got %q", res.Body)
		}
		assertCORS(t, res.Headers, "*")
		if _, ok := res.Headers[core.HeaderContentType]; ok {
			t.Fatalf("expected no content type on preflight")
		}
	}
	if querier.calls != 0 {
		t.Fatalf("expected no forward calls, got %d", querier.calls)
	}
}

func TestPipeline_MissingEndpoint(t *testing.T) {
	pipeline := NewPipeline(&stubQuerier{}, core.CORSConfig{})

	for name, values := range map[string]url.Values{
		"absent": nil,
		"empty":  {EndpointParam: []string{""}},
	} {
		t.Run(name, func(t *testing.T) {
			res := pipeline.Handle(context.Background(), Request{Method: http.MethodGet, Query: values})
			if res.StatusCode != http.StatusBadRequest {
				t.Fatalf("expected 400, got %d", res.StatusCode)
			}
			if string(res.Body) != `{"error":"The \"endpoint\" query parameter is required."}` {
				t.Fatalf("unexpected body %s", res.Body)
			}
			assertCORS(t, res.Headers, "*")
			if res.Headers[core.HeaderContentType] != core.ContentTypeJSON {
				t.Fatalf("expected json content type")
			}
		})
	}
}

func TestPipeline_RelaysForwardResult(t *testing.T) {
	querier := &stubQuerier{result: core.ForwardResult{
		StatusCode: http.StatusOK,
		Body:       []byte(`{"episodes":[{"id":"abc"}]}`),
	}}
	pipeline := NewPipeline(querier, core.CORSConfig{AllowedOrigin: "https://podcast.example"})
	pipeline.newRequestID = func() string { return "generated" }

	res := pipeline.Handle(context.Background(), Request{
		Method: http.MethodPost,
		Query:  url.Values{EndpointParam: []string{"/episodes?limit=1"}},
	})
	if res.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", res.StatusCode)
	}
	if string(res.Body) != `{"episodes":[{"id":"abc"}]}` {
		t.Fatalf("unexpected body %s", res.Body)
	}
	assertCORS(t, res.Headers, "https://podcast.example")
	if res.Headers[core.HeaderContentType] != core.ContentTypeJSON {
		t.Fatalf("expected json content type")
	}
	if querier.last.Endpoint != "/episodes?limit=1" {
		t.Fatalf("unexpected endpoint %q", querier.last.Endpoint)
	}
	if querier.last.RequestID != "generated" {
		t.Fatalf("expected generated request id, got %q", querier.last.RequestID)
	}
}

func TestPipeline_KeepsCallerRequestID(t *testing.T) {
	querier := &stubQuerier{result: core.ForwardResult{StatusCode: http.StatusOK, Body: []byte(`{}`)}}
	pipeline := NewPipeline(querier, core.CORSConfig{})

	pipeline.Handle(context.Background(), Request{
		Method:    http.MethodGet,
		Query:     url.Values{EndpointParam: []string{"/podcasts"}},
		RequestID: " req_caller ",
	})
	if querier.last.RequestID != "req_caller" {
		t.Fatalf("expected caller request id, got %q", querier.last.RequestID)
	}
}

func TestPipeline_ErrorEnvelope(t *testing.T) {
	cases := []struct {
		name   string
		err    error
		status int
		body   string
	}{
		{
			name:   "credentials",
			err:    core.NewConfigurationError(core.MissingCredentialsMessage, nil),
			status: http.StatusInternalServerError,
			body:   `{"error":"API credentials are not configured in environment variables."}`,
		},
		{
			name:   "token",
			err:    core.NewUpstreamAuthError(nil, "Invalid client credentials", nil),
			status: http.StatusInternalServerError,
			body:   `{"error":"Invalid client credentials"}`,
		},
		{
			name:   "upstream",
			err:    core.NewUpstreamCallError(nil, "upstream returned a non-JSON response", nil),
			status: http.StatusBadGateway,
			body:   `{"error":"upstream returned a non-JSON response"}`,
		},
		{
			name:   "html in message",
			err:    core.NewUpstreamAuthError(nil, "bad <client> & secret", nil),
			status: http.StatusInternalServerError,
			body:   `{"error":"bad <client> & secret"}`,
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			pipeline := NewPipeline(&stubQuerier{err: tc.err}, core.CORSConfig{})
			res := pipeline.Handle(context.Background(), Request{
				Method: http.MethodGet,
				Query:  url.Values{EndpointParam: []string{"/podcasts"}},
			})
			if res.StatusCode != tc.status {
				t.Fatalf("expected %d, got %d", tc.status, res.StatusCode)
			}
			if string(res.Body) != tc.body {
				t.Fatalf("unexpected body %s", res.Body)
			}
			assertCORS(t, res.Headers, "*")
		})
	}
}
