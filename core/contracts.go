package core

import (
	"context"
	"fmt"
	"time"

	glog "github.com/goliatone/go-logger/glog"
)

type Logger = glog.Logger

type LoggerProvider = glog.LoggerProvider

type FieldsLogger = glog.FieldsLogger

// AccessToken is a bearer credential scoped to a single Forward call.
type AccessToken struct {
	Value     string
	TokenType string
}

func (t AccessToken) String() string {
	return fmt.Sprintf("AccessToken{TokenType:%q Value:%s}", t.TokenType, RedactedValue)
}

func (t AccessToken) GoString() string {
	return t.String()
}

// TokenRequest describes one client-credentials grant.
type TokenRequest struct {
	TokenURL    string
	Credentials Credentials
	Timeout     time.Duration
}

type TokenSource interface {
	Token(ctx context.Context, req TokenRequest) (AccessToken, error)
}

type Signer interface {
	Sign(ctx context.Context, req *TransportRequest, token AccessToken) error
}

type TransportRequest struct {
	Method               string
	URL                  string
	Headers              map[string]string
	Body                 []byte
	Metadata             map[string]any
	Timeout              time.Duration
	MaxResponseBodyBytes int64
}

type TransportResponse struct {
	StatusCode int
	Headers    map[string]string
	Body       []byte
	Metadata   map[string]any
}

type TransportAdapter interface {
	Kind() string
	Do(ctx context.Context, req TransportRequest) (TransportResponse, error)
}

type MetricsRecorder interface {
	IncCounter(ctx context.Context, name string, value int64, tags map[string]string)
	ObserveHistogram(ctx context.Context, name string, value float64, tags map[string]string)
}

type ForwardRequest struct {
	// Endpoint is appended verbatim to the API base URL, e.g. "/episodes?limit=10".
	Endpoint  string
	RequestID string
}

type ForwardResult struct {
	StatusCode int
	// Body is the upstream JSON document in compact form.
	Body     []byte
	Metadata map[string]any
}

type Forwarder interface {
	Forward(ctx context.Context, req ForwardRequest) (ForwardResult, error)
}
