package inbound

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"strings"

	"github.com/goliatone/go-podbean-proxy/core"
	"github.com/goliatone/go-podbean-proxy/query"
	"github.com/google/uuid"
)

const (
	EndpointParam   = "endpoint"
	HeaderRequestID = "X-Request-ID"
)

type ForwardQuerier interface {
	Query(ctx context.Context, msg query.ForwardMessage) (core.ForwardResult, error)
}

type Request struct {
	Method    string
	Query     url.Values
	RequestID string
}

type Response struct {
	StatusCode int
	Headers    map[string]string
	Body       []byte
}

type Pipeline struct {
	querier      ForwardQuerier
	cors         core.CORSConfig
	newRequestID func() string
}

func NewPipeline(querier ForwardQuerier, cors core.CORSConfig) *Pipeline {
	return &Pipeline{
		querier:      querier,
		cors:         cors,
		newRequestID: uuid.NewString,
	}
}

// Handle never fails: every outcome is rendered as a response carrying the
// CORS headers.
func (p *Pipeline) Handle(ctx context.Context, req Request) Response {
	if p == nil {
		return errorResponse(core.CORSConfig{}, inboundInternal("inbound: pipeline is nil"))
	}
	if strings.EqualFold(strings.TrimSpace(req.Method), http.MethodOptions) {
		return Response{
			StatusCode: http.StatusNoContent,
			Headers:    p.cors.Headers(),
		}
	}
	if p.querier == nil {
		return errorResponse(p.cors, inboundInternal("inbound: forward query is required"))
	}

	requestID := strings.TrimSpace(req.RequestID)
	if requestID == "" && p.newRequestID != nil {
		requestID = p.newRequestID()
	}

	result, err := p.querier.Query(ctx, query.ForwardMessage{
		Endpoint:  req.Query.Get(EndpointParam),
		RequestID: requestID,
	})
	if err != nil {
		return errorResponse(p.cors, err)
	}
	return Response{
		StatusCode: result.StatusCode,
		Headers:    p.cors.JSONHeaders(),
		Body:       result.Body,
	}
}

func errorResponse(cors core.CORSConfig, err error) Response {
	return Response{
		StatusCode: core.ErrorStatus(err),
		Headers:    cors.JSONHeaders(),
		Body:       encodeErrorBody(core.ErrorMessage(err)),
	}
}

// encodeErrorBody renders {"error": message} without HTML escaping.
func encodeErrorBody(message string) []byte {
	var buf bytes.Buffer
	encoder := json.NewEncoder(&buf)
	encoder.SetEscapeHTML(false)
	if err := encoder.Encode(map[string]string{"error": message}); err != nil {
		return []byte(`{"error":"An unexpected error occurred"}`)
	}
	return bytes.TrimRight(buf.Bytes(), "\n")
}
