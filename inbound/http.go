package inbound

import (
	"net/http"
)

// HTTPHandler serves the proxy on any path.
type HTTPHandler struct {
	pipeline *Pipeline
}

func NewHTTPHandler(pipeline *Pipeline) *HTTPHandler {
	return &HTTPHandler{pipeline: pipeline}
}

func (h *HTTPHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	var pipeline *Pipeline
	if h != nil {
		pipeline = h.pipeline
	}
	response := pipeline.Handle(r.Context(), Request{
		Method:    r.Method,
		Query:     r.URL.Query(),
		RequestID: r.Header.Get(HeaderRequestID),
	})

	header := w.Header()
	for key, value := range response.Headers {
		header.Set(key, value)
	}
	w.WriteHeader(response.StatusCode)
	if len(response.Body) > 0 {
		_, _ = w.Write(response.Body)
	}
}

var _ http.Handler = (*HTTPHandler)(nil)
