package query

import (
	"context"

	"github.com/goliatone/go-podbean-proxy/core"
)

type ForwardQuery struct {
	forwarder core.Forwarder
}

func NewForwardQuery(forwarder core.Forwarder) *ForwardQuery {
	return &ForwardQuery{forwarder: forwarder}
}

func (q *ForwardQuery) Query(ctx context.Context, msg ForwardMessage) (core.ForwardResult, error) {
	if q == nil || q.forwarder == nil {
		return core.ForwardResult{}, queryDependencyError("query: forwarder is required")
	}
	if err := msg.Validate(); err != nil {
		return core.ForwardResult{}, err
	}
	return q.forwarder.Forward(ctx, msg.Request())
}
