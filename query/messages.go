package query

import (
	"github.com/goliatone/go-podbean-proxy/core"
)

const TypeForward = "podbean_proxy.query.forward"

// ForwardMessage asks for one proxied GET. Endpoint is used verbatim; only
// its presence is checked.
type ForwardMessage struct {
	Endpoint  string
	RequestID string
}

func (ForwardMessage) Type() string { return TypeForward }

func (m ForwardMessage) Validate() error {
	if m.Endpoint == "" {
		return core.NewMissingParameterError("endpoint", core.MissingEndpointMessage)
	}
	return nil
}

func (m ForwardMessage) Request() core.ForwardRequest {
	return core.ForwardRequest{
		Endpoint:  m.Endpoint,
		RequestID: m.RequestID,
	}
}
