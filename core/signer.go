package core

import (
	"context"
	"fmt"
	"strings"
)

// BearerTokenSigner sets the Authorization header and nothing else.
type BearerTokenSigner struct{}

func (BearerTokenSigner) Sign(_ context.Context, req *TransportRequest, token AccessToken) error {
	if req == nil {
		return fmt.Errorf("core: transport request is required")
	}
	if strings.TrimSpace(token.Value) == "" {
		return fmt.Errorf("core: access token is required for bearer signing")
	}
	if req.Headers == nil {
		req.Headers = map[string]string{}
	}
	req.Headers["Authorization"] = "Bearer " + token.Value
	return nil
}
