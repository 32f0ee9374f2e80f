package core

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

const (
	EnvClientID             = "PODBEAN_CLIENT_ID"
	EnvClientSecret         = "PODBEAN_CLIENT_SECRET"
	EnvAPIBaseURL           = "PODBEAN_API_BASE_URL"
	EnvTokenURL             = "PODBEAN_TOKEN_URL"
	EnvAllowedOrigin        = "PODBEAN_PROXY_ALLOWED_ORIGIN"
	EnvUpstreamTimeout      = "PODBEAN_PROXY_UPSTREAM_TIMEOUT"
	EnvMaxResponseBodyBytes = "PODBEAN_PROXY_MAX_RESPONSE_BODY_BYTES"
)

// EnvConfigLoader reads the process environment into the raw config shape
// consumed by CfgxConfigProvider. Unset variables are omitted so defaults win.
type EnvConfigLoader struct {
	Lookup func(key string) (string, bool)
}

func NewEnvConfigLoader() *EnvConfigLoader {
	return &EnvConfigLoader{Lookup: os.LookupEnv}
}

func (l *EnvConfigLoader) LoadRaw(context.Context) (map[string]any, error) {
	lookup := os.LookupEnv
	if l != nil && l.Lookup != nil {
		lookup = l.Lookup
	}
	read := func(key string) (string, bool) {
		value, ok := lookup(key)
		if !ok {
			return "", false
		}
		value = strings.TrimSpace(value)
		return value, value != ""
	}

	raw := map[string]any{}

	podbean := map[string]any{}
	for key, field := range map[string]string{
		EnvClientID:     "client_id",
		EnvClientSecret: "client_secret",
		EnvAPIBaseURL:   "api_base_url",
		EnvTokenURL:     "token_url",
	} {
		if value, ok := read(key); ok {
			podbean[field] = value
		}
	}
	if len(podbean) > 0 {
		raw["podbean"] = podbean
	}

	if value, ok := read(EnvAllowedOrigin); ok {
		raw["cors"] = map[string]any{"allowed_origin": value}
	}

	upstream := map[string]any{}
	if value, ok := read(EnvUpstreamTimeout); ok {
		timeout, err := time.ParseDuration(value)
		if err != nil {
			return nil, fmt.Errorf("core: %s is invalid: %w", EnvUpstreamTimeout, err)
		}
		upstream["timeout"] = timeout
	}
	if value, ok := read(EnvMaxResponseBodyBytes); ok {
		limit, err := strconv.ParseInt(value, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("core: %s is invalid: %w", EnvMaxResponseBodyBytes, err)
		}
		upstream["max_response_body_bytes"] = limit
	}
	if len(upstream) > 0 {
		raw["upstream"] = upstream
	}
	return raw, nil
}

var _ RawConfigLoader = (*EnvConfigLoader)(nil)
