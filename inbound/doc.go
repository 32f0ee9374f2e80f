// Package inbound exposes the proxy to callers. Pipeline holds the shared
// request flow (preflight, endpoint check, forward, JSON relay or error
// envelope); HTTPHandler and LambdaHandler adapt it to net/http and to API
// Gateway proxy events respectively.
package inbound
