// Package core contains the proxy contracts, configuration, error taxonomy,
// and the Forward operation. Inbound surfaces and outbound adapters depend on
// this package; core must not depend on them.
package core
