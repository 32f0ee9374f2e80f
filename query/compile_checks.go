package query

import (
	gocmd "github.com/goliatone/go-command"
	"github.com/goliatone/go-podbean-proxy/core"
)

var (
	_ gocmd.Querier[ForwardMessage, core.ForwardResult] = (*ForwardQuery)(nil)
)
