package qext

import "github.com/zoobzio/capitan"

// Event keys for structured logging.
var (
	KeyParameter = capitan.NewStringKey("parameter")
	KeyType      = capitan.NewStringKey("type")
	KeyAlias     = capitan.NewStringKey("alias")
	KeySQL       = capitan.NewStringKey("sql")
	KeyError     = capitan.NewStringKey("error")
)

// Signals emitted by qext.
var (
	ParameterAdded    = capitan.NewSignal("qext.parameter.added", "Parameter registered")
	ParameterRejected = capitan.NewSignal("qext.parameter.rejected", "Duplicate parameter rejected")
	CTEEmbedded       = capitan.NewSignal("qext.cte.embedded", "Common table expression embedded")
	QueryRendered     = capitan.NewSignal("qext.query.rendered", "Query rendered")
	RenderFailed      = capitan.NewSignal("qext.query.render_failed", "Query render failed")
)
