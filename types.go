package gammu

import "github.com/foxcpp/gammu-gateway/internal/model"

// The exported names below alias the internal/model types so the
// gateway's public surface documents one cohesive API while the
// implementation detail - shared by the reassembly engine, segment
// store and event dispatcher, none of which may import this package
// without creating an import cycle - lives in its own leaf package.

type (
	Segment  = model.Segment
	Message  = model.Message
	Outbound = model.Outbound

	SendResult   = model.SendResult
	SegmentStore = model.SegmentStore

	SubprocessExitError  = model.SubprocessExitError
	SubprocessParseError = model.SubprocessParseError
	ReceiveError         = model.ReceiveError
	TransmitError        = model.TransmitError
	ReassemblyError      = model.ReassemblyError
	ErrHandlerMissing    = model.ErrHandlerMissing
)
