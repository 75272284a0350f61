package scheduler

import "hapticrt/model"

// ActionKind discriminates the control-plane messages spec §4.D's
// worker consumes.
type ActionKind uint8

const (
	ActionScan ActionKind = iota
	ActionStopScan
	ActionControl
	ActionStop
	ActionStopAll
	ActionDisconnect
)

// Action is one message submitted to the worker's bounded inbound
// queue. Exactly the fields relevant to Kind are populated. ID is a
// correlation UUID stamped by the facade; the worker logs it (at debug
// level) when it dispatches the action.
type Action struct {
	ID   string
	Kind ActionKind

	Selector model.DeviceSelector // Control
	Pattern  model.Pattern        // Control

	StopHandle model.Handle // Stop

	ReplyHandle chan model.Handle // Control: the issued handle, or -1
	ReplyBool   chan bool         // Scan/StopScan/Stop/StopAll/Disconnect: submit outcome
}

// internalKind discriminates the messages player tasks send back to
// the worker. These never touch the capacity-bounded action queue —
// mixing scheduling churn into the user-facing queue would let
// playback traffic starve new Control/Stop submissions.
type internalKind uint8

const (
	internalUpdate internalKind = iota
	internalExpire
)

type internalMsg struct {
	kind       internalKind
	handle     model.Handle
	actuatorID string      // internalUpdate
	strength   model.Speed // internalUpdate
}
