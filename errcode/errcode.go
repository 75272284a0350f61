package errcode

// Code is a stable, log-facing error identifier.
// It is a string newtype, comparable, allocation-free, and implements error.
type Code string

func (c Code) Error() string { return string(c) }

// Canonical codes (short, stable).
const (
	OK Code = "ok"

	Busy            Code = "busy"
	InvalidParams   Code = "invalid_params"
	InvalidPayload  Code = "invalid_payload"
	QueueFull       Code = "queue_full"
	PatternNotFound Code = "pattern_not_found"
	Unsupported     Code = "unsupported"
	NotConnected    Code = "not_connected"
	ScanFailed      Code = "scan_failed"
	UnknownDevice   Code = "unknown_device"
	UnknownHandle   Code = "unknown_handle"
	Timeout         Code = "timeout"

	Error Code = "error" // generic fallback
)

// E carries context and a cause alongside a Code.
type E struct {
	C   Code
	Op  string
	Msg string
	Err error
}

func (e *E) Error() string {
	if e.Msg != "" {
		return string(e.C) + ": " + e.Msg
	}
	return string(e.C)
}
func (e *E) Unwrap() error { return e.Err }
func (e *E) Code() Code    { return e.C }

// Of extracts a Code from an error, defaulting to Error.
func Of(err error) Code {
	if err == nil {
		return OK
	}
	if c, ok := err.(Code); ok {
		return c
	}
	type coder interface{ Code() Code }
	if x, ok := err.(coder); ok {
		return x.Code()
	}
	return Error
}

// MapTransportErr maps a transport-level error to a Code. Extend the
// heuristics per transport as new failure modes surface.
func MapTransportErr(err error) Code {
	if err == nil {
		return OK
	}
	return Error
}
