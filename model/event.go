package model

// ConnectionStatus is the lifecycle state of the transport connection.
type ConnectionStatus uint8

const (
	StatusDisconnected ConnectionStatus = iota
	StatusConnecting
	StatusConnected
	StatusFailed
)

// EventKind discriminates the TkEvent variants reported to the host
// through the unbounded event queue (§4.G).
type EventKind uint8

const (
	EventDeviceAdded EventKind = iota
	EventDeviceRemoved
	EventScanStarted
	EventScanStopped
	EventScanFailed
	EventDisconnect
	EventStop
	EventStopAll
	EventOther
)

// Event is a tagged union over the event kinds above. Only the fields
// relevant to Kind are populated.
type Event struct {
	Kind       EventKind
	DeviceName string // DeviceAdded, DeviceRemoved
	Handle     Handle // Stop
	Desc       string // ScanFailed, Other
}

func DeviceAdded(name string) Event   { return Event{Kind: EventDeviceAdded, DeviceName: name} }
func DeviceRemoved(name string) Event { return Event{Kind: EventDeviceRemoved, DeviceName: name} }
func ScanStarted() Event              { return Event{Kind: EventScanStarted} }
func ScanStopped() Event              { return Event{Kind: EventScanStopped} }
func ScanFailed(desc string) Event    { return Event{Kind: EventScanFailed, Desc: desc} }
func Disconnect() Event               { return Event{Kind: EventDisconnect} }
func Stop(h Handle) Event             { return Event{Kind: EventStop, Handle: h} }
func StopAll() Event                  { return Event{Kind: EventStopAll} }
func Other(desc string) Event         { return Event{Kind: EventOther, Desc: desc} }

// MaxEventBatch is the cap on events returned by a single
// process_next_events call.
const MaxEventBatch = 128
