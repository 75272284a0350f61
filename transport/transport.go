// Package transport is the opaque device-link boundary spec §1 leaves
// unspecified: connect, scan control, device enumeration, an event
// stream, and per-actuator low-level ops. The scheduler depends only
// on the Transport interface; concrete implementations (in-process,
// WebSocket) live alongside it in this package.
package transport

import (
	"context"
	"fmt"
	"sync"

	"hapticrt/model"
)

// DeviceInfo is a transport's view of one connected device: its name
// and capability counts, in the fixed enumeration order selection.Actuators
// expects (scalar channels in declared order, then linear, then rotate).
type DeviceInfo struct {
	Name   string       `json:"name"`
	Scalar []model.Kind `json:"scalar,omitempty"`
	Linear int          `json:"linear,omitempty"`
	Rotate int          `json:"rotate,omitempty"`
}

// TransportEvent is the transport's raw lifecycle notice, translated
// into a model.Event by the scheduler's event fan-out (§4.G).
type TransportEvent struct {
	Kind       model.EventKind
	DeviceName string
	Desc       string
}

// Transport is the opaque client contract spec §1 describes: connect,
// start/stop scanning, enumerate devices, stream lifecycle events, and
// drive per-actuator low-level ops. Implementations need not be safe
// for concurrent Scalar/Linear/Rotate/Stop calls from multiple
// goroutines — the worker is the sole caller, by construction.
type Transport interface {
	Connect(ctx context.Context) error
	StartScanning(ctx context.Context) error
	StopScanning(ctx context.Context) error
	Devices() []DeviceInfo
	Events() <-chan TransportEvent
	Scalar(ctx context.Context, a model.Actuator, strength model.Speed) error
	Linear(ctx context.Context, a model.Actuator, pos model.Speed, dur model.Duration) error
	Rotate(ctx context.Context, a model.Actuator, speed model.Speed, clockwise bool) error
	Stop(ctx context.Context, a model.Actuator) error
	Close() error
}

// Factory builds a Transport from a connection config payload (the
// already-decoded settings described in spec §6).
type Factory func(cfg map[string]any) (Transport, error)

var (
	mu       sync.RWMutex
	registry = map[string]Factory{}
)

// Register installs a transport factory under a connection name
// ("inprocess", "ws"), mirroring the teacher's RegisterTransport.
// Panics on duplicate registration.
func Register(name string, f Factory) {
	mu.Lock()
	defer mu.Unlock()
	if _, exists := registry[name]; exists {
		panic(fmt.Sprintf("transport: factory already registered for %q", name))
	}
	registry[name] = f
}

// New builds a transport for the named connection type.
func New(name string, cfg map[string]any) (Transport, error) {
	mu.RLock()
	f, ok := registry[name]
	mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("transport: unknown connection type %q", name)
	}
	return f(cfg)
}
