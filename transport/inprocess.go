package transport

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"hapticrt/model"
)

// Emit is one recorded low-level device call, captured by InProcess for
// test assertions.
type Emit struct {
	Actuator  model.Actuator
	Op        string // "scalar", "linear", "rotate", "stop"
	Strength  float64
	Position  float64
	Clockwise bool
}

// InProcess is an in-memory Transport: the default backend for the
// demo host and the fixture every scheduler/player/stack test drives
// against, the same role the teacher's fakeAdaptor plays for
// worker_test.go.
type InProcess struct {
	mu      sync.Mutex
	devices []DeviceInfo
	events  chan TransportEvent
	emits   []Emit

	// Recorder, if set, is called synchronously for every low-level
	// op, in addition to the internal Emits() log.
	Recorder func(Emit)
}

// NewInProcess builds a fixture seeded with devices. StartScanning
// synchronously (re-)announces every device via DeviceAdded;
// StopScanning does nothing.
func NewInProcess(devices ...DeviceInfo) *InProcess {
	return &InProcess{
		devices: devices,
		events:  make(chan TransportEvent, 256),
	}
}

func (t *InProcess) Connect(ctx context.Context) error { return nil }

func (t *InProcess) StartScanning(ctx context.Context) error {
	t.mu.Lock()
	devices := append([]DeviceInfo(nil), t.devices...)
	t.mu.Unlock()
	for _, d := range devices {
		t.events <- TransportEvent{Kind: model.EventDeviceAdded, DeviceName: d.Name}
	}
	return nil
}

func (t *InProcess) StopScanning(ctx context.Context) error { return nil }

func (t *InProcess) Devices() []DeviceInfo {
	t.mu.Lock()
	defer t.mu.Unlock()
	return append([]DeviceInfo(nil), t.devices...)
}

// AddDevice appends a device and emits DeviceAdded, for tests that
// simulate a device connecting mid-session.
func (t *InProcess) AddDevice(d DeviceInfo) {
	t.mu.Lock()
	t.devices = append(t.devices, d)
	t.mu.Unlock()
	t.events <- TransportEvent{Kind: model.EventDeviceAdded, DeviceName: d.Name}
}

// RemoveDevice drops a device by name and emits DeviceRemoved.
func (t *InProcess) RemoveDevice(name string) {
	t.mu.Lock()
	out := t.devices[:0]
	for _, d := range t.devices {
		if d.Name != name {
			out = append(out, d)
		}
	}
	t.devices = out
	t.mu.Unlock()
	t.events <- TransportEvent{Kind: model.EventDeviceRemoved, DeviceName: name}
}

func (t *InProcess) Events() <-chan TransportEvent { return t.events }

func (t *InProcess) record(e Emit) {
	t.mu.Lock()
	t.emits = append(t.emits, e)
	t.mu.Unlock()
	if t.Recorder != nil {
		t.Recorder(e)
	}
}

func (t *InProcess) Scalar(ctx context.Context, a model.Actuator, strength model.Speed) error {
	t.record(Emit{Actuator: a, Op: "scalar", Strength: strength.AsFloat()})
	return nil
}

func (t *InProcess) Linear(ctx context.Context, a model.Actuator, pos model.Speed, dur model.Duration) error {
	t.record(Emit{Actuator: a, Op: "linear", Position: pos.AsFloat()})
	return nil
}

func (t *InProcess) Rotate(ctx context.Context, a model.Actuator, speed model.Speed, clockwise bool) error {
	t.record(Emit{Actuator: a, Op: "rotate", Strength: speed.AsFloat(), Clockwise: clockwise})
	return nil
}

func (t *InProcess) Stop(ctx context.Context, a model.Actuator) error {
	t.record(Emit{Actuator: a, Op: "stop"})
	return nil
}

func (t *InProcess) Close() error {
	close(t.events)
	return nil
}

// Emits returns a snapshot of every recorded low-level call, in order.
func (t *InProcess) Emits() []Emit {
	t.mu.Lock()
	defer t.mu.Unlock()
	return append([]Emit(nil), t.emits...)
}

// EmitsFor filters Emits to a single actuator, in order.
func (t *InProcess) EmitsFor(a model.Actuator) []Emit {
	var out []Emit
	for _, e := range t.Emits() {
		if e.Actuator == a {
			out = append(out, e)
		}
	}
	return out
}

// decodeFixtures permissively decodes cfg's "devices" entry into
// DeviceInfo fixtures, the same json-roundtrip tolerance the facade
// uses for Settings: callers may hand a []DeviceInfo, a []map[string]any
// or raw JSON bytes, and an absent/nil key seeds nothing.
func decodeFixtures(cfg map[string]any) ([]DeviceInfo, error) {
	raw, ok := cfg["devices"]
	if !ok || raw == nil {
		return nil, nil
	}
	if devices, ok := raw.([]DeviceInfo); ok {
		return devices, nil
	}
	b, err := json.Marshal(raw)
	if err != nil {
		return nil, fmt.Errorf("transport/inprocess: devices fixture: %w", err)
	}
	var devices []DeviceInfo
	if err := json.Unmarshal(b, &devices); err != nil {
		return nil, fmt.Errorf("transport/inprocess: devices fixture: %w", err)
	}
	return devices, nil
}

func init() {
	Register("inprocess", func(cfg map[string]any) (Transport, error) {
		devices, err := decodeFixtures(cfg)
		if err != nil {
			return nil, err
		}
		return NewInProcess(devices...), nil
	})
}
