// Package api is the Control-plane API (spec §4.F): the facade an
// embedding host (or the illustrative ffi/cmd/tkctl layers) drives.
// Every operation is synchronous from the caller's point of view —
// submission itself never blocks on device I/O, but a call returns only
// once the worker has actually processed the corresponding Action,
// mirroring the teacher's own services exposing a blocking method over
// an internally async worker loop.
package api

import (
	"context"
	"sort"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"hapticrt/bus"
	"hapticrt/diag"
	"hapticrt/errcode"
	"hapticrt/model"
	"hapticrt/pattern"
	"hapticrt/scheduler"
	"hapticrt/selection"
	"hapticrt/settings"
	"hapticrt/transport"
	"hapticrt/x/strx"
)

// Facade is the connected system handle Connect returns. The zero value
// is not usable; build one with Connect.
type Facade struct {
	log       *zap.Logger
	transport transport.Transport
	worker    *scheduler.Worker
	events    *scheduler.EventQueue
	settings  *settings.Store
	diagBus   *bus.Bus
	cancel    context.CancelFunc

	mu        sync.Mutex
	status    model.ConnectionStatus
	statusErr string
}

// Connect decodes settings, builds the configured transport, and starts
// the worker, returning a system handle or an error. It fails when the
// settings payload cannot be decoded, names an unknown connection type,
// or the transport cannot be built or connected.
func Connect(settingsPayload any, log *zap.Logger) (*Facade, error) {
	if log == nil {
		log = zap.NewNop()
	}
	cfg, err := decodeSettings(settingsPayload)
	if err != nil {
		return nil, &errcode.E{C: errcode.InvalidPayload, Op: "connect", Err: err}
	}
	connName, err := connectionName(cfg.Connection.Type)
	if err != nil {
		return nil, &errcode.E{C: errcode.InvalidParams, Op: "connect", Err: err}
	}

	trCfg := map[string]any{"endpoint": cfg.Connection.Endpoint}
	if connName == "inprocess" && len(cfg.Connection.Fixtures) > 0 {
		devices := make([]transport.DeviceInfo, len(cfg.Connection.Fixtures))
		for i, fx := range cfg.Connection.Fixtures {
			scalar := make([]model.Kind, len(fx.Scalar))
			for j, k := range fx.Scalar {
				scalar[j] = model.Kind(k)
			}
			devices[i] = transport.DeviceInfo{Name: fx.Name, Scalar: scalar, Linear: fx.Linear, Rotate: fx.Rotate}
		}
		trCfg["devices"] = devices
	}
	tr, err := transport.New(connName, trCfg)
	if err != nil {
		return nil, &errcode.E{C: errcode.NotConnected, Op: "connect", Err: err}
	}

	store := settings.New()
	for _, d := range cfg.Devices {
		store.SetEnabled(d.Name, d.Enabled)
		store.SetEvents(d.Name, d.Events)
	}

	loader := pattern.NewLoader(strx.Coalesce(cfg.PatternPath, "."))
	eventQ := scheduler.NewEventQueue()
	diagBus := bus.NewBus(8)
	notifier := diag.NewNotifier(diagBus.NewConnection("scheduler"))
	worker := scheduler.New(tr, loader, store, eventQ, notifier, log)

	ctx, cancel := context.WithCancel(context.Background())
	if err := tr.Connect(ctx); err != nil {
		cancel()
		return nil, &errcode.E{C: errcode.NotConnected, Op: "connect", Err: err}
	}
	go worker.Run(ctx)

	f := &Facade{
		log:       log,
		transport: tr,
		worker:    worker,
		events:    eventQ,
		settings:  store,
		diagBus:   diagBus,
		cancel:    cancel,
		status:    model.StatusConnecting,
	}
	return f, nil
}

// NewDiagConnection opens a connection to this system's internal
// diagnostics bus (spec §4.J), for components like services/heartbeat
// that observe scheduler lifecycle notices without being part of the
// Control-plane API.
func (f *Facade) NewDiagConnection(id string) *bus.Connection {
	return f.diagBus.NewConnection(id)
}

func (f *Facade) submitBool(act scheduler.Action) bool {
	act.ID = uuid.NewString()
	reply := make(chan bool, 1)
	act.ReplyBool = reply
	if !f.worker.Submit(act) {
		return false
	}
	return <-reply
}

func (f *Facade) submitHandle(act scheduler.Action) model.Handle {
	act.ID = uuid.NewString()
	reply := make(chan model.Handle, 1)
	act.ReplyHandle = reply
	if !f.worker.Submit(act) {
		return model.InvalidHandle
	}
	return <-reply
}

// ScanForDevices starts device scanning.
func (f *Facade) ScanForDevices() bool {
	return f.submitBool(scheduler.Action{Kind: scheduler.ActionScan})
}

// StopScan stops device scanning.
func (f *Facade) StopScan() bool {
	return f.submitBool(scheduler.Action{Kind: scheduler.ActionStopScan})
}

// selectorFor builds the selector vibrate/vibrate_pattern resolve
// against: every enabled device when tags is empty, otherwise the
// devices tagged with at least one of tags.
func selectorFor(tags []string) model.DeviceSelector {
	if len(tags) == 0 {
		return model.All()
	}
	return model.ByNames(tags...)
}

// Vibrate issues a Linear pattern at speed for duration, targeting
// devices matching tags (every enabled device if tags is empty).
func (f *Facade) Vibrate(speed model.Speed, dur model.Duration, tags []string) model.Handle {
	return f.submitHandle(scheduler.Action{
		Kind:     scheduler.ActionControl,
		Selector: selectorFor(tags),
		Pattern:  model.LinearPattern(dur, speed),
	})
}

// VibratePattern issues a named Funscript pattern for duration,
// targeting devices matching tags.
func (f *Facade) VibratePattern(patternName string, dur model.Duration, tags []string) model.Handle {
	return f.submitHandle(scheduler.Action{
		Kind:     scheduler.ActionControl,
		Selector: selectorFor(tags),
		Pattern:  model.FunscriptPattern(dur, patternName),
	})
}

// VibrateAll issues a Linear pattern at speed for duration against
// every connected, enabled device.
func (f *Facade) VibrateAll(speed model.Speed, dur model.Duration) model.Handle {
	return f.submitHandle(scheduler.Action{
		Kind:     scheduler.ActionControl,
		Selector: model.All(),
		Pattern:  model.LinearPattern(dur, speed),
	})
}

// Stop cancels the player owning handle. Returns false if handle is
// unknown (already expired, or never issued).
func (f *Facade) Stop(handle model.Handle) bool {
	return f.submitBool(scheduler.Action{Kind: scheduler.ActionStop, StopHandle: handle})
}

// StopAll cancels every active player and clears every actuator's stack.
func (f *Facade) StopAll() bool {
	return f.submitBool(scheduler.Action{Kind: scheduler.ActionStopAll})
}

// Disconnect cancels everything, closes the transport, and stops the
// worker. Submissions made after Disconnect returns fail, since
// Worker.Submit observes the closed done channel.
func (f *Facade) Disconnect() {
	f.submitBool(scheduler.Action{Kind: scheduler.ActionDisconnect})
	f.cancel()
	f.mu.Lock()
	f.status = model.StatusDisconnected
	f.mu.Unlock()
}

// GetNextEvent pops the oldest unconsumed event, or (zero, false) if
// the queue is empty. It also advances ConnectionStatus per spec §4.G:
// ScanStarted moves to Connected, ScanFailed moves to Failed(reason).
func (f *Facade) GetNextEvent() (model.Event, bool) {
	ev, ok := f.events.Pop()
	if ok {
		f.observeStatus(ev)
	}
	return ev, ok
}

// ProcessNextEvents drains up to model.MaxEventBatch queued events,
// applying the same status bookkeeping as GetNextEvent to each.
func (f *Facade) ProcessNextEvents() []model.Event {
	evs := f.events.PopUpTo(model.MaxEventBatch)
	for _, ev := range evs {
		f.observeStatus(ev)
	}
	return evs
}

func (f *Facade) observeStatus(ev model.Event) {
	f.mu.Lock()
	defer f.mu.Unlock()
	switch ev.Kind {
	case model.EventScanStarted:
		f.status = model.StatusConnected
	case model.EventScanFailed:
		f.status = model.StatusFailed
		f.statusErr = ev.Desc
	}
}

// Status reports the current connection status and, when Failed, the
// reason.
func (f *Facade) Status() (model.ConnectionStatus, string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.status, f.statusErr
}

// GetDeviceNames returns the union of currently connected device names
// and names known only from settings, deduplicated, connected devices
// first in their live enumeration order.
func (f *Facade) GetDeviceNames() []string {
	seen := make(map[string]struct{})
	out := make([]string, 0)
	for _, d := range f.transport.Devices() {
		if _, dup := seen[d.Name]; dup {
			continue
		}
		seen[d.Name] = struct{}{}
		out = append(out, d.Name)
	}
	extra := f.settings.Names()
	sort.Strings(extra)
	for _, n := range extra {
		if _, dup := seen[n]; dup {
			continue
		}
		seen[n] = struct{}{}
		out = append(out, n)
	}
	return out
}

// GetDevices is an alias for GetDeviceNames, matching spec §4.F's
// get_devices/get_device_names pair (both return the same name list;
// richer per-device views go through GetDeviceCapabilities).
func (f *Facade) GetDevices() []string { return f.GetDeviceNames() }

// GetDeviceCapabilities returns the set of actuator kinds name reports,
// from live devices only — an unknown or disconnected name returns an
// empty set.
func (f *Facade) GetDeviceCapabilities(name string) map[model.Kind]struct{} {
	views := deviceViews(f.transport.Devices())
	return selection.Capabilities(views, name)
}

// GetDeviceConnected reports whether name is among currently connected
// devices.
func (f *Facade) GetDeviceConnected(name string) bool {
	for _, d := range f.transport.Devices() {
		if d.Name == name {
			return true
		}
	}
	return false
}

func deviceViews(infos []transport.DeviceInfo) []selection.DeviceView {
	views := make([]selection.DeviceView, len(infos))
	for i, d := range infos {
		views[i] = selection.DeviceView{Name: d.Name, Scalar: d.Scalar, Linear: d.Linear, Rotate: d.Rotate}
	}
	return views
}

// SettingsSetEnabled sets name's enabled flag, creating a default entry
// if name is unknown.
func (f *Facade) SettingsSetEnabled(name string, enabled bool) { f.settings.SetEnabled(name, enabled) }

// SettingsGetEnabled returns name's stored enabled flag, false by
// default.
func (f *Facade) SettingsGetEnabled(name string) bool { return f.settings.GetEnabled(name) }

// SettingsSetEvents replaces name's event tag set, normalizing each tag.
func (f *Facade) SettingsSetEvents(name string, tags []string) { f.settings.SetEvents(name, tags) }

// SettingsGetEvents returns name's stored normalized tag set, empty if
// name is unknown.
func (f *Facade) SettingsGetEvents(name string) []string { return f.settings.GetEvents(name) }
