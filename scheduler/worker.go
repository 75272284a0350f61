// Package scheduler implements spec §4.D/§4.E/§4.G: the single command
// worker, its cooperative player tasks, and the transport-event fan-out
// into the unbounded event queue. The worker is the sole owner of the
// transport client, every actuator's priority stack, and the set of
// active players — player tasks never touch that state directly, they
// only send messages back to the worker, the same single-owner
// discipline the teacher's measureWorker applies to its pending/collects
// maps.
package scheduler

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"hapticrt/diag"
	"hapticrt/model"
	"hapticrt/pattern"
	"hapticrt/selection"
	"hapticrt/settings"
	"hapticrt/stack"
	"hapticrt/transport"
)

// ActionQueueCapacity bounds the inbound action queue (spec §4.D).
const ActionQueueCapacity = 256

type activePlayer struct {
	p         *player
	actuators []string // actuator IDs, for expire-time lookup
}

// Worker is the single long-lived task owning the device link (spec
// §4.D). Construct with New, then call Run in its own goroutine.
type Worker struct {
	transport transport.Transport
	loader    *pattern.Loader
	settings  *settings.Store
	events    *EventQueue
	diag      *diag.Notifier
	log       *zap.Logger

	actionQ   chan Action
	internalQ chan internalMsg

	handles model.HandleAllocator
	stacks  map[string]*stack.Stack
	players map[model.Handle]*activePlayer

	// doneCh is closed exactly once, from within Run's own goroutine,
	// when the loop exits (ctx cancellation or Disconnect).
	doneCh chan struct{}
}

// New builds a Worker. tr, loader, settings, events must be non-nil;
// d and log may be nil (a nil *diag.Notifier publishes nothing, a nil
// logger falls back to zap.NewNop()).
func New(tr transport.Transport, loader *pattern.Loader, st *settings.Store, events *EventQueue, d *diag.Notifier, log *zap.Logger) *Worker {
	if log == nil {
		log = zap.NewNop()
	}
	return &Worker{
		transport: tr,
		loader:    loader,
		settings:  st,
		events:    events,
		diag:      d,
		log:       log,
		actionQ:   make(chan Action, ActionQueueCapacity),
		internalQ: make(chan internalMsg, ActionQueueCapacity),
		stacks:    make(map[string]*stack.Stack),
		players:   make(map[model.Handle]*activePlayer),
		doneCh:    make(chan struct{}),
	}
}

// Submit enqueues act without blocking. It returns false, rejecting the
// action, when the queue is already at ActionQueueCapacity — per spec
// §4.D an overloaded caller observes submit failures rather than
// backpressure blocking.
func (w *Worker) Submit(act Action) bool {
	select {
	case <-w.doneCh:
		return false
	default:
	}
	select {
	case w.actionQ <- act:
		return true
	default:
		return false
	}
}

// Done reports whether the worker has processed a Disconnect and
// exited its loop.
func (w *Worker) Done() <-chan struct{} { return w.doneCh }

// Run is the worker's main select loop, following the teacher's
// measureWorker.Start/service.loop shape: one select over the inbound
// action queue, the internal player-feedback queue, and the
// transport's event channel, until Disconnect or ctx cancellation.
func (w *Worker) Run(ctx context.Context) {
	w.diagState(diag.StateReady)
	defer w.diagState(diag.StateStopped)
	for {
		select {
		case <-ctx.Done():
			w.finish()
			return
		case act, ok := <-w.actionQ:
			if !ok {
				return
			}
			if w.handleAction(ctx, act) {
				w.finish()
				return
			}
		case msg := <-w.internalQ:
			w.handleInternal(msg)
		case tev, ok := <-w.transport.Events():
			if !ok {
				continue
			}
			w.events.Push(translateEvent(tev))
		}
	}
}

// handleAction processes one Action. It returns true when the worker
// should stop running (Disconnect).
func (w *Worker) handleAction(ctx context.Context, act Action) bool {
	w.log.Debug("action", zap.String("id", act.ID), zap.Uint8("kind", uint8(act.Kind)))
	switch act.Kind {
	case ActionScan:
		err := w.transport.StartScanning(ctx)
		if err != nil {
			w.events.Push(model.ScanFailed(err.Error()))
			act.ReplyBool <- false
			return false
		}
		w.events.Push(model.ScanStarted())
		act.ReplyBool <- true

	case ActionStopScan:
		err := w.transport.StopScanning(ctx)
		w.events.Push(model.ScanStopped())
		act.ReplyBool <- err == nil

	case ActionControl:
		w.handleControl(ctx, act)

	case ActionStop:
		ap, ok := w.players[act.StopHandle]
		if !ok {
			act.ReplyBool <- false
			return false
		}
		ap.p.Cancel()
		act.ReplyBool <- true

	case ActionStopAll:
		w.handleStopAll(ctx)
		act.ReplyBool <- true

	case ActionDisconnect:
		w.handleStopAll(ctx)
		_ = w.transport.Close()
		w.events.Push(model.Disconnect())
		act.ReplyBool <- true
		return true
	}
	return false
}

func (w *Worker) handleControl(ctx context.Context, act Action) {
	actuators := w.liveActuators()
	targets := selection.Select(actuators, act.Selector, w.settings.SelectionEnabled, w.settings.Tags)

	handle := w.handles.Next()

	var samples []model.Sample
	if act.Pattern.Kind == model.PatternFunscript {
		s, err := w.loader.Load(act.Pattern.Name)
		if err != nil {
			w.events.Push(model.Other(fmt.Sprintf("pattern load failed: %v", err)))
		} else {
			samples = s
		}
	}
	initial := act.Pattern.InitialStrength(samples)

	ids := make([]string, 0, len(targets))
	for _, a := range targets {
		st := w.stackFor(a)
		if changed := st.Push(handle, initial); changed {
			w.emitTop(ctx, a, st)
		}
		ids = append(ids, a.ID())
	}

	p := newPlayer(handle, targets, act.Pattern, samples, w.internalQ)
	w.players[handle] = &activePlayer{p: p, actuators: ids}
	w.diagPlayer(handle, diag.PlayerSpawned)
	go p.run()

	act.ReplyHandle <- handle
}

func (w *Worker) handleInternal(msg internalMsg) {
	switch msg.kind {
	case internalUpdate:
		st, ok := w.stacks[msg.actuatorID]
		if !ok {
			return
		}
		if changed := st.Update(msg.handle, msg.strength); changed {
			w.emitTopByID(context.Background(), msg.actuatorID, st)
		}

	case internalExpire:
		ap, ok := w.players[msg.handle]
		if !ok {
			return
		}
		for _, id := range ap.actuators {
			st, ok := w.stacks[id]
			if !ok {
				continue
			}
			if changed, _, hasTop := st.Pop(msg.handle); changed {
				if hasTop {
					w.emitTopByID(context.Background(), id, st)
				} else {
					w.emitStopByID(context.Background(), id)
				}
			}
		}
		delete(w.players, msg.handle)
		w.diagPlayer(msg.handle, diag.PlayerExited)
	}
}

func (w *Worker) handleStopAll(ctx context.Context) {
	for _, ap := range w.players {
		ap.p.Cancel()
	}
	w.players = make(map[model.Handle]*activePlayer)

	for id, st := range w.stacks {
		if st.Empty() {
			continue
		}
		w.stacks[id] = stack.New()
		w.emitStopByID(ctx, id)
	}
	w.events.Push(model.StopAll())
}

func (w *Worker) finish() {
	close(w.doneCh)
}

func (w *Worker) stackFor(a model.Actuator) *stack.Stack {
	id := a.ID()
	st, ok := w.stacks[id]
	if !ok {
		st = stack.New()
		w.stacks[id] = st
	}
	return st
}

func (w *Worker) liveActuators() []model.Actuator {
	infos := w.transport.Devices()
	views := make([]selection.DeviceView, len(infos))
	for i, d := range infos {
		views[i] = selection.DeviceView{Name: d.Name, Scalar: d.Scalar, Linear: d.Linear, Rotate: d.Rotate}
	}
	return selection.Actuators(views)
}

// actuatorByID re-derives an Actuator from its stable identifier; every
// identifier the worker mints comes from liveActuators, so this never
// needs more than a linear scan over the current device list.
func (w *Worker) actuatorByID(id string) (model.Actuator, bool) {
	for _, a := range w.liveActuators() {
		if a.ID() == id {
			return a, true
		}
	}
	return model.Actuator{}, false
}

func (w *Worker) emitTop(ctx context.Context, a model.Actuator, st *stack.Stack) {
	top, ok := st.Top()
	if !ok {
		_ = w.transport.Stop(ctx, a)
		w.diagStack(a.ID(), 0)
		return
	}
	w.emit(ctx, a, top)
	w.diagStack(a.ID(), top.Value())
}

func (w *Worker) emitTopByID(ctx context.Context, id string, st *stack.Stack) {
	a, ok := w.actuatorByID(id)
	if !ok {
		return
	}
	w.emitTop(ctx, a, st)
}

func (w *Worker) emitStopByID(ctx context.Context, id string) {
	a, ok := w.actuatorByID(id)
	if !ok {
		return
	}
	_ = w.transport.Stop(ctx, a)
	w.diagStack(id, 0)
}

func (w *Worker) emit(ctx context.Context, a model.Actuator, speed model.Speed) {
	var err error
	switch a.Kind {
	case model.KindPosition:
		err = w.transport.Linear(ctx, a, speed, model.Infinite())
	case model.KindRotate:
		err = w.transport.Rotate(ctx, a, speed, true)
	default:
		err = w.transport.Scalar(ctx, a, speed)
	}
	if err != nil {
		w.log.Warn("device emit failed", zap.String("actuator", a.ID()), zap.Error(err))
	}
}

func (w *Worker) diagState(s diag.State)          { w.diag.State(s) }
func (w *Worker) diagStack(id string, v int)      { w.diag.StackChanged(id, v) }
func (w *Worker) diagPlayer(h model.Handle, e diag.PlayerEvent) { w.diag.Player(int64(h), e) }

func translateEvent(tev transport.TransportEvent) model.Event {
	switch tev.Kind {
	case model.EventDeviceAdded:
		return model.DeviceAdded(tev.DeviceName)
	case model.EventDeviceRemoved:
		return model.DeviceRemoved(tev.DeviceName)
	case model.EventScanStarted:
		return model.ScanStarted()
	case model.EventScanStopped:
		return model.ScanStopped()
	case model.EventScanFailed:
		return model.ScanFailed(tev.Desc)
	case model.EventDisconnect:
		return model.Disconnect()
	default:
		return model.Other(tev.Desc)
	}
}
