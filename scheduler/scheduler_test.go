package scheduler

import (
	"context"
	"testing"
	"time"

	"hapticrt/model"
	"hapticrt/pattern"
	"hapticrt/settings"
	"hapticrt/transport"
)

// harness wires a Worker to an InProcess transport and runs it for the
// life of the test.
type harness struct {
	t   *testing.T
	tr  *transport.InProcess
	w   *Worker
	ctx context.Context
	cnl context.CancelFunc
}

func newHarness(t *testing.T, devices ...transport.DeviceInfo) *harness {
	t.Helper()
	tr := transport.NewInProcess(devices...)
	st := settings.New()
	loader := pattern.NewLoader(t.TempDir())
	w := New(tr, loader, st, NewEventQueue(), nil, nil)
	ctx, cancel := context.WithCancel(context.Background())
	h := &harness{t: t, tr: tr, w: w, ctx: ctx, cnl: cancel}
	go w.Run(ctx)
	t.Cleanup(cancel)
	return h
}

func (h *harness) control(sel model.DeviceSelector, pat model.Pattern) model.Handle {
	h.t.Helper()
	reply := make(chan model.Handle, 1)
	ok := h.w.Submit(Action{Kind: ActionControl, Selector: sel, Pattern: pat, ReplyHandle: reply})
	if !ok {
		h.t.Fatal("submit rejected")
	}
	select {
	case hd := <-reply:
		return hd
	case <-time.After(time.Second):
		h.t.Fatal("timeout waiting for control reply")
		return model.InvalidHandle
	}
}

func (h *harness) stop(hd model.Handle) bool {
	h.t.Helper()
	reply := make(chan bool, 1)
	if !h.w.Submit(Action{Kind: ActionStop, StopHandle: hd, ReplyBool: reply}) {
		h.t.Fatal("submit rejected")
	}
	select {
	case ok := <-reply:
		return ok
	case <-time.After(time.Second):
		h.t.Fatal("timeout waiting for stop reply")
		return false
	}
}

func (h *harness) stopAll() {
	h.t.Helper()
	reply := make(chan bool, 1)
	if !h.w.Submit(Action{Kind: ActionStopAll, ReplyBool: reply}) {
		h.t.Fatal("submit rejected")
	}
	select {
	case <-reply:
	case <-time.After(time.Second):
		h.t.Fatal("timeout waiting for stop-all reply")
	}
}

// settle lets queued internal messages (player expiry, initial pushes)
// drain through the worker's single goroutine before assertions.
func (h *harness) settle() {
	reply := make(chan bool, 1)
	h.w.Submit(Action{Kind: ActionStopScan, ReplyBool: reply})
	select {
	case <-reply:
	case <-time.After(time.Second):
	}
}

func waitForEmits(t *testing.T, tr *transport.InProcess, a model.Actuator, n int) []transport.Emit {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		emits := tr.EmitsFor(a)
		if len(emits) >= n {
			return emits
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("timed out waiting for %d emits on %s, got %d", n, a.ID(), len(tr.EmitsFor(a)))
	return nil
}

func TestVibrateAllOnlyVibratesVibrators(t *testing.T) {
	h := newHarness(t,
		transport.DeviceInfo{Name: "vib1", Scalar: []model.Kind{model.KindVibrate}},
		transport.DeviceInfo{Name: "pump1", Scalar: []model.Kind{model.KindInflate}},
	)
	h.control(model.All(), model.LinearPattern(model.Infinite(), model.NewSpeed(80)))

	vib := model.Actuator{DeviceName: "vib1", Index: 0, Kind: model.KindVibrate}
	pump := model.Actuator{DeviceName: "pump1", Index: 0, Kind: model.KindInflate}

	emits := waitForEmits(t, h.tr, vib, 1)
	if emits[0].Op != "scalar" || emits[0].Strength != 0.8 {
		t.Errorf("vib1 emit = %+v", emits[0])
	}
	if got := h.tr.EmitsFor(pump); len(got) != 0 {
		t.Errorf("pump1 should not have been emitted to, got %+v", got)
	}
}

func TestPriority2Stacking(t *testing.T) {
	h := newHarness(t, transport.DeviceInfo{Name: "vib1", Scalar: []model.Kind{model.KindVibrate}})
	a := model.Actuator{DeviceName: "vib1", Index: 0, Kind: model.KindVibrate}

	h1 := h.control(model.All(), model.LinearPattern(model.Infinite(), model.NewSpeed(50)))
	waitForEmits(t, h.tr, a, 1)
	h2 := h.control(model.All(), model.LinearPattern(model.Infinite(), model.NewSpeed(100)))
	waitForEmits(t, h.tr, a, 2)

	if !h.stop(h2) {
		t.Fatal("stop(h2) should succeed")
	}
	waitForEmits(t, h.tr, a, 3)
	if !h.stop(h1) {
		t.Fatal("stop(h1) should succeed")
	}
	emits := waitForEmits(t, h.tr, a, 4)

	want := []struct {
		op string
		v  float64
	}{
		{"scalar", 0.5}, {"scalar", 1.0}, {"scalar", 0.5}, {"stop", 0},
	}
	for i, w := range want {
		if emits[i].Op != w.op || (w.op == "scalar" && emits[i].Strength != w.v) {
			t.Errorf("emit[%d] = %+v, want op=%s v=%v", i, emits[i], w.op, w.v)
		}
	}
}

func TestPriority4MiddleLayerEndsFirst(t *testing.T) {
	h := newHarness(t, transport.DeviceInfo{Name: "vib1", Scalar: []model.Kind{model.KindVibrate}})
	a := model.Actuator{DeviceName: "vib1", Index: 0, Kind: model.KindVibrate}

	h1 := h.control(model.All(), model.LinearPattern(model.Infinite(), model.NewSpeed(20)))
	waitForEmits(t, h.tr, a, 1)
	h2 := h.control(model.All(), model.LinearPattern(model.Infinite(), model.NewSpeed(40)))
	waitForEmits(t, h.tr, a, 2)
	h3 := h.control(model.All(), model.LinearPattern(model.Infinite(), model.NewSpeed(80)))
	waitForEmits(t, h.tr, a, 3)

	// h2 (middle, buried) ends first.
	if !h.stop(h2) {
		t.Fatal("stop(h2) should succeed")
	}
	waitForEmits(t, h.tr, a, 4) // duplicate 0.8 re-emit

	if !h.stop(h3) {
		t.Fatal("stop(h3) should succeed")
	}
	waitForEmits(t, h.tr, a, 5)

	if !h.stop(h1) {
		t.Fatal("stop(h1) should succeed")
	}
	emits := waitForEmits(t, h.tr, a, 6)

	want := []struct {
		op string
		v  float64
	}{
		{"scalar", 0.2}, {"scalar", 0.4}, {"scalar", 0.8}, {"scalar", 0.8}, {"scalar", 0.2}, {"stop", 0},
	}
	for i, w := range want {
		if emits[i].Op != w.op || (w.op == "scalar" && emits[i].Strength != w.v) {
			t.Errorf("emit[%d] = %+v, want op=%s v=%v", i, emits[i], w.op, w.v)
		}
	}
}

func TestEventCaseInsensitiveSelector(t *testing.T) {
	h := newHarness(t, transport.DeviceInfo{Name: "vib1", Scalar: []model.Kind{model.KindVibrate}})
	h.w.settings.SetEvents("vib1", []string{"Tag-One"})

	a := model.Actuator{DeviceName: "vib1", Index: 0, Kind: model.KindVibrate}
	h.control(model.ByNames("TAG-ONE"), model.LinearPattern(model.Infinite(), model.NewSpeed(60)))
	emits := waitForEmits(t, h.tr, a, 1)
	if emits[0].Strength != 0.6 {
		t.Errorf("emits = %+v", emits)
	}
}

func TestStopAllIdempotentEmitsOnce(t *testing.T) {
	h := newHarness(t, transport.DeviceInfo{Name: "vib1", Scalar: []model.Kind{model.KindVibrate}})
	a := model.Actuator{DeviceName: "vib1", Index: 0, Kind: model.KindVibrate}

	h.control(model.All(), model.LinearPattern(model.Infinite(), model.NewSpeed(30)))
	waitForEmits(t, h.tr, a, 1)

	h.stopAll()
	waitForEmits(t, h.tr, a, 2)
	h.stopAll()
	h.settle()

	emits := h.tr.EmitsFor(a)
	if len(emits) != 2 || emits[1].Op != "stop" {
		t.Errorf("emits = %+v, want exactly one stop", emits)
	}
}

func TestVibrateInfinitelyThenStop(t *testing.T) {
	h := newHarness(t, transport.DeviceInfo{Name: "vib1", Scalar: []model.Kind{model.KindVibrate}})
	a := model.Actuator{DeviceName: "vib1", Index: 0, Kind: model.KindVibrate}

	hd := h.control(model.All(), model.LinearPattern(model.Infinite(), model.NewSpeed(70)))
	waitForEmits(t, h.tr, a, 1)

	time.Sleep(100 * time.Millisecond)
	if got := h.tr.EmitsFor(a); len(got) != 1 {
		t.Fatalf("infinite pattern should not emit again on its own, got %+v", got)
	}

	if !h.stop(hd) {
		t.Fatal("stop should succeed")
	}
	emits := waitForEmits(t, h.tr, a, 2)
	if emits[1].Op != "stop" {
		t.Errorf("emits = %+v", emits)
	}
}

func TestStopUnknownHandleIsNoop(t *testing.T) {
	h := newHarness(t, transport.DeviceInfo{Name: "vib1", Scalar: []model.Kind{model.KindVibrate}})
	if h.stop(model.Handle(999)) {
		t.Error("stop of unknown handle should report false")
	}
}

func TestDisconnectStopsWorker(t *testing.T) {
	h := newHarness(t, transport.DeviceInfo{Name: "vib1", Scalar: []model.Kind{model.KindVibrate}})
	reply := make(chan bool, 1)
	if !h.w.Submit(Action{Kind: ActionDisconnect, ReplyBool: reply}) {
		t.Fatal("submit rejected")
	}
	select {
	case <-reply:
	case <-time.After(time.Second):
		t.Fatal("timeout waiting for disconnect reply")
	}
	select {
	case <-h.w.Done():
	case <-time.After(time.Second):
		t.Fatal("worker did not signal done after disconnect")
	}
}
