package transport

import (
	"context"
	"testing"
	"time"

	"hapticrt/model"
)

func TestInProcessStartScanningEmitsDeviceAdded(t *testing.T) {
	tr := NewInProcess(DeviceInfo{Name: "vib1", Scalar: []model.Kind{model.KindVibrate}})
	if err := tr.StartScanning(context.Background()); err != nil {
		t.Fatal(err)
	}
	select {
	case ev := <-tr.Events():
		if ev.Kind != model.EventDeviceAdded || ev.DeviceName != "vib1" {
			t.Errorf("event = %+v", ev)
		}
	case <-time.After(time.Second):
		t.Fatal("timeout waiting for DeviceAdded")
	}
}

func TestInProcessRecordsEmits(t *testing.T) {
	tr := NewInProcess()
	a := model.Actuator{DeviceName: "vib1", Index: 0, Kind: model.KindVibrate}
	if err := tr.Scalar(context.Background(), a, model.NewSpeed(100)); err != nil {
		t.Fatal(err)
	}
	if err := tr.Stop(context.Background(), a); err != nil {
		t.Fatal(err)
	}
	emits := tr.EmitsFor(a)
	if len(emits) != 2 || emits[0].Op != "scalar" || emits[0].Strength != 1.0 || emits[1].Op != "stop" {
		t.Errorf("emits = %+v", emits)
	}
}

func TestInProcessRecorderCallback(t *testing.T) {
	tr := NewInProcess()
	var got []Emit
	tr.Recorder = func(e Emit) { got = append(got, e) }
	a := model.Actuator{DeviceName: "vib1", Kind: model.KindVibrate}
	_ = tr.Scalar(context.Background(), a, model.NewSpeed(50))
	if len(got) != 1 || got[0].Strength != 0.5 {
		t.Errorf("recorder got %+v", got)
	}
}

func TestRegistryResolvesInProcess(t *testing.T) {
	tr, err := New("inprocess", nil)
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := tr.(*InProcess); !ok {
		t.Errorf("New(inprocess) returned %T, want *InProcess", tr)
	}
}

func TestRegistryUnknownConnection(t *testing.T) {
	if _, err := New("carrier-pigeon", nil); err == nil {
		t.Fatal("expected error for unknown connection type")
	}
}

func TestRegistrySeedsFixturesFromConfig(t *testing.T) {
	cfg := map[string]any{
		"devices": []map[string]any{
			{"name": "fixture1", "scalar": []string{"Vibrate"}, "linear": 1},
		},
	}
	tr, err := New("inprocess", cfg)
	if err != nil {
		t.Fatal(err)
	}
	devices := tr.Devices()
	if len(devices) != 1 || devices[0].Name != "fixture1" || devices[0].Linear != 1 {
		t.Errorf("devices = %+v", devices)
	}
}

func TestRegistryFixturesFromDeviceInfoSlice(t *testing.T) {
	cfg := map[string]any{
		"devices": []DeviceInfo{{Name: "direct", Scalar: []model.Kind{model.KindVibrate}}},
	}
	tr, err := New("inprocess", cfg)
	if err != nil {
		t.Fatal(err)
	}
	if len(tr.Devices()) != 1 || tr.Devices()[0].Name != "direct" {
		t.Errorf("devices = %+v", tr.Devices())
	}
}
