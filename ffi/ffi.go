//go:build cgo

// Package main is the illustrative C-ABI shim spec §6 describes: a
// cgo-exported mirror of the eight tk_* entry points, built with
// -buildmode=c-shared. It is not a shipped host integration — the
// actual FFI boundary belongs to the embedding host, not this module
// (see cmd/tkctl for the Go-native equivalent, the facade in package
// api driven directly rather than through a C calling convention).
package main

/*
#include <stdlib.h>
*/
import "C"

import (
	"encoding/json"
	"sync"
	"unsafe"

	"go.uber.org/zap"

	"hapticrt/api"
	"hapticrt/model"
)

var (
	mu      sync.Mutex
	facades = map[int64]*api.Facade{}
	nextID  int64
)

// defaultFFISettings is the fixture a tk_connect caller gets: an
// in-process transport with one demo device, since the C-ABI contract
// carries no settings payload of its own (spec §6 lists tk_connect as
// taking no arguments).
func defaultFFISettings() api.Settings {
	return api.Settings{
		Connection: api.ConnectionConfig{
			Type: "inprocess",
			Fixtures: []api.FixtureDevice{
				{Name: "ffi-demo-device", Scalar: []string{"Vibrate"}},
			},
		},
		Devices: []api.DeviceConfig{
			{Name: "ffi-demo-device", Enabled: true},
		},
	}
}

func register(f *api.Facade) C.longlong {
	mu.Lock()
	defer mu.Unlock()
	nextID++
	id := nextID
	facades[id] = f
	return C.longlong(id)
}

func lookup(opaque C.longlong) (*api.Facade, bool) {
	mu.Lock()
	defer mu.Unlock()
	f, ok := facades[int64(opaque)]
	return f, ok
}

func forget(opaque C.longlong) {
	mu.Lock()
	defer mu.Unlock()
	delete(facades, int64(opaque))
}

//export tk_connect
func tk_connect() C.longlong {
	f, err := api.Connect(defaultFFISettings(), zap.NewNop())
	if err != nil {
		return 0
	}
	return register(f)
}

//export tk_scan_for_devices
func tk_scan_for_devices(opaque C.longlong) C.int {
	f, ok := lookup(opaque)
	if !ok {
		return 0
	}
	return boolToC(f.ScanForDevices())
}

//export tk_vibrate_all
func tk_vibrate_all(opaque C.longlong, speed01 C.double) C.int {
	f, ok := lookup(opaque)
	if !ok {
		return 0
	}
	speed := model.NewSpeed(int(float64(speed01)*100 + 0.5))
	h := f.VibrateAll(speed, model.Infinite())
	return boolToC(h.Valid())
}

//export tk_vibrate_all_for
func tk_vibrate_all_for(opaque C.longlong, speed01 C.double, durationSec C.double) C.int {
	f, ok := lookup(opaque)
	if !ok {
		return 0
	}
	speed := model.NewSpeed(int(float64(speed01)*100 + 0.5))
	dur := model.Timed(uint64(float64(durationSec) * 1000))
	h := f.VibrateAll(speed, dur)
	return boolToC(h.Valid())
}

// ffiEvent is the JSON shape tk_try_get_next_event hands back —
// compact enough for a cgo caller to decode with any JSON library.
type ffiEvent struct {
	Kind       string `json:"kind"`
	DeviceName string `json:"device_name,omitempty"`
	Handle     int64  `json:"handle,omitempty"`
	Desc       string `json:"desc,omitempty"`
}

func eventKindName(k model.EventKind) string {
	switch k {
	case model.EventDeviceAdded:
		return "device_added"
	case model.EventDeviceRemoved:
		return "device_removed"
	case model.EventScanStarted:
		return "scan_started"
	case model.EventScanStopped:
		return "scan_stopped"
	case model.EventScanFailed:
		return "scan_failed"
	case model.EventDisconnect:
		return "disconnect"
	case model.EventStop:
		return "stop"
	case model.EventStopAll:
		return "stop_all"
	default:
		return "other"
	}
}

//export tk_try_get_next_event
func tk_try_get_next_event(opaque C.longlong) *C.char {
	f, ok := lookup(opaque)
	if !ok {
		return nil
	}
	ev, ok := f.GetNextEvent()
	if !ok {
		return nil
	}
	b, err := json.Marshal(ffiEvent{
		Kind:       eventKindName(ev.Kind),
		DeviceName: ev.DeviceName,
		Handle:     int64(ev.Handle),
		Desc:       ev.Desc,
	})
	if err != nil {
		return nil
	}
	return C.CString(string(b))
}

//export tk_free_event
func tk_free_event(opaque C.longlong, s *C.char) {
	if s != nil {
		C.free(unsafe.Pointer(s))
	}
}

//export tk_stop_all
func tk_stop_all(opaque C.longlong) C.int {
	f, ok := lookup(opaque)
	if !ok {
		return 0
	}
	return boolToC(f.StopAll())
}

//export tk_close
func tk_close(opaque C.longlong) {
	f, ok := lookup(opaque)
	if !ok {
		return
	}
	f.Disconnect()
	forget(opaque)
}

func boolToC(b bool) C.int {
	if b {
		return 1
	}
	return 0
}

func main() {}
