package model

import "testing"

func TestSpeedClamps(t *testing.T) {
	cases := []struct {
		in, want int
	}{
		{-5, 0},
		{0, 0},
		{50, 50},
		{100, 100},
		{150, 100},
	}
	for _, c := range cases {
		if got := NewSpeed(c.in).Value(); got != c.want {
			t.Errorf("NewSpeed(%d).Value() = %d, want %d", c.in, got, c.want)
		}
	}
	if f := NewSpeed(50).AsFloat(); f != 0.5 {
		t.Errorf("AsFloat() = %v, want 0.5", f)
	}
	if MaxSpeed().Value() != 100 {
		t.Errorf("MaxSpeed() = %d, want 100", MaxSpeed().Value())
	}
}

func TestDuration(t *testing.T) {
	inf := Infinite()
	if !inf.IsInfinite() || inf.Millis() != 0 {
		t.Errorf("Infinite() = %+v", inf)
	}
	d := Timed(2500)
	if d.IsInfinite() || d.Millis() != 2500 {
		t.Errorf("Timed(2500) = %+v", d)
	}
	if FromGo(-1).Millis() != 0 {
		t.Errorf("FromGo(negative) should floor at 0")
	}
}

func TestActuatorID(t *testing.T) {
	a := Actuator{DeviceName: "Lovense Edge", Index: 1, Kind: KindVibrate}
	want := "Lovense Edge[1].Vibrate"
	if got := a.ID(); got != want {
		t.Errorf("ID() = %q, want %q", got, want)
	}
	if !KindVibrate.IsScalar() || KindRotate.IsScalar() {
		t.Errorf("IsScalar mismatch")
	}
}

func TestDeviceSelector(t *testing.T) {
	all := All()
	if !all.Matches(nil) {
		t.Errorf("All() must match a device with no tags")
	}
	sel := ByNames(" Left ", "RIGHT")
	if len(sel.Names) != 2 || sel.Names[0] != "left" || sel.Names[1] != "right" {
		t.Errorf("ByNames did not normalize: %+v", sel.Names)
	}
	if !sel.Matches([]string{"right"}) {
		t.Errorf("expected match on normalized tag")
	}
	if sel.Matches([]string{"other"}) {
		t.Errorf("unexpected match")
	}
}

func TestDeviceSettingEventsRoundTrip(t *testing.T) {
	s := NewDeviceSetting("dev1")
	s.SetEvents([]string{" Left ", "left", "RIGHT", "  "})
	got := s.EventsSlice()
	if len(got) != 2 {
		t.Fatalf("EventsSlice() = %v, want 2 normalized tags", got)
	}
	seen := map[string]bool{}
	for _, t0 := range got {
		seen[t0] = true
	}
	if !seen["left"] || !seen["right"] {
		t.Errorf("EventsSlice() = %v, want {left,right}", got)
	}
}

func TestHandleAllocator(t *testing.T) {
	var a HandleAllocator
	h0 := a.Next()
	h1 := a.Next()
	if h0 != 0 || h1 != 1 {
		t.Errorf("got handles %d, %d, want 0, 1", h0, h1)
	}
	if InvalidHandle.Valid() {
		t.Errorf("InvalidHandle must not be Valid")
	}
	if !h0.Valid() {
		t.Errorf("issued handle must be Valid")
	}
}

func TestEventConstructors(t *testing.T) {
	if e := DeviceAdded("d1"); e.Kind != EventDeviceAdded || e.DeviceName != "d1" {
		t.Errorf("DeviceAdded = %+v", e)
	}
	if e := Stop(Handle(3)); e.Kind != EventStop || e.Handle != 3 {
		t.Errorf("Stop = %+v", e)
	}
	if e := ScanFailed("no adapter"); e.Kind != EventScanFailed || e.Desc != "no adapter" {
		t.Errorf("ScanFailed = %+v", e)
	}
}
