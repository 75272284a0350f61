package selection

import (
	"testing"

	"hapticrt/model"
)

func TestActuatorsEnumerationOrder(t *testing.T) {
	devices := []DeviceView{
		{Name: "vib1", Scalar: []model.Kind{model.KindVibrate}, Linear: 1, Rotate: 1},
	}
	got := Actuators(devices)
	want := []model.Kind{model.KindVibrate, model.KindPosition, model.KindRotate}
	if len(got) != len(want) {
		t.Fatalf("got %d actuators, want %d", len(got), len(want))
	}
	for i, k := range want {
		if got[i].Kind != k {
			t.Errorf("actuator %d kind = %v, want %v", i, got[i].Kind, k)
		}
	}
}

// TestVibrateAllOnlyVibratesVibrators checks what Select(All) hands to
// vibrate_all: every kind is kept, and exactly one of the selected
// actuators (vib1's) is a Vibrate actuator.
func TestVibrateAllOnlyVibratesVibrators(t *testing.T) {
	devices := []DeviceView{
		{Name: "vib1", Scalar: []model.Kind{model.KindVibrate}},
		{Name: "vib2", Scalar: []model.Kind{model.KindInflate}},
	}
	all := Actuators(devices)
	enabled := func(string) bool { return true }
	tags := func(string) []string { return nil }

	out := Select(all, model.All(), enabled, tags)
	if len(out) != 2 {
		t.Fatalf("Select(All) = %v, want both actuators", out)
	}

	var vibrators []model.Actuator
	for _, a := range out {
		if a.Kind == model.KindVibrate {
			vibrators = append(vibrators, a)
		}
	}
	if len(vibrators) != 1 || vibrators[0].DeviceName != "vib1" {
		t.Errorf("expected exactly one Vibrate actuator on vib1, got %v", vibrators)
	}
}

func TestSelectDisabledDeviceExcluded(t *testing.T) {
	devices := []DeviceView{{Name: "vib1", Scalar: []model.Kind{model.KindVibrate}}}
	all := Actuators(devices)
	enabled := func(name string) bool { return name != "vib1" }
	out := Select(all, model.All(), enabled, func(string) []string { return nil })
	if len(out) != 0 {
		t.Errorf("expected disabled device filtered out, got %v", out)
	}
}

func TestSelectByNamesCaseInsensitive(t *testing.T) {
	devices := []DeviceView{{Name: "toy1", Scalar: []model.Kind{model.KindVibrate}}}
	all := Actuators(devices)
	enabled := func(string) bool { return true }
	tags := func(string) []string { return []string{"some event"} }

	sel := model.ByNames(" SoMe EvEnT    ")
	out := Select(all, sel, enabled, tags)
	if len(out) != 1 {
		t.Fatalf("Select(ByNames) = %v, want one match", out)
	}
}

func TestSelectByNamesNoTagsOnlyMatchesAll(t *testing.T) {
	devices := []DeviceView{{Name: "toy1", Scalar: []model.Kind{model.KindVibrate}}}
	all := Actuators(devices)
	enabled := func(string) bool { return true }
	tags := func(string) []string { return nil }

	out := Select(all, model.ByNames("left"), enabled, tags)
	if len(out) != 0 {
		t.Errorf("untagged actuator should not match ByNames selector, got %v", out)
	}
	out = Select(all, model.All(), enabled, tags)
	if len(out) != 1 {
		t.Errorf("untagged actuator should match All selector, got %v", out)
	}
}

func TestCapabilitiesUnion(t *testing.T) {
	devices := []DeviceView{
		{Name: "toy1", Scalar: []model.Kind{model.KindVibrate}, Rotate: 1},
		{Name: "toy1", Scalar: []model.Kind{model.KindInflate}},
	}
	caps := Capabilities(devices, "toy1")
	for _, k := range []model.Kind{model.KindVibrate, model.KindRotate, model.KindInflate} {
		if _, ok := caps[k]; !ok {
			t.Errorf("Capabilities missing %v", k)
		}
	}
	if len(caps) != 3 {
		t.Errorf("Capabilities = %v, want 3 kinds", caps)
	}
}
