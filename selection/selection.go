// Package selection implements spec §4.A: enumerating actuators from
// live devices in a fixed, deterministic order and filtering that
// enumeration down to a Control action's target set. Grounded on the
// original scheduler's get_actuators (device enumeration order:
// scalar, linear, rotate, each in device-declared index order).
package selection

import "hapticrt/model"

// DeviceView is the minimal live-device shape selection needs: a name
// and its reported capability counts, declared in index order within
// each kind.
type DeviceView struct {
	Name   string
	Scalar []model.Kind // one entry per scalar-family channel, in index order
	Linear int          // count of Position channels
	Rotate int          // count of Rotate channels
}

// Actuators enumerates every actuator across devices in the fixed
// order: for each device, scalar channels first (in their declared
// order), then linear, then rotate. Result order is deterministic and
// stable across calls for the same device views.
func Actuators(devices []DeviceView) []model.Actuator {
	var out []model.Actuator
	for _, d := range devices {
		for i, k := range d.Scalar {
			out = append(out, model.Actuator{DeviceName: d.Name, Index: i, Kind: k})
		}
		for i := 0; i < d.Linear; i++ {
			out = append(out, model.Actuator{DeviceName: d.Name, Index: i, Kind: model.KindPosition})
		}
		for i := 0; i < d.Rotate; i++ {
			out = append(out, model.Actuator{DeviceName: d.Name, Index: i, Kind: model.KindRotate})
		}
	}
	return out
}

// Capabilities returns the union of actuator kinds present on any live
// device reporting the given name.
func Capabilities(devices []DeviceView, name string) map[model.Kind]struct{} {
	out := map[model.Kind]struct{}{}
	for _, d := range devices {
		if d.Name != name {
			continue
		}
		for _, k := range d.Scalar {
			out[k] = struct{}{}
		}
		if d.Linear > 0 {
			out[model.KindPosition] = struct{}{}
		}
		if d.Rotate > 0 {
			out[model.KindRotate] = struct{}{}
		}
	}
	return out
}

// EnabledFunc reports whether name's device is enabled, defaulting to
// true for a device absent from settings (settings.Store.SelectionEnabled).
type EnabledFunc func(name string) bool

// TagsFunc returns a device's normalized event tags, empty if unknown.
type TagsFunc func(name string) []string

// Select resolves a Control action's target actuators: filter to
// enabled devices, then apply the selector, preserving enumeration
// order throughout.
func Select(actuators []model.Actuator, sel model.DeviceSelector, enabled EnabledFunc, tags TagsFunc) []model.Actuator {
	out := make([]model.Actuator, 0, len(actuators))
	for _, a := range actuators {
		if !enabled(a.DeviceName) {
			continue
		}
		if sel.Kind == model.SelectAll {
			out = append(out, a)
			continue
		}
		if sel.Matches(tags(a.DeviceName)) {
			out = append(out, a)
		}
	}
	return out
}
