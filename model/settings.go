package model

// DeviceSetting is the per-device configuration the host controls:
// whether the device may be commanded at all, and the set of event
// tags used by DeviceSelector.ByNames to address it.
type DeviceSetting struct {
	Name    string
	Enabled bool
	Events  map[string]struct{}
}

// NewDeviceSetting returns a setting for name, enabled by default with
// no event tags.
func NewDeviceSetting(name string) DeviceSetting {
	return DeviceSetting{Name: name, Enabled: true, Events: map[string]struct{}{}}
}

// SetEvents replaces the tag set, normalizing and deduplicating each
// entry. Round-tripping SetEvents then Events always returns the
// normalized set, regardless of input casing or whitespace.
func (d *DeviceSetting) SetEvents(tags []string) {
	norm := make(map[string]struct{}, len(tags))
	for _, t := range tags {
		if n := NormalizeTag(t); n != "" {
			norm[n] = struct{}{}
		}
	}
	d.Events = norm
}

// EventsSlice returns the tag set as a sorted-free slice for callers
// that need to enumerate it (e.g. the facade's get_events).
func (d DeviceSetting) EventsSlice() []string {
	out := make([]string, 0, len(d.Events))
	for t := range d.Events {
		out = append(out, t)
	}
	return out
}

// Tags returns EventsSlice, the set DeviceSelector.Matches checks
// against.
func (d DeviceSetting) Tags() []string { return d.EventsSlice() }
