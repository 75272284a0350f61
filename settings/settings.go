// Package settings is the host-controlled per-device configuration
// store (spec §4.H): an enabled flag and a normalized event-tag set,
// keyed by exact device name.
package settings

import (
	"sync"

	"hapticrt/model"
)

// Store is safe for concurrent use; the facade and the worker may both
// read it (selection re-runs it at every Control).
type Store struct {
	mu   sync.RWMutex
	devs map[string]*model.DeviceSetting
}

func New() *Store {
	return &Store{devs: make(map[string]*model.DeviceSetting)}
}

func (s *Store) entry(name string) *model.DeviceSetting {
	if d, ok := s.devs[name]; ok {
		return d
	}
	d := model.NewDeviceSetting(name)
	s.devs[name] = &d
	return &d
}

// SetEnabled creates a default entry if name is unknown, then sets its
// enabled flag. Idempotent.
func (s *Store) SetEnabled(name string, enabled bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entry(name).Enabled = enabled
}

// GetEnabled returns the stored value, or false if name has never been
// configured. Distinct from selection's filter, which treats an absent
// entry as enabled (see SelectionEnabled).
func (s *Store) GetEnabled(name string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	d, ok := s.devs[name]
	if !ok {
		return false
	}
	return d.Enabled
}

// SelectionEnabled is the predicate selection.Select filters on: an
// unconfigured device defaults to enabled so a freshly connected device
// works before the host has touched its settings.
func (s *Store) SelectionEnabled(name string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	d, ok := s.devs[name]
	if !ok {
		return true
	}
	return d.Enabled
}

// SetEvents creates a default entry if name is unknown, then replaces
// its tag set with the normalized form of tags.
func (s *Store) SetEvents(name string, tags []string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entry(name).SetEvents(tags)
}

// GetEvents returns the stored normalized tag set, or empty if name is
// unknown.
func (s *Store) GetEvents(name string) []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	d, ok := s.devs[name]
	if !ok {
		return nil
	}
	return d.EventsSlice()
}

// Tags is the selector-facing accessor: the normalized tag set used by
// DeviceSelector.Matches, empty for an unconfigured device.
func (s *Store) Tags(name string) []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	d, ok := s.devs[name]
	if !ok {
		return nil
	}
	return d.Tags()
}

// Names returns every device name with a stored setting, insertion
// order not guaranteed.
func (s *Store) Names() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]string, 0, len(s.devs))
	for n := range s.devs {
		out = append(out, n)
	}
	return out
}
