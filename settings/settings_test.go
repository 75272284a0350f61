package settings

import "testing"

func TestGetEnabledDefaultsFalseUntilSet(t *testing.T) {
	s := New()
	if s.GetEnabled("dev1") {
		t.Errorf("GetEnabled on unknown device should be false")
	}
	if !s.SelectionEnabled("dev1") {
		t.Errorf("SelectionEnabled on unknown device should default true")
	}
	s.SetEnabled("dev1", true)
	if !s.GetEnabled("dev1") {
		t.Errorf("GetEnabled after SetEnabled(true) should be true")
	}
	s.SetEnabled("dev1", false)
	if s.GetEnabled("dev1") || s.SelectionEnabled("dev1") {
		t.Errorf("expected disabled device to read false from both accessors")
	}
}

func TestSetEventsRoundTripNormalizes(t *testing.T) {
	s := New()
	s.SetEvents("dev1", []string{" Left ", "LEFT", "Right"})
	got := s.GetEvents("dev1")
	if len(got) != 2 {
		t.Fatalf("GetEvents() = %v, want 2 entries", got)
	}
}

func TestGetEventsUnknownDeviceEmpty(t *testing.T) {
	s := New()
	if got := s.GetEvents("nope"); len(got) != 0 {
		t.Errorf("GetEvents(unknown) = %v, want empty", got)
	}
}

func TestSetEnabledIdempotent(t *testing.T) {
	s := New()
	s.SetEnabled("dev1", true)
	s.SetEnabled("dev1", true)
	if !s.GetEnabled("dev1") {
		t.Errorf("expected enabled after repeated SetEnabled(true)")
	}
}
