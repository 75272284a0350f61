// Package model holds the wire-free data model shared by every scheduler
// package: strengths, durations, patterns, actuator identity, selection,
// settings, handles and events.
package model

import "hapticrt/x/mathx"

// Speed is a device strength in the closed range 0..100.
type Speed struct {
	value int
}

// NewSpeed clamps v into 0..100.
func NewSpeed(v int) Speed {
	return Speed{value: mathx.Clamp(v, 0, 100)}
}

// MaxSpeed returns the maximum strength, 100.
func MaxSpeed() Speed { return Speed{value: 100} }

// Value returns the integer strength 0..100.
func (s Speed) Value() int { return s.value }

// AsFloat converts to the device-native 0.0..1.0 range.
func (s Speed) AsFloat() float64 { return float64(s.value) / 100.0 }
