package model

import "fmt"

// Kind is the physical channel type an Actuator exposes.
type Kind string

const (
	KindVibrate   Kind = "Vibrate"
	KindOscillate Kind = "Oscillate"
	KindInflate   Kind = "Inflate"
	KindConstrict Kind = "Constrict"
	KindPosition  Kind = "Position" // linear channel
	KindRotate    Kind = "Rotate"   // rotate channel
)

// IsScalar reports whether this kind drives through the single-value
// scalar(strength) device op, as opposed to Position/Rotate's
// multi-argument ops.
func (k Kind) IsScalar() bool {
	return k != KindPosition && k != KindRotate
}

// Actuator is a single addressable motion channel on a device. Its
// identity (device name, index within the device, kind) is stable for
// the lifetime of the connection.
type Actuator struct {
	DeviceName string
	Index      int
	Kind       Kind
}

// ID renders the stable identifier "{device}[{i}].{kind}".
func (a Actuator) ID() string {
	return fmt.Sprintf("%s[%d].%s", a.DeviceName, a.Index, a.Kind)
}

func (a Actuator) String() string { return a.ID() }

// DeviceCapability is one capability descriptor reported by a device:
// a count of channels of a given kind, enumerated in device-declared
// index order.
type DeviceCapability struct {
	DeviceName string
	Kind       Kind
	Count      int
}
