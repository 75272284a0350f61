// Package diag is the scheduler's internal diagnostics channel: a thin,
// domain-flavored wrapper over bus.Bus carrying lifecycle notices for
// tests and metrics. It is strictly non-normative — nothing in the
// Control-plane API or the mandatory event queue depends on it, the
// same way the teacher's hal/bridge services publish to their bus for
// observability, never for control flow.
package diag

import (
	"strconv"

	"hapticrt/bus"
)

// Topic segments. A full topic is ("scheduler", category, ...detail).
const (
	segScheduler = "scheduler"
	segState     = "state"
	segStack     = "stack"
	segPlayer    = "player"
)

// State is the scheduler's coarse lifecycle state.
type State string

const (
	StateIdle    State = "idle"
	StateReady   State = "ready"
	StateStopped State = "stopped"
)

// PlayerEvent marks a player task's spawn or exit.
type PlayerEvent string

const (
	PlayerSpawned PlayerEvent = "spawned"
	PlayerExited  PlayerEvent = "exited"
)

// Notifier publishes lifecycle notices. A nil *Notifier is valid and
// publishes nothing, so components can be built without wiring a bus
// in tests that don't care about diagnostics.
type Notifier struct {
	conn *bus.Connection
}

// NewNotifier wraps a bus connection. Pass nil to get a no-op notifier.
func NewNotifier(conn *bus.Connection) *Notifier { return &Notifier{conn: conn} }

func (n *Notifier) publish(topic bus.Topic, payload any) {
	if n == nil || n.conn == nil {
		return
	}
	n.conn.Publish(n.conn.NewMessage(topic, payload, true))
}

// State reports the scheduler's coarse lifecycle state.
func (n *Notifier) State(s State) {
	n.publish(bus.T(segScheduler, segState), s)
}

// StackChanged reports that actuatorID's priority stack top changed,
// i.e. exactly one device emit is due for it.
func (n *Notifier) StackChanged(actuatorID string, strength int) {
	n.publish(bus.T(segScheduler, segStack, actuatorID), strength)
}

// Player reports a player task's spawn or exit.
func (n *Notifier) Player(handle int64, ev PlayerEvent) {
	n.publish(bus.T(segScheduler, segPlayer, strconv.FormatInt(handle, 10)), ev)
}

// SubscribeState subscribes to scheduler state notices on conn.
func SubscribeState(conn *bus.Connection) *bus.Subscription {
	return conn.Subscribe(bus.T(segScheduler, segState))
}

// SubscribeStack subscribes to every actuator's stack-change notices.
func SubscribeStack(conn *bus.Connection) *bus.Subscription {
	return conn.Subscribe(bus.T(segScheduler, segStack, bus.Wildcard))
}

// SubscribePlayer subscribes to every player's spawn/exit notices.
func SubscribePlayer(conn *bus.Connection) *bus.Subscription {
	return conn.Subscribe(bus.T(segScheduler, segPlayer, bus.Wildcard))
}
