package diag

import (
	"testing"
	"time"

	"hapticrt/bus"
)

func TestNotifierState(t *testing.T) {
	b := bus.NewBus(4)
	conn := b.NewConnection("test")
	sub := SubscribeState(conn)
	defer sub.Unsubscribe()

	n := NewNotifier(conn)
	n.State(StateReady)

	select {
	case msg := <-sub.Channel():
		if msg.Payload.(State) != StateReady {
			t.Errorf("payload = %v, want StateReady", msg.Payload)
		}
	case <-time.After(100 * time.Millisecond):
		t.Fatal("timeout waiting for state notice")
	}
}

func TestNotifierStackWildcard(t *testing.T) {
	b := bus.NewBus(4)
	conn := b.NewConnection("test")
	sub := SubscribeStack(conn)
	defer sub.Unsubscribe()

	n := NewNotifier(conn)
	n.StackChanged("Lovense Edge[0].Vibrate", 60)

	select {
	case msg := <-sub.Channel():
		if msg.Payload.(int) != 60 {
			t.Errorf("payload = %v, want 60", msg.Payload)
		}
	case <-time.After(100 * time.Millisecond):
		t.Fatal("timeout waiting for stack notice")
	}
}

func TestNotifierPlayerWildcard(t *testing.T) {
	b := bus.NewBus(4)
	conn := b.NewConnection("test")
	sub := SubscribePlayer(conn)
	defer sub.Unsubscribe()

	n := NewNotifier(conn)
	n.Player(7, PlayerSpawned)

	select {
	case msg := <-sub.Channel():
		if msg.Payload.(PlayerEvent) != PlayerSpawned {
			t.Errorf("payload = %v, want PlayerSpawned", msg.Payload)
		}
	case <-time.After(100 * time.Millisecond):
		t.Fatal("timeout waiting for player notice")
	}
}

func TestNilNotifierIsNoop(t *testing.T) {
	var n *Notifier
	n.State(StateIdle)
	n.StackChanged("x", 1)
	n.Player(0, PlayerSpawned)
}
