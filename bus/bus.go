// Package bus is a small in-process notice channel: fixed-depth string
// topics, optional "+" wildcard segments, retained last-value replay for
// late subscribers. It backs the scheduler's non-normative diagnostics
// channel (package diag) and the heartbeat service's live reconfiguration
// topic — both fire-and-forget notice traffic that nothing in the
// Control-plane API depends on for correctness.
//
// This is deliberately not a general pub/sub broker: there is no trie of
// arbitrary-depth topics, no multi-level wildcard, and no request/reply
// helper, because nothing in this tree needs one. A handful of live
// topics and a handful of subscribers means a linear scan on publish
// costs nothing and stays easy to read.
package bus

import "sync"

var defaultQLen = 3

// -----------------------------------------------------------------------------
// Topics
// -----------------------------------------------------------------------------

// Wildcard matches exactly one topic segment in a subscription pattern.
const Wildcard = "+"

// Topic is a fixed-depth sequence of string segments, e.g.
// Topic{"scheduler", "state"} or Topic{"scheduler", "stack", "vib1"}.
type Topic []string

// T builds a Topic from its segments.
func T(segs ...string) Topic { return Topic(segs) }

// matches reports whether pattern (a subscription topic, possibly
// containing Wildcard segments) matches the concrete topic of a
// published message. Both must have the same length: this bus has no
// concept of a topic prefix or multi-level wildcard.
func (pattern Topic) matches(topic Topic) bool {
	if len(pattern) != len(topic) {
		return false
	}
	for i, seg := range pattern {
		if seg != Wildcard && seg != topic[i] {
			return false
		}
	}
	return true
}

func (t Topic) key() string {
	s := ""
	for i, seg := range t {
		if i > 0 {
			s += "/"
		}
		s += seg
	}
	return s
}

// -----------------------------------------------------------------------------
// Message
// -----------------------------------------------------------------------------

// Message is one published notice. Retained messages are replayed to
// subscriptions opened after the publish, so a late subscriber still
// observes the last known value for a topic (e.g. scheduler state).
type Message struct {
	Topic    Topic
	Payload  any
	Retained bool
}

// -----------------------------------------------------------------------------
// Subscription
// -----------------------------------------------------------------------------

// Subscription is a live registration for topic, delivered on Channel().
// Delivery is best-effort: a slow subscriber drops its oldest buffered
// message rather than block the publisher.
type Subscription struct {
	topic Topic
	ch    chan *Message
	conn  *Connection
}

func (s *Subscription) Topic() Topic             { return s.topic }
func (s *Subscription) Channel() <-chan *Message { return s.ch }
func (s *Subscription) Unsubscribe()             { s.conn.Unsubscribe(s) }

// -----------------------------------------------------------------------------
// Bus
// -----------------------------------------------------------------------------

// Bus fans published messages out to every matching live subscription
// and remembers the last retained message per concrete topic.
type Bus struct {
	mu       sync.Mutex
	qLen     int
	subs     []*Subscription
	retained map[string]*Message
}

// NewBus builds a Bus whose subscription channels buffer queueLen
// messages before the oldest is dropped in favor of the newest.
func NewBus(queueLen int) *Bus {
	if queueLen <= 0 {
		queueLen = defaultQLen
	}
	return &Bus{qLen: queueLen, retained: make(map[string]*Message)}
}

// NewMessage builds a Message addressed to topic.
func (b *Bus) NewMessage(topic Topic, payload any, retained bool) *Message {
	return &Message{Topic: topic, Payload: payload, Retained: retained}
}

// Publish fans msg out to every live subscription whose topic pattern
// matches msg.Topic, and updates the retained store if msg.Retained. A
// retained publish with a nil payload clears that topic's retained
// value.
func (b *Bus) Publish(msg *Message) {
	b.mu.Lock()
	matched := make([]*Subscription, 0, 4)
	for _, sub := range b.subs {
		if sub.topic.matches(msg.Topic) {
			matched = append(matched, sub)
		}
	}
	if msg.Retained {
		key := msg.Topic.key()
		if msg.Payload == nil {
			delete(b.retained, key)
		} else {
			b.retained[key] = msg
		}
	}
	b.mu.Unlock()

	for _, sub := range matched {
		deliver(sub.ch, msg)
	}
}

// deliver sends msg on ch without blocking, dropping the oldest queued
// message to make room if ch is full.
func deliver(ch chan *Message, msg *Message) {
	select {
	case ch <- msg:
		return
	default:
	}
	select {
	case <-ch:
	default:
	}
	select {
	case ch <- msg:
	default:
	}
}

func (b *Bus) subscribe(topic Topic, sub *Subscription) {
	b.mu.Lock()
	b.subs = append(b.subs, sub)
	var retained []*Message
	for _, msg := range b.retained {
		if topic.matches(msg.Topic) {
			retained = append(retained, msg)
		}
	}
	b.mu.Unlock()

	for _, msg := range retained {
		deliver(sub.ch, msg)
	}
}

func (b *Bus) unsubscribe(sub *Subscription) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for i, s := range b.subs {
		if s == sub {
			b.subs = append(b.subs[:i], b.subs[i+1:]...)
			return
		}
	}
}

// -----------------------------------------------------------------------------
// Connection
// -----------------------------------------------------------------------------

// Connection is a named handle onto a Bus, tracking its own
// subscriptions so Disconnect can tear them all down at once.
type Connection struct {
	bus  *Bus
	mu   sync.Mutex
	id   string
	subs []*Subscription
}

// NewConnection opens a named connection onto b. id identifies the
// connection in logs/debugging only; it plays no role in routing.
func (b *Bus) NewConnection(id string) *Connection {
	return &Connection{bus: b, id: id}
}

func (c *Connection) NewMessage(topic Topic, payload any, retained bool) *Message {
	return c.bus.NewMessage(topic, payload, retained)
}

func (c *Connection) Publish(msg *Message) { c.bus.Publish(msg) }

// Subscribe registers topic, which may contain Wildcard segments, and
// returns a Subscription immediately delivered any matching retained
// message.
func (c *Connection) Subscribe(topic Topic) *Subscription {
	sub := &Subscription{topic: topic, ch: make(chan *Message, c.bus.qLen), conn: c}
	c.bus.subscribe(topic, sub)
	c.mu.Lock()
	c.subs = append(c.subs, sub)
	c.mu.Unlock()
	return sub
}

func (c *Connection) Unsubscribe(sub *Subscription) {
	c.bus.unsubscribe(sub)
	c.mu.Lock()
	c.subs = removeSub(c.subs, sub)
	c.mu.Unlock()
	close(sub.ch)
}

// Disconnect unsubscribes every subscription opened on c.
func (c *Connection) Disconnect() {
	c.mu.Lock()
	subs := c.subs
	c.subs = nil
	c.mu.Unlock()

	for _, sub := range subs {
		c.bus.unsubscribe(sub)
		close(sub.ch)
	}
}

func removeSub(list []*Subscription, target *Subscription) []*Subscription {
	for i, s := range list {
		if s == target {
			return append(list[:i], list[i+1:]...)
		}
	}
	return list
}
