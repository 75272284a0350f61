package transport

import (
	"bytes"
	"testing"
	"time"
)

func TestFrameRoundTrip(t *testing.T) {
	var buf bytes.Buffer
	wr := newFrameWriter(&buf)
	want := wireFrame{Type: "cmd", Data: []byte(`{"op":"scalar"}`)}
	if err := wr.WriteFrame(want); err != nil {
		t.Fatal(err)
	}

	rd := newFrameReader(&buf)
	got, err := rd.ReadFrame()
	if err != nil {
		t.Fatal(err)
	}
	if got.Type != want.Type || string(got.Data) != string(want.Data) {
		t.Errorf("got %+v, want %+v", got, want)
	}
}

func TestBackoffSeqDoublesUpToMax(t *testing.T) {
	next := backoffSeq(10*time.Millisecond, 40*time.Millisecond)
	got := []time.Duration{next(), next(), next(), next()}
	want := []time.Duration{10 * time.Millisecond, 20 * time.Millisecond, 40 * time.Millisecond, 40 * time.Millisecond}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("backoff[%d] = %v, want %v", i, got[i], want[i])
		}
	}
}

func TestWSFactoryRequiresEndpoint(t *testing.T) {
	if _, err := New("ws", map[string]any{}); err == nil {
		t.Fatal("expected error for missing endpoint")
	}
	tr, err := New("ws", map[string]any{"endpoint": "ws://localhost:9999/"})
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := tr.(*WebSocket); !ok {
		t.Errorf("New(ws) returned %T, want *WebSocket", tr)
	}
}
