package transport

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/coder/websocket"
	"golang.org/x/sync/errgroup"

	"hapticrt/model"
)

// WSConfig is the decoded "connection":{"type":"ws",...} settings
// payload (spec §6).
type WSConfig struct {
	Endpoint string `json:"endpoint"`
}

// WebSocket is a concrete illustration of the wire encoding spec §1
// leaves opaque: it dials Endpoint with github.com/coder/websocket,
// wraps the connection into an io.ReadWriteCloser via websocket.NetConn,
// and speaks a minimal length-prefixed JSON frame protocol over it —
// directly adapted from the teacher's services/bridge UART framing,
// substituting device-protocol frames for the teacher's bus-forwarding
// frames. The scheduler never imports this file's types; it only ever
// sees the Transport interface.
type WebSocket struct {
	endpoint string

	mu      sync.Mutex
	devices []DeviceInfo
	events  chan TransportEvent
	rwc     io.ReadWriteCloser
	wr      *frameWriter

	closed chan struct{}
	once   sync.Once
}

func newWebSocket(cfg WSConfig) *WebSocket {
	return &WebSocket{
		endpoint: cfg.Endpoint,
		events:   make(chan TransportEvent, 256),
		closed:   make(chan struct{}),
	}
}

func (t *WebSocket) Connect(ctx context.Context) error {
	go t.runLink(ctx)
	return nil
}

// runLink supervises the dial/reconnect loop, adapted from
// services/bridge.Service.runLink: doubling backoff on dial failure or
// a dropped link, until ctx is cancelled or Close is called.
func (t *WebSocket) runLink(ctx context.Context) {
	backoff := backoffSeq(250*time.Millisecond, 5*time.Second)
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.closed:
			return
		default:
		}

		rwc, err := t.dial(ctx)
		if err != nil {
			if !sleep(ctx, t.closed, backoff()) {
				return
			}
			continue
		}

		t.mu.Lock()
		t.rwc = rwc
		t.wr = newFrameWriter(rwc)
		t.mu.Unlock()

		if err := t.handleLink(ctx, rwc); err != nil {
			_ = rwc.Close()
			t.events <- TransportEvent{Kind: model.EventOther, Desc: fmt.Sprintf("link lost: %v", err)}
			if !sleep(ctx, t.closed, backoff()) {
				return
			}
			continue
		}
		return
	}
}

func (t *WebSocket) dial(ctx context.Context) (io.ReadWriteCloser, error) {
	c, _, err := websocket.Dial(ctx, t.endpoint, nil)
	if err != nil {
		return nil, err
	}
	return asReadWriteCloser(c), nil
}

// asReadWriteCloser adapts a *websocket.Conn's net.Conn view (binary
// message framing) into the io.ReadWriteCloser the frame reader/writer
// expect, the same seam services/bridge.Transport.Open exposes.
func asReadWriteCloser(c *websocket.Conn) io.ReadWriteCloser {
	return websocket.NetConn(context.Background(), c, websocket.MessageBinary)
}

type wireFrame struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data,omitempty"`
}

// handleLink reads frames until the link drops, the reader goroutine
// managed by an errgroup the same way the coder/websocket examples pair
// a read loop with errgroup.Wait for a single point to observe its
// exit.
func (t *WebSocket) handleLink(ctx context.Context, rwc io.ReadWriteCloser) error {
	rd := newFrameReader(rwc)
	g, _ := errgroup.WithContext(ctx)
	g.Go(func() error {
		for {
			f, err := rd.ReadFrame()
			if err != nil {
				return err
			}
			t.handleFrame(f)
		}
	})

	waitCh := make(chan error, 1)
	go func() { waitCh <- g.Wait() }()

	select {
	case <-ctx.Done():
		return nil
	case <-t.closed:
		return nil
	case err := <-waitCh:
		return err
	}
}

func (t *WebSocket) handleFrame(f wireFrame) {
	switch f.Type {
	case "device_added":
		var p struct {
			Name   string       `json:"name"`
			Scalar []model.Kind `json:"scalar"`
			Linear int          `json:"linear"`
			Rotate int          `json:"rotate"`
		}
		if err := json.Unmarshal(f.Data, &p); err != nil {
			return
		}
		t.mu.Lock()
		t.devices = append(t.devices, DeviceInfo{Name: p.Name, Scalar: p.Scalar, Linear: p.Linear, Rotate: p.Rotate})
		t.mu.Unlock()
		t.events <- TransportEvent{Kind: model.EventDeviceAdded, DeviceName: p.Name}
	case "device_removed":
		var p struct {
			Name string `json:"name"`
		}
		if err := json.Unmarshal(f.Data, &p); err != nil {
			return
		}
		t.mu.Lock()
		out := t.devices[:0]
		for _, d := range t.devices {
			if d.Name != p.Name {
				out = append(out, d)
			}
		}
		t.devices = out
		t.mu.Unlock()
		t.events <- TransportEvent{Kind: model.EventDeviceRemoved, DeviceName: p.Name}
	case "scan_started":
		t.events <- TransportEvent{Kind: model.EventScanStarted}
	case "scan_failed":
		var p struct {
			Reason string `json:"reason"`
		}
		_ = json.Unmarshal(f.Data, &p)
		t.events <- TransportEvent{Kind: model.EventScanFailed, Desc: p.Reason}
	case "ack":
		// acknowledgement of a prior cmd frame; nothing to do.
	default:
		t.events <- TransportEvent{Kind: model.EventOther, Desc: "unknown frame: " + f.Type}
	}
}

func (t *WebSocket) StartScanning(ctx context.Context) error {
	return t.sendCmd("scan_start", nil)
}

func (t *WebSocket) StopScanning(ctx context.Context) error {
	return t.sendCmd("scan_stop", nil)
}

func (t *WebSocket) Devices() []DeviceInfo {
	t.mu.Lock()
	defer t.mu.Unlock()
	return append([]DeviceInfo(nil), t.devices...)
}

func (t *WebSocket) Events() <-chan TransportEvent { return t.events }

type cmdPayload struct {
	Actuator  string  `json:"actuator"`
	Op        string  `json:"op"`
	Strength  float64 `json:"strength,omitempty"`
	Position  float64 `json:"position,omitempty"`
	Clockwise bool    `json:"clockwise,omitempty"`
}

func (t *WebSocket) Scalar(ctx context.Context, a model.Actuator, strength model.Speed) error {
	return t.sendCmd("cmd", cmdPayload{Actuator: a.ID(), Op: "scalar", Strength: strength.AsFloat()})
}

func (t *WebSocket) Linear(ctx context.Context, a model.Actuator, pos model.Speed, dur model.Duration) error {
	return t.sendCmd("cmd", cmdPayload{Actuator: a.ID(), Op: "linear", Position: pos.AsFloat()})
}

func (t *WebSocket) Rotate(ctx context.Context, a model.Actuator, speed model.Speed, clockwise bool) error {
	return t.sendCmd("cmd", cmdPayload{Actuator: a.ID(), Op: "rotate", Strength: speed.AsFloat(), Clockwise: clockwise})
}

func (t *WebSocket) Stop(ctx context.Context, a model.Actuator) error {
	return t.sendCmd("cmd", cmdPayload{Actuator: a.ID(), Op: "stop"})
}

func (t *WebSocket) sendCmd(typ string, payload any) error {
	t.mu.Lock()
	wr := t.wr
	t.mu.Unlock()
	if wr == nil {
		return fmt.Errorf("transport: not connected")
	}
	data, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	return wr.WriteFrame(wireFrame{Type: typ, Data: data})
}

func (t *WebSocket) Close() error {
	t.once.Do(func() { close(t.closed) })
	t.mu.Lock()
	rwc := t.rwc
	t.mu.Unlock()
	if rwc != nil {
		return rwc.Close()
	}
	return nil
}

// frameReader/frameWriter are a length-prefixed JSON framing, directly
// adapted from services/bridge's framedReader/framedWriter (3-byte
// header: 1 byte reserved, 2 bytes big-endian length) with the payload
// being a JSON-encoded wireFrame instead of an opaque byte blob.
type frameReader struct{ r io.Reader }
type frameWriter struct{ w io.Writer }

func newFrameReader(r io.Reader) *frameReader { return &frameReader{r: r} }
func newFrameWriter(w io.Writer) *frameWriter { return &frameWriter{w: w} }

func (fr *frameReader) ReadFrame() (wireFrame, error) {
	var hdr [3]byte
	if _, err := io.ReadFull(fr.r, hdr[:]); err != nil {
		return wireFrame{}, err
	}
	n := int(hdr[1])<<8 | int(hdr[2])
	buf := make([]byte, n)
	if n > 0 {
		if _, err := io.ReadFull(fr.r, buf); err != nil {
			return wireFrame{}, err
		}
	}
	var f wireFrame
	if err := json.Unmarshal(buf, &f); err != nil {
		return wireFrame{}, err
	}
	return f, nil
}

func (fw *frameWriter) WriteFrame(f wireFrame) error {
	buf, err := json.Marshal(f)
	if err != nil {
		return err
	}
	if len(buf) > 0xFFFF {
		return fmt.Errorf("frame too large: %d", len(buf))
	}
	hdr := []byte{0, byte(len(buf) >> 8), byte(len(buf) & 0xFF)}
	if _, err := fw.w.Write(hdr); err != nil {
		return err
	}
	_, err = fw.w.Write(buf)
	return err
}

func backoffSeq(min, max time.Duration) func() time.Duration {
	if min <= 0 {
		min = 100 * time.Millisecond
	}
	if max < min {
		max = min
	}
	cur := min
	return func() time.Duration {
		d := cur
		cur *= 2
		if cur > max {
			cur = max
		}
		return d
	}
}

func sleep(ctx context.Context, stop <-chan struct{}, d time.Duration) bool {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-stop:
		return false
	case <-t.C:
		return true
	}
}

func init() {
	Register("ws", func(cfg map[string]any) (Transport, error) {
		raw, err := json.Marshal(cfg)
		if err != nil {
			return nil, err
		}
		var wc WSConfig
		if err := json.Unmarshal(raw, &wc); err != nil {
			return nil, err
		}
		if wc.Endpoint == "" {
			return nil, fmt.Errorf("ws transport requires a non-empty endpoint")
		}
		return newWebSocket(wc), nil
	})
}
