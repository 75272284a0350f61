package api

import (
	"encoding/json"
	"fmt"
	"strings"
)

// FixtureDevice declares one in-process demo device: a name plus its
// capability counts, in the shape transport.DeviceInfo expects. It has
// no live-hardware equivalent; it only seeds the InProcess transport
// for local testing and the cmd/tkctl demo host.
type FixtureDevice struct {
	Name   string   `json:"name"`
	Scalar []string `json:"scalar,omitempty"`
	Linear int      `json:"linear,omitempty"`
	Rotate int      `json:"rotate,omitempty"`
}

// ConnectionConfig is the "connection" variant of the settings schema
// (spec §6): InProcess, or WebSocket(endpoint). Fixtures only applies
// to Type "inprocess".
type ConnectionConfig struct {
	Type     string          `json:"type"`
	Endpoint string          `json:"endpoint,omitempty"`
	Fixtures []FixtureDevice `json:"fixtures,omitempty"`
}

// DeviceConfig is one entry of the settings schema's ordered device
// list, seeded into the settings store at Connect time.
type DeviceConfig struct {
	Name    string   `json:"name"`
	Enabled bool     `json:"enabled"`
	Events  []string `json:"events,omitempty"`
}

// Settings is the full persisted configuration payload a host passes to
// Connect (spec §6).
type Settings struct {
	Connection  ConnectionConfig `json:"connection"`
	PatternPath string           `json:"pattern_path"`
	Devices     []DeviceConfig   `json:"devices,omitempty"`
}

// decodeSettings accepts []byte, string, or an already-decoded
// map[string]any/struct, the same permissive shape the teacher's
// decodeConfig accepts for bridge configuration.
func decodeSettings(p any) (Settings, error) {
	var cfg Settings
	switch v := p.(type) {
	case Settings:
		return v, nil
	case []byte:
		if err := json.Unmarshal(v, &cfg); err != nil {
			return cfg, err
		}
	case string:
		if err := json.Unmarshal([]byte(v), &cfg); err != nil {
			return cfg, err
		}
	case map[string]any:
		b, err := json.Marshal(v)
		if err != nil {
			return cfg, err
		}
		if err := json.Unmarshal(b, &cfg); err != nil {
			return cfg, err
		}
	default:
		return cfg, fmt.Errorf("api: unsupported settings payload type: %T", p)
	}
	return cfg, nil
}

// connectionName maps the settings schema's connection type name to the
// transport registry key.
func connectionName(typ string) (string, error) {
	switch strings.ToLower(strings.TrimSpace(typ)) {
	case "inprocess", "":
		return "inprocess", nil
	case "websocket", "ws":
		return "ws", nil
	default:
		return "", fmt.Errorf("api: unknown connection type %q", typ)
	}
}
