package pattern

import (
	"encoding/json"
	"fmt"

	"hapticrt/model"
)

// stepListDoc is the required format: an explicit, already-timed
// sequence of (offset_ms, strength) points.
type stepListDoc struct {
	Steps []struct {
		OffsetMs uint64  `json:"offset_ms"`
		Strength float64 `json:"strength"`
	} `json:"steps"`
}

type stepListDecoder struct{}

func (stepListDecoder) Decode(raw []byte) ([]model.Sample, error) {
	var doc stepListDoc
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("step-list: %w", err)
	}
	out := make([]model.Sample, len(doc.Steps))
	for i, s := range doc.Steps {
		out[i] = model.Sample{OffsetMs: s.OffsetMs, Strength: s.Strength}
	}
	return out, nil
}

func init() {
	Register(".json", stepListDecoder{})
}
