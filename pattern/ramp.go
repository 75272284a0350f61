package pattern

import (
	"encoding/json"
	"fmt"
	"time"

	"hapticrt/model"
	"hapticrt/x/mathx"
	"hapticrt/x/ramp"
	"hapticrt/x/timex"
)

// rampScriptDoc is the supplemental format (SPEC_FULL §3.A): sparse
// keyframes that get densified into a step-list at load time, instead
// of requiring the pattern author to hand-write every intermediate
// step.
type rampScriptDoc struct {
	Keyframes []struct {
		OffsetMs uint64  `json:"offset_ms"`
		Strength float64 `json:"strength"`
	} `json:"keyframes"`
	// SampleHz overrides the densification rate, for authors who think
	// in sampling frequency rather than a millisecond step. 0 falls
	// back to rampSampleMs.
	SampleHz uint32 `json:"sample_hz,omitempty"`
}

// rampScale is the integer resolution x/ramp.StartLinear interpolates
// over; strength 0..1 maps to level 0..rampScale.
const rampScale = 10000

// rampSampleMs is the fixed sampling resolution new steps are emitted
// at between two keyframes.
const rampSampleMs = 25

type rampScriptDecoder struct{}

// Decode densifies keyframes by driving x/ramp.StartLinear once per
// segment with a synthetic Tick (advances a local clock instead of
// sleeping) and a Step that records a sample at the resulting offset —
// the same interpolation arithmetic StartLinear uses to drive a live
// PWM ramp tick-by-tick, reused here as a one-shot offline expansion.
func (rampScriptDecoder) Decode(raw []byte) ([]model.Sample, error) {
	var doc rampScriptDoc
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("ramp-script: %w", err)
	}
	if len(doc.Keyframes) == 0 {
		return nil, fmt.Errorf("ramp-script: no keyframes")
	}

	sampleMs := uint64(rampSampleMs)
	if doc.SampleHz > 0 {
		if ms := timex.PeriodFromHz(doc.SampleHz) / 1_000_000; ms > 0 {
			sampleMs = ms
		}
	}

	first := doc.Keyframes[0]
	out := []model.Sample{{OffsetMs: first.OffsetMs, Strength: first.Strength}}

	for i := 0; i < len(doc.Keyframes)-1; i++ {
		from, to := doc.Keyframes[i], doc.Keyframes[i+1]
		if to.OffsetMs < from.OffsetMs {
			return nil, fmt.Errorf("ramp-script: keyframe %d offset_ms %d precedes %d", i+1, to.OffsetMs, from.OffsetMs)
		}
		durationMs := to.OffsetMs - from.OffsetMs
		steps := uint16(mathx.CeilDiv(durationMs, sampleMs))
		if steps < 1 {
			steps = 1
		}

		elapsed := uint64(0)
		tick := func(d time.Duration) bool {
			elapsed += uint64(d.Milliseconds())
			return true
		}
		set := func(level uint16) {
			out = append(out, model.Sample{
				OffsetMs: from.OffsetMs + elapsed,
				Strength: float64(level) / float64(rampScale),
			})
		}

		cur := uint16(from.Strength * rampScale)
		target := uint16(to.Strength * rampScale)
		ramp.StartLinear(cur, target, rampScale, uint32(durationMs), steps, tick, set)
		// StartLinear's final Step (the target level) comes without a
		// trailing Tick; place it at the keyframe's own offset.
		out[len(out)-1].OffsetMs = to.OffsetMs
	}
	return out, nil
}

func init() {
	Register(".ramp", rampScriptDecoder{})
}
