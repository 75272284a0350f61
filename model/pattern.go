package model

// Pattern describes the strength a single command applies over time.
// It is a tagged variant: exactly one of Linear/Funscript is set,
// discriminated by Kind.
type PatternKind uint8

const (
	PatternLinear PatternKind = iota
	PatternFunscript
)

type Pattern struct {
	Kind     PatternKind
	Duration Duration
	Strength Speed  // valid when Kind == PatternLinear
	Name     string // valid when Kind == PatternFunscript
}

// LinearPattern holds a constant strength for the duration.
func LinearPattern(d Duration, s Speed) Pattern {
	return Pattern{Kind: PatternLinear, Duration: d, Strength: s}
}

// FunscriptPattern names a pattern resolved by the loader, looped or
// clipped to the duration.
func FunscriptPattern(d Duration, name string) Pattern {
	return Pattern{Kind: PatternFunscript, Duration: d, Name: name}
}

// InitialStrength is the strength a command starts at: the constant
// strength for Linear, or the strength of a Funscript's first sample
// (0 if the pattern has no samples, e.g. because loading failed).
func (p Pattern) InitialStrength(samples []Sample) Speed {
	if p.Kind == PatternLinear {
		return p.Strength
	}
	if len(samples) == 0 {
		return NewSpeed(0)
	}
	return NewSpeed(int(samples[0].Strength*100 + 0.5))
}

// Sample is one (offset_ms, strength in 0..1) point of a loaded pattern.
type Sample struct {
	OffsetMs uint64
	Strength float64 // 0..1
}
