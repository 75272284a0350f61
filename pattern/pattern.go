// Package pattern resolves a named pattern to a finite sample sequence
// (spec §4.B). Decoders are installed by file extension into a small
// registry, mirroring the teacher's hal.RegisterBuilder keyed-lookup
// shape, so a name picks its format by the file actually found on disk
// rather than by a format flag the caller has to know.
package pattern

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"hapticrt/model"
	"hapticrt/x/mathx"
)

// Decoder turns raw bytes into a sample sequence. It MUST validate that
// OffsetMs is monotonically nondecreasing and Strength is within
// [0,1]; Load rejects a decoder's output that violates either.
type Decoder interface {
	Decode(raw []byte) ([]model.Sample, error)
}

var (
	mu       sync.RWMutex
	decoders = map[string]Decoder{}
)

// Register installs a decoder for a file extension (e.g. ".json",
// ".ramp"), dot included. Panics on duplicate registration, the same
// fail-fast-at-init-time discipline as the teacher's RegisterBuilder.
func Register(ext string, d Decoder) {
	mu.Lock()
	defer mu.Unlock()
	if ext == "" {
		panic("pattern: empty extension for decoder")
	}
	if _, exists := decoders[ext]; exists {
		panic(fmt.Sprintf("pattern: decoder already registered for %q", ext))
	}
	decoders[ext] = d
}

func findDecoder(ext string) (Decoder, bool) {
	mu.RLock()
	defer mu.RUnlock()
	d, ok := decoders[ext]
	return d, ok
}

// Loader resolves names against a single pattern directory.
type Loader struct {
	Dir string
}

// NewLoader builds a loader rooted at dir.
func NewLoader(dir string) *Loader { return &Loader{Dir: dir} }

// Load resolves name (without extension) to a sample sequence. It
// tries every registered extension in a stable order against
// Dir/name+ext. A missing file, unreadable file, or a decoder that
// produces invalid samples all return an empty sequence and an error,
// per spec §4.B — the worker turns that error into an Other event,
// not a panic.
func (l *Loader) Load(name string) ([]model.Sample, error) {
	mu.RLock()
	exts := make([]string, 0, len(decoders))
	for ext := range decoders {
		exts = append(exts, ext)
	}
	mu.RUnlock()
	sort.Strings(exts)

	var lastErr error
	for _, ext := range exts {
		path := filepath.Join(l.Dir, name+ext)
		raw, err := os.ReadFile(path)
		if err != nil {
			if os.IsNotExist(err) {
				continue
			}
			lastErr = err
			continue
		}
		dec, _ := findDecoder(ext)
		samples, err := dec.Decode(raw)
		if err != nil {
			return nil, fmt.Errorf("pattern %q: %w", name, err)
		}
		if err := validate(samples); err != nil {
			return nil, fmt.Errorf("pattern %q: %w", name, err)
		}
		return samples, nil
	}
	if lastErr != nil {
		return nil, fmt.Errorf("pattern %q: %w", name, lastErr)
	}
	return nil, fmt.Errorf("pattern %q: not found in %s", name, l.Dir)
}

func validate(samples []model.Sample) error {
	var lastOffset uint64
	for i, s := range samples {
		if i > 0 && s.OffsetMs < lastOffset {
			return fmt.Errorf("sample %d: offset_ms %d is less than prior offset %d", i, s.OffsetMs, lastOffset)
		}
		if !mathx.Between(s.Strength, 0, 1) {
			return fmt.Errorf("sample %d: strength %v out of [0,1]", i, s.Strength)
		}
		lastOffset = s.OffsetMs
	}
	return nil
}
