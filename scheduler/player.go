package scheduler

import (
	"time"

	channerics "github.com/niceyeti/channerics/channels"

	"hapticrt/model"
)

// player is the cooperative single-shot task spec §4.E describes: one
// per accepted Control action. It owns no shared state directly —
// every stack mutation and device emit happens back in the worker,
// reached via internalQ — so it can run free of the worker's
// serialization discipline and still never race it.
type player struct {
	handle    model.Handle
	actuators []model.Actuator
	pattern   model.Pattern
	samples   []model.Sample // Funscript only; nil for Linear

	cancel    chan struct{}
	done      chan struct{}
	internalQ chan<- internalMsg
}

func newPlayer(handle model.Handle, actuators []model.Actuator, pat model.Pattern, samples []model.Sample, internalQ chan<- internalMsg) *player {
	return &player{
		handle:    handle,
		actuators: actuators,
		pattern:   pat,
		samples:   samples,
		cancel:    make(chan struct{}),
		done:      make(chan struct{}),
		internalQ: internalQ,
	}
}

// Cancel requests the player stop at its next checkpoint. Idempotent.
func (p *player) Cancel() {
	select {
	case <-p.cancel:
	default:
		close(p.cancel)
	}
}

func (p *player) run() {
	defer close(p.done)
	switch p.pattern.Kind {
	case model.PatternLinear:
		p.runLinear()
	case model.PatternFunscript:
		p.runFunscript()
	}
	p.expire()
}

// runLinear sleeps for the pattern's duration (or forever), waking
// early on cancellation. The initial push already happened in the
// worker before the player was spawned; there is nothing left to emit
// here but the eventual expiry.
func (p *player) runLinear() {
	if p.pattern.Duration.IsInfinite() {
		<-p.cancel
		return
	}
	t := time.NewTimer(p.pattern.Duration.AsGo())
	defer t.Stop()
	select {
	case <-p.cancel:
	case <-t.C:
	}
}

// runFunscript replays loaded samples against t0, looping if the
// pattern's duration outlasts one pass, checking cancellation between
// every wait and every emit.
func (p *player) runFunscript() {
	if len(p.samples) == 0 {
		return
	}
	deadline := (<-chan time.Time)(nil)
	var deadlineTimer *time.Timer
	if !p.pattern.Duration.IsInfinite() {
		deadlineTimer = time.NewTimer(p.pattern.Duration.AsGo())
		defer deadlineTimer.Stop()
		deadline = deadlineTimer.C
	}

	t0 := time.Now()
	idx := 0
	tick := channerics.NewTicker(p.cancel, 10*time.Millisecond)
	for {
		select {
		case <-p.cancel:
			return
		case <-deadline:
			return
		case <-tick:
			s := p.samples[idx]
			if time.Since(t0) < time.Duration(s.OffsetMs)*time.Millisecond {
				continue
			}
			p.emitUpdate(model.NewSpeed(int(s.Strength*100 + 0.5)))
			idx++
			if idx >= len(p.samples) {
				idx = 0
				t0 = time.Now()
			}
		}
	}
}

func (p *player) emitUpdate(strength model.Speed) {
	for _, a := range p.actuators {
		select {
		case <-p.cancel:
			return
		default:
		}
		p.internalQ <- internalMsg{kind: internalUpdate, handle: p.handle, actuatorID: a.ID(), strength: strength}
	}
}

func (p *player) expire() {
	p.internalQ <- internalMsg{kind: internalExpire, handle: p.handle}
}
