// Package heartbeat periodically logs a snapshot of scheduler activity,
// tracked purely from the diagnostics bus's non-normative lifecycle
// notices (spec §4.J) rather than touching worker internals directly.
package heartbeat

import (
	"context"
	"time"

	"go.uber.org/zap"

	"hapticrt/bus"
	"hapticrt/diag"
	"hapticrt/x/timex"
)

var topicConfigHeartbeat = bus.Topic{"config", "heartbeat"}

const defaultInterval = time.Second

// Service ticks on an interval (reconfigurable via a "config/heartbeat"
// bus message carrying {"interval": seconds}), logging the last
// observed scheduler state and a running count of active players.
type Service struct {
	log *zap.Logger
}

// New builds a Service. A nil logger falls back to zap.NewNop().
func New(log *zap.Logger) *Service {
	if log == nil {
		log = zap.NewNop()
	}
	return &Service{log: log}
}

// Start runs the service loop in its own goroutine until ctx is
// cancelled.
func (s *Service) Start(ctx context.Context, conn *bus.Connection) error {
	go s.serviceLoop(ctx, conn)
	return nil
}

func (s *Service) serviceLoop(ctx context.Context, conn *bus.Connection) {
	cfgSub := conn.Subscribe(topicConfigHeartbeat)
	defer conn.Unsubscribe(cfgSub)
	stateSub := diag.SubscribeState(conn)
	defer conn.Unsubscribe(stateSub)
	playerSub := diag.SubscribePlayer(conn)
	defer conn.Unsubscribe(playerSub)

	tick := time.NewTicker(defaultInterval)
	defer tick.Stop()

	state := diag.StateIdle
	active := 0

	for {
		select {
		case <-ctx.Done():
			s.log.Info("heartbeat service stopping")
			return

		case <-tick.C:
			s.log.Info("heartbeat",
				zap.String("state", string(state)),
				zap.Int("active_players", active),
				zap.Int64("ts_ms", timex.NowMs()))

		case msg, ok := <-stateSub.Channel():
			if !ok {
				return
			}
			if st, ok := msg.Payload.(diag.State); ok {
				state = st
			}

		case msg, ok := <-playerSub.Channel():
			if !ok {
				return
			}
			if ev, ok := msg.Payload.(diag.PlayerEvent); ok {
				switch ev {
				case diag.PlayerSpawned:
					active++
				case diag.PlayerExited:
					if active > 0 {
						active--
					}
				}
			}

		case msg, ok := <-cfgSub.Channel():
			if !ok {
				return
			}
			s.reconfigure(msg.Payload, tick)
		}
	}
}

func (s *Service) reconfigure(payload any, tick *time.Ticker) {
	m, ok := payload.(map[string]any)
	if !ok {
		return
	}
	iv, ok := m["interval"]
	if !ok {
		return
	}
	secs, ok := iv.(float64)
	if !ok || secs <= 0 {
		return
	}
	d := time.Duration(secs * float64(time.Second))
	tick.Reset(d)
	s.log.Info("heartbeat interval updated", zap.Duration("interval", d))
}
