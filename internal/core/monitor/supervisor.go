package monitor

import (
	"context"
	"sync"

	"github.com/raghav-misra/buddard/internal/alerts"
	"github.com/raghav-misra/buddard/internal/core/baseline"
	"github.com/raghav-misra/buddard/internal/core/game"
	"github.com/raghav-misra/buddard/internal/core/projection"
	"github.com/raghav-misra/buddard/internal/core/trigger"
	"github.com/raghav-misra/buddard/internal/telemetry"
)

type handle struct {
	monitor *Monitor
	cancel  context.CancelFunc
}

// Supervisor owns the registry of per-game workers: it starts monitors
// for newly scheduled games, prunes finished ones, and guarantees a
// clean join of every worker on shutdown.
type Supervisor struct {
	provider   Provider
	baselines  *baseline.Store
	engine     *projection.Engine
	triggerCfg trigger.Config
	sink       alerts.Sink
	cfg        Config

	mu      sync.Mutex
	workers map[string]*handle
}

func NewSupervisor(provider Provider, baselines *baseline.Store, engine *projection.Engine, triggerCfg trigger.Config, sink alerts.Sink, cfg Config) *Supervisor {
	return &Supervisor{
		provider:   provider,
		baselines:  baselines,
		engine:     engine,
		triggerCfg: triggerCfg,
		sink:       sink,
		cfg:        cfg,
		workers:    make(map[string]*handle),
	}
}

// Sync reconciles the registry against the day's schedule: finished
// workers are pruned, unseen games get a fresh monitor. Already-running
// monitors are left untouched (their trigger state must survive).
func (s *Supervisor) Sync(ctx context.Context, refs []game.Ref) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for id, h := range s.workers {
		select {
		case <-h.monitor.Done():
			delete(s.workers, id)
		default:
		}
	}

	for _, ref := range refs {
		if _, running := s.workers[ref.GameID]; running {
			continue
		}
		s.startLocked(ctx, ref)
	}
}

// Start launches a monitor for one game if none is running.
func (s *Supervisor) Start(ctx context.Context, ref game.Ref) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, running := s.workers[ref.GameID]; running {
		return
	}
	s.startLocked(ctx, ref)
}

func (s *Supervisor) startLocked(ctx context.Context, ref game.Ref) {
	wctx, cancel := context.WithCancel(ctx)
	m := New(ref, s.provider, s.baselines, s.engine, s.triggerCfg, s.sink, s.cfg)
	s.workers[ref.GameID] = &handle{monitor: m, cancel: cancel}
	go m.Run(wctx)
}

// OnStatus lets a push feed short-circuit the poll loop: a final status
// cancels that game's worker immediately instead of waiting for its next
// cycle to observe the terminal state.
func (s *Supervisor) OnStatus(gameID string, st game.Status) {
	if st != game.StatusFinal {
		return
	}
	s.mu.Lock()
	h, ok := s.workers[gameID]
	s.mu.Unlock()
	if !ok {
		return
	}
	telemetry.Infof("[%s] final via feed, stopping monitor", gameID)
	h.cancel()
}

// StopAll cancels every worker and blocks until each has exited.
func (s *Supervisor) StopAll() {
	s.mu.Lock()
	handles := make([]*handle, 0, len(s.workers))
	for _, h := range s.workers {
		handles = append(handles, h)
	}
	s.workers = make(map[string]*handle)
	s.mu.Unlock()

	for _, h := range handles {
		h.cancel()
	}
	for _, h := range handles {
		<-h.monitor.Done()
	}
}

// ActiveCount reports how many workers have not yet exited.
func (s *Supervisor) ActiveCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, h := range s.workers {
		select {
		case <-h.monitor.Done():
		default:
			n++
		}
	}
	return n
}
