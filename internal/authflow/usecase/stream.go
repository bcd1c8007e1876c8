package usecase

import (
	"context"
	"log/slog"
)

// Subscribe streams snapshots of a flow. The channel holds only the latest snapshot
// and is closed when the flow closes or cancel is called.
func (s *Usecase) Subscribe(ctx context.Context, in FlowInput) (<-chan Snapshot, func(), error) {
	ctx, span := s.startSpan(ctx, "Subscribe")
	defer span.End()

	f, err := s.lookup(ctx, in)
	if err != nil {
		return nil, nil, err
	}

	ch, cancel := f.subscribe(s.clock.Now)
	f.publish(f.ctrl.State())

	return ch, cancel, nil
}

// RunJanitor evicts idle flows until ctx is done.
func (s *Usecase) RunJanitor(ctx context.Context) error {
	ticker := s.clock.NewTicker(s.sweepInterval())
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C():
			s.sweep(ctx)
		}
	}
}

func (s *Usecase) sweep(ctx context.Context) {
	for _, f := range s.flows.idle(s.clock.Now(), s.idleTTL()) {
		if _, ok := s.flows.remove(f.id); !ok {
			continue
		}

		f.ctrl.Dispose()
		f.finish(f.ctrl.State())
		slog.InfoContext(ctx, "evicted idle auth flow", "flow_id", f.id)
	}
}

// Shutdown disposes every open flow.
func (s *Usecase) Shutdown() error {
	for _, f := range s.flows.drain() {
		f.ctrl.Dispose()
		f.finish(f.ctrl.State())
	}
	return nil
}
