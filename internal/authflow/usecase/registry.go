package usecase

import (
	"errors"
	"sync"
	"time"

	"github.com/samber/lo"
	"github.com/shandysiswandi/numsphere/internal/authflow/entity"
	"go.uber.org/atomic"
)

var (
	ErrFlowNotFound = errors.New("authflow: flow not found")
	ErrTooManyFlows = errors.New("authflow: too many open flows")
)

// flow is one registered controller plus what its host collected.
type flow struct {
	id   string
	ctrl *Controller

	mu       sync.Mutex
	lastSeen time.Time
	session  *entity.Session
	subs     map[chan Snapshot]struct{}
	closed   bool
}

func (f *flow) touch(now time.Time) {
	f.mu.Lock()
	f.lastSeen = now
	f.mu.Unlock()
}

// idleSince is zero while a stream is attached, watching the countdown is activity.
func (f *flow) idleSince(now time.Time) time.Duration {
	f.mu.Lock()
	defer f.mu.Unlock()

	if len(f.subs) > 0 {
		return 0
	}
	return now.Sub(f.lastSeen)
}

func (f *flow) setSession(s entity.Session) {
	f.mu.Lock()
	f.session = &s
	f.mu.Unlock()
}

func (f *flow) takeSession() *entity.Session {
	f.mu.Lock()
	defer f.mu.Unlock()

	s := f.session
	f.session = nil
	return s
}

// subscribe returns a channel that always holds the latest snapshot.
// Cancelling marks the flow as seen at now().
func (f *flow) subscribe(now func() time.Time) (<-chan Snapshot, func()) {
	ch := make(chan Snapshot, 1)

	f.mu.Lock()
	if f.closed {
		f.mu.Unlock()
		close(ch)
		return ch, func() {}
	}
	if f.subs == nil {
		f.subs = make(map[chan Snapshot]struct{})
	}
	f.subs[ch] = struct{}{}
	f.mu.Unlock()

	cancel := func() {
		f.mu.Lock()
		defer f.mu.Unlock()
		if _, ok := f.subs[ch]; ok {
			delete(f.subs, ch)
			close(ch)
			f.lastSeen = now()
		}
	}

	return ch, cancel
}

func (f *flow) publish(s Snapshot) {
	f.mu.Lock()
	defer f.mu.Unlock()

	for ch := range f.subs {
		select {
		case <-ch:
		default:
		}
		ch <- s
	}
}

// finish closes every subscription after delivering the last snapshot.
func (f *flow) finish(last Snapshot) {
	f.publish(last)

	f.mu.Lock()
	defer f.mu.Unlock()

	f.closed = true
	for ch := range f.subs {
		close(ch)
	}
	f.subs = nil
}

type registry struct {
	mu    sync.RWMutex
	flows map[string]*flow
	size  *atomic.Int64
	max   int
}

func newRegistry(maxFlows int) *registry {
	return &registry{
		flows: make(map[string]*flow),
		size:  atomic.NewInt64(0),
		max:   maxFlows,
	}
}

func (r *registry) add(f *flow) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.max > 0 && int(r.size.Load()) >= r.max {
		return ErrTooManyFlows
	}

	r.flows[f.id] = f
	r.size.Inc()
	return nil
}

func (r *registry) get(id string) (*flow, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	f, ok := r.flows[id]
	if !ok {
		return nil, ErrFlowNotFound
	}
	return f, nil
}

func (r *registry) remove(id string) (*flow, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	f, ok := r.flows[id]
	if !ok {
		return nil, false
	}

	delete(r.flows, id)
	r.size.Dec()
	return f, true
}

// idle returns the flows untouched for at least ttl.
func (r *registry) idle(now time.Time, ttl time.Duration) []*flow {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return lo.Filter(lo.Values(r.flows), func(f *flow, _ int) bool {
		return f.idleSince(now) >= ttl
	})
}

func (r *registry) drain() []*flow {
	r.mu.Lock()
	defer r.mu.Unlock()

	all := lo.Values(r.flows)
	r.flows = make(map[string]*flow)
	r.size.Store(0)
	return all
}

func (r *registry) len() int {
	return int(r.size.Load())
}
