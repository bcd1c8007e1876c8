package usecase

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/shandysiswandi/numsphere/internal/authflow/entity"
	"github.com/shandysiswandi/numsphere/internal/pkg/clock"
	"github.com/shandysiswandi/numsphere/internal/pkg/config"
	"github.com/shandysiswandi/numsphere/internal/pkg/goerror"
	"github.com/shandysiswandi/numsphere/internal/pkg/instrument"
	"github.com/shandysiswandi/numsphere/internal/pkg/uid"
	"github.com/shandysiswandi/numsphere/internal/pkg/validator"
	"go.opentelemetry.io/otel/trace"
)

const (
	defaultFlowIdleTTL   = 15 * time.Minute
	defaultSweepInterval = 30 * time.Second
)

// FlowOutput is the state of a flow after an action.
// Session is set only by the action that authenticated the flow; the flow is closed by then.
type FlowOutput struct {
	ID      string
	Outcome entity.Outcome
	State   Snapshot
	Session *entity.Session
}

type Usecase struct {
	provider  IdentityProvider
	validator validator.Validator
	cfg       config.Config
	clock     clock.Clocker
	uuid      uid.StringID
	ins       instrument.Instrumentation
	metrics   *metrics
	flows     *registry
}

type Dependency struct {
	Provider   IdentityProvider
	Validator  validator.Validator
	Config     config.Config
	Clock      clock.Clocker
	UUID       uid.StringID
	Instrument instrument.Instrumentation
}

func New(dep Dependency) *Usecase {
	return &Usecase{
		provider:  dep.Provider,
		validator: dep.Validator,
		cfg:       dep.Config,
		clock:     dep.Clock,
		uuid:      dep.UUID,
		ins:       dep.Instrument,
		metrics:   newMetrics(dep.Instrument.Meter("authflow.usecase")),
		flows:     newRegistry(dep.Config.GetInt("modules.authflow.max_flows")),
	}
}

func (s *Usecase) startSpan(ctx context.Context, name string) (context.Context, trace.Span) {
	return s.ins.Tracer("authflow.usecase").Start(ctx, name)
}

func (s *Usecase) idleTTL() time.Duration {
	if ttl := s.cfg.GetMinute("modules.authflow.flow_idle_ttl_minutes"); ttl > 0 {
		return ttl
	}
	return defaultFlowIdleTTL
}

func (s *Usecase) sweepInterval() time.Duration {
	if d := s.cfg.GetSecond("modules.authflow.sweep_interval_seconds"); d > 0 {
		return d
	}
	return defaultSweepInterval
}

// lookup validates in and returns the open flow it names, marking it as used.
func (s *Usecase) lookup(ctx context.Context, in FlowInput) (*flow, error) {
	if err := s.validator.Validate(in); err != nil {
		return nil, goerror.NewInvalidInput(err)
	}

	f, err := s.flows.get(in.FlowID)
	if errors.Is(err, ErrFlowNotFound) {
		slog.WarnContext(ctx, "auth flow not found", "flow_id", in.FlowID)
		return nil, goerror.NewBusiness("Flow not found", goerror.CodeNotFound)
	}
	if err != nil {
		return nil, goerror.NewServer(err)
	}

	f.touch(s.clock.Now())
	return f, nil
}

// flowContext tags records logged while acting on f with its ID.
func flowContext(ctx context.Context, f *flow) context.Context {
	return instrument.WithLogAttrs(ctx, slog.String("flow_id", f.id))
}

// settle completes an action: an authenticated flow is closed by its host and
// the session is handed to the caller.
func (s *Usecase) settle(f *flow, out entity.Outcome) *FlowOutput {
	session := f.takeSession()
	if session != nil {
		f.ctrl.Close()
	}

	return &FlowOutput{
		ID:      f.id,
		Outcome: out,
		State:   f.ctrl.State(),
		Session: session,
	}
}

// detach removes the flow and ends its subscriptions.
func (s *Usecase) detach(id string) {
	if f, ok := s.flows.remove(id); ok {
		f.finish(f.ctrl.State())
	}
}
