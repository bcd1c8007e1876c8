package usecase

import (
	"context"
	"errors"
	"log/slog"

	"github.com/shandysiswandi/numsphere/internal/authflow/entity"
	"github.com/shandysiswandi/numsphere/internal/pkg/goerror"
)

type FlowInput struct {
	FlowID string `validate:"required,uuid"`
}

func (s *Usecase) OpenFlow(ctx context.Context) (*FlowOutput, error) {
	ctx, span := s.startSpan(ctx, "OpenFlow")
	defer span.End()

	f := &flow{id: s.uuid.Generate(), lastSeen: s.clock.Now()}
	f.ctrl = NewController(ControllerConfig{
		Provider:        s.provider,
		Validator:       s.validator,
		Clock:           s.clock,
		CooldownSeconds: s.cfg.GetInt("modules.authflow.cooldown_seconds"),
		Host: Host{
			OnClose:         func() { s.detach(f.id) },
			OnAuthenticated: f.setSession,
			OnChange:        func() { f.publish(f.ctrl.State()) },
		},
		metrics: s.metrics,
	})

	if err := s.flows.add(f); err != nil {
		slog.WarnContext(ctx, "failed to register auth flow", "open_flows", s.flows.len(), "error", err)
		return nil, goerror.NewBusiness("Too many sign in attempts in progress, please try again later", goerror.CodeTooManyRequest)
	}

	f.ctrl.Open()

	return &FlowOutput{ID: f.id, Outcome: entity.OutcomeIgnored, State: f.ctrl.State()}, nil
}

func (s *Usecase) GetFlow(ctx context.Context, in FlowInput) (*FlowOutput, error) {
	ctx, span := s.startSpan(ctx, "GetFlow")
	defer span.End()

	f, err := s.lookup(ctx, in)
	if err != nil {
		return nil, err
	}

	return &FlowOutput{ID: f.id, Outcome: entity.OutcomeIgnored, State: f.ctrl.State()}, nil
}

func (s *Usecase) CloseFlow(ctx context.Context, in FlowInput) error {
	ctx, span := s.startSpan(ctx, "CloseFlow")
	defer span.End()

	f, err := s.lookup(ctx, in)
	if err != nil {
		return err
	}

	f.ctrl.Close()
	return nil
}

type SwitchModeInput struct {
	FlowID string `validate:"required,uuid"`
	Mode   string `validate:"required,oneof=login signup forgot otp"`
}

func (s *Usecase) SwitchMode(ctx context.Context, in SwitchModeInput) (*FlowOutput, error) {
	ctx, span := s.startSpan(ctx, "SwitchMode")
	defer span.End()

	if err := s.validator.Validate(in); err != nil {
		return nil, goerror.NewInvalidInput(err)
	}

	mode, err := entity.ParseAuthMode(in.Mode)
	if err != nil {
		return nil, goerror.NewInvalidInput(nil, "mode", "Mode is unknown")
	}

	f, err := s.lookup(ctx, FlowInput{FlowID: in.FlowID})
	if err != nil {
		return nil, err
	}

	if err := f.ctrl.SwitchMode(mode); err != nil {
		if errors.Is(err, entity.ErrAuthModeTransition) {
			return nil, goerror.NewBusiness("Cannot switch to "+mode.String()+" from here", goerror.CodeConflict)
		}
		return nil, goerror.NewBusiness("Flow not found", goerror.CodeNotFound)
	}

	return s.settle(f, entity.OutcomeIgnored), nil
}

type SetFieldsInput struct {
	FlowID      string `validate:"required,uuid"`
	Email       string `validate:"max=255"`
	Password    string `validate:"max=72"`
	DisplayName string `validate:"max=100"`
}

func (s *Usecase) SetFields(ctx context.Context, in SetFieldsInput) (*FlowOutput, error) {
	ctx, span := s.startSpan(ctx, "SetFields")
	defer span.End()

	if err := s.validator.Validate(in); err != nil {
		return nil, goerror.NewInvalidInput(err)
	}

	f, err := s.lookup(ctx, FlowInput{FlowID: in.FlowID})
	if err != nil {
		return nil, err
	}

	f.ctrl.SetFields(entity.CredentialDraft{
		Email:       in.Email,
		Password:    in.Password,
		DisplayName: in.DisplayName,
	})

	return s.settle(f, entity.OutcomeIgnored), nil
}

func (s *Usecase) Submit(ctx context.Context, in FlowInput) (*FlowOutput, error) {
	ctx, span := s.startSpan(ctx, "Submit")
	defer span.End()

	f, err := s.lookup(ctx, in)
	if err != nil {
		return nil, err
	}

	return s.settle(f, f.ctrl.Submit(flowContext(ctx, f))), nil
}
