package usecase

import (
	"context"

	"github.com/shandysiswandi/numsphere/internal/authflow/entity"
	"github.com/shandysiswandi/numsphere/internal/pkg/goerror"
)

type SetDigitInput struct {
	FlowID string `validate:"required,uuid"`
	Index  int    `validate:"min=0,max=5"`
	Value  string `validate:"max=1"`
}

func (s *Usecase) SetDigit(ctx context.Context, in SetDigitInput) (*FlowOutput, error) {
	ctx, span := s.startSpan(ctx, "SetDigit")
	defer span.End()

	if err := s.validator.Validate(in); err != nil {
		return nil, goerror.NewInvalidInput(err)
	}

	f, err := s.lookup(ctx, FlowInput{FlowID: in.FlowID})
	if err != nil {
		return nil, err
	}

	f.ctrl.SetDigit(in.Index, in.Value)

	return s.settle(f, entity.OutcomeIgnored), nil
}

type SlotInput struct {
	FlowID string `validate:"required,uuid"`
	Index  int    `validate:"min=0,max=5"`
}

func (s *Usecase) Backspace(ctx context.Context, in SlotInput) (*FlowOutput, error) {
	ctx, span := s.startSpan(ctx, "Backspace")
	defer span.End()

	if err := s.validator.Validate(in); err != nil {
		return nil, goerror.NewInvalidInput(err)
	}

	f, err := s.lookup(ctx, FlowInput{FlowID: in.FlowID})
	if err != nil {
		return nil, err
	}

	f.ctrl.Backspace(in.Index)

	return s.settle(f, entity.OutcomeIgnored), nil
}

// FocusInput moves focus to Index, or blurs the code input when Index is nil.
type FocusInput struct {
	FlowID string `validate:"required,uuid"`
	Index  *int   `validate:"omitnil,min=0,max=5"`
}

func (s *Usecase) Focus(ctx context.Context, in FocusInput) (*FlowOutput, error) {
	ctx, span := s.startSpan(ctx, "Focus")
	defer span.End()

	if err := s.validator.Validate(in); err != nil {
		return nil, goerror.NewInvalidInput(err)
	}

	f, err := s.lookup(ctx, FlowInput{FlowID: in.FlowID})
	if err != nil {
		return nil, err
	}

	if in.Index == nil {
		f.ctrl.BlurSlots()
	} else {
		f.ctrl.FocusSlot(*in.Index)
	}

	return s.settle(f, entity.OutcomeIgnored), nil
}

type PasteInput struct {
	FlowID string `validate:"required,uuid"`
	Text   string `validate:"max=256"`
}

func (s *Usecase) Paste(ctx context.Context, in PasteInput) (*FlowOutput, error) {
	ctx, span := s.startSpan(ctx, "Paste")
	defer span.End()

	if err := s.validator.Validate(in); err != nil {
		return nil, goerror.NewInvalidInput(err)
	}

	f, err := s.lookup(ctx, FlowInput{FlowID: in.FlowID})
	if err != nil {
		return nil, err
	}

	f.ctrl.Paste(in.Text)

	return s.settle(f, entity.OutcomeIgnored), nil
}

func (s *Usecase) VerifyOtp(ctx context.Context, in FlowInput) (*FlowOutput, error) {
	ctx, span := s.startSpan(ctx, "VerifyOtp")
	defer span.End()

	f, err := s.lookup(ctx, in)
	if err != nil {
		return nil, err
	}

	return s.settle(f, f.ctrl.Verify(flowContext(ctx, f))), nil
}

func (s *Usecase) ResendOtp(ctx context.Context, in FlowInput) (*FlowOutput, error) {
	ctx, span := s.startSpan(ctx, "ResendOtp")
	defer span.End()

	f, err := s.lookup(ctx, in)
	if err != nil {
		return nil, err
	}

	return s.settle(f, f.ctrl.Resend(flowContext(ctx, f))), nil
}
