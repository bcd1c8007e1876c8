package inbound

import (
	"context"

	"github.com/shandysiswandi/numsphere/internal/authflow/usecase"
	"github.com/shandysiswandi/numsphere/internal/pkg/router"
)

type uc interface {
	OpenFlow(ctx context.Context) (*usecase.FlowOutput, error)
	GetFlow(ctx context.Context, in usecase.FlowInput) (*usecase.FlowOutput, error)
	CloseFlow(ctx context.Context, in usecase.FlowInput) error

	SwitchMode(ctx context.Context, in usecase.SwitchModeInput) (*usecase.FlowOutput, error)
	SetFields(ctx context.Context, in usecase.SetFieldsInput) (*usecase.FlowOutput, error)
	Submit(ctx context.Context, in usecase.FlowInput) (*usecase.FlowOutput, error)

	SetDigit(ctx context.Context, in usecase.SetDigitInput) (*usecase.FlowOutput, error)
	Backspace(ctx context.Context, in usecase.SlotInput) (*usecase.FlowOutput, error)
	Focus(ctx context.Context, in usecase.FocusInput) (*usecase.FlowOutput, error)
	Paste(ctx context.Context, in usecase.PasteInput) (*usecase.FlowOutput, error)
	VerifyOtp(ctx context.Context, in usecase.FlowInput) (*usecase.FlowOutput, error)
	ResendOtp(ctx context.Context, in usecase.FlowInput) (*usecase.FlowOutput, error)

	Subscribe(ctx context.Context, in usecase.FlowInput) (<-chan usecase.Snapshot, func(), error)
}

func RegisterHTTPEndpoint(r *router.Router, uc uc) {
	end := &HTTPEndpoint{uc: uc}

	// Flow lifecycle
	r.POST("/api/v1/authflow/flows", end.OpenFlow)
	r.GET("/api/v1/authflow/flows/:id", end.GetFlow)
	r.DELETE("/api/v1/authflow/flows/:id", end.CloseFlow)
	r.GETRaw("/api/v1/authflow/flows/:id/stream", end.StreamFlow())

	// Credentials form
	r.PUT("/api/v1/authflow/flows/:id/mode", end.SwitchMode)
	r.PUT("/api/v1/authflow/flows/:id/fields", end.SetFields)
	r.POST("/api/v1/authflow/flows/:id/submit", end.Submit)

	// Verification code
	r.PUT("/api/v1/authflow/flows/:id/otp/slots/:index", end.SetDigit)
	r.POST("/api/v1/authflow/flows/:id/otp/slots/:index/backspace", end.Backspace)
	r.PUT("/api/v1/authflow/flows/:id/otp/focus", end.Focus)
	r.POST("/api/v1/authflow/flows/:id/otp/paste", end.Paste)
	r.POST("/api/v1/authflow/flows/:id/otp/verify", end.VerifyOtp)
	r.POST("/api/v1/authflow/flows/:id/otp/resend", end.ResendOtp)
}
