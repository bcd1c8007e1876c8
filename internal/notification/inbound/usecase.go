package inbound

import (
	"context"

	"github.com/shandysiswandi/numsphere/internal/notification/usecase"
)

type uc interface {
	ConsumeUserOtpDispatch(ctx context.Context, in usecase.ConsumeUserOtpDispatchInput) error
	ConsumeUserForgotPassword(ctx context.Context, in usecase.ConsumeUserForgotPasswordInput) error
}
