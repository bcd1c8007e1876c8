package inbound

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/shandysiswandi/numsphere/internal/notification/usecase"
	"github.com/shandysiswandi/numsphere/internal/pkg/instrument"
	"github.com/shandysiswandi/numsphere/internal/pkg/messaging"
	"github.com/shandysiswandi/numsphere/internal/pkg/uid"
	"github.com/shandysiswandi/numsphere/internal/shared/event"
)

const keyOfCorrelationID string = "cID"

type MQHandler struct {
	uc   uc
	uuid uid.StringID
	ins  instrument.Instrumentation
}

func (h *MQHandler) ensureCorrelationID(ctx context.Context, msg messaging.Message) context.Context {
	if cID := msg.Header(keyOfCorrelationID); cID != "" {
		return instrument.SetCorrelationID(ctx, cID)
	}
	return instrument.SetCorrelationID(ctx, h.uuid.Generate())
}

// UserOtpDispatchNotification never logs the message body, it carries a live code.
func (h *MQHandler) UserOtpDispatchNotification(ctx context.Context, msg messaging.Message) error {
	ctx = h.ensureCorrelationID(ctx, msg)

	ctx, span := h.ins.Tracer("notification.inbound.mq").Start(ctx, "UserOtpDispatchNotification")
	defer span.End()

	var payload event.UserOtpDispatchMessage
	if err := json.Unmarshal(msg.Body(), &payload); err != nil {
		slog.ErrorContext(ctx, "failed to parse message body of user otp dispatch notification", "error", err)
		return nil
	}
	slog.InfoContext(ctx, "consume: user otp dispatch notification", "user_id", payload.UserID)

	if err := h.uc.ConsumeUserOtpDispatch(ctx, usecase.ConsumeUserOtpDispatchInput{
		UserID:           payload.UserID,
		Email:            payload.Email,
		FullName:         payload.FullName,
		Code:             payload.Code,
		ExpiresInMinutes: payload.ExpiresInMinutes,
	}); err != nil {
		slog.ErrorContext(ctx, "failed to consume user otp dispatch", "user_id", payload.UserID, "error", err)
		return err
	}

	return nil
}

func (h *MQHandler) UserForgotPasswordNotification(ctx context.Context, msg messaging.Message) error {
	ctx = h.ensureCorrelationID(ctx, msg)

	ctx, span := h.ins.Tracer("notification.inbound.mq").Start(ctx, "UserForgotPasswordNotification")
	defer span.End()

	var payload event.UserForgotPasswordMessage
	if err := json.Unmarshal(msg.Body(), &payload); err != nil {
		slog.ErrorContext(ctx, "failed to parse message body of user forgot password notification", "error", err)
		return nil
	}
	slog.InfoContext(ctx, "consume: user forgot password notification", "user_id", payload.UserID)

	if err := h.uc.ConsumeUserForgotPassword(ctx, usecase.ConsumeUserForgotPasswordInput{
		UserID: payload.UserID,
		Email:  payload.Email,
		Token:  payload.ChallengeToken,
	}); err != nil {
		slog.ErrorContext(ctx, "failed to consume user forgot password", "user_id", payload.UserID, "error", err)
		return err
	}

	return nil
}
