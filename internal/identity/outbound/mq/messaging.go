package mq

import (
	"context"
	"encoding/json"

	"github.com/shandysiswandi/numsphere/internal/identity/usecase"
	"github.com/shandysiswandi/numsphere/internal/pkg/instrument"
	"github.com/shandysiswandi/numsphere/internal/pkg/messaging"
	"github.com/shandysiswandi/numsphere/internal/shared/event"
	"go.opentelemetry.io/otel/codes"
)

const keyOfCorrelationID string = "cID"

type Messaging struct {
	client messaging.Messaging
	ins    instrument.Instrumentation
}

func NewMessaging(client messaging.Messaging, ins instrument.Instrumentation) *Messaging {
	return &Messaging{client: client, ins: ins}
}

func (m *Messaging) PublishUserOtpDispatch(ctx context.Context, msg usecase.UserOtpDispatchEvent) error {
	return m.publish(ctx, "PublishUserOtpDispatch", event.UserOtpDispatchDestination, event.UserOtpDispatchMessage{
		UserID:           msg.UserID,
		Email:            msg.Email,
		FullName:         msg.FullName,
		Code:             msg.Code,
		ExpiresInMinutes: int64(msg.ExpiresIn.Minutes()),
	})
}

func (m *Messaging) PublishUserForgotPassword(ctx context.Context, msg usecase.UserForgotPasswordEvent) error {
	return m.publish(ctx, "PublishUserForgotPassword", event.UserForgotPasswordDestination, event.UserForgotPasswordMessage{
		UserID:         msg.UserID,
		Email:          msg.Email,
		ChallengeToken: msg.ChallengeToken,
	})
}

func (m *Messaging) publish(ctx context.Context, name, destination string, payload any) error {
	ctx, span := m.ins.Tracer("identity.outbound.mq").Start(ctx, name)
	defer span.End()

	body, err := json.Marshal(payload)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return err
	}

	cID := instrument.GetCorrelationID(ctx)
	if err := m.client.Publish(ctx, destination, messaging.OutgoingMessage{
		Body:    body,
		Headers: []messaging.Header{{Key: keyOfCorrelationID, Value: []byte(cID)}},
	}); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return err
	}

	return nil
}
