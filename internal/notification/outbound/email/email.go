package email

import (
	"context"
	"errors"
	"fmt"
	"net/textproto"

	"github.com/shandysiswandi/numsphere/internal/notification/entity"
	"github.com/shandysiswandi/numsphere/internal/pkg/instrument"
	"github.com/shandysiswandi/numsphere/internal/pkg/mail"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// Mail delivers rendered notifications through the configured mail client.
type Mail struct {
	client mail.Mail
	ins    instrument.Instrumentation
}

func New(client mail.Mail, ins instrument.Instrumentation) *Mail {
	return &Mail{client: client, ins: ins}
}

// Send delivers msg. Permanent SMTP replies (5xx) are wrapped with
// entity.ErrMailRejected, anything else is treated as transient.
func (m *Mail) Send(ctx context.Context, msg mail.Message) error {
	ctx, span := m.ins.Tracer("notification.outbound.email").Start(ctx, "Send",
		trace.WithAttributes(
			attribute.Int("mail.recipients", len(msg.To)+len(msg.Cc)+len(msg.Bcc)),
			attribute.String("mail.subject", msg.Subject),
		),
	)
	defer span.End()

	err := m.client.Send(ctx, msg)
	if err == nil {
		return nil
	}

	var reply *textproto.Error
	if errors.As(err, &reply) && reply.Code >= 500 {
		err = fmt.Errorf("%w: %w", entity.ErrMailRejected, err)
	}

	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
	return err
}
