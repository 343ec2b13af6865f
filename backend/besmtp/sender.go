package besmtp

import (
	"context"
	"fmt"

	"github.com/yusufsyaifudin/lamaran/backend"
	"github.com/yusufsyaifudin/lamaran/pkg/mailclient"
	"github.com/yusufsyaifudin/lamaran/pkg/tracer"
	"go.opentelemetry.io/otel/trace"
)

const Name = "smtp"

type Sender struct {
	client mailclient.Client
}

var _ backend.Relay = (*Sender)(nil)

// New wraps any mailclient.Client as a relay.
func New(client mailclient.Client) (*Sender, error) {
	if client == nil {
		return nil, fmt.Errorf("nil mail client")
	}

	return &Sender{client: client}, nil
}

// Factory builds the smtp relay. The session is opened lazily on the first send.
func Factory(_ context.Context, cfg backend.Config) (backend.Relay, error) {
	if cfg.SMTP == nil {
		return nil, fmt.Errorf("smtp credential is not configured")
	}

	client, err := mailclient.NewSmtp(&mailclient.SmtpMailerConfig{
		EmailCredential: cfg.SMTP,
	})
	if err != nil {
		return nil, err
	}

	return New(client)
}

func (s *Sender) Send(ctx context.Context, email mailclient.Email) (report *backend.Report, err error) {
	var span trace.Span
	ctx, span = tracer.StartSpan(ctx, "besmtp.Send")
	defer span.End()

	err = s.client.Send(ctx, email)
	if err != nil {
		err = fmt.Errorf("smtp relay: %w", err)
		return
	}

	report = &backend.Report{
		Relay:     Name,
		MessageID: email.ID,
	}

	return
}

func (s *Sender) Close() error {
	return s.client.Close()
}
