package backend

import (
	"context"
	"fmt"

	"github.com/yusufsyaifudin/lamaran/pkg/mailclient"
	"github.com/yusufsyaifudin/lamaran/pkg/validator"
	"github.com/yusufsyaifudin/ylog"
)

const RelayNoop = "noop"

// NoopBackend logs the email and discards it. Used for local development.
type NoopBackend struct{}

var _ Relay = (*NoopBackend)(nil)

func NewNoopSender() *NoopBackend {
	be := &NoopBackend{}

	return be
}

// NoopFactory is the Factory of NoopBackend, the configuration is ignored.
func NoopFactory(_ context.Context, _ Config) (Relay, error) {
	return NewNoopSender(), nil
}

func (b *NoopBackend) Send(ctx context.Context, email mailclient.Email) (report *Report, err error) {
	err = validator.Validate(email)
	if err != nil {
		err = fmt.Errorf("noop relay invalid email: %w", err)
		return
	}

	ylog.Info(ctx, "noop relay discard email", ylog.KV("email", map[string]any{
		"id":          email.ID,
		"from":        email.From,
		"to":          email.To,
		"subject":     email.Subject,
		"html_length": len(email.HTML),
		"attachments": len(email.Attachments),
	}))

	report = &Report{
		Relay:     RelayNoop,
		MessageID: email.ID,
	}

	return
}

func (b *NoopBackend) Close() error {
	return nil
}
