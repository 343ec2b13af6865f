package beresend

import (
	"context"
	"fmt"

	"github.com/resend/resend-go/v3"
	"github.com/yusufsyaifudin/lamaran/backend"
	"github.com/yusufsyaifudin/lamaran/pkg/mailclient"
	"github.com/yusufsyaifudin/lamaran/pkg/tracer"
	"go.opentelemetry.io/otel/trace"
)

const Name = "resend"

// EmailsAPI is the part of resend.EmailsSvc used by the relay.
type EmailsAPI interface {
	SendWithContext(ctx context.Context, params *resend.SendEmailRequest) (*resend.SendEmailResponse, error)
}

// Sender implements backend.Relay using the Resend API.
// Like ses, the header From is the relay account and the applicant goes to Reply-To.
type Sender struct {
	emails  EmailsAPI
	account string
}

var _ backend.Relay = (*Sender)(nil)

func New(emails EmailsAPI, account string) (*Sender, error) {
	if emails == nil {
		return nil, fmt.Errorf("nil resend emails api")
	}

	if account == "" {
		return nil, fmt.Errorf("empty resend account")
	}

	return &Sender{emails: emails, account: account}, nil
}

func Factory(_ context.Context, cfg backend.Config) (backend.Relay, error) {
	if cfg.Resend.APIKey == "" {
		return nil, fmt.Errorf("resend api key is not configured")
	}

	return New(resend.NewClient(cfg.Resend.APIKey).Emails, cfg.Account)
}

func (s *Sender) Send(ctx context.Context, email mailclient.Email) (report *backend.Report, err error) {
	var span trace.Span
	ctx, span = tracer.StartSpan(ctx, "beresend.Send")
	defer span.End()

	replyTo := email.ReplyTo
	if replyTo == "" {
		replyTo = email.From
	}

	text := email.Text
	if text == "" {
		text = mailclient.PlainText(email.HTML)
	}

	req := &resend.SendEmailRequest{
		From:    s.account,
		To:      email.To,
		Subject: email.Subject,
		Html:    email.HTML,
		Text:    text,
		ReplyTo: replyTo,
		Headers: email.Headers,
	}

	if len(email.Attachments) > 0 {
		req.Attachments = convertAttachments(email.Attachments)
	}

	resp, err := s.emails.SendWithContext(ctx, req)
	if err != nil {
		err = fmt.Errorf("resend relay: %w", err)
		return
	}

	report = &backend.Report{
		Relay:          Name,
		MessageID:      resp.Id,
		NativeResponse: resp,
	}

	return
}

func (s *Sender) Close() error {
	return nil
}

func convertAttachments(attachments []mailclient.Attachment) []*resend.Attachment {
	result := make([]*resend.Attachment, len(attachments))
	for i, a := range attachments {
		result[i] = &resend.Attachment{
			Filename:    a.Filename,
			Content:     a.Content,
			ContentType: a.ContentType,
		}
	}
	return result
}
