package beses

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/ses"
	"github.com/aws/aws-sdk-go-v2/service/ses/types"
	"github.com/yusufsyaifudin/lamaran/backend"
	"github.com/yusufsyaifudin/lamaran/pkg/mailclient"
	"github.com/yusufsyaifudin/lamaran/pkg/tracer"
	"go.opentelemetry.io/otel/trace"
)

const Name = "ses"

// RawEmailAPI is the part of ses.Client used by the relay.
type RawEmailAPI interface {
	SendRawEmail(ctx context.Context, params *ses.SendRawEmailInput, optFns ...func(*ses.Options)) (*ses.SendRawEmailOutput, error)
}

// Sender sends the same MIME bytes as the smtp relay through AWS SES.
// SES only accepts verified From addresses, so the header From is the relay account
// and the applicant stays reachable through Reply-To.
type Sender struct {
	api     RawEmailAPI
	account string
}

var _ backend.Relay = (*Sender)(nil)

func New(api RawEmailAPI, account string) (*Sender, error) {
	if api == nil {
		return nil, fmt.Errorf("nil ses api")
	}

	if account == "" {
		return nil, fmt.Errorf("empty ses account")
	}

	return &Sender{api: api, account: account}, nil
}

// Factory loads the default aws credential chain for the configured region.
func Factory(ctx context.Context, cfg backend.Config) (backend.Relay, error) {
	if cfg.SES.Region == "" {
		return nil, fmt.Errorf("ses region is not configured")
	}

	awsCfg, err := config.LoadDefaultConfig(ctx, config.WithRegion(cfg.SES.Region))
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}

	return New(ses.NewFromConfig(awsCfg), cfg.Account)
}

func (s *Sender) Send(ctx context.Context, email mailclient.Email) (report *backend.Report, err error) {
	var span trace.Span
	ctx, span = tracer.StartSpan(ctx, "beses.Send")
	defer span.End()

	if email.ReplyTo == "" {
		email.ReplyTo = email.From
	}

	email.From = s.account

	raw, err := mailclient.RawMessage(email)
	if err != nil {
		return
	}

	out, err := s.api.SendRawEmail(ctx, &ses.SendRawEmailInput{
		RawMessage:   &types.RawMessage{Data: raw},
		Source:       aws.String(email.Sender),
		Destinations: email.To,
	})
	if err != nil {
		err = fmt.Errorf("ses relay: %w", err)
		return
	}

	report = &backend.Report{
		Relay:          Name,
		MessageID:      aws.ToString(out.MessageId),
		NativeResponse: out,
	}

	return
}

func (s *Sender) Close() error {
	return nil
}
