package applicationsvc

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/yusufsyaifudin/lamaran/backend"
	"github.com/yusufsyaifudin/lamaran/internal/composer"
	"github.com/yusufsyaifudin/lamaran/pkg/mailclient"
	"github.com/yusufsyaifudin/lamaran/pkg/tracer"
	"github.com/yusufsyaifudin/lamaran/pkg/validator"
	"github.com/yusufsyaifudin/ylog"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

const (
	HeaderApplicationID = "X-Application-ID"
	ContentTypePDF      = "application/pdf"
	SentDateLayout      = "1/2/2006"
)

// IDGenerator is satisfied by *sonyflake.Sonyflake.
type IDGenerator interface {
	NextID() (uint64, error)
}

// Links are the applicant profile links rendered into every email.
type Links struct {
	LinkedinURL  string
	GithubURL    string
	WebsiteURL   string
	CVURL        string
	PortfolioURL string
}

type DefaultCV struct {
	Path     string `validate:"required"`
	Filename string `validate:"required"`
}

type Config struct {
	Relay backend.Relay `validate:"required"`
	IDGen IDGenerator   `validate:"required"`

	// Account is the relay mailbox, used as the envelope sender.
	Account string `validate:"required,email"`

	// FallbackRecipient receives the application when no company email is given.
	FallbackRecipient string `validate:"required,email"`

	DefaultCV DefaultCV `validate:"required"`
	Links     Links     `validate:"-"`

	Now func() time.Time `validate:"-"`
}

type DefaultService struct {
	Config Config
}

var _ Service = (*DefaultService)(nil)

func New(cfg Config) (*DefaultService, error) {
	err := validator.Validate(cfg)
	if err != nil {
		err = fmt.Errorf("application service config error: %w", err)
		return nil, err
	}

	if cfg.Now == nil {
		cfg.Now = time.Now
	}

	return &DefaultService{Config: cfg}, nil
}

func (s *DefaultService) Submit(ctx context.Context, input InputSubmit) (out OutSubmit, err error) {
	var span trace.Span
	ctx, span = tracer.StartSpan(ctx, "applicationsvc.Submit")
	defer span.End()

	prepared, err := s.Preview(ctx, input)
	var sendErr *SendError
	if errors.As(err, &sendErr) {
		span.RecordError(sendErr.Err)
		out = failed(sendErr.ID, sendErr.Err)
		err = nil
		return
	}

	if err != nil {
		return
	}

	out.ID = prepared.ID
	span.SetAttributes(attribute.String("application.id", out.ID))

	report, err := s.Config.Relay.Send(ctx, prepared.Email)
	if err != nil {
		ylog.Error(ctx, "application email not sent",
			ylog.KV("application_id", out.ID),
			ylog.KV("error", err),
		)

		span.RecordError(err)
		out = failed(out.ID, err)
		err = nil
		return
	}

	ylog.Info(ctx, "application email sent",
		ylog.KV("application_id", out.ID),
		ylog.KV("to", prepared.Email.To),
		ylog.KV("report", report),
	)

	out.Success = true
	out.Message = MsgSent
	out.Report = report
	return
}

// Preview returns validator.FieldErrors for an invalid submission
// and *SendError when the attachment cannot be read.
func (s *DefaultService) Preview(ctx context.Context, input InputSubmit) (out OutPreview, err error) {
	var span trace.Span
	ctx, span = tracer.StartSpan(ctx, "applicationsvc.Preview")
	defer span.End()

	if fields := input.Submission.Validate(); len(fields) > 0 {
		err = fields
		return
	}

	id, err := s.Config.IDGen.NextID()
	if err != nil {
		err = fmt.Errorf("generate application id: %w", err)
		return
	}

	out.ID = strconv.FormatUint(id, 10)

	attachment, err := s.attachment(input.CV)
	if err != nil {
		ylog.Error(ctx, "application attachment not available",
			ylog.KV("application_id", out.ID),
			ylog.KV("error", err),
		)

		err = &SendError{ID: out.ID, Err: err}
		return
	}

	sub := input.Submission
	html := composer.Compose(composer.Fields{
		ApplicantName:      sub.ApplicantName,
		CurrentTitle:       sub.CurrentTitle,
		Email:              sub.Email,
		Phone:              sub.Phone,
		Location:           sub.Location,
		HRName:             sub.HRName,
		HRTitle:            sub.HRTitle,
		CompanyName:        sub.CompanyName,
		RoleTitle:          sub.RoleTitle,
		YearsExperience:    sub.YearsExperience,
		Field:              sub.Field,
		MainParagraph:      sub.MainParagraph,
		CompanyAttraction:  sub.CompanyAttraction,
		CompanyAchievement: sub.CompanyAchievement,
		PreviousRole:       sub.PreviousRole,
		PreviousCompany:    sub.PreviousCompany,
		Achievement1:       sub.Achievement1,
		Achievement2:       sub.Achievement2,
		LinkedinURL:        s.Config.Links.LinkedinURL,
		GithubURL:          s.Config.Links.GithubURL,
		WebsiteURL:         s.Config.Links.WebsiteURL,
		CVURL:              s.Config.Links.CVURL,
		PortfolioURL:       s.Config.Links.PortfolioURL,
		SentDate:           s.Config.Now().Format(SentDateLayout),
	})

	out.Email = mailclient.Email{
		ID:      out.ID,
		Sender:  s.Config.Account,
		From:    sub.Email,
		ReplyTo: sub.Email,
		To:      []string{s.recipient(sub)},
		Subject: composer.Subject(sub.RoleTitle),
		HTML:    html,
		Headers: map[string]string{
			HeaderApplicationID: out.ID,
		},
		Attachments: []mailclient.Attachment{attachment},
	}

	return
}

func failed(id string, err error) OutSubmit {
	return OutSubmit{
		ID:      id,
		Success: false,
		Message: MsgSendFailed,
		Error:   err.Error(),
	}
}

func (s *DefaultService) Defaults(_ context.Context) (out OutDefaults) {
	out.Submission = DefaultSubmission(s.Config.Now())
	return
}

func (s *DefaultService) recipient(sub Submission) string {
	to := strings.TrimSpace(sub.CompanyEmail)
	if to == "" {
		return s.Config.FallbackRecipient
	}

	return to
}

func (s *DefaultService) attachment(cv *Attachment) (mailclient.Attachment, error) {
	if cv != nil && len(cv.Content) > 0 {
		contentType := cv.ContentType
		if contentType == "" {
			contentType = ContentTypePDF
		}

		filename := cv.Filename
		if filename == "" {
			filename = s.Config.DefaultCV.Filename
		}

		return mailclient.Attachment{
			Filename:    filename,
			ContentType: contentType,
			Content:     cv.Content,
		}, nil
	}

	content, err := os.ReadFile(s.Config.DefaultCV.Path)
	if err != nil {
		return mailclient.Attachment{}, fmt.Errorf("read default cv: %w", err)
	}

	return mailclient.Attachment{
		Filename:    s.Config.DefaultCV.Filename,
		ContentType: ContentTypePDF,
		Content:     content,
	}, nil
}

// SendError is returned by Preview when the email cannot be prepared for a reason other than invalid input.
type SendError struct {
	ID  string
	Err error
}

func (e *SendError) Error() string {
	return fmt.Sprintf("application %s: %s", e.ID, e.Err)
}

func (e *SendError) Unwrap() error {
	return e.Err
}
