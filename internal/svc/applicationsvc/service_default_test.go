package applicationsvc

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yusufsyaifudin/lamaran/backend"
	"github.com/yusufsyaifudin/lamaran/pkg/mailclient"
	"github.com/yusufsyaifudin/lamaran/pkg/validator"
)

type fakeRelay struct {
	sent []mailclient.Email
	err  error
}

func (f *fakeRelay) Send(_ context.Context, email mailclient.Email) (*backend.Report, error) {
	if f.err != nil {
		return nil, f.err
	}

	f.sent = append(f.sent, email)
	return &backend.Report{Relay: "fake", MessageID: email.ID}, nil
}

func (f *fakeRelay) Close() error { return nil }

type seqID struct{ n uint64 }

func (s *seqID) NextID() (uint64, error) {
	s.n++
	return s.n, nil
}

var fixedNow = time.Date(2024, time.March, 5, 10, 0, 0, 0, time.UTC)

func validSubmission() Submission {
	return Submission{
		ApplicantName:      "Jane Doe",
		CurrentTitle:       "Backend Engineer",
		Email:              "jane@example.com",
		Phone:              "+62 812 3456 7890",
		Location:           "Jakarta",
		RoleTitle:          "Senior Go Engineer",
		CompanyName:        "Acme",
		CompanyEmail:       "hr@acme.test",
		Date:               "2024-03-05",
		HRName:             "Hiring Manager",
		HRTitle:            "Head of Talent",
		YearsExperience:    "5",
		Field:              "Distributed Systems",
		MainParagraph:      "I have spent five years building reliable payment services in Go at scale.",
		CompanyAttraction:  "your focus on developer experience",
		CompanyAchievement: "the launch of your open banking API",
		PreviousRole:       "Software Engineer",
		PreviousCompany:    "Globex",
		Achievement1:       "Cut p99 latency of the ledger service by half",
		Achievement2:       "Migrated forty services to Kubernetes with no downtime",
	}
}

func newTestService(t *testing.T, relay backend.Relay) *DefaultService {
	cvPath := filepath.Join(t.TempDir(), "resume.pdf")
	require.NoError(t, os.WriteFile(cvPath, []byte("%PDF-default"), 0o600))

	svc, err := New(Config{
		Relay:             relay,
		IDGen:             &seqID{},
		Account:           "owner@example.com",
		FallbackRecipient: "owner@example.com",
		DefaultCV:         DefaultCV{Path: cvPath, Filename: "Jane_Doe_CV.pdf"},
		Links: Links{
			LinkedinURL:  "https://linkedin.com/in/jane",
			GithubURL:    "https://github.com/jane",
			WebsiteURL:   "https://jane.dev",
			CVURL:        "https://jane.dev/resume.pdf",
			PortfolioURL: "https://jane.dev",
		},
		Now: func() time.Time { return fixedNow },
	})
	require.NoError(t, err)
	return svc
}

func TestNew(t *testing.T) {
	_, err := New(Config{})
	assert.Error(t, err)
}

func TestSubmission_Validate(t *testing.T) {
	assert.Nil(t, validSubmission().Validate())

	tests := []struct {
		name    string
		mutate  func(s *Submission)
		field   string
		message string
	}{
		{"short name", func(s *Submission) { s.ApplicantName = "J" }, "applicantName", "Name must be at least 2 characters"},
		{"bad email", func(s *Submission) { s.Email = "jane" }, "email", "Please enter a valid email address"},
		{"short phone", func(s *Submission) { s.Phone = "12345" }, "phone", "Please enter a valid phone number"},
		{"bad company email", func(s *Submission) { s.CompanyEmail = "hr@" }, "companyEmail", "Please enter a valid company email"},
		{"empty date", func(s *Submission) { s.Date = "" }, "date", "Date is required"},
		{"short paragraph", func(s *Submission) { s.MainParagraph = strings.Repeat("a", 49) }, "mainParagraph", "Main paragraph must be at least 50 characters"},
		{"short achievement", func(s *Submission) { s.Achievement2 = "did stuff" }, "achievement2", "Please describe your second achievement"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sub := validSubmission()
			tt.mutate(&sub)

			fields := sub.Validate()
			require.Len(t, fields, 1)
			assert.Equal(t, tt.message, fields[tt.field])
		})
	}

	t.Run("lengths count characters", func(t *testing.T) {
		sub := validSubmission()
		sub.ApplicantName = "李明"
		assert.Nil(t, sub.Validate())
	})

	t.Run("empty submission fails every required field", func(t *testing.T) {
		fields := Submission{}.Validate()
		assert.Len(t, fields, 19)
		assert.NotContains(t, fields, "companyEmail")
	})
}

func TestDefaultService_Submit(t *testing.T) {
	relay := &fakeRelay{}
	svc := newTestService(t, relay)

	sub := validSubmission()
	out, err := svc.Submit(context.Background(), InputSubmit{
		Submission: sub,
		CV:         &Attachment{Filename: "upload.pdf", Content: []byte("%PDF-upload")},
	})
	require.NoError(t, err)
	assert.True(t, out.Success)
	assert.Equal(t, MsgSent, out.Message)
	assert.Empty(t, out.Error)
	assert.Equal(t, "1", out.ID)

	require.Len(t, relay.sent, 1)
	email := relay.sent[0]
	assert.Equal(t, "owner@example.com", email.Sender)
	assert.Equal(t, "jane@example.com", email.From)
	assert.Equal(t, "jane@example.com", email.ReplyTo)
	assert.Equal(t, []string{"hr@acme.test"}, email.To)
	assert.Equal(t, "Cover Letter for Senior Go Engineer", email.Subject)
	assert.Equal(t, "1", email.Headers[HeaderApplicationID])

	require.Len(t, email.Attachments, 1)
	assert.Equal(t, "upload.pdf", email.Attachments[0].Filename)
	assert.Equal(t, ContentTypePDF, email.Attachments[0].ContentType)
	assert.Equal(t, []byte("%PDF-upload"), email.Attachments[0].Content)

	for _, value := range []string{
		sub.ApplicantName, sub.CurrentTitle, sub.Email, sub.Phone, sub.Location,
		sub.HRName, sub.HRTitle, sub.CompanyName, sub.RoleTitle, sub.YearsExperience,
		sub.Field, sub.MainParagraph, sub.CompanyAttraction, sub.CompanyAchievement,
		sub.PreviousRole, sub.PreviousCompany, sub.Achievement1, sub.Achievement2,
		"https://linkedin.com/in/jane", "https://github.com/jane", "https://jane.dev/resume.pdf",
		"3/5/2024",
	} {
		assert.Contains(t, email.HTML, value)
	}
}

func TestDefaultService_SubmitFallbacks(t *testing.T) {
	relay := &fakeRelay{}
	svc := newTestService(t, relay)

	sub := validSubmission()
	sub.CompanyEmail = ""

	out, err := svc.Submit(context.Background(), InputSubmit{Submission: sub})
	require.NoError(t, err)
	assert.True(t, out.Success)

	require.Len(t, relay.sent, 1)
	email := relay.sent[0]
	assert.Equal(t, []string{"owner@example.com"}, email.To)

	require.Len(t, email.Attachments, 1)
	assert.Equal(t, "Jane_Doe_CV.pdf", email.Attachments[0].Filename)
	assert.Equal(t, ContentTypePDF, email.Attachments[0].ContentType)
	assert.Equal(t, []byte("%PDF-default"), email.Attachments[0].Content)
}

func TestDefaultService_SubmitInvalid(t *testing.T) {
	relay := &fakeRelay{}
	svc := newTestService(t, relay)

	sub := validSubmission()
	sub.ApplicantName = "J"

	_, err := svc.Submit(context.Background(), InputSubmit{Submission: sub})
	require.Error(t, err)

	var fields validator.FieldErrors
	require.True(t, errors.As(err, &fields))
	assert.Equal(t, "Name must be at least 2 characters", fields["applicantName"])
	assert.Empty(t, relay.sent, "nothing is sent for an invalid submission")
}

func TestDefaultService_SubmitRelayFailure(t *testing.T) {
	relay := &fakeRelay{err: fmt.Errorf("535 authentication failed")}
	svc := newTestService(t, relay)

	out, err := svc.Submit(context.Background(), InputSubmit{Submission: validSubmission()})
	require.NoError(t, err)
	assert.False(t, out.Success)
	assert.Equal(t, MsgSendFailed, out.Message)
	assert.Contains(t, out.Error, "535 authentication failed")
	assert.NotEmpty(t, out.ID)
}

func TestDefaultService_SubmitMissingDefaultCV(t *testing.T) {
	relay := &fakeRelay{}
	svc := newTestService(t, relay)
	svc.Config.DefaultCV.Path = filepath.Join(t.TempDir(), "missing.pdf")

	out, err := svc.Submit(context.Background(), InputSubmit{Submission: validSubmission()})
	require.NoError(t, err)
	assert.False(t, out.Success)
	assert.Equal(t, MsgSendFailed, out.Message)
	assert.Contains(t, out.Error, "read default cv")
	assert.Empty(t, relay.sent)
}

func TestDefaultService_Preview(t *testing.T) {
	relay := &fakeRelay{}
	svc := newTestService(t, relay)

	out, err := svc.Preview(context.Background(), InputSubmit{Submission: validSubmission()})
	require.NoError(t, err)
	assert.Equal(t, "1", out.ID)
	assert.Contains(t, out.Email.HTML, "Jane Doe")
	assert.Empty(t, relay.sent)
}

func TestDefaultService_Defaults(t *testing.T) {
	svc := newTestService(t, &fakeRelay{})

	out := svc.Defaults(context.Background())
	assert.Equal(t, "2024-03-05", out.Submission.Date)
	assert.Equal(t, DefaultHRName, out.Submission.HRName)
	assert.Equal(t, DefaultHRTitle, out.Submission.HRTitle)
	assert.Equal(t, "1+", out.Submission.YearsExperience)
	assert.Equal(t, "Software Development", out.Submission.Field)
	assert.Empty(t, out.Submission.ApplicantName)

	fields := out.Submission.Validate()
	assert.NotContains(t, fields, "mainParagraph")
	assert.NotContains(t, fields, "achievement1")
	assert.NotContains(t, fields, "hrName")
}
