package beresend

import (
	"context"
	"fmt"
	"testing"

	"github.com/resend/resend-go/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yusufsyaifudin/lamaran/backend"
	"github.com/yusufsyaifudin/lamaran/pkg/mailclient"
)

type fakeEmails struct {
	req *resend.SendEmailRequest
	err error
}

func (f *fakeEmails) SendWithContext(_ context.Context, params *resend.SendEmailRequest) (*resend.SendEmailResponse, error) {
	f.req = params
	if f.err != nil {
		return nil, f.err
	}

	return &resend.SendEmailResponse{Id: "re-1"}, nil
}

func TestSender_Send(t *testing.T) {
	emails := &fakeEmails{}
	s, err := New(emails, "owner@example.com")
	require.NoError(t, err)

	report, err := s.Send(context.Background(), mailclient.Email{
		ID:      "1",
		Sender:  "owner@example.com",
		From:    "jane@example.com",
		To:      []string{"hr@acme.test"},
		Subject: "Cover Letter for Backend Engineer",
		HTML:    "<p>Hello <b>there</b></p>",
		Headers: map[string]string{"X-Application-ID": "1"},
		Attachments: []mailclient.Attachment{
			{Filename: "cv.pdf", ContentType: "application/pdf", Content: []byte("%PDF")},
		},
	})
	require.NoError(t, err)
	assert.Equal(t, "re-1", report.MessageID)
	assert.Equal(t, Name, report.Relay)

	require.NotNil(t, emails.req)
	assert.Equal(t, "owner@example.com", emails.req.From)
	assert.Equal(t, "jane@example.com", emails.req.ReplyTo)
	assert.Equal(t, "Hello there", emails.req.Text)
	assert.Equal(t, "1", emails.req.Headers["X-Application-ID"])
	require.Len(t, emails.req.Attachments, 1)
	assert.Equal(t, "cv.pdf", emails.req.Attachments[0].Filename)
}

func TestSender_SendError(t *testing.T) {
	s, err := New(&fakeEmails{err: fmt.Errorf("unauthorized")}, "owner@example.com")
	require.NoError(t, err)

	report, err := s.Send(context.Background(), mailclient.Email{From: "jane@example.com"})
	assert.Nil(t, report)
	assert.ErrorContains(t, err, "unauthorized")
}

func TestFactory(t *testing.T) {
	_, err := Factory(context.Background(), backend.Config{Account: "owner@example.com"})
	assert.Error(t, err)

	relay, err := Factory(context.Background(), backend.Config{
		Account: "owner@example.com",
		Resend:  backend.ResendConfig{APIKey: "re_test"},
	})
	require.NoError(t, err)
	assert.NoError(t, relay.Close())
}
