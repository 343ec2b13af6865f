package mailclient

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRawMessage(t *testing.T) {
	email := testEmail("hr@acme.test")
	email.Headers = map[string]string{"X-Application-ID": "123"}

	raw, err := RawMessage(email)
	require.NoError(t, err)

	msg := string(raw)
	assert.Contains(t, msg, "From: jane@example.com")
	assert.Contains(t, msg, "To: hr@acme.test")
	assert.Contains(t, msg, "Reply-To: jane@example.com")
	assert.Contains(t, msg, "Message-ID: <123@example.com>")
	assert.Contains(t, msg, "X-Application-ID: 123")
	assert.Contains(t, msg, "multipart/mixed")
	assert.Contains(t, msg, "multipart/alternative")
	assert.Contains(t, msg, "text/plain")
	assert.Contains(t, msg, "text/html")
	assert.Contains(t, msg, `filename="cv.pdf"`)
	assert.Contains(t, msg, "application/pdf")
}

func TestRawMessage_NoOptionalHeaders(t *testing.T) {
	email := testEmail("hr@acme.test")
	email.ID = ""
	email.ReplyTo = ""
	email.Attachments = nil

	raw, err := RawMessage(email)
	require.NoError(t, err)

	msg := string(raw)
	assert.NotContains(t, msg, "Message-ID:")
	assert.NotContains(t, msg, "Reply-To:")
	assert.NotContains(t, msg, "multipart/mixed")
}

func TestPlainText(t *testing.T) {
	html := `<html><body>
		<h1>Dear   Hiring Manager,</h1>

		<p>I am <b>excited</b> to apply &amp; join.</p>
		<script>alert(1)</script>
	</body></html>`

	text := PlainText(html)
	assert.Equal(t, "Dear Hiring Manager,\nI am excited to apply & join.", text)
}

func TestDomainOf(t *testing.T) {
	assert.Equal(t, "example.com", domainOf("owner@example.com"))
	assert.Equal(t, "example.com", domainOf("Owner <owner@example.com>"))
	assert.Equal(t, "localhost", domainOf("owner"))
	assert.Equal(t, "localhost", domainOf("owner@"))
}
