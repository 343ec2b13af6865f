package mailclient

import (
	"bytes"
	"fmt"
	"html"
	"io"
	"strings"

	"github.com/microcosm-cc/bluemonday"
	"gopkg.in/gomail.v2"
)

var strictPolicy = bluemonday.StrictPolicy()

// NewMessage builds the MIME message: a text/html alternative part followed by the attachments.
func NewMessage(email Email) *gomail.Message {
	m := gomail.NewMessage(gomail.SetCharset("UTF-8"))
	m.SetHeader("From", email.From)
	m.SetHeader("To", email.To...)
	m.SetHeader("Subject", email.Subject)

	if email.ReplyTo != "" {
		m.SetHeader("Reply-To", email.ReplyTo)
	}

	if email.ID != "" {
		m.SetHeader("Message-ID", fmt.Sprintf("<%s@%s>", email.ID, domainOf(email.Sender)))
	}

	for k, v := range email.Headers {
		m.SetHeader(k, v)
	}

	text := email.Text
	if text == "" {
		text = PlainText(email.HTML)
	}

	m.SetBody("text/plain", text)
	m.AddAlternative("text/html", email.HTML)

	for _, attachment := range email.Attachments {
		content := attachment.Content
		settings := []gomail.FileSetting{
			gomail.SetCopyFunc(func(w io.Writer) error {
				_, err := w.Write(content)
				return err
			}),
		}

		if attachment.ContentType != "" {
			settings = append(settings, gomail.SetHeader(map[string][]string{
				"Content-Type": {fmt.Sprintf("%s; name=%q", attachment.ContentType, attachment.Filename)},
			}))
		}

		m.Attach(attachment.Filename, settings...)
	}

	return m
}

// WriteMessage writes the RFC 5322 representation of email into w.
func WriteMessage(w io.Writer, email Email) error {
	_, err := NewMessage(email).WriteTo(w)
	if err != nil {
		return fmt.Errorf("write mime message: %w", err)
	}

	return nil
}

// RawMessage returns the RFC 5322 representation of email.
func RawMessage(email Email) ([]byte, error) {
	buf := bytes.NewBuffer(nil)
	if err := WriteMessage(buf, email); err != nil {
		return nil, err
	}

	return buf.Bytes(), nil
}

// PlainText strips every tag from an HTML body and drops blank lines.
func PlainText(htmlBody string) string {
	text := html.UnescapeString(strictPolicy.Sanitize(htmlBody))

	lines := strings.Split(text, "\n")
	out := make([]string, 0, len(lines))
	for _, line := range lines {
		line = strings.Join(strings.Fields(line), " ")
		if line == "" {
			continue
		}

		out = append(out, line)
	}

	return strings.Join(out, "\n")
}

func domainOf(addr string) string {
	at := strings.LastIndex(addr, "@")
	if at < 0 || at == len(addr)-1 {
		return "localhost"
	}

	return strings.TrimSuffix(addr[at+1:], ">")
}
