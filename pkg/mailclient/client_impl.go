package mailclient

import (
	"context"
	"crypto/tls"
	"fmt"
	"io"
	"net"
	"sync"
	"time"

	"github.com/emersion/go-sasl"
	"github.com/emersion/go-smtp"
	"github.com/yusufsyaifudin/lamaran/pkg/tracer"
	"github.com/yusufsyaifudin/lamaran/pkg/validator"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/multierr"
)

const (
	// sessionTimeout bounds every network call when the caller context has no deadline.
	sessionTimeout = time.Minute
	closeTimeout   = 5 * time.Second
)

type SmtpMailerConfig struct {
	EmailCredential *EmailCredential `validate:"required"`
}

// DialFunc opens an authenticated smtp session.
type DialFunc func(ctx context.Context, cred *EmailCredential) (*smtp.Client, net.Conn, error)

// SmtpMailer holds one long-lived smtp session.
// Sends are serialized on the session.
type SmtpMailer struct {
	Config *SmtpMailerConfig
	dial   DialFunc
	smtp   *smtp.Client
	conn   net.Conn
	lock   sync.Mutex
}

var _ Client = (*SmtpMailer)(nil)

// NewSmtp will return new smtp client without any real connection is made.
// It will connect on the first Send.
func NewSmtp(cfg *SmtpMailerConfig) (*SmtpMailer, error) {
	return newSmtp(cfg, initClient)
}

func newSmtp(cfg *SmtpMailerConfig, dial DialFunc) (*SmtpMailer, error) {
	if cfg == nil {
		return nil, fmt.Errorf("nil smtp mailer config")
	}

	err := validator.Validate(cfg)
	if err != nil {
		err = fmt.Errorf("validation error: %w", err)
		return nil, err
	}

	client := &SmtpMailer{
		Config: cfg,
		dial:   dial,
	}

	return client, nil
}

// Send runs one mail transaction. A failed transaction discards the session,
// the next Send opens a new one.
func (m *SmtpMailer) Send(ctx context.Context, email Email) (err error) {
	var span trace.Span
	ctx, span = tracer.StartSpan(ctx, "mailclient.SmtpMailer.Send")
	defer span.End()

	err = validator.Validate(email)
	if err != nil {
		err = fmt.Errorf("invalid email: %w", err)
		return
	}

	m.lock.Lock()
	defer m.lock.Unlock()

	c, err := m.session(ctx)
	if err != nil {
		span.RecordError(err)
		return
	}

	defer m.clearDeadline()

	err = transaction(c, email)
	if err != nil {
		span.RecordError(err)
		m.discard()
		return
	}

	return
}

// session returns the open session, (re)connecting when there is none or the server dropped it.
func (m *SmtpMailer) session(ctx context.Context) (*smtp.Client, error) {
	if m.smtp != nil {
		// a silently dropped connection must not block past the caller deadline
		m.setDeadline(deadlineOf(ctx))

		// NOOP command to check if connection still ok
		if err := m.smtp.Noop(); err == nil {
			return m.smtp, nil
		}

		m.discard()
	}

	c, conn, err := m.dial(ctx, m.Config.EmailCredential)
	if err != nil {
		err = fmt.Errorf("failed to init smtp client: %w", err)
		return nil, err
	}

	if c == nil {
		return nil, fmt.Errorf("init smtp client still got nil client")
	}

	m.smtp = c
	m.conn = conn
	m.setDeadline(deadlineOf(ctx))
	return c, nil
}

func (m *SmtpMailer) setDeadline(t time.Time) {
	if m.conn != nil {
		_ = m.conn.SetDeadline(t)
	}
}

func (m *SmtpMailer) clearDeadline() {
	m.setDeadline(time.Time{})
}

func (m *SmtpMailer) discard() {
	if m.smtp != nil {
		_ = m.smtp.Close()
	}

	m.smtp = nil
	m.conn = nil
}

// Close .
// https://stackoverflow.com/questions/2468851/when-should-i-send-quit-to-smtp-server-and-how-long-should-i-keep-a-session
// https://stackoverflow.com/a/19670136/5489910
func (m *SmtpMailer) Close() error {
	m.lock.Lock()
	defer m.lock.Unlock()

	if m.smtp == nil {
		return nil
	}

	defer func() {
		m.smtp = nil
		m.conn = nil
	}()

	m.setDeadline(time.Now().Add(closeTimeout))

	var err error
	_err := m.smtp.Quit()
	if _err == nil {
		return nil
	}

	err = multierr.Append(err, fmt.Errorf("quit command error: %w", _err))
	_err = m.smtp.Close()
	if _err != nil {
		err = multierr.Append(err, fmt.Errorf("close command error: %w", _err))
	}

	return err
}

// ----- Function here is intended to have simple function (not as method handler in a struct),
// because it will be eaiser to debug and test. In addition, we can ensure it will not use the variable that stateful.

func transaction(c *smtp.Client, email Email) error {
	// RSET command is for aborting already started mail transaction (tools.ietf.org/html/rfc5321#section-4.1.1.5).
	err := c.Reset()
	if err != nil {
		return fmt.Errorf("RSET cmd failed: %w", err)
	}

	// New transaction is initiated using the MAIL command (tools.ietf.org/html/rfc5321#section-4.1.1.2).
	err = c.Mail(email.Sender, nil)
	if err != nil {
		return fmt.Errorf("MAIL cmd failed: %w", err)
	}

	for _, to := range email.To {
		err = c.Rcpt(to)
		if err != nil {
			return fmt.Errorf("error recipient %s: %w", to, err)
		}
	}

	var wc io.WriteCloser
	wc, err = c.Data()
	if err != nil {
		return fmt.Errorf("error data writer: %w", err)
	}

	err = WriteMessage(wc, email)
	if err != nil {
		_ = wc.Close()
		return fmt.Errorf("error data copy: %w", err)
	}

	err = wc.Close()
	if err != nil {
		return fmt.Errorf("error data close: %w", err)
	}

	return nil
}

func initClient(ctx context.Context, cred *EmailCredential) (*smtp.Client, net.Conn, error) {
	err := validator.Validate(cred)
	if err != nil {
		err = fmt.Errorf("validation on email credential error: %w", err)
		return nil, nil, err
	}

	smtpAddr := net.JoinHostPort(cred.ServerHost, fmt.Sprint(cred.ServerPort))
	tlsConfig := &tls.Config{ServerName: cred.ServerHost}

	dialer := net.Dialer{}
	conn, err := dialer.DialContext(ctx, "tcp", smtpAddr)
	if err != nil {
		err = fmt.Errorf("tcp dial error: %w", err)
		return nil, nil, err
	}

	// greeting, STARTTLS and AUTH share the caller deadline
	_ = conn.SetDeadline(deadlineOf(ctx))

	if cred.Protocol == ProtocolSMTPS {
		tlsConn := tls.Client(conn, tlsConfig)
		if err = tlsConn.HandshakeContext(ctx); err != nil {
			_ = conn.Close()
			err = fmt.Errorf("tls handshake error: %w", err)
			return nil, nil, err
		}

		conn = tlsConn
	}

	c, err := smtp.NewClient(conn, cred.ServerHost)
	if err != nil {
		_ = conn.Close()
		err = fmt.Errorf("error new smtp client: %w", err)
		return nil, nil, err
	}

	if cred.Protocol == ProtocolSMTP {
		err = c.StartTLS(tlsConfig)
		if err != nil {
			_ = c.Close()
			err = fmt.Errorf("error start tls: %w", err)
			return nil, nil, err
		}
	}

	err = c.Auth(sasl.NewPlainClient(cred.AuthIdentity, cred.Username, cred.Password))
	if err != nil {
		_ = c.Close()
		err = fmt.Errorf("error auth: %w", err)
		return nil, nil, err
	}

	err = c.Noop()
	if err != nil {
		_ = c.Close()
		err = fmt.Errorf("check smtp is not ok: %w", err)
		return nil, nil, err
	}

	return c, conn, nil
}

func deadlineOf(ctx context.Context) time.Time {
	if deadline, ok := ctx.Deadline(); ok {
		return deadline
	}

	return time.Now().Add(sessionTimeout)
}
