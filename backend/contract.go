package backend

import (
	"context"
	"fmt"
	"io"

	"github.com/yusufsyaifudin/lamaran/pkg/mailclient"
)

var (
	ErrRelayAlreadyRegistered = fmt.Errorf("relay already registered")
	ErrRelayNotRegistered     = fmt.Errorf("relay not registered")
)

// Relay is one outbound mail session. It is created once at process start and shared by all requests.
type Relay interface {
	io.Closer

	// Send hands one composed email to the relay. It must not retry.
	Send(ctx context.Context, email mailclient.Email) (report *Report, err error)
}

// Factory builds a Relay from the process configuration.
type Factory func(ctx context.Context, cfg Config) (Relay, error)

// RelayMux used by internal application to build the Relay selected by name in the configuration.
type RelayMux interface {
	// New builds the relay registered under name.
	New(ctx context.Context, name string, cfg Config) (Relay, error)

	// ListRelays will return all available relays registered in global RelayMux, sorted by name.
	ListRelays(ctx context.Context) (relays []string)
}

// Config carries the settings for every known relay, each relay only reads its own part.
type Config struct {
	// Account is the mailbox the relay authenticates as. It is the envelope sender.
	Account string `yaml:"account" validate:"required,email"`

	SMTP   *mailclient.EmailCredential `yaml:"smtp"`
	SES    SESConfig                   `yaml:"ses"`
	Resend ResendConfig                `yaml:"resend"`
}

type SESConfig struct {
	Region string `yaml:"region"`
}

type ResendConfig struct {
	APIKey string `yaml:"apiKey"`
}

// Report is a struct that hold the relay answer of one send.
type Report struct {
	Relay          string `json:"relay"`
	MessageID      string `json:"message_id"`
	NativeResponse any    `json:"native_response,omitempty"`
}
