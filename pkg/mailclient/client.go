package mailclient

import (
	"context"
	"io"
)

// Client sends one composed email over an already configured relay.
type Client interface {
	io.Closer
	Send(ctx context.Context, email Email) error
}
