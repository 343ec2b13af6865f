package backend

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yusufsyaifudin/lamaran/pkg/mailclient"
)

var once sync.Once

func testEmail() mailclient.Email {
	return mailclient.Email{
		ID:      "1",
		Sender:  "owner@example.com",
		From:    "jane@example.com",
		To:      []string{"hr@acme.test"},
		Subject: "Cover Letter for Backend Engineer",
		HTML:    "<p>Hello</p>",
	}
}

func TestRelayMultiplexer_Register(t *testing.T) {
	mux := NewRelayMultiplexer()

	tests := []struct {
		name    string
		relay   string
		factory Factory
		wantErr bool
	}{
		{name: "ok", relay: "noop", factory: NoopFactory},
		{name: "empty name", relay: "  ", factory: NoopFactory, wantErr: true},
		{name: "upper case", relay: "Noop", factory: NoopFactory, wantErr: true},
		{name: "nil factory", relay: "other", factory: nil, wantErr: true},
		{name: "duplicate", relay: "noop", factory: NoopFactory, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := mux.Register(tt.relay, tt.factory)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}

			assert.NoError(t, err)
		})
	}

	err := mux.Register("noop", NoopFactory)
	assert.True(t, errors.Is(err, ErrRelayAlreadyRegistered))
}

func TestRelayMultiplexer_New(t *testing.T) {
	mux := NewRelayMultiplexer()
	require.NoError(t, mux.Register("noop", NoopFactory))
	require.NoError(t, mux.Register("broken", func(ctx context.Context, cfg Config) (Relay, error) {
		return nil, fmt.Errorf("missing api key")
	}))
	require.NoError(t, mux.Register("nil", func(ctx context.Context, cfg Config) (Relay, error) {
		return nil, nil
	}))

	ctx := context.Background()
	assert.Equal(t, []string{"broken", "nil", "noop"}, mux.ListRelays(ctx))

	relay, err := mux.New(ctx, "noop", Config{Account: "owner@example.com"})
	require.NoError(t, err)
	require.NotNil(t, relay)

	report, err := relay.Send(ctx, testEmail())
	require.NoError(t, err)
	assert.Equal(t, RelayNoop, report.Relay)
	assert.Equal(t, "1", report.MessageID)
	assert.NoError(t, relay.Close())

	_, err = mux.New(ctx, "smtp", Config{})
	assert.True(t, errors.Is(err, ErrRelayNotRegistered))

	_, err = mux.New(ctx, "broken", Config{})
	assert.ErrorContains(t, err, "missing api key")

	_, err = mux.New(ctx, "nil", Config{})
	assert.Error(t, err)
}

func TestNoopBackend_SendInvalid(t *testing.T) {
	email := testEmail()
	email.To = nil

	report, err := NewNoopSender().Send(context.Background(), email)
	assert.Nil(t, report)
	assert.Error(t, err)
}

func BenchmarkRelayMultiplexer_Send(b *testing.B) {
	once.Do(func() {
		MustRegister(RelayNoop, NoopFactory)
	})

	ctx := context.Background()
	relay, err := MuxBackend().New(ctx, RelayNoop, Config{})
	if err != nil {
		b.Fatal(err)
	}

	for i := 0; i < b.N; i++ {
		email := testEmail()
		email.ID = fmt.Sprintf("ref-%d", i)

		_, err = relay.Send(ctx, email)
		if err != nil {
			b.Logf("error send: %s\n", err)
		}
	}
}
