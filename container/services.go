package container

import (
	"context"
	"fmt"
	"hash/fnv"
	"os"
	"time"

	"github.com/sony/sonyflake"
	"github.com/yusufsyaifudin/lamaran/backend"
	"github.com/yusufsyaifudin/lamaran/internal/svc/applicationsvc"
	"github.com/yusufsyaifudin/ylog"
)

type Services interface {
	Relay() backend.Relay
	Application() applicationsvc.Service
}

type ServicesImpl struct {
	relay       backend.Relay
	application applicationsvc.Service
	closer      []Closer
}

var _ Services = (*ServicesImpl)(nil)

// SetupServices builds the relay selected by cfg.Mail.Relay from the global backend registry
// and the application service on top of it. Close must be called even when an error is returned.
func SetupServices(ctx context.Context, cfg Config) (svc *ServicesImpl, err error) {
	return SetupServicesWith(ctx, cfg, backend.MuxBackend())
}

func SetupServicesWith(ctx context.Context, cfg Config, mux backend.RelayMux) (svc *ServicesImpl, err error) {
	svc = &ServicesImpl{}

	if mux == nil {
		err = fmt.Errorf("nil relay registry on services preparation")
		return
	}

	relay, err := mux.New(ctx, cfg.Mail.Relay, cfg.Mail.RelayConfig())
	if err != nil {
		err = fmt.Errorf("services cannot prepare relay: %w", err)
		return
	}

	svc.relay = relay
	svc.closer = append(svc.closer, NewNamedCloser("relay "+cfg.Mail.Relay, relay))
	ylog.Info(ctx, "relay prepared", ylog.KV("relay", cfg.Mail.Relay))

	uidGen := sonyflake.NewSonyflake(sonyflake.Settings{
		StartTime: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		MachineID: machineID,
	})

	if uidGen == nil {
		err = fmt.Errorf("uid generator is nil")
		return
	}

	appSvc, err := applicationsvc.New(applicationsvc.Config{
		Relay:             relay,
		IDGen:             uidGen,
		Account:           cfg.Mail.Account,
		FallbackRecipient: cfg.Mail.FallbackRecipient,
		DefaultCV: applicationsvc.DefaultCV{
			Path:     cfg.CV.DefaultPath,
			Filename: cfg.CV.DefaultFilename,
		},
		Links: cfg.ProfileLinks(),
	})
	if err != nil {
		err = fmt.Errorf("services cannot prepare application service: %w", err)
		return
	}

	svc.application = appSvc
	return svc, nil
}

// machineID does not depend on a private IPv4 address being available, unlike the sonyflake default.
func machineID() (uint16, error) {
	host, err := os.Hostname()
	if err != nil {
		host = "localhost"
	}

	h := fnv.New32a()
	_, _ = fmt.Fprintf(h, "%s/%d", host, os.Getpid())
	return uint16(h.Sum32()), nil
}

func (s *ServicesImpl) Relay() backend.Relay {
	return s.relay
}

func (s *ServicesImpl) Application() applicationsvc.Service {
	return s.application
}

// Close closes every prepared resource, in reverse order of preparation.
func (s *ServicesImpl) Close() error {
	return CloseAll(s.closer)
}
