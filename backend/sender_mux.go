package backend

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"unicode/utf8"

	"github.com/yusufsyaifudin/lamaran/pkg/tracer"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

type RelayMultiplexer struct {
	lock    sync.RWMutex
	factory map[string]Factory
}

var _ RelayMux = (*RelayMultiplexer)(nil)

var beMux = NewRelayMultiplexer()

func NewRelayMultiplexer() *RelayMultiplexer {
	return &RelayMultiplexer{
		factory: map[string]Factory{},
	}
}

func MuxBackend() RelayMux {
	return beMux
}

func MustRegister(name string, factory Factory) {
	err := Register(name, factory)
	if err != nil {
		panic(err)
	}
}

// Register new relay name with the implemented Factory into the global RelayMux.
func Register(name string, factory Factory) (err error) {
	return beMux.Register(name, factory)
}

func (s *RelayMultiplexer) Register(name string, factory Factory) (err error) {
	name = strings.TrimSpace(name)
	if name == "" {
		err = fmt.Errorf("cannot assign empty relay name")
		return
	}

	if name != strings.ToLower(name) {
		err = fmt.Errorf("relay name must only contain lower case")
		return
	}

	if !utf8.ValidString(name) {
		err = fmt.Errorf("relay name must only use utf8 characters")
		return
	}

	if factory == nil {
		err = fmt.Errorf("cannot assign nil factory")
		return
	}

	s.lock.Lock()
	defer s.lock.Unlock()

	if _, exist := s.factory[name]; exist {
		err = fmt.Errorf("%w '%s'", ErrRelayAlreadyRegistered, name)
		return
	}

	s.factory[name] = factory
	return
}

func (s *RelayMultiplexer) New(ctx context.Context, name string, cfg Config) (relay Relay, err error) {
	var span trace.Span
	ctx, span = tracer.StartSpan(ctx, "backendmux.New", trace.WithAttributes(attribute.String("relay", name)))
	defer span.End()

	s.lock.RLock()
	factory, exist := s.factory[name]
	s.lock.RUnlock()

	if !exist {
		err = fmt.Errorf("%w: '%s', available: %s", ErrRelayNotRegistered, name, strings.Join(s.ListRelays(ctx), ", "))
		return
	}

	relay, err = factory(ctx, cfg)
	if err != nil {
		err = fmt.Errorf("relay '%s': %w", name, err)
		return
	}

	if relay == nil {
		err = fmt.Errorf("relay '%s' factory returned nil relay", name)
		return
	}

	return
}

func (s *RelayMultiplexer) ListRelays(_ context.Context) (relays []string) {
	s.lock.RLock()
	defer s.lock.RUnlock()

	relays = make([]string, 0, len(s.factory))
	for name := range s.factory {
		relays = append(relays, name)
	}

	sort.Strings(relays)
	return
}
