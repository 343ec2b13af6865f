package extd

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/satori/uuid"
	"github.com/yusufsyaifudin/lamaran/assets"
	"github.com/yusufsyaifudin/lamaran/backend"
	"github.com/yusufsyaifudin/lamaran/backend/beresend"
	"github.com/yusufsyaifudin/lamaran/backend/beses"
	"github.com/yusufsyaifudin/lamaran/backend/besmtp"
	"github.com/yusufsyaifudin/lamaran/container"
	"github.com/yusufsyaifudin/lamaran/pkg/tracer"
	"github.com/yusufsyaifudin/lamaran/transport/restapi"
	"github.com/yusufsyaifudin/ylog"
	jaegerPropagator "go.opentelemetry.io/contrib/propagators/jaeger"
	"go.opentelemetry.io/contrib/propagators/ot"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/jaeger"
	"go.opentelemetry.io/otel/propagation"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"golang.org/x/net/http2"
	"golang.org/x/net/http2/h2c"
)

// AppVersion is overridden at build time with -ldflags.
var AppVersion = "1.0.0"

// RunServer located in extd (extended) to add capability extends backend if you want to create custom relay.
// Custom relays must be registered with backend.Register before calling RunServer.
func RunServer(ctx context.Context, cfg container.Config) (err error) {

	if ctx == nil {
		ctx = context.TODO()
	}

	ctx = SetupLog(ctx)

	// ** tracing, only exported when a collector is configured
	if cfg.Tracing.JaegerEndpoint != "" {
		exp, _err := jaeger.New(
			jaeger.WithCollectorEndpoint(jaeger.WithEndpoint(cfg.Tracing.JaegerEndpoint)),
		)
		if _err != nil {
			err = fmt.Errorf("cannot setup jaeger exporter: %w", _err)
			ylog.Error(ctx, "cannot setup jaeger exporter", ylog.KV("error", _err))
			return
		}

		tp := tracer.InitTraceProvider(exp, cfg.AppEnv)
		defer func() {
			if _err := tp.Shutdown(context.Background()); _err != nil {
				ylog.Error(ctx, "tracer provider shutdown: failed", ylog.KV("error", _err))
			}
		}()
	}

	// register ot propagator
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
		&ot.OT{},
		&jaegerPropagator.Jaeger{},
	))

	err = RegisterDefaultRelays(ctx)
	if err != nil {
		ylog.Error(ctx, "relay registration: failed", ylog.KV("error", err))
		return
	}

	// ** START SERVICES using the configured relay
	ylog.Info(ctx, "services preparation: starting")
	services, err := container.SetupServices(ctx, cfg)
	defer func() {
		ylog.Info(ctx, "closing services: starting")
		if services == nil {
			ylog.Info(ctx, "closing services: no need to close")
			return
		}

		if _err := services.Close(); _err != nil {
			ylog.Error(ctx, "closing services: failed", ylog.KV("error", _err))
		}

		ylog.Info(ctx, "closing services: done")
	}()

	if err != nil {
		ylog.Error(ctx, "service preparation: failed", ylog.KV("error", err))
		return
	}

	ylog.Info(ctx, "services preparation: done")

	// ** HTTP TRANSPORT
	serverURLs := make([]string, 0)
	if appURL := cfg.AppURL(); appURL != "" {
		serverURLs = append(serverURLs, appURL)
	}

	serverConfig := restapi.Config{
		AppServiceName:     assets.ServiceName,
		AppVersion:         AppVersion,
		ApplicationService: services.Application(),
		MaxUploadBytes:     cfg.Transport.HTTP.MaxUploadBytes,
		DebugError:         cfg.DebugError(),
		AllowedOrigins:     cfg.Transport.HTTP.AllowedOrigins,
		DefaultCVPath:      cfg.CV.DefaultPath,
		DefaultCVFilename:  cfg.CV.DefaultFilename,
		ServerURLs:         serverURLs,
	}

	ylog.Info(ctx, "http transport: starting")
	server, err := restapi.NewHTTPTransport(serverConfig)
	if err != nil {
		ylog.Error(ctx, "http transport: failed", ylog.KV("error", err))
		return
	}

	httpPort := fmt.Sprintf(":%d", cfg.Transport.HTTP.Port)
	h2s := &http2.Server{}
	httpServer := &http.Server{
		Addr:              httpPort,
		Handler:           h2c.NewHandler(server.Server(), h2s), // HTTP/2 Cleartext handler
		ReadHeaderTimeout: 10 * time.Second,
	}

	var apiErrChan = make(chan error, 1)
	go func() {
		ylog.Info(ctx, fmt.Sprintf("http transport: done running on port %d", cfg.Transport.HTTP.Port))
		apiErrChan <- httpServer.ListenAndServe()
	}()

	ylog.Info(ctx, "system: up and running...",
		ylog.KV("relay", cfg.Mail.Relay),
		ylog.KV("env", cfg.AppEnv),
	)

	// ** listen for sigterm signal
	var signalChan = make(chan os.Signal, 1)
	signal.Notify(signalChan, os.Interrupt, syscall.SIGTERM)
	select {
	case <-signalChan:
		ylog.Info(ctx, "system: exiting...")
		ylog.Info(ctx, "http transport: exiting...")

		shutdownCtx, cancel := context.WithTimeout(ctx, shutdownTimeout(cfg))
		defer cancel()

		if _err := httpServer.Shutdown(shutdownCtx); _err != nil {
			ylog.Error(ctx, "http transport: ", ylog.KV("error", _err))
		}

	case _err := <-apiErrChan:
		if _err != nil && !errors.Is(_err, http.ErrServerClosed) {
			err = fmt.Errorf("http transport error: %w", _err)
			ylog.Info(ctx, "http transport: error", ylog.KV("error", _err))
		}
	}

	return
}

func shutdownTimeout(cfg container.Config) time.Duration {
	if cfg.Transport.HTTP.ShutdownTimeout > 0 {
		return cfg.Transport.HTTP.ShutdownTimeout
	}

	return 10 * time.Second
}

// SetupLog sets the global zap backed logger and returns ctx carrying the system tracer data.
func SetupLog(ctx context.Context) context.Context {

	core := zapcore.NewCore(
		zapcore.NewJSONEncoder(zapcore.EncoderConfig{
			TimeKey:        "ts",
			MessageKey:     "msg",
			EncodeDuration: zapcore.MillisDurationEncoder,
			EncodeTime:     zapcore.RFC3339NanoTimeEncoder,
			LineEnding:     zapcore.DefaultLineEnding,
			LevelKey:       "level",
			EncodeLevel:    zapcore.LowercaseLevelEncoder,
		}),
		zapcore.NewMultiWriteSyncer(zapcore.AddSync(os.Stdout)), // pipe to multiple writer
		zapcore.DebugLevel,
	)

	zapLog := zap.New(core)

	propagateData := tracer.LogData{
		RemoteAddr: "system",
		TraceID:    uuid.NewV4().String(),
	}

	traceLog, err := ylog.NewTracer(propagateData, ylog.WithTag("tracer"))
	if err != nil {
		log.Fatalf("error prepare tracer system data: %s", err)
		return ctx
	}

	// inject context
	ctx = ylog.Inject(ctx, traceLog)

	// ** set global logger
	ylog.SetGlobalLogger(ylog.NewZap(zapLog))

	return ctx
}

// RegisterDefaultRelays registers every built-in relay on the global registry.
// Relays already registered under the same name are left untouched.
func RegisterDefaultRelays(ctx context.Context) (err error) {
	relays := []struct {
		name    string
		factory backend.Factory
	}{
		{name: backend.RelayNoop, factory: backend.NoopFactory},
		{name: besmtp.Name, factory: besmtp.Factory},
		{name: beses.Name, factory: beses.Factory},
		{name: beresend.Name, factory: beresend.Factory},
	}

	for _, relay := range relays {
		_err := backend.Register(relay.name, relay.factory)
		if errors.Is(_err, backend.ErrRelayAlreadyRegistered) {
			continue
		}

		if _err != nil {
			err = fmt.Errorf("register relay %s failed: %w", relay.name, _err)
			return
		}

		ylog.Debug(ctx, "relay registered", ylog.KV("relay", relay.name))
	}

	return
}
