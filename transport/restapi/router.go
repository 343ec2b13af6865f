package restapi

import (
	"fmt"
	"net/http"
	"path"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/yusufsyaifudin/lamaran/assets"
	"github.com/yusufsyaifudin/lamaran/internal/svc/applicationsvc"
	"github.com/yusufsyaifudin/lamaran/pkg/tracer"
	"github.com/yusufsyaifudin/lamaran/pkg/validator"
	"github.com/yusufsyaifudin/lamaran/transport/restapi/apidoc"
	"github.com/yusufsyaifudin/lamaran/transport/restapi/handlerapplication"
	"go.opentelemetry.io/otel"
)

type Config struct {
	AppServiceName     string                 `validate:"required"`
	AppVersion         string                 `validate:"required"`
	ApplicationService applicationsvc.Service `validate:"required"`
	MaxUploadBytes     int64                  `validate:"required,min=1"`
	DebugError         bool
	AllowedOrigins     []string
	DefaultCVPath      string `validate:"required"`
	DefaultCVFilename  string `validate:"required"`

	// ServerURLs are listed in the openapi document.
	ServerURLs []string
}

type DefaultHTTP struct {
	router *chi.Mux
}

func NewHTTPTransport(cfg Config) (*DefaultHTTP, error) {
	if err := validator.Validate(cfg); err != nil {
		return nil, fmt.Errorf("http transport cfg error: %w", err)
	}

	// ** Application handler
	handlerAppCfg := handlerapplication.HandlerConfig{
		ApplicationService: cfg.ApplicationService,
		MaxUploadBytes:     cfg.MaxUploadBytes,
		DefaultCVPath:      cfg.DefaultCVPath,
		DefaultCVFilename:  cfg.DefaultCVFilename,
		DebugError:         cfg.DebugError,
	}

	handlerApp, err := handlerapplication.NewHandler(handlerAppCfg)
	if err != nil {
		return nil, err
	}

	// ** OpenAPI document, rendered once
	apiDoc, err := apidoc.New(cfg.AppServiceName, cfg.AppVersion, cfg.ServerURLs...).MarshalJSON()
	if err != nil {
		return nil, fmt.Errorf("http transport openapi document error: %w", err)
	}

	allowedOrigins := cfg.AllowedOrigins
	if len(allowedOrigins) == 0 {
		allowedOrigins = []string{"https://*", "http://*"}
	}

	router := chi.NewRouter()

	skip := func(r *http.Request) bool {
		switch strings.TrimSpace(path.Clean(r.URL.Path)) {
		case apidoc.PathOpenAPI,
			"/health",
			"/ping":
			return true
		}

		return false
	}

	router.Use(middleware.StripSlashes)

	router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   allowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type", "X-CSRF-Token"},
		ExposedHeaders:   []string{handlerapplication.HeaderApplicationID},
		AllowCredentials: false,
		MaxAge:           300, // Maximum value not ignored by any of major browsers
	}))

	router.Use(func(next http.Handler) http.Handler {
		return tracer.Middleware(tracer.MiddlewareConfig{
			TracerName:     "github.com/yusufsyaifudin/lamaran",
			ServiceName:    assets.ServiceName,
			SkipFunc:       skip,
			TracerProvider: otel.GetTracerProvider(),    // global tracer provider
			TextPropagator: otel.GetTextMapPropagator(), // use global text map propagator
		}, next)
	})

	// add trace id and also log request response
	router.Use(func(next http.Handler) http.Handler {
		return requestLogger(skip, cfg.MaxUploadBytes, next)
	})

	okHandler := func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"ok": true}`))
	}

	router.Get("/health", okHandler)
	router.Get("/ping", okHandler)

	router.Get(apidoc.PathOpenAPI, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write(apiDoc)
	})

	router.Get(apidoc.PathResume, handlerApp.Resume())

	// Resource: applications
	router.Route(apidoc.PathApplications, func(r chi.Router) {
		r.Post("/", handlerApp.Submit())          // compose and send the application email
		r.Get("/defaults", handlerApp.Defaults()) // initial form values
	})

	instance := &DefaultHTTP{
		router: router,
	}

	return instance, nil
}

// Server .
func (a *DefaultHTTP) Server() http.Handler {
	return a.router
}
