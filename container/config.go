package container

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/yusufsyaifudin/lamaran/backend"
	"github.com/yusufsyaifudin/lamaran/internal/svc/applicationsvc"
	"github.com/yusufsyaifudin/lamaran/pkg/mailclient"
	"github.com/yusufsyaifudin/lamaran/pkg/validator"
	"gopkg.in/yaml.v3"
)

const (
	DefaultConfigFile = "config.yml"
	DefaultEnvFile    = ".env"

	EnvProduction = "production"
)

// ConfigHTTPServer struct for HTTP ConfigTransport configuration
type ConfigHTTPServer struct {
	Port            int           `yaml:"port" validate:"required,min=1,max=65535"`
	MaxUploadBytes  int64         `yaml:"maxUploadBytes" validate:"required,min=1"`
	AllowedOrigins  []string      `yaml:"allowedOrigins"`
	ShutdownTimeout time.Duration `yaml:"shutdownTimeout"`

	// DebugError returns send diagnostics to the caller, nil means on outside production.
	DebugError *bool `yaml:"debugError"`
}

// ConfigTransport is a configuration for ConfigTransport: HTTP, gRPC or anything
type ConfigTransport struct {
	HTTP ConfigHTTPServer `yaml:"http"`
}

type ConfigSMTP struct {
	Protocol string `yaml:"protocol" validate:"required,oneof=smtp smtps"`
	Host     string `yaml:"host" validate:"required"`
	Port     int    `yaml:"port" validate:"required"`
}

type ConfigMail struct {
	// Relay is the registered relay name, see backend.MuxBackend.
	Relay string `yaml:"relay" validate:"required"`

	// Account is the relay mailbox (OWNER_MAIL), Password its credential (MAIL_PASSWORD).
	Account  string `yaml:"account" validate:"required,email"`
	Password string `yaml:"password"`

	// FallbackRecipient defaults to Account.
	FallbackRecipient string `yaml:"fallbackRecipient" validate:"required,email"`

	SMTP   ConfigSMTP           `yaml:"smtp"`
	SES    backend.SESConfig    `yaml:"ses"`
	Resend backend.ResendConfig `yaml:"resend"`
}

type ConfigCV struct {
	DefaultPath     string `yaml:"defaultPath" validate:"required"`
	DefaultFilename string `yaml:"defaultFilename" validate:"required"`
}

type ConfigLinks struct {
	Portfolio        string `yaml:"portfolio"`
	Blog             string `yaml:"blog"`
	Github           string `yaml:"github"`
	CV               string `yaml:"cv"`
	Linkedin         string `yaml:"linkedin"`
	ProductionAppURL string `yaml:"productionAppUrl"`
	LocalAppURL      string `yaml:"localAppUrl"`
}

type ConfigTracing struct {
	// JaegerEndpoint enables the jaeger exporter when not empty.
	JaegerEndpoint string `yaml:"jaegerEndpoint"`
}

// Config contains application config
type Config struct {
	AppEnv    string          `yaml:"appEnv" validate:"required"`
	Transport ConfigTransport `yaml:"transport"`
	Mail      ConfigMail      `yaml:"mail"`
	CV        ConfigCV        `yaml:"cv"`
	Links     ConfigLinks     `yaml:"links"`
	Tracing   ConfigTracing   `yaml:"tracing"`
}

// DefaultConfig targets a gmail account over STARTTLS.
func DefaultConfig() Config {
	return Config{
		AppEnv: "development",
		Transport: ConfigTransport{
			HTTP: ConfigHTTPServer{
				Port:            3000,
				MaxUploadBytes:  10 << 20,
				AllowedOrigins:  []string{"https://*", "http://*"},
				ShutdownTimeout: 10 * time.Second,
			},
		},
		Mail: ConfigMail{
			Relay: "smtp",
			SMTP: ConfigSMTP{
				Protocol: mailclient.ProtocolSMTP,
				Host:     "smtp.gmail.com",
				Port:     587,
			},
		},
		CV: ConfigCV{
			DefaultPath:     "public/resume.pdf",
			DefaultFilename: "resume.pdf",
		},
	}
}

// LookupEnvFunc is satisfied by os.LookupEnv.
type LookupEnvFunc func(key string) (string, bool)

// LoadConfig reads the YAML file, then the .env file, then lets the process environment override both.
// A missing file is not an error, the defaults are used.
func LoadConfig(configFile string) (cfg Config, err error) {
	err = loadDotEnv(DefaultEnvFile)
	if err != nil {
		return
	}

	return LoadConfigFrom(configFile, os.LookupEnv)
}

func LoadConfigFrom(configFile string, lookupEnv LookupEnvFunc) (cfg Config, err error) {
	cfg = DefaultConfig()

	if configFile != "" {
		var fileContent []byte
		fileContent, err = os.ReadFile(configFile)
		switch {
		case errors.Is(err, os.ErrNotExist):
			err = nil
		case err != nil:
			err = fmt.Errorf("error read file config %s: %w", configFile, err)
			return
		default:
			dec := yaml.NewDecoder(bytes.NewReader(fileContent))
			dec.KnownFields(false)
			err = dec.Decode(&cfg)
			if err != nil {
				err = fmt.Errorf("error decode file config %s: %w", configFile, err)
				return
			}
		}
	}

	err = cfg.applyEnv(lookupEnv)
	if err != nil {
		return
	}

	if cfg.Mail.FallbackRecipient == "" {
		cfg.Mail.FallbackRecipient = cfg.Mail.Account
	}

	err = validator.Validate(cfg)
	if err != nil {
		err = fmt.Errorf("config validation error: %w", err)
		return
	}

	return
}

func loadDotEnv(fileName string) error {
	_, err := os.Stat(fileName)
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}

	// existing environment variables win over the file
	err = godotenv.Load(fileName)
	if err != nil {
		return fmt.Errorf("error load env file %s: %w", fileName, err)
	}

	return nil
}

func (c *Config) applyEnv(lookupEnv LookupEnvFunc) error {
	if lookupEnv == nil {
		return nil
	}

	str := map[string]*string{
		"APP_ENV":            &c.AppEnv,
		"OWNER_MAIL":         &c.Mail.Account,
		"MAIL_PASSWORD":      &c.Mail.Password,
		"MAIL_RELAY":         &c.Mail.Relay,
		"FALLBACK_RECIPIENT": &c.Mail.FallbackRecipient,
		"RESEND_API_KEY":     &c.Mail.Resend.APIKey,
		"AWS_REGION":         &c.Mail.SES.Region,
		"PORTFOLIO_URL":      &c.Links.Portfolio,
		"BLOG_URL":           &c.Links.Blog,
		"GITHUB_URL":         &c.Links.Github,
		"CV_URL":             &c.Links.CV,
		"LINKEDIN_URL":       &c.Links.Linkedin,
		"PRODUCTION_APP_URL": &c.Links.ProductionAppURL,
		"LOCAL_APP_URL":      &c.Links.LocalAppURL,
		"JAEGER_ENDPOINT":    &c.Tracing.JaegerEndpoint,
	}

	for key, dst := range str {
		if val, ok := lookupEnv(key); ok && strings.TrimSpace(val) != "" {
			*dst = strings.TrimSpace(val)
		}
	}

	if val, ok := lookupEnv("DEBUG_ERROR"); ok && strings.TrimSpace(val) != "" {
		debug, err := strconv.ParseBool(strings.TrimSpace(val))
		if err != nil {
			return fmt.Errorf("env DEBUG_ERROR is not a boolean: %w", err)
		}

		c.Transport.HTTP.DebugError = &debug
	}

	if val, ok := lookupEnv("PORT"); ok && val != "" {
		port, err := strconv.Atoi(val)
		if err != nil {
			return fmt.Errorf("env PORT is not a number: %w", err)
		}

		c.Transport.HTTP.Port = port
	}

	return nil
}

// IsProduction reports whether APP_ENV is production.
func (c Config) IsProduction() bool {
	return strings.EqualFold(c.AppEnv, EnvProduction)
}

// DebugError reports whether failure diagnostics are returned in responses.
func (c Config) DebugError() bool {
	if c.Transport.HTTP.DebugError != nil {
		return *c.Transport.HTTP.DebugError
	}

	return !c.IsProduction()
}

// CVURL is the public link to the CV: CV_URL when set, else the resume served by this app.
func (c Config) CVURL() string {
	if c.Links.CV != "" {
		return c.Links.CV
	}

	appURL := c.AppURL()
	if appURL == "" {
		return ""
	}

	return appURL + "/resume.pdf"
}

// AppURL is the public base URL of this app, LOCAL_APP_URL outside production.
func (c Config) AppURL() string {
	appURL := c.Links.ProductionAppURL
	if !c.IsProduction() && c.Links.LocalAppURL != "" {
		appURL = c.Links.LocalAppURL
	}

	return strings.TrimSuffix(appURL, "/")
}

// ProfileLinks are the links rendered into the application email.
func (c Config) ProfileLinks() applicationsvc.Links {
	return applicationsvc.Links{
		LinkedinURL:  c.Links.Linkedin,
		GithubURL:    c.Links.Github,
		WebsiteURL:   c.Links.Portfolio,
		CVURL:        c.CVURL(),
		PortfolioURL: c.Links.Portfolio,
	}
}

// RelayConfig is the configuration handed to the selected relay factory.
func (m ConfigMail) RelayConfig() backend.Config {
	return backend.Config{
		Account: m.Account,
		SMTP: &mailclient.EmailCredential{
			Protocol:   m.SMTP.Protocol,
			ServerHost: m.SMTP.Host,
			ServerPort: m.SMTP.Port,
			Username:   m.Account,
			Password:   m.Password,
		},
		SES:    m.SES,
		Resend: m.Resend,
	}
}
