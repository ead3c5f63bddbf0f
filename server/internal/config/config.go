package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v3"
)

// Default values for the service configuration.
const (
	DefaultHTTPPort       = 8080
	DefaultGRPCPort       = 50051
	DefaultServiceName    = "hostpulse"
	DefaultAppVersion     = "v1"
	DefaultGreeting       = "Hello from hostpulse"
	DefaultDiskPath       = "/"
	DefaultLogLevel       = "info"
	DefaultModel          = "gpt-4o-mini"
	DefaultAPIKeyEnv      = "OPENAI_API_KEY"
	DefaultSummaryTimeout = 20 * time.Second
	DefaultMaxTokens      = 300
	DefaultStreamInterval = 5 * time.Second
	DefaultProbeInterval  = 10 * time.Second
)

// Config is the fully resolved service configuration. It is built once by
// Load and passed by pointer to every component; nothing mutates it after
// startup.
type Config struct {
	Server     ServerConfig     `yaml:"server"`
	Log        LogConfig        `yaml:"log"`
	Summarizer SummarizerConfig `yaml:"summarizer"`
	Stream     StreamConfig     `yaml:"stream"`
	Probe      ProbeConfig      `yaml:"probe"`

	// StartedAt is the process start instant, captured once by Load.
	// Process uptime is measured from it.
	StartedAt time.Time `yaml:"-" ignored:"true"`
}

// ServerConfig holds the HTTP/gRPC listener and identity settings.
type ServerConfig struct {
	// HTTPPort is the port the REST API, /metrics and /ws/health listen on.
	HTTPPort int `yaml:"http_port" envconfig:"HTTP_PORT" validate:"min=1,max=65535"`

	// GRPCPort is the port for the gRPC health service. 0 disables it.
	GRPCPort int `yaml:"grpc_port" envconfig:"GRPC_PORT" validate:"min=0,max=65535"`

	// ServiceName is reported by /api/status and used as the gRPC health service name.
	ServiceName string `yaml:"service_name" envconfig:"SERVICE_NAME" validate:"required"`

	// AppVersion is reported by /api/status and /api/system.
	AppVersion string `yaml:"app_version" envconfig:"APP_VERSION" validate:"required"`

	// Greeting is the message returned by GET /.
	Greeting string `yaml:"greeting" envconfig:"GREETING"`

	// DiskPath is the mount point whose usage is sampled.
	DiskPath string `yaml:"disk_path" envconfig:"DISK_PATH" validate:"required"`
}

// LogConfig controls the slog handler.
type LogConfig struct {
	// Level is one of: debug | info | warn | error.
	Level string `yaml:"level" envconfig:"LOG_LEVEL" validate:"oneof=debug info warn error"`
}

// SummarizerConfig controls the language-model health narrative.
type SummarizerConfig struct {
	// Model is the chat model identifier sent upstream.
	Model string `yaml:"model" envconfig:"OPENAI_MODEL" validate:"required"`

	// BaseURL overrides the API endpoint (OpenAI-compatible). Empty uses the SDK default.
	BaseURL string `yaml:"base_url" envconfig:"OPENAI_BASE_URL" validate:"omitempty,url"`

	// APIKeyEnv is the name of the environment variable that holds the credential.
	APIKeyEnv string `yaml:"api_key_env" envconfig:"SUMMARIZER_API_KEY_ENV" validate:"required"`

	// Timeout bounds a single summarizer call.
	Timeout time.Duration `yaml:"timeout" envconfig:"SUMMARIZER_TIMEOUT" validate:"gt=0"`

	// MaxTokens caps the length of the generated reply.
	MaxTokens int `yaml:"max_tokens" envconfig:"SUMMARIZER_MAX_TOKENS" validate:"min=1"`

	// APIKey is resolved from APIKeyEnv by Load. Empty means the summarizer
	// is not configured; this is not an error.
	APIKey string `yaml:"-" ignored:"true"`
}

// StreamConfig controls the /ws/health broadcast.
type StreamConfig struct {
	// Interval is how often a fresh report is pushed to connected clients.
	Interval time.Duration `yaml:"interval" envconfig:"STREAM_INTERVAL" validate:"gt=0"`
}

// ProbeConfig controls the gRPC health monitor.
type ProbeConfig struct {
	// Interval is how often the gRPC serving status is recomputed.
	Interval time.Duration `yaml:"interval" envconfig:"PROBE_INTERVAL" validate:"gt=0"`
}

// Options locates the optional configuration sources read by Load.
type Options struct {
	// ConfigPath is a YAML file. Empty skips it; a set but missing path is an error.
	ConfigPath string

	// EnvFile is a dotenv file loaded into the process environment before
	// overrides are applied. A missing file is ignored.
	EnvFile string
}

// Load resolves the configuration: defaults, then the YAML file, then
// environment overrides, then the credential lookup and validation.
func Load(opts Options) (*Config, error) {
	if opts.EnvFile != "" {
		if err := godotenv.Load(opts.EnvFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("config: load env file %q: %w", opts.EnvFile, err)
		}
	}

	cfg := defaults()

	if opts.ConfigPath != "" {
		data, err := os.ReadFile(opts.ConfigPath)
		if err != nil {
			return nil, fmt.Errorf("config: read %q: %w", opts.ConfigPath, err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("config: parse yaml: %w", err)
		}
	}

	if err := envconfig.Process("", cfg); err != nil {
		return nil, fmt.Errorf("config: environment: %w", err)
	}

	cfg.Summarizer.APIKey = os.Getenv(cfg.Summarizer.APIKeyEnv)
	cfg.StartedAt = time.Now()

	if err := validate(cfg); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}

	return cfg, nil
}

// HasAPIKey reports whether a summarizer credential was found.
func (s SummarizerConfig) HasAPIKey() bool {
	return s.APIKey != ""
}

// defaults returns a Config pre-populated with default values.
func defaults() *Config {
	return &Config{
		Server: ServerConfig{
			HTTPPort:    DefaultHTTPPort,
			GRPCPort:    DefaultGRPCPort,
			ServiceName: DefaultServiceName,
			AppVersion:  DefaultAppVersion,
			Greeting:    DefaultGreeting,
			DiskPath:    DefaultDiskPath,
		},
		Log: LogConfig{
			Level: DefaultLogLevel,
		},
		Summarizer: SummarizerConfig{
			Model:     DefaultModel,
			APIKeyEnv: DefaultAPIKeyEnv,
			Timeout:   DefaultSummaryTimeout,
			MaxTokens: DefaultMaxTokens,
		},
		Stream: StreamConfig{
			Interval: DefaultStreamInterval,
		},
		Probe: ProbeConfig{
			Interval: DefaultProbeInterval,
		},
	}
}

// structValidator reports field paths using the yaml tag names.
var structValidator = func() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("yaml"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}()

// validate checks structural constraints on the resolved configuration and
// reports the first violation with its YAML-style path.
func validate(cfg *Config) error {
	err := structValidator.Struct(cfg)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return err
	}

	fe := verrs[0]
	field := fieldPath(fe.Namespace())
	if fe.Param() != "" {
		return fmt.Errorf("%s %v fails %s=%s", field, fe.Value(), fe.Tag(), fe.Param())
	}
	return fmt.Errorf("%s %v fails %s", field, fe.Value(), fe.Tag())
}

// fieldPath drops the root type from a namespace like "Config.server.http_port".
func fieldPath(ns string) string {
	if _, rest, ok := strings.Cut(ns, "."); ok {
		return rest
	}
	return ns
}
