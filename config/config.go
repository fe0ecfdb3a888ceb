package config

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/caarlos0/env/v11"
	"gopkg.in/yaml.v3"
)

type contextKey string

func (c contextKey) String() string {
	return "culture/config/" + string(c)
}

const ctxKeyConfiguration = contextKey("configurationKey")

// ToContext adds configuration to the current supplied context.
func ToContext(ctx context.Context, config any) context.Context {
	return context.WithValue(ctx, ctxKeyConfiguration, config)
}

// FromContext extracts configuration from the supplied context if any exist.
func FromContext[T any](ctx context.Context) T {
	if cfg, ok := ctx.Value(ctxKeyConfiguration).(T); ok {
		return cfg
	}
	var zero T
	return zero
}

// FromEnv convenience method to process configs.
func FromEnv[T any]() (T, error) {
	return env.ParseAs[T]()
}

// FillEnv convenience method to fill a config object with environment data.
func FillEnv(v any) error {
	return env.Parse(v)
}

// FromYAML loads T from the environment and then overlays the values found in the yaml file at path.
func FromYAML[T any](path string) (T, error) {
	cfg, err := env.ParseAs[T]()
	if err != nil {
		return cfg, err
	}

	content, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("could not read config file %s: %w", path, err)
	}

	err = yaml.Unmarshal(content, &cfg)
	if err != nil {
		return cfg, fmt.Errorf("could not parse config file %s: %w", path, err)
	}

	return cfg, nil
}

type ConfigurationDefault struct {
	LogLevel          string `envDefault:"info"                      env:"LOG_LEVEL"            yaml:"log_level"`
	LogTimeFormat     string `envDefault:"2006-01-02T15:04:05Z07:00" env:"LOG_TIME_FORMAT"      yaml:"log_time_format"`
	LogColored        bool   `envDefault:"true"                      env:"LOG_COLORED"          yaml:"log_colored"`
	LogShowStackTrace bool   `envDefault:"false"                     env:"LOG_SHOW_STACK_TRACE" yaml:"log_show_stack_trace"`

	// System cultures, detected from the POSIX locale variables when empty.
	SystemCulture   string `env:"CULTURE"    yaml:"culture"`
	SystemUICulture string `env:"UI_CULTURE" yaml:"ui_culture"`

	DefaultThreadCurrentCulture   string   `env:"DEFAULT_THREAD_CULTURE"    yaml:"default_thread_culture"`
	DefaultThreadCurrentUICulture string   `env:"DEFAULT_THREAD_UI_CULTURE" yaml:"default_thread_ui_culture"`
	SupportedCultureNames         []string `env:"SUPPORTED_CULTURES"        yaml:"supported_cultures"`

	TranslationsFolder   string   `envDefault:"localization" env:"TRANSLATIONS_FOLDER"   yaml:"translations_folder"`
	TranslationLanguages []string `env:"TRANSLATION_LANGUAGES" yaml:"translation_languages"`

	// Worker pool settings
	WorkerPoolCPUFactorForWorkerCount int    `envDefault:"10"  env:"WORKER_POOL_CPU_FACTOR_FOR_WORKER_COUNT" yaml:"worker_pool_cpu_factor_for_worker_count"`
	WorkerPoolCapacity                int    `envDefault:"100" env:"WORKER_POOL_CAPACITY"                    yaml:"worker_pool_capacity"`
	WorkerPoolCount                   int    `envDefault:"1"   env:"WORKER_POOL_COUNT"                       yaml:"worker_pool_count"`
	WorkerPoolExpiryDuration          string `envDefault:"1s"  env:"WORKER_POOL_EXPIRY_DURATION"             yaml:"worker_pool_expiry_duration"`
}

type ConfigurationLogLevel interface {
	LoggingLevel() string
	LoggingTimeFormat() string
	LoggingShowStackTrace() bool
	LoggingColored() bool
	LoggingLevelIsDebug() bool
}

var _ ConfigurationLogLevel = new(ConfigurationDefault)

func (c *ConfigurationDefault) LoggingLevel() string {
	return c.LogLevel
}

func (c *ConfigurationDefault) LoggingTimeFormat() string {
	return c.LogTimeFormat
}

func (c *ConfigurationDefault) LoggingColored() bool {
	return c.LogColored
}

func (c *ConfigurationDefault) LoggingShowStackTrace() bool {
	return c.LogShowStackTrace
}

func (c *ConfigurationDefault) LoggingLevelIsDebug() bool {
	return c.LoggingLevel() == "debug" || c.LoggingLevel() == "trace"
}

type ConfigurationCulture interface {
	// CultureName is the system culture used when no default thread culture is set.
	CultureName() string
	// UICultureName is the system UI culture used when no default thread UI culture is set.
	UICultureName() string
	DefaultThreadCulture() string
	DefaultThreadUICulture() string
	SupportedCultures() []string
	GetTranslationsFolder() string
	GetTranslationLanguages() []string
}

var _ ConfigurationCulture = new(ConfigurationDefault)

func (c *ConfigurationDefault) CultureName() string {
	if c.SystemCulture != "" {
		return c.SystemCulture
	}
	return DetectSystemLocale(os.Getenv, "LC_ALL", "LC_NUMERIC", "LANG")
}

func (c *ConfigurationDefault) UICultureName() string {
	if c.SystemUICulture != "" {
		return c.SystemUICulture
	}
	return DetectSystemLocale(os.Getenv, "LC_ALL", "LC_MESSAGES", "LANG")
}

func (c *ConfigurationDefault) DefaultThreadCulture() string {
	return c.DefaultThreadCurrentCulture
}

func (c *ConfigurationDefault) DefaultThreadUICulture() string {
	return c.DefaultThreadCurrentUICulture
}

func (c *ConfigurationDefault) SupportedCultures() []string {
	return c.SupportedCultureNames
}

func (c *ConfigurationDefault) GetTranslationsFolder() string {
	return c.TranslationsFolder
}

func (c *ConfigurationDefault) GetTranslationLanguages() []string {
	return c.TranslationLanguages
}

type ConfigurationWorkerPool interface {
	GetCPUFactor() int
	GetCapacity() int
	GetCount() int
	GetExpiryDuration() time.Duration
}

var _ ConfigurationWorkerPool = new(ConfigurationDefault)

func (c *ConfigurationDefault) GetCPUFactor() int {
	return c.WorkerPoolCPUFactorForWorkerCount
}

func (c *ConfigurationDefault) GetCapacity() int {
	return c.WorkerPoolCapacity
}

func (c *ConfigurationDefault) GetCount() int {
	return c.WorkerPoolCount
}

func (c *ConfigurationDefault) GetExpiryDuration() time.Duration {
	if c.WorkerPoolExpiryDuration != "" {
		duration, err := time.ParseDuration(c.WorkerPoolExpiryDuration)
		if err == nil {
			return duration
		}
	}

	return time.Second
}
