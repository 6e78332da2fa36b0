package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const (
	// DebugModeEnv is the environment variable for debug mode.
	DebugModeEnv = "DEBUG_MODE"

	// GeminiAPIKeyEnv is the environment variable for the generation service API key.
	GeminiAPIKeyEnv = "GEMINI_API_KEY"

	// AdminPasswordEnv is the environment variable for the shared admin password.
	AdminPasswordEnv = "ADMIN_PASSWORD"

	// DataDirEnv is the environment variable for the data directory (database and images).
	DataDirEnv = "DATA_DIR"

	// LogLevelEnv overrides settings.log_level.
	LogLevelEnv = "LOG_LEVEL"

	// LogFileEnv is an optional path of a rotating log file written in addition to stdout.
	LogFileEnv = "LOG_FILE"

	// ImageSizeEnv overrides settings.image_size.
	ImageSizeEnv = "IMAGE_SIZE"

	// TextModelEnv overrides settings.text_model.
	TextModelEnv = "GEMINI_TEXT_MODEL"

	// ImageModelEnv overrides settings.image_model.
	ImageModelEnv = "GEMINI_IMAGE_MODEL"

	// DBDriverEnv selects the store engine: sqlite or postgres.
	DBDriverEnv = "DB_DRIVER"

	// DBHostEnv is the environment variable for database host.
	DBHostEnv = "DB_HOST"

	// DBPortEnv is the environment variable for database port.
	DBPortEnv = "DB_PORT"

	// DBUserEnv is the environment variable for database user.
	DBUserEnv = "DB_USER"

	// DBPassEnv is the environment variable for database password.
	DBPassEnv = "DB_PASS"

	// DBNameEnv is the environment variable for database name.
	DBNameEnv = "DB_NAME"

	// HTTPServerPortEnv is the environment variable for HTTP server port.
	HTTPServerPortEnv = "HTTP_SERVER_PORT"

	// HTTPWriteTimeoutEnv bounds how long a response may take. Product creation
	// waits on three remote calls, so this must stay generous.
	HTTPWriteTimeoutEnv = "HTTP_WRITE_TIMEOUT"

	// MetricsServerPortEnv is the environment variable for metrics server port.
	MetricsServerPortEnv = "METRICS_SERVER_PORT"

	// EnvFilePath is the environment variable for .env file path (only for local/test environment).
	EnvFilePath = "ENV_PATH"

	// DefaultEnvFilePath is the default path to the .env file.
	DefaultEnvFilePath = ".env"

	// ConfigPathEnv is the environment variable for the YAML settings file path.
	ConfigPathEnv = "CONFIG_PATH"

	// DefaultConfigPath is the default path to the YAML settings file.
	DefaultConfigPath = "config.yaml"

	// AWSRegionEnv is the environment variable for AWS region.
	AWSRegionEnv = "AWS_REGION"

	// AWSEndpointEnv is the environment variable for AWS endpoint.
	AWSEndpointEnv = "AWS_ENDPOINT"

	// SQSQueueURLEnv is the environment variable for SQS queue URL. Optional.
	SQSQueueURLEnv = "SQS_QUEUE_URL"
)

const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"

	defaultDataDir      = "/data"
	defaultLogLevel     = "INFO"
	defaultImageSize    = 1024
	defaultJPEGQuality  = 85
	defaultTextModel    = "gemini-2.0-flash"
	defaultImageModel   = "gemini-2.5-flash-image"
	defaultHTTPPort     = "8000"
	defaultMetricsPort  = "9090"
	defaultWriteTimeout = 5 * time.Minute
	defaultAWSRegion    = "us-east-1"
	sqliteDatabaseFile  = "store.db"
	imagesDirectoryName = "images"
)

var (
	// ErrMissingConfig is returned when required configuration values are missing.
	ErrMissingConfig = errors.New("missing config data")

	// ErrInvalidConfig is returned when a configuration value is present but unusable.
	ErrInvalidConfig = errors.New("invalid config data")
)

// Config represents the application configuration.
type Config struct {
	DebugMode     bool
	AdminPassword string
	DataDir       string
	Log           Log
	Database      DB
	HTTPServer    Server
	MetricsServer Server
	Gemini        Gemini
	Image         Image
	AWS           AWSConfig
}

// Log holds logging settings.
type Log struct {
	Level string
	File  string
}

// Gemini holds the generation service settings.
type Gemini struct {
	APIKey     string
	TextModel  string
	ImageModel string
	Prompts    Prompts
}

// Prompts are the system instructions sent with each text generation call.
type Prompts struct {
	DescriptionGeneration string `yaml:"description_generation"`
	ImagePromptGeneration string `yaml:"image_prompt_generation"`
}

// Image holds the generated image settings.
type Image struct {
	Size    int
	Quality int
}

// AWSConfig represents AWS-specific configuration settings.
type AWSConfig struct {
	Region      string
	Endpoint    string
	SQSQueueURL string
}

// DB represents database configuration settings.
type DB struct {
	Driver   string
	Path     string
	Host     string
	User     string
	Password string
	Name     string
	Port     string
}

// Server represents server configuration settings.
type Server struct {
	Port         string
	WriteTimeout time.Duration
}

// Settings mirrors the YAML settings file.
type Settings struct {
	SystemPrompts Prompts `yaml:"system_prompts"`
	Settings      struct {
		ImageSize   int    `yaml:"image_size"`
		LogLevel    string `yaml:"log_level"`
		DataDir     string `yaml:"data_dir"`
		TextModel   string `yaml:"text_model"`
		ImageModel  string `yaml:"image_model"`
		JPEGQuality int    `yaml:"jpeg_quality"`
	} `yaml:"settings"`
}

// ImageDir is where generated product images are stored and served from.
func (c *Config) ImageDir() string {
	return filepath.Join(c.DataDir, imagesDirectoryName)
}

// NotificationsEnabled reports whether new listings are published to SQS.
func (c *Config) NotificationsEnabled() bool {
	return c.AWS.SQSQueueURL != ""
}

// RequireSecrets checks the secrets needed to serve and generate products.
// Commands that only touch the database or the queue do not call it.
func (c *Config) RequireSecrets() error {
	if err := allNonEmpty(map[string]string{
		GeminiAPIKeyEnv:  c.Gemini.APIKey,
		AdminPasswordEnv: c.AdminPassword,
	}); err != nil {
		return fmt.Errorf("secrets configuration incomplete: %w", err)
	}
	return nil
}

func allNonEmpty(keyValues map[string]string) error {
	for key, value := range keyValues {
		if strings.TrimSpace(value) == "" {
			slog.Error("configuration validation failed", slog.String("key", key), slog.String("error", "value is empty"))
			return fmt.Errorf("%w for key: %s", ErrMissingConfig, key)
		}
	}
	return nil
}

func allNumbers(keyValues map[string]string) error {
	for key, value := range keyValues {
		_, err := strconv.Atoi(value)
		if err != nil {
			slog.Error("configuration validation failed", slog.String("key", key), slog.String("value", value), slog.String("error", err.Error()))
			return fmt.Errorf("%w: invalid number for key %s: %w", ErrInvalidConfig, key, err)
		}
	}
	return nil
}

func (c *Config) validate() error {
	if err := allNonEmpty(map[string]string{
		"system_prompts.description_generation":  c.Gemini.Prompts.DescriptionGeneration,
		"system_prompts.image_prompt_generation": c.Gemini.Prompts.ImagePromptGeneration,
	}); err != nil {
		return fmt.Errorf("prompt configuration incomplete: %w", err)
	}

	if err := allNonEmpty(map[string]string{
		DataDirEnv: c.DataDir,
	}); err != nil {
		return fmt.Errorf("storage configuration incomplete: %w", err)
	}

	if c.Image.Size <= 0 {
		return fmt.Errorf("%w: image_size must be positive, got %d", ErrInvalidConfig, c.Image.Size)
	}
	if c.Image.Quality < 1 || c.Image.Quality > 100 {
		return fmt.Errorf("%w: jpeg_quality must be between 1 and 100, got %d", ErrInvalidConfig, c.Image.Quality)
	}

	// Validate port numbers
	if err := allNumbers(map[string]string{
		HTTPServerPortEnv:    c.HTTPServer.Port,
		MetricsServerPortEnv: c.MetricsServer.Port,
	}); err != nil {
		return fmt.Errorf("invalid port number: %w", err)
	}

	switch c.Database.Driver {
	case DriverSQLite:
	case DriverPostgres:
		if err := allNonEmpty(map[string]string{
			DBHostEnv: c.Database.Host,
			DBUserEnv: c.Database.User,
			DBNameEnv: c.Database.Name,
		}); err != nil {
			return fmt.Errorf("database configuration incomplete: %w", err)
		}
		if err := allNumbers(map[string]string{DBPortEnv: c.Database.Port}); err != nil {
			return fmt.Errorf("invalid port number: %w", err)
		}
	default:
		return fmt.Errorf("%w: unknown %s %q", ErrInvalidConfig, DBDriverEnv, c.Database.Driver)
	}

	return nil
}

func getEnv(name, defaultValue string) string {
	if val, ok := os.LookupEnv(name); ok && val != "" {
		return val
	}
	return defaultValue
}

func getEnvAsBool(name string, defaultValue bool) bool {
	if val, err := strconv.ParseBool(os.Getenv(name)); err == nil {
		return val
	}
	return defaultValue
}

func getEnvAsInt(name string, defaultValue int) (int, error) {
	raw := os.Getenv(name)
	if raw == "" {
		return defaultValue, nil
	}
	val, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("%w: invalid number for key %s: %w", ErrInvalidConfig, name, err)
	}
	return val, nil
}

func getEnvAsDuration(name string, defaultValue time.Duration) (time.Duration, error) {
	raw := os.Getenv(name)
	if raw == "" {
		return defaultValue, nil
	}
	val, err := time.ParseDuration(raw)
	if err != nil {
		return 0, fmt.Errorf("%w: invalid duration for key %s: %w", ErrInvalidConfig, name, err)
	}
	return val, nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

// ApplyEnvFile loads environment variables from the specified .env files.
func ApplyEnvFile(files ...string) error {
	err := godotenv.Load(files...)
	if err != nil {
		return fmt.Errorf("failed to load env file: %w", err)
	}
	return nil
}

// LoadSettingsFile reads and parses the YAML settings document.
func LoadSettingsFile(path string) (*Settings, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: settings file not found at %s", ErrMissingConfig, path)
		}
		return nil, fmt.Errorf("failed to read settings file %s: %w", path, err)
	}
	if strings.TrimSpace(string(raw)) == "" {
		return nil, fmt.Errorf("%w: settings file %s is empty", ErrMissingConfig, path)
	}

	var settings Settings
	if err := yaml.Unmarshal(raw, &settings); err != nil {
		return nil, fmt.Errorf("%w: failed to parse %s: %w", ErrInvalidConfig, path, err)
	}
	return &settings, nil
}

// Load builds the configuration from the settings file, the .env file and
// the process environment, in increasing order of precedence, and validates it.
func Load() (*Config, error) {
	envPath := getEnv(EnvFilePath, DefaultEnvFilePath)
	err := ApplyEnvFile(envPath)
	if err != nil {
		// just log the error, maybe all envs are set in another way
		slog.Info("failed to load from .env", slog.Any("err", err))
	}

	settings, err := LoadSettingsFile(getEnv(ConfigPathEnv, DefaultConfigPath))
	if err != nil {
		return nil, err
	}

	imageSize := settings.Settings.ImageSize
	if imageSize == 0 {
		imageSize = defaultImageSize
	}
	imageSize, err = getEnvAsInt(ImageSizeEnv, imageSize)
	if err != nil {
		return nil, err
	}
	quality := settings.Settings.JPEGQuality
	if quality == 0 {
		quality = defaultJPEGQuality
	}
	writeTimeout, err := getEnvAsDuration(HTTPWriteTimeoutEnv, defaultWriteTimeout)
	if err != nil {
		return nil, err
	}

	dataDir := firstNonEmpty(os.Getenv(DataDirEnv), settings.Settings.DataDir, defaultDataDir)

	conf := &Config{
		DebugMode:     getEnvAsBool(DebugModeEnv, false),
		AdminPassword: os.Getenv(AdminPasswordEnv),
		DataDir:       dataDir,
		Log: Log{
			Level: firstNonEmpty(os.Getenv(LogLevelEnv), settings.Settings.LogLevel, defaultLogLevel),
			File:  os.Getenv(LogFileEnv),
		},
		Database: DB{
			Driver:   strings.ToLower(getEnv(DBDriverEnv, DriverSQLite)),
			Path:     filepath.Join(dataDir, sqliteDatabaseFile),
			Host:     os.Getenv(DBHostEnv),
			User:     os.Getenv(DBUserEnv),
			Password: os.Getenv(DBPassEnv),
			Name:     os.Getenv(DBNameEnv),
			Port:     getEnv(DBPortEnv, "5432"),
		},
		HTTPServer: Server{
			Port:         getEnv(HTTPServerPortEnv, defaultHTTPPort),
			WriteTimeout: writeTimeout,
		},
		MetricsServer: Server{
			Port: getEnv(MetricsServerPortEnv, defaultMetricsPort),
		},
		Gemini: Gemini{
			APIKey:     os.Getenv(GeminiAPIKeyEnv),
			TextModel:  firstNonEmpty(os.Getenv(TextModelEnv), settings.Settings.TextModel, defaultTextModel),
			ImageModel: firstNonEmpty(os.Getenv(ImageModelEnv), settings.Settings.ImageModel, defaultImageModel),
			Prompts:    settings.SystemPrompts,
		},
		Image: Image{
			Size:    imageSize,
			Quality: quality,
		},
		AWS: AWSConfig{
			Region:      getEnv(AWSRegionEnv, defaultAWSRegion),
			Endpoint:    os.Getenv(AWSEndpointEnv),
			SQSQueueURL: os.Getenv(SQSQueueURLEnv),
		},
	}

	if err := conf.validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}
	return conf, nil
}
