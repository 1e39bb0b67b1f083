package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

const (
	// PathEnv names the environment variable pointing at the config file.
	PathEnv           = "MEDIACONV_CONFIG"
	defaultConfigPath = "config.json"
)

const (
	ProviderOpenAI = "openai"
	ProviderClaude = "claude"
	ProviderGemini = "gemini"
)

// Config represents runtime configuration for the service.
type Config struct {
	BasicConfig BasicConfig     `json:"basic_config" yaml:"basic_config"`
	FFmpeg      FFmpegConfig    `json:"ffmpeg" yaml:"ffmpeg"`
	AI          AIConfig        `json:"ai" yaml:"ai"`
	Providers   ProvidersConfig `json:"providers" yaml:"providers"`
	Redis       RedisConfig     `json:"redis" yaml:"redis"`
	Database    DatabaseConfig  `json:"database" yaml:"database"`
	Logging     LoggingConfig   `json:"logging" yaml:"logging"`
}

type BasicConfig struct {
	ServerAddress  string   `json:"server_address" yaml:"server_address" env:"MEDIACONV_ADDR"`
	ScratchDir     string   `json:"scratch_dir" yaml:"scratch_dir" env:"MEDIACONV_SCRATCH_DIR"`
	MaxUploadMB    int64    `json:"max_upload_mb" yaml:"max_upload_mb" env:"MEDIACONV_MAX_UPLOAD_MB"`
	MaxConcurrent  int      `json:"max_concurrent" yaml:"max_concurrent" env:"MEDIACONV_MAX_CONCURRENT"`
	ScratchTTL     int      `json:"scratch_ttl_minutes" yaml:"scratch_ttl_minutes"`
	ScratchCleanup int      `json:"scratch_cleanup_minutes" yaml:"scratch_cleanup_minutes"`
	AllowedOrigins []string `json:"allowed_origins" yaml:"allowed_origins" env:"MEDIACONV_ALLOWED_ORIGINS" env-separator:","`
}

type FFmpegConfig struct {
	BinaryPath string `json:"binary_path" yaml:"binary_path" env:"FFMPEG_PATH"`
	ProbePath  string `json:"probe_path" yaml:"probe_path" env:"FFPROBE_PATH"`
	SampleRate int    `json:"sample_rate" yaml:"sample_rate"`
	Channels   int    `json:"channels" yaml:"channels"`
}

type AIConfig struct {
	TranscriptionModel string `json:"transcription_model" yaml:"transcription_model"`
	SummaryProvider    string `json:"summary_provider" yaml:"summary_provider" env:"MEDIACONV_SUMMARY_PROVIDER"`
	SummaryModel       string `json:"summary_model" yaml:"summary_model" env:"MEDIACONV_SUMMARY_MODEL"`
	SummaryMaxTokens   int    `json:"summary_max_tokens" yaml:"summary_max_tokens"`
	TimeoutSeconds     int    `json:"timeout_seconds" yaml:"timeout_seconds" env:"MEDIACONV_AI_TIMEOUT"`
	MaxAttempts        int    `json:"max_attempts" yaml:"max_attempts" env:"MEDIACONV_AI_MAX_ATTEMPTS"`
	SummaryCacheTTL    int    `json:"summary_cache_ttl_minutes" yaml:"summary_cache_ttl_minutes"`
}

type ProviderConfig struct {
	BaseURL string `json:"base_url" yaml:"base_url" env:"BASE_URL"`
	Model   string `json:"model" yaml:"model" env:"MODEL"`
	APIKey  string `json:"api_key" yaml:"api_key" env:"API_KEY"`
}

type ProvidersConfig struct {
	OpenAI ProviderConfig `json:"openai" yaml:"openai" env-prefix:"OPENAI_"`
	Claude ProviderConfig `json:"claude" yaml:"claude" env-prefix:"ANTHROPIC_"`
	Gemini ProviderConfig `json:"gemini" yaml:"gemini" env-prefix:"GEMINI_"`
}

type RedisConfig struct {
	Host     string `json:"host" yaml:"host" env:"REDIS_HOST"`
	Port     int    `json:"port" yaml:"port" env:"REDIS_PORT"`
	Username string `json:"username" yaml:"username" env:"REDIS_USERNAME"`
	Password string `json:"password" yaml:"password" env:"REDIS_PASSWORD"`
	DB       int    `json:"db" yaml:"db" env:"REDIS_DB"`
}

// DatabaseConfig configures the optional conversion log.
type DatabaseConfig struct {
	Driver   string `json:"driver" yaml:"driver" env:"MEDIACONV_DB"`
	DSN      string `json:"dsn" yaml:"dsn" env:"MEDIACONV_DB_DSN"`
	Host     string `json:"host" yaml:"host"`
	Port     int    `json:"port" yaml:"port"`
	Username string `json:"username" yaml:"username"`
	Password string `json:"password" yaml:"password" env:"MEDIACONV_DB_PASSWORD"`
	DBName   string `json:"db_name" yaml:"db_name"`
	Params   string `json:"params" yaml:"params"`
}

type LoggingConfig struct {
	Level  string `json:"level" yaml:"level" env:"MEDIACONV_LOG_LEVEL"`
	Format string `json:"format" yaml:"format" env:"MEDIACONV_LOG_FORMAT"`
}

// Load reads configuration from the provided path (defaults to config.json).
// The default file is optional; environment variables override file values.
func Load(path string) (*Config, error) {
	explicit := path != ""
	if !explicit {
		path = defaultConfigPath
	}

	absPath, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("resolve config path: %w", err)
	}

	var cfg Config
	_, statErr := os.Stat(absPath)
	switch {
	case statErr == nil:
		if err := cleanenv.ReadConfig(absPath, &cfg); err != nil {
			return nil, fmt.Errorf("read config %s: %w", absPath, err)
		}
		cfg.resolvePaths(filepath.Dir(absPath))
	case explicit || !errors.Is(statErr, os.ErrNotExist):
		return nil, fmt.Errorf("open config %s: %w", absPath, statErr)
	default:
		if err := cleanenv.ReadEnv(&cfg); err != nil {
			return nil, fmt.Errorf("read environment: %w", err)
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) resolvePaths(base string) {
	dsn := c.Database.DSN
	if c.Database.isSQLite() && dsn != "" && dsn != ":memory:" && !strings.HasPrefix(dsn, "file:") && !filepath.IsAbs(dsn) {
		c.Database.DSN = filepath.Join(base, dsn)
	}
}

// Validate fills defaults and rejects configurations the service cannot start with.
func (c *Config) Validate() error {
	if c.BasicConfig.ServerAddress == "" {
		c.BasicConfig.ServerAddress = ":5000"
	}
	if c.BasicConfig.ScratchDir == "" {
		c.BasicConfig.ScratchDir = "uploads"
	}
	if c.BasicConfig.MaxUploadMB <= 0 {
		c.BasicConfig.MaxUploadMB = 200
	}
	if c.BasicConfig.MaxConcurrent <= 0 {
		c.BasicConfig.MaxConcurrent = 4
	}
	if c.BasicConfig.ScratchTTL <= 0 {
		c.BasicConfig.ScratchTTL = 60
	}
	if c.BasicConfig.ScratchCleanup <= 0 {
		c.BasicConfig.ScratchCleanup = 10
	}

	if c.FFmpeg.BinaryPath == "" {
		c.FFmpeg.BinaryPath = "ffmpeg"
	}
	if c.FFmpeg.ProbePath == "" {
		c.FFmpeg.ProbePath = "ffprobe"
	}
	if c.FFmpeg.SampleRate <= 0 {
		c.FFmpeg.SampleRate = 16000
	}
	if c.FFmpeg.Channels <= 0 {
		c.FFmpeg.Channels = 1
	}

	if c.AI.TranscriptionModel == "" {
		c.AI.TranscriptionModel = "whisper-1"
	}
	c.AI.SummaryProvider = strings.ToLower(strings.TrimSpace(c.AI.SummaryProvider))
	if c.AI.SummaryProvider == "" {
		c.AI.SummaryProvider = ProviderOpenAI
	}
	if c.AI.SummaryMaxTokens <= 0 {
		c.AI.SummaryMaxTokens = 150
	}
	if c.AI.TimeoutSeconds <= 0 {
		c.AI.TimeoutSeconds = 120
	}
	if c.AI.MaxAttempts <= 0 {
		c.AI.MaxAttempts = 3
	}
	if c.AI.SummaryCacheTTL <= 0 {
		c.AI.SummaryCacheTTL = 24 * 60
	}

	if c.Logging.Level == "" {
		c.Logging.Level = "info"
	}
	if c.Logging.Format == "" {
		c.Logging.Format = "text"
	}

	if c.Redis.Host != "" && c.Redis.Port == 0 {
		c.Redis.Port = 6379
	}

	c.Database.Driver = strings.ToLower(strings.TrimSpace(c.Database.Driver))
	switch c.Database.Driver {
	case "":
	case "sqlite", "sqlite3":
		c.Database.Driver = "sqlite3"
		if c.Database.DSN == "" {
			return errors.New("database.dsn must be provided for sqlite")
		}
	case "mysql":
		if c.Database.DSN == "" && (c.Database.Host == "" || c.Database.DBName == "") {
			return errors.New("database.dsn or database.host and database.db_name must be provided for mysql")
		}
		if c.Database.Port == 0 {
			c.Database.Port = 3306
		}
		if c.Database.Params == "" {
			c.Database.Params = "parseTime=true"
		}
	default:
		return fmt.Errorf("unsupported database driver: %s", c.Database.Driver)
	}

	// Transcription always goes through OpenAI.
	if c.Providers.OpenAI.APIKey == "" {
		return errors.New("OPENAI_API_KEY environment variable is not set. Please create a .env file with your API key")
	}
	switch c.AI.SummaryProvider {
	case ProviderOpenAI:
	case ProviderClaude:
		if c.Providers.Claude.APIKey == "" {
			return errors.New("ANTHROPIC_API_KEY must be set when summary_provider is claude")
		}
	case ProviderGemini:
		if c.Providers.Gemini.APIKey == "" {
			return errors.New("GEMINI_API_KEY must be set when summary_provider is gemini")
		}
	default:
		return fmt.Errorf("invalid summary provider: %s", c.AI.SummaryProvider)
	}
	return nil
}

// Provider returns the settings for a named provider.
func (c *Config) Provider(name string) (ProviderConfig, bool) {
	switch name {
	case ProviderOpenAI:
		return c.Providers.OpenAI, true
	case ProviderClaude:
		return c.Providers.Claude, true
	case ProviderGemini:
		return c.Providers.Gemini, true
	default:
		return ProviderConfig{}, false
	}
}

// SummaryModel resolves the chat model used for summaries.
func (c *Config) SummaryModel() string {
	if c.AI.SummaryModel != "" {
		return c.AI.SummaryModel
	}
	if p, ok := c.Provider(c.AI.SummaryProvider); ok && p.Model != "" {
		return p.Model
	}
	switch c.AI.SummaryProvider {
	case ProviderClaude:
		return "claude-3-5-haiku-latest"
	case ProviderGemini:
		return "gemini-2.5-flash"
	default:
		return "gpt-3.5-turbo"
	}
}

// MaxUploadBytes is the request body limit for uploads.
func (c *Config) MaxUploadBytes() int64 {
	return c.BasicConfig.MaxUploadMB << 20
}

func (c *Config) AITimeout() time.Duration {
	return time.Duration(c.AI.TimeoutSeconds) * time.Second
}

func (c *Config) SummaryCacheTTL() time.Duration {
	return time.Duration(c.AI.SummaryCacheTTL) * time.Minute
}

func (c *Config) ScratchTTL() time.Duration {
	return time.Duration(c.BasicConfig.ScratchTTL) * time.Minute
}

func (c *Config) ScratchCleanupInterval() time.Duration {
	return time.Duration(c.BasicConfig.ScratchCleanup) * time.Minute
}

// Enabled reports whether a redis host is configured.
func (r RedisConfig) Enabled() bool {
	return r.Host != ""
}

// Enabled reports whether the conversion log is configured.
func (d DatabaseConfig) Enabled() bool {
	return d.Driver != ""
}

func (d DatabaseConfig) isSQLite() bool {
	switch strings.ToLower(d.Driver) {
	case "sqlite", "sqlite3":
		return true
	}
	return false
}
