package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Data      DataConfig      `yaml:"data"`
	Warehouse WarehouseConfig `yaml:"warehouse"`
	Assistant AssistantConfig `yaml:"assistant"`
	History   HistoryConfig   `yaml:"history"`
	Report    ReportConfig    `yaml:"report"`
	Platform  PlatformConfig  `yaml:"platform"`
	Logger    LoggerConfig    `yaml:"log"`
	Security  SecurityConfig  `yaml:"security"`
}

type ServerConfig struct {
	Host            string        `yaml:"host"`
	Port            int           `yaml:"port"`
	ReadTimeout     time.Duration `yaml:"read_timeout"`
	WriteTimeout    time.Duration `yaml:"write_timeout"`
	IdleTimeout     time.Duration `yaml:"idle_timeout"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
}

type DataConfig struct {
	CSVFile  string `yaml:"csv_file"`
	CacheDir string `yaml:"cache_dir"`
	Watch    bool   `yaml:"watch"`
}

type WarehouseConfig struct {
	Driver      string        `yaml:"driver"` // clickhouse or postgres
	Host        string        `yaml:"host"`
	Port        int           `yaml:"port"`
	Database    string        `yaml:"database"`
	Username    string        `yaml:"username"`
	Password    string        `yaml:"password"`
	DialTimeout time.Duration `yaml:"dial_timeout"`
}

type AssistantConfig struct {
	APIKey      string `yaml:"api_key"`
	Model       string `yaml:"model"`
	MaxTokens   int    `yaml:"max_tokens"`
	ContextFile string `yaml:"context_file"`
}

type HistoryConfig struct {
	Path string `yaml:"path"`
}

type ReportConfig struct {
	OutputDir    string `yaml:"output_dir"`
	Schedule     string `yaml:"schedule"` // 5-field cron expression, empty disables
	SlackToken   string `yaml:"slack_token"`
	SlackChannel string `yaml:"slack_channel"`
}

type PlatformConfig struct {
	BaseURL     string `yaml:"base_url"`
	Token       string `yaml:"token"`
	AppName     string `yaml:"app_name"`
	WarehouseID string `yaml:"warehouse_id"`
	Retries     int    `yaml:"retries"`
}

type LoggerConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

type SecurityConfig struct {
	EnableRateLimit bool     `yaml:"rate_limit_enabled"`
	RateLimitRPS    int      `yaml:"rate_limit_rps"`
	RateLimitBurst  int      `yaml:"rate_limit_burst"`
	AllowedOrigins  []string `yaml:"allowed_origins"`
	TrustedProxies  []string `yaml:"trusted_proxies"`
}

// Load builds the configuration in three layers: the YAML file (optional),
// SALESDASH_* environment overrides, then validation. A missing file is not
// an error; a malformed one is.
func Load(path string) (*Config, error) {
	cfg := defaults()

	if path == "" {
		path = getEnvString("SALESDASH_CONFIG", "salesdash.yaml")
	}
	if data, err := os.ReadFile(path); err == nil {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config file %s: %w", path, err)
		}
	} else if !os.IsNotExist(err) {
		return nil, fmt.Errorf("read config file %s: %w", path, err)
	}

	cfg.applyEnv()

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

func defaults() *Config {
	return &Config{
		Server: ServerConfig{
			Host:            "localhost",
			Port:            8084,
			ReadTimeout:     10 * time.Second,
			WriteTimeout:    10 * time.Second,
			IdleTimeout:     60 * time.Second,
			ShutdownTimeout: 30 * time.Second,
		},
		Data: DataConfig{
			CSVFile:  "data/sales.csv",
			CacheDir: ".cache",
			Watch:    true,
		},
		Warehouse: WarehouseConfig{
			Driver:      "clickhouse",
			Host:        "localhost",
			Port:        9000,
			Database:    "sales",
			Username:    "default",
			DialTimeout: 5 * time.Second,
		},
		Assistant: AssistantConfig{
			Model:       "claude-sonnet-4-5-20250929",
			MaxTokens:   1024,
			ContextFile: "llms.txt",
		},
		History: HistoryConfig{
			Path: "salesdash.db",
		},
		Report: ReportConfig{
			OutputDir: "reports",
		},
		Platform: PlatformConfig{
			AppName: "sales-dashboard",
			Retries: 3,
		},
		Logger: LoggerConfig{
			Level:  "info",
			Format: "json",
		},
		Security: SecurityConfig{
			EnableRateLimit: true,
			RateLimitRPS:    100,
			RateLimitBurst:  10,
			AllowedOrigins:  []string{"http://localhost:8084"},
			TrustedProxies:  []string{"127.0.0.1"},
		},
	}
}

func (c *Config) applyEnv() {
	c.Server.Host = getEnvString("SALESDASH_SERVER_HOST", c.Server.Host)
	c.Server.Port = getEnvInt("SALESDASH_SERVER_PORT", c.Server.Port)
	c.Server.ReadTimeout = getEnvDuration("SALESDASH_SERVER_READ_TIMEOUT", c.Server.ReadTimeout)
	c.Server.WriteTimeout = getEnvDuration("SALESDASH_SERVER_WRITE_TIMEOUT", c.Server.WriteTimeout)
	c.Server.IdleTimeout = getEnvDuration("SALESDASH_SERVER_IDLE_TIMEOUT", c.Server.IdleTimeout)
	c.Server.ShutdownTimeout = getEnvDuration("SALESDASH_SERVER_SHUTDOWN_TIMEOUT", c.Server.ShutdownTimeout)

	c.Data.CSVFile = getEnvString("SALESDASH_CSV_FILE", c.Data.CSVFile)
	c.Data.CacheDir = getEnvString("SALESDASH_CACHE_DIR", c.Data.CacheDir)
	c.Data.Watch = getEnvBool("SALESDASH_WATCH", c.Data.Watch)

	c.Warehouse.Driver = getEnvString("SALESDASH_WAREHOUSE_DRIVER", c.Warehouse.Driver)
	c.Warehouse.Host = getEnvString("SALESDASH_WAREHOUSE_HOST", c.Warehouse.Host)
	c.Warehouse.Port = getEnvInt("SALESDASH_WAREHOUSE_PORT", c.Warehouse.Port)
	c.Warehouse.Database = getEnvString("SALESDASH_WAREHOUSE_DATABASE", c.Warehouse.Database)
	c.Warehouse.Username = getEnvString("SALESDASH_WAREHOUSE_USER", c.Warehouse.Username)
	c.Warehouse.Password = getEnvString("SALESDASH_WAREHOUSE_PASSWORD", c.Warehouse.Password)

	c.Assistant.APIKey = getEnvString("ANTHROPIC_API_KEY", c.Assistant.APIKey)
	c.Assistant.Model = getEnvString("SALESDASH_ASSISTANT_MODEL", c.Assistant.Model)
	c.Assistant.MaxTokens = getEnvInt("SALESDASH_ASSISTANT_MAX_TOKENS", c.Assistant.MaxTokens)
	c.Assistant.ContextFile = getEnvString("SALESDASH_CONTEXT_FILE", c.Assistant.ContextFile)

	c.History.Path = getEnvString("SALESDASH_HISTORY_PATH", c.History.Path)

	c.Report.OutputDir = getEnvString("SALESDASH_REPORT_DIR", c.Report.OutputDir)
	c.Report.Schedule = getEnvString("SALESDASH_REPORT_SCHEDULE", c.Report.Schedule)
	c.Report.SlackToken = getEnvString("SLACK_BOT_TOKEN", c.Report.SlackToken)
	c.Report.SlackChannel = getEnvString("SALESDASH_SLACK_CHANNEL", c.Report.SlackChannel)

	c.Platform.BaseURL = getEnvString("SALESDASH_PLATFORM_URL", c.Platform.BaseURL)
	c.Platform.Token = getEnvString("SALESDASH_PLATFORM_TOKEN", c.Platform.Token)
	c.Platform.AppName = getEnvString("SALESDASH_APP_NAME", c.Platform.AppName)
	c.Platform.WarehouseID = getEnvString("SALESDASH_WAREHOUSE_ID", c.Platform.WarehouseID)

	c.Logger.Level = getEnvString("SALESDASH_LOG_LEVEL", c.Logger.Level)
	c.Logger.Format = getEnvString("SALESDASH_LOG_FORMAT", c.Logger.Format)

	c.Security.EnableRateLimit = getEnvBool("SALESDASH_RATE_LIMIT_ENABLED", c.Security.EnableRateLimit)
	c.Security.RateLimitRPS = getEnvInt("SALESDASH_RATE_LIMIT_RPS", c.Security.RateLimitRPS)
	c.Security.RateLimitBurst = getEnvInt("SALESDASH_RATE_LIMIT_BURST", c.Security.RateLimitBurst)
	c.Security.AllowedOrigins = getEnvStringSlice("SALESDASH_ALLOWED_ORIGINS", c.Security.AllowedOrigins)
	c.Security.TrustedProxies = getEnvStringSlice("SALESDASH_TRUSTED_PROXIES", c.Security.TrustedProxies)
}

func (c *Config) validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("server port must be between 1 and 65535, got %d", c.Server.Port)
	}
	if c.Server.ReadTimeout <= 0 {
		return fmt.Errorf("server read timeout must be positive")
	}
	if c.Server.WriteTimeout <= 0 {
		return fmt.Errorf("server write timeout must be positive")
	}
	if c.Data.CSVFile == "" {
		return fmt.Errorf("CSV file path cannot be empty")
	}

	validDrivers := []string{"clickhouse", "postgres"}
	if !contains(validDrivers, c.Warehouse.Driver) {
		return fmt.Errorf("invalid warehouse driver %q, must be one of: %s", c.Warehouse.Driver, strings.Join(validDrivers, ", "))
	}

	validLogLevels := []string{"debug", "info", "warn", "error"}
	if !contains(validLogLevels, c.Logger.Level) {
		return fmt.Errorf("invalid log level %q, must be one of: %s", c.Logger.Level, strings.Join(validLogLevels, ", "))
	}

	validLogFormats := []string{"json", "text"}
	if !contains(validLogFormats, c.Logger.Format) {
		return fmt.Errorf("invalid log format %q, must be one of: %s", c.Logger.Format, strings.Join(validLogFormats, ", "))
	}

	if c.Security.RateLimitRPS <= 0 {
		return fmt.Errorf("rate limit RPS must be positive")
	}
	if c.Security.RateLimitBurst <= 0 {
		return fmt.Errorf("rate limit burst must be positive")
	}

	if c.Assistant.MaxTokens <= 0 {
		return fmt.Errorf("assistant max tokens must be positive")
	}

	return nil
}

func getEnvString(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}

func getEnvStringSlice(key string, defaultValue []string) []string {
	if value := os.Getenv(key); value != "" {
		return strings.Split(value, ",")
	}
	return defaultValue
}

func contains(slice []string, item string) bool {
	for _, s := range slice {
		if s == item {
			return true
		}
	}
	return false
}

func (c *Config) Address() string {
	return fmt.Sprintf("%s:%d", c.Server.Host, c.Server.Port)
}
