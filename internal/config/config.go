package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v2"

	"facebook-extractor/pkg/types"
)

type Config struct {
	Facebook   FacebookConfig   `yaml:"facebook"`
	Scraper    ScraperConfig    `yaml:"scraper"`
	Media      MediaConfig      `yaml:"media"`
	Screenshot ScreenshotConfig `yaml:"screenshot"`
	Database   DatabaseConfig   `yaml:"database"`
	Logging    LoggingConfig    `yaml:"logging"`
	Monitoring MonitoringConfig `yaml:"monitoring"`
	API        APIConfig        `yaml:"api"`
}

type FacebookConfig struct {
	BaseURL      string          `yaml:"base_url"`
	Browser      string          `yaml:"browser"`
	Headless     bool            `yaml:"headless"`
	Timeout      int             `yaml:"timeout"`
	SeleniumPort int             `yaml:"selenium_port"`
	DriverPath   string          `yaml:"driver_path"`
	RateLimit    RateLimitConfig `yaml:"rate_limit"`
	Auth         AuthConfig      `yaml:"auth"`
}

type AuthConfig struct {
	CookiesFile string `yaml:"cookies_file"`
	UserAgent   string `yaml:"user_agent"`
	Email       string `yaml:"-"`
	Password    string `yaml:"-"`
}

type RateLimitConfig struct {
	RequestsPerMinute    int `yaml:"requests_per_minute"`
	DelayBetweenRequests int `yaml:"delay_between_requests"`
}

type ScraperConfig struct {
	OutputFormat   string `yaml:"output_format"`
	SkipUserLookup bool   `yaml:"skip_user_lookup"`
}

type MediaConfig struct {
	TempDir           string  `yaml:"temp_dir"`
	Timeout           int     `yaml:"timeout"`
	RetryCount        int     `yaml:"retry_count"`
	RequestsPerSecond float64 `yaml:"requests_per_second"`
}

type ScreenshotConfig struct {
	Disabled bool `yaml:"disabled"`
	Attempts int  `yaml:"attempts"`
	Delay    int  `yaml:"delay"`
}

type DatabaseConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	Name     string `yaml:"name"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	SSLMode  string `yaml:"ssl_mode"`
}

type LoggingConfig struct {
	Level string `yaml:"level"`
	File  string `yaml:"file"`
}

type MonitoringConfig struct {
	MetricsFile       string  `yaml:"metrics_file"`
	MaxErrorRate      float64 `yaml:"max_error_rate"`
	MaxUnhandledRate  float64 `yaml:"max_unhandled_rate"`
	StaleAfterMinutes int     `yaml:"stale_after_minutes"`
}

type APIConfig struct {
	Port int `yaml:"port"`
}

// Targets is a batch of URLs for the lookup client.
type Targets struct {
	Posts []string `yaml:"posts"`
	Users []string `yaml:"users"`
}

func Load(configFile string) (*Config, error) {
	// .env is optional
	_ = godotenv.Load()

	if _, err := os.Stat(configFile); os.IsNotExist(err) {
		return nil, fmt.Errorf("config file not found: %s", configFile)
	}

	data, err := os.ReadFile(configFile)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var config Config
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	config.applyEnv()
	config.applyDefaults()
	return &config, nil
}

func (c *Config) applyEnv() {
	if email := os.Getenv("FACEBOOK_EMAIL"); email != "" {
		c.Facebook.Auth.Email = email
	}
	if password := os.Getenv("FACEBOOK_PASSWORD"); password != "" {
		c.Facebook.Auth.Password = password
	}
	if dbHost := os.Getenv("DB_HOST"); dbHost != "" {
		c.Database.Host = dbHost
	}
	if dbPort := os.Getenv("DB_PORT"); dbPort != "" {
		if port, err := strconv.Atoi(dbPort); err == nil {
			c.Database.Port = port
		}
	}
	if dbUser := os.Getenv("DB_USER"); dbUser != "" {
		c.Database.User = dbUser
	}
	if dbPassword := os.Getenv("DB_PASSWORD"); dbPassword != "" {
		c.Database.Password = dbPassword
	}
	if dbName := os.Getenv("DB_NAME"); dbName != "" {
		c.Database.Name = dbName
	}
	if tempDir := os.Getenv("MEDIA_TEMP_DIR"); tempDir != "" {
		c.Media.TempDir = tempDir
	}
}

func (c *Config) applyDefaults() {
	if c.Facebook.BaseURL == "" {
		c.Facebook.BaseURL = "https://www.facebook.com"
	}
	if c.Facebook.Browser == "" {
		c.Facebook.Browser = "chrome"
	}
	if c.Facebook.Timeout == 0 {
		c.Facebook.Timeout = 60
	}
	if c.Facebook.SeleniumPort == 0 {
		c.Facebook.SeleniumPort = 4444
	}
	if c.Facebook.DriverPath == "" {
		c.Facebook.DriverPath = "geckodriver"
	}
	if c.Facebook.RateLimit.RequestsPerMinute == 0 {
		c.Facebook.RateLimit.RequestsPerMinute = 10
	}
	if c.Media.TempDir == "" {
		c.Media.TempDir = "tmp/forki"
	}
	if c.Media.Timeout == 0 {
		c.Media.Timeout = 60
	}
	if c.Media.RequestsPerSecond == 0 {
		c.Media.RequestsPerSecond = 2
	}
	if c.Screenshot.Attempts == 0 {
		c.Screenshot.Attempts = 5
	}
	if c.Screenshot.Delay == 0 {
		c.Screenshot.Delay = 5
	}
	if c.Scraper.OutputFormat == "" {
		c.Scraper.OutputFormat = "json"
	}
	if c.Database.SSLMode == "" {
		c.Database.SSLMode = "disable"
	}
	if c.Logging.Level == "" {
		c.Logging.Level = "info"
	}
	if c.Monitoring.MetricsFile == "" {
		c.Monitoring.MetricsFile = "data/metrics.json"
	}
	if c.Monitoring.MaxErrorRate == 0 {
		c.Monitoring.MaxErrorRate = 0.5
	}
	if c.Monitoring.MaxUnhandledRate == 0 {
		c.Monitoring.MaxUnhandledRate = 0.2
	}
	if c.Monitoring.StaleAfterMinutes == 0 {
		c.Monitoring.StaleAfterMinutes = 120
	}
	if c.API.Port == 0 {
		c.API.Port = 8080
	}
}

// Credentials returns the login used when saved cookies no longer work.
func (a AuthConfig) Credentials() (string, string, error) {
	if a.Email == "" || a.Password == "" {
		return "", "", fmt.Errorf("%w: set FACEBOOK_EMAIL and FACEBOOK_PASSWORD", types.ErrMissingCredentials)
	}
	return a.Email, a.Password, nil
}

func (f FacebookConfig) PageTimeout() time.Duration {
	return time.Duration(f.Timeout) * time.Second
}

// LookupInterval is the minimum spacing between two page visits.
func (f FacebookConfig) LookupInterval() time.Duration {
	if f.RateLimit.DelayBetweenRequests > 0 {
		return time.Duration(f.RateLimit.DelayBetweenRequests) * time.Second
	}
	return time.Minute / time.Duration(f.RateLimit.RequestsPerMinute)
}

func (s ScreenshotConfig) DelayDuration() time.Duration {
	return time.Duration(s.Delay) * time.Second
}

func (m MediaConfig) TimeoutDuration() time.Duration {
	return time.Duration(m.Timeout) * time.Second
}

func LoadTargets(targetsFile string) (*Targets, error) {
	if _, err := os.Stat(targetsFile); os.IsNotExist(err) {
		return nil, fmt.Errorf("targets file not found: %s", targetsFile)
	}

	data, err := os.ReadFile(targetsFile)
	if err != nil {
		return nil, fmt.Errorf("failed to read targets file: %w", err)
	}

	var targets Targets
	if err := yaml.Unmarshal(data, &targets); err != nil {
		return nil, fmt.Errorf("failed to parse targets file: %w", err)
	}

	return &targets, nil
}
