package config

import (
	"time"
)

// Config holds all application configuration in a structured way.
type Config struct {
	App        AppConfig
	Whatsapp   WhatsappConfig
	OpenClaw   OpenClawConfig
	WorkerPool WorkerPoolConfig
}

type AppConfig struct {
	Version     string
	ServiceName string
	Port        string
	Debug       bool
	BasePath    string
	Environment string
}

type WhatsappConfig struct {
	VerifyToken      string
	PhoneID          string
	AccessToken      string
	BusinessID       string
	APIVersion       string
	GraphBaseURL     string // overridable for tests; default https://graph.facebook.com
	MaxMessageLength int
}

type OpenClawConfig struct {
	BaseURL        string
	APIKey         string
	Timeout        time.Duration // overall client timeout
	MessageTimeout time.Duration // per-forward request bound
}

type WorkerPoolConfig struct {
	Size      int
	QueueSize int
}

// Global provides access to the loaded configuration globally.
var Global *Config

// LoadConfig loads configuration from environment variables or defaults.
func LoadConfig() (*Config, error) {
	debug := false
	if v := getEnv("APP_DEBUG", ""); v == "true" || v == "1" || v == "on" {
		debug = true
	} else if v := getEnv("DEBUG", ""); v == "true" || v == "1" {
		debug = true
	}

	appCfg := AppConfig{
		Version:     "v1.0.0",
		ServiceName: "whatsapp-webhook",
		Port:        getEnv("APP_PORT", getEnv("PORT", "8003")),
		Debug:       debug,
		BasePath:    getEnv("APP_BASE_PATH", ""),
		Environment: getEnv("APP_ENV", "development"),
	}

	waCfg := WhatsappConfig{
		VerifyToken:      getEnv("WHATSAPP_VERIFY_TOKEN", ""),
		PhoneID:          getEnv("WHATSAPP_PHONE_ID", ""),
		AccessToken:      getEnv("WHATSAPP_ACCESS_TOKEN", ""),
		BusinessID:       getEnv("WHATSAPP_BUSINESS_ACCOUNT_ID", ""),
		APIVersion:       getEnv("WHATSAPP_API_VERSION", "v18.0"),
		GraphBaseURL:     getEnv("WHATSAPP_GRAPH_BASE_URL", "https://graph.facebook.com"),
		MaxMessageLength: getEnvInt("MAX_MESSAGE_LENGTH", 4096),
	}

	ocCfg := OpenClawConfig{
		BaseURL:        getEnv("OPENCLAW_URL", ""),
		APIKey:         getEnv("OPENCLAW_API_KEY", ""),
		Timeout:        time.Duration(getEnvInt("OPENCLAW_TIMEOUT", 60)) * time.Second,
		MessageTimeout: time.Duration(getEnvInt("MESSAGE_TIMEOUT", 30)) * time.Second,
	}

	cfg := &Config{
		App:        appCfg,
		Whatsapp:   waCfg,
		OpenClaw:   ocCfg,
		WorkerPool: WorkerPoolConfig{Size: getEnvInt("MESSAGE_WORKER_POOL_SIZE", 20), QueueSize: getEnvInt("MESSAGE_WORKER_QUEUE_SIZE", 1000)},
	}

	Global = cfg
	return cfg, nil
}

// Validate returns warnings for missing required values. Missing config
// degrades the service (ingestion still acknowledges) but is not fatal.
func (c *Config) Validate() []string {
	var warnings []string
	if c.Whatsapp.VerifyToken == "" {
		warnings = append(warnings, "WHATSAPP_VERIFY_TOKEN not set; webhook verification will always fail")
	}
	if c.Whatsapp.PhoneID == "" {
		warnings = append(warnings, "WHATSAPP_PHONE_ID not set; outbound sends are disabled")
	}
	if c.Whatsapp.AccessToken == "" {
		warnings = append(warnings, "WHATSAPP_ACCESS_TOKEN not set; outbound sends are disabled")
	}
	if c.OpenClaw.BaseURL == "" {
		warnings = append(warnings, "OPENCLAW_URL not set; inbound messages will be accepted but not processed")
	}
	return warnings
}

// WhatsappConfigured reports whether the Cloud API send path has its
// required credentials.
func (c *Config) WhatsappConfigured() bool {
	return c.Whatsapp.PhoneID != "" && c.Whatsapp.AccessToken != ""
}

// OpenClawConfigured reports whether a gateway is set.
func (c *Config) OpenClawConfigured() bool {
	return c.OpenClaw.BaseURL != ""
}
