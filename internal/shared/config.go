package shared

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
)

type Config struct {
	AppEnv      string
	HTTPAddr    string
	MetricsAddr string
	MySQLDSN    string
	RedisAddr   string
	RedisDB     int
	RedisPass   string

	OpenAIKey    string
	OpenAIOrg    string
	OpenAIModel  string
	DraftPrompt  string // override for the canonical safety prompt
	DraftTimeout time.Duration

	TwilioSID      string
	TwilioToken    string
	TwilioFrom     string
	GBPBase        string
	GBPToken       string
	PublishTimeout time.Duration

	CacheTTL       time.Duration
	OnboardWorkers int
}

func Load() Config {
	// .env is optional; real deployments set the environment directly.
	_ = godotenv.Load()

	atoi := func(k string, def int) int {
		if v := os.Getenv(k); v != "" {
			if n, err := strconv.Atoi(v); err == nil {
				return n
			}
		}
		return def
	}
	c := Config{
		AppEnv:      env("APP_ENV", "prod"),
		HTTPAddr:    env("HTTP_ADDR", ":8080"),
		MetricsAddr: env("METRICS_ADDR", ":9100"),
		MySQLDSN:    env("MYSQL_DSN", "root:root@tcp(localhost:3306)/reviewdesk?parseTime=true&charset=utf8mb4,utf8&loc=UTC"),
		RedisAddr:   env("REDIS_ADDR", "localhost:6379"),
		RedisPass:   env("REDIS_PASSWORD", ""),
		RedisDB:     atoi("REDIS_DB", 0),

		OpenAIKey:    env("OPENAI_API_KEY", ""),
		OpenAIOrg:    env("OPENAI_ORG_ID", ""),
		OpenAIModel:  env("OPENAI_MODEL", "gpt-4o"),
		DraftPrompt:  env("DRAFT_SYSTEM_PROMPT", ""),
		DraftTimeout: time.Duration(atoi("DRAFT_TIMEOUT_SECONDS", 30)) * time.Second,

		TwilioSID:      env("TWILIO_ACCOUNT_SID", ""),
		TwilioToken:    env("TWILIO_AUTH_TOKEN", ""),
		TwilioFrom:     env("TWILIO_WHATSAPP_NUMBER", ""),
		GBPBase:        env("GBP_BASE_URL", "https://mybusiness.googleapis.com/v4"),
		GBPToken:       env("GBP_ACCESS_TOKEN", ""),
		PublishTimeout: time.Duration(atoi("PUBLISH_TIMEOUT_SECONDS", 20)) * time.Second,

		CacheTTL:       time.Duration(atoi("CACHE_TTL_SECONDS", 900)) * time.Second,
		OnboardWorkers: atoi("ONBOARD_WORKERS", 4),
	}
	if c.OpenAIKey == "" {
		log.Warn().Msg("OPENAI_API_KEY is empty")
	}
	if c.TwilioSID == "" || c.TwilioToken == "" {
		log.Warn().Msg("Twilio credentials are not fully configured")
	}
	return c
}

func env(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}
