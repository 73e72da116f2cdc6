// internal/config/config.go
//
// Process configuration read from the environment (and an optional .env
// file). Every key has a default so the service runs with no setup.

package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
)

// Config is the resolved process configuration.
type Config struct {
	Port     string
	LogLevel string
	DBPath   string // empty → in-memory history

	AnswersFile string
	AllowedFile string
	AnswersURL  string
	AllowedURL  string

	OperatorSecret    string
	OperatorTokenDays int
	DailySalt         string
	ClientOrigin      string

	Live Live
}

// Live configures the browser-driven surface and the orchestrator.
type Live struct {
	URL           string
	Headless      bool
	BrowserBin    string
	NavTimeout    time.Duration
	StepTimeout   time.Duration
	KeyRate       float64 // keystrokes per second
	MaxRejections int
}

const devSecret = "dev_secret_change_me"

// Load reads .env (if present) and the environment.
func Load() Config {
	_ = godotenv.Load()
	c := Config{
		Port:     getEnv("PORT", "5175"),
		LogLevel: getEnv("LOG_LEVEL", "info"),
		DBPath:   getEnv("DB_PATH", ""),

		AnswersFile: getEnv("WORDS_ANSWERS_FILE", ""),
		AllowedFile: getEnv("WORDS_ALLOWED_FILE", ""),
		AnswersURL:  getEnv("WORDS_ANSWERS_URL", ""),
		AllowedURL:  getEnv("WORDS_ALLOWED_URL", ""),

		OperatorSecret:    getEnv("OPERATOR_SECRET", devSecret),
		OperatorTokenDays: envInt("OPERATOR_TOKEN_DAYS", 14),
		DailySalt:         getEnv("DAILY_SALT", "local_dev_salt"),
		ClientOrigin:      getEnv("CLIENT_ORIGIN", "http://localhost:5173"),

		Live: Live{
			URL:           getEnv("LIVE_URL", "https://www.nytimes.com/games/wordle/index.html"),
			Headless:      envBool("LIVE_HEADLESS", true),
			BrowserBin:    getEnv("LIVE_BROWSER_BIN", ""),
			NavTimeout:    envDuration("LIVE_NAV_TIMEOUT", 30*time.Second),
			StepTimeout:   envDuration("LIVE_STEP_TIMEOUT", 10*time.Second),
			KeyRate:       envFloat("LIVE_KEY_RATE", 20),
			MaxRejections: envInt("LIVE_MAX_REJECTIONS", 12),
		},
	}
	if c.OperatorSecret == devSecret {
		log.Warn().Msg("OPERATOR_SECRET not set; using development secret")
	}
	return c
}

// getEnv returns the value of k or def if unset/empty.
func getEnv(k, def string) string {
	if v := strings.TrimSpace(os.Getenv(k)); v != "" {
		return v
	}
	return def
}

func envInt(k string, def int) int {
	v := getEnv(k, "")
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		log.Warn().Str("key", k).Str("value", v).Msg("not an integer; using default")
		return def
	}
	return n
}

func envFloat(k string, def float64) float64 {
	v := getEnv(k, "")
	if v == "" {
		return def
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil || f <= 0 {
		log.Warn().Str("key", k).Str("value", v).Msg("not a positive number; using default")
		return def
	}
	return f
}

func envBool(k string, def bool) bool {
	v := getEnv(k, "")
	if v == "" {
		return def
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		log.Warn().Str("key", k).Str("value", v).Msg("not a boolean; using default")
		return def
	}
	return b
}

func envDuration(k string, def time.Duration) time.Duration {
	v := getEnv(k, "")
	if v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil || d <= 0 {
		log.Warn().Str("key", k).Str("value", v).Msg("not a positive duration; using default")
		return def
	}
	return d
}
