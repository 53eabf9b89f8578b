package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config captures environment driven configuration values for the assistant service.
type Config struct {
	HTTPPort            int
	SQLiteDSN           string
	SweepInterval       time.Duration
	ScheduleHorizon     time.Duration
	DefaultDurationMins int

	OpenAIBaseURL string
	OpenAIAPIKey  string
	OpenAIModel   string

	RetrievalBaseURL string
}

// Load parses configuration values from the current process environment.
//
// The loader applies sensible defaults for optional fields while validating
// required values, accumulating every missing or invalid entry into a single
// error so operators can fix them in one pass.
func Load() (Config, error) {
	cfg := Config{
		HTTPPort:            8080,
		SQLiteDSN:           "file:assistant.db",
		SweepInterval:       5 * time.Minute,
		ScheduleHorizon:     365 * 24 * time.Hour,
		DefaultDurationMins: 60,
		OpenAIModel:         "gpt-4o-mini",
	}

	missing := make([]string, 0, 1)
	invalid := make([]string, 0, 2)

	if portValue := strings.TrimSpace(os.Getenv("ASSISTANT_HTTP_PORT")); portValue != "" {
		port, err := strconv.Atoi(portValue)
		if err != nil || port <= 0 {
			invalid = append(invalid, "ASSISTANT_HTTP_PORT")
		} else {
			cfg.HTTPPort = port
		}
	}

	if dsn := strings.TrimSpace(os.Getenv("ASSISTANT_SQLITE_DSN")); dsn != "" {
		cfg.SQLiteDSN = dsn
	}

	if sweepValue := strings.TrimSpace(os.Getenv("ASSISTANT_SWEEP_INTERVAL")); sweepValue != "" {
		interval, err := time.ParseDuration(sweepValue)
		if err != nil || interval <= 0 {
			invalid = append(invalid, "ASSISTANT_SWEEP_INTERVAL")
		} else {
			cfg.SweepInterval = interval
		}
	}

	if horizonValue := strings.TrimSpace(os.Getenv("ASSISTANT_SCHEDULE_HORIZON_DAYS")); horizonValue != "" {
		days, err := strconv.Atoi(horizonValue)
		if err != nil || days <= 0 {
			invalid = append(invalid, "ASSISTANT_SCHEDULE_HORIZON_DAYS")
		} else {
			cfg.ScheduleHorizon = time.Duration(days) * 24 * time.Hour
		}
	}

	if durationValue := strings.TrimSpace(os.Getenv("ASSISTANT_DEFAULT_DURATION_MIN")); durationValue != "" {
		minutes, err := strconv.Atoi(durationValue)
		if err != nil || minutes <= 0 {
			invalid = append(invalid, "ASSISTANT_DEFAULT_DURATION_MIN")
		} else {
			cfg.DefaultDurationMins = minutes
		}
	}

	if baseURL := strings.TrimSpace(os.Getenv("OPENAI_BASE_URL")); baseURL == "" {
		missing = append(missing, "OPENAI_BASE_URL")
	} else {
		cfg.OpenAIBaseURL = baseURL
	}

	if apiKey := strings.TrimSpace(os.Getenv("OPENAI_API_KEY")); apiKey == "" {
		missing = append(missing, "OPENAI_API_KEY")
	} else {
		cfg.OpenAIAPIKey = apiKey
	}

	if model := strings.TrimSpace(os.Getenv("OPENAI_MODEL")); model != "" {
		cfg.OpenAIModel = model
	}

	if baseURL := strings.TrimSpace(os.Getenv("RETRIEVAL_BASE_URL")); baseURL == "" {
		missing = append(missing, "RETRIEVAL_BASE_URL")
	} else {
		cfg.RetrievalBaseURL = baseURL
	}

	if len(missing) > 0 {
		return Config{}, fmt.Errorf("required environment variables are not set: %s", strings.Join(missing, ", "))
	}
	if len(invalid) > 0 {
		return Config{}, fmt.Errorf("environment variables have invalid values: %s", strings.Join(invalid, ", "))
	}

	return cfg, nil
}
