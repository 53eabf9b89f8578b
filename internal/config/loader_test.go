package config

import (
	"os"
	"testing"
	"time"
)

func TestLoader_ParseEnvironment(t *testing.T) {

	t.Run("applies defaults when variables are missing", func(t *testing.T) {
		unset := []string{
			"ASSISTANT_HTTP_PORT",
			"ASSISTANT_SQLITE_DSN",
			"ASSISTANT_SWEEP_INTERVAL",
			"ASSISTANT_SCHEDULE_HORIZON_DAYS",
			"ASSISTANT_DEFAULT_DURATION_MIN",
			"OPENAI_MODEL",
		}
		for _, key := range unset {
			if err := os.Unsetenv(key); err != nil {
				t.Fatalf("failed to unset %s: %v", key, err)
			}
		}

		t.Setenv("OPENAI_BASE_URL", "https://api.openai.com/v1")
		t.Setenv("OPENAI_API_KEY", "sk-test")
		t.Setenv("RETRIEVAL_BASE_URL", "http://localhost:9000")

		cfg, err := Load()
		if err != nil {
			t.Fatalf("Load returned error: %v", err)
		}

		if cfg.HTTPPort != 8080 {
			t.Fatalf("expected default HTTP port 8080, got %d", cfg.HTTPPort)
		}
		if cfg.SQLiteDSN != "file:assistant.db" {
			t.Fatalf("unexpected default DSN: %q", cfg.SQLiteDSN)
		}
		if cfg.SweepInterval != 5*time.Minute {
			t.Fatalf("expected default sweep interval 5m, got %s", cfg.SweepInterval)
		}
		if cfg.ScheduleHorizon != 365*24*time.Hour {
			t.Fatalf("expected default horizon of 365 days, got %s", cfg.ScheduleHorizon)
		}
		if cfg.DefaultDurationMins != 60 {
			t.Fatalf("expected default duration 60, got %d", cfg.DefaultDurationMins)
		}
		if cfg.OpenAIModel != "gpt-4o-mini" {
			t.Fatalf("unexpected default model: %q", cfg.OpenAIModel)
		}
	})

	t.Run("errors when required values are missing", func(t *testing.T) {
		for _, key := range []string{
			"OPENAI_BASE_URL",
			"OPENAI_API_KEY",
			"RETRIEVAL_BASE_URL",
		} {
			if err := os.Unsetenv(key); err != nil {
				t.Fatalf("failed to unset %s: %v", key, err)
			}
		}

		_, err := Load()
		if err == nil {
			t.Fatalf("expected error when required values are missing")
		}
		expected := "required environment variables are not set: OPENAI_BASE_URL, OPENAI_API_KEY, RETRIEVAL_BASE_URL"
		if err.Error() != expected {
			t.Fatalf("unexpected error message: %q", err.Error())
		}
	})

	t.Run("parses duration and numeric fields", func(t *testing.T) {
		t.Setenv("OPENAI_BASE_URL", "https://llm.internal/v1")
		t.Setenv("OPENAI_API_KEY", "sk-test")
		t.Setenv("OPENAI_MODEL", "gpt-4o")
		t.Setenv("RETRIEVAL_BASE_URL", "http://search.internal")
		t.Setenv("ASSISTANT_HTTP_PORT", "9090")
		t.Setenv("ASSISTANT_SQLITE_DSN", "file:/tmp/assistant.db")
		t.Setenv("ASSISTANT_SWEEP_INTERVAL", "1m")
		t.Setenv("ASSISTANT_SCHEDULE_HORIZON_DAYS", "30")
		t.Setenv("ASSISTANT_DEFAULT_DURATION_MIN", "45")

		cfg, err := Load()
		if err != nil {
			t.Fatalf("Load returned error: %v", err)
		}

		if cfg.HTTPPort != 9090 {
			t.Fatalf("expected port 9090, got %d", cfg.HTTPPort)
		}
		if cfg.SweepInterval != time.Minute {
			t.Fatalf("expected sweep interval 1m, got %s", cfg.SweepInterval)
		}
		if cfg.ScheduleHorizon != 30*24*time.Hour {
			t.Fatalf("expected horizon of 30 days, got %s", cfg.ScheduleHorizon)
		}
		if cfg.DefaultDurationMins != 45 {
			t.Fatalf("expected default duration 45, got %d", cfg.DefaultDurationMins)
		}
		if cfg.OpenAIModel != "gpt-4o" {
			t.Fatalf("expected model gpt-4o, got %q", cfg.OpenAIModel)
		}
	})

	t.Run("rejects malformed values", func(t *testing.T) {
		t.Setenv("OPENAI_BASE_URL", "https://llm.internal/v1")
		t.Setenv("OPENAI_API_KEY", "sk-test")
		t.Setenv("RETRIEVAL_BASE_URL", "http://search.internal")
		t.Setenv("ASSISTANT_HTTP_PORT", "not-a-port")

		if _, err := Load(); err == nil {
			t.Fatalf("expected error for malformed port")
		}
	})
}
