package config

import "testing"

func withEnv(t *testing.T, kv map[string]string, fn func()) {
	t.Helper()
	for k, v := range kv {
		t.Setenv(k, v)
	}
	fn()
}

func baseEnv() map[string]string {
	return map[string]string{
		"HARNESS_DB_DSN":         "postgres://localhost/harness",
		"HARNESS_SLACK_BOT_TOKEN": "xoxb-test",
		"HARNESS_SLACK_APP_TOKEN": "xapp-test",
	}
}

func TestLoad_Defaults(t *testing.T) {
	withEnv(t, baseEnv(), func() {
		cfg, err := Load()
		if err != nil {
			t.Fatalf("load: %v", err)
		}
		if cfg.Workers != 5 || cfg.BaseSleepSeconds != 60 || cfg.MaxAttempts != 3 {
			t.Fatalf("unexpected defaults: %+v", cfg)
		}
		if cfg.HTTPAddr != ":8080" || cfg.OtelExporter != "none" {
			t.Fatalf("unexpected defaults: %+v", cfg)
		}
		if cfg.SweepEverySeconds != 300 {
			t.Fatalf("unexpected default sweep interval: %+v", cfg)
		}
	})
}

func TestLoad_RejectsNonPositiveSweepInterval(t *testing.T) {
	env := baseEnv()
	env["HARNESS_SWEEP_EVERY_SECONDS"] = "0"
	withEnv(t, env, func() {
		if _, err := Load(); err == nil {
			t.Fatal("expected an error for a non-positive sweep interval")
		}
	})
}

func TestLoad_MissingRequired(t *testing.T) {
	if _, err := Load(); err == nil {
		t.Fatal("expected an error with no env set")
	}
}

func TestLoad_RejectsInvertedJitter(t *testing.T) {
	env := baseEnv()
	env["HARNESS_MIN_JITTER_SECONDS"] = "20"
	env["HARNESS_MAX_JITTER_SECONDS"] = "10"
	withEnv(t, env, func() {
		if _, err := Load(); err == nil {
			t.Fatal("expected an error when max jitter <= min jitter")
		}
	})
}

func TestLoad_RejectsUnknownExporter(t *testing.T) {
	env := baseEnv()
	env["HARNESS_OTEL_EXPORTER"] = "carrier-pigeon"
	withEnv(t, env, func() {
		if _, err := Load(); err == nil {
			t.Fatal("expected an error for an unrecognized exporter")
		}
	})
}

func TestLoad_IgnoresUnparsableIntOverride(t *testing.T) {
	env := baseEnv()
	env["HARNESS_WORKERS"] = "not-a-number"
	withEnv(t, env, func() {
		cfg, err := Load()
		if err != nil {
			t.Fatalf("load: %v", err)
		}
		if cfg.Workers != 5 {
			t.Fatalf("expected fallback to default worker count, got %d", cfg.Workers)
		}
	})
}
