package infra

import "testing"

func TestLoadConfigRequiresDatabaseURL(t *testing.T) {
	t.Setenv("DATABASE_URL", "")
	if _, err := LoadConfig(); err == nil {
		t.Fatal("expected error without DATABASE_URL")
	}
}

func TestLoadConfigDefaults(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost/relayforge")
	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if cfg.MediaQueue != "media_queue" {
		t.Fatalf("unexpected queue name: %s", cfg.MediaQueue)
	}
	if cfg.VideoScriptThreshold != 100 {
		t.Fatalf("unexpected threshold: %d", cfg.VideoScriptThreshold)
	}
	if cfg.PollMaxAttempts != 60 {
		t.Fatalf("unexpected poll budget: %d", cfg.PollMaxAttempts)
	}
	if cfg.S3Bucket != "relayforge-assets" {
		t.Fatalf("unexpected bucket: %s", cfg.S3Bucket)
	}
}

func TestLoadConfigOverrides(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost/relayforge")
	t.Setenv("VIDEO_SCRIPT_THRESHOLD", "250")
	t.Setenv("PROVIDER_POLL_INTERVAL_SECONDS", "2")
	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if cfg.VideoScriptThreshold != 250 {
		t.Fatalf("unexpected threshold: %d", cfg.VideoScriptThreshold)
	}
	if cfg.PollInterval.Seconds() != 2 {
		t.Fatalf("unexpected poll interval: %s", cfg.PollInterval)
	}
}
