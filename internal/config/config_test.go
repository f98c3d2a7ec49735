package config

import "testing"

func TestLoadDefaults(t *testing.T) {
	cfg := Load()
	if cfg.ServerPort == "" {
		t.Fatalf("expected default server port")
	}
	if cfg.MediaBucket == "" {
		t.Fatalf("expected default media bucket")
	}
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("SERVER_PORT", ":9000")
	t.Setenv("POSTGRES_URL", "postgres://example")
	t.Setenv("REDIS_ADDR", "redis:6379")
	t.Setenv("JWT_SECRET", "secret")
	t.Setenv("MINIO_ENDPOINT", "minio:9000")
	t.Setenv("MEDIA_BUCKET", "bucket")

	cfg := Load()
	if cfg.ServerPort != ":9000" {
		t.Fatalf("expected override port")
	}
	if cfg.PostgresURL != "postgres://example" {
		t.Fatalf("expected override postgres")
	}
	if cfg.RedisAddr != "redis:6379" {
		t.Fatalf("expected override redis")
	}
	if cfg.JWTSecret != "secret" {
		t.Fatalf("expected override secret")
	}
	if cfg.MinioEndpoint != "minio:9000" {
		t.Fatalf("expected override minio endpoint")
	}
	if cfg.MediaBucket != "bucket" {
		t.Fatalf("expected override bucket")
	}
}

func TestValidateMissing(t *testing.T) {
	err := Config{}.Validate()
	if err == nil {
		t.Fatalf("expected validation error")
	}
}

func TestValidateComplete(t *testing.T) {
	cfg := Config{
		PostgresURL:    "postgres://example",
		JWTSecret:      "secret",
		MinioEndpoint:  "minio:9000",
		MinioAccessKey: "key",
		MinioSecretKey: "secret",
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("unexpected validation error: %v", err)
	}
}
