package infra

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Config represents producer configuration loaded from environment variables.
type Config struct {
	AppEnv  string
	OpsPort string

	DatabaseURL string

	AMQPURL    string
	MediaQueue string

	S3Endpoint      string
	S3Bucket        string
	S3AccessKey     string
	S3SecretKey     string
	S3UseSSL        bool
	PublicS3BaseURL string
	StoragePath     string

	ElevenLabsAPIKey  string
	ElevenLabsBaseURL string
	ElevenLabsVoiceID string

	StabilityAPIKey  string
	StabilityBaseURL string

	ReplicateAPIToken string
	ReplicateBaseURL  string
	ReplicateVersion  string

	FFmpegBin string

	VideoScriptThreshold int
	PollInterval         time.Duration
	PollMaxAttempts      int
}

// LoadConfig loads configuration from environment variables and applies
// defaults where needed.
func LoadConfig() (*Config, error) {
	cfg := &Config{
		AppEnv:  getEnv("APP_ENV", "development"),
		OpsPort: getEnv("OPS_PORT", "8081"),

		DatabaseURL: os.Getenv("DATABASE_URL"),

		AMQPURL: getEnv("RABBITMQ_URL", fmt.Sprintf("amqp://%s:%s@rabbitmq:5672/",
			getEnv("RABBITMQ_USER", "guest"), getEnv("RABBITMQ_PASSWORD", "guest"))),
		MediaQueue: getEnv("MEDIA_QUEUE", "media_queue"),

		S3Endpoint:      os.Getenv("S3_ENDPOINT"),
		S3Bucket:        getEnv("S3_BUCKET", "relayforge-assets"),
		S3AccessKey:     getEnv("MINIO_ROOT_USER", "minioadmin"),
		S3SecretKey:     getEnv("MINIO_ROOT_PASSWORD", "minioadmin"),
		S3UseSSL:        getEnvBool("S3_USE_SSL", false),
		PublicS3BaseURL: getEnv("PUBLIC_S3_BASE_URL", "http://localhost:9000"),
		StoragePath:     getEnv("STORAGE_PATH", "./storage"),

		ElevenLabsAPIKey:  os.Getenv("ELEVENLABS_API_KEY"),
		ElevenLabsBaseURL: getEnv("ELEVENLABS_BASE_URL", "https://api.elevenlabs.io"),
		ElevenLabsVoiceID: getEnv("ELEVENLABS_VOICE_ID", "21m00Tcm4TlvDq8ikWAM"),

		StabilityAPIKey:  os.Getenv("STABILITY_API_KEY"),
		StabilityBaseURL: getEnv("STABILITY_BASE_URL", "https://api.stability.ai"),

		ReplicateAPIToken: os.Getenv("REPLICATE_API_TOKEN"),
		ReplicateBaseURL:  getEnv("REPLICATE_BASE_URL", "https://api.replicate.com"),
		ReplicateVersion:  os.Getenv("REPLICATE_MODEL_VERSION"),

		FFmpegBin: getEnv("FFMPEG_BIN", "ffmpeg"),

		VideoScriptThreshold: getEnvInt("VIDEO_SCRIPT_THRESHOLD", 100),
		PollInterval:         time.Second * time.Duration(getEnvInt("PROVIDER_POLL_INTERVAL_SECONDS", 5)),
		PollMaxAttempts:      getEnvInt("PROVIDER_POLL_MAX_ATTEMPTS", 60),
	}

	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is required")
	}

	return cfg, nil
}

func getEnv(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return fallback
}
