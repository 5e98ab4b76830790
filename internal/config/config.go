package config

import (
	"os"
	"strings"

	"github.com/spf13/viper"
)

// readSecret reads a Docker secret from a file path specified by an env var
// with _FILE suffix. If FOO is already set directly, the file is skipped.
// If FOO_FILE is set, reads the file content and sets FOO.
func readSecret(envKey string) {
	if os.Getenv(envKey) != "" {
		return
	}
	fileKey := envKey + "_FILE"
	filePath := os.Getenv(fileKey)
	if filePath == "" {
		return
	}
	data, err := os.ReadFile(filePath)
	if err != nil {
		return
	}
	val := strings.TrimSpace(string(data))
	os.Setenv(envKey, val)
}

type Config struct {
	Server     ServerConfig
	Redis      RedisConfig
	JWT        JWTConfig
	RateLimit  RateLimitConfig
	Detector   DetectorConfig
	Transcribe TranscribeConfig
	R2         R2Config
	OIDC       OIDCConfig
	Gateway    GatewayConfig
}

type ServerConfig struct {
	Port      string
	Env       string
	LogLevel  string
	ApiDomain string
}

type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

type JWTConfig struct {
	Secret     string
	Expiration int // hours
}

type RateLimitConfig struct {
	TranscribePerHour int
	NotationPerMin    int
}

// DetectorConfig points at the note-detection model microservice.
type DetectorConfig struct {
	ServiceURL string
	Timeout    int // seconds
}

// TranscribeConfig holds defaults applied when a request omits a knob.
type TranscribeConfig struct {
	DefaultTempo    float64
	OnsetThreshold  float64
	FrameThreshold  float64
	MinNoteLengthMs float64
	Strategy        string
	ReferencePath   string
}

type R2Config struct {
	AccountID       string
	AccessKeyID     string
	SecretAccessKey string
	BucketName      string
	PublicURL       string
}

type OIDCConfig struct {
	Domain   string
	ClientID string
	Issuer   string
}

type GatewayConfig struct {
	Enabled bool
}

func Load() (*Config, error) {
	// Read Docker Swarm secrets from _FILE env vars before Viper binds
	readSecret("REDIS_PASSWORD")
	readSecret("JWT_SECRET")
	readSecret("R2_ACCOUNT_ID")
	readSecret("R2_ACCESS_KEY_ID")
	readSecret("R2_SECRET_ACCESS_KEY")
	readSecret("OIDC_CLIENT_ID")

	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.AddConfigPath("./config")

	// Environment variables
	viper.AutomaticEnv()

	// Bind environment variables with underscores to nested config keys
	_ = viper.BindEnv("server.port", "SERVER_PORT")
	_ = viper.BindEnv("server.env", "SERVER_ENV")
	_ = viper.BindEnv("server.log_level", "LOG_LEVEL")
	_ = viper.BindEnv("server.api_domain", "API_DOMAIN")
	_ = viper.BindEnv("redis.addr", "REDIS_ADDR")
	_ = viper.BindEnv("redis.password", "REDIS_PASSWORD")
	_ = viper.BindEnv("redis.db", "REDIS_DB")
	_ = viper.BindEnv("jwt.secret", "JWT_SECRET")
	_ = viper.BindEnv("jwt.expiration", "JWT_EXPIRATION")
	_ = viper.BindEnv("detector.service_url", "DETECTOR_SERVICE_URL")
	_ = viper.BindEnv("detector.timeout", "DETECTOR_TIMEOUT")
	_ = viper.BindEnv("transcribe.default_tempo", "TRANSCRIBE_DEFAULT_TEMPO")
	_ = viper.BindEnv("transcribe.onset_threshold", "TRANSCRIBE_ONSET_THRESHOLD")
	_ = viper.BindEnv("transcribe.frame_threshold", "TRANSCRIBE_FRAME_THRESHOLD")
	_ = viper.BindEnv("transcribe.min_note_length_ms", "TRANSCRIBE_MIN_NOTE_LENGTH_MS")
	_ = viper.BindEnv("transcribe.strategy", "TRANSCRIBE_STRATEGY")
	_ = viper.BindEnv("transcribe.reference_path", "TRANSCRIBE_REFERENCE_PATH")
	_ = viper.BindEnv("r2.account_id", "R2_ACCOUNT_ID")
	_ = viper.BindEnv("r2.access_key_id", "R2_ACCESS_KEY_ID")
	_ = viper.BindEnv("r2.secret_access_key", "R2_SECRET_ACCESS_KEY")
	_ = viper.BindEnv("r2.bucket_name", "R2_BUCKET_NAME")
	_ = viper.BindEnv("r2.public_url", "R2_PUBLIC_URL")
	_ = viper.BindEnv("oidc.domain", "OIDC_DOMAIN")
	_ = viper.BindEnv("oidc.client_id", "OIDC_CLIENT_ID")
	_ = viper.BindEnv("oidc.issuer", "OIDC_ISSUER")
	_ = viper.BindEnv("gateway.enabled", "GATEWAY_ENABLED")

	// Defaults
	viper.SetDefault("server.port", "8000")
	viper.SetDefault("server.env", "development")
	viper.SetDefault("server.log_level", "info")
	viper.SetDefault("redis.addr", "localhost:6379")
	viper.SetDefault("redis.password", "")
	viper.SetDefault("redis.db", 0)
	viper.SetDefault("jwt.secret", "change-me-in-production")
	viper.SetDefault("jwt.expiration", 24)
	viper.SetDefault("ratelimit.transcribe_per_hour", 20)
	viper.SetDefault("ratelimit.notation_per_min", 60)

	// No default service URL: an unset detector means mock transcription
	viper.SetDefault("detector.timeout", 300)

	// Transcription defaults: 58ms is just under a 32nd note at 120 BPM
	viper.SetDefault("transcribe.default_tempo", 120.0)
	viper.SetDefault("transcribe.onset_threshold", 0.5)
	viper.SetDefault("transcribe.frame_threshold", 0.3)
	viper.SetDefault("transcribe.min_note_length_ms", 58.0)
	viper.SetDefault("transcribe.strategy", "default")

	// Gateway defaults
	viper.SetDefault("gateway.enabled", false)

	// Try to read config file (optional)
	_ = viper.ReadInConfig()

	cfg := &Config{
		Server: ServerConfig{
			Port:      viper.GetString("server.port"),
			Env:       viper.GetString("server.env"),
			LogLevel:  viper.GetString("server.log_level"),
			ApiDomain: viper.GetString("server.api_domain"),
		},
		Redis: RedisConfig{
			Addr:     viper.GetString("redis.addr"),
			Password: viper.GetString("redis.password"),
			DB:       viper.GetInt("redis.db"),
		},
		JWT: JWTConfig{
			Secret:     viper.GetString("jwt.secret"),
			Expiration: viper.GetInt("jwt.expiration"),
		},
		RateLimit: RateLimitConfig{
			TranscribePerHour: viper.GetInt("ratelimit.transcribe_per_hour"),
			NotationPerMin:    viper.GetInt("ratelimit.notation_per_min"),
		},
		Detector: DetectorConfig{
			ServiceURL: viper.GetString("detector.service_url"),
			Timeout:    viper.GetInt("detector.timeout"),
		},
		Transcribe: TranscribeConfig{
			DefaultTempo:    viper.GetFloat64("transcribe.default_tempo"),
			OnsetThreshold:  viper.GetFloat64("transcribe.onset_threshold"),
			FrameThreshold:  viper.GetFloat64("transcribe.frame_threshold"),
			MinNoteLengthMs: viper.GetFloat64("transcribe.min_note_length_ms"),
			Strategy:        viper.GetString("transcribe.strategy"),
			ReferencePath:   viper.GetString("transcribe.reference_path"),
		},
		R2: R2Config{
			AccountID:       viper.GetString("r2.account_id"),
			AccessKeyID:     viper.GetString("r2.access_key_id"),
			SecretAccessKey: viper.GetString("r2.secret_access_key"),
			BucketName:      viper.GetString("r2.bucket_name"),
			PublicURL:       viper.GetString("r2.public_url"),
		},
		OIDC: OIDCConfig{
			Domain:   viper.GetString("oidc.domain"),
			ClientID: viper.GetString("oidc.client_id"),
			Issuer:   viper.GetString("oidc.issuer"),
		},
		Gateway: GatewayConfig{
			Enabled: viper.GetBool("gateway.enabled"),
		},
	}

	return cfg, nil
}
