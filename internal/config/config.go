package config

import (
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type DB struct {
	DbHOST     string
	DbPORT     string
	DbUSER     string
	DbPASSWORD string
	DbNAME     string
	DbSSLMODE  string
}

type Redis struct {
	Addr     string
	Password string
	DB       int
}

type MinIO struct {
	Endpoint   string
	AccessKey  string
	SecretKey  string
	BucketName string
	UseSSL     bool
	Region     string
	PublicURL  string
}

// RateLimit holds the two windows applied by the request gate.
type RateLimit struct {
	AuthRequests   int
	AuthWindow     time.Duration
	GlobalRequests int
	GlobalWindow   time.Duration
}

// Audio configures the text enhancement and speech synthesis APIs.
type Audio struct {
	OpenAIAPIKey     string
	OpenAIBaseURL    string
	OpenAIModel      string
	ElevenLabsAPIKey string
	ElevenLabsURL    string
	VoiceID          string
	VoiceModel       string
	Timeout          time.Duration
	Attempts         int
}

// Enabled reports whether both upstream API keys are present.
func (a Audio) Enabled() bool {
	return a.OpenAIAPIKey != "" && a.ElevenLabsAPIKey != ""
}

type Config struct {
	ServerPort     int
	Env            string
	DB             DB
	Redis          Redis
	MinIO          MinIO
	RateLimit      RateLimit
	Audio          Audio
	JWTSecretKey   string
	TokenTTL       time.Duration
	BcryptCost     int
	SearchMaxLimit int
	AllowedOrigins []string
}

// IsDevelopment enables internal error detail in responses.
func (c *Config) IsDevelopment() bool {
	return c.Env == "development"
}

func getEnv(key string, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

func getEnvBool(key string, fallback bool) bool {
	if value, ok := os.LookupEnv(key); ok {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return fallback
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func parseDuration(value string, fallback time.Duration) time.Duration {
	duration, err := time.ParseDuration(value)
	if err != nil || duration <= 0 {
		return fallback
	}
	return duration
}

func splitList(value string) []string {
	var out []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func LoadDB() DB {
	return DB{
		DbHOST:     getEnv("DB_HOST", "localhost"),
		DbPORT:     getEnv("DB_PORT", "5432"),
		DbUSER:     getEnv("DB_USER", "postgres"),
		DbPASSWORD: getEnv("DB_PASSWORD", "password"),
		DbNAME:     getEnv("DB_NAME", "microblog"),
		DbSSLMODE:  getEnv("DB_SSLMODE", "disable"),
	}
}

func LoadRedis() Redis {
	return Redis{
		Addr:     getEnv("REDIS_ADDR", ""),
		Password: getEnv("REDIS_PASSWORD", ""),
		DB:       getEnvAsInt("REDIS_DB", 0),
	}
}

func LoadMinIO() MinIO {
	return MinIO{
		Endpoint:   getEnv("MINIO_ENDPOINT", "localhost:9000"),
		AccessKey:  getEnv("MINIO_ACCESS_KEY", "minioadmin"),
		SecretKey:  getEnv("MINIO_SECRET_KEY", "minioadmin"),
		BucketName: getEnv("MINIO_BUCKET_NAME", "audio"),
		UseSSL:     getEnvBool("MINIO_USE_SSL", false),
		Region:     getEnv("MINIO_REGION", "us-east-1"),
		PublicURL:  getEnv("MINIO_PUBLIC_URL", ""),
	}
}

func LoadRateLimit() RateLimit {
	return RateLimit{
		AuthRequests:   getEnvAsInt("RATE_LIMIT_AUTH_REQUESTS", 5),
		AuthWindow:     parseDuration(getEnv("RATE_LIMIT_AUTH_WINDOW", "15m"), 15*time.Minute),
		GlobalRequests: getEnvAsInt("RATE_LIMIT_GLOBAL_REQUESTS", 100),
		GlobalWindow:   parseDuration(getEnv("RATE_LIMIT_GLOBAL_WINDOW", "5m"), 5*time.Minute),
	}
}

func LoadAudio() Audio {
	return Audio{
		OpenAIAPIKey:     getEnv("OPENAI_API_KEY", ""),
		OpenAIBaseURL:    getEnv("OPENAI_BASE_URL", "https://api.openai.com/v1"),
		OpenAIModel:      getEnv("OPENAI_MODEL", "gpt-4o"),
		ElevenLabsAPIKey: getEnv("ELEVENLABS_API_KEY", ""),
		ElevenLabsURL:    getEnv("ELEVENLABS_BASE_URL", "https://api.elevenlabs.io/v1"),
		VoiceID:          getEnv("ELEVENLABS_VOICE_ID", "a5n9pJUnAhX4fn7lx3uo"),
		VoiceModel:       getEnv("ELEVENLABS_MODEL", "eleven_multilingual_v2"),
		Timeout:          parseDuration(getEnv("AUDIO_TIMEOUT", "2m"), 2*time.Minute),
		Attempts:         getEnvAsInt("AUDIO_ATTEMPTS", 3),
	}
}

func LoadConfig() *Config {
	err := godotenv.Load()
	if err != nil {
		log.Println("Warning: .env file not found, using environment variables")
	}

	return &Config{
		ServerPort:     getEnvAsInt("SERVER_PORT", 8080),
		Env:            getEnv("APP_ENV", "production"),
		DB:             LoadDB(),
		Redis:          LoadRedis(),
		MinIO:          LoadMinIO(),
		RateLimit:      LoadRateLimit(),
		Audio:          LoadAudio(),
		JWTSecretKey:   getEnv("JWT_SECRET_KEY", ""),
		TokenTTL:       parseDuration(getEnv("TOKEN_TTL", "24h"), 24*time.Hour),
		BcryptCost:     getEnvAsInt("BCRYPT_COST", 10),
		SearchMaxLimit: getEnvAsInt("SEARCH_MAX_LIMIT", 50),
		AllowedOrigins: splitList(getEnv("CORS_ALLOWED_ORIGINS", "*")),
	}
}
