package config

import (
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

type Config struct {
	ServerPort  string
	Environment string

	FirebaseProject    string
	FirebaseApiKey     string
	ServiceAccountJSON string
	ServiceAccountPath string

	StorageBackend string // "gcs" or "minio"
	StorageBucket  string
	MinioEndpoint  string
	MinioAccessKey string
	MinioSecretKey string
	MinioUseSSL    bool

	KVBackend    string // "sqlite" or "redis"
	KVSQLitePath string
	RedisAddr    string
	RedisDB      int

	OtelEndpoint    string
	OtelServiceName string
}

func Load() (*Config, error) {
	godotenv.Load()

	config := &Config{
		ServerPort:  getEnv("SERVER_PORT", "8080"),
		Environment: getEnv("ENVIRONMENT", "development"),

		FirebaseProject:    getEnv("FIREBASE_PROJECT_ID", ""),
		FirebaseApiKey:     getEnv("FIREBASE_API_KEY", ""),
		ServiceAccountJSON: getEnv("FIREBASE_SERVICE_ACCOUNT_JSON", ""),
		ServiceAccountPath: getEnv("FIREBASE_SERVICE_ACCOUNT_PATH", "./firebase-adminsdk.json"),

		StorageBackend: getEnv("STORAGE_BACKEND", "gcs"),
		StorageBucket:  getEnv("STORAGE_BUCKET", ""),
		MinioEndpoint:  getEnv("MINIO_ENDPOINT", "localhost:9000"),
		MinioAccessKey: getEnv("MINIO_ACCESS_KEY", ""),
		MinioSecretKey: getEnv("MINIO_SECRET_KEY", ""),
		MinioUseSSL:    getEnvAsBool("MINIO_USE_SSL", false),

		KVBackend:    getEnv("KV_BACKEND", "sqlite"),
		KVSQLitePath: getEnv("KV_SQLITE_PATH", "gogotalk.db"),
		RedisAddr:    getEnv("REDIS_ADDR", "localhost:6379"),
		RedisDB:      int(getEnvAsInt64("REDIS_DB", 0)),

		OtelEndpoint:    getEnv("OTEL_EXPORTER_OTLP_ENDPOINT", ""),
		OtelServiceName: getEnv("OTEL_SERVICE_NAME", "gogotalk"),
	}

	return config, nil
}

func (c *Config) IsDevelopment() bool {
	return c.Environment == "development"
}

func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

func getEnvAsInt64(key string, defaultValue int64) int64 {
	if value, exists := os.LookupEnv(key); exists {
		intValue, err := strconv.ParseInt(value, 10, 64)
		if err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value, exists := os.LookupEnv(key); exists {
		boolValue, err := strconv.ParseBool(value)
		if err == nil {
			return boolValue
		}
	}
	return defaultValue
}
