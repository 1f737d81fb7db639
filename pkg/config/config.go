package config

import (
	"errors"
	"log"
	"os"
	"time"

	"github.com/joho/godotenv"
)

const (
	PostStorePostgres = "postgres"
	PostStoreMongo    = "mongo"
)

// DevSessionSecret signs session cookies when SESSION_SECRET is unset in
// development. It is public and refused everywhere else.
const DevSessionSecret = "supersecretjwtkey"

var ErrInsecureSessionSecret = errors.New("SESSION_SECRET must be set to a private value outside development")

type Config struct {
	Port                    string
	Env                     string
	FirebaseCredentialsPath string
	PostgresConnStr         string
	PostStore               string
	MongoURI                string
	MongoDatabase           string
	RedisURL                string
	RedisAddr               string
	CacheTTL                time.Duration
	SessionSecret           string
	SessionTTL              time.Duration
	MediaRoot               string
	S3Bucket                string
	AWSRegion               string
	MetricsPort             string
}

// Load reads the process configuration. A .env file in the working
// directory is honoured but never required.
func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, assuming environment variables are set.")
	}

	return &Config{
		Port:                    getEnv("PORT", "8080"),
		Env:                     getEnv("ENV", "development"),
		FirebaseCredentialsPath: getEnv("FIREBASE_CREDENTIALS_PATH", ""),
		PostgresConnStr:         getEnv("POSTGRES_CONN_STR", ""),
		PostStore:               getEnv("POST_STORE", PostStorePostgres),
		MongoURI:                getEnv("MONGO_URI", ""),
		MongoDatabase:           getEnv("MONGO_DATABASE", "yatube"),
		RedisURL:                getEnv("REDIS_URL", ""),
		RedisAddr:               getEnv("REDIS_ADDR", ""),
		CacheTTL:                getDuration("CACHE_TTL", 20*time.Second),
		SessionSecret:           getEnv("SESSION_SECRET", DevSessionSecret),
		SessionTTL:              getDuration("SESSION_TTL", 72*time.Hour),
		MediaRoot:               getEnv("MEDIA_ROOT", "./media"),
		S3Bucket:                getEnv("S3_BUCKET", ""),
		AWSRegion:               getEnv("AWS_REGION", "us-east-2"),
		MetricsPort:             getEnv("METRICS_PORT", "9090"),
	}
}

// Validate rejects settings the server must not run with.
func (c *Config) Validate() error {
	if c.SessionSecret == "" || c.SessionSecret == DevSessionSecret {
		if c.Env != "development" {
			return ErrInsecureSessionSecret
		}
		log.Println("WARNING: SESSION_SECRET is unset, session cookies are signed with a public development key.")
	}
	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getDuration(key string, defaultValue time.Duration) time.Duration {
	raw := os.Getenv(key)
	if raw == "" {
		return defaultValue
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		log.Printf("Invalid %s=%q, using %s", key, raw, defaultValue)
		return defaultValue
	}
	return d
}
