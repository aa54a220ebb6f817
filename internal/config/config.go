package config

import (
	"log"
	"os"
	"strconv"
	"time"
)

type Config struct {
	Port      string
	LogLevel  string
	LogFormat string

	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string
	DBSSLMode  string

	JWTSecret    string
	JWTExpiresIn time.Duration

	AdminEmail    string
	AdminPassword string
	AdminName     string
	SeedDemo      bool

	// Engine tunables.
	ScanCooldown       time.Duration
	StalenessThreshold time.Duration
	SweepInterval      time.Duration
	GracePeriod        time.Duration

	// Liveness notification publisher; empty RedisAddr disables it.
	RedisAddr       string
	RedisPassword   string
	RedisDB         int
	LivenessChannel string
}

func Load() *Config {
	return &Config{
		Port:      getenv("PORT", "8080"),
		LogLevel:  getenv("LOG_LEVEL", "info"),
		LogFormat: getenv("LOG_FORMAT", "json"),

		DBHost:     getenv("DB_HOST", "localhost"),
		DBPort:     getenv("DB_PORT", "5432"),
		DBUser:     getenv("DB_USER", "postgres"),
		DBPassword: getenv("DB_PASSWORD", "postgres"),
		DBName:     getenv("DB_NAME", "presence_db"),
		DBSSLMode:  getenv("DB_SSLMODE", "disable"),

		JWTSecret:    getenv("JWT_SECRET", "supersecret_change_me"),
		JWTExpiresIn: durationEnv("JWT_EXPIRES_IN", 60*time.Minute),

		AdminEmail:    getenv("ADMIN_EMAIL", "admin@example.com"),
		AdminPassword: getenv("ADMIN_PASSWORD", "admin123"),
		AdminName:     getenv("ADMIN_NAME", "System Administrator"),
		SeedDemo:      boolEnv("SEED_DEMO", false),

		ScanCooldown:       durationEnv("SCAN_COOLDOWN", 2*time.Second),
		StalenessThreshold: durationEnv("STALENESS_THRESHOLD", 90*time.Second),
		SweepInterval:      durationEnv("SWEEP_INTERVAL", 10*time.Second),
		GracePeriod:        durationEnv("LATE_GRACE_PERIOD", 15*time.Minute),

		RedisAddr:       getenv("REDIS_ADDR", ""),
		RedisPassword:   getenv("REDIS_PASSWORD", ""),
		RedisDB:         intEnv("REDIS_DB", 0),
		LivenessChannel: getenv("LIVENESS_CHANNEL", "presence:liveness"),
	}
}

func getenv(key, fallback string) string {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	return v
}

func durationEnv(key string, fallback time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		log.Printf("invalid duration for %s: %v, using fallback %s", key, err, fallback)
		return fallback
	}
	return d
}

func boolEnv(key string, fallback bool) bool {
	switch os.Getenv(key) {
	case "1", "true", "TRUE":
		return true
	case "0", "false", "FALSE":
		return false
	case "":
		return fallback
	default:
		log.Printf("invalid bool for %s, using fallback %v", key, fallback)
		return fallback
	}
}

func intEnv(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		log.Printf("invalid int for %s, using fallback %d", key, fallback)
		return fallback
	}
	return n
}
