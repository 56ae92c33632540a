package config

import "time"

// MatchingConfig holds runtime configuration for the penpal matching service.
type MatchingConfig struct {
	Environment        string
	Addr               string
	DatabaseURL        string
	MigrationsDir      string
	JWTSecret          string
	UserManagementURL  string
	ProbeTimeout       time.Duration
	RateLimitRedisAddr string
	RateLimitRedisPass string
	RateLimitRedisDB   int
}

// LoadMatchingConfig constructs a MatchingConfig from environment variables.
func LoadMatchingConfig() MatchingConfig {
	return MatchingConfig{
		Environment:        GetString("APP_ENV", "development"),
		Addr:               GetString("MATCHING_ADDR", ":3333"),
		DatabaseURL:        GetString("DATABASE_URL", "postgres://penpal:penpal@db:5432/penpal?sslmode=disable"),
		MigrationsDir:      GetString("DB_MIGRATIONS_DIR", "./db/migrations"),
		JWTSecret:          GetString("JWT_SECRET", ""),
		UserManagementURL:  GetString("USER_MANAGEMENT_URL", "http://users:5050/users"),
		ProbeTimeout:       GetDuration("PROBE_TIMEOUT", 5*time.Second),
		RateLimitRedisAddr: GetString("RATE_LIMIT_REDIS_ADDR", ""),
		RateLimitRedisPass: GetString("RATE_LIMIT_REDIS_PASSWORD", ""),
		RateLimitRedisDB:   GetInt("RATE_LIMIT_REDIS_DB", 0),
	}
}
