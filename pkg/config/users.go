package config

import "time"

// UsersConfig holds runtime configuration for the user management service.
type UsersConfig struct {
	Environment        string
	Addr               string
	DatabaseURL        string
	MigrationsDir      string
	JWTSecret          string
	AccessTokenTTL     time.Duration
	RateLimitRedisAddr string
	RateLimitRedisPass string
	RateLimitRedisDB   int
}

// LoadUsersConfig constructs a UsersConfig from environment variables.
//
// JWT_SECRET intentionally has no fallback: the signing secret must come
// from externally managed configuration, and the service refuses to start
// without it.
func LoadUsersConfig() UsersConfig {
	return UsersConfig{
		Environment:        GetString("APP_ENV", "development"),
		Addr:               GetString("USERS_ADDR", ":5050"),
		DatabaseURL:        GetString("DATABASE_URL", "postgres://penpal:penpal@db:5432/penpal?sslmode=disable"),
		MigrationsDir:      GetString("DB_MIGRATIONS_DIR", "./db/migrations"),
		JWTSecret:          GetString("JWT_SECRET", ""),
		AccessTokenTTL:     time.Duration(GetInt("ACCESS_TOKEN_TTL_MIN", 60)) * time.Minute,
		RateLimitRedisAddr: GetString("RATE_LIMIT_REDIS_ADDR", ""),
		RateLimitRedisPass: GetString("RATE_LIMIT_REDIS_PASSWORD", ""),
		RateLimitRedisDB:   GetInt("RATE_LIMIT_REDIS_DB", 0),
	}
}
