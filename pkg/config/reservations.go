package config

// ReservationsConfig holds runtime configuration for the reservation
// processing service.
type ReservationsConfig struct {
	Environment   string
	Addr          string
	DatabaseURL   string
	MigrationsDir string
}

// LoadReservationsConfig constructs a ReservationsConfig from environment variables.
func LoadReservationsConfig() ReservationsConfig {
	return ReservationsConfig{
		Environment:   GetString("APP_ENV", "development"),
		Addr:          GetString("RESERVATIONS_ADDR", ":7070"),
		DatabaseURL:   GetString("DATABASE_URL", "postgres://penpal:penpal@db:5432/penpal?sslmode=disable"),
		MigrationsDir: GetString("DB_MIGRATIONS_DIR", "./db/migrations"),
	}
}
