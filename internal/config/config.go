package config

import (
	"fmt"
	"log"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

type Config struct {
	DatabaseDSN    string
	Environment    string
	HTTPAddr       string
	MigrationsPath string
	Timezone       string
	Scheduling     Scheduling
}

// Scheduling holds the booking policy knobs. Loaded once at startup and
// passed into the validator as read-only values.
type Scheduling struct {
	MinAdvanceHours      int
	MaxAdvanceDays       int
	MinSessionGapMinutes int
	MaxSessionsPerWeek   int
	ReminderLeadMinutes  int
}

func Load() (*Config, error) {
	// Try to load .env first (ignore the error if the file is absent).
	if err := godotenv.Load(".env"); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	cfg := &Config{
		DatabaseDSN:    os.Getenv("DB_DSN"),
		Environment:    envString("ENV", "development"),
		HTTPAddr:       envString("HTTP_ADDR", ":8080"),
		MigrationsPath: envString("MIGRATIONS_PATH", "migrations"),
		Timezone:       envString("SCHED_TIMEZONE", "Africa/Nairobi"),
		Scheduling: Scheduling{
			MinAdvanceHours:      envInt("SCHED_MIN_ADVANCE_HOURS", 2),
			MaxAdvanceDays:       envInt("SCHED_MAX_ADVANCE_DAYS", 90),
			MinSessionGapMinutes: envInt("SCHED_MIN_SESSION_GAP_MINUTES", 30),
			MaxSessionsPerWeek:   envInt("SCHED_MAX_SESSIONS_PER_WEEK", 10),
			ReminderLeadMinutes:  envInt("SCHED_REMINDER_LEAD_MINUTES", 60),
		},
	}

	if cfg.DatabaseDSN == "" {
		return nil, fmt.Errorf("DB_DSN is required but not set")
	}

	return cfg, nil
}

func envString(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		log.Printf("Invalid value for %s=%q, using default %d", key, v, fallback)
		return fallback
	}
	return n
}
