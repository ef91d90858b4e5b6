package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Store driver names accepted by BOOKING_STORE_DRIVER.
const (
	DriverMemory = "memory"
	DriverSQLite = "sqlite"
)

// Config captures environment driven configuration values for the booking service.
type Config struct {
	HTTPPort    int
	StoreDriver string
	SQLiteDSN   string
	EmailDomain string
	SessionTTL  time.Duration
	SeedDemo    bool
}

// Load parses configuration values from the current process environment.
//
// Every field has a default, so an empty environment yields a working
// in-memory configuration. Set values are validated and reported together.
func Load() (Config, error) {
	cfg := Config{
		HTTPPort:    8080,
		StoreDriver: DriverMemory,
		SQLiteDSN:   ":memory:",
		EmailDomain: "@xtec.cat",
		SessionTTL:  24 * time.Hour,
		SeedDemo:    true,
	}

	invalid := make([]string, 0, 3)

	if portValue := strings.TrimSpace(os.Getenv("BOOKING_HTTP_PORT")); portValue != "" {
		port, err := strconv.Atoi(portValue)
		if err != nil || port <= 0 {
			invalid = append(invalid, "BOOKING_HTTP_PORT")
		} else {
			cfg.HTTPPort = port
		}
	}

	if driver := strings.TrimSpace(strings.ToLower(os.Getenv("BOOKING_STORE_DRIVER"))); driver != "" {
		if driver != DriverMemory && driver != DriverSQLite {
			invalid = append(invalid, "BOOKING_STORE_DRIVER")
		} else {
			cfg.StoreDriver = driver
		}
	}

	if dsn := strings.TrimSpace(os.Getenv("BOOKING_SQLITE_DSN")); dsn != "" {
		cfg.SQLiteDSN = dsn
	}

	if domain := strings.TrimSpace(os.Getenv("BOOKING_EMAIL_DOMAIN")); domain != "" {
		if !strings.HasPrefix(domain, "@") {
			domain = "@" + domain
		}
		cfg.EmailDomain = strings.ToLower(domain)
	}

	if ttlValue := strings.TrimSpace(os.Getenv("BOOKING_SESSION_TTL")); ttlValue != "" {
		ttl, err := time.ParseDuration(ttlValue)
		if err != nil || ttl <= 0 {
			invalid = append(invalid, "BOOKING_SESSION_TTL")
		} else {
			cfg.SessionTTL = ttl
		}
	}

	if seedValue := strings.TrimSpace(os.Getenv("BOOKING_SEED_DEMO")); seedValue != "" {
		seed, err := strconv.ParseBool(seedValue)
		if err != nil {
			invalid = append(invalid, "BOOKING_SEED_DEMO")
		} else {
			cfg.SeedDemo = seed
		}
	}

	if len(invalid) > 0 {
		return Config{}, fmt.Errorf("invalid environment values: %s", strings.Join(invalid, ", "))
	}

	return cfg, nil
}
