package config

import (
	"os"
	"strings"
	"testing"
	"time"
)

func TestLoader_ParseEnvironment(t *testing.T) {

	t.Run("applies defaults when variables are missing", func(t *testing.T) {
		unset := []string{
			"BOOKING_HTTP_PORT",
			"BOOKING_STORE_DRIVER",
			"BOOKING_SQLITE_DSN",
			"BOOKING_EMAIL_DOMAIN",
			"BOOKING_SESSION_TTL",
			"BOOKING_SEED_DEMO",
		}
		for _, key := range unset {
			if err := os.Unsetenv(key); err != nil {
				t.Fatalf("failed to unset %s: %v", key, err)
			}
		}

		cfg, err := Load()
		if err != nil {
			t.Fatalf("Load returned error: %v", err)
		}

		if cfg.HTTPPort != 8080 {
			t.Fatalf("expected default HTTP port 8080, got %d", cfg.HTTPPort)
		}
		if cfg.StoreDriver != DriverMemory {
			t.Fatalf("expected default memory driver, got %q", cfg.StoreDriver)
		}
		if cfg.SQLiteDSN != ":memory:" {
			t.Fatalf("unexpected default DSN: %q", cfg.SQLiteDSN)
		}
		if cfg.EmailDomain != "@xtec.cat" {
			t.Fatalf("unexpected default email domain: %q", cfg.EmailDomain)
		}
		if cfg.SessionTTL != 24*time.Hour {
			t.Fatalf("expected default session TTL 24h, got %s", cfg.SessionTTL)
		}
		if !cfg.SeedDemo {
			t.Fatal("expected demo seeding enabled by default")
		}
	})

	t.Run("parses configured values", func(t *testing.T) {
		t.Setenv("BOOKING_HTTP_PORT", "9090")
		t.Setenv("BOOKING_STORE_DRIVER", "SQLite")
		t.Setenv("BOOKING_SQLITE_DSN", "file:/tmp/booking.db")
		t.Setenv("BOOKING_EMAIL_DOMAIN", "Escola.cat")
		t.Setenv("BOOKING_SESSION_TTL", "8h")
		t.Setenv("BOOKING_SEED_DEMO", "false")

		cfg, err := Load()
		if err != nil {
			t.Fatalf("Load returned error: %v", err)
		}

		if cfg.HTTPPort != 9090 {
			t.Fatalf("expected HTTP port 9090, got %d", cfg.HTTPPort)
		}
		if cfg.StoreDriver != DriverSQLite {
			t.Fatalf("expected sqlite driver, got %q", cfg.StoreDriver)
		}
		if cfg.SQLiteDSN != "file:/tmp/booking.db" {
			t.Fatalf("unexpected DSN: %q", cfg.SQLiteDSN)
		}
		if cfg.EmailDomain != "@escola.cat" {
			t.Fatalf("expected normalized email domain, got %q", cfg.EmailDomain)
		}
		if cfg.SessionTTL != 8*time.Hour {
			t.Fatalf("expected session TTL 8h, got %s", cfg.SessionTTL)
		}
		if cfg.SeedDemo {
			t.Fatal("expected demo seeding disabled")
		}
	})

	t.Run("reports every invalid value", func(t *testing.T) {
		t.Setenv("BOOKING_HTTP_PORT", "-1")
		t.Setenv("BOOKING_STORE_DRIVER", "postgres")
		t.Setenv("BOOKING_SESSION_TTL", "soon")

		_, err := Load()
		if err == nil {
			t.Fatal("expected error for invalid values")
		}
		for _, key := range []string{"BOOKING_HTTP_PORT", "BOOKING_STORE_DRIVER", "BOOKING_SESSION_TTL"} {
			if !strings.Contains(err.Error(), key) {
				t.Fatalf("expected %s in error, got %q", key, err.Error())
			}
		}
	})
}
