package testfixtures

import (
	"path/filepath"
	"testing"

	"github.com/example/classroom-booking/internal/store/sqlite"
)

// NewSQLiteStore opens a SQLite store backed by a temporary database file and
// registers its cleanup with the provided testing.TB.
func NewSQLiteStore(tb testing.TB) *sqlite.Store {
	tb.Helper()

	path := filepath.Join(tb.TempDir(), "booking.db")
	s, err := sqlite.Open(path)
	if err != nil {
		tb.Fatalf("failed to open sqlite store: %v", err)
	}
	tb.Cleanup(func() {
		if err := s.Close(); err != nil {
			tb.Errorf("failed to close sqlite store: %v", err)
		}
	})
	return s
}
