package testfixtures

import (
	"testing"
	"time"
)

func TestClock_DefaultsToReferenceTime(t *testing.T) {
	t.Parallel()

	clock := NewClock(time.Time{})
	if !clock.Now().Equal(ReferenceTime()) {
		t.Fatalf("expected reference time, got %v", clock.Now())
	}
}

func TestClock_SetAndAdvance(t *testing.T) {
	t.Parallel()

	start := time.Date(2024, time.September, 12, 9, 30, 0, 0, time.UTC)
	clock := NewClock(start)

	if got := clock.Advance(45 * time.Minute); !got.Equal(start.Add(45 * time.Minute)) {
		t.Fatalf("expected advanced time, got %v", got)
	}

	clock.Set(start)
	if !clock.Now().Equal(start) {
		t.Fatalf("expected reset to start, got %v", clock.Now())
	}
}

func TestClock_NilNowFuncFallsBackToWallClock(t *testing.T) {
	t.Parallel()

	var clock *Clock
	now := clock.NowFunc()
	if now == nil {
		t.Fatal("expected a usable time source")
	}
	if now().IsZero() {
		t.Fatal("expected a non-zero wall clock time")
	}
}
