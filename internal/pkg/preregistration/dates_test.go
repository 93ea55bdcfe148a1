package preregistration

import (
	"testing"
	"time"
)

func TestNormalizeEventDate_PlainDate(t *testing.T) {
	t.Parallel()

	got, err := NormalizeEventDate("2026-06-10")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := time.Date(2026, 6, 10, 0, 0, 0, 0, time.Local)
	if !got.Equal(want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
}

func TestNormalizeEventDate_ISOTimestampPinsToLocalMidnight(t *testing.T) {
	t.Parallel()

	got, err := NormalizeEventDate("2026-06-10T00:00:00Z")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.Day() != 10 || got.Month() != time.June {
		t.Fatalf("calendar date must survive zone conversion, got %v", got)
	}
	if got.Hour() != 0 || got.Location() != time.Local {
		t.Fatalf("expected local midnight, got %v", got)
	}
}

func TestNormalizeEventDate_WithWhitespace(t *testing.T) {
	t.Parallel()

	if _, err := NormalizeEventDate("  2026-12-31  "); err != nil {
		t.Fatalf("surrounding whitespace should be tolerated: %v", err)
	}
}

func TestNormalizeEventDate_Invalid(t *testing.T) {
	t.Parallel()

	for _, raw := range []string{"", "amanhã", "10/06/2026", "2026-13-40"} {
		if _, err := NormalizeEventDate(raw); err == nil {
			t.Fatalf("expected error for %q", raw)
		}
	}
}

func TestDefaultPaymentDueDate(t *testing.T) {
	t.Parallel()

	event := time.Date(2026, 6, 10, 0, 0, 0, 0, time.Local)
	due := DefaultPaymentDueDate(event)
	if due != event.AddDate(0, 0, 30) {
		t.Fatalf("expected due date 30 days after event, got %v", due)
	}
}
