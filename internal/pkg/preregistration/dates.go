package preregistration

import (
	"fmt"
	"strings"
	"time"
)

// NormalizeEventDate parses a form-supplied event date (plain date or full
// ISO timestamp) and pins it to local midnight. Without this, an ISO value
// like "2025-06-10T00:00:00Z" parsed in a UTC-3 zone lands on June 9.
func NormalizeEventDate(raw string) (time.Time, error) {
	v := strings.TrimSpace(raw)
	if v == "" {
		return time.Time{}, fmt.Errorf("data do evento vazia")
	}

	layouts := []string{"2006-01-02", time.RFC3339, "2006-01-02T15:04:05"}
	for _, layout := range layouts {
		t, err := time.Parse(layout, v)
		if err != nil {
			continue
		}
		return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.Local), nil
	}
	return time.Time{}, fmt.Errorf("data do evento inválida: %q", raw)
}

// DefaultPaymentDueDate is 30 days after the event date.
func DefaultPaymentDueDate(eventDate time.Time) time.Time {
	return eventDate.AddDate(0, 0, 30)
}
