package models

import "testing"

func TestNormalizeSubscriptionStatus(t *testing.T) {
	t.Parallel()

	cases := map[string]string{
		"ACTIVE":       SubscriptionStatusActive,
		"ativa":        SubscriptionStatusActive,
		"Ativo":        SubscriptionStatusActive,
		"TRIAL":        SubscriptionStatusTrial,
		"trialing":     SubscriptionStatusTrial,
		"CANCELLED":    SubscriptionStatusCancelled,
		"CANCELED":     SubscriptionStatusCancelled,
		"cancelada":    SubscriptionStatusCancelled,
		"EXPIRED":      SubscriptionStatusExpired,
		"expirado":     SubscriptionStatusExpired,
		"SUSPENDED":    SubscriptionStatusSuspended,
		"PAST_DUE":     SubscriptionStatusSuspended,
		"inadimplente": SubscriptionStatusSuspended,
		" ativa ":      SubscriptionStatusActive,
		"":             "",
		"garbage":      "",
	}

	for raw, want := range cases {
		if got := NormalizeSubscriptionStatus(raw); got != want {
			t.Fatalf("NormalizeSubscriptionStatus(%q) = %q, want %q", raw, got, want)
		}
	}
}

func TestSubscriptionIsEntitling(t *testing.T) {
	t.Parallel()

	entitling := map[string]bool{
		SubscriptionStatusActive:    true,
		SubscriptionStatusTrial:     true,
		SubscriptionStatusCancelled: false,
		SubscriptionStatusExpired:   false,
		SubscriptionStatusSuspended: false,
		"":                          false,
	}

	for status, want := range entitling {
		s := Subscription{Status: status}
		if got := s.IsEntitling(); got != want {
			t.Fatalf("IsEntitling(%q) = %v, want %v", status, got, want)
		}
	}
}
