package models

import "testing"

func TestCreateUserHashesPassword(t *testing.T) {
	t.Parallel()

	u, err := CreateUser("Maria Festas", "maria@exemplo.com", "segredo123")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if u.Password == "segredo123" {
		t.Fatalf("password stored in plain text")
	}
	if !u.CheckPassword("segredo123") {
		t.Fatalf("hashed password does not verify")
	}
	if u.CheckPassword("errado") {
		t.Fatalf("wrong password must not verify")
	}
	if u.Status != STATUS_INACTIVE {
		t.Fatalf("new accounts start inactive, got %q", u.Status)
	}
}

func TestCreateUserValidation(t *testing.T) {
	t.Parallel()

	if _, err := CreateUser("Jo", "not-an-email", "segredo123"); err == nil {
		t.Fatalf("expected validation error for invalid email")
	}
	if _, err := CreateUser("Maria", "maria@exemplo.com", "123"); err == nil {
		t.Fatalf("expected validation error for short password")
	}
}

func TestGenerateActivationToken(t *testing.T) {
	t.Parallel()

	u := &User{}
	if err := u.GenerateActivationToken(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(u.ActivationToken) != 32 {
		t.Fatalf("expected 32 hex chars, got %d", len(u.ActivationToken))
	}
	if u.ActivationSentAt == nil {
		t.Fatalf("activation timestamp not set")
	}
}

func TestHasLegacySubscriptionFields(t *testing.T) {
	t.Parallel()

	u := &User{}
	if u.HasLegacySubscriptionFields() {
		t.Fatalf("clean user reports legacy fields")
	}

	u.LegacyStatus = "ACTIVE"
	if !u.HasLegacySubscriptionFields() {
		t.Fatalf("legacy status alone should be detected")
	}

	planID := uint(3)
	u = &User{LegacyPlanID: &planID}
	if !u.HasLegacySubscriptionFields() {
		t.Fatalf("legacy plan reference alone should be detected")
	}
}

func TestNormalizeEmail(t *testing.T) {
	t.Parallel()

	if got := NormalizeEmail("  Maria@Exemplo.COM "); got != "maria@exemplo.com" {
		t.Fatalf("NormalizeEmail = %q", got)
	}
}
