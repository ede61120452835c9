package auth

import (
	"testing"
	"time"
)

func TestAllowed(t *testing.T) {
	tests := []struct {
		name string
		role Role
		op   Operation
		want bool
	}{
		{"admin can override", RoleAdmin, OpOverrideBooking, true},
		{"regular cannot override", RoleRegular, OpOverrideBooking, false},
		{"facility manager cannot override", RoleFacilityManager, OpOverrideBooking, false},
		{"regular can create booking", RoleRegular, OpCreateBooking, true},
		{"auditor cannot create booking", RoleAuditor, OpCreateBooking, false},
		{"auditor can list all bookings", RoleAuditor, OpListAllBookings, true},
		{"service account can read room state", RoleServiceAccount, OpReadRoomState, true},
		{"service account can check availability", RoleServiceAccount, OpCheckAvailability, true},
		{"moderator cannot check availability", RoleModerator, OpCheckAvailability, false},
		{"unknown role denied", Role("ghost"), OpCreateBooking, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Allowed(tt.role, tt.op); got != tt.want {
				t.Errorf("Allowed(%s, %s) = %v, want %v", tt.role, tt.op, got, tt.want)
			}
		})
	}
}

func TestParseRole(t *testing.T) {
	if _, ok := ParseRole("admin"); !ok {
		t.Error("admin should parse")
	}
	if _, ok := ParseRole("superuser"); ok {
		t.Error("superuser should not parse")
	}
	if _, ok := ParseRole(""); ok {
		t.Error("empty role should not parse")
	}
}

func TestServiceTokenRoundTrip(t *testing.T) {
	const secret = "test-secret"

	token, err := NewServiceToken(secret, time.Minute)
	if err != nil {
		t.Fatalf("mint: %v", err)
	}

	identity, err := ParseToken(secret, token)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if identity.Role != RoleServiceAccount {
		t.Errorf("expected service_account role, got %s", identity.Role)
	}
	if identity.UserID == "" {
		t.Error("expected non-empty user id")
	}
}

func TestParseTokenRejectsWrongSecret(t *testing.T) {
	token, err := NewServiceToken("secret-a", time.Minute)
	if err != nil {
		t.Fatalf("mint: %v", err)
	}

	if _, err := ParseToken("secret-b", token); err == nil {
		t.Fatal("expected rejection with the wrong secret")
	}
}

func TestParseTokenRejectsExpired(t *testing.T) {
	token, err := NewServiceToken("secret", -time.Minute)
	if err != nil {
		t.Fatalf("mint: %v", err)
	}

	if _, err := ParseToken("secret", token); err == nil {
		t.Fatal("expected rejection of an expired token")
	}
}
