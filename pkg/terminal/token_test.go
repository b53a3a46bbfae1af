package terminal

import (
	"testing"
)

func TestSessionTokenRoundtrip(t *testing.T) {
	token, err := GenerateSessionToken("abc-123")
	if err != nil {
		t.Fatal(err)
	}
	claims, err := ValidateSessionToken(token)
	if err != nil {
		t.Fatal(err)
	}
	if claims.SessionID != "abc-123" {
		t.Errorf("session id = %q, want abc-123", claims.SessionID)
	}
}

func TestSessionTokenTamperRejected(t *testing.T) {
	token, err := GenerateSessionToken("abc-123")
	if err != nil {
		t.Fatal(err)
	}
	if _, err := ValidateSessionToken(token + "x"); err == nil {
		t.Error("tampered token must not validate")
	}
	if _, err := ValidateSessionToken("not-a-token"); err == nil {
		t.Error("garbage must not validate")
	}
}
