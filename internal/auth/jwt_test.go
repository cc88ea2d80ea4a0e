package auth

import (
	"testing"
	"time"
)

func TestIssueParseRoundTrip(t *testing.T) {
	tokens, err := Issue("user-1", "user", "classtrack", "test-key", time.Minute, time.Hour)
	if err != nil {
		t.Fatal(err)
	}
	claims, err := Parse(tokens.AccessToken, "test-key", "classtrack")
	if err != nil {
		t.Fatal(err)
	}
	if claims.Subject != "user-1" || claims.Role != "user" {
		t.Errorf("unexpected claims %+v", claims)
	}
}

func TestParseRejectsWrongKeyAndIssuer(t *testing.T) {
	tokens, err := Issue("user-1", "user", "classtrack", "test-key", time.Minute, time.Hour)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := Parse(tokens.AccessToken, "other-key", "classtrack"); err == nil {
		t.Error("token accepted with wrong key")
	}
	if _, err := Parse(tokens.AccessToken, "test-key", "someone-else"); err == nil {
		t.Error("token accepted with wrong issuer")
	}
}

func TestParseRejectsExpired(t *testing.T) {
	tokens, err := Issue("user-1", "user", "classtrack", "test-key", -time.Minute, time.Hour)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := Parse(tokens.AccessToken, "test-key", "classtrack"); err == nil {
		t.Error("expired token accepted")
	}
}
