package security

import (
	"strings"
	"testing"
	"time"
)

func TestSignedTokenRoundTrip(t *testing.T) {
	st, err := NewSignedToken("test-secret", 10*time.Minute)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	token := st.Generate()
	if err := st.Verify(token); err != nil {
		t.Fatalf("fresh token should verify: %v", err)
	}
}

func TestSignedTokenRejectsExpired(t *testing.T) {
	st, err := NewSignedToken("test-secret", 10*time.Minute)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	issued := time.Now()
	st.now = func() time.Time { return issued }
	token := st.Generate()

	st.now = func() time.Time { return issued.Add(11 * time.Minute) }
	if err := st.Verify(token); err != ErrInvalidToken {
		t.Fatalf("expected ErrInvalidToken for stale token, got %v", err)
	}

	st.now = func() time.Time { return issued.Add(-11 * time.Minute) }
	if err := st.Verify(token); err != ErrInvalidToken {
		t.Fatalf("expected ErrInvalidToken for future token, got %v", err)
	}
}

func TestSignedTokenRejectsForgery(t *testing.T) {
	st, err := NewSignedToken("test-secret", 10*time.Minute)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	other, err := NewSignedToken("other-secret", 10*time.Minute)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if err := st.Verify(other.Generate()); err != ErrInvalidToken {
		t.Fatalf("expected token signed with other secret to fail, got %v", err)
	}

	token := st.Generate()
	tampered := strings.Replace(token, ".", ".0", 1)
	if err := st.Verify(tampered); err != ErrInvalidToken {
		t.Fatalf("expected tampered token to fail, got %v", err)
	}

	for _, malformed := range []string{"", "no-separator", ".", "123.", ".abc", "notanumber.abc"} {
		if err := st.Verify(malformed); err != ErrInvalidToken {
			t.Fatalf("expected %q to fail, got %v", malformed, err)
		}
	}
}

func TestNewSignedTokenRequiresSecret(t *testing.T) {
	if _, err := NewSignedToken("", time.Minute); err == nil {
		t.Fatal("expected error for empty secret")
	}
}
