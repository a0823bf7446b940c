package security

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// ErrInvalidToken signals a malformed, forged, or out-of-window signed token.
var ErrInvalidToken = fmt.Errorf("invalid signed token")

// SignedToken issues and verifies HMAC-SHA256 time-boxed tokens used by the
// admin and cron surfaces. The token format is "<unix-ts>.<hex-mac>" where
// the MAC covers the decimal timestamp string.
type SignedToken struct {
	secret []byte
	skew   time.Duration
	now    func() time.Time
}

// NewSignedToken builds a token helper. skew bounds how far the embedded
// timestamp may drift from the verifier's clock in either direction.
func NewSignedToken(secret string, skew time.Duration) (*SignedToken, error) {
	if secret == "" {
		return nil, fmt.Errorf("signed token secret is required")
	}
	if skew <= 0 {
		skew = 10 * time.Minute
	}
	return &SignedToken{
		secret: []byte(secret),
		skew:   skew,
		now:    time.Now,
	}, nil
}

// Generate mints a token for the current time.
func (s *SignedToken) Generate() string {
	ts := strconv.FormatInt(s.now().Unix(), 10)
	return ts + "." + s.sign(ts)
}

// Verify checks the MAC with a constant-time comparison and rejects tokens
// whose timestamp falls outside the skew window.
func (s *SignedToken) Verify(token string) error {
	parts := strings.SplitN(token, ".", 2)
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return ErrInvalidToken
	}

	unix, err := strconv.ParseInt(parts[0], 10, 64)
	if err != nil {
		return ErrInvalidToken
	}

	expected := s.sign(parts[0])
	if !hmac.Equal([]byte(expected), []byte(parts[1])) {
		return ErrInvalidToken
	}

	issued := time.Unix(unix, 0)
	drift := s.now().Sub(issued)
	if drift > s.skew || drift < -s.skew {
		return ErrInvalidToken
	}
	return nil
}

func (s *SignedToken) sign(payload string) string {
	mac := hmac.New(sha256.New, s.secret)
	mac.Write([]byte(payload))
	return hex.EncodeToString(mac.Sum(nil))
}
