package auth

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"strconv"
	"strings"
	"time"
)

// DefaultTimestampSkew is how far a request timestamp may drift from server
// time in either direction.
const DefaultTimestampSkew = 300 * time.Second

var (
	ErrMissingCredentials   = errors.New("timestamp and signature are required")
	ErrTimestampOutOfWindow = errors.New("timestamp outside accepted window")
	ErrInvalidSignature     = errors.New("signature mismatch")
)

// SignRequest computes hex(HMAC-SHA256(material, token + ":" + timestamp + ":" + body)).
func SignRequest(secretMaterial, token, timestamp string, body []byte) string {
	mac := hmac.New(sha256.New, []byte(secretMaterial))
	mac.Write([]byte(token))
	mac.Write([]byte{':'})
	mac.Write([]byte(timestamp))
	mac.Write([]byte{':'})
	mac.Write(body)
	return hex.EncodeToString(mac.Sum(nil))
}

// SignatureVerifier checks request freshness and MACs.
type SignatureVerifier struct {
	skew time.Duration
	now  func() time.Time
}

// NewSignatureVerifier creates a verifier. A non-positive skew uses
// DefaultTimestampSkew.
func NewSignatureVerifier(skew time.Duration) *SignatureVerifier {
	if skew <= 0 {
		skew = DefaultTimestampSkew
	}
	return &SignatureVerifier{skew: skew, now: time.Now}
}

// WithClock replaces the time source. Intended for tests.
func (v *SignatureVerifier) WithClock(now func() time.Time) *SignatureVerifier {
	v.now = now
	return v
}

// Skew returns the accepted timestamp drift.
func (v *SignatureVerifier) Skew() time.Duration {
	return v.skew
}

// CheckHeaders fails with ErrMissingCredentials when either header is empty.
func (v *SignatureVerifier) CheckHeaders(timestamp, signature string) error {
	if strings.TrimSpace(timestamp) == "" || strings.TrimSpace(signature) == "" {
		return ErrMissingCredentials
	}
	return nil
}

// CheckTimestamp rejects stale, future-skewed and unparsable Unix timestamps.
func (v *SignatureVerifier) CheckTimestamp(timestamp string) error {
	ts, err := strconv.ParseInt(strings.TrimSpace(timestamp), 10, 64)
	if err != nil {
		return ErrTimestampOutOfWindow
	}
	// Compare in whole seconds: bounds built from now cannot overflow,
	// while now-ts can for extreme values.
	now := v.now().Unix()
	skew := int64(v.skew / time.Second)
	if ts < now-skew || ts > now+skew {
		return ErrTimestampOutOfWindow
	}
	return nil
}

// VerifySignature recomputes the MAC with the store's material and compares
// it to the supplied hex signature in constant time.
func (v *SignatureVerifier) VerifySignature(secretMaterial, token, timestamp string, body []byte, signature string) error {
	supplied, err := hex.DecodeString(strings.TrimSpace(signature))
	if err != nil {
		return ErrInvalidSignature
	}
	expected, _ := hex.DecodeString(SignRequest(secretMaterial, token, timestamp, body))
	if !hmac.Equal(supplied, expected) {
		return ErrInvalidSignature
	}
	return nil
}
