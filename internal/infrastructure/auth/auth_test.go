package auth

import (
	"math"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	testSecret    = "LIC-1234-ABCD"
	testToken     = "776a29a09834eb3fb5916f4c37cea9308c214e0a31a3c0be70cecfa1517298c6"
	testMaterial  = "747148af7a3587173f658a22692980d634e3545293b68cc0c427373ede8f6a22"
	testTimestamp = "1760000000"
	testBody      = `{"store_token":"x","license_key_hash":"abc"}`
	testSignature = "98548a61961dc2594d236b461d42918e2ffeac83cce0624741c1e840b8d0b749"
)

func TestDeriveCredentials(t *testing.T) {
	creds, err := DeriveCredentials(testSecret)
	require.NoError(t, err)
	assert.Equal(t, testToken, creds.Token)
	assert.Equal(t, testMaterial, creds.SecretMaterial)

	again, err := DeriveCredentials("  " + testSecret + "\n")
	require.NoError(t, err)
	assert.Equal(t, creds, again, "derivation must be deterministic")
	assert.Equal(t, testToken, DeriveToken(testSecret))

	_, err = DeriveCredentials("   ")
	assert.ErrorIs(t, err, ErrEmptyLicenseSecret)
}

func TestDeriveCredentials_NeverEchoesSecret(t *testing.T) {
	creds, err := DeriveCredentials(testSecret)
	require.NoError(t, err)
	assert.NotContains(t, creds.Token, testSecret)
	assert.NotContains(t, creds.SecretMaterial, testSecret)
	assert.NotEqual(t, creds.Token, creds.SecretMaterial)
}

func TestSignRequest_KnownVector(t *testing.T) {
	assert.Equal(t, testSignature, SignRequest(testMaterial, testToken, testTimestamp, []byte(testBody)))
}

func fixedVerifier() *SignatureVerifier {
	now := time.Unix(1760000000, 0)
	return NewSignatureVerifier(0).WithClock(func() time.Time { return now })
}

func TestSignatureVerifier_CheckHeaders(t *testing.T) {
	v := fixedVerifier()
	assert.NoError(t, v.CheckHeaders(testTimestamp, testSignature))
	assert.ErrorIs(t, v.CheckHeaders("", testSignature), ErrMissingCredentials)
	assert.ErrorIs(t, v.CheckHeaders(testTimestamp, " "), ErrMissingCredentials)
}

func TestSignatureVerifier_CheckTimestamp(t *testing.T) {
	v := fixedVerifier()
	base := int64(1760000000)

	tests := []struct {
		name    string
		ts      string
		wantErr bool
	}{
		{"now", strconv.FormatInt(base, 10), false},
		{"exactly 300s old", strconv.FormatInt(base-300, 10), false},
		{"301s old", strconv.FormatInt(base-301, 10), true},
		{"300s ahead", strconv.FormatInt(base+300, 10), false},
		{"301s ahead", strconv.FormatInt(base+301, 10), true},
		{"not a number", "yesterday", true},
		{"far future", strconv.FormatInt(1<<62, 10), true},
		{"max int64", strconv.FormatInt(math.MaxInt64, 10), true},
		{"min int64", strconv.FormatInt(math.MinInt64, 10), true},
		{"negative", "-1", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := v.CheckTimestamp(tt.ts)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrTimestampOutOfWindow)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestSignatureVerifier_VerifySignature(t *testing.T) {
	v := fixedVerifier()

	t.Run("valid", func(t *testing.T) {
		assert.NoError(t, v.VerifySignature(testMaterial, testToken, testTimestamp, []byte(testBody), testSignature))
	})

	t.Run("uppercase hex accepted", func(t *testing.T) {
		assert.NoError(t, v.VerifySignature(testMaterial, testToken, testTimestamp, []byte(testBody), strings.ToUpper(testSignature)))
	})

	t.Run("wrong key", func(t *testing.T) {
		err := v.VerifySignature(strings.Repeat("0", 64), testToken, testTimestamp, []byte(testBody), testSignature)
		assert.ErrorIs(t, err, ErrInvalidSignature)
	})

	t.Run("tampered body", func(t *testing.T) {
		err := v.VerifySignature(testMaterial, testToken, testTimestamp, []byte(strings.Replace(testBody, "abc", "abd", 1)), testSignature)
		assert.ErrorIs(t, err, ErrInvalidSignature)
	})

	t.Run("different timestamp", func(t *testing.T) {
		err := v.VerifySignature(testMaterial, testToken, "1760000001", []byte(testBody), testSignature)
		assert.ErrorIs(t, err, ErrInvalidSignature)
	})

	t.Run("not hex", func(t *testing.T) {
		err := v.VerifySignature(testMaterial, testToken, testTimestamp, []byte(testBody), "zz")
		assert.ErrorIs(t, err, ErrInvalidSignature)
	})
}

func TestAdminTokenService(t *testing.T) {
	svc := NewAdminTokenService("admin-secret", "licensegate", time.Hour)

	token, err := svc.Generate("billing", ScopeNotifications)
	require.NoError(t, err)

	claims, err := svc.Verify(token)
	require.NoError(t, err)
	assert.Equal(t, "billing", claims.Subject)
	assert.Equal(t, ScopeNotifications, claims.Scope)

	_, err = NewAdminTokenService("other-secret", "licensegate", time.Hour).Verify(token)
	assert.Error(t, err)

	_, err = NewAdminTokenService("admin-secret", "someone-else", time.Hour).Verify(token)
	assert.Error(t, err)
}
