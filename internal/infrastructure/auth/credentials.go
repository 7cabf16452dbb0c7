// Package auth derives store credentials, verifies signed requests and issues
// admin tokens for the subscription system.
package auth

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"strings"
)

// ErrEmptyLicenseSecret is returned when no license secret is supplied.
var ErrEmptyLicenseSecret = errors.New("license secret is required")

// Credentials are derived from a license secret at connection time. The
// secret itself is never kept.
type Credentials struct {
	// Token identifies the store. Stable for a given secret.
	Token string
	// SecretMaterial is both the key issued to the client for signing and
	// the value stored server-side for verification.
	SecretMaterial string
}

// DeriveCredentials computes
//
//	token           = hex(sha256(secret + ":connect"))
//	clientSecret    = hex(sha256(secret + ":secret"))
//	secret_material = hex(sha256(clientSecret))
//
// Leading and trailing whitespace of the secret is ignored.
func DeriveCredentials(licenseSecret string) (Credentials, error) {
	secret := strings.TrimSpace(licenseSecret)
	if secret == "" {
		return Credentials{}, ErrEmptyLicenseSecret
	}

	clientSecret := digest(secret + ":secret")
	return Credentials{
		Token:          DeriveToken(secret),
		SecretMaterial: digest(clientSecret),
	}, nil
}

// DeriveToken returns only the store token for a license secret, used to find
// an existing store on reactivation.
func DeriveToken(licenseSecret string) string {
	return digest(strings.TrimSpace(licenseSecret) + ":connect")
}

// HashLicenseKey returns the hex sha256 of a license key, the form in which
// keys appear in reservation requests and audit records.
func HashLicenseKey(key string) string {
	return digest(strings.TrimSpace(key))
}

func digest(s string) string {
	sum := sha256.Sum256([]byte(s))
	return hex.EncodeToString(sum[:])
}
