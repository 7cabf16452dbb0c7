package store

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"strings"
)

// Credentials identify a store and sign its requests.
type Credentials struct {
	Token          string
	SecretMaterial string
}

// DeriveCredentials computes the credentials a license secret maps to. The
// server derives the same values when the store is connected.
func DeriveCredentials(licenseSecret string) Credentials {
	secret := strings.TrimSpace(licenseSecret)
	return Credentials{
		Token:          digest(secret + ":connect"),
		SecretMaterial: digest(digest(secret + ":secret")),
	}
}

// HashLicenseKey returns the form in which license keys are sent. Raw keys
// never leave the store.
func HashLicenseKey(key string) string {
	return digest(strings.TrimSpace(key))
}

// Sign returns hex(HMAC-SHA256(secretMaterial, token:timestamp:body)).
func Sign(secretMaterial, token, timestamp string, body []byte) string {
	mac := hmac.New(sha256.New, []byte(secretMaterial))
	mac.Write([]byte(token))
	mac.Write([]byte{':'})
	mac.Write([]byte(timestamp))
	mac.Write([]byte{':'})
	mac.Write(body)
	return hex.EncodeToString(mac.Sum(nil))
}

func digest(s string) string {
	sum := sha256.Sum256([]byte(s))
	return hex.EncodeToString(sum[:])
}
