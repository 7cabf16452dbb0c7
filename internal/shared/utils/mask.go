package utils

// MaskToken keeps the first eight characters of a store token for log lines.
func MaskToken(token string) string {
	if len(token) <= 8 {
		return "***"
	}
	return token[:8] + "***"
}
