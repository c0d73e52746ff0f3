package utils

import (
	"crypto/rand"
	"encoding/base64"
	"strings"
)

// GenerateSecureToken returns a URL-safe random string carrying length bytes
// of entropy. Used for codes and token values; these are opaque bearer
// secrets, never structured.
func GenerateSecureToken(length int) (string, error) {
	buf := make([]byte, length)
	_, err := rand.Read(buf)
	if err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}

func ParseCommaString(s string) []string {
	if s == "" {
		return []string{}
	}
	parts := strings.Split(s, ",")
	result := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			result = append(result, trimmed)
		}
	}
	return result
}

func SplitScopes(scope string) []string {
	if scope == "" {
		return []string{}
	}
	parts := strings.Split(scope, " ")
	result := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			result = append(result, trimmed)
		}
	}
	return result
}

func JoinScopes(scopes []string) string {
	return strings.Join(scopes, " ")
}
