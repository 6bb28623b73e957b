package utils

import (
	"crypto/sha256"
	"encoding/hex"
	"net/url"
)

// HashURL creates a SHA256 hash of a URL string.
// This is useful for creating consistent, safe keys for Redis.
func HashURL(rawURL string) string {
	h := sha256.Sum256([]byte(rawURL))
	return hex.EncodeToString(h[:])
}

// ToAbsoluteURL resolves ref against base. Absolute refs are returned as is.
func ToAbsoluteURL(base *url.URL, ref string) (string, error) {
	relURL, err := url.Parse(ref)
	if err != nil {
		return "", err
	}
	return base.ResolveReference(relURL).String(), nil
}
