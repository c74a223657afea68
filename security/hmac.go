package security

import (
	"crypto/hmac"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/base64"
	"encoding/hex"
	"errors"
	"strings"
)

var (
	// ErrNoSecret means the shared secret is not configured. This is an operator
	// problem, not a bad delivery, and callers must report it as such.
	ErrNoSecret = errors.New("webhook secret not configured")

	// ErrVerification covers every signature failure. Kept generic so responses
	// cannot leak whether the header was missing, malformed, or merely wrong.
	ErrVerification = errors.New("webhook verification failed")
)

// Verify checks an HMAC-SHA256 signature header against the exact raw request
// body. The header may be base64 (Shopify's X-Shopify-Hmac-Sha256), plain hex,
// or GitHub-style "sha256=<hex>". Comparison is constant-time.
func Verify(body []byte, signature, secret string) error {
	if strings.TrimSpace(secret) == "" {
		return ErrNoSecret
	}
	if signature == "" || len(body) == 0 {
		return ErrVerification
	}

	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(body)
	expected := mac.Sum(nil)

	actual, err := decodeSignature(signature)
	if err != nil {
		return ErrVerification
	}

	if subtle.ConstantTimeCompare(expected, actual) != 1 {
		return ErrVerification
	}
	return nil
}

// Sign returns the base64 HMAC-SHA256 of body under secret, the encoding
// Shopify puts on the wire.
func Sign(body []byte, secret string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(body)
	return base64.StdEncoding.EncodeToString(mac.Sum(nil))
}

// decodeSignature accepts base64, hex, and "sha256="-prefixed hex headers.
// A 64-char hex digest is also valid base64 input, but decodes to 48 bytes,
// so the length check keeps the two formats unambiguous.
func decodeSignature(signature string) ([]byte, error) {
	signature = strings.TrimSpace(strings.TrimPrefix(signature, "sha256="))

	if raw, err := base64.StdEncoding.DecodeString(signature); err == nil && len(raw) == sha256.Size {
		return raw, nil
	}
	if raw, err := hex.DecodeString(signature); err == nil && len(raw) == sha256.Size {
		return raw, nil
	}
	return nil, errors.New("unrecognized signature encoding")
}
