package linehook

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
)

// ValidateSignature reports whether signature is the base64-encoded
// HMAC-SHA256 digest of body keyed by the channel secret, as carried in the
// x-line-signature request header. The body must be the raw request bytes;
// re-serialized JSON produces a different byte sequence and a different
// digest. An empty signature never validates. Comparison is constant time.
func ValidateSignature(secret, signature string, body []byte) bool {
	if signature == "" {
		return false
	}
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(body)
	expected := base64.StdEncoding.EncodeToString(mac.Sum(nil))
	return hmac.Equal([]byte(signature), []byte(expected))
}
