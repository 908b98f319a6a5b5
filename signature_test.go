package linehook

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"testing"
)

func sign(secret string, body []byte) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(body)
	return base64.StdEncoding.EncodeToString(mac.Sum(nil))
}

func TestValidateSignatureRoundTrip(t *testing.T) {
	bodies := [][]byte{
		[]byte(`{}`),
		[]byte(`{"destination":"U123","events":[]}`),
		[]byte("not even json"),
		{},
	}
	for _, body := range bodies {
		if !ValidateSignature("secret", sign("secret", body), body) {
			t.Errorf("signature of %q did not validate", body)
		}
	}
}

func TestValidateSignatureMutatedBody(t *testing.T) {
	body := []byte(`{"destination":"U123","events":[]}`)
	signature := sign("secret", body)

	for i := range body {
		mutated := append([]byte(nil), body...)
		mutated[i] ^= 0x01
		if ValidateSignature("secret", signature, mutated) {
			t.Errorf("signature validated after mutating byte %d", i)
		}
	}
}

func TestValidateSignatureWrongSecret(t *testing.T) {
	body := []byte(`{"events":[]}`)
	if ValidateSignature("other-secret", sign("secret", body), body) {
		t.Fatal("signature validated with the wrong secret")
	}
}

func TestValidateSignatureEmptyOrGarbage(t *testing.T) {
	body := []byte(`{"events":[]}`)
	if ValidateSignature("secret", "", body) {
		t.Fatal("empty signature validated")
	}
	if ValidateSignature("secret", "not base64 at all", body) {
		t.Fatal("garbage signature validated")
	}
}
