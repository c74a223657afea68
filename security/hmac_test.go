package security

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"testing"
)

func hexSignature(body []byte, secret string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(body)
	return hex.EncodeToString(mac.Sum(nil))
}

func TestVerify(t *testing.T) {
	secret := "shpss_test_secret"
	body := []byte(`{"shop_domain":"acme.myshopify.com","shop_id":42}`)
	validB64 := Sign(body, secret)
	validHex := hexSignature(body, secret)

	tests := []struct {
		name      string
		body      []byte
		signature string
		secret    string
		wantErr   error
	}{
		{
			name:      "valid signature - base64 (Shopify)",
			body:      body,
			signature: validB64,
			secret:    secret,
		},
		{
			name:      "valid signature - plain hex",
			body:      body,
			signature: validHex,
			secret:    secret,
		},
		{
			name:      "valid signature - sha256= prefixed hex",
			body:      body,
			signature: "sha256=" + validHex,
			secret:    secret,
		},
		{
			name:      "tampered body",
			body:      []byte(`{"shop_domain":"evil.myshopify.com","shop_id":42}`),
			signature: validB64,
			secret:    secret,
			wantErr:   ErrVerification,
		},
		{
			name:      "wrong secret",
			body:      body,
			signature: validB64,
			secret:    "some-other-secret",
			wantErr:   ErrVerification,
		},
		{
			name:      "missing signature header",
			body:      body,
			signature: "",
			secret:    secret,
			wantErr:   ErrVerification,
		},
		{
			name:      "empty body",
			body:      nil,
			signature: validB64,
			secret:    secret,
			wantErr:   ErrVerification,
		},
		{
			name:      "garbage signature",
			body:      body,
			signature: "!!not-an-encoding!!",
			secret:    secret,
			wantErr:   ErrVerification,
		},
		{
			name:      "truncated signature",
			body:      body,
			signature: validHex[:32],
			secret:    secret,
			wantErr:   ErrVerification,
		},
		{
			name:      "missing secret is a config error",
			body:      body,
			signature: validB64,
			secret:    "",
			wantErr:   ErrNoSecret,
		},
		{
			name:      "blank secret is a config error",
			body:      body,
			signature: validB64,
			secret:    "   ",
			wantErr:   ErrNoSecret,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Verify(tt.body, tt.signature, tt.secret)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("Verify() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestVerifySingleBitFlip(t *testing.T) {
	secret := "bitflip-secret"
	body := []byte(`{"customer":{"id":9001,"email":"a@example.com"}}`)
	sig := Sign(body, secret)

	for i := range body {
		mutated := make([]byte, len(body))
		copy(mutated, body)
		mutated[i] ^= 0x01
		if err := Verify(mutated, sig, secret); err == nil {
			t.Fatalf("bit flip at byte %d accepted", i)
		}
	}

	// Flip each character of the hex form too; every mutation must fail,
	// whether it stays decodable or not.
	hexSig := hexSignature(body, secret)
	for i := range hexSig {
		mutated := []byte(hexSig)
		if mutated[i] == '0' {
			mutated[i] = '1'
		} else {
			mutated[i] = '0'
		}
		if err := Verify(body, string(mutated), secret); err == nil {
			t.Fatalf("signature mutation at char %d accepted", i)
		}
	}
}

func TestSignIsDeterministic(t *testing.T) {
	body := []byte("payload")
	if Sign(body, "k") != Sign(body, "k") {
		t.Error("Sign should be deterministic")
	}
	if Sign(body, "k") == Sign(body, "k2") {
		t.Error("different secrets should produce different signatures")
	}
	if Sign(body, "k") == Sign([]byte("payload2"), "k") {
		t.Error("different bodies should produce different signatures")
	}
}
