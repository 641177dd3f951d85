package webhook

import (
	"context"
	"crypto/subtle"
	"fmt"
	"strings"
)

// SecretVerifier compares the payload secret against the value agreed with
// Cakto out-of-band.
type SecretVerifier struct {
	Secret string
}

func (v SecretVerifier) Verify(_ context.Context, received string) error {
	// Only the configured side is trimmed: whitespace in the stored secret
	// is an operator artifact, whitespace in the received value is a mismatch.
	expected := strings.TrimSpace(v.Secret)
	if expected == "" {
		return fmt.Errorf("webhook: shared secret is not configured")
	}
	if subtle.ConstantTimeCompare([]byte(received), []byte(expected)) != 1 {
		return fmt.Errorf("webhook: shared secret mismatch")
	}
	return nil
}
