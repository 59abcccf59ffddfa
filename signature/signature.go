// Package signature implements the shared-secret webhook signature scheme used
// between partner sites and the wallet backend.
package signature

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"strconv"
	"strings"
	"time"
)

// Prefix identifies the signature scheme in the X-Partner-Signature header.
const Prefix = "sha256="

var (
	ErrInvalidSignature = errors.New("webhook signature mismatch")
	ErrStaleTimestamp   = errors.New("webhook timestamp outside allowed window")
)

// Sign computes the webhook signature over the timestamp header value and the
// exact raw body bytes. The timestamp is concatenated as a string, not parsed,
// so the signature binds the header value byte for byte.
func Sign(secret string, timestamp string, rawBody []byte) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(timestamp))
	mac.Write(rawBody)
	return Prefix + hex.EncodeToString(mac.Sum(nil))
}

// Verify recomputes the signature and compares it in constant time.
func Verify(secret string, timestamp string, rawBody []byte, sig string) bool {
	if !strings.HasPrefix(sig, Prefix) {
		return false
	}
	expected := Sign(secret, timestamp, rawBody)
	return hmac.Equal([]byte(expected), []byte(sig))
}

// VerifyWithMaxAge verifies the signature and additionally rejects requests whose
// timestamp is older than maxAge, or more than maxAge in the future, to prevent
// replay of captured webhooks.
func VerifyWithMaxAge(secret string, timestamp string, rawBody []byte, sig string, maxAge time.Duration, now time.Time) error {
	ts, err := strconv.ParseInt(strings.TrimSpace(timestamp), 10, 64)
	if err != nil {
		return ErrStaleTimestamp
	}
	sent := time.Unix(ts, 0)
	if now.Sub(sent) > maxAge || sent.Sub(now) > maxAge {
		return ErrStaleTimestamp
	}
	if !Verify(secret, timestamp, rawBody, sig) {
		return ErrInvalidSignature
	}
	return nil
}
