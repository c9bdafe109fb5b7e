// Package session issues and verifies the stateless session token.
//
// A token is "{issuedAt}.{expiresAt}.{signature}", where the two timestamps are
// Unix seconds, and signature is the unpadded base64url HMAC-SHA256 of
// "{issuedAt}.{expiresAt}". Nothing is stored on the server. A token dies
// when it expires, or when the client throws it away.
package session

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"strconv"
	"strings"
	"time"
)

// SYNC-SESSION-COOKIE
const CookieName = "champa_session"

const TTLSeconds = 60 * 60 * 24 * 14
const TTL = TTLSeconds * time.Second

// Codec is safe for concurrent use. It holds no mutable state.
type Codec struct {
	secret []byte
	now    func() time.Time
}

func NewCodec(secret string) *Codec {
	return &Codec{
		secret: []byte(secret),
		now:    time.Now,
	}
}

// WithClock returns a copy of the codec that reads the time from now. For tests.
func (c *Codec) WithClock(now func() time.Time) *Codec {
	return &Codec{
		secret: c.secret,
		now:    now,
	}
}

// Issue mints a new token that expires TTL after now
func (c *Codec) Issue(now time.Time) string {
	issuedAt := now.Unix()
	expiresAt := issuedAt + TTLSeconds
	payload := strconv.FormatInt(issuedAt, 10) + "." + strconv.FormatInt(expiresAt, 10)
	return payload + "." + c.sign(payload)
}

// Verify returns true if token is well formed, unexpired, and correctly signed.
// It never panics.
func (c *Codec) Verify(token string) bool {
	if token == "" {
		return false
	}
	parts := strings.Split(token, ".")
	if len(parts) != 3 {
		return false
	}
	if _, err := strconv.ParseInt(parts[0], 10, 64); err != nil {
		return false
	}
	expiresAt, err := strconv.ParseInt(parts[1], 10, 64)
	if err != nil {
		return false
	}
	if c.now().Unix() >= expiresAt {
		return false
	}
	// Sign the raw text, not a re-formatted number, so that "+5" and "5" are different payloads
	expected := c.sign(parts[0] + "." + parts[1])
	return hmac.Equal([]byte(parts[2]), []byte(expected))
}

func (c *Codec) sign(payload string) string {
	mac := hmac.New(sha256.New, c.secret)
	mac.Write([]byte(payload))
	return base64.RawURLEncoding.EncodeToString(mac.Sum(nil))
}
