package guard

import (
	"context"
	"crypto/sha256"
	"encoding/base64"
	"strings"
	"time"
)

// This is the restricted verifier that the guard uses. It deliberately shares no code
// with the session package: it only has a plain SHA-256 hash and an asynchronous signer
// to work with. The two implementations are held together by TestVerifiersAgree.

// Signer produces the raw MAC of payload. It may block, and must respect ctx.
type Signer interface {
	Sign(ctx context.Context, payload []byte) ([]byte, error)
}

const sha256BlockSize = 64

// hmacSigner is HMAC-SHA256 (RFC 2104) built directly on sha256
type hmacSigner struct {
	ipad [sha256BlockSize]byte
	opad [sha256BlockSize]byte
}

func NewHMACSigner(secret string) Signer {
	key := []byte(secret)
	if len(key) > sha256BlockSize {
		h := sha256.Sum256(key)
		key = h[:]
	}
	s := &hmacSigner{}
	copy(s.ipad[:], key)
	copy(s.opad[:], key)
	for i := 0; i < sha256BlockSize; i++ {
		s.ipad[i] ^= 0x36
		s.opad[i] ^= 0x5c
	}
	return s
}

func (s *hmacSigner) Sign(ctx context.Context, payload []byte) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	inner := sha256.New()
	inner.Write(s.ipad[:])
	inner.Write(payload)
	outer := sha256.New()
	outer.Write(s.opad[:])
	outer.Write(inner.Sum(nil))
	return outer.Sum(nil), nil
}

// Verifier checks session tokens on behalf of the guard
type Verifier struct {
	signer Signer
	now    func() time.Time
}

func NewVerifier(signer Signer) *Verifier {
	return &Verifier{
		signer: signer,
		now:    time.Now,
	}
}

// WithClock returns a copy of the verifier that reads the time from now. For tests.
func (v *Verifier) WithClock(now func() time.Time) *Verifier {
	return &Verifier{
		signer: v.signer,
		now:    now,
	}
}

// Verify returns true if token is well formed, unexpired, and correctly signed.
// A signer failure (including a cancelled ctx) is a verification failure.
func (v *Verifier) Verify(ctx context.Context, token string) bool {
	if token == "" {
		return false
	}
	parts := strings.Split(token, ".")
	if len(parts) != 3 {
		return false
	}
	if _, ok := parseSeconds(parts[0]); !ok {
		return false
	}
	expiresAt, ok := parseSeconds(parts[1])
	if !ok {
		return false
	}
	if v.now().Unix() >= expiresAt {
		return false
	}
	mac, err := v.signer.Sign(ctx, []byte(parts[0]+"."+parts[1]))
	if err != nil {
		return false
	}
	return constantTimeEqual(parts[2], toBase64URL(mac))
}

func toBase64URL(b []byte) string {
	return strings.TrimRight(base64.URLEncoding.EncodeToString(b), "=")
}

func constantTimeEqual(a, b string) bool {
	if len(a) != len(b) {
		return false
	}
	mismatch := byte(0)
	for i := 0; i < len(a); i++ {
		mismatch |= a[i] ^ b[i]
	}
	return mismatch == 0
}

// parseSeconds accepts an optionally signed base-10 integer that fits in an int64
func parseSeconds(s string) (int64, bool) {
	if s == "" {
		return 0, false
	}
	neg := false
	switch s[0] {
	case '+':
		s = s[1:]
	case '-':
		neg = true
		s = s[1:]
	}
	if s == "" {
		return 0, false
	}
	limit := uint64(1<<63 - 1)
	if neg {
		limit = 1 << 63
	}
	n := uint64(0)
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c < '0' || c > '9' {
			return 0, false
		}
		d := uint64(c - '0')
		if n > (limit-d)/10 {
			return 0, false
		}
		n = n*10 + d
	}
	if neg {
		return -int64(n), true
	}
	return int64(n), true
}
