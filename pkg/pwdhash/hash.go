package pwdhash

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/hex"
	"fmt"
	"strings"

	"golang.org/x/crypto/scrypt"
)

// A stored hash is a spec string "scrypt:<salt>:<digestHex>".
// The salt is used as its literal bytes (we generate it as a hex string),
// and the digest length determines the scrypt output length on verification.

// scrypt(16384,8,1) is 36 ms on a Skylake 6700K
const Scheme = "scrypt"
const saltSize = 16
const keySize = 64
const scryptN = 16384
const scryptR = 8
const scryptP = 1

// Upper bound on the digest length we're willing to derive, so that a bogus
// hash spec can't make us burn memory on every login attempt.
const maxKeySize = 1024

// DefaultPassword is accepted when no hash spec is configured. Development only.
const DefaultPassword = "champaisthebest"

// Verifier checks passwords against a single configured hash spec
type Verifier struct {
	hashSpec string
}

// If hashSpec is empty, then the Verifier accepts only DefaultPassword
func NewVerifier(hashSpec string) *Verifier {
	return &Verifier{
		hashSpec: hashSpec,
	}
}

// UsingDefault returns true if there is no hash spec, and we're accepting DefaultPassword
func (v *Verifier) UsingDefault() bool {
	return v.hashSpec == ""
}

// Verify returns true if password matches.
// Every malformed spec is a verification failure, never an error.
func (v *Verifier) Verify(password string) bool {
	if v.hashSpec == "" {
		return secureCompare(password, DefaultPassword)
	}
	return VerifyHash(password, v.hashSpec)
}

// Returns true if a plaintext password matches a hash spec of the form scrypt:salt:digestHex
func VerifyHash(password, hashSpec string) bool {
	salt, expectedHex, keyLen, ok := parseSpec(hashSpec)
	if !ok {
		return false
	}
	dk, err := scrypt.Key([]byte(password), []byte(salt), scryptN, scryptR, scryptP, keyLen)
	if err != nil {
		return false
	}
	return secureCompare(hex.EncodeToString(dk), expectedHex)
}

// IsValidSpec returns true if hashSpec is well formed. It says nothing about any password.
func IsValidSpec(hashSpec string) bool {
	_, _, _, ok := parseSpec(hashSpec)
	return ok
}

func parseSpec(hashSpec string) (salt, digestHex string, keyLen int, ok bool) {
	parts := strings.Split(hashSpec, ":")
	if len(parts) != 3 || parts[0] != Scheme {
		return
	}
	salt = parts[1]
	digestHex = parts[2]
	if salt == "" || digestHex == "" {
		return
	}
	expected, err := hex.DecodeString(digestHex)
	if err != nil || len(expected) == 0 || len(expected) > maxKeySize {
		return
	}
	return salt, digestHex, len(expected), true
}

// Create a random salt, and return a fully baked hash spec
func HashPassword(password string) (string, error) {
	s := [saltSize]byte{}
	if _, err := rand.Read(s[:]); err != nil {
		return "", fmt.Errorf("Error creating password salt: %w", err)
	}
	return HashPasswordWithSalt(password, hex.EncodeToString(s[:]))
}

// HashPasswordWithSalt returns the hash spec for password, using the given salt string verbatim
func HashPasswordWithSalt(password, salt string) (string, error) {
	if salt == "" || strings.Contains(salt, ":") {
		return "", fmt.Errorf("Invalid salt")
	}
	dk, err := scrypt.Key([]byte(password), []byte(salt), scryptN, scryptR, scryptP, keySize)
	if err != nil {
		return "", fmt.Errorf("Error hashing password: %w", err)
	}
	return Scheme + ":" + salt + ":" + hex.EncodeToString(dk), nil
}

// Lengths leak through the early exit, contents don't
func secureCompare(a, b string) bool {
	return subtle.ConstantTimeCompare([]byte(a), []byte(b)) == 1
}
