// Package auth issues and verifies bearer tokens and hashes account
// passwords.
package auth

import (
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/skillkeeper/internal/common"
	"golang.org/x/crypto/bcrypt"
)

// bcryptMaxInput is the longest input bcrypt accepts.
const bcryptMaxInput = 72

// ErrPasswordMismatch is returned by ComparePassword when the password does
// not match the digest.
var ErrPasswordMismatch = errors.New("password mismatch")

// passwordBytes returns the bytes fed to bcrypt. Longer passwords are
// reduced to a base64 SHA-256 digest so that every byte still counts.
func passwordBytes(password string) []byte {
	if len(password) <= bcryptMaxInput {
		return []byte(password)
	}
	sum := sha256.Sum256([]byte(password))
	out := make([]byte, base64.StdEncoding.EncodedLen(len(sum)))
	base64.StdEncoding.Encode(out, sum[:])
	return out
}

// HashPassword returns the bcrypt digest of password at the given cost.
func HashPassword(password string, cost int) (string, error) {
	b := passwordBytes(password)
	defer common.WipeByteArray(b)

	digest, err := bcrypt.GenerateFromPassword(b, cost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(digest), nil
}

// ComparePassword checks password against a digest produced by HashPassword.
func ComparePassword(digest, password string) error {
	b := passwordBytes(password)
	defer common.WipeByteArray(b)

	err := bcrypt.CompareHashAndPassword([]byte(digest), b)
	if err != nil {
		if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
			return ErrPasswordMismatch
		}
		return fmt.Errorf("compare password: %w", err)
	}
	return nil
}
