package security

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/hex"
	"fmt"
	"io"
)

// userTokenBytes is the entropy of a generated user credential.
const userTokenBytes = 32

// GenerateUserToken creates the random secret handed to a user at creation
// time. It is the user's long-lived login credential.
func GenerateUserToken() (string, error) {
	secret := make([]byte, userTokenBytes)
	if _, err := io.ReadFull(rand.Reader, secret); err != nil {
		return "", fmt.Errorf("generate user token: %w", err)
	}
	return hex.EncodeToString(secret), nil
}

// TokensEqual compares two credentials in constant time.
func TokensEqual(a, b string) bool {
	return subtle.ConstantTimeCompare([]byte(a), []byte(b)) == 1
}
