package security

import "golang.org/x/crypto/bcrypt"

// passwordCost is the bcrypt work factor for stored account passwords.
const passwordCost = 12

// HashPassword derives the bcrypt hash stored for an account password.
// Passwords are optional; accounts without one authenticate by token only.
func HashPassword(password string) (string, error) {
	hash, errHash := bcrypt.GenerateFromPassword([]byte(password), passwordCost)
	if errHash != nil {
		return "", errHash
	}
	return string(hash), nil
}

// CheckPassword reports whether password matches the stored bcrypt hash.
func CheckPassword(hash, password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}
