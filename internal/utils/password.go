package utils

import "golang.org/x/crypto/bcrypt"

// hashCost is the bcrypt work factor for staff account passwords.
// Logins are rare next to scan traffic, so the library default is
// plenty without slowing the auth endpoint down.
const hashCost = bcrypt.DefaultCost

// HashPassword hashes a staff password for storage on the users table.
func HashPassword(plain string) (string, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(plain), hashCost)
	if err != nil {
		return "", err
	}
	return string(hashed), nil
}

// CheckPassword reports whether plain matches the stored bcrypt hash.
func CheckPassword(hashed, plain string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hashed), []byte(plain)) == nil
}
