// Package crypto wraps password hashing for the credential store.
package crypto

import "golang.org/x/crypto/bcrypt"

// hashCost is bcrypt's default work factor. Raising it invalidates nothing;
// old hashes keep their recorded cost.
const hashCost = bcrypt.DefaultCost

// HashPassword derives a salted one-way hash of the plaintext password.
// The plaintext is never stored.
func HashPassword(plain string) ([]byte, error) {
	return bcrypt.GenerateFromPassword([]byte(plain), hashCost)
}

// ComparePassword reports whether plain matches the stored hash. A nil
// return means match.
func ComparePassword(hash []byte, plain string) error {
	return bcrypt.CompareHashAndPassword(hash, []byte(plain))
}
