package domain

import "time"

// Account is a registered user of the penpal product. The account
// identifier is the email address the user signed up with. The password is
// stored only as a bcrypt hash.
type Account struct {
	ID           string
	DisplayName  string
	PasswordHash []byte
	CreatedAt    time.Time
}

// Identity is the decoded subject of a validated token.
type Identity struct {
	AccountID   string
	DisplayName string
}
