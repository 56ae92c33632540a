package domain

// Penpal is a pre-seeded penpal candidate.
type Penpal struct {
	ID        string
	Name      string
	Available bool
}
