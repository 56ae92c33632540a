package repository

import "errors"

// ErrNotFound indicates an entity was not located.
var ErrNotFound = errors.New("repository: not found")

// ErrConflict indicates a uniqueness constraint was violated, e.g. a signup
// with an already registered email.
var ErrConflict = errors.New("repository: already exists")
