package domain

// Profile holds the match-form attributes a user has submitted.
type Profile struct {
	AccountID          string
	Hobbies            string
	FavoriteColor      string
	FavoriteQuote      string
	ExternalProfileURL string
	ExternalPhotoURL   string
}

// ProfileUpdate is a typed partial update: nil fields are left untouched in
// the stored profile, non-nil fields overwrite the stored value.
type ProfileUpdate struct {
	Hobbies            *string
	FavoriteColor      *string
	FavoriteQuote      *string
	ExternalProfileURL *string
	ExternalPhotoURL   *string
}

// Empty reports whether the update carries no fields at all.
func (u ProfileUpdate) Empty() bool {
	return u.Hobbies == nil && u.FavoriteColor == nil && u.FavoriteQuote == nil &&
		u.ExternalProfileURL == nil && u.ExternalPhotoURL == nil
}
