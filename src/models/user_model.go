package models

import (
	"encoding/json"

	"gorm.io/gorm"
)

// User is the account record: credentials and the link to the marketplace
// profile document. Accounts live in SQLite; everything profile-facing lives
// in the profiles collection and is referenced through ProfileID.
type User struct {
	gorm.Model
	Name      string `json:"name"`
	Email     string `json:"email" gorm:"uniqueIndex"`
	Password  string `json:"-"`
	Role      string `json:"role"`
	ProfileID string `json:"profile_id" gorm:"uniqueIndex"`
}

// MarshalJSON renames ID to _id so the API matches the document ids the
// frontend already handles.
func (u User) MarshalJSON() ([]byte, error) {
	type Alias User
	return json.Marshal(&struct {
		ID uint `json:"_id"`
		*Alias
	}{
		ID:    u.ID,
		Alias: (*Alias)(&u),
	})
}
