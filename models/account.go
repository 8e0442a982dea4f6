package models

import (
	"time"

	"github.com/google/uuid"
)

// Account represents a registered user and the profiles they own
type Account struct {
	ID           uuid.UUID     `json:"id"`
	Username     string        `json:"username"`
	Email        *string       `json:"email,omitempty"`
	PasswordHash string        `json:"-"` // Never serialize password hash
	Profiles     SavedProfiles `json:"profiles"`
	CreatedAt    time.Time     `json:"created_at"`
	UpdatedAt    time.Time     `json:"updated_at"`
}

// FindProfile returns the saved profile with the given ID
func (a *Account) FindProfile(id uuid.UUID) (*SavedProfile, bool) {
	for i := range a.Profiles {
		if a.Profiles[i].ID == id {
			return &a.Profiles[i], true
		}
	}
	return nil, false
}

// Theme is the UI theme preference
type Theme string

const (
	ThemeLight Theme = "light"
	ThemeDark  Theme = "dark"
)

// IsValid reports whether t is a known theme
func (t Theme) IsValid() bool {
	return t == ThemeLight || t == ThemeDark
}
