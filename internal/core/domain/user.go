package domain

import "time"

type UserID string

// User is the persisted account record. TelegramID is the stable external
// identity and the unique lookup key; ID is the internal reference minted
// at creation time.
type User struct {
	ID         UserID    `json:"id"`
	TelegramID string    `json:"telegram_id"`
	FirstName  string    `json:"first_name"`
	LastName   string    `json:"last_name,omitempty"`
	Username   string    `json:"username,omitempty"`
	PhotoURL   string    `json:"photo_url,omitempty"`
	AuthDate   int64     `json:"auth_date"`
	IsAdmin    bool      `json:"is_admin"`
	IsAllowed  bool      `json:"is_allowed"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// CandidateUser is a normalized identity assertion: what an account would
// look like if it were created now. The raw signature is retained so that
// normalization stays independent from verification.
type CandidateUser struct {
	TelegramID string
	FirstName  string
	LastName   string
	Username   string
	PhotoURL   string
	AuthDate   int64
	Hash       string
	IsAdmin    bool
	IsAllowed  bool
}

// UserUpdate carries the mutable fields of an administrative update. Nil
// pointers leave the stored value untouched.
type UserUpdate struct {
	FirstName *string `json:"first_name,omitempty"`
	LastName  *string `json:"last_name,omitempty"`
	Username  *string `json:"username,omitempty"`
	PhotoURL  *string `json:"photo_url,omitempty"`
	IsAdmin   *bool   `json:"is_admin,omitempty"`
	IsAllowed *bool   `json:"is_allowed,omitempty"`
}

// PublicUser is the sanitized shape returned to clients. It never carries
// internal timestamps or the raw assertion signature.
type PublicUser struct {
	ID         UserID `json:"id"`
	TelegramID string `json:"telegram_id"`
	FirstName  string `json:"first_name"`
	LastName   string `json:"last_name,omitempty"`
	Username   string `json:"username,omitempty"`
	PhotoURL   string `json:"photo_url,omitempty"`
	IsAdmin    bool   `json:"is_admin"`
}

// Sanitize strips a persisted user down to its client-visible fields.
func (u *User) Sanitize() PublicUser {
	return PublicUser{
		ID:         u.ID,
		TelegramID: u.TelegramID,
		FirstName:  u.FirstName,
		LastName:   u.LastName,
		Username:   u.Username,
		PhotoURL:   u.PhotoURL,
		IsAdmin:    u.IsAdmin,
	}
}
