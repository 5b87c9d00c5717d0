package models

// GuestName is used whenever no profile is stored.
const GuestName = "Guest"

// User is the locally stored profile of the signed in customer.
type User struct {
	Username string `json:"username"`
	Avatar   string `json:"avatar,omitempty"`
}

func Guest() User {
	return User{Username: GuestName}
}

// DisplayName falls back to the guest name for an empty username.
func (u User) DisplayName() string {
	if u.Username == "" {
		return GuestName
	}
	return u.Username
}
