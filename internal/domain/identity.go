package domain

// Identity is a session snapshot from the hosted auth provider. Opaque to
// the library core except for UserID equality, which drives cache refresh.
type Identity struct {
	AccessToken string `json:"access_token"`
	UserID      string `json:"user_id"`
	Email       string `json:"email"`
}

// Profile is the display-name record kept in the user_names table, created
// once at first sign-in by the auth callback.
type Profile struct {
	UserID string `json:"user_id"`
	Name   string `json:"name"`
}
