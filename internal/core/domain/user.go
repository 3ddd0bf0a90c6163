package domain

import "time"

// User represents a user of the application in the domain.
type User struct {
	UserID       string `json:"userID"` // Primary Key (e.g., UUID)
	Username     string `json:"username"`
	PasswordHash string `json:"-"`
	Name         string `json:"name"`
	AuditFields
	DeletedAt *time.Time `json:"deletedAt,omitempty"` // Used for soft delete

	// Refresh token state (stored hashed, never the raw token)
	RefreshTokenHash       string     `json:"-"`
	RefreshTokenExpiryTime *time.Time `json:"-"`

	// AuthProvider is "local" for password accounts, "google" for Google sign-in.
	AuthProvider   string `json:"authProvider"`
	ProviderUserID string `json:"-"` // Subject claim from the external provider
}

// GetUserID returns the user's ID.
func (u *User) GetUserID() string { return u.UserID }

// GetUsername returns the user's login name.
func (u *User) GetUsername() string { return u.Username }

// GetName returns the user's display name.
func (u *User) GetName() string { return u.Name }

// GoogleUserInfo is the subset of the Google userinfo payload the app consumes.
type GoogleUserInfo struct {
	ID            string `json:"id"`
	Email         string `json:"email"`
	VerifiedEmail bool   `json:"verified_email"`
	Name          string `json:"name"`
	Picture       string `json:"picture"`
}
