package types

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// UserStatus is the lifecycle state of an account.
type UserStatus string

const (
	UserStatusActive   UserStatus = "ACTIVE"
	UserStatusInactive UserStatus = "INACTIVE"
	UserStatusBanned   UserStatus = "BANNED"
	UserStatusPending  UserStatus = "PENDING"
	UserStatusDeleted  UserStatus = "DELETED"
)

// ParseUserStatus normalizes s and reports whether it names a known status.
func ParseUserStatus(s string) (UserStatus, bool) {
	status := UserStatus(strings.ToUpper(strings.TrimSpace(s)))
	switch status {
	case UserStatusActive, UserStatusInactive, UserStatusBanned, UserStatusPending, UserStatusDeleted:
		return status, true
	default:
		return "", false
	}
}

// User represents an account in the system.
// It owns at most one profile and any number of addresses.
type User struct {
	// ID is the unique identifier of the user.
	ID uuid.UUID `db:"id"`

	// Username is the unique login name chosen by the user.
	Username string `db:"username"`

	// Email is the user's unique email address.
	Email string `db:"email"`

	// PasswordHash stores the bcrypt hash of the user's password.
	// This field is never exposed in API responses.
	PasswordHash string `db:"password_hash"`

	// Status is the account lifecycle state.
	Status UserStatus `db:"status"`

	// CreatedAt is the timestamp when the user account was created.
	CreatedAt time.Time `db:"created_at"`

	// UpdatedAt is the timestamp of the most recent update to the user account.
	UpdatedAt time.Time `db:"updated_at"`

	// Profile is the 1:1 profile row, nil when the user has none.
	Profile *UserProfile `db:"-"`

	// Addresses are the user's addresses; empty when none are loaded.
	Addresses []UserAddress `db:"-"`
}

// UserProfile holds the personal details of a user.
type UserProfile struct {
	UserID          uuid.UUID `db:"user_id"`
	FirstName       string    `db:"first_name"`
	LastName        string    `db:"last_name"`
	PhoneNumber     string    `db:"phone_number"`
	ProfileImageURL string    `db:"profile_image_url"`
	CreatedAt       time.Time `db:"created_at"`
	UpdatedAt       time.Time `db:"updated_at"`
}

// NewUser is everything written when an account is created. Address is
// optional.
type NewUser struct {
	Username        string
	Email           string
	PasswordHash    string
	FirstName       string
	LastName        string
	PhoneNumber     string
	ProfileImageURL string
	Address         *UserAddress
}

// UserFilter narrows a user listing. Empty fields are ignored.
type UserFilter struct {
	Username  string
	Email     string
	FirstName string
	LastName  string
	Status    UserStatus
}
