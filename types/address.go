package types

import (
	"time"

	"github.com/google/uuid"
)

// DefaultAddressType is stored when an address is created without a type.
const DefaultAddressType = "home"

// UserAddress is a postal address owned by a user.
type UserAddress struct {
	ID     uuid.UUID `db:"id"`
	UserID uuid.UUID `db:"user_id"`

	// AddressType is free form: billing, shipping, home, etc.
	AddressType  string `db:"address_type"`
	AddressLine1 string `db:"address_line_1"`
	AddressLine2 string `db:"address_line_2"`
	City         string `db:"city"`
	State        string `db:"state"`
	ZipCode      string `db:"zip_code"`
	Country      string `db:"country"`

	CreatedAt time.Time `db:"created_at"`
	UpdatedAt time.Time `db:"updated_at"`
}
