package assembler

import (
	"time"

	"github.com/jjudge-oj/userservice/internal/hateoas"
)

// UserResponse is the wire form of a user with its profile flattened in.
type UserResponse struct {
	UserID          string            `json:"user_id"`
	Username        string            `json:"username,omitempty"`
	Email           string            `json:"email,omitempty"`
	Status          string            `json:"status,omitempty"`
	FirstName       string            `json:"first_name,omitempty"`
	LastName        string            `json:"last_name,omitempty"`
	PhoneNumber     string            `json:"phone_number,omitempty"`
	ProfileImageURL string            `json:"profile_image_url,omitempty"`
	Addresses       []AddressResponse `json:"addresses,omitempty"`
	CreatedAt       time.Time         `json:"created_at,omitzero"`
	UpdatedAt       time.Time         `json:"updated_at,omitzero"`
	Links           hateoas.Links     `json:"links,omitempty"`
}

// UserProfileResponse is the body of the profile endpoints.
type UserProfileResponse struct {
	UserID          string        `json:"user_id"`
	FirstName       string        `json:"first_name,omitempty"`
	LastName        string        `json:"last_name,omitempty"`
	PhoneNumber     string        `json:"phone_number,omitempty"`
	ProfileImageURL string        `json:"profile_image_url,omitempty"`
	CreatedAt       time.Time     `json:"created_at,omitzero"`
	UpdatedAt       time.Time     `json:"updated_at,omitzero"`
	Links           hateoas.Links `json:"links,omitempty"`
}

// AddressResponse always carries a links array, empty or not.
type AddressResponse struct {
	AddressID    string        `json:"address_id"`
	UserID       string        `json:"user_id"`
	AddressType  string        `json:"address_type,omitempty"`
	AddressLine1 string        `json:"address_line_1,omitempty"`
	AddressLine2 string        `json:"address_line_2,omitempty"`
	City         string        `json:"city,omitempty"`
	State        string        `json:"state,omitempty"`
	ZipCode      string        `json:"zip_code,omitempty"`
	Country      string        `json:"country,omitempty"`
	CreatedAt    time.Time     `json:"created_at,omitzero"`
	UpdatedAt    time.Time     `json:"updated_at,omitzero"`
	Links        hateoas.Links `json:"links"`
}

// AddressesResponse is the address collection of one user.
type AddressesResponse struct {
	UserID    string            `json:"user_id"`
	Addresses []AddressResponse `json:"addresses"`
	Links     hateoas.Links     `json:"links"`
}

// PageResponse is the page metadata of a users page.
type PageResponse struct {
	PageNumber    int   `json:"page_number"`
	PageSize      int   `json:"page_size"`
	TotalPages    int   `json:"total_pages"`
	TotalElements int64 `json:"total_elements"`
}

// UsersPageResponse is one page of users with navigation links.
type UsersPageResponse struct {
	Users []UserResponse `json:"users"`
	Page  PageResponse   `json:"page"`
	Links hateoas.Links  `json:"links,omitempty"`
}
