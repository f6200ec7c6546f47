// Package assembler converts persisted records into link-decorated
// response values. Every operation either returns a complete response or an
// error; partially linked documents are never produced.
package assembler

import (
	"github.com/google/uuid"
	"github.com/jjudge-oj/userservice/internal/apperrors"
	"github.com/jjudge-oj/userservice/internal/hateoas"
	"github.com/jjudge-oj/userservice/types"
)

const (
	msgInvalidUserID    = "Invalid null or empty user id"
	msgInvalidAddressID = "Invalid null or empty address id"
)

// Assembler is safe for concurrent use.
type Assembler struct {
	linker *hateoas.Linker
}

// New constructs an Assembler that links through linker.
func New(linker *hateoas.Linker) *Assembler {
	return &Assembler{linker: linker}
}

// User maps user, its profile and every nested address.
func (a *Assembler) User(user types.User) (UserResponse, error) {
	if user.ID == uuid.Nil {
		return UserResponse{}, apperrors.InvalidInput(msgInvalidUserID)
	}
	userID := user.ID.String()

	resp := UserResponse{
		UserID:    userID,
		Username:  user.Username,
		Email:     user.Email,
		Status:    string(user.Status),
		CreatedAt: user.CreatedAt,
		UpdatedAt: user.UpdatedAt,
	}
	if p := user.Profile; p != nil {
		resp.FirstName = p.FirstName
		resp.LastName = p.LastName
		resp.PhoneNumber = p.PhoneNumber
		resp.ProfileImageURL = p.ProfileImageURL
	}

	if len(user.Addresses) > 0 {
		resp.Addresses = make([]AddressResponse, 0, len(user.Addresses))
		for _, addr := range user.Addresses {
			nested, err := a.Address(addr, user.ID)
			if err != nil {
				return UserResponse{}, err
			}
			resp.Addresses = append(resp.Addresses, nested)
		}
	}

	links, err := a.linker.UserLinks(userID)
	if err != nil {
		return UserResponse{}, apperrors.Internal(err, "build links for user %s", userID)
	}
	resp.Links = links
	return resp, nil
}

// UserProfile converts profile into its response with profile links.
func (a *Assembler) UserProfile(profile types.UserProfile) (UserProfileResponse, error) {
	if profile.UserID == uuid.Nil {
		return UserProfileResponse{}, apperrors.InvalidInput(msgInvalidUserID)
	}
	userID := profile.UserID.String()

	links, err := a.linker.ProfileLinks(userID)
	if err != nil {
		return UserProfileResponse{}, apperrors.Internal(err, "build links for profile of user %s", userID)
	}
	return UserProfileResponse{
		UserID:          userID,
		FirstName:       profile.FirstName,
		LastName:        profile.LastName,
		PhoneNumber:     profile.PhoneNumber,
		ProfileImageURL: profile.ProfileImageURL,
		CreatedAt:       profile.CreatedAt,
		UpdatedAt:       profile.UpdatedAt,
		Links:           links,
	}, nil
}

// Address maps addr as owned by userID. The link set is the same whether
// the address is returned alone or nested in a parent.
func (a *Assembler) Address(addr types.UserAddress, userID uuid.UUID) (AddressResponse, error) {
	if userID == uuid.Nil {
		return AddressResponse{}, apperrors.InvalidInput(msgInvalidUserID)
	}
	if addr.ID == uuid.Nil {
		return AddressResponse{}, apperrors.InvalidInput(msgInvalidAddressID)
	}
	uid, aid := userID.String(), addr.ID.String()

	links, err := a.linker.AddressLinks(uid, aid)
	if err != nil {
		return AddressResponse{}, apperrors.Internal(err, "build links for address %s of user %s", aid, uid)
	}
	return AddressResponse{
		AddressID:    aid,
		UserID:       uid,
		AddressType:  addr.AddressType,
		AddressLine1: addr.AddressLine1,
		AddressLine2: addr.AddressLine2,
		City:         addr.City,
		State:        addr.State,
		ZipCode:      addr.ZipCode,
		Country:      addr.Country,
		CreatedAt:    addr.CreatedAt,
		UpdatedAt:    addr.UpdatedAt,
		Links:        links,
	}, nil
}

// AddressesCollection wraps addrs for userID. A nil slice yields an empty
// addresses array.
func (a *Assembler) AddressesCollection(userID uuid.UUID, addrs []types.UserAddress) (AddressesResponse, error) {
	if userID == uuid.Nil {
		return AddressesResponse{}, apperrors.InvalidInput(msgInvalidUserID)
	}
	uid := userID.String()

	links, err := a.linker.AddressesLinks(uid)
	if err != nil {
		return AddressesResponse{}, apperrors.Internal(err, "build links for addresses of user %s", uid)
	}

	resp := AddressesResponse{
		UserID:    uid,
		Addresses: make([]AddressResponse, 0, len(addrs)),
		Links:     links,
	}
	for _, addr := range addrs {
		nested, err := a.Address(addr, userID)
		if err != nil {
			return AddressesResponse{}, err
		}
		resp.Addresses = append(resp.Addresses, nested)
	}
	return resp, nil
}

// UsersPage assembles each user and attaches pagination links to the
// wrapper.
func (a *Assembler) UsersPage(users []types.User, page types.Page) (UsersPageResponse, error) {
	resp := UsersPageResponse{
		Users: make([]UserResponse, 0, len(users)),
		Page: PageResponse{
			PageNumber:    page.Page,
			PageSize:      page.Size,
			TotalPages:    page.TotalPages,
			TotalElements: page.TotalElements,
		},
	}
	for _, user := range users {
		member, err := a.User(user)
		if err != nil {
			return UsersPageResponse{}, err
		}
		resp.Users = append(resp.Users, member)
	}

	links, err := a.linker.PageLinks(page)
	if err != nil {
		return UsersPageResponse{}, apperrors.Internal(err, "build links for users page %d", page.Page)
	}
	resp.Links = links
	return resp, nil
}
