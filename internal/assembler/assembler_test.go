package assembler

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jjudge-oj/userservice/internal/apperrors"
	"github.com/jjudge-oj/userservice/internal/hateoas"
	"github.com/jjudge-oj/userservice/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const baseURL = "http://localhost:8080"

var (
	testUserID    = uuid.MustParse("937758e0-abe0-4dd4-827d-b868169bc160")
	testAddressID = uuid.MustParse("12345678-1234-1234-1234-123456789012")
	createdAt     = time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	updatedAt     = time.Date(2024, 1, 2, 12, 0, 0, 0, time.UTC)
)

func newTestAssembler(t *testing.T) *Assembler {
	t.Helper()
	linker, err := hateoas.NewLinker(baseURL)
	require.NoError(t, err)
	return New(linker)
}

func testAddress() types.UserAddress {
	return types.UserAddress{
		ID:           testAddressID,
		UserID:       testUserID,
		AddressType:  "Home",
		AddressLine1: "1717 Old Forest Rd",
		City:         "Old Forest",
		State:        "Old Forest",
		ZipCode:      "17171",
		Country:      "USA",
		CreatedAt:    createdAt,
		UpdatedAt:    updatedAt,
	}
}

func testUser() types.User {
	return types.User{
		ID:        testUserID,
		Username:  "magicalwizardman4848",
		Email:     "somewhere@someplace.com",
		Status:    types.UserStatusActive,
		CreatedAt: createdAt,
		UpdatedAt: updatedAt,
		Profile: &types.UserProfile{
			UserID:          testUserID,
			FirstName:       "Tom",
			LastName:        "Bombadil",
			PhoneNumber:     "5746857273733",
			ProfileImageURL: "www.someurl.com",
		},
		Addresses: []types.UserAddress{testAddress()},
	}
}

func userURL(id uuid.UUID) string {
	return baseURL + "/v1/users/" + id.String()
}

func TestUser(t *testing.T) {
	resp, err := newTestAssembler(t).User(testUser())
	require.NoError(t, err)

	assert.Equal(t, testUserID.String(), resp.UserID)
	assert.Equal(t, "magicalwizardman4848", resp.Username)
	assert.Equal(t, "Tom", resp.FirstName)
	assert.Equal(t, "Bombadil", resp.LastName)
	assert.Equal(t, "5746857273733", resp.PhoneNumber)
	assert.Equal(t, "www.someurl.com", resp.ProfileImageURL)
	assert.Equal(t, createdAt, resp.CreatedAt)

	assert.Equal(t, []string{hateoas.RelSelf, hateoas.RelProfile, hateoas.RelAddresses}, resp.Links.Rels())
	for _, link := range resp.Links {
		assert.Contains(t, link.Href, testUserID.String())
	}

	require.Len(t, resp.Addresses, 1)
	addr := resp.Addresses[0]
	assert.Equal(t, []string{hateoas.RelSelf, hateoas.RelUser}, addr.Links.Rels())

	self, _ := addr.Links.Href(hateoas.RelSelf)
	assert.Equal(t, userURL(testUserID)+"/addresses/"+testAddressID.String(), self)
	user, _ := addr.Links.Href(hateoas.RelUser)
	assert.Equal(t, userURL(testUserID), user)
}

func TestUserWithoutProfileOrAddresses(t *testing.T) {
	resp, err := newTestAssembler(t).User(types.User{ID: testUserID, Username: "bob"})
	require.NoError(t, err)
	assert.Empty(t, resp.FirstName)
	assert.Nil(t, resp.Addresses)

	data, err := json.Marshal(resp)
	require.NoError(t, err)
	assert.NotContains(t, string(data), `"addresses"`)
	assert.NotContains(t, string(data), `"created_at"`)
}

func TestUserDoesNotMutateInput(t *testing.T) {
	user := testUser()
	before := testUser()

	_, err := newTestAssembler(t).User(user)
	require.NoError(t, err)
	assert.Equal(t, before, user)
}

func TestUserIdempotent(t *testing.T) {
	a := newTestAssembler(t)
	first, err := a.User(testUser())
	require.NoError(t, err)
	second, err := a.User(testUser())
	require.NoError(t, err)

	assert.Equal(t, first, second)
	firstJSON, err := json.Marshal(first)
	require.NoError(t, err)
	secondJSON, err := json.Marshal(second)
	require.NoError(t, err)
	assert.Equal(t, firstJSON, secondJSON)
}

func TestNilIDsAreInvalidInput(t *testing.T) {
	a := newTestAssembler(t)

	_, err := a.User(types.User{})
	assert.Equal(t, apperrors.KindInvalidInput, apperrors.KindOf(err))

	_, err = a.UserProfile(types.UserProfile{})
	assert.Equal(t, apperrors.KindInvalidInput, apperrors.KindOf(err))

	_, err = a.Address(testAddress(), uuid.Nil)
	assert.Equal(t, apperrors.KindInvalidInput, apperrors.KindOf(err))

	_, err = a.Address(types.UserAddress{}, testUserID)
	assert.Equal(t, apperrors.KindInvalidInput, apperrors.KindOf(err))
	assert.Equal(t, msgInvalidAddressID, apperrors.MessageOf(err))

	_, err = a.AddressesCollection(uuid.Nil, nil)
	assert.Equal(t, apperrors.KindInvalidInput, apperrors.KindOf(err))

	_, err = a.UsersPage([]types.User{{}}, types.NewPage(0, 10, 1))
	assert.Equal(t, apperrors.KindInvalidInput, apperrors.KindOf(err))
}

func TestNestedAddressWithNilIDAbortsUser(t *testing.T) {
	user := testUser()
	user.Addresses = append(user.Addresses, types.UserAddress{UserID: testUserID})

	_, err := newTestAssembler(t).User(user)
	require.Error(t, err)
	assert.Equal(t, apperrors.KindInvalidInput, apperrors.KindOf(err))
}

func TestUserProfile(t *testing.T) {
	resp, err := newTestAssembler(t).UserProfile(*testUser().Profile)
	require.NoError(t, err)

	assert.Equal(t, "Tom", resp.FirstName)
	assert.Equal(t, []string{hateoas.RelSelf, hateoas.RelUser, hateoas.RelAddresses}, resp.Links.Rels())
	self, _ := resp.Links.Href(hateoas.RelSelf)
	assert.Equal(t, userURL(testUserID)+"/profile", self)
}

func TestAddress(t *testing.T) {
	resp, err := newTestAssembler(t).Address(testAddress(), testUserID)
	require.NoError(t, err)

	assert.Equal(t, testAddressID.String(), resp.AddressID)
	assert.Equal(t, testUserID.String(), resp.UserID)
	assert.Equal(t, "1717 Old Forest Rd", resp.AddressLine1)
	assert.Equal(t, []string{hateoas.RelSelf, hateoas.RelUser}, resp.Links.Rels())
}

func TestAddressesCollection(t *testing.T) {
	second := testAddress()
	second.ID = uuid.MustParse("22345678-1234-1234-1234-123456789012")

	resp, err := newTestAssembler(t).AddressesCollection(testUserID, []types.UserAddress{testAddress(), second})
	require.NoError(t, err)

	assert.Equal(t, []string{hateoas.RelSelf, hateoas.RelUser, hateoas.RelProfile}, resp.Links.Rels())
	require.Len(t, resp.Addresses, 2)
	for _, addr := range resp.Addresses {
		assert.Equal(t, []string{hateoas.RelSelf, hateoas.RelUser}, addr.Links.Rels())
	}
	self, _ := resp.Addresses[1].Links.Href(hateoas.RelSelf)
	assert.Equal(t, userURL(testUserID)+"/addresses/"+second.ID.String(), self)
}

func TestAddressesCollectionEmpty(t *testing.T) {
	resp, err := newTestAssembler(t).AddressesCollection(testUserID, nil)
	require.NoError(t, err)

	data, err := json.Marshal(resp)
	require.NoError(t, err)

	var decoded map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.JSONEq(t, `[]`, string(decoded["addresses"]))
	assert.Contains(t, decoded, "links")
}

func TestUsersPage(t *testing.T) {
	users := []types.User{testUser(), testUser()}
	users[1].ID = uuid.MustParse("a37758e0-abe0-4dd4-827d-b868169bc160")
	users[1].Addresses = nil

	resp, err := newTestAssembler(t).UsersPage(users, types.NewPage(2, 2, 10))
	require.NoError(t, err)

	assert.Equal(t, PageResponse{PageNumber: 2, PageSize: 2, TotalPages: 5, TotalElements: 10}, resp.Page)
	assert.ElementsMatch(t,
		[]string{hateoas.RelSelf, hateoas.RelPrev, hateoas.RelNext, hateoas.RelFirst, hateoas.RelLast},
		resp.Links.Rels())

	next, _ := resp.Links.Href(hateoas.RelNext)
	assert.Equal(t, baseURL+"/v1/users?page=3&size=2", next)
	prev, _ := resp.Links.Href(hateoas.RelPrev)
	assert.Equal(t, baseURL+"/v1/users?page=1&size=2", prev)

	require.Len(t, resp.Users, 2)
	require.Len(t, resp.Users[0].Addresses, 1)
	assert.Equal(t, []string{hateoas.RelSelf, hateoas.RelUser}, resp.Users[0].Addresses[0].Links.Rels())
	assert.Equal(t, []string{hateoas.RelSelf, hateoas.RelProfile, hateoas.RelAddresses}, resp.Users[1].Links.Rels())
}

func TestUsersPageEmpty(t *testing.T) {
	resp, err := newTestAssembler(t).UsersPage(nil, types.NewPage(0, 10, 0))
	require.NoError(t, err)
	assert.Equal(t, []string{hateoas.RelSelf}, resp.Links.Rels())

	data, err := json.Marshal(resp)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"users":[]`)
}

func TestUsersPageLinkFailureIsInternal(t *testing.T) {
	_, err := newTestAssembler(t).UsersPage(nil, types.Page{Page: 0, Size: 0})
	require.Error(t, err)
	assert.Equal(t, apperrors.KindInternal, apperrors.KindOf(err))
	assert.ErrorIs(t, err, hateoas.ErrMissingParam)
}
