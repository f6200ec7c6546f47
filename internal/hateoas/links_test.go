package hateoas

import (
	"encoding/json"
	"testing"

	"github.com/jjudge-oj/userservice/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	testBaseURL   = "http://localhost:8080"
	testUserID    = "937758e0-abe0-4dd4-827d-b868169bc160"
	testAddressID = "12345678-1234-1234-1234-123456789012"
)

func newTestLinker(t *testing.T) *Linker {
	t.Helper()
	linker, err := NewLinker(testBaseURL + "/")
	require.NoError(t, err)
	return linker
}

func TestNewLinkerRejectsRelativeBase(t *testing.T) {
	_, err := NewLinker("/v1")
	require.Error(t, err)

	_, err = NewLinker("")
	require.Error(t, err)
}

func TestResolve(t *testing.T) {
	path, err := Resolve(RouteUserAddress, Params{ParamUserID: testUserID, ParamAddressID: testAddressID})
	require.NoError(t, err)
	assert.Equal(t, "/v1/users/"+testUserID+"/addresses/"+testAddressID, path)

	path, err = Resolve(RouteUsers, Params{ParamPage: "3", ParamSize: "2"})
	require.NoError(t, err)
	assert.Equal(t, "/v1/users?page=3&size=2", path)
}

func TestResolveEscapesValues(t *testing.T) {
	path, err := Resolve(RouteUser, Params{ParamUserID: "a/b c"})
	require.NoError(t, err)
	assert.Equal(t, "/v1/users/a%2Fb%20c", path)

	path, err = Resolve(RouteUsers, Params{ParamPage: "1&x", ParamSize: "2"})
	require.NoError(t, err)
	assert.Equal(t, "/v1/users?page=1%26x&size=2", path)
}

func TestResolveErrors(t *testing.T) {
	_, err := Resolve(Route("nope"), nil)
	require.ErrorIs(t, err, ErrUnknownRoute)

	_, err = Resolve(RouteUserAddress, Params{ParamUserID: testUserID})
	require.ErrorIs(t, err, ErrMissingParam)

	_, err = Resolve(RouteUser, Params{ParamUserID: "  "})
	require.ErrorIs(t, err, ErrMissingParam)
}

func TestUserLinks(t *testing.T) {
	links, err := newTestLinker(t).UserLinks(testUserID)
	require.NoError(t, err)

	assert.Equal(t, Links{
		{Rel: RelSelf, Href: testBaseURL + "/v1/users/" + testUserID},
		{Rel: RelProfile, Href: testBaseURL + "/v1/users/" + testUserID + "/profile"},
		{Rel: RelAddresses, Href: testBaseURL + "/v1/users/" + testUserID + "/addresses"},
	}, links)
	for _, link := range links {
		assert.Contains(t, link.Href, testUserID)
	}
}

func TestProfileLinks(t *testing.T) {
	links, err := newTestLinker(t).ProfileLinks(testUserID)
	require.NoError(t, err)
	assert.Equal(t, []string{RelSelf, RelUser, RelAddresses}, links.Rels())

	href, ok := links.Href(RelSelf)
	require.True(t, ok)
	assert.Equal(t, testBaseURL+"/v1/users/"+testUserID+"/profile", href)
}

func TestAddressLinks(t *testing.T) {
	links, err := newTestLinker(t).AddressLinks(testUserID, testAddressID)
	require.NoError(t, err)

	assert.Equal(t, Links{
		{Rel: RelSelf, Href: testBaseURL + "/v1/users/" + testUserID + "/addresses/" + testAddressID},
		{Rel: RelUser, Href: testBaseURL + "/v1/users/" + testUserID},
	}, links)
}

func TestAddressLinksMissingAddressID(t *testing.T) {
	_, err := newTestLinker(t).AddressLinks(testUserID, "")
	require.ErrorIs(t, err, ErrMissingParam)
}

func TestAddressesLinks(t *testing.T) {
	links, err := newTestLinker(t).AddressesLinks(testUserID)
	require.NoError(t, err)
	assert.Equal(t, []string{RelSelf, RelUser, RelProfile}, links.Rels())
}

func TestPageLinks(t *testing.T) {
	links, err := newTestLinker(t).PageLinks(types.NewPage(2, 2, 10))
	require.NoError(t, err)

	assert.ElementsMatch(t, []string{RelSelf, RelPrev, RelNext, RelFirst, RelLast}, links.Rels())

	next, _ := links.Href(RelNext)
	assert.Equal(t, testBaseURL+"/v1/users?page=3&size=2", next)
	prev, _ := links.Href(RelPrev)
	assert.Equal(t, testBaseURL+"/v1/users?page=1&size=2", prev)
	last, _ := links.Href(RelLast)
	assert.Equal(t, testBaseURL+"/v1/users?page=4&size=2", last)
}

func TestPageLinksSinglePage(t *testing.T) {
	links, err := newTestLinker(t).PageLinks(types.NewPage(0, 10, 3))
	require.NoError(t, err)
	assert.Equal(t, []string{RelSelf}, links.Rels())
}

func TestPageLinksRejectsZeroSize(t *testing.T) {
	_, err := newTestLinker(t).PageLinks(types.Page{Page: 0, Size: 0})
	require.ErrorIs(t, err, ErrMissingParam)
}

func TestBuilderDuplicateRelation(t *testing.T) {
	p := Params{ParamUserID: testUserID}
	_, err := newTestLinker(t).Builder().
		Add(RelSelf, RouteUser, p).
		Add(RelSelf, RouteUserProfile, p).
		Build()
	require.ErrorIs(t, err, ErrDuplicateRelation)
}

func TestBuilderKeepsFirstError(t *testing.T) {
	_, err := newTestLinker(t).Builder().
		Add(RelSelf, RouteUser, nil).
		Add(RelUser, Route("missing"), nil).
		Build()
	require.ErrorIs(t, err, ErrMissingParam)
	assert.NotErrorIs(t, err, ErrUnknownRoute)
}

func TestLinksIdempotent(t *testing.T) {
	linker := newTestLinker(t)
	first, err := linker.UserLinks(testUserID)
	require.NoError(t, err)
	second, err := linker.UserLinks(testUserID)
	require.NoError(t, err)

	a, err := json.Marshal(first)
	require.NoError(t, err)
	b, err := json.Marshal(second)
	require.NoError(t, err)
	assert.Equal(t, a, b)
}

func TestLinksMarshalNil(t *testing.T) {
	var links Links
	data, err := json.Marshal(links)
	require.NoError(t, err)
	assert.JSONEq(t, `[]`, string(data))

	data, err = json.Marshal(Links{{Rel: RelSelf, Href: "http://x"}})
	require.NoError(t, err)
	assert.JSONEq(t, `[{"rel":"self","href":"http://x"}]`, string(data))
}
