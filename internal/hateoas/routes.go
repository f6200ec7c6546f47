// Package hateoas builds the hyperlink relations attached to API responses.
package hateoas

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
)

// Route names an entry in the route table.
type Route string

const (
	RouteUsers            Route = "users"
	RouteUser             Route = "user"
	RouteUserProfile      Route = "user_profile"
	RouteUserProfileImage Route = "user_profile_image"
	RouteUserAddresses    Route = "user_addresses"
	RouteUserAddress      Route = "user_address"
)

// Placeholder keys used by the route templates.
const (
	ParamUserID    = "userId"
	ParamAddressID = "addressId"
	ParamPage      = "page"
	ParamSize      = "size"
)

var (
	ErrUnknownRoute      = errors.New("unknown route")
	ErrMissingParam      = errors.New("missing route parameter")
	ErrDuplicateRelation = errors.New("duplicate link relation")
)

// Params maps placeholder keys to their values.
type Params map[string]string

// routeTable is read-only after init.
var routeTable = map[Route]string{
	RouteUsers:            "/v1/users?page={page}&size={size}",
	RouteUser:             "/v1/users/{userId}",
	RouteUserProfile:      "/v1/users/{userId}/profile",
	RouteUserProfileImage: "/v1/users/{userId}/profile/image",
	RouteUserAddresses:    "/v1/users/{userId}/addresses",
	RouteUserAddress:      "/v1/users/{userId}/addresses/{addressId}",
}

// Template returns the raw template registered for route.
func Template(route Route) (string, bool) {
	tmpl, ok := routeTable[route]
	return tmpl, ok
}

// Resolve substitutes params into the template registered for route and
// returns the resulting path. Values are escaped for the part of the URL
// they land in.
func Resolve(route Route, params Params) (string, error) {
	tmpl, ok := routeTable[route]
	if !ok {
		return "", fmt.Errorf("%w: %q", ErrUnknownRoute, route)
	}

	var b strings.Builder
	b.Grow(len(tmpl) + 64)
	inQuery := false
	rest := tmpl
	for {
		open := strings.IndexByte(rest, '{')
		if open < 0 {
			b.WriteString(rest)
			break
		}
		closing := strings.IndexByte(rest[open:], '}')
		if closing < 0 {
			return "", fmt.Errorf("route %q: unterminated placeholder", route)
		}
		closing += open

		literal := rest[:open]
		if strings.IndexByte(literal, '?') >= 0 {
			inQuery = true
		}
		b.WriteString(literal)

		key := rest[open+1 : closing]
		value := strings.TrimSpace(params[key])
		if value == "" {
			return "", fmt.Errorf("%w: %s for route %q", ErrMissingParam, key, route)
		}
		if inQuery {
			b.WriteString(url.QueryEscape(value))
		} else {
			b.WriteString(url.PathEscape(value))
		}
		rest = rest[closing+1:]
	}
	return b.String(), nil
}
