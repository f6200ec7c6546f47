package hateoas

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/jjudge-oj/userservice/types"
)

// Relation names.
const (
	RelSelf      = "self"
	RelUser      = "user"
	RelProfile   = "profile"
	RelAddresses = "addresses"
	RelNext      = "next"
	RelPrev      = "prev"
	RelFirst     = "first"
	RelLast      = "last"
)

// Link is a single named hyperlink.
type Link struct {
	Rel  string `json:"rel"`
	Href string `json:"href"`
}

// Links is an ordered set of relations; insertion order is display order.
type Links []Link

// MarshalJSON writes an empty array for nil so fields without omitempty
// always serialize as a list.
func (l Links) MarshalJSON() ([]byte, error) {
	if l == nil {
		return []byte("[]"), nil
	}
	return json.Marshal([]Link(l))
}

// Href returns the target of rel.
func (l Links) Href(rel string) (string, bool) {
	for _, link := range l {
		if link.Rel == rel {
			return link.Href, true
		}
	}
	return "", false
}

// Rels lists the relation names in order.
func (l Links) Rels() []string {
	rels := make([]string, 0, len(l))
	for _, link := range l {
		rels = append(rels, link.Rel)
	}
	return rels
}

// Linker turns route table entries into absolute links under a base URL.
// It holds no mutable state and is safe for concurrent use.
type Linker struct {
	baseURL string
}

// NewLinker validates baseURL (scheme and host are required) and returns a
// Linker that prefixes every href with it.
func NewLinker(baseURL string) (*Linker, error) {
	baseURL = strings.TrimRight(strings.TrimSpace(baseURL), "/")
	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("parse base url: %w", err)
	}
	if u.Scheme == "" || u.Host == "" {
		return nil, errors.New("base url must be absolute")
	}
	return &Linker{baseURL: baseURL}, nil
}

// BaseURL returns the prefix applied to every href.
func (l *Linker) BaseURL() string {
	return l.baseURL
}

// Builder accumulates relations for one response object. The first error
// sticks and is reported by Build; later calls are no-ops.
type Builder struct {
	linker *Linker
	links  Links
	err    error
}

// Builder starts an empty link set.
func (l *Linker) Builder() *Builder {
	return &Builder{linker: l}
}

// Add appends rel pointing at route resolved with params.
func (b *Builder) Add(rel string, route Route, params Params) *Builder {
	if b.err != nil {
		return b
	}
	if _, dup := b.links.Href(rel); dup {
		b.err = fmt.Errorf("%w: %s", ErrDuplicateRelation, rel)
		return b
	}
	path, err := Resolve(route, params)
	if err != nil {
		b.err = fmt.Errorf("build %s link: %w", rel, err)
		return b
	}
	b.links = append(b.links, Link{Rel: rel, Href: b.linker.baseURL + path})
	return b
}

// Build returns a copy of the collected links or the first error.
func (b *Builder) Build() (Links, error) {
	if b.err != nil {
		return nil, b.err
	}
	out := make(Links, len(b.links))
	copy(out, b.links)
	return out, nil
}

// UserLinks: self, profile, addresses.
func (l *Linker) UserLinks(userID string) (Links, error) {
	p := Params{ParamUserID: userID}
	return l.Builder().
		Add(RelSelf, RouteUser, p).
		Add(RelProfile, RouteUserProfile, p).
		Add(RelAddresses, RouteUserAddresses, p).
		Build()
}

// ProfileLinks: self, user, addresses.
func (l *Linker) ProfileLinks(userID string) (Links, error) {
	p := Params{ParamUserID: userID}
	return l.Builder().
		Add(RelSelf, RouteUserProfile, p).
		Add(RelUser, RouteUser, p).
		Add(RelAddresses, RouteUserAddresses, p).
		Build()
}

// AddressLinks: self, user. The same set is used wherever the address
// appears.
func (l *Linker) AddressLinks(userID, addressID string) (Links, error) {
	return l.Builder().
		Add(RelSelf, RouteUserAddress, Params{ParamUserID: userID, ParamAddressID: addressID}).
		Add(RelUser, RouteUser, Params{ParamUserID: userID}).
		Build()
}

// AddressesLinks: self, user, profile.
func (l *Linker) AddressesLinks(userID string) (Links, error) {
	p := Params{ParamUserID: userID}
	return l.Builder().
		Add(RelSelf, RouteUserAddresses, p).
		Add(RelUser, RouteUser, p).
		Add(RelProfile, RouteUserProfile, p).
		Build()
}

// PageLinks: self plus the pagination relations for page. Each target
// keeps the page size and points at the destination page.
func (l *Linker) PageLinks(page types.Page) (Links, error) {
	if page.Size < 1 {
		return nil, fmt.Errorf("%w: size must be positive", ErrMissingParam)
	}
	size := strconv.Itoa(page.Size)
	b := l.Builder()
	for _, rel := range PageRelations(page.Page, page.TotalPages) {
		b.Add(rel.Rel, RouteUsers, Params{ParamPage: strconv.Itoa(rel.Page), ParamSize: size})
	}
	return b.Build()
}
