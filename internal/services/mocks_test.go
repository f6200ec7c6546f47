package services

import (
	"bytes"
	"context"
	"io"
	"testing"

	"github.com/google/uuid"
	"github.com/jjudge-oj/userservice/internal/assembler"
	"github.com/jjudge-oj/userservice/internal/hateoas"
	"github.com/jjudge-oj/userservice/internal/storage"
	"github.com/jjudge-oj/userservice/types"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

const testBaseURL = "http://localhost:8080"

var (
	testUserID    = uuid.MustParse("937758e0-abe0-4dd4-827d-b868169bc160")
	testAddressID = uuid.MustParse("12345678-1234-1234-1234-123456789012")
)

type mockUserRepo struct {
	mock.Mock
}

func (m *mockUserRepo) GetByID(ctx context.Context, id uuid.UUID) (types.User, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(types.User), args.Error(1)
}

func (m *mockUserRepo) List(ctx context.Context, filter types.UserFilter, page, size int) ([]types.User, types.Page, error) {
	args := m.Called(ctx, filter, page, size)
	users, _ := args.Get(0).([]types.User)
	return users, args.Get(1).(types.Page), args.Error(2)
}

func (m *mockUserRepo) CreateWithProfile(ctx context.Context, nu types.NewUser) (uuid.UUID, error) {
	args := m.Called(ctx, nu)
	return args.Get(0).(uuid.UUID), args.Error(1)
}

func (m *mockUserRepo) UpdateProfileFields(ctx context.Context, profile types.UserProfile) error {
	args := m.Called(ctx, profile)
	return args.Error(0)
}

func (m *mockUserRepo) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

type mockAddressRepo struct {
	mock.Mock
}

func (m *mockAddressRepo) ListByUserID(ctx context.Context, userID uuid.UUID) ([]types.UserAddress, error) {
	args := m.Called(ctx, userID)
	addrs, _ := args.Get(0).([]types.UserAddress)
	return addrs, args.Error(1)
}

func (m *mockAddressRepo) GetByID(ctx context.Context, id uuid.UUID) (types.UserAddress, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(types.UserAddress), args.Error(1)
}

func (m *mockAddressRepo) Create(ctx context.Context, addr types.UserAddress) (types.UserAddress, error) {
	args := m.Called(ctx, addr)
	return args.Get(0).(types.UserAddress), args.Error(1)
}

func (m *mockAddressRepo) Update(ctx context.Context, addr types.UserAddress) (types.UserAddress, error) {
	args := m.Called(ctx, addr)
	return args.Get(0).(types.UserAddress), args.Error(1)
}

func (m *mockAddressRepo) Delete(ctx context.Context, userID, addressID uuid.UUID) (int64, error) {
	args := m.Called(ctx, userID, addressID)
	return args.Get(0).(int64), args.Error(1)
}

type mockProfileRepo struct {
	mock.Mock
}

func (m *mockProfileRepo) GetByUserID(ctx context.Context, userID uuid.UUID) (types.UserProfile, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).(types.UserProfile), args.Error(1)
}

func (m *mockProfileRepo) SetImageURL(ctx context.Context, userID uuid.UUID, url string) error {
	args := m.Called(ctx, userID, url)
	return args.Error(0)
}

type mockPublisher struct {
	mock.Mock
}

func (m *mockPublisher) Publish(ctx context.Context, channel string, data []byte, attrs map[string]string) (string, error) {
	args := m.Called(ctx, channel, data, attrs)
	return args.String(0), args.Error(1)
}

// memoryImages is an in-memory ImageStore.
type memoryImages struct {
	objects      map[string][]byte
	contentTypes map[string]string
}

func newMemoryImages() *memoryImages {
	return &memoryImages{objects: map[string][]byte{}, contentTypes: map[string]string{}}
}

func (m *memoryImages) Put(_ context.Context, key string, r io.Reader, _ int64, contentType string) error {
	data, err := io.ReadAll(r)
	if err != nil {
		return err
	}
	m.objects[key] = data
	m.contentTypes[key] = contentType
	return nil
}

func (m *memoryImages) Get(_ context.Context, key string) (io.ReadCloser, error) {
	data, ok := m.objects[key]
	if !ok {
		return nil, storage.ErrObjectNotFound
	}
	return io.NopCloser(bytes.NewReader(data)), nil
}

func (m *memoryImages) Delete(_ context.Context, key string) error {
	delete(m.objects, key)
	return nil
}

func newTestAssembler(t *testing.T) (*assembler.Assembler, *hateoas.Linker) {
	t.Helper()
	linker, err := hateoas.NewLinker(testBaseURL)
	require.NoError(t, err)
	return assembler.New(linker), linker
}

func testEvents(t *testing.T, pub Publisher) *Events {
	return NewEvents(pub, "user-events", zaptest.NewLogger(t))
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
	}
}

func testUser() types.User {
	return types.User{
		ID:       testUserID,
		Username: "magicalwizardman4848",
		Email:    "somewhere@someplace.com",
		Status:   types.UserStatusActive,
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

func strPtr(s string) *string {
	return &s
}
