package services

import (
	"context"
	"errors"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/jjudge-oj/userservice/internal/apperrors"
	"github.com/jjudge-oj/userservice/internal/assembler"
	"github.com/jjudge-oj/userservice/internal/store"
	"github.com/jjudge-oj/userservice/types"
	"go.uber.org/zap"
)

// AddressRepository defines persistence operations for user addresses.
type AddressRepository interface {
	ListByUserID(ctx context.Context, userID uuid.UUID) ([]types.UserAddress, error)
	GetByID(ctx context.Context, id uuid.UUID) (types.UserAddress, error)
	Create(ctx context.Context, addr types.UserAddress) (types.UserAddress, error)
	Update(ctx context.Context, addr types.UserAddress) (types.UserAddress, error)
	Delete(ctx context.Context, userID, addressID uuid.UUID) (int64, error)
}

// AddressRequest creates an address, standalone or as part of a new user.
type AddressRequest struct {
	AddressType  string `json:"address_type" validate:"max=50"`
	AddressLine1 string `json:"address_line_1" validate:"required,max=255"`
	AddressLine2 string `json:"address_line_2" validate:"max=255"`
	City         string `json:"city" validate:"required,max=100"`
	State        string `json:"state" validate:"required,max=100"`
	ZipCode      string `json:"zip_code" validate:"required,max=20"`
	Country      string `json:"country" validate:"required,max=100"`
}

func (r *AddressRequest) trim() {
	r.AddressType = strings.TrimSpace(r.AddressType)
	r.AddressLine1 = strings.TrimSpace(r.AddressLine1)
	r.AddressLine2 = strings.TrimSpace(r.AddressLine2)
	r.City = strings.TrimSpace(r.City)
	r.State = strings.TrimSpace(r.State)
	r.ZipCode = strings.TrimSpace(r.ZipCode)
	r.Country = strings.TrimSpace(r.Country)
}

func (r *AddressRequest) toRecord() types.UserAddress {
	addressType := r.AddressType
	if addressType == "" {
		addressType = types.DefaultAddressType
	}
	return types.UserAddress{
		AddressType:  addressType,
		AddressLine1: r.AddressLine1,
		AddressLine2: r.AddressLine2,
		City:         r.City,
		State:        r.State,
		ZipCode:      r.ZipCode,
		Country:      r.Country,
	}
}

// PatchAddressRequest is the body of PATCH on an address. A nil field is
// left unchanged.
type PatchAddressRequest struct {
	AddressType  *string `json:"address_type"`
	AddressLine1 *string `json:"address_line_1"`
	AddressLine2 *string `json:"address_line_2"`
	City         *string `json:"city"`
	State        *string `json:"state"`
	ZipCode      *string `json:"zip_code"`
	Country      *string `json:"country"`
}

// AddressService encapsulates address use-cases.
type AddressService struct {
	repo      AddressRepository
	assembler *assembler.Assembler
	events    *Events
	validate  *validator.Validate
	logger    *zap.Logger
}

// NewAddressService constructs an AddressService.
func NewAddressService(repo AddressRepository, asm *assembler.Assembler, events *Events, logger *zap.Logger) *AddressService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AddressService{
		repo:      repo,
		assembler: asm,
		events:    events,
		validate:  newValidator(),
		logger:    logger,
	}
}

// List returns the user's addresses; a user without any gets an empty
// collection.
func (s *AddressService) List(ctx context.Context, rawUserID string) (assembler.AddressesResponse, error) {
	userID, err := parseUserID(rawUserID)
	if err != nil {
		return assembler.AddressesResponse{}, err
	}

	addrs, err := s.repo.ListByUserID(ctx, userID)
	if err != nil {
		return assembler.AddressesResponse{}, s.internal(err, "find addresses by user id %s", userID)
	}
	return s.assembler.AddressesCollection(userID, addrs)
}

// Get returns one address owned by the user.
func (s *AddressService) Get(ctx context.Context, rawUserID, rawAddressID string) (assembler.AddressResponse, error) {
	userID, addressID, err := parseAddressKeys(rawUserID, rawAddressID)
	if err != nil {
		return assembler.AddressResponse{}, err
	}

	addr, err := s.owned(ctx, userID, addressID)
	if err != nil {
		return assembler.AddressResponse{}, err
	}
	return s.assembler.Address(addr, userID)
}

// Create adds an address to the user.
func (s *AddressService) Create(ctx context.Context, rawUserID string, req *AddressRequest) (assembler.AddressResponse, error) {
	userID, err := parseUserID(rawUserID)
	if err != nil {
		return assembler.AddressResponse{}, err
	}
	if req == nil {
		return assembler.AddressResponse{}, apperrors.InvalidInput("Request body must be included in Create User Address request")
	}
	req.trim()
	if err := validateStruct(s.validate, req); err != nil {
		return assembler.AddressResponse{}, err
	}

	record := req.toRecord()
	record.UserID = userID
	created, err := s.repo.Create(ctx, record)
	if err != nil {
		var constraintErr *store.ConstraintError
		if errors.As(err, &constraintErr) && constraintErr.Constraint == store.ConstraintAddressUserIDFkey {
			s.logger.Warn("address for missing user", zap.String("user_id", userID.String()))
			return assembler.AddressResponse{}, userNotFound(userID)
		}
		return assembler.AddressResponse{}, s.internal(err, "create address for user id %s", userID)
	}
	s.events.addressEvent(ctx, EventAddressCreated, userID, created.ID)
	return s.assembler.Address(created, userID)
}

// Update applies req to the address. Address line 2 may be cleared with an
// empty string; every other field must stay non-empty.
func (s *AddressService) Update(ctx context.Context, rawUserID, rawAddressID string, req *PatchAddressRequest) (assembler.AddressResponse, error) {
	userID, addressID, err := parseAddressKeys(rawUserID, rawAddressID)
	if err != nil {
		return assembler.AddressResponse{}, err
	}
	if req == nil {
		return assembler.AddressResponse{}, apperrors.InvalidInput("Request body must be included in Patch User Address request")
	}

	addr, err := s.owned(ctx, userID, addressID)
	if err != nil {
		return assembler.AddressResponse{}, err
	}

	changed, err := applyAddressPatch(req, &addr)
	if err != nil {
		return assembler.AddressResponse{}, err
	}
	if !changed {
		s.logger.Info("no changes for address update", zap.String("address_id", addressID.String()))
		return s.assembler.Address(addr, userID)
	}

	updated, err := s.repo.Update(ctx, addr)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return assembler.AddressResponse{}, addressNotFound(userID, addressID)
		}
		return assembler.AddressResponse{}, s.internal(err, "update address %s for user id %s", addressID, userID)
	}
	s.events.addressEvent(ctx, EventAddressUpdated, userID, addressID)
	return s.assembler.Address(updated, userID)
}

// Delete removes one address owned by the user.
func (s *AddressService) Delete(ctx context.Context, rawUserID, rawAddressID string) error {
	userID, addressID, err := parseAddressKeys(rawUserID, rawAddressID)
	if err != nil {
		return err
	}

	n, err := s.repo.Delete(ctx, userID, addressID)
	if err != nil {
		return s.internal(err, "delete address %s for user id %s", addressID, userID)
	}
	if n == 0 {
		return addressNotFound(userID, addressID)
	}
	s.logger.Info("deleted address",
		zap.String("user_id", userID.String()),
		zap.String("address_id", addressID.String()),
	)
	s.events.addressEvent(ctx, EventAddressDeleted, userID, addressID)
	return nil
}

// owned loads the address and hides addresses of other users.
func (s *AddressService) owned(ctx context.Context, userID, addressID uuid.UUID) (types.UserAddress, error) {
	addr, err := s.repo.GetByID(ctx, addressID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return types.UserAddress{}, addressNotFound(userID, addressID)
		}
		return types.UserAddress{}, s.internal(err, "find address %s for user id %s", addressID, userID)
	}
	if addr.UserID != userID {
		s.logger.Warn("address belongs to another user",
			zap.String("user_id", userID.String()),
			zap.String("address_id", addressID.String()),
		)
		return types.UserAddress{}, addressNotFound(userID, addressID)
	}
	return addr, nil
}

func (s *AddressService) internal(err error, format string, args ...any) error {
	appErr := apperrors.Internal(err, format, args...)
	s.logger.Error(appErr.Message, zap.Error(err))
	return appErr
}

func parseAddressKeys(rawUserID, rawAddressID string) (uuid.UUID, uuid.UUID, error) {
	userID, err := parseUserID(rawUserID)
	if err != nil {
		return uuid.Nil, uuid.Nil, err
	}
	addressID, err := parseAddressID(rawAddressID)
	if err != nil {
		return uuid.Nil, uuid.Nil, err
	}
	return userID, addressID, nil
}

func addressNotFound(userID, addressID uuid.UUID) error {
	return apperrors.NotFound("No user address found for userId %s and addressId %s", userID, addressID)
}

func applyAddressPatch(req *PatchAddressRequest, addr *types.UserAddress) (bool, error) {
	changed := false
	set := func(value *string, current *string, label string) error {
		if value == nil || *value == *current {
			return nil
		}
		if *value == "" {
			return apperrors.InvalidInput("%s cannot be empty", label)
		}
		*current = *value
		changed = true
		return nil
	}
	fields := []struct {
		value   *string
		current *string
		label   string
	}{
		{req.AddressType, &addr.AddressType, "Address type"},
		{req.AddressLine1, &addr.AddressLine1, "Address line 1"},
		{req.City, &addr.City, "City"},
		{req.State, &addr.State, "State"},
		{req.ZipCode, &addr.ZipCode, "Zip code"},
		{req.Country, &addr.Country, "Country"},
	}
	for _, f := range fields {
		if err := set(f.value, f.current, f.label); err != nil {
			return false, err
		}
	}
	if v := req.AddressLine2; v != nil && *v != addr.AddressLine2 {
		addr.AddressLine2 = *v
		changed = true
	}
	return changed, nil
}
