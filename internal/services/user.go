package services

import (
	"context"
	"errors"
	"math"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/jjudge-oj/userservice/internal/apperrors"
	"github.com/jjudge-oj/userservice/internal/assembler"
	"github.com/jjudge-oj/userservice/internal/store"
	"github.com/jjudge-oj/userservice/types"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

const (
	DefaultPageSize = 10
	MaxPageSize     = 100

	// bcrypt only hashes the first 72 bytes of a password.
	maxPasswordBytes = 72
)

// UserRepository defines persistence operations for users.
type UserRepository interface {
	GetByID(ctx context.Context, id uuid.UUID) (types.User, error)
	List(ctx context.Context, filter types.UserFilter, page, size int) ([]types.User, types.Page, error)
	CreateWithProfile(ctx context.Context, nu types.NewUser) (uuid.UUID, error)
	UpdateProfileFields(ctx context.Context, profile types.UserProfile) error
	Delete(ctx context.Context, id uuid.UUID) error
}

// CreateUserRequest is the body of POST /v1/users.
type CreateUserRequest struct {
	Username        string          `json:"username" validate:"required,max=50"`
	Email           string          `json:"email" validate:"required,email,max=255"`
	FirstName       string          `json:"first_name" validate:"required,max=100"`
	LastName        string          `json:"last_name" validate:"required,max=100"`
	Password        string          `json:"password" validate:"required,min=8,max=72"`
	PhoneNumber     string          `json:"phone_number" validate:"required,max=30"`
	ProfileImageURL string          `json:"profile_image_url"`
	Address         *AddressRequest `json:"address"`
}

// PatchUserRequest is the body of PATCH /v1/users/{userId}. A nil field is
// left unchanged.
type PatchUserRequest struct {
	Username        *string `json:"username"`
	Email           *string `json:"email"`
	FirstName       *string `json:"first_name"`
	LastName        *string `json:"last_name"`
	PhoneNumber     *string `json:"phone_number"`
	ProfileImageURL *string `json:"profile_image_url"`
}

// ListUsersParams selects one page of users. Filter fields are optional.
type ListUsersParams struct {
	Page      int
	Size      int
	Username  string
	Email     string
	FirstName string
	LastName  string
	Status    string
}

// UserService encapsulates user use-cases.
type UserService struct {
	repo      UserRepository
	assembler *assembler.Assembler
	events    *Events
	images    ImageStore
	validate  *validator.Validate
	logger    *zap.Logger
}

// NewUserService wires a UserService. images may be nil when profile images
// are disabled.
func NewUserService(
	repo UserRepository,
	asm *assembler.Assembler,
	events *Events,
	images ImageStore,
	logger *zap.Logger,
) *UserService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &UserService{
		repo:      repo,
		assembler: asm,
		events:    events,
		images:    images,
		validate:  newValidator(),
		logger:    logger,
	}
}

// GetUser returns the user with its profile and addresses.
func (s *UserService) GetUser(ctx context.Context, rawID string) (assembler.UserResponse, error) {
	id, err := parseUserID(rawID)
	if err != nil {
		return assembler.UserResponse{}, err
	}

	user, err := s.load(ctx, id)
	if err != nil {
		return assembler.UserResponse{}, err
	}
	return s.assembler.User(user)
}

// ListUsers returns one page of users matching the filters in params.
func (s *UserService) ListUsers(ctx context.Context, params ListUsersParams) (assembler.UsersPageResponse, error) {
	if params.Page < 0 {
		return assembler.UsersPageResponse{}, apperrors.InvalidInput("Page index must not be negative")
	}
	if params.Size < 1 {
		return assembler.UsersPageResponse{}, apperrors.InvalidInput("Page size must be at least 1")
	}
	if params.Size > MaxPageSize {
		params.Size = MaxPageSize
	}
	if params.Page > math.MaxInt/params.Size {
		return assembler.UsersPageResponse{}, apperrors.InvalidInput("Page index %d is out of range", params.Page)
	}

	filter := types.UserFilter{
		Username:  params.Username,
		Email:     params.Email,
		FirstName: params.FirstName,
		LastName:  params.LastName,
	}
	if raw := strings.TrimSpace(params.Status); raw != "" {
		status, ok := types.ParseUserStatus(raw)
		if !ok {
			return assembler.UsersPageResponse{}, apperrors.InvalidInput("Invalid user status: %s", raw)
		}
		filter.Status = status
	}

	users, page, err := s.repo.List(ctx, filter, params.Page, params.Size)
	if err != nil {
		return assembler.UsersPageResponse{}, s.internal(err, "list users page %d size %d", params.Page, params.Size)
	}
	if page.TotalPages > 0 && page.Page >= page.TotalPages {
		return assembler.UsersPageResponse{}, apperrors.InvalidInput(
			"Page index %d is out of range, last page is %d", page.Page, page.TotalPages-1)
	}
	return s.assembler.UsersPage(users, page)
}

// CreateUser creates the user with its profile and, when given, a first
// address.
func (s *UserService) CreateUser(ctx context.Context, req *CreateUserRequest) (assembler.UserResponse, error) {
	if req == nil {
		return assembler.UserResponse{}, apperrors.InvalidInput("Request body must be included")
	}
	trimCreateUser(req)
	if err := validateStruct(s.validate, req); err != nil {
		return assembler.UserResponse{}, err
	}

	if len(req.Password) > maxPasswordBytes {
		return assembler.UserResponse{}, apperrors.InvalidInput("Password must be at most %d bytes", maxPasswordBytes)
	}
	hashed, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if errors.Is(err, bcrypt.ErrPasswordTooLong) {
		return assembler.UserResponse{}, apperrors.InvalidInput("Password must be at most %d bytes", maxPasswordBytes)
	}
	if err != nil {
		return assembler.UserResponse{}, s.internal(err, "hash password for user %s", req.Username)
	}

	nu := types.NewUser{
		Username:        req.Username,
		Email:           req.Email,
		PasswordHash:    string(hashed),
		FirstName:       req.FirstName,
		LastName:        req.LastName,
		PhoneNumber:     req.PhoneNumber,
		ProfileImageURL: req.ProfileImageURL,
	}
	if req.Address != nil {
		addr := req.Address.toRecord()
		nu.Address = &addr
	}

	id, err := s.repo.CreateWithProfile(ctx, nu)
	if err != nil {
		return assembler.UserResponse{}, s.classifyCreate(err, req)
	}
	s.logger.Info("created user", zap.String("user_id", id.String()), zap.String("username", req.Username))
	s.events.userEvent(ctx, EventUserCreated, id)

	user, err := s.load(ctx, id)
	if err != nil {
		return assembler.UserResponse{}, err
	}
	return s.assembler.User(user)
}

// UpdateUser applies the profile changes in req. Username and email are
// immutable; a request that changes nothing is not written.
func (s *UserService) UpdateUser(ctx context.Context, rawID string, req *PatchUserRequest) (assembler.UserResponse, error) {
	id, err := parseUserID(rawID)
	if err != nil {
		return assembler.UserResponse{}, err
	}
	if req == nil {
		return assembler.UserResponse{}, apperrors.InvalidInput("Request body must be included")
	}
	if nonEmpty(req.Username) || nonEmpty(req.Email) {
		return assembler.UserResponse{}, apperrors.InvalidInput("Cannot change username or email")
	}

	user, err := s.load(ctx, id)
	if err != nil {
		return assembler.UserResponse{}, err
	}
	if user.Profile == nil {
		return assembler.UserResponse{}, apperrors.NotFound("User profile not found for user id %s", id)
	}

	profile := *user.Profile
	changed, err := applyProfilePatch(req, &profile)
	if err != nil {
		return assembler.UserResponse{}, err
	}
	if !changed {
		s.logger.Info("no changes for user update", zap.String("user_id", id.String()))
		return s.assembler.User(user)
	}

	if err := s.repo.UpdateProfileFields(ctx, profile); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return assembler.UserResponse{}, userNotFound(id)
		}
		return assembler.UserResponse{}, s.internal(err, "update user %s", id)
	}
	s.events.userEvent(ctx, EventUserUpdated, id)

	user, err = s.load(ctx, id)
	if err != nil {
		return assembler.UserResponse{}, err
	}
	return s.assembler.User(user)
}

// DeleteUser removes the user and everything it owns.
func (s *UserService) DeleteUser(ctx context.Context, rawID string) error {
	id, err := parseUserID(rawID)
	if err != nil {
		return err
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return userNotFound(id)
		}
		return s.internal(err, "delete user %s", id)
	}

	if s.images != nil {
		if err := s.images.Delete(ctx, profileImageKey(id)); err != nil {
			s.logger.Debug("delete profile image", zap.Error(err), zap.String("user_id", id.String()))
		}
	}
	s.logger.Info("deleted user", zap.String("user_id", id.String()))
	s.events.userEvent(ctx, EventUserDeleted, id)
	return nil
}

func (s *UserService) load(ctx context.Context, id uuid.UUID) (types.User, error) {
	user, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			s.logger.Warn("user not found", zap.String("user_id", id.String()))
			return types.User{}, userNotFound(id)
		}
		return types.User{}, s.internal(err, "find user by id %s", id)
	}
	return user, nil
}

func (s *UserService) classifyCreate(err error, req *CreateUserRequest) error {
	var constraintErr *store.ConstraintError
	if errors.As(err, &constraintErr) && constraintErr.Code == store.CodeUniqueViolation {
		switch {
		case constraintErr.Constraint == store.ConstraintUsernameKey:
			return apperrors.Conflict("User with username %s already exists", req.Username)
		case strings.Contains(constraintErr.Constraint, "email"):
			return apperrors.Conflict("User with email %s already exists", req.Email)
		default:
			s.logger.Warn("unclassified unique violation creating user",
				zap.String("constraint", constraintErr.Constraint), zap.Error(err))
			return apperrors.Conflict("Unknown error creating user with username: %s, email %s", req.Username, req.Email)
		}
	}
	return s.internal(err, "create user %s", req.Username)
}

func (s *UserService) internal(err error, format string, args ...any) error {
	appErr := apperrors.Internal(err, format, args...)
	s.logger.Error(appErr.Message, zap.Error(err))
	return appErr
}

func userNotFound(id uuid.UUID) error {
	return apperrors.NotFound("User with id %s not found", id)
}

// applyProfilePatch copies the set fields of req onto profile. Names and
// phone number cannot be cleared; an empty image url clears the image.
func applyProfilePatch(req *PatchUserRequest, profile *types.UserProfile) (bool, error) {
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
	if err := set(req.FirstName, &profile.FirstName, "First name"); err != nil {
		return false, err
	}
	if err := set(req.LastName, &profile.LastName, "Last name"); err != nil {
		return false, err
	}
	if err := set(req.PhoneNumber, &profile.PhoneNumber, "Phone number"); err != nil {
		return false, err
	}
	if v := req.ProfileImageURL; v != nil && *v != profile.ProfileImageURL {
		profile.ProfileImageURL = *v
		changed = true
	}
	return changed, nil
}

func trimCreateUser(req *CreateUserRequest) {
	req.Username = strings.TrimSpace(req.Username)
	req.Email = strings.TrimSpace(req.Email)
	req.FirstName = strings.TrimSpace(req.FirstName)
	req.LastName = strings.TrimSpace(req.LastName)
	req.PhoneNumber = strings.TrimSpace(req.PhoneNumber)
	req.ProfileImageURL = strings.TrimSpace(req.ProfileImageURL)
	if req.Address != nil {
		req.Address.trim()
	}
}

func nonEmpty(s *string) bool {
	return s != nil && *s != ""
}
