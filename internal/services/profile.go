package services

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/jjudge-oj/userservice/internal/apperrors"
	"github.com/jjudge-oj/userservice/internal/assembler"
	"github.com/jjudge-oj/userservice/internal/hateoas"
	"github.com/jjudge-oj/userservice/internal/storage"
	"github.com/jjudge-oj/userservice/internal/store"
	"github.com/jjudge-oj/userservice/types"
	"go.uber.org/zap"
)

// ProfileRepository defines persistence operations for user profiles.
type ProfileRepository interface {
	GetByUserID(ctx context.Context, userID uuid.UUID) (types.UserProfile, error)
	SetImageURL(ctx context.Context, userID uuid.UUID, url string) error
}

// ImageStore is satisfied by *storage.Storage.
type ImageStore interface {
	Put(ctx context.Context, key string, r io.Reader, size int64, contentType string) error
	Get(ctx context.Context, key string) (io.ReadCloser, error)
	Delete(ctx context.Context, key string) error
}

// ProfileImage is an uploaded image file.
type ProfileImage struct {
	Filename    string
	ContentType string
	Data        []byte
}

// ProfileService encapsulates profile use-cases.
type ProfileService struct {
	repo          ProfileRepository
	assembler     *assembler.Assembler
	linker        *hateoas.Linker
	events        *Events
	images        ImageStore
	maxImageBytes int64
	logger        *zap.Logger
}

// NewProfileService wires a ProfileService. images may be nil, in which case
// image operations report not found.
func NewProfileService(
	repo ProfileRepository,
	asm *assembler.Assembler,
	linker *hateoas.Linker,
	events *Events,
	images ImageStore,
	maxImageBytes int64,
	logger *zap.Logger,
) *ProfileService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ProfileService{
		repo:          repo,
		assembler:     asm,
		linker:        linker,
		events:        events,
		images:        images,
		maxImageBytes: maxImageBytes,
		logger:        logger,
	}
}

// GetProfile returns the profile of the user.
func (s *ProfileService) GetProfile(ctx context.Context, rawUserID string) (assembler.UserProfileResponse, error) {
	userID, err := parseUserID(rawUserID)
	if err != nil {
		return assembler.UserProfileResponse{}, err
	}
	profile, err := s.load(ctx, userID)
	if err != nil {
		return assembler.UserProfileResponse{}, err
	}
	return s.assembler.UserProfile(profile)
}

// UploadImage stores img as the user's profile image and points the
// profile at it.
func (s *ProfileService) UploadImage(ctx context.Context, rawUserID string, img ProfileImage) (assembler.UserProfileResponse, error) {
	userID, err := parseUserID(rawUserID)
	if err != nil {
		return assembler.UserProfileResponse{}, err
	}
	if s.images == nil {
		return assembler.UserProfileResponse{}, apperrors.NotFound("Profile images are not enabled")
	}
	if len(img.Data) == 0 {
		return assembler.UserProfileResponse{}, apperrors.InvalidInput("Image must be included")
	}
	if s.maxImageBytes > 0 && int64(len(img.Data)) > s.maxImageBytes {
		return assembler.UserProfileResponse{}, apperrors.InvalidInput("Image must be at most %d bytes", s.maxImageBytes)
	}
	contentType := http.DetectContentType(img.Data)
	if !strings.HasPrefix(contentType, "image/") {
		return assembler.UserProfileResponse{}, apperrors.InvalidInput("Image must be an image file, got %s", contentType)
	}

	// The profile must exist before anything is written to the bucket.
	if _, err := s.load(ctx, userID); err != nil {
		return assembler.UserProfileResponse{}, err
	}

	key := profileImageKey(userID)
	if err := s.images.Put(ctx, key, bytes.NewReader(img.Data), int64(len(img.Data)), contentType); err != nil {
		return assembler.UserProfileResponse{}, s.internal(err, "store profile image for user id %s", userID)
	}

	path, err := hateoas.Resolve(hateoas.RouteUserProfileImage, hateoas.Params{hateoas.ParamUserID: userID.String()})
	if err != nil {
		return assembler.UserProfileResponse{}, s.internal(err, "build profile image url for user id %s", userID)
	}
	if err := s.repo.SetImageURL(ctx, userID, s.linker.BaseURL()+path); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return assembler.UserProfileResponse{}, profileNotFound(userID)
		}
		return assembler.UserProfileResponse{}, s.internal(err, "set profile image url for user id %s", userID)
	}
	s.logger.Info("stored profile image",
		zap.String("user_id", userID.String()),
		zap.String("content_type", contentType),
		zap.Int("bytes", len(img.Data)),
	)
	s.events.userEvent(ctx, EventProfileImage, userID)

	profile, err := s.load(ctx, userID)
	if err != nil {
		return assembler.UserProfileResponse{}, err
	}
	return s.assembler.UserProfile(profile)
}

// OpenImage returns a reader over the stored profile image. The caller
// closes it.
func (s *ProfileService) OpenImage(ctx context.Context, rawUserID string) (io.ReadCloser, error) {
	userID, err := parseUserID(rawUserID)
	if err != nil {
		return nil, err
	}
	if s.images == nil {
		return nil, apperrors.NotFound("Profile images are not enabled")
	}

	profile, err := s.load(ctx, userID)
	if err != nil {
		return nil, err
	}
	if profile.ProfileImageURL == "" {
		return nil, apperrors.NotFound("No profile image for user id %s", userID)
	}

	rc, err := s.images.Get(ctx, profileImageKey(userID))
	if err != nil {
		if errors.Is(err, storage.ErrObjectNotFound) {
			return nil, apperrors.NotFound("No profile image for user id %s", userID)
		}
		return nil, s.internal(err, "open profile image for user id %s", userID)
	}
	return rc, nil
}

func (s *ProfileService) load(ctx context.Context, userID uuid.UUID) (types.UserProfile, error) {
	profile, err := s.repo.GetByUserID(ctx, userID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			s.logger.Warn("user profile not found", zap.String("user_id", userID.String()))
			return types.UserProfile{}, profileNotFound(userID)
		}
		return types.UserProfile{}, s.internal(err, "find user profile by id %s", userID)
	}
	return profile, nil
}

func (s *ProfileService) internal(err error, format string, args ...any) error {
	appErr := apperrors.Internal(err, format, args...)
	s.logger.Error(appErr.Message, zap.Error(err))
	return appErr
}

func profileNotFound(userID uuid.UUID) error {
	return apperrors.NotFound("User profile not found for user id %s", userID)
}

func profileImageKey(userID uuid.UUID) string {
	return "profiles/" + userID.String() + "/image"
}
