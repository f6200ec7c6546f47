package store

import (
	"context"
	"database/sql"
	"errors"

	"github.com/google/uuid"
	"github.com/jjudge-oj/userservice/types"
)

// ProfileRepository handles persistence for user profiles.
type ProfileRepository struct {
	db *sql.DB
}

// NewProfileRepository constructs a repository backed by db.
func NewProfileRepository(db *sql.DB) *ProfileRepository {
	return &ProfileRepository{db: db}
}

// GetByUserID returns the profile of userID or ErrNotFound.
func (r *ProfileRepository) GetByUserID(ctx context.Context, userID uuid.UUID) (types.UserProfile, error) {
	const query = `
		SELECT user_id, first_name, last_name, phone_number, profile_image_url, created_at, updated_at
		FROM user_profiles
		WHERE user_id = $1`
	var (
		profile  types.UserProfile
		imageURL sql.NullString
	)
	err := r.db.QueryRowContext(ctx, query, userID).Scan(
		&profile.UserID,
		&profile.FirstName,
		&profile.LastName,
		&profile.PhoneNumber,
		&imageURL,
		&profile.CreatedAt,
		&profile.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return types.UserProfile{}, ErrNotFound
		}
		return types.UserProfile{}, err
	}
	profile.ProfileImageURL = imageURL.String
	return profile, nil
}

// SetImageURL points the profile at a new image. An empty url clears it.
func (r *ProfileRepository) SetImageURL(ctx context.Context, userID uuid.UUID, url string) error {
	const query = `
		UPDATE user_profiles
		SET profile_image_url = $1,
			updated_at = NOW()
		WHERE user_id = $2`
	result, err := r.db.ExecContext(ctx, query, nullString(url), userID)
	if err != nil {
		return err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}
