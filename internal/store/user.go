package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jjudge-oj/userservice/types"
)

const userColumns = `
		u.id, u.username, u.email, u.password_hash, u.status, u.created_at, u.updated_at,
		p.user_id, p.first_name, p.last_name, p.phone_number, p.profile_image_url,
		p.created_at, p.updated_at`

// UserRepository handles persistence for users and their profiles.
type UserRepository struct {
	db *sql.DB
}

// NewUserRepository constructs a repository backed by db.
func NewUserRepository(db *sql.DB) *UserRepository {
	return &UserRepository{db: db}
}

// GetByID loads the user with its profile and addresses.
func (r *UserRepository) GetByID(ctx context.Context, id uuid.UUID) (types.User, error) {
	query := `
		SELECT` + userColumns + `
		FROM users u
		LEFT JOIN user_profiles p ON p.user_id = u.id
		WHERE u.id = $1`
	user, err := scanUser(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return types.User{}, ErrNotFound
		}
		return types.User{}, err
	}

	byUser, err := addressesByUserIDs(ctx, r.db, []uuid.UUID{id})
	if err != nil {
		return types.User{}, err
	}
	user.Addresses = byUser[id]
	return user, nil
}

// List returns one page of users matching filter, ordered by creation time.
func (r *UserRepository) List(ctx context.Context, filter types.UserFilter, page, size int) ([]types.User, types.Page, error) {
	where, args := userFilterClause(filter)

	countQuery := `
		SELECT COUNT(*)
		FROM users u
		LEFT JOIN user_profiles p ON p.user_id = u.id` + where
	var total int64
	if err := r.db.QueryRowContext(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, types.Page{}, err
	}

	pageInfo := types.NewPage(page, size, total)
	if total == 0 {
		return []types.User{}, pageInfo, nil
	}

	query := fmt.Sprintf(`
		SELECT`+userColumns+`
		FROM users u
		LEFT JOIN user_profiles p ON p.user_id = u.id%s
		ORDER BY u.created_at, u.id
		LIMIT $%d OFFSET $%d`, where, len(args)+1, len(args)+2)
	rows, err := r.db.QueryContext(ctx, query, append(args, size, pageInfo.Offset())...)
	if err != nil {
		return nil, types.Page{}, err
	}
	defer rows.Close()

	users := make([]types.User, 0, size)
	ids := make([]uuid.UUID, 0, size)
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, types.Page{}, err
		}
		users = append(users, user)
		ids = append(ids, user.ID)
	}
	if err := rows.Err(); err != nil {
		return nil, types.Page{}, err
	}

	if len(ids) > 0 {
		byUser, err := addressesByUserIDs(ctx, r.db, ids)
		if err != nil {
			return nil, types.Page{}, err
		}
		for i := range users {
			users[i].Addresses = byUser[users[i].ID]
		}
	}
	return users, pageInfo, nil
}

// CreateWithProfile inserts the user, its profile and the optional first
// address in a single statement and returns the new user id.
func (r *UserRepository) CreateWithProfile(ctx context.Context, nu types.NewUser) (uuid.UUID, error) {
	args := []any{
		nu.Username,
		nu.Email,
		nu.PasswordHash,
		nu.FirstName,
		nu.LastName,
		nu.PhoneNumber,
		nullString(nu.ProfileImageURL),
	}
	query := `
		WITH new_user AS (
			INSERT INTO users (username, email, password_hash, status, created_at, updated_at)
			VALUES ($1, $2, $3, 'ACTIVE', NOW(), NOW())
			RETURNING id
		), new_profile AS (
			INSERT INTO user_profiles (user_id, first_name, last_name, phone_number, profile_image_url, created_at, updated_at)
			SELECT id, $4, $5, $6, $7, NOW(), NOW()
			FROM new_user
			RETURNING user_id
		)`
	if addr := nu.Address; addr != nil {
		addressType := strings.TrimSpace(addr.AddressType)
		if addressType == "" {
			addressType = types.DefaultAddressType
		}
		query += `, new_address AS (
			INSERT INTO user_addresses (user_id, address_type, address_line_1, address_line_2, city, state, zip_code, country, created_at, updated_at)
			SELECT user_id, $8, $9, $10, $11, $12, $13, $14, NOW(), NOW()
			FROM new_profile
			RETURNING user_id
		)`
		args = append(args,
			addressType,
			addr.AddressLine1,
			nullString(addr.AddressLine2),
			addr.City,
			addr.State,
			addr.ZipCode,
			addr.Country,
		)
	}
	query += `
		SELECT id FROM new_user`

	var id uuid.UUID
	if err := r.db.QueryRowContext(ctx, query, args...).Scan(&id); err != nil {
		return uuid.Nil, translateError(err)
	}
	return id, nil
}

// UpdateProfileFields writes the mutable profile columns and bumps the
// user's updated_at.
func (r *UserRepository) UpdateProfileFields(ctx context.Context, profile types.UserProfile) error {
	const query = `
		WITH updated AS (
			UPDATE user_profiles
			SET first_name = $1,
				last_name = $2,
				phone_number = $3,
				profile_image_url = $4,
				updated_at = NOW()
			WHERE user_id = $5
			RETURNING user_id
		)
		UPDATE users
		SET updated_at = NOW()
		WHERE id IN (SELECT user_id FROM updated)`
	result, err := r.db.ExecContext(
		ctx,
		query,
		profile.FirstName,
		profile.LastName,
		profile.PhoneNumber,
		nullString(profile.ProfileImageURL),
		profile.UserID,
	)
	if err != nil {
		return translateError(err)
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

// Delete removes the user; profile and addresses cascade.
func (r *UserRepository) Delete(ctx context.Context, id uuid.UUID) error {
	const query = `DELETE FROM users WHERE id = $1`
	result, err := r.db.ExecContext(ctx, query, id)
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

func userFilterClause(filter types.UserFilter) (string, []any) {
	var (
		conds []string
		args  []any
	)
	contains := func(column, value string) {
		value = strings.TrimSpace(value)
		if value == "" {
			return
		}
		args = append(args, value)
		conds = append(conds, fmt.Sprintf("%s ILIKE '%%' || $%d || '%%'", column, len(args)))
	}
	contains("u.username", filter.Username)
	contains("u.email", filter.Email)
	contains("p.first_name", filter.FirstName)
	contains("p.last_name", filter.LastName)
	if filter.Status != "" {
		args = append(args, string(filter.Status))
		conds = append(conds, fmt.Sprintf("u.status = $%d", len(args)))
	}

	if len(conds) == 0 {
		return "", nil
	}
	return "\n\t\tWHERE " + strings.Join(conds, " AND "), args
}

func scanUser(row rowScanner) (types.User, error) {
	var (
		user          types.User
		status        string
		profileUserID uuid.NullUUID
		firstName     sql.NullString
		lastName      sql.NullString
		phone         sql.NullString
		imageURL      sql.NullString
		pCreatedAt    sql.NullTime
		pUpdatedAt    sql.NullTime
	)
	err := row.Scan(
		&user.ID,
		&user.Username,
		&user.Email,
		&user.PasswordHash,
		&status,
		&user.CreatedAt,
		&user.UpdatedAt,
		&profileUserID,
		&firstName,
		&lastName,
		&phone,
		&imageURL,
		&pCreatedAt,
		&pUpdatedAt,
	)
	if err != nil {
		return types.User{}, err
	}
	user.Status = types.UserStatus(status)
	if profileUserID.Valid {
		user.Profile = &types.UserProfile{
			UserID:          profileUserID.UUID,
			FirstName:       firstName.String,
			LastName:        lastName.String,
			PhoneNumber:     phone.String,
			ProfileImageURL: imageURL.String,
			CreatedAt:       timeOrZero(pCreatedAt),
			UpdatedAt:       timeOrZero(pUpdatedAt),
		}
	}
	return user, nil
}
