package store

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/google/uuid"
	"github.com/jjudge-oj/userservice/types"
	"github.com/lib/pq"
)

const addressColumns = `
		id, user_id, address_type, address_line_1, address_line_2,
		city, state, zip_code, country, created_at, updated_at`

// AddressRepository handles persistence for user addresses.
type AddressRepository struct {
	db *sql.DB
}

// NewAddressRepository constructs a repository backed by db.
func NewAddressRepository(db *sql.DB) *AddressRepository {
	return &AddressRepository{db: db}
}

// ListByUserID returns an empty slice when the user has no addresses.
func (r *AddressRepository) ListByUserID(ctx context.Context, userID uuid.UUID) ([]types.UserAddress, error) {
	byUser, err := addressesByUserIDs(ctx, r.db, []uuid.UUID{userID})
	if err != nil {
		return nil, err
	}
	if addrs := byUser[userID]; addrs != nil {
		return addrs, nil
	}
	return []types.UserAddress{}, nil
}

// GetByID returns the address with id or ErrNotFound.
func (r *AddressRepository) GetByID(ctx context.Context, id uuid.UUID) (types.UserAddress, error) {
	query := `
		SELECT` + addressColumns + `
		FROM user_addresses
		WHERE id = $1`
	addr, err := scanAddress(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return types.UserAddress{}, ErrNotFound
		}
		return types.UserAddress{}, err
	}
	return addr, nil
}

// Create inserts addr for addr.UserID. A missing user surfaces as a
// ConstraintError on user_addresses_user_id_fkey.
func (r *AddressRepository) Create(ctx context.Context, addr types.UserAddress) (types.UserAddress, error) {
	if strings.TrimSpace(addr.AddressType) == "" {
		addr.AddressType = types.DefaultAddressType
	}

	const query = `
		INSERT INTO user_addresses (user_id, address_type, address_line_1, address_line_2, city, state, zip_code, country, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, NOW(), NOW())
		RETURNING id, created_at, updated_at`
	if err := r.db.QueryRowContext(
		ctx,
		query,
		addr.UserID,
		addr.AddressType,
		addr.AddressLine1,
		nullString(addr.AddressLine2),
		addr.City,
		addr.State,
		addr.ZipCode,
		addr.Country,
	).Scan(&addr.ID, &addr.CreatedAt, &addr.UpdatedAt); err != nil {
		return types.UserAddress{}, translateError(err)
	}
	return addr, nil
}

// Update writes every mutable column of addr, scoped to its owner.
func (r *AddressRepository) Update(ctx context.Context, addr types.UserAddress) (types.UserAddress, error) {
	const query = `
		UPDATE user_addresses
		SET address_type = $1,
			address_line_1 = $2,
			address_line_2 = $3,
			city = $4,
			state = $5,
			zip_code = $6,
			country = $7,
			updated_at = NOW()
		WHERE id = $8 AND user_id = $9
		RETURNING updated_at`
	err := r.db.QueryRowContext(
		ctx,
		query,
		addr.AddressType,
		addr.AddressLine1,
		nullString(addr.AddressLine2),
		addr.City,
		addr.State,
		addr.ZipCode,
		addr.Country,
		addr.ID,
		addr.UserID,
	).Scan(&addr.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return types.UserAddress{}, ErrNotFound
		}
		return types.UserAddress{}, translateError(err)
	}
	return addr, nil
}

// Delete removes the address when it belongs to userID and reports how many
// rows went away.
func (r *AddressRepository) Delete(ctx context.Context, userID, addressID uuid.UUID) (int64, error) {
	const query = `DELETE FROM user_addresses WHERE id = $1 AND user_id = $2`
	result, err := r.db.ExecContext(ctx, query, addressID, userID)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

func addressesByUserIDs(ctx context.Context, db *sql.DB, userIDs []uuid.UUID) (map[uuid.UUID][]types.UserAddress, error) {
	ids := make([]string, 0, len(userIDs))
	for _, id := range userIDs {
		ids = append(ids, id.String())
	}

	query := `
		SELECT` + addressColumns + `
		FROM user_addresses
		WHERE user_id = ANY($1::uuid[])
		ORDER BY created_at, id`
	rows, err := db.QueryContext(ctx, query, pq.StringArray(ids))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	byUser := make(map[uuid.UUID][]types.UserAddress, len(userIDs))
	for rows.Next() {
		addr, err := scanAddress(rows)
		if err != nil {
			return nil, err
		}
		byUser[addr.UserID] = append(byUser[addr.UserID], addr)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return byUser, nil
}

func scanAddress(row rowScanner) (types.UserAddress, error) {
	var (
		addr  types.UserAddress
		line2 sql.NullString
	)
	err := row.Scan(
		&addr.ID,
		&addr.UserID,
		&addr.AddressType,
		&addr.AddressLine1,
		&line2,
		&addr.City,
		&addr.State,
		&addr.ZipCode,
		&addr.Country,
		&addr.CreatedAt,
		&addr.UpdatedAt,
	)
	if err != nil {
		return types.UserAddress{}, err
	}
	addr.AddressLine2 = line2.String
	return addr, nil
}
