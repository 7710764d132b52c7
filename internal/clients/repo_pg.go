package clients

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"
)

// PGRepo implements Repo using Postgres.
type PGRepo struct {
	DB *sql.DB
}

// Create inserts a new client.
func (r *PGRepo) Create(ctx context.Context, client Client) error {
	const query = `
INSERT INTO clients (id, member_number, full_name, nik, address, phone, occupation, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $8)`
	_, err := r.DB.ExecContext(
		ctx,
		query,
		client.ID,
		client.MemberNumber,
		client.FullName,
		nullableString(client.NIK),
		nullableString(client.Address),
		nullableString(client.Phone),
		nullableString(client.Occupation),
		client.CreatedAt,
	)
	if err != nil && strings.Contains(err.Error(), "duplicate key") {
		return ErrDuplicate
	}
	return err
}

// GetByID returns a client by ID.
func (r *PGRepo) GetByID(ctx context.Context, clientID string) (Client, error) {
	const query = `
SELECT id, member_number, full_name, nik, address, phone, occupation, created_at, updated_at
FROM clients
WHERE id = $1
LIMIT 1`
	return r.scanOne(r.DB.QueryRowContext(ctx, query, clientID))
}

// GetByMemberNumber returns a client by member number.
func (r *PGRepo) GetByMemberNumber(ctx context.Context, memberNumber string) (Client, error) {
	const query = `
SELECT id, member_number, full_name, nik, address, phone, occupation, created_at, updated_at
FROM clients
WHERE member_number = $1
LIMIT 1`
	return r.scanOne(r.DB.QueryRowContext(ctx, query, memberNumber))
}

// List returns clients newest-first.
func (r *PGRepo) List(ctx context.Context, limit, offset int) ([]Client, error) {
	if limit <= 0 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}
	const query = `
SELECT id, member_number, full_name, nik, address, phone, occupation, created_at, updated_at
FROM clients
ORDER BY created_at DESC
LIMIT $1 OFFSET $2`
	rows, err := r.DB.QueryContext(ctx, query, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]Client, 0)
	for rows.Next() {
		client, err := r.scanOne(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, client)
	}
	return out, rows.Err()
}

// Update rewrites the mutable client fields.
func (r *PGRepo) Update(ctx context.Context, client Client) error {
	const query = `
UPDATE clients
SET member_number = $2, full_name = $3, nik = $4, address = $5, phone = $6, occupation = $7, updated_at = now()
WHERE id = $1`
	res, err := r.DB.ExecContext(
		ctx,
		query,
		client.ID,
		client.MemberNumber,
		client.FullName,
		nullableString(client.NIK),
		nullableString(client.Address),
		nullableString(client.Phone),
		nullableString(client.Occupation),
	)
	if err != nil {
		if strings.Contains(err.Error(), "duplicate key") {
			return ErrDuplicate
		}
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func (r *PGRepo) scanOne(row rowScanner) (Client, error) {
	var client Client
	var nik, address, phone, occupation sql.NullString
	var updatedAt sql.NullTime
	err := row.Scan(
		&client.ID,
		&client.MemberNumber,
		&client.FullName,
		&nik,
		&address,
		&phone,
		&occupation,
		&client.CreatedAt,
		&updatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Client{}, ErrNotFound
		}
		return Client{}, err
	}
	client.NIK = nik.String
	client.Address = address.String
	client.Phone = phone.String
	client.Occupation = occupation.String
	if updatedAt.Valid {
		client.UpdatedAt = updatedAt.Time
	} else {
		client.UpdatedAt = time.Now().UTC()
	}
	return client, nil
}

func nullableString(value string) any {
	if value == "" {
		return nil
	}
	return value
}
