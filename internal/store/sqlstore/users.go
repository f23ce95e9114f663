package sqlstore

import (
	"context"
	"fmt"

	"vendorhub/backend/internal/domain"
	"vendorhub/backend/internal/store"
)

const userColumns = `id, email, password_hash, role, business_name, location, phone,
	is_active, email_verified, created_at, updated_at`

func (s *Store) CreateUser(ctx context.Context, user domain.User) (*domain.User, error) {
	user.CreatedAt = user.CreatedAt.UTC()
	user.UpdatedAt = user.UpdatedAt.UTC()
	_, err := s.db.NamedExecContext(ctx, `
		INSERT INTO users (`+userColumns+`)
		VALUES (:id, :email, :password_hash, :role, :business_name, :location, :phone,
			:is_active, :email_verified, :created_at, :updated_at)
	`, user)
	if err != nil {
		if s.isUniqueViolation(err) {
			return nil, store.ErrDuplicate
		}
		return nil, fmt.Errorf("insert user: %w", err)
	}
	return &user, nil
}

func (s *Store) GetUserByID(ctx context.Context, id string) (*domain.User, error) {
	var user domain.User
	err := s.db.GetContext(ctx, &user, s.db.Rebind(`SELECT `+userColumns+` FROM users WHERE id = ?`), id)
	if err != nil {
		return nil, notFound(err)
	}
	return &user, nil
}

func (s *Store) GetUserByEmail(ctx context.Context, email string) (*domain.User, error) {
	var user domain.User
	err := s.db.GetContext(ctx, &user, s.db.Rebind(`SELECT `+userColumns+` FROM users WHERE email = ?`), email)
	if err != nil {
		return nil, notFound(err)
	}
	return &user, nil
}

func (s *Store) UpdateUser(ctx context.Context, user domain.User) (*domain.User, error) {
	user.UpdatedAt = user.UpdatedAt.UTC()
	err := requireRow(s.db.NamedExecContext(ctx, `
		UPDATE users SET
			password_hash = :password_hash,
			business_name = :business_name,
			location = :location,
			phone = :phone,
			is_active = :is_active,
			email_verified = :email_verified,
			updated_at = :updated_at
		WHERE id = :id
	`, user))
	if err != nil {
		return nil, err
	}
	return s.GetUserByID(ctx, user.ID)
}
