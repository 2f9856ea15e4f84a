package repository

import (
	"context"

	"marketplace-service/internal/entity"
)

type UserRepository struct {
	db DBTX
}

func NewUserRepository(db DBTX) *UserRepository {
	return &UserRepository{db}
}

func (r *UserRepository) ListUsers(ctx context.Context) ([]*entity.User, error) {
	query := `SELECT id, name, email, created_at FROM users ORDER BY created_at DESC, id DESC`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, translate(err, "list users")
	}
	defer rows.Close()

	users := []*entity.User{}
	for rows.Next() {
		var user entity.User
		if err := rows.Scan(&user.ID, &user.Name, &user.Email, &user.CreatedAt); err != nil {
			return nil, translate(err, "scan user")
		}
		users = append(users, &user)
	}
	return users, translate(rows.Err(), "list users")
}

// GetUserByID returns ErrNotFound when no user has the id.
func (r *UserRepository) GetUserByID(ctx context.Context, id int64) (*entity.User, error) {
	user := &entity.User{}
	query := `SELECT id, name, email, created_at FROM users WHERE id = ?`
	err := r.db.QueryRowContext(ctx, query, id).Scan(&user.ID, &user.Name, &user.Email, &user.CreatedAt)
	if err != nil {
		return nil, translate(err, "get user")
	}
	return user, nil
}

func (r *UserRepository) Exists(ctx context.Context, id int64) (bool, error) {
	return exists(ctx, r.db, `SELECT id FROM users WHERE id = ?`, id)
}

// EmailTaken reports whether a user other than excludeID owns email. Pass 0
// to check against every user.
func (r *UserRepository) EmailTaken(ctx context.Context, email string, excludeID int64) (bool, error) {
	return exists(ctx, r.db, `SELECT id FROM users WHERE email = ? AND id != ?`, email, excludeID)
}

func (r *UserRepository) CreateUser(ctx context.Context, name, email string) (int64, error) {
	res, err := r.db.ExecContext(ctx, `INSERT INTO users (name, email) VALUES (?, ?)`, name, email)
	if err != nil {
		return 0, translate(err, "insert user")
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, translate(err, "insert user")
	}
	return id, nil
}

// UpdateUser keeps the current value of every nil field.
func (r *UserRepository) UpdateUser(ctx context.Context, id int64, name, email *string) error {
	query := `UPDATE users SET name = COALESCE(?, name), email = COALESCE(?, email) WHERE id = ?`
	_, err := r.db.ExecContext(ctx, query, name, email, id)
	return translate(err, "update user")
}

func (r *UserRepository) DeleteUser(ctx context.Context, id int64) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM users WHERE id = ?`, id)
	return translate(err, "delete user")
}
