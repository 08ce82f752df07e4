package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"marketdesk/internal/domain/user"
	"marketdesk/internal/wire"
)

// UserRepository persists console users for the development server.
type UserRepository struct {
	db *DB
}

// NewUserRepository creates a new UserRepository
func NewUserRepository(db *DB) *UserRepository {
	return &UserRepository{db: db}
}

// ListUsersOptions provides filtering and paging for listing users.
type ListUsersOptions struct {
	Role   string
	Status string
	Search string
	Page   int
	Limit  int
}

const userColumns = `id, email, role, status, first_name, last_name, phone, created_at`

// List returns one page of users plus the total count of matches.
func (r *UserRepository) List(ctx context.Context, opts ListUsersOptions) ([]user.User, int, error) {
	where := []string{"1=1"}
	args := []any{}
	if opts.Role != "" {
		where = append(where, "role = ?")
		args = append(args, opts.Role)
	}
	if opts.Status != "" {
		where = append(where, "status = ?")
		args = append(args, opts.Status)
	}
	if opts.Search != "" {
		where = append(where, "(id LIKE ? OR email LIKE ? OR first_name LIKE ? OR last_name LIKE ? OR phone LIKE ?)")
		pattern := "%" + opts.Search + "%"
		args = append(args, pattern, pattern, pattern, pattern, pattern)
	}
	clause := strings.Join(where, " AND ")

	var total int
	if err := r.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM users WHERE "+clause, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count users: %w", err)
	}

	query := "SELECT " + userColumns + " FROM users WHERE " + clause + " ORDER BY created_at DESC, id"
	if opts.Limit > 0 {
		query += " LIMIT ? OFFSET ?"
		offset := 0
		if opts.Page > 1 {
			offset = (opts.Page - 1) * opts.Limit
		}
		args = append(args, opts.Limit, offset)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list users: %w", err)
	}
	defer rows.Close()

	users := []user.User{}
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, 0, err
		}
		users = append(users, u)
	}
	return users, total, rows.Err()
}

// Get returns one user by id.
func (r *UserRepository) Get(ctx context.Context, id string) (user.User, error) {
	row := r.db.QueryRowContext(ctx, "SELECT "+userColumns+" FROM users WHERE id = ?", id)
	u, err := scanUser(row)
	if errors.Is(err, sql.ErrNoRows) {
		return user.User{}, ErrNotFound
	}
	return u, err
}

// Create provisions a new user, assigning its identifier.
func (r *UserRepository) Create(ctx context.Context, req user.CreateRequest) (user.User, error) {
	now := time.Now().UTC()
	u := user.User{
		ID:        uuid.NewString(),
		Email:     req.Email,
		Role:      req.Role,
		Status:    user.StatusActive,
		Info:      req.Info,
		Contact:   req.Contact,
		CreatedAt: wire.NewTime(now),
	}

	_, err := r.db.ExecContext(ctx, `
		INSERT INTO users (id, email, role, status, first_name, last_name, phone, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		u.ID, u.Email, string(u.Role), string(u.Status), u.Info.FirstName, u.Info.LastName, u.Contact.Phone, now,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return user.User{}, fmt.Errorf("email already registered: %w", err)
		}
		return user.User{}, fmt.Errorf("failed to create user: %w", err)
	}
	return u, nil
}

// Update applies a partial update and returns the stored row.
func (r *UserRepository) Update(ctx context.Context, id string, req user.UpdateRequest) (user.User, error) {
	u, err := r.Get(ctx, id)
	if err != nil {
		return user.User{}, err
	}
	if req.Email != nil {
		u.Email = *req.Email
	}
	if req.Role != nil {
		u.Role = *req.Role
	}
	if req.Status != nil {
		u.Status = *req.Status
	}
	if req.Info != nil {
		u.Info = *req.Info
	}
	if req.Contact != nil {
		u.Contact = *req.Contact
	}

	_, err = r.db.ExecContext(ctx, `
		UPDATE users SET email = ?, role = ?, status = ?, first_name = ?, last_name = ?, phone = ?
		WHERE id = ?`,
		u.Email, string(u.Role), string(u.Status), u.Info.FirstName, u.Info.LastName, u.Contact.Phone, u.ID,
	)
	if err != nil {
		return user.User{}, fmt.Errorf("failed to update user: %w", err)
	}
	return u, nil
}

// PatchStatus updates only the account status.
func (r *UserRepository) PatchStatus(ctx context.Context, id string, status user.Status) (user.User, error) {
	s := status
	return r.Update(ctx, id, user.UpdateRequest{Status: &s})
}

// Delete removes a user.
func (r *UserRepository) Delete(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, "DELETE FROM users WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("failed to delete user: %w", err)
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

func scanUser(row rowScanner) (user.User, error) {
	var u user.User
	var role, status string
	var createdAt time.Time
	err := row.Scan(&u.ID, &u.Email, &role, &status,
		&u.Info.FirstName, &u.Info.LastName, &u.Contact.Phone, &createdAt)
	if err != nil {
		return user.User{}, err
	}
	u.Role = user.Role(role)
	u.Status = user.Status(status)
	u.CreatedAt = wire.NewTime(createdAt)
	return u, nil
}
