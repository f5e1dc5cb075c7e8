package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/noah-isme/sms-go-api/internal/models"
)

const userColumns = `id, username, name, role, school_code, permissions, password_hash, created_at, updated_at`

// UserRepository manages persistence for user accounts. Usernames are unique
// per school, enforced by a unique index on (username, school_code).
type UserRepository struct {
	db *sqlx.DB
}

// NewUserRepository constructs a UserRepository.
func NewUserRepository(db *sqlx.DB) *UserRepository {
	return &UserRepository{db: db}
}

// FindByID fetches a user by ID.
func (r *UserRepository) FindByID(ctx context.Context, id string) (*models.User, error) {
	var user models.User
	query := fmt.Sprintf(`SELECT %s FROM users WHERE id = $1`, userColumns)
	if err := r.db.GetContext(ctx, &user, query, id); err != nil {
		return nil, err
	}
	return &user, nil
}

// FindByUsernameInSchool fetches the account for a username within one school.
func (r *UserRepository) FindByUsernameInSchool(ctx context.Context, username, schoolCode string) (*models.User, error) {
	var user models.User
	query := fmt.Sprintf(`SELECT %s FROM users WHERE username = $1 AND school_code = $2`, userColumns)
	if err := r.db.GetContext(ctx, &user, query, username, schoolCode); err != nil {
		return nil, err
	}
	return &user, nil
}

// FindSuperuserByUsername fetches a superuser account regardless of school.
// Superusers have exactly one account but may enter any school's context.
func (r *UserRepository) FindSuperuserByUsername(ctx context.Context, username string) (*models.User, error) {
	var user models.User
	query := fmt.Sprintf(`SELECT %s FROM users WHERE username = $1 AND role = $2`, userColumns)
	if err := r.db.GetContext(ctx, &user, query, username, models.RoleSuperuser); err != nil {
		return nil, err
	}
	return &user, nil
}

// ListBySchool returns users of one school, optionally filtered by role.
func (r *UserRepository) ListBySchool(ctx context.Context, schoolCode string, role models.UserRole) ([]models.User, error) {
	query := fmt.Sprintf(`SELECT %s FROM users WHERE school_code = $1`, userColumns)
	args := []interface{}{schoolCode}
	if role != "" {
		query += ` AND role = $2`
		args = append(args, role)
	}
	query += ` ORDER BY username`
	var users []models.User
	if err := r.db.SelectContext(ctx, &users, query, args...); err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	return users, nil
}

// ExistsByUsername checks whether a username is taken within a school.
func (r *UserRepository) ExistsByUsername(ctx context.Context, username, schoolCode string) (bool, error) {
	var exists int
	err := r.db.GetContext(ctx, &exists,
		`SELECT 1 FROM users WHERE username = $1 AND school_code = $2 LIMIT 1`, username, schoolCode)
	if err != nil {
		if err == sql.ErrNoRows {
			return false, nil
		}
		return false, fmt.Errorf("check username: %w", err)
	}
	return true, nil
}

// Create inserts a new user record.
func (r *UserRepository) Create(ctx context.Context, user *models.User) error {
	if user.ID == "" {
		user.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	user.CreatedAt = now
	user.UpdatedAt = now
	const query = `INSERT INTO users (id, username, name, role, school_code, permissions, password_hash, created_at, updated_at)
        VALUES (:id, :username, :name, :role, :school_code, :permissions, :password_hash, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, user); err != nil {
		return fmt.Errorf("create user: %w", err)
	}
	return nil
}

// UpdateRole changes a user's role and resets their permissions to the role
// defaults.
func (r *UserRepository) UpdateRole(ctx context.Context, id string, role models.UserRole, permissions []string) error {
	const query = `UPDATE users SET role = $2, permissions = $3, updated_at = $4 WHERE id = $1`
	res, err := r.db.ExecContext(ctx, query, id, role, permissionsParam(permissions), time.Now().UTC())
	if err != nil {
		return fmt.Errorf("update user role: %w", err)
	}
	return requireRowAffected(res)
}

// UpdatePermissions overrides a user's permission set.
func (r *UserRepository) UpdatePermissions(ctx context.Context, id string, permissions []string) error {
	const query = `UPDATE users SET permissions = $2, updated_at = $3 WHERE id = $1`
	res, err := r.db.ExecContext(ctx, query, id, permissionsParam(permissions), time.Now().UTC())
	if err != nil {
		return fmt.Errorf("update user permissions: %w", err)
	}
	return requireRowAffected(res)
}

// UpdatePassword stores a new password hash.
func (r *UserRepository) UpdatePassword(ctx context.Context, id, passwordHash string) error {
	const query = `UPDATE users SET password_hash = $2, updated_at = $3 WHERE id = $1`
	res, err := r.db.ExecContext(ctx, query, id, passwordHash, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("update password: %w", err)
	}
	return requireRowAffected(res)
}

// Delete removes a user record.
func (r *UserRepository) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM users WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete user: %w", err)
	}
	return requireRowAffected(res)
}

// CountBySchoolAndRole counts users of a given role within a school.
func (r *UserRepository) CountBySchoolAndRole(ctx context.Context, schoolCode string, role models.UserRole) (int, error) {
	var total int
	err := r.db.GetContext(ctx, &total,
		`SELECT COUNT(*) FROM users WHERE school_code = $1 AND role = $2`, schoolCode, role)
	if err != nil {
		return 0, fmt.Errorf("count users: %w", err)
	}
	return total, nil
}

func permissionsParam(permissions []string) interface{} {
	if permissions == nil {
		permissions = []string{}
	}
	return pq.StringArray(permissions)
}

func requireRowAffected(res sql.Result) error {
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}
