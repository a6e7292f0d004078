package sqldb

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/gabrielmilitaosantos/acquisitions/internal/core/domain"
)

// Explicit projections. password_hash is only ever read by FindCredentials.
const (
	userColumns    = "id, name, email, role, created_at, updated_at"
	summaryColumns = "id, name, email, role"
)

// UserRepository implements ports.UserRepository and
// ports.CredentialRepository on top of sqlx.
type UserRepository struct {
	db  *sqlx.DB
	now func() time.Time
}

func NewUserRepository(db *sqlx.DB) *UserRepository {
	return &UserRepository{
		db:  db,
		now: func() time.Time { return time.Now().UTC() },
	}
}

func (r *UserRepository) ListAll(ctx context.Context) ([]domain.User, error) {
	users := []domain.User{}
	query := `SELECT ` + userColumns + ` FROM users ORDER BY id`
	if err := r.db.SelectContext(ctx, &users, query); err != nil {
		return nil, fmt.Errorf("select users: %w", err)
	}
	return users, nil
}

func (r *UserRepository) GetByID(ctx context.Context, id int64) (*domain.User, error) {
	var u domain.User
	query := r.db.Rebind(`SELECT ` + userColumns + ` FROM users WHERE id = ?`)
	if err := r.db.GetContext(ctx, &u, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrUserNotFound
		}
		return nil, fmt.Errorf("select user: %w", err)
	}
	return &u, nil
}

// Update runs the existence check, the email pre-check and the write in one
// transaction. The UNIQUE constraint still has the final word on email
// collisions that race past the pre-check.
func (r *UserRepository) Update(ctx context.Context, id int64, changes domain.UserChanges) (*domain.User, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	var current int64
	if err := tx.GetContext(ctx, &current, r.db.Rebind(`SELECT id FROM users WHERE id = ?`), id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrUserNotFound
		}
		return nil, fmt.Errorf("select user: %w", err)
	}

	if changes.Email != nil {
		var other int64
		err := tx.GetContext(ctx, &other, r.db.Rebind(`SELECT id FROM users WHERE email = ? AND id <> ?`), *changes.Email, id)
		switch {
		case err == nil:
			return nil, domain.ErrEmailTaken
		case !errors.Is(err, sql.ErrNoRows):
			return nil, fmt.Errorf("check email: %w", err)
		}
	}

	sets := make([]string, 0, 4)
	args := make([]any, 0, 5)
	if changes.Name != nil {
		sets = append(sets, "name = ?")
		args = append(args, *changes.Name)
	}
	if changes.Email != nil {
		sets = append(sets, "email = ?")
		args = append(args, *changes.Email)
	}
	if changes.Role != nil {
		sets = append(sets, "role = ?")
		args = append(args, string(*changes.Role))
	}
	sets = append(sets, "updated_at = ?")
	args = append(args, r.now(), id)

	query := r.db.Rebind(`UPDATE users SET ` + strings.Join(sets, ", ") + ` WHERE id = ?`)
	if _, err := tx.ExecContext(ctx, query, args...); err != nil {
		if isUniqueViolation(err) {
			return nil, domain.ErrEmailTaken
		}
		return nil, fmt.Errorf("update user: %w", err)
	}

	var u domain.User
	if err := tx.GetContext(ctx, &u, r.db.Rebind(`SELECT `+userColumns+` FROM users WHERE id = ?`), id); err != nil {
		return nil, fmt.Errorf("reload user: %w", err)
	}

	if err := tx.Commit(); err != nil {
		if isUniqueViolation(err) {
			return nil, domain.ErrEmailTaken
		}
		return nil, fmt.Errorf("commit: %w", err)
	}
	return &u, nil
}

func (r *UserRepository) Delete(ctx context.Context, id int64) (*domain.UserSummary, error) {
	var s domain.UserSummary
	query := r.db.Rebind(`DELETE FROM users WHERE id = ? RETURNING ` + summaryColumns)
	if err := r.db.GetContext(ctx, &s, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrUserNotFound
		}
		return nil, fmt.Errorf("delete user: %w", err)
	}
	return &s, nil
}

func (r *UserRepository) CountAdmins(ctx context.Context) (int, error) {
	var n int
	query := r.db.Rebind(`SELECT COUNT(*) FROM users WHERE role = ?`)
	if err := r.db.GetContext(ctx, &n, query, string(domain.RoleAdmin)); err != nil {
		return 0, fmt.Errorf("count admins: %w", err)
	}
	return n, nil
}

// Create inserts a new user with its password hash.
func (r *UserRepository) Create(ctx context.Context, creds *domain.Credentials) (*domain.User, error) {
	now := r.now()
	createdAt, updatedAt := creds.CreatedAt, creds.UpdatedAt
	if createdAt.IsZero() {
		createdAt = now
	}
	if updatedAt.IsZero() {
		updatedAt = now
	}
	role := creds.Role
	if role == "" {
		role = domain.RoleUser
	}

	var id int64
	query := r.db.Rebind(`INSERT INTO users (name, email, password_hash, role, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?) RETURNING id`)
	err := r.db.GetContext(ctx, &id, query, creds.Name, creds.Email, creds.PasswordHash, string(role), createdAt, updatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, domain.ErrEmailTaken
		}
		return nil, fmt.Errorf("insert user: %w", err)
	}

	return r.GetByID(ctx, id)
}

func (r *UserRepository) FindCredentials(ctx context.Context, email string) (*domain.Credentials, error) {
	var c domain.Credentials
	query := r.db.Rebind(`SELECT ` + userColumns + `, password_hash FROM users WHERE email = ?`)
	if err := r.db.GetContext(ctx, &c, query, email); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrUserNotFound
		}
		return nil, fmt.Errorf("select credentials: %w", err)
	}
	return &c, nil
}
