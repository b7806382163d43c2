package repositories

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	intconfig "travelcheckout/internal/config"
	intdb "travelcheckout/internal/db"
	"travelcheckout/internal/domain"
	"travelcheckout/internal/domain/models"
)

type UserRepository struct {
	DB *sql.DB
}

func (r UserRepository) db() *sql.DB {
	if r.DB != nil {
		return r.DB
	}
	return intconfig.DB
}

const userColumns = `id, COALESCE(name,''), COALESCE(surname,''), COALESCE(username,''), COALESCE(email,''),
		       COALESCE(phone,''), COALESCE(address,''), COALESCE(password_hash,''), COALESCE(role,''), COALESCE(status,'')`

func scanUser(row *sql.Row) (models.User, error) {
	var u models.User
	err := row.Scan(&u.ID, &u.Name, &u.Surname, &u.Username, &u.Email,
		&u.Phone, &u.Address, &u.PasswordHash, &u.Role, &u.Status)
	if errors.Is(err, sql.ErrNoRows) {
		return models.User{}, domain.NotFoundError{Resource: "user", Err: err}
	}
	if err != nil {
		return models.User{}, domain.InternalError{Msg: "query user", Err: err}
	}
	return u, nil
}

// FindByLogin looks a user up by email or username.
func (r UserRepository) FindByLogin(ctx context.Context, login string) (models.User, error) {
	login = strings.TrimSpace(login)
	if login == "" {
		return models.User{}, domain.ValidationError{Field: "email", Msg: "email or username is required"}
	}
	db := r.db()
	if db == nil {
		return models.User{}, domain.InternalError{Msg: "database not connected"}
	}
	return scanUser(db.QueryRowContext(ctx, `SELECT `+userColumns+`
		FROM users
		WHERE email = ? OR username = ?
		LIMIT 1`, login, login))
}

func (r UserRepository) GetByID(ctx context.Context, id int64) (models.User, error) {
	if id <= 0 {
		return models.User{}, domain.ValidationError{Field: "user_id", Msg: "invalid id"}
	}
	db := r.db()
	if db == nil {
		return models.User{}, domain.InternalError{Msg: "database not connected"}
	}
	return scanUser(db.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE id=? LIMIT 1`, id))
}

// Exists reports whether email or username is already taken.
func (r UserRepository) Exists(ctx context.Context, email, username string) (bool, error) {
	db := r.db()
	if db == nil {
		return false, domain.InternalError{Msg: "database not connected"}
	}
	var n int
	if err := db.QueryRowContext(ctx, `
		SELECT COUNT(*)
		FROM users
		WHERE email = ? OR username = ?`, email, username).Scan(&n); err != nil {
		return false, domain.InternalError{Msg: "check user", Err: err}
	}
	return n > 0, nil
}

// Create inserts an active user with role "user" and returns the new id.
func (r UserRepository) Create(ctx context.Context, u models.User) (int64, error) {
	db := r.db()
	if db == nil {
		return 0, domain.InternalError{Msg: "database not connected"}
	}
	res, err := db.ExecContext(ctx, `
		INSERT INTO users (name, surname, username, email, phone, address, password_hash, role, status, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, 'user', 'active', NOW(), NOW())`,
		u.Name, u.Surname, u.Username, u.Email, u.Phone, intdb.NullIfEmpty(u.Address), u.PasswordHash)
	if err != nil {
		if intdb.IsDuplicateKey(err) {
			return 0, domain.ConflictError{Msg: "email or username already registered", Err: err}
		}
		return 0, domain.InternalError{Msg: "insert user", Err: err}
	}
	return res.LastInsertId()
}
