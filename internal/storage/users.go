package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net/mail"
	"strings"
	"time"
	"unicode/utf8"

	"golang.org/x/crypto/bcrypt"

	domerrors "github.com/garyellow/calmmate-go/internal/errors"
)

// NormalizeEmail trims and lower-cases an email address.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func validateRegistration(email, name, password string) error {
	var errs []error
	if email == "" {
		errs = append(errs, domerrors.NewValidationError("email", "is required"))
	} else if addr, err := mail.ParseAddress(email); err != nil || addr.Address != email {
		errs = append(errs, domerrors.NewValidationError("email", "is not a valid address"))
	}
	if name == "" {
		errs = append(errs, domerrors.NewValidationError("name", "is required"))
	}
	if utf8.RuneCountInString(password) < MinPasswordLength {
		errs = append(errs, domerrors.NewValidationError("password",
			fmt.Sprintf("must be at least %d characters", MinPasswordLength)))
	}
	return errors.Join(errs...)
}

// CreateUser registers a new account with a bcrypt-hashed password.
// Returns domerrors.ErrAlreadyExists when the email is taken.
func (db *DB) CreateUser(ctx context.Context, email, name, password string) (*User, error) {
	email = NormalizeEmail(email)
	name = strings.TrimSpace(name)
	if err := validateRegistration(email, name, password); err != nil {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), db.hashCost)
	if err != nil {
		// bcrypt rejects passwords over 72 bytes
		return nil, domerrors.NewValidationError("password", err.Error())
	}

	now := time.Now()
	query := `
		INSERT INTO users (email, name, password_hash, created_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(email) DO NOTHING
	`
	res, err := db.conn.ExecContext(ctx, query, email, name, string(hash), now.Unix())
	if err != nil {
		slog.ErrorContext(ctx, "failed to create user", "error", err)
		return nil, fmt.Errorf("failed to create user: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}
	if n == 0 {
		return nil, fmt.Errorf("email %q: %w", email, domerrors.ErrAlreadyExists)
	}

	return &User{Email: email, Name: name, CreatedAt: time.Unix(now.Unix(), 0)}, nil
}

// Authenticate checks a password and records the login time. An unknown
// email and a wrong password both cost one bcrypt comparison and return
// ErrInvalidCredentials.
func (db *DB) Authenticate(ctx context.Context, email, password string) (*User, error) {
	email = NormalizeEmail(email)
	if email == "" || password == "" {
		return nil, ErrInvalidCredentials
	}

	var (
		u         User
		hash      string
		createdAt int64
	)
	err := db.conn.QueryRowContext(ctx,
		`SELECT email, name, password_hash, created_at FROM users WHERE email = ?`, email,
	).Scan(&u.Email, &u.Name, &hash, &createdAt)
	if errors.Is(err, sql.ErrNoRows) {
		_ = db.compare(db.missHash, []byte(password))
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load user: %w", err)
	}

	if err := db.compare([]byte(hash), []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	now := time.Unix(time.Now().Unix(), 0)
	if _, err := db.conn.ExecContext(ctx,
		`UPDATE users SET last_login_at = ? WHERE email = ?`, now.Unix(), email,
	); err != nil {
		// Login still succeeds
		slog.WarnContext(ctx, "failed to record login time", "error", err)
	}

	u.CreatedAt = time.Unix(createdAt, 0)
	u.LastLoginAt = &now
	return &u, nil
}

// GetUser returns the account for email.
func (db *DB) GetUser(ctx context.Context, email string) (*User, error) {
	var (
		u         User
		createdAt int64
		lastLogin sql.NullInt64
	)
	err := db.conn.QueryRowContext(ctx,
		`SELECT email, name, created_at, last_login_at FROM users WHERE email = ?`, NormalizeEmail(email),
	).Scan(&u.Email, &u.Name, &createdAt, &lastLogin)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("user: %w", domerrors.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load user: %w", err)
	}

	u.CreatedAt = time.Unix(createdAt, 0)
	if lastLogin.Valid {
		t := time.Unix(lastLogin.Int64, 0)
		u.LastLoginAt = &t
	}
	return &u, nil
}

// CountUsers returns the number of registered accounts.
func (db *DB) CountUsers(ctx context.Context) (int, error) {
	var count int
	if err := db.conn.QueryRowContext(ctx, `SELECT COUNT(*) FROM users`).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count users: %w", err)
	}
	return count, nil
}
