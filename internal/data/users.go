// internal/data/users.go
// User records and password hashing for the auth endpoints.
package data

import (
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"golang.org/x/crypto/bcrypt"
)

// User represents a row in the users table. The password hash is never
// serialized; the json:"-" tag on Password keeps it out of every response.
type User struct {
	ID        uuid.UUID `json:"id"`
	Email     string    `json:"email"`
	Username  *string   `json:"username"` // Optional; nil maps to SQL NULL and JSON null
	Password  password  `json:"-"`
	CreatedAt time.Time `json:"created_at"`
}

// password wraps a bcrypt hash so the plaintext never lives on the User struct.
type password struct {
	hash []byte
}

// Set hashes the plaintext with bcrypt at the default cost and stores the hash.
func (p *password) Set(plaintext string) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(plaintext), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	p.hash = hash
	return nil
}

// Matches reports whether the plaintext matches the stored hash.
// A mismatch is not an error; only bcrypt failures are.
func (p *password) Matches(plaintext string) (bool, error) {
	err := bcrypt.CompareHashAndPassword(p.hash, []byte(plaintext))
	if err != nil {
		switch {
		case errors.Is(err, bcrypt.ErrMismatchedHashAndPassword):
			return false, nil
		default:
			return false, err
		}
	}
	return true, nil
}

// UserModel wraps a *sql.DB connection and provides methods for user records.
type UserModel struct {
	DB *sql.DB
}

// Insert adds a new user. The database assigns the id and creation timestamp,
// which are written back into the struct. A unique-constraint violation on the
// email column is mapped to ErrDuplicateEmail.
func (m UserModel) Insert(user *User) error {
	query := `
		INSERT INTO users (email, password_hash, username)
		VALUES ($1, $2, $3)
		RETURNING id, created_at`

	err := m.DB.QueryRow(query, user.Email, user.Password.hash, user.Username).
		Scan(&user.ID, &user.CreatedAt)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code.Name() == "unique_violation" {
			return ErrDuplicateEmail
		}
		return err
	}
	return nil
}

// GetByEmail retrieves a user by email address, including the password hash
// for credential checks. Returns ErrRecordNotFound if no user matches.
func (m UserModel) GetByEmail(email string) (*User, error) {
	query := `
		SELECT id, email, username, password_hash, created_at
		FROM users
		WHERE email = $1`

	var user User
	err := m.DB.QueryRow(query, email).Scan(
		&user.ID,
		&user.Email,
		&user.Username,
		&user.Password.hash,
		&user.CreatedAt,
	)
	if err != nil {
		switch {
		case errors.Is(err, sql.ErrNoRows):
			return nil, ErrRecordNotFound
		default:
			return nil, err
		}
	}
	return &user, nil
}

// Get retrieves a user by id. Returns ErrRecordNotFound if no user matches.
func (m UserModel) Get(id uuid.UUID) (*User, error) {
	query := `
		SELECT id, email, username, created_at
		FROM users
		WHERE id = $1`

	var user User
	err := m.DB.QueryRow(query, id).Scan(
		&user.ID,
		&user.Email,
		&user.Username,
		&user.CreatedAt,
	)
	if err != nil {
		switch {
		case errors.Is(err, sql.ErrNoRows):
			return nil, ErrRecordNotFound
		default:
			return nil, err
		}
	}
	return &user, nil
}
