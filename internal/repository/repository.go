package repository

import (
	"database/sql"
	"fmt"
	"strconv"

	"github.com/Dan9191/loan-service/internal/errs"
	"github.com/Dan9191/loan-service/internal/models"
)

// Repository provides database operations
type Repository struct {
	db            *sql.DB
	encryptionKey []byte
}

// NewRepository initializes a new repository. The encryption key is applied
// to sensitive fields at the read/write boundary.
func NewRepository(db *sql.DB, encryptionKey []byte) *Repository {
	return &Repository{db: db, encryptionKey: encryptionKey}
}

// CreateUser creates a new user in the database
func (r *Repository) CreateUser(user *models.User) error {
	query := `
		INSERT INTO lend.users (username, email, password_hash, created_at)
		VALUES ($1, $2, $3, CURRENT_TIMESTAMP)
		RETURNING id, created_at`
	err := r.db.QueryRow(query, user.Username, user.Email, user.PasswordHash).
		Scan(&user.ID, &user.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to create user: %w", err)
	}
	return nil
}

// FindUserByEmail retrieves a user by email
func (r *Repository) FindUserByEmail(email string) (*models.User, error) {
	user := &models.User{}
	query := `
		SELECT id, username, email, password_hash, created_at
		FROM lend.users
		WHERE email = $1`
	err := r.db.QueryRow(query, email).
		Scan(&user.ID, &user.Username, &user.Email, &user.PasswordHash, &user.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, errs.NotFound("user not found")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find user: %w", err)
	}
	return user, nil
}

// FindUserByID retrieves a user by its string-encoded id
func (r *Repository) FindUserByID(userID string) (*models.User, error) {
	id, err := strconv.ParseInt(userID, 10, 64)
	if err != nil {
		return nil, errs.InvalidArgument("invalid user id: %s", userID)
	}
	user := &models.User{}
	query := `
		SELECT id, username, email, password_hash, created_at
		FROM lend.users
		WHERE id = $1`
	err = r.db.QueryRow(query, id).
		Scan(&user.ID, &user.Username, &user.Email, &user.PasswordHash, &user.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, errs.NotFound("user not found")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find user: %w", err)
	}
	return user, nil
}
