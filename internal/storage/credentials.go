package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/linemk/micro-shop/internal/domain/models"
)

var ErrCredentialsNotFound = errors.New("credentials not found")

// CredentialsStorage — учётные данные, живут только в БД auth-сервиса
type CredentialsStorage interface {
	GetCredentialsByEmail(ctx context.Context, email string) (*models.Credentials, error)
	CreateCredentials(ctx context.Context, creds *models.Credentials) (string, error)
}

type credentialsRepository struct {
	db *sql.DB
}

func NewCredentialsRepository(db *sql.DB) CredentialsStorage {
	return &credentialsRepository{db: db}
}

func (r *credentialsRepository) GetCredentialsByEmail(ctx context.Context, email string) (*models.Credentials, error) {
	creds := &models.Credentials{}
	row := r.db.QueryRowContext(ctx,
		"SELECT id, email, password_hash, user_id FROM credentials WHERE email = $1", email)
	if err := row.Scan(&creds.ID, &creds.Email, &creds.PasswordHash, &creds.UserID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrCredentialsNotFound
		}
		return nil, err
	}
	return creds, nil
}

func (r *credentialsRepository) CreateCredentials(ctx context.Context, creds *models.Credentials) (string, error) {
	const op = "storage.credentialsRepository.CreateCredentials"

	id := uuid.NewString()
	_, err := r.db.ExecContext(ctx,
		"INSERT INTO credentials (id, email, password_hash, user_id) VALUES ($1, $2, $3, $4)",
		id, creds.Email, creds.PasswordHash, creds.UserID,
	)
	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok && pqErr.Code == "23505" { // unique_violation
			return "", ErrEmailTaken
		}
		return "", fmt.Errorf("%s: %w", op, err)
	}
	return id, nil
}
