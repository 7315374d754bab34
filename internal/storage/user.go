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

var (
	ErrUserNotFound = errors.New("user not found")
	ErrEmailTaken   = errors.New("email is already taken")
)

type UserStorage interface {
	GetAllUsers(ctx context.Context) ([]*models.User, error)
	GetUserByID(ctx context.Context, id string) (*models.User, error)
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	CreateUser(ctx context.Context, user *models.User) (string, error)
	UpdateUser(ctx context.Context, user *models.User) error
	DeleteUser(ctx context.Context, id string) error
}

type userRepository struct {
	db *sql.DB
}

func NewUserRepository(db *sql.DB) UserStorage {
	return &userRepository{db: db}
}

const userColumns = "id, email, name, role, full_name, street, country, zip_code, phone, created_at, updated_at"

func scanUser(row rowScanner, u *models.User) error {
	return row.Scan(&u.ID, &u.Email, &u.Name, &u.Role,
		&u.Address.FullName, &u.Address.Street, &u.Address.Country,
		&u.Address.ZipCode, &u.Address.Phone, &u.CreatedAt, &u.UpdatedAt)
}

func (r *userRepository) GetAllUsers(ctx context.Context) ([]*models.User, error) {
	rows, err := r.db.QueryContext(ctx, "SELECT "+userColumns+" FROM users ORDER BY created_at")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	users := []*models.User{}
	for rows.Next() {
		u := &models.User{}
		if err := scanUser(rows, u); err != nil {
			return nil, err
		}
		users = append(users, u)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return users, nil
}

func (r *userRepository) GetUserByID(ctx context.Context, id string) (*models.User, error) {
	u := &models.User{}
	row := r.db.QueryRowContext(ctx, "SELECT "+userColumns+" FROM users WHERE id = $1", id)
	if err := scanUser(row, u); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return u, nil
}

func (r *userRepository) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	u := &models.User{}
	row := r.db.QueryRowContext(ctx, "SELECT "+userColumns+" FROM users WHERE email = $1", email)
	if err := scanUser(row, u); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return u, nil
}

func (r *userRepository) CreateUser(ctx context.Context, user *models.User) (string, error) {
	const op = "storage.userRepository.CreateUser"

	id := uuid.NewString()
	role := user.Role
	if role == "" {
		role = models.RoleUser
	}
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO users (id, email, name, role, full_name, street, country, zip_code, phone, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, NOW(), NOW())`,
		id, user.Email, user.Name, role,
		user.Address.FullName, user.Address.Street, user.Address.Country,
		user.Address.ZipCode, user.Address.Phone,
	)
	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok && pqErr.Code == "23505" { // unique_violation
			return "", ErrEmailTaken
		}
		return "", fmt.Errorf("%s: %w", op, err)
	}
	return id, nil
}

func (r *userRepository) UpdateUser(ctx context.Context, user *models.User) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE users
		SET email = $2, name = $3, role = $4,
		    full_name = $5, street = $6, country = $7, zip_code = $8, phone = $9, updated_at = NOW()
		WHERE id = $1`,
		user.ID, user.Email, user.Name, user.Role,
		user.Address.FullName, user.Address.Street, user.Address.Country,
		user.Address.ZipCode, user.Address.Phone,
	)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrUserNotFound
	}
	return nil
}

func (r *userRepository) DeleteUser(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, "DELETE FROM users WHERE id = $1", id)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrUserNotFound
	}
	return nil
}
