package storage

import (
	"context"
	"database/sql"
	"errors"

	"github.com/linemk/micro-shop/internal/domain/models"
)

var ErrFortuneNotFound = errors.New("fortune not found")

type FortuneStorage interface {
	GetAllFortunes(ctx context.Context) ([]*models.Fortune, error)
	// GetRandomFortune отдаёт случайную строку средствами БД.
	GetRandomFortune(ctx context.Context) (*models.Fortune, error)
}

type fortuneRepository struct {
	db *sql.DB
}

func NewFortuneRepository(db *sql.DB) FortuneStorage {
	return &fortuneRepository{db: db}
}

func (r *fortuneRepository) GetAllFortunes(ctx context.Context) ([]*models.Fortune, error) {
	rows, err := r.db.QueryContext(ctx, "SELECT id, fortune, author FROM fortunes ORDER BY id")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	fortunes := []*models.Fortune{}
	for rows.Next() {
		f := &models.Fortune{}
		if err := rows.Scan(&f.ID, &f.Fortune, &f.Author); err != nil {
			return nil, err
		}
		fortunes = append(fortunes, f)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return fortunes, nil
}

func (r *fortuneRepository) GetRandomFortune(ctx context.Context) (*models.Fortune, error) {
	f := &models.Fortune{}
	row := r.db.QueryRowContext(ctx, "SELECT id, fortune, author FROM fortunes ORDER BY random() LIMIT 1")
	if err := row.Scan(&f.ID, &f.Fortune, &f.Author); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrFortuneNotFound
		}
		return nil, err
	}
	return f, nil
}
