package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand"

	"github.com/linemk/micro-shop/internal/cache"
	"github.com/linemk/micro-shop/internal/domain/models"
	"github.com/linemk/micro-shop/internal/lib/httperr"
	"github.com/linemk/micro-shop/internal/storage"
)

type FortuneService interface {
	GetAllFortunes(ctx context.Context) ([]models.Fortune, error)
	GetRandomFortune(ctx context.Context) (*models.Fortune, error)
}

type fortuneService struct {
	log         *slog.Logger
	fortuneRepo storage.FortuneStorage
	cache       cache.FortuneCache // nil отключает кэш
}

func NewFortuneService(log *slog.Logger, fortuneRepo storage.FortuneStorage, fortuneCache cache.FortuneCache) FortuneService {
	return &fortuneService{log: log, fortuneRepo: fortuneRepo, cache: fortuneCache}
}

// loadAll отдаёт список из кэша, при промахе идёт в БД и прогревает кэш.
// Ошибки кэша не фатальны — источник истины всегда БД.
func (s *fortuneService) loadAll(ctx context.Context) ([]models.Fortune, error) {
	const op = "service.fortuneService.loadAll"

	if s.cache != nil {
		fortunes, err := s.cache.GetAll(ctx)
		if err == nil {
			return fortunes, nil
		}
		if !errors.Is(err, cache.ErrCacheMiss) {
			s.log.Warn("fortune cache read failed", slog.String("op", op), slog.Any("error", err))
		}
	}

	stored, err := s.fortuneRepo.GetAllFortunes(ctx)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	fortunes := make([]models.Fortune, 0, len(stored))
	for _, f := range stored {
		fortunes = append(fortunes, *f)
	}

	if s.cache != nil {
		if err := s.cache.SetAll(ctx, fortunes); err != nil {
			s.log.Warn("fortune cache write failed", slog.String("op", op), slog.Any("error", err))
		}
	}
	return fortunes, nil
}

func (s *fortuneService) GetAllFortunes(ctx context.Context) ([]models.Fortune, error) {
	return s.loadAll(ctx)
}

// GetRandomFortune выбирает из прогретого кэша; без кэша случайную
// строку отдаёт сама БД.
func (s *fortuneService) GetRandomFortune(ctx context.Context) (*models.Fortune, error) {
	const op = "service.fortuneService.GetRandomFortune"

	if s.cache == nil {
		fortune, err := s.fortuneRepo.GetRandomFortune(ctx)
		if err != nil {
			if errors.Is(err, storage.ErrFortuneNotFound) {
				return nil, httperr.NotFound("no fortunes available")
			}
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		return fortune, nil
	}

	fortunes, err := s.loadAll(ctx)
	if err != nil {
		return nil, err
	}
	if len(fortunes) == 0 {
		return nil, httperr.NotFound("no fortunes available")
	}
	fortune := fortunes[rand.Intn(len(fortunes))]
	return &fortune, nil
}
