package service_test

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/linemk/micro-shop/internal/cache"
	"github.com/linemk/micro-shop/internal/domain/models"
	"github.com/linemk/micro-shop/internal/lib/httperr"
	"github.com/linemk/micro-shop/internal/service"
	"github.com/linemk/micro-shop/internal/storage"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeFortuneRepo struct {
	fortunes    []*models.Fortune
	calls       int
	randomCalls int
}

var _ storage.FortuneStorage = (*fakeFortuneRepo)(nil)

func (f *fakeFortuneRepo) GetAllFortunes(ctx context.Context) ([]*models.Fortune, error) {
	f.calls++
	return f.fortunes, nil
}

func (f *fakeFortuneRepo) GetRandomFortune(ctx context.Context) (*models.Fortune, error) {
	f.randomCalls++
	if len(f.fortunes) == 0 {
		return nil, storage.ErrFortuneNotFound
	}
	return f.fortunes[0], nil
}

func newFortuneCache(t *testing.T) cache.FortuneCache {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return cache.NewRedisFortuneCache(client, time.Minute)
}

func TestFortuneService_GetRandomFortune(t *testing.T) {
	repo := &fakeFortuneRepo{fortunes: []*models.Fortune{
		{ID: "1", Fortune: "Fortune favors the bold.", Author: "Virgil"},
		{ID: "2", Fortune: "Well begun is half done.", Author: "Aristotle"},
	}}

	svc := service.NewFortuneService(testLogger(), repo, newFortuneCache(t))

	fortune, err := svc.GetRandomFortune(context.Background())
	require.NoError(t, err)
	assert.NotEmpty(t, fortune.Fortune)
}

func TestFortuneService_CacheWarmsAfterFirstLoad(t *testing.T) {
	repo := &fakeFortuneRepo{fortunes: []*models.Fortune{
		{ID: "1", Fortune: "Fortune favors the bold.", Author: "Virgil"},
	}}

	svc := service.NewFortuneService(testLogger(), repo, newFortuneCache(t))
	ctx := context.Background()

	// первый запрос идёт в БД и прогревает кэш
	_, err := svc.GetAllFortunes(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, repo.calls)

	// последующие обслуживаются из кэша
	for i := 0; i < 5; i++ {
		_, err := svc.GetRandomFortune(ctx)
		require.NoError(t, err)
	}
	assert.Equal(t, 1, repo.calls, "warm cache must keep the database idle")
}

func TestFortuneService_NoCache(t *testing.T) {
	repo := &fakeFortuneRepo{fortunes: []*models.Fortune{
		{ID: "1", Fortune: "Fortune favors the bold.", Author: "Virgil"},
	}}

	// без кэша случайную строку выбирает сама БД, полный список не читается
	svc := service.NewFortuneService(testLogger(), repo, nil)
	ctx := context.Background()

	_, err := svc.GetRandomFortune(ctx)
	require.NoError(t, err)
	_, err = svc.GetRandomFortune(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, repo.randomCalls)
	assert.Equal(t, 0, repo.calls, "random pick must not load the whole list")
}

func TestFortuneService_NoCacheEmpty(t *testing.T) {
	repo := &fakeFortuneRepo{}

	svc := service.NewFortuneService(testLogger(), repo, nil)

	_, err := svc.GetRandomFortune(context.Background())
	require.Error(t, err)
	assert.True(t, httperr.IsKind(err, httperr.KindNotFound))
}

func TestFortuneService_Empty(t *testing.T) {
	repo := &fakeFortuneRepo{}

	svc := service.NewFortuneService(testLogger(), repo, newFortuneCache(t))

	_, err := svc.GetRandomFortune(context.Background())
	require.Error(t, err)
	assert.True(t, httperr.IsKind(err, httperr.KindNotFound))
}
