package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/linemk/micro-shop/internal/config"
	"github.com/linemk/micro-shop/internal/lib/logger"
	"github.com/stretchr/testify/assert"
)

func TestMustLoadByPath_Success(t *testing.T) {
	// Устанавливаем обязательные переменные окружения
	os.Setenv("DB_PASSWORD", "mypassword")
	os.Setenv("JWT_SECRET", "mysecret")
	defer os.Unsetenv("DB_PASSWORD")
	defer os.Unsetenv("JWT_SECRET")

	// Пример содержимого конфигурационного файла
	content := `
env: "local"
http_server:
  address: "localhost:4003"
  timeout: "4s"
  idle_timeout: "60s"
database:
  host: "localhost"
  port: 5432
  user: "postgres"
  name: "orders"
jwt:
  token_ttl: 60
services:
  auth_url: "http://localhost:4006/api"
  product_url: "http://localhost:4002/api"
  client_timeout: "2s"
kafka:
  brokers: "localhost:9092"
migrations:
  path: "./migrations"
`
	// Создаем временный файл с конфигурацией
	tmpFile, err := os.CreateTemp("", "config_test_*.yaml")
	assert.NoError(t, err)
	defer os.Remove(tmpFile.Name())

	_, err = tmpFile.WriteString(content)
	assert.NoError(t, err)
	err = tmpFile.Close()
	assert.NoError(t, err)

	// Загружаем конфигурацию из временного файла
	cfg := config.MustLoadByPath(tmpFile.Name())

	// Проверяем, что конфигурация загружена корректно
	assert.Equal(t, "local", cfg.Env)
	assert.Equal(t, "localhost:4003", cfg.HTTPServer.Address)
	assert.Equal(t, 4*time.Second, cfg.HTTPServer.Timeout)
	assert.Equal(t, 60*time.Second, cfg.HTTPServer.IdleTimeout)
	assert.Equal(t, "localhost", cfg.Database.Host)
	assert.Equal(t, 5432, cfg.Database.Port)
	assert.Equal(t, "postgres", cfg.Database.User)
	assert.Equal(t, "orders", cfg.Database.Name)
	assert.Equal(t, 60, cfg.JWT.TokenTTL)
	assert.Equal(t, "http://localhost:4006/api", cfg.Services.AuthURL)
	assert.Equal(t, "http://localhost:4002/api", cfg.Services.ProductURL)
	assert.Equal(t, 2*time.Second, cfg.Services.ClientTimeout)
	// не заданные в yaml адреса берутся из env-default
	assert.Equal(t, "http://localhost:4001/api", cfg.Services.UserURL)
	assert.Equal(t, "localhost:9092", cfg.Kafka.Brokers)
	assert.Equal(t, "stock-reconciliation", cfg.Kafka.ReconciliationTopic)
	assert.Equal(t, "./migrations", cfg.Migrations.Path)
}

func TestShippedConfigsUseKnownEnv(t *testing.T) {
	os.Setenv("DB_PASSWORD", "mypassword")
	defer os.Unsetenv("DB_PASSWORD")

	paths, err := filepath.Glob("../../config/*.yaml")
	assert.NoError(t, err)
	assert.NotEmpty(t, paths, "shipped configs must be present")

	// env в поставляемых конфигах должен включать нужный обработчик логера
	known := []string{logger.EnvLocal, logger.EnvDev, logger.EnvProd}
	for _, path := range paths {
		cfg := config.MustLoadByPath(path)
		assert.Contains(t, known, cfg.Env, "unknown env in %s", path)
	}
}

func TestMustLoadByPath_FileNotFound(t *testing.T) {
	// Ожидаем панику, если файла не существует
	assert.Panics(t, func() {
		config.MustLoadByPath("non_existent_config.yaml")
	})
}
