package config

import (
	"flag"
	"log"
	"os"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

type Config struct {
	Env        string           `yaml:"env" env-default:"local"` // environment
	HTTPServer HTTPServerConfig `yaml:"http_server"`
	Database   DatabaseConfig   `yaml:"database"`
	JWT        JWTConfig        `yaml:"jwt"`
	Services   ServicesConfig   `yaml:"services"`
	Redis      RedisConfig      `yaml:"redis"`
	Kafka      KafkaConfig      `yaml:"kafka"`
	Migrations MigrationsConfig `yaml:"migrations"`
}

// HTTPServerConfig структура http сервера
type HTTPServerConfig struct {
	Address     string        `yaml:"address" env-default:"localhost:8080"`
	Timeout     time.Duration `yaml:"timeout" env-default:"4s"`
	IdleTimeout time.Duration `yaml:"idle_timeout" env-default:"60s"`
}

// DatabaseConfig структура по работе с БД
type DatabaseConfig struct {
	Host     string `yaml:"host" env-default:"localhost"`
	Port     int    `yaml:"port" env-default:"5432"`
	User     string `yaml:"user" env-required:"true"`
	// пароль приходит только из окружения; обязателен лишь для сервисов с БД
	Password string `yaml:"-" env:"DB_PASSWORD"`
	Name     string `yaml:"name" env-required:"true"`
}

// JWTConfig настройка jwt (нужна только auth-сервису)
type JWTConfig struct {
	Secret   string `yaml:"-" env:"JWT_SECRET"`
	TokenTTL int    `yaml:"token_ttl" env-default:"60"`
}

// ServicesConfig — базовые адреса соседних сервисов и таймаут их клиентов.
// Каждый удалённый вызов ограничен этим таймаутом, по умолчанию 5s.
type ServicesConfig struct {
	AuthURL       string        `yaml:"auth_url" env:"AUTH_SERVICE_URL" env-default:"http://localhost:4006/api"`
	UserURL       string        `yaml:"user_url" env:"USER_SERVICE_URL" env-default:"http://localhost:4001/api"`
	ProductURL    string        `yaml:"product_url" env:"PRODUCT_SERVICE_URL" env-default:"http://localhost:4002/api"`
	OrderURL      string        `yaml:"order_url" env:"ORDER_SERVICE_URL" env-default:"http://localhost:4003/api"`
	FortuneURL    string        `yaml:"fortune_url" env:"FORTUNE_SERVICE_URL" env-default:"http://localhost:4005/api"`
	ClientTimeout time.Duration `yaml:"client_timeout" env-default:"5s"`
}

// RedisConfig — кэш предсказаний fortune-сервиса
type RedisConfig struct {
	Addr       string        `yaml:"addr" env:"REDIS_ADDR" env-default:"localhost:6379"`
	FortuneTTL time.Duration `yaml:"fortune_ttl" env-default:"15m"`
}

// KafkaConfig — брокер для событий доукомплектования остатков.
// Пустой brokers отключает продюсер, сервис заказов работает и без него.
type KafkaConfig struct {
	Brokers             string `yaml:"brokers" env:"KAFKA_BROKERS"`
	ReconciliationTopic string `yaml:"reconciliation_topic" env-default:"stock-reconciliation"`
}

type MigrationsConfig struct {
	Path string `yaml:"path" env-default:"./migrations"`
}

// MustLoad - если не загружаем - паникуем
func MustLoad() *Config {
	configPath := fetchConfigPath()
	if configPath == "" {
		log.Fatal("CONFIG_PATH not exists")
	}
	return MustLoadByPath(configPath)
}

func fetchConfigPath() string {
	var path string

	flag.StringVar(&path, "config", "", "path to config file")
	flag.Parse()

	if path == "" {
		path = os.Getenv("CONFIG_PATH")
	}
	return path
}

func MustLoadByPath(configPath string) *Config {
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		panic("config file not found: " + configPath)
	}

	var cfg Config
	if err := cleanenv.ReadConfig(configPath, &cfg); err != nil {
		log.Fatalf("can't read config file %s", configPath)
	}

	return &cfg
}
