package config

import (
	"errors"
	"flag"
	"fmt"
	"net/url"
	"os"
	"strings"

	"github.com/caarlos0/env/v6"
	"github.com/joho/godotenv"
	"github.com/samber/lo"
)

// Поддерживаемые бэкенды генерации
const (
	BackendOllama = "ollama"
	BackendOpenAI = "openai"
	BackendStub   = "stub"
)

var backends = []string{BackendOllama, BackendOpenAI, BackendStub}

type Config struct {
	DebugMode         bool   `env:"DEBUG_MODE"`         // Режим дебага: dev-логгер и уровень debug
	GenerationBackend string `env:"GENERATION_BACKEND"` // ollama|openai|stub

	Server ServerConfig
	Ollama OllamaConfig
	OpenAI OpenAIConfig
}

// ServerConfig конфигурация HTTP-эндпоинта чата.
type ServerConfig struct {
	BindAddr       string `env:"SERVER_BIND_ADDR"` // Адрес слушателя, напр. 127.0.0.1:3000
	Path           string `env:"SERVER_PATH"`      // HTTP-путь эндпоинта чата
	MaxUploadBytes int64  `env:"MAX_UPLOAD_BYTES"` // Предел размера тела запроса (с картинкой)
}

// OllamaConfig конфигурация бэкенда Ollama.
type OllamaConfig struct {
	Host  string `env:"OLLAMA_HOST"`  // Базовый URL сервера Ollama
	Model string `env:"OLLAMA_MODEL"` // Мультимодальная модель
}

// OpenAIConfig конфигурация бэкенда OpenAI. Ключ SDK читает сам из OPENAI_API_KEY.
type OpenAIConfig struct {
	Model   string `env:"OPENAI_MODEL"`
	BaseURL string `env:"OPENAI_BASE_URL"` // Пусто — адрес SDK по умолчанию
}

// Defaults возвращает конфигурацию с предустановленными значениями по умолчанию.
// Эти значения перекрываются .env, переменными окружения и флагами CLI.
func Defaults() *Config {
	return &Config{
		DebugMode:         false,
		GenerationBackend: BackendOllama,
		Server: ServerConfig{
			BindAddr:       "127.0.0.1:3000",
			Path:           "/api/chat",
			MaxUploadBytes: 32 << 20,
		},
		Ollama: OllamaConfig{
			Host:  "http://127.0.0.1:11434",
			Model: "llava-llama3",
		},
		OpenAI: OpenAIConfig{
			Model: "gpt-4o",
		},
	}
}

// NewConfig загружает конфигурацию приложения. При невалидной конфигурации — panic.
func NewConfig() *Config {
	_ = godotenv.Load()

	cfg, err := Parse(flag.CommandLine, os.Args[1:])
	if err != nil {
		panic(err)
	}
	return cfg
}

// Parse стартует с дефолтов, затем перекрывает окружением и флагами из args.
func Parse(fs *flag.FlagSet, args []string) (*Config, error) {
	cfg := Defaults()
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("config: env: %w", err)
	}

	fs.BoolVar(&cfg.DebugMode, "debug-mode", cfg.DebugMode, "включить режим дебага (подробные логи)")
	fs.StringVar(&cfg.GenerationBackend, "generation-backend", cfg.GenerationBackend, "бэкенд генерации: ollama|openai|stub")
	// Сервер
	fs.StringVar(&cfg.Server.BindAddr, "server-bind-addr", cfg.Server.BindAddr, "адрес для прослушивания (напр. 127.0.0.1:3000)")
	fs.StringVar(&cfg.Server.Path, "server-path", cfg.Server.Path, "HTTP путь эндпоинта чата")
	fs.Int64Var(&cfg.Server.MaxUploadBytes, "max-upload-bytes", cfg.Server.MaxUploadBytes, "максимальный размер тела запроса в байтах")
	// Ollama
	fs.StringVar(&cfg.Ollama.Host, "ollama-host", cfg.Ollama.Host, "базовый URL сервера Ollama")
	fs.StringVar(&cfg.Ollama.Model, "ollama-model", cfg.Ollama.Model, "модель Ollama")
	// OpenAI
	fs.StringVar(&cfg.OpenAI.Model, "openai-model", cfg.OpenAI.Model, "модель OpenAI")
	fs.StringVar(&cfg.OpenAI.BaseURL, "openai-base-url", cfg.OpenAI.BaseURL, "базовый URL OpenAI API (пусто — по умолчанию)")
	if err := fs.Parse(args); err != nil {
		return nil, fmt.Errorf("config: flags: %w", err)
	}

	cfg.GenerationBackend = strings.ToLower(strings.TrimSpace(cfg.GenerationBackend))
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate проверяет значения, без которых сервер не сможет стартовать.
func (c *Config) Validate() error {
	var errs []error
	if !lo.Contains(backends, c.GenerationBackend) {
		errs = append(errs, fmt.Errorf("config: unknown generation backend %q (want one of %s)", c.GenerationBackend, strings.Join(backends, "|")))
	}
	if strings.TrimSpace(c.Server.BindAddr) == "" {
		errs = append(errs, errors.New("config: empty server bind address"))
	}
	if !strings.HasPrefix(c.Server.Path, "/") {
		errs = append(errs, fmt.Errorf("config: server path must start with '/': %q", c.Server.Path))
	}
	if c.Server.MaxUploadBytes <= 0 {
		errs = append(errs, fmt.Errorf("config: max upload bytes must be positive: %d", c.Server.MaxUploadBytes))
	}
	if c.GenerationBackend == BackendOllama {
		if _, err := c.OllamaURL(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// OllamaURL разбирает адрес Ollama; допускается host:port без схемы.
func (c *Config) OllamaURL() (*url.URL, error) {
	host := strings.TrimSpace(c.Ollama.Host)
	if host == "" {
		return nil, errors.New("config: empty ollama host")
	}
	if !strings.Contains(host, "://") {
		host = "http://" + host
	}
	u, err := url.Parse(host)
	if err != nil || u.Host == "" {
		return nil, fmt.Errorf("config: invalid ollama host %q", c.Ollama.Host)
	}
	return u, nil
}
