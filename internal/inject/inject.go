package inject

import (
	"OllamaChat/internal/adapter/httpapi"
	"OllamaChat/internal/ai"
	"OllamaChat/internal/config"
	"OllamaChat/internal/server"
	"OllamaChat/internal/service/chat"
	"OllamaChat/internal/service/contextstore"
	"fmt"
	"net/http"

	"github.com/ollama/ollama/api"
	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
	"github.com/samber/do"
	"go.uber.org/zap"
)

// Setup регистрирует все компоненты приложения. Создаются лениво при первом Invoke.
func Setup(cfg *config.Config, logger *zap.SugaredLogger) *do.Injector {
	injector := do.NewWithOpts(&do.InjectorOpts{
		Logf: func(format string, args ...any) {
			logger.Debug(fmt.Sprintf(format, args...))
		},
	})

	do.ProvideValue[*config.Config](injector, cfg)
	do.ProvideValue[*zap.SugaredLogger](injector, logger)
	do.ProvideValue[*http.Client](injector, http.DefaultClient)

	do.Provide[ai.Generator](injector, NewGenerator)
	do.Provide[*contextstore.Store](injector, func(i *do.Injector) (*contextstore.Store, error) {
		return contextstore.New(), nil
	})
	do.Provide[*chat.Chat](injector, func(i *do.Injector) (*chat.Chat, error) {
		return chat.New(
			do.MustInvoke[ai.Generator](i),
			do.MustInvoke[*contextstore.Store](i),
			do.MustInvoke[*zap.SugaredLogger](i),
		), nil
	})
	do.Provide[*httpapi.Handler](injector, func(i *do.Injector) (*httpapi.Handler, error) {
		return httpapi.NewHandler(
			do.MustInvoke[*chat.Chat](i),
			cfg.Server.MaxUploadBytes,
			do.MustInvoke[*zap.SugaredLogger](i),
		), nil
	})
	do.Provide[*server.ChatServer](injector, func(i *do.Injector) (*server.ChatServer, error) {
		return server.NewChatServer(
			server.Config{BindAddr: cfg.Server.BindAddr, Path: cfg.Server.Path},
			do.MustInvoke[*httpapi.Handler](i),
			do.MustInvoke[*zap.SugaredLogger](i),
		), nil
	})

	return injector
}

// NewGenerator выбирает бэкенд генерации по конфигурации.
func NewGenerator(i *do.Injector) (ai.Generator, error) {
	cfg := do.MustInvoke[*config.Config](i)
	logger := do.MustInvoke[*zap.SugaredLogger](i)
	httpClient := do.MustInvoke[*http.Client](i)

	switch cfg.GenerationBackend {
	case config.BackendOpenAI:
		// Повторы отключены: ошибка отдаётся клиенту сразу.
		opts := []option.RequestOption{option.WithMaxRetries(0), option.WithHTTPClient(httpClient)}
		if cfg.OpenAI.BaseURL != "" {
			opts = append(opts, option.WithBaseURL(cfg.OpenAI.BaseURL))
		}
		client := openai.NewClient(opts...)
		return ai.NewOpenAIClient(&client, openai.ChatModel(cfg.OpenAI.Model), logger), nil
	case config.BackendStub:
		return ai.NewStubClient(), nil
	case config.BackendOllama:
		base, err := cfg.OllamaURL()
		if err != nil {
			return nil, err
		}
		return ai.NewOllamaClient(api.NewClient(base, httpClient), cfg.Ollama.Model, logger), nil
	default:
		return nil, fmt.Errorf("unknown generation backend %q", cfg.GenerationBackend)
	}
}
