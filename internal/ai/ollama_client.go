package ai

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/url"
	"strings"
	"time"

	"github.com/ollama/ollama/api"
	"go.uber.org/zap"
)

// Модель по умолчанию: мультимодальная llava поверх llama3.
const DefaultOllamaModel = "llava-llama3"

// OllamaClient отправляет промпт, картинки и предыдущий контекст в /api/generate.
// Контекст Ollama — это массив int, который возвращается как есть в следующем запросе.
type OllamaClient struct {
	client *api.Client
	model  string
	logger *zap.SugaredLogger
}

// NewOllamaClient создаёт клиента. Если model пустая, используется DefaultOllamaModel.
func NewOllamaClient(client *api.Client, model string, logger *zap.SugaredLogger) *OllamaClient {
	if strings.TrimSpace(model) == "" {
		model = DefaultOllamaModel
	}
	return &OllamaClient{client: client, model: model, logger: logger}
}

func (c *OllamaClient) Generate(ctx context.Context, req GenerationRequest, prev ContextToken) (GenerationResult, error) {
	if c.client == nil {
		return GenerationResult{}, fmt.Errorf("%w: nil ollama client", ErrBackendUnavailable)
	}

	images := make([]api.ImageData, 0, len(req.Images))
	for _, img := range req.Images {
		images = append(images, api.ImageData(img))
	}

	stream := false
	genReq := &api.GenerateRequest{
		Model:   c.model,
		Prompt:  req.Prompt,
		Images:  images,
		Context: []int(prev),
		Stream:  &stream,
	}

	// Без стриминга приходит один ответ, но собираем текст по частям на случай потокового режима.
	var (
		text     strings.Builder
		next     []int
		received bool
	)
	start := time.Now()
	c.logger.Infow("Запрос в Ollama...", "model", c.model, "images", len(images), "context_len", len(prev))
	err := c.client.Generate(ctx, genReq, func(r api.GenerateResponse) error {
		received = true
		text.WriteString(r.Response)
		if r.Done {
			next = r.Context
		}
		return nil
	})
	dur := time.Since(start)
	if err != nil {
		c.logger.Errorw("Ошибка ответа Ollama", "duration", dur.String(), "error", err)
		return GenerationResult{}, classifyOllamaError(err)
	}
	// api.Client не проверяет ошибку сканера: оборванное соединение выглядит как пустой ответ без ошибки.
	if !received {
		c.logger.Errorw("Ollama оборвала ответ", "duration", dur.String())
		return GenerationResult{}, fmt.Errorf("%w: connection closed before any response from ollama", ErrBackendUnavailable)
	}
	c.logger.Infow("Ответ Ollama получен", "duration", dur.String(), "context_len", len(next))

	return GenerationResult{Text: text.String(), Context: ContextToken(next).Clone()}, nil
}

// classifyOllamaError разделяет ошибки транспорта и ошибки самой генерации.
func classifyOllamaError(err error) error {
	var statusErr api.StatusError
	if errors.As(err, &statusErr) {
		return fmt.Errorf("%w: ollama status %d: %s", ErrGenerationFailed, statusErr.StatusCode, statusErr.ErrorMessage)
	}
	var urlErr *url.Error
	var netErr net.Error
	if errors.As(err, &urlErr) || errors.As(err, &netErr) {
		return fmt.Errorf("%w: %w", ErrBackendUnavailable, err)
	}
	return fmt.Errorf("%w: %w", ErrGenerationFailed, err)
}
