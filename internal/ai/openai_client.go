package ai

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/responses"
	"github.com/samber/lo"
	"go.uber.org/zap"
)

// OpenAIClient реализует Generator поверх Responses API.
// Серверный контекст OpenAI — это ID предыдущего ответа; в токене каждый int хранит один байт ID.
type OpenAIClient struct {
	client *openai.Client
	model  openai.ChatModel
	logger *zap.SugaredLogger
}

func NewOpenAIClient(client *openai.Client, model openai.ChatModel, logger *zap.SugaredLogger) *OpenAIClient {
	if strings.TrimSpace(string(model)) == "" {
		model = openai.ChatModelGPT4o
	}
	return &OpenAIClient{client: client, model: model, logger: logger}
}

func (c *OpenAIClient) Generate(ctx context.Context, req GenerationRequest, prev ContextToken) (GenerationResult, error) {
	if c.client == nil {
		return GenerationResult{}, fmt.Errorf("%w: nil openai client", ErrBackendUnavailable)
	}

	// Пользовательский ввод: текст + изображения (как data URL).
	content := make(responses.ResponseInputMessageContentListParam, 0, 1+len(req.Images))
	content = append(content, responses.ResponseInputContentParamOfInputText(req.Prompt))
	for _, img := range req.Images {
		imageParam := responses.ResponseInputContentParamOfInputImage(responses.ResponseInputImageDetailAuto)
		imageParam.OfInputImage.ImageURL = openai.String(imageDataURL(img))
		content = append(content, imageParam)
	}

	params := responses.ResponseNewParams{
		Model: c.model,
		Input: responses.ResponseNewParamsInputUnion{
			OfInputItemList: responses.ResponseInputParam{
				responses.ResponseInputItemParamOfMessage(content, responses.EasyInputMessageRoleUser),
			},
		},
		Store: openai.Bool(true),
	}
	prevID, ok := decodeResponseID(prev)
	if !ok {
		c.logger.Warnw("Токен контекста не похож на ID ответа OpenAI, начинаем новый диалог", "context_len", len(prev))
	}
	if prevID != "" {
		params.PreviousResponseID = openai.String(prevID)
	}

	start := time.Now()
	c.logger.Infow("Запрос в OpenAI...", "model", c.model, "images", len(req.Images), "previous_response_id", prevID)
	resp, err := c.client.Responses.New(ctx, params)
	dur := time.Since(start)
	if err != nil {
		c.logger.Errorw("Ошибка ответа OpenAI", "duration", dur.String(), "error", err)
		var apiErr *openai.Error
		if errors.As(err, &apiErr) {
			return GenerationResult{}, fmt.Errorf("%w: openai status %d: %w", ErrGenerationFailed, apiErr.StatusCode, err)
		}
		return GenerationResult{}, fmt.Errorf("%w: %w", ErrBackendUnavailable, err)
	}
	if resp.ID == "" {
		return GenerationResult{}, fmt.Errorf("%w: openai response without id", ErrGenerationFailed)
	}
	c.logger.Infow("Ответ OpenAI получен", "duration", dur.String(), "response_id", resp.ID)

	return GenerationResult{Text: resp.OutputText(), Context: encodeResponseID(resp.ID)}, nil
}

func encodeResponseID(id string) ContextToken {
	return lo.Map([]byte(id), func(b byte, _ int) int { return int(b) })
}

// decodeResponseID восстанавливает ID из токена. ok=false, если токен выдан другим бэкендом.
func decodeResponseID(t ContextToken) (string, bool) {
	if len(t) == 0 {
		return "", true
	}
	if lo.SomeBy(t, func(v int) bool { return v < 0x20 || v > 0x7e }) {
		return "", false
	}
	return string(lo.Map(t, func(v int, _ int) byte { return byte(v) })), true
}

func imageDataURL(data []byte) string {
	contentType := http.DetectContentType(data)
	if !strings.HasPrefix(contentType, "image/") {
		contentType = "image/jpeg"
	}
	return fmt.Sprintf("data:%s;base64,%s", contentType, base64.StdEncoding.EncodeToString(data))
}
