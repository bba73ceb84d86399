package ai

import (
	"context"
	"errors"
	"slices"
)

var (
	// ErrBackendUnavailable — бэкенд генерации недоступен (сеть/транспорт).
	ErrBackendUnavailable = errors.New("generation backend unavailable")
	// ErrGenerationFailed — бэкенд ответил, но сообщил о внутренней ошибке.
	ErrGenerationFailed = errors.New("generation failed")
)

// ContextToken — непрозрачный токен продолжения диалога, который понимает только бэкенд.
// После получения не изменяется, заменяется целиком.
type ContextToken []int

// Clone возвращает независимую копию токена. Пустой токен всегда не nil.
func (t ContextToken) Clone() ContextToken {
	if len(t) == 0 {
		return ContextToken{}
	}
	return slices.Clone(t)
}

// GenerationRequest — нормализованный запрос: текст и 0 или 1 изображение.
type GenerationRequest struct {
	Prompt string
	Images [][]byte
}

// GenerationResult — ответ бэкенда: сгенерированный текст и новый токен контекста.
type GenerationResult struct {
	Text    string
	Context ContextToken
}

// Generator интерфейс для бэкенда генерации. Все реализации должны быть взаимозаменяемыми.
// Реализация не повторяет запрос при ошибке и не трогает хранилище контекста.
type Generator interface {
	Generate(ctx context.Context, req GenerationRequest, prev ContextToken) (GenerationResult, error)
}
