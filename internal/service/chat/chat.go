package chat

import (
	"OllamaChat/internal/ai"
	"context"

	"go.uber.org/zap"
)

// ContextStore — слот с токеном контекста, общий для всех запросов.
type ContextStore interface {
	Read() ai.ContextToken
	Write(token ai.ContextToken)
}

// Chat — оркестрация одного хода диалога: прочитать контекст, сгенерировать, сохранить новый контекст.
type Chat struct {
	generator ai.Generator
	store     ContextStore
	logger    *zap.SugaredLogger
}

func New(generator ai.Generator, store ContextStore, logger *zap.SugaredLogger) *Chat {
	return &Chat{generator: generator, store: store, logger: logger}
}

// Reply выполняет ход диалога и возвращает текст ответа.
// Контекст перезаписывается только при успешной генерации и до возврата из метода.
func (c *Chat) Reply(ctx context.Context, req ai.GenerationRequest) (string, error) {
	prev := c.store.Read()
	res, err := c.generator.Generate(ctx, req, prev)
	if err != nil {
		return "", err
	}
	c.store.Write(res.Context)
	c.logger.Debugw("Контекст обновлён", "prev_len", len(prev), "next_len", len(res.Context))
	return res.Text, nil
}
