package ai

import (
	"context"
	"fmt"
)

// StubClient заглушка, которая не делает реальных запросов.
// Отвечает эхом и дописывает в токен номер хода, чтобы было видно продвижение контекста.
type StubClient struct{}

func NewStubClient() *StubClient { return &StubClient{} }

func (c *StubClient) Generate(_ context.Context, req GenerationRequest, prev ContextToken) (GenerationResult, error) {
	next := make(ContextToken, 0, len(prev)+1)
	next = append(next, prev...)
	next = append(next, len(prev)+1)
	return GenerationResult{
		Text:    fmt.Sprintf("запрос получен (ход %d, изображений: %d): %s", len(next), len(req.Images), req.Prompt),
		Context: next,
	}, nil
}
