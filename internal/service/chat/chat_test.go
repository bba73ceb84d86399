package chat

import (
	"OllamaChat/internal/ai"
	"OllamaChat/internal/service/contextstore"
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// scriptedGenerator отдаёт заранее заданные ответы и запоминает, с каким контекстом его вызывали.
type scriptedGenerator struct {
	mu      sync.Mutex
	results []ai.GenerationResult
	err     error
	seen    []ai.ContextToken
}

func (g *scriptedGenerator) Generate(_ context.Context, _ ai.GenerationRequest, prev ai.ContextToken) (ai.GenerationResult, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.seen = append(g.seen, prev)
	if g.err != nil {
		return ai.GenerationResult{}, g.err
	}
	res := g.results[0]
	g.results = g.results[1:]
	return res, nil
}

func TestChat_Reply_ThreadsContext(t *testing.T) {
	gen := &scriptedGenerator{results: []ai.GenerationResult{
		{Text: "hi there", Context: ai.ContextToken{1, 2, 3}},
		{Text: "go on", Context: ai.ContextToken{1, 2, 3, 4}},
	}}
	store := contextstore.New()
	c := New(gen, store, zap.NewNop().Sugar())

	text, err := c.Reply(context.Background(), ai.GenerationRequest{Prompt: "hello"})
	require.NoError(t, err)
	assert.Equal(t, "hi there", text)
	assert.Equal(t, ai.ContextToken{1, 2, 3}, store.Read())

	_, err = c.Reply(context.Background(), ai.GenerationRequest{Prompt: "continue"})
	require.NoError(t, err)

	require.Len(t, gen.seen, 2)
	assert.Empty(t, gen.seen[0])
	assert.Equal(t, ai.ContextToken{1, 2, 3}, gen.seen[1])
	assert.Equal(t, ai.ContextToken{1, 2, 3, 4}, store.Read())
}

func TestChat_Reply_FailureKeepsContext(t *testing.T) {
	for _, backendErr := range []error{ai.ErrBackendUnavailable, ai.ErrGenerationFailed} {
		t.Run(backendErr.Error(), func(t *testing.T) {
			store := contextstore.New()
			store.Write(ai.ContextToken{5, 6})
			gen := &scriptedGenerator{err: fmt.Errorf("%w: boom", backendErr)}

			_, err := New(gen, store, zap.NewNop().Sugar()).Reply(context.Background(), ai.GenerationRequest{Prompt: "hi"})
			assert.ErrorIs(t, err, backendErr)
			assert.Equal(t, ai.ContextToken{5, 6}, store.Read())
		})
	}
}

// gatedGenerator блокирует каждый вызов до сигнала из теста, чтобы управлять порядком записи.
type gatedGenerator struct {
	started chan string
	release map[string]chan struct{}
	tokens  map[string]ai.ContextToken
}

func (g *gatedGenerator) Generate(_ context.Context, req ai.GenerationRequest, _ ai.ContextToken) (ai.GenerationResult, error) {
	g.started <- req.Prompt
	<-g.release[req.Prompt]
	return ai.GenerationResult{Text: req.Prompt, Context: g.tokens[req.Prompt]}, nil
}

// Параллельные ходы не упорядочены: в слоте остаётся токен того, кто записал последним,
// даже если он начал первым.
func TestChat_Reply_OverlappingTurnsLastWriterWins(t *testing.T) {
	gen := &gatedGenerator{
		started: make(chan string),
		release: map[string]chan struct{}{"A": make(chan struct{}), "B": make(chan struct{})},
		tokens:  map[string]ai.ContextToken{"A": {1, 1}, "B": {2, 2}},
	}
	store := contextstore.New()
	c := New(gen, store, zap.NewNop().Sugar())

	doneA := make(chan struct{})
	go func() {
		defer close(doneA)
		_, _ = c.Reply(context.Background(), ai.GenerationRequest{Prompt: "A"})
	}()
	require.Equal(t, "A", <-gen.started)

	doneB := make(chan struct{})
	go func() {
		defer close(doneB)
		_, _ = c.Reply(context.Background(), ai.GenerationRequest{Prompt: "B"})
	}()
	require.Equal(t, "B", <-gen.started)

	close(gen.release["B"])
	<-doneB
	assert.Equal(t, ai.ContextToken{2, 2}, store.Read())

	close(gen.release["A"])
	<-doneA
	assert.Equal(t, ai.ContextToken{1, 1}, store.Read(), "A начал первым, но записал последним")
}
