package chatclient

import (
	"OllamaChat/internal/adapter/httpapi"
	"OllamaChat/internal/ai"
	"OllamaChat/internal/service/chat"
	"OllamaChat/internal/service/contextstore"
	"context"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestServer(t *testing.T) (*Client, *contextstore.Store) {
	t.Helper()
	logger := zap.NewNop().Sugar()
	store := contextstore.New()
	srv := httptest.NewServer(httpapi.NewHandler(chat.New(ai.NewStubClient(), store, logger), 0, logger))
	t.Cleanup(srv.Close)
	return New(srv.URL+"/api/chat", srv.Client()), store
}

func TestClient_Send(t *testing.T) {
	client, store := newTestServer(t)
	ctx := context.Background()

	text, err := client.Send(ctx, "hello", nil)
	require.NoError(t, err)
	assert.Contains(t, text, "hello")
	assert.Contains(t, text, "изображений: 0")

	text, err = client.Send(ctx, "and this?", &Image{Name: "/tmp/cat.jpg", Data: []byte{0xff, 0xd8, 0xff, 0xe0}})
	require.NoError(t, err)
	assert.Contains(t, text, "изображений: 1")

	assert.Equal(t, ai.ContextToken{1, 2}, store.Read())
}

func TestClient_Send_ServerError(t *testing.T) {
	client, _ := newTestServer(t)

	_, err := client.Send(context.Background(), "", nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrServer)
	assert.Contains(t, err.Error(), "status=400")
	assert.Contains(t, err.Error(), "message is required")
}
