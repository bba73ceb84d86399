package server

import (
	"context"
	"io"
	"net"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestChatServer_ServeAndStop(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, `{"response":"pong"}`)
	})
	s := NewChatServer(Config{BindAddr: "127.0.0.1:0", Path: "/api/chat"}, handler, zap.NewNop().Sugar())

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Serve(ctx, ln) }()

	resp, err := http.Post("http://"+ln.Addr().String()+"/api/chat", "application/json", strings.NewReader(`{"message":"ping"}`))
	require.NoError(t, err)
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	_ = resp.Body.Close()
	assert.Equal(t, `{"response":"pong"}`, string(body))

	resp, err = http.Get("http://" + ln.Addr().String() + "/other")
	require.NoError(t, err)
	_ = resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(shutdownTimeout + time.Second):
		t.Fatal("server did not stop")
	}

	// повторная остановка — no-op
	assert.NoError(t, s.Shutdown())
}

func TestChatServer_ServeTwice(t *testing.T) {
	s := NewChatServer(Config{}, http.NotFoundHandler(), zap.NewNop().Sugar())
	assert.Equal(t, "127.0.0.1:3000", s.Addr())

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Serve(ctx, ln) }()

	require.Eventually(t, func() bool { return s.running.Load() }, time.Second, 10*time.Millisecond)

	ln2, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	defer ln2.Close()
	assert.Error(t, s.Serve(context.Background(), ln2))

	cancel()
	assert.NoError(t, <-done)
}

func TestChatServer_ServeReturnsAfterShutdown(t *testing.T) {
	s := NewChatServer(Config{}, http.NotFoundHandler(), zap.NewNop().Sugar())
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	done := make(chan error, 1)
	go func() { done <- s.Serve(context.Background(), ln) }()
	require.Eventually(t, func() bool { return s.running.Load() }, time.Second, 10*time.Millisecond)

	require.NoError(t, s.Shutdown())
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(shutdownTimeout + time.Second):
		t.Fatal("Serve did not return after Shutdown")
	}
}
