package server

import (
	"context"
	"errors"
	"net"
	"net/http"
	"sync/atomic"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const shutdownTimeout = 5 * time.Second

// Config параметры HTTP-сервера чата.
type Config struct {
	BindAddr string
	Path     string
}

// ChatServer держит один POST-эндпоинт чата.
type ChatServer struct {
	cfg     Config
	srv     *http.Server
	logger  *zap.SugaredLogger
	running atomic.Bool
}

func NewChatServer(cfg Config, handler http.Handler, logger *zap.SugaredLogger) *ChatServer {
	if cfg.BindAddr == "" {
		cfg.BindAddr = "127.0.0.1:3000"
	}
	if cfg.Path == "" {
		cfg.Path = "/api/chat"
	}
	s := &ChatServer{cfg: cfg, logger: logger}

	mux := http.NewServeMux()
	mux.Handle(cfg.Path, handler)

	// WriteTimeout не задаём: генерация может идти сколько угодно долго.
	s.srv = &http.Server{
		Addr:              cfg.BindAddr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
	return s
}

// Run слушает адрес из конфигурации и блокируется до отмены ctx или ошибки сервера.
func (s *ChatServer) Run(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.cfg.BindAddr)
	if err != nil {
		return err
	}
	return s.Serve(ctx, ln)
}

// Serve обслуживает готовый listener; после отмены ctx делает graceful shutdown.
// Возвращается и тогда, когда сервер остановлен через Stop или Shutdown.
func (s *ChatServer) Serve(ctx context.Context, ln net.Listener) error {
	if !s.running.CompareAndSwap(false, true) {
		return errors.New("chat server already running")
	}

	// serveCtx гасится и при внешнем Stop/Shutdown, иначе наблюдатель ниже не дождётся отмены.
	serveCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	g, gctx := errgroup.WithContext(serveCtx)
	g.Go(func() error {
		defer cancel()
		s.logger.Infow("ChatServer listening", "addr", ln.Addr().String(), "path", s.cfg.Path)
		if err := s.srv.Serve(ln); !errors.Is(err, http.ErrServerClosed) && err != nil {
			s.logger.Errorw("ChatServer stopped with error", "error", err)
			return err
		}
		s.logger.Infow("ChatServer stopped")
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		return s.Stop(context.WithoutCancel(gctx))
	})
	return g.Wait()
}

// Stop инициирует graceful shutdown; если не успели за таймаут — закрывает соединения.
func (s *ChatServer) Stop(ctx context.Context) error {
	if !s.running.CompareAndSwap(true, false) {
		return nil
	}
	shutdownCtx, cancel := context.WithTimeoutCause(ctx, shutdownTimeout, errors.New("chat-server shutdown timeout"))
	defer cancel()
	if err := s.srv.Shutdown(shutdownCtx); err != nil {
		s.logger.Warnw("graceful shutdown error", "error", err)
		return s.srv.Close()
	}
	return nil
}

// Shutdown нужен инжектору (do.Shutdownable).
func (s *ChatServer) Shutdown() error {
	return s.Stop(context.Background())
}

func (s *ChatServer) Addr() string { return s.cfg.BindAddr }
