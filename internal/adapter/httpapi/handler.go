package httpapi

import (
	"OllamaChat/internal/ai"
	"context"
	"net/http"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// DefaultMaxUploadBytes — предел размера тела запроса по умолчанию.
const DefaultMaxUploadBytes int64 = 32 << 20

// Replier — один ход диалога (см. service/chat).
type Replier interface {
	Reply(ctx context.Context, req ai.GenerationRequest) (string, error)
}

// Handler обслуживает POST чата: разбор → генерация → ответ.
type Handler struct {
	chat     Replier
	maxBytes int64
	logger   *zap.SugaredLogger
}

func NewHandler(chat Replier, maxBytes int64, logger *zap.SugaredLogger) *Handler {
	if maxBytes <= 0 {
		maxBytes = DefaultMaxUploadBytes
	}
	return &Handler{chat: chat, maxBytes: maxBytes, logger: logger}
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", http.MethodPost)
		writeJSON(w, http.StatusMethodNotAllowed, errorResponse{Error: msgMethodNotAllowed})
		return
	}

	log := h.logger.With("request_id", uuid.NewString())
	r.Body = http.MaxBytesReader(w, r.Body, h.maxBytes)
	defer r.Body.Close()

	req, err := ParseRequest(r)
	if err != nil {
		log.Warnw("Не удалось разобрать запрос", "stage", "parse", "content_type", r.Header.Get("Content-Type"), "error", err)
		WriteError(w, err)
		return
	}

	// Отмена не поддерживается: запущенная генерация доходит до конца, даже если клиент ушёл.
	ctx := context.WithoutCancel(r.Context())
	start := time.Now()
	text, err := h.chat.Reply(ctx, req)
	if err != nil {
		log.Errorw("Ошибка генерации", "stage", "generate", "duration", time.Since(start).String(), "error", err)
		WriteError(w, err)
		return
	}

	log.Infow("Ответ готов", "duration", time.Since(start).String(), "images", len(req.Images), "chars", len(text))
	WriteResult(w, text)
}
