package httpapi

import (
	"OllamaChat/internal/ai"
	"bytes"
	"errors"
	"fmt"
	"io"
	"mime"
	"mime/multipart"
	"net/http"
	"strings"

	jsoniter "github.com/json-iterator/go"
)

var (
	// ErrMissingPrompt — поле message отсутствует или пустое.
	ErrMissingPrompt = errors.New("missing prompt")
	// ErrMalformedBody — тело не разбирается в заявленной кодировке.
	ErrMalformedBody = errors.New("malformed body")
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

const (
	fieldMessage = "message"
	fieldImage   = "image"
)

type chatRequest struct {
	Message string `json:"message"`
}

// ParseRequest приводит входящий запрос к ai.GenerationRequest.
// multipart/form-data: поля message и image (необязательная картинка); иначе тело — JSON {"message": "..."}.
// Ограничение размера тела делает вызывающий код (http.MaxBytesReader).
func ParseRequest(r *http.Request) (ai.GenerationRequest, error) {
	contentType := r.Header.Get("Content-Type")
	mediaType, params, err := mime.ParseMediaType(contentType)
	switch {
	case err == nil && mediaType == "multipart/form-data":
		boundary := params["boundary"]
		if boundary == "" {
			return ai.GenerationRequest{}, fmt.Errorf("%w: multipart boundary is missing", ErrMalformedBody)
		}
		return parseMultipart(multipart.NewReader(r.Body, boundary))
	case err != nil && strings.HasPrefix(strings.ToLower(strings.TrimSpace(contentType)), "multipart/form-data"):
		return ai.GenerationRequest{}, fmt.Errorf("%w: content type: %w", ErrMalformedBody, err)
	default:
		return parseJSON(r.Body)
	}
}

func parseMultipart(mr *multipart.Reader) (ai.GenerationRequest, error) {
	var (
		req        ai.GenerationRequest
		hasMessage bool
	)
	for {
		part, err := mr.NextPart()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return ai.GenerationRequest{}, fmt.Errorf("%w: multipart: %w", ErrMalformedBody, err)
		}

		switch part.FormName() {
		case fieldMessage:
			if hasMessage {
				break
			}
			b, err := io.ReadAll(part)
			if err != nil {
				return ai.GenerationRequest{}, fmt.Errorf("%w: read message: %w", ErrMalformedBody, err)
			}
			req.Prompt = string(b)
			hasMessage = true
		case fieldImage:
			// берём только первую картинку; пустая часть (файл не выбран) картинкой не считается
			if len(req.Images) > 0 {
				break
			}
			b, err := io.ReadAll(part)
			if err != nil {
				return ai.GenerationRequest{}, fmt.Errorf("%w: read image: %w", ErrMalformedBody, err)
			}
			if len(b) > 0 {
				req.Images = append(req.Images, b)
			}
		}
		// Остаток части дочитывает NextPart.
		_ = part.Close()
	}

	if strings.TrimSpace(req.Prompt) == "" {
		return ai.GenerationRequest{}, ErrMissingPrompt
	}
	return req, nil
}

func parseJSON(body io.Reader) (ai.GenerationRequest, error) {
	b, err := io.ReadAll(body)
	if err != nil {
		return ai.GenerationRequest{}, fmt.Errorf("%w: read body: %w", ErrMalformedBody, err)
	}
	if len(bytes.TrimSpace(b)) == 0 {
		return ai.GenerationRequest{}, fmt.Errorf("%w: empty body", ErrMalformedBody)
	}
	var in chatRequest
	if err := json.Unmarshal(b, &in); err != nil {
		return ai.GenerationRequest{}, fmt.Errorf("%w: json: %w", ErrMalformedBody, err)
	}
	if strings.TrimSpace(in.Message) == "" {
		return ai.GenerationRequest{}, ErrMissingPrompt
	}
	return ai.GenerationRequest{Prompt: in.Message}, nil
}
