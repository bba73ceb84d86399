package chatclient

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"path/filepath"

	jsoniter "github.com/json-iterator/go"
)

// ErrServer — сервер чата вернул {"error": ...}.
var ErrServer = errors.New("chat server error")

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// Client отправляет реплики в эндпоинт чата: JSON без картинки, multipart с картинкой.
type Client struct {
	url  string
	http *http.Client
}

func New(url string, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &Client{url: url, http: httpClient}
}

// Image — вложение для multipart-запроса.
type Image struct {
	Name string
	Data []byte
}

type reply struct {
	Response string `json:"response"`
	Error    string `json:"error"`
}

// Send отправляет сообщение и возвращает текст ответа. image может быть nil.
func (c *Client) Send(ctx context.Context, message string, image *Image) (string, error) {
	body, contentType, err := encode(message, image)
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, body)
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 16<<20))
	if err != nil {
		return "", err
	}
	var out reply
	if err := json.Unmarshal(raw, &out); err != nil {
		return "", fmt.Errorf("%w: status=%d, body=%s", ErrServer, resp.StatusCode, bytes.TrimSpace(raw))
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("%w: status=%d: %s", ErrServer, resp.StatusCode, out.Error)
	}
	return out.Response, nil
}

func encode(message string, image *Image) (io.Reader, string, error) {
	if image == nil {
		b, err := json.Marshal(map[string]string{"message": message})
		if err != nil {
			return nil, "", err
		}
		return bytes.NewReader(b), "application/json", nil
	}

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	if err := mw.WriteField("message", message); err != nil {
		return nil, "", err
	}
	name := image.Name
	if name == "" {
		name = "image"
	}
	fw, err := mw.CreateFormFile("image", filepath.Base(name))
	if err != nil {
		return nil, "", err
	}
	if _, err := fw.Write(image.Data); err != nil {
		return nil, "", err
	}
	if err := mw.Close(); err != nil {
		return nil, "", err
	}
	return &buf, mw.FormDataContentType(), nil
}
