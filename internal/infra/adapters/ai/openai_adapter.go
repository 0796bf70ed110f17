package ai

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"
	"time"

	"telegram-clinic-support/internal/domain"
	"telegram-clinic-support/internal/domain/ports/adapter"
)

// Compile-time assurance this adapter satisfies the port
var _ adapter.AIServiceAdapter = (*OpenAIAdapter)(nil)

// OpenAIAdapter implements adapter.AIServiceAdapter using the Chat
// Completions and Audio Transcriptions APIs. Images ride along as
// data-URI content parts; video and raw documents are not accepted by
// these endpoints and degrade to the caller's manual-review fallback.
type OpenAIAdapter struct {
	apiKey          string
	base            string // e.g., https://api.openai.com/v1
	model           string
	transcribeModel string
	client          *http.Client
}

func NewOpenAIAdapter(apiKey, model string) (*OpenAIAdapter, error) {
	if apiKey == "" {
		return nil, errors.New("openai api key empty")
	}
	if model == "" {
		model = "gpt-4o-mini"
	}
	return &OpenAIAdapter{
		apiKey:          apiKey,
		base:            "https://api.openai.com/v1",
		model:           model,
		transcribeModel: "whisper-1",
		client:          &http.Client{Timeout: 30 * time.Second},
	}, nil
}

type chatMessage struct {
	Role    string      `json:"role"`
	Content interface{} `json:"content"`
}

type contentPart struct {
	Type     string    `json:"type"`
	Text     string    `json:"text,omitempty"`
	ImageURL *imageURL `json:"image_url,omitempty"`
}

type imageURL struct {
	URL string `json:"url"`
}

func (o *OpenAIAdapter) GenerateReply(ctx context.Context, prompt string) (string, error) {
	return o.chat(ctx, []chatMessage{{Role: "user", Content: prompt}})
}

func (o *OpenAIAdapter) DescribeMedia(ctx context.Context, data []byte, contentType string, mode adapter.MediaMode) (string, error) {
	switch mode {
	case adapter.MediaModeTranscribe:
		return o.transcribe(ctx, data, contentType)
	case adapter.MediaModeDescribe, adapter.MediaModeSummarize:
		if !strings.HasPrefix(contentType, "image/") {
			return "", domain.ErrUnsupportedMedia
		}
		uri := fmt.Sprintf("data:%s;base64,%s", contentType, base64.StdEncoding.EncodeToString(data))
		parts := []contentPart{
			{Type: "text", Text: promptForMode(mode)},
			{Type: "image_url", ImageURL: &imageURL{URL: uri}},
		}
		return o.chat(ctx, []chatMessage{{Role: "user", Content: parts}})
	default:
		return "", domain.ErrUnsupportedMedia
	}
}

func promptForMode(mode adapter.MediaMode) string {
	if mode == adapter.MediaModeSummarize {
		return "Summarize what this attachment shows, in two or three sentences, for clinic staff."
	}
	return "Describe what this image shows, in two or three sentences, for clinic staff."
}

func (o *OpenAIAdapter) chat(ctx context.Context, messages []chatMessage) (string, error) {
	reqBody := struct {
		Model    string        `json:"model"`
		Messages []chatMessage `json:"messages"`
	}{Model: o.model, Messages: messages}

	b, _ := json.Marshal(reqBody)
	req, _ := http.NewRequestWithContext(ctx, http.MethodPost, o.base+"/chat/completions", bytes.NewReader(b))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+o.apiKey)

	resp, err := o.client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		return "", fmt.Errorf("openai http %d", resp.StatusCode)
	}

	var payload struct {
		Choices []struct {
			Message struct {
				Content string `json:"content"`
			} `json:"message"`
		} `json:"choices"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return "", err
	}
	for _, c := range payload.Choices {
		if c.Message.Content != "" {
			return c.Message.Content, nil
		}
	}
	return "", errors.New("no choice content")
}

func (o *OpenAIAdapter) transcribe(ctx context.Context, data []byte, contentType string) (string, error) {
	var body bytes.Buffer
	w := multipart.NewWriter(&body)

	fw, err := w.CreateFormFile("file", fileNameFor(contentType))
	if err != nil {
		return "", err
	}
	if _, err := io.Copy(fw, bytes.NewReader(data)); err != nil {
		return "", err
	}
	if err := w.WriteField("model", o.transcribeModel); err != nil {
		return "", err
	}
	if err := w.Close(); err != nil {
		return "", err
	}

	req, _ := http.NewRequestWithContext(ctx, http.MethodPost, o.base+"/audio/transcriptions", &body)
	req.Header.Set("Content-Type", w.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+o.apiKey)

	resp, err := o.client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		return "", fmt.Errorf("openai http %d", resp.StatusCode)
	}

	var payload struct {
		Text string `json:"text"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return "", err
	}
	if payload.Text == "" {
		return "", errors.New("empty transcription")
	}
	return payload.Text, nil
}

func fileNameFor(contentType string) string {
	switch {
	case strings.Contains(contentType, "ogg"):
		return "voice.ogg"
	case strings.Contains(contentType, "mpeg"), strings.Contains(contentType, "mp3"):
		return "audio.mp3"
	case strings.Contains(contentType, "wav"):
		return "audio.wav"
	default:
		return "audio.bin"
	}
}
