package ai

import (
	"context"
	"errors"
	"strings"

	"google.golang.org/genai"

	"telegram-clinic-support/internal/domain/ports/adapter"
)

var _ adapter.AIServiceAdapter = (*GeminiAdapter)(nil)

// GeminiAdapter uses the official SDK. Gemini accepts inline media for
// all four analysis modes (image, audio, video, pdf), so it is the
// preferred provider when both are configured.
type GeminiAdapter struct {
	client       *genai.Client
	defaultModel string
	maxOut       int
}

func NewGeminiAdapter(ctx context.Context, apiKey, baseURL, defaultModel string, maxOut int) (*GeminiAdapter, error) {
	if apiKey == "" {
		return nil, errors.New("gemini: empty api key")
	}
	c, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
		HTTPOptions: genai.HTTPOptions{
			BaseURL: baseURL,
		},
	})
	if err != nil {
		return nil, err
	}
	if maxOut <= 0 {
		maxOut = 1024
	}
	return &GeminiAdapter{client: c, defaultModel: defaultModel, maxOut: maxOut}, nil
}

func (g *GeminiAdapter) GenerateReply(ctx context.Context, prompt string) (string, error) {
	contents := []*genai.Content{{
		Role:  genai.RoleUser,
		Parts: []*genai.Part{{Text: prompt}},
	}}
	return g.generate(ctx, contents)
}

func (g *GeminiAdapter) DescribeMedia(ctx context.Context, data []byte, contentType string, mode adapter.MediaMode) (string, error) {
	if len(data) == 0 {
		return "", errors.New("gemini: empty media payload")
	}
	contents := []*genai.Content{{
		Role: genai.RoleUser,
		Parts: []*genai.Part{
			{Text: instructionForMode(mode)},
			{InlineData: &genai.Blob{MIMEType: contentType, Data: data}},
		},
	}}
	return g.generate(ctx, contents)
}

func instructionForMode(mode adapter.MediaMode) string {
	switch mode {
	case adapter.MediaModeTranscribe:
		return "Transcribe this audio verbatim. Return only the transcript."
	case adapter.MediaModeSummarize:
		return "Summarize this attachment in two or three sentences for clinic staff."
	default:
		return "Describe what this image shows in two or three sentences for clinic staff."
	}
}

func (g *GeminiAdapter) generate(ctx context.Context, contents []*genai.Content) (string, error) {
	resp, err := g.client.Models.GenerateContent(
		ctx,
		g.defaultModel,
		contents,
		&genai.GenerateContentConfig{MaxOutputTokens: int32(g.maxOut)},
	)
	if err != nil {
		return "", err
	}
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return "", errors.New("gemini: empty response")
	}
	var sb strings.Builder
	for _, p := range resp.Candidates[0].Content.Parts {
		if p.Text != "" {
			sb.WriteString(p.Text)
		}
	}
	text := strings.TrimSpace(sb.String())
	if text == "" {
		return "", errors.New("gemini: no text in response")
	}
	return text, nil
}
