package ai

import (
	"context"
	"fmt"
	"time"

	"telegram-clinic-support/internal/domain/ports/adapter"
)

var _ adapter.AIServiceAdapter = (*NoopAIAdapter)(nil)

// NoopAIAdapter implements adapter.AIServiceAdapter for local/dev
// testing. It returns fixed text instead of calling a real provider.
type NoopAIAdapter struct{}

func NewNoopAIAdapter() *NoopAIAdapter {
	return &NoopAIAdapter{}
}

func (a *NoopAIAdapter) GenerateReply(ctx context.Context, prompt string) (string, error) {
	select {
	case <-time.After(100 * time.Millisecond):
	case <-ctx.Done():
		return "", ctx.Err()
	}
	return "This is a noop AI response.", nil
}

func (a *NoopAIAdapter) DescribeMedia(ctx context.Context, data []byte, contentType string, mode adapter.MediaMode) (string, error) {
	select {
	case <-time.After(100 * time.Millisecond):
	case <-ctx.Done():
		return "", ctx.Err()
	}
	return fmt.Sprintf("Noop %s of a %s attachment (%d bytes).", mode, contentType, len(data)), nil
}
