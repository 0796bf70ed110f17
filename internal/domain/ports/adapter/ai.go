package adapter

import "context"

// MediaMode selects how the AI provider should analyze an attachment.
type MediaMode string

const (
	MediaModeDescribe   MediaMode = "describe"   // images
	MediaModeTranscribe MediaMode = "transcribe" // voice and audio
	MediaModeSummarize  MediaMode = "summarize"  // video and documents
)

// AIServiceAdapter is the port for the generative-AI collaborator.
// Both calls may fail; callers must degrade to a fallback reply and
// never surface provider errors to the end user.
type AIServiceAdapter interface {
	// GenerateReply returns assistant text for a single prompt.
	GenerateReply(ctx context.Context, prompt string) (string, error)

	// DescribeMedia analyzes raw attachment bytes in the given mode.
	DescribeMedia(ctx context.Context, data []byte, contentType string, mode MediaMode) (string, error)
}
