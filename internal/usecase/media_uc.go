package usecase

import (
	"context"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"telegram-clinic-support/internal/domain/model"
	"telegram-clinic-support/internal/domain/ports/adapter"
	"telegram-clinic-support/internal/infra/i18n"
	"telegram-clinic-support/internal/infra/logging"
	"telegram-clinic-support/internal/infra/metrics"
)

const aiTimeout = 10 * time.Second

// Compile-time check
var _ MediaUseCase = (*mediaUC)(nil)

// MediaUseCase maps a media kind to an AI analysis mode and formats the
// result. AI failures never propagate: every path ends in a reply.
type MediaUseCase interface {
	Analyze(ctx context.Context, kind model.MessageKind, contentType string, data []byte) model.OutboundReply
}

type mediaUC struct {
	ai       adapter.AIServiceAdapter
	provider string // label for metrics only
	tr       *i18n.Translator
	log      *zerolog.Logger
}

func NewMediaUseCase(ai adapter.AIServiceAdapter, provider string, tr *i18n.Translator, logger *zerolog.Logger) *mediaUC {
	return &mediaUC{ai: ai, provider: provider, tr: tr, log: logger}
}

// mediaRoute is one row of the (kind, contentType prefix) dispatch table.
type mediaRoute struct {
	mode        adapter.MediaMode
	labelKey    string
	fallbackKey string
}

func routeFor(kind model.MessageKind, contentType string) (mediaRoute, bool) {
	switch {
	case kind == model.KindImage || strings.HasPrefix(contentType, "image/"):
		return mediaRoute{adapter.MediaModeDescribe, "media_image_label", "media_fallback_image"}, true
	case kind == model.KindVoice || kind == model.KindAudio || strings.HasPrefix(contentType, "audio/"):
		return mediaRoute{adapter.MediaModeTranscribe, "media_audio_label", "media_fallback_audio"}, true
	case kind == model.KindVideo || strings.HasPrefix(contentType, "video/"):
		return mediaRoute{adapter.MediaModeSummarize, "media_video_label", "media_fallback_video"}, true
	case kind == model.KindDocument && strings.HasPrefix(contentType, "application/pdf"):
		return mediaRoute{adapter.MediaModeSummarize, "media_document_label", "media_fallback_document"}, true
	default:
		return mediaRoute{}, false
	}
}

func (m *mediaUC) Analyze(ctx context.Context, kind model.MessageKind, contentType string, data []byte) model.OutboundReply {
	defer logging.TraceDuration(m.log, "MediaUC.Analyze")()

	route, ok := routeFor(kind, contentType)
	if !ok {
		// Unknown content type: manual review, no AI call.
		return model.OutboundReply{Kind: model.ReplyMediaAnalysis, Text: m.tr.T("media_fallback_unknown")}
	}
	if len(data) == 0 {
		// Download failed upstream; nothing to analyze.
		return model.OutboundReply{Kind: model.ReplyMediaAnalysis, Text: m.tr.T(route.fallbackKey)}
	}

	actx, cancel := context.WithTimeout(ctx, aiTimeout)
	defer cancel()

	start := time.Now()
	text, err := m.ai.DescribeMedia(actx, data, contentType, route.mode)
	metrics.ObserveAICall(m.provider, string(route.mode), int(time.Since(start).Milliseconds()), err == nil)
	if err != nil {
		metrics.IncAIFallback(string(route.mode))
		logging.With(ctx, m.log).Warn().Err(err).
			Str("content_type", contentType).
			Str("mode", string(route.mode)).
			Msg("media analysis degraded to manual review")
		return model.OutboundReply{Kind: model.ReplyMediaAnalysis, Text: m.tr.T(route.fallbackKey)}
	}

	var sb strings.Builder
	sb.WriteString(m.tr.T(route.labelKey))
	sb.WriteString("\n")
	sb.WriteString(strings.TrimSpace(text))
	sb.WriteString("\n\n")
	sb.WriteString(m.tr.T("media_disclaimer"))
	return model.OutboundReply{Kind: model.ReplyMediaAnalysis, Text: sb.String()}
}
