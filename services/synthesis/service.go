// Package synthesis turns sanitized results plus a transparency
// statement into the final natural-language answer. Fluency and
// disclosure are this stage's job; non-leakage enforcement belongs to
// the sanitizer.
package synthesis

import (
	"context"
	"encoding/json"
	"strings"

	"go.uber.org/zap"

	"github.com/junction-boxers/fleetgate/llm"
	"github.com/junction-boxers/fleetgate/models"
	"github.com/junction-boxers/fleetgate/services"
)

// Service implements the response synthesizer.
type Service struct {
	client llm.Client
	logger *zap.Logger
}

// NewService creates a new synthesis service
func NewService(client llm.Client, logger *zap.Logger) *Service {
	return &Service{
		client: client,
		logger: logger,
	}
}

// Synthesize produces the user-facing paragraph. The raw result grounds
// the answer factually; only the sanitized subset is licensed for
// quotation. A model-call failure is fatal for the request.
func (s *Service) Synthesize(ctx context.Context, question string, raw *models.RetrievalResult, sanitized *models.SanitizedResult, transparency string) (string, error) {
	rawJSON, err := json.Marshal(rawPayload(raw))
	if err != nil {
		return "", services.NewSynthesisError("failed to encode raw result", err)
	}
	sanitizedJSON, err := json.Marshal(sanitized.Records)
	if err != nil {
		return "", services.NewSynthesisError("failed to encode sanitized result", err)
	}

	prompt := buildPrompt(question, string(rawJSON), string(sanitizedJSON), transparency)

	s.logger.Debug("sending synthesis prompt",
		zap.String("prompt_version", promptVersion),
		zap.Int("prompt_len", len(prompt)))

	text, err := s.client.Generate(ctx, prompt)
	if err != nil {
		return "", services.NewSynthesisError("synthesis call failed", err)
	}

	return strings.TrimSpace(text), nil
}

func rawPayload(raw *models.RetrievalResult) interface{} {
	if raw == nil {
		return nil
	}
	if raw.IsAggregate() {
		return raw.Aggregate
	}
	return raw.Records
}
