package chat

import (
	"context"
	"log/slog"

	"github.com/codespire/finance-backend/internal/advisor"
)

// Generator is the slice of the advisor client this service needs.
type Generator interface {
	Generate(ctx context.Context, prompt string, opts advisor.GenerateOptions) (string, error)
}

// Service forwards chat messages to the advisor persona. Nothing is
// persisted; each exchange stands alone.
type Service struct {
	generator Generator
	logger    *slog.Logger
}

func NewService(generator Generator, logger *slog.Logger) *Service {
	return &Service{
		generator: generator,
		logger:    logger,
	}
}

// Reply sends the user's message with the advisor persona and search
// grounding enabled, returning the model's free-text answer.
func (s *Service) Reply(ctx context.Context, dto ChatDTO) (string, error) {
	if err := dto.Validate(); err != nil {
		s.logger.Error("chat validation failed", "error", err)
		return "", err
	}

	reply, err := s.generator.Generate(ctx, dto.Message, advisor.GenerateOptions{
		SystemInstruction: advisor.ChatSystemInstruction,
		EnableSearch:      true,
	})
	if err != nil {
		s.logger.Error("chat generation failed", "error", err)
		return "", advisor.ToAppError(err)
	}

	return reply, nil
}
