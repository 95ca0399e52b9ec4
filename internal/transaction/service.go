package transaction

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/codespire/finance-backend/internal"
	"github.com/codespire/finance-backend/internal/advisor"
	"github.com/codespire/finance-backend/internal/core/events"
)

// Generator is the slice of the advisor client this service needs.
type Generator interface {
	Generate(ctx context.Context, prompt string, opts advisor.GenerateOptions) (string, error)
}

// Repository interface defines the data access methods for transactions
type Repository interface {
	CreateBatch(txs []*Transaction) error
	List(category string, limit, offset int) ([]*Transaction, error)
}

// EventPublisher publishes domain events without blocking the caller.
type EventPublisher interface {
	Publish(ctx context.Context, event events.Event) error
}

// Service handles CSV ingestion and transaction listing
type Service struct {
	repo      Repository
	generator Generator
	events    EventPublisher
	logger    *slog.Logger
}

func NewService(repo Repository, generator Generator, bus EventPublisher, logger *slog.Logger) *Service {
	return &Service{
		repo:      repo,
		generator: generator,
		events:    bus,
		logger:    logger,
	}
}

// IngestCSV runs the upload path: preflight the CSV, have the model
// categorize the raw rows, normalize every row so the NOT NULL columns
// hold, and persist the batch.
func (s *Service) IngestCSV(ctx context.Context, filename string, data []byte) ([]*Transaction, error) {
	if err := ValidateCSV(data); err != nil {
		s.logger.Error("csv preflight failed", "error", err, "filename", filename)
		return nil, err
	}

	out, err := s.generator.Generate(ctx, advisor.CategorizePrompt(string(data)), advisor.GenerateOptions{
		SystemInstruction: advisor.CategorizeSystemInstruction(Categories),
		JSONOutput:        true,
	})
	if err != nil {
		s.logger.Error("transaction categorization failed", "error", err, "filename", filename)
		return nil, advisor.ToAppError(err)
	}

	var rows []CategorizedTransaction
	if err := json.Unmarshal([]byte(out), &rows); err != nil {
		s.logger.Error("model returned invalid JSON transactions", "error", err)
		return nil, advisor.MalformedContent("AI returned invalid JSON format")
	}

	if len(rows) == 0 {
		return nil, advisor.MalformedContent("AI returned no transactions")
	}

	now := time.Now()
	txs := make([]*Transaction, 0, len(rows))
	var totalSpent float64
	for _, row := range rows {
		tx := row.Normalize(now)
		totalSpent += tx.Amount
		txs = append(txs, tx)
	}

	if err := s.repo.CreateBatch(txs); err != nil {
		s.logger.Error("failed to save transactions", "error", err, "count", len(txs))
		return nil, internal.NewInternalError("failed to save transactions", err)
	}

	if s.events != nil {
		_ = s.events.Publish(ctx, events.NewTransactionsIngestedEvent(len(txs), totalSpent, filename))
	}

	s.logger.Info("transactions categorized and saved",
		"count", len(txs),
		"total_spent", totalSpent,
		"filename", filename)

	return txs, nil
}

// ListTransactions returns stored rows, newest date first.
func (s *Service) ListTransactions(category string, limit, offset int) ([]*Transaction, error) {
	if category != "" && !IsValidCategory(category) {
		return nil, internal.NewValidationFieldError("category", "unknown category", internal.ErrCodeValidationFailed)
	}

	txs, err := s.repo.List(category, limit, offset)
	if err != nil {
		s.logger.Error("failed to list transactions", "error", err)
		return nil, err
	}

	return txs, nil
}
