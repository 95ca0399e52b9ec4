package budget

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/codespire/finance-backend/internal"
	"github.com/codespire/finance-backend/internal/advisor"
	"github.com/codespire/finance-backend/internal/core/events"
)

// Generator is the slice of the advisor client this service needs.
type Generator interface {
	Generate(ctx context.Context, prompt string, opts advisor.GenerateOptions) (string, error)
}

// Repository interface defines the data access methods for budgets
type Repository interface {
	Create(b *Budget) error
	GetLatest() (*Budget, error)
	List(limit, offset int) ([]*Budget, error)
}

// EventPublisher publishes domain events without blocking the caller.
type EventPublisher interface {
	Publish(ctx context.Context, event events.Event) error
}

// Service handles budget plan generation and retrieval
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

// GeneratePlan asks the model for a 50/30/20 plan in strict JSON mode,
// verifies the result actually parses, and persists it. Returns the saved
// row plus the decoded plan for the response body.
func (s *Service) GeneratePlan(ctx context.Context, dto GenerateBudgetDTO) (*Budget, interface{}, error) {
	if err := dto.Validate(); err != nil {
		s.logger.Error("budget validation failed", "error", err)
		return nil, nil, err
	}

	prompt := advisor.BudgetPrompt(dto.Income, dto.Expenses, dto.Goal)

	planStr, err := s.generator.Generate(ctx, prompt, advisor.GenerateOptions{
		SystemInstruction: advisor.BudgetSystemInstruction,
		JSONOutput:        true,
	})
	if err != nil {
		s.logger.Error("budget plan generation failed", "error", err)
		return nil, nil, advisor.ToAppError(err)
	}

	var plan interface{}
	if err := json.Unmarshal([]byte(planStr), &plan); err != nil {
		s.logger.Error("model returned invalid JSON plan", "error", err)
		return nil, nil, advisor.MalformedContent("AI returned invalid JSON format")
	}

	b := &Budget{
		Income:   dto.Income,
		Expenses: dto.Expenses,
		Goal:     dto.Goal,
		PlanJSON: planStr,
	}

	if err := s.repo.Create(b); err != nil {
		s.logger.Error("failed to save budget plan", "error", err)
		return nil, nil, internal.NewInternalError("failed to save budget plan", err)
	}

	if s.events != nil {
		_ = s.events.Publish(ctx, events.NewBudgetPlanGeneratedEvent(b.ID, b.Income, b.Expenses, b.Goal))
	}

	s.logger.Info("budget plan generated and saved",
		"budget_id", b.ID,
		"income", b.Income,
		"expenses", b.Expenses,
		"goal", b.Goal)

	return b, plan, nil
}

// LatestPlan returns the most recent plan, decoded for the response.
func (s *Service) LatestPlan() (*Budget, interface{}, error) {
	b, err := s.repo.GetLatest()
	if err != nil {
		return nil, nil, err
	}

	var plan interface{}
	if err := json.Unmarshal([]byte(b.PlanJSON), &plan); err != nil {
		s.logger.Error("stored plan is not valid JSON", "error", err, "budget_id", b.ID)
		return nil, nil, internal.NewInternalError("stored budget plan is corrupt", err)
	}

	return b, plan, nil
}

// History returns past plans, newest first.
func (s *Service) History(limit, offset int) ([]*Budget, error) {
	budgets, err := s.repo.List(limit, offset)
	if err != nil {
		s.logger.Error("failed to list budget plans", "error", err)
		return nil, err
	}

	return budgets, nil
}
