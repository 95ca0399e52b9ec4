package events

import (
	"time"

	"github.com/google/uuid"
)

const (
	EventTypeBudgetPlanGenerated  = "budget.plan_generated"
	EventTypeTransactionsIngested = "transactions.ingested"
)

type BudgetPlanGeneratedEvent struct {
	BaseEvent
	BudgetID int64   `json:"budget_id"`
	Income   float64 `json:"income"`
	Expenses float64 `json:"expenses"`
	Goal     string  `json:"goal"`
}

func NewBudgetPlanGeneratedEvent(budgetID int64, income, expenses float64, goal string) *BudgetPlanGeneratedEvent {
	return &BudgetPlanGeneratedEvent{
		BaseEvent: BaseEvent{
			ID:        uuid.New().String(),
			Type:      EventTypeBudgetPlanGenerated,
			Timestamp: time.Now(),
			Data: map[string]interface{}{
				"budget_id": budgetID,
				"income":    income,
				"expenses":  expenses,
				"goal":      goal,
			},
		},
		BudgetID: budgetID,
		Income:   income,
		Expenses: expenses,
		Goal:     goal,
	}
}

type TransactionsIngestedEvent struct {
	BaseEvent
	Count      int     `json:"count"`
	TotalSpent float64 `json:"total_spent"`
	SourceFile string  `json:"source_file"`
}

func NewTransactionsIngestedEvent(count int, totalSpent float64, sourceFile string) *TransactionsIngestedEvent {
	return &TransactionsIngestedEvent{
		BaseEvent: BaseEvent{
			ID:        uuid.New().String(),
			Type:      EventTypeTransactionsIngested,
			Timestamp: time.Now(),
			Data: map[string]interface{}{
				"count":       count,
				"total_spent": totalSpent,
				"source_file": sourceFile,
			},
		},
		Count:      count,
		TotalSpent: totalSpent,
		SourceFile: sourceFile,
	}
}
