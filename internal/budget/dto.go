package budget

import (
	"github.com/codespire/finance-backend/internal"
)

// GenerateBudgetDTO is the request payload for generating a budget plan.
type GenerateBudgetDTO struct {
	Income   float64 `json:"income"`
	Expenses float64 `json:"expenses"`
	Goal     string  `json:"goal"`
}

// Validate checks the payload. All three fields are required; income and
// expenses must be positive amounts.
func (dto GenerateBudgetDTO) Validate() error {
	if dto.Income <= 0 {
		return internal.NewValidationFieldError("income", "income must be greater than 0", internal.ErrCodeInvalidIncome)
	}
	if dto.Expenses <= 0 {
		return internal.NewValidationFieldError("expenses", "expenses must be greater than 0", internal.ErrCodeInvalidExpenses)
	}
	if dto.Goal == "" {
		return internal.NewValidationFieldError("goal", "goal is required", internal.ErrCodeInvalidGoal)
	}
	return nil
}
