package sqlite

import (
	"errors"

	"github.com/codespire/finance-backend/internal"
	"github.com/codespire/finance-backend/internal/budget"
	"gorm.io/gorm"
)

// BudgetRepository implements the budget.Repository interface using GORM
type BudgetRepository struct {
	db *gorm.DB
}

func NewBudgetRepository(db *gorm.DB) budget.Repository {
	return &BudgetRepository{db: db}
}

// Create saves a new budget plan
func (r *BudgetRepository) Create(b *budget.Budget) error {
	return r.db.Create(b).Error
}

// GetLatest retrieves the most recently stored plan
func (r *BudgetRepository) GetLatest() (*budget.Budget, error) {
	var b budget.Budget
	err := r.db.Order("id DESC").First(&b).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, internal.ErrBudgetNotFound
		}
		return nil, err
	}
	return &b, nil
}

// List retrieves stored plans newest first with pagination
func (r *BudgetRepository) List(limit, offset int) ([]*budget.Budget, error) {
	var budgets []*budget.Budget
	err := r.db.Order("id DESC").
		Limit(limit).
		Offset(offset).
		Find(&budgets).Error
	return budgets, err
}
