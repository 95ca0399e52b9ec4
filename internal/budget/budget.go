package budget

import (
	"time"
)

// Budget represents one generated budget plan. PlanJSON holds the raw
// model output verbatim so the stored plan always matches what the client
// originally received.
type Budget struct {
	ID        int64     `json:"id" gorm:"primaryKey"`
	Income    float64   `json:"income" gorm:"not null"`
	Expenses  float64   `json:"expenses" gorm:"not null"`
	Goal      string    `json:"goal" gorm:"not null"`
	PlanJSON  string    `json:"-" gorm:"column:plan_json;not null"`
	CreatedAt time.Time `json:"created_at" gorm:"column:created_at;autoCreateTime"`
}

// TableName returns the table name for GORM
func (Budget) TableName() string {
	return "budgets"
}
