package transaction

// Transaction is one categorized ledger row. Dates are stored as
// YYYY-MM-DD strings, matching what the categorization model emits.
type Transaction struct {
	ID          int64   `json:"id" gorm:"primaryKey"`
	Date        string  `json:"date" gorm:"not null"`
	Description string  `json:"description" gorm:"not null"`
	Amount      float64 `json:"amount" gorm:"not null"`
	Category    string  `json:"category" gorm:"not null"`
}

// TableName returns the table name for GORM
func (Transaction) TableName() string {
	return "transactions"
}

// Categories is the closed set the categorization model may use. Anything
// outside it is folded into Miscellaneous before persisting.
var Categories = []string{
	"Groceries",
	"Rent/EMI",
	"Utilities",
	"Transport",
	"Entertainment",
	"Health",
	"Savings/Investments",
	"Miscellaneous",
}

const (
	DefaultCategory    = "Miscellaneous"
	DefaultDescription = "Unknown Description"
	DateLayout         = "2006-01-02"
)

func IsValidCategory(category string) bool {
	for _, c := range Categories {
		if c == category {
			return true
		}
	}
	return false
}
