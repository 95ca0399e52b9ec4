package transaction

import (
	"strconv"
	"strings"
	"time"
)

// CategorizedTransaction is one row as returned by the model. Fields are
// deliberately loose: the model sometimes omits keys or returns amounts as
// strings, and a single sloppy row must not fail the whole upload.
type CategorizedTransaction struct {
	Date        string      `json:"date"`
	Description string      `json:"description"`
	Amount      interface{} `json:"amount"`
	Category    string      `json:"category"`
}

// Normalize fills the NOT NULL columns with defaults where the model left
// gaps: missing date becomes today, unparseable amounts become 0, unknown
// categories fold into Miscellaneous.
func (t CategorizedTransaction) Normalize(now time.Time) *Transaction {
	date := strings.TrimSpace(t.Date)
	if date == "" {
		date = now.Format(DateLayout)
	}

	description := strings.TrimSpace(t.Description)
	if description == "" {
		description = DefaultDescription
	}

	category := strings.TrimSpace(t.Category)
	if !IsValidCategory(category) {
		category = DefaultCategory
	}

	return &Transaction{
		Date:        date,
		Description: description,
		Amount:      parseAmount(t.Amount),
		Category:    category,
	}
}

func parseAmount(v interface{}) float64 {
	switch amount := v.(type) {
	case float64:
		return amount
	case string:
		cleaned := strings.ReplaceAll(strings.TrimSpace(amount), ",", "")
		if parsed, err := strconv.ParseFloat(cleaned, 64); err == nil {
			return parsed
		}
	}
	return 0
}
