package sqlite

import (
	"github.com/codespire/finance-backend/internal/transaction"
	"gorm.io/gorm"
)

// TransactionRepository implements the transaction.Repository interface using GORM
type TransactionRepository struct {
	db *gorm.DB
}

func NewTransactionRepository(db *gorm.DB) transaction.Repository {
	return &TransactionRepository{db: db}
}

// CreateBatch inserts all rows in one transaction so a partial upload
// never lands in the table.
func (r *TransactionRepository) CreateBatch(txs []*transaction.Transaction) error {
	if len(txs) == 0 {
		return nil
	}
	return r.db.Transaction(func(tx *gorm.DB) error {
		return tx.Create(&txs).Error
	})
}

// List retrieves rows newest date first, optionally filtered by category
func (r *TransactionRepository) List(category string, limit, offset int) ([]*transaction.Transaction, error) {
	var txs []*transaction.Transaction

	query := r.db.Order("date DESC, id DESC")
	if category != "" {
		query = query.Where("category = ?", category)
	}

	err := query.Limit(limit).
		Offset(offset).
		Find(&txs).Error
	return txs, err
}
