package cmd

import (
	"fmt"
	"log"
	"time"

	"github.com/codespire/finance-backend/internal/budget"
	"github.com/codespire/finance-backend/internal/transaction"
	"github.com/spf13/cobra"
)

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Seed the database with sample data",
	Long:  `Seed the database with sample data for development and testing purposes.`,
	Run: func(cmd *cobra.Command, args []string) {
		cfg, err := loadConfig(".")
		if err != nil {
			log.Fatalf("failed to load config: %v", err)
		}

		db, err := initDB(cfg.Database)
		if err != nil {
			log.Fatalf("failed to init db: %v", err)
		}

		if clearData {
			if err := db.Exec("DELETE FROM transactions").Error; err != nil {
				log.Fatalf("failed to clear transactions: %v", err)
			}
			if err := db.Exec("DELETE FROM budgets").Error; err != nil {
				log.Fatalf("failed to clear budgets: %v", err)
			}
			fmt.Println("Cleared existing data")
		}

		today := time.Now().Format(transaction.DateLayout)
		sampleTransactions := []*transaction.Transaction{
			{Date: today, Description: "Big Bazaar groceries", Amount: 2450.50, Category: "Groceries"},
			{Date: today, Description: "Monthly rent", Amount: 18000, Category: "Rent/EMI"},
			{Date: today, Description: "Electricity bill", Amount: 1320.75, Category: "Utilities"},
			{Date: today, Description: "Metro card recharge", Amount: 500, Category: "Transport"},
			{Date: today, Description: "SIP mutual fund", Amount: 5000, Category: "Savings/Investments"},
		}

		for _, tx := range sampleTransactions {
			if err := db.Create(tx).Error; err != nil {
				log.Fatalf("failed to seed transaction: %v", err)
			}
		}
		fmt.Printf("Seeded %d transactions\n", len(sampleTransactions))

		samplePlan := `{"needs":{"percent":50,"amount":25000},"wants":{"percent":30,"amount":15000},"savings":{"percent":20,"amount":10000},"advice":"Apne income ka 20% pehle savings mein daalein."}`
		sampleBudget := &budget.Budget{
			Income:   50000,
			Expenses: 28000,
			Goal:     "Emergency fund of 3 lakh",
			PlanJSON: samplePlan,
		}

		if err := db.Create(sampleBudget).Error; err != nil {
			log.Fatalf("failed to seed budget: %v", err)
		}
		fmt.Println("Seeded sample budget plan")
	},
}
