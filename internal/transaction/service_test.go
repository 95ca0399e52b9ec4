package transaction_test

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/codespire/finance-backend/internal"
	"github.com/codespire/finance-backend/internal/advisor"
	"github.com/codespire/finance-backend/internal/core/events"
	"github.com/codespire/finance-backend/internal/transaction"
)

// Mock repository for testing
type mockTransactionRepository struct {
	stored      []*transaction.Transaction
	createError error
	listError   error
	nextID      int64
}

func newMockTransactionRepository() *mockTransactionRepository {
	return &mockTransactionRepository{nextID: 1}
}

func (m *mockTransactionRepository) CreateBatch(txs []*transaction.Transaction) error {
	if m.createError != nil {
		return m.createError
	}
	for _, tx := range txs {
		tx.ID = m.nextID
		m.nextID++
		m.stored = append(m.stored, tx)
	}
	return nil
}

func (m *mockTransactionRepository) List(category string, limit, offset int) ([]*transaction.Transaction, error) {
	if m.listError != nil {
		return nil, m.listError
	}

	filtered := make([]*transaction.Transaction, 0, len(m.stored))
	for _, tx := range m.stored {
		if category == "" || tx.Category == category {
			filtered = append(filtered, tx)
		}
	}

	if offset >= len(filtered) {
		return []*transaction.Transaction{}, nil
	}
	end := offset + limit
	if end > len(filtered) {
		end = len(filtered)
	}
	return filtered[offset:end], nil
}

// Mock generator for testing
type mockGenerator struct {
	output     string
	err        error
	lastPrompt string
	lastOpts   advisor.GenerateOptions
}

func (m *mockGenerator) Generate(ctx context.Context, prompt string, opts advisor.GenerateOptions) (string, error) {
	m.lastPrompt = prompt
	m.lastOpts = opts
	if m.err != nil {
		return "", m.err
	}
	return m.output, nil
}

var _ = Describe("TransactionService", func() {
	var (
		repo      *mockTransactionRepository
		generator *mockGenerator
		service   *transaction.Service
		slogger   *slog.Logger
	)

	csvData := []byte("date,description,amount\n2025-08-01,Big Bazaar,450.50\n2025-08-02,Uber,220\n")

	BeforeEach(func() {
		slogger = slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
		repo = newMockTransactionRepository()
		generator = &mockGenerator{
			output: `[
				{"date":"2025-08-01","description":"Big Bazaar","amount":450.50,"category":"Groceries"},
				{"date":"2025-08-02","description":"Uber","amount":220,"category":"Transport"}
			]`,
		}
		service = transaction.NewService(repo, generator, events.NewEventBus(slogger), slogger)
	})

	Describe("IngestCSV", func() {
		Context("when the upload is valid", func() {
			It("should persist the categorized rows", func() {
				txs, err := service.IngestCSV(context.Background(), "bank.csv", csvData)
				Expect(err).NotTo(HaveOccurred())
				Expect(txs).To(HaveLen(2))
				Expect(repo.stored).To(HaveLen(2))
				Expect(txs[0].Category).To(Equal("Groceries"))
				Expect(txs[1].Amount).To(Equal(220.0))
			})

			It("should request strict JSON with the CSV embedded in the prompt", func() {
				_, err := service.IngestCSV(context.Background(), "bank.csv", csvData)
				Expect(err).NotTo(HaveOccurred())
				Expect(generator.lastOpts.JSONOutput).To(BeTrue())
				Expect(generator.lastOpts.EnableSearch).To(BeFalse())
				Expect(generator.lastOpts.SystemInstruction).To(ContainSubstring("Groceries"))
				Expect(generator.lastPrompt).To(ContainSubstring("Big Bazaar"))
			})

			It("should normalize rows the model left incomplete", func() {
				generator.output = `[{"description":"Chai","amount":"1,200.50","category":"Street Food"}]`

				txs, err := service.IngestCSV(context.Background(), "bank.csv", csvData)
				Expect(err).NotTo(HaveOccurred())
				Expect(txs).To(HaveLen(1))
				Expect(txs[0].Date).NotTo(BeEmpty())
				Expect(txs[0].Amount).To(Equal(1200.50))
				Expect(txs[0].Category).To(Equal(transaction.DefaultCategory))
			})
		})

		Context("when the CSV preflight fails", func() {
			It("should reject an empty file without calling the generator", func() {
				_, err := service.IngestCSV(context.Background(), "empty.csv", nil)
				appErr, ok := internal.IsAppError(err)
				Expect(ok).To(BeTrue())
				Expect(appErr.StatusCode).To(Equal(http.StatusBadRequest))
				Expect(generator.lastPrompt).To(BeEmpty())
			})
		})

		Context("when the upstream call fails", func() {
			It("should propagate the upstream status code", func() {
				generator.err = &advisor.UpstreamError{
					Kind:       advisor.KindStatus,
					StatusCode: http.StatusTooManyRequests,
					Message:    "quota exhausted",
				}

				_, err := service.IngestCSV(context.Background(), "bank.csv", csvData)
				appErr, ok := internal.IsAppError(err)
				Expect(ok).To(BeTrue())
				Expect(appErr.StatusCode).To(Equal(http.StatusTooManyRequests))
				Expect(appErr.Code).To(Equal(internal.ErrCodeUpstreamError))
				Expect(repo.stored).To(BeEmpty())
			})

			It("should map transport failures to 502", func() {
				generator.err = &advisor.UpstreamError{Kind: advisor.KindTransport, Message: "unreachable"}

				_, err := service.IngestCSV(context.Background(), "bank.csv", csvData)
				appErr, _ := internal.IsAppError(err)
				Expect(appErr.StatusCode).To(Equal(http.StatusBadGateway))
			})
		})

		Context("when the model returns unusable output", func() {
			It("should fail on non-JSON text", func() {
				generator.output = "Sure! Here are your transactions:"

				_, err := service.IngestCSV(context.Background(), "bank.csv", csvData)
				appErr, ok := internal.IsAppError(err)
				Expect(ok).To(BeTrue())
				Expect(appErr.Code).To(Equal(internal.ErrCodeUpstreamDecode))
				Expect(repo.stored).To(BeEmpty())
			})

			It("should fail on an empty array", func() {
				generator.output = "[]"

				_, err := service.IngestCSV(context.Background(), "bank.csv", csvData)
				appErr, ok := internal.IsAppError(err)
				Expect(ok).To(BeTrue())
				Expect(appErr.Code).To(Equal(internal.ErrCodeUpstreamDecode))
			})
		})

		Context("when the repository fails", func() {
			It("should return an internal error", func() {
				repo.createError = errors.New("database is locked")

				_, err := service.IngestCSV(context.Background(), "bank.csv", csvData)
				appErr, ok := internal.IsAppError(err)
				Expect(ok).To(BeTrue())
				Expect(appErr.StatusCode).To(Equal(http.StatusInternalServerError))
			})
		})
	})

	Describe("ListTransactions", func() {
		BeforeEach(func() {
			_, err := service.IngestCSV(context.Background(), "bank.csv", csvData)
			Expect(err).NotTo(HaveOccurred())
		})

		It("should return stored transactions", func() {
			txs, err := service.ListTransactions("", 100, 0)
			Expect(err).NotTo(HaveOccurred())
			Expect(txs).To(HaveLen(2))
		})

		It("should filter by category", func() {
			txs, err := service.ListTransactions("Transport", 100, 0)
			Expect(err).NotTo(HaveOccurred())
			Expect(txs).To(HaveLen(1))
			Expect(txs[0].Description).To(Equal("Uber"))
		})

		It("should reject an unknown category", func() {
			_, err := service.ListTransactions("Gambling", 100, 0)
			appErr, ok := internal.IsAppError(err)
			Expect(ok).To(BeTrue())
			Expect(appErr.StatusCode).To(Equal(http.StatusBadRequest))
		})
	})
})
