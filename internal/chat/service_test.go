package chat_test

import (
	"context"
	"log/slog"
	"net/http"
	"os"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/codespire/finance-backend/internal"
	"github.com/codespire/finance-backend/internal/advisor"
	"github.com/codespire/finance-backend/internal/chat"
)

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

var _ = Describe("ChatService", func() {
	var (
		generator *mockGenerator
		service   *chat.Service
	)

	BeforeEach(func() {
		slogger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
		generator = &mockGenerator{output: "Track your spends weekly, yeh sabse zaroori hai."}
		service = chat.NewService(generator, slogger)
	})

	Describe("Reply", func() {
		It("should forward the message with the advisor persona and search enabled", func() {
			reply, err := service.Reply(context.Background(), chat.ChatDTO{Message: "How do I start an SIP?"})
			Expect(err).NotTo(HaveOccurred())
			Expect(reply).To(Equal(generator.output))
			Expect(generator.lastPrompt).To(Equal("How do I start an SIP?"))
			Expect(generator.lastOpts.SystemInstruction).To(Equal(advisor.ChatSystemInstruction))
			Expect(generator.lastOpts.EnableSearch).To(BeTrue())
			Expect(generator.lastOpts.JSONOutput).To(BeFalse())
		})

		It("should reject an empty message without calling the generator", func() {
			_, err := service.Reply(context.Background(), chat.ChatDTO{})
			appErr, ok := internal.IsAppError(err)
			Expect(ok).To(BeTrue())
			Expect(appErr.StatusCode).To(Equal(http.StatusBadRequest))
			Expect(generator.lastPrompt).To(BeEmpty())
		})

		It("should propagate upstream status failures", func() {
			generator.err = &advisor.UpstreamError{
				Kind:       advisor.KindStatus,
				StatusCode: http.StatusForbidden,
				Message:    "invalid API key or API not enabled; check GEMINI_API_KEY and Google Cloud status",
			}

			_, err := service.Reply(context.Background(), chat.ChatDTO{Message: "hello"})
			appErr, ok := internal.IsAppError(err)
			Expect(ok).To(BeTrue())
			Expect(appErr.StatusCode).To(Equal(http.StatusForbidden))
			Expect(appErr.Code).To(Equal(internal.ErrCodeUpstreamError))
		})

		It("should map transport failures to 502", func() {
			generator.err = &advisor.UpstreamError{Kind: advisor.KindTransport, Message: "connection refused"}

			_, err := service.Reply(context.Background(), chat.ChatDTO{Message: "hello"})
			appErr, _ := internal.IsAppError(err)
			Expect(appErr.StatusCode).To(Equal(http.StatusBadGateway))
			Expect(appErr.Code).To(Equal(internal.ErrCodeUpstreamUnavailable))
		})
	})
})
