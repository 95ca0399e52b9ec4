package chat_test

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/codespire/finance-backend/internal/advisor"
	"github.com/codespire/finance-backend/internal/chat"
)

var _ = Describe("Chat Handler", func() {
	var (
		generator *mockGenerator
		handler   *chat.Handler
	)

	BeforeEach(func() {
		slogger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
		generator = &mockGenerator{output: "Pehle emergency fund banao, phir invest karo."}
		handler = chat.NewHandler(chat.NewService(generator, slogger))
	})

	Describe("POST /chat", func() {
		It("should return the model's reply", func() {
			body, _ := json.Marshal(map[string]string{"message": "Should I invest in gold?"})

			req := httptest.NewRequest(http.MethodPost, "/api/v1/chat", bytes.NewReader(body))
			rec := httptest.NewRecorder()
			handler.Chat(rec, req)

			Expect(rec.Code).To(Equal(http.StatusOK))

			var resp map[string]string
			Expect(json.Unmarshal(rec.Body.Bytes(), &resp)).To(Succeed())
			Expect(resp["reply"]).To(Equal(generator.output))
		})

		It("should reject a missing message with 400", func() {
			req := httptest.NewRequest(http.MethodPost, "/api/v1/chat", bytes.NewReader([]byte(`{}`)))
			rec := httptest.NewRecorder()
			handler.Chat(rec, req)

			Expect(rec.Code).To(Equal(http.StatusBadRequest))

			var resp map[string]interface{}
			Expect(json.Unmarshal(rec.Body.Bytes(), &resp)).To(Succeed())
			Expect(resp).To(HaveKey("error"))
		})

		It("should reject an invalid body with 400", func() {
			req := httptest.NewRequest(http.MethodPost, "/api/v1/chat", bytes.NewReader([]byte("not json")))
			rec := httptest.NewRecorder()
			handler.Chat(rec, req)

			Expect(rec.Code).To(Equal(http.StatusBadRequest))
		})

		It("should surface upstream failures in the envelope", func() {
			generator.err = &advisor.UpstreamError{
				Kind:       advisor.KindStatus,
				StatusCode: http.StatusServiceUnavailable,
				Message:    "model overloaded",
			}
			body, _ := json.Marshal(map[string]string{"message": "hello"})

			req := httptest.NewRequest(http.MethodPost, "/api/v1/chat", bytes.NewReader(body))
			rec := httptest.NewRecorder()
			handler.Chat(rec, req)

			Expect(rec.Code).To(Equal(http.StatusServiceUnavailable))

			var resp map[string]interface{}
			Expect(json.Unmarshal(rec.Body.Bytes(), &resp)).To(Succeed())
			errObj := resp["error"].(map[string]interface{})
			Expect(errObj["code"]).To(Equal("UPSTREAM_ERROR"))
		})
	})
})
