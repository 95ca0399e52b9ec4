package advisor_test

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/codespire/finance-backend/internal"
	"github.com/codespire/finance-backend/internal/advisor"
)

func candidateResponse(text string) string {
	body := map[string]interface{}{
		"candidates": []map[string]interface{}{
			{
				"content": map[string]interface{}{
					"parts": []map[string]interface{}{
						{"text": text},
					},
				},
			},
		},
	}
	raw, _ := json.Marshal(body)
	return string(raw)
}

var _ = Describe("Client", func() {
	var (
		slogger      *slog.Logger
		server       *httptest.Server
		lastPayload  map[string]interface{}
		responseCode int
		responseBody string
	)

	newClient := func(apiURL string) *advisor.Client {
		return advisor.NewClient(advisor.Config{
			APIURL:  apiURL,
			APIKey:  "test-key",
			Model:   "test-model",
			Timeout: 5 * time.Second,
		}, slogger)
	}

	BeforeEach(func() {
		slogger = slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
		responseCode = http.StatusOK
		responseBody = candidateResponse("hello")
		lastPayload = nil

		server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer r.Body.Close()
			var payload map[string]interface{}
			Expect(json.NewDecoder(r.Body).Decode(&payload)).To(Succeed())
			lastPayload = payload

			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(responseCode)
			_, _ = w.Write([]byte(responseBody))
		}))
	})

	AfterEach(func() {
		server.Close()
	})

	Describe("Generate", func() {
		Context("when the API responds with a candidate", func() {
			It("should return the generated text", func() {
				client := newClient(server.URL)

				text, err := client.Generate(context.Background(), "hi", advisor.GenerateOptions{})
				Expect(err).NotTo(HaveOccurred())
				Expect(text).To(Equal("hello"))
			})

			It("should attach the search tool for free-text generation", func() {
				client := newClient(server.URL)

				_, err := client.Generate(context.Background(), "hi", advisor.GenerateOptions{EnableSearch: true})
				Expect(err).NotTo(HaveOccurred())
				Expect(lastPayload).To(HaveKey("tools"))
			})

			It("should not attach the search tool in JSON mode", func() {
				client := newClient(server.URL)

				_, err := client.Generate(context.Background(), "hi", advisor.GenerateOptions{
					EnableSearch: true,
					JSONOutput:   true,
				})
				Expect(err).NotTo(HaveOccurred())
				Expect(lastPayload).NotTo(HaveKey("tools"))

				genConfig, ok := lastPayload["generationConfig"].(map[string]interface{})
				Expect(ok).To(BeTrue())
				Expect(genConfig["responseMimeType"]).To(Equal("application/json"))
			})

			It("should forward the system instruction", func() {
				client := newClient(server.URL)

				_, err := client.Generate(context.Background(), "hi", advisor.GenerateOptions{
					SystemInstruction: "be brief",
				})
				Expect(err).NotTo(HaveOccurred())
				Expect(lastPayload).To(HaveKey("systemInstruction"))
			})
		})

		Context("when no API key is configured", func() {
			It("should fail before any network I/O", func() {
				client := advisor.NewClient(advisor.Config{
					APIURL: server.URL,
					Model:  "test-model",
				}, slogger)

				_, err := client.Generate(context.Background(), "hi", advisor.GenerateOptions{})
				Expect(err).To(MatchError(advisor.ErrAPIKeyMissing))
				Expect(lastPayload).To(BeNil())
			})
		})

		Context("when the API is unreachable", func() {
			It("should return a transport error", func() {
				client := newClient("http://127.0.0.1:1")

				_, err := client.Generate(context.Background(), "hi", advisor.GenerateOptions{})
				Expect(err).To(HaveOccurred())

				var upstream *advisor.UpstreamError
				Expect(err).To(BeAssignableToTypeOf(upstream))
				upstream = err.(*advisor.UpstreamError)
				Expect(upstream.Kind).To(Equal(advisor.KindTransport))
				Expect(upstream.Cause).NotTo(BeNil())
			})
		})

		Context("when the API returns an error status", func() {
			It("should extract the detailed message from the error body", func() {
				responseCode = http.StatusTooManyRequests
				responseBody = `{"error":{"code":429,"message":"quota exhausted","status":"RESOURCE_EXHAUSTED"}}`
				client := newClient(server.URL)

				_, err := client.Generate(context.Background(), "hi", advisor.GenerateOptions{})
				Expect(err).To(HaveOccurred())

				upstream := err.(*advisor.UpstreamError)
				Expect(upstream.Kind).To(Equal(advisor.KindStatus))
				Expect(upstream.StatusCode).To(Equal(http.StatusTooManyRequests))
				Expect(upstream.Message).To(Equal("quota exhausted"))
			})

			It("should flag an invalid API key on 403", func() {
				responseCode = http.StatusForbidden
				responseBody = `{"error":{"code":403,"message":"Method doesn't allow callers","status":"PERMISSION_DENIED"}}`
				client := newClient(server.URL)

				_, err := client.Generate(context.Background(), "hi", advisor.GenerateOptions{})
				upstream := err.(*advisor.UpstreamError)
				Expect(upstream.Message).To(ContainSubstring("invalid API key"))
			})

			It("should flag an invalid API key when the body says so", func() {
				responseCode = http.StatusBadRequest
				responseBody = `{"error":{"code":400,"message":"API key not valid: API_KEY_INVALID","status":"INVALID_ARGUMENT"}}`
				client := newClient(server.URL)

				_, err := client.Generate(context.Background(), "hi", advisor.GenerateOptions{})
				upstream := err.(*advisor.UpstreamError)
				Expect(upstream.Message).To(ContainSubstring("invalid API key"))
			})

			It("should truncate a non-JSON error body", func() {
				responseCode = http.StatusBadGateway
				responseBody = "<html>" + string(make([]byte, 200)) + "</html>"
				client := newClient(server.URL)

				_, err := client.Generate(context.Background(), "hi", advisor.GenerateOptions{})
				upstream := err.(*advisor.UpstreamError)
				Expect(upstream.Kind).To(Equal(advisor.KindStatus))
				Expect(upstream.Message).To(ContainSubstring("non-JSON error response"))
				Expect(upstream.Message).To(ContainSubstring("..."))
			})
		})

		Context("when the API returns a malformed success body", func() {
			It("should reject an undecodable body", func() {
				responseBody = "not json at all"
				client := newClient(server.URL)

				_, err := client.Generate(context.Background(), "hi", advisor.GenerateOptions{})
				upstream := err.(*advisor.UpstreamError)
				Expect(upstream.Kind).To(Equal(advisor.KindMalformed))
			})

			It("should reject an empty candidate list", func() {
				responseBody = `{"candidates":[]}`
				client := newClient(server.URL)

				_, err := client.Generate(context.Background(), "hi", advisor.GenerateOptions{})
				upstream := err.(*advisor.UpstreamError)
				Expect(upstream.Kind).To(Equal(advisor.KindMalformed))
				Expect(upstream.Message).To(ContainSubstring("no candidates"))
			})

			It("should reject an empty candidate text", func() {
				responseBody = candidateResponse("")
				client := newClient(server.URL)

				_, err := client.Generate(context.Background(), "hi", advisor.GenerateOptions{})
				upstream := err.(*advisor.UpstreamError)
				Expect(upstream.Kind).To(Equal(advisor.KindMalformed))
			})
		})
	})

	Describe("ToAppError", func() {
		It("should map a missing API key to a 500", func() {
			appErr := advisor.ToAppError(advisor.ErrAPIKeyMissing)
			Expect(appErr.StatusCode).To(Equal(http.StatusInternalServerError))
			Expect(appErr.Code).To(Equal(internal.ErrCodeAPIKeyMissing))
		})

		It("should map a transport failure to a 502", func() {
			appErr := advisor.ToAppError(&advisor.UpstreamError{Kind: advisor.KindTransport, Message: "unreachable"})
			Expect(appErr.StatusCode).To(Equal(http.StatusBadGateway))
			Expect(appErr.Code).To(Equal(internal.ErrCodeUpstreamUnavailable))
		})

		It("should propagate the upstream status code", func() {
			appErr := advisor.ToAppError(&advisor.UpstreamError{
				Kind:       advisor.KindStatus,
				StatusCode: http.StatusTooManyRequests,
				Message:    "quota exhausted",
			})
			Expect(appErr.StatusCode).To(Equal(http.StatusTooManyRequests))
			Expect(appErr.Code).To(Equal(internal.ErrCodeUpstreamError))
		})

		It("should map malformed output to a 502", func() {
			appErr := advisor.ToAppError(&advisor.UpstreamError{Kind: advisor.KindMalformed, Message: "no candidates"})
			Expect(appErr.StatusCode).To(Equal(http.StatusBadGateway))
			Expect(appErr.Code).To(Equal(internal.ErrCodeUpstreamDecode))
		})
	})
})
