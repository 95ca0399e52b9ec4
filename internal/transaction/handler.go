package transaction

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/codespire/finance-backend/internal"
	"github.com/codespire/finance-backend/internal/transport"
	"github.com/codespire/finance-backend/pkg/logger"
)

type ServiceAPI interface {
	IngestCSV(ctx context.Context, filename string, data []byte) ([]*Transaction, error)
	ListTransactions(category string, limit, offset int) ([]*Transaction, error)
}

type Handler struct {
	*transport.BaseHandler
	Service ServiceAPI
}

func NewHandler(service ServiceAPI) *Handler {
	lg := logger.LoggerWrapper()
	if lg == nil {
		lg = slog.Default()
	}
	return &Handler{
		BaseHandler: transport.NewBaseHandler(lg),
		Service:     service,
	}
}

func (h *Handler) UploadCSV(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(MaxCSVSize + 4096); err != nil {
		h.Logger.Error("UploadCSV: invalid multipart form", "error", err)
		h.HandleServiceError(w, internal.NewValidationError("no CSV file part", internal.ErrCodeCSVFileRequired))
		return
	}

	file, header, err := r.FormFile("csv_file")
	if err != nil {
		h.Logger.Error("UploadCSV: missing csv_file part", "error", err)
		h.HandleServiceError(w, internal.NewValidationError("no CSV file part", internal.ErrCodeCSVFileRequired))
		return
	}
	defer file.Close()

	if header.Filename == "" {
		h.HandleServiceError(w, internal.NewValidationError("no selected file", internal.ErrCodeCSVFileRequired))
		return
	}

	data, err := io.ReadAll(io.LimitReader(file, MaxCSVSize+1))
	if err != nil {
		h.Logger.Error("UploadCSV: failed to read upload", "error", err)
		h.WriteError(w, http.StatusBadRequest, "failed to read uploaded file")
		return
	}

	txs, err := h.Service.IngestCSV(r.Context(), header.Filename, data)
	if err != nil {
		h.Logger.Error("UploadCSV: service error", "error", err, "filename", header.Filename)
		h.HandleServiceError(w, err)
		return
	}

	h.Logger.Info("UploadCSV: transactions ingested",
		"count", len(txs),
		"filename", header.Filename)

	h.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"message":      fmt.Sprintf("%d transactions categorized and saved.", len(txs)),
		"transactions": txs,
	})
}

func (h *Handler) ListTransactions(w http.ResponseWriter, r *http.Request) {
	limit := 100
	offset := 0

	if limitStr := r.URL.Query().Get("limit"); limitStr != "" {
		if l, err := strconv.Atoi(limitStr); err == nil && l > 0 && l <= 500 {
			limit = l
		}
	}

	if offsetStr := r.URL.Query().Get("offset"); offsetStr != "" {
		if o, err := strconv.Atoi(offsetStr); err == nil && o >= 0 {
			offset = o
		}
	}

	category := r.URL.Query().Get("category")

	txs, err := h.Service.ListTransactions(category, limit, offset)
	if err != nil {
		h.Logger.Error("ListTransactions: service error", "error", err)
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"transactions": txs,
		"limit":        limit,
		"offset":       offset,
	})
}
