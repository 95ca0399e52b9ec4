package chat

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/codespire/finance-backend/internal/transport"
	"github.com/codespire/finance-backend/pkg/logger"
)

type ServiceAPI interface {
	Reply(ctx context.Context, dto ChatDTO) (string, error)
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

func (h *Handler) Chat(w http.ResponseWriter, r *http.Request) {
	var dto ChatDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.Logger.Error("Chat: invalid request body", "error", err)
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	reply, err := h.Service.Reply(r.Context(), dto)
	if err != nil {
		h.Logger.Error("Chat: service error", "error", err)
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, map[string]string{"reply": reply})
}
