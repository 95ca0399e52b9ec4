package budget

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/codespire/finance-backend/internal/transport"
	"github.com/codespire/finance-backend/pkg/logger"
)

type ServiceAPI interface {
	GeneratePlan(ctx context.Context, dto GenerateBudgetDTO) (*Budget, interface{}, error)
	LatestPlan() (*Budget, interface{}, error)
	History(limit, offset int) ([]*Budget, error)
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

func (h *Handler) GenerateBudget(w http.ResponseWriter, r *http.Request) {
	var dto GenerateBudgetDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.Logger.Error("GenerateBudget: invalid request body", "error", err)
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	b, plan, err := h.Service.GeneratePlan(r.Context(), dto)
	if err != nil {
		h.Logger.Error("GenerateBudget: service error", "error", err)
		h.HandleServiceError(w, err)
		return
	}

	h.Logger.Info("GenerateBudget: plan generated",
		"budget_id", b.ID,
		"income", b.Income,
		"goal", b.Goal)

	h.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"message": "Budget plan generated and saved.",
		"plan":    plan,
	})
}

func (h *Handler) GetLatestBudget(w http.ResponseWriter, r *http.Request) {
	b, plan, err := h.Service.LatestPlan()
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"plan":       plan,
		"created_at": b.CreatedAt,
	})
}

func (h *Handler) GetHistory(w http.ResponseWriter, r *http.Request) {
	limit := 20
	offset := 0

	if limitStr := r.URL.Query().Get("limit"); limitStr != "" {
		if l, err := strconv.Atoi(limitStr); err == nil && l > 0 && l <= 100 {
			limit = l
		}
	}

	if offsetStr := r.URL.Query().Get("offset"); offsetStr != "" {
		if o, err := strconv.Atoi(offsetStr); err == nil && o >= 0 {
			offset = o
		}
	}

	budgets, err := h.Service.History(limit, offset)
	if err != nil {
		h.Logger.Error("GetHistory: service error", "error", err)
		h.WriteError(w, http.StatusInternalServerError, "failed to get budget history")
		return
	}

	h.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"budgets": budgets,
		"limit":   limit,
		"offset":  offset,
	})
}
