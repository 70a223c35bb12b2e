package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"

	"go.uber.org/zap"

	"github.com/calebrws/investor-portal/internal/entity"
	"github.com/calebrws/investor-portal/internal/infra/assistant"
	"github.com/calebrws/investor-portal/internal/infra/http/middleware"
)

const assistantDisabledMessage = "Assistant features are not available. Configure GEMINI_API_KEY to enable AI-powered search."

// AssistantHandler exposes the data-question endpoints. Service is nil when
// no API key is configured; every endpoint then answers 503 except History,
// which degrades to an empty list.
type AssistantHandler struct {
	Service *assistant.Service
	Log     *zap.Logger
}

func NewAssistantHandler(service *assistant.Service, log *zap.Logger) *AssistantHandler {
	return &AssistantHandler{Service: service, Log: log}
}

func (h *AssistantHandler) ProcessData(w http.ResponseWriter, r *http.Request) {
	if h.Service == nil {
		writeErrorResponse(w, http.StatusServiceUnavailable, assistantDisabledMessage)
		return
	}

	u, _ := middleware.CurrentUser(r)
	if err := h.Service.RefreshInvestorData(r.Context(), u.InvestorID); err != nil {
		h.Log.Error("assistant refresh failed", zap.String("investor_id", u.InvestorID), zap.Error(err))
		writeErrorResponse(w, http.StatusInternalServerError, "failed to process data")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"message": "data processed successfully",
	})
}

type SearchRequest struct {
	Query string `json:"query"`
}

func (h *AssistantHandler) Search(w http.ResponseWriter, r *http.Request) {
	if h.Service == nil {
		writeErrorResponse(w, http.StatusServiceUnavailable, assistantDisabledMessage)
		return
	}

	var req SearchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeErrorResponse(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	if req.Query == "" {
		writeErrorResponse(w, http.StatusBadRequest, "query is required")
		return
	}

	u, _ := middleware.CurrentUser(r)
	entry, err := h.Service.Search(r.Context(), u.InvestorID, req.Query)
	if err != nil {
		h.Log.Error("assistant search failed", zap.String("investor_id", u.InvestorID), zap.Error(err))
		writeErrorResponse(w, http.StatusInternalServerError, "search failed")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"results": []*entity.ChatEntry{entry},
	})
}

func (h *AssistantHandler) History(w http.ResponseWriter, r *http.Request) {
	if h.Service == nil {
		writeJSON(w, http.StatusOK, map[string]any{
			"success": true,
			"history": []*entity.ChatEntry{},
		})
		return
	}

	limit := 10
	if v := r.URL.Query().Get("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			limit = n
		}
	}

	u, _ := middleware.CurrentUser(r)
	history, err := h.Service.History(r.Context(), u.InvestorID, limit)
	if err != nil {
		h.Log.Error("chat history query failed", zap.String("investor_id", u.InvestorID), zap.Error(err))
		writeErrorResponse(w, http.StatusInternalServerError, "failed to load history")
		return
	}
	if history == nil {
		history = []*entity.ChatEntry{}
	}

	writeJSON(w, http.StatusOK, map[string]any{"success": true, "history": history})
}

// ProcessAll rebuilds chunks for every investor. Admin only.
func (h *AssistantHandler) ProcessAll(w http.ResponseWriter, r *http.Request) {
	if h.Service == nil {
		writeErrorResponse(w, http.StatusServiceUnavailable, assistantDisabledMessage)
		return
	}

	if err := h.Service.ProcessAllInvestorData(r.Context()); err != nil {
		h.Log.Error("assistant bulk refresh failed", zap.Error(err))
		writeErrorResponse(w, http.StatusInternalServerError, "failed to process some investor data")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"message": "successfully processed all investor data",
	})
}
