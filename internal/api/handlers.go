package api

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/lead-api/internal/service"
	"github.com/sells-group/lead-api/internal/store"
)

type handlers struct {
	svc *service.Service
}

func (h *handlers) health(w http.ResponseWriter, r *http.Request) {
	health, err := h.svc.Health(r.Context())
	if err != nil {
		zap.L().Error("health check failed", zap.Error(err))
		writeError(w, http.StatusServiceUnavailable, eris.Cause(err).Error())
		return
	}
	writeJSON(w, http.StatusOK, health)
}

func (h *handlers) listLeads(w http.ResponseWriter, r *http.Request) {
	q := service.ListQuery{
		Search: r.URL.Query().Get("search"),
		Intent: r.URL.Query().Get("intent"),
		Limit:  service.DefaultLimit,
	}

	switch sort := r.URL.Query().Get("sort"); sort {
	case "", "desc":
	case "asc":
		q.SortAsc = true
	default:
		writeError(w, http.StatusBadRequest, "sort must be 'asc' or 'desc'")
		return
	}

	if raw := r.URL.Query().Get("qualified"); raw != "" {
		v, err := strconv.ParseBool(raw)
		if err != nil {
			writeError(w, http.StatusBadRequest, "qualified must be a boolean")
			return
		}
		q.Qualified = &v
	}

	if raw := r.URL.Query().Get("skip"); raw != "" {
		v, err := strconv.Atoi(raw)
		if err != nil || v < 0 {
			writeError(w, http.StatusBadRequest, "skip must be a non-negative integer")
			return
		}
		q.Skip = v
	}

	if raw := r.URL.Query().Get("limit"); raw != "" {
		v, err := strconv.Atoi(raw)
		if err != nil || v < 1 || v > service.MaxLimit {
			writeError(w, http.StatusBadRequest,
				fmt.Sprintf("limit must be between 1 and %d", service.MaxLimit))
			return
		}
		q.Limit = v
	}

	result, err := h.svc.List(r.Context(), q)
	if err != nil {
		zap.L().Error("list leads failed", zap.Error(err))
		writeError(w, http.StatusServiceUnavailable, eris.Cause(err).Error())
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (h *handlers) getLead(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "sessionId")

	detail, err := h.svc.Get(r.Context(), sessionID)
	if err != nil {
		if eris.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, fmt.Sprintf("Lead '%s' not found", sessionID))
			return
		}
		zap.L().Error("get lead failed", zap.String("sessionId", sessionID), zap.Error(err))
		writeError(w, http.StatusServiceUnavailable, eris.Cause(err).Error())
		return
	}
	writeJSON(w, http.StatusOK, detail)
}

func (h *handlers) stats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.svc.Stats(r.Context())
	if err != nil {
		zap.L().Error("stats failed", zap.Error(err))
		writeError(w, http.StatusServiceUnavailable, eris.Cause(err).Error())
		return
	}
	writeJSON(w, http.StatusOK, stats)
}
