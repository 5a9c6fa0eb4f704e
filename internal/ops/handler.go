package ops

import (
	"context"
	"database/sql"
	"encoding/json"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"buyback-backend/internal/domain"
	"buyback-backend/internal/logger"
	"buyback-backend/internal/repository"
)

// Handler exposes the worker's small operational HTTP surface: liveness and
// a status snapshot. The customer-facing API lives in a separate frontend
// and is not served here.
type Handler struct {
	db         *sql.DB
	orderRepo  repository.OrderRepository
	outboxRepo repository.OutboxRepository
}

func NewHandler(db *sql.DB, orderRepo repository.OrderRepository, outboxRepo repository.OutboxRepository) *Handler {
	return &Handler{db: db, orderRepo: orderRepo, outboxRepo: outboxRepo}
}

// Router builds the mux router for the ops endpoints.
func (h *Handler) Router() *mux.Router {
	r := mux.NewRouter()
	r.HandleFunc("/healthz", h.health).Methods(http.MethodGet)
	r.HandleFunc("/status", h.status).Methods(http.MethodGet)
	return r
}

func (h *Handler) health(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	if err := h.db.PingContext(ctx); err != nil {
		logger.Warn("Health check failed", "error", err)
		http.Error(w, "database unreachable", http.StatusServiceUnavailable)
		return
	}
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("ok"))
}

type statusResponse struct {
	OutboxPending         int64 `json:"outbox_pending"`
	OutboxFailed          int64 `json:"outbox_failed"`
	OrdersAwaitingDevice  int64 `json:"orders_awaiting_device"`
	OrdersUnderInspection int64 `json:"orders_under_inspection"`
	OrdersDecisionPending int64 `json:"orders_decision_pending"`
	OrdersPayoutPending   int64 `json:"orders_payout_pending"`
}

func (h *Handler) status(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	resp := statusResponse{}
	var err error
	if resp.OutboxPending, err = h.outboxRepo.CountPending(ctx); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	if resp.OutboxFailed, err = h.outboxRepo.CountFailed(ctx); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	counts := []struct {
		status domain.OrderStatus
		dest   *int64
	}{
		{domain.OrderStatusAwaitingDevice, &resp.OrdersAwaitingDevice},
		{domain.OrderStatusUnderInspection, &resp.OrdersUnderInspection},
		{domain.OrderStatusCustomerDecisionPending, &resp.OrdersDecisionPending},
		{domain.OrderStatusPayoutPending, &resp.OrdersPayoutPending},
	}
	for _, c := range counts {
		if *c.dest, err = h.orderRepo.CountByStatus(ctx, c.status); err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(resp)
}
