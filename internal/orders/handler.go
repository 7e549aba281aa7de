package orders

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"carfest-ticketing/internal/inventory"
	"carfest-ticketing/internal/models"
	"carfest-ticketing/internal/utils"
)

type Handler struct {
	Service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{Service: service}
}

func (h *Handler) PlaceOrder(w http.ResponseWriter, r *http.Request) {
	var req models.PlaceOrderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.WriteJSON(w, http.StatusBadRequest, utils.ErrorResponse("Invalid request body", err.Error()))
		return
	}

	resp, err := h.Service.PlaceOrder(r.Context(), req)
	if err != nil {
		status := http.StatusBadRequest
		if errors.Is(err, inventory.ErrCapacityExceeded) {
			status = http.StatusConflict
		}
		utils.WriteJSON(w, status, utils.ErrorResponse("Failed to place order", err.Error()))
		return
	}

	utils.WriteJSON(w, http.StatusCreated, utils.SuccessResponse("Order placed", resp))
}

func (h *Handler) CompleteOrder(w http.ResponseWriter, r *http.Request) {
	orderNumber := chi.URLParam(r, "orderNumber")
	var req struct {
		PaymentRef string `json:"payment_ref"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.WriteJSON(w, http.StatusBadRequest, utils.ErrorResponse("Invalid request body", err.Error()))
		return
	}

	tickets, err := h.Service.CompleteOrder(r.Context(), orderNumber, req.PaymentRef)
	if err != nil {
		utils.WriteJSON(w, completionStatus(err), utils.ErrorResponse("Failed to complete order", err.Error()))
		return
	}

	utils.WriteJSON(w, http.StatusOK, utils.SuccessResponse("Order completed", tickets))
}

func (h *Handler) CompleteCashOrder(w http.ResponseWriter, r *http.Request) {
	orderNumber := chi.URLParam(r, "orderNumber")

	tickets, err := h.Service.CompleteCashOrder(r.Context(), orderNumber)
	if err != nil {
		utils.WriteJSON(w, completionStatus(err), utils.ErrorResponse("Failed to complete cash order", err.Error()))
		return
	}

	utils.WriteJSON(w, http.StatusOK, utils.SuccessResponse("Cash order completed", tickets))
}

func completionStatus(err error) int {
	switch {
	case errors.Is(err, inventory.ErrCapacityExceeded):
		return http.StatusConflict
	case errors.Is(err, ErrNotPending):
		return http.StatusConflict
	case errors.Is(err, ErrPaymentNotVerified):
		return http.StatusPaymentRequired
	default:
		return http.StatusBadRequest
	}
}

func (h *Handler) GetOrder(w http.ResponseWriter, r *http.Request) {
	orderNumber := chi.URLParam(r, "orderNumber")
	order, err := h.Service.GetOrder(r.Context(), orderNumber)
	if err != nil {
		utils.WriteJSON(w, http.StatusNotFound, utils.ErrorResponse("Order not found", err.Error()))
		return
	}
	utils.WriteJSON(w, http.StatusOK, utils.SuccessResponse("Order", order))
}

func (h *Handler) ListOrders(w http.ResponseWriter, r *http.Request) {
	orders, err := h.Service.ListOrders(r.Context())
	if err != nil {
		utils.WriteJSON(w, http.StatusInternalServerError, utils.ErrorResponse("Failed to list orders", err.Error()))
		return
	}
	utils.WriteJSON(w, http.StatusOK, utils.SuccessResponse("Orders", orders))
}

func (h *Handler) ListTickets(w http.ResponseWriter, r *http.Request) {
	orderNumber := chi.URLParam(r, "orderNumber")
	tickets, err := h.Service.GetTicketsByOrder(r.Context(), orderNumber)
	if err != nil {
		utils.WriteJSON(w, http.StatusInternalServerError, utils.ErrorResponse("Failed to fetch tickets", err.Error()))
		return
	}
	utils.WriteJSON(w, http.StatusOK, utils.SuccessResponse("Tickets", tickets))
}

func (h *Handler) RefundOrder(w http.ResponseWriter, r *http.Request) {
	orderNumber := chi.URLParam(r, "orderNumber")
	if err := h.Service.RefundOrder(r.Context(), orderNumber); err != nil {
		status := http.StatusBadRequest
		if errors.Is(err, ErrNotCompleted) {
			status = http.StatusConflict
		}
		utils.WriteJSON(w, status, utils.ErrorResponse("Failed to refund order", err.Error()))
		return
	}
	utils.WriteJSON(w, http.StatusOK, utils.SuccessResponse("Order refunded", nil))
}

func (h *Handler) CancelOrder(w http.ResponseWriter, r *http.Request) {
	orderNumber := chi.URLParam(r, "orderNumber")
	if err := h.Service.CancelOrder(r.Context(), orderNumber); err != nil {
		status := http.StatusBadRequest
		if errors.Is(err, ErrNotPending) {
			status = http.StatusConflict
		}
		utils.WriteJSON(w, status, utils.ErrorResponse("Failed to cancel order", err.Error()))
		return
	}
	utils.WriteJSON(w, http.StatusOK, utils.SuccessResponse("Order cancelled", nil))
}
