package entry

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"carfest-ticketing/internal/codegen"
	"carfest-ticketing/internal/utils"
)

type Handler struct {
	Verifier *Verifier
	Logs     *DB
	// Location labels which gate or scanning channel this deployment
	// serves; it is stamped on tickets and log rows.
	Location string
}

func NewHandler(verifier *Verifier, logs *DB, location string) *Handler {
	return &Handler{Verifier: verifier, Logs: logs, Location: location}
}

// VerifyCode handles POST /entry/verify with body {"code": "..."}.
// The response always carries the tagged verification result; HTTP 200
// for any decided outcome, success or not.
func (h *Handler) VerifyCode(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Code string `json:"code"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.WriteJSON(w, http.StatusBadRequest, utils.ErrorResponse("Invalid request body", err.Error()))
		return
	}
	if req.Code == "" {
		utils.WriteJSON(w, http.StatusBadRequest, utils.ErrorResponse("Missing code", "code is required"))
		return
	}

	result := h.Verifier.Verify(r.Context(), req.Code, h.Location)
	utils.WriteJSON(w, http.StatusOK, result)
}

// TicketQR handles GET /tickets/{code}/qr and renders the ticket's
// signed payload as a PNG.
func (h *Handler) TicketQR(w http.ResponseWriter, r *http.Request) {
	code := chi.URLParam(r, "code")
	ticket, err := h.Logs.GetTicketByCode(r.Context(), code)
	if err != nil {
		utils.WriteJSON(w, http.StatusNotFound, utils.ErrorResponse("Ticket not found", err.Error()))
		return
	}

	png, err := codegen.QRImage(ticket.QRPayload)
	if err != nil {
		utils.WriteJSON(w, http.StatusInternalServerError, utils.ErrorResponse("Failed to render QR code", err.Error()))
		return
	}
	w.Header().Set("Content-Type", "image/png")
	w.WriteHeader(http.StatusOK)
	w.Write(png)
}

// ListLogs handles GET /admin/entry-logs?limit=N.
func (h *Handler) ListLogs(w http.ResponseWriter, r *http.Request) {
	limit := 100
	if raw := r.URL.Query().Get("limit"); raw != "" {
		if parsed, err := strconv.Atoi(raw); err == nil && parsed > 0 {
			limit = parsed
		}
	}

	logs, err := h.Logs.ListEntryLogs(r.Context(), limit)
	if err != nil {
		utils.WriteJSON(w, http.StatusInternalServerError, utils.ErrorResponse("Failed to list entry logs", err.Error()))
		return
	}
	utils.WriteJSON(w, http.StatusOK, utils.SuccessResponse("Entry logs", logs))
}
