package handler

import (
	"net/http"

	"github.com/gorilla/mux"
)

type paymentRequest struct {
	EMIScheduleID string  `json:"emiScheduleId" validate:"required"`
	Amount        float64 `json:"amount" validate:"required,gt=0"`
	Method        string  `json:"method" validate:"required"`
	TransactionID string  `json:"transactionId" validate:"required"`
}

// RecordPayment settles a scheduled EMI against a loan
func (h *Handler) RecordPayment(w http.ResponseWriter, r *http.Request) {
	if _, ok := h.callerID(w, r); !ok {
		return
	}
	var req paymentRequest
	if !h.decodeAndValidate(w, r, &req) {
		return
	}
	payment, err := h.svc.RecordPayment(r.Context(), mux.Vars(r)["id"], req.EMIScheduleID, req.Amount, req.Method, req.TransactionID)
	if err != nil {
		h.respondError(w, err)
		return
	}
	h.respondJSON(w, http.StatusCreated, payment)
}

// GetPayment returns a single payment by id
func (h *Handler) GetPayment(w http.ResponseWriter, r *http.Request) {
	if _, ok := h.callerID(w, r); !ok {
		return
	}
	payment, err := h.svc.GetPayment(mux.Vars(r)["id"])
	if err != nil {
		h.respondError(w, err)
		return
	}
	h.respondJSON(w, http.StatusOK, payment)
}

// ListLoanPayments returns all payments recorded against a loan
func (h *Handler) ListLoanPayments(w http.ResponseWriter, r *http.Request) {
	if _, ok := h.callerID(w, r); !ok {
		return
	}
	payments, err := h.svc.GetPaymentsByLoan(mux.Vars(r)["id"])
	if err != nil {
		h.respondError(w, err)
		return
	}
	h.respondJSON(w, http.StatusOK, payments)
}

// ListEntryPayments returns payments recorded against one EMI entry
func (h *Handler) ListEntryPayments(w http.ResponseWriter, r *http.Request) {
	if _, ok := h.callerID(w, r); !ok {
		return
	}
	payments, err := h.svc.GetPaymentsByEntry(mux.Vars(r)["id"])
	if err != nil {
		h.respondError(w, err)
		return
	}
	h.respondJSON(w, http.StatusOK, payments)
}
