package handler

import (
	"net/http"

	"github.com/Dan9191/loan-service/internal/errs"
	"github.com/gorilla/mux"
)

// ListRates returns the effective interest rate for every known loan type
func (h *Handler) ListRates(w http.ResponseWriter, r *http.Request) {
	if _, ok := h.callerID(w, r); !ok {
		return
	}
	h.respondJSON(w, http.StatusOK, h.svc.Rates().AllRates())
}

// GetRate returns the effective interest rate for one loan type
func (h *Handler) GetRate(w http.ResponseWriter, r *http.Request) {
	if _, ok := h.callerID(w, r); !ok {
		return
	}
	loanType := mux.Vars(r)["loanType"]
	h.respondJSON(w, http.StatusOK, map[string]interface{}{
		"loanType":     loanType,
		"interestRate": h.svc.Rates().GetRate(loanType),
	})
}

type updateRateRequest struct {
	InterestRate float64 `json:"interestRate" validate:"required"`
}

// UpdateRate overrides the interest rate for a loan type
func (h *Handler) UpdateRate(w http.ResponseWriter, r *http.Request) {
	if _, ok := h.callerID(w, r); !ok {
		return
	}
	var req updateRateRequest
	if !h.decodeAndValidate(w, r, &req) {
		return
	}
	loanType := mux.Vars(r)["loanType"]
	if err := h.svc.Rates().UpdateRate(loanType, req.InterestRate); err != nil {
		h.respondError(w, err)
		return
	}
	h.respondJSON(w, http.StatusOK, map[string]interface{}{
		"loanType":     loanType,
		"interestRate": h.svc.Rates().GetRate(loanType),
	})
}

// ResetRates drops all overrides and restores the configured defaults
func (h *Handler) ResetRates(w http.ResponseWriter, r *http.Request) {
	if _, ok := h.callerID(w, r); !ok {
		return
	}
	h.svc.Rates().ResetToDefaults()
	h.respondJSON(w, http.StatusOK, h.svc.Rates().AllRates())
}

// GetKeyRate returns the central bank key rate with the bank margin applied
func (h *Handler) GetKeyRate(w http.ResponseWriter, r *http.Request) {
	if _, ok := h.callerID(w, r); !ok {
		return
	}
	rate, err := h.keyRates.GetKeyRate()
	if err != nil {
		h.respondError(w, errs.ExternalUnavailable(err, "failed to fetch key rate"))
		return
	}
	h.respondJSON(w, http.StatusOK, map[string]float64{"keyRate": rate})
}
