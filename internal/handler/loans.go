package handler

import (
	"net/http"

	"github.com/gorilla/mux"
)

type createLoanRequest struct {
	LoanType   string   `json:"loanType" validate:"required"`
	Amount     float64  `json:"amount" validate:"required,gt=0"`
	TermMonths int      `json:"termMonths" validate:"required,gt=0"`
	CustomRate *float64 `json:"customRate,omitempty" validate:"omitempty,gt=0"`
}

// CreateLoan creates a loan directly, bypassing the application flow
func (h *Handler) CreateLoan(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.callerID(w, r)
	if !ok {
		return
	}
	var req createLoanRequest
	if !h.decodeAndValidate(w, r, &req) {
		return
	}
	loan, err := h.svc.CreateLoan(r.Context(), userID, req.LoanType, req.Amount, req.TermMonths, req.CustomRate)
	if err != nil {
		h.respondError(w, err)
		return
	}
	h.respondJSON(w, http.StatusCreated, loan)
}

// GetLoan returns a single loan by id
func (h *Handler) GetLoan(w http.ResponseWriter, r *http.Request) {
	if _, ok := h.callerID(w, r); !ok {
		return
	}
	loan, err := h.svc.GetLoan(mux.Vars(r)["id"])
	if err != nil {
		h.respondError(w, err)
		return
	}
	h.respondJSON(w, http.StatusOK, loan)
}

// ListMyLoans returns the caller's loans
func (h *Handler) ListMyLoans(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.callerID(w, r)
	if !ok {
		return
	}
	loans, err := h.svc.ListLoansByUser(userID)
	if err != nil {
		h.respondError(w, err)
		return
	}
	h.respondJSON(w, http.StatusOK, loans)
}

// ListAllLoans returns every loan in the system
func (h *Handler) ListAllLoans(w http.ResponseWriter, r *http.Request) {
	if _, ok := h.callerID(w, r); !ok {
		return
	}
	loans, err := h.svc.ListLoans()
	if err != nil {
		h.respondError(w, err)
		return
	}
	h.respondJSON(w, http.StatusOK, loans)
}

// GenerateSchedule builds (or rebuilds) the EMI schedule for a loan
func (h *Handler) GenerateSchedule(w http.ResponseWriter, r *http.Request) {
	if _, ok := h.callerID(w, r); !ok {
		return
	}
	entries, err := h.svc.GenerateSchedule(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		h.respondError(w, err)
		return
	}
	h.respondJSON(w, http.StatusCreated, entries)
}

// GetSchedule returns a loan's EMI schedule ordered by month
func (h *Handler) GetSchedule(w http.ResponseWriter, r *http.Request) {
	if _, ok := h.callerID(w, r); !ok {
		return
	}
	entries, err := h.svc.GetSchedule(mux.Vars(r)["id"])
	if err != nil {
		h.respondError(w, err)
		return
	}
	h.respondJSON(w, http.StatusOK, entries)
}

// GetScheduleEntry returns a single EMI schedule entry by id
func (h *Handler) GetScheduleEntry(w http.ResponseWriter, r *http.Request) {
	if _, ok := h.callerID(w, r); !ok {
		return
	}
	entry, err := h.svc.GetScheduleEntry(mux.Vars(r)["id"])
	if err != nil {
		h.respondError(w, err)
		return
	}
	h.respondJSON(w, http.StatusOK, entry)
}

// GetOutstandingBalance reports the remaining balance across unpaid EMIs
func (h *Handler) GetOutstandingBalance(w http.ResponseWriter, r *http.Request) {
	if _, ok := h.callerID(w, r); !ok {
		return
	}
	balance, err := h.svc.GetOutstandingBalance(mux.Vars(r)["id"])
	if err != nil {
		h.respondError(w, err)
		return
	}
	h.respondJSON(w, http.StatusOK, map[string]float64{"outstandingBalance": balance})
}

// GetCompletedPaymentsCount reports how many EMIs have been settled
func (h *Handler) GetCompletedPaymentsCount(w http.ResponseWriter, r *http.Request) {
	if _, ok := h.callerID(w, r); !ok {
		return
	}
	count, err := h.svc.GetCompletedPaymentsCount(mux.Vars(r)["id"])
	if err != nil {
		h.respondError(w, err)
		return
	}
	h.respondJSON(w, http.StatusOK, map[string]int64{"completedPayments": count})
}
