package handler

import (
	"net/http"

	"github.com/gorilla/mux"
)

type applyRequest struct {
	LoanType   string   `json:"loanType" validate:"required"`
	Amount     float64  `json:"amount" validate:"required,gt=0"`
	TermMonths int      `json:"termMonths" validate:"required,gt=0"`
	CustomRate *float64 `json:"customRate,omitempty" validate:"omitempty,gt=0"`
}

// CreateApplication handles a new loan application
func (h *Handler) CreateApplication(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.callerID(w, r)
	if !ok {
		return
	}
	var req applyRequest
	if !h.decodeAndValidate(w, r, &req) {
		return
	}
	app, err := h.svc.Apply(r.Context(), userID, req.LoanType, req.Amount, req.TermMonths, req.CustomRate)
	if err != nil {
		h.respondError(w, err)
		return
	}
	h.respondJSON(w, http.StatusCreated, app)
}

// GetApplication returns a single application by id
func (h *Handler) GetApplication(w http.ResponseWriter, r *http.Request) {
	if _, ok := h.callerID(w, r); !ok {
		return
	}
	app, err := h.svc.GetApplication(mux.Vars(r)["id"])
	if err != nil {
		h.respondError(w, err)
		return
	}
	h.respondJSON(w, http.StatusOK, app)
}

// ListMyApplications returns the caller's applications
func (h *Handler) ListMyApplications(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.callerID(w, r)
	if !ok {
		return
	}
	apps, err := h.svc.ListApplicationsByUser(userID)
	if err != nil {
		h.respondError(w, err)
		return
	}
	h.respondJSON(w, http.StatusOK, apps)
}

// ListAllApplications returns every application in the system
func (h *Handler) ListAllApplications(w http.ResponseWriter, r *http.Request) {
	if _, ok := h.callerID(w, r); !ok {
		return
	}
	apps, err := h.svc.ListApplications()
	if err != nil {
		h.respondError(w, err)
		return
	}
	h.respondJSON(w, http.StatusOK, apps)
}

// ReviewApplication moves an application into review
func (h *Handler) ReviewApplication(w http.ResponseWriter, r *http.Request) {
	if _, ok := h.callerID(w, r); !ok {
		return
	}
	app, err := h.svc.MarkUnderReview(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		h.respondError(w, err)
		return
	}
	h.respondJSON(w, http.StatusOK, app)
}

// ApproveApplication runs the approval evaluation and approves on success
func (h *Handler) ApproveApplication(w http.ResponseWriter, r *http.Request) {
	if _, ok := h.callerID(w, r); !ok {
		return
	}
	app, err := h.svc.Approve(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		h.respondError(w, err)
		return
	}
	h.respondJSON(w, http.StatusOK, app)
}

type rejectRequest struct {
	Remarks string `json:"remarks" validate:"required"`
}

// RejectApplication rejects an application with mandatory remarks
func (h *Handler) RejectApplication(w http.ResponseWriter, r *http.Request) {
	if _, ok := h.callerID(w, r); !ok {
		return
	}
	var req rejectRequest
	if !h.decodeAndValidate(w, r, &req) {
		return
	}
	app, err := h.svc.Reject(r.Context(), mux.Vars(r)["id"], req.Remarks)
	if err != nil {
		h.respondError(w, err)
		return
	}
	h.respondJSON(w, http.StatusOK, app)
}
