package handler

import (
	"encoding/json"
	"net/http"

	"github.com/Dan9191/loan-service/internal/errs"
	"github.com/Dan9191/loan-service/internal/middleware"
	"github.com/Dan9191/loan-service/internal/service"
	"github.com/go-playground/validator/v10"
	"github.com/sirupsen/logrus"
)

// KeyRateSource provides the central bank key rate with the bank margin applied.
type KeyRateSource interface {
	GetKeyRate() (float64, error)
}

type Handler struct {
	svc      *service.Service
	keyRates KeyRateSource
	validate *validator.Validate
	log      *logrus.Logger
}

func NewHandler(svc *service.Service, keyRates KeyRateSource, log *logrus.Logger) *Handler {
	return &Handler{
		svc:      svc,
		keyRates: keyRates,
		validate: validator.New(),
		log:      log,
	}
}

func (h *Handler) respondJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if payload != nil {
		if err := json.NewEncoder(w).Encode(payload); err != nil {
			h.log.WithError(err).Error("failed to encode response")
		}
	}
}

// respondError maps service error kinds onto HTTP status codes.
func (h *Handler) respondError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch errs.KindOf(err) {
	case errs.KindNotFound:
		status = http.StatusNotFound
	case errs.KindInvalidArgument:
		status = http.StatusBadRequest
	case errs.KindConflict:
		status = http.StatusConflict
	case errs.KindExternalUnavailable:
		status = http.StatusBadGateway
	}
	if status == http.StatusInternalServerError {
		h.log.WithError(err).Error("internal error")
	}
	h.respondJSON(w, status, map[string]string{"error": err.Error()})
}

func (h *Handler) decodeAndValidate(w http.ResponseWriter, r *http.Request, dto interface{}) bool {
	if err := json.NewDecoder(r.Body).Decode(dto); err != nil {
		h.respondJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return false
	}
	if err := h.validate.Struct(dto); err != nil {
		h.respondJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return false
	}
	return true
}

func (h *Handler) callerID(w http.ResponseWriter, r *http.Request) (string, bool) {
	userID, ok := middleware.UserID(r.Context())
	if !ok {
		h.respondJSON(w, http.StatusUnauthorized, map[string]string{"error": "unauthorized"})
		return "", false
	}
	return userID, true
}

type registerRequest struct {
	Username string `json:"username" validate:"required,min=3"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8"`
}

// Register handles user registration
func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if !h.decodeAndValidate(w, r, &req) {
		return
	}
	user, err := h.svc.Register(req.Username, req.Email, req.Password)
	if err != nil {
		h.respondError(w, err)
		return
	}
	h.respondJSON(w, http.StatusCreated, user)
}

type loginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// Login handles user authentication
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if !h.decodeAndValidate(w, r, &req) {
		return
	}
	token, err := h.svc.Login(req.Email, req.Password)
	if err != nil {
		h.respondError(w, err)
		return
	}
	h.respondJSON(w, http.StatusOK, map[string]string{"token": token})
}

// Health reports service liveness
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	h.respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
