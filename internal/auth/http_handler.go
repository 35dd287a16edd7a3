package auth

import (
	"encoding/json"
	"net/http"
	"strings"

	"bookreview/internal/apperror"
	"bookreview/internal/httpx"
)

type HTTPHandler struct {
	service *Service
}

func NewHTTPHandler(service *Service) *HTTPHandler {
	return &HTTPHandler{service: service}
}

type SignupReq struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// LoginReq only requires both fields. Any login that does not match an
// account is a credentials failure, whatever the email looks like.
type LoginReq struct {
	Email    string `json:"email" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// Signup handles POST /api/auth/signup and its /api/auth/register alias
// @Summary Create an account
// @Tags auth
// @Accept json
// @Produce json
// @Param request body SignupReq true "Signup request"
// @Success 201 {object} httpx.MessageResponse
// @Failure 400 {object} httpx.ErrorResponse
// @Failure 409 {object} httpx.ErrorResponse
// @Router /api/auth/signup [post]
func (h *HTTPHandler) Signup(w http.ResponseWriter, r *http.Request) {
	var req SignupReq
	if !decodeCredentials(w, r, &req, &req.Email) {
		return
	}

	if _, err := h.service.Signup(r.Context(), req.Email, req.Password); err != nil {
		httpx.WriteError(w, r, err)
		return
	}

	httpx.JSONMessage(w, http.StatusCreated, "User created !")
}

// Login handles POST /api/auth/login
// @Summary User login
// @Description Authenticate and receive a bearer token valid for 24 hours
// @Tags auth
// @Accept json
// @Produce json
// @Param request body LoginReq true "Login request"
// @Success 200 {object} LoginResult
// @Failure 400 {object} httpx.ErrorResponse
// @Failure 401 {object} httpx.ErrorResponse
// @Router /api/auth/login [post]
func (h *HTTPHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginReq
	if !decodeCredentials(w, r, &req, &req.Email) {
		return
	}

	result, err := h.service.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		httpx.WriteError(w, r, err)
		return
	}

	httpx.JSON(w, http.StatusOK, result)
}

// decodeCredentials decodes the body into req, trims the email it points at
// and validates req. It writes the error response and reports false on failure.
func decodeCredentials(w http.ResponseWriter, r *http.Request, req any, email *string) bool {
	if err := json.NewDecoder(r.Body).Decode(req); err != nil {
		httpx.WriteError(w, r, apperror.Validation("Invalid request body"))
		return false
	}
	*email = strings.TrimSpace(*email)

	if details := httpx.ValidateStruct(req); len(details) > 0 {
		httpx.WriteValidationError(w, "Invalid input", details)
		return false
	}
	return true
}
