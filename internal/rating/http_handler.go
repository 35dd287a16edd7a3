package rating

import (
	"encoding/json"
	"net/http"

	"bookreview/internal/apperror"
	"bookreview/internal/httpx"
)

type HTTPHandler struct {
	service *Service
}

func NewHTTPHandler(service *Service) *HTTPHandler {
	return &HTTPHandler{service: service}
}

type rateReq struct {
	Rating *httpx.Number `json:"rating"`
}

// Rate handles POST /api/books/{id}/rating
// @Summary Rate a book
// @Description Grade a book from 0 to 5. Each user can rate a book once.
// @Tags ratings
// @Accept json
// @Produce json
// @Security Bearer
// @Param id path string true "Book ID"
// @Param request body rateReq true "Rating request"
// @Success 200 {object} book.Book
// @Failure 400 {object} httpx.ErrorResponse
// @Failure 401 {object} httpx.ErrorResponse
// @Failure 404 {object} httpx.ErrorResponse
// @Router /api/books/{id}/rating [post]
func (h *HTTPHandler) Rate(w http.ResponseWriter, r *http.Request) {
	var req rateReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.WriteError(w, r, apperror.Validation("Invalid request body").WithCause(err))
		return
	}
	if req.Rating == nil {
		httpx.WriteValidationError(w, "Invalid input", []httpx.ErrorDetail{
			{Field: "rating", Message: "Rating is required"},
		})
		return
	}

	updated, err := h.service.Rate(r.Context(), r.PathValue("id"), httpx.UserIDFrom(r), float64(*req.Rating))
	if err != nil {
		httpx.WriteError(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusOK, updated)
}
