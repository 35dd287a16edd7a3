package book

import (
	"encoding/json"
	"errors"
	"io"
	"math"
	"mime"
	"net/http"
	"strings"

	"bookreview/internal/apperror"
	"bookreview/internal/httpx"
	"bookreview/internal/media"
)

// multipartMemory is how much of a multipart body is kept in memory before
// spilling to temp files. The overall size is capped by middleware.
const multipartMemory = 8 << 20

type HTTPHandler struct {
	service *Service
}

func NewHTTPHandler(service *Service) *HTTPHandler {
	return &HTTPHandler{service: service}
}

// metadataReq is the JSON book payload. Fields a client may not write, such
// as ratings, averageRating or userId, are simply not decoded.
type metadataReq struct {
	Title  *string       `json:"title"`
	Author *string       `json:"author"`
	Year   *httpx.Number `json:"year"`
	Genre  *string       `json:"genre"`
}

// GetAll handles GET /api/books
// @Summary List books
// @Tags books
// @Produce json
// @Success 200 {array} Book
// @Failure 503 {object} httpx.ErrorResponse
// @Router /api/books [get]
func (h *HTTPHandler) GetAll(w http.ResponseWriter, r *http.Request) {
	books, err := h.service.GetAll(r.Context())
	if err != nil {
		httpx.WriteError(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusOK, books)
}

// BestRating handles GET /api/books/bestrating
// @Summary Three best rated books
// @Tags books
// @Produce json
// @Success 200 {array} Book
// @Router /api/books/bestrating [get]
func (h *HTTPHandler) BestRating(w http.ResponseWriter, r *http.Request) {
	books, err := h.service.BestRating(r.Context())
	if err != nil {
		httpx.WriteError(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusOK, books)
}

// GetOne handles GET /api/books/{id}
// @Summary Get a book
// @Tags books
// @Produce json
// @Param id path string true "Book ID"
// @Success 200 {object} Book
// @Failure 404 {object} httpx.ErrorResponse
// @Router /api/books/{id} [get]
func (h *HTTPHandler) GetOne(w http.ResponseWriter, r *http.Request) {
	b, err := h.service.GetOne(r.Context(), r.PathValue("id"))
	if err != nil {
		httpx.WriteError(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusOK, b)
}

// Create handles POST /api/books
// @Summary Create a book
// @Description Multipart body with a JSON "book" field and an "image" file
// @Tags books
// @Accept mpfd
// @Produce json
// @Security Bearer
// @Param book formData string true "Book metadata as JSON"
// @Param image formData file true "Cover image"
// @Success 201 {object} httpx.MessageResponse
// @Failure 400 {object} httpx.ErrorResponse
// @Failure 401 {object} httpx.ErrorResponse
// @Router /api/books [post]
func (h *HTTPHandler) Create(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		writeBodyError(w, r, err, "multipart form with book and image is required")
		return
	}

	req, err := decodeMetadata(r.FormValue("book"))
	if err != nil {
		httpx.WriteError(w, r, err)
		return
	}

	patch, details := req.toPatch()
	if req.Year == nil {
		details = append(details, httpx.ErrorDetail{Field: "year", Message: "Year is required"})
	}
	md := Metadata{}
	patch.Apply(&md)
	details = append(details, httpx.ValidateStruct(md)...)
	if len(details) > 0 {
		httpx.WriteValidationError(w, "Invalid book", details)
		return
	}

	image, ok, err := readImage(r)
	if err != nil {
		httpx.WriteError(w, r, err)
		return
	}
	if !ok {
		httpx.WriteError(w, r, apperror.Validation("image is required"))
		return
	}

	if _, err := h.service.Create(r.Context(), httpx.UserIDFrom(r), md, image, media.BaseURL(r)); err != nil {
		httpx.WriteError(w, r, err)
		return
	}

	httpx.JSONMessage(w, http.StatusCreated, "Book saved successfully!")
}

// Update handles PUT /api/books/{id}
// @Summary Update a book
// @Description JSON metadata, or multipart with a "book" JSON field and an optional "image" file
// @Tags books
// @Accept json,mpfd
// @Produce json
// @Security Bearer
// @Param id path string true "Book ID"
// @Success 200 {object} httpx.MessageResponse
// @Failure 400 {object} httpx.ErrorResponse
// @Failure 403 {object} httpx.ErrorResponse
// @Failure 404 {object} httpx.ErrorResponse
// @Router /api/books/{id} [put]
func (h *HTTPHandler) Update(w http.ResponseWriter, r *http.Request) {
	in, details, err := parseUpdateInput(r)
	if err != nil {
		writeBodyError(w, r, err, "Invalid request body")
		return
	}
	if len(details) > 0 {
		httpx.WriteValidationError(w, "Invalid book", details)
		return
	}

	if _, err := h.service.Update(r.Context(), httpx.UserIDFrom(r), r.PathValue("id"), in); err != nil {
		httpx.WriteError(w, r, err)
		return
	}

	httpx.JSONMessage(w, http.StatusOK, "Book updated successfully!")
}

// Delete handles DELETE /api/books/{id}
// @Summary Delete a book
// @Tags books
// @Produce json
// @Security Bearer
// @Param id path string true "Book ID"
// @Success 200 {object} httpx.MessageResponse
// @Failure 403 {object} httpx.ErrorResponse
// @Failure 404 {object} httpx.ErrorResponse
// @Router /api/books/{id} [delete]
func (h *HTTPHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.service.Delete(r.Context(), httpx.UserIDFrom(r), r.PathValue("id")); err != nil {
		httpx.WriteError(w, r, err)
		return
	}
	httpx.JSONMessage(w, http.StatusOK, "Book deleted successfully!")
}

// parseUpdateInput resolves the body into a MetadataUpdate or a
// MetadataImageUpdate depending on its content type and whether an image
// was attached.
func parseUpdateInput(r *http.Request) (UpdateInput, []httpx.ErrorDetail, error) {
	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))

	var (
		req metadataReq
		err error
	)
	if mediaType == "multipart/form-data" {
		if err := r.ParseMultipartForm(multipartMemory); err != nil {
			return nil, nil, err
		}
		if raw := r.FormValue("book"); raw != "" {
			if req, err = decodeMetadata(raw); err != nil {
				return nil, nil, err
			}
		}
	} else {
		body, err := io.ReadAll(r.Body)
		if err != nil {
			return nil, nil, err
		}
		if len(strings.TrimSpace(string(body))) > 0 {
			if req, err = decodeMetadata(string(body)); err != nil {
				return nil, nil, err
			}
		}
	}

	patch, details := req.toPatch()
	// Fields absent from the patch keep their stored value, so placeholders
	// stand in for them during validation.
	md := Metadata{Title: "-", Author: "-", Genre: "-"}
	patch.Apply(&md)
	details = append(details, httpx.ValidateStruct(md)...)
	if len(details) > 0 {
		return nil, details, nil
	}

	if mediaType != "multipart/form-data" {
		return MetadataUpdate{Patch: patch}, nil, nil
	}

	image, ok, err := readImage(r)
	if err != nil {
		return nil, nil, err
	}
	if !ok {
		return MetadataUpdate{Patch: patch}, nil, nil
	}
	return MetadataImageUpdate{Patch: patch, Image: image, BaseURL: media.BaseURL(r)}, nil, nil
}

func decodeMetadata(raw string) (metadataReq, error) {
	var req metadataReq
	if strings.TrimSpace(raw) == "" {
		return req, apperror.Validation("book field is required")
	}
	if err := json.Unmarshal([]byte(raw), &req); err != nil {
		return req, apperror.Validation("book must be a JSON object").WithCause(err)
	}
	return req, nil
}

func (m metadataReq) toPatch() (Patch, []httpx.ErrorDetail) {
	var (
		p       Patch
		details []httpx.ErrorDetail
	)
	p.Title = trimmed(m.Title)
	p.Author = trimmed(m.Author)
	p.Genre = trimmed(m.Genre)
	if m.Year != nil {
		v := float64(*m.Year)
		if v != math.Trunc(v) || v > math.MaxInt32 || v < math.MinInt32 {
			details = append(details, httpx.ErrorDetail{Field: "year", Message: "Year must be a whole number"})
		} else {
			year := int(v)
			p.Year = &year
		}
	}
	return p, details
}

func trimmed(s *string) *string {
	if s == nil {
		return nil
	}
	t := strings.TrimSpace(*s)
	return &t
}

// readImage returns the "image" file of a parsed multipart form. ok is
// false when no file was attached.
func readImage(r *http.Request) (media.Upload, bool, error) {
	file, header, err := r.FormFile("image")
	if err != nil {
		if errors.Is(err, http.ErrMissingFile) {
			return media.Upload{}, false, nil
		}
		return media.Upload{}, false, apperror.Validation("image could not be read").WithCause(err)
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		return media.Upload{}, false, apperror.Validation("image could not be read").WithCause(err)
	}
	return media.Upload{Filename: header.Filename, Data: data}, true, nil
}

func writeBodyError(w http.ResponseWriter, r *http.Request, err error, message string) {
	var maxBytesErr *http.MaxBytesError
	if errors.As(err, &maxBytesErr) {
		httpx.JSONError(w, http.StatusRequestEntityTooLarge, "PAYLOAD_TOO_LARGE", "Request body too large", nil)
		return
	}
	if apperror.KindOf(err) != apperror.KindInternal {
		httpx.WriteError(w, r, err)
		return
	}
	httpx.WriteError(w, r, apperror.Validation(message).WithCause(err))
}
