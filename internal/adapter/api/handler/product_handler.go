package handler

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"mime"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/user/leafmarket/internal/adapter/metrics"
	"github.com/user/leafmarket/internal/domain"
	"github.com/user/leafmarket/internal/usecase"
)

// ProductHandler handles the admin product management endpoints.
type ProductHandler struct {
	uc            usecase.CatalogUseCase
	logger        *slog.Logger
	validate      *validator.Validate
	metrics       *metrics.StoreMetrics
	maxUploadSize int64
}

// NewProductHandler creates a new ProductHandler.
func NewProductHandler(uc usecase.CatalogUseCase, logger *slog.Logger, m *metrics.StoreMetrics, maxUploadSize int64) *ProductHandler {
	return &ProductHandler{
		uc:            uc,
		logger:        logger,
		validate:      validator.New(),
		metrics:       m,
		maxUploadSize: maxUploadSize,
	}
}

// productForm checks presence of the caller-supplied fields. Price and
// stock are passed through unvalidated; free items and zero stock are
// legitimate values.
type productForm struct {
	Name        string `validate:"required"`
	Description string `validate:"required"`
	Category    string `validate:"required"`
	Status      string `validate:"omitempty,oneof=active inactive"`
}

// Create handles POST /api/admin/products. The body is either JSON or a
// multipart form carrying an optional image part; an uploaded image
// replaces any submitted imageUrl.
func (h *ProductHandler) Create(w http.ResponseWriter, r *http.Request) {
	input, image, err := h.parseProductBody(r)
	if err != nil {
		respondWithError(w, http.StatusBadRequest, err.Error())
		return
	}

	form := productForm{
		Name:        input.Name,
		Description: input.Description,
		Category:    input.Category,
		Status:      string(input.Status),
	}
	if err := h.validate.Struct(form); err != nil {
		respondWithError(w, http.StatusBadRequest, "name, description and category are required")
		return
	}
	if input.Status == "" {
		input.Status = domain.StatusActive
	}

	id, err := h.uc.Add(r.Context(), *input, image)
	if err != nil {
		h.countOp("add", "error")
		respondWithError(w, catalogErrorStatus(err), err.Error())
		return
	}

	h.countOp("add", "ok")
	respondWithJSON(w, http.StatusCreated, map[string]string{"id": id})
}

// List handles GET /api/admin/products.
func (h *ProductHandler) List(w http.ResponseWriter, r *http.Request) {
	products, err := h.uc.List(r.Context())
	if err != nil {
		h.countOp("list", "error")
		respondWithError(w, http.StatusInternalServerError, err.Error())
		return
	}

	h.countOp("list", "ok")
	respondWithJSON(w, http.StatusOK, products)
}

// Stats handles GET /api/admin/products/stats.
func (h *ProductHandler) Stats(w http.ResponseWriter, r *http.Request) {
	products, err := h.uc.List(r.Context())
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, err.Error())
		return
	}

	respondWithJSON(w, http.StatusOK, usecase.ComputeProductStats(products))
}

// Update handles PUT /api/admin/products/{id}. Only the submitted fields
// are touched; updatedAt refreshes regardless.
func (h *ProductHandler) Update(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	fields, image, err := h.parseUpdateBody(r)
	if err != nil {
		respondWithError(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := h.uc.Update(r.Context(), id, *fields, image); err != nil {
		h.countOp("update", "error")
		respondWithError(w, catalogErrorStatus(err), err.Error())
		return
	}

	h.countOp("update", "ok")
	w.WriteHeader(http.StatusNoContent)
}

// Delete handles DELETE /api/admin/products/{id}?imageUrl=…. The record
// goes first; the asset follows best-effort inside the catalog service.
func (h *ProductHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	imageURL := r.URL.Query().Get("imageUrl")

	if err := h.uc.Delete(r.Context(), id, imageURL); err != nil {
		h.countOp("delete", "error")
		respondWithError(w, http.StatusInternalServerError, err.Error())
		return
	}

	h.countOp("delete", "ok")
	w.WriteHeader(http.StatusNoContent)
}

type toggleRequest struct {
	CurrentStatus domain.ProductStatus `json:"currentStatus"`
}

// ToggleStatus handles POST /api/admin/products/{id}/toggle.
func (h *ProductHandler) ToggleStatus(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var req toggleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.CurrentStatus != domain.StatusActive && req.CurrentStatus != domain.StatusInactive {
		respondWithError(w, http.StatusBadRequest, "currentStatus must be active or inactive")
		return
	}

	if err := h.uc.ToggleStatus(r.Context(), id, req.CurrentStatus); err != nil {
		h.countOp("toggle", "error")
		respondWithError(w, catalogErrorStatus(err), err.Error())
		return
	}

	h.countOp("toggle", "ok")
	w.WriteHeader(http.StatusNoContent)
}

func (h *ProductHandler) parseProductBody(r *http.Request) (*usecase.ProductInput, *usecase.ImageUpload, error) {
	if !isMultipart(r) {
		var input usecase.ProductInput
		if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
			return nil, nil, errors.New("invalid request body")
		}
		return &input, nil, nil
	}

	if err := r.ParseMultipartForm(h.maxUploadSize); err != nil {
		return nil, nil, errors.New("invalid multipart form")
	}

	price, _ := strconv.ParseFloat(r.FormValue("price"), 64)
	stock, _ := strconv.Atoi(r.FormValue("stock"))

	input := &usecase.ProductInput{
		Name:        r.FormValue("name"),
		Description: r.FormValue("description"),
		Price:       price,
		Category:    r.FormValue("category"),
		Stock:       stock,
		ImageURL:    r.FormValue("imageUrl"),
		Status:      domain.ProductStatus(r.FormValue("status")),
	}

	image, err := h.readImagePart(r)
	if err != nil {
		return nil, nil, err
	}
	return input, image, nil
}

func (h *ProductHandler) parseUpdateBody(r *http.Request) (*domain.ProductUpdate, *usecase.ImageUpload, error) {
	if !isMultipart(r) {
		var fields domain.ProductUpdate
		if err := json.NewDecoder(r.Body).Decode(&fields); err != nil {
			return nil, nil, errors.New("invalid request body")
		}
		return &fields, nil, nil
	}

	if err := r.ParseMultipartForm(h.maxUploadSize); err != nil {
		return nil, nil, errors.New("invalid multipart form")
	}

	fields := &domain.ProductUpdate{}
	values := r.MultipartForm.Value
	if v, ok := formValue(values, "name"); ok {
		fields.Name = &v
	}
	if v, ok := formValue(values, "description"); ok {
		fields.Description = &v
	}
	if v, ok := formValue(values, "price"); ok {
		price, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return nil, nil, errors.New("price must be a number")
		}
		fields.Price = &price
	}
	if v, ok := formValue(values, "category"); ok {
		fields.Category = &v
	}
	if v, ok := formValue(values, "stock"); ok {
		stock, err := strconv.Atoi(v)
		if err != nil {
			return nil, nil, errors.New("stock must be an integer")
		}
		fields.Stock = &stock
	}
	if v, ok := formValue(values, "imageUrl"); ok {
		fields.ImageURL = &v
	}
	if v, ok := formValue(values, "status"); ok {
		status := domain.ProductStatus(v)
		if status != domain.StatusActive && status != domain.StatusInactive {
			return nil, nil, errors.New("status must be active or inactive")
		}
		fields.Status = &status
	}

	image, err := h.readImagePart(r)
	if err != nil {
		return nil, nil, err
	}
	return fields, image, nil
}

func (h *ProductHandler) readImagePart(r *http.Request) (*usecase.ImageUpload, error) {
	file, header, err := r.FormFile("image")
	if err != nil {
		if errors.Is(err, http.ErrMissingFile) {
			return nil, nil
		}
		return nil, errors.New("invalid image upload")
	}
	defer file.Close()

	data, err := io.ReadAll(io.LimitReader(file, h.maxUploadSize))
	if err != nil {
		return nil, errors.New("failed to read image upload")
	}
	return &usecase.ImageUpload{Filename: header.Filename, Data: data}, nil
}

func (h *ProductHandler) countOp(op, status string) {
	if h.metrics != nil {
		h.metrics.CatalogOpsTotal.WithLabelValues(op, status).Inc()
	}
}

func isMultipart(r *http.Request) bool {
	mediaType, _, err := mime.ParseMediaType(r.Header.Get("Content-Type"))
	return err == nil && mediaType == "multipart/form-data"
}

func formValue(values map[string][]string, key string) (string, bool) {
	v, ok := values[key]
	if !ok || len(v) == 0 {
		return "", false
	}
	return v[0], true
}

func catalogErrorStatus(err error) int {
	if errors.Is(err, usecase.ErrUnknownCategory) {
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}
