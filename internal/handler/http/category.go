package http

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/giacuong333/marketplace/internal/service"
	"github.com/giacuong333/marketplace/pkg/pagination"
	"github.com/giacuong333/marketplace/pkg/validator"
)

// CategoryHandler handles HTTP requests for service category endpoints.
type CategoryHandler struct {
	service *service.CategoryService
}

// NewCategoryHandler creates a new service category HTTP handler.
func NewCategoryHandler(svc *service.CategoryService) *CategoryHandler {
	return &CategoryHandler{service: svc}
}

// ImportCategoryRow is one row of a category import payload.
type ImportCategoryRow struct {
	Name   string `json:"name" validate:"required,min=1,max=200"`
	Status string `json:"status" validate:"omitempty,oneof=active inactive"`
}

// List handles GET /api/v1/categories
func (h *CategoryHandler) List(w http.ResponseWriter, r *http.Request) {
	filter := listFilterFromRequest(r)

	categories, total, err := h.service.ListCategories(r.Context(), filter)
	if err != nil {
		writeAppError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, response{
		Data: pagination.NewResult(categories, total, paginationParams(filter)),
	})
}

// Get handles GET /api/v1/categories/{id}
func (h *CategoryHandler) Get(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	category, err := h.service.GetCategory(r.Context(), id)
	if err != nil {
		writeAppError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, response{Data: category})
}

// Create handles POST /api/v1/categories as multipart form data.
func (h *CategoryHandler) Create(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxMultipartMemory); err != nil {
		writeInvalidBody(w, err)
		return
	}

	image, err := imageFromRequest(r)
	if err != nil {
		writeAppError(w, r, err)
		return
	}

	input := &service.CreateCategoryInput{
		Name:   r.FormValue("name"),
		Status: r.FormValue("status"),
	}

	category, err := h.service.CreateCategory(r.Context(), input, image)
	if err != nil {
		writeAppError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, response{Data: category})
}

// Update handles PUT /api/v1/categories/{id}. Only fields present in the
// form are applied; a new image replaces the stored one.
func (h *CategoryHandler) Update(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	if err := r.ParseMultipartForm(maxMultipartMemory); err != nil {
		writeInvalidBody(w, err)
		return
	}

	image, err := imageFromRequest(r)
	if err != nil {
		writeAppError(w, r, err)
		return
	}

	input := &service.UpdateCategoryInput{
		Name:   formValue(r, "name"),
		Status: formValue(r, "status"),
	}

	category, err := h.service.UpdateCategory(r.Context(), id, input, image)
	if err != nil {
		writeAppError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, response{Data: category})
}

// Delete handles DELETE /api/v1/categories/{id}
func (h *CategoryHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	if err := h.service.DeleteCategory(r.Context(), id); err != nil {
		writeAppError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, response{Data: map[string]string{"id": id, "status": "deleted"}})
}

// DeleteMany handles DELETE /api/v1/categories/delete-multiple
func (h *CategoryHandler) DeleteMany(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, 1<<20) // 1MB limit

	var req DeleteManyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeInvalidBody(w, err)
		return
	}

	if err := validator.Validate(req); err != nil {
		writeValidationError(w, err)
		return
	}

	n, err := h.service.DeleteCategories(r.Context(), req.IDs)
	if err != nil {
		writeAppError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, response{Data: DeleteManyResult{Deleted: n}})
}

// GetImage handles GET /api/v1/categories/{id}/image, serving the raw
// bytes with the stored content type.
func (h *CategoryHandler) GetImage(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	image, err := h.service.GetCategoryImage(r.Context(), id)
	if err != nil {
		writeAppError(w, r, err)
		return
	}

	w.Header().Set("Content-Type", image.ContentType)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(image.Data)
}

// Import handles POST /api/v1/categories/import, a JSON array bulk insert.
func (h *CategoryHandler) Import(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, 10<<20) // 10MB limit

	var rows []ImportCategoryRow
	if err := json.NewDecoder(r.Body).Decode(&rows); err != nil {
		writeInvalidBody(w, err)
		return
	}

	inputs := make([]service.CreateCategoryInput, 0, len(rows))
	for _, row := range rows {
		inputs = append(inputs, service.CreateCategoryInput{
			Name:   row.Name,
			Status: row.Status,
		})
	}

	created, skipped, err := h.service.ImportCategories(r.Context(), inputs)
	if err != nil {
		writeAppError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, response{Data: ImportResult{Created: created, Skipped: skipped}})
}
