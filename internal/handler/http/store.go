package http

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/giacuong333/marketplace/internal/service"
	"github.com/giacuong333/marketplace/pkg/pagination"
	"github.com/giacuong333/marketplace/pkg/validator"
)

// StoreHandler handles HTTP requests for store endpoints.
type StoreHandler struct {
	service *service.StoreService
}

// NewStoreHandler creates a new store HTTP handler.
func NewStoreHandler(svc *service.StoreService) *StoreHandler {
	return &StoreHandler{service: svc}
}

// --- Request DTOs ---

// DeleteManyRequest is the JSON request body for bulk deletion.
type DeleteManyRequest struct {
	IDs []string `json:"ids" validate:"required,min=1,dive,required"`
}

// ImportStoreRow is one row of a store import payload.
type ImportStoreRow struct {
	Name        string `json:"name" validate:"required,min=1,max=200"`
	Description string `json:"description" validate:"omitempty,max=2000"`
	Address     string `json:"address" validate:"omitempty,max=500"`
	Phone       string `json:"phone" validate:"omitempty,max=12"`
	OpenTime    string `json:"open_time" validate:"omitempty,max=5"`
	CloseTime   string `json:"close_time" validate:"omitempty,max=5"`
	Status      string `json:"status" validate:"omitempty,oneof=active inactive"`
}

// ImportResult reports the outcome of a bulk import.
type ImportResult struct {
	Created int      `json:"created"`
	Skipped []string `json:"skipped,omitempty"`
}

// DeleteManyResult reports the outcome of a bulk delete.
type DeleteManyResult struct {
	Deleted int `json:"deleted"`
}

// --- Handlers ---

// List handles GET /api/v1/stores
func (h *StoreHandler) List(w http.ResponseWriter, r *http.Request) {
	filter := listFilterFromRequest(r)

	stores, total, err := h.service.ListStores(r.Context(), filter)
	if err != nil {
		writeAppError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, response{
		Data: pagination.NewResult(stores, total, paginationParams(filter)),
	})
}

// Get handles GET /api/v1/stores/{id}
func (h *StoreHandler) Get(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	store, err := h.service.GetStore(r.Context(), id)
	if err != nil {
		writeAppError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, response{Data: store})
}

// Create handles POST /api/v1/stores. The body is multipart form data so an
// image can ride along with the fields.
func (h *StoreHandler) Create(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxMultipartMemory); err != nil {
		writeInvalidBody(w, err)
		return
	}

	image, err := imageFromRequest(r)
	if err != nil {
		writeAppError(w, r, err)
		return
	}

	input := &service.CreateStoreInput{
		Name:        r.FormValue("name"),
		Description: r.FormValue("description"),
		Address:     r.FormValue("address"),
		Phone:       r.FormValue("phone"),
		OpenTime:    r.FormValue("open_time"),
		CloseTime:   r.FormValue("close_time"),
		Status:      r.FormValue("status"),
	}
	if owner := formValue(r, "owner_id"); owner != nil && *owner != "" {
		input.OwnerID = owner
	}

	store, err := h.service.CreateStore(r.Context(), input, image)
	if err != nil {
		writeAppError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, response{Data: store})
}

// Update handles PUT /api/v1/stores/{id}. Only fields present in the form
// are applied; a new image replaces the stored one.
func (h *StoreHandler) Update(w http.ResponseWriter, r *http.Request) {
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

	input := &service.UpdateStoreInput{
		Name:        formValue(r, "name"),
		Description: formValue(r, "description"),
		Address:     formValue(r, "address"),
		Phone:       formValue(r, "phone"),
		OpenTime:    formValue(r, "open_time"),
		CloseTime:   formValue(r, "close_time"),
		Status:      formValue(r, "status"),
		OwnerID:     formValue(r, "owner_id"),
	}

	store, err := h.service.UpdateStore(r.Context(), id, input, image)
	if err != nil {
		writeAppError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, response{Data: store})
}

// Delete handles DELETE /api/v1/stores/{id}
func (h *StoreHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	if err := h.service.DeleteStore(r.Context(), id); err != nil {
		writeAppError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, response{Data: map[string]string{"id": id, "status": "deleted"}})
}

// DeleteMany handles DELETE /api/v1/stores/delete-multiple
func (h *StoreHandler) DeleteMany(w http.ResponseWriter, r *http.Request) {
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

	n, err := h.service.DeleteStores(r.Context(), req.IDs)
	if err != nil {
		writeAppError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, response{Data: DeleteManyResult{Deleted: n}})
}

// GetImage handles GET /api/v1/stores/{id}/image, serving the raw bytes
// with the stored content type.
func (h *StoreHandler) GetImage(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	image, err := h.service.GetStoreImage(r.Context(), id)
	if err != nil {
		writeAppError(w, r, err)
		return
	}

	w.Header().Set("Content-Type", image.ContentType)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(image.Data)
}

// Import handles POST /api/v1/stores/import, a JSON array bulk insert.
func (h *StoreHandler) Import(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, 10<<20) // 10MB limit

	var rows []ImportStoreRow
	if err := json.NewDecoder(r.Body).Decode(&rows); err != nil {
		writeInvalidBody(w, err)
		return
	}

	inputs := make([]service.CreateStoreInput, 0, len(rows))
	for _, row := range rows {
		inputs = append(inputs, service.CreateStoreInput{
			Name:        row.Name,
			Description: row.Description,
			Address:     row.Address,
			Phone:       row.Phone,
			OpenTime:    row.OpenTime,
			CloseTime:   row.CloseTime,
			Status:      row.Status,
		})
	}

	created, skipped, err := h.service.ImportStores(r.Context(), inputs)
	if err != nil {
		writeAppError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, response{Data: ImportResult{Created: created, Skipped: skipped}})
}
