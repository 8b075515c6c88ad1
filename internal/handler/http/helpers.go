package http

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/giacuong333/marketplace/internal/domain"
	"github.com/giacuong333/marketplace/internal/repository"
	apperrors "github.com/giacuong333/marketplace/pkg/errors"
	"github.com/giacuong333/marketplace/pkg/pagination"
	"github.com/giacuong333/marketplace/pkg/validator"
)

// --- Shared response helpers ---

type response struct {
	Data  any            `json:"data,omitempty"`
	Error *errorResponse `json:"error,omitempty"`
}

type errorResponse struct {
	Code    string            `json:"code"`
	Message string            `json:"message"`
	Fields  map[string]string `json:"fields,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	// Headers are already sent; nothing meaningful can be done if encoding fails.
	_ = json.NewEncoder(w).Encode(v)
}

func writeAppError(w http.ResponseWriter, _ *http.Request, err error) {
	var appErr *apperrors.AppError
	if errors.As(err, &appErr) {
		writeJSON(w, appErr.Status, response{
			Error: &errorResponse{Code: appErr.Code, Message: appErr.Message},
		})
		return
	}

	status := apperrors.HTTPStatus(err)
	code := "INTERNAL_ERROR"
	message := "an internal error occurred"

	switch {
	case errors.Is(err, apperrors.ErrNotFound):
		code = "NOT_FOUND"
		message = "resource not found"
		status = http.StatusNotFound
	case errors.Is(err, apperrors.ErrAlreadyExists):
		code = "ALREADY_EXISTS"
		message = "resource already exists"
		status = http.StatusConflict
	case errors.Is(err, apperrors.ErrInvalidInput):
		code = "INVALID_INPUT"
		message = err.Error()
		status = http.StatusBadRequest
	case errors.Is(err, apperrors.ErrUnauthorized):
		code = "UNAUTHORIZED"
		message = err.Error()
		status = http.StatusUnauthorized
	}

	writeJSON(w, status, response{
		Error: &errorResponse{Code: code, Message: message},
	})
}

func writeValidationError(w http.ResponseWriter, err error) {
	var valErr *validator.ValidationError
	if errors.As(err, &valErr) {
		writeJSON(w, http.StatusBadRequest, response{
			Error: &errorResponse{
				Code:    "VALIDATION_ERROR",
				Message: "request validation failed",
				Fields:  valErr.Fields(),
			},
		})
		return
	}

	writeJSON(w, http.StatusBadRequest, response{
		Error: &errorResponse{Code: "INVALID_INPUT", Message: err.Error()},
	})
}

func writeInvalidBody(w http.ResponseWriter, err error) {
	writeJSON(w, http.StatusBadRequest, response{
		Error: &errorResponse{Code: "INVALID_INPUT", Message: "invalid request body: " + err.Error()},
	})
}

// --- List query parsing ---

// listFilterFromRequest extracts pagination, search, status, and sort
// parameters from the query string.
func listFilterFromRequest(r *http.Request) repository.ListFilter {
	params := pagination.FromRequest(r)
	filter := repository.ListFilter{
		Page:    params.Page,
		PerPage: params.PerPage,
	}

	q := r.URL.Query()
	if search := strings.TrimSpace(q.Get("search")); search != "" {
		filter.Search = &search
	}
	if status := q.Get("status"); status != "" {
		filter.Status = &status
	}
	filter.SortBy = q.Get("sort_by")
	filter.SortDesc = strings.EqualFold(q.Get("sort_dir"), "desc")

	return filter
}

// paginationParams rebuilds pagination.Params from a filter for response envelopes.
func paginationParams(filter repository.ListFilter) pagination.Params {
	params := pagination.DefaultParams()
	if filter.Page > 0 {
		params.Page = filter.Page
	}
	if filter.PerPage > 0 {
		params.PerPage = filter.PerPage
	}
	params.Offset = (params.Page - 1) * params.PerPage
	return params
}

// --- Multipart helpers ---

// maxMultipartMemory bounds the in-memory portion of multipart parsing;
// larger parts spill to temp files.
const maxMultipartMemory = 4 << 20

// imageFromRequest extracts an optional uploaded image from the "image"
// multipart field. A missing field returns (nil, nil).
func imageFromRequest(r *http.Request) (*domain.Image, error) {
	file, header, err := r.FormFile("image")
	if err != nil {
		if errors.Is(err, http.ErrMissingFile) {
			return nil, nil
		}
		return nil, apperrors.InvalidInput("invalid image upload: " + err.Error())
	}
	defer func() { _ = file.Close() }()

	data, err := io.ReadAll(io.LimitReader(file, domain.MaxImageSize+1))
	if err != nil {
		return nil, apperrors.InvalidInput("read image upload: " + err.Error())
	}

	contentType := header.Header.Get("Content-Type")
	return &domain.Image{
		Name:        header.Filename,
		ContentType: contentType,
		Data:        data,
	}, nil
}

// formValue returns a pointer to the form value when the key was present,
// nil otherwise. Partial updates rely on the distinction.
func formValue(r *http.Request, key string) *string {
	if r.MultipartForm != nil {
		if vs, ok := r.MultipartForm.Value[key]; ok && len(vs) > 0 {
			return &vs[0]
		}
		return nil
	}
	if vs, ok := r.Form[key]; ok && len(vs) > 0 {
		return &vs[0]
	}
	return nil
}

// bearerToken extracts the raw bearer token from the Authorization header.
func bearerToken(r *http.Request) string {
	header := r.Header.Get("Authorization")
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
		return ""
	}
	return parts[1]
}
