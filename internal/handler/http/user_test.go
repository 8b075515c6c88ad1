package http

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/giacuong333/marketplace/internal/auth"
	"github.com/giacuong333/marketplace/internal/domain"
	"github.com/giacuong333/marketplace/internal/event"
	"github.com/giacuong333/marketplace/internal/repository"
	"github.com/giacuong333/marketplace/internal/service"
	apperrors "github.com/giacuong333/marketplace/pkg/errors"
	"github.com/giacuong333/marketplace/pkg/httputil"
	pkgkafka "github.com/giacuong333/marketplace/pkg/kafka"
	"github.com/giacuong333/marketplace/pkg/middleware"
)

// ============================================================================
// Mock Repositories
// ============================================================================

type mockUserRepo struct {
	mock.Mock
}

func (m *mockUserRepo) Create(ctx context.Context, user *domain.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *mockUserRepo) GetByID(ctx context.Context, id string) (*domain.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *mockUserRepo) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *mockUserRepo) List(ctx context.Context, filter repository.ListFilter) ([]domain.User, int, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).([]domain.User), args.Int(1), args.Error(2)
}

func (m *mockUserRepo) Update(ctx context.Context, user *domain.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *mockUserRepo) Delete(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

type mockRefreshTokenRepo struct {
	mock.Mock
}

func (m *mockRefreshTokenRepo) Create(ctx context.Context, userID, tokenHash string, expiresAt time.Time) error {
	args := m.Called(ctx, userID, tokenHash, expiresAt)
	return args.Error(0)
}

func (m *mockRefreshTokenRepo) GetByHash(ctx context.Context, tokenHash string) (*domain.RefreshToken, error) {
	args := m.Called(ctx, tokenHash)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.RefreshToken), args.Error(1)
}

func (m *mockRefreshTokenRepo) RevokeByUserID(ctx context.Context, userID string) error {
	args := m.Called(ctx, userID)
	return args.Error(0)
}

func (m *mockRefreshTokenRepo) Revoke(ctx context.Context, tokenHash string) error {
	args := m.Called(ctx, tokenHash)
	return args.Error(0)
}

type mockDenylist struct {
	mock.Mock
}

func (m *mockDenylist) Add(ctx context.Context, token string, ttl time.Duration) error {
	args := m.Called(ctx, token, ttl)
	return args.Error(0)
}

func (m *mockDenylist) Contains(ctx context.Context, token string) (bool, error) {
	args := m.Called(ctx, token)
	return args.Bool(0), args.Error(1)
}

// ============================================================================
// Test Helpers
// ============================================================================

func handlerTestLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
}

func handlerTestEventProducer() *event.Producer {
	logger := handlerTestLogger()
	kafkaCfg := pkgkafka.DefaultProducerConfig([]string{"localhost:19092"})
	kafkaProducer := pkgkafka.NewProducer(kafkaCfg, logger)
	return event.NewProducer(kafkaProducer, logger)
}

func handlerTestJWTManager() *auth.JWTManager {
	return auth.NewJWTManager("test-secret-key-for-testing", 15*time.Minute, 7*24*time.Hour)
}

func userTestService(userRepo *mockUserRepo, refreshRepo *mockRefreshTokenRepo, denylist *mockDenylist) *service.UserService {
	return service.NewUserService(
		userRepo,
		refreshRepo,
		denylist,
		handlerTestJWTManager(),
		handlerTestEventProducer(),
		handlerTestLogger(),
	)
}

// fakeTokenValidator returns a middleware.TokenValidator that always succeeds
// and injects the given identity into the request context.
func fakeTokenValidator(userID, role string) middleware.TokenValidator {
	return func(ctx context.Context, token string) (*middleware.Claims, error) {
		return &middleware.Claims{UserID: userID, Email: "admin@example.com", Role: role}, nil
	}
}

// setupUserRouter mirrors the production user routes with a fake validator.
func setupUserRouter(handler *UserHandler, userID, role string) *chi.Mux {
	r := chi.NewRouter()
	r.Route("/api/v1/users", func(r chi.Router) {
		r.Use(middleware.Auth(fakeTokenValidator(userID, role)))

		r.Get("/me", handler.GetProfile)

		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireRole(domain.RoleAdmin))
			r.Get("/", handler.List)
			r.Post("/", handler.Create)
			r.Get("/{id}", handler.Get)
			r.Put("/{id}", handler.Update)
		})
	})
	return r
}

func decodeResponse(t *testing.T, rec *httptest.ResponseRecorder) httputil.Response {
	t.Helper()
	var resp httputil.Response
	err := json.NewDecoder(rec.Body).Decode(&resp)
	require.NoError(t, err)
	return resp
}

const testUserID = "550e8400-e29b-41d4-a716-446655440001"
const testAdminID = "550e8400-e29b-41d4-a716-446655440099"

func sampleUser() *domain.User {
	now := time.Now().UTC()
	return &domain.User{
		ID:           testUserID,
		Email:        "test@example.com",
		PasswordHash: "$2a$12$hashedpassword",
		FirstName:    "John",
		LastName:     "Doe",
		Phone:        "0901234567",
		Role:         domain.RoleCustomer,
		IsActive:     true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}

// ============================================================================
// GetProfile Tests
// ============================================================================

func TestGetProfile_Success(t *testing.T) {
	userRepo := new(mockUserRepo)
	svc := userTestService(userRepo, new(mockRefreshTokenRepo), new(mockDenylist))
	router := setupUserRouter(NewUserHandler(svc), testUserID, domain.RoleCustomer)

	userRepo.On("GetByID", mock.Anything, testUserID).Return(sampleUser(), nil)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/users/me", nil)
	req.Header.Set("Authorization", "Bearer test-token")
	rec := httptest.NewRecorder()

	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	resp := decodeResponse(t, rec)
	assert.Nil(t, resp.Error)
	assert.NotNil(t, resp.Data)
	userRepo.AssertExpectations(t)
}

func TestGetProfile_MissingToken(t *testing.T) {
	svc := userTestService(new(mockUserRepo), new(mockRefreshTokenRepo), new(mockDenylist))
	router := setupUserRouter(NewUserHandler(svc), testUserID, domain.RoleCustomer)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/users/me", nil)
	rec := httptest.NewRecorder()

	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

// ============================================================================
// List Tests
// ============================================================================

func TestListUsers_AdminOnly(t *testing.T) {
	svc := userTestService(new(mockUserRepo), new(mockRefreshTokenRepo), new(mockDenylist))
	router := setupUserRouter(NewUserHandler(svc), testUserID, domain.RoleCustomer)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/users/", nil)
	req.Header.Set("Authorization", "Bearer test-token")
	rec := httptest.NewRecorder()

	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestListUsers_Success(t *testing.T) {
	userRepo := new(mockUserRepo)
	svc := userTestService(userRepo, new(mockRefreshTokenRepo), new(mockDenylist))
	router := setupUserRouter(NewUserHandler(svc), testAdminID, domain.RoleAdmin)

	users := []domain.User{*sampleUser()}
	userRepo.On("List", mock.Anything, mock.MatchedBy(func(f repository.ListFilter) bool {
		return f.Search != nil && *f.Search == "john" && f.Page == 2
	})).Return(users, 41, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/users/?search=john&page=2&per_page=20", nil)
	req.Header.Set("Authorization", "Bearer test-token")
	rec := httptest.NewRecorder()

	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Data struct {
			Data       []domain.User `json:"data"`
			TotalCount int           `json:"total_count"`
			Page       int           `json:"page"`
		} `json:"data"`
	}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Len(t, resp.Data.Data, 1)
	assert.Equal(t, 41, resp.Data.TotalCount)
	assert.Equal(t, 2, resp.Data.Page)
	userRepo.AssertExpectations(t)
}

// ============================================================================
// Create / Update Tests
// ============================================================================

func TestCreateUser_Success(t *testing.T) {
	userRepo := new(mockUserRepo)
	svc := userTestService(userRepo, new(mockRefreshTokenRepo), new(mockDenylist))
	router := setupUserRouter(NewUserHandler(svc), testAdminID, domain.RoleAdmin)

	userRepo.On("Create", mock.Anything, mock.MatchedBy(func(u *domain.User) bool {
		return u.Email == "owner@example.com" && u.Role == domain.RoleOwner
	})).Return(nil)

	body := map[string]any{
		"email":      "owner@example.com",
		"phone":      "0907654321",
		"password":   "secret123",
		"first_name": "Lan",
		"last_name":  "Nguyen",
		"role":       "owner",
		"is_active":  true,
	}
	payload, _ := json.Marshal(body)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/users/", bytes.NewReader(payload))
	req.Header.Set("Authorization", "Bearer test-token")
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()

	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusCreated, rec.Code)
	resp := decodeResponse(t, rec)
	assert.Nil(t, resp.Error)
	userRepo.AssertExpectations(t)
}

func TestCreateUser_InvalidRole(t *testing.T) {
	svc := userTestService(new(mockUserRepo), new(mockRefreshTokenRepo), new(mockDenylist))
	router := setupUserRouter(NewUserHandler(svc), testAdminID, domain.RoleAdmin)

	body := map[string]any{
		"email":      "owner@example.com",
		"phone":      "0907654321",
		"password":   "secret123",
		"first_name": "Lan",
		"last_name":  "Nguyen",
		"role":       "superuser",
	}
	payload, _ := json.Marshal(body)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/users/", bytes.NewReader(payload))
	req.Header.Set("Authorization", "Bearer test-token")
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()

	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	resp := decodeResponse(t, rec)
	require.NotNil(t, resp.Error)
	assert.Equal(t, "VALIDATION_ERROR", resp.Error.Code)
}

func TestUpdateUser_Success(t *testing.T) {
	userRepo := new(mockUserRepo)
	svc := userTestService(userRepo, new(mockRefreshTokenRepo), new(mockDenylist))
	router := setupUserRouter(NewUserHandler(svc), testAdminID, domain.RoleAdmin)

	userRepo.On("GetByID", mock.Anything, testUserID).Return(sampleUser(), nil)
	userRepo.On("Update", mock.Anything, mock.MatchedBy(func(u *domain.User) bool {
		return u.Role == domain.RoleOwner && u.FirstName == "Johnny"
	})).Return(nil)

	body := map[string]any{
		"first_name": "Johnny",
		"role":       "owner",
	}
	payload, _ := json.Marshal(body)

	req := httptest.NewRequest(http.MethodPut, "/api/v1/users/"+testUserID, bytes.NewReader(payload))
	req.Header.Set("Authorization", "Bearer test-token")
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()

	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	userRepo.AssertExpectations(t)
}

func TestGetUser_NotFound(t *testing.T) {
	userRepo := new(mockUserRepo)
	svc := userTestService(userRepo, new(mockRefreshTokenRepo), new(mockDenylist))
	router := setupUserRouter(NewUserHandler(svc), testAdminID, domain.RoleAdmin)

	userRepo.On("GetByID", mock.Anything, "missing-id").Return(nil, apperrors.NotFound("user", "missing-id"))

	req := httptest.NewRequest(http.MethodGet, "/api/v1/users/missing-id", nil)
	req.Header.Set("Authorization", "Bearer test-token")
	rec := httptest.NewRecorder()

	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
	userRepo.AssertExpectations(t)
}
