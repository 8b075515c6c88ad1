package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/giacuong333/marketplace/pkg/httpclient"
)

// Client is the single HTTP client shared by all resource services. It
// attaches the bearer token from the TokenStore and speaks the server's
// JSON response envelope.
type Client struct {
	baseURL string
	http    *httpclient.CircuitBreakerClient
	tokens  *TokenStore
	logger  *slog.Logger

	Auth       *AuthService
	Users      *UserService
	Stores     *StoreService
	Categories *CategoryService
}

// NewClient creates a client for the API at baseURL. Transport retries and
// circuit breaking follow the shared httpclient defaults.
func NewClient(baseURL string, tokens *TokenStore, logger *slog.Logger) *Client {
	inner := httpclient.New(httpclient.DefaultConfig())
	cb := httpclient.NewCircuitBreakerClient(inner, httpclient.DefaultCircuitBreakerConfig("marketplace-api"), logger)

	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    cb,
		tokens:  tokens,
		logger:  logger,
	}
	c.Auth = &AuthService{client: c}
	c.Users = &UserService{client: c}
	c.Stores = &StoreService{client: c}
	c.Categories = &CategoryService{client: c}
	return c
}

// --- Wire types ---

// Profile is the authenticated user record returned by the profile endpoint.
type Profile struct {
	ID        string `json:"id"`
	Email     string `json:"email"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Phone     string `json:"phone"`
	Role      string `json:"role"`
	IsActive  bool   `json:"is_active"`
}

// TokenData is the token pair returned by login and refresh.
type TokenData struct {
	Token        string `json:"token"`
	RefreshToken string `json:"refresh_token"`
}

// Credentials is the login request payload.
type Credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// RegisterPayload is the registration request payload.
type RegisterPayload struct {
	Email     string `json:"email"`
	Phone     string `json:"phone"`
	Password  string `json:"password"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
}

// Category is a service category record.
type Category struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Slug      string    `json:"slug"`
	Status    string    `json:"status"`
	ImageName *string   `json:"image_name,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Store is a store record.
type Store struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Slug        string    `json:"slug"`
	Description string    `json:"description"`
	Address     string    `json:"address"`
	Phone       string    `json:"phone"`
	OpenTime    string    `json:"open_time"`
	CloseTime   string    `json:"close_time"`
	Status      string    `json:"status"`
	OwnerID     *string   `json:"owner_id,omitempty"`
	ImageName   *string   `json:"image_name,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// ListResult is the paginated list envelope returned by list endpoints.
type ListResult[T any] struct {
	Data       []T  `json:"data"`
	TotalCount int  `json:"total_count"`
	Page       int  `json:"page"`
	PerPage    int  `json:"per_page"`
	TotalPages int  `json:"total_pages"`
	HasNext    bool `json:"has_next"`
	HasPrev    bool `json:"has_prev"`
}

// ListParams carries pagination, search, and sort options for list endpoints.
type ListParams struct {
	Search  string
	Status  string
	SortBy  string
	SortDir string
	Page    int
	PerPage int
}

func (p ListParams) encode() string {
	q := url.Values{}
	if p.Search != "" {
		q.Set("search", p.Search)
	}
	if p.Status != "" {
		q.Set("status", p.Status)
	}
	if p.SortBy != "" {
		q.Set("sort_by", p.SortBy)
	}
	if p.SortDir != "" {
		q.Set("sort_dir", p.SortDir)
	}
	if p.Page > 0 {
		q.Set("page", strconv.Itoa(p.Page))
	}
	if p.PerPage > 0 {
		q.Set("per_page", strconv.Itoa(p.PerPage))
	}
	if len(q) == 0 {
		return ""
	}
	return "?" + q.Encode()
}

// Upload is an image payload for create/update calls and image fetches.
type Upload struct {
	Name        string
	ContentType string
	Data        []byte
}

// envelope mirrors the server's {data, error} response shape.
type envelope struct {
	Data json.RawMessage `json:"data"`
}

// --- Request plumbing ---

func success(status int) bool {
	return status >= 200 && status < 300
}

// do executes one request and decodes the response envelope's data field
// into out when provided. It returns the HTTP status; an error is returned
// only on transport failure or an undecodable body, never on a non-2xx
// status — callers inspect the status themselves.
func (c *Client) do(ctx context.Context, method, path string, contentType string, body io.Reader, out any) (int, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return 0, fmt.Errorf("create %s %s request: %w", method, path, err)
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	c.attachToken(req)

	resp, err := c.http.Do(ctx, req)
	if err != nil {
		return 0, fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if out != nil && resp.StatusCode >= 200 && resp.StatusCode < 300 {
		var env envelope
		if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
			return resp.StatusCode, fmt.Errorf("decode %s %s response: %w", method, path, err)
		}
		if len(env.Data) > 0 {
			if err := json.Unmarshal(env.Data, out); err != nil {
				return resp.StatusCode, fmt.Errorf("decode %s %s data: %w", method, path, err)
			}
		}
	}

	return resp.StatusCode, nil
}

func (c *Client) doJSON(ctx context.Context, method, path string, payload, out any) (int, error) {
	var body io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return 0, fmt.Errorf("encode %s %s payload: %w", method, path, err)
		}
		body = bytes.NewReader(data)
	}
	return c.do(ctx, method, path, "application/json", body, out)
}

// doMultipart sends fields plus an optional image as multipart form data.
func (c *Client) doMultipart(ctx context.Context, method, path string, fields map[string]string, image *Upload, out any) (int, error) {
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)

	for key, value := range fields {
		if err := writer.WriteField(key, value); err != nil {
			return 0, fmt.Errorf("write form field %s: %w", key, err)
		}
	}

	if image != nil {
		header := make(textproto.MIMEHeader)
		header.Set("Content-Disposition", fmt.Sprintf(`form-data; name="image"; filename=%q`, image.Name))
		header.Set("Content-Type", image.ContentType)
		part, err := writer.CreatePart(header)
		if err != nil {
			return 0, fmt.Errorf("create image part: %w", err)
		}
		if _, err := part.Write(image.Data); err != nil {
			return 0, fmt.Errorf("write image part: %w", err)
		}
	}

	if err := writer.Close(); err != nil {
		return 0, fmt.Errorf("finalize multipart body: %w", err)
	}

	return c.do(ctx, method, path, writer.FormDataContentType(), &buf, out)
}

// doImage fetches raw image bytes; the body is not enveloped.
func (c *Client) doImage(ctx context.Context, path string) (int, *Upload, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return 0, nil, fmt.Errorf("create image request: %w", err)
	}
	c.attachToken(req)

	resp, err := c.http.Do(ctx, req)
	if err != nil {
		return 0, nil, fmt.Errorf("GET %s: %w", path, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return resp.StatusCode, nil, nil
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return resp.StatusCode, nil, fmt.Errorf("read image body: %w", err)
	}
	return resp.StatusCode, &Upload{ContentType: resp.Header.Get("Content-Type"), Data: data}, nil
}

func (c *Client) attachToken(req *http.Request) {
	token, err := c.tokens.Get()
	if err != nil {
		if !errors.Is(err, ErrNoToken) && c.logger != nil {
			c.logger.Warn("token store read failed", slog.String("error", err.Error()))
		}
		return
	}
	req.Header.Set("Authorization", "Bearer "+token)
}

// --- Resource services ---

// AuthService wraps the authentication endpoints.
type AuthService struct {
	client *Client
}

// Login submits credentials and returns the issued token pair on 200.
func (s *AuthService) Login(ctx context.Context, creds Credentials) (int, *TokenData, error) {
	var tokens TokenData
	status, err := s.client.doJSON(ctx, http.MethodPost, "/api/v1/auth/login", creds, &tokens)
	if err != nil {
		return status, nil, err
	}
	if status != http.StatusOK {
		return status, nil, nil
	}
	return status, &tokens, nil
}

// Register submits a registration payload.
func (s *AuthService) Register(ctx context.Context, payload RegisterPayload) (int, error) {
	return s.client.doJSON(ctx, http.MethodPost, "/api/v1/auth/register", payload, nil)
}

// Logout invalidates the current session on the server.
func (s *AuthService) Logout(ctx context.Context) (int, error) {
	return s.client.doJSON(ctx, http.MethodPost, "/api/v1/auth/logout", nil, nil)
}

// Refresh exchanges a refresh token for a new token pair.
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (int, *TokenData, error) {
	var tokens TokenData
	payload := map[string]string{"refresh_token": refreshToken}
	status, err := s.client.doJSON(ctx, http.MethodPost, "/api/v1/auth/refresh", payload, &tokens)
	if err != nil {
		return status, nil, err
	}
	if status != http.StatusOK {
		return status, nil, nil
	}
	return status, &tokens, nil
}

// UserService wraps the user endpoints.
type UserService struct {
	client *Client
}

// Profile fetches the authenticated user's profile.
func (s *UserService) Profile(ctx context.Context) (int, *Profile, error) {
	var profile Profile
	status, err := s.client.do(ctx, http.MethodGet, "/api/v1/users/me", "", nil, &profile)
	if err != nil {
		return status, nil, err
	}
	if status != http.StatusOK {
		return status, nil, nil
	}
	return status, &profile, nil
}

// StoreService wraps the store endpoints.
type StoreService struct {
	client *Client
}

func (s *StoreService) List(ctx context.Context, params ListParams) (int, *ListResult[Store], error) {
	var result ListResult[Store]
	status, err := s.client.do(ctx, http.MethodGet, "/api/v1/stores/"+params.encode(), "", nil, &result)
	if err != nil || !success(status) {
		return status, nil, err
	}
	return status, &result, nil
}

func (s *StoreService) Get(ctx context.Context, id string) (int, *Store, error) {
	var store Store
	status, err := s.client.do(ctx, http.MethodGet, "/api/v1/stores/"+id, "", nil, &store)
	if err != nil || !success(status) {
		return status, nil, err
	}
	return status, &store, nil
}

func (s *StoreService) Create(ctx context.Context, fields map[string]string, image *Upload) (int, *Store, error) {
	var store Store
	status, err := s.client.doMultipart(ctx, http.MethodPost, "/api/v1/stores/", fields, image, &store)
	if err != nil || !success(status) {
		return status, nil, err
	}
	return status, &store, nil
}

func (s *StoreService) Update(ctx context.Context, id string, fields map[string]string, image *Upload) (int, *Store, error) {
	var store Store
	status, err := s.client.doMultipart(ctx, http.MethodPut, "/api/v1/stores/"+id, fields, image, &store)
	if err != nil || !success(status) {
		return status, nil, err
	}
	return status, &store, nil
}

func (s *StoreService) Delete(ctx context.Context, id string) (int, error) {
	return s.client.doJSON(ctx, http.MethodDelete, "/api/v1/stores/"+id, nil, nil)
}

func (s *StoreService) DeleteMany(ctx context.Context, ids []string) (int, error) {
	payload := map[string][]string{"ids": ids}
	return s.client.doJSON(ctx, http.MethodDelete, "/api/v1/stores/delete-multiple", payload, nil)
}

func (s *StoreService) Image(ctx context.Context, id string) (int, *Upload, error) {
	return s.client.doImage(ctx, "/api/v1/stores/"+id+"/image")
}

func (s *StoreService) Import(ctx context.Context, rows []map[string]any) (int, error) {
	return s.client.doJSON(ctx, http.MethodPost, "/api/v1/stores/import", rows, nil)
}

// CategoryService wraps the service category endpoints.
type CategoryService struct {
	client *Client
}

func (s *CategoryService) List(ctx context.Context, params ListParams) (int, *ListResult[Category], error) {
	var result ListResult[Category]
	status, err := s.client.do(ctx, http.MethodGet, "/api/v1/categories/"+params.encode(), "", nil, &result)
	if err != nil || !success(status) {
		return status, nil, err
	}
	return status, &result, nil
}

func (s *CategoryService) Get(ctx context.Context, id string) (int, *Category, error) {
	var category Category
	status, err := s.client.do(ctx, http.MethodGet, "/api/v1/categories/"+id, "", nil, &category)
	if err != nil || !success(status) {
		return status, nil, err
	}
	return status, &category, nil
}

func (s *CategoryService) Create(ctx context.Context, fields map[string]string, image *Upload) (int, *Category, error) {
	var category Category
	status, err := s.client.doMultipart(ctx, http.MethodPost, "/api/v1/categories/", fields, image, &category)
	if err != nil || !success(status) {
		return status, nil, err
	}
	return status, &category, nil
}

func (s *CategoryService) Update(ctx context.Context, id string, fields map[string]string, image *Upload) (int, *Category, error) {
	var category Category
	status, err := s.client.doMultipart(ctx, http.MethodPut, "/api/v1/categories/"+id, fields, image, &category)
	if err != nil || !success(status) {
		return status, nil, err
	}
	return status, &category, nil
}

func (s *CategoryService) Delete(ctx context.Context, id string) (int, error) {
	return s.client.doJSON(ctx, http.MethodDelete, "/api/v1/categories/"+id, nil, nil)
}

func (s *CategoryService) DeleteMany(ctx context.Context, ids []string) (int, error) {
	payload := map[string][]string{"ids": ids}
	return s.client.doJSON(ctx, http.MethodDelete, "/api/v1/categories/delete-multiple", payload, nil)
}

func (s *CategoryService) Image(ctx context.Context, id string) (int, *Upload, error) {
	return s.client.doImage(ctx, "/api/v1/categories/"+id+"/image")
}

func (s *CategoryService) Import(ctx context.Context, rows []map[string]any) (int, error) {
	return s.client.doJSON(ctx, http.MethodPost, "/api/v1/categories/import", rows, nil)
}
