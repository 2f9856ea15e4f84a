package api

import (
	"context"
	"database/sql"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"marketplace-service/internal/config"
	"marketplace-service/internal/db"
	"marketplace-service/internal/repository"
	"marketplace-service/internal/service"
	"marketplace-service/migrations"
)

type memGuard struct {
	mu   sync.Mutex
	keys map[string]bool
}

func (g *memGuard) Acquire(_ context.Context, key string) (bool, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.keys[key] {
		return false, nil
	}
	g.keys[key] = true
	return true, nil
}

func (g *memGuard) Release(_ context.Context, key string) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	delete(g.keys, key)
	return nil
}

type envelope struct {
	Success bool            `json:"success"`
	Count   *int            `json:"count"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
	Error   *ErrorBody      `json:"error"`
}

func setupServer(t *testing.T, mode string) (*echo.Echo, *sql.DB) {
	t.Helper()

	ctx := context.Background()
	conn, err := db.Open(ctx, config.DatabaseConfig{
		Driver:         db.DriverSQLite,
		DSN:            filepath.Join(t.TempDir(), "test.db"),
		ConnectRetries: 1,
	})
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	require.NoError(t, migrations.AutoMigrate(ctx, conn, db.DriverSQLite, 0))

	cfg := &config.Config{
		Server: config.ServerConfig{Mode: mode, Name: "BangZaky Portfolio API", Version: "1.0.0"},
	}
	store := repository.NewStore(conn)
	svc := Services{
		Templates: service.NewTemplateService(store, nil),
		Users:     service.NewUserService(store, nil),
		Purchases: service.NewPurchaseService(store, nil, &memGuard{keys: map[string]bool{}}),
		BankInfo:  service.NewBankInfoService(store, nil),
	}
	return NewServer(cfg, svc, store), conn
}

func do(t *testing.T, e *echo.Echo, method, target, body string, headers ...string) (int, envelope) {
	t.Helper()

	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, target, nil)
	} else {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	var env envelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env), rec.Body.String())
	return rec.Code, env
}

func decode[T any](t *testing.T, raw json.RawMessage) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(raw, &v), string(raw))
	return v
}

const templateBody = `{
	"title": "Portfolio Pro",
	"description": "A clean portfolio",
	"price": 49.99,
	"category": "portfolio",
	"type": "website",
	"style": "minimal",
	"image_url": "https://img.example.com/p.png",
	"features": ["Fast", "Responsive"],
	"tech_stack": ["React", "Go"]
}`

type templateData struct {
	ID        int64    `json:"id"`
	Title     *string  `json:"title"`
	Features  []string `json:"features"`
	TechStack []string `json:"tech_stack"`
}

func TestUsers_DuplicateEmail(t *testing.T) {
	e, _ := setupServer(t, "development")

	code, env := do(t, e, http.MethodPost, "/api/users", `{"name":"Alice","email":"a@x.com"}`)
	require.Equal(t, http.StatusCreated, code)
	assert.True(t, env.Success)
	assert.Equal(t, "User created successfully", env.Message)
	user := decode[map[string]any](t, env.Data)
	assert.EqualValues(t, 1, user["id"])
	assert.Equal(t, "Alice", user["name"])
	assert.Equal(t, "a@x.com", user["email"])

	code, env = do(t, e, http.MethodPost, "/api/users", `{"name":"Other","email":"a@x.com"}`)
	assert.Equal(t, http.StatusConflict, code)
	assert.False(t, env.Success)
	assert.Equal(t, "Email already exists", env.Error.Message)

	code, env = do(t, e, http.MethodPost, "/api/users", `{"name":"NoEmail"}`)
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, "Name and email are required", env.Error.Message)

	code, env = do(t, e, http.MethodGet, "/api/users", "")
	assert.Equal(t, http.StatusOK, code)
	require.NotNil(t, env.Count)
	assert.Equal(t, 1, *env.Count)
}

func TestTemplatePurchaseLifecycle(t *testing.T) {
	e, _ := setupServer(t, "development")

	code, _ := do(t, e, http.MethodPost, "/api/users", `{"name":"Alice","email":"a@x.com"}`)
	require.Equal(t, http.StatusCreated, code)

	code, env := do(t, e, http.MethodPost, "/api/templates", templateBody)
	require.Equal(t, http.StatusCreated, code)
	assert.Equal(t, "Template created successfully", env.Message)
	created := decode[templateData](t, env.Data)
	require.NotZero(t, created.ID)

	code, env = do(t, e, http.MethodGet, "/api/templates/1", "")
	require.Equal(t, http.StatusOK, code)
	got := decode[templateData](t, env.Data)
	assert.ElementsMatch(t, []string{"Fast", "Responsive"}, got.Features)

	// purchase once, then the same pair conflicts
	code, env = do(t, e, http.MethodPost, "/api/purchases", `{"user_id":1,"template_id":1}`)
	require.Equal(t, http.StatusCreated, code)
	purchase := decode[map[string]any](t, env.Data)
	assert.EqualValues(t, 1, purchase["user_id"])
	assert.EqualValues(t, 1, purchase["template_id"])

	code, env = do(t, e, http.MethodPost, "/api/purchases", `{"user_id":1,"template_id":1}`)
	assert.Equal(t, http.StatusConflict, code)
	assert.Equal(t, "User has already purchased this template", env.Error.Message)

	code, env = do(t, e, http.MethodGet, "/api/purchases/user/1", "")
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, 1, *env.Count)

	// omitted tech_stack leaves the rows, an empty list clears them
	code, _ = do(t, e, http.MethodPut, "/api/templates/1", `{"title":"Portfolio Max","price":"59.00"}`)
	require.Equal(t, http.StatusOK, code)
	_, env = do(t, e, http.MethodGet, "/api/templates/1", "")
	got = decode[templateData](t, env.Data)
	assert.Equal(t, "Portfolio Max", *got.Title)
	assert.Equal(t, []string{"React", "Go"}, got.TechStack)

	code, _ = do(t, e, http.MethodPut, "/api/templates/1", `{"title":"Portfolio Max","tech_stack":[]}`)
	require.Equal(t, http.StatusOK, code)
	_, env = do(t, e, http.MethodGet, "/api/templates/1", "")
	got = decode[templateData](t, env.Data)
	assert.Empty(t, got.TechStack)
	assert.ElementsMatch(t, []string{"Fast", "Responsive"}, got.Features)

	// delete cascades to purchases
	code, env = do(t, e, http.MethodDelete, "/api/templates/1", "")
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, "Template deleted successfully", env.Message)

	code, env = do(t, e, http.MethodGet, "/api/templates/1", "")
	assert.Equal(t, http.StatusNotFound, code)
	assert.Equal(t, "Template not found", env.Error.Message)

	code, env = do(t, e, http.MethodGet, "/api/purchases/user/1", "")
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, 0, *env.Count)
	assert.JSONEq(t, `[]`, string(env.Data))
}

func TestCreateTemplate_Invalid(t *testing.T) {
	e, _ := setupServer(t, "development")

	code, env := do(t, e, http.MethodPost, "/api/templates", `{"title":"Only title"}`)
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, "Missing required fields", env.Error.Message)

	body := strings.Replace(templateBody, `49.99`, `-1`, 1)
	code, env = do(t, e, http.MethodPost, "/api/templates", body)
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, "Price must not be negative", env.Error.Message)

	code, env = do(t, e, http.MethodPost, "/api/templates", `{"title":`)
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, "Invalid request payload", env.Error.Message)
}

func TestPurchases_RoutesAndReferences(t *testing.T) {
	e, _ := setupServer(t, "development")

	code, env := do(t, e, http.MethodGet, "/api/purchases/user/7", "")
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, 0, *env.Count)

	code, env = do(t, e, http.MethodGet, "/api/purchases/abc", "")
	assert.Equal(t, http.StatusNotFound, code)
	assert.Equal(t, "Purchase not found", env.Error.Message)

	code, env = do(t, e, http.MethodPost, "/api/purchases", `{"user_id":1}`)
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, "User ID and Template ID are required", env.Error.Message)

	code, env = do(t, e, http.MethodPost, "/api/purchases", `{"user_id":1,"template_id":1}`)
	assert.Equal(t, http.StatusNotFound, code)
	assert.Equal(t, "User not found", env.Error.Message)
}

func TestPurchases_IdempotentKey(t *testing.T) {
	e, _ := setupServer(t, "development")
	do(t, e, http.MethodPost, "/api/users", `{"name":"Alice","email":"a@x.com"}`)
	do(t, e, http.MethodPost, "/api/templates", templateBody)
	do(t, e, http.MethodPost, "/api/templates", templateBody)

	code, _ := do(t, e, http.MethodPost, "/api/purchases", `{"user_id":1,"template_id":1}`, IdempotentKeyHeader, "abc")
	require.Equal(t, http.StatusCreated, code)

	code, env := do(t, e, http.MethodPost, "/api/purchases", `{"user_id":1,"template_id":2}`, IdempotentKeyHeader, "abc")
	assert.Equal(t, http.StatusConflict, code)
	assert.Equal(t, "Duplicate request", env.Error.Message)
}

func TestBankInfo(t *testing.T) {
	e, _ := setupServer(t, "development")

	code, env := do(t, e, http.MethodPost, "/api/bank-info", `{"bank_name":"BCA","account_number":"123","account_name":"Zaky"}`)
	require.Equal(t, http.StatusCreated, code)
	assert.Equal(t, "Bank info created successfully", env.Message)

	code, _ = do(t, e, http.MethodPut, "/api/bank-info/1", `{"account_name":"Bang Zaky"}`)
	require.Equal(t, http.StatusOK, code)

	code, env = do(t, e, http.MethodGet, "/api/bank-info/1", "")
	require.Equal(t, http.StatusOK, code)
	info := decode[map[string]any](t, env.Data)
	assert.Equal(t, "BCA", info["bank_name"])
	assert.Equal(t, "Bang Zaky", info["account_name"])

	code, env = do(t, e, http.MethodPost, "/api/bank-info", `{"bank_name":"BCA"}`)
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, "All fields are required", env.Error.Message)

	code, env = do(t, e, http.MethodDelete, "/api/bank-info/9", "")
	assert.Equal(t, http.StatusNotFound, code)
	assert.Equal(t, "Bank info not found", env.Error.Message)
}

func TestUnmatchedRoute(t *testing.T) {
	e, _ := setupServer(t, "development")

	code, env := do(t, e, http.MethodGet, "/api/nope", "")
	assert.Equal(t, http.StatusNotFound, code)
	assert.False(t, env.Success)
	assert.Equal(t, "Route /api/nope not found", env.Error.Message)

	code, env = do(t, e, http.MethodPatch, "/api/templates", "")
	assert.Equal(t, http.StatusNotFound, code)
	assert.Equal(t, "Route /api/templates not found", env.Error.Message)
}

func TestErrorStackOnlyOutsideProduction(t *testing.T) {
	e, conn := setupServer(t, "development")
	require.NoError(t, conn.Close())

	code, env := do(t, e, http.MethodGet, "/api/templates", "")
	assert.Equal(t, http.StatusInternalServerError, code)
	assert.NotEmpty(t, env.Error.Stack)

	e, conn = setupServer(t, "production")
	require.NoError(t, conn.Close())

	code, env = do(t, e, http.MethodGet, "/api/templates", "")
	assert.Equal(t, http.StatusInternalServerError, code)
	assert.Equal(t, "Internal Server Error", env.Error.Message)
	assert.Empty(t, env.Error.Stack)
}

func TestDescriptorAndHealth(t *testing.T) {
	e, conn := setupServer(t, "development")

	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	var descriptor map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &descriptor))
	assert.Equal(t, "BangZaky Portfolio API", descriptor["message"])
	assert.Equal(t, "/api/bank-info", descriptor["endpoints"].(map[string]any)["bankInfo"])
	assert.NotEmpty(t, rec.Header().Get(echo.HeaderXRequestID))

	rec = httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, rec.Code)

	require.NoError(t, conn.Close())
	rec = httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}
