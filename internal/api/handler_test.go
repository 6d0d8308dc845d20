package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"suiteship/internal/auth"
	"suiteship/internal/models"
	"suiteship/internal/service"
	"suiteship/internal/store"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Fakes for the consumer-side service interfaces. Function fields left nil
// fall back to a not-found / empty default.

type fakeAuth struct {
	sessions    map[string]*models.User
	registerErr error
	loginErr    error
}

func (f *fakeAuth) Register(ctx context.Context, username, password string) (*models.User, string, error) {
	if f.registerErr != nil {
		return nil, "", f.registerErr
	}
	user := &models.User{ID: 1, Username: username, Role: models.RoleClient}
	return user, "new-session-token", nil
}

func (f *fakeAuth) Login(ctx context.Context, username, password string) (*models.User, string, error) {
	if f.loginErr != nil {
		return nil, "", f.loginErr
	}
	user := &models.User{ID: 1, Username: username, Role: models.RoleClient}
	return user, "login-session-token", nil
}

func (f *fakeAuth) Logout(ctx context.Context, token string) error { return nil }

func (f *fakeAuth) Authenticate(ctx context.Context, token string) (*models.User, error) {
	if user, ok := f.sessions[token]; ok {
		return user, nil
	}
	return nil, auth.ErrUnauthenticated
}

func (f *fakeAuth) SessionTTL() time.Duration { return time.Hour }

type fakeClients struct {
	createFn   func(*service.CreateClientRequest) (*models.Client, error)
	updateFn   func(int64, *service.UpdateClientRequest, bool) (*models.Client, error)
	byIDFn     func(int64) (*models.Client, error)
	byUserIDFn func(int64) (*models.Client, error)
	listFn     func() ([]models.Client, error)
}

func (f *fakeClients) CreateClient(ctx context.Context, req *service.CreateClientRequest) (*models.Client, error) {
	if f.createFn == nil {
		return nil, store.ErrNotFound
	}
	return f.createFn(req)
}

func (f *fakeClients) UpdateClient(ctx context.Context, id int64, req *service.UpdateClientRequest, asAdmin bool) (*models.Client, error) {
	if f.updateFn == nil {
		return nil, store.ErrNotFound
	}
	return f.updateFn(id, req, asAdmin)
}

func (f *fakeClients) GetClientByID(ctx context.Context, id int64) (*models.Client, error) {
	if f.byIDFn == nil {
		return nil, store.ErrNotFound
	}
	return f.byIDFn(id)
}

func (f *fakeClients) GetClientByUserID(ctx context.Context, userID int64) (*models.Client, error) {
	if f.byUserIDFn == nil {
		return nil, store.ErrNotFound
	}
	return f.byUserIDFn(userID)
}

func (f *fakeClients) ListClients(ctx context.Context) ([]models.Client, error) {
	if f.listFn == nil {
		return []models.Client{}, nil
	}
	return f.listFn()
}

type fakeCatalog struct {
	products []models.Product
	carriers []models.Carrier
	settings *models.SystemSettings

	createProductFn func(*service.CreateProductRequest) (*models.Product, error)
	createCarrierFn func(*service.CreateCarrierRequest) (*models.Carrier, error)
}

func (f *fakeCatalog) CreateProduct(ctx context.Context, req *service.CreateProductRequest) (*models.Product, error) {
	if f.createProductFn == nil {
		return nil, fmt.Errorf("unexpected CreateProduct call")
	}
	return f.createProductFn(req)
}

func (f *fakeCatalog) ListProducts(ctx context.Context) ([]models.Product, error) {
	return f.products, nil
}

func (f *fakeCatalog) SuiteProducts(ctx context.Context, userID int64) ([]models.Product, error) {
	return f.products, nil
}

func (f *fakeCatalog) CreateCarrier(ctx context.Context, req *service.CreateCarrierRequest) (*models.Carrier, error) {
	if f.createCarrierFn == nil {
		return nil, fmt.Errorf("unexpected CreateCarrier call")
	}
	return f.createCarrierFn(req)
}

func (f *fakeCatalog) ListCarriers(ctx context.Context) ([]models.Carrier, error) {
	return f.carriers, nil
}

func (f *fakeCatalog) GetSettings(ctx context.Context) (*models.SystemSettings, error) {
	if f.settings == nil {
		return nil, store.ErrNotFound
	}
	return f.settings, nil
}

func (f *fakeCatalog) SaveSettings(ctx context.Context, req *service.SaveSettingsRequest) (*models.SystemSettings, error) {
	f.settings = &models.SystemSettings{ID: 1, HourlyRate: req.HourlyRate}
	return f.settings, nil
}

type fakeShipments struct {
	createFn func(*models.User, *service.CreateShipmentRequest) (*service.CreateShipmentResponse, error)
	listFn   func(int64) ([]models.Shipment, error)
}

func (f *fakeShipments) CreateShipment(ctx context.Context, actor *models.User, req *service.CreateShipmentRequest) (*service.CreateShipmentResponse, error) {
	if f.createFn == nil {
		return nil, fmt.Errorf("unexpected CreateShipment call")
	}
	return f.createFn(actor, req)
}

func (f *fakeShipments) ListShipmentsForUser(ctx context.Context, userID int64) ([]models.Shipment, error) {
	if f.listFn == nil {
		return []models.Shipment{}, nil
	}
	return f.listFn(userID)
}

const (
	adminToken  = "admin-token"
	clientToken = "client-token"
)

func testSessions() map[string]*models.User {
	return map[string]*models.User{
		adminToken:  {ID: 1, Username: "admin", Role: models.RoleAdmin},
		clientToken: {ID: 5, Username: "jane", Role: models.RoleClient},
	}
}

type testEnv struct {
	router    *gin.Engine
	auth      *fakeAuth
	clients   *fakeClients
	catalog   *fakeCatalog
	shipments *fakeShipments
}

func newTestEnv() *testEnv {
	gin.SetMode(gin.TestMode)

	env := &testEnv{
		auth:      &fakeAuth{sessions: testSessions()},
		clients:   &fakeClients{},
		catalog:   &fakeCatalog{},
		shipments: &fakeShipments{},
	}

	handler := NewHandler(env.auth, env.clients, env.catalog, env.shipments)
	env.router = gin.New()
	handler.SetupRoutes(env.router)
	return env
}

func (e *testEnv) do(method, path, token string, body interface{}) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			panic(err)
		}
	}

	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.AddCookie(&http.Cookie{Name: SessionCookie, Value: token})
	}

	rec := httptest.NewRecorder()
	e.router.ServeHTTP(rec, req)
	return rec
}

func TestUnauthenticatedRequestsReturn401(t *testing.T) {
	env := newTestEnv()

	routes := []struct {
		method string
		path   string
	}{
		{http.MethodGet, "/api/user"},
		{http.MethodGet, "/api/clients"},
		{http.MethodGet, "/api/clients/5"},
		{http.MethodPatch, "/api/clients/5"},
		{http.MethodPost, "/api/clients"},
		{http.MethodPost, "/api/products"},
		{http.MethodGet, "/api/products"},
		{http.MethodGet, "/api/suite-products"},
		{http.MethodPost, "/api/carriers"},
		{http.MethodGet, "/api/carriers"},
		{http.MethodPost, "/api/shipments"},
		{http.MethodGet, "/api/shipments"},
		{http.MethodGet, "/api/settings"},
		{http.MethodPut, "/api/settings"},
	}

	for _, route := range routes {
		t.Run(route.method+" "+route.path, func(t *testing.T) {
			rec := env.do(route.method, route.path, "", nil)
			assert.Equal(t, http.StatusUnauthorized, rec.Code)
		})
	}
}

func TestClientRoleForbiddenOnAdminRoutes(t *testing.T) {
	env := newTestEnv()

	routes := []struct {
		method string
		path   string
	}{
		{http.MethodPost, "/api/products"},
		{http.MethodPost, "/api/carriers"},
		{http.MethodPost, "/api/clients"},
		{http.MethodGet, "/api/clients"},
		{http.MethodGet, "/api/settings"},
		{http.MethodPut, "/api/settings"},
	}

	for _, route := range routes {
		t.Run(route.method+" "+route.path, func(t *testing.T) {
			rec := env.do(route.method, route.path, clientToken, nil)
			assert.Equal(t, http.StatusForbidden, rec.Code)
		})
	}
}

func TestAdminCreatesCarrierAndClientSeesIt(t *testing.T) {
	env := newTestEnv()
	env.catalog.createCarrierFn = func(req *service.CreateCarrierRequest) (*models.Carrier, error) {
		carrier := &models.Carrier{
			ID:    7,
			Name:  req.Name,
			Phone: req.Phone,
			Email: req.Email,
		}
		env.catalog.carriers = append(env.catalog.carriers, *carrier)
		return carrier, nil
	}

	rec := env.do(http.MethodPost, "/api/carriers", adminToken, gin.H{
		"name":  "DHL",
		"phone": "123",
		"email": "a@b.com",
	})
	require.Equal(t, http.StatusCreated, rec.Code)

	var created models.Carrier
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))
	assert.Equal(t, int64(7), created.ID)
	assert.Equal(t, "DHL", created.Name)

	rec = env.do(http.MethodGet, "/api/carriers", clientToken, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var listed []models.Carrier
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &listed))
	require.Len(t, listed, 1)
	assert.Equal(t, "DHL", listed[0].Name)
}

func TestCreateCarrierRejectsMalformedBody(t *testing.T) {
	env := newTestEnv()

	rec := env.do(http.MethodPost, "/api/carriers", adminToken, gin.H{
		"name": "DHL",
		// phone and email missing
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestListShipmentsEmptyForUserWithoutClient(t *testing.T) {
	env := newTestEnv()

	rec := env.do(http.MethodGet, "/api/shipments", clientToken, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, "[]", rec.Body.String())
}

func TestCreateClientDuplicateSuiteReturns409(t *testing.T) {
	env := newTestEnv()
	env.clients.createFn = func(req *service.CreateClientRequest) (*models.Client, error) {
		return nil, fmt.Errorf("clients_suite_id_key: %w", store.ErrDuplicate)
	}

	rec := env.do(http.MethodPost, "/api/clients", adminToken, gin.H{
		"user_id":    5,
		"first_name": "Jane",
		"last_name":  "Doe",
		"document":   "123456",
		"email":      "jane@example.com",
		"phone":      "555-0000",
		"suite_id":   "STE-TAKEN001",
	})
	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestGetClientOwnership(t *testing.T) {
	env := newTestEnv()
	env.clients.byUserIDFn = func(userID int64) (*models.Client, error) {
		if userID == 5 {
			return &models.Client{ID: 10, UserID: 5, SuiteID: "STE-AAAA0001"}, nil
		}
		return nil, store.ErrNotFound
	}

	// Client looks up its own profile.
	rec := env.do(http.MethodGet, "/api/clients/5", clientToken, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var client models.Client
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &client))
	assert.Equal(t, "STE-AAAA0001", client.SuiteID)

	// Client may not read someone else's profile.
	rec = env.do(http.MethodGet, "/api/clients/6", clientToken, nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	// Admin may, and gets 404 when it does not exist.
	rec = env.do(http.MethodGet, "/api/clients/6", adminToken, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestUpdateClientOwnership(t *testing.T) {
	env := newTestEnv()
	env.clients.byIDFn = func(id int64) (*models.Client, error) {
		if id == 10 {
			return &models.Client{ID: 10, UserID: 5}, nil
		}
		if id == 11 {
			return &models.Client{ID: 11, UserID: 7}, nil
		}
		return nil, store.ErrNotFound
	}
	env.clients.updateFn = func(id int64, req *service.UpdateClientRequest, asAdmin bool) (*models.Client, error) {
		return &models.Client{ID: id, UserID: 5, Phone: *req.Phone}, nil
	}

	// Owner updates their own profile.
	rec := env.do(http.MethodPatch, "/api/clients/10", clientToken, gin.H{"phone": "555-9999"})
	require.Equal(t, http.StatusOK, rec.Code)

	var client models.Client
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &client))
	assert.Equal(t, "555-9999", client.Phone)

	// Someone else's profile is forbidden.
	rec = env.do(http.MethodPatch, "/api/clients/11", clientToken, gin.H{"phone": "555-9999"})
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestUpdateClientRestrictedFieldReturns403(t *testing.T) {
	env := newTestEnv()
	env.clients.byIDFn = func(id int64) (*models.Client, error) {
		return &models.Client{ID: id, UserID: 5}, nil
	}
	env.clients.updateFn = func(id int64, req *service.UpdateClientRequest, asAdmin bool) (*models.Client, error) {
		if !asAdmin && req.WalletBalance != nil {
			return nil, service.ErrRestrictedField
		}
		return &models.Client{ID: id, UserID: 5}, nil
	}

	rec := env.do(http.MethodPatch, "/api/clients/10", clientToken, gin.H{"wallet_balance": "100.00"})
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestCreateShipment(t *testing.T) {
	env := newTestEnv()
	env.shipments.createFn = func(actor *models.User, req *service.CreateShipmentRequest) (*service.CreateShipmentResponse, error) {
		require.Equal(t, int64(5), actor.ID)
		return &service.CreateShipmentResponse{
			Shipment: &models.Shipment{
				ID:        3,
				ClientID:  10,
				CarrierID: req.CarrierID,
				Status:    models.ShipmentStatusOpen,
				TotalCost: decimal.NewFromInt(40),
				CreatedAt: time.Now(),
			},
		}, nil
	}

	rec := env.do(http.MethodPost, "/api/shipments", clientToken, gin.H{
		"carrier_id": 7,
		"weight_kg":  2.5,
		"products":   []gin.H{{"product_id": 1, "quantity": 2}},
	})
	require.Equal(t, http.StatusCreated, rec.Code)

	var resp service.CreateShipmentResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, models.ShipmentStatusOpen, resp.Shipment.Status)
}

func TestCreateShipmentValidation(t *testing.T) {
	env := newTestEnv()

	// No products.
	rec := env.do(http.MethodPost, "/api/shipments", clientToken, gin.H{
		"carrier_id": 7,
		"products":   []gin.H{},
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	// Zero quantity.
	rec = env.do(http.MethodPost, "/api/shipments", clientToken, gin.H{
		"carrier_id": 7,
		"products":   []gin.H{{"product_id": 1, "quantity": 0}},
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestLoginErrors(t *testing.T) {
	env := newTestEnv()

	env.auth.loginErr = auth.ErrInvalidCredentials
	rec := env.do(http.MethodPost, "/api/login", "", gin.H{
		"username": "jane",
		"password": "wrong-pass",
	})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	env.auth.loginErr = auth.ErrTooManyAttempts
	rec = env.do(http.MethodPost, "/api/login", "", gin.H{
		"username": "jane",
		"password": "wrong-pass",
	})
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
}

func TestRegisterSetsSessionCookie(t *testing.T) {
	env := newTestEnv()

	rec := env.do(http.MethodPost, "/api/register", "", gin.H{
		"username": "jane",
		"password": "s3cret-pass",
	})
	require.Equal(t, http.StatusCreated, rec.Code)

	cookieHeader := rec.Header().Get("Set-Cookie")
	assert.True(t, strings.HasPrefix(cookieHeader, SessionCookie+"="))
	assert.Contains(t, cookieHeader, "new-session-token")

	// The password hash never leaves the server.
	assert.NotContains(t, rec.Body.String(), "password")
}

func TestRegisterDuplicateUsernameReturns409(t *testing.T) {
	env := newTestEnv()
	env.auth.registerErr = fmt.Errorf("users_username_key: %w", store.ErrDuplicate)

	rec := env.do(http.MethodPost, "/api/register", "", gin.H{
		"username": "jane",
		"password": "s3cret-pass",
	})
	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestRegisterRejectsShortPassword(t *testing.T) {
	env := newTestEnv()

	rec := env.do(http.MethodPost, "/api/register", "", gin.H{
		"username": "jane",
		"password": "abc",
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCurrentUser(t *testing.T) {
	env := newTestEnv()

	rec := env.do(http.MethodGet, "/api/user", clientToken, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var user models.User
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &user))
	assert.Equal(t, "jane", user.Username)
	assert.Equal(t, models.RoleClient, user.Role)
}

func TestBearerTokenAccepted(t *testing.T) {
	env := newTestEnv()

	req := httptest.NewRequest(http.MethodGet, "/api/user", nil)
	req.Header.Set("Authorization", "Bearer "+clientToken)

	rec := httptest.NewRecorder()
	env.router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
}
