package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/calebrws/investor-portal/internal/entity"
	"github.com/calebrws/investor-portal/internal/infra/http/middleware"
	"github.com/calebrws/investor-portal/internal/usecase"
)

type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) Create(ctx context.Context, user *entity.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *MockUserRepository) FindByUsername(ctx context.Context, username string) (*entity.User, error) {
	args := m.Called(ctx, username)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.User), args.Error(1)
}

func (m *MockUserRepository) FindByID(ctx context.Context, id string) (*entity.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.User), args.Error(1)
}

func (m *MockUserRepository) UpdateLastLogin(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockUserRepository) UpdatePassword(ctx context.Context, id, passwordHash string) error {
	args := m.Called(ctx, id, passwordHash)
	return args.Error(0)
}

func testRouter(t *testing.T, userRepo entity.UserRepositoryInterface) http.Handler {
	t.Helper()

	log := zap.NewNop()
	sessions := middleware.NewSessionManager("test-secret")
	authUC := usecase.NewAuthenticateUserUseCase(userRepo, log)
	authHandler := NewAuthHandler(authUC, sessions, log)

	r := chi.NewRouter()
	r.Use(sessions.LoadUser)
	r.Post("/login", authHandler.Login)
	r.Post("/logout", authHandler.Logout)
	r.Route("/api/investor", func(r chi.Router) {
		r.Use(sessions.RequireInvestor)
		r.Get("/ping", func(w http.ResponseWriter, r *http.Request) {
			u, _ := middleware.CurrentUser(r)
			writeJSON(w, http.StatusOK, map[string]string{"investor_id": u.InvestorID})
		})
	})
	r.Route("/api/admin", func(r chi.Router) {
		r.Use(sessions.RequireAdmin)
		r.Get("/ping", func(w http.ResponseWriter, r *http.Request) {
			writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
		})
	})
	return r
}

func investorUser(t *testing.T) *entity.User {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte("eric123"), bcrypt.MinCost)
	require.NoError(t, err)

	investorID := "inv-1"
	name := "Eric"
	return &entity.User{
		ID:           "user-1",
		Username:     "eric",
		PasswordHash: string(hash),
		InvestorID:   &investorID,
		InvestorName: &name,
	}
}

func login(t *testing.T, router http.Handler, username, password string) *httptest.ResponseRecorder {
	t.Helper()
	body := `{"username":"` + username + `","password":"` + password + `"}`
	req := httptest.NewRequest(http.MethodPost, "/login", strings.NewReader(body))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func TestLoginSuccessSetsSession(t *testing.T) {
	userRepo := new(MockUserRepository)
	userRepo.On("FindByUsername", mock.Anything, "eric").Return(investorUser(t), nil)
	userRepo.On("UpdateLastLogin", mock.Anything, "user-1").Return(nil)

	router := testRouter(t, userRepo)
	rec := login(t, router, "eric", "eric123")

	require.Equal(t, http.StatusOK, rec.Code)

	var resp LoginResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.True(t, resp.Success)
	assert.Equal(t, "eric", resp.Username)
	require.NotNil(t, resp.InvestorID)
	assert.Equal(t, "inv-1", *resp.InvestorID)
	assert.NotEmpty(t, rec.Result().Cookies())
}

func TestLoginWrongPassword(t *testing.T) {
	userRepo := new(MockUserRepository)
	userRepo.On("FindByUsername", mock.Anything, "eric").Return(investorUser(t), nil)

	router := testRouter(t, userRepo)
	rec := login(t, router, "eric", "not-it")

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Empty(t, rec.Result().Cookies())
}

func TestInvestorRouteRequiresSession(t *testing.T) {
	router := testRouter(t, new(MockUserRepository))

	req := httptest.NewRequest(http.MethodGet, "/api/investor/ping", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestInvestorSessionScopesRequests(t *testing.T) {
	userRepo := new(MockUserRepository)
	userRepo.On("FindByUsername", mock.Anything, "eric").Return(investorUser(t), nil)
	userRepo.On("UpdateLastLogin", mock.Anything, "user-1").Return(nil)

	router := testRouter(t, userRepo)
	loginRec := login(t, router, "eric", "eric123")
	require.Equal(t, http.StatusOK, loginRec.Code)

	req := httptest.NewRequest(http.MethodGet, "/api/investor/ping", nil)
	for _, c := range loginRec.Result().Cookies() {
		req.AddCookie(c)
	}
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var resp map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "inv-1", resp["investor_id"])
}

func TestInvestorSessionCannotReachAdminRoutes(t *testing.T) {
	userRepo := new(MockUserRepository)
	userRepo.On("FindByUsername", mock.Anything, "eric").Return(investorUser(t), nil)
	userRepo.On("UpdateLastLogin", mock.Anything, "user-1").Return(nil)

	router := testRouter(t, userRepo)
	loginRec := login(t, router, "eric", "eric123")

	req := httptest.NewRequest(http.MethodGet, "/api/admin/ping", nil)
	for _, c := range loginRec.Result().Cookies() {
		req.AddCookie(c)
	}
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestLogoutClearsSession(t *testing.T) {
	userRepo := new(MockUserRepository)
	userRepo.On("FindByUsername", mock.Anything, "eric").Return(investorUser(t), nil)
	userRepo.On("UpdateLastLogin", mock.Anything, "user-1").Return(nil)

	router := testRouter(t, userRepo)
	loginRec := login(t, router, "eric", "eric123")

	logoutReq := httptest.NewRequest(http.MethodPost, "/logout", nil)
	for _, c := range loginRec.Result().Cookies() {
		logoutReq.AddCookie(c)
	}
	logoutRec := httptest.NewRecorder()
	router.ServeHTTP(logoutRec, logoutReq)
	require.Equal(t, http.StatusOK, logoutRec.Code)

	// The expired cookie no longer grants access.
	req := httptest.NewRequest(http.MethodGet, "/api/investor/ping", nil)
	for _, c := range logoutRec.Result().Cookies() {
		req.AddCookie(c)
	}
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}
