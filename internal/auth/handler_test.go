package auth_test

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-chi/chi/v5"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/bodega-pos/bodega/internal/auth"
	"github.com/bodega-pos/bodega/internal/shared"
)

type stubRepo struct {
	operators map[string]*auth.Operator
}

func (r *stubRepo) FindByUsername(ctx context.Context, username string) (*auth.Operator, error) {
	op, ok := r.operators[username]
	if !ok {
		return nil, shared.ErrNotFound
	}
	return op, nil
}

func (r *stubRepo) FindByID(ctx context.Context, id int64) (*auth.Operator, error) {
	for _, op := range r.operators {
		if op.ID == id {
			return op, nil
		}
	}
	return nil, shared.ErrNotFound
}

func newTestHandler(t *testing.T) (*auth.Handler, *shared.SessionManager) {
	t.Helper()

	hash, err := bcrypt.GenerateFromPassword([]byte("contrasena1"), bcrypt.MinCost)
	require.NoError(t, err)

	repo := &stubRepo{operators: map[string]*auth.Operator{
		"ana": {ID: 1, Username: "ana", Name: "Ana", Role: shared.RoleAdmin, PasswordHash: string(hash), IsActive: true},
		"celia": {
			ID: 3, Username: "celia", Name: "Celia", Role: shared.RoleCashier,
			PasswordHash: string(hash), IsActive: false,
		},
	}}

	mr := miniredis.RunT(t)
	redisClient := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	sessionManager := shared.NewSessionManager(redisClient, "test_session", "secret", time.Hour, false)
	csrfManager := shared.NewCSRFManager("csrf-secret")
	logger := slog.New(slog.NewTextHandler(bytes.NewBuffer(nil), nil))

	service := auth.NewService(repo)
	return auth.NewHandler(logger, service, sessionManager, csrfManager), sessionManager
}

func doLogin(t *testing.T, handler *auth.Handler, sm *shared.SessionManager, body string) *httptest.ResponseRecorder {
	t.Helper()

	router := chi.NewRouter()
	handler.MountRoutes(router)

	req := httptest.NewRequest(http.MethodPost, "/login", bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")

	sess, err := sm.Load(context.Background(), req)
	require.NoError(t, err)
	req = req.WithContext(shared.ContextWithSession(req.Context(), sess))

	res := httptest.NewRecorder()
	router.ServeHTTP(res, req)
	require.NoError(t, sm.Commit(req.Context(), res, req, sess))
	return res
}

func TestLoginSuccess(t *testing.T) {
	handler, sm := newTestHandler(t)

	res := doLogin(t, handler, sm, `{"username":"ana","password":"contrasena1"}`)
	require.Equal(t, http.StatusOK, res.Code)

	var payload struct {
		OperatorID int64    `json:"operator_id"`
		Role       string   `json:"role"`
		CSRFToken  string   `json:"csrf_token"`
		Caps       []string `json:"capabilities"`
	}
	require.NoError(t, json.Unmarshal(res.Body.Bytes(), &payload))
	require.Equal(t, int64(1), payload.OperatorID)
	require.Equal(t, shared.RoleAdmin, payload.Role)
	require.NotEmpty(t, payload.CSRFToken)
	require.Contains(t, payload.Caps, shared.CapViewFinancials)
	require.NotEmpty(t, res.Result().Cookies())
}

func TestLoginWrongPassword(t *testing.T) {
	handler, sm := newTestHandler(t)

	res := doLogin(t, handler, sm, `{"username":"ana","password":"incorrecta99"}`)
	require.Equal(t, http.StatusUnauthorized, res.Code)
}

func TestLoginInactiveOperator(t *testing.T) {
	handler, sm := newTestHandler(t)

	res := doLogin(t, handler, sm, `{"username":"celia","password":"contrasena1"}`)
	require.Equal(t, http.StatusUnauthorized, res.Code)
}

func TestLoginValidation(t *testing.T) {
	handler, sm := newTestHandler(t)

	res := doLogin(t, handler, sm, `{"username":"ana"}`)
	require.Equal(t, http.StatusBadRequest, res.Code)
}

func TestMeWithoutOperator(t *testing.T) {
	handler, _ := newTestHandler(t)

	router := chi.NewRouter()
	handler.MountRoutes(router)

	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	res := httptest.NewRecorder()
	router.ServeHTTP(res, req)
	require.Equal(t, http.StatusUnauthorized, res.Code)
}
