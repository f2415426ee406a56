package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"graphlet/internal/models"
	"graphlet/internal/repository"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stubAuthService backs the auth endpoints without a database.
type stubAuthService struct {
	users  map[uuid.UUID]*models.User
	tokens map[string]uuid.UUID
}

func newStubAuthService() *stubAuthService {
	return &stubAuthService{
		users:  make(map[uuid.UUID]*models.User),
		tokens: make(map[string]uuid.UUID),
	}
}

func (s *stubAuthService) CreateUser(_ context.Context, req *models.UserCreate) (*models.User, error) {
	for _, u := range s.users {
		if u.Email == req.Email {
			return nil, repository.ErrDuplicateUser
		}
	}
	u := &models.User{ID: uuid.New(), Username: req.Username, Email: req.Email}
	s.users[u.ID] = u
	return u, nil
}

func (s *stubAuthService) GetUser(_ context.Context, id uuid.UUID) (*models.User, error) {
	u, ok := s.users[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return u, nil
}

func (s *stubAuthService) UpdateUser(_ context.Context, id uuid.UUID, update *models.UserUpdate) (*models.User, error) {
	u, err := s.GetUser(nil, id)
	if err != nil {
		return nil, err
	}
	if update.Username != nil {
		u.Username = *update.Username
	}
	return u, nil
}

func (s *stubAuthService) Login(_ context.Context, email, password string) (string, error) {
	for id, u := range s.users {
		if u.Email == email {
			token := uuid.NewString()
			s.tokens[token] = id
			return token, nil
		}
	}
	return "", repository.ErrInvalidCredentials
}

func (s *stubAuthService) Logout(_ context.Context, token string) error {
	delete(s.tokens, token)
	return nil
}

func (s *stubAuthService) ResolveToken(_ context.Context, token string) (uuid.UUID, error) {
	id, ok := s.tokens[token]
	if !ok {
		return uuid.Nil, errors.New("token not found")
	}
	return id, nil
}

func newAuthTestServer(t *testing.T) (*httptest.Server, *stubAuthService) {
	t.Helper()
	auth := newStubAuthService()
	handler := NewHandler(auth, nil, nil, nil, nil, nil)
	srv := httptest.NewServer(SetupRoutes(handler, auth))
	t.Cleanup(srv.Close)
	return srv, auth
}

func doJSON(t *testing.T, method, url, token string, body any) *http.Response {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req, err := http.NewRequest(method, url, &buf)
	require.NoError(t, err)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func TestRegisterAndLogin(t *testing.T) {
	srv, _ := newAuthTestServer(t)

	resp := doJSON(t, "POST", srv.URL+"/api/user/register", "", models.UserCreate{
		Username: "ada",
		Email:    "ada@example.com",
		Password: "correct horse",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	var created models.PublicUser
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&created))
	assert.Equal(t, "ada", created.Username)

	resp = doJSON(t, "POST", srv.URL+"/api/login", "", models.LoginRequest{
		Email:    "ada@example.com",
		Password: "correct horse",
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var login models.LoginResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&login))
	assert.NotEmpty(t, login.Token)

	// The token works against an authenticated endpoint.
	resp = doJSON(t, "GET", srv.URL+"/api/user/me", login.Token, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var me models.PublicUser
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&me))
	assert.Equal(t, created.ID, me.ID)
}

func TestRegisterDuplicateEmail(t *testing.T) {
	srv, _ := newAuthTestServer(t)

	body := models.UserCreate{Username: "ada", Email: "ada@example.com", Password: "pw"}
	resp := doJSON(t, "POST", srv.URL+"/api/user/register", "", body)
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	resp = doJSON(t, "POST", srv.URL+"/api/user/register", "", body)
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
}

func TestRegisterMissingFields(t *testing.T) {
	srv, _ := newAuthTestServer(t)

	resp := doJSON(t, "POST", srv.URL+"/api/user/register", "", models.UserCreate{Username: "ada"})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestLoginBadCredentials(t *testing.T) {
	srv, _ := newAuthTestServer(t)

	resp := doJSON(t, "POST", srv.URL+"/api/login", "", models.LoginRequest{
		Email:    "nobody@example.com",
		Password: "pw",
	})
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestAuthenticatedEndpointsRejectAnonymous(t *testing.T) {
	srv, _ := newAuthTestServer(t)

	for _, path := range []string{"/api/user/me", "/api/workspace"} {
		resp := doJSON(t, "GET", srv.URL+path, "", nil)
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode, path)
	}

	resp := doJSON(t, "GET", srv.URL+"/api/user/me", "garbage-token", nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestLogoutInvalidatesToken(t *testing.T) {
	srv, auth := newAuthTestServer(t)

	u, err := auth.CreateUser(context.Background(), &models.UserCreate{
		Username: "ada", Email: "ada@example.com", Password: "pw",
	})
	require.NoError(t, err)
	token, err := auth.Login(context.Background(), u.Email, "pw")
	require.NoError(t, err)

	resp := doJSON(t, "POST", srv.URL+"/api/logout", token, nil)
	require.Equal(t, http.StatusNoContent, resp.StatusCode)

	resp = doJSON(t, "GET", srv.URL+"/api/user/me", token, nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestHealthEndpoint(t *testing.T) {
	srv, _ := newAuthTestServer(t)

	resp := doJSON(t, "GET", srv.URL+"/api/health", "", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}
