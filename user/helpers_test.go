package user_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/coachhub/backend/user"
	"github.com/coachhub/backend/user/auth"
	userhttp "github.com/coachhub/backend/user/http"
	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testJwtKey = []byte("test")

func newTestUserSrvc(t *testing.T) *user.UserSrvc {
	t.Helper()
	return user.NewUserSrvc(user.NewInMemUserRepo(), testJwtKey)
}

func setupUserHttpHandler(t *testing.T) http.Handler {
	userSrvc := newTestUserSrvc(t)
	userHandler := userhttp.NewUserHttpHandler(userSrvc)
	r := chi.NewRouter()
	r.Use(auth.GetJwtAuthMiddleware(testJwtKey))
	userHandler.RegisterRoutes(r)
	return r
}

func newJsonReq(method, path string, body map[string]interface{}) (*http.Request, error) {
	jsonBody, err := json.Marshal(body)
	if err != nil {
		return nil, err
	}

	req := httptest.NewRequest(method, path, bytes.NewBuffer(jsonBody))
	req.Header.Set("Content-Type", "application/json")
	return req, nil
}

func registerUser(t *testing.T, handler http.Handler, userData map[string]interface{}) *httptest.ResponseRecorder {
	t.Helper()
	req, err := newJsonReq(http.MethodPost, "/users", userData)
	require.NoError(t, err)

	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)
	return w
}

func loginUser(t *testing.T, handler http.Handler, loginData map[string]interface{}) *httptest.ResponseRecorder {
	t.Helper()
	req, err := newJsonReq(http.MethodPost, "/auth/login", loginData)
	require.NoError(t, err)

	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)
	return w
}

// registerAndLogin registers a user with the given role and returns a bearer token.
func registerAndLogin(t *testing.T, handler http.Handler, username string, role string) string {
	t.Helper()
	w := registerUser(t, handler, map[string]interface{}{
		"username": username,
		"email":    username + "@example.com",
		"password": "password123",
		"role":     role,
	})
	require.Equal(t, http.StatusCreated, w.Code, "registration failed: %s", w.Body.String())

	w = loginUser(t, handler, map[string]interface{}{
		"username": username,
		"password": "password123",
	})
	require.Equal(t, http.StatusOK, w.Code, "login failed: %s", w.Body.String())

	var resp struct {
		Data string `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp.Data
}

func assertErrorInHttpResponse(t *testing.T, w *httptest.ResponseRecorder, expectedCode string) {
	t.Helper()

	assert.NotEqual(t, http.StatusOK, w.Code, "Expected error status code")

	var errorResponse struct {
		Status  string `json:"status"`
		Code    string `json:"code"`
		Message string `json:"message"`
	}

	err := json.Unmarshal(w.Body.Bytes(), &errorResponse)
	require.NoError(t, err, "Failed to unmarshal error response body")

	assert.Equal(t, "error", errorResponse.Status, "Expected status to be 'error'")
	assert.Equal(t, expectedCode, errorResponse.Code, "Incorrect error code")
	assert.NotEmpty(t, errorResponse.Message, "Expected non-empty error message")
}
