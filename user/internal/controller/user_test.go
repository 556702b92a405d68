package controller

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Alturino/marketplace/internal/config"
	"github.com/Alturino/marketplace/internal/repository/repositorytest"
	"github.com/Alturino/marketplace/user/internal/service"
)

type linkMailer struct {
	links []string
}

func (m *linkMailer) SendPasswordResetEmail(c context.Context, to string, resetLink string) error {
	m.links = append(m.links, resetLink)
	return nil
}

func serve(t *testing.T, router http.Handler, method, path, body string) (int, map[string]interface{}) {
	t.Helper()

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(method, path, strings.NewReader(body)))

	decoded := map[string]interface{}{}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&decoded))
	assert.EqualValues(t, rec.Code, decoded["statusCode"])
	return rec.Code, decoded
}

func TestUserRoutes(t *testing.T) {
	mailer := &linkMailer{}
	router := mux.NewRouter()
	AttachUserController(router, router, service.NewUserService(
		repositorytest.NewStore(),
		mailer,
		config.Application{SecretKey: "test-secret", TokenTTL: time.Minute},
		config.PasswordReset{LinkBaseURL: "http://localhost:3000/reset-password", TTL: time.Hour},
	))

	code, _ := serve(t, router, http.MethodPost, "/users/register",
		`{"username":"alice","email":"alice@example.com","password":"secret"}`)
	assert.Equal(t, http.StatusCreated, code)

	code, _ = serve(t, router, http.MethodPost, "/users/register",
		`{"username":"alice","email":"alice@example.com","password":"secret"}`)
	assert.Equal(t, http.StatusConflict, code)

	code, _ = serve(t, router, http.MethodPost, "/users/register", `{"username":"bob","email":"not-an-email"}`)
	assert.Equal(t, http.StatusBadRequest, code)

	code, body := serve(t, router, http.MethodPost, "/users/login", `{"username":"alice","password":"secret"}`)
	assert.Equal(t, http.StatusOK, code)
	data, ok := body["data"].(map[string]interface{})
	require.True(t, ok)
	assert.NotEmpty(t, data["token"])

	code, body = serve(t, router, http.MethodPost, "/users/login", `{"username":"alice","password":"wrong"}`)
	assert.Equal(t, http.StatusNotFound, code)
	assert.Equal(t, "invalid credentials", body["message"])

	code, _ = serve(t, router, http.MethodPost, "/users/password-reset", `{"email":"alice@example.com"}`)
	assert.Equal(t, http.StatusOK, code)
	require.Len(t, mailer.links, 1)
	link, err := url.Parse(mailer.links[0])
	require.NoError(t, err)
	token := link.Query().Get("token")

	code, body = serve(t, router, http.MethodGet, "/users/password-reset/"+token, "")
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, map[string]interface{}{"valid": true}, body["data"])

	code, _ = serve(t, router, http.MethodGet, "/users/password-reset/not-a-token", "")
	assert.Equal(t, http.StatusBadRequest, code)

	code, _ = serve(t, router, http.MethodPost, "/users/password-reset/"+token, `{"password":"new-secret"}`)
	assert.Equal(t, http.StatusOK, code)

	code, _ = serve(t, router, http.MethodPost, "/users/password-reset/"+token, `{"password":"again"}`)
	assert.Equal(t, http.StatusNotFound, code)

	code, _ = serve(t, router, http.MethodPost, "/users/login", `{"username":"alice","password":"new-secret"}`)
	assert.Equal(t, http.StatusOK, code)
}
