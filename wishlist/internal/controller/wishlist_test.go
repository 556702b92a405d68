package controller

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Alturino/marketplace/internal"
	"github.com/Alturino/marketplace/internal/item"
	"github.com/Alturino/marketplace/internal/middleware"
	"github.com/Alturino/marketplace/internal/repository/repositorytest"
	"github.com/Alturino/marketplace/wishlist/internal/service"
)

const secret = "secret"

type envelope struct {
	Status     string          `json:"status"`
	StatusCode int             `json:"statusCode"`
	Message    string          `json:"message"`
	Data       json.RawMessage `json:"data"`
}

func TestWishlistRoutes(t *testing.T) {
	store := repositorytest.NewStore()
	book := item.Book{Listing: item.Listing{
		ID:            uuid.New(),
		Title:         "Dune",
		Price:         decimal.NewFromInt(10),
		SellerID:      uuid.New(),
		TotalQuantity: 1,
	}}
	_, err := store.InsertItem(context.Background(), book)
	require.NoError(t, err)

	router := mux.NewRouter()
	protected := router.PathPrefix("").Subrouter()
	protected.Use(middleware.Auth(secret))
	AttachWishlistController(protected, service.NewWishlistService(store))

	token, err := internal.NewToken(uuid.New(), secret, time.Hour, time.Now())
	require.NoError(t, err)

	do := func(t *testing.T, method, path, body string, authorized bool) envelope {
		t.Helper()
		req := httptest.NewRequest(method, path, strings.NewReader(body))
		if authorized {
			req.Header.Set("Authorization", "Bearer "+token)
		}
		recorder := httptest.NewRecorder()
		router.ServeHTTP(recorder, req)

		var resp envelope
		require.NoError(t, json.NewDecoder(recorder.Body).Decode(&resp))
		assert.Equal(t, recorder.Code, resp.StatusCode)
		return resp
	}

	resp := do(t, http.MethodGet, "/wishlist", "", false)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	resp = do(t, http.MethodPost, "/wishlist/items", `{"type":"book"}`, true)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp = do(t, http.MethodPost, "/wishlist/items", `{"itemId":"`+book.ID.String()+`","type":"book"}`, true)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	var added struct {
		Item struct {
			ID uuid.UUID `json:"id"`
		} `json:"item"`
	}
	require.NoError(t, json.Unmarshal(resp.Data, &added))

	resp = do(t, http.MethodPost, "/wishlist/items", `{"itemId":"`+book.ID.String()+`","type":"book"}`, true)
	assert.Equal(t, http.StatusConflict, resp.StatusCode)

	resp = do(t, http.MethodGet, "/wishlist", "", true)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var items []map[string]interface{}
	require.NoError(t, json.Unmarshal(resp.Data, &items))
	assert.Len(t, items, 1)

	resp = do(t, http.MethodGet, "/wishlist/items/not-a-uuid", "", true)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp = do(t, http.MethodGet, "/wishlist/items/"+added.Item.ID.String(), "", true)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp = do(t, http.MethodDelete, "/wishlist/items/"+added.Item.ID.String(), "", true)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp = do(t, http.MethodDelete, "/wishlist/items/"+added.Item.ID.String(), "", true)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}
