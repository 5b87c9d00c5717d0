package remote

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"storefront/models"
)

func newTestServer(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return New(srv.URL, 2*time.Second)
}

func TestFetchProducts(t *testing.T) {
	c := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/products", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`[
			{"id": 1, "type": "Shirt", "name": "Basic Tee", "colors": "Black", "price": 100, "stock": 3, "image_url": "/img/1.png"},
			{"id": "x2", "type": "Shirt", "name": "Basic Tee", "colors": "White", "price": "99.5", "stock": 0, "image_url": ""}
		]`))
	})

	rows, err := c.FetchProducts(context.Background())
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, models.ID("1"), rows[0].ID)
	assert.Equal(t, "Black", rows[0].Colors)
	assert.Equal(t, "100", rows[0].Price.String())
	assert.Equal(t, models.ID("x2"), rows[1].ID)
	assert.Equal(t, "99.5", rows[1].Price.String())
}

func TestFetchProductsServerError(t *testing.T) {
	c := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})
	_, err := c.FetchProducts(context.Background())
	require.Error(t, err)
	assert.Equal(t, http.StatusInternalServerError, StatusOf(err))
	assert.Contains(t, err.Error(), "request failed with status code 500")
}

func TestSubmitOrder(t *testing.T) {
	c := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/orders", r.URL.Path)
		var req models.OrderRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "alice", req.User.Username)
		json.NewEncoder(w).Encode(models.Order{OrderID: "A7", Items: req.Items})
	})

	order, err := c.SubmitOrder(context.Background(), models.OrderRequest{
		Items: []models.OrderItem{{ID: "1", Name: "Basic Tee", Quantity: 2}},
		User:  models.User{Username: "alice"},
	})
	require.NoError(t, err)
	assert.Equal(t, models.ID("A7"), order.OrderID)
	require.Len(t, order.Items, 1)
}

func TestSubmitOrderNumericOrderID(t *testing.T) {
	c := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusCreated)
		w.Write([]byte(`{"orderId": 1234, "items": [{"id": 1, "name": "Basic Tee", "color": "Black", "quantity": 2, "price": 70}]}`))
	})

	order, err := c.SubmitOrder(context.Background(), models.OrderRequest{
		Items: []models.OrderItem{{ID: "1", Name: "Basic Tee", Quantity: 2}},
	})
	require.NoError(t, err)
	assert.Equal(t, models.ID("1234"), order.OrderID)
	require.Len(t, order.Items, 1)
	assert.Equal(t, "140", order.Total().String())
}

func TestSubmitOrderRejected(t *testing.T) {
	c := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"message": "Out of stock: Basic Tee"}`))
	})
	_, err := c.SubmitOrder(context.Background(), models.OrderRequest{})
	require.Error(t, err)
	assert.Equal(t, "Out of stock: Basic Tee", Detail(err))
	assert.Equal(t, http.StatusBadRequest, StatusOf(err))
}

func TestErrorBodyFallsBackToErrorField(t *testing.T) {
	c := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusConflict)
		w.Write([]byte(`{"error": "taken"}`))
	})
	_, err := c.Register(context.Background(), RegisterRequest{Username: "bob"})
	assert.Equal(t, "taken", Detail(err))
}

func TestLoginAndDuplicateCheck(t *testing.T) {
	c := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/auth/login":
			var req LoginRequest
			json.NewDecoder(r.Body).Decode(&req)
			json.NewEncoder(w).Encode(LoginResult{Success: true, User: models.User{Username: "alice", Avatar: "/a.png"}})
		case "/check-duplicate":
			var body map[string]string
			json.NewDecoder(r.Body).Decode(&body)
			json.NewEncoder(w).Encode(map[string]bool{"exists": body["username"] == "taken"})
		default:
			http.NotFound(w, r)
		}
	})

	res, err := c.Login(context.Background(), LoginRequest{Email: "a@b.co", Password: "abc123"})
	require.NoError(t, err)
	assert.True(t, res.Success)
	assert.Equal(t, "alice", res.User.Username)

	exists, err := c.CheckDuplicate(context.Background(), "username", "taken")
	require.NoError(t, err)
	assert.True(t, exists)

	exists, err = c.CheckDuplicate(context.Background(), "username", "free")
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestFetchAvatar(t *testing.T) {
	c := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/avatars/a.png", r.URL.Path)
		w.Write([]byte("png-bytes"))
	})
	b, err := c.FetchAvatar(context.Background(), "/avatars/a.png")
	require.NoError(t, err)
	assert.Equal(t, "png-bytes", string(b))
}
