package clients_test

import (
	"context"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/linemk/micro-shop/internal/clients"
	"github.com/linemk/micro-shop/internal/domain/models"
	"github.com/linemk/micro-shop/internal/lib/httperr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stdout, nil))
}

func TestProductClient_GetByID_Success(t *testing.T) {
	productID := uuid.NewString()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/products/"+productID, r.URL.Path)
		assert.Equal(t, "Bearer some-token", r.Header.Get("Authorization"))
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"id":"` + productID + `","sku":"TSHIRT-1","name":"T-Shirt","price":25.5,"currency":"USD","stock":10,"isActive":true}`))
	}))
	defer srv.Close()

	client := clients.NewProductClient(testLogger(), srv.URL, clients.ServiceOrder, time.Second)

	product, err := client.GetByID(context.Background(), productID, "some-token")
	require.NoError(t, err)
	assert.Equal(t, "T-Shirt", product.Name)
	assert.Equal(t, 25.5, product.Price)
	assert.Equal(t, models.CurrencyUSD, product.Currency)
}

func TestProductClient_GetByID_InvalidIDNoRequest(t *testing.T) {
	called := false
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
	}))
	defer srv.Close()

	client := clients.NewProductClient(testLogger(), srv.URL, clients.ServiceOrder, time.Second)

	// невалидный id отбрасывается локально, без похода по сети
	_, err := client.GetByID(context.Background(), "not-a-uuid", "token")
	require.Error(t, err)
	assert.True(t, httperr.IsKind(err, httperr.KindBadRequest))
	assert.False(t, called, "malformed id must not reach the remote service")
}

func TestProductClient_GetByID_NotFound(t *testing.T) {
	productID := uuid.NewString()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		w.Write([]byte(`{"error":"no such product"}`))
	}))
	defer srv.Close()

	client := clients.NewProductClient(testLogger(), srv.URL, clients.ServiceOrder, time.Second)

	_, err := client.GetByID(context.Background(), productID, "token")
	require.Error(t, err)
	assert.True(t, httperr.IsKind(err, httperr.KindNotFound))
	// 404 апстрима получает каноничное сообщение с id
	assert.Contains(t, err.Error(), productID)
}

func TestProductClient_GetByID_ForbiddenPassesThrough(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		w.Write([]byte(`{"error":"owner or admin access required"}`))
	}))
	defer srv.Close()

	client := clients.NewProductClient(testLogger(), srv.URL, clients.ServiceReceipt, time.Second)

	// отказ в доступе апстрима не выцветает в BadRequest
	_, err := client.GetByID(context.Background(), uuid.NewString(), "stranger-token")
	require.Error(t, err)
	assert.True(t, httperr.IsKind(err, httperr.KindForbidden))
	assert.Contains(t, err.Error(), "owner or admin access required")
}

func TestProductClient_GetByID_Timeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
	}))
	defer srv.Close()

	client := clients.NewProductClient(testLogger(), srv.URL, clients.ServiceOrder, 50*time.Millisecond)

	_, err := client.GetByID(context.Background(), uuid.NewString(), "token")
	require.Error(t, err)

	// таймаут переводится в 503 с метаданными сбоя
	httpErr, ok := httperr.From(err)
	require.True(t, ok)
	assert.Equal(t, httperr.KindUnavailable, httpErr.Kind)
	assert.Equal(t, clients.ServiceOrder, httpErr.Service)
	assert.Equal(t, clients.ServiceProduct, httpErr.Dependency)
	assert.NotEmpty(t, httpErr.Details)
}

func TestProductClient_AdjustStock_Success(t *testing.T) {
	productID := uuid.NewString()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPatch, r.Method)
		assert.Equal(t, "/products/"+productID+"/stock", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"id":"` + productID + `","sku":"MUG-1","name":"Mug","price":10,"currency":"USD","stock":3,"isActive":true}`))
	}))
	defer srv.Close()

	client := clients.NewProductClient(testLogger(), srv.URL, clients.ServiceOrder, time.Second)

	product, err := client.AdjustStock(context.Background(), productID, -2, "token")
	require.NoError(t, err)
	assert.Equal(t, 3, product.Stock)
}

func TestProductClient_AdjustStock_Conflict(t *testing.T) {
	productID := uuid.NewString()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"error":"not enough stock or product not found"}`))
	}))
	defer srv.Close()

	client := clients.NewProductClient(testLogger(), srv.URL, clients.ServiceOrder, time.Second)

	_, err := client.AdjustStock(context.Background(), productID, -100, "token")
	require.Error(t, err)
	assert.True(t, httperr.IsKind(err, httperr.KindBadRequest))
	assert.Contains(t, err.Error(), "not enough stock or product not found")
}

func TestProductClient_GetByIDs_Dedup(t *testing.T) {
	productID := uuid.NewString()
	requests := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests++
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"id":"` + productID + `","sku":"MUG-1","name":"Mug","price":10,"currency":"USD","stock":3,"isActive":true}`))
	}))
	defer srv.Close()

	client := clients.NewProductClient(testLogger(), srv.URL, clients.ServiceOrder, time.Second)

	products, err := client.GetByIDs(context.Background(), []string{productID, productID, productID}, "token")
	require.NoError(t, err)
	assert.Len(t, products, 1, "duplicate ids must collapse into one product")
	assert.Equal(t, 1, requests, "duplicate ids must not produce extra requests")
}
