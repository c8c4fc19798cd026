package http

import (
	"encoding/json"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/martinmiralles/mar-pokemart/internal/domain"
)

func TestCreateOrder(t *testing.T) {
	s := newTestServer(t)
	s.products.On("GetByID", mock.Anything, widgetID).
		Return(&domain.Product{ID: widgetID, Name: "Widget", Price: 2500, CountInStock: 10}, nil)
	s.orders.On("Create", mock.Anything, mock.AnythingOfType("*domain.Order")).Return(nil)

	body := map[string]any{
		"items": []map[string]any{{"product_id": widgetID, "quantity": 4}},
		"shipping_address": map[string]any{
			"address": "1 Route", "city": "Pallet Town", "postal_code": "00001", "country": "Kanto",
		},
		"payment_method": "PayPal",
		"items_price":    1,
	}

	rec := s.do(t, http.MethodPost, "/api/orders", s.token(t, buyer), body)

	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var order domain.Order
	require.NoError(t, json.Unmarshal(decodeEnvelope(t, rec).Data, &order))
	assert.Equal(t, buyerID, order.UserID)
	assert.Equal(t, int64(10000), order.ItemsPrice)
	assert.Equal(t, int64(1000), order.ShippingPrice)
	assert.Equal(t, int64(1500), order.TaxPrice)
	assert.Equal(t, int64(12500), order.TotalPrice)
}

func TestCreateOrder_EmptyItems(t *testing.T) {
	s := newTestServer(t)

	rec := s.do(t, http.MethodPost, "/api/orders", s.token(t, buyer), map[string]any{
		"items":            []any{},
		"shipping_address": map[string]any{"address": "a", "city": "b", "postal_code": "c", "country": "d"},
		"payment_method":   "PayPal",
	})

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	s.orders.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestOrderOwnership(t *testing.T) {
	s := newTestServer(t)
	order := &domain.Order{ID: orderID, UserID: buyerID, TotalPrice: 1150}
	s.orders.On("GetByID", mock.Anything, orderID).Return(order, nil)
	s.orders.On("UpdateStatus", mock.Anything, order).Return(nil)

	rec := s.do(t, http.MethodGet, "/api/orders/"+orderID, s.token(t, admin), nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = s.do(t, http.MethodGet, "/api/orders/"+orderID, s.token(t, buyer), nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = s.do(t, http.MethodPut, "/api/orders/"+orderID+"/pay", s.token(t, admin), nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = s.do(t, http.MethodPut, "/api/orders/"+orderID+"/pay", s.token(t, buyer), nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, order.IsPaid)

	rec = s.do(t, http.MethodPut, "/api/orders/"+orderID+"/pay", s.token(t, buyer), nil)
	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestDeliverOrder_AdminOnly(t *testing.T) {
	s := newTestServer(t)
	paidAt := time.Now().Add(-time.Hour)
	order := &domain.Order{ID: orderID, UserID: buyerID, IsPaid: true, PaidAt: &paidAt}
	s.orders.On("GetByID", mock.Anything, orderID).Return(order, nil)
	s.orders.On("UpdateStatus", mock.Anything, order).Return(nil)

	rec := s.do(t, http.MethodPut, "/api/orders/"+orderID+"/deliver", s.token(t, buyer), nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = s.do(t, http.MethodPut, "/api/orders/"+orderID+"/deliver", s.token(t, admin), nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, order.IsDelivered)
}

func TestMyOrders(t *testing.T) {
	s := newTestServer(t)
	s.orders.On("ListByUser", mock.Anything, buyerID).Return([]domain.Order(nil), nil)

	rec := s.do(t, http.MethodGet, "/api/orders/mine", s.token(t, buyer), nil)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `[]`, string(decodeEnvelope(t, rec).Data))
}
