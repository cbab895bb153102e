package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"admin-dashboard/internal/gateway"
	"admin-dashboard/internal/models"
	"admin-dashboard/internal/session"
	"admin-dashboard/internal/store"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeAuthAPI struct {
	user models.User
}

func (f *fakeAuthAPI) Login(context.Context, string, string) (models.AuthResult, error) {
	return models.AuthResult{Token: "tok", User: f.user}, nil
}
func (f *fakeAuthAPI) Signup(context.Context, string, string, string) error { return nil }
func (f *fakeAuthAPI) MyDetails(context.Context, string) (models.User, error) {
	return f.user, nil
}

type fakeOrderAPI struct {
	orders []models.Order
}

func (f *fakeOrderAPI) FetchOrders(context.Context) ([]models.Order, error) {
	return f.orders, nil
}
func (f *fakeOrderAPI) SearchOrders(context.Context, string) ([]models.Order, error) {
	return f.orders, nil
}
func (f *fakeOrderAPI) OrdersByStatus(context.Context, string) ([]models.Order, error) {
	return f.orders, nil
}
func (f *fakeOrderAPI) SalesData(context.Context, string, string) (models.SalesSummary, error) {
	return models.SalesSummary{}, nil
}
func (f *fakeOrderAPI) EditOrder(_ context.Context, id string, _ models.OrderPatch) (models.Order, error) {
	return models.Order{ID: id}, nil
}
func (f *fakeOrderAPI) DeleteOrder(context.Context, string) error { return nil }

type fakeProductAPI struct{}

func (fakeProductAPI) ListProducts(context.Context, int, string, string) (models.ProductPage, error) {
	return models.ProductPage{}, nil
}
func (fakeProductAPI) CreateProduct(_ context.Context, p models.Product) (models.Product, error) {
	p.ID = "p1"
	return p, nil
}
func (fakeProductAPI) UpdateProduct(_ context.Context, p models.Product) (models.Product, error) {
	return p, nil
}
func (fakeProductAPI) DeleteProduct(context.Context, string) error { return nil }
func (fakeProductAPI) UploadImages(context.Context, []gateway.Upload) ([]string, error) {
	return nil, nil
}

type recordedAudit struct {
	entries []string
}

func (r *recordedAudit) Record(_ context.Context, actor, action, resource, resourceID string) {
	r.entries = append(r.entries, strings.Join([]string{actor, action, resource, resourceID}, "/"))
}

func newTestRouter(t *testing.T, user models.User, orders []models.Order) (*gin.Engine, *session.Store, *recordedAudit) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	sess := session.NewStore(&fakeAuthAPI{user: user}, session.NewMemoryStorage())
	auditor := &recordedAudit{}
	handler := NewHandler(sess,
		store.NewOrders(&fakeOrderAPI{orders: orders}, nil),
		store.NewProducts(fakeProductAPI{}, nil),
		auditor)

	router := gin.New()
	handler.SetupRoutes(router)
	return router, sess, auditor
}

func doJSON(router *gin.Engine, method, path, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestAdminRoutesRequireAuthentication(t *testing.T) {
	router, _, _ := newTestRouter(t, models.User{ID: "u1", IsAdmin: true}, nil)

	w := doJSON(router, http.MethodGet, "/api/v1/orders", "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAdminRoutesRejectNonAdmins(t *testing.T) {
	router, sess, _ := newTestRouter(t, models.User{ID: "u2", Username: "pleb"}, nil)
	require.NoError(t, sess.Login(context.Background(), "pleb@example.com", "pw"))

	w := doJSON(router, http.MethodGet, "/api/v1/orders", "")
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestListOrdersSortedNewestFirst(t *testing.T) {
	t1 := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	orders := []models.Order{
		{ID: "old", CreatedAt: t1},
		{ID: "newest", CreatedAt: t1.Add(48 * time.Hour)},
		{ID: "mid", CreatedAt: t1.Add(24 * time.Hour)},
	}
	router, sess, _ := newTestRouter(t, models.User{ID: "u1", Username: "boss", IsAdmin: true}, orders)
	require.NoError(t, sess.Login(context.Background(), "boss@example.com", "pw"))

	w := doJSON(router, http.MethodGet, "/api/v1/orders", "")
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Orders []struct {
			ID               string `json:"_id"`
			CreatedAtDisplay string `json:"createdAtDisplay"`
		} `json:"orders"`
		State string `json:"state"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))

	require.Len(t, resp.Orders, 3)
	assert.Equal(t, "newest", resp.Orders[0].ID)
	assert.Equal(t, "mid", resp.Orders[1].ID)
	assert.Equal(t, "old", resp.Orders[2].ID)
	assert.Equal(t, "loaded", resp.State)
	assert.NotEmpty(t, resp.Orders[0].CreatedAtDisplay)
}

func TestEditOrderRecordsAudit(t *testing.T) {
	router, sess, auditor := newTestRouter(t, models.User{ID: "u1", Username: "boss", IsAdmin: true},
		[]models.Order{{ID: "o1"}})
	require.NoError(t, sess.Login(context.Background(), "boss@example.com", "pw"))

	w := doJSON(router, http.MethodPut, "/api/v1/orders/o1", `{"status":"delivered"}`)
	require.Equal(t, http.StatusOK, w.Code)

	require.Len(t, auditor.entries, 1)
	assert.Equal(t, "boss/edit/order/o1", auditor.entries[0])
}

func TestEditOrderRejectsUnknownStatus(t *testing.T) {
	router, sess, _ := newTestRouter(t, models.User{ID: "u1", Username: "boss", IsAdmin: true}, nil)
	require.NoError(t, sess.Login(context.Background(), "boss@example.com", "pw"))

	w := doJSON(router, http.MethodPut, "/api/v1/orders/o1", `{"status":"vanished"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestLogoutEndpoint(t *testing.T) {
	router, sess, _ := newTestRouter(t, models.User{ID: "u1", IsAdmin: true}, nil)
	require.NoError(t, sess.Login(context.Background(), "a@b.c", "pw"))

	w := doJSON(router, http.MethodDelete, "/api/v1/session", "")
	require.Equal(t, http.StatusOK, w.Code)

	assert.False(t, sess.Snapshot().IsAuthenticated)

	w = doJSON(router, http.MethodGet, "/api/v1/orders", "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}
