package server_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"go-winery-scm/internal/metrics"
	"go-winery-scm/internal/model"
	"go-winery-scm/internal/server"
	"go-winery-scm/internal/testutil"
	"go-winery-scm/internal/ws"
	"go-winery-scm/pkg/logger"

	"github.com/fasthttp/websocket"
	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type harness struct {
	t   *testing.T
	app *fiber.App
	db  *gorm.DB
}

func newHarness(t *testing.T) *harness {
	db := testutil.NewDB(t)
	log := logger.Discard()
	hub := ws.NewHub(log)
	ctx, cancel := context.WithCancel(context.Background())
	go hub.Run(ctx)
	t.Cleanup(cancel)

	app := server.New(server.Deps{
		Config:  testutil.Config(),
		DB:      db,
		Logger:  log,
		Hub:     hub,
		Metrics: metrics.New(),
	})
	return &harness{t: t, app: app, db: db}
}

// do sends a JSON request and decodes the JSON response into out when out is non-nil.
func (h *harness) do(method, path, token string, body interface{}, out interface{}) int {
	h.t.Helper()
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(h.t, err)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := h.app.Test(req, -1)
	require.NoError(h.t, err)
	defer resp.Body.Close()
	if out != nil {
		require.NoError(h.t, json.NewDecoder(resp.Body).Decode(out))
	}
	return resp.StatusCode
}

func (h *harness) login(username string) string {
	h.t.Helper()
	var resp struct {
		Token string `json:"token"`
	}
	code := h.do(http.MethodPost, "/api/v1/auth/login", "", fiber.Map{"username": username, "password": testutil.Password}, &resp)
	require.Equal(h.t, http.StatusOK, code)
	require.NotEmpty(h.t, resp.Token)
	return resp.Token
}

func TestHealth(t *testing.T) {
	h := newHarness(t)
	var body map[string]interface{}
	assert.Equal(t, http.StatusOK, h.do(http.MethodGet, "/health", "", nil, &body))
	assert.Equal(t, "ok", body["status"])
	assert.EqualValues(t, 0, body["ws_clients"])
}

func TestAuthFlow(t *testing.T) {
	h := newHarness(t)

	var errBody map[string]string
	assert.Equal(t, http.StatusUnauthorized, h.do(http.MethodPost, "/api/v1/auth/login", "",
		fiber.Map{"username": "admin", "password": "nope"}, &errBody))
	assert.NotEmpty(t, errBody["error"])

	assert.Equal(t, http.StatusBadRequest, h.do(http.MethodPost, "/api/v1/auth/login", "", fiber.Map{"username": "admin"}, nil))
	assert.Equal(t, http.StatusUnauthorized, h.do(http.MethodGet, "/api/v1/auth/me", "", nil, nil))
	assert.Equal(t, http.StatusUnauthorized, h.do(http.MethodGet, "/api/v1/auth/me", "garbage", nil, nil))

	token := h.login("admin")
	var me struct {
		Username string `json:"username"`
	}
	assert.Equal(t, http.StatusOK, h.do(http.MethodGet, "/api/v1/auth/me", token, nil, &me))
	assert.Equal(t, "admin", me.Username)

	assert.Equal(t, http.StatusOK, h.do(http.MethodPost, "/api/v1/auth/heartbeat", token, nil, nil))
	assert.Equal(t, http.StatusOK, h.do(http.MethodPost, "/api/v1/auth/logout", token, nil, nil))
	assert.Equal(t, http.StatusUnauthorized, h.do(http.MethodGet, "/api/v1/auth/me", token, nil, nil))
}

func TestRoleGating(t *testing.T) {
	h := newHarness(t)
	testutil.CreateUser(t, h.db, "keeper", model.RoleWarehouse)
	testutil.CreateUser(t, h.db, "buyer", model.RolePurchasing)
	keeper := h.login("keeper")
	buyer := h.login("buyer")
	admin := h.login("admin")

	assert.Equal(t, http.StatusForbidden, h.do(http.MethodGet, "/api/v1/admin/users", keeper, nil, nil))
	assert.Equal(t, http.StatusForbidden, h.do(http.MethodGet, "/api/v1/purchasing/orders", keeper, nil, nil))
	assert.Equal(t, http.StatusForbidden, h.do(http.MethodGet, "/api/v1/warehouse/products", buyer, nil, nil))
	assert.Equal(t, http.StatusForbidden, h.do(http.MethodGet, "/api/v1/supplier/profile", buyer, nil, nil))

	assert.Equal(t, http.StatusOK, h.do(http.MethodGet, "/api/v1/warehouse/products", keeper, nil, nil))
	assert.Equal(t, http.StatusOK, h.do(http.MethodGet, "/api/v1/purchasing/orders", buyer, nil, nil))

	var users []map[string]interface{}
	assert.Equal(t, http.StatusOK, h.do(http.MethodGet, "/api/v1/admin/users", admin, nil, &users))
	assert.Len(t, users, 3)
	for _, u := range users {
		assert.NotContains(t, u, "password")
	}
	// ADMIN passes every role gate.
	assert.Equal(t, http.StatusOK, h.do(http.MethodGet, "/api/v1/warehouse/products", admin, nil, nil))
}

func TestOrderLifecycleOverHTTP(t *testing.T) {
	h := newHarness(t)
	testutil.CreateUser(t, h.db, "keeper", model.RoleWarehouse)
	testutil.CreateUser(t, h.db, "buyer", model.RolePurchasing)
	supplier := testutil.CreateSupplier(t, h.db, "vineyard", "Hillside Vineyard")
	keeper := h.login("keeper")
	buyer := h.login("buyer")
	vendor := h.login("vineyard")

	var created struct {
		Data model.Product `json:"data"`
	}
	code := h.do(http.MethodPost, "/api/v1/warehouse/products", keeper, fiber.Map{
		"name": "Chardonnay grapes", "category": "grape", "quantity": 10, "min_stock": 5, "unit": "kg", "price": "1.50",
	}, &created)
	require.Equal(t, http.StatusCreated, code)
	grapes := created.Data

	assert.Equal(t, http.StatusBadRequest, h.do(http.MethodPost, "/api/v1/purchasing/orders", buyer, fiber.Map{
		"supplier_id": supplier.ID, "items": []fiber.Map{},
	}, nil))

	var order struct {
		Data model.Order `json:"data"`
	}
	code = h.do(http.MethodPost, "/api/v1/purchasing/orders", buyer, fiber.Map{
		"supplier_id": supplier.ID,
		"items":       []fiber.Map{{"product_id": grapes.ID, "quantity": 90, "price": "1.40"}},
	}, &order)
	require.Equal(t, http.StatusCreated, code)
	assert.Equal(t, "126.00", order.Data.TotalAmount.StringFixed(2))
	id := order.Data.ID.String()

	// Receiving before approval is a conflict.
	assert.Equal(t, http.StatusConflict, h.do(http.MethodPost, "/api/v1/warehouse/orders/"+id+"/receive", keeper, nil, nil))
	assert.Equal(t, http.StatusForbidden, h.do(http.MethodPost, "/api/v1/purchasing/orders/"+id+"/approve", keeper, nil, nil))
	assert.Equal(t, http.StatusOK, h.do(http.MethodPost, "/api/v1/purchasing/orders/"+id+"/approve", buyer, nil, nil))
	assert.Equal(t, http.StatusConflict, h.do(http.MethodPost, "/api/v1/purchasing/orders/"+id+"/reject", buyer, fiber.Map{"reason": "late"}, nil))

	var pending []model.Order
	assert.Equal(t, http.StatusOK, h.do(http.MethodGet, "/api/v1/warehouse/orders", keeper, nil, &pending))
	assert.Len(t, pending, 1)

	var received struct {
		Data model.Order `json:"data"`
	}
	assert.Equal(t, http.StatusOK, h.do(http.MethodPost, "/api/v1/warehouse/orders/"+id+"/receive", keeper, nil, &received))
	assert.Equal(t, model.OrderReceived, received.Data.Status)
	assert.Equal(t, 100, testutil.Quantity(t, h.db, grapes.ID))

	var mine []model.Order
	assert.Equal(t, http.StatusOK, h.do(http.MethodGet, "/api/v1/supplier/orders", vendor, nil, &mine))
	require.Len(t, mine, 1)
	assert.Equal(t, model.OrderReceived, mine[0].Status)

	assert.Equal(t, http.StatusBadRequest, h.do(http.MethodGet, "/api/v1/warehouse/orders/not-a-uuid", keeper, nil, nil))
	assert.Equal(t, http.StatusNotFound, h.do(http.MethodGet, "/api/v1/warehouse/orders/"+supplier.ID.String(), keeper, nil, nil))
}

func TestStockAdjustOverHTTP(t *testing.T) {
	h := newHarness(t)
	testutil.CreateUser(t, h.db, "keeper", model.RoleWarehouse)
	corks := testutil.CreateProduct(t, h.db, "Corks", 3, 1, "0.20")
	keeper := h.login("keeper")

	assert.Equal(t, http.StatusConflict, h.do(http.MethodPost, "/api/v1/warehouse/stock/adjust", keeper, fiber.Map{
		"product_id": corks.ID, "type": "out", "quantity": 4, "note": "breakage",
	}, nil))
	assert.Equal(t, http.StatusBadRequest, h.do(http.MethodPost, "/api/v1/warehouse/stock/adjust", keeper, fiber.Map{
		"product_id": corks.ID, "type": "out", "quantity": 0, "note": "breakage",
	}, nil))
	assert.Equal(t, http.StatusCreated, h.do(http.MethodPost, "/api/v1/warehouse/stock/adjust", keeper, fiber.Map{
		"product_id": corks.ID, "type": "out", "quantity": 3, "note": "breakage",
	}, nil))
	assert.Equal(t, 0, testutil.Quantity(t, h.db, corks.ID))
}

func TestExportInventory(t *testing.T) {
	h := newHarness(t)
	testutil.CreateUser(t, h.db, "keeper", model.RoleWarehouse)
	testutil.CreateProduct(t, h.db, "Corks", 3, 1, "0.20")
	keeper := h.login("keeper")

	req := httptest.NewRequest(http.MethodGet, "/api/v1/warehouse/export", nil)
	req.Header.Set("Authorization", "Bearer "+keeper)
	resp, err := h.app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", resp.Header.Get("Content-Type"))
	assert.Contains(t, resp.Header.Get("Content-Disposition"), "inventory-")
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Equal(t, "PK", string(body[:2]))
}

func TestMessagesOverHTTP(t *testing.T) {
	h := newHarness(t)
	keeperUser := testutil.CreateUser(t, h.db, "keeper", model.RoleWarehouse)
	testutil.CreateUser(t, h.db, "buyer", model.RolePurchasing)
	keeper := h.login("keeper")
	buyer := h.login("buyer")

	var sent struct {
		Data model.MessageResponse `json:"data"`
	}
	require.Equal(t, http.StatusCreated, h.do(http.MethodPost, "/api/v1/messages", buyer, fiber.Map{
		"receiver_id": keeperUser.ID, "subject": "Delivery", "body": "Pallets at dock 2",
	}, &sent))

	var count struct {
		Unread int64 `json:"unread"`
	}
	assert.Equal(t, http.StatusOK, h.do(http.MethodGet, "/api/v1/messages/unread-count", keeper, nil, &count))
	assert.EqualValues(t, 1, count.Unread)

	assert.Equal(t, http.StatusOK, h.do(http.MethodGet, "/api/v1/messages/"+sent.Data.ID.String(), keeper, nil, nil))
	assert.Equal(t, http.StatusOK, h.do(http.MethodGet, "/api/v1/messages/unread-count", keeper, nil, &count))
	assert.Zero(t, count.Unread)

	var recipients []model.UserSummary
	assert.Equal(t, http.StatusOK, h.do(http.MethodGet, "/api/v1/messages/recipients", keeper, nil, &recipients))
	assert.Len(t, recipients, 2)
}

func TestMetricsEndpoint(t *testing.T) {
	h := newHarness(t)
	h.do(http.MethodGet, "/health", "", nil, nil)

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	resp, err := h.app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), `winery_http_requests_total{code="200",method="GET",route="/health"} 1`)
}

func TestSocketHandshakeRequiresSession(t *testing.T) {
	h := newHarness(t)
	upgrade := func(target, auth string) int {
		req := httptest.NewRequest(http.MethodGet, target, nil)
		req.Header.Set("Connection", "Upgrade")
		req.Header.Set("Upgrade", "websocket")
		req.Header.Set("Sec-WebSocket-Version", "13")
		req.Header.Set("Sec-WebSocket-Key", "dGhlIHNhbXBsZSBub25jZQ==")
		if auth != "" {
			req.Header.Set("Authorization", auth)
		}
		resp, err := h.app.Test(req, -1)
		require.NoError(t, err)
		resp.Body.Close()
		return resp.StatusCode
	}

	assert.Equal(t, http.StatusUpgradeRequired, h.do(http.MethodGet, "/ws", "", nil, nil))
	assert.Equal(t, http.StatusUnauthorized, upgrade("/ws", ""))
	assert.Equal(t, http.StatusUnauthorized, upgrade("/ws?token=garbage", ""))
	assert.Equal(t, http.StatusUnauthorized, upgrade("/ws", "Bearer garbage"))

	stale := h.login("admin")
	h.login("admin")
	assert.Equal(t, http.StatusUnauthorized, upgrade("/ws?token="+stale, ""))
}

func TestLiveEventsReachOnlyTheirAudience(t *testing.T) {
	h := newHarness(t)
	keeperUser := testutil.CreateUser(t, h.db, "keeper", model.RoleWarehouse)
	testutil.CreateSupplier(t, h.db, "vineyard", "Hillside Vineyard")
	admin := h.login("admin")
	keeper := h.login("keeper")
	vendor := h.login("vineyard")

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	go h.app.Listener(ln)
	t.Cleanup(func() { h.app.Shutdown() })
	base := "ws://" + ln.Addr().String() + "/ws"

	_, resp, err := websocket.DefaultDialer.Dial(base, nil)
	require.Error(t, err)
	require.NotNil(t, resp)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	keeperWS, _, err := websocket.DefaultDialer.Dial(base+"?token="+keeper, nil)
	require.NoError(t, err)
	defer keeperWS.Close()
	vendorWS, _, err := websocket.DefaultDialer.Dial(base+"?token="+vendor, nil)
	require.NoError(t, err)
	defer vendorWS.Close()

	require.Eventually(t, func() bool {
		var body map[string]interface{}
		h.do(http.MethodGet, "/health", "", nil, &body)
		return body["ws_clients"] == float64(2)
	}, 2*time.Second, 20*time.Millisecond)

	require.Equal(t, http.StatusCreated, h.do(http.MethodPost, "/api/v1/messages", admin, fiber.Map{
		"receiver_id": keeperUser.ID, "subject": "Salary review", "body": "confidential",
	}, nil))

	require.NoError(t, keeperWS.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, frame, err := keeperWS.ReadMessage()
	require.NoError(t, err)
	assert.Contains(t, string(frame), `"type":"new_message"`)
	assert.Contains(t, string(frame), "Salary review")

	require.NoError(t, vendorWS.SetReadDeadline(time.Now().Add(300*time.Millisecond)))
	_, frame, err = vendorWS.ReadMessage()
	require.Error(t, err, "supplier socket received %s", frame)
	assert.False(t, strings.Contains(string(frame), "Salary review"))
}
