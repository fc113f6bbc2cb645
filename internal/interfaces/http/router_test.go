package http_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/inventario-cacc/internal/application/auth"
	"github.com/jhoicas/inventario-cacc/internal/application/cart"
	"github.com/jhoicas/inventario-cacc/internal/application/catalog"
	"github.com/jhoicas/inventario-cacc/internal/application/inventory"
	"github.com/jhoicas/inventario-cacc/internal/application/order"
	"github.com/jhoicas/inventario-cacc/internal/infrastructure/memory"
	apphttp "github.com/jhoicas/inventario-cacc/internal/interfaces/http"
)

type apiEnv struct {
	app         *fiber.App
	adminToken  string
	clientToken string
}

func newAPIEnv(t *testing.T) *apiEnv {
	t.Helper()
	ctx := context.Background()
	s := memory.NewStore()
	runner := memory.NewTxRunner(s)
	products := memory.NewProductRepository(s)
	carts := cart.NewService(memory.NewCartStore(0), products)
	movements := memory.NewInventoryMovementRepository(s)
	orders := memory.NewOrderRepository(s)
	categories := memory.NewCategoryRepository(s)
	suppliers := memory.NewSupplierRepository(s)
	customers := memory.NewCustomerRepository(s)

	authUC := auth.NewAuthUseCase(memory.NewUserRepository(s), auth.JWTConfig{Secret: testJWTSecret, ExpMinutes: 60, Issuer: testIssuer})
	require.NoError(t, authUC.EnsureAdmin(ctx, "admin", "admin-pass-123"))

	engine := order.NewEngine(runner, carts, nil, nil)
	app := fiber.New()
	apphttp.Router(app, apphttp.RouterDeps{
		AuthUC:      authUC,
		ProductUC:   catalog.NewProductUseCase(runner, products, categories, suppliers),
		CategoryUC:  catalog.NewCategoryUseCase(categories),
		SupplierUC:  catalog.NewSupplierUseCase(suppliers),
		CustomerUC:  catalog.NewCustomerUseCase(customers),
		InventoryUC: inventory.NewUseCase(runner, products, movements, customers, nil, nil),
		CartSvc:     carts,
		OrderUC:     order.NewUseCase(engine, order.NewLifecycle(runner, nil), orders, carts),
		JWTSecret:   testJWTSecret,
	})

	env := &apiEnv{app: app}
	env.adminToken = env.login(t, "admin", "admin-pass-123")

	resp, _ := env.call(t, http.MethodPost, "/api/auth/register", "", map[string]any{"username": "ana", "password": "cliente-123"})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	env.clientToken = env.login(t, "ana", "cliente-123")
	return env
}

func (e *apiEnv) login(t *testing.T, username, password string) string {
	t.Helper()
	resp, body := e.call(t, http.MethodPost, "/api/auth/login", "", map[string]any{"username": username, "password": password})
	require.Equal(t, http.StatusOK, resp.StatusCode, string(body))
	var out struct {
		Token string `json:"token"`
	}
	require.NoError(t, json.Unmarshal(body, &out))
	return out.Token
}

func (e *apiEnv) call(t *testing.T, method, path, token string, payload any) (*http.Response, []byte) {
	t.Helper()
	var body bytes.Buffer
	if payload != nil {
		require.NoError(t, json.NewEncoder(&body).Encode(payload))
	}
	req := httptest.NewRequest(method, path, &body)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := e.app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()
	var raw bytes.Buffer
	_, err = raw.ReadFrom(resp.Body)
	require.NoError(t, err)
	return resp, raw.Bytes()
}

func decode(t *testing.T, body []byte) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(body, &out), string(body))
	return out
}

func (e *apiEnv) createProduct(t *testing.T, name, price string, stock int) string {
	t.Helper()
	resp, body := e.call(t, http.MethodPost, "/api/products", e.adminToken,
		map[string]any{"name": name, "price": price, "initial_stock": stock})
	require.Equal(t, http.StatusCreated, resp.StatusCode, string(body))
	return decode(t, body)["id"].(string)
}

func (e *apiEnv) productStock(t *testing.T, id string) float64 {
	t.Helper()
	resp, body := e.call(t, http.MethodGet, "/api/products/"+id, e.clientToken, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	return decode(t, body)["stock"].(float64)
}

func TestAPI_CheckoutFlow(t *testing.T) {
	env := newAPIEnv(t)
	pid := env.createProduct(t, "Arroz", "2.00", 10)

	resp, body := env.call(t, http.MethodPost, "/api/cart/items", env.clientToken, map[string]any{"product_id": pid, "quantity": 4})
	require.Equal(t, http.StatusCreated, resp.StatusCode, string(body))
	assert.Equal(t, "8", decode(t, body)["total"])

	resp, body = env.call(t, http.MethodPost, "/api/orders/checkout", env.clientToken, map[string]any{"delivery_address": "Calle 1"})
	require.Equal(t, http.StatusCreated, resp.StatusCode, string(body))
	orderBody := decode(t, body)
	assert.Equal(t, "PENDIENTE", orderBody["status"])
	assert.Equal(t, "8", orderBody["total"])
	require.Len(t, orderBody["lines"], 1)
	orderID := orderBody["id"].(string)

	assert.Equal(t, 6.0, env.productStock(t, pid))

	// el carrito quedó vacío
	resp, body = env.call(t, http.MethodPost, "/api/orders/checkout", env.clientToken, nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "EMPTY_CART", decode(t, body)["code"])

	// historial: ENTRADA inicial + SALIDA de la venta; el libro cuadra
	resp, body = env.call(t, http.MethodGet, "/api/inventory/movements?product_id="+pid, env.adminToken, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var movs []map[string]any
	require.NoError(t, json.Unmarshal(body, &movs))
	require.Len(t, movs, 2)

	resp, body = env.call(t, http.MethodGet, "/api/inventory/ledger/"+pid, env.adminToken, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, true, decode(t, body)["consistent"])

	// cambio de estado: solo admin y sin efecto sobre el stock
	resp, _ = env.call(t, http.MethodPatch, "/api/admin/orders/"+orderID+"/status", env.clientToken, map[string]any{"status": "ENTREGADO"})
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	resp, body = env.call(t, http.MethodPatch, "/api/admin/orders/"+orderID+"/status", env.adminToken, map[string]any{"status": "entregado"})
	require.Equal(t, http.StatusOK, resp.StatusCode, string(body))
	assert.Equal(t, "ENTREGADO", decode(t, body)["status"])
	assert.Equal(t, 6.0, env.productStock(t, pid))

	resp, body = env.call(t, http.MethodPatch, "/api/admin/orders/"+orderID+"/status", env.adminToken, map[string]any{"status": "PERDIDO"})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "INVALID_STATUS", decode(t, body)["code"])

	resp, body = env.call(t, http.MethodGet, "/api/orders", env.clientToken, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	stats := decode(t, body)["stats"].(map[string]any)
	assert.Equal(t, 1.0, stats["total"])
}

func TestAPI_InsufficientStockReportsProductAndAvailable(t *testing.T) {
	env := newAPIEnv(t)
	pid := env.createProduct(t, "Leche", "3.50", 2)

	resp, body := env.call(t, http.MethodPost, "/api/cart/items", env.clientToken, map[string]any{"product_id": pid, "quantity": 5})
	require.Equal(t, http.StatusConflict, resp.StatusCode)
	out := decode(t, body)
	assert.Equal(t, "INSUFFICIENT_STOCK", out["code"])
	assert.Equal(t, pid, out["product_id"])
	assert.Equal(t, 2.0, out["available"])

	resp, body = env.call(t, http.MethodPost, "/api/cart/items", env.clientToken, map[string]any{"product_id": pid, "quantity": 0})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "INVALID_QUANTITY", decode(t, body)["code"])

	// la venta manual tampoco puede dejar el stock negativo
	resp, body = env.call(t, http.MethodPost, "/api/inventory/movements", env.adminToken,
		map[string]any{"product_id": pid, "type": "salida", "quantity": 3})
	require.Equal(t, http.StatusConflict, resp.StatusCode)
	assert.Equal(t, 2.0, decode(t, body)["available"])
	assert.Equal(t, 2.0, env.productStock(t, pid))
}

func TestAPI_ReverseMovement(t *testing.T) {
	env := newAPIEnv(t)
	pid := env.createProduct(t, "Azúcar", "1.00", 0)

	resp, body := env.call(t, http.MethodPost, "/api/inventory/movements", env.adminToken,
		map[string]any{"product_id": pid, "type": "ENTRADA", "quantity": 5})
	require.Equal(t, http.StatusCreated, resp.StatusCode, string(body))
	created := decode(t, body)
	assert.Equal(t, 5.0, created["new_stock"])
	movID := created["movement"].(map[string]any)["id"].(string)

	resp, body = env.call(t, http.MethodDelete, "/api/inventory/movements/"+movID, env.adminToken, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode, string(body))
	assert.Equal(t, 0.0, decode(t, body)["new_stock"])

	resp, _ = env.call(t, http.MethodDelete, "/api/inventory/movements/"+movID, env.adminToken, nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestAPI_RoleAndValidationErrors(t *testing.T) {
	env := newAPIEnv(t)

	resp, _ := env.call(t, http.MethodPost, "/api/products", env.clientToken, map[string]any{"name": "X", "price": "1"})
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	resp, body := env.call(t, http.MethodPost, "/api/products", env.adminToken, map[string]any{"price": "1"})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "VALIDATION", decode(t, body)["code"])

	resp, _ = env.call(t, http.MethodGet, "/api/products", "", nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	resp, _ = env.call(t, http.MethodGet, "/api/categories", env.clientToken, nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	resp, _ = env.call(t, http.MethodPost, "/api/categories", env.clientToken, map[string]any{"name": "Granos"})
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	resp, _ = env.call(t, http.MethodPost, "/api/categories", env.adminToken, map[string]any{"name": "Granos"})
	assert.Equal(t, http.StatusCreated, resp.StatusCode)
	resp, body = env.call(t, http.MethodPost, "/api/categories", env.adminToken, map[string]any{"name": "Granos"})
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
	assert.Equal(t, "DUPLICATE", decode(t, body)["code"])

	resp, _ = env.call(t, http.MethodGet, "/api/customers", env.clientToken, nil)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	resp, body = env.call(t, http.MethodPost, "/api/auth/register", "", map[string]any{"username": "ana", "password": "otra-clave-1"})
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
	assert.Equal(t, "USER_EXISTS", decode(t, body)["code"])

	resp, _ = env.call(t, http.MethodPost, "/api/auth/login", "", map[string]any{"username": "ana", "password": "mala"})
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestAPI_ProductStorefront(t *testing.T) {
	env := newAPIEnv(t)
	env.createProduct(t, "Arroz blanco", "2.00", 3)
	env.createProduct(t, "Arroz integral", "2.50", 0)
	env.createProduct(t, "Lentejas", "1.80", 4)

	names := func(body []byte) []string {
		var out struct {
			Items []struct {
				Name string `json:"name"`
			} `json:"items"`
		}
		require.NoError(t, json.Unmarshal(body, &out), string(body))
		n := make([]string, 0, len(out.Items))
		for _, it := range out.Items {
			n = append(n, it.Name)
		}
		return n
	}

	// el cliente solo ve productos con stock, aunque pida lo contrario
	resp, body := env.call(t, http.MethodGet, "/api/products?in_stock=false", env.clientToken, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode, string(body))
	assert.Equal(t, []string{"Arroz blanco", "Lentejas"}, names(body))

	resp, body = env.call(t, http.MethodGet, "/api/products?q=arroz", env.clientToken, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, []string{"Arroz blanco"}, names(body))

	resp, body = env.call(t, http.MethodGet, "/api/products?q=arroz", env.adminToken, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, []string{"Arroz blanco", "Arroz integral"}, names(body))

	resp, body = env.call(t, http.MethodGet, "/api/products?sort=-price&in_stock=true", env.adminToken, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, []string{"Arroz blanco", "Lentejas"}, names(body))

	resp, body = env.call(t, http.MethodGet, "/api/products?sort=stock", env.adminToken, nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "VALIDATION", decode(t, body)["code"])
}
