package integration

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"math"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/user/leafmarket/internal/adapter/api"
	"github.com/user/leafmarket/internal/adapter/repository/memory"
	"github.com/user/leafmarket/internal/domain"
	"github.com/user/leafmarket/internal/domain/mocks"
	"github.com/user/leafmarket/internal/pkg/config"
	"github.com/user/leafmarket/internal/usecase"
)

// newTestServer wires the full router against in-memory stores. It
// exercises the same code paths as main, minus the external databases.
func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	cfg := &config.Config{
		JWTSecret:     "integration-secret",
		JWTExpiry:     time.Hour,
		CheckoutPhone: "1234567890",
		AuthRateLimit: 1000,
		AuthRateBurst: 1000,
		MaxUploadSize: 5 << 20,
	}

	auth := usecase.NewAuthService(
		&mocks.MockUserRepository{},
		&mocks.MockRoleRepository{},
		&mocks.MockTokenStore{},
		logger, cfg.JWTSecret, cfg.JWTExpiry,
	)
	catalog := usecase.NewCatalogService(&mocks.MockProductRepository{}, &mocks.MockAssetStore{}, logger)
	orders := usecase.NewOrderService(memory.NewOrderRepository(memory.SampleOrders()), logger)
	checkout := usecase.NewCheckoutService(cfg.CheckoutPhone)

	router := api.NewRouter(api.RouterDeps{
		Config:   cfg,
		Logger:   logger,
		Auth:     auth,
		Catalog:  catalog,
		Orders:   orders,
		Checkout: checkout,
		AssetDir: t.TempDir(),
	})

	server := httptest.NewServer(router)
	t.Cleanup(server.Close)
	return server
}

type client struct {
	t     *testing.T
	base  string
	token string
}

func (c *client) do(method, path string, body any) (*http.Response, []byte) {
	c.t.Helper()

	var reader io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			c.t.Fatalf("could not encode body: %v", err)
		}
		reader = bytes.NewReader(encoded)
	}

	req, err := http.NewRequest(method, c.base+path, reader)
	if err != nil {
		c.t.Fatalf("could not build request: %v", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		c.t.Fatalf("request failed: %v", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		c.t.Fatalf("could not read response: %v", err)
	}
	return resp, data
}

func (c *client) signup(email, role string) {
	c.t.Helper()
	resp, data := c.do(http.MethodPost, "/api/auth/signup", map[string]string{
		"email":    email,
		"password": "secret123",
		"role":     role,
	})
	if resp.StatusCode != http.StatusCreated {
		c.t.Fatalf("signup failed with %d: %s", resp.StatusCode, data)
	}
	var result usecase.AuthResult
	if err := json.Unmarshal(data, &result); err != nil {
		c.t.Fatalf("signup response does not decode: %v", err)
	}
	c.token = result.Token
}

func TestStorefrontFlow(t *testing.T) {
	server := newTestServer(t)

	admin := &client{t: t, base: server.URL}
	admin.signup("admin@example.com", "admin")

	customer := &client{t: t, base: server.URL}
	customer.signup("customer@example.com", "customer")

	anonymous := &client{t: t, base: server.URL}

	var productID string

	t.Run("admin adds a product", func(t *testing.T) {
		resp, data := admin.do(http.MethodPost, "/api/admin/products", map[string]any{
			"name":        "Premium CBD Oil",
			"description": "Full spectrum oil",
			"price":       49.99,
			"category":    "Oils",
			"stock":       12,
		})
		if resp.StatusCode != http.StatusCreated {
			t.Fatalf("expected 201, got %d: %s", resp.StatusCode, data)
		}
		var created struct {
			ID string `json:"id"`
		}
		if err := json.Unmarshal(data, &created); err != nil || created.ID == "" {
			t.Fatalf("create response missing id: %s", data)
		}
		productID = created.ID
	})

	t.Run("customer sees the active product", func(t *testing.T) {
		resp, data := customer.do(http.MethodGet, "/api/shop/products", nil)
		if resp.StatusCode != http.StatusOK {
			t.Fatalf("expected 200, got %d: %s", resp.StatusCode, data)
		}
		var products []domain.Product
		if err := json.Unmarshal(data, &products); err != nil {
			t.Fatalf("product list does not decode: %v", err)
		}
		if len(products) != 1 || products[0].Name != "Premium CBD Oil" {
			t.Fatalf("unexpected product list: %s", data)
		}
	})

	t.Run("gate denies the wrong role", func(t *testing.T) {
		resp, data := customer.do(http.MethodGet, "/api/admin/products", nil)
		if resp.StatusCode != http.StatusForbidden {
			t.Fatalf("expected 403, got %d", resp.StatusCode)
		}
		var body map[string]string
		if err := json.Unmarshal(data, &body); err != nil {
			t.Fatalf("denial does not decode: %v", err)
		}
		if body["redirect"] != "/" {
			t.Errorf("expected redirect home, got %q", body["redirect"])
		}

		if resp, _ := admin.do(http.MethodGet, "/api/shop/products", nil); resp.StatusCode != http.StatusForbidden {
			t.Errorf("admin on shop route: expected 403, got %d", resp.StatusCode)
		}
	})

	t.Run("gate sends anonymous requests to login", func(t *testing.T) {
		resp, data := anonymous.do(http.MethodGet, "/api/admin/products", nil)
		if resp.StatusCode != http.StatusUnauthorized {
			t.Fatalf("expected 401, got %d", resp.StatusCode)
		}
		var body map[string]string
		if err := json.Unmarshal(data, &body); err != nil {
			t.Fatalf("denial does not decode: %v", err)
		}
		if body["redirect"] != "/auth/login" {
			t.Errorf("expected redirect to login, got %q", body["redirect"])
		}
	})

	t.Run("toggling hides the product from the shop", func(t *testing.T) {
		resp, data := admin.do(http.MethodPost, "/api/admin/products/"+productID+"/toggle", map[string]string{
			"currentStatus": "active",
		})
		if resp.StatusCode != http.StatusNoContent {
			t.Fatalf("toggle failed with %d: %s", resp.StatusCode, data)
		}

		_, listData := customer.do(http.MethodGet, "/api/shop/products", nil)
		var products []domain.Product
		if err := json.Unmarshal(listData, &products); err != nil {
			t.Fatalf("product list does not decode: %v", err)
		}
		if len(products) != 0 {
			t.Fatalf("inactive product still visible: %s", listData)
		}
	})

	t.Run("admin walks an order through its statuses", func(t *testing.T) {
		for _, next := range []string{"confirmed", "shipped", "delivered"} {
			resp, data := admin.do(http.MethodPut, "/api/admin/orders/ORD-003/status", map[string]string{"status": next})
			if resp.StatusCode != http.StatusNoContent {
				t.Fatalf("transition to %s failed with %d: %s", next, resp.StatusCode, data)
			}
		}

		resp, data := admin.do(http.MethodPut, "/api/admin/orders/ORD-003/status", map[string]string{"status": "pending"})
		if resp.StatusCode != http.StatusConflict {
			t.Fatalf("backward transition: expected 409, got %d: %s", resp.StatusCode, data)
		}
	})

	t.Run("customer checks out a cart", func(t *testing.T) {
		resp, data := customer.do(http.MethodPost, "/api/shop/checkout", map[string]any{
			"items": []map[string]any{
				{"id": "1", "name": "Premium CBD Oil", "price": 49.99, "quantity": 1},
				{"id": "2", "name": "Cannabis Gummies", "price": 29.99, "quantity": 2},
			},
		})
		if resp.StatusCode != http.StatusOK {
			t.Fatalf("checkout failed with %d: %s", resp.StatusCode, data)
		}
		var result usecase.CheckoutResult
		if err := json.Unmarshal(data, &result); err != nil {
			t.Fatalf("checkout response does not decode: %v", err)
		}
		if math.Abs(result.Totals.Subtotal-109.97) > 1e-6 {
			t.Errorf("expected subtotal 109.97, got %v", result.Totals.Subtotal)
		}
		expectedPrefix := "https://wa.me/1234567890?text="
		if len(result.CheckoutURL) <= len(expectedPrefix) || result.CheckoutURL[:len(expectedPrefix)] != expectedPrefix {
			t.Errorf("unexpected checkout link %q", result.CheckoutURL)
		}
	})

	t.Run("logout invalidates the session", func(t *testing.T) {
		resp, _ := customer.do(http.MethodPost, "/api/auth/logout", nil)
		if resp.StatusCode != http.StatusNoContent {
			t.Fatalf("logout failed with %d", resp.StatusCode)
		}
		resp, _ = customer.do(http.MethodGet, "/api/shop/products", nil)
		if resp.StatusCode != http.StatusUnauthorized {
			t.Errorf("revoked session should be denied, got %d", resp.StatusCode)
		}
	})
}

func TestHealthAndMetrics(t *testing.T) {
	server := newTestServer(t)

	resp, err := http.Get(server.URL + "/health")
	if err != nil {
		t.Fatalf("health request failed: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("expected 200 from /health, got %d", resp.StatusCode)
	}

	resp, err = http.Get(fmt.Sprintf("%s/metrics", server.URL))
	if err != nil {
		t.Fatalf("metrics request failed: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("expected 200 from /metrics, got %d", resp.StatusCode)
	}
}
