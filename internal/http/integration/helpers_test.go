package integration_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/geocoder89/valehub/internal/auth"
	apphttp "github.com/geocoder89/valehub/internal/http"
	"github.com/geocoder89/valehub/internal/http/handlers"
	"github.com/geocoder89/valehub/internal/repo/memory"
	"github.com/geocoder89/valehub/internal/seed"
	"github.com/geocoder89/valehub/internal/service"
	"github.com/geocoder89/valehub/internal/session"
	"github.com/gin-gonic/gin"
)

const (
	adminEmail    = "admin@empresa.com"
	adminPassword = "admin123"
)

func setupRouter(t *testing.T, demo bool) (*gin.Engine, *memory.Store) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	logger := slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{Level: slog.LevelDebug}))
	ctx := context.Background()

	store := memory.NewStore()
	err := seed.EnsureAdmin(ctx, store, seed.Admin{
		ID: "admin", Email: adminEmail, Password: adminPassword, Name: "Administrador",
	}, logger)
	if err != nil {
		t.Fatalf("seed admin: %v", err)
	}
	if demo {
		if err := seed.Demo(ctx, store, logger); err != nil {
			t.Fatalf("seed demo: %v", err)
		}
	}

	ttl := 7 * 24 * time.Hour
	sessions := session.NewManager(auth.NewManager("test-secret-key", ttl), session.NewMemoryRevocations(), store, logger)

	router := apphttp.NewRouter(apphttp.Deps{
		Log:            logger,
		Env:            "test",
		AllowedOrigins: []string{"http://localhost:3000"},
		LoginRateLimit: 100,
		Sessions:       sessions,
		Users:          service.NewUserService(store, "admin", logger),
		Vouchers:       service.NewVoucherService(store, logger),
		Checks:         map[string]handlers.Check{"store": store.Ping},
	})

	return router, store
}

func doRequest(router http.Handler, method, path string, body string, cookies ...*http.Cookie) (*httptest.ResponseRecorder, *http.Response) {
	req := httptest.NewRequest(method, path, bytes.NewBufferString(body))

	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}

	for _, c := range cookies {
		if c != nil {
			req.AddCookie(c)
		}
	}

	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	return w, w.Result()
}

func mustReadJSON[T any](t *testing.T, w *httptest.ResponseRecorder, out *T) {
	t.Helper()
	err := json.Unmarshal(w.Body.Bytes(), out)
	if err != nil {
		t.Fatalf("failed to unmarshal json: %v, body=%s", err, w.Body.String())
	}
}

func sessionCookie(t *testing.T, response *http.Response) *http.Cookie {
	t.Helper()

	for _, c := range response.Cookies() {
		if c.Name == session.CookieName {
			return c
		}
	}

	t.Fatalf("%s cookie not found in response", session.CookieName)
	return nil
}

func login(t *testing.T, router http.Handler, email, password string) *http.Cookie {
	t.Helper()

	body, _ := json.Marshal(map[string]string{"email": email, "password": password})
	w, response := doRequest(router, http.MethodPost, "/auth/login", string(body))
	if w.Code != http.StatusOK {
		t.Fatalf("login %s got status %d, body=%s", email, w.Code, w.Body.String())
	}
	return sessionCookie(t, response)
}
