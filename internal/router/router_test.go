package router

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/iliyamo/booklist-service/internal/config"
	"github.com/iliyamo/booklist-service/internal/handler"
	"github.com/iliyamo/booklist-service/internal/metrics"
	"github.com/iliyamo/booklist-service/internal/middleware"
	"github.com/iliyamo/booklist-service/internal/model"
	"github.com/iliyamo/booklist-service/internal/queue"
	"github.com/iliyamo/booklist-service/internal/repository"
	"github.com/iliyamo/booklist-service/internal/service"
)

func newServer(t *testing.T) http.Handler {
	t.Helper()
	log := logrus.New()
	log.SetOutput(io.Discard)

	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	cacheCfg := config.CacheConfig{Enabled: true, Methods: map[string]bool{"GET": true}, TTL: time.Minute, Prefix: "cache"}
	rlCfg := config.RateLimitConfig{Enabled: true, Capacity: 1000, RefillTokens: 1, RefillInterval: time.Second, TTL: time.Minute, Prefix: "rl"}

	reg := prometheus.NewRegistry()
	col := metrics.NewCollector(reg)

	auth := service.NewAuthService(repository.NewMemoryUserRepo(), "router-secret", bcrypt.MinCost,
		service.WithLogger(log), service.WithRecorder(col))
	purge := service.PublisherFunc(func(ctx context.Context, _ queue.BookUpdatedEvent) error {
		_, err := middleware.PurgeCache(ctx, rdb, cacheCfg.Prefix)
		return err
	})
	books := repository.NewMemoryBookRepo(
		model.Book{ISBN: "978-1", Title: "Dune", Author: "Frank Herbert"},
	)
	catalog := service.NewCatalogService(books, auth, purge, log)

	return New(Deps{
		Auth:      handler.NewAuthHandler(auth, log),
		Books:     handler.NewBookHandler(catalog, log),
		Verifier:  auth,
		Redis:     rdb,
		Cache:     cacheCfg,
		RateLimit: rlCfg,
		Metrics:   col,
		Gatherer:  metrics.Handler(reg),
		Log:       log,
	})
}

func call(h http.Handler, method, path, body, token string) *httptest.ResponseRecorder {
	var r io.Reader
	if body != "" {
		r = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, r)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestEndToEndUpdateInvalidatesCache(t *testing.T) {
	srv := newServer(t)

	first := call(srv, http.MethodGet, "/api/books/isbn/978-1", "", "")
	require.Equal(t, http.StatusOK, first.Code)
	assert.Equal(t, "MISS", first.Header().Get("X-Cache"))
	assert.Equal(t, "HIT", call(srv, http.MethodGet, "/api/books/isbn/978-1", "", "").Header().Get("X-Cache"))

	rec := call(srv, http.MethodPut, "/api/books/978-1", `{"Title":"Dune Messiah"}`, "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = call(srv, http.MethodPost, "/api/register", `{"name":"A","email":"a@x.com","password":"pw"}`, "")
	require.Equal(t, http.StatusOK, rec.Code)
	rec = call(srv, http.MethodPost, "/api/login", `{"email":"a@x.com","password":"pw"}`, "")
	require.Equal(t, http.StatusOK, rec.Code)
	var login map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &login))

	rec = call(srv, http.MethodPut, "/api/books/978-1", `{"Title":"Dune Messiah"}`, login["token"])
	require.Equal(t, http.StatusOK, rec.Code)

	after := call(srv, http.MethodGet, "/api/books/isbn/978-1", "", "")
	assert.Equal(t, "MISS", after.Header().Get("X-Cache"))
	var books []model.Book
	require.NoError(t, json.Unmarshal(after.Body.Bytes(), &books))
	require.Len(t, books, 1)
	assert.Equal(t, "Dune Messiah", books[0].Title)
}

func TestOperationalEndpoints(t *testing.T) {
	srv := newServer(t)

	rec := call(srv, http.MethodGet, "/healthz", "", "")
	assert.Equal(t, http.StatusOK, rec.Code)

	call(srv, http.MethodGet, "/api/books", "", "")
	call(srv, http.MethodPost, "/api/login", `{"email":"x@x.com","password":"pw"}`, "")

	rec = call(srv, http.MethodGet, "/metrics", "", "")
	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, `route="/api/books"`)
	assert.Contains(t, body, `outcome="not_found"`)
}

func TestAuthorizedUpdateCountsOneVerification(t *testing.T) {
	srv := newServer(t)

	rec := call(srv, http.MethodPost, "/api/register", `{"email":"a@x.com","password":"pw"}`, "")
	require.Equal(t, http.StatusOK, rec.Code)
	rec = call(srv, http.MethodPost, "/api/login", `{"email":"a@x.com","password":"pw"}`, "")
	require.Equal(t, http.StatusOK, rec.Code)
	var login map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &login))

	rec = call(srv, http.MethodPut, "/api/books/978-1", `{"Genre":"SF"}`, login["token"])
	require.Equal(t, http.StatusOK, rec.Code)

	rec = call(srv, http.MethodGet, "/metrics", "", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `booklist_auth_outcomes_total{op="verify",outcome="ok"} 1`+"\n")
}

func TestCORSAllowsAnyOrigin(t *testing.T) {
	srv := newServer(t)
	req := httptest.NewRequest(http.MethodGet, "/api/books", nil)
	req.Header.Set("Origin", "http://example.test")
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, req)
	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
}
