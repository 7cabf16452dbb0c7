package http

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/orris-inc/licensegate/internal/infrastructure/auth"
	"github.com/orris-inc/licensegate/internal/infrastructure/config"
	"github.com/orris-inc/licensegate/internal/infrastructure/migration"
	sharedConfig "github.com/orris-inc/licensegate/internal/shared/config"
	"github.com/orris-inc/licensegate/internal/shared/constants"
	"github.com/orris-inc/licensegate/internal/shared/logger"
)

const (
	testSecret    = "lic-secret-0001"
	eventsChannel = "licensegate:test:events"
)

type testServer struct {
	router *Router
	redis  *redis.Client
	tokens *auth.AdminTokenService
}

func testConfig() *config.Config {
	return &config.Config{
		Server: sharedConfig.ServerConfig{Mode: gin.TestMode, Version: "test"},
		RateLimit: sharedConfig.RateLimitConfig{
			RequestsPerWindow: 60,
			WindowSeconds:     60,
		},
		Entitlement: sharedConfig.EntitlementConfig{
			Plans:         map[string]int{"solo": 2, "studio": 10, "agency": 0},
			DefaultLimit:  2,
			UpgradeURL:    "https://example.com/pricing",
			TimestampSkew: 300,
		},
		Admin: sharedConfig.AdminConfig{
			JWTSecret:     "router-test-secret",
			Issuer:        "licensegate",
			TokenTTLHours: 1,
		},
		Notify: sharedConfig.NotifyConfig{EventsChannel: eventsChannel},
	}
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{Logger: gormlogger.Discard})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })
	require.NoError(t, db.AutoMigrate(migration.AutoMigrateModels()...))

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })

	cfg := testConfig()
	router, err := NewRouter(cfg, db, client, logger.NewNop())
	require.NoError(t, err)
	router.SetupRoutes()
	t.Cleanup(router.Shutdown)

	return &testServer{
		router: router,
		redis:  client,
		tokens: auth.NewAdminTokenService(cfg.Admin.JWTSecret, cfg.Admin.Issuer, time.Hour),
	}
}

func (s *testServer) do(req *http.Request) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	s.router.GetEngine().ServeHTTP(w, req)
	return w
}

func (s *testServer) adminRequest(t *testing.T, method, path, scope string, body []byte) *http.Request {
	t.Helper()
	token, err := s.tokens.Generate("subscriptions", scope)
	require.NoError(t, err)
	req := httptest.NewRequest(method, path, bytes.NewReader(body))
	req.Header.Set(constants.HeaderAuthorization, "Bearer "+token)
	req.Header.Set(constants.HeaderContentType, "application/json")
	return req
}

func (s *testServer) connect(t *testing.T, plan string) auth.Credentials {
	t.Helper()
	payload, err := json.Marshal(map[string]string{
		"type":           "license.activated",
		"license_secret": testSecret,
		"license_ref":    "sub_42",
		"plan":           plan,
		"site_url":       "https://shop.example",
		"site_name":      "<b>Shop</b>",
	})
	require.NoError(t, err)

	w := s.do(s.adminRequest(t, http.MethodPost, "/api/v1/admin/notifications", auth.ScopeNotifications, payload))
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	creds, err := auth.DeriveCredentials(testSecret)
	require.NoError(t, err)
	return creds
}

func signedRequest(t *testing.T, creds auth.Credentials, path string, body any) *http.Request {
	t.Helper()
	raw, err := json.Marshal(body)
	require.NoError(t, err)

	ts := strconv.FormatInt(time.Now().Unix(), 10)
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(raw))
	req.Header.Set(constants.HeaderContentType, "application/json")
	req.Header.Set(constants.HeaderStoreToken, creds.Token)
	req.Header.Set(constants.HeaderTimestamp, ts)
	req.Header.Set(constants.HeaderSignature, auth.SignRequest(creds.SecretMaterial, creds.Token, ts, raw))
	return req
}

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   *struct {
		Type    string `json:"type"`
		Message string `json:"message"`
	} `json:"error"`
}

func decode(t *testing.T, w *httptest.ResponseRecorder, data any) envelope {
	t.Helper()
	var env envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env), w.Body.String())
	if data != nil && len(env.Data) > 0 {
		require.NoError(t, json.Unmarshal(env.Data, data))
	}
	return env
}

func TestRouter_ReserveUntilLimit(t *testing.T) {
	s := newTestServer(t)
	creds := s.connect(t, "solo")

	for i := 1; i <= 2; i++ {
		w := s.do(signedRequest(t, creds, "/api/v1/licenses/reserve", map[string]string{"license_key_hash": "k" + strconv.Itoa(i)}))
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())

		var result struct {
			Allowed   bool `json:"allowed"`
			Count     int  `json:"count"`
			Remaining *int `json:"remaining"`
		}
		env := decode(t, w, &result)
		assert.True(t, env.Success)
		assert.True(t, result.Allowed)
		assert.Equal(t, i, result.Count)
		require.NotNil(t, result.Remaining)
		assert.Equal(t, 2-i, *result.Remaining)
	}

	w := s.do(signedRequest(t, creds, "/api/v1/licenses/reserve", map[string]string{"license_key_hash": "k3"}))
	require.Equal(t, http.StatusForbidden, w.Code, w.Body.String())

	var denied struct {
		Allowed    bool   `json:"allowed"`
		Count      int    `json:"count"`
		Reason     string `json:"reason"`
		UpgradeURL string `json:"upgrade_url"`
		NextPlan   string `json:"next_plan"`
	}
	env := decode(t, w, &denied)
	assert.False(t, env.Success)
	assert.False(t, denied.Allowed)
	assert.Equal(t, 2, denied.Count)
	assert.Equal(t, "limit_reached", denied.Reason)
	assert.Equal(t, "https://example.com/pricing", denied.UpgradeURL)
	assert.Equal(t, "studio", denied.NextPlan)

	w = s.do(signedRequest(t, creds, "/api/v1/licenses/release", map[string]string{"license_key_hash": "k1"}))
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	statusReq := httptest.NewRequest(http.MethodGet, "/api/v1/stores/"+creds.Token+"/status", nil)
	w = s.do(statusReq)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var status struct {
		Connected bool `json:"connected"`
		Count     int  `json:"count"`
	}
	decode(t, w, &status)
	assert.True(t, status.Connected)
	assert.Equal(t, 1, status.Count)
}

func TestRouter_SignatureFailures(t *testing.T) {
	s := newTestServer(t)
	creds := s.connect(t, "solo")

	t.Run("tampered body", func(t *testing.T) {
		req := signedRequest(t, creds, "/api/v1/licenses/reserve", map[string]string{"license_key_hash": "k1"})
		req.Body = http.NoBody
		req.ContentLength = 0
		w := s.do(req)
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("missing signature", func(t *testing.T) {
		req := signedRequest(t, creds, "/api/v1/licenses/reserve", map[string]string{"license_key_hash": "k1"})
		req.Header.Del(constants.HeaderSignature)
		w := s.do(req)
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("unknown store", func(t *testing.T) {
		other, err := auth.DeriveCredentials("never-connected-secret")
		require.NoError(t, err)
		w := s.do(signedRequest(t, other, "/api/v1/licenses/reserve", map[string]string{"license_key_hash": "k1"}))
		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("token in body", func(t *testing.T) {
		body := map[string]string{"store_token": creds.Token, "license_key_hash": "k1"}
		req := signedRequest(t, creds, "/api/v1/licenses/reserve", body)
		req.Header.Del(constants.HeaderStoreToken)
		w := s.do(req)
		assert.Equal(t, http.StatusOK, w.Code, w.Body.String())
	})
}

func TestRouter_AdminScopes(t *testing.T) {
	s := newTestServer(t)
	creds := s.connect(t, "studio")
	path := "/api/v1/admin/stores/" + creds.Token

	w := s.do(httptest.NewRequest(http.MethodGet, path, nil))
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = s.do(s.adminRequest(t, http.MethodGet, path, auth.ScopeNotifications, nil))
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = s.do(s.adminRequest(t, http.MethodGet, path, auth.ScopeStoresRead, nil))
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var detail map[string]any
	decode(t, w, &detail)
	assert.Equal(t, creds.Token, detail["token"])
	assert.Equal(t, "studio", detail["plan"])
	assert.NotContains(t, detail, "secret_material")

	w = s.do(s.adminRequest(t, http.MethodGet, path+"/usage?days=7", auth.ScopeAll, nil))
	assert.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = s.do(s.adminRequest(t, http.MethodGet, path+"/usage?days=abc", auth.ScopeAll, nil))
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestRouter_HealthIsFlat(t *testing.T) {
	s := newTestServer(t)

	w := s.do(httptest.NewRequest(http.MethodGet, "/api/v1/health", nil))
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var body map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "healthy", body["status"])
	assert.Equal(t, "ok", body["redis"])
	assert.NotContains(t, body, "success")
}

func TestRouter_RelaysEventsToRedis(t *testing.T) {
	s := newTestServer(t)
	ctx := context.Background()

	sub := s.redis.Subscribe(ctx, eventsChannel)
	defer sub.Close()
	_, err := sub.Receive(ctx)
	require.NoError(t, err)

	creds := s.connect(t, "solo")

	select {
	case msg := <-sub.Channel():
		var event struct {
			EventType  string `json:"event_type"`
			StoreToken string `json:"store_token"`
		}
		require.NoError(t, json.Unmarshal([]byte(msg.Payload), &event))
		assert.Equal(t, "store.connected", event.EventType)
		assert.Equal(t, creds.Token, event.StoreToken)
	case <-time.After(2 * time.Second):
		t.Fatal("no event relayed")
	}
}
