package handlers

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/orris-inc/licensegate/internal/application/entitlement/dto"
	licensingDto "github.com/orris-inc/licensegate/internal/application/licensing/dto"
	"github.com/orris-inc/licensegate/internal/interfaces/http/handlers/testutil"
	"github.com/orris-inc/licensegate/internal/shared/errors"
)

type mockNotificationService struct {
	handlePayloadFn func(ctx context.Context, payload []byte) (*licensingDto.NotificationResult, error)
}

func (m *mockNotificationService) HandlePayload(ctx context.Context, payload []byte) (*licensingDto.NotificationResult, error) {
	if m.handlePayloadFn != nil {
		return m.handlePayloadFn(ctx, payload)
	}
	return nil, nil
}

type mockStoreAdminService struct {
	storeDetailFn func(ctx context.Context, token string) (*dto.StoreDetail, error)
	storeUsageFn  func(ctx context.Context, token string, days int) (*dto.StoreUsageResult, error)
}

func (m *mockStoreAdminService) StoreDetail(ctx context.Context, token string) (*dto.StoreDetail, error) {
	if m.storeDetailFn != nil {
		return m.storeDetailFn(ctx, token)
	}
	return nil, nil
}

func (m *mockStoreAdminService) StoreUsage(ctx context.Context, token string, days int) (*dto.StoreUsageResult, error) {
	if m.storeUsageFn != nil {
		return m.storeUsageFn(ctx, token, days)
	}
	return nil, nil
}

func TestAdminHandler_ReceiveNotification_PassesRawPayload(t *testing.T) {
	raw := []byte(`{"type":"plan.changed","store_token":"tok","plan":"studio"}`)
	var got []byte
	notifications := &mockNotificationService{
		handlePayloadFn: func(_ context.Context, payload []byte) (*licensingDto.NotificationResult, error) {
			got = payload
			return &licensingDto.NotificationResult{Type: "plan.changed", Action: "set_plan"}, nil
		},
	}
	h := NewAdminHandler(notifications, &mockStoreAdminService{}, testutil.NewMockLogger())

	c, w := testutil.NewRawTestContext(http.MethodPost, "/api/v1/admin/notifications", raw)
	h.ReceiveNotification(c)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, raw, got)
}

func TestAdminHandler_ReceiveNotification_Rejected(t *testing.T) {
	notifications := &mockNotificationService{
		handlePayloadFn: func(context.Context, []byte) (*licensingDto.NotificationResult, error) {
			return nil, errors.NewValidationError("unsupported notification type")
		},
	}
	h := NewAdminHandler(notifications, &mockStoreAdminService{}, testutil.NewMockLogger())

	c, w := testutil.NewRawTestContext(http.MethodPost, "/api/v1/admin/notifications", []byte(`{"type":"x"}`))
	h.ReceiveNotification(c)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestAdminHandler_GetStoreUsage(t *testing.T) {
	var gotDays int
	stores := &mockStoreAdminService{
		storeUsageFn: func(_ context.Context, token string, days int) (*dto.StoreUsageResult, error) {
			gotDays = days
			return &dto.StoreUsageResult{Token: token, Days: days}, nil
		},
	}
	h := NewAdminHandler(&mockNotificationService{}, stores, testutil.NewMockLogger())

	t.Run("days parsed", func(t *testing.T) {
		c, w := testutil.NewTestContext(http.MethodGet, "/api/v1/admin/stores/tok/usage", nil)
		testutil.SetURLParam(c, "token", "tok")
		testutil.SetQueryParams(c, map[string]string{"days": "7"})

		h.GetStoreUsage(c)
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, 7, gotDays)
	})

	t.Run("days defaulted", func(t *testing.T) {
		c, w := testutil.NewTestContext(http.MethodGet, "/api/v1/admin/stores/tok/usage", nil)
		testutil.SetURLParam(c, "token", "tok")

		h.GetStoreUsage(c)
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Zero(t, gotDays)
	})

	t.Run("days not a number", func(t *testing.T) {
		c, w := testutil.NewTestContext(http.MethodGet, "/api/v1/admin/stores/tok/usage", nil)
		testutil.SetURLParam(c, "token", "tok")
		testutil.SetQueryParams(c, map[string]string{"days": "week"})

		h.GetStoreUsage(c)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestAdminHandler_GetStore_NotFound(t *testing.T) {
	stores := &mockStoreAdminService{
		storeDetailFn: func(context.Context, string) (*dto.StoreDetail, error) {
			return nil, errors.NewStoreNotFoundError()
		},
	}
	h := NewAdminHandler(&mockNotificationService{}, stores, testutil.NewMockLogger())

	c, w := testutil.NewTestContext(http.MethodGet, "/api/v1/admin/stores/nope", nil)
	testutil.SetURLParam(c, "token", "nope")

	h.GetStore(c)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

type stubHealth struct{ result *dto.HealthResult }

func (s stubHealth) Health(context.Context) *dto.HealthResult { return s.result }

func TestHealthHandler(t *testing.T) {
	tests := []struct {
		status string
		code   int
	}{
		{dto.HealthStatusHealthy, http.StatusOK},
		{dto.HealthStatusDegraded, http.StatusOK},
		{dto.HealthStatusUnhealthy, http.StatusServiceUnavailable},
	}
	for _, tt := range tests {
		t.Run(tt.status, func(t *testing.T) {
			h := NewHealthHandler(stubHealth{&dto.HealthResult{Status: tt.status}})
			c, w := testutil.NewTestContext(http.MethodGet, "/api/v1/health", nil)
			h.HealthCheck(c)
			assert.Equal(t, tt.code, w.Code)
		})
	}
}
