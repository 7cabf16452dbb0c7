package handlers

import (
	"context"

	"github.com/orris-inc/licensegate/internal/application/entitlement/dto"
	licensingDto "github.com/orris-inc/licensegate/internal/application/licensing/dto"
)

// Service interfaces used by the handlers - enable unit testing with mocks.

type entitlementService interface {
	Reserve(ctx context.Context, req dto.ReserveRequest) (*dto.ReserveResult, error)
	Release(ctx context.Context, req dto.ReleaseRequest) (*dto.ReleaseResult, error)
	Status(ctx context.Context, req dto.StatusRequest) (*dto.StatusResult, error)
	Sync(ctx context.Context, req dto.SyncRequest) (*dto.SyncResult, error)
}

type healthService interface {
	Health(ctx context.Context) *dto.HealthResult
}

type storeAdminService interface {
	StoreDetail(ctx context.Context, token string) (*dto.StoreDetail, error)
	StoreUsage(ctx context.Context, token string, days int) (*dto.StoreUsageResult, error)
}

type notificationService interface {
	HandlePayload(ctx context.Context, payload []byte) (*licensingDto.NotificationResult, error)
}
