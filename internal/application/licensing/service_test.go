package licensing

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/orris-inc/licensegate/internal/application/licensing/dto"
	"github.com/orris-inc/licensegate/internal/application/licensing/usecases"
	"github.com/orris-inc/licensegate/internal/domain/shared/events"
	"github.com/orris-inc/licensegate/internal/domain/store"
	"github.com/orris-inc/licensegate/internal/infrastructure/auth"
	"github.com/orris-inc/licensegate/internal/infrastructure/persistence/models"
	"github.com/orris-inc/licensegate/internal/infrastructure/repository"
	"github.com/orris-inc/licensegate/internal/shared/db"
	apperrors "github.com/orris-inc/licensegate/internal/shared/errors"
	"github.com/orris-inc/licensegate/internal/shared/logger"
)

type capturePublisher struct {
	mu     sync.Mutex
	events []events.DomainEvent
}

func (p *capturePublisher) Publish(e events.DomainEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, e)
	return nil
}

func (p *capturePublisher) ofType(eventType string) []events.DomainEvent {
	p.mu.Lock()
	defer p.mu.Unlock()
	var out []events.DomainEvent
	for _, e := range p.events {
		if e.GetEventType() == eventType {
			out = append(out, e)
		}
	}
	return out
}

type fixture struct {
	db        *gorm.DB
	repo      store.Repository
	publisher *capturePublisher
	service   *ServiceDDD
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	gdb, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{Logger: gormlogger.Discard})
	require.NoError(t, err)
	sqlDB, err := gdb.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })
	require.NoError(t, gdb.AutoMigrate(&models.StoreModel{}, &models.StoreEventModel{}))

	plans, err := store.NewPlanTable(map[string]int{"solo": 500, "studio": 1000, "agency": 0}, 500)
	require.NoError(t, err)

	repo := repository.NewStoreRepository(gdb, logger.NewNop())
	publisher := &capturePublisher{}
	svc := NewServiceDDD(repo, plans, db.NewTransactionManager(gdb), publisher, testPolicy, logger.NewNop())
	return &fixture{db: gdb, repo: repo, publisher: publisher, service: svc}
}

func (f *fixture) setCount(t *testing.T, token string, count int) {
	t.Helper()
	require.NoError(t, f.db.Model(&models.StoreModel{}).Where("token = ?", token).
		UpdateColumn("license_count", count).Error)
}

func TestConnect_CreatesStoreAndIssuesMaterialOnce(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	result, err := f.service.Connect(ctx, dto.ConnectRequest{
		LicenseSecret: "license-secret-1",
		LicenseRef:    "lic-1",
		Plan:          "Solo",
		SiteURL:       "https://shop.example",
		SiteName:      `<b>Shop</b> &amp; Co<script>alert(1)</script>`,
	})
	require.NoError(t, err)

	creds, err := auth.DeriveCredentials("license-secret-1")
	require.NoError(t, err)
	assert.Equal(t, creds.Token, result.StoreToken)
	assert.Equal(t, creds.SecretMaterial, result.SecretMaterial)
	assert.Equal(t, 500, *result.Limit)
	assert.False(t, result.Reactivated)

	s, err := f.repo.GetByToken(ctx, creds.Token)
	require.NoError(t, err)
	assert.Equal(t, "Shop & Co", s.SiteName())
	assert.Equal(t, "lic-1", s.LicenseRef())
	assert.Equal(t, creds.SecretMaterial, s.SecretMaterial())
	assert.Len(t, f.publisher.ofType(store.EventStoreConnected), 1)
}

func TestConnect_ReactivatesAndClearsOverLimit(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	first, err := f.service.Connect(ctx, dto.ConnectRequest{LicenseSecret: "license-secret-2", Plan: "agency"})
	require.NoError(t, err)
	f.setCount(t, first.StoreToken, 700)

	_, err = f.service.SetPlan(ctx, first.StoreToken, "solo")
	require.NoError(t, err)
	_, err = f.service.Disconnect(ctx, first.StoreToken)
	require.NoError(t, err)

	again, err := f.service.Connect(ctx, dto.ConnectRequest{LicenseSecret: "license-secret-2", Plan: "studio", SiteURL: "https://new.example"})
	require.NoError(t, err)
	assert.True(t, again.Reactivated)
	assert.Equal(t, first.StoreToken, again.StoreToken)
	assert.Equal(t, 700, again.Count)

	s, err := f.repo.GetByToken(ctx, first.StoreToken)
	require.NoError(t, err)
	assert.True(t, s.IsConnected())
	assert.False(t, s.IsOverLimit())
	assert.Equal(t, store.PlanStudio, s.Plan())
	assert.Equal(t, "https://new.example", s.SiteURL())
}

func TestConnect_ReconnectLinksNewLicenseRef(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	first, err := f.service.Connect(ctx, dto.ConnectRequest{LicenseSecret: "license-secret-3", Plan: "solo"})
	require.NoError(t, err)

	again, err := f.service.Connect(ctx, dto.ConnectRequest{LicenseSecret: "license-secret-3", Plan: "solo", LicenseRef: "lic-new"})
	require.NoError(t, err)
	assert.Equal(t, first.StoreToken, again.StoreToken)

	s, err := f.repo.GetByToken(ctx, first.StoreToken)
	require.NoError(t, err)
	assert.Equal(t, "lic-new", s.LicenseRef())
	assert.Equal(t, 2, s.Version())
}

func TestConnect_Validation(t *testing.T) {
	f := newFixture(t)

	_, err := f.service.Connect(context.Background(), dto.ConnectRequest{Plan: "solo"})
	assert.True(t, apperrors.IsValidationError(err))

	_, err = f.service.Connect(context.Background(), dto.ConnectRequest{LicenseSecret: "license-secret", Plan: "solo", SiteURL: "not a url"})
	assert.True(t, apperrors.IsValidationError(err))
}

func TestConnect_LicenseRefOwnedByAnotherStore(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.service.Connect(ctx, dto.ConnectRequest{LicenseSecret: "license-secret-a", LicenseRef: "shared", Plan: "solo"})
	require.NoError(t, err)
	_, err = f.service.Connect(ctx, dto.ConnectRequest{LicenseSecret: "license-secret-b", LicenseRef: "shared", Plan: "solo"})
	assert.True(t, apperrors.IsConflictError(err))
}

func TestDisconnect_IsIdempotent(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	connected, err := f.service.Connect(ctx, dto.ConnectRequest{LicenseSecret: "license-secret-3", Plan: "solo"})
	require.NoError(t, err)

	first, err := f.service.Disconnect(ctx, connected.StoreToken)
	require.NoError(t, err)
	assert.True(t, first.Changed)

	second, err := f.service.Disconnect(ctx, connected.StoreToken)
	require.NoError(t, err)
	assert.False(t, second.Changed)
	assert.Len(t, f.publisher.ofType(store.EventStoreDisconnected), 1)

	_, err = f.service.Disconnect(ctx, "nobody")
	assert.True(t, apperrors.HasType(err, apperrors.ErrorTypeStoreNotFound))
}

func TestSetPlan_OverLimitNotification(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	connected, err := f.service.Connect(ctx, dto.ConnectRequest{LicenseSecret: "license-secret-4", Plan: "agency"})
	require.NoError(t, err)
	f.setCount(t, connected.StoreToken, 620)

	result, err := f.service.SetPlan(ctx, connected.StoreToken, "solo")
	require.NoError(t, err)
	assert.True(t, result.OverLimit)
	assert.Equal(t, 120, result.OverLimitAmount)
	assert.Equal(t, 620, result.Count)
	assert.True(t, result.KnownPlan)
	require.Len(t, f.publisher.ofType(store.EventStoreOverLimit), 1)

	// Same plan again: overage unchanged, no second notification.
	_, err = f.service.SetPlan(ctx, connected.StoreToken, "solo")
	require.NoError(t, err)
	assert.Len(t, f.publisher.ofType(store.EventStoreOverLimit), 1)

	result, err = f.service.SetPlan(ctx, connected.StoreToken, "studio")
	require.NoError(t, err)
	assert.False(t, result.OverLimit)
	assert.Zero(t, result.OverLimitAmount)

	result, err = f.service.SetPlan(ctx, connected.StoreToken, "platinum")
	require.NoError(t, err)
	assert.False(t, result.KnownPlan)
	assert.Equal(t, 500, *result.Limit)
	assert.True(t, result.OverLimit)
	assert.Len(t, f.publisher.ofType(store.EventStoreOverLimit), 2)
}

func TestHandlePayload(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	activated, err := f.service.HandlePayload(ctx, []byte(`{
		"type": "license.activated",
		"license_secret": "license-secret-5",
		"license_ref": "lic-5",
		"product_id": "wp-plugin",
		"price_id": "price_studio",
		"site_name": "Five"
	}`))
	require.NoError(t, err)
	require.NotNil(t, activated.Connect)
	assert.Equal(t, "studio", activated.Connect.Plan)

	changed, err := f.service.HandlePayload(ctx, []byte(`{"type":"plan.changed","license_ref":"lic-5","product_id":"wp-plugin","plan":"agency"}`))
	require.NoError(t, err)
	require.NotNil(t, changed.Plan)
	assert.Nil(t, changed.Plan.Limit)

	ignored, err := f.service.HandlePayload(ctx, []byte(`{"type":"license.deactivated","license_ref":"lic-5","product_id":"other"}`))
	require.NoError(t, err)
	assert.True(t, ignored.Ignored)

	deactivated, err := f.service.HandlePayload(ctx, []byte(`{"type":"license.deactivated","license_ref":"lic-5","product_id":"wp-plugin"}`))
	require.NoError(t, err)
	require.NotNil(t, deactivated.Disconnect)
	assert.True(t, deactivated.Disconnect.Changed)

	_, err = f.service.HandlePayload(ctx, []byte(`{"type":"license.deactivated","license_ref":"missing","product_id":"wp-plugin"}`))
	assert.True(t, apperrors.HasType(err, apperrors.ErrorTypeStoreNotFound))
}

func TestSanitizeSiteName(t *testing.T) {
	assert.Equal(t, "Plain", usecases.SanitizeSiteName("  Plain  "))
	assert.Equal(t, "Tom & Jerry's", usecases.SanitizeSiteName("<i>Tom &amp; Jerry's</i>"))
	assert.Len(t, []rune(usecases.SanitizeSiteName(strings.Repeat("é", 300))), 255)
}
