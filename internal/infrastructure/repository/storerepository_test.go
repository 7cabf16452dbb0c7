package repository

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/orris-inc/licensegate/internal/domain/audit"
	"github.com/orris-inc/licensegate/internal/domain/store"
	"github.com/orris-inc/licensegate/internal/infrastructure/persistence/models"
	"github.com/orris-inc/licensegate/internal/shared/logger"
)

// setupTestDB opens a private shared-cache in-memory database limited to one
// connection so concurrent callers queue on the pool like rows lock in MySQL.
func setupTestDB(t *testing.T) *gorm.DB {
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{Logger: gormlogger.Discard})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })

	require.NoError(t, db.AutoMigrate(&models.StoreModel{}, &models.StoreEventModel{}))
	return db
}

func intPtr(v int) *int { return &v }

func createStore(t *testing.T, repo store.Repository, token string, plan store.Plan, limit *int, count int) *store.Store {
	t.Helper()
	s, err := store.NewStore(token, "material-"+token, "", plan, limit, "https://"+token+".example", token)
	require.NoError(t, err)
	require.NoError(t, repo.Create(context.Background(), s))

	if count > 0 {
		impl := repo.(*StoreRepositoryImpl)
		require.NoError(t, impl.db.Model(&models.StoreModel{}).
			Where("token = ?", token).
			UpdateColumn("license_count", count).Error)
	}
	got, err := repo.GetByToken(context.Background(), token)
	require.NoError(t, err)
	return got
}

func TestStoreRepository_CreateAndGet(t *testing.T) {
	repo := NewStoreRepository(setupTestDB(t), logger.NewNop())
	ctx := context.Background()

	s, err := store.NewStore("tok-1", "material", "lic-1", store.PlanSolo, intPtr(500), "https://a.example", "A")
	require.NoError(t, err)
	require.NoError(t, repo.Create(ctx, s))
	assert.NotZero(t, s.ID())

	got, err := repo.GetByToken(ctx, "tok-1")
	require.NoError(t, err)
	assert.Equal(t, store.PlanSolo, got.Plan())
	assert.Equal(t, 500, *got.Limit())
	assert.True(t, got.IsConnected())

	byRef, err := repo.GetByLicenseRef(ctx, "lic-1")
	require.NoError(t, err)
	assert.Equal(t, "tok-1", byRef.Token())

	_, err = repo.GetByToken(ctx, "missing")
	assert.ErrorIs(t, err, store.ErrStoreNotFound)

	dup, err := store.NewStore("tok-1", "material", "", store.PlanSolo, nil, "", "")
	require.NoError(t, err)
	assert.ErrorIs(t, repo.Create(ctx, dup), store.ErrDuplicateStore)
}

func TestStoreRepository_Reserve(t *testing.T) {
	repo := NewStoreRepository(setupTestDB(t), logger.NewNop())
	ctx := context.Background()
	now := time.Now().UTC()

	t.Run("increments under limit", func(t *testing.T) {
		createStore(t, repo, "under", store.PlanSolo, intPtr(2), 1)

		s, err := repo.Reserve(ctx, "under", now)
		require.NoError(t, err)
		assert.Equal(t, 2, s.Count())
		require.NotNil(t, s.LastSeenAt())
	})

	t.Run("denies at limit without changing count", func(t *testing.T) {
		createStore(t, repo, "full", store.PlanSolo, intPtr(500), 500)

		s, err := repo.Reserve(ctx, "full", now)
		assert.ErrorIs(t, err, store.ErrLimitReached)
		require.NotNil(t, s)
		assert.Equal(t, 500, s.Count())
	})

	t.Run("unlimited always succeeds", func(t *testing.T) {
		createStore(t, repo, "unlimited", store.PlanAgency, nil, 100_000)

		s, err := repo.Reserve(ctx, "unlimited", now)
		require.NoError(t, err)
		assert.Equal(t, 100_001, s.Count())
	})

	t.Run("disconnected store is denied", func(t *testing.T) {
		s := createStore(t, repo, "gone", store.PlanSolo, intPtr(10), 0)
		require.True(t, s.Disconnect())
		require.NoError(t, repo.Update(ctx, s))

		snap, err := repo.Reserve(ctx, "gone", now)
		assert.ErrorIs(t, err, store.ErrStoreDisconnected)
		assert.Equal(t, 0, snap.Count())
	})

	t.Run("unknown store", func(t *testing.T) {
		_, err := repo.Reserve(ctx, "nobody", now)
		assert.ErrorIs(t, err, store.ErrStoreNotFound)
	})
}

func TestStoreRepository_ConcurrentReserveAtLimitMinusOne(t *testing.T) {
	repo := NewStoreRepository(setupTestDB(t), logger.NewNop())
	createStore(t, repo, "race", store.PlanSolo, intPtr(500), 499)

	const callers = 20
	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		succeeded int
		limited   int
	)
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := repo.Reserve(context.Background(), "race", time.Now().UTC())
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				succeeded++
			case assert.ErrorIs(t, err, store.ErrLimitReached):
				limited++
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, succeeded)
	assert.Equal(t, callers-1, limited)

	s, err := repo.GetByToken(context.Background(), "race")
	require.NoError(t, err)
	assert.Equal(t, 500, s.Count())
}

func TestStoreRepository_Release(t *testing.T) {
	repo := NewStoreRepository(setupTestDB(t), logger.NewNop())
	ctx := context.Background()
	now := time.Now().UTC()

	t.Run("never below zero", func(t *testing.T) {
		createStore(t, repo, "floor", store.PlanSolo, intPtr(5), 1)

		s, released, err := repo.Release(ctx, "floor", now)
		require.NoError(t, err)
		assert.True(t, released)
		assert.Equal(t, 0, s.Count())

		for i := 0; i < 3; i++ {
			s, released, err = repo.Release(ctx, "floor", now)
			require.NoError(t, err)
			assert.False(t, released)
			assert.Equal(t, 0, s.Count())
		}
	})

	t.Run("clears over limit", func(t *testing.T) {
		createStore(t, repo, "over", store.PlanAgency, nil, 620)
		flagged, err := repo.ApplyPlan(ctx, "over", store.PlanSolo, intPtr(500))
		require.NoError(t, err)
		require.True(t, flagged.IsOverLimit())

		s, released, err := repo.Release(ctx, "over", now)
		require.NoError(t, err)
		assert.True(t, released)
		assert.Equal(t, 619, s.Count())
		assert.False(t, s.IsOverLimit())
		assert.Zero(t, s.OverLimitAmount())
	})

	t.Run("unknown store", func(t *testing.T) {
		_, _, err := repo.Release(ctx, "nobody", now)
		assert.ErrorIs(t, err, store.ErrStoreNotFound)
	})

	t.Run("reserve then release round trip", func(t *testing.T) {
		before := createStore(t, repo, "trip", store.PlanSolo, intPtr(10), 4)

		_, err := repo.Reserve(ctx, "trip", now)
		require.NoError(t, err)
		after, _, err := repo.Release(ctx, "trip", now)
		require.NoError(t, err)
		assert.Equal(t, before.Count(), after.Count())
	})
}

func TestStoreRepository_ApplyPlan(t *testing.T) {
	repo := NewStoreRepository(setupTestDB(t), logger.NewNop())
	ctx := context.Background()

	createStore(t, repo, "plan", store.PlanAgency, nil, 620)

	s, err := repo.ApplyPlan(ctx, "plan", store.PlanSolo, intPtr(500))
	require.NoError(t, err)
	assert.True(t, s.IsOverLimit())
	assert.Equal(t, 120, s.OverLimitAmount())
	assert.Equal(t, 620, s.Count(), "a plan change never truncates the count")

	s, err = repo.ApplyPlan(ctx, "plan", store.PlanStudio, intPtr(1000))
	require.NoError(t, err)
	assert.False(t, s.IsOverLimit())
	assert.Zero(t, s.OverLimitAmount())

	s, err = repo.ApplyPlan(ctx, "plan", store.PlanAgency, nil)
	require.NoError(t, err)
	assert.True(t, s.IsUnlimited())
	assert.False(t, s.IsOverLimit())

	_, err = repo.ApplyPlan(ctx, "nobody", store.PlanSolo, intPtr(1))
	assert.ErrorIs(t, err, store.ErrStoreNotFound)
}

func TestStoreRepository_UpdateVersionConflict(t *testing.T) {
	repo := NewStoreRepository(setupTestDB(t), logger.NewNop())
	ctx := context.Background()

	s := createStore(t, repo, "cas", store.PlanSolo, intPtr(5), 0)
	stale, err := repo.GetByToken(ctx, "cas")
	require.NoError(t, err)

	require.True(t, s.Disconnect())
	require.NoError(t, repo.Update(ctx, s))

	require.NoError(t, stale.Reactivate(store.PlanStudio, nil, "", ""))
	assert.ErrorIs(t, repo.Update(ctx, stale), store.ErrVersionConflict)
}

func TestStoreRepository_UpdateAfterSeveralChanges(t *testing.T) {
	repo := NewStoreRepository(setupTestDB(t), logger.NewNop())
	ctx := context.Background()

	s := createStore(t, repo, "multi", store.PlanSolo, intPtr(5), 0)
	require.NoError(t, s.Reactivate(store.PlanStudio, intPtr(25), "", ""))
	s.LinkLicense("lic-new")
	require.NoError(t, repo.Update(ctx, s))
	assert.Equal(t, s.Version(), s.PersistedVersion())

	require.NoError(t, repo.Update(ctx, s), "saving an unchanged store is a no-op")

	got, err := repo.GetByToken(ctx, "multi")
	require.NoError(t, err)
	assert.Equal(t, 2, got.Version())
	assert.Equal(t, "lic-new", got.LicenseRef())
	assert.Equal(t, store.PlanStudio, got.Plan())
}

func TestStoreRepository_Stats(t *testing.T) {
	repo := NewStoreRepository(setupTestDB(t), logger.NewNop())
	ctx := context.Background()

	createStore(t, repo, "a", store.PlanSolo, intPtr(5), 5)
	createStore(t, repo, "b", store.PlanSolo, intPtr(5), 1)
	c := createStore(t, repo, "c", store.PlanAgency, nil, 900)
	require.True(t, c.Disconnect())
	require.NoError(t, repo.Update(ctx, c))

	stats, err := repo.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(3), stats.TotalStores)
	assert.Equal(t, int64(2), stats.ConnectedStores)
	assert.Equal(t, int64(1), stats.StoresAtLimit)
}

func TestStoreEventRepository(t *testing.T) {
	repo := NewStoreEventRepository(setupTestDB(t), logger.NewNop())
	ctx := context.Background()

	allowed, err := audit.NewEvent("tok", audit.EventReserved, audit.Details{
		CountBefore: 1, CountAfter: 2, Allowed: true,
		LicenseKeyHash: "abc", ProductID: "42",
		Metadata: map[string]any{"plan": "solo"},
	})
	require.NoError(t, err)
	require.NoError(t, repo.Append(ctx, allowed))
	assert.NotZero(t, allowed.ID())

	denied, err := audit.NewEvent("tok", audit.EventReserveDenied, audit.Details{
		CountBefore: 2, CountAfter: 2, Allowed: false, DenialReason: store.DenialLimitReached,
	})
	require.NoError(t, err)
	require.NoError(t, repo.Append(ctx, denied))

	from := time.Now().UTC().Add(-time.Hour)
	to := time.Now().UTC().Add(time.Hour)

	counts, err := repo.CountBetween(ctx, from, to)
	require.NoError(t, err)
	assert.Equal(t, int64(2), counts.Total)
	assert.Equal(t, int64(1), counts.Denials)

	events, err := repo.ListByStore(ctx, "tok", from, to)
	require.NoError(t, err)
	require.Len(t, events, 2)
	assert.Equal(t, audit.EventReserved, events[0].Type())
	assert.Equal(t, "solo", events[0].Metadata()["plan"])
	assert.Equal(t, store.DenialLimitReached, events[1].DenialReason())

	none, err := repo.ListByStore(ctx, "other", from, to)
	require.NoError(t, err)
	assert.Empty(t, none)
}
