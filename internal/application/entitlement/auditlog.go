package entitlement

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/orris-inc/licensegate/internal/application/entitlement/dto"
	"github.com/orris-inc/licensegate/internal/domain/audit"
	apperrors "github.com/orris-inc/licensegate/internal/shared/errors"
	"github.com/orris-inc/licensegate/internal/shared/logger"
	"github.com/orris-inc/licensegate/internal/shared/utils"
)

const (
	auditWriteTimeout = 3 * time.Second

	// degradedWindow is how long after the last failed write health keeps
	// reporting the audit log as degraded.
	degradedWindow = 15 * time.Minute
)

// AuditLog records ledger events without ever failing the operation they
// describe. Failed writes are counted and reported through health.
type AuditLog struct {
	repo   audit.Repository
	logger logger.Interface
	now    func() time.Time

	failures      atomic.Int64
	mu            sync.RWMutex
	lastFailureAt *time.Time
}

func NewAuditLog(repo audit.Repository, logger logger.Interface) *AuditLog {
	return &AuditLog{
		repo:   repo,
		logger: logger,
		now:    time.Now,
	}
}

// Record appends one event. The write outlives request cancellation so that a
// client disconnect after the mutation still leaves a trail.
func (a *AuditLog) Record(ctx context.Context, storeToken string, eventType audit.EventType, details audit.Details) {
	event, err := audit.NewEvent(storeToken, eventType, details)
	if err != nil {
		a.fail(storeToken, eventType, err)
		return
	}

	writeCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), auditWriteTimeout)
	defer cancel()

	if err := a.repo.Append(writeCtx, event); err != nil {
		a.fail(storeToken, eventType, err)
	}
}

func (a *AuditLog) fail(storeToken string, eventType audit.EventType, cause error) {
	a.failures.Add(1)
	at := a.now().UTC()

	a.mu.Lock()
	a.lastFailureAt = &at
	a.mu.Unlock()

	a.logger.Errorw("audit write failed",
		"error", apperrors.NewAuditWriteFailureError(cause.Error()),
		"token", utils.MaskToken(storeToken),
		"event_type", eventType,
	)
}

// Health reports the failure count since start and whether a write failed
// recently.
func (a *AuditLog) Health() dto.AuditHealth {
	a.mu.RLock()
	last := a.lastFailureAt
	a.mu.RUnlock()

	h := dto.AuditHealth{
		Status:   dto.ComponentOK,
		Failures: a.failures.Load(),
	}
	if last != nil {
		t := *last
		h.LastFailureAt = &t
		if a.now().Sub(t) < degradedWindow {
			h.Status = dto.ComponentDegraded
		}
	}
	return h
}
