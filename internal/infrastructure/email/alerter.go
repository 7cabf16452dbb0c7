package email

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/orris-inc/licensegate/internal/domain/shared/events"
	"github.com/orris-inc/licensegate/internal/domain/store"
	"github.com/orris-inc/licensegate/internal/shared/logger"
	"github.com/orris-inc/licensegate/internal/shared/utils"
)

// AlertGate decides whether an alert for a store is still in cooldown.
type AlertGate interface {
	TryAcquire(ctx context.Context, eventType, storeToken string, ttl time.Duration) (bool, error)
	Clear(ctx context.Context, eventType, storeToken string) error
}

// LimitAlerter mails the operator when a store hits its limit or is left
// over its limit by a plan change. It is a dispatcher handler.
type LimitAlerter struct {
	service    *SMTPEmailService
	to         string
	upgradeURL string
	gate       AlertGate
	cooldown   time.Duration
	logger     logger.Interface
}

func NewLimitAlerter(service *SMTPEmailService, to, upgradeURL string, logger logger.Interface) *LimitAlerter {
	return &LimitAlerter{
		service:    service,
		to:         to,
		upgradeURL: upgradeURL,
		logger:     logger,
	}
}

// WithCooldown suppresses repeat alerts for the same store and event type
// for the given duration.
func (a *LimitAlerter) WithCooldown(gate AlertGate, cooldown time.Duration) *LimitAlerter {
	a.gate = gate
	a.cooldown = cooldown
	return a
}

func (a *LimitAlerter) CanHandle(eventType string) bool {
	return eventType == store.EventLimitReached || eventType == store.EventStoreOverLimit
}

func (a *LimitAlerter) Handle(event events.DomainEvent) error {
	if !a.CanHandle(event.GetEventType()) {
		return nil
	}

	if a.gate != nil && a.cooldown > 0 {
		acquired, err := a.gate.TryAcquire(context.Background(), event.GetEventType(), event.GetAggregateID(), a.cooldown)
		if err != nil {
			a.logger.Warnw("alert cooldown check failed, sending anyway",
				"event_type", event.GetEventType(),
				"error", err,
			)
		} else if !acquired {
			a.logger.Debugw("limit alert suppressed by cooldown",
				"event_type", event.GetEventType(),
				"store", utils.MaskToken(event.GetAggregateID()),
			)
			return nil
		}
	}

	if err := a.send(event); err != nil {
		if a.gate != nil && a.cooldown > 0 {
			if clearErr := a.gate.Clear(context.Background(), event.GetEventType(), event.GetAggregateID()); clearErr != nil {
				a.logger.Warnw("failed to clear alert cooldown", "error", clearErr)
			}
		}
		return err
	}

	a.logger.Infow("limit alert sent",
		"event_type", event.GetEventType(),
		"store", utils.MaskToken(event.GetAggregateID()),
	)
	return nil
}

func (a *LimitAlerter) send(event events.DomainEvent) error {
	switch e := event.(type) {
	case store.LimitReachedEvent:
		alert := LimitAlert{
			StoreLabel: storeLabel(e.SiteURL, e.AggregateID),
			Plan:       e.Plan.DisplayName(),
			Count:      e.Count,
			Limit:      formatLimit(e.Limit),
			UpgradeURL: a.upgradeURL,
		}
		if e.NextPlan != "" {
			alert.NextPlan = e.NextPlan.DisplayName()
		}
		if err := a.service.SendLimitReachedAlert(a.to, alert); err != nil {
			return fmt.Errorf("limit reached alert: %w", err)
		}

	case store.OverLimitEvent:
		label := e.SiteName
		if label == "" {
			label = storeLabel(e.SiteURL, e.AggregateID)
		}
		alert := LimitAlert{
			StoreLabel: label,
			Plan:       e.Plan.DisplayName(),
			Count:      e.Count,
			Limit:      formatLimit(e.Limit),
			Overage:    e.Overage,
		}
		if err := a.service.SendOverLimitAlert(a.to, alert); err != nil {
			return fmt.Errorf("over limit alert: %w", err)
		}
	}
	return nil
}

func storeLabel(siteURL, token string) string {
	if siteURL != "" {
		return siteURL
	}
	return utils.MaskToken(token)
}

func formatLimit(limit *int) string {
	if limit == nil {
		return "unlimited"
	}
	return strconv.Itoa(*limit)
}
