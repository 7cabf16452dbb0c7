// Package licensing applies the subscription system's lifecycle decisions to
// the ledger: connecting stores, disconnecting them and changing plans.
package licensing

import (
	"context"
	"errors"

	"github.com/orris-inc/licensegate/internal/application/licensing/dto"
	"github.com/orris-inc/licensegate/internal/application/licensing/usecases"
	"github.com/orris-inc/licensegate/internal/domain/shared/events"
	"github.com/orris-inc/licensegate/internal/domain/store"
	"github.com/orris-inc/licensegate/internal/shared/db"
	apperrors "github.com/orris-inc/licensegate/internal/shared/errors"
	"github.com/orris-inc/licensegate/internal/shared/logger"
	"github.com/orris-inc/licensegate/internal/shared/utils"
)

type ServiceDDD struct {
	storeRepo  store.Repository
	policy     Policy
	connect    *usecases.ConnectStoreUseCase
	disconnect *usecases.DisconnectStoreUseCase
	setPlan    *usecases.SetPlanUseCase
	logger     logger.Interface
}

func NewServiceDDD(
	storeRepo store.Repository,
	plans *store.PlanTable,
	txMgr db.TxRunner,
	publisher events.EventPublisher,
	policy Policy,
	log logger.Interface,
) *ServiceDDD {
	return &ServiceDDD{
		storeRepo:  storeRepo,
		policy:     policy,
		connect:    usecases.NewConnectStoreUseCase(storeRepo, plans, txMgr, publisher, log.Named("connect")),
		disconnect: usecases.NewDisconnectStoreUseCase(storeRepo, publisher, log.Named("disconnect")),
		setPlan:    usecases.NewSetPlanUseCase(storeRepo, plans, publisher, log.Named("set_plan")),
		logger:     log,
	}
}

func (s *ServiceDDD) Connect(ctx context.Context, req dto.ConnectRequest) (*dto.ConnectResult, error) {
	return s.connect.Execute(ctx, req)
}

func (s *ServiceDDD) Disconnect(ctx context.Context, token string) (*dto.DisconnectResult, error) {
	return s.disconnect.Execute(ctx, token)
}

func (s *ServiceDDD) SetPlan(ctx context.Context, token, plan string) (*dto.SetPlanResult, error) {
	return s.setPlan.Execute(ctx, token, plan)
}

// HandlePayload parses and applies one raw notification.
func (s *ServiceDDD) HandlePayload(ctx context.Context, payload []byte) (*dto.NotificationResult, error) {
	n, err := ParseNotification(payload)
	if err != nil {
		return nil, err
	}
	return s.HandleNotification(ctx, n)
}

// HandleNotification applies a decoded notification.
func (s *ServiceDDD) HandleNotification(ctx context.Context, n *Notification) (*dto.NotificationResult, error) {
	cmd, err := Decide(n, s.policy)
	if err != nil {
		return nil, err
	}

	result := &dto.NotificationResult{Type: string(n.Type), Action: string(cmd.Action)}
	if cmd.Action == ActionIgnore {
		s.logger.Infow("notification ignored", "type", n.Type, "reason", cmd.Reason)
		result.Ignored = true
		result.Reason = cmd.Reason
		return result, nil
	}

	if cmd.Action != ActionConnect && cmd.StoreToken == "" {
		token, err := s.tokenForLicense(ctx, cmd.LicenseRef)
		if err != nil {
			return nil, err
		}
		cmd.StoreToken = token
	}

	s.logger.Infow("applying notification",
		"type", n.Type,
		"action", cmd.Action,
		"token", utils.MaskToken(cmd.StoreToken),
		"plan", cmd.Plan,
	)

	switch cmd.Action {
	case ActionConnect:
		result.Connect, err = s.connect.Execute(ctx, *cmd.Connect)
	case ActionDisconnect:
		result.Disconnect, err = s.disconnect.Execute(ctx, cmd.StoreToken)
	case ActionSetPlan:
		result.Plan, err = s.setPlan.Execute(ctx, cmd.StoreToken, cmd.Plan)
	}
	if err != nil {
		return nil, err
	}
	return result, nil
}

func (s *ServiceDDD) tokenForLicense(ctx context.Context, licenseRef string) (string, error) {
	st, err := s.storeRepo.GetByLicenseRef(ctx, licenseRef)
	if err != nil {
		if errors.Is(err, store.ErrStoreNotFound) {
			return "", apperrors.NewStoreNotFoundError()
		}
		s.logger.Errorw("failed to resolve license reference", "license_ref", licenseRef, "error", err)
		return "", apperrors.NewPersistenceFailureError()
	}
	return st.Token(), nil
}
