package service

import (
	"context"

	"github.com/pkg/errors"

	"marketplace-service/internal/entity"
	"marketplace-service/internal/repository"
)

const (
	MsgPurchaseNotFound = "Purchase not found"
	alreadyPurchased    = "User has already purchased this template"
	duplicateRequest    = "Duplicate request"
	purchaseIDMissing   = "User ID and Template ID are required"
)

// PurchaseService provides purchase operations. The optional idempotency
// guard rejects a replayed create request carrying an already used key.
type PurchaseService struct {
	store  *repository.Store
	events EventPublisher
	guard  IdempotencyGuard
}

// NewPurchaseService creates a new instance of PurchaseService. events and
// guard may be nil.
func NewPurchaseService(store *repository.Store, events EventPublisher, guard IdempotencyGuard) *PurchaseService {
	return &PurchaseService{store: store, events: events, guard: guard}
}

func (s *PurchaseService) ListPurchases(ctx context.Context) ([]*entity.PurchaseDetail, error) {
	purchases, err := s.store.Purchases.ListPurchases(ctx)
	if err != nil {
		logger.Error().Err(err).Msg("Error listing purchases")
		return nil, err
	}
	return purchases, nil
}

func (s *PurchaseService) GetPurchase(ctx context.Context, id int64) (*entity.PurchaseDetail, error) {
	purchase, err := s.store.Purchases.GetPurchaseByID(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, &NotFoundError{Message: MsgPurchaseNotFound}
	}
	if err != nil {
		logger.Error().Err(err).Msgf("Error getting purchase %d", id)
		return nil, err
	}
	return purchase, nil
}

func (s *PurchaseService) ListUserPurchases(ctx context.Context, userID int64) ([]*entity.PurchaseSummary, error) {
	purchases, err := s.store.Purchases.ListByUser(ctx, userID)
	if err != nil {
		logger.Error().Err(err).Msgf("Error listing purchases of user %d", userID)
		return nil, err
	}
	return purchases, nil
}

// CreatePurchase records that a user bought a template. idempotencyKey is
// optional; an empty key skips the replay check.
func (s *PurchaseService) CreatePurchase(ctx context.Context, in CreatePurchaseInput, idempotencyKey string) (*entity.Purchase, error) {
	if err := validate.Struct(in); err != nil {
		return nil, &ValidationError{Message: purchaseIDMissing}
	}

	if err := s.checkReferences(ctx, in); err != nil {
		return nil, err
	}

	acquired := false
	if idempotencyKey != "" && s.guard != nil {
		ok, err := s.guard.Acquire(ctx, idempotencyKey)
		if err != nil {
			logger.Error().Err(err).Msgf("Error validating idempotent key %s", idempotencyKey)
			return nil, err
		}
		if !ok {
			logger.Warn().Msgf("Idempotent key %s already used", idempotencyKey)
			return nil, &ConflictError{Message: duplicateRequest}
		}
		acquired = true
	}

	id, err := s.store.Purchases.CreatePurchase(ctx, in.UserID, in.TemplateID)
	if err != nil {
		if acquired {
			if relErr := s.guard.Release(ctx, idempotencyKey); relErr != nil {
				logger.Error().Err(relErr).Msgf("Error releasing idempotent key %s", idempotencyKey)
			}
		}
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, &ConflictError{Message: alreadyPurchased}
		}
		logger.Error().Err(err).Msg("Error creating purchase")
		return nil, err
	}

	purchase := &entity.Purchase{ID: id, UserID: in.UserID, TemplateID: in.TemplateID}
	publishEvent(ctx, s.events, "purchase", "created", id, purchase)
	return purchase, nil
}

// checkReferences verifies the user, then the template, then that the pair is new.
func (s *PurchaseService) checkReferences(ctx context.Context, in CreatePurchaseInput) error {
	found, err := s.store.Users.Exists(ctx, in.UserID)
	if err != nil {
		logger.Error().Err(err).Msgf("Error getting user %d", in.UserID)
		return err
	}
	if !found {
		return &NotFoundError{Message: MsgUserNotFound}
	}

	found, err = s.store.Templates.Exists(ctx, in.TemplateID)
	if err != nil {
		logger.Error().Err(err).Msgf("Error getting template %d", in.TemplateID)
		return err
	}
	if !found {
		return &NotFoundError{Message: MsgTemplateNotFound}
	}

	owned, err := s.store.Purchases.ExistsForPair(ctx, in.UserID, in.TemplateID)
	if err != nil {
		logger.Error().Err(err).Msg("Error checking existing purchase")
		return err
	}
	if owned {
		return &ConflictError{Message: alreadyPurchased}
	}
	return nil
}

func (s *PurchaseService) DeletePurchase(ctx context.Context, id int64) error {
	found, err := s.store.Purchases.Exists(ctx, id)
	if err != nil {
		logger.Error().Err(err).Msgf("Error getting purchase %d", id)
		return err
	}
	if !found {
		return &NotFoundError{Message: MsgPurchaseNotFound}
	}

	if err := s.store.Purchases.DeletePurchase(ctx, id); err != nil {
		logger.Error().Err(err).Msgf("Error deleting purchase %d", id)
		return err
	}

	publishEvent(ctx, s.events, "purchase", "deleted", id, map[string]int64{"id": id})
	return nil
}
