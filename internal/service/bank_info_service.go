package service

import (
	"context"

	"github.com/pkg/errors"

	"marketplace-service/internal/entity"
	"marketplace-service/internal/repository"
)

const MsgBankInfoNotFound = "Bank info not found"

type BankInfoService struct {
	store  *repository.Store
	events EventPublisher
}

func NewBankInfoService(store *repository.Store, events EventPublisher) *BankInfoService {
	return &BankInfoService{store: store, events: events}
}

func (s *BankInfoService) ListBankInfo(ctx context.Context) ([]*entity.BankInfo, error) {
	infos, err := s.store.BankInfo.ListBankInfo(ctx)
	if err != nil {
		logger.Error().Err(err).Msg("Error listing bank info")
		return nil, err
	}
	return infos, nil
}

func (s *BankInfoService) GetBankInfo(ctx context.Context, id int64) (*entity.BankInfo, error) {
	info, err := s.store.BankInfo.GetBankInfoByID(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, &NotFoundError{Message: MsgBankInfoNotFound}
	}
	if err != nil {
		logger.Error().Err(err).Msgf("Error getting bank info %d", id)
		return nil, err
	}
	return info, nil
}

func (s *BankInfoService) CreateBankInfo(ctx context.Context, in CreateBankInfoInput) (*entity.BankInfo, error) {
	if err := validate.Struct(in); err != nil {
		return nil, &ValidationError{Message: "All fields are required"}
	}

	id, err := s.store.BankInfo.CreateBankInfo(ctx, in.BankName, in.AccountNumber, in.AccountName)
	if err != nil {
		logger.Error().Err(err).Msg("Error creating bank info")
		return nil, err
	}

	info, err := s.store.BankInfo.GetBankInfoByID(ctx, id)
	if err != nil {
		logger.Error().Err(err).Msgf("Error getting bank info %d", id)
		return nil, err
	}
	publishEvent(ctx, s.events, "bank-info", "created", id, info)
	return info, nil
}

func (s *BankInfoService) UpdateBankInfo(ctx context.Context, id int64, in UpdateBankInfoInput) error {
	found, err := s.store.BankInfo.Exists(ctx, id)
	if err != nil {
		logger.Error().Err(err).Msgf("Error getting bank info %d", id)
		return err
	}
	if !found {
		return &NotFoundError{Message: MsgBankInfoNotFound}
	}

	if err := s.store.BankInfo.UpdateBankInfo(ctx, id, in.BankName, in.AccountNumber, in.AccountName); err != nil {
		logger.Error().Err(err).Msgf("Error updating bank info %d", id)
		return err
	}

	publishEvent(ctx, s.events, "bank-info", "updated", id, in)
	return nil
}

func (s *BankInfoService) DeleteBankInfo(ctx context.Context, id int64) error {
	found, err := s.store.BankInfo.Exists(ctx, id)
	if err != nil {
		logger.Error().Err(err).Msgf("Error getting bank info %d", id)
		return err
	}
	if !found {
		return &NotFoundError{Message: MsgBankInfoNotFound}
	}

	if err := s.store.BankInfo.DeleteBankInfo(ctx, id); err != nil {
		logger.Error().Err(err).Msgf("Error deleting bank info %d", id)
		return err
	}

	publishEvent(ctx, s.events, "bank-info", "deleted", id, map[string]int64{"id": id})
	return nil
}
