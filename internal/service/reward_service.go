package service

import (
	"context"
	"errors"
	"fmt"

	"ecosort/internal/dto"
	"ecosort/internal/model"
	"ecosort/internal/repository"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// RewardService manages the reward catalog. Stock decrements from
// redemptions do NOT go through here — that is the ledger's job.
type RewardService interface {
	List(ctx context.Context, includeInactive bool) ([]dto.RewardItemResponse, error)
	Get(ctx context.Context, id uuid.UUID) (*dto.RewardItemResponse, error)
	Create(ctx context.Context, req dto.CreateRewardRequest) (*dto.RewardItemResponse, error)
	Update(ctx context.Context, id uuid.UUID, req dto.UpdateRewardRequest) (*dto.RewardItemResponse, error)
	Retire(ctx context.Context, id uuid.UUID) error
}

type rewardService struct {
	repo repository.RewardRepository
}

func NewRewardService(repo repository.RewardRepository) RewardService {
	return &rewardService{repo: repo}
}

func (s *rewardService) List(ctx context.Context, includeInactive bool) ([]dto.RewardItemResponse, error) {
	items, err := s.repo.List(ctx, includeInactive)
	if err != nil {
		return nil, err
	}
	resp := make([]dto.RewardItemResponse, len(items))
	for i := range items {
		resp[i] = *rewardToResponse(&items[i])
	}
	return resp, nil
}

func (s *rewardService) Get(ctx context.Context, id uuid.UUID) (*dto.RewardItemResponse, error) {
	item, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("%w: reward %s", ErrNotFound, id)
	}
	return rewardToResponse(item), nil
}

func (s *rewardService) Create(ctx context.Context, req dto.CreateRewardRequest) (*dto.RewardItemResponse, error) {
	if req.CostPoints <= 0 {
		return nil, fmt.Errorf("%w: cost_points must be positive", ErrValidation)
	}
	item := &model.RewardItem{
		Name:       req.Name,
		CostPoints: req.CostPoints,
		StockLevel: req.StockLevel,
		Active:     true,
	}
	if err := s.repo.Create(ctx, item); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, fmt.Errorf("%w: reward %q already exists", ErrValidation, req.Name)
		}
		return nil, err
	}
	return rewardToResponse(item), nil
}

func (s *rewardService) Update(ctx context.Context, id uuid.UUID, req dto.UpdateRewardRequest) (*dto.RewardItemResponse, error) {
	item, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("%w: reward %s", ErrNotFound, id)
	}
	if req.Name != "" {
		item.Name = req.Name
	}
	if req.CostPoints != nil {
		if *req.CostPoints <= 0 {
			return nil, fmt.Errorf("%w: cost_points must be positive", ErrValidation)
		}
		item.CostPoints = *req.CostPoints
	}
	if req.StockLevel != nil {
		if *req.StockLevel < 0 {
			return nil, fmt.Errorf("%w: stock_level must not be negative", ErrValidation)
		}
		item.StockLevel = *req.StockLevel
	}
	if req.Active != nil {
		item.Active = *req.Active
	}
	if err := s.repo.Update(ctx, item); err != nil {
		return nil, err
	}
	return rewardToResponse(item), nil
}

func (s *rewardService) Retire(ctx context.Context, id uuid.UUID) error {
	if _, err := s.repo.FindByID(ctx, id); err != nil {
		return fmt.Errorf("%w: reward %s", ErrNotFound, id)
	}
	return s.repo.Retire(ctx, id)
}

func rewardToResponse(item *model.RewardItem) *dto.RewardItemResponse {
	return &dto.RewardItemResponse{
		ID:         item.ID.String(),
		Name:       item.Name,
		CostPoints: item.CostPoints,
		StockLevel: item.StockLevel,
		Active:     item.Active,
	}
}
