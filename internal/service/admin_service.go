package service

import (
	"context"
	"fmt"

	"ecosort/internal/dto"
	"ecosort/internal/model"
	"ecosort/internal/repository"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// AdminService covers the back-office operations: the personnel list,
// collector zone assignment, and the irreversible pickup-data reset.
type AdminService interface {
	ListUsers(ctx context.Context, role string, search string) ([]dto.UserResponse, error)
	AssignZone(ctx context.Context, collectorID uuid.UUID, zone string) (*dto.UserResponse, error)
	ListAllPickups(ctx context.Context) ([]dto.PickupResponse, error)
	ResetPickups(ctx context.Context) (*dto.ResetResponse, error)
}

type adminService struct {
	users   repository.UserRepository
	pickups repository.PickupRepository
}

func NewAdminService(users repository.UserRepository, pickups repository.PickupRepository) AdminService {
	return &adminService{users: users, pickups: pickups}
}

func (s *adminService) ListUsers(ctx context.Context, role string, search string) ([]dto.UserResponse, error) {
	if role != "" && !model.Role(role).Valid() {
		return nil, fmt.Errorf("%w: unknown role %q", ErrValidation, role)
	}
	users, err := s.users.List(ctx, model.Role(role), search)
	if err != nil {
		return nil, err
	}
	resp := make([]dto.UserResponse, len(users))
	for i := range users {
		u := &users[i]
		row := userToResponse(u)
		if u.Profile != nil {
			row.Zone = u.Profile.Zone
			row.Address = u.Profile.Address
			row.Points = u.Profile.Points
		}
		resp[i] = *row
	}
	return resp, nil
}

// AssignZone moves a collector to a new duty zone. The guarded update
// only matches collector rows, so pointing it at a resident or an
// unknown id comes back as not found.
func (s *adminService) AssignZone(ctx context.Context, collectorID uuid.UUID, zone string) (*dto.UserResponse, error) {
	if zone == "" {
		return nil, fmt.Errorf("%w: zone must not be empty", ErrValidation)
	}
	rows, err := s.users.UpdateAssignedZone(ctx, collectorID, zone)
	if err != nil {
		return nil, err
	}
	if rows == 0 {
		return nil, fmt.Errorf("%w: collector %s", ErrNotFound, collectorID)
	}
	user, err := s.users.FindByID(ctx, collectorID)
	if err != nil {
		return nil, err
	}
	return userToResponse(user), nil
}

func (s *adminService) ListAllPickups(ctx context.Context) ([]dto.PickupResponse, error) {
	jobs, err := s.pickups.ListAll(ctx)
	if err != nil {
		return nil, err
	}
	resp := make([]dto.PickupResponse, len(jobs))
	for i := range jobs {
		resp[i] = *pickupToResponse(&jobs[i])
	}
	return resp, nil
}

// ResetPickups wipes every pickup request. Balances, rewards, and the
// redemption log survive — this only clears the job table.
func (s *adminService) ResetPickups(ctx context.Context) (*dto.ResetResponse, error) {
	deleted, err := s.pickups.DeleteAll(ctx)
	if err != nil {
		return nil, err
	}
	log.Warn().Int64("deleted", deleted).Msg("admin reset: all pickup requests flushed")
	return &dto.ResetResponse{PickupsDeleted: deleted}, nil
}
