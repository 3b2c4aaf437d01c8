package service

import (
	"context"
	"fmt"
	"math/rand"
	"time"

	"ecosort/internal/dto"
	"ecosort/internal/model"
	"ecosort/internal/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// PickupService owns the pickup lifecycle: Pending → Completed | Failed.
// Terminal states never change, and a completion credits the resident's
// ledger in the same transaction that flips the status.
type PickupService interface {
	Create(ctx context.Context, residentID uuid.UUID, req dto.CreatePickupRequest) (*dto.PickupResponse, error)
	Complete(ctx context.Context, jobID, collectorID uuid.UUID, weightKg decimal.Decimal) (*dto.PickupResponse, error)
	ReportIssue(ctx context.Context, jobID, collectorID uuid.UUID, reason string) (*dto.PickupResponse, error)
	ListPending(ctx context.Context, zone string) ([]dto.PickupResponse, error)
	Manifest(ctx context.Context, zone string) (*dto.ManifestResponse, error)
	HistoryByResident(ctx context.Context, residentID uuid.UUID) ([]dto.PickupResponse, error)
}

type pickupService struct {
	repo     repository.PickupRepository
	profiles repository.ProfileRepository
	ledger   LedgerService
}

func NewPickupService(
	repo repository.PickupRepository,
	profiles repository.ProfileRepository,
	ledger LedgerService,
) PickupService {
	return &pickupService{repo: repo, profiles: profiles, ledger: ledger}
}

// ── Create ────────────────────────────────────────────────────────────────────

func (s *pickupService) Create(ctx context.Context, residentID uuid.UUID, req dto.CreatePickupRequest) (*dto.PickupResponse, error) {
	wt := model.WasteType(req.WasteType)
	if !wt.Valid() {
		return nil, fmt.Errorf("%w: unknown waste type %q", ErrValidation, req.WasteType)
	}
	scheduled, err := time.Parse("2006-01-02", req.ScheduledDate)
	if err != nil {
		return nil, fmt.Errorf("%w: scheduled_date must be YYYY-MM-DD", ErrValidation)
	}
	if _, err := s.profiles.FindByUserID(ctx, residentID); err != nil {
		return nil, fmt.Errorf("%w: resident %s", ErrNotFound, residentID)
	}

	job := &model.PickupRequest{
		ResidentID:    residentID,
		WasteType:     wt,
		Status:        model.StatusPending,
		ScheduledDate: scheduled,
		WeightKg:      decimal.Zero,
		Notes:         req.Notes,
	}
	if err := s.repo.Create(ctx, job); err != nil {
		return nil, err
	}
	return pickupToResponse(job), nil
}

// ── Complete ──────────────────────────────────────────────────────────────────
// Status flip and ledger credit are one transaction: a completed job is
// never left uncredited and a credited job is never left incomplete.
// The guarded UPDATE (WHERE status = 'Pending') decides races — of two
// concurrent completions exactly one matches a row, the other rolls back.

func (s *pickupService) Complete(ctx context.Context, jobID, collectorID uuid.UUID, weightKg decimal.Decimal) (*dto.PickupResponse, error) {
	if !weightKg.IsPositive() {
		return nil, fmt.Errorf("%w: weight_kg must be greater than zero", ErrValidation)
	}
	points := PointsForWeight(weightKg)

	var job *model.PickupRequest
	txErr := runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		var err error
		job, err = s.repo.FindByIDTx(tx, jobID)
		if err != nil {
			return fmt.Errorf("%w: pickup %s", ErrNotFound, jobID)
		}

		now := time.Now()
		rows, err := s.repo.CompleteTx(tx, jobID, weightKg, collectorID, now)
		if err != nil {
			return err
		}
		if rows == 0 {
			return fmt.Errorf("%w: pickup %s", ErrInvalidState, jobID)
		}

		if err := s.ledger.CreditTx(tx, job.ResidentID, points); err != nil {
			return err
		}

		job.Status = model.StatusCompleted
		job.WeightKg = weightKg
		job.CollectorID = &collectorID
		job.ResolvedAt = &now
		return nil
	})
	if txErr != nil {
		return nil, txErr
	}
	resp := pickupToResponse(job)
	resp.PointsAwarded = points
	return resp, nil
}

// ── ReportIssue ───────────────────────────────────────────────────────────────

func (s *pickupService) ReportIssue(ctx context.Context, jobID, collectorID uuid.UUID, reason string) (*dto.PickupResponse, error) {
	if reason == "" {
		return nil, fmt.Errorf("%w: reason must not be empty", ErrValidation)
	}

	var job *model.PickupRequest
	txErr := runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		var err error
		job, err = s.repo.FindByIDTx(tx, jobID)
		if err != nil {
			return fmt.Errorf("%w: pickup %s", ErrNotFound, jobID)
		}

		now := time.Now()
		rows, err := s.repo.FailTx(tx, jobID, reason, collectorID, now)
		if err != nil {
			return err
		}
		if rows == 0 {
			return fmt.Errorf("%w: pickup %s", ErrInvalidState, jobID)
		}

		job.Status = model.StatusFailed
		job.Notes = reason
		job.CollectorID = &collectorID
		job.ResolvedAt = &now
		return nil
	})
	if txErr != nil {
		return nil, txErr
	}
	return pickupToResponse(job), nil
}

// ── Listings ──────────────────────────────────────────────────────────────────

func (s *pickupService) ListPending(ctx context.Context, zone string) ([]dto.PickupResponse, error) {
	jobs, err := s.repo.ListPending(ctx, zone)
	if err != nil {
		return nil, err
	}
	resp := make([]dto.PickupResponse, len(jobs))
	for i := range jobs {
		resp[i] = *pickupToResponse(&jobs[i])
	}
	return resp, nil
}

func (s *pickupService) HistoryByResident(ctx context.Context, residentID uuid.UUID) ([]dto.PickupResponse, error) {
	jobs, err := s.repo.ListByResident(ctx, residentID)
	if err != nil {
		return nil, err
	}
	resp := make([]dto.PickupResponse, len(jobs))
	for i := range jobs {
		resp[i] = *pickupToResponse(&jobs[i])
	}
	return resp, nil
}

// ── Manifest ──────────────────────────────────────────────────────────────────
// The driver-facing run sheet: pending stops in the collector's zone with
// a stable map pin per resident.

// estKgPerStop is the planning figure used before real weights exist.
const estKgPerStop = 5

func (s *pickupService) Manifest(ctx context.Context, zone string) (*dto.ManifestResponse, error) {
	jobs, err := s.repo.ListPending(ctx, zone)
	if err != nil {
		return nil, err
	}

	stops := make([]dto.ManifestStop, len(jobs))
	for i := range jobs {
		job := &jobs[i]
		stop := dto.ManifestStop{Pickup: *pickupToResponse(job)}
		if job.Resident != nil && job.Resident.Profile != nil {
			stop.Address = job.Resident.Profile.Address
			stop.Lat, stop.Lon = stableCoords(job.Resident.Username, job.Resident.Profile.Zone)
		}
		stops[i] = stop
	}

	return &dto.ManifestResponse{
		Zone:        zone,
		StopCount:   len(stops),
		EstWeightKg: len(stops) * estKgPerStop,
		Stops:       stops,
	}, nil
}

type latLon struct{ lat, lon float64 }

// zoneCenters anchors each service zone on the Cyberjaya map so a
// resident's pin always lands inside their own neighborhood.
var zoneCenters = map[string]latLon{
	"Zone A": {2.921300, 101.655900},
	"Zone B": {2.925000, 101.650000},
	"Zone C": {2.918000, 101.660000},
	"Zone D": {2.930000, 101.645000},
}

// stableCoords derives a fixed map position from the username, with a
// small jitter so neighbors don't stack on the zone center. Same input,
// same pin — the dots never jump between refreshes.
func stableCoords(username, zone string) (float64, float64) {
	var seed int64
	for _, c := range username {
		seed += int64(c)
	}
	rng := rand.New(rand.NewSource(seed))

	center, ok := zoneCenters[zone]
	if !ok {
		center = zoneCenters["Zone A"]
	}
	lat := center.lat + (rng.Float64()*2-1)*0.003
	lon := center.lon + (rng.Float64()*2-1)*0.003
	return lat, lon
}

func pickupToResponse(p *model.PickupRequest) *dto.PickupResponse {
	resp := &dto.PickupResponse{
		ID:            p.ID.String(),
		ResidentID:    p.ResidentID.String(),
		WasteType:     string(p.WasteType),
		Status:        string(p.Status),
		ScheduledDate: p.ScheduledDate.Format("2006-01-02"),
		WeightKg:      p.WeightKg,
		Notes:         p.Notes,
		CreatedAt:     p.CreatedAt.Format("2006-01-02T15:04:05Z"),
	}
	if p.Resident != nil {
		resp.ResidentUsername = p.Resident.Username
		if p.Resident.Profile != nil {
			resp.Zone = p.Resident.Profile.Zone
		}
	}
	if p.ResolvedAt != nil {
		resolved := p.ResolvedAt.Format("2006-01-02T15:04:05Z")
		resp.ResolvedAt = &resolved
	}
	return resp
}
