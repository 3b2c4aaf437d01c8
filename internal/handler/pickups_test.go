package handler

import (
	"context"
	"fmt"
	"net/http"
	"testing"

	"ecosort/internal/dto"
	"ecosort/internal/middleware"
	"ecosort/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ── PickupService stub ───────────────────────────────────────────────────────

type stubPickupService struct {
	resp *dto.PickupResponse
	err  error

	called         bool
	gotResidentID  uuid.UUID
	gotCollectorID uuid.UUID
	gotJobID       uuid.UUID
	gotWeight      decimal.Decimal
	gotReason      string
	gotZone        string
}

func (s *stubPickupService) Create(_ context.Context, residentID uuid.UUID, _ dto.CreatePickupRequest) (*dto.PickupResponse, error) {
	s.called = true
	s.gotResidentID = residentID
	return s.resp, s.err
}

func (s *stubPickupService) Complete(_ context.Context, jobID, collectorID uuid.UUID, weightKg decimal.Decimal) (*dto.PickupResponse, error) {
	s.called = true
	s.gotJobID = jobID
	s.gotCollectorID = collectorID
	s.gotWeight = weightKg
	return s.resp, s.err
}

func (s *stubPickupService) ReportIssue(_ context.Context, jobID, collectorID uuid.UUID, reason string) (*dto.PickupResponse, error) {
	s.called = true
	s.gotJobID = jobID
	s.gotCollectorID = collectorID
	s.gotReason = reason
	return s.resp, s.err
}

func (s *stubPickupService) ListPending(_ context.Context, zone string) ([]dto.PickupResponse, error) {
	s.called = true
	s.gotZone = zone
	return []dto.PickupResponse{}, s.err
}

func (s *stubPickupService) Manifest(_ context.Context, zone string) (*dto.ManifestResponse, error) {
	s.called = true
	s.gotZone = zone
	return &dto.ManifestResponse{Zone: zone, Stops: []dto.ManifestStop{}}, s.err
}

func (s *stubPickupService) HistoryByResident(_ context.Context, residentID uuid.UUID) ([]dto.PickupResponse, error) {
	s.called = true
	s.gotResidentID = residentID
	return []dto.PickupResponse{}, s.err
}

var _ service.PickupService = (*stubPickupService)(nil)

// pickupRouter mirrors the production route guards for the pickup group.
func pickupRouter(svc service.PickupService) *gin.Engine {
	r := gin.New()
	h := NewPickupsHandler(svc)
	v1 := r.Group("/v1", middleware.JWTAuth(testSecret))
	v1.POST("/pickups", middleware.RequireRole("Resident"), h.Create)
	v1.GET("/pickups/mine", middleware.RequireRole("Resident"), h.ListMine)
	v1.GET("/pickups/pending", middleware.RequireRole("Collector", "Admin"), h.ListPending)
	v1.GET("/pickups/manifest", middleware.RequireRole("Collector", "Admin"), h.Manifest)
	v1.PUT("/pickups/:id/complete", middleware.RequireRole("Collector"), h.Complete)
	v1.PUT("/pickups/:id/report-issue", middleware.RequireRole("Collector"), h.ReportIssue)
	return r
}

// ── Tests: Create ────────────────────────────────────────────────────────────

func TestPickupsCreate(t *testing.T) {
	residentID := uuid.New()
	svc := &stubPickupService{resp: &dto.PickupResponse{ID: uuid.NewString(), Status: "Pending"}}
	r := pickupRouter(svc)
	token := signToken(t, residentID.String(), "Resident", nil)

	w := doJSON(r, http.MethodPost, "/v1/pickups", token,
		`{"waste_type":"Recyclable","scheduled_date":"2025-03-10","notes":"gate code 4471"}`)

	require.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, residentID, svc.gotResidentID, "resident comes from the token, not the body")
	assert.Equal(t, "Pending", decodeJSON(t, w)["status"])
}

func TestPickupsCreate_CollectorForbidden(t *testing.T) {
	svc := &stubPickupService{}
	r := pickupRouter(svc)
	token := signToken(t, uuid.NewString(), "Collector", nil)

	w := doJSON(r, http.MethodPost, "/v1/pickups", token,
		`{"waste_type":"Recyclable","scheduled_date":"2025-03-10"}`)

	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.False(t, svc.called)
}

func TestPickupsCreate_NoToken(t *testing.T) {
	r := pickupRouter(&stubPickupService{})

	w := doJSON(r, http.MethodPost, "/v1/pickups", "",
		`{"waste_type":"Recyclable","scheduled_date":"2025-03-10"}`)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestPickupsCreate_MissingFields(t *testing.T) {
	svc := &stubPickupService{}
	r := pickupRouter(svc)
	token := signToken(t, uuid.NewString(), "Resident", nil)

	w := doJSON(r, http.MethodPost, "/v1/pickups", token, `{"notes":"no type or date"}`)

	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.False(t, svc.called)
}

// ── Tests: Complete / ReportIssue ────────────────────────────────────────────

func TestPickupsComplete(t *testing.T) {
	jobID, collectorID := uuid.New(), uuid.New()
	svc := &stubPickupService{resp: &dto.PickupResponse{ID: jobID.String(), Status: "Completed", PointsAwarded: 25}}
	r := pickupRouter(svc)
	token := signToken(t, collectorID.String(), "Collector", nil)

	w := doJSON(r, http.MethodPut, "/v1/pickups/"+jobID.String()+"/complete", token, `{"weight_kg": 2.5}`)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, jobID, svc.gotJobID)
	assert.Equal(t, collectorID, svc.gotCollectorID)
	assert.True(t, svc.gotWeight.Equal(decimal.NewFromFloat(2.5)))
	assert.EqualValues(t, 25, decodeJSON(t, w)["points_awarded"])
}

func TestPickupsComplete_InvalidID(t *testing.T) {
	svc := &stubPickupService{}
	r := pickupRouter(svc)
	token := signToken(t, uuid.NewString(), "Collector", nil)

	w := doJSON(r, http.MethodPut, "/v1/pickups/not-a-uuid/complete", token, `{"weight_kg": 2.5}`)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "invalid id", decodeJSON(t, w)["detail"])
	assert.False(t, svc.called)
}

func TestPickupsComplete_ZeroWeightRejectedBeforeService(t *testing.T) {
	svc := &stubPickupService{}
	r := pickupRouter(svc)
	token := signToken(t, uuid.NewString(), "Collector", nil)

	w := doJSON(r, http.MethodPut, "/v1/pickups/"+uuid.NewString()+"/complete", token, `{"weight_kg": 0}`)

	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.False(t, svc.called)
}

func TestPickupsComplete_AlreadyResolved(t *testing.T) {
	svc := &stubPickupService{err: fmt.Errorf("%w: pickup x", service.ErrInvalidState)}
	r := pickupRouter(svc)
	token := signToken(t, uuid.NewString(), "Collector", nil)

	w := doJSON(r, http.MethodPut, "/v1/pickups/"+uuid.NewString()+"/complete", token, `{"weight_kg": 2.5}`)

	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestPickupsReportIssue(t *testing.T) {
	jobID := uuid.New()
	svc := &stubPickupService{resp: &dto.PickupResponse{ID: jobID.String(), Status: "Failed"}}
	r := pickupRouter(svc)
	token := signToken(t, uuid.NewString(), "Collector", nil)

	w := doJSON(r, http.MethodPut, "/v1/pickups/"+jobID.String()+"/report-issue", token,
		`{"reason":"gate locked, nobody home"}`)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "gate locked, nobody home", svc.gotReason)
}

func TestPickupsReportIssue_ReasonTooShort(t *testing.T) {
	svc := &stubPickupService{}
	r := pickupRouter(svc)
	token := signToken(t, uuid.NewString(), "Collector", nil)

	w := doJSON(r, http.MethodPut, "/v1/pickups/"+uuid.NewString()+"/report-issue", token, `{"reason":"no"}`)

	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.False(t, svc.called)
}

// ── Tests: ListPending / Manifest zone resolution ────────────────────────────

func TestPickupsListPending_AdminSeesAll(t *testing.T) {
	svc := &stubPickupService{}
	r := pickupRouter(svc)
	token := signToken(t, uuid.NewString(), "Admin", nil)

	w := doJSON(r, http.MethodGet, "/v1/pickups/pending", token, "")

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "", svc.gotZone, "no zone claim, no filter")
}

func TestPickupsManifest_DefaultsToAssignedZone(t *testing.T) {
	svc := &stubPickupService{}
	r := pickupRouter(svc)
	token := signToken(t, uuid.NewString(), "Collector", strPtr("Zone B"))

	w := doJSON(r, http.MethodGet, "/v1/pickups/manifest", token, "")

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Zone B", svc.gotZone)
}

func TestPickupsManifest_QueryOverridesClaim(t *testing.T) {
	svc := &stubPickupService{}
	r := pickupRouter(svc)
	token := signToken(t, uuid.NewString(), "Collector", strPtr("Zone B"))

	w := doJSON(r, http.MethodGet, "/v1/pickups/manifest?zone=Zone+C", token, "")

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Zone C", svc.gotZone)
}

func TestPickupsManifest_NoZoneAnywhere(t *testing.T) {
	svc := &stubPickupService{}
	r := pickupRouter(svc)
	token := signToken(t, uuid.NewString(), "Collector", nil)

	w := doJSON(r, http.MethodGet, "/v1/pickups/manifest", token, "")

	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.False(t, svc.called)
	assert.Contains(t, decodeJSON(t, w)["detail"], "no zone assigned")
}
