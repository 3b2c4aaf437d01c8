package handler

import (
	"net/http"

	"ecosort/internal/apierror"
	"ecosort/internal/dto"
	"ecosort/internal/middleware"
	"ecosort/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type PickupsHandler struct{ svc service.PickupService }

func NewPickupsHandler(svc service.PickupService) *PickupsHandler {
	return &PickupsHandler{svc: svc}
}

// Create godoc
// @Summary      Book a pickup
// @Description  Creates a pickup request in Pending state for the authenticated resident.
// @Tags         pickups
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body body dto.CreatePickupRequest true "Pickup details"
// @Success      201  {object} dto.PickupResponse
// @Failure      422  {object} apierror.APIError
// @Router       /v1/pickups [post]
func (h *PickupsHandler) Create(c *gin.Context) {
	var req dto.CreatePickupRequest
	if !bindAndValidate(c, &req) {
		return
	}
	claims := middleware.GetClaims(c)
	residentID, _ := uuid.Parse(claims.UserID)

	resp, err := h.svc.Create(c.Request.Context(), residentID, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

// ListMine godoc
// @Summary      Pickup history for the authenticated resident
// @Tags         pickups
// @Produce      json
// @Security     BearerAuth
// @Success      200 {array} dto.PickupResponse
// @Router       /v1/pickups/mine [get]
func (h *PickupsHandler) ListMine(c *gin.Context) {
	claims := middleware.GetClaims(c)
	residentID, _ := uuid.Parse(claims.UserID)

	resp, err := h.svc.HistoryByResident(c.Request.Context(), residentID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// ListPending godoc
// @Summary      Pending pickups for a zone
// @Description  Defaults to the collector's assigned zone; pass ?zone= to override, empty zone lists all.
// @Tags         pickups
// @Produce      json
// @Security     BearerAuth
// @Param        zone query string false "Zone filter"
// @Success      200  {array} dto.PickupResponse
// @Router       /v1/pickups/pending [get]
func (h *PickupsHandler) ListPending(c *gin.Context) {
	resp, err := h.svc.ListPending(c.Request.Context(), h.resolveZone(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Manifest godoc
// @Summary      Route manifest for a zone
// @Description  Run sheet of pending stops with map pins and an estimated load weight.
// @Tags         pickups
// @Produce      json
// @Security     BearerAuth
// @Param        zone query string false "Zone (defaults to the collector's assigned zone)"
// @Success      200  {object} dto.ManifestResponse
// @Failure      422  {object} apierror.APIError
// @Router       /v1/pickups/manifest [get]
func (h *PickupsHandler) Manifest(c *gin.Context) {
	zone := h.resolveZone(c)
	if zone == "" {
		c.JSON(http.StatusUnprocessableEntity, apierror.New("no zone assigned; pass ?zone="))
		return
	}
	resp, err := h.svc.Manifest(c.Request.Context(), zone)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Complete godoc
// @Summary      Complete a pickup
// @Description  Records the collected weight, moves the job to Completed and credits the resident 10 points per kg in the same transaction. First collector wins on concurrent attempts.
// @Tags         pickups
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id   path string true "Pickup UUID"
// @Param        body body dto.CompletePickupRequest true "Collected weight"
// @Success      200  {object} dto.PickupResponse
// @Failure      404  {object} apierror.APIError
// @Failure      409  {object} apierror.APIError
// @Router       /v1/pickups/{id}/complete [put]
func (h *PickupsHandler) Complete(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("invalid id"))
		return
	}
	var req dto.CompletePickupRequest
	if !bindAndValidate(c, &req) {
		return
	}
	claims := middleware.GetClaims(c)
	collectorID, _ := uuid.Parse(claims.UserID)

	resp, err := h.svc.Complete(c.Request.Context(), id, collectorID, req.WeightKg)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// ReportIssue godoc
// @Summary      Report a failed pickup
// @Description  Moves the job to Failed with the given reason. No points are awarded.
// @Tags         pickups
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id   path string true "Pickup UUID"
// @Param        body body dto.ReportIssueRequest true "Failure reason"
// @Success      200  {object} dto.PickupResponse
// @Failure      404  {object} apierror.APIError
// @Failure      409  {object} apierror.APIError
// @Router       /v1/pickups/{id}/report-issue [put]
func (h *PickupsHandler) ReportIssue(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("invalid id"))
		return
	}
	var req dto.ReportIssueRequest
	if !bindAndValidate(c, &req) {
		return
	}
	claims := middleware.GetClaims(c)
	collectorID, _ := uuid.Parse(claims.UserID)

	resp, err := h.svc.ReportIssue(c.Request.Context(), id, collectorID, req.Reason)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// resolveZone prefers an explicit ?zone= query over the collector's
// assigned zone from the token. Empty string means no filter.
func (h *PickupsHandler) resolveZone(c *gin.Context) string {
	if zone, ok := c.GetQuery("zone"); ok {
		return zone
	}
	claims := middleware.GetClaims(c)
	if claims.Zone != nil {
		return *claims.Zone
	}
	return ""
}
