package handler

import (
	"fmt"
	"net/http"
	"time"

	"ecosort/internal/apierror"
	"ecosort/internal/dto"
	"ecosort/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

type AdminHandler struct {
	svc   service.AdminService
	stats service.StatsService
}

func NewAdminHandler(svc service.AdminService, stats service.StatsService) *AdminHandler {
	return &AdminHandler{svc: svc, stats: stats}
}

// ListUsers godoc
// @Summary      List accounts
// @Tags         admin
// @Produce      json
// @Security     BearerAuth
// @Param        role   query string false "Resident | Collector | Admin"
// @Param        search query string false "Username substring"
// @Success      200    {array} dto.UserResponse
// @Router       /v1/admin/users [get]
func (h *AdminHandler) ListUsers(c *gin.Context) {
	resp, err := h.svc.ListUsers(c.Request.Context(), c.Query("role"), c.Query("search"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// AssignZone godoc
// @Summary      Assign a collection zone to a collector
// @Tags         admin
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id   path string true "Collector UUID"
// @Param        body body dto.AssignZoneRequest true "Zone"
// @Success      200  {object} dto.UserResponse
// @Failure      404  {object} apierror.APIError
// @Router       /v1/admin/users/{id}/zone [put]
func (h *AdminHandler) AssignZone(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("invalid id"))
		return
	}
	var req dto.AssignZoneRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.AssignZone(c.Request.Context(), id, req.Zone)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// ListAllPickups godoc
// @Summary      All pickup requests across every zone
// @Tags         admin
// @Produce      json
// @Security     BearerAuth
// @Success      200 {array} dto.PickupResponse
// @Router       /v1/admin/pickups [get]
func (h *AdminHandler) ListAllPickups(c *gin.Context) {
	resp, err := h.svc.ListAllPickups(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Overview godoc
// @Summary      System-wide metrics
// @Description  User count, total recycled weight, pending job count, waste composition and a recent activity feed.
// @Tags         admin
// @Produce      json
// @Security     BearerAuth
// @Success      200 {object} dto.AdminOverview
// @Router       /v1/admin/overview [get]
func (h *AdminHandler) Overview(c *gin.Context) {
	resp, err := h.stats.AdminOverview(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// ActivityReport godoc
// @Summary      Download the activity report as XLSX
// @Description  One row per pickup request plus a waste-composition summary sheet.
// @Tags         admin
// @Produce      application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Security     BearerAuth
// @Success      200 {file} binary
// @Router       /v1/admin/reports/activity [get]
func (h *AdminHandler) ActivityReport(c *gin.Context) {
	data, err := h.stats.ActivityReportXLSX(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	filename := fmt.Sprintf("ecosort_activity_%s.xlsx", time.Now().Format("2006-01-02"))
	c.Header("Content-Disposition", `attachment; filename="`+filename+`"`)
	c.Data(http.StatusOK, xlsxContentType, data)
}

// ResetPickups godoc
// @Summary      Flush all pickup requests
// @Description  Destructive demo helper: deletes every pickup request. Accounts, balances and redemption history survive.
// @Tags         admin
// @Produce      json
// @Security     BearerAuth
// @Success      200 {object} dto.ResetResponse
// @Router       /v1/admin/reset [post]
func (h *AdminHandler) ResetPickups(c *gin.Context) {
	resp, err := h.svc.ResetPickups(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}
