package handler

import (
	"net/http"

	"ecosort/internal/apierror"
	"ecosort/internal/dto"
	"ecosort/internal/middleware"
	"ecosort/internal/model"
	"ecosort/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type RewardsHandler struct{ svc service.RewardService }

func NewRewardsHandler(svc service.RewardService) *RewardsHandler {
	return &RewardsHandler{svc: svc}
}

// List godoc
// @Summary      Reward catalog
// @Description  Active rewards only. Admins may pass ?include_inactive=true to see retired items.
// @Tags         rewards
// @Produce      json
// @Security     BearerAuth
// @Param        include_inactive query bool false "Admins only"
// @Success      200 {array} dto.RewardItemResponse
// @Router       /v1/rewards [get]
func (h *RewardsHandler) List(c *gin.Context) {
	claims := middleware.GetClaims(c)
	includeInactive := c.Query("include_inactive") == "true" && claims.Role == string(model.RoleAdmin)

	resp, err := h.svc.List(c.Request.Context(), includeInactive)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Create godoc
// @Summary      Add a reward to the catalog
// @Tags         rewards
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body body dto.CreateRewardRequest true "Reward details"
// @Success      201  {object} dto.RewardItemResponse
// @Failure      409  {object} apierror.APIError
// @Router       /v1/rewards [post]
func (h *RewardsHandler) Create(c *gin.Context) {
	var req dto.CreateRewardRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.Create(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

// Update godoc
// @Summary      Update a reward
// @Description  Partial update: only the fields present in the body change.
// @Tags         rewards
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id   path string true "Reward UUID"
// @Param        body body dto.UpdateRewardRequest true "Fields to change"
// @Success      200  {object} dto.RewardItemResponse
// @Failure      404  {object} apierror.APIError
// @Router       /v1/rewards/{id} [put]
func (h *RewardsHandler) Update(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("invalid id"))
		return
	}
	var req dto.UpdateRewardRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.Update(c.Request.Context(), id, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Retire godoc
// @Summary      Retire a reward
// @Description  Soft delete: the item disappears from the catalog but past redemptions keep their reference.
// @Tags         rewards
// @Security     BearerAuth
// @Param        id path string true "Reward UUID"
// @Success      204
// @Failure      404 {object} apierror.APIError
// @Router       /v1/rewards/{id} [delete]
func (h *RewardsHandler) Retire(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("invalid id"))
		return
	}
	if err := h.svc.Retire(c.Request.Context(), id); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// ── Redemptions Handler ──────────────────────────────────────────────────────

type RedemptionsHandler struct{ ledger service.LedgerService }

func NewRedemptionsHandler(ledger service.LedgerService) *RedemptionsHandler {
	return &RedemptionsHandler{ledger: ledger}
}

// Redeem godoc
// @Summary      Redeem a reward
// @Description  Atomically checks stock and balance, decrements both and issues a voucher code. Voucher PDF delivery runs asynchronously.
// @Tags         redemptions
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body body dto.RedeemRequest true "Item to redeem"
// @Success      201  {object} dto.RedemptionResponse
// @Failure      402  {object} apierror.APIError
// @Failure      409  {object} apierror.APIError
// @Router       /v1/redemptions [post]
func (h *RedemptionsHandler) Redeem(c *gin.Context) {
	var req dto.RedeemRequest
	if !bindAndValidate(c, &req) {
		return
	}
	itemID, err := uuid.Parse(req.ItemID)
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("invalid item_id"))
		return
	}
	claims := middleware.GetClaims(c)
	residentID, _ := uuid.Parse(claims.UserID)

	resp, err := h.ledger.DebitForRedemption(c.Request.Context(), residentID, itemID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

// History godoc
// @Summary      Redemption history for the authenticated resident
// @Tags         redemptions
// @Produce      json
// @Security     BearerAuth
// @Success      200 {array} dto.RedemptionLogEntry
// @Router       /v1/redemptions [get]
func (h *RedemptionsHandler) History(c *gin.Context) {
	claims := middleware.GetClaims(c)
	residentID, _ := uuid.Parse(claims.UserID)

	resp, err := h.ledger.History(c.Request.Context(), residentID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Balance godoc
// @Summary      Current points balance
// @Description  Returns zero for accounts that have not earned yet.
// @Tags         redemptions
// @Produce      json
// @Security     BearerAuth
// @Success      200 {object} dto.BalanceResponse
// @Router       /v1/points/balance [get]
func (h *RedemptionsHandler) Balance(c *gin.Context) {
	claims := middleware.GetClaims(c)
	residentID, _ := uuid.Parse(claims.UserID)

	points, err := h.ledger.GetBalance(c.Request.Context(), residentID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.BalanceResponse{Points: points})
}
