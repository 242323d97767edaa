package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"splitledger-backend/utils"
)

// GET /api/groups/:id/balances
func (h *Handler) GroupBalances(c *gin.Context) {
	userID := utils.GetCurrentUserID(c)

	groupID, err := utils.ParseUUID(c.Param("id"))
	if err != nil {
		utils.BadRequest(c, "Invalid group ID")
		return
	}

	summary, err := h.engine.GroupBalances(c.Request.Context(), userID, groupID)
	if err != nil {
		h.respondError(c, err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "", summary)
}

// GET /api/balances
func (h *Handler) OverallBalances(c *gin.Context) {
	userID := utils.GetCurrentUserID(c)

	summary, err := h.engine.OverallBalances(c.Request.Context(), userID)
	if err != nil {
		h.respondError(c, err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "", summary)
}
