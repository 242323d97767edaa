package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"splitledger-backend/models"
	"splitledger-backend/utils"
)

// GET /api/activity
func (h *Handler) ListMyActivity(c *gin.Context) {
	userID := utils.GetCurrentUserID(c)

	var page utils.PaginationQuery
	if err := c.ShouldBindQuery(&page); err != nil {
		utils.BadRequest(c, err.Error())
		return
	}

	activities, err := h.activity.ListForUser(c.Request.Context(), userID, page.Offset(), page.Limit)
	if err != nil {
		h.respondError(c, err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "", buildActivityResponses(activities))
}

// GET /api/groups/:id/activity
func (h *Handler) ListActivity(c *gin.Context) {
	userID := utils.GetCurrentUserID(c)

	groupID, err := utils.ParseUUID(c.Param("id"))
	if err != nil {
		utils.BadRequest(c, "Invalid group ID")
		return
	}

	var page utils.PaginationQuery
	if err := c.ShouldBindQuery(&page); err != nil {
		utils.BadRequest(c, err.Error())
		return
	}

	if err := h.gate.RequireActiveMember(groupID, userID); err != nil {
		h.respondError(c, err)
		return
	}

	activities, err := h.activity.ListForGroup(c.Request.Context(), groupID, page.Offset(), page.Limit)
	if err != nil {
		h.respondError(c, err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "", buildActivityResponses(activities))
}

func buildActivityResponses(activities []models.Activity) []models.ActivityResponse {
	resp := make([]models.ActivityResponse, 0, len(activities))
	for _, a := range activities {
		resp = append(resp, models.ActivityResponse{
			ID:        a.ID,
			GroupID:   a.GroupID,
			GroupName: a.Group.Name,
			ActorID:   a.ActorID,
			ActorName: a.Actor.Name,
			Type:      a.Type,
			Message:   a.Message,
			CreatedAt: a.CreatedAt,
		})
	}
	return resp
}
