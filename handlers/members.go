package handlers

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"splitledger-backend/ledger"
	"splitledger-backend/models"
	"splitledger-backend/utils"
)

// POST /api/groups/:id/members
func (h *Handler) AddMember(c *gin.Context) {
	actorID := utils.GetCurrentUserID(c)

	groupID, err := utils.ParseUUID(c.Param("id"))
	if err != nil {
		utils.BadRequest(c, "Invalid group ID")
		return
	}

	var req models.AddMemberRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequest(c, err.Error())
		return
	}

	ctx := c.Request.Context()

	var user *models.User
	switch {
	case req.UserID != "":
		targetID, err := utils.ParseUUID(req.UserID)
		if err != nil {
			utils.BadRequest(c, "Invalid user ID")
			return
		}
		user, err = h.users.GetByID(ctx, targetID)
		if err != nil {
			h.respondError(c, ledger.ErrUserNotFound)
			return
		}
	case req.Email != "":
		user, err = h.users.FindByEmail(ctx, strings.ToLower(strings.TrimSpace(req.Email)))
		if err != nil {
			h.respondError(c, err)
			return
		}
		if user == nil {
			utils.NotFound(c, "No account with that email. Send an invitation instead.")
			return
		}
	default:
		utils.BadRequest(c, "Either user_id or email is required")
		return
	}

	if err := h.engine.AddMember(ctx, actorID, groupID, user.ID); err != nil {
		h.respondError(c, err)
		return
	}

	group, gErr := h.groups.GetByID(ctx, groupID)
	actor, aErr := h.users.GetByID(ctx, actorID)
	if gErr == nil && aErr == nil {
		h.recordActivity(groupID, actorID, models.ActivityMemberAdded,
			fmt.Sprintf("%s added %s to the group", actor.Name, user.Name))
		go h.notifier.MemberAdded(context.Background(), group, actor.Name, user)
	}

	utils.SuccessResponse(c, http.StatusOK, "Member added", nil)
}

// DELETE /api/groups/:id/members/:userId
func (h *Handler) RemoveMember(c *gin.Context) {
	actorID := utils.GetCurrentUserID(c)

	groupID, err := utils.ParseUUID(c.Param("id"))
	if err != nil {
		utils.BadRequest(c, "Invalid group ID")
		return
	}
	targetID, err := utils.ParseUUID(c.Param("userId"))
	if err != nil {
		utils.BadRequest(c, "Invalid user ID")
		return
	}

	if err := h.engine.RemoveMember(c.Request.Context(), actorID, groupID, targetID); err != nil {
		h.respondError(c, err)
		return
	}

	target, err := h.users.GetByID(c.Request.Context(), targetID)
	if err == nil {
		h.recordActivity(groupID, actorID, models.ActivityMemberRemoved,
			fmt.Sprintf("%s was removed from the group", target.Name))
	}

	utils.SuccessResponse(c, http.StatusOK, "Member removed", nil)
}

// POST /api/groups/:id/leave
func (h *Handler) LeaveGroup(c *gin.Context) {
	userID := utils.GetCurrentUserID(c)

	groupID, err := utils.ParseUUID(c.Param("id"))
	if err != nil {
		utils.BadRequest(c, "Invalid group ID")
		return
	}

	if err := h.engine.RemoveMember(c.Request.Context(), userID, groupID, userID); err != nil {
		h.respondError(c, err)
		return
	}

	user, err := h.users.GetByID(c.Request.Context(), userID)
	if err == nil {
		h.recordActivity(groupID, userID, models.ActivityMemberLeft,
			fmt.Sprintf("%s left the group", user.Name))
	}

	utils.SuccessResponse(c, http.StatusOK, "You left the group", nil)
}
