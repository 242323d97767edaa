package handlers

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"splitledger-backend/models"
	"splitledger-backend/utils"
)

// POST /api/groups/:id/invites
func (h *Handler) CreateInvite(c *gin.Context) {
	userID := utils.GetCurrentUserID(c)

	groupID, err := utils.ParseUUID(c.Param("id"))
	if err != nil {
		utils.BadRequest(c, "Invalid group ID")
		return
	}

	var req models.CreateInviteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequest(c, err.Error())
		return
	}
	email := strings.ToLower(strings.TrimSpace(req.Email))

	invite, err := h.invites.Invite(c.Request.Context(), userID, groupID, email)
	if err != nil {
		h.respondError(c, err)
		return
	}

	sender, err := h.users.GetByID(c.Request.Context(), userID)
	if err == nil {
		h.recordActivity(groupID, userID, models.ActivityInviteSent,
			fmt.Sprintf("%s invited %s", sender.Name, email))
	}

	resp, err := h.buildInviteResponse(c.Request.Context(), invite)
	if err != nil {
		h.respondError(c, err)
		return
	}

	utils.SuccessResponse(c, http.StatusCreated, "Invitation sent", resp)
}

// POST /api/invites/:token/accept
func (h *Handler) AcceptInvite(c *gin.Context) {
	userID := utils.GetCurrentUserID(c)

	token, err := utils.ParseUUID(c.Param("token"))
	if err != nil {
		utils.BadRequest(c, "Invalid invitation token")
		return
	}

	ctx := c.Request.Context()
	invite, err := h.invites.Accept(ctx, userID, token)
	if err != nil {
		h.respondError(c, err)
		return
	}

	user, uErr := h.users.GetByID(ctx, userID)
	group, gErr := h.groups.GetByID(ctx, invite.GroupID)
	if uErr == nil && gErr == nil {
		h.recordActivity(invite.GroupID, userID, models.ActivityMemberAdded,
			fmt.Sprintf("%s joined via invitation", user.Name))

		sender, sErr := h.users.GetByID(ctx, invite.SenderID)
		if sErr == nil {
			go h.notifier.MemberAdded(context.Background(), group, sender.Name, user)
		}
	}

	resp, err := h.buildInviteResponse(ctx, invite)
	if err != nil {
		h.respondError(c, err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "Invitation accepted", resp)
}

// POST /api/invites/:token/decline
func (h *Handler) DeclineInvite(c *gin.Context) {
	userID := utils.GetCurrentUserID(c)

	token, err := utils.ParseUUID(c.Param("token"))
	if err != nil {
		utils.BadRequest(c, "Invalid invitation token")
		return
	}

	if err := h.invites.Decline(c.Request.Context(), userID, token); err != nil {
		h.respondError(c, err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "Invitation declined", nil)
}

// GET /api/invites
func (h *Handler) ListMyInvites(c *gin.Context) {
	userID := utils.GetCurrentUserID(c)

	user, err := h.users.GetByID(c.Request.Context(), userID)
	if err != nil {
		h.respondError(c, err)
		return
	}

	invites, err := h.invites.PendingForUser(c.Request.Context(), user)
	if err != nil {
		h.respondError(c, err)
		return
	}

	resp := make([]models.InviteResponse, 0, len(invites))
	for i := range invites {
		r, err := h.buildInviteResponse(c.Request.Context(), &invites[i])
		if err != nil {
			h.respondError(c, err)
			return
		}
		resp = append(resp, *r)
	}

	utils.SuccessResponse(c, http.StatusOK, "", resp)
}

func (h *Handler) buildInviteResponse(ctx context.Context, invite *models.Invite) (*models.InviteResponse, error) {
	group, err := h.groups.GetByID(ctx, invite.GroupID)
	if err != nil {
		return nil, err
	}
	sender, err := h.users.GetByID(ctx, invite.SenderID)
	if err != nil {
		return nil, err
	}

	return &models.InviteResponse{
		ID:            invite.ID,
		GroupID:       invite.GroupID,
		GroupName:     group.Name,
		SenderName:    sender.Name,
		ReceiverEmail: invite.ReceiverEmail,
		Token:         invite.Token,
		Status:        invite.Status,
		ExpiresAt:     invite.ExpiresAt,
		CreatedAt:     invite.CreatedAt,
	}, nil
}
