package handlers

import (
	"context"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"splitledger-backend/ledger"
	"splitledger-backend/models"
	"splitledger-backend/utils"
)

// POST /api/groups
func (h *Handler) CreateGroup(c *gin.Context) {
	userID := utils.GetCurrentUserID(c)

	var req models.CreateGroupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequest(c, err.Error())
		return
	}

	group, err := h.engine.CreateGroup(c.Request.Context(), userID, req.Name, req.Description)
	if err != nil {
		h.respondError(c, err)
		return
	}

	user, err := h.users.GetByID(c.Request.Context(), userID)
	if err == nil {
		h.recordActivity(group.ID, userID, models.ActivityGroupCreated,
			fmt.Sprintf("%s created the group %q", user.Name, group.Name))
	}

	resp, err := h.buildGroupResponse(c.Request.Context(), group)
	if err != nil {
		h.respondError(c, err)
		return
	}

	utils.SuccessResponse(c, http.StatusCreated, "Group created", resp)
}

// GET /api/groups
func (h *Handler) ListGroups(c *gin.Context) {
	userID := utils.GetCurrentUserID(c)

	groups, err := h.groups.ListForUser(c.Request.Context(), userID)
	if err != nil {
		h.respondError(c, err)
		return
	}

	resp := make([]models.GroupResponse, 0, len(groups))
	for i := range groups {
		r, err := h.buildGroupResponse(c.Request.Context(), &groups[i])
		if err != nil {
			h.respondError(c, err)
			return
		}
		resp = append(resp, *r)
	}

	utils.SuccessResponse(c, http.StatusOK, "", resp)
}

// GET /api/groups/:id
func (h *Handler) GetGroup(c *gin.Context) {
	userID := utils.GetCurrentUserID(c)

	groupID, err := utils.ParseUUID(c.Param("id"))
	if err != nil {
		utils.BadRequest(c, "Invalid group ID")
		return
	}

	group, err := h.groups.GetByID(c.Request.Context(), groupID)
	if err != nil {
		h.respondError(c, err)
		return
	}
	if err := h.gate.RequireActiveMember(groupID, userID); err != nil {
		h.respondError(c, err)
		return
	}

	resp, err := h.buildGroupResponse(c.Request.Context(), group)
	if err != nil {
		h.respondError(c, err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "", resp)
}

// PUT /api/groups/:id
func (h *Handler) UpdateGroup(c *gin.Context) {
	userID := utils.GetCurrentUserID(c)

	groupID, err := utils.ParseUUID(c.Param("id"))
	if err != nil {
		utils.BadRequest(c, "Invalid group ID")
		return
	}

	var req models.UpdateGroupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequest(c, err.Error())
		return
	}

	if err := h.gate.RequireOwner(groupID, userID); err != nil {
		h.respondError(c, err)
		return
	}

	group, err := h.groups.GetByID(c.Request.Context(), groupID)
	if err != nil {
		h.respondError(c, err)
		return
	}
	if group.IsArchived {
		h.respondError(c, ledger.ErrGroupArchived)
		return
	}

	if req.Name != "" {
		group.Name = req.Name
	}
	if req.Description != "" {
		group.Description = req.Description
	}
	if err := h.groups.Update(c.Request.Context(), group); err != nil {
		h.respondError(c, err)
		return
	}

	resp, err := h.buildGroupResponse(c.Request.Context(), group)
	if err != nil {
		h.respondError(c, err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "Group updated", resp)
}

// PUT /api/groups/:id/archive
func (h *Handler) ArchiveGroup(c *gin.Context) {
	userID := utils.GetCurrentUserID(c)

	groupID, err := utils.ParseUUID(c.Param("id"))
	if err != nil {
		utils.BadRequest(c, "Invalid group ID")
		return
	}

	var req models.ArchiveGroupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequest(c, err.Error())
		return
	}

	if err := h.gate.RequireOwner(groupID, userID); err != nil {
		h.respondError(c, err)
		return
	}

	if err := h.groups.SetArchived(c.Request.Context(), groupID, *req.IsArchived); err != nil {
		h.respondError(c, err)
		return
	}

	activityType := models.ActivityGroupArchived
	message := "Group archived"
	if !*req.IsArchived {
		activityType = models.ActivityGroupUnarchived
		message = "Group unarchived"
	}
	h.recordActivity(groupID, userID, activityType, message)

	utils.SuccessResponse(c, http.StatusOK, message, nil)
}

func (h *Handler) buildGroupResponse(ctx context.Context, group *models.Group) (*models.GroupResponse, error) {
	rows, err := h.balances.ListActive(group.ID)
	if err != nil {
		return nil, err
	}

	members := make([]models.GroupMemberResponse, 0, len(rows))
	for _, row := range rows {
		user, err := h.users.GetByID(ctx, row.UserID)
		if err != nil {
			return nil, err
		}
		members = append(members, models.GroupMemberResponse{
			UserID:   row.UserID,
			Name:     user.Name,
			Email:    user.Email,
			IsOwner:  row.UserID == group.OwnerID,
			Balance:  row.CurrentBalance,
			JoinedAt: row.CreatedAt,
		})
	}

	return &models.GroupResponse{
		ID:          group.ID,
		OwnerID:     group.OwnerID,
		Name:        group.Name,
		Description: group.Description,
		IsArchived:  group.IsArchived,
		Members:     members,
		CreatedAt:   group.CreatedAt,
	}, nil
}
