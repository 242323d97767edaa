package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"splitledger-backend/ledger"
	"splitledger-backend/models"
	"splitledger-backend/utils"
)

// POST /api/groups/:id/categories
func (h *Handler) CreateCategory(c *gin.Context) {
	userID := utils.GetCurrentUserID(c)

	groupID, err := utils.ParseUUID(c.Param("id"))
	if err != nil {
		utils.BadRequest(c, "Invalid group ID")
		return
	}

	var req models.CreateCategoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequest(c, err.Error())
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
	if err := h.gate.RequireActiveMember(groupID, userID); err != nil {
		h.respondError(c, err)
		return
	}

	category := models.Category{GroupID: groupID, Name: req.Name}
	if err := h.categories.Create(c.Request.Context(), &category); err != nil {
		h.respondError(c, err)
		return
	}

	utils.SuccessResponse(c, http.StatusCreated, "Category created", category.ToResponse())
}

// GET /api/groups/:id/categories
func (h *Handler) ListCategories(c *gin.Context) {
	userID := utils.GetCurrentUserID(c)

	groupID, err := utils.ParseUUID(c.Param("id"))
	if err != nil {
		utils.BadRequest(c, "Invalid group ID")
		return
	}

	if err := h.gate.RequireActiveMember(groupID, userID); err != nil {
		h.respondError(c, err)
		return
	}

	categories, err := h.categories.ListForGroup(c.Request.Context(), groupID)
	if err != nil {
		h.respondError(c, err)
		return
	}

	resp := make([]models.CategoryResponse, 0, len(categories))
	for i := range categories {
		resp = append(resp, categories[i].ToResponse())
	}

	utils.SuccessResponse(c, http.StatusOK, "", resp)
}

// PUT /api/groups/:id/categories/:categoryId
func (h *Handler) UpdateCategory(c *gin.Context) {
	userID := utils.GetCurrentUserID(c)

	groupID, err := utils.ParseUUID(c.Param("id"))
	if err != nil {
		utils.BadRequest(c, "Invalid group ID")
		return
	}
	categoryID, err := utils.ParseUUID(c.Param("categoryId"))
	if err != nil {
		utils.BadRequest(c, "Invalid category ID")
		return
	}

	var req models.UpdateCategoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequest(c, err.Error())
		return
	}

	if err := h.gate.RequireActiveMember(groupID, userID); err != nil {
		h.respondError(c, err)
		return
	}

	category, err := h.getGroupCategory(c.Request.Context(), groupID, categoryID)
	if err != nil {
		h.respondError(c, err)
		return
	}

	if err := h.categories.Rename(c.Request.Context(), category, req.Name); err != nil {
		h.respondError(c, err)
		return
	}
	category.Name = req.Name

	utils.SuccessResponse(c, http.StatusOK, "Category updated", category.ToResponse())
}

// DELETE /api/groups/:id/categories/:categoryId
func (h *Handler) DeleteCategory(c *gin.Context) {
	userID := utils.GetCurrentUserID(c)

	groupID, err := utils.ParseUUID(c.Param("id"))
	if err != nil {
		utils.BadRequest(c, "Invalid group ID")
		return
	}
	categoryID, err := utils.ParseUUID(c.Param("categoryId"))
	if err != nil {
		utils.BadRequest(c, "Invalid category ID")
		return
	}

	if err := h.gate.RequireActiveMember(groupID, userID); err != nil {
		h.respondError(c, err)
		return
	}

	if _, err := h.getGroupCategory(c.Request.Context(), groupID, categoryID); err != nil {
		h.respondError(c, err)
		return
	}

	if err := h.categories.Delete(c.Request.Context(), categoryID); err != nil {
		h.respondError(c, err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "Category deleted", nil)
}

// getGroupCategory loads a category and checks it belongs to the group.
func (h *Handler) getGroupCategory(ctx context.Context, groupID, categoryID uuid.UUID) (*models.Category, error) {
	category, err := h.categories.GetByID(ctx, categoryID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ledger.ErrCategoryNotFound
	}
	if err != nil {
		return nil, err
	}
	if category.GroupID != groupID {
		return nil, ledger.ErrCategoryGroupMismatch
	}
	return category, nil
}
