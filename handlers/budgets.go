package handlers

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"splitledger-backend/ledger"
	"splitledger-backend/models"
	"splitledger-backend/utils"
)

// POST /api/groups/:id/budgets
func (h *Handler) CreateBudget(c *gin.Context) {
	userID := utils.GetCurrentUserID(c)

	groupID, err := utils.ParseUUID(c.Param("id"))
	if err != nil {
		utils.BadRequest(c, "Invalid group ID")
		return
	}

	var req models.CreateBudgetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequest(c, err.Error())
		return
	}
	if req.Amount <= 0 {
		h.respondError(c, ledger.ErrInvalidAmount)
		return
	}

	categoryID, err := utils.ParseUUID(req.CategoryID)
	if err != nil {
		utils.BadRequest(c, "Invalid category ID")
		return
	}

	ctx := c.Request.Context()
	if err := h.gate.RequireActiveMember(groupID, userID); err != nil {
		h.respondError(c, err)
		return
	}
	if _, err := h.getGroupCategory(ctx, groupID, categoryID); err != nil {
		h.respondError(c, err)
		return
	}

	budget := models.Budget{
		GroupID:    groupID,
		CategoryID: categoryID,
		Year:       req.Year,
		Month:      req.Month,
		Amount:     req.Amount,
	}
	if err := h.budgets.Create(ctx, &budget); err != nil {
		h.respondError(c, err)
		return
	}

	resp, err := h.buildBudgetResponse(ctx, &budget)
	if err != nil {
		h.respondError(c, err)
		return
	}

	utils.SuccessResponse(c, http.StatusCreated, "Budget created", resp)
}

// GET /api/groups/:id/budgets?year=&month=
func (h *Handler) ListBudgets(c *gin.Context) {
	userID := utils.GetCurrentUserID(c)

	groupID, err := utils.ParseUUID(c.Param("id"))
	if err != nil {
		utils.BadRequest(c, "Invalid group ID")
		return
	}

	now := time.Now()
	year, err := strconv.Atoi(c.DefaultQuery("year", strconv.Itoa(now.Year())))
	if err != nil {
		utils.BadRequest(c, "Invalid year")
		return
	}
	month, err := strconv.Atoi(c.DefaultQuery("month", strconv.Itoa(int(now.Month()))))
	if err != nil || month < 1 || month > 12 {
		utils.BadRequest(c, "Invalid month")
		return
	}

	if err := h.gate.RequireActiveMember(groupID, userID); err != nil {
		h.respondError(c, err)
		return
	}

	budgets, err := h.budgets.ListForGroupMonth(c.Request.Context(), groupID, year, month)
	if err != nil {
		h.respondError(c, err)
		return
	}

	resp := make([]models.BudgetResponse, 0, len(budgets))
	for i := range budgets {
		r, err := h.buildBudgetResponse(c.Request.Context(), &budgets[i])
		if err != nil {
			h.respondError(c, err)
			return
		}
		resp = append(resp, *r)
	}

	utils.SuccessResponse(c, http.StatusOK, "", resp)
}

// PUT /api/groups/:id/budgets/:budgetId
func (h *Handler) UpdateBudget(c *gin.Context) {
	userID := utils.GetCurrentUserID(c)

	groupID, err := utils.ParseUUID(c.Param("id"))
	if err != nil {
		utils.BadRequest(c, "Invalid group ID")
		return
	}
	budgetID, err := utils.ParseUUID(c.Param("budgetId"))
	if err != nil {
		utils.BadRequest(c, "Invalid budget ID")
		return
	}

	var req models.UpdateBudgetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequest(c, err.Error())
		return
	}
	if req.Amount <= 0 {
		h.respondError(c, ledger.ErrInvalidAmount)
		return
	}

	ctx := c.Request.Context()
	if err := h.gate.RequireActiveMember(groupID, userID); err != nil {
		h.respondError(c, err)
		return
	}

	budget, err := h.getGroupBudget(ctx, groupID, budgetID)
	if err != nil {
		h.respondError(c, err)
		return
	}

	if err := h.budgets.UpdateAmount(ctx, budgetID, req.Amount); err != nil {
		h.respondError(c, err)
		return
	}
	budget.Amount = req.Amount

	resp, err := h.buildBudgetResponse(ctx, budget)
	if err != nil {
		h.respondError(c, err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "Budget updated", resp)
}

// DELETE /api/groups/:id/budgets/:budgetId
func (h *Handler) DeleteBudget(c *gin.Context) {
	userID := utils.GetCurrentUserID(c)

	groupID, err := utils.ParseUUID(c.Param("id"))
	if err != nil {
		utils.BadRequest(c, "Invalid group ID")
		return
	}
	budgetID, err := utils.ParseUUID(c.Param("budgetId"))
	if err != nil {
		utils.BadRequest(c, "Invalid budget ID")
		return
	}

	ctx := c.Request.Context()
	if err := h.gate.RequireActiveMember(groupID, userID); err != nil {
		h.respondError(c, err)
		return
	}
	if _, err := h.getGroupBudget(ctx, groupID, budgetID); err != nil {
		h.respondError(c, err)
		return
	}

	if err := h.budgets.Delete(ctx, budgetID); err != nil {
		h.respondError(c, err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "Budget deleted", nil)
}

func (h *Handler) getGroupBudget(ctx context.Context, groupID, budgetID uuid.UUID) (*models.Budget, error) {
	budget, err := h.budgets.GetByID(ctx, budgetID)
	if err != nil {
		return nil, err
	}
	if budget.GroupID != groupID {
		return nil, gorm.ErrRecordNotFound
	}
	return budget, nil
}

func (h *Handler) buildBudgetResponse(ctx context.Context, budget *models.Budget) (*models.BudgetResponse, error) {
	category, err := h.categories.GetByID(ctx, budget.CategoryID)
	if err != nil {
		return nil, err
	}

	spent, err := h.spendings.SumForCategoryMonth(ctx, budget.CategoryID, budget.Year, budget.Month)
	if err != nil {
		return nil, err
	}

	return &models.BudgetResponse{
		ID:           budget.ID,
		GroupID:      budget.GroupID,
		CategoryID:   budget.CategoryID,
		CategoryName: category.Name,
		Year:         budget.Year,
		Month:        budget.Month,
		Amount:       budget.Amount,
		Spent:        spent,
		Remaining:    budget.Amount - spent,
		CreatedAt:    budget.CreatedAt,
	}, nil
}
