package handlers

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"splitledger-backend/ledger"
	"splitledger-backend/models"
	"splitledger-backend/services"
	"splitledger-backend/utils"
)

// POST /api/groups/:id/spendings
func (h *Handler) CreateSpending(c *gin.Context) {
	userID := utils.GetCurrentUserID(c)

	groupID, err := utils.ParseUUID(c.Param("id"))
	if err != nil {
		utils.BadRequest(c, "Invalid group ID")
		return
	}

	var req models.CreateSpendingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequest(c, err.Error())
		return
	}

	categoryID, err := utils.ParseUUID(req.CategoryID)
	if err != nil {
		utils.BadRequest(c, "Invalid category ID")
		return
	}

	date := time.Now()
	if req.Date != "" {
		date, err = time.Parse("2006-01-02", req.Date)
		if err != nil {
			utils.BadRequest(c, "Invalid date, expected YYYY-MM-DD")
			return
		}
	}

	ctx := c.Request.Context()
	spending, err := h.engine.CreateSpending(ctx, userID, groupID, ledger.SpendingInput{
		CategoryID:  categoryID,
		Description: req.Description,
		Amount:      req.Amount,
		Strategy:    req.Strategy,
		Entries:     req.Entries,
		Date:        date,
	})
	if err != nil {
		h.respondError(c, err)
		return
	}

	payer, pErr := h.users.GetByID(ctx, userID)
	group, gErr := h.groups.GetByID(ctx, groupID)
	if pErr == nil && gErr == nil {
		h.recordActivity(groupID, userID, models.ActivitySpendingAdded,
			fmt.Sprintf("%s added %q (%s)", payer.Name, spending.Description, services.FormatAmount(spending.Amount)))
		go h.notifier.SpendingAdded(context.Background(), spending, payer.Name, group.Name)
	}

	resp, err := h.buildSpendingResponse(ctx, spending)
	if err != nil {
		h.respondError(c, err)
		return
	}

	utils.SuccessResponse(c, http.StatusCreated, "Spending recorded", resp)
}

// GET /api/groups/:id/spendings
func (h *Handler) ListSpendings(c *gin.Context) {
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

	spendings, err := h.spendings.ListForGroup(c.Request.Context(), groupID, page.Offset(), page.Limit)
	if err != nil {
		h.respondError(c, err)
		return
	}

	resp := make([]models.SpendingResponse, 0, len(spendings))
	for i := range spendings {
		r, err := h.buildSpendingResponse(c.Request.Context(), &spendings[i])
		if err != nil {
			h.respondError(c, err)
			return
		}
		resp = append(resp, *r)
	}

	utils.SuccessResponse(c, http.StatusOK, "", resp)
}

// GET /api/groups/:id/spendings/:spendingId
func (h *Handler) GetSpending(c *gin.Context) {
	userID := utils.GetCurrentUserID(c)

	groupID, err := utils.ParseUUID(c.Param("id"))
	if err != nil {
		utils.BadRequest(c, "Invalid group ID")
		return
	}
	spendingID, err := utils.ParseUUID(c.Param("spendingId"))
	if err != nil {
		utils.BadRequest(c, "Invalid spending ID")
		return
	}

	if err := h.gate.RequireActiveMember(groupID, userID); err != nil {
		h.respondError(c, err)
		return
	}

	spending, err := h.spendings.GetByID(c.Request.Context(), spendingID)
	if err != nil {
		h.respondError(c, err)
		return
	}
	if spending.GroupID != groupID {
		utils.NotFound(c, "Spending not found in this group")
		return
	}

	resp, err := h.buildSpendingResponse(c.Request.Context(), spending)
	if err != nil {
		h.respondError(c, err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "", resp)
}

func (h *Handler) buildSpendingResponse(ctx context.Context, spending *models.Spending) (*models.SpendingResponse, error) {
	category, err := h.categories.GetByID(ctx, spending.CategoryID)
	if err != nil {
		return nil, err
	}
	payer, err := h.users.GetByID(ctx, spending.PayerID)
	if err != nil {
		return nil, err
	}

	shares := make([]models.SpendingShareResponse, 0, len(spending.Shares))
	for _, share := range spending.Shares {
		user, err := h.users.GetByID(ctx, share.UserID)
		if err != nil {
			return nil, err
		}
		shares = append(shares, models.SpendingShareResponse{
			UserID: share.UserID,
			Name:   user.Name,
			Delta:  share.Delta,
		})
	}

	return &models.SpendingResponse{
		ID:           spending.ID,
		GroupID:      spending.GroupID,
		CategoryID:   spending.CategoryID,
		CategoryName: category.Name,
		PayerID:      spending.PayerID,
		PayerName:    payer.Name,
		Description:  spending.Description,
		Amount:       spending.Amount,
		Strategy:     spending.Strategy,
		Date:         spending.Date,
		Shares:       shares,
		CreatedAt:    spending.CreatedAt,
	}, nil
}
