package handlers

import (
	"context"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"splitledger-backend/ledger"
	"splitledger-backend/models"
	"splitledger-backend/services"
	"splitledger-backend/utils"
)

// POST /api/groups/:id/payments
func (h *Handler) CreatePayment(c *gin.Context) {
	userID := utils.GetCurrentUserID(c)

	groupID, err := utils.ParseUUID(c.Param("id"))
	if err != nil {
		utils.BadRequest(c, "Invalid group ID")
		return
	}

	var req models.CreatePaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequest(c, err.Error())
		return
	}

	receiverID, err := utils.ParseUUID(req.ReceiverID)
	if err != nil {
		utils.BadRequest(c, "Invalid receiver ID")
		return
	}

	ctx := c.Request.Context()
	payment, err := h.engine.CreatePayment(ctx, userID, groupID, ledger.PaymentInput{
		ReceiverID: receiverID,
		Amount:     req.Amount,
	})
	if err != nil {
		h.respondError(c, err)
		return
	}

	payer, pErr := h.users.GetByID(ctx, userID)
	group, gErr := h.groups.GetByID(ctx, groupID)
	if pErr == nil && gErr == nil {
		h.recordActivity(groupID, userID, models.ActivityPaymentRecorded,
			fmt.Sprintf("%s recorded a payment of %s", payer.Name, services.FormatAmount(payment.Amount)))
		go h.notifier.PaymentRecorded(context.Background(), payment, payer.Name, group.Name)
	}

	resp, err := h.buildPaymentResponse(ctx, payment)
	if err != nil {
		h.respondError(c, err)
		return
	}

	utils.SuccessResponse(c, http.StatusCreated, "Payment recorded, awaiting confirmation", resp)
}

// GET /api/groups/:id/payments
func (h *Handler) ListPayments(c *gin.Context) {
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

	payments, err := h.payments.ListForGroup(c.Request.Context(), groupID, page.Offset(), page.Limit)
	if err != nil {
		h.respondError(c, err)
		return
	}

	resp := make([]models.PaymentResponse, 0, len(payments))
	for i := range payments {
		r, err := h.buildPaymentResponse(c.Request.Context(), &payments[i])
		if err != nil {
			h.respondError(c, err)
			return
		}
		resp = append(resp, *r)
	}

	utils.SuccessResponse(c, http.StatusOK, "", resp)
}

// POST /api/payments/:paymentId/confirm
func (h *Handler) ConfirmPayment(c *gin.Context) {
	userID := utils.GetCurrentUserID(c)

	paymentID, err := utils.ParseUUID(c.Param("paymentId"))
	if err != nil {
		utils.BadRequest(c, "Invalid payment ID")
		return
	}

	ctx := c.Request.Context()
	payment, err := h.engine.ConfirmPayment(ctx, userID, paymentID)
	if err != nil {
		h.respondError(c, err)
		return
	}

	receiver, rErr := h.users.GetByID(ctx, userID)
	group, gErr := h.groups.GetByID(ctx, payment.GroupID)
	if rErr == nil && gErr == nil {
		h.recordActivity(payment.GroupID, userID, models.ActivityPaymentConfirmed,
			fmt.Sprintf("%s confirmed a payment of %s", receiver.Name, services.FormatAmount(payment.Amount)))
		go h.notifier.PaymentConfirmed(context.Background(), payment, receiver.Name, group.Name)
	}

	resp, err := h.buildPaymentResponse(ctx, payment)
	if err != nil {
		h.respondError(c, err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "Payment confirmed", resp)
}

// GET /api/payments/pending
func (h *Handler) ListPendingConfirmations(c *gin.Context) {
	userID := utils.GetCurrentUserID(c)

	payments, err := h.payments.ListPendingForReceiver(c.Request.Context(), userID)
	if err != nil {
		h.respondError(c, err)
		return
	}

	resp := make([]models.PaymentResponse, 0, len(payments))
	for i := range payments {
		r, err := h.buildPaymentResponse(c.Request.Context(), &payments[i])
		if err != nil {
			h.respondError(c, err)
			return
		}
		resp = append(resp, *r)
	}

	utils.SuccessResponse(c, http.StatusOK, "", resp)
}

// POST /api/groups/:id/remind
func (h *Handler) RemindDebtor(c *gin.Context) {
	userID := utils.GetCurrentUserID(c)

	groupID, err := utils.ParseUUID(c.Param("id"))
	if err != nil {
		utils.BadRequest(c, "Invalid group ID")
		return
	}

	var req models.RemindDebtorRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequest(c, err.Error())
		return
	}

	debtorID, err := utils.ParseUUID(req.UserID)
	if err != nil {
		utils.BadRequest(c, "Invalid user ID")
		return
	}

	ctx := c.Request.Context()
	if err := h.gate.RequireActiveMember(groupID, userID); err != nil {
		h.respondError(c, err)
		return
	}
	if err := h.gate.RequireActiveMember(groupID, debtorID); err != nil {
		h.respondError(c, err)
		return
	}

	balance, err := h.balances.Get(groupID, debtorID)
	if err != nil {
		h.respondError(c, err)
		return
	}
	if balance.CurrentBalance >= 0 {
		utils.BadRequest(c, "That member does not owe anything")
		return
	}

	debtor, err := h.users.GetByID(ctx, debtorID)
	if err != nil {
		h.respondError(c, err)
		return
	}
	sender, err := h.users.GetByID(ctx, userID)
	if err != nil {
		h.respondError(c, err)
		return
	}
	group, err := h.groups.GetByID(ctx, groupID)
	if err != nil {
		h.respondError(c, err)
		return
	}

	message := req.Message
	if message == "" {
		message = "Please settle up when you get a chance."
	}

	go h.notifier.DebtReminder(context.Background(), debtor, sender.Name, group.Name, -balance.CurrentBalance, message)

	utils.SuccessResponse(c, http.StatusOK, "Reminder sent", nil)
}

func (h *Handler) buildPaymentResponse(ctx context.Context, payment *models.Payment) (*models.PaymentResponse, error) {
	payer, err := h.users.GetByID(ctx, payment.PayerID)
	if err != nil {
		return nil, err
	}
	receiver, err := h.users.GetByID(ctx, payment.ReceiverID)
	if err != nil {
		return nil, err
	}

	return &models.PaymentResponse{
		ID:           payment.ID,
		GroupID:      payment.GroupID,
		PayerID:      payment.PayerID,
		PayerName:    payer.Name,
		ReceiverID:   payment.ReceiverID,
		ReceiverName: receiver.Name,
		Amount:       payment.Amount,
		Confirmed:    payment.Confirmed,
		ConfirmedAt:  payment.ConfirmedAt,
		CreatedAt:    payment.CreatedAt,
	}, nil
}
