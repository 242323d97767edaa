package handlers

import (
	"context"
	"errors"
	"log/slog"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"splitledger-backend/ledger"
	"splitledger-backend/models"
	"splitledger-backend/services"
	"splitledger-backend/store"
	"splitledger-backend/utils"
)

// Handler carries every dependency the HTTP layer needs. All route handlers
// are methods on it.
type Handler struct {
	log      *slog.Logger
	engine   *ledger.Engine
	gate     *ledger.Gate
	balances *ledger.BalanceStore

	users      *store.UserStore
	groups     *store.GroupStore
	categories *store.CategoryStore
	spendings  *store.SpendingStore
	payments   *store.PaymentStore
	budgets    *store.BudgetStore
	activity   *store.ActivityStore

	invites  *services.InviteService
	notifier *services.Notifier
	tokens   *services.TokenManager
}

type Deps struct {
	Log      *slog.Logger
	DB       *gorm.DB
	Engine   *ledger.Engine
	Invites  *services.InviteService
	Notifier *services.Notifier
	Tokens   *services.TokenManager
}

func New(d Deps) *Handler {
	return &Handler{
		log:        d.Log,
		engine:     d.Engine,
		gate:       ledger.NewGate(d.DB),
		balances:   ledger.NewBalanceStore(d.DB),
		users:      store.NewUserStore(d.DB),
		groups:     store.NewGroupStore(d.DB),
		categories: store.NewCategoryStore(d.DB),
		spendings:  store.NewSpendingStore(d.DB),
		payments:   store.NewPaymentStore(d.DB),
		budgets:    store.NewBudgetStore(d.DB),
		activity:   store.NewActivityStore(d.DB),
		invites:    d.Invites,
		notifier:   d.Notifier,
		tokens:     d.Tokens,
	}
}

// respondError maps domain errors to HTTP responses. Anything unmapped is a
// 500 and gets logged with its cause; the client only sees a generic message.
func (h *Handler) respondError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, ledger.ErrGroupNotFound),
		errors.Is(err, ledger.ErrUserNotFound),
		errors.Is(err, ledger.ErrCategoryNotFound),
		errors.Is(err, ledger.ErrCategoryGroupMismatch),
		errors.Is(err, ledger.ErrPaymentNotFound),
		errors.Is(err, services.ErrInviteNotFound),
		errors.Is(err, gorm.ErrRecordNotFound):
		utils.NotFound(c, err.Error())

	case errors.Is(err, ledger.ErrNotAMember),
		errors.Is(err, ledger.ErrNotOwner),
		errors.Is(err, ledger.ErrNotPaymentReceiver),
		errors.Is(err, services.ErrInviteNotForYou):
		utils.Unauthorized(c, err.Error())

	case errors.Is(err, ledger.ErrGroupArchived),
		errors.Is(err, ledger.ErrAlreadyMember),
		errors.Is(err, ledger.ErrOwnerCannotLeave),
		errors.Is(err, ledger.ErrOutstandingDebt),
		errors.Is(err, ledger.ErrAlreadyConfirmed),
		errors.Is(err, store.ErrEmailTaken),
		errors.Is(err, store.ErrCategoryNameTaken),
		errors.Is(err, store.ErrCategoryInUse),
		errors.Is(err, store.ErrBudgetExists),
		errors.Is(err, services.ErrInviteUsed),
		errors.Is(err, services.ErrInviteExpired):
		utils.Conflict(c, err.Error())

	case errors.Is(err, ledger.ErrInvalidAmount),
		errors.Is(err, ledger.ErrInvalidStrategyData),
		errors.Is(err, ledger.ErrSelfPayment):
		utils.BadRequest(c, err.Error())

	default:
		h.log.Error("request failed", "path", c.Request.URL.Path, "error", err)
		utils.InternalError(c, "Something went wrong")
	}
}

// recordActivity appends to the group's audit feed in the background. Feed
// writes never fail a request.
func (h *Handler) recordActivity(groupID, actorID uuid.UUID, typ models.ActivityType, message string) {
	go func() {
		entry := &models.Activity{
			GroupID: groupID,
			ActorID: actorID,
			Type:    typ,
			Message: message,
		}
		if err := h.activity.Create(context.Background(), entry); err != nil {
			h.log.Warn("record activity", "group_id", groupID, "error", err)
		}
	}()
}
