package ledger

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"splitledger-backend/database"
	"splitledger-backend/models"
)

// Engine applies financial events to group ledgers. Every write runs in a
// transaction that takes a row lock on the group, so events within one group
// commit strictly one at a time, and every transaction re-checks that the
// group's active balances sum to zero before committing.
type Engine struct {
	db       *gorm.DB
	balances *BalanceStore
	gate     *Gate
	cache    *database.BalanceCache
	log      *slog.Logger
}

func NewEngine(db *gorm.DB, cache *database.BalanceCache, log *slog.Logger) *Engine {
	return &Engine{
		db:       db,
		balances: NewBalanceStore(db),
		gate:     NewGate(db),
		cache:    cache,
		log:      log,
	}
}

// SpendingInput carries the validated parameters for a new spending.
type SpendingInput struct {
	CategoryID  uuid.UUID
	Description string
	Amount      int64
	Strategy    models.SplitStrategy
	Entries     []models.StrategyEntry
	Date        time.Time
}

// PaymentInput carries the validated parameters for a new direct payment.
type PaymentInput struct {
	ReceiverID uuid.UUID
	Amount     int64
}

// lockGroup loads the group inside tx, taking a row lock on Postgres so
// concurrent events for the same group serialize. SQLite allows one writer at
// a time anyway.
func lockGroup(tx *gorm.DB, groupID uuid.UUID) (*models.Group, error) {
	q := tx
	if tx.Dialector.Name() == "postgres" {
		q = q.Clauses(clause.Locking{Strength: "UPDATE"})
	}

	var group models.Group
	if err := q.First(&group, "id = ?", groupID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrGroupNotFound
		}
		return nil, err
	}
	return &group, nil
}

func (e *Engine) verifyZeroSum(tx *gorm.DB, groupID uuid.UUID) error {
	sum, err := e.balances.WithTx(tx).ActiveSum(groupID)
	if err != nil {
		return err
	}
	if sum != 0 {
		imbalanceRollbacks.Inc()
		return fmt.Errorf("active balances of group %s sum to %d after event", groupID, sum)
	}
	return nil
}

func (e *Engine) invalidateCache(ctx context.Context, groupID uuid.UUID) {
	if err := e.cache.Invalidate(ctx, groupID); err != nil {
		e.log.Warn("invalidate balance cache", "group_id", groupID, "error", err)
	}
}

// CreateGroup creates a group owned by ownerID and opens the owner's balance
// row, making the owner the first active member.
func (e *Engine) CreateGroup(ctx context.Context, ownerID uuid.UUID, name, description string) (*models.Group, error) {
	group := &models.Group{
		OwnerID:     ownerID,
		Name:        name,
		Description: description,
	}

	err := e.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(group).Error; err != nil {
			return err
		}
		if _, err := e.balances.WithTx(tx).GetOrCreate(group.ID, ownerID); err != nil {
			return err
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	eventsTotal.WithLabelValues("group_created").Inc()
	return group, nil
}

// AddMember makes userID an active member of the group. The actor must be an
// active member themselves. A user who left earlier is reactivated with their
// stored balance; anyone else starts at zero.
func (e *Engine) AddMember(ctx context.Context, actorID, groupID, userID uuid.UUID) error {
	err := e.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		group, err := lockGroup(tx, groupID)
		if err != nil {
			return err
		}
		if group.IsArchived {
			return ErrGroupArchived
		}
		if err := e.gate.WithTx(tx).RequireActiveMember(groupID, actorID); err != nil {
			return err
		}

		var user models.User
		if err := tx.Select("id").First(&user, "id = ?", userID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrUserNotFound
			}
			return err
		}

		bs := e.balances.WithTx(tx)
		existing, err := bs.Get(groupID, userID)
		switch {
		case err == nil && !existing.HasLeft:
			return ErrAlreadyMember
		case err == nil:
			return bs.ClearLeft(groupID, userID)
		case errors.Is(err, gorm.ErrRecordNotFound):
			_, err = bs.GetOrCreate(groupID, userID)
			return err
		default:
			return err
		}
	})
	if err != nil {
		return err
	}

	eventsTotal.WithLabelValues("member_added").Inc()
	e.invalidateCache(ctx, groupID)
	return nil
}

// RemoveMember ends userID's active membership. A member may remove
// themselves (leave) and the owner may remove anyone else (kick); the owner
// can never leave. Either way the member's balance must be settled to zero,
// and the frozen row keeps it for a later re-join.
func (e *Engine) RemoveMember(ctx context.Context, actorID, groupID, userID uuid.UUID) error {
	err := e.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		group, err := lockGroup(tx, groupID)
		if err != nil {
			return err
		}
		if group.IsArchived {
			return ErrGroupArchived
		}

		if actorID == userID {
			if group.OwnerID == actorID {
				return ErrOwnerCannotLeave
			}
		} else if group.OwnerID != actorID {
			return ErrNotOwner
		}

		bs := e.balances.WithTx(tx)
		balance, err := bs.Get(groupID, userID)
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotAMember
		}
		if err != nil {
			return err
		}
		if balance.HasLeft {
			return ErrNotAMember
		}
		if balance.CurrentBalance != 0 {
			return ErrOutstandingDebt
		}

		return bs.MarkLeft(groupID, userID)
	})
	if err != nil {
		return err
	}

	if actorID == userID {
		eventsTotal.WithLabelValues("member_left").Inc()
	} else {
		eventsTotal.WithLabelValues("member_removed").Inc()
	}
	e.invalidateCache(ctx, groupID)
	return nil
}

// CreateSpending records a spending paid by payerID, splits it across the
// group's active members according to the input strategy and moves every
// affected balance, all in one transaction.
func (e *Engine) CreateSpending(ctx context.Context, payerID, groupID uuid.UUID, in SpendingInput) (*models.Spending, error) {
	spending := &models.Spending{
		GroupID:     groupID,
		CategoryID:  in.CategoryID,
		PayerID:     payerID,
		Description: in.Description,
		Amount:      in.Amount,
		Strategy:    in.Strategy,
		Date:        in.Date,
	}

	err := e.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		group, err := lockGroup(tx, groupID)
		if err != nil {
			return err
		}
		if group.IsArchived {
			return ErrGroupArchived
		}

		gate := e.gate.WithTx(tx)
		if err := gate.RequireActiveMember(groupID, payerID); err != nil {
			return err
		}

		var category models.Category
		if err := tx.First(&category, "id = ?", in.CategoryID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrCategoryNotFound
			}
			return err
		}
		if category.GroupID != groupID {
			return ErrCategoryGroupMismatch
		}

		active, err := gate.ActiveMemberIDs(groupID)
		if err != nil {
			return err
		}

		deltas, err := Evaluate(in.Strategy, in.Amount, payerID, active, in.Entries)
		if err != nil {
			return err
		}

		if err := tx.Create(spending).Error; err != nil {
			return err
		}

		bs := e.balances.WithTx(tx)
		for _, userID := range sortedKeys(deltas) {
			share := models.SpendingShare{
				SpendingID: spending.ID,
				UserID:     userID,
				Delta:      deltas[userID],
			}
			if err := tx.Create(&share).Error; err != nil {
				return err
			}
			spending.Shares = append(spending.Shares, share)

			if err := bs.ApplyDelta(groupID, userID, deltas[userID]); err != nil {
				return err
			}
		}

		return e.verifyZeroSum(tx, groupID)
	})
	if err != nil {
		return nil, err
	}

	eventsTotal.WithLabelValues("spending").Inc()
	e.invalidateCache(ctx, groupID)
	return spending, nil
}

// CreatePayment records a pending direct payment from payerID to the
// receiver. Balances do not move until the receiver confirms.
func (e *Engine) CreatePayment(ctx context.Context, payerID, groupID uuid.UUID, in PaymentInput) (*models.Payment, error) {
	if in.Amount <= 0 {
		return nil, ErrInvalidAmount
	}
	if payerID == in.ReceiverID {
		return nil, ErrSelfPayment
	}

	payment := &models.Payment{
		GroupID:    groupID,
		PayerID:    payerID,
		ReceiverID: in.ReceiverID,
		Amount:     in.Amount,
	}

	err := e.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		group, err := lockGroup(tx, groupID)
		if err != nil {
			return err
		}
		if group.IsArchived {
			return ErrGroupArchived
		}

		gate := e.gate.WithTx(tx)
		if err := gate.RequireActiveMember(groupID, payerID); err != nil {
			return err
		}
		if err := gate.RequireActiveMember(groupID, in.ReceiverID); err != nil {
			return err
		}

		return tx.Create(payment).Error
	})
	if err != nil {
		return nil, err
	}

	eventsTotal.WithLabelValues("payment_recorded").Inc()
	return payment, nil
}

// ConfirmPayment is called by the receiver to acknowledge a pending payment.
// Only then do balances move: the payer is credited and the receiver charged,
// keeping the group's sum at zero.
func (e *Engine) ConfirmPayment(ctx context.Context, receiverID, paymentID uuid.UUID) (*models.Payment, error) {
	var payment models.Payment

	err := e.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&payment, "id = ?", paymentID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrPaymentNotFound
			}
			return err
		}

		group, err := lockGroup(tx, payment.GroupID)
		if err != nil {
			return err
		}

		// Re-read now that the group lock is held: a concurrent confirm may
		// have committed while we waited.
		if err := tx.First(&payment, "id = ?", paymentID).Error; err != nil {
			return err
		}

		if payment.ReceiverID != receiverID {
			return ErrNotPaymentReceiver
		}
		if payment.Confirmed {
			return ErrAlreadyConfirmed
		}
		if group.IsArchived {
			return ErrGroupArchived
		}

		gate := e.gate.WithTx(tx)
		if err := gate.RequireActiveMember(payment.GroupID, payment.PayerID); err != nil {
			return err
		}
		if err := gate.RequireActiveMember(payment.GroupID, payment.ReceiverID); err != nil {
			return err
		}

		bs := e.balances.WithTx(tx)
		if err := bs.ApplyDelta(payment.GroupID, payment.PayerID, payment.Amount); err != nil {
			return err
		}
		if err := bs.ApplyDelta(payment.GroupID, payment.ReceiverID, -payment.Amount); err != nil {
			return err
		}

		now := time.Now()
		payment.Confirmed = true
		payment.ConfirmedAt = &now
		if err := tx.Model(&payment).Updates(map[string]interface{}{
			"confirmed":    true,
			"confirmed_at": now,
		}).Error; err != nil {
			return err
		}

		return e.verifyZeroSum(tx, payment.GroupID)
	})
	if err != nil {
		return nil, err
	}

	eventsTotal.WithLabelValues("payment_confirmed").Inc()
	e.invalidateCache(ctx, payment.GroupID)
	return &payment, nil
}

// GroupBalances returns the group's balance sheet: every member's running
// balance (left members flagged), the greedy settle-up suggestions over
// active members, and the group's total spend. Summaries are cached per group
// and dropped whenever an event commits.
func (e *Engine) GroupBalances(ctx context.Context, userID, groupID uuid.UUID) (*models.GroupBalanceSummary, error) {
	db := e.db.WithContext(ctx)

	var group models.Group
	if err := db.First(&group, "id = ?", groupID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrGroupNotFound
		}
		return nil, err
	}
	if err := e.gate.RequireActiveMember(groupID, userID); err != nil {
		return nil, err
	}

	if cached, err := e.cache.Get(ctx, groupID); err != nil {
		e.log.Warn("read balance cache", "group_id", groupID, "error", err)
	} else if cached != nil {
		return cached, nil
	}

	rows, err := e.balances.ListAll(groupID)
	if err != nil {
		return nil, err
	}

	names, err := e.userNames(db, rows)
	if err != nil {
		return nil, err
	}

	summary := &models.GroupBalanceSummary{
		GroupID:   groupID,
		GroupName: group.Name,
	}

	var active []models.Balance
	for _, row := range rows {
		summary.Balances = append(summary.Balances, models.BalanceEntry{
			UserID:         row.UserID,
			Name:           names[row.UserID],
			CurrentBalance: row.CurrentBalance,
			HasLeft:        row.HasLeft,
		})
		if !row.HasLeft {
			active = append(active, row)
		}
	}
	summary.SuggestedSettlements = suggestSettlements(active, names)

	if err := db.Model(&models.Spending{}).
		Where("group_id = ?", groupID).
		Select("COALESCE(SUM(amount), 0)").Scan(&summary.TotalSpent).Error; err != nil {
		return nil, err
	}

	if err := e.cache.Set(ctx, groupID, summary); err != nil {
		e.log.Warn("write balance cache", "group_id", groupID, "error", err)
	}

	return summary, nil
}

// OverallBalances aggregates the user's active balances across every group
// they belong to, archived groups included.
func (e *Engine) OverallBalances(ctx context.Context, userID uuid.UUID) (*models.OverallBalanceSummary, error) {
	db := e.db.WithContext(ctx)

	rows, err := e.balances.WithTx(db).ListForUser(userID)
	if err != nil {
		return nil, err
	}

	summary := &models.OverallBalanceSummary{Groups: []models.GroupNetBalance{}}
	for _, row := range rows {
		var group models.Group
		if err := db.Select("id, name").First(&group, "id = ?", row.GroupID).Error; err != nil {
			return nil, err
		}

		summary.Groups = append(summary.Groups, models.GroupNetBalance{
			GroupID:   row.GroupID,
			GroupName: group.Name,
			Amount:    row.CurrentBalance,
		})
		if row.CurrentBalance > 0 {
			summary.TotalOwed += row.CurrentBalance
		} else {
			summary.TotalOwing += -row.CurrentBalance
		}
	}

	return summary, nil
}

func (e *Engine) userNames(db *gorm.DB, rows []models.Balance) (map[uuid.UUID]string, error) {
	ids := make([]uuid.UUID, 0, len(rows))
	for _, row := range rows {
		ids = append(ids, row.UserID)
	}
	if len(ids) == 0 {
		return map[uuid.UUID]string{}, nil
	}

	var users []models.User
	if err := db.Select("id, name").Where("id IN ?", ids).Find(&users).Error; err != nil {
		return nil, err
	}

	names := make(map[uuid.UUID]string, len(users))
	for _, u := range users {
		names[u.ID] = u.Name
	}
	return names, nil
}

// suggestSettlements pairs debtors with creditors greedily, largest first,
// so the number of suggested transfers stays small. Active balances sum to
// zero, so the two sides always exhaust together.
func suggestSettlements(active []models.Balance, names map[uuid.UUID]string) []models.SuggestedSettlement {
	type position struct {
		userID uuid.UUID
		amount int64
	}

	var creditors, debtors []position
	for _, b := range active {
		switch {
		case b.CurrentBalance > 0:
			creditors = append(creditors, position{b.UserID, b.CurrentBalance})
		case b.CurrentBalance < 0:
			debtors = append(debtors, position{b.UserID, -b.CurrentBalance})
		}
	}

	byAmountDesc := func(s []position) {
		sort.Slice(s, func(i, j int) bool {
			if s[i].amount != s[j].amount {
				return s[i].amount > s[j].amount
			}
			return s[i].userID.String() < s[j].userID.String()
		})
	}
	byAmountDesc(creditors)
	byAmountDesc(debtors)

	settlements := []models.SuggestedSettlement{}
	i, j := 0, 0
	for i < len(debtors) && j < len(creditors) {
		amount := debtors[i].amount
		if creditors[j].amount < amount {
			amount = creditors[j].amount
		}

		settlements = append(settlements, models.SuggestedSettlement{
			FromID:   debtors[i].userID,
			FromName: names[debtors[i].userID],
			ToID:     creditors[j].userID,
			ToName:   names[creditors[j].userID],
			Amount:   amount,
		})

		debtors[i].amount -= amount
		creditors[j].amount -= amount
		if debtors[i].amount == 0 {
			i++
		}
		if creditors[j].amount == 0 {
			j++
		}
	}

	return settlements
}

func sortedKeys(m map[uuid.UUID]int64) []uuid.UUID {
	keys := make([]uuid.UUID, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		return keys[i].String() < keys[j].String()
	})
	return keys
}
