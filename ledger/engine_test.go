package ledger

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"splitledger-backend/database"
	"splitledger-backend/models"
)

func newTestEngine(t *testing.T) (*Engine, *gorm.DB) {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(filepath.Join(t.TempDir(), "ledger.db")), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err, "open test database")
	require.NoError(t, database.Migrate(db), "migrate test database")

	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewEngine(db, database.NewBalanceCache(nil), log), db
}

func createUser(t *testing.T, db *gorm.DB, name string) *models.User {
	t.Helper()
	user := &models.User{
		Name:         name,
		Email:        strings.ToLower(name) + "@example.com",
		PasswordHash: "irrelevant",
	}
	require.NoError(t, db.Create(user).Error)
	return user
}

func createCategory(t *testing.T, db *gorm.DB, groupID uuid.UUID, name string) *models.Category {
	t.Helper()
	category := &models.Category{GroupID: groupID, Name: name}
	require.NoError(t, db.Create(category).Error)
	return category
}

func activeSum(t *testing.T, e *Engine, groupID uuid.UUID) int64 {
	t.Helper()
	sum, err := e.balances.ActiveSum(groupID)
	require.NoError(t, err)
	return sum
}

func balanceOf(t *testing.T, e *Engine, groupID, userID uuid.UUID) *models.Balance {
	t.Helper()
	b, err := e.balances.Get(groupID, userID)
	require.NoError(t, err)
	return b
}

func equalSpending(categoryID uuid.UUID, amount int64) SpendingInput {
	return SpendingInput{
		CategoryID:  categoryID,
		Description: "test spending",
		Amount:      amount,
		Strategy:    models.StrategyEqualParts,
		Date:        time.Now(),
	}
}

func TestCreateGroupOpensOwnerBalance(t *testing.T) {
	e, db := newTestEngine(t)
	ctx := context.Background()
	owner := createUser(t, db, "Owner")

	group, err := e.CreateGroup(ctx, owner.ID, "Trip", "Summer trip")
	require.NoError(t, err)
	assert.Equal(t, owner.ID, group.OwnerID)
	assert.False(t, group.IsArchived)

	b := balanceOf(t, e, group.ID, owner.ID)
	assert.EqualValues(t, 0, b.CurrentBalance)
	assert.False(t, b.HasLeft)
}

func TestSpendingMovesBalances(t *testing.T) {
	e, db := newTestEngine(t)
	ctx := context.Background()

	owner := createUser(t, db, "Owner")
	friend := createUser(t, db, "Friend")
	third := createUser(t, db, "Third")

	group, err := e.CreateGroup(ctx, owner.ID, "Flat", "")
	require.NoError(t, err)
	require.NoError(t, e.AddMember(ctx, owner.ID, group.ID, friend.ID))
	require.NoError(t, e.AddMember(ctx, owner.ID, group.ID, third.ID))

	cat := createCategory(t, db, group.ID, "Groceries")

	spending, err := e.CreateSpending(ctx, owner.ID, group.ID, equalSpending(cat.ID, 3000))
	require.NoError(t, err)

	assert.EqualValues(t, 2000, balanceOf(t, e, group.ID, owner.ID).CurrentBalance)
	assert.EqualValues(t, -1000, balanceOf(t, e, group.ID, friend.ID).CurrentBalance)
	assert.EqualValues(t, -1000, balanceOf(t, e, group.ID, third.ID).CurrentBalance)
	assert.EqualValues(t, 0, activeSum(t, e, group.ID))

	require.Len(t, spending.Shares, 3)
	var shareSum int64
	for _, share := range spending.Shares {
		shareSum += share.Delta
	}
	assert.EqualValues(t, 0, shareSum, "share rows must sum to zero")
}

func TestSpendingCategoryChecks(t *testing.T) {
	e, db := newTestEngine(t)
	ctx := context.Background()

	owner := createUser(t, db, "Owner")
	group, err := e.CreateGroup(ctx, owner.ID, "Flat", "")
	require.NoError(t, err)

	other, err := e.CreateGroup(ctx, owner.ID, "Other", "")
	require.NoError(t, err)
	foreignCat := createCategory(t, db, other.ID, "Rent")

	_, err = e.CreateSpending(ctx, owner.ID, group.ID, equalSpending(foreignCat.ID, 100))
	assert.ErrorIs(t, err, ErrCategoryGroupMismatch)

	_, err = e.CreateSpending(ctx, owner.ID, group.ID, equalSpending(uuid.New(), 100))
	assert.ErrorIs(t, err, ErrCategoryNotFound)
}

func TestSpendingRequiresActiveMembership(t *testing.T) {
	e, db := newTestEngine(t)
	ctx := context.Background()

	owner := createUser(t, db, "Owner")
	outsider := createUser(t, db, "Outsider")

	group, err := e.CreateGroup(ctx, owner.ID, "Flat", "")
	require.NoError(t, err)
	cat := createCategory(t, db, group.ID, "Groceries")

	_, err = e.CreateSpending(ctx, outsider.ID, group.ID, equalSpending(cat.ID, 100))
	assert.ErrorIs(t, err, ErrNotAMember)

	// Strategy data naming an outsider is rejected too.
	_, err = e.CreateSpending(ctx, owner.ID, group.ID, SpendingInput{
		CategoryID:  cat.ID,
		Description: "bad entries",
		Amount:      100,
		Strategy:    models.StrategyCustom,
		Entries:     []models.StrategyEntry{{UserID: outsider.ID, Value: 100}},
		Date:        time.Now(),
	})
	assert.ErrorIs(t, err, ErrInvalidStrategyData)
}

func TestArchivedGroupIsReadOnly(t *testing.T) {
	e, db := newTestEngine(t)
	ctx := context.Background()

	owner := createUser(t, db, "Owner")
	friend := createUser(t, db, "Friend")

	group, err := e.CreateGroup(ctx, owner.ID, "Flat", "")
	require.NoError(t, err)
	require.NoError(t, e.AddMember(ctx, owner.ID, group.ID, friend.ID))
	cat := createCategory(t, db, group.ID, "Groceries")

	payment, err := e.CreatePayment(ctx, friend.ID, group.ID, PaymentInput{ReceiverID: owner.ID, Amount: 100})
	require.NoError(t, err)

	require.NoError(t, db.Model(&models.Group{}).Where("id = ?", group.ID).
		Update("is_archived", true).Error)

	_, err = e.CreateSpending(ctx, owner.ID, group.ID, equalSpending(cat.ID, 100))
	assert.ErrorIs(t, err, ErrGroupArchived)

	_, err = e.CreatePayment(ctx, owner.ID, group.ID, PaymentInput{ReceiverID: friend.ID, Amount: 100})
	assert.ErrorIs(t, err, ErrGroupArchived)

	_, err = e.ConfirmPayment(ctx, owner.ID, payment.ID)
	assert.ErrorIs(t, err, ErrGroupArchived)

	third := createUser(t, db, "Third")
	assert.ErrorIs(t, e.AddMember(ctx, owner.ID, group.ID, third.ID), ErrGroupArchived)
	assert.ErrorIs(t, e.RemoveMember(ctx, friend.ID, group.ID, friend.ID), ErrGroupArchived)

	// Balances stay frozen and readable.
	summary, err := e.GroupBalances(ctx, owner.ID, group.ID)
	require.NoError(t, err)
	assert.Len(t, summary.Balances, 2)
}

func TestPaymentLifecycle(t *testing.T) {
	e, db := newTestEngine(t)
	ctx := context.Background()

	owner := createUser(t, db, "Owner")
	friend := createUser(t, db, "Friend")

	group, err := e.CreateGroup(ctx, owner.ID, "Flat", "")
	require.NoError(t, err)
	require.NoError(t, e.AddMember(ctx, owner.ID, group.ID, friend.ID))
	cat := createCategory(t, db, group.ID, "Groceries")

	_, err = e.CreateSpending(ctx, owner.ID, group.ID, equalSpending(cat.ID, 1000))
	require.NoError(t, err)
	require.EqualValues(t, -500, balanceOf(t, e, group.ID, friend.ID).CurrentBalance)

	payment, err := e.CreatePayment(ctx, friend.ID, group.ID, PaymentInput{ReceiverID: owner.ID, Amount: 500})
	require.NoError(t, err)
	assert.False(t, payment.Confirmed)

	// Recording alone moves nothing.
	assert.EqualValues(t, -500, balanceOf(t, e, group.ID, friend.ID).CurrentBalance)

	// Only the receiver may confirm.
	_, err = e.ConfirmPayment(ctx, friend.ID, payment.ID)
	assert.ErrorIs(t, err, ErrNotPaymentReceiver)

	confirmed, err := e.ConfirmPayment(ctx, owner.ID, payment.ID)
	require.NoError(t, err)
	assert.True(t, confirmed.Confirmed)
	require.NotNil(t, confirmed.ConfirmedAt)

	assert.EqualValues(t, 0, balanceOf(t, e, group.ID, friend.ID).CurrentBalance)
	assert.EqualValues(t, 0, balanceOf(t, e, group.ID, owner.ID).CurrentBalance)
	assert.EqualValues(t, 0, activeSum(t, e, group.ID))

	_, err = e.ConfirmPayment(ctx, owner.ID, payment.ID)
	assert.ErrorIs(t, err, ErrAlreadyConfirmed)
}

func TestPaymentValidation(t *testing.T) {
	e, db := newTestEngine(t)
	ctx := context.Background()

	owner := createUser(t, db, "Owner")
	friend := createUser(t, db, "Friend")
	outsider := createUser(t, db, "Outsider")

	group, err := e.CreateGroup(ctx, owner.ID, "Flat", "")
	require.NoError(t, err)
	require.NoError(t, e.AddMember(ctx, owner.ID, group.ID, friend.ID))

	_, err = e.CreatePayment(ctx, owner.ID, group.ID, PaymentInput{ReceiverID: owner.ID, Amount: 100})
	assert.ErrorIs(t, err, ErrSelfPayment)

	_, err = e.CreatePayment(ctx, owner.ID, group.ID, PaymentInput{ReceiverID: friend.ID, Amount: 0})
	assert.ErrorIs(t, err, ErrInvalidAmount)

	_, err = e.CreatePayment(ctx, owner.ID, group.ID, PaymentInput{ReceiverID: outsider.ID, Amount: 100})
	assert.ErrorIs(t, err, ErrNotAMember)

	_, err = e.ConfirmPayment(ctx, owner.ID, uuid.New())
	assert.ErrorIs(t, err, ErrPaymentNotFound)
}

func TestLeaveRequiresSettledBalance(t *testing.T) {
	e, db := newTestEngine(t)
	ctx := context.Background()

	owner := createUser(t, db, "Owner")
	friend := createUser(t, db, "Friend")

	group, err := e.CreateGroup(ctx, owner.ID, "Flat", "")
	require.NoError(t, err)
	require.NoError(t, e.AddMember(ctx, owner.ID, group.ID, friend.ID))
	cat := createCategory(t, db, group.ID, "Groceries")

	_, err = e.CreateSpending(ctx, owner.ID, group.ID, equalSpending(cat.ID, 1000))
	require.NoError(t, err)

	err = e.RemoveMember(ctx, friend.ID, group.ID, friend.ID)
	assert.ErrorIs(t, err, ErrOutstandingDebt)

	payment, err := e.CreatePayment(ctx, friend.ID, group.ID, PaymentInput{ReceiverID: owner.ID, Amount: 500})
	require.NoError(t, err)
	_, err = e.ConfirmPayment(ctx, owner.ID, payment.ID)
	require.NoError(t, err)

	require.NoError(t, e.RemoveMember(ctx, friend.ID, group.ID, friend.ID))
	assert.True(t, balanceOf(t, e, group.ID, friend.ID).HasLeft)

	// Later spendings no longer involve the departed member.
	_, err = e.CreateSpending(ctx, owner.ID, group.ID, equalSpending(cat.ID, 900))
	require.NoError(t, err)
	assert.EqualValues(t, 0, balanceOf(t, e, group.ID, friend.ID).CurrentBalance)
	assert.EqualValues(t, 0, activeSum(t, e, group.ID))
}

func TestOwnerCannotLeave(t *testing.T) {
	e, db := newTestEngine(t)
	ctx := context.Background()

	owner := createUser(t, db, "Owner")
	group, err := e.CreateGroup(ctx, owner.ID, "Flat", "")
	require.NoError(t, err)

	err = e.RemoveMember(ctx, owner.ID, group.ID, owner.ID)
	assert.ErrorIs(t, err, ErrOwnerCannotLeave)
}

func TestKickIsOwnerOnly(t *testing.T) {
	e, db := newTestEngine(t)
	ctx := context.Background()

	owner := createUser(t, db, "Owner")
	friend := createUser(t, db, "Friend")
	third := createUser(t, db, "Third")

	group, err := e.CreateGroup(ctx, owner.ID, "Flat", "")
	require.NoError(t, err)
	require.NoError(t, e.AddMember(ctx, owner.ID, group.ID, friend.ID))
	require.NoError(t, e.AddMember(ctx, owner.ID, group.ID, third.ID))

	assert.ErrorIs(t, e.RemoveMember(ctx, friend.ID, group.ID, third.ID), ErrNotOwner)

	require.NoError(t, e.RemoveMember(ctx, owner.ID, group.ID, third.ID))
	assert.True(t, balanceOf(t, e, group.ID, third.ID).HasLeft)

	// Kicking someone who is not an active member fails.
	assert.ErrorIs(t, e.RemoveMember(ctx, owner.ID, group.ID, third.ID), ErrNotAMember)
}

func TestRejoinReusesBalanceRow(t *testing.T) {
	e, db := newTestEngine(t)
	ctx := context.Background()

	owner := createUser(t, db, "Owner")
	friend := createUser(t, db, "Friend")

	group, err := e.CreateGroup(ctx, owner.ID, "Flat", "")
	require.NoError(t, err)
	require.NoError(t, e.AddMember(ctx, owner.ID, group.ID, friend.ID))

	require.NoError(t, e.RemoveMember(ctx, friend.ID, group.ID, friend.ID))
	require.NoError(t, e.AddMember(ctx, owner.ID, group.ID, friend.ID))

	b := balanceOf(t, e, group.ID, friend.ID)
	assert.False(t, b.HasLeft)
	assert.EqualValues(t, 0, b.CurrentBalance)

	var count int64
	require.NoError(t, db.Model(&models.Balance{}).
		Where("group_id = ? AND user_id = ?", group.ID, friend.ID).Count(&count).Error)
	assert.EqualValues(t, 1, count, "rejoin must reuse the frozen row")

	assert.ErrorIs(t, e.AddMember(ctx, owner.ID, group.ID, friend.ID), ErrAlreadyMember)
}

func TestAddMemberChecks(t *testing.T) {
	e, db := newTestEngine(t)
	ctx := context.Background()

	owner := createUser(t, db, "Owner")
	friend := createUser(t, db, "Friend")
	outsider := createUser(t, db, "Outsider")

	group, err := e.CreateGroup(ctx, owner.ID, "Flat", "")
	require.NoError(t, err)

	assert.ErrorIs(t, e.AddMember(ctx, owner.ID, group.ID, uuid.New()), ErrUserNotFound)
	assert.ErrorIs(t, e.AddMember(ctx, outsider.ID, group.ID, friend.ID), ErrNotAMember)
	assert.ErrorIs(t, e.AddMember(ctx, owner.ID, uuid.New(), friend.ID), ErrGroupNotFound)
}

func TestGroupBalancesSummary(t *testing.T) {
	e, db := newTestEngine(t)
	ctx := context.Background()

	owner := createUser(t, db, "Owner")
	friend := createUser(t, db, "Friend")
	third := createUser(t, db, "Third")
	outsider := createUser(t, db, "Outsider")

	group, err := e.CreateGroup(ctx, owner.ID, "Flat", "")
	require.NoError(t, err)
	require.NoError(t, e.AddMember(ctx, owner.ID, group.ID, friend.ID))
	require.NoError(t, e.AddMember(ctx, owner.ID, group.ID, third.ID))
	cat := createCategory(t, db, group.ID, "Groceries")

	_, err = e.CreateSpending(ctx, owner.ID, group.ID, equalSpending(cat.ID, 3000))
	require.NoError(t, err)
	_, err = e.CreateSpending(ctx, friend.ID, group.ID, equalSpending(cat.ID, 600))
	require.NoError(t, err)

	summary, err := e.GroupBalances(ctx, owner.ID, group.ID)
	require.NoError(t, err)

	assert.Equal(t, group.ID, summary.GroupID)
	assert.Equal(t, "Flat", summary.GroupName)
	assert.Len(t, summary.Balances, 3)
	assert.EqualValues(t, 3600, summary.TotalSpent)

	byUser := make(map[uuid.UUID]models.BalanceEntry)
	var sum int64
	for _, entry := range summary.Balances {
		byUser[entry.UserID] = entry
		sum += entry.CurrentBalance
	}
	assert.EqualValues(t, 0, sum)
	assert.EqualValues(t, 2000, byUser[owner.ID].CurrentBalance)
	assert.EqualValues(t, -800, byUser[friend.ID].CurrentBalance)
	assert.EqualValues(t, -1200, byUser[third.ID].CurrentBalance)
	assert.Equal(t, "Owner", byUser[owner.ID].Name)

	require.NotEmpty(t, summary.SuggestedSettlements)
	var moved int64
	for _, s := range summary.SuggestedSettlements {
		assert.Equal(t, owner.ID, s.ToID, "owner is the only creditor")
		moved += s.Amount
	}
	assert.EqualValues(t, 2000, moved)

	_, err = e.GroupBalances(ctx, outsider.ID, group.ID)
	assert.ErrorIs(t, err, ErrNotAMember)

	_, err = e.GroupBalances(ctx, owner.ID, uuid.New())
	assert.ErrorIs(t, err, ErrGroupNotFound)
}

func TestOverallBalances(t *testing.T) {
	e, db := newTestEngine(t)
	ctx := context.Background()

	owner := createUser(t, db, "Owner")
	friend := createUser(t, db, "Friend")

	first, err := e.CreateGroup(ctx, owner.ID, "Flat", "")
	require.NoError(t, err)
	require.NoError(t, e.AddMember(ctx, owner.ID, first.ID, friend.ID))
	catA := createCategory(t, db, first.ID, "Rent")

	second, err := e.CreateGroup(ctx, friend.ID, "Trip", "")
	require.NoError(t, err)
	require.NoError(t, e.AddMember(ctx, friend.ID, second.ID, owner.ID))
	catB := createCategory(t, db, second.ID, "Fuel")

	_, err = e.CreateSpending(ctx, owner.ID, first.ID, equalSpending(catA.ID, 1000))
	require.NoError(t, err)
	_, err = e.CreateSpending(ctx, friend.ID, second.ID, equalSpending(catB.ID, 300))
	require.NoError(t, err)

	summary, err := e.OverallBalances(ctx, owner.ID)
	require.NoError(t, err)

	require.Len(t, summary.Groups, 2)
	assert.EqualValues(t, 500, summary.TotalOwed)
	assert.EqualValues(t, 150, summary.TotalOwing)
}

func TestZeroSumHoldsAcrossEventSequence(t *testing.T) {
	e, db := newTestEngine(t)
	ctx := context.Background()

	owner := createUser(t, db, "Owner")
	friend := createUser(t, db, "Friend")
	third := createUser(t, db, "Third")

	group, err := e.CreateGroup(ctx, owner.ID, "Flat", "")
	require.NoError(t, err)
	require.NoError(t, e.AddMember(ctx, owner.ID, group.ID, friend.ID))
	require.NoError(t, e.AddMember(ctx, owner.ID, group.ID, third.ID))
	cat := createCategory(t, db, group.ID, "Misc")

	amounts := []int64{997, 1001, 503, 250, 7919}
	for i, amount := range amounts {
		payer := []uuid.UUID{owner.ID, friend.ID, third.ID}[i%3]
		_, err := e.CreateSpending(ctx, payer, group.ID, SpendingInput{
			CategoryID:  cat.ID,
			Description: fmt.Sprintf("spending %d", i),
			Amount:      amount,
			Strategy:    models.StrategyEqualParts,
			Date:        time.Now(),
		})
		require.NoError(t, err)
		assert.EqualValues(t, 0, activeSum(t, e, group.ID), "after spending %d", i)
	}

	payment, err := e.CreatePayment(ctx, friend.ID, group.ID, PaymentInput{ReceiverID: owner.ID, Amount: 123})
	require.NoError(t, err)
	_, err = e.ConfirmPayment(ctx, owner.ID, payment.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 0, activeSum(t, e, group.ID))
}
