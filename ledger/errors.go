package ledger

import "errors"

var (
	ErrGroupNotFound    = errors.New("group not found")
	ErrGroupArchived    = errors.New("group is archived")
	ErrUserNotFound     = errors.New("user not found")
	ErrNotAMember       = errors.New("user is not an active member of the group")
	ErrAlreadyMember    = errors.New("user is already an active member of the group")
	ErrNotOwner         = errors.New("only the group owner may do this")
	ErrOwnerCannotLeave = errors.New("the group owner cannot leave the group")
	ErrOutstandingDebt  = errors.New("balance must be settled to zero first")

	ErrCategoryNotFound      = errors.New("category not found")
	ErrCategoryGroupMismatch = errors.New("category belongs to a different group")

	ErrInvalidAmount       = errors.New("amount must be positive")
	ErrInvalidStrategyData = errors.New("invalid strategy data")

	ErrPaymentNotFound    = errors.New("payment not found")
	ErrSelfPayment        = errors.New("payer and receiver must differ")
	ErrAlreadyConfirmed   = errors.New("payment is already confirmed")
	ErrNotPaymentReceiver = errors.New("only the payment receiver may confirm it")
)
