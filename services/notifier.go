package services

import (
	"context"
	"fmt"
	"log/slog"

	firebase "firebase.google.com/go/v4"
	"firebase.google.com/go/v4/messaging"
	"google.golang.org/api/option"

	"splitledger-backend/models"
	"splitledger-backend/store"
)

// Notifier pushes event notifications to members' devices over FCM and sends
// the emails that accompany some events. Handlers fire its methods in
// goroutines after the underlying change commits: a failed notification is
// logged, never surfaced.
type Notifier struct {
	fcm    *messaging.Client
	mailer Mailer
	users  *store.UserStore
	log    *slog.Logger
}

// NewNotifier builds the notifier. With no credentials file, push delivery is
// disabled and only the email side stays active.
func NewNotifier(ctx context.Context, credentialsFile string, mailer Mailer, users *store.UserStore, log *slog.Logger) (*Notifier, error) {
	n := &Notifier{mailer: mailer, users: users, log: log}
	if credentialsFile == "" {
		log.Info("firebase credentials not set, push notifications disabled")
		return n, nil
	}

	app, err := firebase.NewApp(ctx, nil, option.WithCredentialsFile(credentialsFile))
	if err != nil {
		return nil, fmt.Errorf("init firebase app: %w", err)
	}
	client, err := app.Messaging(ctx)
	if err != nil {
		return nil, fmt.Errorf("init fcm client: %w", err)
	}

	n.fcm = client
	return n, nil
}

func (n *Notifier) push(ctx context.Context, token, title, body string, data map[string]string) {
	if n.fcm == nil || token == "" {
		return
	}

	msg := &messaging.Message{
		Token:        token,
		Notification: &messaging.Notification{Title: title, Body: body},
		Data:         data,
	}
	if _, err := n.fcm.Send(ctx, msg); err != nil {
		n.log.Warn("send push notification", "error", err)
	}
}

// SpendingAdded notifies every member the spending charged, skipping the
// payer.
func (n *Notifier) SpendingAdded(ctx context.Context, spending *models.Spending, payerName, groupName string) {
	for _, share := range spending.Shares {
		if share.UserID == spending.PayerID || share.Delta >= 0 {
			continue
		}

		user, err := n.users.GetByID(ctx, share.UserID)
		if err != nil {
			continue
		}

		title := fmt.Sprintf("%s added a spending", payerName)
		body := fmt.Sprintf("You owe %s for %q in %s", FormatAmount(-share.Delta), spending.Description, groupName)
		n.push(ctx, user.FCMToken, title, body, map[string]string{
			"type":        "spending_added",
			"spending_id": spending.ID.String(),
			"group_id":    spending.GroupID.String(),
		})
	}
}

// PaymentRecorded tells the receiver a payment is waiting for confirmation.
func (n *Notifier) PaymentRecorded(ctx context.Context, payment *models.Payment, payerName, groupName string) {
	receiver, err := n.users.GetByID(ctx, payment.ReceiverID)
	if err != nil {
		return
	}

	title := fmt.Sprintf("%s recorded a payment to you", payerName)
	body := fmt.Sprintf("%s says they paid you %s in %s. Confirm it to update balances.", payerName, FormatAmount(payment.Amount), groupName)
	n.push(ctx, receiver.FCMToken, title, body, map[string]string{
		"type":       "payment_recorded",
		"payment_id": payment.ID.String(),
		"group_id":   payment.GroupID.String(),
	})
}

// PaymentConfirmed tells the payer their payment was acknowledged.
func (n *Notifier) PaymentConfirmed(ctx context.Context, payment *models.Payment, receiverName, groupName string) {
	payer, err := n.users.GetByID(ctx, payment.PayerID)
	if err != nil {
		return
	}

	title := fmt.Sprintf("%s confirmed your payment", receiverName)
	body := fmt.Sprintf("Your payment of %s in %s is confirmed.", FormatAmount(payment.Amount), groupName)
	n.push(ctx, payer.FCMToken, title, body, map[string]string{
		"type":       "payment_confirmed",
		"payment_id": payment.ID.String(),
		"group_id":   payment.GroupID.String(),
	})
}

// MemberAdded greets the new member with a push and an email.
func (n *Notifier) MemberAdded(ctx context.Context, group *models.Group, adderName string, member *models.User) {
	title := fmt.Sprintf("You were added to %q", group.Name)
	body := fmt.Sprintf("%s added you to the group %q", adderName, group.Name)
	n.push(ctx, member.FCMToken, title, body, map[string]string{
		"type":     "member_added",
		"group_id": group.ID.String(),
	})

	if err := n.mailer.SendMemberAdded(member.Email, member.Name, adderName, group.Name); err != nil {
		n.log.Warn("send member added mail", "to", member.Email, "error", err)
	}
}

// DebtReminder nudges a debtor by push and email.
func (n *Notifier) DebtReminder(ctx context.Context, debtor *models.User, senderName, groupName string, amount int64, message string) {
	title := fmt.Sprintf("Reminder from %s", senderName)
	body := fmt.Sprintf("You owe %s in %s", FormatAmount(amount), groupName)
	n.push(ctx, debtor.FCMToken, title, body, map[string]string{
		"type": "debt_reminder",
	})

	if err := n.mailer.SendDebtReminder(debtor.Email, debtor.Name, senderName, groupName, amount, message); err != nil {
		n.log.Warn("send debt reminder mail", "to", debtor.Email, "error", err)
	}
}
