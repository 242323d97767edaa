package services

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"splitledger-backend/ledger"
	"splitledger-backend/models"
	"splitledger-backend/store"
)

var (
	ErrInviteNotFound  = errors.New("invitation not found")
	ErrInviteUsed      = errors.New("invitation has already been used")
	ErrInviteExpired   = errors.New("invitation has expired")
	ErrInviteNotForYou = errors.New("invitation was sent to a different email address")
)

const inviteTTL = 24 * time.Hour

// InviteService runs the tokenized invitation flow: a member invites an email
// address, the addressee accepts with the token within 24 hours and joins the
// group through the ledger engine with the inviter as the authorizing actor.
type InviteService struct {
	invites *store.InviteStore
	users   *store.UserStore
	groups  *store.GroupStore
	gate    *ledger.Gate
	engine  *ledger.Engine
	mailer  Mailer
	log     *slog.Logger
}

func NewInviteService(invites *store.InviteStore, users *store.UserStore, groups *store.GroupStore, gate *ledger.Gate, engine *ledger.Engine, mailer Mailer, log *slog.Logger) *InviteService {
	return &InviteService{
		invites: invites,
		users:   users,
		groups:  groups,
		gate:    gate,
		engine:  engine,
		mailer:  mailer,
		log:     log,
	}
}

// Invite creates a pending invitation for the address and emails the token.
// A live pending invite for the same address and group is returned as is, so
// repeated calls do not spam the addressee.
func (s *InviteService) Invite(ctx context.Context, senderID, groupID uuid.UUID, email string) (*models.Invite, error) {
	group, err := s.groups.GetByID(ctx, groupID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ledger.ErrGroupNotFound
	}
	if err != nil {
		return nil, err
	}
	if group.IsArchived {
		return nil, ledger.ErrGroupArchived
	}
	if err := s.gate.RequireActiveMember(groupID, senderID); err != nil {
		return nil, err
	}

	// An already registered and active member needs no invitation.
	if user, err := s.users.FindByEmail(ctx, email); err != nil {
		return nil, err
	} else if user != nil {
		if err := s.gate.RequireActiveMember(groupID, user.ID); err == nil {
			return nil, ledger.ErrAlreadyMember
		}
	}

	if existing, err := s.invites.FindPending(ctx, groupID, email); err != nil {
		return nil, err
	} else if existing != nil {
		return existing, nil
	}

	sender, err := s.users.GetByID(ctx, senderID)
	if err != nil {
		return nil, err
	}

	invite := &models.Invite{
		GroupID:       groupID,
		SenderID:      senderID,
		ReceiverEmail: email,
		Status:        models.InviteStatusPending,
		ExpiresAt:     time.Now().Add(inviteTTL),
	}
	if err := s.invites.Create(ctx, invite); err != nil {
		return nil, err
	}

	go func() {
		if err := s.mailer.SendInvite(email, sender.Name, group.Name, invite.Token, invite.ExpiresAt); err != nil {
			s.log.Warn("send invite mail", "to", email, "error", err)
		}
	}()

	return invite, nil
}

// Accept joins the caller to the invite's group. The token must be pending,
// unexpired and addressed to the caller's email.
func (s *InviteService) Accept(ctx context.Context, userID, token uuid.UUID) (*models.Invite, error) {
	invite, err := s.lookup(ctx, token)
	if err != nil {
		return nil, err
	}

	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user.Email != invite.ReceiverEmail {
		return nil, ErrInviteNotForYou
	}

	if err := s.engine.AddMember(ctx, invite.SenderID, invite.GroupID, userID); err != nil {
		return nil, err
	}

	if err := s.invites.SetStatus(ctx, invite.ID, models.InviteStatusAccepted, &userID); err != nil {
		return nil, err
	}
	invite.Status = models.InviteStatusAccepted
	invite.ReceiverID = &userID

	return invite, nil
}

// Decline marks a pending invite as declined without joining.
func (s *InviteService) Decline(ctx context.Context, userID, token uuid.UUID) error {
	invite, err := s.lookup(ctx, token)
	if err != nil {
		return err
	}

	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return err
	}
	if user.Email != invite.ReceiverEmail {
		return ErrInviteNotForYou
	}

	return s.invites.SetStatus(ctx, invite.ID, models.InviteStatusDeclined, &userID)
}

// PendingForUser lists the live invitations addressed to the user's email.
func (s *InviteService) PendingForUser(ctx context.Context, user *models.User) ([]models.Invite, error) {
	return s.invites.ListPendingForEmail(ctx, user.Email)
}

func (s *InviteService) lookup(ctx context.Context, token uuid.UUID) (*models.Invite, error) {
	invite, err := s.invites.GetByToken(ctx, token)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrInviteNotFound
	}
	if err != nil {
		return nil, err
	}

	switch invite.Status {
	case models.InviteStatusPending:
	case models.InviteStatusAccepted, models.InviteStatusDeclined:
		return nil, ErrInviteUsed
	default:
		return nil, ErrInviteExpired
	}

	if time.Now().After(invite.ExpiresAt) {
		if err := s.invites.SetStatus(ctx, invite.ID, models.InviteStatusExpired, nil); err != nil {
			s.log.Warn("mark invite expired", "invite_id", invite.ID, "error", err)
		}
		return nil, ErrInviteExpired
	}

	return invite, nil
}
