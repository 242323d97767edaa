package ledger

import (
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"splitledger-backend/models"
)

// Gate answers membership questions. Every group-scoped operation passes
// through it before touching data: a user who has left a group is treated
// exactly like a user who was never in it.
type Gate struct {
	db *gorm.DB
}

func NewGate(db *gorm.DB) *Gate {
	return &Gate{db: db}
}

// WithTx returns a gate bound to the given transaction handle.
func (g *Gate) WithTx(tx *gorm.DB) *Gate {
	return &Gate{db: tx}
}

// RequireActiveMember returns nil when the user is an active member of the
// group, ErrNotAMember otherwise.
func (g *Gate) RequireActiveMember(groupID, userID uuid.UUID) error {
	var b models.Balance
	err := g.db.Select("has_left").
		Where("group_id = ? AND user_id = ?", groupID, userID).
		First(&b).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotAMember
	}
	if err != nil {
		return err
	}
	if b.HasLeft {
		return ErrNotAMember
	}
	return nil
}

// RequireOwner returns nil when the user owns the group, ErrNotOwner when a
// different user does, ErrGroupNotFound when the group does not exist.
func (g *Gate) RequireOwner(groupID, userID uuid.UUID) error {
	var group models.Group
	err := g.db.Select("owner_id").First(&group, "id = ?", groupID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrGroupNotFound
	}
	if err != nil {
		return err
	}
	if group.OwnerID != userID {
		return ErrNotOwner
	}
	return nil
}

// ActiveMemberIDs returns the IDs of the group's active members ordered by
// user ID.
func (g *Gate) ActiveMemberIDs(groupID uuid.UUID) ([]uuid.UUID, error) {
	var ids []uuid.UUID
	err := g.db.Model(&models.Balance{}).
		Where("group_id = ? AND has_left = ?", groupID, false).
		Order("user_id").Pluck("user_id", &ids).Error
	return ids, err
}
