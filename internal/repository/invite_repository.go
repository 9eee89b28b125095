package repository

import (
	"time"

	"github.com/thecodingmontana/zadaci-api/internal/models"
	"gorm.io/gorm"
)

// GormInviteRepository is a GORM implementation of InviteRepository
type GormInviteRepository struct {
	db *gorm.DB
}

// NewInviteRepository creates a new InviteRepository
func NewInviteRepository(db *gorm.DB) InviteRepository {
	return &GormInviteRepository{db: db}
}

// CreateBatch inserts invites and their notification events in one transaction
func (r *GormInviteRepository) CreateBatch(invites []models.WorkspaceInvite, events []models.OutboxMessage) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if len(invites) > 0 {
			if err := tx.Create(&invites).Error; err != nil {
				return err
			}
		}
		if len(events) > 0 {
			if err := tx.Create(&events).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

// Find finds an invite by workspace and email
func (r *GormInviteRepository) Find(workspaceID, email string) (*models.WorkspaceInvite, error) {
	var invite models.WorkspaceInvite
	if err := r.db.Where("workspace_id = ? AND email = ?", workspaceID, email).
		First(&invite).Error; err != nil {
		return nil, err
	}
	return &invite, nil
}

// FindPending finds a PENDING invite by workspace and email
func (r *GormInviteRepository) FindPending(workspaceID, email string) (*models.WorkspaceInvite, error) {
	var invite models.WorkspaceInvite
	err := r.db.Where("workspace_id = ? AND email = ? AND status = ?",
		workspaceID, email, models.InvitePending).
		First(&invite).Error
	if err != nil {
		return nil, err
	}
	return &invite, nil
}

// Renew pushes an invite's expiry forward and enqueues a fresh invite mail
func (r *GormInviteRepository) Renew(id string, expiresAt time.Time, event models.OutboxMessage) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		err := tx.Model(&models.WorkspaceInvite{}).
			Where("id = ?", id).
			Update("expires_at", expiresAt).Error
		if err != nil {
			return err
		}
		return tx.Create(&event).Error
	})
}

// Accept consumes an invite in one transaction: the invited user is created
// when they do not exist yet, the membership row is inserted and the invite
// row is removed so the email can be invited again later.
func (r *GormInviteRepository) Accept(invite *models.WorkspaceInvite, newUser *models.User, member *models.WorkspaceMember, event models.OutboxMessage) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if newUser != nil {
			if err := tx.Create(newUser).Error; err != nil {
				return err
			}
		}
		if err := tx.Create(member).Error; err != nil {
			return err
		}
		if err := tx.Where("id = ?", invite.ID).Delete(&models.WorkspaceInvite{}).Error; err != nil {
			return err
		}
		return tx.Create(&event).Error
	})
}

// DeleteWithEvent removes an invite and enqueues a notification
func (r *GormInviteRepository) DeleteWithEvent(workspaceID, email string, event models.OutboxMessage) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		err := tx.Where("workspace_id = ? AND email = ?", workspaceID, email).
			Delete(&models.WorkspaceInvite{}).Error
		if err != nil {
			return err
		}
		return tx.Create(&event).Error
	})
}

// DeleteByEmails bulk-removes invites for the given emails
func (r *GormInviteRepository) DeleteByEmails(workspaceID string, emails []string) (int64, error) {
	if len(emails) == 0 {
		return 0, nil
	}
	result := r.db.Where("workspace_id = ? AND email IN ?", workspaceID, emails).
		Delete(&models.WorkspaceInvite{})
	return result.RowsAffected, result.Error
}

// ListByWorkspace lists all invites of a workspace with inviters preloaded
func (r *GormInviteRepository) ListByWorkspace(workspaceID string) ([]models.WorkspaceInvite, error) {
	var invites []models.WorkspaceInvite
	if err := r.db.Preload("Inviter").
		Where("workspace_id = ?", workspaceID).
		Order("created_at DESC").
		Find(&invites).Error; err != nil {
		return nil, err
	}
	return invites, nil
}
