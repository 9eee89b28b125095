package services

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/thecodingmontana/zadaci-api/internal/constants"
	"github.com/thecodingmontana/zadaci-api/internal/models"
	"github.com/thecodingmontana/zadaci-api/internal/outbox"
	"github.com/thecodingmontana/zadaci-api/internal/repository"
	"github.com/thecodingmontana/zadaci-api/internal/utils"
	"gorm.io/gorm"
)

var (
	ErrInviteNotFound    = errors.New("invite not found")
	ErrInviteExpired     = errors.New("invite has expired")
	ErrInvalidInviteCode = errors.New("invalid invite code")
	ErrNoInvitesGiven    = errors.New("no invites given")
	ErrNotInviteOwner    = errors.New("only the invited address may withdraw the invite")
)

// Reasons reported back for invites that could not be sent.
const (
	FailureInvalidEmail   = "invalid email address"
	FailureAlreadyMember  = "already a workspace member"
	FailureAlreadyInvited = "already has a pending invite"
	FailureInvalidRole    = "invalid role"
)

// InviteFailure names one address a batch operation skipped and why.
type InviteFailure struct {
	Email  string `json:"email"`
	Reason string `json:"reason"`
}

// InviteBatchResult is the outcome of a batch send or resend.
type InviteBatchResult struct {
	Sent   []string        `json:"sent"`
	Failed []InviteFailure `json:"failed"`
}

// NoPendingInvitesError lists addresses a resend found no pending invite
// for. The other addresses in the batch are still renewed.
type NoPendingInvitesError struct {
	Emails []string
}

func (e *NoPendingInvitesError) Error() string {
	return fmt.Sprintf("No pending invite found for: %s", strings.Join(e.Emails, ", "))
}

// InviteService provides business logic for workspace invites.
type InviteService struct {
	inviteRepo    repository.InviteRepository
	workspaceRepo repository.WorkspaceRepository
	userRepo      repository.UserRepository
	siteURL       string
}

// NewInviteService creates a new InviteService.
func NewInviteService(inviteRepo repository.InviteRepository, workspaceRepo repository.WorkspaceRepository, userRepo repository.UserRepository, siteURL string) *InviteService {
	return &InviteService{
		inviteRepo:    inviteRepo,
		workspaceRepo: workspaceRepo,
		userRepo:      userRepo,
		siteURL:       siteURL,
	}
}

// InviteRequest is one address/role pair in a batch send.
type InviteRequest struct {
	Email string
	Role  models.Role
}

// SendInvites creates pending invites for a batch of addresses and queues
// their emails. Addresses that are invalid, already members or already
// invited are skipped and reported; the rest still go through.
func (s *InviteService) SendInvites(workspace *models.Workspace, inviter *models.User, requests []InviteRequest) (*InviteBatchResult, error) {
	if len(requests) == 0 {
		return nil, ErrNoInvitesGiven
	}

	result := &InviteBatchResult{Sent: []string{}, Failed: []InviteFailure{}}
	var invites []models.WorkspaceInvite
	var events []models.OutboxMessage
	seen := make(map[string]bool, len(requests))

	for _, request := range requests {
		email := strings.ToLower(strings.TrimSpace(request.Email))
		if seen[email] {
			continue
		}
		seen[email] = true

		if !utils.IsValidEmail(email) {
			result.Failed = append(result.Failed, InviteFailure{Email: request.Email, Reason: FailureInvalidEmail})
			continue
		}

		role := request.Role
		if role == "" {
			role = models.RoleMember
		}
		if !role.IsValid() || role == models.RoleOwner {
			result.Failed = append(result.Failed, InviteFailure{Email: email, Reason: FailureInvalidRole})
			continue
		}

		isMember, err := s.workspaceRepo.MemberEmailExists(workspace.ID, email)
		if err != nil {
			return nil, fmt.Errorf("failed to check membership: %w", err)
		}
		if isMember {
			result.Failed = append(result.Failed, InviteFailure{Email: email, Reason: FailureAlreadyMember})
			continue
		}

		if _, err := s.inviteRepo.Find(workspace.ID, email); err == nil {
			result.Failed = append(result.Failed, InviteFailure{Email: email, Reason: FailureAlreadyInvited})
			continue
		} else if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("failed to check invites: %w", err)
		}

		invites = append(invites, models.WorkspaceInvite{
			ID:          uuid.NewString(),
			Email:       email,
			Role:        role,
			WorkspaceID: workspace.ID,
			Status:      models.InvitePending,
			ExpiresAt:   time.Now().AddDate(0, 0, constants.InviteExpiryDays),
			InvitedBy:   inviter.ID,
		})

		event, err := outbox.NewMessage(outbox.KindInviteSent, outbox.InviteEmail(
			email,
			workspace.Name,
			inviter.Username,
			string(role),
			s.acceptURL(workspace.InviteCode, email),
		))
		if err != nil {
			return nil, err
		}
		events = append(events, event)
		result.Sent = append(result.Sent, email)
	}

	if err := s.inviteRepo.CreateBatch(invites, events); err != nil {
		return nil, fmt.Errorf("failed to create invites: %w", err)
	}
	return result, nil
}

// ResendInvites refreshes the expiry of pending invites and queues their
// emails again. Addresses without a pending invite do not stop the rest,
// but they surface as a NoPendingInvitesError once the batch is done.
func (s *InviteService) ResendInvites(workspace *models.Workspace, inviter *models.User, emails []string) (*InviteBatchResult, error) {
	if len(emails) == 0 {
		return nil, ErrNoInvitesGiven
	}

	result := &InviteBatchResult{Sent: []string{}, Failed: []InviteFailure{}}
	var missing []string
	for _, raw := range emails {
		email := strings.ToLower(strings.TrimSpace(raw))

		invite, err := s.inviteRepo.FindPending(workspace.ID, email)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				missing = append(missing, email)
				continue
			}
			return nil, fmt.Errorf("failed to find invite: %w", err)
		}

		event, err := outbox.NewMessage(outbox.KindInviteSent, outbox.InviteEmail(
			email,
			workspace.Name,
			inviter.Username,
			string(invite.Role),
			s.acceptURL(workspace.InviteCode, email),
		))
		if err != nil {
			return nil, err
		}

		expiresAt := time.Now().AddDate(0, 0, constants.InviteExpiryDays)
		if err := s.inviteRepo.Renew(invite.ID, expiresAt, event); err != nil {
			return nil, fmt.Errorf("failed to renew invite: %w", err)
		}
		result.Sent = append(result.Sent, email)
	}

	if len(missing) > 0 {
		return result, &NoPendingInvitesError{Emails: missing}
	}
	return result, nil
}

// GetInvite resolves an invite code and email to the pending invite and its
// workspace, for the public invite landing page.
func (s *InviteService) GetInvite(inviteCode, email string) (*models.WorkspaceInvite, *models.Workspace, error) {
	workspace, err := s.workspaceRepo.FindByInviteCode(inviteCode, true)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, ErrInvalidInviteCode
		}
		return nil, nil, fmt.Errorf("failed to find workspace: %w", err)
	}

	invite, err := s.inviteRepo.FindPending(workspace.ID, strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, ErrInviteNotFound
		}
		return nil, nil, fmt.Errorf("failed to find invite: %w", err)
	}

	return invite, workspace, nil
}

// AcceptInvite consumes a pending invite. When no account exists for the
// address one is created on the spot, without a password, so the new member
// lands in the workspace in a single step. Expired invites are refused.
func (s *InviteService) AcceptInvite(inviteCode, email string) (*models.User, *models.Workspace, error) {
	invite, workspace, err := s.GetInvite(inviteCode, email)
	if err != nil {
		return nil, nil, err
	}

	if invite.Expired(time.Now()) {
		return nil, nil, ErrInviteExpired
	}

	normalized := strings.ToLower(strings.TrimSpace(email))

	var newUser *models.User
	user, err := s.userRepo.FindByEmail(normalized)
	if err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, fmt.Errorf("failed to find user: %w", err)
		}

		recoveryCode, err := utils.GenerateRecoveryCode()
		if err != nil {
			return nil, nil, fmt.Errorf("failed to generate recovery code: %w", err)
		}

		newUser = &models.User{
			ID:           uuid.NewString(),
			Email:        normalized,
			Username:     generatedUsername(normalized),
			RecoveryCode: recoveryCode,
			AvatarURL:    fmt.Sprintf("https://avatar.vercel.sh/%s", normalized),
		}
		user = newUser
	}

	member := &models.WorkspaceMember{
		ID:          uuid.NewString(),
		Role:        invite.Role,
		UserID:      user.ID,
		WorkspaceID: workspace.ID,
	}

	event, err := outbox.NewMessage(outbox.KindInviteAccepted, outbox.WelcomeEmail(
		user.Email,
		user.Username,
		workspace.Name,
		fmt.Sprintf("%s/workspace/%s", s.siteURL, workspace.ID),
	))
	if err != nil {
		return nil, nil, err
	}

	if err := s.inviteRepo.Accept(invite, newUser, member, event); err != nil {
		return nil, nil, fmt.Errorf("failed to accept invite: %w", err)
	}
	return user, workspace, nil
}

// DeclineInvite removes a pending invite and tells the inviter.
func (s *InviteService) DeclineInvite(inviteCode, email string) error {
	invite, workspace, err := s.GetInvite(inviteCode, email)
	if err != nil {
		return err
	}

	inviter, err := s.userRepo.FindByID(invite.InvitedBy)
	if err != nil {
		return fmt.Errorf("failed to find inviter: %w", err)
	}

	event, err := outbox.NewMessage(outbox.KindInviteDeclined, outbox.DeclineEmail(
		inviter.Email,
		invite.Email,
		workspace.Name,
	))
	if err != nil {
		return err
	}

	if err := s.inviteRepo.DeleteWithEvent(workspace.ID, invite.Email, event); err != nil {
		return fmt.Errorf("failed to decline invite: %w", err)
	}
	return nil
}

// WithdrawInvite lets the invited person pull back their own pending
// invite. The inviter is told, same as a decline.
func (s *InviteService) WithdrawInvite(workspaceID, email string) error {
	normalized := strings.ToLower(strings.TrimSpace(email))

	invite, err := s.inviteRepo.FindPending(workspaceID, normalized)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrInviteNotFound
		}
		return fmt.Errorf("failed to find invite: %w", err)
	}

	workspace, err := s.workspaceRepo.FindByID(workspaceID)
	if err != nil {
		return fmt.Errorf("failed to find workspace: %w", err)
	}

	inviter, err := s.userRepo.FindByID(invite.InvitedBy)
	if err != nil {
		return fmt.Errorf("failed to find inviter: %w", err)
	}

	event, err := outbox.NewMessage(outbox.KindInviteDeclined, outbox.DeclineEmail(
		inviter.Email,
		invite.Email,
		workspace.Name,
	))
	if err != nil {
		return err
	}

	if err := s.inviteRepo.DeleteWithEvent(workspaceID, invite.Email, event); err != nil {
		return fmt.Errorf("failed to withdraw invite: %w", err)
	}
	return nil
}

// CancelInvites withdraws pending invites for the given addresses.
func (s *InviteService) CancelInvites(workspaceID string, emails []string) (int64, error) {
	if len(emails) == 0 {
		return 0, ErrNoInvitesGiven
	}

	normalized := make([]string, 0, len(emails))
	for _, email := range emails {
		normalized = append(normalized, strings.ToLower(strings.TrimSpace(email)))
	}

	removed, err := s.inviteRepo.DeleteByEmails(workspaceID, normalized)
	if err != nil {
		return 0, fmt.Errorf("failed to cancel invites: %w", err)
	}
	return removed, nil
}

// ListInvites lists all invites of a workspace.
func (s *InviteService) ListInvites(workspaceID string) ([]models.WorkspaceInvite, error) {
	invites, err := s.inviteRepo.ListByWorkspace(workspaceID)
	if err != nil {
		return nil, fmt.Errorf("failed to list invites: %w", err)
	}
	return invites, nil
}

func (s *InviteService) acceptURL(inviteCode, email string) string {
	return fmt.Sprintf("%s/invite/%s?email=%s", s.siteURL, inviteCode, url.QueryEscape(email))
}

// generatedUsername derives a starter username for invite-created accounts
// from the address's local part plus a random suffix.
func generatedUsername(email string) string {
	local := email
	if at := strings.Index(email, "@"); at > 0 {
		local = email[:at]
	}
	return fmt.Sprintf("%s-%s", local, strings.ToLower(uuid.NewString()[:8]))
}
