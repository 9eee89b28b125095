package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/thecodingmontana/zadaci-api/internal/models"
	"github.com/thecodingmontana/zadaci-api/internal/repository"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

type inviteTestEnv struct {
	db               *gorm.DB
	inviteService    *InviteService
	workspaceService *WorkspaceService
	authService      *AuthService
}

func setupInviteTestEnv(t *testing.T) inviteTestEnv {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)

	err = db.AutoMigrate(
		&models.User{},
		&models.Workspace{},
		&models.WorkspaceMember{},
		&models.WorkspaceInvite{},
		&models.OutboxMessage{},
	)
	require.NoError(t, err)

	userRepo := repository.NewUserRepository(db)
	workspaceRepo := repository.NewWorkspaceRepository(db)
	inviteRepo := repository.NewInviteRepository(db)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	t.Cleanup(func() {
		sqlDB.Close()
	})

	return inviteTestEnv{
		db:               db,
		inviteService:    NewInviteService(inviteRepo, workspaceRepo, userRepo, "http://localhost:3000"),
		workspaceService: NewWorkspaceService(workspaceRepo),
		authService:      NewAuthService(userRepo),
	}
}

func (env inviteTestEnv) createOwnerAndWorkspace(t *testing.T) (*models.User, *models.Workspace) {
	t.Helper()

	owner, err := env.authService.Signup(SignupInput{
		Email:    "owner@example.com",
		Username: "owner",
		Password: "supersecret",
	})
	require.NoError(t, err)

	workspace, err := env.workspaceService.CreateWorkspace(CreateWorkspaceInput{
		Name:    "Inviting",
		OwnerID: owner.ID,
	})
	require.NoError(t, err)

	return owner, workspace
}

func TestInviteService_SendInvites_BatchWithFailures(t *testing.T) {
	env := setupInviteTestEnv(t)
	owner, workspace := env.createOwnerAndWorkspace(t)

	result, err := env.inviteService.SendInvites(workspace, owner, []InviteRequest{
		{Email: "new@example.com", Role: models.RoleMember},
		{Email: "not-an-email"},
		{Email: "owner@example.com"},
	})
	require.NoError(t, err)

	require.Equal(t, []string{"new@example.com"}, result.Sent)
	require.Len(t, result.Failed, 2)

	reasons := map[string]string{}
	for _, failure := range result.Failed {
		reasons[failure.Email] = failure.Reason
	}
	require.Equal(t, FailureInvalidEmail, reasons["not-an-email"])
	require.Equal(t, FailureAlreadyMember, reasons["owner@example.com"])

	// One pending invite and one queued email, committed together
	var invite models.WorkspaceInvite
	require.NoError(t, env.db.First(&invite).Error)
	require.Equal(t, "new@example.com", invite.Email)
	require.Equal(t, models.InvitePending, invite.Status)
	require.True(t, invite.ExpiresAt.After(time.Now().AddDate(0, 0, 6)))

	var message models.OutboxMessage
	require.NoError(t, env.db.First(&message).Error)
	require.Equal(t, "invite.sent", message.Kind)
	require.Equal(t, models.OutboxPending, message.Status)
	require.Contains(t, message.Payload, "new@example.com")
}

func TestInviteService_SendInvites_RejectsDuplicatePending(t *testing.T) {
	env := setupInviteTestEnv(t)
	owner, workspace := env.createOwnerAndWorkspace(t)

	_, err := env.inviteService.SendInvites(workspace, owner, []InviteRequest{
		{Email: "repeat@example.com"},
	})
	require.NoError(t, err)

	result, err := env.inviteService.SendInvites(workspace, owner, []InviteRequest{
		{Email: "repeat@example.com"},
	})
	require.NoError(t, err)
	require.Empty(t, result.Sent)
	require.Len(t, result.Failed, 1)
	require.Equal(t, FailureAlreadyInvited, result.Failed[0].Reason)
}

func TestInviteService_ResendInvites_RenewsExpiry(t *testing.T) {
	env := setupInviteTestEnv(t)
	owner, workspace := env.createOwnerAndWorkspace(t)

	_, err := env.inviteService.SendInvites(workspace, owner, []InviteRequest{
		{Email: "slow@example.com"},
	})
	require.NoError(t, err)

	// Age the invite
	past := time.Now().AddDate(0, 0, 1)
	require.NoError(t, env.db.Model(&models.WorkspaceInvite{}).
		Where("email = ?", "slow@example.com").
		Update("expires_at", past).Error)

	// An address without a pending invite fails the call, but the known
	// invites are still renewed first
	result, err := env.inviteService.ResendInvites(workspace, owner, []string{"slow@example.com", "unknown@example.com"})

	var noPending *NoPendingInvitesError
	require.ErrorAs(t, err, &noPending)
	require.Equal(t, []string{"unknown@example.com"}, noPending.Emails)
	require.Equal(t, []string{"slow@example.com"}, result.Sent)

	var invite models.WorkspaceInvite
	require.NoError(t, env.db.Where("email = ?", "slow@example.com").First(&invite).Error)
	require.True(t, invite.ExpiresAt.After(past))

	var count int64
	env.db.Model(&models.OutboxMessage{}).Where("kind = ?", "invite.sent").Count(&count)
	require.Equal(t, int64(2), count)
}

func TestInviteService_AcceptInvite_CreatesAccountAndMembership(t *testing.T) {
	env := setupInviteTestEnv(t)
	owner, workspace := env.createOwnerAndWorkspace(t)

	_, err := env.inviteService.SendInvites(workspace, owner, []InviteRequest{
		{Email: "fresh@example.com", Role: models.RoleGuest},
	})
	require.NoError(t, err)

	user, joined, err := env.inviteService.AcceptInvite(workspace.InviteCode, "fresh@example.com")
	require.NoError(t, err)
	require.Equal(t, workspace.ID, joined.ID)

	// Account was minted on the fly, passwordless
	require.Equal(t, "fresh@example.com", user.Email)
	require.Nil(t, user.PasswordHash)
	require.NotEmpty(t, user.Username)
	require.NotEmpty(t, user.RecoveryCode)

	var member models.WorkspaceMember
	require.NoError(t, env.db.Where("user_id = ?", user.ID).First(&member).Error)
	require.Equal(t, models.RoleGuest, member.Role)

	// The invite row is gone so the address can be invited again later
	var count int64
	env.db.Model(&models.WorkspaceInvite{}).Count(&count)
	require.Zero(t, count)

	env.db.Model(&models.OutboxMessage{}).Where("kind = ?", "invite.accepted").Count(&count)
	require.Equal(t, int64(1), count)

	// Accepting twice fails because the invite was consumed
	_, _, err = env.inviteService.AcceptInvite(workspace.InviteCode, "fresh@example.com")
	require.ErrorIs(t, err, ErrInviteNotFound)
}

func TestInviteService_AcceptInvite_RefusesExpired(t *testing.T) {
	env := setupInviteTestEnv(t)
	owner, workspace := env.createOwnerAndWorkspace(t)

	_, err := env.inviteService.SendInvites(workspace, owner, []InviteRequest{
		{Email: "late@example.com"},
	})
	require.NoError(t, err)

	require.NoError(t, env.db.Model(&models.WorkspaceInvite{}).
		Where("email = ?", "late@example.com").
		Update("expires_at", time.Now().Add(-time.Hour)).Error)

	_, _, err = env.inviteService.AcceptInvite(workspace.InviteCode, "late@example.com")
	require.ErrorIs(t, err, ErrInviteExpired)

	// The row survives so the owner can resend
	var count int64
	env.db.Model(&models.WorkspaceInvite{}).Count(&count)
	require.Equal(t, int64(1), count)
}

func TestInviteService_DeclineInvite_NotifiesInviter(t *testing.T) {
	env := setupInviteTestEnv(t)
	owner, workspace := env.createOwnerAndWorkspace(t)

	_, err := env.inviteService.SendInvites(workspace, owner, []InviteRequest{
		{Email: "nothanks@example.com"},
	})
	require.NoError(t, err)

	require.NoError(t, env.inviteService.DeclineInvite(workspace.InviteCode, "nothanks@example.com"))

	var count int64
	env.db.Model(&models.WorkspaceInvite{}).Count(&count)
	require.Zero(t, count)

	var message models.OutboxMessage
	require.NoError(t, env.db.Where("kind = ?", "invite.declined").First(&message).Error)
	require.Contains(t, message.Payload, owner.Email)
}

func TestInviteService_CancelInvites(t *testing.T) {
	env := setupInviteTestEnv(t)
	owner, workspace := env.createOwnerAndWorkspace(t)

	_, err := env.inviteService.SendInvites(workspace, owner, []InviteRequest{
		{Email: "one@example.com"},
		{Email: "two@example.com"},
	})
	require.NoError(t, err)

	removed, err := env.inviteService.CancelInvites(workspace.ID, []string{"one@example.com"})
	require.NoError(t, err)
	require.Equal(t, int64(1), removed)

	var count int64
	env.db.Model(&models.WorkspaceInvite{}).Count(&count)
	require.Equal(t, int64(1), count)
}
