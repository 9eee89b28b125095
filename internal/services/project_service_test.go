package services

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"github.com/thecodingmontana/zadaci-api/internal/models"
	"github.com/thecodingmontana/zadaci-api/internal/repository"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

type projectTestEnv struct {
	db             *gorm.DB
	projectService *ProjectService

	workspace *models.Workspace
	ownerMem  *models.WorkspaceMember
	mateMem   *models.WorkspaceMember
}

func setupProjectTestEnv(t *testing.T) projectTestEnv {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)

	err = db.AutoMigrate(
		&models.User{},
		&models.Workspace{},
		&models.WorkspaceMember{},
		&models.Project{},
		&models.ProjectMember{},
		&models.Task{},
		&models.OutboxMessage{},
	)
	require.NoError(t, err)

	projectRepo := repository.NewProjectRepository(db)
	workspaceRepo := repository.NewWorkspaceRepository(db)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	t.Cleanup(func() {
		sqlDB.Close()
	})

	env := projectTestEnv{
		db:             db,
		projectService: NewProjectService(projectRepo, workspaceRepo, "http://localhost:3000"),
	}

	owner := env.createUser(t, "owner@example.com", "owner")
	mate := env.createUser(t, "mate@example.com", "mate")

	env.workspace = &models.Workspace{
		ID:         uuid.NewString(),
		Name:       "Projects",
		ImageURL:   "https://avatar.vercel.sh/projects",
		InviteCode: "PROJCODE",
		OwnerID:    owner.ID,
	}
	require.NoError(t, db.Create(env.workspace).Error)

	env.ownerMem = env.createMember(t, owner.ID, models.RoleOwner)
	env.mateMem = env.createMember(t, mate.ID, models.RoleMember)

	return env
}

func (env projectTestEnv) createUser(t *testing.T, email, username string) *models.User {
	t.Helper()

	hash := "hashed"
	user := &models.User{
		ID:           uuid.NewString(),
		Email:        email,
		Username:     username,
		PasswordHash: &hash,
		RecoveryCode: "RECOVERY",
	}
	require.NoError(t, env.db.Create(user).Error)
	return user
}

func (env projectTestEnv) createMember(t *testing.T, userID string, role models.Role) *models.WorkspaceMember {
	t.Helper()

	member := &models.WorkspaceMember{
		ID:          uuid.NewString(),
		Role:        role,
		UserID:      userID,
		WorkspaceID: env.workspace.ID,
	}
	require.NoError(t, env.db.Create(member).Error)
	return member
}

func TestProjectService_CreateProject_RequiresMembers(t *testing.T) {
	env := setupProjectTestEnv(t)

	_, err := env.projectService.CreateProject(env.workspace, env.ownerMem, CreateProjectInput{
		Title: "Unstaffed",
	})
	require.ErrorIs(t, err, ErrNoProjectMembers)

	var count int64
	env.db.Model(&models.Project{}).Count(&count)
	require.Zero(t, count)
}

func TestProjectService_CreateProject_StaffsMembers(t *testing.T) {
	env := setupProjectTestEnv(t)

	project, err := env.projectService.CreateProject(env.workspace, env.ownerMem, CreateProjectInput{
		Title:     "Launch",
		MemberIDs: []string{env.ownerMem.ID, env.mateMem.ID},
	})
	require.NoError(t, err)

	var staffing []models.ProjectMember
	require.NoError(t, env.db.Where("project_id = ?", project.ID).Find(&staffing).Error)
	require.Len(t, staffing, 2)

	// Only the non-actor member is emailed
	var messages []models.OutboxMessage
	require.NoError(t, env.db.Where("kind = ?", "project.assigned").Find(&messages).Error)
	require.Len(t, messages, 1)
	require.Contains(t, messages[0].Payload, "mate@example.com")
}

func TestProjectService_CreateProject_RejectsForeignMembers(t *testing.T) {
	env := setupProjectTestEnv(t)

	_, err := env.projectService.CreateProject(env.workspace, env.ownerMem, CreateProjectInput{
		Title:     "Mixed crew",
		MemberIDs: []string{env.ownerMem.ID, "stranger"},
	})

	var invalid *InvalidMembersError
	require.ErrorAs(t, err, &invalid)
	require.Equal(t, []string{"stranger"}, invalid.MemberIDs)
}
