package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"github.com/thecodingmontana/zadaci-api/internal/constants"
	"github.com/thecodingmontana/zadaci-api/internal/database"
	"github.com/thecodingmontana/zadaci-api/internal/dto"
	"github.com/thecodingmontana/zadaci-api/internal/middleware"
	"github.com/thecodingmontana/zadaci-api/internal/models"
	"github.com/thecodingmontana/zadaci-api/internal/repository"
	"github.com/thecodingmontana/zadaci-api/internal/services"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

type workspaceTestEnv struct {
	db               *gorm.DB
	handler          *WorkspaceHandler
	teammateHandler  *TeammateHandler
	workspaceService *services.WorkspaceService
}

func setupWorkspaceTestEnv(t *testing.T) workspaceTestEnv {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)

	err = db.AutoMigrate(
		&models.User{},
		&models.Workspace{},
		&models.WorkspaceMember{},
		&models.WorkspaceInvite{},
		&models.Project{},
		&models.ProjectMember{},
		&models.Task{},
		&models.Subtask{},
		&models.TaskAssignee{},
		&models.TaskActivity{},
		&models.OutboxMessage{},
	)
	require.NoError(t, err)

	database.SetDB(db)

	workspaceRepo := repository.NewWorkspaceRepository(db)
	workspaceService := services.NewWorkspaceService(workspaceRepo)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	t.Cleanup(func() {
		sqlDB.Close()
	})

	return workspaceTestEnv{
		db:               db,
		handler:          NewWorkspaceHandler(workspaceService),
		teammateHandler:  NewTeammateHandler(workspaceService),
		workspaceService: workspaceService,
	}
}

func workspaceTestContext(method, url string, body []byte, userID string) (*gin.Context, *httptest.ResponseRecorder) {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(method, url, bytes.NewReader(body))
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	c, _ := gin.CreateTestContext(w)
	c.Request = req
	c.Set(constants.ContextKeyUserID, userID)

	return c, w
}

func createTestUser(t *testing.T, db *gorm.DB, email, username string) *models.User {
	hash := "hashed"
	user := &models.User{
		ID:           uuid.NewString(),
		Email:        email,
		Username:     username,
		PasswordHash: &hash,
		RecoveryCode: "RECOVERY",
	}
	require.NoError(t, db.Create(user).Error)
	return user
}

func TestWorkspaceHandler_CreateWorkspace(t *testing.T) {
	env := setupWorkspaceTestEnv(t)

	user := createTestUser(t, env.db, "owner@example.com", "owner")

	body, err := json.Marshal(map[string]string{"name": "Acme"})
	require.NoError(t, err)

	c, w := workspaceTestContext(http.MethodPost, "/api/workspaces", body, user.ID)

	env.handler.CreateWorkspace(c)

	require.Equal(t, http.StatusCreated, w.Code)

	var response dto.WorkspaceDTO
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	require.Equal(t, "Acme", response.Name)
	require.Equal(t, user.ID, response.OwnerID)
	require.Len(t, response.InviteCode, constants.InviteCodeLength)

	// Creator becomes OWNER
	var member models.WorkspaceMember
	err = env.db.Where("workspace_id = ? AND user_id = ?", response.ID, user.ID).First(&member).Error
	require.NoError(t, err)
	require.Equal(t, models.RoleOwner, member.Role)
}

func TestWorkspaceHandler_ListWorkspaces(t *testing.T) {
	env := setupWorkspaceTestEnv(t)

	user := createTestUser(t, env.db, "member@example.com", "member")

	_, err := env.workspaceService.CreateWorkspace(services.CreateWorkspaceInput{
		Name:    "First",
		OwnerID: user.ID,
	})
	require.NoError(t, err)

	c, w := workspaceTestContext(http.MethodGet, "/api/workspaces", nil, user.ID)

	env.handler.ListWorkspaces(c)

	require.Equal(t, http.StatusOK, w.Code)

	var response struct {
		Workspaces []dto.WorkspaceWithRoleDTO `json:"workspaces"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	require.Len(t, response.Workspaces, 1)
	require.Equal(t, models.RoleOwner, response.Workspaces[0].Role)
}

// The workspace guard answers 404 for both unknown workspaces and
// workspaces the caller is not a member of.
func TestWorkspaceAccess_HidesForeignWorkspaces(t *testing.T) {
	env := setupWorkspaceTestEnv(t)

	owner := createTestUser(t, env.db, "owner@example.com", "owner")
	outsider := createTestUser(t, env.db, "outsider@example.com", "outsider")

	workspace, err := env.workspaceService.CreateWorkspace(services.CreateWorkspaceInput{
		Name:    "Private",
		OwnerID: owner.ID,
	})
	require.NoError(t, err)

	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(func(c *gin.Context) {
		c.Set(constants.ContextKeyUserID, outsider.ID)
	})
	r.GET("/api/workspaces/:workspaceId", middleware.RequireWorkspaceAccess(), env.handler.GetWorkspace)

	req := httptest.NewRequest(http.MethodGet, "/api/workspaces/"+workspace.ID, nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusNotFound, w.Code)
}

// Mutations behind RequireWorkspaceRole(OWNER) answer 403 for members.
func TestWorkspaceRole_MemberCannotDeleteWorkspace(t *testing.T) {
	env := setupWorkspaceTestEnv(t)

	owner := createTestUser(t, env.db, "owner@example.com", "owner")
	member := createTestUser(t, env.db, "member@example.com", "member")

	workspace, err := env.workspaceService.CreateWorkspace(services.CreateWorkspaceInput{
		Name:    "Guarded",
		OwnerID: owner.ID,
	})
	require.NoError(t, err)

	require.NoError(t, env.db.Create(&models.WorkspaceMember{
		ID:          uuid.NewString(),
		Role:        models.RoleMember,
		UserID:      member.ID,
		WorkspaceID: workspace.ID,
	}).Error)

	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(func(c *gin.Context) {
		c.Set(constants.ContextKeyUserID, member.ID)
	})
	r.DELETE("/api/workspaces/:workspaceId",
		middleware.RequireWorkspaceAccess(),
		middleware.RequireWorkspaceRole(models.RoleOwner),
		env.handler.DeleteWorkspace)

	req := httptest.NewRequest(http.MethodDelete, "/api/workspaces/"+workspace.ID, nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusForbidden, w.Code)
}

func TestWorkspaceService_ChangeTeammateRoles_ProtectsOwner(t *testing.T) {
	env := setupWorkspaceTestEnv(t)

	owner := createTestUser(t, env.db, "owner@example.com", "owner")
	workspace, err := env.workspaceService.CreateWorkspace(services.CreateWorkspaceInput{
		Name:    "Protected",
		OwnerID: owner.ID,
	})
	require.NoError(t, err)

	err = env.workspaceService.ChangeTeammateRoles(workspace.ID, []services.RoleChange{
		{UserID: owner.ID, Role: models.RoleGuest},
	})
	require.ErrorIs(t, err, services.ErrCannotDemoteOwner)
}

func TestWorkspaceService_ChangeTeammateRoles_RefusesOwnerRole(t *testing.T) {
	env := setupWorkspaceTestEnv(t)

	owner := createTestUser(t, env.db, "owner@example.com", "owner")
	member := createTestUser(t, env.db, "member@example.com", "member")
	workspace, err := env.workspaceService.CreateWorkspace(services.CreateWorkspaceInput{
		Name:    "One owner",
		OwnerID: owner.ID,
	})
	require.NoError(t, err)

	require.NoError(t, env.db.Create(&models.WorkspaceMember{
		ID:          uuid.NewString(),
		Role:        models.RoleMember,
		UserID:      member.ID,
		WorkspaceID: workspace.ID,
	}).Error)

	err = env.workspaceService.ChangeTeammateRoles(workspace.ID, []services.RoleChange{
		{UserID: member.ID, Role: models.RoleOwner},
	})
	require.ErrorIs(t, err, services.ErrCannotAssignOwner)

	var stored models.WorkspaceMember
	require.NoError(t, env.db.Where("workspace_id = ? AND user_id = ?", workspace.ID, member.ID).First(&stored).Error)
	require.Equal(t, models.RoleMember, stored.Role)
}

func TestWorkspaceService_RemoveTeammates_ProtectsOwnerRole(t *testing.T) {
	env := setupWorkspaceTestEnv(t)

	owner := createTestUser(t, env.db, "owner@example.com", "owner")
	coOwner := createTestUser(t, env.db, "co@example.com", "co")
	workspace, err := env.workspaceService.CreateWorkspace(services.CreateWorkspaceInput{
		Name:    "Guarded seats",
		OwnerID: owner.ID,
	})
	require.NoError(t, err)

	// A member row carrying the OWNER role is protected regardless of
	// whether it matches the workspace's owner_id column.
	require.NoError(t, env.db.Create(&models.WorkspaceMember{
		ID:          uuid.NewString(),
		Role:        models.RoleOwner,
		UserID:      coOwner.ID,
		WorkspaceID: workspace.ID,
	}).Error)

	err = env.workspaceService.RemoveTeammates(workspace.ID, []string{coOwner.ID})
	require.ErrorIs(t, err, services.ErrCannotRemoveOwner)

	var count int64
	env.db.Model(&models.WorkspaceMember{}).Where("workspace_id = ?", workspace.ID).Count(&count)
	require.Equal(t, int64(2), count)
}

func TestWorkspaceService_RemoveTeammates_ReportsUnknownUsers(t *testing.T) {
	env := setupWorkspaceTestEnv(t)

	owner := createTestUser(t, env.db, "owner@example.com", "owner")
	workspace, err := env.workspaceService.CreateWorkspace(services.CreateWorkspaceInput{
		Name:    "Strict",
		OwnerID: owner.ID,
	})
	require.NoError(t, err)

	err = env.workspaceService.RemoveTeammates(workspace.ID, []string{"nobody"})

	var unknown *services.UnknownMembersError
	require.ErrorAs(t, err, &unknown)
	require.Equal(t, []string{"nobody"}, unknown.UserIDs)
}

func TestWorkspaceService_DeleteWorkspace_Cascades(t *testing.T) {
	env := setupWorkspaceTestEnv(t)

	owner := createTestUser(t, env.db, "owner@example.com", "owner")
	workspace, err := env.workspaceService.CreateWorkspace(services.CreateWorkspaceInput{
		Name:    "Doomed",
		OwnerID: owner.ID,
	})
	require.NoError(t, err)

	project := &models.Project{
		ID:          uuid.NewString(),
		Title:       "Old project",
		Status:      models.StatusTodo,
		Priority:    models.PriorityNone,
		WorkspaceID: workspace.ID,
	}
	require.NoError(t, env.db.Create(project).Error)

	task := &models.Task{
		ID:        uuid.NewString(),
		Name:      "Old task",
		Status:    models.StatusTodo,
		Priority:  models.PriorityNone,
		ProjectID: project.ID,
	}
	require.NoError(t, env.db.Create(task).Error)

	require.NoError(t, env.workspaceService.DeleteWorkspace(workspace.ID))

	var count int64
	env.db.Model(&models.Task{}).Count(&count)
	require.Zero(t, count)
	env.db.Model(&models.Project{}).Count(&count)
	require.Zero(t, count)
	env.db.Model(&models.WorkspaceMember{}).Count(&count)
	require.Zero(t, count)
}
