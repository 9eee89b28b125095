package services

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"github.com/thecodingmontana/zadaci-api/internal/models"
	"github.com/thecodingmontana/zadaci-api/internal/repository"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

type statsTestEnv struct {
	db           *gorm.DB
	statsService *StatsService
	workspace    *models.Workspace
	member       *models.WorkspaceMember
}

func setupStatsTestEnv(t *testing.T) statsTestEnv {
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
		&models.Subtask{},
		&models.TaskAssignee{},
		&models.TaskActivity{},
	)
	require.NoError(t, err)

	hash := "hashed"
	user := &models.User{
		ID:           uuid.NewString(),
		Email:        "stats@example.com",
		Username:     "stats",
		PasswordHash: &hash,
		RecoveryCode: "RECOVERY",
	}
	require.NoError(t, db.Create(user).Error)

	workspace := &models.Workspace{
		ID:         uuid.NewString(),
		Name:       "Stats",
		ImageURL:   "https://avatar.vercel.sh/stats",
		InviteCode: "STATS1",
		OwnerID:    user.ID,
	}
	require.NoError(t, db.Create(workspace).Error)

	member := &models.WorkspaceMember{
		ID:          uuid.NewString(),
		Role:        models.RoleOwner,
		UserID:      user.ID,
		WorkspaceID: workspace.ID,
	}
	require.NoError(t, db.Create(member).Error)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	t.Cleanup(func() {
		sqlDB.Close()
	})

	return statsTestEnv{
		db:           db,
		statsService: NewStatsService(repository.NewStatsRepository(db), repository.NewProjectRepository(db)),
		workspace:    workspace,
		member:       member,
	}
}

func (env statsTestEnv) createProject(t *testing.T, status models.Status, staffed bool) *models.Project {
	t.Helper()

	project := &models.Project{
		ID:          uuid.NewString(),
		Title:       "P " + uuid.NewString()[:6],
		Status:      status,
		Priority:    models.PriorityNone,
		WorkspaceID: env.workspace.ID,
	}
	require.NoError(t, env.db.Create(project).Error)

	if staffed {
		require.NoError(t, env.db.Create(&models.ProjectMember{
			ID:        uuid.NewString(),
			ProjectID: project.ID,
			MemberID:  env.member.ID,
		}).Error)
	}
	return project
}

func (env statsTestEnv) createTask(t *testing.T, projectID string, status models.Status) *models.Task {
	t.Helper()

	task := &models.Task{
		ID:        uuid.NewString(),
		Name:      "T " + uuid.NewString()[:6],
		Status:    status,
		Priority:  models.PriorityNone,
		ProjectID: projectID,
	}
	require.NoError(t, env.db.Create(task).Error)
	return task
}

func TestStatsService_Overall_IgnoresCompletedProjects(t *testing.T) {
	env := setupStatsTestEnv(t)

	active := env.createProject(t, models.StatusInProgress, false)
	archived := env.createProject(t, models.StatusCompleted, false)

	env.createTask(t, active.ID, models.StatusCompleted)
	env.createTask(t, active.ID, models.StatusInProgress)
	env.createTask(t, active.ID, models.StatusTodo)
	env.createTask(t, active.ID, models.StatusCompleted)

	// Tasks in a completed project stay out of the numbers
	env.createTask(t, archived.ID, models.StatusCompleted)

	stats, err := env.statsService.Overall(env.workspace.ID)
	require.NoError(t, err)
	require.Equal(t, int64(1), stats.ActiveProjects)
	require.Equal(t, int64(4), stats.TotalTasks)
	require.Equal(t, int64(2), stats.CompletedTasks)
	require.Equal(t, int64(1), stats.InProgressTasks)
	require.InDelta(t, 50.0, stats.CompletionRate, 0.001)
}

func TestStatsService_Overall_EmptyWorkspace(t *testing.T) {
	env := setupStatsTestEnv(t)

	stats, err := env.statsService.Overall(env.workspace.ID)
	require.NoError(t, err)
	require.Zero(t, stats.TotalTasks)
	require.Zero(t, stats.CompletionRate)
}

func TestStatsService_Productivity_BucketsByWeekday(t *testing.T) {
	env := setupStatsTestEnv(t)

	// Freeze time on a Thursday
	now := time.Date(2024, 5, 16, 15, 0, 0, 0, time.UTC)
	env.statsService.now = func() time.Time { return now }

	project := env.createProject(t, models.StatusInProgress, false)
	task := env.createTask(t, project.ID, models.StatusCompleted)

	monday := time.Date(2024, 5, 13, 10, 0, 0, 0, time.UTC)
	record := func(status models.Status, at time.Time) {
		require.NoError(t, env.db.Create(&models.TaskActivity{
			ID:        uuid.NewString(),
			Status:    status,
			TaskID:    task.ID,
			ChangedBy: env.member.ID,
			ChangedAt: at,
		}).Error)
	}

	record(models.StatusCompleted, monday)
	record(models.StatusInReview, monday)
	record(models.StatusAbandoned, monday.AddDate(0, 0, 2))
	// Last week's activity stays out of this week's chart
	record(models.StatusCompleted, monday.AddDate(0, 0, -3))

	days, err := env.statsService.Productivity(env.workspace.ID, RangeThisWeek)
	require.NoError(t, err)
	require.Len(t, days, 7)

	require.Equal(t, "Monday", days[0].Day)
	require.Equal(t, 1, days[0].Completed)
	require.Equal(t, 1, days[0].InReview)
	require.Equal(t, 2, days[0].Total)

	require.Equal(t, "Wednesday", days[2].Day)
	require.Equal(t, 1, days[2].Abandoned)

	lastWeek, err := env.statsService.Productivity(env.workspace.ID, RangeLastWeek)
	require.NoError(t, err)
	require.Equal(t, 1, lastWeek[4].Completed) // the previous Friday

	_, err = env.statsService.Productivity(env.workspace.ID, "someday")
	require.ErrorIs(t, err, ErrInvalidStatsRange)
}

func TestStatsService_Due_FiltersFinishedAndUndated(t *testing.T) {
	env := setupStatsTestEnv(t)

	project := env.createProject(t, models.StatusInProgress, true)
	dueDate := time.Now().AddDate(0, 0, 3)
	require.NoError(t, env.db.Model(project).Update("due_date", dueDate).Error)

	dated := env.createTask(t, project.ID, models.StatusTodo)
	require.NoError(t, env.db.Model(dated).Update("due_date", dueDate).Error)
	finished := env.createTask(t, project.ID, models.StatusCompleted)
	require.NoError(t, env.db.Model(finished).Update("due_date", dueDate).Error)
	env.createTask(t, project.ID, models.StatusTodo) // undated

	for _, taskID := range []string{dated.ID, finished.ID} {
		require.NoError(t, env.db.Create(&models.TaskAssignee{
			ID:         uuid.NewString(),
			TaskID:     taskID,
			MemberID:   env.member.ID,
			AssignedAt: time.Now(),
		}).Error)
	}

	due, err := env.statsService.Due(env.workspace.ID, env.member.ID)
	require.NoError(t, err)
	require.Len(t, due.Projects, 1)
	require.Len(t, due.Tasks, 1)
	require.Equal(t, dated.ID, due.Tasks[0].ID)
}

func TestStatsService_MemberTasks_OnlyAssigned(t *testing.T) {
	env := setupStatsTestEnv(t)

	project := env.createProject(t, models.StatusInProgress, true)
	mine := env.createTask(t, project.ID, models.StatusTodo)
	env.createTask(t, project.ID, models.StatusTodo) // unassigned

	require.NoError(t, env.db.Create(&models.TaskAssignee{
		ID:         uuid.NewString(),
		TaskID:     mine.ID,
		MemberID:   env.member.ID,
		AssignedAt: time.Now(),
	}).Error)

	tasks, err := env.statsService.MemberTasks(env.workspace.ID, env.member.ID)
	require.NoError(t, err)
	require.Len(t, tasks, 1)
	require.Equal(t, mine.ID, tasks[0].ID)
}
