package services

import (
	"errors"
	"fmt"
	"time"

	"github.com/thecodingmontana/zadaci-api/internal/models"
	"github.com/thecodingmontana/zadaci-api/internal/repository"
)

var ErrInvalidStatsRange = errors.New("range must be \"this\" or \"last\"")

// Week ranges accepted by the productivity stats.
const (
	RangeThisWeek = "this"
	RangeLastWeek = "last"
)

// OverallStats summarizes work across a workspace's active projects.
// Completed projects are archived from the numbers.
type OverallStats struct {
	ActiveProjects  int64   `json:"active_projects"`
	TotalTasks      int64   `json:"total_tasks"`
	CompletedTasks  int64   `json:"completed_tasks"`
	InProgressTasks int64   `json:"in_progress_tasks"`
	CompletionRate  float64 `json:"completion_rate"`
}

// DayStat is one weekday bucket of the productivity chart.
type DayStat struct {
	Day       string `json:"day"`
	Completed int    `json:"completed"`
	InReview  int    `json:"in_review"`
	Abandoned int    `json:"abandoned"`
	Total     int    `json:"total"`
}

// DueItems lists the member's dated, unfinished work.
type DueItems struct {
	Projects []models.Project `json:"projects"`
	Tasks    []models.Task    `json:"tasks"`
}

// StatsService computes workspace dashboards.
type StatsService struct {
	statsRepo   repository.StatsRepository
	projectRepo repository.ProjectRepository
	now         func() time.Time
}

// NewStatsService creates a new StatsService.
func NewStatsService(statsRepo repository.StatsRepository, projectRepo repository.ProjectRepository) *StatsService {
	return &StatsService{
		statsRepo:   statsRepo,
		projectRepo: projectRepo,
		now:         time.Now,
	}
}

// Overall computes task totals across the workspace's active projects.
func (s *StatsService) Overall(workspaceID string) (*OverallStats, error) {
	projectIDs, err := s.statsRepo.ActiveProjectIDs(workspaceID)
	if err != nil {
		return nil, fmt.Errorf("failed to list active projects: %w", err)
	}

	stats := &OverallStats{ActiveProjects: int64(len(projectIDs))}
	if len(projectIDs) == 0 {
		return stats, nil
	}

	if stats.TotalTasks, err = s.statsRepo.CountTasks(projectIDs, nil); err != nil {
		return nil, fmt.Errorf("failed to count tasks: %w", err)
	}

	completed := models.StatusCompleted
	if stats.CompletedTasks, err = s.statsRepo.CountTasks(projectIDs, &completed); err != nil {
		return nil, fmt.Errorf("failed to count completed tasks: %w", err)
	}

	inProgress := models.StatusInProgress
	if stats.InProgressTasks, err = s.statsRepo.CountTasks(projectIDs, &inProgress); err != nil {
		return nil, fmt.Errorf("failed to count in-progress tasks: %w", err)
	}

	if stats.TotalTasks > 0 {
		stats.CompletionRate = float64(stats.CompletedTasks) / float64(stats.TotalTasks) * 100
	}
	return stats, nil
}

// Productivity buckets the workspace's task activity by weekday for the
// requested week. Weeks start on Monday.
func (s *StatsService) Productivity(workspaceID, weekRange string) ([]DayStat, error) {
	if weekRange == "" {
		weekRange = RangeThisWeek
	}
	if weekRange != RangeThisWeek && weekRange != RangeLastWeek {
		return nil, ErrInvalidStatsRange
	}

	from := startOfWeek(s.now())
	if weekRange == RangeLastWeek {
		from = from.AddDate(0, 0, -7)
	}
	to := from.AddDate(0, 0, 7)

	activities, err := s.statsRepo.ListActivityBetween(workspaceID, from, to)
	if err != nil {
		return nil, fmt.Errorf("failed to list activity: %w", err)
	}

	days := make([]DayStat, 7)
	for i := range days {
		days[i].Day = from.AddDate(0, 0, i).Weekday().String()
	}

	for _, activity := range activities {
		bucket := int(activity.ChangedAt.Sub(from).Hours() / 24)
		if bucket < 0 || bucket > 6 {
			continue
		}
		switch activity.Status {
		case models.StatusCompleted:
			days[bucket].Completed++
		case models.StatusInReview:
			days[bucket].InReview++
		case models.StatusAbandoned:
			days[bucket].Abandoned++
		}
		days[bucket].Total++
	}
	return days, nil
}

// WorkspaceTasks flattens every task of the workspace across its projects.
func (s *StatsService) WorkspaceTasks(workspaceID string) ([]models.Task, error) {
	projects, err := s.projectRepo.ListByWorkspace(workspaceID, true)
	if err != nil {
		return nil, fmt.Errorf("failed to list projects: %w", err)
	}

	tasks := []models.Task{}
	for _, project := range projects {
		tasks = append(tasks, project.Tasks...)
	}
	return tasks, nil
}

// MemberTasks returns the tasks assigned to a member across the projects
// they are staffed on.
func (s *StatsService) MemberTasks(workspaceID, memberID string) ([]models.Task, error) {
	projects, err := s.projectRepo.ListForMember(workspaceID, memberID)
	if err != nil {
		return nil, fmt.Errorf("failed to list projects: %w", err)
	}

	tasks := []models.Task{}
	for _, project := range projects {
		for _, task := range project.Tasks {
			for _, assignee := range task.Assignees {
				if assignee.MemberID == memberID {
					tasks = append(tasks, task)
					break
				}
			}
		}
	}
	return tasks, nil
}

// Due returns the member's dated, unfinished projects and tasks.
func (s *StatsService) Due(workspaceID, memberID string) (*DueItems, error) {
	projects, err := s.projectRepo.ListForMember(workspaceID, memberID)
	if err != nil {
		return nil, fmt.Errorf("failed to list projects: %w", err)
	}

	due := &DueItems{Projects: []models.Project{}, Tasks: []models.Task{}}
	for _, project := range projects {
		for _, task := range project.Tasks {
			if task.DueDate == nil || task.Status == models.StatusCompleted {
				continue
			}
			for _, assignee := range task.Assignees {
				if assignee.MemberID == memberID {
					due.Tasks = append(due.Tasks, task)
					break
				}
			}
		}

		if project.DueDate != nil && project.Status != models.StatusCompleted {
			project.Tasks = nil
			due.Projects = append(due.Projects, project)
		}
	}
	return due, nil
}

// startOfWeek returns midnight of the Monday on or before t.
func startOfWeek(t time.Time) time.Time {
	offset := (int(t.Weekday()) + 6) % 7
	day := t.AddDate(0, 0, -offset)
	return time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, t.Location())
}
