package api

import (
	"fmt"
	"time"
)

// ModuleType groups projects on the dashboard.
type ModuleType string

const (
	ModuleProiecte    ModuleType = "proiecte"
	ModuleEvom        ModuleType = "evom"
	ModuleOperational ModuleType = "operational"
)

// ModuleTypes lists the known module types in display order.
var ModuleTypes = []ModuleType{ModuleProiecte, ModuleEvom, ModuleOperational}

// Valid reports whether m is a known module type.
func (m ModuleType) Valid() bool {
	switch m {
	case ModuleProiecte, ModuleEvom, ModuleOperational:
		return true
	}
	return false
}

// DateLayout is the wire format of task dates.
const DateLayout = time.DateOnly

// User is a tracked person. TotalHours is computed by the backend.
type User struct {
	ID         int     `json:"id,omitempty"`
	Name       string  `json:"name"`
	Email      string  `json:"email"`
	Role       string  `json:"role"`
	TotalHours float64 `json:"total_hours,omitempty"`
}

// Project is a unit of work tasks are logged against.
type Project struct {
	ID          int        `json:"id,omitempty"`
	Name        string     `json:"name"`
	Description string     `json:"description"`
	ModuleType  ModuleType `json:"module_type"`
	Status      string     `json:"status,omitempty"`
	TotalHours  float64    `json:"total_hours,omitempty"`
}

// Task is a time entry. The name fields are joined in by the backend on
// list endpoints.
type Task struct {
	ID          int        `json:"id,omitempty"`
	UserID      int        `json:"user_id"`
	ProjectID   int        `json:"project_id"`
	Description string     `json:"description"`
	Hours       float64    `json:"hours"`
	Date        string     `json:"date"`
	CreatedAt   string     `json:"created_at,omitempty"`
	UserName    string     `json:"user_name,omitempty"`
	ProjectName string     `json:"project_name,omitempty"`
	ModuleType  ModuleType `json:"module_type,omitempty"`
}

// TaskCreate is the body of a task creation request.
type TaskCreate struct {
	UserID      int     `json:"user_id"`
	ProjectID   int     `json:"project_id"`
	Description string  `json:"description"`
	Hours       float64 `json:"hours"`
	Date        string  `json:"date"`
}

// TopUser is the user with the most logged hours.
type TopUser struct {
	Name  string  `json:"name"`
	Hours float64 `json:"hours"`
}

// Overview holds the headline statistics.
type Overview struct {
	TotalUsers          int     `json:"total_users"`
	TotalHours          float64 `json:"total_hours"`
	ActiveProjects      int     `json:"active_projects"`
	TotalTasks          int     `json:"total_tasks"`
	TopUser             TopUser `json:"top_user"`
	AverageHoursPerUser float64 `json:"average_hours_per_user"`
}

// UserDailyHours is one row of the daily breakdown. DailyHours is nil for
// users with no tasks that day.
type UserDailyHours struct {
	Name       string   `json:"name"`
	DailyHours *float64 `json:"daily_hours"`
}

// DailyStats holds the hours logged on a single date.
type DailyStats struct {
	Date       string           `json:"date"`
	TotalHours float64          `json:"total_hours"`
	UserStats  []UserDailyHours `json:"user_stats"`
}

// ExportInfo describes an export document.
type ExportInfo struct {
	Timestamp string `json:"timestamp"`
	Version   string `json:"version"`
	Format    string `json:"format"`
}

// Export is the full JSON export.
type Export struct {
	ExportInfo ExportInfo `json:"export_info"`
	Users      []User     `json:"users"`
	Projects   []Project  `json:"projects"`
	Tasks      []Task     `json:"tasks"`
}

// Day formats t in the task date layout.
func Day(t time.Time) string {
	return t.Format(DateLayout)
}

func parseDay(s string) error {
	if _, err := time.Parse(DateLayout, s); err != nil {
		return fmt.Errorf("date must be YYYY-MM-DD, got %q", s)
	}
	return nil
}
