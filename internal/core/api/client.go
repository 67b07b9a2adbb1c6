// Package api wraps the KPI backend REST endpoints.
package api

import (
	"context"
	"fmt"
	"net/url"
	"strconv"

	"github.com/rs/zerolog"

	"github.com/hay-kot/kpi/internal/core/eventbus"
	"github.com/hay-kot/kpi/pkg/httpclient"
)

// FailureReporter is told about every failed call. op names the call, for
// example "tasks.list".
type FailureReporter func(op string, err error)

// ReportToBus returns a FailureReporter that publishes api.request-failed.
func ReportToBus(bus *eventbus.EventBus) FailureReporter {
	return func(op string, err error) {
		bus.PublishAPIRequestFailed(eventbus.APIRequestFailedPayload{Operation: op, Err: err})
	}
}

// Client groups the backend services.
type Client struct {
	Users    *Users
	Projects *Projects
	Tasks    *Tasks
	Stats    *Stats
	Export   *Exports

	http   *httpclient.Client
	report FailureReporter
	log    zerolog.Logger
}

// New creates a Client over http. report may be nil.
func New(hc *httpclient.Client, report FailureReporter, log zerolog.Logger) *Client {
	if report == nil {
		report = func(string, error) {}
	}

	c := &Client{http: hc, report: report, log: log}
	c.Users = &Users{c: c}
	c.Projects = &Projects{c: c}
	c.Tasks = &Tasks{c: c}
	c.Stats = &Stats{c: c}
	c.Export = &Exports{c: c}
	return c
}

// call runs fn and, on failure, wraps the error with op and reports it.
func (c *Client) call(ctx context.Context, op string, fn func() error) error {
	err := fn()
	if err == nil {
		return nil
	}

	err = fmt.Errorf("%s: %w", op, err)
	if ctx.Err() == nil {
		c.log.Warn().Ctx(ctx).Err(err).Str("op", op).Msg("api call failed")
		c.report(op, err)
	}
	return err
}

func itoa(id int) string {
	return strconv.Itoa(id)
}

// Users wraps /api/users.
type Users struct{ c *Client }

func (s *Users) List(ctx context.Context) ([]User, error) {
	var out []User
	err := s.c.call(ctx, "users.list", func() error {
		return s.c.http.GetJSON(ctx, "/api/users", &out)
	})
	return out, err
}

func (s *Users) Create(ctx context.Context, u User) (User, error) {
	if err := u.Validate(); err != nil {
		return User{}, err
	}

	var out User
	err := s.c.call(ctx, "users.create", func() error {
		return s.c.http.PostJSON(ctx, "/api/users", u, &out)
	})
	return out, err
}

func (s *Users) Update(ctx context.Context, id int, u User) (User, error) {
	if err := u.Validate(); err != nil {
		return User{}, err
	}

	var out User
	err := s.c.call(ctx, "users.update", func() error {
		return s.c.http.PutJSON(ctx, "/api/users/"+itoa(id), u, &out)
	})
	return out, err
}

func (s *Users) Delete(ctx context.Context, id int) error {
	return s.c.call(ctx, "users.delete", func() error {
		return s.c.http.Delete(ctx, "/api/users/"+itoa(id))
	})
}

// Projects wraps /api/projects.
type Projects struct{ c *Client }

func (s *Projects) List(ctx context.Context) ([]Project, error) {
	var out []Project
	err := s.c.call(ctx, "projects.list", func() error {
		return s.c.http.GetJSON(ctx, "/api/projects", &out)
	})
	return out, err
}

func (s *Projects) ListByModule(ctx context.Context, module ModuleType) ([]Project, error) {
	if !module.Valid() {
		return nil, fmt.Errorf("projects.list_by_module: unknown module type %q", module)
	}

	var out []Project
	err := s.c.call(ctx, "projects.list_by_module", func() error {
		return s.c.http.GetJSON(ctx, "/api/projects/module/"+url.PathEscape(string(module)), &out)
	})
	return out, err
}

func (s *Projects) Create(ctx context.Context, p Project) (Project, error) {
	if err := p.Validate(); err != nil {
		return Project{}, err
	}

	var out Project
	err := s.c.call(ctx, "projects.create", func() error {
		return s.c.http.PostJSON(ctx, "/api/projects", p, &out)
	})
	return out, err
}

func (s *Projects) Delete(ctx context.Context, id int) error {
	return s.c.call(ctx, "projects.delete", func() error {
		return s.c.http.Delete(ctx, "/api/projects/"+itoa(id))
	})
}

// Tasks wraps /api/tasks.
type Tasks struct{ c *Client }

func (s *Tasks) List(ctx context.Context) ([]Task, error) {
	var out []Task
	err := s.c.call(ctx, "tasks.list", func() error {
		return s.c.http.GetJSON(ctx, "/api/tasks", &out)
	})
	return out, err
}

func (s *Tasks) ListByUser(ctx context.Context, userID int) ([]Task, error) {
	var out []Task
	err := s.c.call(ctx, "tasks.list_by_user", func() error {
		return s.c.http.GetJSON(ctx, "/api/tasks/user/"+itoa(userID), &out)
	})
	return out, err
}

func (s *Tasks) ListByDate(ctx context.Context, date string) ([]Task, error) {
	if err := parseDay(date); err != nil {
		return nil, fmt.Errorf("tasks.list_by_date: %w", err)
	}

	var out []Task
	err := s.c.call(ctx, "tasks.list_by_date", func() error {
		return s.c.http.GetJSON(ctx, "/api/tasks/date/"+date, &out)
	})
	return out, err
}

func (s *Tasks) Create(ctx context.Context, t TaskCreate) (Task, error) {
	if err := t.Validate(); err != nil {
		return Task{}, err
	}

	var out Task
	err := s.c.call(ctx, "tasks.create", func() error {
		return s.c.http.PostJSON(ctx, "/api/tasks", t, &out)
	})
	return out, err
}

func (s *Tasks) Delete(ctx context.Context, id int) error {
	return s.c.call(ctx, "tasks.delete", func() error {
		return s.c.http.Delete(ctx, "/api/tasks/"+itoa(id))
	})
}

// Stats wraps /api/stats.
type Stats struct{ c *Client }

func (s *Stats) Overview(ctx context.Context) (Overview, error) {
	var out Overview
	err := s.c.call(ctx, "stats.overview", func() error {
		return s.c.http.GetJSON(ctx, "/api/stats/overview", &out)
	})
	return out, err
}

func (s *Stats) Daily(ctx context.Context, date string) (DailyStats, error) {
	if err := parseDay(date); err != nil {
		return DailyStats{}, fmt.Errorf("stats.daily: %w", err)
	}

	var out DailyStats
	err := s.c.call(ctx, "stats.daily", func() error {
		return s.c.http.GetJSON(ctx, "/api/stats/daily/"+date, &out)
	})
	return out, err
}

// Exports wraps /api/export.
type Exports struct{ c *Client }

func (s *Exports) JSON(ctx context.Context) (Export, error) {
	var out Export
	err := s.c.call(ctx, "export.json", func() error {
		return s.c.http.GetJSON(ctx, "/api/export/json", &out)
	})
	return out, err
}

// XML returns the raw XML export document.
func (s *Exports) XML(ctx context.Context) ([]byte, error) {
	var out []byte
	err := s.c.call(ctx, "export.xml", func() error {
		var err error
		out, err = s.c.http.GetBytes(ctx, "/api/export/xml")
		return err
	})
	return out, err
}

// Excel returns the raw spreadsheet bytes.
func (s *Exports) Excel(ctx context.Context) ([]byte, error) {
	var out []byte
	err := s.c.call(ctx, "export.excel", func() error {
		var err error
		out, err = s.c.http.GetBytes(ctx, "/api/export/excel")
		return err
	})
	return out, err
}
