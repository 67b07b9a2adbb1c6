package api

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/hay-kot/criterio"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hay-kot/kpi/pkg/httpclient"
)

type reported struct {
	mu  sync.Mutex
	ops []string
}

func (r *reported) fn(op string, _ error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.ops = append(r.ops, op)
}

func (r *reported) list() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.ops...)
}

func newTestClient(t *testing.T, mux *http.ServeMux) (*Client, *reported) {
	t.Helper()
	ts := httptest.NewServer(mux)
	t.Cleanup(ts.Close)

	r := &reported{}
	return New(httpclient.New(ts.URL), r.fn, zerolog.Nop()), r
}

func TestUsers_List(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/users", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`[{"id":1,"name":"Ana","email":"ana@example.com","role":"dev","total_hours":12.5}]`))
	})
	c, rep := newTestClient(t, mux)

	users, err := c.Users.List(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []User{{ID: 1, Name: "Ana", Email: "ana@example.com", Role: "dev", TotalHours: 12.5}}, users)
	assert.Empty(t, rep.list())
}

func TestUsers_CreateUpdateDelete(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/users", func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		assert.JSONEq(t, `{"name":"Ana","email":"ana@example.com","role":"dev"}`, string(body))
		_, _ = w.Write([]byte(`{"id":7,"name":"Ana","email":"ana@example.com","role":"dev"}`))
	})
	mux.HandleFunc("PUT /api/users/7", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"id":7,"name":"Ana M","email":"ana@example.com","role":"lead"}`))
	})
	mux.HandleFunc("DELETE /api/users/7", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"message":"deleted"}`))
	})
	c, _ := newTestClient(t, mux)
	ctx := context.Background()

	u, err := c.Users.Create(ctx, User{Name: "Ana", Email: "ana@example.com", Role: "dev"})
	require.NoError(t, err)
	assert.Equal(t, 7, u.ID)

	u, err = c.Users.Update(ctx, 7, User{Name: "Ana M", Email: "ana@example.com", Role: "lead"})
	require.NoError(t, err)
	assert.Equal(t, "lead", u.Role)

	require.NoError(t, c.Users.Delete(ctx, 7))
}

func TestUsers_CreateRejectsInvalid(t *testing.T) {
	c, rep := newTestClient(t, http.NewServeMux())

	_, err := c.Users.Create(context.Background(), User{Name: "Ana"})

	var fieldErrs criterio.FieldErrors
	require.ErrorAs(t, err, &fieldErrs)
	assert.Len(t, fieldErrs, 2)
	assert.Empty(t, rep.list(), "validation errors are not request failures")
}

func TestProjects_ListByModule(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/projects/module/evom", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`[{"id":3,"name":"Grid","description":"","module_type":"evom","status":"active"}]`))
	})
	c, _ := newTestClient(t, mux)

	projects, err := c.Projects.ListByModule(context.Background(), ModuleEvom)
	require.NoError(t, err)
	require.Len(t, projects, 1)
	assert.Equal(t, ModuleEvom, projects[0].ModuleType)

	_, err = c.Projects.ListByModule(context.Background(), "marketing")
	assert.Error(t, err)
}

func TestProjects_CreateValidatesModule(t *testing.T) {
	c, _ := newTestClient(t, http.NewServeMux())

	_, err := c.Projects.Create(context.Background(), Project{Name: "X", ModuleType: "nope"})

	var fieldErrs criterio.FieldErrors
	require.ErrorAs(t, err, &fieldErrs)
	assert.Equal(t, "module_type", fieldErrs[0].Field)
}

func TestTasks_CreateAndListByDate(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/tasks", func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		assert.JSONEq(t, `{"user_id":1,"project_id":2,"description":"review","hours":1.5,"date":"2025-03-01"}`, string(body))
		_, _ = w.Write([]byte(`{"id":9,"user_id":1,"project_id":2,"description":"review","hours":1.5,"date":"2025-03-01"}`))
	})
	mux.HandleFunc("GET /api/tasks/date/2025-03-01", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`[{"id":9,"user_id":1,"project_id":2,"description":"review","hours":1.5,"date":"2025-03-01","user_name":"Ana","project_name":"Grid","module_type":"evom"}]`))
	})
	c, _ := newTestClient(t, mux)
	ctx := context.Background()

	task, err := c.Tasks.Create(ctx, TaskCreate{UserID: 1, ProjectID: 2, Description: "review", Hours: 1.5, Date: "2025-03-01"})
	require.NoError(t, err)
	assert.Equal(t, 9, task.ID)

	tasks, err := c.Tasks.ListByDate(ctx, "2025-03-01")
	require.NoError(t, err)
	require.Len(t, tasks, 1)
	assert.Equal(t, "Grid", tasks[0].ProjectName)

	_, err = c.Tasks.ListByDate(ctx, "01/03/2025")
	assert.Error(t, err)
}

func TestTaskCreate_Validate(t *testing.T) {
	tests := []struct {
		name   string
		task   TaskCreate
		fields []string
	}{
		{"valid", TaskCreate{UserID: 1, ProjectID: 1, Description: "x", Hours: 8, Date: "2025-01-31"}, nil},
		{"zero hours", TaskCreate{UserID: 1, ProjectID: 1, Description: "x", Hours: 0, Date: "2025-01-31"}, []string{"hours"}},
		{"too many hours", TaskCreate{UserID: 1, ProjectID: 1, Description: "x", Hours: 25, Date: "2025-01-31"}, []string{"hours"}},
		{"bad date", TaskCreate{UserID: 1, ProjectID: 1, Description: "x", Hours: 1, Date: "2025-02-30"}, []string{"date"}},
		{"missing everything", TaskCreate{}, []string{"description", "date", "user_id", "project_id", "hours"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.task.Validate()
			if tt.fields == nil {
				assert.NoError(t, err)
				return
			}

			var fieldErrs criterio.FieldErrors
			require.ErrorAs(t, err, &fieldErrs)
			got := make([]string, 0, len(fieldErrs))
			for _, fe := range fieldErrs {
				got = append(got, fe.Field)
			}
			assert.ElementsMatch(t, tt.fields, got)
		})
	}
}

func TestStats(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/stats/overview", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"total_users":2,"total_hours":10,"active_projects":1,"total_tasks":4,"top_user":{"name":"Ana","hours":7},"average_hours_per_user":5}`))
	})
	mux.HandleFunc("GET /api/stats/daily/2025-03-01", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"date":"2025-03-01","total_hours":3,"user_stats":[{"name":"Ana","daily_hours":3},{"name":"Bo","daily_hours":null}]}`))
	})
	c, _ := newTestClient(t, mux)
	ctx := context.Background()

	o, err := c.Stats.Overview(ctx)
	require.NoError(t, err)
	assert.Equal(t, TopUser{Name: "Ana", Hours: 7}, o.TopUser)
	assert.InDelta(t, 5.0, o.AverageHoursPerUser, 0.001)

	d, err := c.Stats.Daily(ctx, "2025-03-01")
	require.NoError(t, err)
	require.Len(t, d.UserStats, 2)
	require.NotNil(t, d.UserStats[0].DailyHours)
	assert.InDelta(t, 3.0, *d.UserStats[0].DailyHours, 0.001)
	assert.Nil(t, d.UserStats[1].DailyHours)
}

func TestExports(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/export/json", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"export_info":{"timestamp":"2025-03-01T10:00:00","version":"1.0.0","format":"json"},"users":[],"projects":[],"tasks":[]}`))
	})
	mux.HandleFunc("GET /api/export/excel", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("PK\x03\x04"))
	})
	c, _ := newTestClient(t, mux)
	ctx := context.Background()

	e, err := c.Export.JSON(ctx)
	require.NoError(t, err)
	assert.Equal(t, "1.0.0", e.ExportInfo.Version)

	b, err := c.Export.Excel(ctx)
	require.NoError(t, err)
	assert.Equal(t, []byte("PK\x03\x04"), b)
}

func TestClient_FailuresAreWrappedAndReported(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/tasks", func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	})
	c, rep := newTestClient(t, mux)

	_, err := c.Tasks.List(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "tasks.list")

	var se *httpclient.StatusError
	require.True(t, errors.As(err, &se))
	assert.Equal(t, http.StatusInternalServerError, se.StatusCode)
	assert.Equal(t, []string{"tasks.list"}, rep.list())
}

func TestClient_CancelledCallsAreNotReported(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/users", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`[]`))
	})
	c, rep := newTestClient(t, mux)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := c.Users.List(ctx)
	require.Error(t, err)
	assert.Empty(t, rep.list())
}

func TestDay(t *testing.T) {
	assert.NoError(t, parseDay("2025-12-31"))
	assert.Error(t, parseDay("2025-13-01"))
}
