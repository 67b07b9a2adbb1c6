package api

import (
	"context"

	"github.com/sourcegraph/conc/pool"
)

// Dashboard is everything the overview screen shows.
type Dashboard struct {
	Users    []User
	Projects []Project
	Tasks    []Task
	Overview Overview
}

// Dashboard loads users, projects, tasks and the overview concurrently. The
// first failure cancels the remaining calls; all failures are returned
// joined.
func (c *Client) Dashboard(ctx context.Context) (Dashboard, error) {
	var d Dashboard

	p := pool.New().WithContext(ctx).WithCancelOnError()
	p.Go(func(ctx context.Context) (err error) {
		d.Users, err = c.Users.List(ctx)
		return err
	})
	p.Go(func(ctx context.Context) (err error) {
		d.Projects, err = c.Projects.List(ctx)
		return err
	})
	p.Go(func(ctx context.Context) (err error) {
		d.Tasks, err = c.Tasks.List(ctx)
		return err
	})
	p.Go(func(ctx context.Context) (err error) {
		d.Overview, err = c.Stats.Overview(ctx)
		return err
	})

	if err := p.Wait(); err != nil {
		return Dashboard{}, err
	}
	return d, nil
}

// HoursByModule sums task hours per module type.
func HoursByModule(tasks []Task) map[ModuleType]float64 {
	out := make(map[ModuleType]float64, len(ModuleTypes))
	for _, t := range tasks {
		out[t.ModuleType] += t.Hours
	}
	return out
}
