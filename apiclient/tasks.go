package apiclient

import (
	"context"
	"net/url"
	"strconv"

	"pkt.systems/dlmgr/schema"
)

// ListTasks returns the caller's scheduled tasks.
func (c *Client) ListTasks(ctx context.Context) ([]schema.ScheduledTask, error) {
	var tasks []schema.ScheduledTask
	err := c.call(ctx, routeListTasks, nil, nil, nil, &tasks)
	return tasks, err
}

// AllTasks returns every user's scheduled tasks. Admin only.
func (c *Client) AllTasks(ctx context.Context) ([]schema.ScheduledTask, error) {
	var tasks []schema.ScheduledTask
	err := c.call(ctx, routeAllTasks, nil, nil, nil, &tasks)
	return tasks, err
}

// GetTask returns one scheduled task.
func (c *Client) GetTask(ctx context.Context, id schema.TaskID) (schema.ScheduledTask, error) {
	var task schema.ScheduledTask
	err := c.call(ctx, routeGetTask, idArg(id), nil, nil, &task)
	return task, err
}

// CreateTask schedules a task.
func (c *Client) CreateTask(ctx context.Context, req schema.ScheduledTaskCreate) (schema.ScheduledTask, error) {
	var task schema.ScheduledTask
	err := c.call(ctx, routeCreateTask, nil, nil, req, &task)
	return task, err
}

// UpdateTask applies a partial update to a task.
func (c *Client) UpdateTask(ctx context.Context, id schema.TaskID, update schema.ScheduledTaskUpdate) (schema.ScheduledTask, error) {
	var task schema.ScheduledTask
	err := c.call(ctx, routeUpdateTask, idArg(id), nil, update, &task)
	return task, err
}

// DeleteTask removes a task.
func (c *Client) DeleteTask(ctx context.Context, id schema.TaskID) error {
	return c.call(ctx, routeDeleteTask, idArg(id), nil, nil, nil)
}

// Cleanup deletes the caller's files older than days.
func (c *Client) Cleanup(ctx context.Context, days int) (schema.CleanupResult, error) {
	var out schema.CleanupResult
	err := c.call(ctx, routeCleanup, nil, nil, schema.CleanupRequest{Days: days}, &out)
	return out, err
}

// CleanupCount previews what Cleanup would delete.
func (c *Client) CleanupCount(ctx context.Context, days int) (schema.CleanupCount, error) {
	var out schema.CleanupCount
	err := c.call(ctx, routeCleanupCount, nil, url.Values{"days": {strconv.Itoa(days)}}, nil, &out)
	return out, err
}
