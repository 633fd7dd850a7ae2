package apiclient

import (
	"context"

	"pkt.systems/dlmgr/schema"
)

// ListDownloadSources returns the sources a download can be started from.
func (c *Client) ListDownloadSources(ctx context.Context) ([]schema.NamedItem, error) {
	var items []schema.NamedItem
	err := c.call(ctx, routeListSources, nil, nil, nil, &items)
	return items, err
}

// StartDownload starts a download job for the named source.
func (c *Client) StartDownload(ctx context.Context, name string, createSymlinks bool) (schema.JobStatus, error) {
	var status schema.JobStatus
	err := c.call(ctx, routeStart, []string{name}, nil, schema.StartDownloadRequest{CreateSymlinks: createSymlinks}, &status)
	return status, err
}

// JobStatus returns the state of a job.
func (c *Client) JobStatus(ctx context.Context, id schema.JobID) (schema.JobStatus, error) {
	var status schema.JobStatus
	err := c.call(ctx, routeJobStatus, idArg(id), nil, nil, &status)
	return status, err
}

// StopJob asks a job to finish its current item and stop.
func (c *Client) StopJob(ctx context.Context, id schema.JobID) error {
	return c.call(ctx, routeStopJob, idArg(id), nil, struct{}{}, nil)
}

// CancelJob aborts a job immediately.
func (c *Client) CancelJob(ctx context.Context, id schema.JobID) error {
	return c.call(ctx, routeCancelJob, idArg(id), nil, struct{}{}, nil)
}

// StopAllJobs stops every running job.
func (c *Client) StopAllJobs(ctx context.Context) error {
	return c.call(ctx, routeStopAll, nil, nil, struct{}{}, nil)
}

// CancelAllJobs cancels every running job.
func (c *Client) CancelAllJobs(ctx context.Context) error {
	return c.call(ctx, routeCancelAll, nil, nil, struct{}{}, nil)
}

// UsersWithJobs returns the users that currently run a job. Admin only.
func (c *Client) UsersWithJobs(ctx context.Context) ([]schema.UserJob, error) {
	var jobs []schema.UserJob
	err := c.call(ctx, routeUsersWithJob, nil, nil, nil, &jobs)
	return jobs, err
}
