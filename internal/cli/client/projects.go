package client

import (
	"context"
	"net/http"
)

// Project is a faction project
type Project struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Weight      int32  `json:"weight"`
}

// ListProjects returns all projects
func (c *Client) ListProjects(ctx context.Context) ([]Project, error) {
	resp, err := c.send(ctx, "list projects", http.MethodGet, "/projects", nil, http.StatusOK)
	if err != nil {
		return nil, err
	}

	var projects []Project
	if err := decode(resp, &projects); err != nil {
		return nil, err
	}

	return projects, nil
}

// Projects is ListProjects with failures logged and reported as no projects
func (c *Client) Projects(ctx context.Context) []Project {
	projects, err := c.ListProjects(ctx)
	if err != nil {
		c.logger.Warn().Err(err).Msg("fetching projects failed")
		return []Project{}
	}
	if projects == nil {
		return []Project{}
	}
	return projects
}

// AddProject creates a project. The write is applied asynchronously.
func (c *Client) AddProject(ctx context.Context, project Project) error {
	resp, err := c.send(ctx, "add project", http.MethodPost, "/projects", project, http.StatusOK)
	if err != nil {
		return err
	}
	discard(resp)
	return nil
}

type deleteProjectRequest struct {
	Name string `json:"name"`
}

// DeleteProject removes a project by name. It reports true only when the
// server answered 200; the error carries the reason otherwise.
func (c *Client) DeleteProject(ctx context.Context, name string) (bool, error) {
	resp, err := c.send(ctx, "delete project", http.MethodDelete, "/projects", deleteProjectRequest{Name: name}, http.StatusOK)
	if err != nil {
		return false, err
	}
	discard(resp)
	return true, nil
}
