package client

import (
	"context"
	"fmt"
	"net/url"
	"time"
)

// Instance is one logged behavior episode.
type Instance struct {
	ID              string    `json:"id"`
	Trigger         string    `json:"trigger"`
	Intensity       int       `json:"intensity"`
	DurationSeconds int       `json:"durationSeconds"`
	Location        string    `json:"location"`
	Notes           string    `json:"notes"`
	Resisted        bool      `json:"resisted"`
	OccurredAt      time.Time `json:"occurredAt"`
	CreatedAt       time.Time `json:"createdAt"`
	UpdatedAt       time.Time `json:"updatedAt"`
}

// InstanceParams are the writable fields of an Instance.
type InstanceParams struct {
	Trigger         string    `json:"trigger"`
	Intensity       int       `json:"intensity"`
	DurationSeconds int       `json:"durationSeconds,omitempty"`
	Location        string    `json:"location,omitempty"`
	Notes           string    `json:"notes,omitempty"`
	Resisted        bool      `json:"resisted"`
	OccurredAt      time.Time `json:"occurredAt"`
}

// ListInstances returns the caller's logged episodes.
func (c *Client) ListInstances(ctx context.Context) ([]Instance, error) {
	var instances []Instance
	if err := c.getJSON(ctx, "/instances", &instances); err != nil {
		return nil, err
	}
	return instances, nil
}

// CreateInstance logs a new episode.
func (c *Client) CreateInstance(ctx context.Context, params InstanceParams) (*Instance, error) {
	var created Instance
	if err := c.postJSON(ctx, "/instances", params, &created); err != nil {
		return nil, err
	}
	return &created, nil
}

// GetInstance fetches one episode by ID.
func (c *Client) GetInstance(ctx context.Context, id string) (*Instance, error) {
	var instance Instance
	if err := c.getJSON(ctx, instancePath(id), &instance); err != nil {
		return nil, err
	}
	return &instance, nil
}

// UpdateInstance replaces an episode's writable fields.
func (c *Client) UpdateInstance(ctx context.Context, id string, params InstanceParams) (*Instance, error) {
	var updated Instance
	if err := c.putJSON(ctx, instancePath(id), params, &updated); err != nil {
		return nil, err
	}
	return &updated, nil
}

// DeleteInstance removes an episode.
func (c *Client) DeleteInstance(ctx context.Context, id string) error {
	return c.delete(ctx, instancePath(id))
}

func instancePath(id string) string {
	return fmt.Sprintf("/instances/%s", url.PathEscape(id))
}
