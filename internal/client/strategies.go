package client

import (
	"context"
	"fmt"
	"net/url"
	"time"
)

// Strategy statuses.
const (
	StrategyActive   = "active"
	StrategyArchived = "archived"
)

// Strategy is a coping strategy associated with a trigger pattern.
type Strategy struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Category    string    `json:"category"`
	TriggerID   string    `json:"triggerId"`
	Status      string    `json:"status"`
	UseCount    int       `json:"useCount"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// StrategyParams are the writable fields of a Strategy.
type StrategyParams struct {
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	Category    string `json:"category,omitempty"`
	TriggerID   string `json:"triggerId,omitempty"`
}

// ListStrategies returns all of the caller's strategies.
func (c *Client) ListStrategies(ctx context.Context) ([]Strategy, error) {
	var strategies []Strategy
	if err := c.getJSON(ctx, "/strategies", &strategies); err != nil {
		return nil, err
	}
	return strategies, nil
}

// CreateStrategy adds a strategy.
func (c *Client) CreateStrategy(ctx context.Context, params StrategyParams) (*Strategy, error) {
	var created Strategy
	if err := c.postJSON(ctx, "/strategies", params, &created); err != nil {
		return nil, err
	}
	return &created, nil
}

// GetStrategy fetches one strategy by ID.
func (c *Client) GetStrategy(ctx context.Context, id string) (*Strategy, error) {
	var strategy Strategy
	if err := c.getJSON(ctx, strategyPath(id), &strategy); err != nil {
		return nil, err
	}
	return &strategy, nil
}

// UpdateStrategy replaces a strategy's writable fields.
func (c *Client) UpdateStrategy(ctx context.Context, id string, params StrategyParams) (*Strategy, error) {
	var updated Strategy
	if err := c.putJSON(ctx, strategyPath(id), params, &updated); err != nil {
		return nil, err
	}
	return &updated, nil
}

// DeleteStrategy removes a strategy.
func (c *Client) DeleteStrategy(ctx context.Context, id string) error {
	return c.delete(ctx, strategyPath(id))
}

// StrategiesByTrigger returns the strategies linked to a trigger.
func (c *Client) StrategiesByTrigger(ctx context.Context, triggerID string) ([]Strategy, error) {
	var strategies []Strategy
	endpoint := fmt.Sprintf("/strategies/trigger/%s", url.PathEscape(triggerID))
	if err := c.getJSON(ctx, endpoint, &strategies); err != nil {
		return nil, err
	}
	return strategies, nil
}

// ToggleStrategyStatus flips a strategy between active and archived.
func (c *Client) ToggleStrategyStatus(ctx context.Context, id string) (*Strategy, error) {
	var updated Strategy
	if err := c.putJSON(ctx, strategyPath(id)+"/toggle-status", nil, &updated); err != nil {
		return nil, err
	}
	return &updated, nil
}

// IncrementStrategyUseCount records one use of a strategy.
func (c *Client) IncrementStrategyUseCount(ctx context.Context, id string) (*Strategy, error) {
	var updated Strategy
	if err := c.putJSON(ctx, strategyPath(id)+"/increment-use-count", nil, &updated); err != nil {
		return nil, err
	}
	return &updated, nil
}

func strategyPath(id string) string {
	return fmt.Sprintf("/strategies/%s", url.PathEscape(id))
}
