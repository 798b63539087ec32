package donetick

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/teemow/donetick-mcp/internal/logging"
)

// eAPI endpoint paths.
const (
	choresPath        = "/eapi/v1/chore"
	circleMembersPath = "/eapi/v1/circle/members"
)

// ListChores fetches all chores, applying the optional filters
// client-side.
func (c *Client) ListChores(ctx context.Context, opts ListChoresOptions) ([]Chore, error) {
	logger := logging.WithOperation(c.logger, "list_chores")
	logger.Debug("fetching chores")

	data, err := c.do(ctx, http.MethodGet, choresPath, nil, nil)
	if err != nil {
		return nil, err
	}

	var chores []Chore
	if err := json.Unmarshal(data, &chores); err != nil {
		return nil, fmt.Errorf("donetick: decode chores: %w", err)
	}

	if opts.FilterActive != nil {
		filtered := chores[:0]
		for _, chore := range chores {
			if chore.IsActive == *opts.FilterActive {
				filtered = append(filtered, chore)
			}
		}
		chores = filtered
	}

	if opts.AssignedTo != nil {
		filtered := chores[:0]
		for _, chore := range chores {
			if chore.AssignedTo == *opts.AssignedTo {
				filtered = append(filtered, chore)
			}
		}
		chores = filtered
	}

	logger.Info("retrieved chores", logging.Count(len(chores)))
	return chores, nil
}

// GetChore fetches a single chore by ID. The eAPI has no
// GET-by-id endpoint, so this lists all chores and filters.
// Returns (nil, nil) when no chore with the given ID exists.
func (c *Client) GetChore(ctx context.Context, choreID int) (*Chore, error) {
	chores, err := c.ListChores(ctx, ListChoresOptions{})
	if err != nil {
		return nil, err
	}

	for i := range chores {
		if chores[i].ID == choreID {
			return &chores[i], nil
		}
	}

	c.logger.Warn("chore not found", logging.ChoreID(choreID))
	return nil, nil
}

// CreateChore creates a new chore and returns the created record.
func (c *Client) CreateChore(ctx context.Context, chore ChoreCreate) (*Chore, error) {
	logger := logging.WithOperation(c.logger, "create_chore")

	if chore.Name == "" {
		return nil, fmt.Errorf("donetick: chore name is required")
	}
	if len(chore.Name) > 200 {
		return nil, fmt.Errorf("donetick: chore name exceeds 200 characters")
	}

	data, err := c.do(ctx, http.MethodPost, choresPath, nil, chore)
	if err != nil {
		return nil, err
	}

	var created Chore
	if err := json.Unmarshal(data, &created); err != nil {
		return nil, fmt.Errorf("donetick: decode created chore: %w", err)
	}

	logger.Info("created chore", logging.ChoreID(created.ID), "name", created.Name)
	return &created, nil
}

// UpdateChore updates an existing chore. Only non-zero fields of the
// update are sent. This is a Donetick Plus/Premium feature.
func (c *Client) UpdateChore(ctx context.Context, choreID int, update ChoreUpdate) (*Chore, error) {
	logger := logging.WithOperation(c.logger, "update_chore")

	path := fmt.Sprintf("%s/%d", choresPath, choreID)
	data, err := c.do(ctx, http.MethodPut, path, nil, update)
	if err != nil {
		return nil, err
	}

	var updated Chore
	if err := json.Unmarshal(data, &updated); err != nil {
		return nil, fmt.Errorf("donetick: decode updated chore: %w", err)
	}

	logger.Info("updated chore", logging.ChoreID(choreID))
	return &updated, nil
}

// DeleteChore deletes a chore permanently. Only the chore creator can
// delete a chore.
func (c *Client) DeleteChore(ctx context.Context, choreID int) error {
	logger := logging.WithOperation(c.logger, "delete_chore")

	path := fmt.Sprintf("%s/%d", choresPath, choreID)
	if _, err := c.do(ctx, http.MethodDelete, path, nil, nil); err != nil {
		return err
	}

	logger.Info("deleted chore", logging.ChoreID(choreID))
	return nil
}

// CompleteChore marks a chore as complete, optionally on behalf of the
// given user. This is a Donetick Plus/Premium feature.
func (c *Client) CompleteChore(ctx context.Context, choreID int, completedBy *int) (*Chore, error) {
	logger := logging.WithOperation(c.logger, "complete_chore")

	var query url.Values
	if completedBy != nil {
		query = url.Values{"completedBy": []string{strconv.Itoa(*completedBy)}}
	}

	path := fmt.Sprintf("%s/%d/complete", choresPath, choreID)
	data, err := c.do(ctx, http.MethodPost, path, query, nil)
	if err != nil {
		return nil, err
	}

	var completed Chore
	if err := json.Unmarshal(data, &completed); err != nil {
		return nil, fmt.Errorf("donetick: decode completed chore: %w", err)
	}

	logger.Info("completed chore", logging.ChoreID(choreID))
	return &completed, nil
}

// CircleMembers fetches all members of the user's circle.
// This is a Donetick Plus/Premium feature.
func (c *Client) CircleMembers(ctx context.Context) ([]CircleMember, error) {
	logger := logging.WithOperation(c.logger, "circle_members")

	data, err := c.do(ctx, http.MethodGet, circleMembersPath, nil, nil)
	if err != nil {
		return nil, err
	}

	var members []CircleMember
	if err := json.Unmarshal(data, &members); err != nil {
		return nil, fmt.Errorf("donetick: decode circle members: %w", err)
	}

	logger.Info("retrieved circle members", logging.Count(len(members)))
	return members, nil
}
