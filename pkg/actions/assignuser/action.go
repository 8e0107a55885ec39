// Package assignuser implements the assign_user automation action.
package assignuser

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/dukex/dealflow/pkg/models"
	"github.com/dukex/dealflow/pkg/persistence"
	"github.com/dukex/dealflow/pkg/protocol"
)

const StrategyRoundRobin = "round_robin"

type Config struct {
	Strategy string `json:"strategy"`
	Role     string `json:"role"`
}

type Action struct {
	config  Config
	deals   persistence.DealRepository
	users   persistence.UserRepository
	cursors persistence.CursorRepository
}

func NewAction(
	config Config,
	deals persistence.DealRepository,
	users persistence.UserRepository,
	cursors persistence.CursorRepository,
) *Action {
	if config.Strategy == "" {
		config.Strategy = StrategyRoundRobin
	}

	return &Action{config: config, deals: deals, users: users, cursors: cursors}
}

func (a *Action) Config() Config {
	return a.config
}

// Execute picks users[cursor % len(users)] from the role's users ordered by
// id and makes them the deal owner. The shared deal is updated in place so
// later actions of the same automation see the new owner.
func (a *Action) Execute(ctx context.Context, execCtx models.ExecutionContext, logger *slog.Logger) (map[string]any, error) {
	deal := execCtx.Deal
	if deal == nil {
		return nil, errors.New("execution context has no deal")
	}

	users, err := a.users.ListByRole(ctx, execCtx.OrganizationID, a.config.Role)
	if err != nil {
		return nil, fmt.Errorf("failed to list users with role %q: %w", a.config.Role, err)
	}

	if len(users) == 0 {
		logger.DebugContext(ctx, "no user holds role, skipping assignment", "role", a.config.Role)

		return map[string]any{protocol.ResultStatus: protocol.StatusNoop, "reason": "no_matching_user"}, nil
	}

	rotation, err := a.cursors.Next(ctx, execCtx.OrganizationID, a.config.Role)
	if err != nil {
		return nil, fmt.Errorf("failed to advance assignment cursor: %w", err)
	}

	user := users[rotation%int64(len(users))]

	err = a.deals.UpdateOwner(ctx, execCtx.OrganizationID, deal.ID, user.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to update deal owner: %w", err)
	}

	ownerID := user.ID
	deal.OwnerID = &ownerID
	deal.Owner = user

	logger.InfoContext(ctx, "deal reassigned", "owner_id", user.ID, "role", a.config.Role)

	return map[string]any{
		protocol.ResultStatus: protocol.StatusDone,
		"owner_id":            user.ID,
		"rotation":            rotation,
	}, nil
}
