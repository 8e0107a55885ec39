// Package updatefield implements the update_field automation action.
package updatefield

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/dukex/dealflow/pkg/models"
	"github.com/dukex/dealflow/pkg/persistence"
	"github.com/dukex/dealflow/pkg/protocol"
)

const FieldTags = models.DealTagsKey

type Config struct {
	Field string `json:"field"`
	Value string `json:"value"`
}

type Action struct {
	config Config
	deals  persistence.DealRepository
}

func NewAction(config Config, deals persistence.DealRepository) *Action {
	return &Action{config: config, deals: deals}
}

func (a *Action) Config() Config {
	return a.config
}

func (a *Action) Execute(ctx context.Context, execCtx models.ExecutionContext, logger *slog.Logger) (map[string]any, error) {
	deal := execCtx.Deal
	if deal == nil {
		return nil, errors.New("execution context has no deal")
	}

	added, err := a.deals.AddTag(ctx, execCtx.OrganizationID, deal.ID, a.config.Value)
	if err != nil {
		return nil, fmt.Errorf("failed to add tag: %w", err)
	}

	if deal.Data == nil {
		deal.Data = map[string]any{}
	}

	models.AppendTag(deal.Data, a.config.Value)

	if !added {
		logger.DebugContext(ctx, "tag already present", "tag", a.config.Value)

		return map[string]any{protocol.ResultStatus: protocol.StatusNoop, "reason": "tag_present"}, nil
	}

	return map[string]any{protocol.ResultStatus: protocol.StatusDone, "tag": a.config.Value}, nil
}
