package persistence_test

import (
	"errors"
	"fmt"
	"testing"

	"github.com/dukex/dealflow/pkg/persistence"
	"github.com/stretchr/testify/assert"
)

func TestStandardizedErrors(t *testing.T) {
	t.Parallel()

	t.Run("error checking functions work correctly", func(t *testing.T) {
		dealErr := persistence.NewEntityError("GetByID", "deal", "deal-123", persistence.ErrDealNotFound)
		stageErr := persistence.NewEntityError("GetStage", "stage", "stage-9", persistence.ErrStageNotFound)

		assert.True(t, persistence.IsDealNotFound(dealErr))
		assert.False(t, persistence.IsDealNotFound(stageErr))
		assert.True(t, persistence.IsStageNotFound(stageErr))
		assert.True(t, persistence.IsNotFound(dealErr))
		assert.True(t, persistence.IsNotFound(stageErr))
		assert.True(t, errors.Is(dealErr, persistence.ErrDealNotFound))
	})

	t.Run("wrapped errors are still detected", func(t *testing.T) {
		err := fmt.Errorf("dispatch: %w", persistence.NewEntityError("GetByID", "deal", "d", persistence.ErrDealNotFound))

		assert.True(t, persistence.IsDealNotFound(err))
	})

	t.Run("entity error contains context", func(t *testing.T) {
		err := persistence.NewEntityError("MoveToStage", "deal", "deal-123", persistence.ErrStageNotInPipeline)

		assert.Contains(t, err.Error(), "MoveToStage")
		assert.Contains(t, err.Error(), "deal-123")
		assert.Contains(t, err.Error(), "stage does not belong")
	})

	t.Run("entity error without id", func(t *testing.T) {
		err := persistence.NewEntityError("ListOpen", "deal", "", errors.New("boom"))

		assert.Equal(t, "ListOpen operation failed for deal: boom", err.Error())
	})

	t.Run("unrelated errors are not not-found", func(t *testing.T) {
		assert.False(t, persistence.IsNotFound(errors.New("connection refused")))
	})
}
