package updatefield

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"testing"

	"github.com/dukex/dealflow/pkg/mocks"
	"github.com/dukex/dealflow/pkg/models"
	"github.com/dukex/dealflow/pkg/protocol"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

var discard = slog.New(slog.NewTextHandler(io.Discard, nil))

func TestActionFactory_Create(t *testing.T) {
	factory := NewActionFactory(&mocks.MockDealRepository{})

	_, err := factory.Create(json.RawMessage(`{"field":"tags","value":"hot"}`))
	require.NoError(t, err)

	_, err = factory.Create(json.RawMessage(`{"field":"title","value":"x"}`))
	require.Error(t, err)
}

func TestAction_Execute_AppendsTagOnce(t *testing.T) {
	deals := &mocks.MockDealRepository{}
	deals.On("AddTag", mock.Anything, "org-1", "deal-1", "hot").Return(true, nil).Once()
	deals.On("AddTag", mock.Anything, "org-1", "deal-1", "hot").Return(false, nil).Once()

	deal := &models.Deal{ID: "deal-1"}
	action := NewAction(Config{Field: FieldTags, Value: "hot"}, deals)
	execCtx := models.ExecutionContext{OrganizationID: "org-1", Deal: deal}

	result, err := action.Execute(context.Background(), execCtx, discard)
	require.NoError(t, err)
	assert.Equal(t, protocol.StatusDone, result[protocol.ResultStatus])

	result, err = action.Execute(context.Background(), execCtx, discard)
	require.NoError(t, err)
	assert.Equal(t, protocol.StatusNoop, result[protocol.ResultStatus])

	assert.Equal(t, []string{"hot"}, deal.Tags())
	deals.AssertExpectations(t)
}
