package assignuser

import (
	"context"
	"encoding/json"
	"errors"
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

func sdrs() []*models.User {
	return []*models.User{
		{ID: "u-1", Role: "sdr"},
		{ID: "u-2", Role: "sdr"},
		{ID: "u-3", Role: "sdr"},
	}
}

func TestActionFactory_Create(t *testing.T) {
	factory := NewActionFactory(&mocks.MockDealRepository{}, &mocks.MockUserRepository{}, &mocks.MockCursorRepository{})

	action, err := factory.Create(json.RawMessage(`{"role":"sdr"}`))
	require.NoError(t, err)
	assert.Equal(t, Config{Strategy: StrategyRoundRobin, Role: "sdr"}, action.(*Action).Config())
}

func TestAction_Execute_RotatesThroughUsers(t *testing.T) {
	tests := []struct {
		rotation int64
		expected string
	}{
		{0, "u-1"},
		{1, "u-2"},
		{2, "u-3"},
		{3, "u-1"},
		{7, "u-2"},
	}

	for _, tt := range tests {
		t.Run(tt.expected, func(t *testing.T) {
			deals := &mocks.MockDealRepository{}
			users := &mocks.MockUserRepository{}
			cursors := &mocks.MockCursorRepository{}

			users.On("ListByRole", mock.Anything, "org-1", "sdr").Return(sdrs(), nil)
			cursors.On("Next", mock.Anything, "org-1", "sdr").Return(tt.rotation, nil)
			deals.On("UpdateOwner", mock.Anything, "org-1", "deal-1", tt.expected).Return(nil)

			deal := &models.Deal{ID: "deal-1"}
			action := NewAction(Config{Role: "sdr"}, deals, users, cursors)

			result, err := action.Execute(context.Background(), models.ExecutionContext{
				OrganizationID: "org-1",
				Deal:           deal,
			}, discard)
			require.NoError(t, err)
			assert.Equal(t, protocol.StatusDone, result[protocol.ResultStatus])

			require.NotNil(t, deal.OwnerID)
			assert.Equal(t, tt.expected, *deal.OwnerID)
			assert.Equal(t, tt.expected, deal.Owner.ID)

			deals.AssertExpectations(t)
		})
	}
}

func TestAction_Execute_NoMatchingUser(t *testing.T) {
	deals := &mocks.MockDealRepository{}
	users := &mocks.MockUserRepository{}
	cursors := &mocks.MockCursorRepository{}

	users.On("ListByRole", mock.Anything, "org-1", "closer").Return([]*models.User{}, nil)

	action := NewAction(Config{Role: "closer"}, deals, users, cursors)

	result, err := action.Execute(context.Background(), models.ExecutionContext{
		OrganizationID: "org-1",
		Deal:           &models.Deal{ID: "deal-1"},
	}, discard)
	require.NoError(t, err)
	assert.Equal(t, protocol.StatusNoop, result[protocol.ResultStatus])

	cursors.AssertNotCalled(t, "Next", mock.Anything, mock.Anything, mock.Anything)
	deals.AssertNotCalled(t, "UpdateOwner", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestAction_Execute_StoreFailure(t *testing.T) {
	users := &mocks.MockUserRepository{}
	users.On("ListByRole", mock.Anything, "org-1", "sdr").Return(nil, errors.New("timeout"))

	action := NewAction(Config{Role: "sdr"}, &mocks.MockDealRepository{}, users, &mocks.MockCursorRepository{})

	_, err := action.Execute(context.Background(), models.ExecutionContext{
		OrganizationID: "org-1",
		Deal:           &models.Deal{ID: "deal-1"},
	}, discard)
	require.Error(t, err)
}
