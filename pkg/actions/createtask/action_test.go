package createtask

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/dukex/dealflow/pkg/mocks"
	"github.com/dukex/dealflow/pkg/models"
	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func testDeal(owner *string) *models.Deal {
	contact := "contact-1"

	return &models.Deal{
		ID:             "deal-1",
		OrganizationID: "org-1",
		OwnerID:        owner,
		CreatedByID:    "creator-1",
		ContactID:      &contact,
	}
}

func ptr[T any](v T) *T {
	return &v
}

func TestActionFactory_Create(t *testing.T) {
	factory := NewActionFactory(&mocks.MockTaskRepository{}, clockwork.NewFakeClock())

	tests := []struct {
		name     string
		config   string
		expected Config
	}{
		{
			name:   "empty config uses defaults",
			config: `{}`,
			expected: Config{
				Title:      DefaultTitle,
				Priority:   models.TaskPriorityMedium,
				DueInHours: ptr(24.0),
			},
		},
		{
			name:   "explicit values",
			config: `{"title":"Call lead","priority":"high","dueInHours":2,"assignToOwner":true}`,
			expected: Config{
				Title:         "Call lead",
				Priority:      models.TaskPriorityHigh,
				DueInHours:    ptr(2.0),
				AssignToOwner: true,
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			action, err := factory.Create(json.RawMessage(tt.config))
			require.NoError(t, err)
			require.IsType(t, &Action{}, action)
			assert.Equal(t, tt.expected, action.(*Action).Config())
		})
	}

	assert.Equal(t, "create_task", factory.ID())
	assert.NotEmpty(t, factory.Schema())
}

func TestActionFactory_Create_RejectsDueOutOfRange(t *testing.T) {
	factory := NewActionFactory(&mocks.MockTaskRepository{}, clockwork.NewFakeClock())

	for _, config := range []string{`{"dueInHours":1e12}`, `{"dueInHours":87600.5}`, `{"dueInHours":-1}`} {
		_, err := factory.Create(json.RawMessage(config))
		assert.Error(t, err, config)
	}

	action, err := factory.Create(json.RawMessage(`{"dueInHours":87600}`))
	require.NoError(t, err)
	assert.Equal(t, ptr(MaxDueInHours), action.(*Action).Config().DueInHours)
}

func TestAction_Execute_Assignee(t *testing.T) {
	tests := []struct {
		name          string
		assignToOwner bool
		owner         *string
		expected      string
	}{
		{"owner when flag set", true, ptr("owner-1"), "owner-1"},
		{"creator when flag unset", false, ptr("owner-1"), "creator-1"},
		{"creator when deal has no owner", true, nil, "creator-1"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tasks := &mocks.MockTaskRepository{}
			tasks.On("Create", mock.Anything, mock.MatchedBy(func(task *models.Task) bool {
				return task.AssignedToID == tt.expected && task.CreatedByID == "creator-1"
			})).Return(nil).Once()

			action := NewAction(Config{AssignToOwner: tt.assignToOwner}, tasks, clockwork.NewFakeClock())

			result, err := action.Execute(context.Background(), models.ExecutionContext{
				OrganizationID: "org-1",
				Deal:           testDeal(tt.owner),
			}, slog.New(slog.NewTextHandler(io.Discard, nil)))
			require.NoError(t, err)
			assert.Equal(t, tt.expected, result["assigned_to_id"])

			tasks.AssertExpectations(t)
		})
	}
}

func TestAction_Execute_DefaultsAndLinks(t *testing.T) {
	clock := clockwork.NewFakeClockAt(time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC))
	tasks := &mocks.MockTaskRepository{}

	var created *models.Task

	tasks.On("Create", mock.Anything, mock.Anything).Run(func(args mock.Arguments) {
		created = args.Get(1).(*models.Task)
	}).Return(nil)

	action := NewAction(Config{}, tasks, clock)

	_, err := action.Execute(context.Background(), models.ExecutionContext{
		OrganizationID: "org-1",
		Deal:           testDeal(nil),
	}, slog.New(slog.NewTextHandler(io.Discard, nil)))
	require.NoError(t, err)

	require.NotNil(t, created)
	assert.Equal(t, "Follow up required", created.Title)
	assert.Equal(t, models.TaskPriorityMedium, created.Priority)
	assert.Equal(t, models.TaskStatusTodo, created.Status)
	require.NotNil(t, created.DueDate)
	assert.Equal(t, clock.Now().Add(24*time.Hour), *created.DueDate)
	assert.Equal(t, "deal-1", *created.DealID)
	assert.Equal(t, "contact-1", *created.ContactID)
	assert.Equal(t, "org-1", created.OrganizationID)
}

func TestAction_Execute_Errors(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	action := NewAction(Config{}, &mocks.MockTaskRepository{}, clockwork.NewFakeClock())
	_, err := action.Execute(context.Background(), models.ExecutionContext{}, logger)
	require.Error(t, err)

	tasks := &mocks.MockTaskRepository{}
	tasks.On("Create", mock.Anything, mock.Anything).Return(errors.New("db down"))

	action = NewAction(Config{}, tasks, clockwork.NewFakeClock())
	_, err = action.Execute(context.Background(), models.ExecutionContext{Deal: testDeal(nil)}, logger)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "db down")
}
